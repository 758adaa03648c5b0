package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/identity/pkg/httpcontext"
)

// AccessLog logs one line per request, keyed by the X-Request-ID the handler echoed.
func AccessLog(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)

			fields := []zap.Field{
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("elapsed", time.Since(start)),
			}
			if id := ctx.Response.Header.Peek(httpcontext.HeaderRequestID); len(id) > 0 {
				fields = append(fields, zap.ByteString("request_id", id))
			}
			if ctx.Response.StatusCode() >= fasthttp.StatusInternalServerError {
				logger.Warn("request served", fields...)
				return
			}
			logger.Debug("request served", fields...)
		}
	}
}
