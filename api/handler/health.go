package handler

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/identity/api/transport"
	"github.com/fastygo/identity/internal/infrastructure/monitor"
	"github.com/fastygo/identity/pkg/httpcontext"
	appLogger "github.com/fastygo/identity/pkg/logger"
)

// StatusSource is satisfied by *monitor.Monitor.
type StatusSource interface {
	GetStatus() monitor.Status
	Refresh(ctx context.Context) monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// Check reports the cached dependency status. With ?refresh=1 the probes run
// inline, bounded by the request timeout.
//
// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	var status monitor.Status
	if ctx.QueryArgs().GetBool("refresh") {
		reqCtx, cancel := h.requestContext(ctx)
		defer cancel()
		status = h.monitor.Refresh(reqCtx)
		appLogger.WithRequestID(reqCtx, h.logger).Debug("health refreshed", zap.Bool("healthy", status.Healthy()))
	} else {
		status = h.monitor.GetStatus()
	}

	payload := map[string]any{
		"timestamp":  time.Now().UTC(),
		"last_check": status.LastCheck,
		"services": map[string]any{
			"mongodb": status.MongoDB,
			"stores": map[string]any{
				"users": status.UserStore,
				"roles": status.RoleStore,
			},
		},
	}

	if status.Healthy() {
		h.respondSuccess(ctx, fasthttp.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, fasthttp.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
