package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/identity/api/handler"
)

type Handlers struct {
	Health *apiHandler.HealthHandler
}

// New registers the operational routes. Identity data is reachable only through the stores.
func New(handlers Handlers, accessLog func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	if accessLog == nil {
		accessLog = func(next fasthttp.RequestHandler) fasthttp.RequestHandler { return next }
	}
	r := router.New()
	r.GET("/health", accessLog(handlers.Health.Check))
	return r
}
