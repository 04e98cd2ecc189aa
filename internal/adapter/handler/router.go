package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/meeting-agent/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-agent/pkg/config"
	"github.com/johnquangdev/meeting-agent/pkg/resilience"
)

// Router holds all handlers
type Router struct {
	cfg         *config.Config
	messages    *Messages
	evaluations *Evaluations
	breakers    *resilience.Breakers
	gatherer    prometheus.Gatherer
	authMW      echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers. authMW protects the
// evaluation endpoint; nil leaves it open.
func NewRouter(cfg *config.Config, messages *Messages, evaluations *Evaluations, breakers *resilience.Breakers, gatherer prometheus.Gatherer, authMW echo.MiddlewareFunc) *Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		cfg:         cfg,
		messages:    messages,
		evaluations: evaluations,
		breakers:    breakers,
		gatherer:    gatherer,
		authMW:      authMW,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	rt.setupMessageRoutes(api)
	rt.setupEvaluationRoutes(api)
}

// setupMessageRoutes handles its own auth since activity envelopes bypass it
func (rt *Router) setupMessageRoutes(g *echo.Group) {
	if rt.messages == nil {
		g.POST("/messages", rt.notImplemented)
		return
	}
	g.POST("/messages", rt.messages.Post, middleware.BodyLimit(MaxBodySize))
}

func (rt *Router) setupEvaluationRoutes(g *echo.Group) {
	if rt.evaluations == nil {
		g.POST("/evaluations", rt.notImplemented)
		return
	}
	mw := []echo.MiddlewareFunc{middleware.BodyLimit(MaxBodySize)}
	if rt.authMW != nil {
		mw = append(mw, rt.authMW)
	}
	g.POST("/evaluations", rt.evaluations.Post, mw...)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not configured",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status
// @Summary      Health check
// @Description  Liveness plus circuit breaker state
// @Tags         Health
// @Produce      json
// @Success      200  {object}  common.HealthResponse
// @Router       /health [get]
func (rt *Router) healthCheck(c echo.Context) error {
	resp := common.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Breakers:  rt.breakers.Stats(),
	}
	if rt.cfg != nil {
		resp.Service = rt.cfg.Telemetry.ServiceName
		resp.Environment = rt.cfg.Server.Environment
	}
	if resp.Breakers == nil {
		resp.Breakers = []resilience.BreakerStats{}
	}
	return c.JSON(http.StatusOK, resp)
}
