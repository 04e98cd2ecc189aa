package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/pkg/requestctx"
)

// HeaderTraceID echoes the trace id of every request back to the caller
const HeaderTraceID = "X-Trace-ID"

// HTTPRecorder receives one observation per served request
type HTTPRecorder interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
}

// RequestContext starts a server span for each request, seeds the request
// context with its trace id and logs the outcome.
func RequestContext(tracer trace.Tracer, recorder HTTPRecorder, logger *zap.Logger) echo.MiddlewareFunc {
	if tracer == nil {
		tracer = otel.Tracer("github.com/johnquangdev/meeting-agent/http")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}

			ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
			ctx, span := tracer.Start(ctx, req.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("http.route", route),
				),
			)
			defer span.End()

			traceID := ""
			if sc := span.SpanContext(); sc.HasTraceID() {
				traceID = sc.TraceID().String()
			}
			requestID := req.Header.Get(echo.HeaderXRequestID)
			ctx = requestctx.Begin(ctx, traceID, requestID)
			traceID = requestctx.GetTraceID(ctx)

			c.SetRequest(req.WithContext(ctx))
			c.Response().Header().Set(HeaderTraceID, traceID)

			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo render the error now so the status below is final
				c.Error(err)
				span.RecordError(err)
			}

			status := c.Response().Status
			duration := time.Since(start)
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= 500 {
				span.SetStatus(codes.Error, "server error")
			}
			if recorder != nil {
				recorder.RecordHTTPRequest(req.Method, route, status, duration)
			}

			fields := []zap.Field{
				zap.String("trace_id", traceID),
				zap.String("request_id", requestID),
				zap.String("method", req.Method),
				zap.String("path", route),
				zap.Int("status", status),
				zap.Duration("latency", duration),
			}
			if status >= 500 {
				logger.Error("http.request", fields...)
			} else {
				logger.Info("http.request", fields...)
			}
			return nil
		}
	}
}
