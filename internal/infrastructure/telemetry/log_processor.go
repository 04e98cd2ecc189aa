package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// LogProcessor writes every ended span to a zap logger
type LogProcessor struct {
	logger *zap.Logger
}

// NewLogProcessor creates a LogProcessor
func NewLogProcessor(logger *zap.Logger) *LogProcessor {
	return &LogProcessor{logger: logger.With(zap.String("component", "tracing"))}
}

func (p *LogProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *LogProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	fields := []zap.Field{
		zap.String("span", s.Name()),
		zap.String("trace_id", s.SpanContext().TraceID().String()),
		zap.String("span_id", s.SpanContext().SpanID().String()),
		zap.Duration("duration", s.EndTime().Sub(s.StartTime())),
		zap.String("status", s.Status().Code.String()),
	}
	if s.Parent().IsValid() {
		fields = append(fields, zap.String("parent_span_id", s.Parent().SpanID().String()))
	}
	for _, kv := range s.Attributes() {
		fields = append(fields, zap.Any(string(kv.Key), kv.Value.AsInterface()))
	}

	if s.Status().Code == codes.Error {
		p.logger.Warn("🔭 Span ended with error", append(fields, zap.String("error", s.Status().Description))...)
		return
	}
	p.logger.Debug("🔭 Span ended", fields...)
}

func (p *LogProcessor) Shutdown(context.Context) error { return nil }

func (p *LogProcessor) ForceFlush(context.Context) error { return nil }
