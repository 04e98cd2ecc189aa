package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/usecase/extraction"
	"github.com/johnquangdev/meeting-agent/pkg/requestctx"
)

// Extractor runs one extraction against a single model
type Extractor interface {
	Extract(ctx context.Context, in extraction.ExtractInput) (*entities.ExtractionResult, error)
}

// ExtractorFactory builds an extractor bound to model. Each call must return
// an extractor with its own breaker so models never share failure state.
type ExtractorFactory func(model string) (Extractor, error)

// ReportArchiver stores finished reports
type ReportArchiver interface {
	Archive(ctx context.Context, objectName string, data []byte) (string, error)
}

// ModelResult is the outcome of one model. Result is empty when Error is set.
type ModelResult struct {
	ModelName       string                     `json:"modelName"`
	Result          *entities.ExtractionResult `json:"result"`
	ExecutionTimeMs int64                      `json:"executionTimeMs"`
	Score           float64                    `json:"score"`
	Error           string                     `json:"error,omitempty"`
}

// Report aggregates one evaluation run
type Report struct {
	Results          []ModelResult `json:"results"`
	RecommendedModel string        `json:"recommendedModel,omitempty"`
	TotalTimeMs      int64         `json:"totalTimeMs"`
	TraceID          string        `json:"traceId"`
	ArchivedAt       string        `json:"archivedAt,omitempty"`
}

// Service compares extraction quality across models
type Service struct {
	factory       ExtractorFactory
	defaultModels []string
	archiver      ReportArchiver
	tracer        trace.Tracer
	logger        *zap.Logger
	now           func() time.Time
}

// Option customises a Service
type Option func(*Service)

// WithArchiver stores every report; archive failures are only logged
func WithArchiver(a ReportArchiver) Option {
	return func(s *Service) { s.archiver = a }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithClock overrides the clock used to time each model
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an evaluation service
func NewService(factory ExtractorFactory, defaultModels []string, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		factory:       factory,
		defaultModels: defaultModels,
		tracer:        otel.Tracer("evaluation-service"),
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate runs the request against each model in order. A failing model is
// recorded in its own entry and never aborts the run. An empty models list
// uses the configured defaults.
func (s *Service) Evaluate(ctx context.Context, req *entities.ExtractionRequest, models []string) (*Report, error) {
	if len(models) == 0 {
		models = s.defaultModels
	}
	if len(models) == 0 {
		return nil, apperrors.ErrInvalidArgument(entities.ErrNoModels.Error())
	}

	ctx, span := s.tracer.Start(ctx, "evaluation.evaluate", trace.WithAttributes(
		attribute.Int("evaluation.models.count", len(models)),
		attribute.String("evaluation.models", strings.Join(models, ", ")),
	))
	defer span.End()

	start := s.now()
	in := extraction.InputFromRequest(req)
	report := &Report{
		Results: make([]ModelResult, 0, len(models)),
		TraceID: traceID(ctx, span),
	}

	for _, model := range models {
		report.Results = append(report.Results, s.evaluateModel(ctx, model, in))
	}

	if best, ok := SelectBest(report.Results); ok {
		report.RecommendedModel = report.Results[best].ModelName
	}
	report.TotalTimeMs = s.now().Sub(start).Milliseconds()

	span.SetAttributes(
		attribute.Int64("evaluation.total_time_ms", report.TotalTimeMs),
		attribute.String("evaluation.recommended_model", orNone(report.RecommendedModel)),
	)
	span.SetStatus(codes.Ok, "")

	s.logger.Info("🏁 Evaluation completed",
		zap.String("trace_id", report.TraceID),
		zap.Strings("models", models),
		zap.String("recommended_model", report.RecommendedModel),
		zap.Int64("total_time_ms", report.TotalTimeMs),
	)

	s.archive(ctx, report)
	return report, nil
}

func (s *Service) evaluateModel(ctx context.Context, model string, in extraction.ExtractInput) ModelResult {
	start := s.now()
	entry := ModelResult{ModelName: model}

	result, err := s.run(ctx, model, in)
	entry.ExecutionTimeMs = s.now().Sub(start).Milliseconds()
	if err != nil {
		s.logger.Warn("⚠️ Model evaluation failed", zap.String("model", model), zap.Error(err))
		empty := &entities.ExtractionResult{}
		empty.Normalize()
		entry.Result = empty
		entry.Error = err.Error()
		return entry
	}

	entry.Result = result
	entry.Score = Score(result, entry.ExecutionTimeMs)
	s.logger.Info("📊 Model evaluated",
		zap.String("model", model),
		zap.Int("items", result.ItemCount()),
		zap.Float64("score", entry.Score),
		zap.Int64("execution_time_ms", entry.ExecutionTimeMs),
	)
	return entry
}

func (s *Service) run(ctx context.Context, model string, in extraction.ExtractInput) (*entities.ExtractionResult, error) {
	extractor, err := s.factory(model)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(ctx, in)
}

// Score rates a successful extraction:
// 10 per item, 50 x average confidence, plus up to 5 for finishing under 10s
func Score(r *entities.ExtractionResult, executionTimeMs int64) float64 {
	timeBonus := math.Max(0, 1-float64(executionTimeMs)/10000)
	return float64(r.ItemCount())*10 + r.AverageConfidence()*50 + timeBonus*5
}

// SelectBest returns the index of the highest scoring successful entry.
// Ties go to the earliest entry.
func SelectBest(results []ModelResult) (int, bool) {
	best := -1
	for i, r := range results {
		if r.Error != "" {
			continue
		}
		if best < 0 || r.Score > results[best].Score {
			best = i
		}
	}
	return best, best >= 0
}

// ArchiveKey is the object name of a report produced at t
func ArchiveKey(t time.Time, traceID string) string {
	return fmt.Sprintf("evaluations/%s/%s.json", t.UTC().Format(extraction.DateLayout), traceID)
}

func (s *Service) archive(ctx context.Context, report *Report) {
	if s.archiver == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("⚠️ Failed to encode evaluation report", zap.Error(err))
		return
	}
	location, err := s.archiver.Archive(ctx, ArchiveKey(s.now(), report.TraceID), data)
	if err != nil {
		s.logger.Warn("⚠️ Failed to archive evaluation report",
			zap.String("trace_id", report.TraceID),
			zap.Error(err),
		)
		return
	}
	report.ArchivedAt = location
}

func traceID(ctx context.Context, span trace.Span) string {
	if sc := span.SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if id := requestctx.GetTraceID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
