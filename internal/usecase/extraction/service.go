package extraction

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-agent/pkg/pii"
	"github.com/johnquangdev/meeting-agent/pkg/resilience"
)

// Completer is the structured-generation contract of the model endpoint
type Completer interface {
	GenerateStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]any) (string, error)
	Model() string
}

// ExtractInput carries everything one extraction needs
type ExtractInput struct {
	Title          string
	Transcript     string
	Attendees      []string
	OutputLanguage string
	DefaultDueDays int
}

// InputFromRequest builds an ExtractInput from a validated request
func InputFromRequest(req *entities.ExtractionRequest) ExtractInput {
	return ExtractInput{
		Title:          req.MeetingTitle,
		Transcript:     req.MeetingTranscript,
		Attendees:      req.Attendees,
		OutputLanguage: req.OutputLanguage,
		DefaultDueDays: req.Policy.DefaultDueDays,
	}
}

// Service runs schema-constrained extraction behind retry and a circuit breaker
type Service struct {
	client    Completer
	parser    *Parser
	breaker   *resilience.CircuitBreaker
	retry     resilience.RetryConfig
	retryOpts []resilience.RetryOption
	filter    *pii.Filter
	metrics   *metrics.Collector
	tracer    trace.Tracer
	logger    *zap.Logger
}

// Option customises a Service
type Option func(*Service)

// WithRetryConfig overrides the default retry policy
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(s *Service) { s.retry = cfg }
}

// WithRetryOptions passes extra options to every retry loop
func WithRetryOptions(opts ...resilience.RetryOption) Option {
	return func(s *Service) { s.retryOpts = append(s.retryOpts, opts...) }
}

// WithPIIFilter redacts meeting details in logs and spans
func WithPIIFilter(f *pii.Filter) Option {
	return func(s *Service) { s.filter = f }
}

// WithMetrics records extraction outcomes
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer overrides the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// NewService creates an extraction service. A nil breaker gets a private
// default one.
func NewService(client Completer, breaker *resilience.CircuitBreaker, logger *zap.Logger, opts ...Option) (*Service, error) {
	parser, err := NewParser(nil)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.DefaultBreakerConfig("extraction"), logger)
	}

	s := &Service{
		client:  client,
		parser:  parser,
		breaker: breaker,
		retry:   resilience.DefaultRetryConfig(),
		tracer:  otel.Tracer("extraction-service"),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.retryOpts = append([]resilience.RetryOption{resilience.WithRetryLogger(logger)}, s.retryOpts...)
	return s, nil
}

// Model returns the model this service extracts with
func (s *Service) Model() string {
	return s.client.Model()
}

// Extract runs one extraction. Every attempt starts from scratch. Invalid
// model output and transient dependency errors are retried; once the budget
// is spent the failure surfaces as "extraction failed". An open circuit is
// returned unchanged.
func (s *Service) Extract(ctx context.Context, in ExtractInput) (*entities.ExtractionResult, error) {
	ctx, span := s.tracer.Start(ctx, "extraction.extract", trace.WithAttributes(
		attribute.String("meeting.title", s.filter.SanitizeText(in.Title, 0)),
		attribute.Int("meeting.attendees.count", len(in.Attendees)),
		attribute.String("output.language", in.OutputLanguage),
		attribute.String("model", s.client.Model()),
	))
	defer span.End()

	start := time.Now()
	systemPrompt := SystemPrompt(in.OutputLanguage)
	userPrompt := UserPrompt(in)

	s.logger.Info("🧠 Extracting meeting data",
		zap.String("model", s.client.Model()),
		zap.String("transcript", s.filter.SanitizeTranscript(in.Transcript)),
		zap.Strings("attendees", s.filter.SanitizeAttendees(in.Attendees)),
	)

	attempt := func(ctx context.Context) (*entities.ExtractionResult, error) {
		return resilience.Execute(ctx, s.breaker, func(ctx context.Context) (*entities.ExtractionResult, error) {
			content, err := s.client.GenerateStructured(ctx, systemPrompt, userPrompt, SchemaName, Schema())
			if err != nil {
				return nil, err
			}
			return s.parser.Parse(content)
		})
	}

	result, err := resilience.RetryWithBackoff(ctx, attempt, s.retry, "extraction", s.retryOpts...)
	s.metrics.RecordExtraction(s.client.Model(), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if apperrors.HasCode(err, apperrors.ErrorCode_CIRCUIT_OPEN) {
			return nil, err
		}
		return nil, apperrors.ErrExtractionFailed(err)
	}

	span.SetAttributes(
		attribute.Int("extraction.decisions.count", len(result.Decisions)),
		attribute.Int("extraction.todos.count", len(result.Todos)),
		attribute.Int("extraction.risks.count", len(result.Risks)),
	)
	span.SetStatus(codes.Ok, "")

	s.logger.Info("✅ Extraction completed",
		zap.String("model", s.client.Model()),
		zap.Int("decisions", len(result.Decisions)),
		zap.Int("todos", len(result.Todos)),
		zap.Int("risks", len(result.Risks)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}
