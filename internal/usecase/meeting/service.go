package meeting

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-agent/internal/usecase/actions"
	"github.com/johnquangdev/meeting-agent/internal/usecase/extraction"
	"github.com/johnquangdev/meeting-agent/pkg/pii"
	"github.com/johnquangdev/meeting-agent/pkg/requestctx"
)

// Extractor turns a transcript into structured meeting data
type Extractor interface {
	Extract(ctx context.Context, in extraction.ExtractInput) (*entities.ExtractionResult, error)
}

// SummaryPublisher announces processed meetings
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, n entities.SummaryNotification) error
}

// Service drives one request through extraction, enrichment and the
// optional action batch
type Service struct {
	extractor Extractor
	executor  actions.Executor
	validator StructValidator
	publisher SummaryPublisher
	filter    *pii.Filter
	metrics   *metrics.Collector
	tracer    trace.Tracer
	logger    *zap.Logger
	now       func() time.Time
}

// Option customises a Service
type Option func(*Service)

// WithPublisher publishes a summary event after approved notify requests
func WithPublisher(p SummaryPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithPIIFilter(f *pii.Filter) Option {
	return func(s *Service) { s.filter = f }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithClock overrides the clock used for default due dates
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the meeting service
func NewService(extractor Extractor, executor actions.Executor, v StructValidator, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		extractor: extractor,
		executor:  executor,
		validator: v,
		tracer:    otel.Tracer("meeting-service"),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process runs extraction and enrichment, builds draft actions and, when the
// request is approved, executes them. Approved responses carry execution
// results and no drafts; unapproved ones carry drafts only.
func (s *Service) Process(ctx context.Context, req *entities.ExtractionRequest) (*entities.ResponsePayload, error) {
	ctx, span := s.tracer.Start(ctx, "meeting.process", trace.WithAttributes(
		attribute.String("meeting.title", s.filter.SanitizeText(req.MeetingTitle, 0)),
		attribute.Bool("meeting.approve", req.Approve),
		attribute.String("request.format", requestctx.GetFormat(ctx)),
	))
	defer span.End()

	traceID := s.traceID(ctx, span)

	result, err := s.extractor.Extract(ctx, extraction.InputFromRequest(req))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	todos := extraction.EnrichTodos(result.Todos, req.Policy.DefaultDueDays, s.now())
	drafts := buildDrafts(req, result, todos)

	resp := &entities.ResponsePayload{
		ExecutiveSummary:  result.ExecutiveSummary,
		Decisions:         result.Decisions,
		Todos:             todos,
		Risks:             result.Risks,
		FollowUpQuestions: result.FollowUpQuestions,
		DraftActions:      drafts,
		TraceID:           traceID,
	}

	if req.Approve {
		results := s.executor.ExecuteAll(ctx, actions.BatchInput{
			Todos:          todos,
			Risks:          result.Risks,
			MeetingTitle:   req.MeetingTitle,
			DecisionsCount: len(result.Decisions),
			ShouldNotify:   req.Policy.AllowAutoNotify,
			Channel:        req.Policy.NotifyChannel,
		})
		resp.DraftActions = []entities.DraftAction{}
		resp.ExecutionResults = results

		span.SetAttributes(
			attribute.Int("execution.results.count", len(results)),
			attribute.Int("execution.success.count", resp.SucceededCount()),
		)

		if req.Policy.AllowAutoNotify {
			s.publishSummary(ctx, req.MeetingTitle, resp)
		}
	}

	span.SetStatus(codes.Ok, "")
	s.logger.Info("✅ Meeting processed",
		zap.String("trace_id", traceID),
		zap.Bool("approve", req.Approve),
		zap.Int("draft_actions", len(resp.DraftActions)),
		zap.Int("execution_results", len(resp.ExecutionResults)),
	)
	return resp, nil
}

func (s *Service) traceID(ctx context.Context, span trace.Span) string {
	if sc := span.SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if id := requestctx.GetTraceID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func buildDrafts(req *entities.ExtractionRequest, result *entities.ExtractionResult, todos []entities.Todo) []entities.DraftAction {
	drafts := make([]entities.DraftAction, 0, len(todos)+len(result.Risks)+1)
	for _, t := range todos {
		drafts = append(drafts, entities.NewCreateTaskDraft(t))
	}
	for _, r := range result.Risks {
		drafts = append(drafts, entities.NewCreateRiskDraft(r))
	}
	if req.Policy.AllowAutoNotify {
		drafts = append(drafts, entities.NewNotifyDraft(entities.NotifyPayload{
			MeetingTitle:   req.MeetingTitle,
			DecisionsCount: len(result.Decisions),
			TodosCount:     len(todos),
			RisksCount:     len(result.Risks),
		}))
	}
	return drafts
}

// publishSummary is best effort; failures are only logged
func (s *Service) publishSummary(ctx context.Context, title string, resp *entities.ResponsePayload) {
	if s.publisher == nil {
		return
	}
	n := entities.NewSummaryNotification(title, len(resp.Decisions), len(resp.Todos), len(resp.Risks), resp.TraceID, s.now())
	if err := s.publisher.PublishSummary(ctx, n); err != nil {
		s.logger.Warn("⚠️ Failed to publish meeting summary",
			zap.String("trace_id", resp.TraceID),
			zap.Error(err),
		)
	}
}

// HandleDirect decodes, validates and processes a direct JSON request
func (s *Service) HandleDirect(ctx context.Context, raw []byte) (*entities.ResponsePayload, error) {
	ctx = requestctx.SetFormat(ctx, requestctx.FormatDirect)
	req, err := DecodeRequest(raw, s.validator)
	if err != nil {
		s.metrics.RecordMessage(KindDirect.String(), "invalid")
		s.logger.Debug("🔍 Direct request rejected",
			zap.String("trace_id", requestctx.GetTraceID(ctx)),
			zap.Any("request", s.redactedBody(raw)),
			zap.Error(err),
		)
		return nil, err
	}

	resp, err := s.Process(ctx, req)
	if err != nil {
		s.metrics.RecordMessage(KindDirect.String(), "error")
		return nil, err
	}
	s.metrics.RecordMessage(KindDirect.String(), "success")
	return resp, nil
}

// redactedBody decodes raw as a JSON object with sensitive keys masked. It
// is nil when raw is not an object.
func (s *Service) redactedBody(raw []byte) map[string]any {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	return s.filter.SanitizeObject(body)
}

// HandleActivity processes an activity envelope and always produces a reply.
// Successful replies carry the rendered summary plus the payload and an
// Adaptive Card as attachments; failures become text-only replies.
func (s *Service) HandleActivity(ctx context.Context, a *entities.Activity) *entities.Activity {
	ctx = requestctx.SetFormat(ctx, requestctx.FormatActivity)
	ctx, span := s.tracer.Start(ctx, "meeting.handle_activity", trace.WithAttributes(
		attribute.String("activity.type", orUnknown(a.Type)),
		attribute.String("activity.id", orUnknown(a.ID)),
	))
	defer span.End()

	s.logger.Info("📨 Activity received",
		zap.String("trace_id", requestctx.GetTraceID(ctx)),
		zap.String("activity_id", a.ID),
		zap.String("activity_type", a.Type),
	)

	reply := s.replyTo(ctx, span, a)

	s.logger.Info("📤 Activity reply",
		zap.String("trace_id", requestctx.GetTraceID(ctx)),
		zap.String("reply_to_id", reply.ReplyToID),
		zap.Int("attachments", len(reply.Attachments)),
	)
	return reply
}

func (s *Service) replyTo(ctx context.Context, span trace.Span, a *entities.Activity) *entities.Activity {
	req, err := DecodeRequest(UnwrapActivity(a), s.validator)
	if err != nil {
		span.SetStatus(codes.Error, "invalid payload")
		s.metrics.RecordMessage(KindActivity.String(), "invalid")
		return a.Reply("Invalid request format: " + validationText(err))
	}

	resp, err := s.Process(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordMessage(KindActivity.String(), "error")
		s.logger.Error("❌ Error handling activity",
			zap.String("trace_id", requestctx.GetTraceID(ctx)),
			zap.Error(err),
		)
		return a.Reply("Error: " + UserMessage(err))
	}

	span.SetStatus(codes.Ok, "")
	s.metrics.RecordMessage(KindActivity.String(), "success")
	return a.Reply(RenderSummary(resp),
		entities.Attachment{ContentType: entities.ContentTypeJSON, Content: resp},
		entities.Attachment{ContentType: entities.ContentTypeAdaptiveCard, Content: NewSummaryCard(resp)},
	)
}

// UserMessage is the client-facing text of err
func UserMessage(err error) string {
	var appErr apperrors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func validationText(err error) string {
	var appErr apperrors.AppError
	if stdErrors.As(err, &appErr) && len(appErr.Details) > 0 {
		if raw, mErr := json.Marshal(appErr.Details); mErr == nil {
			return string(raw)
		}
	}
	return UserMessage(err)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
