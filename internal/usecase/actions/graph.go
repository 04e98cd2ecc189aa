package actions

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/external/graph"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-agent/pkg/resilience"
)

// TaskClient is the task/collaboration API used by GraphExecutor
type TaskClient interface {
	CreateTask(ctx context.Context, in graph.TaskInput) (*graph.TaskRef, error)
	SendMessage(ctx context.Context, channel entities.ChannelRef, html, subject string) (*graph.MessageRef, error)
}

// GraphExecutor creates Planner tasks and posts Teams notifications. Every
// item runs under its own retry loop through the shared actions breaker.
type GraphExecutor struct {
	client         TaskClient
	breaker        *resilience.CircuitBreaker
	retry          resilience.RetryConfig
	retryOpts      []resilience.RetryOption
	defaultChannel *entities.ChannelRef
	metrics        *metrics.Collector
	tracer         trace.Tracer
	logger         *zap.Logger
}

// GraphOption customises a GraphExecutor
type GraphOption func(*GraphExecutor)

// WithDefaultChannel sets the notify channel used when a request names none
func WithDefaultChannel(ch entities.ChannelRef) GraphOption {
	return func(e *GraphExecutor) {
		if ch.Valid() {
			e.defaultChannel = &ch
		}
	}
}

// WithRetry overrides the per-item retry policy
func WithRetry(cfg resilience.RetryConfig, opts ...resilience.RetryOption) GraphOption {
	return func(e *GraphExecutor) {
		e.retry = cfg
		e.retryOpts = append(e.retryOpts, opts...)
	}
}

// WithExecutorMetrics records action outcomes
func WithExecutorMetrics(m *metrics.Collector) GraphOption {
	return func(e *GraphExecutor) { e.metrics = m }
}

// WithExecutorTracer overrides the global tracer
func WithExecutorTracer(t trace.Tracer) GraphOption {
	return func(e *GraphExecutor) { e.tracer = t }
}

// NewGraphExecutor creates a GraphExecutor. A nil breaker gets a private
// default one.
func NewGraphExecutor(client TaskClient, breaker *resilience.CircuitBreaker, logger *zap.Logger, opts ...GraphOption) *GraphExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.DefaultBreakerConfig("actions"), logger)
	}
	e := &GraphExecutor{
		client:  client,
		breaker: breaker,
		retry:   resilience.DefaultRetryConfig(),
		tracer:  otel.Tracer("action-executor"),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.retryOpts = append([]resilience.RetryOption{resilience.WithRetryLogger(logger)}, e.retryOpts...)
	return e
}

func (e *GraphExecutor) createTask(ctx context.Context, label string, in graph.TaskInput) (*graph.TaskRef, error) {
	return resilience.RetryWithBackoff(ctx, func(ctx context.Context) (*graph.TaskRef, error) {
		return resilience.Execute(ctx, e.breaker, func(ctx context.Context) (*graph.TaskRef, error) {
			return e.client.CreateTask(ctx, in)
		})
	}, e.retry, label, e.retryOpts...)
}

// ExecuteCreateTask creates a Planner task for one todo
func (e *GraphExecutor) ExecuteCreateTask(ctx context.Context, todo entities.Todo) entities.ActionResult {
	ctx, span := e.tracer.Start(ctx, "actions.createTask")
	defer span.End()

	ref, err := e.createTask(ctx, "createTask", graph.TaskInput{Title: todo.Text, DueDate: todo.DueDate, Assignee: todo.Owner})
	if err != nil {
		return e.fail(span, entities.ActionCreateTask, fmt.Errorf("failed to create Planner task: %w", err))
	}

	span.SetAttributes(attribute.String("task.id", ref.ID))
	span.SetStatus(codes.Ok, "")
	return entities.ActionResult{
		Type:    entities.ActionCreateTask,
		Success: true,
		Details: entities.TaskDetails{TaskID: ref.ID, TaskTitle: ref.Title, WebURL: ref.URL},
	}
}

// ExecuteCreateRisk records a risk as a Planner task with a severity prefix
func (e *GraphExecutor) ExecuteCreateRisk(ctx context.Context, risk entities.Risk) entities.ActionResult {
	ctx, span := e.tracer.Start(ctx, "actions.createRisk", trace.WithAttributes(
		attribute.String("risk.severity", string(risk.Severity)),
	))
	defer span.End()

	ref, err := e.createTask(ctx, "createRisk", graph.TaskInput{Title: RiskTaskTitle(risk), Assignee: risk.Owner})
	if err != nil {
		return e.fail(span, entities.ActionCreateRisk, fmt.Errorf("failed to create risk task: %w", err))
	}

	span.SetAttributes(attribute.String("task.id", ref.ID))
	span.SetStatus(codes.Ok, "")
	return entities.ActionResult{
		Type:    entities.ActionCreateRisk,
		Success: true,
		Details: entities.TaskDetails{TaskID: ref.ID, TaskTitle: ref.Title, WebURL: ref.URL},
	}
}

// ExecuteNotify posts the meeting summary to a Teams channel. Without a
// channel reference the result is a precondition failure.
func (e *GraphExecutor) ExecuteNotify(ctx context.Context, in NotifyInput) entities.ActionResult {
	ctx, span := e.tracer.Start(ctx, "actions.notify")
	defer span.End()

	channel := in.Channel
	if !channel.Valid() {
		channel = e.defaultChannel
	}
	if !channel.Valid() {
		return e.fail(span, entities.ActionNotify, apperrors.ErrPreconditionFailed(entities.ErrChannelRequired.Error()))
	}

	body := FormatTeamsMessage(in.MeetingTitle, in.DecisionsCount, in.TodosCount, in.RisksCount)
	subject := NotificationSubject(in.MeetingTitle)

	ref, err := resilience.RetryWithBackoff(ctx, func(ctx context.Context) (*graph.MessageRef, error) {
		return resilience.Execute(ctx, e.breaker, func(ctx context.Context) (*graph.MessageRef, error) {
			return e.client.SendMessage(ctx, *channel, body, subject)
		})
	}, e.retry, "notify", e.retryOpts...)
	if err != nil {
		return e.fail(span, entities.ActionNotify, fmt.Errorf("failed to send Teams notification: %w", err))
	}

	span.SetStatus(codes.Ok, "")
	return entities.ActionResult{
		Type:    entities.ActionNotify,
		Success: true,
		Details: entities.MessageDetails{MessageID: ref.ID, ChannelID: channel.ChannelID},
	}
}

// ExecuteAll runs every item sequentially; see executeAll
func (e *GraphExecutor) ExecuteAll(ctx context.Context, in BatchInput) []entities.ActionResult {
	results := executeAll(ctx, e, in, e.metrics)
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	e.logger.Info("🧾 Actions executed",
		zap.Int("total", len(results)),
		zap.Int("succeeded", succeeded),
	)
	return results
}

func (e *GraphExecutor) fail(span trace.Span, t entities.ActionType, err error) entities.ActionResult {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.logger.Warn("❌ Action failed", zap.String("type", string(t)), zap.Error(err))
	return failed(t, err)
}
