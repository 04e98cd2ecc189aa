package actions

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/metrics"
)

// Call is one invocation seen by a RecordingExecutor
type Call struct {
	Type   entities.ActionType
	Todo   *entities.Todo
	Risk   *entities.Risk
	Notify *NotifyInput
}

// RecordingExecutor performs no side effects. It records every call and
// reports success with synthetic ids. It serves disconnected operation when
// Graph credentials are not configured.
type RecordingExecutor struct {
	mu      sync.Mutex
	calls   []Call
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewRecordingExecutor creates a RecordingExecutor
func NewRecordingExecutor(logger *zap.Logger, m *metrics.Collector) *RecordingExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingExecutor{logger: logger, metrics: m}
}

func (e *RecordingExecutor) add(c Call) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, c)
}

// Calls returns a copy of the recorded calls in order
func (e *RecordingExecutor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

func (e *RecordingExecutor) ExecuteCreateTask(_ context.Context, todo entities.Todo) entities.ActionResult {
	e.add(Call{Type: entities.ActionCreateTask, Todo: &todo})
	e.logger.Info("📝 [RECORDING] Creating task", zap.String("title", todo.Text))
	return entities.ActionResult{
		Type:    entities.ActionCreateTask,
		Success: true,
		Details: map[string]string{"mockTaskId": "mock-task-" + uuid.NewString(), "taskTitle": todo.Text},
	}
}

func (e *RecordingExecutor) ExecuteCreateRisk(_ context.Context, risk entities.Risk) entities.ActionResult {
	e.add(Call{Type: entities.ActionCreateRisk, Risk: &risk})
	e.logger.Info("⚠️ [RECORDING] Creating risk",
		zap.String("text", risk.Text),
		zap.String("severity", string(risk.Severity)),
	)
	return entities.ActionResult{
		Type:    entities.ActionCreateRisk,
		Success: true,
		Details: map[string]string{"mockRiskId": "mock-risk-" + uuid.NewString(), "riskText": risk.Text},
	}
}

func (e *RecordingExecutor) ExecuteNotify(_ context.Context, in NotifyInput) entities.ActionResult {
	e.add(Call{Type: entities.ActionNotify, Notify: &in})
	e.logger.Info("📣 [RECORDING] Sending notification",
		zap.String("meeting_title", in.MeetingTitle),
		zap.Int("decisions", in.DecisionsCount),
		zap.Int("todos", in.TodosCount),
		zap.Int("risks", in.RisksCount),
	)
	channelID := "mock-channel"
	if in.Channel.Valid() {
		channelID = in.Channel.ChannelID
	}
	return entities.ActionResult{
		Type:    entities.ActionNotify,
		Success: true,
		Details: map[string]string{"mockMessageId": "mock-" + uuid.NewString(), "mockChannelId": channelID},
	}
}

func (e *RecordingExecutor) ExecuteAll(ctx context.Context, in BatchInput) []entities.ActionResult {
	return executeAll(ctx, e, in, e.metrics)
}
