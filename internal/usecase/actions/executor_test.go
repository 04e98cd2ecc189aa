package actions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/external/graph"
	"github.com/johnquangdev/meeting-agent/pkg/config"
	"github.com/johnquangdev/meeting-agent/pkg/resilience"
)

type fakeTaskClient struct {
	mu       sync.Mutex
	titles    []string
	assignees map[string]string
	channels  []entities.ChannelRef
	failOn    map[string]error
	calls     map[string]int
}

func newFakeTaskClient() *fakeTaskClient {
	return &fakeTaskClient{failOn: map[string]error{}, calls: map[string]int{}, assignees: map[string]string{}}
}

func (f *fakeTaskClient) CreateTask(_ context.Context, in graph.TaskInput) (*graph.TaskRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[in.Title]++
	if err, ok := f.failOn[in.Title]; ok {
		return nil, err
	}
	f.titles = append(f.titles, in.Title)
	f.assignees[in.Title] = in.Assignee
	return &graph.TaskRef{ID: "id-" + in.Title, Title: in.Title}, nil
}

func (f *fakeTaskClient) SendMessage(_ context.Context, ch entities.ChannelRef, _, _ string) (*graph.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, ch)
	return &graph.MessageRef{ID: "msg-1"}, nil
}

func newGraphExecutor(client TaskClient, opts ...GraphOption) *GraphExecutor {
	fast := resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiplier: 2}
	opts = append([]GraphOption{WithRetry(fast)}, opts...)
	return NewGraphExecutor(client, nil, zap.NewNop(), opts...)
}

func batch() BatchInput {
	return BatchInput{
		Todos: []entities.Todo{
			{Text: "todo-a", Owner: "Alice", DueDate: "2026-02-04"},
			{Text: "todo-b"},
		},
		Risks:          []entities.Risk{{Text: "vendor slip", Severity: entities.SeverityHigh, Owner: "Bob"}},
		MeetingTitle:   "Sync",
		DecisionsCount: 2,
		ShouldNotify:   true,
		Channel:        &entities.ChannelRef{TeamID: "team", ChannelID: "chan"},
	}
}

func TestGraphExecutor_ExecuteAllOrderAndLength(t *testing.T) {
	client := newFakeTaskClient()
	e := newGraphExecutor(client)

	results := e.ExecuteAll(context.Background(), batch())

	require.Len(t, results, 4)
	assert.Equal(t, entities.ActionCreateTask, results[0].Type)
	assert.Equal(t, entities.ActionCreateTask, results[1].Type)
	assert.Equal(t, entities.ActionCreateRisk, results[2].Type)
	assert.Equal(t, entities.ActionNotify, results[3].Type)
	for _, r := range results {
		assert.True(t, r.Success, r.Error)
	}
	assert.Equal(t, []string{"todo-a", "todo-b", "⚠️ RISK (HIGH): vendor slip"}, client.titles)
	assert.Equal(t, "Alice", client.assignees["todo-a"])
	assert.Empty(t, client.assignees["todo-b"])
	assert.Equal(t, "Bob", client.assignees["⚠️ RISK (HIGH): vendor slip"])
	assert.Equal(t, entities.MessageDetails{MessageID: "msg-1", ChannelID: "chan"}, results[3].Details)
}

func TestGraphExecutor_PartialFailureDoesNotAbortBatch(t *testing.T) {
	client := newFakeTaskClient()
	client.failOn["todo-a"] = apperrors.ErrDependencyTransient("microsoft-graph", errors.New("status 503"))
	e := newGraphExecutor(client)

	results := e.ExecuteAll(context.Background(), batch())

	require.Len(t, results, 4)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "failed to create Planner task")
	assert.Equal(t, 3, client.calls["todo-a"])
	assert.True(t, results[1].Success)
	assert.True(t, results[2].Success)
	assert.True(t, results[3].Success)
}

func TestGraphExecutor_TerminalFailureNotRetried(t *testing.T) {
	client := newFakeTaskClient()
	client.failOn["todo-b"] = apperrors.ErrDependencyTerminal("microsoft-graph", errors.New("status 403"))
	e := newGraphExecutor(client)

	results := e.ExecuteAll(context.Background(), batch())

	assert.False(t, results[1].Success)
	assert.Equal(t, 1, client.calls["todo-b"])
}

func TestGraphExecutor_UndecodableCreateResponseSentOnce(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`<html>Created</html>`))
	}))
	defer srv.Close()

	client := graph.NewClient(config.GraphConfig{BaseURL: srv.URL, PlanID: "p", BucketID: "b"}, srv.Client(), zap.NewNop())
	e := newGraphExecutor(client)

	r := e.ExecuteCreateTask(context.Background(), entities.Todo{Text: "write notes"})

	assert.False(t, r.Success)
	assert.Contains(t, r.Error, "failed to create Planner task")
	assert.Equal(t, int32(1), posts.Load())
}

func TestGraphExecutor_NotifyWithoutChannelIsPreconditionFailure(t *testing.T) {
	client := newFakeTaskClient()
	e := newGraphExecutor(client)

	in := batch()
	in.Channel = nil
	results := e.ExecuteAll(context.Background(), in)

	require.Len(t, results, 4)
	assert.False(t, results[3].Success)
	assert.Contains(t, results[3].Error, "channelId and teamId are required")
	assert.Empty(t, client.channels)
}

func TestGraphExecutor_NotifyFallsBackToDefaultChannel(t *testing.T) {
	client := newFakeTaskClient()
	e := newGraphExecutor(client, WithDefaultChannel(entities.ChannelRef{TeamID: "t0", ChannelID: "c0"}))

	r := e.ExecuteNotify(context.Background(), NotifyInput{MeetingTitle: "Sync"})

	assert.True(t, r.Success)
	assert.Equal(t, []entities.ChannelRef{{TeamID: "t0", ChannelID: "c0"}}, client.channels)
}

func TestGraphExecutor_NoNotifyWhenNotRequested(t *testing.T) {
	e := newGraphExecutor(newFakeTaskClient())
	in := batch()
	in.ShouldNotify = false

	assert.Len(t, e.ExecuteAll(context.Background(), in), 3)
}

func TestRecordingExecutor(t *testing.T) {
	e := NewRecordingExecutor(zap.NewNop(), nil)

	results := e.ExecuteAll(context.Background(), batch())

	require.Len(t, results, 4)
	for _, r := range results {
		assert.True(t, r.Success)
	}
	calls := e.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "todo-a", calls[0].Todo.Text)
	assert.Equal(t, entities.ActionNotify, calls[3].Type)
	assert.Equal(t, 2, calls[3].Notify.TodosCount)
	assert.Equal(t, 1, calls[3].Notify.RisksCount)
}

func TestFormatTeamsMessage(t *testing.T) {
	got := FormatTeamsMessage("Q&A", 1, 2, 3)

	assert.Contains(t, got, "<h2>📝 Meeting Summary: Q&amp;A</h2>")
	assert.Contains(t, got, "<li><strong>Decisions:</strong> 1</li>")
	assert.Contains(t, got, "<li><strong>Action Items:</strong> 2</li>")
	assert.Contains(t, got, "<li><strong>Risks:</strong> 3</li>")
	assert.Equal(t, "Meeting Summary: Q&A", NotificationSubject("Q&A"))
}

func TestRiskTaskTitle(t *testing.T) {
	assert.Equal(t, "⚠️ RISK (MEDIUM): db load", RiskTaskTitle(entities.Risk{Text: "db load", Severity: entities.SeverityMedium}))
}
