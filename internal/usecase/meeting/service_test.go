package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/usecase/actions"
	"github.com/johnquangdev/meeting-agent/internal/usecase/extraction"
	"github.com/johnquangdev/meeting-agent/pkg/pii"
	"github.com/johnquangdev/meeting-agent/pkg/validator"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeExtractor struct {
	result *entities.ExtractionResult
	err    error
	inputs []extraction.ExtractInput
}

func (f *fakeExtractor) Extract(_ context.Context, in extraction.ExtractInput) (*entities.ExtractionResult, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakePublisher struct {
	sent []entities.SummaryNotification
	err  error
}

func (f *fakePublisher) PublishSummary(_ context.Context, n entities.SummaryNotification) error {
	f.sent = append(f.sent, n)
	return f.err
}

func sampleResult() *entities.ExtractionResult {
	r := &entities.ExtractionResult{
		ExecutiveSummary: entities.ExecutiveSummary{Progress: "On track"},
		Decisions:        []entities.Decision{{Text: "Ship on Friday", Confidence: 0.9}},
		Todos: []entities.Todo{
			{Text: "Prepare release notes", Owner: "Alice", Confidence: 0.8},
			{Text: "Tag build", DueDate: "2025-03-14", Confidence: 0.7},
		},
		Risks: []entities.Risk{{Text: "QA capacity", Severity: entities.SeverityHigh, Confidence: 0.6}},
	}
	r.Normalize()
	return r
}

type fixture struct {
	svc       *Service
	extractor *fakeExtractor
	executor  *actions.RecordingExecutor
	publisher *fakePublisher
	spans     *tracetest.SpanRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	f := &fixture{
		extractor: &fakeExtractor{result: sampleResult()},
		executor:  actions.NewRecordingExecutor(nil, nil),
		publisher: &fakePublisher{},
		spans:     spans,
	}
	f.svc = NewService(f.extractor, f.executor, validator.New(), nil,
		WithPublisher(f.publisher),
		WithTracer(tp.Tracer("test")),
		WithClock(func() time.Time { return fixedNow }),
	)
	return f
}

func TestProcess_DraftsWhenNotApproved(t *testing.T) {
	f := newFixture(t)
	req := entities.NewExtractionRequest("Sync", "Alice: ship by Friday.")

	resp, err := f.svc.Process(context.Background(), &req)
	require.NoError(t, err)

	require.Len(t, resp.DraftActions, 3)
	assert.Equal(t, entities.ActionCreateTask, resp.DraftActions[0].Type)
	assert.Equal(t, entities.ActionCreateTask, resp.DraftActions[1].Type)
	assert.Equal(t, entities.ActionCreateRisk, resp.DraftActions[2].Type)
	assert.Nil(t, resp.ExecutionResults)
	assert.Empty(t, f.executor.Calls())

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "executionResults")
}

func TestProcess_EnrichesDueDates(t *testing.T) {
	f := newFixture(t)
	req := entities.NewExtractionRequest("Sync", "transcript")
	req.Policy.DefaultDueDays = 3

	resp, err := f.svc.Process(context.Background(), &req)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-13", resp.Todos[0].DueDate)
	assert.Equal(t, "2025-03-14", resp.Todos[1].DueDate)
	assert.Equal(t, 3, f.extractor.inputs[0].DefaultDueDays)

	payload := resp.DraftActions[0].Payload.(entities.CreateTaskPayload)
	assert.Equal(t, "2025-03-13", payload.DueDate)
}

func TestProcess_ApprovedExecutesActions(t *testing.T) {
	f := newFixture(t)
	req := entities.NewExtractionRequest("Sync", "Alice: ship by Friday.")
	req.Approve = true

	resp, err := f.svc.Process(context.Background(), &req)
	require.NoError(t, err)

	assert.Empty(t, resp.DraftActions)
	assert.NotNil(t, resp.DraftActions)
	require.Len(t, resp.ExecutionResults, len(resp.Todos)+len(resp.Risks))
	assert.Equal(t, 3, resp.SucceededCount())
	assert.Empty(t, f.publisher.sent)
}

func TestProcess_ApprovedWithNotify(t *testing.T) {
	f := newFixture(t)
	req := entities.NewExtractionRequest("Sync", "transcript")
	req.Approve = true
	req.Policy.AllowAutoNotify = true
	req.Policy.NotifyChannel = &entities.ChannelRef{TeamID: "team", ChannelID: "chan"}

	resp, err := f.svc.Process(context.Background(), &req)
	require.NoError(t, err)
	require.Len(t, resp.ExecutionResults, 4)
	assert.Equal(t, entities.ActionNotify, resp.ExecutionResults[3].Type)

	calls := f.executor.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "chan", calls[3].Notify.Channel.ChannelID)
	assert.Equal(t, 1, calls[3].Notify.DecisionsCount)

	require.Len(t, f.publisher.sent, 1)
	assert.Equal(t, entities.PriorityHigh, f.publisher.sent[0].Priority)
	assert.Equal(t, resp.TraceID, f.publisher.sent[0].TraceID)
}

func TestProcess_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("nats down")
	req := entities.NewExtractionRequest("Sync", "transcript")
	req.Approve = true
	req.Policy.AllowAutoNotify = true

	resp, err := f.svc.Process(context.Background(), &req)
	require.NoError(t, err)
	assert.Len(t, resp.ExecutionResults, 4)
}

func TestProcess_TraceIDMatchesSpan(t *testing.T) {
	f := newFixture(t)
	req := entities.NewExtractionRequest("Sync", "transcript")

	resp, err := f.svc.Process(context.Background(), &req)
	require.NoError(t, err)

	ended := f.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "meeting.process", ended[0].Name())
	assert.Equal(t, ended[0].SpanContext().TraceID().String(), resp.TraceID)
}

func TestProcess_ExtractionFailure(t *testing.T) {
	f := newFixture(t)
	f.extractor.err = apperrors.ErrExtractionFailed(errors.New("boom"))
	req := entities.NewExtractionRequest("Sync", "transcript")
	req.Approve = true

	_, err := f.svc.Process(context.Background(), &req)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrorCode_EXTRACTION_FAILED))
	assert.Empty(t, f.executor.Calls())
}

func TestHandleDirect(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.HandleDirect(context.Background(), []byte(`{"meetingTitle":"Sync","meetingTranscript":"Alice: ship by Friday.","approve":true}`))
	require.NoError(t, err)
	assert.Len(t, resp.ExecutionResults, 3)

	_, err = f.svc.HandleDirect(context.Background(), []byte(`{"meetingTitle":""}`))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrorCode_VALIDATION))
	assert.Len(t, f.extractor.inputs, 1)
}

func TestHandleDirect_LogsRejectedBodyRedacted(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	svc := NewService(&fakeExtractor{result: sampleResult()}, actions.NewRecordingExecutor(nil, nil), validator.New(), zap.New(core),
		WithPIIFilter(pii.NewFilter(true)),
	)

	_, err := svc.HandleDirect(context.Background(),
		[]byte(`{"meetingTitle":"","meetingTranscript":"Alice: the launch code is 1234","policy":{"token":"abc"}}`))
	require.Error(t, err)

	entries := logs.FilterMessage("🔍 Direct request rejected").All()
	require.Len(t, entries, 1)
	body, ok := entries[0].ContextMap()["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "[REDACTED]", body["meetingTranscript"])
	assert.Equal(t, "[REDACTED]", body["policy"].(map[string]any)["token"])
	assert.Equal(t, "", body["meetingTitle"])
}

func inboundActivity(text string) *entities.Activity {
	return &entities.Activity{
		Type:         entities.ActivityTypeMessage,
		ID:           "act-1",
		From:         &entities.ChannelAccount{ID: "user"},
		Recipient:    &entities.ChannelAccount{ID: "bot"},
		Conversation: &entities.ConversationAccount{ID: "conv-1"},
		Text:         text,
	}
}

func TestHandleActivity_Success(t *testing.T) {
	f := newFixture(t)

	reply := f.svc.HandleActivity(context.Background(), inboundActivity(`{"meetingTitle":"Sync","meetingTranscript":"hi"}`))

	assert.Equal(t, entities.ActivityTypeMessage, reply.Type)
	assert.Equal(t, "bot", reply.From.ID)
	assert.Equal(t, "user", reply.Recipient.ID)
	assert.Equal(t, "conv-1", reply.Conversation.ID)
	assert.Equal(t, "act-1", reply.ReplyToID)
	assert.True(t, strings.HasPrefix(reply.Text, "# 📋 Meeting Summary"))

	require.Len(t, reply.Attachments, 2)
	assert.Equal(t, entities.ContentTypeJSON, reply.Attachments[0].ContentType)
	payload := reply.Attachments[0].Content.(*entities.ResponsePayload)
	assert.Contains(t, reply.Text, payload.TraceID)
	assert.Equal(t, entities.ContentTypeAdaptiveCard, reply.Attachments[1].ContentType)
}

func TestHandleActivity_BareTranscript(t *testing.T) {
	f := newFixture(t)

	reply := f.svc.HandleActivity(context.Background(), inboundActivity("Alice: ship by Friday."))
	require.Len(t, reply.Attachments, 2)
	require.Len(t, f.extractor.inputs, 1)
	assert.Equal(t, UntitledMeeting, f.extractor.inputs[0].Title)
	assert.Empty(t, f.executor.Calls())
}

func TestHandleActivity_InvalidPayload(t *testing.T) {
	f := newFixture(t)

	reply := f.svc.HandleActivity(context.Background(), inboundActivity(""))
	assert.True(t, strings.HasPrefix(reply.Text, "Invalid request format: "), reply.Text)
	assert.Contains(t, reply.Text, "meetingTitle")
	assert.Empty(t, reply.Attachments)
	assert.Equal(t, "act-1", reply.ReplyToID)
	assert.Empty(t, f.extractor.inputs)
}

func TestHandleActivity_ProcessingError(t *testing.T) {
	f := newFixture(t)
	f.extractor.err = apperrors.ErrExtractionFailed(errors.New("boom"))

	reply := f.svc.HandleActivity(context.Background(), inboundActivity(`{"meetingTitle":"Sync","meetingTranscript":"hi"}`))
	assert.Equal(t, "Error: extraction failed", reply.Text)
	assert.Empty(t, reply.Attachments)
}
