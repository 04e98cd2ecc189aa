package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/pkg/config"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(config.GraphConfig{
		BaseURL:   srv.URL + "/v1.0/",
		PlanID:    "plan-1",
		BucketID:  "bucket-1",
		RateLimit: 100,
		RateBurst: 10,
	}, srv.Client(), zap.NewNop())
}

func TestCreateTask(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0/planner/tasks", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"task-9","title":"Write notes","webLink":"https://tasks/9"}`))
	}))
	defer srv.Close()

	owner := "9f1c2d3e-4b5a-4c6d-8e7f-0a1b2c3d4e5f"
	ref, err := newTestClient(srv).CreateTask(context.Background(), TaskInput{Title: "Write notes", DueDate: "2026-02-04", Assignee: owner})
	require.NoError(t, err)

	assert.Equal(t, &TaskRef{ID: "task-9", Title: "Write notes", URL: "https://tasks/9"}, ref)
	assert.Equal(t, "plan-1", got["planId"])
	assert.Equal(t, "bucket-1", got["bucketId"])
	assert.Equal(t, "2026-02-04T23:59:59Z", got["dueDateTime"])

	assignments, ok := got["assignments"].(map[string]any)
	require.True(t, ok, "assignments missing from request body")
	require.Contains(t, assignments, owner)
	assignment := assignments[owner].(map[string]any)
	assert.Equal(t, "#microsoft.graph.plannerAssignment", assignment["@odata.type"])
	assert.Equal(t, " !", assignment["orderHint"])
}

func TestCreateTask_DisplayNameOwnerNotAssigned(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"t"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateTask(context.Background(), TaskInput{Title: "x", Assignee: "Alice"})
	require.NoError(t, err)
	assert.NotContains(t, got, "assignments")
}

func TestCreateTask_OmitsEmptyDueDate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"t"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateTask(context.Background(), TaskInput{Title: "x"})
	require.NoError(t, err)
	assert.NotContains(t, got, "dueDateTime")
	assert.NotContains(t, got, "assignments")
}

func TestCreateTask_UndecodableSuccessIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`<html><body>Created</body></html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateTask(context.Background(), TaskInput{Title: "x"})
	require.Error(t, err)
	assert.False(t, apperrors.IsRetryable(err))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrorCode_DEPENDENCY_REJECTED))
}

func TestSendMessage(t *testing.T) {
	var got channelMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0/teams/team-1/channels/19:abc@thread/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer srv.Close()

	ref, err := newTestClient(srv).SendMessage(context.Background(),
		entities.ChannelRef{TeamID: "team-1", ChannelID: "19:abc@thread"}, "<p>hi</p>", "Meeting Summary: Sync")
	require.NoError(t, err)

	assert.Equal(t, "msg-1", ref.ID)
	assert.Equal(t, "html", got.Body.ContentType)
	assert.Equal(t, "<p>hi</p>", got.Body.Content)
	assert.Equal(t, "Meeting Summary: Sync", got.Subject)
}

func TestPost_StatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusForbidden, false},
		{http.StatusNotFound, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient(srv).CreateTask(context.Background(), TaskInput{Title: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.retryable, apperrors.IsRetryable(err))
		})
	}
}
