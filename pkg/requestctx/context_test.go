package requestctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBegin_GeneratesTraceID(t *testing.T) {
	ctx := Begin(context.Background(), "", "req-1")

	_, err := uuid.Parse(GetTraceID(ctx))
	require.NoError(t, err)
	assert.Equal(t, "req-1", GetRequestID(ctx))

	_, ok := GetStartTime(ctx)
	assert.True(t, ok)
}

func TestBegin_KeepsGivenTraceID(t *testing.T) {
	ctx := Begin(context.Background(), "trace-abc", "")
	ctx = SetFormat(ctx, FormatActivity)

	meta := GetMetadata(ctx)
	assert.Equal(t, "trace-abc", meta.TraceID)
	assert.Equal(t, FormatActivity, meta.Format)
}

func TestCaller(t *testing.T) {
	_, ok := GetCaller(context.Background())
	assert.False(t, ok)

	ctx := WithCaller(context.Background(), &Caller{Subject: "sub", Scopes: []string{"Tasks.Write"}})
	caller, ok := GetCaller(ctx)
	require.True(t, ok)
	assert.Equal(t, "sub", caller.Subject)
}

func TestElapsedWithoutStart(t *testing.T) {
	assert.Zero(t, Elapsed(context.Background()))
}
