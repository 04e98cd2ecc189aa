package errors

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", stdErrors.New("connection reset"), true},
		{"transient", ErrDependencyTransient("llm", stdErrors.New("503")), true},
		{"timeout", ErrDependencyTimeout("llm", time.Second), true},
		{"wrapped transient", fmt.Errorf("call: %w", ErrDependencyTransient("graph", nil)), true},
		{"validation", ErrValidation(map[string]string{"meetingTitle": "required"}), false},
		{"circuit open", ErrCircuitOpen("extraction", time.Now()), false},
		{"precondition", ErrPreconditionFailed("channel reference required"), false},
		{"terminal 4xx", ErrDependencyTerminal("graph", stdErrors.New("400")), false},
		{"cancelled", context.Canceled, false},
		{"extraction failed wraps transient", ErrExtractionFailed(ErrInvalidModelOutput(nil)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRetryable(tc.err))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindCircuitOpen, KindOf(ErrCircuitOpen("actions", time.Now())))
	assert.Equal(t, KindValidation, KindOf(ErrInvalidPayload(nil)))
	assert.Equal(t, KindInternal, KindOf(stdErrors.New("boom")))
}

func TestWithDetailDoesNotShareMap(t *testing.T) {
	base := ErrInvalidArgument("bad")
	a := base.WithDetail("field", "a")
	b := a.WithDetail("field", "b")

	assert.Nil(t, base.Details)
	assert.Equal(t, "a", a.Details["field"])
	assert.Equal(t, "b", b.Details["field"])
}

func TestErrorCodeMarshalsByName(t *testing.T) {
	out, err := json.Marshal(map[string]any{"code": ErrorCode_CIRCUIT_OPEN})
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"CIRCUIT_OPEN"}`, string(out))
	assert.True(t, HasCode(fmt.Errorf("x: %w", ErrCircuitOpen("a", time.Now())), ErrorCode_CIRCUIT_OPEN))
}
