package meeting

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/pkg/validator"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Kind
	}{
		{"direct request", `{"meetingTitle":"Sync","meetingTranscript":"hi"}`, KindDirect},
		{"activity", `{"type":"message","id":"a1","conversation":{"id":"c1"},"text":"hi"}`, KindActivity},
		{"missing id", `{"type":"message","conversation":{"id":"c1"}}`, KindDirect},
		{"null conversation", `{"type":"message","id":"a1","conversation":null}`, KindDirect},
		{"not an object", `[1,2,3]`, KindDirect},
		{"empty body", ``, KindDirect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Detect([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, in.Kind)
			assert.Equal(t, tt.want == KindActivity, in.Activity != nil)
		})
	}
}

func TestDetect_MalformedObject(t *testing.T) {
	_, err := Detect([]byte(`{"type":`))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrorCode_INVALID_PAYLOAD))
}

func TestUnwrapActivity(t *testing.T) {
	t.Run("json text passes through", func(t *testing.T) {
		raw := UnwrapActivity(&entities.Activity{Text: `{"meetingTitle":"Sync"}`})
		assert.JSONEq(t, `{"meetingTitle":"Sync"}`, string(raw))
	})

	t.Run("bare transcript", func(t *testing.T) {
		raw := UnwrapActivity(&entities.Activity{Text: "Alice: ship it"})
		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, UntitledMeeting, got["meetingTitle"])
		assert.Equal(t, "Alice: ship it", got["meetingTranscript"])
		assert.Equal(t, false, got["approve"])
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Equal(t, "{}", string(UnwrapActivity(&entities.Activity{})))
	})
}

func TestDecodeRequest(t *testing.T) {
	v := validator.New()

	t.Run("defaults applied field by field", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"meetingTitle":"Sync","meetingTranscript":"hi","policy":{"allowAutoNotify":true}}`), v)
		require.NoError(t, err)
		assert.Equal(t, []string{}, req.Attendees)
		assert.Equal(t, entities.DefaultOutputLanguage, req.OutputLanguage)
		assert.Equal(t, entities.DefaultDueDays, req.Policy.DefaultDueDays)
		assert.True(t, req.Policy.RequireApproval)
		assert.True(t, req.Policy.AllowAutoNotify)
		assert.False(t, req.Approve)
	})

	t.Run("missing transcript", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"meetingTitle":"Sync"}`), v)
		var appErr apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrorCode_VALIDATION, appErr.Code)
		assert.Equal(t, "required", appErr.Details["meetingTranscript"])
	})

	t.Run("non positive due days", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"meetingTitle":"Sync","meetingTranscript":"hi","policy":{"defaultDueDays":0}}`), v)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrorCode_VALIDATION))
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"meetingTitle":"Sync","meetingTranscript":"hi","approve":"yes"}`), v)
		var appErr apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrorCode_VALIDATION, appErr.Code)
		assert.Contains(t, appErr.Details, "approve")
	})

	t.Run("incomplete notify channel", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"meetingTitle":"Sync","meetingTranscript":"hi","policy":{"notifyChannel":{"teamId":"t"}}}`), v)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrorCode_VALIDATION))
	})
}
