package meeting

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"strings"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/pkg/validator"
)

// UntitledMeeting is used when an activity carries a bare transcript
const UntitledMeeting = "Untitled Meeting"

// Kind is the shape of an inbound body
type Kind int

const (
	KindDirect Kind = iota
	KindActivity
)

func (k Kind) String() string {
	if k == KindActivity {
		return "activity"
	}
	return "direct"
}

// Inbound is an inbound body resolved to exactly one shape. Activity is set
// only for KindActivity; Raw always holds the original body.
type Inbound struct {
	Kind     Kind
	Activity *entities.Activity
	Raw      []byte
}

// StructValidator validates decoded requests
type StructValidator interface {
	Validate(i interface{}) error
}

type envelopeProbe struct {
	Type         string          `json:"type"`
	ID           string          `json:"id"`
	Conversation json.RawMessage `json:"conversation"`
}

// Detect decides the shape of body once. A JSON object carrying a non-empty
// type, id and conversation is an activity envelope; anything else is a
// direct request.
func Detect(body []byte) (Inbound, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Inbound{Kind: KindDirect, Raw: body}, nil
	}

	var probe envelopeProbe
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return Inbound{}, apperrors.ErrInvalidPayload(err)
	}
	conv := bytes.TrimSpace(probe.Conversation)
	if probe.Type == "" || probe.ID == "" || len(conv) == 0 || bytes.Equal(conv, []byte("null")) {
		return Inbound{Kind: KindDirect, Raw: body}, nil
	}

	var activity entities.Activity
	if err := json.Unmarshal(trimmed, &activity); err != nil {
		return Inbound{}, apperrors.ErrInvalidPayload(err)
	}
	return Inbound{Kind: KindActivity, Activity: &activity, Raw: body}, nil
}

// UnwrapActivity extracts the request JSON carried in an activity's text.
// Text that is not JSON is treated as a bare transcript of an untitled,
// unapproved meeting. Empty text yields an empty object.
func UnwrapActivity(a *entities.Activity) []byte {
	text := a.Text
	if strings.TrimSpace(text) == "" {
		return []byte("{}")
	}
	if json.Valid([]byte(text)) {
		return []byte(text)
	}

	raw, _ := json.Marshal(map[string]any{
		"meetingTitle":      UntitledMeeting,
		"meetingTranscript": text,
		"approve":           false,
	})
	return raw
}

// DecodeRequest decodes raw into a request with defaults applied field by
// field, then validates it
func DecodeRequest(raw []byte, v StructValidator) (*entities.ExtractionRequest, error) {
	var req entities.ExtractionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stdErrors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			return nil, apperrors.ErrValidation(map[string]string{field: "type=" + typeErr.Type.String()})
		}
		return nil, apperrors.ErrInvalidPayload(err)
	}

	if err := v.Validate(&req); err != nil {
		if fields := validator.FieldErrors(err); len(fields) > 0 {
			return nil, apperrors.ErrValidation(fields)
		}
		return nil, apperrors.ErrInvalidPayload(err)
	}
	return &req, nil
}
