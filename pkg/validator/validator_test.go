package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

func TestValidate_RejectsUnknownSeverity(t *testing.T) {
	v := New()
	result := entities.ExtractionResult{
		Risks: []entities.Risk{
			{Text: "ok", Severity: entities.SeverityHigh, Confidence: 0.4},
			{Text: "bad", Severity: "critical", Confidence: 0.4},
		},
	}

	err := v.Validate(result)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"risks[1].severity": "severity"}, FieldErrors(err))
}

func TestValidate_AcceptsEverySeverity(t *testing.T) {
	v := New()
	for _, s := range []entities.Severity{entities.SeverityLow, entities.SeverityMedium, entities.SeverityHigh} {
		r := entities.Risk{Text: "x", Severity: s, Confidence: 1}
		assert.NoError(t, v.Validate(r), s)
	}
}

func TestValidate_RequestFields(t *testing.T) {
	v := New()
	req := entities.NewExtractionRequest("", "transcript")
	req.Policy.DefaultDueDays = 0

	err := v.Validate(req)
	require.Error(t, err)
	fields := FieldErrors(err)
	assert.Equal(t, "required", fields["meetingTitle"])
	assert.Equal(t, "gt=0", fields["policy.defaultDueDays"])
}

func TestValidate_ConfidenceBounds(t *testing.T) {
	v := New()
	err := v.Validate(entities.Decision{Text: "d", Confidence: 1.2})
	require.Error(t, err)
	assert.Equal(t, "lte=1", FieldErrors(err)["confidence"])
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, FieldErrors(assert.AnError))
}
