package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/usecase/extraction"
)

const responseSchemaURL = "https://meeting-agent.schemas.local/response_payload.schema.json"

func object(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"required":             required,
		"properties":           props,
		"additionalProperties": false,
	}
}

func draft(actionType string, payload map[string]any) map[string]any {
	return object([]string{"type", "payload"}, map[string]any{
		"type":    map[string]any{"const": actionType},
		"payload": payload,
	})
}

// responseSchema extends the extraction schema with the fields Process adds
func responseSchema() map[string]any {
	confidence := map[string]any{"type": "number", "minimum": 0, "maximum": 1}
	str := map[string]any{"type": "string"}
	count := map[string]any{"type": "integer", "minimum": 0}
	severity := map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}}

	s := extraction.Schema()
	s["required"] = []string{"executiveSummary", "decisions", "todos", "risks", "followUpQuestions", "draftActions", "traceId"}
	props := s["properties"].(map[string]any)
	props["traceId"] = map[string]any{"type": "string", "minLength": 1}
	props["draftActions"] = map[string]any{
		"type": "array",
		"items": map[string]any{"oneOf": []any{
			draft("createTask", object([]string{"text", "confidence"}, map[string]any{
				"text":       str,
				"owner":      str,
				"dueDate":    map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
				"confidence": confidence,
			})),
			draft("createRisk", object([]string{"text", "severity", "confidence"}, map[string]any{
				"text":       str,
				"severity":   severity,
				"owner":      str,
				"confidence": confidence,
			})),
			draft("notify", object([]string{"meetingTitle", "decisionsCount", "todosCount", "risksCount"}, map[string]any{
				"meetingTitle":   str,
				"decisionsCount": count,
				"todosCount":     count,
				"risksCount":     count,
			})),
		}},
	}
	props["executionResults"] = map[string]any{
		"type": "array",
		"items": object([]string{"type", "success"}, map[string]any{
			"type":    map[string]any{"enum": []string{"createTask", "createRisk", "notify"}},
			"success": map[string]any{"type": "boolean"},
			"details": map[string]any{"type": "object"},
			"error":   str,
		}),
	}
	return s
}

func compileResponseSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	raw, err := json.Marshal(responseSchema())
	require.NoError(t, err)

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	require.NoError(t, c.AddResource(responseSchemaURL, bytes.NewReader(raw)))
	schema, err := c.Compile(responseSchemaURL)
	require.NoError(t, err)
	return schema
}

func toDocument(t *testing.T, v any) any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var doc any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestProcess_ResponseMatchesSchema(t *testing.T) {
	schema := compileResponseSchema(t)

	tests := []struct {
		name    string
		approve bool
	}{
		{"drafts", false},
		{"executed", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := entities.NewExtractionRequest("Sync", "Alice: ship by Friday.")
			req.Approve = tt.approve
			req.Policy.AllowAutoNotify = true
			req.Policy.NotifyChannel = &entities.ChannelRef{TeamID: "team", ChannelID: "chan"}

			resp, err := f.svc.Process(context.Background(), &req)
			require.NoError(t, err)

			doc := toDocument(t, resp)
			require.NoError(t, schema.Validate(doc))

			m := doc.(map[string]any)
			if tt.approve {
				assert.Empty(t, m["draftActions"])
				assert.Len(t, m["executionResults"], 4)
			} else {
				assert.Len(t, m["draftActions"], 4)
				assert.NotContains(t, m, "executionResults")
			}
		})
	}
}

func TestResponseSchema_RejectsUnknownSeverity(t *testing.T) {
	schema := compileResponseSchema(t)
	f := newFixture(t)
	req := entities.NewExtractionRequest("Sync", "transcript")

	resp, err := f.svc.Process(context.Background(), &req)
	require.NoError(t, err)

	resp.Risks[0].Severity = "critical"
	assert.Error(t, schema.Validate(toDocument(t, resp)))

	resp.Risks[0].Severity = entities.SeverityHigh
	resp.DraftActions[2] = entities.NewCreateRiskDraft(entities.Risk{Text: "QA capacity", Severity: "critical", Confidence: 0.6})
	assert.Error(t, schema.Validate(toDocument(t, resp)))
}

func TestExtractionBoundary_RejectsUnknownSeverity(t *testing.T) {
	p, err := extraction.NewParser(nil)
	require.NoError(t, err)

	_, err = p.Parse(`{"executiveSummary":{"progress":"","keyRisks":[],"decisionsNeeded":[]},"decisions":[],"todos":[],
		"risks":[{"text":"QA capacity","severity":"critical","confidence":0.6}],"followUpQuestions":[]}`)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrorCode_EXTRACTION_INVALID_OUTPUT))
}
