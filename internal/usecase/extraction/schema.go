package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaName is the name sent with the structured output request
const SchemaName = "extraction_result"

const schemaURL = "https://meeting-agent.schemas.local/extraction_result.schema.json"

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func confidence() map[string]any {
	return map[string]any{"type": "number", "minimum": 0, "maximum": 1}
}

// Schema returns the JSON Schema every model response must satisfy
func Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"executiveSummary", "decisions", "todos", "risks", "followUpQuestions"},
		"properties": map[string]any{
			"executiveSummary": map[string]any{
				"type":     "object",
				"required": []string{"progress", "keyRisks", "decisionsNeeded"},
				"properties": map[string]any{
					"progress":        map[string]any{"type": "string"},
					"keyRisks":        stringArray(),
					"decisionsNeeded": stringArray(),
				},
				"additionalProperties": false,
			},
			"decisions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"text", "confidence"},
					"properties": map[string]any{
						"text":       map[string]any{"type": "string"},
						"confidence": confidence(),
					},
					"additionalProperties": false,
				},
			},
			"todos": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"text", "confidence"},
					"properties": map[string]any{
						"text":       map[string]any{"type": "string"},
						"owner":      map[string]any{"type": "string"},
						"dueDate":    map[string]any{"type": "string"},
						"confidence": confidence(),
					},
					"additionalProperties": false,
				},
			},
			"risks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"text", "severity", "confidence"},
					"properties": map[string]any{
						"text":       map[string]any{"type": "string"},
						"severity":   map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
						"owner":      map[string]any{"type": "string"},
						"confidence": confidence(),
					},
					"additionalProperties": false,
				},
			},
			"followUpQuestions": stringArray(),
		},
		"additionalProperties": false,
	}
}

// compileSchema compiles Schema for local validation of model output
func compileSchema() (*jsonschema.Schema, error) {
	raw, err := json.Marshal(Schema())
	if err != nil {
		return nil, fmt.Errorf("extraction schema encode failed: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("extraction schema load failed: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("extraction schema compile failed: %w", err)
	}
	return compiled, nil
}
