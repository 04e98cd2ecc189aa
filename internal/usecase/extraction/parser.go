package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/pkg/validator"
)

// StructValidator checks the validate tags of a decoded result
type StructValidator interface {
	Validate(i interface{}) error
}

// Parser turns raw model content into an ExtractionResult
type Parser struct {
	schema   *jsonschema.Schema
	validate StructValidator
}

// NewParser creates a new Parser instance. A nil validator gets the
// default tag validator.
func NewParser(v StructValidator) (*Parser, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = validator.New()
	}
	return &Parser{schema: schema, validate: v}, nil
}

// Parse validates content against the extraction schema and decodes it.
// Every failure is a retryable invalid-output error.
func (p *Parser) Parse(content string) (*entities.ExtractionResult, error) {
	content = extractJSON(content)
	if content == "" {
		return nil, apperrors.ErrInvalidModelOutput(entities.ErrEmptyModelOutput)
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, apperrors.ErrInvalidModelOutput(fmt.Errorf("failed to parse JSON response: %w", err))
	}
	if err := p.schema.Validate(doc); err != nil {
		return nil, apperrors.ErrInvalidModelOutput(fmt.Errorf("schema validation failed: %w", err))
	}

	var result entities.ExtractionResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, apperrors.ErrInvalidModelOutput(fmt.Errorf("failed to decode extraction: %w", err))
	}
	if err := p.validate.Validate(&result); err != nil {
		return nil, apperrors.ErrInvalidModelOutput(fmt.Errorf("field validation failed: %w", err))
	}
	result.Normalize()
	return &result, nil
}

// extractJSON strips a markdown code fence around the payload, if any
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
