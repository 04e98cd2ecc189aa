package evaluation

import "github.com/johnquangdev/meeting-agent/internal/domain/entities"

// EvaluateRequest runs one meeting request against several models. An empty
// Models list uses the configured defaults.
type EvaluateRequest struct {
	Request entities.ExtractionRequest `json:"request"`
	Models  []string                   `json:"models,omitempty" validate:"omitempty,dive,required"`
}
