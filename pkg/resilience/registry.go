package resilience

import "go.uber.org/zap"

// Breakers holds one breaker per downstream dependency. It is built once at
// startup and shared by every request.
type Breakers struct {
	Extraction *CircuitBreaker
	Actions    *CircuitBreaker
}

// NewBreakers builds the registry
func NewBreakers(extraction, actions BreakerConfig, logger *zap.Logger, opts ...BreakerOption) *Breakers {
	if extraction.Name == "" {
		extraction.Name = "extraction"
	}
	if actions.Name == "" {
		actions.Name = "actions"
	}
	return &Breakers{
		Extraction: NewCircuitBreaker(extraction, logger, opts...),
		Actions:    NewCircuitBreaker(actions, logger, opts...),
	}
}

// Stats snapshots every breaker in a stable order
func (r *Breakers) Stats() []BreakerStats {
	if r == nil {
		return nil
	}
	return []BreakerStats{r.Extraction.Stats(), r.Actions.Stats()}
}
