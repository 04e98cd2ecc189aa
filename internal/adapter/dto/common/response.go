package common

import (
	"time"

	"github.com/johnquangdev/meeting-agent/pkg/resilience"
)

// ErrorResponse is the JSON body of every failed direct request
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
	TraceID string            `json:"traceId"`
}

// HealthResponse reports liveness plus the state of every circuit breaker
type HealthResponse struct {
	Status      string                    `json:"status"`
	Service     string                    `json:"service"`
	Environment string                    `json:"environment"`
	Timestamp   time.Time                 `json:"timestamp"`
	Breakers    []resilience.BreakerStats `json:"breakers"`
}
