package entities

import (
	"fmt"
	"time"
)

// Notification priorities
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// SummaryNotification is the event published after a meeting was processed
type SummaryNotification struct {
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Priority  string         `json:"priority"`
	TraceID   string         `json:"traceId"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewSummaryNotification builds the notification for one processed meeting.
// Priority is high when any risk was found.
func NewSummaryNotification(meetingTitle string, decisions, todos, risks int, traceID string, now time.Time) SummaryNotification {
	priority := PriorityNormal
	if risks > 0 {
		priority = PriorityHigh
	}
	return SummaryNotification{
		Title:    "Meeting Summary: " + meetingTitle,
		Body:     fmt.Sprintf("Processed %d decisions, %d todos, and %d risks", decisions, todos, risks),
		Priority: priority,
		TraceID:  traceID,
		Data: map[string]any{
			"meetingTitle":   meetingTitle,
			"todosCount":     todos,
			"risksCount":     risks,
			"decisionsCount": decisions,
		},
		Timestamp: now.UTC(),
	}
}
