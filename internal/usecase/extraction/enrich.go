package extraction

import (
	"time"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// DateLayout is the ISO date format used for todo due dates
const DateLayout = "2006-01-02"

// DueDate returns now + days as an ISO date in UTC
func DueDate(now time.Time, days int) string {
	return now.UTC().AddDate(0, 0, days).Format(DateLayout)
}

// EnrichTodos fills missing due dates with now + defaultDueDays. Todos that
// already carry a due date are returned untouched and order is preserved.
// The input slice is not modified.
func EnrichTodos(todos []entities.Todo, defaultDueDays int, now time.Time) []entities.Todo {
	out := make([]entities.Todo, len(todos))
	fallback := DueDate(now, defaultDueDays)
	for i, t := range todos {
		if t.DueDate == "" {
			t.DueDate = fallback
		}
		out[i] = t
	}
	return out
}
