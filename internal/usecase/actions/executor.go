package actions

import (
	"context"
	"fmt"
	"html"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/metrics"
)

// NotifyInput describes the summary notification of one meeting
type NotifyInput struct {
	MeetingTitle   string
	DecisionsCount int
	TodosCount     int
	RisksCount     int
	Channel        *entities.ChannelRef
}

// BatchInput is everything ExecuteAll needs for one approved request
type BatchInput struct {
	Todos          []entities.Todo
	Risks          []entities.Risk
	MeetingTitle   string
	DecisionsCount int
	ShouldNotify   bool
	Channel        *entities.ChannelRef
}

// Executor performs approved actions. Item methods never return an error:
// failures are reported through ActionResult.Success and ActionResult.Error.
type Executor interface {
	ExecuteCreateTask(ctx context.Context, todo entities.Todo) entities.ActionResult
	ExecuteCreateRisk(ctx context.Context, risk entities.Risk) entities.ActionResult
	ExecuteNotify(ctx context.Context, in NotifyInput) entities.ActionResult
	ExecuteAll(ctx context.Context, in BatchInput) []entities.ActionResult
}

type itemExecutor interface {
	ExecuteCreateTask(ctx context.Context, todo entities.Todo) entities.ActionResult
	ExecuteCreateRisk(ctx context.Context, risk entities.Risk) entities.ActionResult
	ExecuteNotify(ctx context.Context, in NotifyInput) entities.ActionResult
}

// executeAll runs todos, then risks, then the optional notify, one at a
// time. One result is produced per item regardless of failures.
func executeAll(ctx context.Context, e itemExecutor, in BatchInput, m *metrics.Collector) []entities.ActionResult {
	n := len(in.Todos) + len(in.Risks)
	if in.ShouldNotify {
		n++
	}
	results := make([]entities.ActionResult, 0, n)

	record := func(r entities.ActionResult) {
		m.RecordAction(string(r.Type), r.Success)
		results = append(results, r)
	}

	for _, todo := range in.Todos {
		record(e.ExecuteCreateTask(ctx, todo))
	}
	for _, risk := range in.Risks {
		record(e.ExecuteCreateRisk(ctx, risk))
	}
	if in.ShouldNotify {
		record(e.ExecuteNotify(ctx, NotifyInput{
			MeetingTitle:   in.MeetingTitle,
			DecisionsCount: in.DecisionsCount,
			TodosCount:     len(in.Todos),
			RisksCount:     len(in.Risks),
			Channel:        in.Channel,
		}))
	}
	return results
}

func failed(t entities.ActionType, err error) entities.ActionResult {
	return entities.ActionResult{Type: t, Success: false, Error: err.Error()}
}

// RiskTaskTitle is the Planner title used for a risk
func RiskTaskTitle(r entities.Risk) string {
	return fmt.Sprintf("⚠️ RISK (%s): %s", severityLabel(r.Severity), r.Text)
}

func severityLabel(s entities.Severity) string {
	switch s {
	case entities.SeverityHigh:
		return "HIGH"
	case entities.SeverityMedium:
		return "MEDIUM"
	case entities.SeverityLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}

// NotificationSubject is the channel message subject for a meeting
func NotificationSubject(meetingTitle string) string {
	return "Meeting Summary: " + meetingTitle
}

// FormatTeamsMessage renders the HTML body of the channel notification
func FormatTeamsMessage(meetingTitle string, decisionsCount, todosCount, risksCount int) string {
	return fmt.Sprintf(`<h2>📝 Meeting Summary: %s</h2>
<ul>
  <li><strong>Decisions:</strong> %d</li>
  <li><strong>Action Items:</strong> %d</li>
  <li><strong>Risks:</strong> %d</li>
</ul>
<p><em>Processed by External Agent - Task Management</em></p>`,
		html.EscapeString(meetingTitle), decisionsCount, todosCount, risksCount)
}
