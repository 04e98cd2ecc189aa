package meeting

import (
	"fmt"
	"math"
	"strings"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

func percent(confidence float64) int {
	return int(math.Round(confidence * 100))
}

// RenderSummary renders a response as the markdown text of a reply activity
func RenderSummary(p *entities.ResponsePayload) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("# 📋 Meeting Summary")
	line("")
	line("**Progress:** %s", p.ExecutiveSummary.Progress)
	line("")

	if len(p.ExecutiveSummary.KeyRisks) > 0 {
		line("**Key Risks:**")
		for _, r := range p.ExecutiveSummary.KeyRisks {
			line("- %s", r)
		}
		line("")
	}

	if len(p.Decisions) > 0 {
		line("## ✅ Decisions (%d)", len(p.Decisions))
		for i, d := range p.Decisions {
			line("%d. %s (%d%%)", i+1, d.Text, percent(d.Confidence))
		}
		line("")
	}

	if len(p.Todos) > 0 {
		line("## 📝 Action Items (%d)", len(p.Todos))
		for i, t := range p.Todos {
			item := fmt.Sprintf("%d. %s", i+1, t.Text)
			if t.Owner != "" {
				item += fmt.Sprintf(" [@%s]", t.Owner)
			}
			if t.DueDate != "" {
				item += fmt.Sprintf(" (Due: %s)", t.DueDate)
			}
			line("%s", item)
		}
		line("")
	}

	if len(p.Risks) > 0 {
		line("## ⚠️ Risks (%d)", len(p.Risks))
		for i, r := range p.Risks {
			line("%d. [%s] %s", i+1, strings.ToUpper(string(r.Severity)), r.Text)
		}
		line("")
	}

	if len(p.ExecutionResults) > 0 {
		line("## ⚙️ Executed Actions (%d/%d succeeded)", p.SucceededCount(), len(p.ExecutionResults))
		line("")
	}

	line("---")
	b.WriteString(fmt.Sprintf("Trace ID: `%s`", p.TraceID))
	return b.String()
}
