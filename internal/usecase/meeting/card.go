package meeting

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

const (
	adaptiveCardVersion = "1.5"
	adaptiveCardSchema  = "http://adaptivecards.io/schemas/adaptive-card.json"
)

// AdaptiveCard is the subset of the Adaptive Card format the summary uses
type AdaptiveCard struct {
	Type    string `json:"type"`
	Version string `json:"version"`
	Schema  string `json:"$schema,omitempty"`
	Body    []any  `json:"body"`
}

type textBlock struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Size    string `json:"size,omitempty"`
	Weight  string `json:"weight,omitempty"`
	Color   string `json:"color,omitempty"`
	Spacing string `json:"spacing,omitempty"`
	Wrap    bool   `json:"wrap,omitempty"`
}

type fact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type factSet struct {
	Type  string `json:"type"`
	Facts []fact `json:"facts"`
}

type container struct {
	Type      string `json:"type"`
	Items     []any  `json:"items"`
	Separator bool   `json:"separator,omitempty"`
	Spacing   string `json:"spacing,omitempty"`
}

func text(s string) textBlock {
	return textBlock{Type: "TextBlock", Text: s, Wrap: true}
}

func heading(s, color string) textBlock {
	return textBlock{Type: "TextBlock", Text: s, Size: "Medium", Weight: "Bolder", Color: color, Wrap: true}
}

func caption(s string) textBlock {
	return textBlock{Type: "TextBlock", Text: s, Size: "Small", Color: "Accent", Spacing: "None"}
}

func section(items ...any) container {
	return container{Type: "Container", Separator: true, Spacing: "Medium", Items: items}
}

func group(items ...any) container {
	return container{Type: "Container", Items: items}
}

func severityColor(s entities.Severity) string {
	switch s {
	case entities.SeverityHigh:
		return "Attention"
	case entities.SeverityMedium:
		return "Warning"
	default:
		return "Default"
	}
}

// NewSummaryCard renders a response as an Adaptive Card
func NewSummaryCard(p *entities.ResponsePayload) AdaptiveCard {
	card := AdaptiveCard{
		Type:    "AdaptiveCard",
		Version: adaptiveCardVersion,
		Schema:  adaptiveCardSchema,
	}

	title := text("📋 Meeting Summary")
	title.Size, title.Weight = "Large", "Bolder"
	card.Body = append(card.Body, title)

	card.Body = append(card.Body, section(
		heading("📊 Executive Summary", ""),
		factSet{Type: "FactSet", Facts: []fact{
			{Title: "Progress:", Value: p.ExecutiveSummary.Progress},
			{Title: "Decisions:", Value: fmt.Sprint(len(p.Decisions))},
			{Title: "Action Items:", Value: fmt.Sprint(len(p.Todos))},
			{Title: "Risks:", Value: fmt.Sprint(len(p.Risks))},
		}},
	))

	if len(p.ExecutiveSummary.KeyRisks) > 0 {
		items := []any{heading("⚠️ Key Risks", "Warning")}
		for _, r := range p.ExecutiveSummary.KeyRisks {
			b := text("• " + r)
			b.Color = "Warning"
			items = append(items, b)
		}
		card.Body = append(card.Body, section(items...))
	}

	if len(p.Decisions) > 0 {
		items := []any{heading(fmt.Sprintf("✅ Decisions (%d)", len(p.Decisions)), "")}
		for i, d := range p.Decisions {
			items = append(items, group(
				text(fmt.Sprintf("%d. %s", i+1, d.Text)),
				caption(fmt.Sprintf("Confidence: %d%%", percent(d.Confidence))),
			))
		}
		card.Body = append(card.Body, section(items...))
	}

	if len(p.Todos) > 0 {
		items := []any{heading(fmt.Sprintf("📝 Action Items (%d)", len(p.Todos)), "")}
		for i, t := range p.Todos {
			var details []string
			if t.Owner != "" {
				details = append(details, "Owner: "+t.Owner)
			}
			if t.DueDate != "" {
				details = append(details, "Due: "+t.DueDate)
			}
			details = append(details, fmt.Sprintf("Confidence: %d%%", percent(t.Confidence)))
			items = append(items, group(
				text(fmt.Sprintf("%d. %s", i+1, t.Text)),
				caption(strings.Join(details, " • ")),
			))
		}
		card.Body = append(card.Body, section(items...))
	}

	if len(p.Risks) > 0 {
		items := []any{heading(fmt.Sprintf("⚠️ Risks (%d)", len(p.Risks)), "Warning")}
		for i, r := range p.Risks {
			line := text(fmt.Sprintf("%d. [%s] %s", i+1, strings.ToUpper(string(r.Severity)), r.Text))
			line.Color = severityColor(r.Severity)
			detail := fmt.Sprintf("Confidence: %d%%", percent(r.Confidence))
			if r.Owner != "" {
				detail += " • Owner: " + r.Owner
			}
			items = append(items, group(line, caption(detail)))
		}
		card.Body = append(card.Body, section(items...))
	}

	if len(p.FollowUpQuestions) > 0 {
		items := []any{heading("❓ Follow-up Questions", "")}
		for _, q := range p.FollowUpQuestions {
			items = append(items, text("• "+q))
		}
		card.Body = append(card.Body, section(items...))
	}

	footer := caption("Trace ID: " + p.TraceID)
	footer.Spacing, footer.Wrap = "", true
	card.Body = append(card.Body, section(footer))

	return card
}
