package extraction

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

var outputLanguages = map[string]string{
	"ja-JP": "日本語",
	"en-US": "English",
}

// outputLanguageName maps a locale to the language named in the prompt,
// falling back to Japanese
func outputLanguageName(locale string) string {
	if name, ok := outputLanguages[locale]; ok {
		return name
	}
	return outputLanguages[entities.DefaultOutputLanguage]
}

// SystemPrompt builds the instruction block for the given output locale
func SystemPrompt(locale string) string {
	return `You are a meeting analysis assistant. Your task is to extract structured information from meeting transcripts.

Extract the following:
1. **Decisions**: Final decisions made during the meeting (not proposals or discussions)
2. **Todos**: Action items with clear owners and due dates if mentioned
3. **Risks**: Potential issues, blockers, or concerns raised
4. **Executive Summary**: Overall progress, key risks, and decisions needed

For each item, provide a confidence score (0.0-1.0) indicating how certain you are about the extraction.

Output language: ` + outputLanguageName(locale) + `

Important:
- Only extract explicit information from the transcript
- Do not infer or assume information not present in the transcript
- Assign confidence scores conservatively
- Generate 2-3 relevant follow-up questions to clarify missing information`
}

// UserPrompt renders the meeting details and transcript
func UserPrompt(in ExtractInput) string {
	attendees := strings.Join(in.Attendees, ", ")
	if attendees == "" {
		attendees = "Not specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Meeting Title: %s\n", in.Title)
	fmt.Fprintf(&b, "Attendees: %s\n", attendees)
	fmt.Fprintf(&b, "Default Due Date: %d days from today\n\n", in.DefaultDueDays)
	b.WriteString("Meeting Transcript:\n\"\"\"\n")
	b.WriteString(in.Transcript)
	b.WriteString("\n\"\"\"\n\n")
	b.WriteString("Please extract decisions, todos, risks, executive summary, and generate follow-up questions.")
	return b.String()
}
