package entities

// ResponsePayload is returned for every processed request. DraftActions and
// ExecutionResults are never both non-empty: approved requests carry results,
// others carry drafts.
type ResponsePayload struct {
	ExecutiveSummary  ExecutiveSummary `json:"executiveSummary"`
	Decisions         []Decision       `json:"decisions"`
	Todos             []Todo           `json:"todos"`
	Risks             []Risk           `json:"risks"`
	FollowUpQuestions []string         `json:"followUpQuestions"`
	DraftActions      []DraftAction    `json:"draftActions"`
	TraceID           string           `json:"traceId"`
	ExecutionResults  []ActionResult   `json:"executionResults,omitzero"`
}

// SucceededCount counts successful execution results
func (p *ResponsePayload) SucceededCount() int {
	n := 0
	for _, r := range p.ExecutionResults {
		if r.Success {
			n++
		}
	}
	return n
}
