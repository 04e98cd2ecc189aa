package entities

// Severity grades a risk
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is one of low, medium or high
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// ExecutiveSummary is the headline block of an extraction
type ExecutiveSummary struct {
	Progress        string   `json:"progress"`
	KeyRisks        []string `json:"keyRisks"`
	DecisionsNeeded []string `json:"decisionsNeeded"`
}

// Decision is a final decision taken during the meeting
type Decision struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// Todo is an action item. DueDate is an ISO date (YYYY-MM-DD).
type Todo struct {
	Text       string  `json:"text"`
	Owner      string  `json:"owner,omitempty"`
	DueDate    string  `json:"dueDate,omitempty"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// Risk is an issue, blocker or concern raised in the meeting
type Risk struct {
	Text       string   `json:"text"`
	Severity   Severity `json:"severity" validate:"severity"`
	Owner      string   `json:"owner,omitempty"`
	Confidence float64  `json:"confidence" validate:"gte=0,lte=1"`
}

// ExtractionResult is the structured output of one model call. It is either
// complete or absent, never partially filled.
type ExtractionResult struct {
	ExecutiveSummary  ExecutiveSummary `json:"executiveSummary"`
	Decisions         []Decision       `json:"decisions" validate:"dive"`
	Todos             []Todo           `json:"todos" validate:"dive"`
	Risks             []Risk           `json:"risks" validate:"dive"`
	FollowUpQuestions []string         `json:"followUpQuestions"`
}

// Normalize replaces nil slices with empty ones so JSON output always carries arrays
func (r *ExtractionResult) Normalize() {
	if r.ExecutiveSummary.KeyRisks == nil {
		r.ExecutiveSummary.KeyRisks = []string{}
	}
	if r.ExecutiveSummary.DecisionsNeeded == nil {
		r.ExecutiveSummary.DecisionsNeeded = []string{}
	}
	if r.Decisions == nil {
		r.Decisions = []Decision{}
	}
	if r.Todos == nil {
		r.Todos = []Todo{}
	}
	if r.Risks == nil {
		r.Risks = []Risk{}
	}
	if r.FollowUpQuestions == nil {
		r.FollowUpQuestions = []string{}
	}
}

// ItemCount is decisions + todos + risks
func (r *ExtractionResult) ItemCount() int {
	return len(r.Decisions) + len(r.Todos) + len(r.Risks)
}

// AverageConfidence averages the confidence of every decision, todo and risk.
// It is 0 when there are no items.
func (r *ExtractionResult) AverageConfidence() float64 {
	n := r.ItemCount()
	if n == 0 {
		return 0
	}
	var sum float64
	for _, d := range r.Decisions {
		sum += d.Confidence
	}
	for _, t := range r.Todos {
		sum += t.Confidence
	}
	for _, rk := range r.Risks {
		sum += rk.Confidence
	}
	return sum / float64(n)
}
