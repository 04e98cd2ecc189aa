package entities

// ActionType tags a draft action or its execution result
type ActionType string

const (
	ActionNotify     ActionType = "notify"
	ActionCreateTask ActionType = "createTask"
	ActionCreateRisk ActionType = "createRisk"
)

// DraftAction is a proposed side effect awaiting approval. Payload is one of
// CreateTaskPayload, CreateRiskPayload or NotifyPayload, matching Type.
type DraftAction struct {
	Type    ActionType `json:"type"`
	Payload any        `json:"payload"`
}

type CreateTaskPayload struct {
	Text       string  `json:"text"`
	Owner      string  `json:"owner,omitempty"`
	DueDate    string  `json:"dueDate,omitempty"`
	Confidence float64 `json:"confidence"`
}

type CreateRiskPayload struct {
	Text       string   `json:"text"`
	Severity   Severity `json:"severity"`
	Owner      string   `json:"owner,omitempty"`
	Confidence float64  `json:"confidence"`
}

type NotifyPayload struct {
	MeetingTitle   string `json:"meetingTitle"`
	DecisionsCount int    `json:"decisionsCount"`
	TodosCount     int    `json:"todosCount"`
	RisksCount     int    `json:"risksCount"`
}

func NewCreateTaskDraft(t Todo) DraftAction {
	return DraftAction{Type: ActionCreateTask, Payload: CreateTaskPayload{
		Text:       t.Text,
		Owner:      t.Owner,
		DueDate:    t.DueDate,
		Confidence: t.Confidence,
	}}
}

func NewCreateRiskDraft(r Risk) DraftAction {
	return DraftAction{Type: ActionCreateRisk, Payload: CreateRiskPayload{
		Text:       r.Text,
		Severity:   r.Severity,
		Owner:      r.Owner,
		Confidence: r.Confidence,
	}}
}

func NewNotifyDraft(p NotifyPayload) DraftAction {
	return DraftAction{Type: ActionNotify, Payload: p}
}

// ActionResult records the outcome of one executed action
type ActionResult struct {
	Type    ActionType `json:"type"`
	Success bool       `json:"success"`
	Details any        `json:"details,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// TaskDetails is returned for createTask and createRisk results
type TaskDetails struct {
	TaskID    string `json:"taskId"`
	TaskTitle string `json:"taskTitle"`
	WebURL    string `json:"webUrl,omitempty"`
}

// MessageDetails is returned for notify results
type MessageDetails struct {
	MessageID string `json:"messageId"`
	ChannelID string `json:"channelId"`
}
