package entities

import "encoding/json"

const (
	DefaultDueDays        = 7
	DefaultOutputLanguage = "ja-JP"
)

// ChannelRef addresses a Teams channel for the notify action
type ChannelRef struct {
	TeamID    string `json:"teamId" validate:"required"`
	ChannelID string `json:"channelId" validate:"required"`
}

// Valid reports whether both ids are set
func (c *ChannelRef) Valid() bool {
	return c != nil && c.TeamID != "" && c.ChannelID != ""
}

// Policy controls how extracted items turn into actions
type Policy struct {
	DefaultDueDays  int         `json:"defaultDueDays" validate:"gt=0"`
	RequireApproval bool        `json:"requireApproval"`
	AllowAutoNotify bool        `json:"allowAutoNotify"`
	NotifyChannel   *ChannelRef `json:"notifyChannel,omitempty" validate:"omitempty"`
}

// DefaultPolicy returns 7 due days, approval required and no auto notify
func DefaultPolicy() Policy {
	return Policy{
		DefaultDueDays:  DefaultDueDays,
		RequireApproval: true,
		AllowAutoNotify: false,
	}
}

// UnmarshalJSON defaults every field the payload leaves out
func (p *Policy) UnmarshalJSON(data []byte) error {
	type plain Policy
	v := plain(DefaultPolicy())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Policy(v)
	return nil
}

// ExtractionRequest is the validated input of the pipeline
type ExtractionRequest struct {
	MeetingTitle      string   `json:"meetingTitle" validate:"required"`
	MeetingDateTime   string   `json:"meetingDateTime,omitempty"`
	Attendees         []string `json:"attendees"`
	MeetingTranscript string   `json:"meetingTranscript" validate:"required"`
	Policy            Policy   `json:"policy"`
	OutputLanguage    string   `json:"outputLanguage"`
	Approve           bool     `json:"approve"`
}

// NewExtractionRequest returns a request with every default applied
func NewExtractionRequest(title, transcript string) ExtractionRequest {
	return ExtractionRequest{
		MeetingTitle:      title,
		MeetingTranscript: transcript,
		Attendees:         []string{},
		Policy:            DefaultPolicy(),
		OutputLanguage:    DefaultOutputLanguage,
	}
}

// UnmarshalJSON applies defaults before decoding so absent fields keep them
func (r *ExtractionRequest) UnmarshalJSON(data []byte) error {
	type plain ExtractionRequest
	v := plain(NewExtractionRequest("", ""))
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Attendees == nil {
		v.Attendees = []string{}
	}
	*r = ExtractionRequest(v)
	return nil
}
