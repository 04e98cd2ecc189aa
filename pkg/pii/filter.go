package pii

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxTextLength is the cut-off used by SanitizeText
	DefaultMaxTextLength = 100
)

var defaultSensitiveKeys = []string{"transcript", "meetingTranscript", "password", "secret", "token"}

// Filter redacts personal data before it reaches logs or span attributes.
// A disabled filter returns its input unchanged.
type Filter struct {
	enabled       bool
	sensitiveKeys map[string]struct{}
}

// NewFilter creates a Filter. Extra keys are added to the default
// sensitive key list.
func NewFilter(enabled bool, extraKeys ...string) *Filter {
	keys := make(map[string]struct{}, len(defaultSensitiveKeys)+len(extraKeys))
	for _, k := range append(append([]string{}, defaultSensitiveKeys...), extraKeys...) {
		keys[strings.ToLower(k)] = struct{}{}
	}
	return &Filter{enabled: enabled, sensitiveKeys: keys}
}

// Enabled reports whether redaction is active
func (f *Filter) Enabled() bool {
	return f != nil && f.enabled
}

// SanitizeTranscript replaces a transcript with its word and character counts
func (f *Filter) SanitizeTranscript(transcript string) string {
	if !f.Enabled() {
		return transcript
	}
	words := len(strings.Fields(transcript))
	chars := utf8.RuneCountInString(transcript)
	return fmt.Sprintf("[REDACTED: %d words, %d characters]", words, chars)
}

// SanitizeAttendees replaces each name with a positional placeholder
func (f *Filter) SanitizeAttendees(attendees []string) []string {
	if !f.Enabled() {
		return attendees
	}
	out := make([]string, len(attendees))
	for i := range attendees {
		out[i] = fmt.Sprintf("Attendee-%d", i+1)
	}
	return out
}

// SanitizeText truncates text longer than maxLength runes. A non-positive
// maxLength uses DefaultMaxTextLength.
func (f *Filter) SanitizeText(text string, maxLength int) string {
	if !f.Enabled() {
		return text
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxTextLength
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "... [TRUNCATED]"
}

// SanitizeObject returns a copy of obj with sensitive keys replaced by
// "[REDACTED]", recursing into nested maps and slices. Key matching is
// case-insensitive.
func (f *Filter) SanitizeObject(obj map[string]any) map[string]any {
	if !f.Enabled() {
		return obj
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if _, ok := f.sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = f.sanitizeValue(v)
	}
	return out
}

func (f *Filter) sanitizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return f.SanitizeObject(val)
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = f.sanitizeValue(item)
		}
		return items
	default:
		return v
	}
}
