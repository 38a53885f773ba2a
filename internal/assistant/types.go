package assistant

import (
	"time"

	"github.com/tartampluch/go-caltemp/internal/config"
	"github.com/tartampluch/go-caltemp/internal/engine"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the dialogue history.
// The history is owned by the caller and passed in on every call.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Credentials unlock the remote completion fallback.
// An empty APIKey means the fallback is not configured.
type Credentials struct {
	APIKey string
	Model  string
}

// ModelOrDefault returns the configured model id or the free-tier default.
func (c Credentials) ModelOrDefault() string {
	if c.Model == "" {
		return config.DefaultModel
	}
	return c.Model
}

// EventIntent is a structured request to create an event.
// Ownership passes to the caller, which assigns an identifier and persists it.
type EventIntent struct {
	Title       string `json:"title"`
	Date        string `json:"date"` // ISO 8601 instant
	Description string `json:"description"`
	Reminder    bool   `json:"reminder"`
}

// When parses Date. Remote models occasionally drop the zone suffix,
// in which case the value is read as local time.
func (e EventIntent) When() (time.Time, error) {
	return engine.ParseEventDate(e.Date)
}

// Kind tags the branch an interpretation ended on.
type Kind int

const (
	// KindLocalIntent: the local pattern matched; no network call was made.
	KindLocalIntent Kind = iota + 1
	// KindGuidance: no local match and no API key; Text explains the local syntax.
	KindGuidance
	// KindRemoteIntent: the remote reply carried a create_event action.
	KindRemoteIntent
	// KindRemoteText: the remote reply is plain text for the conversation.
	KindRemoteText
	// KindRemoteError: the remote call failed; Text is the displayable error.
	KindRemoteError
)

func (k Kind) String() string {
	switch k {
	case KindLocalIntent:
		return "local_intent"
	case KindGuidance:
		return "guidance"
	case KindRemoteIntent:
		return "remote_intent"
	case KindRemoteText:
		return "remote_text"
	case KindRemoteError:
		return "remote_error"
	default:
		return "unknown"
	}
}

// Result is the outcome of Interpreter.Interpret. Every branch carries
// something displayable: either an Intent or a Text.
type Result struct {
	Kind   Kind
	Intent *EventIntent
	Text   string
	Err    error // set for KindRemoteError only
}

// HasIntent reports whether the result asks for an event to be created.
func (r Result) HasIntent() bool {
	return r.Intent != nil && (r.Kind == KindLocalIntent || r.Kind == KindRemoteIntent)
}
