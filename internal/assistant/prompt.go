package assistant

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-caltemp/internal/config"
)

// SystemPrompt is the fixed instruction sent first on every remote call.
func SystemPrompt(now time.Time) Message {
	return Message{
		Role:    RoleSystem,
		Content: fmt.Sprintf(config.SystemPromptTemplate, now.Format(config.PromptDateLayout)),
	}
}

// BuildMessages assembles the outbound dialogue: the system instruction,
// the trailing window of history with system entries relabeled as
// assistant, then the new user utterance.
func BuildMessages(history []Message, text string, now time.Time) []Message {
	start := max(0, len(history)-config.HistoryWindow)
	window := history[start:]

	out := make([]Message, 0, len(window)+2)
	out = append(out, SystemPrompt(now))
	for _, m := range window {
		role := m.Role
		if role == RoleSystem {
			role = RoleAssistant
		}
		out = append(out, Message{Role: role, Content: m.Content})
	}
	return append(out, Message{Role: RoleUser, Content: text})
}
