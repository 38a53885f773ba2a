package assistant

import (
	"encoding/json"
	"log/slog"
	"regexp"

	"github.com/tartampluch/go-caltemp/internal/config"
)

var (
	// fencedJSONRe finds a ```json fenced object; group 1 is the object.
	fencedJSONRe = regexp.MustCompile(config.FencedJSONPattern)

	// bareJSONRe is lazy: it stops at the first closing brace, so an
	// unfenced nested object never parses and falls back to plain text.
	bareJSONRe = regexp.MustCompile(config.BareJSONPattern)
)

// actionEnvelope is the strict JSON contract announced in the system prompt.
type actionEnvelope struct {
	Action string       `json:"action"`
	Data   *EventIntent `json:"data"`
}

// findJSON returns the embedded object candidate, preferring a fenced block.
func findJSON(reply string) string {
	if m := fencedJSONRe.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	return bareJSONRe.FindString(reply)
}

// ExtractAction looks for a create_event action embedded in a model reply.
// Any extraction or decoding problem yields false so the caller can show
// the reply as plain text. The date is taken verbatim.
func ExtractAction(reply string) (EventIntent, bool) {
	raw := findJSON(reply)
	if raw == "" {
		return EventIntent{}, false
	}

	var env actionEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		slog.Debug(config.MsgPayloadInvalid,
			config.LogKeyComponent, config.CompAssistant,
			config.LogKeyError, err)
		return EventIntent{}, false
	}

	if env.Action != config.ActionCreateEvent || env.Data == nil {
		return EventIntent{}, false
	}
	return *env.Data, true
}
