package assistant

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/tartampluch/go-caltemp/internal/config"
)

// commandRe captures: 1 leading title, 2 hour, 3 minute, 4 trailing title.
// Submatches follow leftmost-first semantics, so the lazy leading title
// stops at the first whitespace run that is followed by a time.
var commandRe = regexp.MustCompile(config.CommandPattern)

// ParseCommand recognizes reminder utterances such as
// "Rappel acheter du pain à 14h", "rdv dentiste 9:30" or "event réunion @ 10h15".
// The event is placed today at the given local time, or tomorrow when that
// moment is not strictly after now. A syntactic match with an hour above 23
// or a minute above 59 is reported as no match.
func ParseCommand(text string, now time.Time) (EventIntent, bool) {
	m := commandRe.FindStringSubmatch(text)
	if m == nil {
		return EventIntent{}, false
	}

	hour, err := strconv.Atoi(m[2])
	if err != nil {
		return EventIntent{}, false
	}
	minute := 0
	if m[3] != "" {
		if minute, err = strconv.Atoi(m[3]); err != nil {
			return EventIntent{}, false
		}
	}

	if hour > config.MaxHour || minute > config.MaxMinute {
		slog.Debug(config.MsgInvalidTime,
			config.LogKeyComponent, config.CompAssistant,
			config.LogKeyHour, hour,
			config.LogKeyMinute, minute)
		return EventIntent{}, false
	}

	return EventIntent{
		Title:       buildTitle(m[1], m[4]),
		Date:        nextOccurrence(now, hour, minute).UTC().Format(config.DateFormatISOMillis),
		Description: fmt.Sprintf(config.FormatLocalDesc, text),
		Reminder:    true,
	}, true
}

// buildTitle joins the non-empty title fragments found before and after the time.
func buildTitle(before, after string) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimFunc(before, isCommandSpace); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimFunc(after, isCommandSpace); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return config.DefaultEventTitle
	}
	return strings.Join(parts, " ")
}

// isCommandSpace reports the runes config.CommandSpace matches.
func isCommandSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r) || r == '\uFEFF'
}

// nextOccurrence returns today at hour:minute in now's zone, rolled one
// calendar day forward if that is not strictly in the future.
// time.Date normalizes day overflow and keeps the wall clock across DST.
func nextOccurrence(now time.Time, hour, minute int) time.Time {
	y, mo, d := now.Date()
	at := time.Date(y, mo, d, hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = time.Date(y, mo, d+1, hour, minute, 0, 0, now.Location())
	}
	return at
}
