package engine

import (
	"log/slog"
	"time"

	"github.com/tartampluch/go-caltemp/internal/config"
)

// DueReminders returns the reminder events starting within the next
// config.ReminderLeadTime (exclusive of now, inclusive of the bound)
// whose ID is not yet in notified. Events with unreadable dates are skipped.
func DueReminders(events []Event, now time.Time, notified map[string]bool) []Event {
	var due []Event
	for _, e := range events {
		if !e.Reminder || notified[e.ID] {
			continue
		}

		at, err := e.When()
		if err != nil {
			slog.Debug(config.MsgSkippedEvent,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyID, e.ID,
				config.LogKeyDate, e.Date)
			continue
		}

		diff := at.Sub(now)
		if diff > 0 && diff <= config.ReminderLeadTime {
			due = append(due, e)
		}
	}
	return due
}
