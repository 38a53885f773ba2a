package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/tartampluch/go-caltemp/internal/config"
)

// Event is a persisted calendar entry. Its JSON shape is the events.json record.
type Event struct {
	// ID is a UUID assigned when the event is stored.
	ID string `json:"id"`

	Title string `json:"title"`

	// Date is an ISO 8601 timestamp, kept as text so remote-provided values
	// survive a load/save cycle unchanged.
	Date string `json:"date"`

	Description string `json:"description"`

	// Reminder requests a notification shortly before Date.
	Reminder bool `json:"reminder"`
}

// When parses Date. See ParseEventDate.
func (e Event) When() (time.Time, error) {
	return ParseEventDate(e.Date)
}

// eventDateLayouts are tried in order by ParseEventDate.
var eventDateLayouts = []string{
	time.RFC3339Nano,
	config.DateFormatLocalSec,
	config.DateFormatLocalMin,
	config.DateFormatDay,
}

// ParseEventDate reads an event timestamp. Layouts without an offset are
// read in the local zone, which is how remote models usually omit it.
func ParseEventDate(value string) (time.Time, error) {
	for _, layout := range eventDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(config.ErrInvalidDate)
}

// ParseDayTime combines a "YYYY-MM-DD" day and an "HH:MM" time read in loc.
func ParseDayTime(day, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(config.DateFormatLocalMin, day+"T"+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrInvalidDate, err)
	}
	return t, nil
}

// FormatEventDate renders t the way events.json stores dates: UTC with
// milliseconds.
func FormatEventDate(t time.Time) string {
	return t.UTC().Format(config.DateFormatISOMillis)
}
