package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/emersion/go-ical"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tartampluch/go-caltemp/internal/config"
	"github.com/tartampluch/go-caltemp/internal/holiday"
)

// HolidayWindow returns the holidays of the previous, current and next year.
// Calendar clients scrolling around "now" find them without a refresh.
func HolidayWindow(now time.Time) []holiday.Holiday {
	y := now.Year()
	var out []holiday.Holiday
	for _, year := range []int{y - 1, y, y + 1} {
		out = append(out, holiday.Holidays(year)...)
	}
	return out
}

// BuildCalendar encodes events and holidays as an iCalendar feed.
// Reminder events carry a DISPLAY alarm; holidays are all-day transparent
// entries. With nothing to publish a minimal valid VCALENDAR is returned.
func BuildCalendar(events []Event, holidays []holiday.Holiday, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()

	// Set standard iCalendar headers
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: Suggest a refresh interval
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	stats := struct{ events, skipped, holidays int }{}

	for _, e := range events {
		at, err := e.When()
		if err != nil {
			stats.skipped++
			slog.Warn(config.MsgSkippedEvent,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyID, e.ID,
				config.LogKeyDate, e.Date)
			continue
		}

		event := newEvent(e, at)
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
		stats.events++
	}

	for _, h := range holidays {
		event, err := newHolidayEvent(h)
		if err != nil {
			continue
		}
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
		stats.holidays++
	}

	logBuilt(stats.events, stats.skipped, stats.holidays)

	// Handle case where nothing is published.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

func newEvent(e Event, at time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatEventUID, e.ID, config.ICalDomain))
	event.Props.SetText(config.PropSummary, e.Title)
	if e.Description != "" {
		event.Props.SetText(config.PropDescription, e.Description)
	}

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDateTime(at.UTC())
	event.Props.Set(dtStartProp)

	if e.Reminder {
		addAlarm(event, config.ReminderICalAlarm, e.Title)
	}
	return event
}

func newHolidayEvent(h holiday.Holiday) (*ical.Event, error) {
	day, err := time.Parse(config.DateFormatDay, h.Date)
	if err != nil {
		// Years outside 0..9999 have no four-digit form.
		return nil, err
	}

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, holidayUID(h))
	event.Props.SetText(config.PropSummary, h.Name)
	event.Props.SetText(config.PropTransp, config.ICalTransp)

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(day)
	event.Props.Set(dtStartProp)
	return event, nil
}

// holidayUID names a holiday by day and name, so two holidays falling on
// the same day (Ascension on May 1st or 8th) stay distinct.
func holidayUID(h holiday.Holiday) string {
	return fmt.Sprintf(config.FormatHolidayUID, h.Date, slug(h.Name), config.ICalDomain)
}

// slug lowercases s, drops its accents and joins the remaining letter and
// digit runs with dashes.
func slug(s string) string {
	plain, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		plain = s
	}
	words := strings.FieldsFunc(strings.ToLower(plain), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(words, "-")
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

func logBuilt(events, skipped, holidays int) {
	slog.Info(config.MsgCalendarBuilt,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyEvents, events),
			slog.Int(config.LogKeySkipped, skipped),
			slog.Int(config.LogKeyHolidays, holidays),
		),
	)
}
