package app

import (
	"context"

	"github.com/tartampluch/go-caltemp/internal/config"
	"github.com/tartampluch/go-caltemp/internal/engine"
	"github.com/tartampluch/go-caltemp/internal/holiday"
)

// Feed receives a freshly rendered calendar. Implemented by *server.CalendarServer.
type Feed interface {
	Update(data []byte)
}

// FeedPublisher renders the stored events, and the holidays around now when
// enabled in the settings, into the iCalendar feed.
type FeedPublisher struct {
	Events   EventLoader
	Settings SettingsLoader
	Feed     Feed
	Clock    engine.Clock
}

// Publish rebuilds the calendar and hands it to the feed.
func (p *FeedPublisher) Publish(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	events, err := p.Events.LoadEvents()
	if err != nil {
		return err
	}

	now := p.Clock.Now()
	var holidays []holiday.Holiday
	if p.Settings.LoadSettings().ShowHolidays {
		holidays = engine.HolidayWindow(now)
	}

	data, err := engine.BuildCalendar(events, holidays, now)
	if err != nil {
		return err
	}
	p.Feed.Update(data)
	return nil
}

// Job wraps Publish for Schedule.
func (p *FeedPublisher) Job() Job {
	return Job{Name: config.CompServer, Run: p.Publish}
}
