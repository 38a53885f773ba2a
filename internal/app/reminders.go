package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tartampluch/go-caltemp/internal/config"
	"github.com/tartampluch/go-caltemp/internal/engine"
	"github.com/tartampluch/go-caltemp/internal/locale"
)

// EventLoader provides the stored events. Implemented by *store.Store.
type EventLoader interface {
	LoadEvents() ([]engine.Event, error)
}

// ReminderWatcher notifies once per process for every reminder event that
// starts within the lead time.
type ReminderWatcher struct {
	Events     EventLoader
	Notifier   Notifier
	Translator *locale.Translator
	Clock      engine.Clock

	mu       sync.Mutex
	notified map[string]bool
}

// NewReminderWatcher creates a watcher using the wall clock.
func NewReminderWatcher(events EventLoader, n Notifier, tr *locale.Translator) *ReminderWatcher {
	return &ReminderWatcher{
		Events:     events,
		Notifier:   n,
		Translator: tr,
		Clock:      engine.RealClock{},
		notified:   make(map[string]bool),
	}
}

// Check loads the events and sends the due notifications.
// It returns the number of notifications sent.
func (w *ReminderWatcher) Check(ctx context.Context) (int, error) {
	events, err := w.Events.LoadEvents()
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.notified == nil {
		w.notified = make(map[string]bool)
	}

	sent := 0
	title := w.Translator.Msg(config.TKeyNotifReminder, nil)
	for _, e := range engine.DueReminders(events, w.Clock.Now(), w.notified) {
		slog.Info(config.MsgReminderDue,
			config.LogKeyComponent, config.CompWatcher,
			config.LogKeyID, e.ID,
			config.LogKeyTitle, e.Title)

		body := w.Translator.Msg(config.TKeyNotifSoon, map[string]any{"Title": e.Title})
		if err := w.Notifier.Notify(ctx, title, body); err != nil {
			// Not marked, so the next tick retries while still in the window.
			slog.Warn(config.MsgNotifyFailed,
				config.LogKeyComponent, config.CompWatcher,
				config.LogKeyID, e.ID,
				config.LogKeyError, err)
			continue
		}
		w.notified[e.ID] = true
		sent++
	}
	return sent, nil
}

// Run checks immediately, then on config.ReminderCronSpec until ctx is done.
func (w *ReminderWatcher) Run(ctx context.Context) error {
	return Schedule(ctx, config.ReminderCronSpec, w.Job())
}

// Job wraps Check for Schedule.
func (w *ReminderWatcher) Job() Job {
	return Job{
		Name: config.CompWatcher,
		Run: func(ctx context.Context) error {
			_, err := w.Check(ctx)
			return err
		},
	}
}
