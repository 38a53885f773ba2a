package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/tartampluch/go-caltemp/internal/assistant"
	"github.com/tartampluch/go-caltemp/internal/config"
	"github.com/tartampluch/go-caltemp/internal/engine"
)

// LoadEvents reads events.json. A missing file yields an empty list.
func (s *Store) LoadEvents() ([]engine.Event, error) {
	return s.loadEvents()
}

func (s *Store) loadEvents() ([]engine.Event, error) {
	path := s.path(config.EventsFileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug(config.MsgEventsMissing,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyFile, path)
		return []engine.Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrReadEvents, err)
	}

	var events []engine.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDecodeEvents, err)
	}
	if events == nil {
		events = []engine.Event{}
	}
	return events, nil
}

// SaveEvents replaces events.json with the given list.
func (s *Store) SaveEvents(events []engine.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveEvents(events)
}

func (s *Store) saveEvents(events []engine.Event) error {
	if events == nil {
		events = []engine.Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}
	if err := writeAtomic(s.path(config.EventsFileName), data); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteEvents, err)
	}
	return nil
}

// AddEvent assigns a fresh identifier to intent, appends it to the stored
// list and returns the persisted event.
func (s *Store) AddEvent(intent assistant.EventIntent) (engine.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadEvents()
	if err != nil {
		return engine.Event{}, err
	}

	event := engine.Event{
		ID:          uuid.NewString(),
		Title:       intent.Title,
		Date:        intent.Date,
		Description: intent.Description,
		Reminder:    intent.Reminder,
	}

	if err := s.saveEvents(append(events, event)); err != nil {
		return engine.Event{}, err
	}

	slog.Info(config.MsgEventSaved,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, event.ID,
		config.LogKeyTitle, event.Title,
		config.LogKeyDate, event.Date)
	return event, nil
}

// DeleteEvent removes the event whose identifier is id or starts with id.
// The prefix must select exactly one event.
func (s *Store) DeleteEvent(id string) (engine.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadEvents()
	if err != nil {
		return engine.Event{}, err
	}
	idx, err := findEvent(events, id)
	if err != nil {
		return engine.Event{}, err
	}

	removed := events[idx]
	if err := s.saveEvents(slices.Delete(events, idx, idx+1)); err != nil {
		return engine.Event{}, err
	}

	slog.Info(config.MsgEventDeleted,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, removed.ID)
	return removed, nil
}

// UpdateEvent applies edit to the event selected like DeleteEvent does and
// stores the result in place. Nothing is written when edit fails. The
// identifier cannot be changed by edit.
func (s *Store) UpdateEvent(id string, edit func(*engine.Event) error) (engine.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.loadEvents()
	if err != nil {
		return engine.Event{}, err
	}
	idx, err := findEvent(events, id)
	if err != nil {
		return engine.Event{}, err
	}

	updated := events[idx]
	if err := edit(&updated); err != nil {
		return engine.Event{}, err
	}
	updated.ID = events[idx].ID
	events[idx] = updated

	if err := s.saveEvents(events); err != nil {
		return engine.Event{}, err
	}

	slog.Info(config.MsgEventUpdated,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, updated.ID,
		config.LogKeyTitle, updated.Title,
		config.LogKeyDate, updated.Date)
	return updated, nil
}

// findEvent returns the index of the event whose identifier equals id, or
// of the only one starting with it.
func findEvent(events []engine.Event, id string) (int, error) {
	if i := slices.IndexFunc(events, func(e engine.Event) bool { return e.ID == id }); i >= 0 {
		return i, nil
	}

	idx := -1
	for i, e := range events {
		if id != "" && strings.HasPrefix(e.ID, id) {
			if idx >= 0 {
				return -1, fmt.Errorf("%s: %q", config.ErrAmbiguousID, id)
			}
			idx = i
		}
	}
	if idx < 0 {
		return -1, fmt.Errorf("%s: %q", config.ErrEventNotFound, id)
	}
	return idx, nil
}
