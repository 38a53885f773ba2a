package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/tartampluch/go-caltemp/internal/assistant"
	"github.com/tartampluch/go-caltemp/internal/config"
	"github.com/tartampluch/go-caltemp/internal/engine"
	"github.com/tartampluch/go-caltemp/internal/locale"
	"github.com/tartampluch/go-caltemp/internal/store"
)

// ErrBlankInput is returned by Session.Send for empty or whitespace-only text.
var ErrBlankInput = errors.New(config.ErrBlankInput)

// EventAdder persists an event intent. Implemented by *store.Store.
type EventAdder interface {
	AddEvent(intent assistant.EventIntent) (engine.Event, error)
}

// SettingsLoader provides the current settings. Implemented by *store.Store.
type SettingsLoader interface {
	LoadSettings() store.Settings
}

// KeySource provides the remote API key. Implemented by store.Keyring.
type KeySource interface {
	APIKey() (string, error)
}

// Reply is what the session shows after one user message.
type Reply struct {
	Kind  assistant.Kind
	Text  string
	Event *engine.Event // set when an event was created
}

// Session owns one conversation with Dexter: its history, the persistence
// of created events and the notifications that follow.
type Session struct {
	Interpreter *assistant.Interpreter
	Events      EventAdder
	Settings    SettingsLoader
	Keys        KeySource
	Translator  *locale.Translator
	Notifier    Notifier

	mu      sync.Mutex
	history []assistant.Message
}

// NewSession starts a conversation with the welcome message.
func NewSession(in *assistant.Interpreter, st *store.Store, keys KeySource, tr *locale.Translator, n Notifier) *Session {
	s := &Session{
		Interpreter: in,
		Events:      st,
		Settings:    st,
		Keys:        keys,
		Translator:  tr,
		Notifier:    n,
	}
	s.reset(config.TKeyWelcome)
	return s
}

// History returns a copy of the conversation so far.
func (s *Session) History() []assistant.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]assistant.Message(nil), s.history...)
}

// Clear resets the conversation to a single notice.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(config.TKeyHistoryCleared)
}

func (s *Session) reset(key string) {
	s.history = []assistant.Message{{Role: assistant.RoleSystem, Content: s.Translator.Msg(key, nil)}}
}

// Send handles one user message. Calls are serialized, so a conversation
// never has two requests in flight. Only persistence failures are returned
// as errors; interpretation failures become the reply text.
func (s *Session) Send(ctx context.Context, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrBlankInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := slog.With(config.LogKeyComponent, config.CompSession)

	prior := append([]assistant.Message(nil), s.history...)
	s.history = append(s.history, assistant.Message{Role: assistant.RoleUser, Content: text})

	settings := s.Settings.LoadSettings()
	res := s.Interpreter.Interpret(ctx, text, prior, s.credentials(settings))
	log.Debug(config.MsgInterpreted, config.LogKeyKind, res.Kind.String())

	reply := Reply{Kind: res.Kind}
	switch res.Kind {
	case assistant.KindLocalIntent, assistant.KindRemoteIntent:
		event, err := s.Events.AddEvent(*res.Intent)
		if err != nil {
			// Drop the unanswered turn so later requests see a consistent history.
			s.history = s.history[:len(prior)]
			log.Warn(config.MsgEventSaveFailed, config.LogKeyError, err)
			return Reply{}, err
		}
		reply.Event = &event
		reply.Text = s.renderCreated(res.Kind, event)
		if settings.Notifications {
			NotifySaved(ctx, s.Notifier, s.Translator, event)
		}
	case assistant.KindGuidance:
		reply.Text = s.Translator.Msg(config.TKeyGuidance, nil)
	case assistant.KindRemoteError:
		reply.Text = s.Translator.Msg(config.TKeyAIError, map[string]any{"Message": errorMessage(res)})
	default:
		reply.Text = res.Text
	}

	s.history = append(s.history, assistant.Message{Role: assistant.RoleAssistant, Content: reply.Text})
	return reply, nil
}

// credentials resolves the API key only when the assistant is enabled.
func (s *Session) credentials(settings store.Settings) assistant.Credentials {
	if !settings.AIEnabled || s.Keys == nil {
		return assistant.Credentials{}
	}
	key, err := s.Keys.APIKey()
	if err != nil {
		slog.Warn(config.MsgPassFail,
			config.LogKeyComponent, config.CompSession,
			config.LogKeyError, err)
		return assistant.Credentials{}
	}
	return assistant.Credentials{APIKey: key, Model: settings.AIModel}
}

func (s *Session) renderCreated(kind assistant.Kind, e engine.Event) string {
	key := config.TKeyEventDone
	if kind == assistant.KindLocalIntent {
		key = config.TKeyEventNoted
	}

	when := e.Date
	if at, err := e.When(); err == nil {
		when = s.Translator.When(at)
	}
	return s.Translator.Msg(key, map[string]any{"Title": e.Title, "When": when})
}

// NotifySaved sends the "event saved" notice for e. Delivery failures are
// logged only.
func NotifySaved(ctx context.Context, n Notifier, tr *locale.Translator, e engine.Event) {
	if n == nil {
		return
	}
	date := e.Date
	if at, err := e.When(); err == nil {
		date = at.Local().Format(config.DateLayoutDMY)
	}
	title := tr.Msg(config.TKeyNotifSaved, nil)
	body := tr.Msg(config.TKeyNotifSavedBody, map[string]any{"Title": e.Title, "Date": date})
	if err := n.Notify(ctx, title, body); err != nil {
		slog.Warn(config.MsgNotifyFailed,
			config.LogKeyComponent, config.CompNotifier,
			config.LogKeyTitle, title,
			config.LogKeyError, err)
	}
}

func errorMessage(res assistant.Result) string {
	if res.Err != nil {
		return res.Err.Error()
	}
	return res.Text
}
