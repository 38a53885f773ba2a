package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-caltemp/internal/assistant"
	"github.com/tartampluch/go-caltemp/internal/config"
	"github.com/tartampluch/go-caltemp/internal/engine"
	"github.com/tartampluch/go-caltemp/internal/holiday"
	"github.com/tartampluch/go-caltemp/internal/store"
)

// -----------------------------------------------------------------------------
// Mocks & Helpers
// -----------------------------------------------------------------------------

// 2025-06-15 is a Sunday.
var cliNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, creds assistant.Credentials, messages []assistant.Message) (string, error) {
	args := m.Called(ctx, creds, messages)
	return args.String(0), args.Error(1)
}

type harness struct {
	cli       *cli
	out       *bytes.Buffer
	completer *MockCompleter
	dataDir   string
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	keyring.MockInit()

	out := &bytes.Buffer{}
	completer := new(MockCompleter)
	c := &cli{
		in:        strings.NewReader(input),
		out:       out,
		clock:     engine.FixedClock(cliNow),
		completer: completer,
		keys:      store.NewKeyring(),
	}
	return &harness{cli: c, out: out, completer: completer, dataDir: t.TempDir()}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd(h.cli)
	root.SetArgs(append([]string{"--" + config.FlagDataDir, h.dataDir, "--" + config.FlagLang, "fr"}, args...))
	return root.ExecuteContext(context.Background())
}

// -----------------------------------------------------------------------------
// Holidays & Year
// -----------------------------------------------------------------------------

func TestHolidaysCmd_Text(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "holidays", "2024"))

	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "2024-01-01  Jour de l'An", lines[0])
	assert.Equal(t, "2024-04-01  Lundi de Pâques", lines[8])
}

func TestHolidaysCmd_JSONDefaultsToCurrentYear(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "holidays", "--json"))

	var got []holiday.Holiday
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &got))
	assert.Equal(t, holiday.Holidays(2025), got)
}

func TestHolidaysCmd_BadYear(t *testing.T) {
	h := newHarness(t, "")
	err := h.run(t, "holidays", "soon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrInvalidYear)
}

func TestYearCmd(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"year", "2024"}, "2024: leap=true days=366\n"},
		{[]string{"year", "1900"}, "1900: leap=false days=365\n"},
		{[]string{"year"}, "2025: leap=false days=365\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			h := newHarness(t, "")
			require.NoError(t, h.run(t, tt.args...))
			assert.Equal(t, tt.want, h.out.String())
		})
	}
}

// -----------------------------------------------------------------------------
// Dexter
// -----------------------------------------------------------------------------

func TestAskCmd_LocalCommand(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "ask", "Rappel", "acheter", "du", "pain", "à", "14h"))

	out := h.out.String()
	assert.Contains(t, out, "🔔 Événement enregistré: acheter du pain le 15/06/2025")
	assert.Contains(t, out, `✅ C'est noté ! J'ai ajouté "acheter du pain" pour dimanche 14:00.`)
	h.completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)

	events, err := store.New(h.dataDir).LoadEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "acheter du pain", events[0].Title)
}

func TestAskCmd_GuidanceWithoutKey(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "ask", "quel temps fait-il ?"))

	assert.Contains(t, h.out.String(), "Configurez une clé API OpenRouter")
	h.completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestAskCmd_RemoteIntent(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "key", "set", "sk-test"))
	h.out.Reset()

	reply := "```json\n{\"action\":\"create_event\",\"data\":{\"title\":\"Dentiste\",\"date\":\"2025-06-16T07:30:00.000Z\",\"description\":\"\",\"reminder\":true}}\n```"
	h.completer.On("Complete", mock.Anything, mock.MatchedBy(func(c assistant.Credentials) bool {
		return c.APIKey == "sk-test" && c.Model == config.DefaultModel
	}), mock.Anything).Return(reply, nil).Once()

	require.NoError(t, h.run(t, "ask", "prends rendez-vous chez le dentiste demain matin"))

	assert.Contains(t, h.out.String(), `✅ C'est fait ! J'ai ajouté "Dentiste"`)
	h.completer.AssertExpectations(t)

	events, err := store.New(h.dataDir).LoadEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2025-06-16T07:30:00.000Z", events[0].Date)
}

func TestChatCmd_Session(t *testing.T) {
	h := newHarness(t, "\n/clear\nRappel pain à 9h\n/quit\nRappel jamais lu à 10h\n")
	require.NoError(t, h.run(t, "chat"))

	out := h.out.String()
	assert.Contains(t, out, "Je suis Dexter")
	assert.Contains(t, out, "Historique effacé.")
	// 09:00 is before 10:00, so it rolls over to Monday.
	assert.Contains(t, out, `J'ai ajouté "pain" pour lundi 09:00.`)
	assert.NotContains(t, out, "jamais lu")

	events, err := store.New(h.dataDir).LoadEvents()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestChatCmd_ContinuesAfterSaveFailure(t *testing.T) {
	h := newHarness(t, "Rappel pain à 9h\n/clear\n")
	// A directory where events.json should be makes every save fail.
	require.NoError(t, os.Mkdir(filepath.Join(h.dataDir, "events.json"), 0700))

	require.NoError(t, h.run(t, "chat"))
	out := h.out.String()
	assert.Contains(t, out, "❌ ")
	assert.Contains(t, out, "Historique effacé.")
}

func TestChatCmd_EndOfInput(t *testing.T) {
	h := newHarness(t, "Rappel pain à 9h")
	require.NoError(t, h.run(t, "chat"))
	assert.Contains(t, h.out.String(), `"pain"`)
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

func TestEventsCmd(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run(t, "events"))
	assert.Equal(t, "Aucun événement.\n", h.out.String())

	require.NoError(t, h.run(t, "ask", "rdv dentiste 9:30"))
	require.NoError(t, h.run(t, "ask", "Rappel pain à 14h"))
	h.out.Reset()

	require.NoError(t, h.run(t, "events"))
	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.Len(t, lines, 2)
	// Sorted by date: today 14:00 before tomorrow 09:30.
	assert.True(t, strings.HasPrefix(lines[0], "15/06/2025 14:00  pain  "))
	assert.True(t, strings.HasPrefix(lines[1], "16/06/2025 09:30  dentiste  "))
}

func TestEventsCmd_Delete(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "ask", "Rappel pain à 14h"))

	events, err := store.New(h.dataDir).LoadEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	h.out.Reset()

	require.NoError(t, h.run(t, "events", "delete", events[0].ID[:8]))
	assert.Equal(t, "Deleted: pain\n", h.out.String())

	events, err = store.New(h.dataDir).LoadEvents()
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.Error(t, h.run(t, "events", "delete", "missing"))
}

func TestEventsCmd_AddAndEdit(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run(t, "events", "add",
		"--title", "Dentiste", "--date", "2025-06-20", "--time", "14:30",
		"--description", "Contrôle", "--reminder"))
	out := h.out.String()
	assert.Contains(t, out, "Saved: Dentiste (")
	assert.Contains(t, out, "🔔 Événement enregistré: Dentiste le 20/06/2025")

	events, err := store.New(h.dataDir).LoadEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	created := events[0]
	assert.Equal(t, "Dentiste", created.Title)
	assert.Equal(t, "Contrôle", created.Description)
	assert.True(t, created.Reminder)
	assert.Equal(t, engine.FormatEventDate(time.Date(2025, 6, 20, 14, 30, 0, 0, time.Local)), created.Date)

	// Only the time changes; the day and the other fields are kept.
	h.out.Reset()
	require.NoError(t, h.run(t, "events", "edit", created.ID[:8], "--time", "09:00"))
	assert.Contains(t, h.out.String(), "Saved: Dentiste ("+created.ID+")")

	events, err = store.New(h.dataDir).LoadEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, created.ID, events[0].ID)
	assert.Equal(t, "Contrôle", events[0].Description)
	assert.Equal(t, engine.FormatEventDate(time.Date(2025, 6, 20, 9, 0, 0, 0, time.Local)), events[0].Date)

	require.NoError(t, h.run(t, "events", "edit", created.ID, "--title", "Médecin", "--reminder=false", "--date", "2025-06-21"))
	events, err = store.New(h.dataDir).LoadEvents()
	require.NoError(t, err)
	assert.Equal(t, "Médecin", events[0].Title)
	assert.False(t, events[0].Reminder)
	assert.Equal(t, engine.FormatEventDate(time.Date(2025, 6, 21, 9, 0, 0, 0, time.Local)), events[0].Date)
}

func TestEventsCmd_AddDefaultsAndErrors(t *testing.T) {
	h := newHarness(t, "")

	tests := []struct {
		name string
		args []string
	}{
		{"Missing date", []string{"--title", "Sport"}},
		{"Missing title", []string{"--date", "2025-06-20"}},
		{"Blank title", []string{"--title", "  ", "--date", "2025-06-20"}},
		{"Bad day", []string{"--title", "Sport", "--date", "20/06/2025"}},
		{"Bad time", []string{"--title", "Sport", "--date", "2025-06-20", "--time", "18h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, h.run(t, append([]string{"events", "add"}, tt.args...)...))
		})
	}

	events, err := store.New(h.dataDir).LoadEvents()
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, h.run(t, "events", "add", "--title", "Sport", "--date", "2025-06-20"))
	events, err = store.New(h.dataDir).LoadEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, engine.FormatEventDate(time.Date(2025, 6, 20, 12, 0, 0, 0, time.Local)), events[0].Date)
	assert.False(t, events[0].Reminder)

	// A rejected edit leaves the stored event untouched.
	assert.Error(t, h.run(t, "events", "edit", events[0].ID, "--title", ""))
	assert.Error(t, h.run(t, "events", "edit", events[0].ID, "--time", "25:00"))
	after, err := store.New(h.dataDir).LoadEvents()
	require.NoError(t, err)
	assert.Equal(t, events, after)
}

func TestEventsCmd_AddWithNotificationsOff(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "settings", "set", "notifications", "false"))
	h.out.Reset()

	require.NoError(t, h.run(t, "events", "add", "--title", "Sport", "--date", "2025-06-20"))
	assert.Contains(t, h.out.String(), "Saved: Sport (")
	assert.NotContains(t, h.out.String(), "🔔")
}

func TestDayCmd(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run(t, "day", "2025-06-09"))
	assert.Equal(t, "lundi 09/06/2025\n🎉 Lundi de Pentecôte\nAucun événement.\n", h.out.String())

	require.NoError(t, h.run(t, "events", "add", "--title", "Déjeuner", "--date", "2025-06-15", "--time", "12:30"))
	require.NoError(t, h.run(t, "events", "add", "--title", "Footing", "--date", "2025-06-15", "--time", "08:00"))
	require.NoError(t, h.run(t, "events", "add", "--title", "Demain", "--date", "2025-06-16", "--time", "08:00"))
	h.out.Reset()

	// Defaults to the current day.
	require.NoError(t, h.run(t, "day"))
	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "dimanche 15/06/2025", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "08:00  Footing  "))
	assert.True(t, strings.HasPrefix(lines[2], "12:30  Déjeuner  "))

	assert.Error(t, h.run(t, "day", "15/06/2025"))
}

func TestDayCmd_HolidaysHidden(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "settings", "set", "showHolidays", "false"))
	h.out.Reset()

	require.NoError(t, h.run(t, "day", "2025-12-25"))
	assert.NotContains(t, h.out.String(), holiday.Holidays(2025)[7].Name)
}

// -----------------------------------------------------------------------------
// API Key
// -----------------------------------------------------------------------------

func TestKeyCmd_SetFromStdinAndDelete(t *testing.T) {
	h := newHarness(t, "  sk-from-stdin  \n")

	require.NoError(t, h.run(t, "key", "set"))
	assert.Equal(t, config.MsgKeyStored+"\n", h.out.String())

	key, err := store.NewKeyring().APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-from-stdin", key)

	h.out.Reset()
	require.NoError(t, h.run(t, "key", "delete"))
	assert.Equal(t, config.MsgKeyDeleted+"\n", h.out.String())

	key, err = store.NewKeyring().APIKey()
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestKeyCmd_SetEmpty(t *testing.T) {
	h := newHarness(t, "\n")
	err := h.run(t, "key", "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrEmptyAPIKey)
}

// -----------------------------------------------------------------------------
// Root
// -----------------------------------------------------------------------------

func TestRootCmd_Version(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "--version"))
	assert.Equal(t, versionText(), h.out.String())
	assert.Contains(t, h.out.String(), config.AppName)
}

// -----------------------------------------------------------------------------
// Settings
// -----------------------------------------------------------------------------

func TestSettingsCmd_SetAndShow(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run(t, "settings", "set", "fontSize", "20"))
	assert.Equal(t, config.MsgSettingSaved+"\n", h.out.String())
	h.out.Reset()

	require.NoError(t, h.run(t, "settings", "show"))
	var got store.Settings
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &got))
	assert.Equal(t, 20, got.FontSize)
	assert.Equal(t, config.DefaultModel, got.AIModel)
}

func TestSettingsCmd_RejectsInvalid(t *testing.T) {
	h := newHarness(t, "")

	root := newRootCmd(h.cli)
	root.SetArgs([]string{"--" + config.FlagDataDir, h.dataDir, "--" + config.FlagLang, "en", "settings", "set", "theme", "neon"})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)

	assert.Contains(t, h.out.String(), "theme must be one of [dark light]")
	assert.Equal(t, "dark", store.New(h.dataDir).LoadSettings().Theme)
}

func TestSettingsCmd_NotificationsOff(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.run(t, "settings", "set", "notifications", "false"))
	h.out.Reset()

	require.NoError(t, h.run(t, "ask", "Rappel pain à 14h"))
	assert.NotContains(t, h.out.String(), "🔔")
}
