package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tartampluch/go-caltemp/internal/app"
	"github.com/tartampluch/go-caltemp/internal/assistant"
	"github.com/tartampluch/go-caltemp/internal/config"
	"github.com/tartampluch/go-caltemp/internal/engine"
	"github.com/tartampluch/go-caltemp/internal/holiday"
	"github.com/tartampluch/go-caltemp/internal/locale"
	"github.com/tartampluch/go-caltemp/internal/server"
	"github.com/tartampluch/go-caltemp/internal/store"
)

// cli holds the global flags and the collaborators shared by all commands.
type cli struct {
	debug   bool
	dataDir string
	lang    string

	in  io.Reader
	out io.Writer

	clock     engine.Clock
	completer assistant.Completer
	keys      keySource

	// initLogging is nil in tests.
	initLogging func(debug bool) io.Closer
	logCloser   io.Closer
}

// keySource is the credential storage used by the CLI. Implemented by store.Keyring.
type keySource interface {
	APIKey() (string, error)
	SetAPIKey(key string) error
	DeleteAPIKey() error
}

func newCLI(in io.Reader, out io.Writer) *cli {
	return &cli{
		in:          in,
		out:         out,
		clock:       engine.RealClock{},
		completer:   assistant.NewOpenRouterClient(),
		keys:        store.NewKeyring(),
		initLogging: setupLogging,
	}
}

func (c *cli) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close() // Best effort close
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           config.CmdRoot,
		Short:         config.DescRoot,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if c.initLogging != nil {
				c.logCloser = c.initLogging(c.debug)
			}
		},
	}
	root.SetVersionTemplate(versionText())
	root.SetIn(c.in)
	root.SetOut(c.out)

	flags := root.PersistentFlags()
	flags.BoolVar(&c.debug, config.FlagDebug, false, config.FlagDescDebug)
	flags.StringVar(&c.dataDir, config.FlagDataDir, "", config.FlagDescDataDir)
	flags.StringVar(&c.lang, config.FlagLang, "", config.FlagDescLang)

	root.AddCommand(
		c.holidaysCmd(),
		c.yearCmd(),
		c.eventsCmd(),
		c.dayCmd(),
		c.askCmd(),
		c.chatCmd(),
		c.serveCmd(),
		c.keyCmd(),
		c.settingsCmd(),
	)
	return root
}

// -----------------------------------------------------------------------------
// Wiring Helpers
// -----------------------------------------------------------------------------

func (c *cli) store() (*store.Store, error) {
	if c.dataDir != "" {
		return store.New(c.dataDir), nil
	}
	dir, err := store.DefaultDir()
	if err != nil {
		return nil, err
	}
	return store.New(dir), nil
}

// translator uses --lang when given, else the language from settings.
func (c *cli) translator(st *store.Store) *locale.Translator {
	lang := c.lang
	if lang == "" {
		lang = st.LoadSettings().Language
	}
	return locale.New(lang)
}

func (c *cli) session(st *store.Store, tr *locale.Translator) *app.Session {
	in := assistant.NewInterpreter(c.completer)
	in.Clock = c.clock
	return app.NewSession(in, st, c.keys, tr, &app.WriterNotifier{W: c.out})
}

// yearArg returns the year given on the command line, or the current one.
func (c *cli) yearArg(args []string) (int, error) {
	if len(args) == 0 {
		return c.clock.Now().Year(), nil
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrInvalidYear, err)
	}
	return year, nil
}

// -----------------------------------------------------------------------------
// Holidays
// -----------------------------------------------------------------------------

func (c *cli) holidaysCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "holidays [year]",
		Short: config.DescHolidays,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := c.yearArg(args)
			if err != nil {
				return err
			}
			list := holiday.Holidays(year)

			if asJSON {
				return c.printJSON(list)
			}
			for _, h := range list {
				fmt.Fprintf(c.out, config.FormatHolidayRow, h.Date, h.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, config.FlagJSON, false, config.FlagDescJSON)
	return cmd
}

func (c *cli) yearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "year [year]",
		Short: config.DescYear,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := c.yearArg(args)
			if err != nil {
				return err
			}
			info := holiday.YearDetails(year)
			fmt.Fprintf(c.out, config.FormatYearRow, info.Year, info.IsLeap, info.Days)
			return nil
		},
	}
}

func (c *cli) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

func (c *cli) eventsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: config.DescEvents,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store()
			if err != nil {
				return err
			}
			events, err := st.LoadEvents()
			if err != nil {
				return err
			}

			if asJSON {
				return c.printJSON(events)
			}

			tr := c.translator(st)
			if len(events) == 0 {
				fmt.Fprintln(c.out, tr.Msg(config.TKeyNoEvents, nil))
				return nil
			}

			slices.SortStableFunc(events, func(a, b engine.Event) int {
				return strings.Compare(a.Date, b.Date)
			})
			for _, e := range events {
				when := e.Date
				if at, err := e.When(); err == nil {
					when = at.Local().Format(config.DateLayoutDMY + " " + config.TimeLayoutHM)
				}
				fmt.Fprintf(c.out, config.FormatEventRow, when, e.Title, e.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, config.FlagJSON, false, config.FlagDescJSON)
	cmd.AddCommand(c.eventAddCmd(), c.eventEditCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: config.DescEvtDel,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store()
			if err != nil {
				return err
			}
			removed, err := st.DeleteEvent(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, config.FormatDeleted, removed.Title)
			return nil
		},
	})
	return cmd
}

// eventFlags holds the fields shared by events add and events edit.
type eventFlags struct {
	title       string
	date        string
	clock       string
	description string
	reminder    bool
}

func (f *eventFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.title, config.FlagTitle, "", config.FlagDescTitle)
	flags.StringVar(&f.date, config.FlagDate, "", config.FlagDescDate)
	flags.StringVar(&f.clock, config.FlagTime, config.DefaultEventTime, config.FlagDescTime)
	flags.StringVar(&f.description, config.FlagDescription, "", config.FlagDescDesc)
	flags.BoolVar(&f.reminder, config.FlagReminder, false, config.FlagDescRemind)
}

// apply copies the flags given on cmd into e. A day or a time given alone
// keeps the other half of the current date.
func (f *eventFlags) apply(cmd *cobra.Command, e *engine.Event, loc *time.Location) error {
	flags := cmd.Flags()
	if flags.Changed(config.FlagTitle) {
		if strings.TrimSpace(f.title) == "" {
			return errors.New(config.ErrEmptyTitle)
		}
		e.Title = f.title
	}
	if flags.Changed(config.FlagDescription) {
		e.Description = f.description
	}
	if flags.Changed(config.FlagReminder) {
		e.Reminder = f.reminder
	}

	daySet, timeSet := flags.Changed(config.FlagDate), flags.Changed(config.FlagTime)
	if !daySet && !timeSet {
		return nil
	}
	day, clock := f.date, f.clock
	if !daySet || !timeSet {
		current, err := e.When()
		if err != nil {
			return err
		}
		current = current.In(loc)
		if !daySet {
			day = current.Format(config.DateFormatDay)
		}
		if !timeSet {
			clock = current.Format(config.TimeLayoutHM)
		}
	}

	at, err := engine.ParseDayTime(day, clock, loc)
	if err != nil {
		return err
	}
	e.Date = engine.FormatEventDate(at)
	return nil
}

func (c *cli) eventAddCmd() *cobra.Command {
	var f eventFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: config.DescEvtAdd,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(f.title) == "" {
				return errors.New(config.ErrEmptyTitle)
			}
			at, err := engine.ParseDayTime(f.date, f.clock, c.clock.Now().Location())
			if err != nil {
				return err
			}

			st, err := c.store()
			if err != nil {
				return err
			}
			event, err := st.AddEvent(assistant.EventIntent{
				Title:       f.title,
				Date:        engine.FormatEventDate(at),
				Description: f.description,
				Reminder:    f.reminder,
			})
			if err != nil {
				return err
			}
			c.eventSaved(cmd, st, event)
			return nil
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired(config.FlagTitle)
	_ = cmd.MarkFlagRequired(config.FlagDate)
	return cmd
}

func (c *cli) eventEditCmd() *cobra.Command {
	var f eventFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: config.DescEvtEdit,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store()
			if err != nil {
				return err
			}
			loc := c.clock.Now().Location()
			event, err := st.UpdateEvent(args[0], func(e *engine.Event) error {
				return f.apply(cmd, e, loc)
			})
			if err != nil {
				return err
			}
			c.eventSaved(cmd, st, event)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

// eventSaved reports a stored event and sends the saved notice when
// notifications are on.
func (c *cli) eventSaved(cmd *cobra.Command, st *store.Store, e engine.Event) {
	fmt.Fprintf(c.out, config.FormatSaved, e.Title, e.ID)
	if st.LoadSettings().Notifications {
		app.NotifySaved(cmd.Context(), &app.WriterNotifier{W: c.out}, c.translator(st), e)
	}
}

// dayCmd lists the holiday and the events of one local day.
func (c *cli) dayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: config.DescDay,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := c.clock.Now()
			loc := now.Location()
			day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
			if len(args) == 1 {
				var err error
				if day, err = time.ParseInLocation(config.DateFormatDay, args[0], loc); err != nil {
					return fmt.Errorf("%s: %w", config.ErrInvalidDate, err)
				}
			}

			st, err := c.store()
			if err != nil {
				return err
			}
			events, err := st.LoadEvents()
			if err != nil {
				return err
			}
			tr := c.translator(st)

			fmt.Fprintf(c.out, config.FormatDayHeader, tr.Weekday(day.Weekday()), day.Format(config.DateLayoutDMY))
			if st.LoadSettings().ShowHolidays {
				if h, ok := holiday.Lookup(day); ok {
					fmt.Fprintf(c.out, config.FormatDayHoliday, h.Name)
				}
			}

			type dated struct {
				at    time.Time
				event engine.Event
			}
			key := day.Format(config.DateFormatDay)
			var list []dated
			for _, e := range events {
				at, err := e.When()
				if err != nil {
					continue
				}
				if at = at.In(loc); at.Format(config.DateFormatDay) == key {
					list = append(list, dated{at: at, event: e})
				}
			}
			if len(list) == 0 {
				fmt.Fprintln(c.out, tr.Msg(config.TKeyNoEvents, nil))
				return nil
			}

			slices.SortStableFunc(list, func(a, b dated) int { return a.at.Compare(b.at) })
			for _, d := range list {
				fmt.Fprintf(c.out, config.FormatEventRow, d.at.Format(config.TimeLayoutHM), d.event.Title, d.event.ID)
			}
			return nil
		},
	}
}

// -----------------------------------------------------------------------------
// Dexter
// -----------------------------------------------------------------------------

func (c *cli) askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <text>",
		Short: config.DescAsk,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store()
			if err != nil {
				return err
			}
			s := c.session(st, c.translator(st))

			reply, err := s.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, reply.Text)
			return nil
		},
	}
}

func (c *cli) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: config.DescChat,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store()
			if err != nil {
				return err
			}
			s := c.session(st, c.translator(st))
			return c.chatLoop(cmd, s)
		},
	}
}

// chatLoop reads one message per line until /quit, end of input or cancellation.
func (c *cli) chatLoop(cmd *cobra.Command, s *app.Session) error {
	ctx := cmd.Context()
	c.printLast(s)

	// done releases the reader goroutine when the loop returns first.
	done := make(chan struct{})
	defer close(done)

	scanner := bufio.NewScanner(c.in)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		fmt.Fprint(c.out, config.ChatPrompt)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				return scanner.Err()
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case config.ChatExitWord:
			return nil
		case config.ChatClearWord:
			s.Clear()
			c.printLast(s)
			continue
		}

		reply, err := s.Send(ctx, line)
		switch {
		case errors.Is(err, app.ErrBlankInput):
			continue
		case err != nil:
			fmt.Fprintf(c.out, config.FormatChatError, err)
			continue
		}
		fmt.Fprintln(c.out, reply.Text)
	}
}

func (c *cli) printLast(s *app.Session) {
	history := s.History()
	if len(history) > 0 {
		fmt.Fprintln(c.out, history[len(history)-1].Content)
	}
}

// -----------------------------------------------------------------------------
// Feed Server & Reminders
// -----------------------------------------------------------------------------

func (c *cli) serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: config.DescServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store()
			if err != nil {
				return err
			}
			logStartupInfo()

			srv := server.NewCalendarServer(port)
			notifier := app.MultiNotifier{app.LogNotifier{}, &app.WriterNotifier{W: c.out}}

			watcher := app.NewReminderWatcher(st, notifier, c.translator(st))
			watcher.Clock = c.clock
			publisher := &app.FeedPublisher{Events: st, Settings: st, Feed: srv, Clock: c.clock}

			fmt.Fprintf(c.out, config.MsgServeURL, config.LocalhostBindAddr, port, config.RouteCalendar)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.Start(ctx) })
			g.Go(func() error {
				return app.Schedule(ctx, config.ReminderCronSpec, publisher.Job(), watcher.Job())
			})
			if err := g.Wait(); err != nil {
				return err
			}

			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
			return nil
		},
	}

	cmd.Flags().StringVar(&port, config.FlagPort, config.DefaultPort, config.FlagDescPort)
	return cmd
}

// -----------------------------------------------------------------------------
// API Key
// -----------------------------------------------------------------------------

func (c *cli) keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: config.DescKey,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [key]",
		Short: config.DescKeySet,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.readKey(args)
			if err != nil {
				return err
			}
			if err := c.keys.SetAPIKey(key); err != nil {
				return err
			}
			fmt.Fprintln(c.out, config.MsgKeyStored)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: config.DescKeyDel,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.keys.DeleteAPIKey(); err != nil {
				return err
			}
			fmt.Fprintln(c.out, config.MsgKeyDeleted)
			return nil
		},
	})

	return cmd
}

// readKey takes the key from the argument, else from the first line of input.
func (c *cli) readKey(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}

var _ keySource = store.Keyring{}

// -----------------------------------------------------------------------------
// Settings
// -----------------------------------------------------------------------------

func (c *cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: config.DescSettings,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: config.DescSetShow,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store()
			if err != nil {
				return err
			}
			return c.printJSON(st.LoadSettings())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <field> <value>",
		Short: config.DescSetSet,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store()
			if err != nil {
				return err
			}
			settings, err := st.LoadSettings().With(args[0], args[1])
			if err != nil {
				return err
			}
			if err := st.SaveSettings(settings); err != nil {
				for _, msg := range store.ValidationMessages(err, c.translator(st).Language()) {
					fmt.Fprintln(c.out, msg)
				}
				return err
			}
			fmt.Fprintln(c.out, config.MsgSettingSaved)
			return nil
		},
	})

	return cmd
}
