package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Caltemp/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Caltemp"
	AppID             = "com.github.tartampluch.go-caltemp"
	KeyringService    = "com.github.tartampluch.go-caltemp"
	KeyringUser       = "openrouter"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EventsFileName    = "events.json"
	SettingsFileName  = "settings.json"
	TempFilePattern   = ".caltemp-*.tmp"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the two JSON documents.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	CmdRoot     = "go-caltemp"
	FlagDebug   = "debug"
	FlagDataDir = "data-dir"
	FlagLang    = "lang"
	FlagJSON    = "json"
	FlagPort    = "port"

	FlagTitle        = "title"
	FlagDate         = "date"
	FlagTime         = "time"
	FlagDescription  = "description"
	FlagReminder     = "reminder"
	DefaultEventTime = "12:00"

	FlagDescDebug   = "Enable debug logging"
	FlagDescDataDir = "Directory holding events.json and settings.json"
	FlagDescLang    = "Reply language (fr, en); overrides settings"
	FlagDescJSON    = "Print JSON instead of text"
	FlagDescPort    = "Port of the calendar feed server"
	FlagDescTitle   = "Event title"
	FlagDescDate    = "Event day, YYYY-MM-DD (local time)"
	FlagDescTime    = "Event time, HH:MM (local time)"
	FlagDescDesc    = "Event description"
	FlagDescRemind  = "Notify 15 minutes before the event"

	DescRoot     = "Calendar with holidays and the Dexter assistant"
	DescHolidays = "List public holidays for a year (default: current year)"
	DescYear     = "Show leap-year details for a year (default: current year)"
	DescEvents   = "List stored events"
	DescEvtDel   = "Delete an event by id or unique id prefix"
	DescEvtAdd   = "Create an event"
	DescEvtEdit  = "Change an event by id or unique id prefix; only the given flags are applied"
	DescDay      = "Show the holiday and the events of a day, YYYY-MM-DD (default: today)"
	DescAsk      = "Send one message to Dexter"
	DescChat     = "Start an interactive conversation with Dexter"
	DescServe    = "Serve the calendar feed and watch reminders"
	DescKey      = "Manage the OpenRouter API key stored in the OS keyring"
	DescKeySet   = "Store the API key (argument or stdin)"
	DescKeyDel   = "Remove the stored API key"
	DescSettings = "Show or change settings.json"
	DescSetShow  = "Print the effective settings as JSON"
	DescSetSet   = "Set one field by its JSON name (lists are comma-separated)"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	ChatPrompt       = "> "
	ChatExitWord     = "/quit"
	ChatClearWord    = "/clear"
	FormatHolidayRow = "%s  %s\n"
	FormatEventRow   = "%s  %s  %s\n"
	FormatYearRow    = "%d: leap=%t days=%d\n"
	MsgKeyStored     = "API key stored."
	MsgKeyDeleted    = "API key removed."
	MsgSettingSaved  = "Setting saved."
	FormatDeleted    = "Deleted: %s\n"
	FormatSaved      = "Saved: %s (%s)\n"
	FormatDayHeader  = "%s %s\n"
	FormatDayHoliday = "🎉 %s\n"
	FormatChatError  = "❌ %v\n"
	MsgServeURL      = "Calendar feed: http://%s:%s%s\n"
	FormatNotifyLine = "🔔 %s: %s\n"
)

// -----------------------------------------------------------------------------
// Settings Defaults (settings.json)
// -----------------------------------------------------------------------------

const (
	ThemeDark         = "dark"
	DefaultFontSize   = 16
	TitlebarMacOS     = "macos"
	TitlebarWindows   = "windows"
	WindowEffectNone  = "none"
	WindowEffectMica  = "mica"
	GOOSDarwin        = "darwin"
	GOOSWindows       = "windows"
	DefaultLanguage   = "fr"
	LangFR            = "fr"
	LangEN            = "en"
	ListSeparator     = ","
	DefaultPort       = "18081"
	ReminderCronSpec  = "@every 1m"
	ReminderLeadTime  = 15 * time.Minute
	ReminderICalAlarm = "-PT15M"
)

// SupportedLanguages defines the list of available reply languages (ISO 639-1).
var SupportedLanguages = []string{LangFR, LangEN}

// -----------------------------------------------------------------------------
// Assistant: Local Command Parsing
// -----------------------------------------------------------------------------

const (
	// CommandSpace matches any Unicode space, including NBSP and narrow NBSP.
	CommandSpace = `[\s\v\p{Z}\x{FEFF}]`

	// CommandPattern recognizes "Rappel <title> à 14h", "rdv dentiste 9:30", ...
	// Group 1 is the leading title, 2 the hour, 3 the minute, 4 the trailing title.
	CommandPattern = `(?i)(?:rappel|événement|event|rdv)` + CommandSpace + `+(?:pour|le)?` + CommandSpace + `*(.*?)(?:` +
		CommandSpace + `+(?:à|@)` + CommandSpace + `*|` + CommandSpace + `+)(\d{1,2})(?:h|:)?(\d{2})?(?:` +
		CommandSpace + `+(.*))?`

	DefaultEventTitle   = "Rappel"
	FormatLocalDesc     = `Créé par Dexter depuis: "%s"`
	MaxHour             = 23
	MaxMinute           = 59
	HistoryWindow       = 10
	ActionCreateEvent   = "create_event"
	FencedJSONPattern   = "```json\\s*(\\{[\\s\\S]*?\\})\\s*```"
	BareJSONPattern     = `\{[\s\S]*?\}`
	DateFormatISOMillis = "2006-01-02T15:04:05.000Z"
	DateFormatDay       = "2006-01-02"
	DateFormatLocalSec  = "2006-01-02T15:04:05"
	DateFormatLocalMin  = "2006-01-02T15:04"
	FormatCivilDate     = "%04d-%02d-%02d"

	// GuidanceReply is returned when nothing matched locally and no API key is configured.
	GuidanceReply = "Je ne peux pas répondre à cela. Configurez une clé API OpenRouter dans les paramètres pour activer l'intelligence artificielle, ou utilisez la commande 'Rappel [titre] à [heure]'."

	// FormatRemoteError prefixes a failed remote call in the conversation.
	FormatRemoteError = "❌ Erreur IA : %s"

	WelcomeMessage = "Bonjour ! Je suis Dexter. Dites-moi simplement 'Rappel acheter du pain à 14h' pour créer un événement."
	HistoryCleared = "Historique effacé."
)

// SystemPromptTemplate is the fixed instruction sent ahead of the history.
// The single verb is the current local date-time.
const SystemPromptTemplate = `Tu es Dexter, un assistant calendrier intelligent et efficace. Nous sommes le %s.

Tes capacités :
1. Créer des événements et rappels.
2. Répondre aux questions générales.

IMPORTANT : Si l'utilisateur demande de créer un événement, un rappel ou un rendez-vous, tu DOIS répondre UNIQUEMENT avec un bloc JSON strict au format suivant (sans texte avant ni après) :
` + "```json" + `
{
    "action": "create_event",
    "data": {
        "title": "Titre de l'événement",
        "date": "Date ISO 8601 complète (ex: 2023-12-25T14:00:00.000Z)",
        "description": "Description contextuelle",
        "reminder": true
    }
}
` + "```" + `

Pour tout autre message, réponds normalement en texte de manière concise et amicale.`

// PromptDateLayout renders "now" inside the system prompt (dd/mm/yyyy hh:mm:ss).
const PromptDateLayout = "02/01/2006 15:04:05"

// -----------------------------------------------------------------------------
// Assistant: Remote Completion (OpenRouter)
// -----------------------------------------------------------------------------

const (
	OpenRouterBaseURL  = "https://openrouter.ai/api/v1"
	DefaultModel       = "mistralai/mistral-7b-instruct"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
	HeaderReferer      = "HTTP-Referer"
	HeaderTitle        = "X-Title"
	RefererValue       = "https://caltemp.app"
	TitleValue         = "Caltemp"
	FormatHTTPStatus   = "Erreur %d"
)

// DefaultModels lists the models offered in settings (first is the free default).
var DefaultModels = []string{
	DefaultModel,
	"openai/gpt-3.5-turbo",
	"openai/gpt-4-turbo",
	"anthropic/claude-3-opus",
	"google/gemini-pro",
}

// -----------------------------------------------------------------------------
// Holidays
// -----------------------------------------------------------------------------

const (
	HolidayNewYear      = "Jour de l'An"
	HolidayLabourDay    = "Fête du Travail"
	HolidayVictoryDay   = "Victoire 1945"
	HolidayBastilleDay  = "Fête Nationale"
	HolidayAssumption   = "Assomption"
	HolidayAllSaints    = "Toussaint"
	HolidayArmistice    = "Armistice 1918"
	HolidayChristmas    = "Noël"
	HolidayEasterMonday = "Lundi de Pâques"
	HolidayAscension    = "Ascension"
	HolidayWhitMonday   = "Lundi de Pentecôte"

	EasterMondayOffset = 1
	AscensionOffset    = 39
	WhitMondayOffset   = 50

	DaysInYear     = 365
	DaysInLeapYear = 366
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWelcome        = "welcome"
	TKeyHistoryCleared = "history_cleared"
	TKeyGuidance       = "guidance"
	TKeyEventNoted     = "event_noted" // Requires Title, When
	TKeyEventDone      = "event_done"  // Requires Title, When
	TKeyAIError        = "ai_error"    // Requires Message
	TKeyNotifSaved     = "notif_saved"
	TKeyNotifSavedBody = "notif_saved_body" // Requires Title, Date
	TKeyNotifReminder  = "notif_reminder"
	TKeyNotifSoon      = "notif_soon"  // Requires Title
	TKeyFormatWhen     = "format_when" // Requires Weekday, Time
	TKeyNoEvents       = "no_events"

	// TKeyWeekdayPrefix + lowercase English weekday name, e.g. "weekday_monday".
	TKeyWeekdayPrefix = "weekday_"
	TimeLayoutHM      = "15:04"
	DateLayoutDMY     = "02/01/2006"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Caltemp//Engine//FR"
	ICalCalName   = "Caltemp"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "caltemp"
	ICalTransp    = "TRANSPARENT"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropTransp      = "TRANSP"

	FormatEventUID   = "%s@%s"
	FormatHolidayUID = "holiday-%s-%s@%s"

	DefaultICalRefresh = 1 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when there is nothing to publish.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 60 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	RouteCalendar      = "/calendar.ics"
	RouteHolidays      = "/holidays/{year}"
	PathValueYear      = "year"
	AddrSeparator      = ":"
	CORSAnyOrigin      = "*"
	CORSMaxAge         = 300 // seconds
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrConfigDir       = "could not determine user config dir"
	ErrCreateDir       = "could not create app directory"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrReadEvents      = "failed to read events"
	ErrDecodeEvents    = "failed to decode events"
	ErrWriteEvents     = "failed to write events"
	ErrWriteSettings   = "failed to write settings"
	ErrEncodeJSON      = "failed to encode JSON document"
	ErrAtomicWrite     = "failed to replace file atomically"
	ErrKeyringRead     = "failed to read API key from keyring"
	ErrKeyringWrite    = "failed to store API key in keyring"
	ErrKeyringDelete   = "failed to delete API key from keyring"
	ErrEmptyAPIKey     = "API key is empty"
	ErrMissingAPIKey   = "Clé API manquante"
	ErrEmptyChoices    = "réponse vide du modèle"
	ErrInvalidYear     = "invalid year"
	ErrInvalidDate     = "invalid event date"
	ErrSchedule        = "failed to schedule reminder check"
	ErrCompleterAbsent = "internal error: completion client is not initialized"
	ErrInvalidSettings = "invalid settings"
	ErrBlankInput      = "message is empty"
	ErrUnknownSetting  = "unknown setting"
	ErrEmptyTitle      = "event title is required"
	ErrEventNotFound   = "no event with this id"
	ErrAmbiguousID     = "id prefix matches several events"
	ErrSettingValue    = "invalid setting value"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgBadYear      = "Bad Request: year must be an integer"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStop         = "Application stopped gracefully"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Calendar cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgLocalMatch      = "Local command matched"
	MsgInvalidTime     = "Command matched with out-of-range time"
	MsgNoCredential    = "No API key configured, returning guidance"
	MsgRemoteCall      = "Calling remote assistant"
	MsgRemoteFailed    = "Remote assistant failed"
	MsgRemoteIntent    = "Remote reply carries an event action"
	MsgPayloadInvalid  = "Remote JSON payload ignored"
	MsgEventSaved      = "Event saved"
	MsgEventDeleted    = "Event deleted"
	MsgEventUpdated    = "Event updated"
	MsgEventSaveFailed = "Event could not be saved"
	MsgSettingsBad     = "Settings file unreadable, using defaults"
	MsgSettingReset    = "Setting out of range, using default"
	MsgSettingsSaved   = "Settings saved"
	MsgKeyMissing      = "No API key in keyring"
	MsgInterpreted     = "Message interpreted"
	MsgNotifyFailed    = "Notification delivery failed"
	MsgEventsMissing   = "Events file not found, starting empty"
	MsgNotify          = "Notification"
	MsgReminderDue     = "Reminder due"
	MsgSchedStart      = "Scheduler started"
	MsgSchedStop       = "Scheduler stopping due to context cancellation"
	MsgJobFailed       = "Scheduled job failed"
	MsgCalendarBuilt   = "Calendar feed generated"
	MsgSkippedEvent    = "Skipping event with unreadable date"
	MsgPassFail        = "API key retrieval failed (might be empty)"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyModel     = "model"
	LogKeyHour      = "hour"
	LogKeyMinute    = "minute"
	LogKeyTitle     = "title"
	LogKeyDate      = "date"
	LogKeyID        = "id"
	LogKeyKind      = "kind"
	LogKeyCount     = "count"
	LogKeyHistory   = "history_len"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyBody      = "body"
	LogKeyDuration  = "duration_ms"
	LogKeyStats     = "stats"
	LogKeyEvents    = "events"
	LogKeySkipped   = "skipped"
	LogKeyHolidays  = "holidays"
	LogKeyField     = "field"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyCommit  = "commit"
	LogKeyBuilt   = "built"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain      = "main"
	CompAssistant = "assistant"
	CompRemote    = "openrouter"
	CompEngine    = "engine"
	CompStore     = "store"
	CompSession   = "session"
	CompWatcher   = "reminders"
	CompServer    = "server"
	CompI18n      = "i18n"
	CompNotifier  = "notifier"
)
