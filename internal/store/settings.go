package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"

	"github.com/tartampluch/go-caltemp/internal/config"
)

// Settings is the settings.json document.
type Settings struct {
	Theme          string   `json:"theme" validate:"oneof=dark light"`
	StartMinimized bool     `json:"startMinimized"`
	Notifications  bool     `json:"notifications"`
	AIEnabled      bool     `json:"aiEnabled"`
	FontSize       int      `json:"fontSize" validate:"oneof=14 16 20"`
	ShowHolidays   bool     `json:"showHolidays"`
	ShowNamedays   bool     `json:"showNamedays"`
	TitlebarStyle  string   `json:"titlebarStyle" validate:"oneof=macos windows"`
	WindowEffect   string   `json:"windowEffect" validate:"oneof=none blur acrylic mica"`
	AutoStart      bool     `json:"autoStart"`
	AIModel        string   `json:"aiModel"`
	CustomModels   []string `json:"customModels" validate:"dive,required"`
	Language       string   `json:"language" validate:"oneof=fr en"`
}

// DefaultSettings returns the defaults for the given GOOS value.
func DefaultSettings(goos string) Settings {
	s := Settings{
		Theme:         config.ThemeDark,
		Notifications: true,
		AIEnabled:     true,
		FontSize:      config.DefaultFontSize,
		ShowHolidays:  true,
		ShowNamedays:  true,
		TitlebarStyle: config.TitlebarWindows,
		WindowEffect:  config.WindowEffectNone,
		AIModel:       config.DefaultModel,
		CustomModels:  []string{},
		Language:      config.DefaultLanguage,
	}
	switch goos {
	case config.GOOSDarwin:
		s.TitlebarStyle = config.TitlebarMacOS
	case config.GOOSWindows:
		s.WindowEffect = config.WindowEffectMica
	}
	return s
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	uni          *ut.UniversalTranslator
)

// settingsValidator initializes the singleton validator with French and
// English messages and json tag names.
func settingsValidator() *validator.Validate {
	validateOnce.Do(func() {
		frLoc := fr.New()
		uni = ut.New(frLoc, frLoc, en.New())

		validate = validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		trFR, _ := uni.GetTranslator(config.LangFR)
		_ = fr_translations.RegisterDefaultTranslations(validate, trFR)
		trEN, _ := uni.GetTranslator(config.LangEN)
		_ = en_translations.RegisterDefaultTranslations(validate, trEN)
	})
	return validate
}

// ValidationMessages renders the field errors held by err in lang, one line
// per field. Other errors are returned as their text.
func ValidationMessages(err error, lang string) []string {
	settingsValidator()

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	trans, _ := uni.GetTranslator(lang) // falls back to French
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Translate(trans))
	}
	return out
}

// Validate reports every field holding a value the application cannot use.
func (s Settings) Validate() error {
	if err := settingsValidator().Struct(s); err != nil {
		return fmt.Errorf("%s: %w", config.ErrInvalidSettings, err)
	}
	return nil
}

// LoadSettings reads settings.json merged over the defaults of the running
// OS. A missing or corrupt file yields the defaults; out-of-range fields are
// reset individually.
func (s *Store) LoadSettings() Settings {
	def := DefaultSettings(runtime.GOOS)
	path := s.path(config.SettingsFileName)
	log := slog.With(config.LogKeyComponent, config.CompStore, config.LogKeyFile, path)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn(config.MsgSettingsBad, config.LogKeyError, err)
		}
		return def
	}

	// Unmarshalling onto the defaults keeps every field the file omits.
	merged := def
	if err := json.Unmarshal(data, &merged); err != nil {
		log.Warn(config.MsgSettingsBad, config.LogKeyError, err)
		return def
	}
	if merged.CustomModels == nil {
		merged.CustomModels = []string{}
	}

	return resetInvalid(merged, def)
}

// resetInvalid copies the default value into every field failing validation.
func resetInvalid(s, def Settings) Settings {
	err := settingsValidator().Struct(s)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return s
	}

	dst := reflect.ValueOf(&s).Elem()
	src := reflect.ValueOf(def)
	for _, fe := range verrs {
		// dive errors point at a slice element; reset the whole slice.
		name, _, _ := strings.Cut(fe.StructField(), "[")
		f := dst.FieldByName(name)
		if !f.IsValid() {
			continue
		}
		slog.Warn(config.MsgSettingReset,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyField, fe.Field())
		f.Set(src.FieldByName(name))
	}
	return s
}

// SaveSettings validates and writes settings.json.
func (s *Store) SaveSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if settings.CustomModels == nil {
		settings.CustomModels = []string{}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeAtomic(s.path(config.SettingsFileName), data); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteSettings, err)
	}
	slog.Debug(config.MsgSettingsSaved, config.LogKeyComponent, config.CompStore)
	return nil
}

// With returns a copy of s where the field with the given JSON name is set
// from its text form. Booleans and numbers are parsed, lists are
// comma-separated. The result is not validated.
func (s Settings) With(field, value string) (Settings, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return s, fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return s, fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}

	current, ok := doc[field]
	if !ok {
		return s, fmt.Errorf("%s: %q", config.ErrUnknownSetting, field)
	}

	switch current.(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("%s: %w", config.ErrSettingValue, err)
		}
		doc[field] = b
	case float64:
		n, err := strconv.Atoi(value)
		if err != nil {
			return s, fmt.Errorf("%s: %w", config.ErrSettingValue, err)
		}
		doc[field] = n
	case []any:
		items := []string{}
		for _, item := range strings.Split(value, config.ListSeparator) {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		doc[field] = items
	default:
		doc[field] = value
	}

	if data, err = json.Marshal(doc); err != nil {
		return s, fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}
	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return s, fmt.Errorf("%s: %w", config.ErrSettingValue, err)
	}
	return out, nil
}

// Models lists the model choices: the built-in ones then the user's own.
func (s Settings) Models() []string {
	out := append([]string{}, config.DefaultModels...)
	for _, m := range s.CustomModels {
		if !contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
