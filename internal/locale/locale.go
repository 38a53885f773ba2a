// Package locale renders user-facing replies and notifications in the
// configured language.
package locale

import (
	"embed"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/tartampluch/go-caltemp/internal/config"
)

//go:embed locales/*.yaml
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeExt    = ".yaml"
)

// Translator wraps a go-i18n bundle loaded from the embedded message files.
// It is not safe for concurrent SetLanguage calls.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	lang      string
	langs     []string
}

// New loads every embedded locale and selects lang, falling back to the
// default language when lang is empty or unknown.
func New(lang string) *Translator {
	bundle := i18n.NewBundle(language.French)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeExt) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeExt)
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		t.langs = append(t.langs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	t.SetLanguage(lang)
	return t
}

// Languages lists the loaded language codes.
func (t *Translator) Languages() []string {
	return t.langs
}

// Language returns the selected language code.
func (t *Translator) Language() string {
	return t.lang
}

// SetLanguage switches the reply language.
func (t *Translator) SetLanguage(lang string) {
	if !slices.Contains(t.langs, lang) {
		lang = config.DefaultLanguage
	}
	t.lang = lang
	t.localizer = i18n.NewLocalizer(t.bundle, lang)
}

// Msg translates key, filling template fields from data.
// An unknown key is returned as is.
func (t *Translator) Msg(key string, data map[string]any) string {
	if t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// When renders an event time as "<weekday> HH:MM" in the local zone.
func (t *Translator) When(at time.Time) string {
	at = at.Local()
	return t.Msg(config.TKeyFormatWhen, map[string]any{
		"Weekday": t.Weekday(at.Weekday()),
		"Time":    at.Format(config.TimeLayoutHM),
	})
}

// Weekday returns the translated name of d.
func (t *Translator) Weekday(d time.Weekday) string {
	return t.Msg(config.TKeyWeekdayPrefix+strings.ToLower(d.String()), nil)
}
