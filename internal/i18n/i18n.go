package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

//go:embed all:locales
var localeFS embed.FS

// Manager resolves user-facing messages from embedded locale bundles.
type Manager struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	localizers      map[string]*i18n.Localizer
}

// NewManager loads every locales/*.toml file into a bundle. defaultLang is
// used when a request asks for an unknown language.
func NewManager(defaultLang string) (*Manager, error) {
	defaultTag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("invalid default language tag %q: %w", defaultLang, err)
	}

	bundle := i18n.NewBundle(defaultTag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	m := &Manager{
		bundle:          bundle,
		defaultLanguage: defaultTag,
		localizers:      make(map[string]*i18n.Localizer),
	}

	files, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("read embedded locales: %w", err)
	}

	loaded := 0
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || filepath.Ext(name) != ".toml" {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			logrus.WithError(err).WithField("file", name).Warn("failed to load locale file")
			continue
		}
		loaded++

		// Filenames look like active.en.toml; the language code is the
		// second-to-last dot segment.
		parts := strings.Split(strings.TrimSuffix(name, ".toml"), ".")
		langCode := parts[len(parts)-1]
		m.localizers[langCode] = i18n.NewLocalizer(bundle, langCode)
	}
	if loaded == 0 {
		return nil, errors.New("no locale files loaded")
	}

	if _, ok := m.localizers[defaultLang]; !ok {
		m.localizers[defaultLang] = i18n.NewLocalizer(bundle, defaultLang)
	}

	logrus.WithFields(logrus.Fields{
		"default_language": defaultLang,
		"loaded":           loaded,
	}).Info("i18n manager initialized")
	return m, nil
}

// T localizes the message for lang, falling back to the default language and
// finally to the key itself.
func (m *Manager) T(lang, key string, templateData map[string]interface{}) string {
	if m == nil {
		return key
	}

	localizer, ok := m.localizers[lang]
	if !ok {
		localizer = m.localizers[m.defaultLanguage.String()]
	}
	if localizer == nil {
		return key
	}

	localized, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: templateData,
	})
	if err != nil {
		return key
	}
	return localized
}

// Resolve picks the first supported language from an Accept-Language header.
func (m *Manager) Resolve(acceptLanguage string) string {
	if m == nil {
		return ""
	}
	for _, part := range strings.Split(acceptLanguage, ",") {
		code := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if code == "" {
			continue
		}
		if tag, err := language.Parse(code); err == nil {
			base, _ := tag.Base()
			if _, ok := m.localizers[base.String()]; ok {
				return base.String()
			}
		}
	}
	return m.defaultLanguage.String()
}
