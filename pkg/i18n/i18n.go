package i18n

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const fallbackLanguage = "en"

type Translations map[string]string

type Localizer struct {
	locales         map[string]Translations
	defaultLanguage string
}

type Config struct {
	DefaultLanguage string
	TranslationDir  string
}

type languageKey struct{}

// NewLocalizer loads every <lang>.yaml file found in TranslationDir
func NewLocalizer(config *Config) (*Localizer, error) {
	defaultLanguage := config.DefaultLanguage
	if defaultLanguage == "" {
		defaultLanguage = fallbackLanguage
	}
	loc := &Localizer{locales: map[string]Translations{}, defaultLanguage: defaultLanguage}

	files, err := os.ReadDir(config.TranslationDir)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		ext := filepath.Ext(f.Name())
		if f.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(config.TranslationDir, f.Name()))
		if err != nil {
			return nil, err
		}
		var t Translations
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		loc.locales[strings.TrimSuffix(f.Name(), ext)] = t
	}

	return loc, nil
}

// NewStatic builds a localizer from in-memory translations
func NewStatic(defaultLanguage string, locales map[string]Translations) *Localizer {
	if defaultLanguage == "" {
		defaultLanguage = fallbackLanguage
	}
	return &Localizer{locales: locales, defaultLanguage: defaultLanguage}
}

func (l *Localizer) Locales() map[string]Translations {
	return l.locales
}

func (l *Localizer) IsLanguageSupported(lang string) bool {
	_, ok := l.locales[lang]
	return ok
}

func (l *Localizer) DefaultLanguage() string {
	return l.defaultLanguage
}

// ParseAcceptLanguage picks the first supported language of an
// Accept-Language header, or the default language.
func (l *Localizer) ParseAcceptLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		if tag == "" {
			continue
		}
		if l.IsLanguageSupported(tag) {
			return tag
		}
		if base := strings.Split(tag, "-")[0]; l.IsLanguageSupported(base) {
			return base
		}
	}
	return l.defaultLanguage
}

// LocalizeError returns localized message using template data
func (l *Localizer) LocalizeError(lang, key string, data map[string]interface{}) string {
	trans, ok := l.locales[lang][key]
	if !ok {
		trans, ok = l.locales[l.defaultLanguage][key]
	}
	if !ok {
		return key
	}
	tmpl, err := template.New(key).Parse(trans)
	if err != nil {
		return trans
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return trans
	}
	return out.String()
}

// WithLanguage stores the request language in ctx
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey{}, lang)
}

// LanguageFromContext returns the request language, "en" when unset
func LanguageFromContext(ctx context.Context) string {
	if ctx == nil {
		return fallbackLanguage
	}
	if lang, ok := ctx.Value(languageKey{}).(string); ok && lang != "" {
		return lang
	}
	return fallbackLanguage
}
