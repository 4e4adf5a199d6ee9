package i18n

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocale(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestNewLocalizer(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.yaml", "category_not_found: \"Category {{.id}} was not found\"\n")
	writeLocale(t, dir, "th.yaml", "category_not_found: \"ไม่พบหมวดหมู่ {{.id}}\"\n")
	writeLocale(t, dir, "README.md", "not a locale")

	loc, err := NewLocalizer(&Config{DefaultLanguage: "en", TranslationDir: dir})
	require.NoError(t, err)

	assert.Len(t, loc.Locales(), 2)
	assert.True(t, loc.IsLanguageSupported("th"))
	assert.False(t, loc.IsLanguageSupported("de"))
	assert.Equal(t, "en", loc.DefaultLanguage())
}

func TestNewLocalizer_MissingDir(t *testing.T) {
	_, err := NewLocalizer(&Config{TranslationDir: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestLocalizeError(t *testing.T) {
	loc := NewStatic("en", map[string]Translations{
		"en": {"product_not_found": "Product {{.id}} was not found", "only_en": "english"},
		"th": {"product_not_found": "ไม่พบสินค้า {{.id}}"},
	})
	data := map[string]interface{}{"id": "abc"}

	tests := []struct {
		name string
		lang string
		key  string
		want string
	}{
		{"english", "en", "product_not_found", "Product abc was not found"},
		{"thai", "th", "product_not_found", "ไม่พบสินค้า abc"},
		{"falls back to default language", "th", "only_en", "english"},
		{"unknown key returns key", "en", "no_such_key", "no_such_key"},
		{"unknown language", "de", "product_not_found", "Product abc was not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loc.LocalizeError(tt.lang, tt.key, data))
		})
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	loc := NewStatic("en", map[string]Translations{"en": {}, "th": {}})

	assert.Equal(t, "th", loc.ParseAcceptLanguage("th-TH,th;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", loc.ParseAcceptLanguage("de-DE,en;q=0.5"))
	assert.Equal(t, "en", loc.ParseAcceptLanguage("fr"))
	assert.Equal(t, "en", loc.ParseAcceptLanguage(""))
}

func TestLanguageContext(t *testing.T) {
	assert.Equal(t, "en", LanguageFromContext(context.Background()))

	ctx := WithLanguage(context.Background(), "th")
	assert.Equal(t, "th", LanguageFromContext(ctx))
}
