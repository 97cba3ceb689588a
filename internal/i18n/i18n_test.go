package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocale(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.yaml", `
en:
  start:
    welcome: "Welcome!"
  common:
    enabled: "Enabled"
`)
	writeLocale(t, dir, "de.yaml", `
de:
  start:
    welcome: "Willkommen!"
`)

	mgr, err := LoadFromDir(dir, "en")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"en", "de"}, mgr.Languages())

	en := mgr.Translator("en")
	assert.Equal(t, "en", en.Lang())
	assert.Equal(t, "Welcome!", en.T("start.welcome"))

	de := mgr.Translator("de")
	assert.Equal(t, "Willkommen!", de.T("start.welcome"))
	// missing key falls back to the default language
	assert.Equal(t, "Enabled", de.T("common.enabled"))
	// unknown key comes back verbatim
	assert.Equal(t, "no.such.key", de.T("no.such.key"))
}

func TestManager_TranslatorFallsBackForUnknownLanguage(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.yaml", `
en:
  greeting: "Hello"
`)

	mgr, err := LoadFromDir(dir, "en")
	require.NoError(t, err)

	tr := mgr.Translator("xx")
	assert.Equal(t, "en", tr.Lang())
	assert.Equal(t, "Hello", tr.T("greeting"))
}

func TestTranslator_Tf(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.yaml", `
en:
  digest:
    good_morning: "Good morning! News about *%s*"
`)

	mgr, err := LoadFromDir(dir, "en")
	require.NoError(t, err)

	tr := mgr.Translator("en")
	assert.Equal(t, "Good morning! News about *rockets*", tr.Tf("digest.good_morning", "rockets"))
}

func TestLoadFromDir_Errors(t *testing.T) {
	_, err := LoadFromDir(filepath.Join(t.TempDir(), "missing"), "en")
	assert.Error(t, err)

	empty := t.TempDir()
	_, err = LoadFromDir(empty, "en")
	assert.Error(t, err)

	dir := t.TempDir()
	writeLocale(t, dir, "de.yaml", `
de:
  greeting: "Hallo"
`)
	_, err = LoadFromDir(dir, "en")
	assert.Error(t, err)
}
