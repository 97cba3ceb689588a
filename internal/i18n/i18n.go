// Package i18n loads YAML message catalogs and resolves localized strings
// by dot-separated keys.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultDir = "internal/i18n/locales"

// Translator resolves localized strings using dot-separated keys.
type Translator interface {
	T(key string) string
	Tf(key string, args ...any) string
	Lang() string
}

// Manager holds the loaded catalogs for every language.
type Manager struct {
	catalogs    map[string]map[string]string
	defaultLang string
}

// Load reads catalogs from the default locales directory.
func Load(defaultLang string) (*Manager, error) {
	return LoadFromDir(defaultDir, defaultLang)
}

// LoadFromDir reads every YAML file in dir. Each file maps a language code
// to a nested message tree; trees are flattened into dot keys and merged
// across files.
func LoadFromDir(dir, defaultLang string) (*Manager, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read dir %s: %w", dir, err)
	}

	catalogs := make(map[string]map[string]string)
	var loaded int

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := mergeFile(catalogs, path); err != nil {
			return nil, err
		}
		loaded++
	}

	if loaded == 0 {
		return nil, fmt.Errorf("i18n: no yaml files found in %s", dir)
	}

	if defaultLang == "" {
		defaultLang = "en"
	}
	if _, ok := catalogs[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: default language %q is missing", defaultLang)
	}

	return &Manager{catalogs: catalogs, defaultLang: defaultLang}, nil
}

// Translator returns a translator for the requested language, falling back
// to the default language for unknown codes.
func (m *Manager) Translator(lang string) Translator {
	if m == nil {
		return translator{}
	}

	norm := strings.ToLower(strings.TrimSpace(lang))
	if norm == "" || m.catalogs[norm] == nil {
		norm = m.defaultLang
	}

	return translator{
		lang:     norm,
		fallback: m.defaultLang,
		catalogs: m.catalogs,
	}
}

// Languages returns all loaded language codes.
func (m *Manager) Languages() []string {
	if m == nil {
		return nil
	}

	languages := make([]string, 0, len(m.catalogs))
	for lang := range m.catalogs {
		languages = append(languages, lang)
	}
	return languages
}

type translator struct {
	lang     string
	fallback string
	catalogs map[string]map[string]string
}

func (t translator) Lang() string {
	return t.lang
}

// T resolves key in the translator's language, then the fallback language.
// Unknown keys come back verbatim so missing entries are visible in chat.
func (t translator) T(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	if value := t.lookup(t.lang, key); value != "" {
		return value
	}
	if value := t.lookup(t.fallback, key); value != "" {
		return value
	}

	return key
}

// Tf resolves key and applies fmt-style formatting.
func (t translator) Tf(key string, args ...any) string {
	template := t.T(key)
	if len(args) == 0 {
		return template
	}

	return fmt.Sprintf(template, args...)
}

func (t translator) lookup(lang, key string) string {
	if lang == "" || t.catalogs == nil {
		return ""
	}

	if entries := t.catalogs[lang]; entries != nil {
		return entries[key]
	}

	return ""
}

func isYAML(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func mergeFile(catalogs map[string]map[string]string, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("i18n: read file %s: %w", path, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("i18n: parse file %s: %w", path, err)
	}

	for lang, tree := range raw {
		langKey := strings.ToLower(strings.TrimSpace(lang))
		if langKey == "" {
			continue
		}

		subtree := toStringMap(tree)
		if len(subtree) == 0 {
			continue
		}

		flattened := make(map[string]string)
		flatten("", subtree, flattened)
		if len(flattened) == 0 {
			continue
		}

		if catalogs[langKey] == nil {
			catalogs[langKey] = make(map[string]string)
		}
		for key, value := range flattened {
			catalogs[langKey][key] = value
		}
	}

	return nil
}

func toStringMap(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case map[interface{}]any:
		converted := make(map[string]any, len(v))
		for key, item := range v {
			if keyStr, ok := key.(string); ok {
				converted[keyStr] = item
			}
		}
		return converted
	default:
		return nil
	}
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for key, value := range in {
		if key == "" {
			continue
		}

		nextKey := key
		if prefix != "" {
			nextKey = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			out[nextKey] = v
		default:
			if child := toStringMap(v); len(child) > 0 {
				flatten(nextKey, child, out)
			}
		}
	}
}
