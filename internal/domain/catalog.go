package domain

import "sort"

// Defaults applied when the user skips a selection.
const (
	DefaultLocation = "US"
	DefaultLanguage = "en"
)

// Locations maps supported Google News country codes to display names.
var Locations = map[string]string{
	"US": "United States",
	"GB": "United Kingdom",
	"DE": "Germany",
	"FR": "France",
	"IT": "Italy",
	"ES": "Spain",
	"CA": "Canada",
	"AU": "Australia",
	"IN": "India",
	"JP": "Japan",
}

// Languages maps supported feed language codes to display names.
var Languages = map[string]string{
	"en": "English",
	"de": "German",
	"fr": "French",
	"it": "Italian",
	"es": "Spanish",
	"ja": "Japanese",
	"hi": "Hindi",
}

// LocationNames returns supported location display names in alphabetical order.
func LocationNames() []string {
	return sortedValues(Locations)
}

// LanguageNames returns supported language display names in alphabetical order.
func LanguageNames() []string {
	return sortedValues(Languages)
}

func sortedValues(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for _, name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LocationCode resolves a display name back to its country code; ok is false when unknown.
func LocationCode(name string) (string, bool) {
	for code, display := range Locations {
		if display == name {
			return code, true
		}
	}
	return "", false
}

// LanguageCode resolves a display name back to its language code; ok is false when unknown.
func LanguageCode(name string) (string, bool) {
	for code, display := range Languages {
		if display == name {
			return code, true
		}
	}
	return "", false
}
