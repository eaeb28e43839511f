// Package i18n holds the user-facing string tables and picks a language
// from locale settings.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"golang.org/x/text/language"
)

// Fallback is the language every lookup falls back to.
const Fallback = "en"

// Language describes one supported language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages lists the supported languages in picker order.
var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "de", Name: "Deutsch"},
	{Code: "fr", Name: "Français"},
	{Code: "es", Name: "Español"},
	{Code: "it", Name: "Italiano"},
	{Code: "pt", Name: "Português"},
}

//go:embed locales/*.json
var localeFS embed.FS

var tables = mustLoad()

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
	language.Portuguese,
})

func mustLoad() map[string]map[string]string {
	out := make(map[string]map[string]string, len(Languages))
	for _, l := range Languages {
		data, err := localeFS.ReadFile(path.Join("locales", l.Code+".json"))
		if err != nil {
			panic(fmt.Sprintf("i18n: %v", err))
		}
		table := map[string]string{}
		if err := json.Unmarshal(data, &table); err != nil {
			panic(fmt.Sprintf("i18n: locale %s: %v", l.Code, err))
		}
		out[l.Code] = table
	}
	return out
}

// Supported reports whether code names a language with a string table.
func Supported(code string) bool {
	_, ok := tables[code]
	return ok
}

// T looks key up in lang, then in English, and returns the key itself
// when neither has it.
func T(lang, key string) string {
	if s, ok := tables[lang][key]; ok && s != "" {
		return s
	}
	if s, ok := tables[Fallback][key]; ok && s != "" {
		return s
	}
	return key
}

// Translator is T bound to one language.
type Translator struct {
	lang string
}

// New returns a translator for lang. Unsupported codes fall back to English.
func New(lang string) Translator {
	if !Supported(lang) {
		lang = Fallback
	}
	return Translator{lang: lang}
}

// Lang returns the active language code.
func (t Translator) Lang() string { return t.lang }

// T translates key.
func (t Translator) T(key string) string { return T(t.lang, key) }

// Detect picks the first supported language among locale tags such as
// "de_DE.UTF-8", "fr-CA" or "pt". Unparseable tags are skipped; the result
// is English when nothing matches.
func Detect(tags ...string) string {
	for _, raw := range tags {
		tag, ok := parseLocale(raw)
		if !ok {
			continue
		}
		_, idx, conf := matcher.Match(tag)
		if conf == language.No {
			continue
		}
		return Languages[idx].Code
	}
	return Fallback
}

// FromEnv detects the language from the POSIX locale variables.
func FromEnv() string {
	var tags []string
	for _, v := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		// LANGUAGE is a colon separated priority list.
		tags = append(tags, strings.Split(os.Getenv(v), ":")...)
	}
	return Detect(tags...)
}

func parseLocale(raw string) (language.Tag, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "" || s == "C" || s == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
