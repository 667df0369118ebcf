// Package i18n holds the localized message catalog. Messages are resolved
// through a Translator built once per request: the matched locale first,
// then the default locale, then the key itself.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/language"
)

const DefaultLocale = "en"

//go:embed locales/*.json
var localeFS embed.FS

// Catalog maps locale -> message key -> text.
type Catalog struct {
	messages      map[string]map[string]string
	defaultLocale string
	locales       []string
	matcher       language.Matcher
}

// Load reads the embedded locale files.
func Load(defaultLocale string) (*Catalog, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	messages := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		raw, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", entry.Name(), err)
		}
		var table map[string]string
		if err := jsoniter.ConfigFastest.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("decode locale %s: %w", entry.Name(), err)
		}
		messages[strings.TrimSuffix(entry.Name(), ".json")] = table
	}
	return New(defaultLocale, messages)
}

// New builds a catalog from an in-memory table. defaultLocale must be present.
func New(defaultLocale string, messages map[string]map[string]string) (*Catalog, error) {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	if _, ok := messages[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no messages", defaultLocale)
	}

	// default locale first so the matcher falls back to it
	locales := []string{defaultLocale}
	for loc := range messages {
		if loc != defaultLocale {
			locales = append(locales, loc)
		}
	}
	sort.Strings(locales[1:])

	tags := make([]language.Tag, len(locales))
	for i, loc := range locales {
		tags[i] = language.Make(loc)
	}

	return &Catalog{
		messages:      messages,
		defaultLocale: defaultLocale,
		locales:       locales,
		matcher:       language.NewMatcher(tags),
	}, nil
}

// Locales lists the supported locales, default first.
func (c *Catalog) Locales() []string {
	return append([]string(nil), c.locales...)
}

// Match resolves one or more locale preferences (plain tags like "fr-CA" or
// Accept-Language values) to a supported locale. Empty or unparseable input
// yields the default locale.
func (c *Catalog) Match(prefs ...string) string {
	var tags []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return c.defaultLocale
	}

	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.defaultLocale
	}
	return c.locales[idx]
}

// Translator resolves prefs once and returns a translator for that locale.
func (c *Catalog) Translator(prefs ...string) *Translator {
	return &Translator{catalog: c, locale: c.Match(prefs...)}
}

// Translator looks up messages for one resolved locale.
type Translator struct {
	catalog *Catalog
	locale  string
}

// Locale is the resolved locale.
func (t *Translator) Locale() string {
	if t == nil {
		return DefaultLocale
	}
	return t.locale
}

// T returns the message for key with {name} placeholders replaced from
// params, given as name/value pairs. Missing keys fall back to the default
// locale and then to the key itself.
func (t *Translator) T(key string, params ...string) string {
	msg, ok := t.lookup(key)
	if !ok {
		msg = key
	}
	if len(params) < 2 {
		return msg
	}

	pairs := make([]string, 0, len(params))
	for i := 0; i+1 < len(params); i += 2 {
		pairs = append(pairs, "{"+params[i]+"}", params[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

func (t *Translator) lookup(key string) (string, bool) {
	if t == nil || t.catalog == nil {
		return "", false
	}
	if msg, ok := t.catalog.messages[t.locale][key]; ok {
		return msg, true
	}
	msg, ok := t.catalog.messages[t.catalog.defaultLocale][key]
	return msg, ok
}
