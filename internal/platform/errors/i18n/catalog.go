// Package i18n localizes error messages for panel surfaces.
//
// The panel's primary audience is Turkish dealers, so tr-TR is the
// richest catalog; en-US is the fallback for every other locale.
package i18n

import (
	"bytes"
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// BaseLocale is the fallback locale when no catalog matches.
const BaseLocale = "en-US"

// Code is a machine-readable error code (string form, duplicated from
// the errors package to avoid an import cycle).
type Code = string

var supported = []language.Tag{
	language.MustParse(BaseLocale), // matcher fallback, must be first
	language.MustParse("tr-TR"),
}

var matcher = language.NewMatcher(supported)

var catalogs = map[string]*Catalog{
	"en-US": {locale: "en-US", messages: enUS},
	"tr-TR": {locale: "tr-TR", messages: trTR},
}

// Catalog maps error codes to message templates for one locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// ForLocale returns the catalog that best matches a BCP 47 locale tag,
// falling back to en-US for unknown or malformed tags.
func ForLocale(locale string) *Catalog {
	resolved := BaseLocale
	if tag, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		_, idx, _ := matcher.Match(tag)
		resolved = supported[idx].String()
	}
	if c, ok := catalogs[resolved]; ok {
		return c
	}
	return catalogs[BaseLocale]
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template for code with the given metadata.
// Unknown codes fall back to the code itself so a missing translation
// never hides the failure.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
