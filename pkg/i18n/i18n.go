// Package i18n holds the localized message catalog: announcement text, voice
// feedback and the spoken keyword sets for every supported language.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message IDs.
const (
	MsgAlertAnnouncement = "alert.announcement"
	MsgAlertStatus       = "alert.status"
	MsgVoiceCalling      = "voice.calling"
	MsgVoiceListening    = "voice.listening"
	MsgKeywordsCancel    = "keywords.cancel"
	MsgKeywordsCall      = "keywords.call"
)

// keywordSeparator splits a keyword message into its alternatives.
const keywordSeparator = "|"

// Catalog resolves message IDs against the embedded locale files.
type Catalog struct {
	bundle *i18n.Bundle
	tags   []string
}

// New loads every embedded locale. defaultLang is the BCP 47 tag used when a
// message is missing from the requested language.
func New(defaultLang string) (*Catalog, error) {
	tag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, defaultLang)
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	c := &Catalog{bundle: bundle}
	for _, e := range entries {
		p := path.Join("locales", e.Name())
		buf, err := localeFS.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		mf, err := bundle.ParseMessageFileBytes(buf, p)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		c.tags = append(c.tags, mf.Tag.String())
	}
	return c, nil
}

// Tags lists the loaded language tags.
func (c *Catalog) Tags() []string {
	out := make([]string, len(c.tags))
	copy(out, c.tags)
	return out
}

// T returns the message for key in languageTag, rendered with data. Missing
// messages fall back to the key itself.
func (c *Catalog) T(languageTag, key string, data map[string]interface{}) string {
	out, err := c.Localize(languageTag, key, data)
	if err != nil {
		return key
	}
	return out
}

// Localize is T with the lookup error exposed.
func (c *Catalog) Localize(languageTag, key string, data map[string]interface{}) (string, error) {
	localizer := i18n.NewLocalizer(c.bundle, languageTag)
	out, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s (%s): %v", ErrMissingMessage, key, languageTag, err)
	}
	return out, nil
}

// Keywords returns the lower-cased alternatives of a keyword message for one
// language.
func (c *Catalog) Keywords(languageTag, key string) []string {
	raw, err := c.Localize(languageTag, key, nil)
	if err != nil {
		return nil
	}
	var out []string
	for _, k := range strings.Split(raw, keywordSeparator) {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// AllKeywords merges a keyword message across every loaded language,
// preserving first-seen order.
func (c *Catalog) AllKeywords(key string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range c.tags {
		for _, k := range c.Keywords(tag, key) {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
