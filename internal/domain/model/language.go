package model

import (
	"fmt"
	"strings"
)

// Language is a supported UI/voice language.
type Language string

const (
	LanguageEN Language = "EN"
	LanguageCN Language = "CN"
	LanguageBM Language = "BM"
)

// Languages lists every supported language in display order.
var Languages = []Language{LanguageEN, LanguageCN, LanguageBM} //nolint:gochecknoglobals // fixed set

// ParseLanguage accepts EN, CN or BM (case-insensitive).
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToUpper(strings.TrimSpace(s)))
	switch l {
	case LanguageEN, LanguageCN, LanguageBM:
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

// Tag is the BCP 47 tag of the message catalog.
func (l Language) Tag() string {
	switch l {
	case LanguageCN:
		return "zh"
	case LanguageBM:
		return "ms"
	}
	return "en"
}

// Locale is the speech recognition locale.
func (l Language) Locale() string {
	switch l {
	case LanguageCN:
		return "zh-CN"
	case LanguageBM:
		return "ms-MY"
	}
	return "en-US"
}
