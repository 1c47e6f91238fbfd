package entity

import (
	"regexp"
	"strings"
)

// Language is a lowercase ISO-style language code such as "en", "es" or "pt-br".
type Language string

const LanguageUnspecified Language = ""

var languagePattern = regexp.MustCompile(`^[a-z]{2,3}(-[a-z0-9]{2,8})?$`)

// Code returns the lowercase language code (without defaulting).
func (l Language) Code() string {
	return strings.TrimSpace(string(l))
}

// Valid reports whether the code looks like a language tag.
func (l Language) Valid() bool {
	return languagePattern.MatchString(l.Code())
}

// ParseLanguage converts an arbitrary string into a normalized Language value.
func ParseLanguage(code string) Language {
	return Language(strings.ToLower(strings.TrimSpace(code)))
}

// NormalizeItemToken lowercases and trims an item or word token for lookups.
func NormalizeItemToken(token string) string {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ""
	}
	return strings.ToLower(trimmed)
}

// roundRatio returns round-half-up(scale*num/den) for non-negative inputs, or 0 when den is 0.
func roundRatio(num, den, scale int) int {
	if den <= 0 || num <= 0 {
		return 0
	}
	return (2*scale*num + den) / (2 * den)
}

// Percent returns round(100*part/whole), or 0 when whole is 0.
func Percent(part, whole int) int {
	return roundRatio(part, whole, 100)
}
