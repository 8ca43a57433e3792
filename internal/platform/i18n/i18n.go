// Package i18n holds the locale set shared by missionboard packages.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.AmericanEnglish,
	language.Thai,
}

var matcher = language.NewMatcher(supported)

// SupportedTags returns the supported locales, default first.
func SupportedTags() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// DefaultTag returns the fallback locale.
func DefaultTag() language.Tag {
	return supported[0]
}

// ParseTag parses value and reports whether it maps onto a supported locale.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultTag(), false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return DefaultTag(), false
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return DefaultTag(), false
	}
	return supported[index], true
}

// MatchTags picks the best supported locale for tags.
func MatchTags(tags []language.Tag) language.Tag {
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultTag()
	}
	return supported[index]
}

// Resolve returns the supported locale for value, or the default. value is
// either one tag or a weighted list such as "th-TH,en;q=0.8".
func Resolve(value string) language.Tag {
	if tag, ok := ParseTag(value); ok {
		return tag
	}
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return DefaultTag()
	}
	return MatchTags(tags)
}
