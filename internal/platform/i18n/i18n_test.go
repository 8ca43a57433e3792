package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		in     string
		want   language.Tag
		wantOK bool
	}{
		{in: "", want: language.AmericanEnglish, wantOK: false},
		{in: "not-a-lang!", want: language.AmericanEnglish, wantOK: false},
		{in: "th", want: language.Thai, wantOK: true},
		{in: "th-TH", want: language.Thai, wantOK: true},
		{in: "en", want: language.AmericanEnglish, wantOK: true},
		{in: "en-GB", want: language.AmericanEnglish, wantOK: true},
	}
	for _, tc := range tests {
		got, ok := ParseTag(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("ParseTag(%q) = %s, %v; want %s, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestMatchTagsPrefersSupported(t *testing.T) {
	got := MatchTags([]language.Tag{language.Japanese, language.Thai})
	if got != language.Thai {
		t.Fatalf("MatchTags = %s, want th", got)
	}
}

func TestSupportedTagsIsCopy(t *testing.T) {
	tags := SupportedTags()
	tags[0] = language.German
	if DefaultTag() != language.AmericanEnglish {
		t.Fatalf("default tag mutated: %s", DefaultTag())
	}
}

func TestResolveAcceptsWeightedList(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
	}{
		{in: "th", want: language.Thai},
		{in: "ja,th;q=0.8,en;q=0.5", want: language.Thai},
		{in: "en;q=0.9,th;q=0.1", want: language.AmericanEnglish},
		{in: "", want: language.AmericanEnglish},
		{in: ";;;", want: language.AmericanEnglish},
	}
	for _, tc := range tests {
		if got := Resolve(tc.in); got != tc.want {
			t.Fatalf("Resolve(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
