package missions

import (
	"regexp"
	"strings"

	"github.com/louisbranch/missionboard/internal/services/board/domain"
)

// UntitledName replaces a blank mission name.
const UntitledName = "untitle"

var dateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDraft trims every field, substitutes UntitledName for a blank
// name, and extends a bare YYYY-MM-DD mission date to midnight.
func NormalizeDraft(d domain.MissionDraft) domain.MissionDraft {
	out := domain.MissionDraft{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		MissionDate: strings.TrimSpace(d.MissionDate),
		Time:        strings.TrimSpace(d.Time),
		Email:       strings.TrimSpace(d.Email),
		Phone:       strings.TrimSpace(d.Phone),
		Location:    strings.TrimSpace(d.Location),
	}
	if out.Name == "" {
		out.Name = UntitledName
	}
	if dateOnly.MatchString(out.MissionDate) {
		out.MissionDate += "T00:00:00"
	}
	return out
}
