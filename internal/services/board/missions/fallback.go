package missions

import (
	"strings"
	"time"

	"github.com/louisbranch/missionboard/internal/services/board/domain"
	"golang.org/x/text/cases"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// FallbackMineID is the id of the personal mission served when the owned
// missions read fails.
const FallbackMineID int64 = 101

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func intPtr(v int) *int {
	return &v
}

// syntheticMissions is the listing served while the API is unreachable.
func syntheticMissions(now time.Time) []domain.Mission {
	stamp := formatTimestamp(now)
	return []domain.Mission{
		{
			ID:               1,
			Name:             "Protect the Sacred Temple",
			Description:      "Guard the ancient temple from invading forces.",
			Status:           domain.MissionOpen,
			ChiefID:          1,
			ChiefDisplayName: "Zen Master",
			CrewCount:        intPtr(2),
			CrewNames:        []string{"Dragon Spirit", "Wind Walker"},
			MissionDate:      "2025-10-26",
			Time:             "To be announced",
			Email:            "zen.master@example.com",
			Phone:            "081-234-5678",
			Location:         "Ancient Temple, Northern Mountain",
			CreatedAt:        stamp,
			UpdatedAt:        stamp,
		},
		{
			ID:               2,
			Name:             "Silent Infiltration",
			Description:      "Infiltrate the enemy camp and gather intelligence.",
			Status:           domain.MissionInProgress,
			ChiefID:          2,
			ChiefDisplayName: "Silent Blade",
			CrewCount:        intPtr(2),
			CrewNames:        []string{"Moon Shadow", "Fire Fox"},
			MissionDate:      "2025-11-05",
			Time:             "18:00 - 21:00",
			Email:            "silent.blade@example.com",
			Phone:            "089-876-5432",
			Location:         "Enemy Outpost, Shadow Valley",
			CreatedAt:        stamp,
			UpdatedAt:        stamp,
		},
		{
			ID:               3,
			Name:             "Dragon Boat Festival Security",
			Description:      "Maintain order and safety during the annual festival.",
			Status:           domain.MissionOpen,
			ChiefID:          3,
			ChiefDisplayName: "Fire Fox",
			CrewCount:        intPtr(5),
			CrewNames:        []string{"Water Dragon", "Wood Ox"},
			MissionDate:      "2025-06-20",
			Time:             "08:00 - 18:00",
			Email:            "firefox@temple.org",
			Phone:            "085-555-0123",
			Location:         "Riverside Park, East District",
			CreatedAt:        stamp,
			UpdatedAt:        stamp,
		},
		{
			ID:               4,
			Name:             "Shadow Intelligence Gathering",
			Description:      "Observe enemy movements near the border without detection.",
			Status:           domain.MissionInProgress,
			ChiefID:          4,
			ChiefDisplayName: "Moon Shadow",
			CrewCount:        intPtr(3),
			CrewNames:        []string{"Ghost Walker", "Mist Crawler"},
			MissionDate:      "2025-12-12",
			Time:             "22:00 - 04:00",
			Email:            "shadow@valley.ninja",
			Phone:            "082-999-8888",
			Location:         "Border Outpost, Northern Peaks",
			CreatedAt:        stamp,
			UpdatedAt:        stamp,
		},
		{
			ID:               5,
			Name:             "New Sample Mission",
			Description:      "This is a newly added mission to demonstrate the mission board.",
			Status:           domain.MissionOpen,
			ChiefID:          5,
			ChiefDisplayName: "New Hero",
			CrewCount:        intPtr(0),
			CrewNames:        []string{},
			MissionDate:      stamp,
			Time:             "09:00 - 17:00",
			Email:            "hero@xue.com",
			Phone:            "099-000-1111",
			Location:         "Central Plaza, Sky City",
			CreatedAt:        stamp,
			UpdatedAt:        stamp,
		},
	}
}

// fallbackMine is the personal mission served when the owned read fails.
func fallbackMine(now time.Time) []domain.Mission {
	stamp := formatTimestamp(now)
	return []domain.Mission{{
		ID:               FallbackMineID,
		Name:             "My Personal Mission",
		Description:      "This is a mission I created myself.",
		Status:           domain.MissionOpen,
		ChiefID:          1,
		ChiefDisplayName: "Me",
		CrewCount:        intPtr(0),
		MissionDate:      stamp,
		CreatedAt:        stamp,
		UpdatedAt:        stamp,
	}}
}

// filterMissions keeps missions whose name contains filter.Name under
// Unicode case folding and whose status equals filter.Status. Empty filter
// fields match everything.
func filterMissions(missions []domain.Mission, filter domain.MissionFilter) []domain.Mission {
	fold := cases.Fold()
	needle := fold.String(filter.Name)
	out := make([]domain.Mission, 0, len(missions))
	for _, m := range missions {
		if needle != "" && !strings.Contains(fold.String(m.Name), needle) {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		out = append(out, m)
	}
	return out
}
