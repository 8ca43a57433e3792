package domain

import "strings"

// MissionStatus is the lifecycle state of a mission.
type MissionStatus string

const (
	MissionOpen       MissionStatus = "Open"
	MissionInProgress MissionStatus = "InProgress"
	MissionCompleted  MissionStatus = "Completed"
	MissionFail       MissionStatus = "Fail"
)

// Valid reports whether s is one of the known statuses.
func (s MissionStatus) Valid() bool {
	switch s {
	case MissionOpen, MissionInProgress, MissionCompleted, MissionFail:
		return true
	}
	return false
}

// Mission is one mission as returned by the API or held in the joined cache.
type Mission struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description,omitempty"`
	Status           MissionStatus `json:"status,omitempty"`
	ChiefID          int64         `json:"chief_id"`
	ChiefDisplayName string        `json:"chief_display_name"`
	CrewCount        *int          `json:"crew_count,omitempty"`
	CrewNames        []string      `json:"crew_names,omitempty"`
	MissionDate      string        `json:"mission_date,omitempty"`
	Time             string        `json:"time,omitempty"`
	Email            string        `json:"email,omitempty"`
	Phone            string        `json:"phone,omitempty"`
	Location         string        `json:"location,omitempty"`
	CreatedAt        string        `json:"created_at,omitempty"`
	UpdatedAt        string        `json:"updated_at,omitempty"`
}

// MissionFilter narrows a mission listing. Empty fields match everything.
type MissionFilter struct {
	Name   string
	Status MissionStatus
}

// Normalized trims the filter fields.
func (f MissionFilter) Normalized() MissionFilter {
	return MissionFilter{
		Name:   strings.TrimSpace(f.Name),
		Status: MissionStatus(strings.TrimSpace(string(f.Status))),
	}
}

// MissionDraft is the body submitted to create a mission.
type MissionDraft struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MissionDate string `json:"mission_date,omitempty"`
	Time        string `json:"time,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Location    string `json:"location,omitempty"`
}

// MergeMissions concatenates lists in order, keeping only the first mission
// seen for each id. The first occurrence also fixes the final position.
func MergeMissions(lists ...[]Mission) []Mission {
	size := 0
	for _, list := range lists {
		size += len(list)
	}
	merged := make([]Mission, 0, size)
	seen := make(map[int64]struct{}, size)
	for _, list := range lists {
		for _, m := range list {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			merged = append(merged, m)
		}
	}
	return merged
}
