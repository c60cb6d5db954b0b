package domain

import "sort"

// Date and clock layouts used on the wire and in storage.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Event is a single calendar entry produced by the generation pipeline.
type Event struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// GenerationResult is the output of one orchestration run.
type GenerationResult struct {
	Events  []Event          `json:"events"`
	Summary string           `json:"summary"`
	Source  GenerationSource `json:"-"`
	Model   string           `json:"-"`
}

// SortEvents orders events by (date, start_time). The sort is stable so
// events sharing a slot keep their detection order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].StartTime < events[j].StartTime
	})
}
