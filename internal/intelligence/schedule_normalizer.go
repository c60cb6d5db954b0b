package intelligence

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/llm"
)

const (
	defaultEventTitle = "Untitled Event"
	defaultStartTime  = "12:00"
	defaultEndTime    = "13:00"
)

// NormalizeEvents converts raw model output into events. It returns nil when
// no array can be recovered or when no element survives coercion. Malformed
// elements are dropped individually, including those whose date or times do
// not parse.
func NormalizeEvents(raw string, today time.Time) []domain.Event {
	items, err := llm.ExtractJSONArray(raw)
	if err != nil {
		return nil
	}

	date := today.Format(domain.DateLayout)
	var events []domain.Event
	for _, item := range items {
		ev, ok := coerceEvent(item, date)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return nil
	}
	return events
}

func coerceEvent(item json.RawMessage, defaultDate string) (domain.Event, bool) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.Event{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return domain.Event{}, false
	}

	ev := domain.Event{}
	targets := []struct {
		key  string
		dst  *string
		dflt string
	}{
		{"title", &ev.Title, defaultEventTitle},
		{"date", &ev.Date, defaultDate},
		{"start_time", &ev.StartTime, defaultStartTime},
		{"end_time", &ev.EndTime, defaultEndTime},
		{"location", &ev.Location, ""},
		{"description", &ev.Description, ""},
	}
	for _, tgt := range targets {
		v, ok := coerceField(fields[tgt.key], tgt.dflt)
		if !ok {
			return domain.Event{}, false
		}
		*tgt.dst = v
	}
	if !validEventTimes(&ev) {
		return domain.Event{}, false
	}
	return ev, true
}

// validEventTimes requires a YYYY-MM-DD date and H:MM times, rewriting the
// times as HH:MM. Relative dates and meridiem clocks fail.
func validEventTimes(ev *domain.Event) bool {
	if _, err := time.Parse(domain.DateLayout, ev.Date); err != nil {
		return false
	}
	for _, clock := range []*string{&ev.StartTime, &ev.EndTime} {
		minutes, err := domain.ClockMinutes(*clock)
		if err != nil {
			return false
		}
		*clock = domain.FormatClock(minutes)
	}
	return true
}

// coerceField maps one JSON value onto a string. Structured values cannot
// stand in for a scalar field, so they reject the whole element.
func coerceField(raw json.RawMessage, dflt string) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return dflt, true
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		return "", false
	default:
		return string(raw), true
	}
}
