// Package calendar converts between pipeline events and the iCalendar blobs
// kept in the event store.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/alexanderramin/dayplan/internal/domain"
)

const productID = "-//dayplan//schedule generator//EN"

// ErrNoEvents is returned when a payload holds no VEVENT.
var ErrNoEvents = errors.New("calendar: no VEVENT in payload")

// EventTimes resolves an event's wall-clock fields in loc. An end time at or
// before the start rolls over to the next day.
func EventTimes(ev domain.Event, loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(domain.DateLayout, ev.Date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("event date %q: %w", ev.Date, err)
	}
	startMin, err := domain.ClockMinutes(ev.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("event start: %w", err)
	}
	endMin, err := domain.ClockMinutes(ev.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("event end: %w", err)
	}
	start = day.Add(time.Duration(startMin) * time.Minute)
	endDay := day
	if endMin <= startMin {
		endDay = day.AddDate(0, 0, 1)
	}
	end = endDay.Add(time.Duration(endMin) * time.Minute)
	return start, end, nil
}

// EncodeEvent renders ev as a VCALENDAR holding one VEVENT with the given UID.
func EncodeEvent(ev domain.Event, uid string, loc *time.Location, stamp time.Time) (string, error) {
	start, end, err := EventTimes(ev, loc)
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	vevent := cal.AddEvent(uid)
	vevent.SetDtStampTime(stamp.UTC())
	vevent.SetStartAt(start.UTC())
	vevent.SetEndAt(end.UTC())
	vevent.SetSummary(ev.Title)
	if ev.Location != "" {
		vevent.SetLocation(ev.Location)
	}
	if ev.Description != "" {
		vevent.SetDescription(ev.Description)
	}
	return cal.Serialize(), nil
}

// DecodeEvents parses every VEVENT in payload back into events with wall
// clock fields in loc. VEVENTs without a usable start are skipped.
func DecodeEvents(payload string, loc *time.Location) ([]domain.Event, error) {
	if loc == nil {
		loc = time.UTC
	}
	cal, err := ical.ParseCalendar(strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	var events []domain.Event
	for _, ve := range cal.Events() {
		start, err := ve.GetStartAt()
		if err != nil {
			continue
		}
		end, err := ve.GetEndAt()
		if err != nil {
			end = start.Add(time.Hour)
		}
		start, end = start.In(loc), end.In(loc)
		events = append(events, domain.Event{
			Title:       propValue(ve, ical.ComponentPropertySummary),
			Date:        start.Format(domain.DateLayout),
			StartTime:   start.Format(domain.ClockLayout),
			EndTime:     end.Format(domain.ClockLayout),
			Location:    propValue(ve, ical.ComponentPropertyLocation),
			Description: propValue(ve, ical.ComponentPropertyDescription),
		})
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	return events, nil
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}
