package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dayplan/internal/domain"
)

var stamp = time.Date(2025, time.March, 14, 8, 0, 0, 0, time.UTC)

func TestEncodeEvent_WritesVEvent(t *testing.T) {
	ev := domain.Event{
		Title:       "Study Session",
		Date:        "2025-03-14",
		StartTime:   "09:00",
		EndTime:     "12:00",
		Location:    "Library",
		Description: "chapter 4",
	}

	payload, err := EncodeEvent(ev, "uid-1@dayplan", time.UTC, stamp)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(payload, "BEGIN:VCALENDAR"))
	assert.Contains(t, payload, "UID:uid-1@dayplan")
	assert.Contains(t, payload, "SUMMARY:Study Session")
	assert.Contains(t, payload, "DTSTART:20250314T090000Z")
	assert.Contains(t, payload, "DTEND:20250314T120000Z")
	assert.Contains(t, payload, "LOCATION:Library")
}

func TestEncodeDecode_RoundTripInZone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ev := domain.Event{Title: "Isha Prayer", Date: "2025-03-14", StartTime: "20:00", EndTime: "20:30", Location: "Mosque"}

	payload, err := EncodeEvent(ev, "uid-2", loc, stamp)
	require.NoError(t, err)
	assert.Contains(t, payload, "DTSTART:20250314T170000Z")

	decoded, err := DecodeEvents(payload, loc)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, ev, decoded[0])
}

func TestEncodeEvent_EndRollsPastMidnight(t *testing.T) {
	ev := domain.Event{Title: "Late", Date: "2025-03-14", StartTime: "23:00", EndTime: "01:00"}

	payload, err := EncodeEvent(ev, "uid-3", time.UTC, stamp)
	require.NoError(t, err)
	assert.Contains(t, payload, "DTEND:20250315T010000Z")
}

func TestEncodeEvent_RejectsBadFields(t *testing.T) {
	_, err := EncodeEvent(domain.Event{Title: "x", Date: "tomorrow", StartTime: "09:00", EndTime: "10:00"}, "u", time.UTC, stamp)
	assert.Error(t, err)

	_, err = EncodeEvent(domain.Event{Title: "x", Date: "2025-03-14", StartTime: "9am", EndTime: "10:00"}, "u", time.UTC, stamp)
	assert.Error(t, err)
}

func TestDecodeEvents_ForeignPayload(t *testing.T) {
	payload := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//other//EN",
		"BEGIN:VEVENT",
		"UID:a",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250102T100000Z",
		"DTEND:20250102T110000Z",
		"SUMMARY:Dentist",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250103T070000Z",
		"SUMMARY:Run",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	events, err := DecodeEvents(payload, time.UTC)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.Event{Title: "Dentist", Date: "2025-01-02", StartTime: "10:00", EndTime: "11:00"}, events[0])
	assert.Equal(t, "08:00", events[1].EndTime)
}

func TestDecodeEvents_NoEvents(t *testing.T) {
	_, err := DecodeEvents("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n", time.UTC)
	assert.ErrorIs(t, err, ErrNoEvents)
}
