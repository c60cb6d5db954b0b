package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// ClockMinutes converts an "HH:MM" string to minutes after midnight.
func ClockMinutes(clock string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock %q", clock)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || len(m) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes after midnight as "HH:MM", wrapping past
// midnight.
func FormatClock(minutes int) string {
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddClockMinutes returns start plus delta minutes as "HH:MM". Hours roll
// over modulo 24; there is no date carry.
func AddClockMinutes(start string, delta int) (string, error) {
	base, err := ClockMinutes(start)
	if err != nil {
		return "", err
	}
	return FormatClock(base + delta), nil
}
