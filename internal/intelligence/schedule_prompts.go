package intelligence

import (
	"fmt"
	"strings"
)

type timeBand struct {
	name       string
	start, end string
}

// timeBands maps loose phrases to clock ranges. Order is part of the prompt text.
var timeBands = []timeBand{
	{"morning", "06:00", "12:00"},
	{"afternoon", "12:00", "17:00"},
	{"evening", "17:00", "21:00"},
	{"night", "21:00", "23:59"},
	{"early morning", "05:00", "08:00"},
	{"late night", "22:00", "23:59"},
}

type prayerWindow struct {
	name       string
	start, end string
	keyword    string
}

// prayerWindows are the canonical daily prayers, in chronological order.
var prayerWindows = []prayerWindow{
	{"Fajr", "05:30", "06:00", "dawn"},
	{"Dhuhr", "12:30", "13:00", "noon"},
	{"Asr", "15:30", "16:00", "afternoon"},
	{"Maghrib", "18:30", "19:00", "sunset"},
	{"Isha", "20:00", "20:30", "night"},
}

// BuildSchedulePrompt renders the generation instruction for userText. The
// output depends only on its inputs.
func BuildSchedulePrompt(userText string, tc TimeContext) string {
	today := tc.TodayString()
	tomorrow := tc.TomorrowString()

	var b strings.Builder
	b.WriteString("You are a scheduling assistant that turns a natural-language request into calendar events.\n\n")
	fmt.Fprintf(&b, "Today is %s, %s. Tomorrow is %s.\n", tc.Weekday(), today, tomorrow)
	b.WriteString("Resolve relative days against these dates. If no day is mentioned, use today.\n\n")

	b.WriteString("Time-of-day bands (24-hour clock):\n")
	for _, band := range timeBands {
		fmt.Fprintf(&b, "- %s: %s-%s\n", band.name, band.start, band.end)
	}

	b.WriteString("\nDaily prayer windows:\n")
	for _, p := range prayerWindows {
		fmt.Fprintf(&b, "- %s: %s-%s\n", p.name, p.start, p.end)
	}

	b.WriteString(`
Output rules:
- Respond with ONLY a JSON array of objects. No prose, no markdown.
- Every object has exactly these keys: "title", "date", "start_time", "end_time", "location", "description".
- "date" is YYYY-MM-DD. "start_time" and "end_time" are HH:MM in 24-hour time.
- Use "" for an unknown location or description.
`)

	fmt.Fprintf(&b, `
Example request: "gym tomorrow at 7am for an hour, then breakfast"
Example response:
[{"title":"Gym","date":"%s","start_time":"07:00","end_time":"08:00","location":"","description":"Workout"},{"title":"Breakfast","date":"%s","start_time":"08:00","end_time":"08:30","location":"","description":""}]
`, tomorrow, tomorrow)

	fmt.Fprintf(&b, "\nRequest: %s\n", userText)
	return b.String()
}
