package intelligence

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/alexanderramin/dayplan/internal/domain"
)

const (
	defaultStudyMinutes = 120
	workMinutes         = 8 * 60
	genericTitleWords   = 4
	genericTitleChars   = 50
)

var (
	rangePattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*(-|to|until)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	clockPattern = regexp.MustCompile(`\b(?:at\s+)?(\d{1,2}):(\d{2})\s*(am|pm)?\b|\b(?:at\s+)?(\d{1,2})\s*(am|pm)\b|\bat\s+(\d{1,2})\b`)
	hoursPattern = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|h)\b`)
	wordPattern  = regexp.MustCompile(`[a-z0-9']+`)
)

var fallbackStopWords = map[string]bool{
	"i": true, "im": true, "i'm": true, "want": true, "wanna": true, "to": true, "the": true,
	"a": true, "an": true, "and": true, "or": true, "at": true, "on": true, "in": true,
	"for": true, "of": true, "my": true, "me": true, "please": true, "need": true,
	"would": true, "like": true, "schedule": true, "some": true, "today": true,
	"tomorrow": true, "with": true, "is": true, "be": true, "it": true, "do": true,
	"have": true, "get": true, "can": true, "you": true, "add": true, "plan": true,
	"set": true, "up": true, "then": true, "also": true, "will": true, "should": true,
}

// fallbackInput is the lower-cased request plus whatever clock information
// could be pulled out of it.
type fallbackInput struct {
	text     string
	date     string
	clock    int
	hasClock bool
	rangeLen int
	hasRange bool
	hourSpan int
	hasHours bool
}

type fallbackDetector func(in fallbackInput) []domain.Event

// fallbackDetectors run in order; each may add events independently.
var fallbackDetectors = []fallbackDetector{
	detectWake,
	detectPrayers,
	detectMeals,
	detectStudy,
	detectExercise,
	detectShower,
	detectWork,
}

// GenerateFallback turns userText into events with keyword rules alone. It
// never fails and never returns an empty list; events are sorted by date and
// start time.
func GenerateFallback(userText string, today time.Time) domain.GenerationResult {
	in := parseFallbackInput(userText, today)

	var events []domain.Event
	for _, detect := range fallbackDetectors {
		events = append(events, detect(in)...)
	}
	if len(events) == 0 {
		events = append(events, genericEvent(userText, in))
	}
	domain.SortEvents(events)

	return domain.GenerationResult{
		Events:  events,
		Summary: fmt.Sprintf("Generated %d event(s) in fallback mode (rule-based parser)", len(events)),
		Source:  domain.SourceFallback,
	}
}

func parseFallbackInput(userText string, today time.Time) fallbackInput {
	text := strings.ToLower(userText)
	in := fallbackInput{text: text, date: today.Format(domain.DateLayout)}
	if containsWord(text, "tomorrow") {
		in.date = today.AddDate(0, 0, 1).Format(domain.DateLayout)
	}

	var rangeLoc []int
	for _, loc := range rangePattern.FindAllStringSubmatchIndex(text, -1) {
		if isClockRange(text, loc) {
			rangeLoc = loc
			break
		}
	}
	clockLoc := clockPattern.FindStringSubmatchIndex(text)
	if rangeLoc != nil && (clockLoc == nil || rangeLoc[0] <= clockLoc[0]) {
		if start, length, ok := parseRange(text, rangeLoc); ok {
			in.clock, in.hasClock = start, true
			in.rangeLen, in.hasRange = length, true
		}
	}
	if !in.hasClock && clockLoc != nil {
		in.clock, in.hasClock = parseClock(text, clockLoc)
	}

	if m := hoursPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil && n > 0 {
			in.hourSpan, in.hasHours = int(math.Round(n*60)), true
		}
	}
	return in
}

func submatch(s string, loc []int, group int) string {
	if loc[2*group] < 0 {
		return ""
	}
	return s[loc[2*group]:loc[2*group+1]]
}

// toMinutes converts an hour, minute and optional meridiem to minutes after
// midnight.
func toMinutes(hourStr, minuteStr, meridiem string) (int, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, false
	}
	minute := 0
	if minuteStr != "" {
		if minute, err = strconv.Atoi(minuteStr); err != nil || minute > 59 {
			return 0, false
		}
	}
	switch meridiem {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour != 12 {
			hour += 12
		}
	}
	if hour > 23 {
		return 0, false
	}
	return hour*60 + minute, true
}

func parseClock(text string, loc []int) (int, bool) {
	switch {
	case submatch(text, loc, 1) != "":
		return toMinutes(submatch(text, loc, 1), submatch(text, loc, 2), submatch(text, loc, 3))
	case submatch(text, loc, 4) != "":
		return toMinutes(submatch(text, loc, 4), "", submatch(text, loc, 5))
	default:
		return toMinutes(submatch(text, loc, 6), "", "")
	}
}

// parseRange reads "H[:MM][am|pm] - H[:MM][am|pm]". A meridiem given only on
// the end applies to the start as long as the range stays forward.
func parseRange(text string, loc []int) (start, length int, ok bool) {
	startMer, endMer := submatch(text, loc, 3), submatch(text, loc, 7)
	end, ok := toMinutes(submatch(text, loc, 5), submatch(text, loc, 6), endMer)
	if !ok {
		return 0, 0, false
	}
	if startMer == "" && endMer != "" {
		if s, ok := toMinutes(submatch(text, loc, 1), submatch(text, loc, 2), endMer); ok && s < end {
			startMer = endMer
		}
	}
	start, ok = toMinutes(submatch(text, loc, 1), submatch(text, loc, 2), startMer)
	if !ok {
		return 0, 0, false
	}
	length = end - start
	if length <= 0 {
		length += 12 * 60
	}
	if length <= 0 || length >= 24*60 {
		return 0, 0, false
	}
	return start, length, true
}

// isClockRange rejects bare "N-N" spans such as dates. A range needs a
// meridiem, a colon, a "to"/"until" separator or a leading "from".
func isClockRange(text string, loc []int) bool {
	for _, group := range []int{2, 3, 6, 7} {
		if submatch(text, loc, group) != "" {
			return true
		}
	}
	if submatch(text, loc, 4) != "-" {
		return true
	}
	before := strings.Fields(text[:loc[0]])
	return len(before) > 0 && before[len(before)-1] == "from"
}

func newEvent(title, date string, start, minutes int, description string) domain.Event {
	return domain.Event{
		Title:       title,
		Date:        date,
		StartTime:   domain.FormatClock(start),
		EndTime:     domain.FormatClock(start + minutes),
		Description: description,
	}
}

func containsWord(text, word string) bool {
	for _, w := range wordPattern.FindAllString(text, -1) {
		if w == word {
			return true
		}
	}
	return false
}

func containsAnyWord(text string, words ...string) bool {
	for _, w := range words {
		if containsWord(text, w) {
			return true
		}
	}
	return false
}

func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func detectWake(in fallbackInput) []domain.Event {
	if !containsAny(in.text, "wake", "get up", "morning routine") {
		return nil
	}
	return []domain.Event{newEvent("Wake Up", in.date, 6*60, 15, "")}
}

var prayerNames = map[string][]string{
	"Fajr":    {"fajr"},
	"Dhuhr":   {"dhuhr", "zuhr", "duhr"},
	"Asr":     {"asr"},
	"Maghrib": {"maghrib"},
	"Isha":    {"isha"},
}

func prayerEvent(p prayerWindow, date string) domain.Event {
	start, _ := domain.ClockMinutes(p.start)
	end, _ := domain.ClockMinutes(p.end)
	return newEvent(p.name+" Prayer", date, start, end-start, "")
}

func detectPrayers(in fallbackInput) []domain.Event {
	mentionsName := false
	for _, names := range prayerNames {
		if containsAnyWord(in.text, names...) {
			mentionsName = true
			break
		}
	}
	if !mentionsName && !containsAny(in.text, "pray", "salah", "salat", "namaz") {
		return nil
	}

	if containsAnyWord(in.text, "all", "every", "each") {
		events := make([]domain.Event, 0, len(prayerWindows))
		for _, p := range prayerWindows {
			events = append(events, prayerEvent(p, in.date))
		}
		return events
	}

	for _, p := range prayerWindows {
		if containsAnyWord(in.text, prayerNames[p.name]...) {
			return []domain.Event{prayerEvent(p, in.date)}
		}
	}
	for _, p := range prayerWindows {
		if containsWord(in.text, p.keyword) {
			return []domain.Event{prayerEvent(p, in.date)}
		}
	}
	return []domain.Event{newEvent("Prayer", in.date, 12*60, 30, "")}
}

func detectMeals(in fallbackInput) []domain.Event {
	var events []domain.Event
	if containsWord(in.text, "breakfast") {
		events = append(events, newEvent("Breakfast", in.date, 8*60, 30, ""))
	}
	if containsWord(in.text, "lunch") {
		events = append(events, newEvent("Lunch", in.date, 13*60, 60, ""))
	}
	if containsAnyWord(in.text, "dinner", "supper") {
		events = append(events, newEvent("Dinner", in.date, 19*60, 60, ""))
	}
	if len(events) == 0 && containsAnyWord(in.text, "meal", "meals", "eat", "eating", "food") {
		events = append(events, newEvent("Meal", in.date, 8*60, 30, ""))
	}
	return events
}

func detectStudy(in fallbackInput) []domain.Event {
	if !containsAny(in.text, "study", "homework", "revision", "revise") &&
		!containsAnyWord(in.text, "exam", "exams") {
		return nil
	}
	start := 9 * 60
	if in.hasClock {
		start = in.clock
	}
	minutes := defaultStudyMinutes
	switch {
	case in.hasHours:
		minutes = in.hourSpan
	case in.hasRange:
		minutes = in.rangeLen
	}
	return []domain.Event{newEvent("Study Session", in.date, start, minutes, "")}
}

func detectExercise(in fallbackInput) []domain.Event {
	if !containsAny(in.text, "exercise", "gym", "workout", "work out", "jog", "training") &&
		!containsAnyWord(in.text, "run", "running") {
		return nil
	}
	return []domain.Event{newEvent("Exercise", in.date, 17*60, 60, "")}
}

func detectShower(in fallbackInput) []domain.Event {
	if !containsAnyWord(in.text, "shower", "bath") {
		return nil
	}
	return []domain.Event{newEvent("Shower", in.date, 6*60+30, 15, "")}
}

func detectWork(in fallbackInput) []domain.Event {
	text := strings.ReplaceAll(in.text, "work out", "")
	if !containsAnyWord(text, "work", "working", "office", "job", "shift") {
		return nil
	}
	start := 9 * 60
	if in.hasClock {
		start = in.clock
	}
	return []domain.Event{newEvent("Work", in.date, start, workMinutes, "")}
}

func genericEvent(userText string, in fallbackInput) domain.Event {
	var words []string
	for _, w := range wordPattern.FindAllString(in.text, -1) {
		if fallbackStopWords[w] {
			continue
		}
		words = append(words, titleWord(w))
		if len(words) == genericTitleWords {
			break
		}
	}

	title := strings.Join(words, " ")
	if title == "" {
		title = strings.TrimSpace(truncateRunes(userText, genericTitleChars))
	}
	if title == "" {
		title = defaultEventTitle
	}
	return newEvent(title, in.date, 12*60, 60, userText)
}

func titleWord(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + w[size:]
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
