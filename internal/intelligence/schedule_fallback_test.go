package intelligence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dayplan/internal/domain"
)

type slot struct {
	title, start, end string
}

func slots(events []domain.Event) []slot {
	out := make([]slot, 0, len(events))
	for _, e := range events {
		out = append(out, slot{e.Title, e.StartTime, e.EndTime})
	}
	return out
}

func TestGenerateFallback_WakeAndAllPrayers(t *testing.T) {
	result := GenerateFallback("I want to wake up and pray all prayers", testToday)

	assert.Equal(t, []slot{
		{"Fajr Prayer", "05:30", "06:00"},
		{"Wake Up", "06:00", "06:15"},
		{"Dhuhr Prayer", "12:30", "13:00"},
		{"Asr Prayer", "15:30", "16:00"},
		{"Maghrib Prayer", "18:30", "19:00"},
		{"Isha Prayer", "20:00", "20:30"},
	}, slots(result.Events))
	assert.Equal(t, domain.SourceFallback, result.Source)
	assert.Equal(t, "Generated 6 event(s) in fallback mode (rule-based parser)", result.Summary)
	for _, e := range result.Events {
		assert.Equal(t, "2025-03-14", e.Date)
	}
}

func TestGenerateFallback_StudyHours(t *testing.T) {
	result := GenerateFallback("study for 3 hours", testToday)
	assert.Equal(t, []slot{{"Study Session", "09:00", "12:00"}}, slots(result.Events))
}

func TestGenerateFallback_StudyClockAndRange(t *testing.T) {
	cases := []struct {
		text string
		want slot
	}{
		{"study at 2pm", slot{"Study Session", "14:00", "16:00"}},
		{"study from 8-10", slot{"Study Session", "08:00", "10:00"}},
		{"study 8:00-10", slot{"Study Session", "08:00", "10:00"}},
		{"study 2-4pm", slot{"Study Session", "14:00", "16:00"}},
		{"study 9 until 11", slot{"Study Session", "09:00", "11:00"}},
		{"homework from 4 to 6pm", slot{"Study Session", "16:00", "18:00"}},
		{"revision at 7:30am for 1.5 hours", slot{"Study Session", "07:30", "09:00"}},
		{"study at 11pm for 2 hours", slot{"Study Session", "23:00", "01:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			result := GenerateFallback(tc.text, testToday)
			assert.Equal(t, []slot{tc.want}, slots(result.Events))
		})
	}
}

func TestGenerateFallback_DateLikeSpansAreNotClockRanges(t *testing.T) {
	cases := map[string]slot{
		"study for the exam on 03-15":     {"Study Session", "09:00", "11:00"},
		"study 8-10":                      {"Study Session", "09:00", "11:00"},
		"exam 03-15, study from 2 to 4pm": {"Study Session", "14:00", "16:00"},
	}
	for text, want := range cases {
		t.Run(text, func(t *testing.T) {
			result := GenerateFallback(text, testToday)
			assert.Equal(t, []slot{want}, slots(result.Events))
		})
	}
}

func TestGenerateFallback_SpecificPrayer(t *testing.T) {
	cases := map[string]slot{
		"pray maghrib":            {"Maghrib Prayer", "18:30", "19:00"},
		"pray at dawn":            {"Fajr Prayer", "05:30", "06:00"},
		"remind me to pray isha":  {"Isha Prayer", "20:00", "20:30"},
		"prayer in the afternoon": {"Asr Prayer", "15:30", "16:00"},
		"I need to pray":          {"Prayer", "12:00", "12:30"},
	}
	for text, want := range cases {
		t.Run(text, func(t *testing.T) {
			assert.Equal(t, []slot{want}, slots(GenerateFallback(text, testToday).Events))
		})
	}
}

func TestGenerateFallback_Meals(t *testing.T) {
	assert.Equal(t, []slot{
		{"Breakfast", "08:00", "08:30"},
		{"Lunch", "13:00", "14:00"},
		{"Dinner", "19:00", "20:00"},
	}, slots(GenerateFallback("dinner, lunch and breakfast", testToday).Events))

	assert.Equal(t, []slot{{"Meal", "08:00", "08:30"}}, slots(GenerateFallback("eat something", testToday).Events))
}

func TestGenerateFallback_FixedRoutines(t *testing.T) {
	result := GenerateFallback("shower, go to the gym and work at 10am", testToday)

	assert.Equal(t, []slot{
		{"Shower", "06:30", "06:45"},
		{"Work", "10:00", "18:00"},
		{"Exercise", "17:00", "18:00"},
	}, slots(result.Events))
}

func TestGenerateFallback_WorkoutIsNotWork(t *testing.T) {
	result := GenerateFallback("work out in the evening", testToday)
	assert.Equal(t, []slot{{"Exercise", "17:00", "18:00"}}, slots(result.Events))
}

func TestGenerateFallback_WorkDefaultsToNine(t *testing.T) {
	result := GenerateFallback("office day", testToday)
	assert.Equal(t, []slot{{"Work", "09:00", "17:00"}}, slots(result.Events))
}

func TestGenerateFallback_Tomorrow(t *testing.T) {
	result := GenerateFallback("breakfast tomorrow", testToday)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "2025-03-15", result.Events[0].Date)
}

func TestGenerateFallback_GenericEvent(t *testing.T) {
	text := "I want to call grandma about the birthday party plans"
	result := GenerateFallback(text, testToday)

	require.Len(t, result.Events, 1)
	e := result.Events[0]
	assert.Equal(t, "Call Grandma About Birthday", e.Title)
	assert.Equal(t, "12:00", e.StartTime)
	assert.Equal(t, "13:00", e.EndTime)
	assert.Equal(t, text, e.Description)
	assert.Equal(t, "Generated 1 event(s) in fallback mode (rule-based parser)", result.Summary)
}

func TestGenerateFallback_GenericOnlyStopWords(t *testing.T) {
	result := GenerateFallback("I want to do it", testToday)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "I want to do it", result.Events[0].Title)
}

func TestGenerateFallback_NeverEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "???", "a", "12345", "!!! ### $$$"} {
		result := GenerateFallback(text, testToday)
		require.NotEmpty(t, result.Events, "input %q", text)
		assert.NotEmpty(t, result.Events[0].Title, "input %q", text)
	}
}

func TestGenerateFallback_DeterministicAndSorted(t *testing.T) {
	inputs := []string{
		"wake up, shower, breakfast, study 2 hours, lunch, gym, dinner, pray all prayers",
		"work at 8am then pray dhuhr and eat",
		"tomorrow study from 1pm to 4pm",
	}
	for _, text := range inputs {
		first := GenerateFallback(text, testToday)
		second := GenerateFallback(text, testToday)
		assert.Equal(t, first, second)

		for i := 1; i < len(first.Events); i++ {
			prev, cur := first.Events[i-1], first.Events[i]
			assert.True(t, prev.Date < cur.Date || (prev.Date == cur.Date && prev.StartTime <= cur.StartTime),
				"%q: %v before %v", text, prev, cur)
		}
	}
}
