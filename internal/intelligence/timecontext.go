package intelligence

import (
	"time"

	"github.com/alexanderramin/dayplan/internal/domain"
)

// TimeContext carries the reference dates used to resolve relative days.
type TimeContext struct {
	Today    time.Time
	Tomorrow time.Time
	Location *time.Location
}

// NewTimeContext truncates now to midnight in its own location.
func NewTimeContext(now time.Time) TimeContext {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return TimeContext{
		Today:    today,
		Tomorrow: today.AddDate(0, 0, 1),
		Location: loc,
	}
}

func (tc TimeContext) TodayString() string    { return tc.Today.Format(domain.DateLayout) }
func (tc TimeContext) TomorrowString() string { return tc.Tomorrow.Format(domain.DateLayout) }
func (tc TimeContext) Weekday() string        { return tc.Today.Weekday().String() }
