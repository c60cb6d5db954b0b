package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dayplan/internal/calendar"
	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/intelligence"
	"github.com/alexanderramin/dayplan/internal/llm"
	"github.com/alexanderramin/dayplan/internal/repository"
	"github.com/alexanderramin/dayplan/internal/testutil"
)

type scheduleFunc func(ctx context.Context, text string) (*domain.GenerationResult, error)

func (f scheduleFunc) Generate(ctx context.Context, text string) (*domain.GenerationResult, error) {
	return f(ctx, text)
}

func fixedSchedule(source domain.GenerationSource, events ...domain.Event) scheduleFunc {
	return func(context.Context, string) (*domain.GenerationResult, error) {
		return &domain.GenerationResult{
			Events:  events,
			Summary: fmt.Sprintf("Generated %d event(s)", len(events)),
			Source:  source,
		}, nil
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	uids   []string
	titles []string
	failOn string
}

func (p *recordingPublisher) Publish(_ context.Context, uid string, ev domain.Event) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev.Title == p.failOn {
		return "", errors.New("server said no")
	}
	p.uids = append(p.uids, uid)
	p.titles = append(p.titles, ev.Title)
	return "/cal/" + uid + ".ics", nil
}

var plannerNow = time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

func TestPlannerService_Plan(t *testing.T) {
	database := testutil.NewTestDB(t)
	schedule := fixedSchedule(domain.SourceGemini, testutil.NewTestEvent("Gym", "2025-03-15", "07:00"))
	svc := NewPlannerService(schedule, testutil.NewTestUoW(database), PlannerOptions{})

	res, err := svc.Plan(context.Background(), "gym tomorrow at 7")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceGemini, res.Source)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "Gym", res.Events[0].Title)
}

func TestPlannerService_PlanAndSave_StoresOneBlobPerEvent(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.MustCreateUser(t, repository.NewSQLiteUserRepo(database), "Planner")
	events := []domain.Event{
		testutil.NewTestEvent("Gym", "2025-03-15", "07:00"),
		testutil.NewTestEvent("Breakfast", "2025-03-15", "08:30"),
	}
	svc := NewPlannerService(fixedSchedule(domain.SourceOpenAI, events...), testutil.NewTestUoW(database),
		PlannerOptions{Location: time.UTC, Now: func() time.Time { return plannerNow }})
	ctx := context.Background()

	out, err := svc.PlanAndSave(ctx, user.ID, "gym then breakfast")
	require.NoError(t, err)
	require.Len(t, out.Saved, 2)
	assert.Zero(t, out.Published)

	stored, err := repository.NewSQLiteEventBlobRepo(database).ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for i, b := range stored {
		assert.Equal(t, domain.SourceOpenAI, b.Source)
		assert.Equal(t, i, b.Index)
		decoded, err := calendar.DecodeEvents(b.Payload, time.UTC)
		require.NoError(t, err)
		require.Len(t, decoded, 1)
		assert.Equal(t, events[i].Title, decoded[0].Title)
		assert.Equal(t, events[i].StartTime, decoded[0].StartTime)
		assert.Contains(t, b.Payload, "@dayplan")
	}
}

func TestPlannerService_PlanAndSave_AppendsAfterExistingBlobs(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.MustCreateUser(t, repository.NewSQLiteUserRepo(database), "Planner")
	uow := testutil.NewTestUoW(database)
	ctx := context.Background()

	_, err := NewEventService(uow).Append(ctx, user.ID, "BEGIN:VCALENDAR\nEND:VCALENDAR")
	require.NoError(t, err)

	svc := NewPlannerService(fixedSchedule(domain.SourceFallback, testutil.NewTestEvent("Lunch", "2025-03-14", "12:30")), uow, PlannerOptions{})
	out, err := svc.PlanAndSave(ctx, user.ID, "lunch")
	require.NoError(t, err)
	require.Len(t, out.Saved, 1)
	assert.Equal(t, 1, out.Saved[0].Index)
}

func TestPlannerService_PlanAndSave_UnknownUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	called := false
	schedule := scheduleFunc(func(context.Context, string) (*domain.GenerationResult, error) {
		called = true
		return &domain.GenerationResult{Events: []domain.Event{testutil.NewTestEvent("X", "2025-03-14", "09:00")}}, nil
	})
	svc := NewPlannerService(schedule, testutil.NewTestUoW(database), PlannerOptions{})

	_, err := svc.PlanAndSave(context.Background(), "ghost", "anything")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.True(t, called)

	_, err = svc.PlanAndSave(context.Background(), "", "anything")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlannerService_PlanAndSave_RollsBackOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.MustCreateUser(t, repository.NewSQLiteUserRepo(database), "Planner")
	events := []domain.Event{
		testutil.NewTestEvent("First", "2025-03-14", "09:00"),
		testutil.NewTestEvent("Second", "2025-03-14", "10:00"),
	}
	failUoW := &testutil.FailOnNthExecUoW{
		DB:     database,
		FailOn: 2,
		Err:    errors.New("injected insert failure"),
	}
	svc := NewPlannerService(fixedSchedule(domain.SourceGemini, events...), failUoW, PlannerOptions{})
	ctx := context.Background()

	_, err := svc.PlanAndSave(ctx, user.ID, "two things")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected insert failure")

	stored, err := repository.NewSQLiteEventBlobRepo(database).ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored, "first insert must be rolled back")
}

func TestPlannerService_PlanAndSave_PublishesBestEffort(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.MustCreateUser(t, repository.NewSQLiteUserRepo(database), "Planner")
	events := []domain.Event{
		testutil.NewTestEvent("Gym", "2025-03-15", "07:00"),
		testutil.NewTestEvent("Broken", "2025-03-15", "08:00"),
		testutil.NewTestEvent("Lunch", "2025-03-15", "12:00"),
	}
	pub := &recordingPublisher{failOn: "Broken"}
	svc := NewPlannerService(fixedSchedule(domain.SourceOllama, events...), testutil.NewTestUoW(database),
		PlannerOptions{Publisher: pub})

	out, err := svc.PlanAndSave(context.Background(), user.ID, "day")
	require.NoError(t, err)

	assert.Len(t, out.Saved, 3, "publish failures do not undo storage")
	assert.Equal(t, 2, out.Published)
	assert.Equal(t, []string{"Gym", "Lunch"}, pub.titles)
	for _, uid := range pub.uids {
		assert.True(t, strings.HasSuffix(uid, "@dayplan"))
	}
}

func TestPlannerService_FallbackEndToEnd(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.MustCreateUser(t, repository.NewSQLiteUserRepo(database), "Planner")
	schedule := intelligence.NewScheduleService(nil, intelligence.ScheduleOptions{
		Now:      func() time.Time { return plannerNow },
		Location: time.UTC,
	})
	var observed []UseCaseEvent
	svc := NewPlannerService(schedule, testutil.NewTestUoW(database),
		PlannerOptions{Location: time.UTC},
		useCaseRecorder(func(e UseCaseEvent) { observed = append(observed, e) }))

	out, err := svc.PlanAndSave(context.Background(), user.ID, "breakfast at 8am and lunch at 1pm")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFallback, out.Result.Source)
	assert.Len(t, out.Saved, len(out.Result.Events))
	assert.NotEmpty(t, out.Saved)

	require.Len(t, observed, 1)
	assert.Equal(t, "planner.plan_and_save", observed[0].Name)
	assert.Equal(t, "fallback", observed[0].Fields["source"])
}

type cannedProvider struct {
	text string
}

func (cannedProvider) Kind() llm.ProviderKind { return llm.ProviderOpenAI }

func (p cannedProvider) Generate(context.Context, string) llm.Outcome {
	return llm.Outcome{Status: llm.StatusOK, Model: "gpt-4o-mini", Text: p.text}
}

func TestPlannerService_PlanAndSave_RelativeProviderDatesStillSave(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.MustCreateUser(t, repository.NewSQLiteUserRepo(database), "Planner")
	provider := cannedProvider{text: `[{"title":"Gym","date":"tomorrow","start_time":"7am","end_time":"8am"}]`}
	schedule := intelligence.NewScheduleService([]llm.Provider{provider}, intelligence.ScheduleOptions{
		Now:      func() time.Time { return plannerNow },
		Location: time.UTC,
	})
	svc := NewPlannerService(schedule, testutil.NewTestUoW(database), PlannerOptions{Location: time.UTC})

	out, err := svc.PlanAndSave(context.Background(), user.ID, "gym tomorrow at 7am")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFallback, out.Result.Source)
	assert.Len(t, out.Saved, len(out.Result.Events))
}
