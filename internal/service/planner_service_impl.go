package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/dayplan/internal/calendar"
	"github.com/alexanderramin/dayplan/internal/db"
	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/intelligence"
	"github.com/alexanderramin/dayplan/internal/repository"
)

const uidDomain = "dayplan"

// PlannerOptions configures a PlannerService. Publisher is optional.
type PlannerOptions struct {
	Location  *time.Location
	Publisher Publisher
	Logger    *slog.Logger
	Now       func() time.Time
}

type plannerService struct {
	schedule  intelligence.ScheduleService
	uow       db.UnitOfWork
	publisher Publisher
	location  *time.Location
	logger    *slog.Logger
	now       func() time.Time
	observer  UseCaseObserver
}

func NewPlannerService(
	schedule intelligence.ScheduleService,
	uow db.UnitOfWork,
	opts PlannerOptions,
	observers ...UseCaseObserver,
) PlannerService {
	s := &plannerService{
		schedule:  schedule,
		uow:       uow,
		publisher: opts.Publisher,
		location:  opts.Location,
		logger:    opts.Logger,
		now:       opts.Now,
		observer:  useCaseObserverOrNoop(observers),
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *plannerService) Plan(ctx context.Context, text string) (res *domain.GenerationResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "planner.plan", time.Now(), fields, &err)

	res, err = s.schedule.Generate(ctx, text)
	if err != nil {
		return nil, err
	}
	fields["source"] = string(res.Source)
	fields["event_count"] = len(res.Events)
	return res, nil
}

// PlanAndSave generates events for text, stores each as its own VCALENDAR
// blob at the end of the user's list and then publishes them when a
// Publisher is configured. Publishing is best effort; the stored blobs are
// the record.
func (s *plannerService) PlanAndSave(ctx context.Context, userID, text string) (out *PlanOutcome, err error) {
	fields := map[string]any{"user_id": userID}
	defer observe(ctx, s.observer, "planner.plan_and_save", time.Now(), fields, &err)

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	res, err := s.schedule.Generate(ctx, text)
	if err != nil {
		return nil, err
	}
	fields["source"] = string(res.Source)
	fields["event_count"] = len(res.Events)

	stamp := s.now().UTC()
	uids := make([]string, len(res.Events))
	payloads := make([]string, len(res.Events))
	for i, ev := range res.Events {
		uids[i] = uuid.New().String() + "@" + uidDomain
		payloads[i], err = calendar.EncodeEvent(ev, uids[i], s.location, stamp)
		if err != nil {
			return nil, fmt.Errorf("encoding event %q: %w", ev.Title, err)
		}
	}

	saved, err := db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) ([]domain.EventBlob, error) {
		if err := requireUser(ctx, tx, userID); err != nil {
			return nil, err
		}
		blobs := repository.NewSQLiteEventBlobRepo(tx)
		saved := make([]domain.EventBlob, 0, len(payloads))
		for _, p := range payloads {
			b := domain.EventBlob{UserID: userID, Payload: p, Source: res.Source, CreatedAt: stamp, UpdatedAt: stamp}
			if err := blobs.Append(ctx, &b); err != nil {
				return nil, fmt.Errorf("saving generated event: %w", err)
			}
			saved = append(saved, b)
		}
		return saved, nil
	})
	if err != nil {
		return nil, err
	}

	out = &PlanOutcome{Result: res, Saved: saved}
	if s.publisher != nil {
		for i, ev := range res.Events {
			path, pubErr := s.publisher.Publish(ctx, uids[i], ev)
			if pubErr != nil {
				s.logger.WarnContext(ctx, "publishing event failed", "uid", uids[i], "title", ev.Title, "error", pubErr)
				continue
			}
			s.logger.DebugContext(ctx, "event published", "uid", uids[i], "path", path)
			out.Published++
		}
		fields["published"] = out.Published
	}
	return out, nil
}
