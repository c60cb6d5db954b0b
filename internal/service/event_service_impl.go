package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/dayplan/internal/db"
	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/repository"
)

type eventService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewEventService builds an EventService. Every call runs in its own
// transaction so the user check and the list mutation see the same state.
func NewEventService(uow db.UnitOfWork, observers ...UseCaseObserver) EventService {
	return &eventService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *eventService) Append(ctx context.Context, userID, payload string) (blob *domain.EventBlob, err error) {
	fields := map[string]any{"user_id": userID}
	defer observe(ctx, s.observer, "event.append", time.Now(), fields, &err)

	if strings.TrimSpace(payload) == "" {
		return nil, fmt.Errorf("%w: vevent is required", ErrInvalidInput)
	}

	blob, err = db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (*domain.EventBlob, error) {
		if err := requireUser(ctx, tx, userID); err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		b := &domain.EventBlob{UserID: userID, Payload: payload, CreatedAt: now, UpdatedAt: now}
		if err := repository.NewSQLiteEventBlobRepo(tx).Append(ctx, b); err != nil {
			return nil, err
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	fields["index"] = blob.Index
	return blob, nil
}

func (s *eventService) List(ctx context.Context, userID string) ([]domain.EventBlob, error) {
	return db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) ([]domain.EventBlob, error) {
		if err := requireUser(ctx, tx, userID); err != nil {
			return nil, err
		}
		return repository.NewSQLiteEventBlobRepo(tx).ListByUser(ctx, userID)
	})
}

func (s *eventService) Update(ctx context.Context, userID string, index int, payload string) (err error) {
	defer observe(ctx, s.observer, "event.update", time.Now(), map[string]any{"user_id": userID, "index": index}, &err)

	if strings.TrimSpace(payload) == "" {
		return fmt.Errorf("%w: vevent is required", ErrInvalidInput)
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := requireUser(ctx, tx, userID); err != nil {
			return err
		}
		return indexError(repository.NewSQLiteEventBlobRepo(tx).ReplaceAt(ctx, userID, index, payload), index)
	})
}

func (s *eventService) Delete(ctx context.Context, userID string, index int) (err error) {
	defer observe(ctx, s.observer, "event.delete", time.Now(), map[string]any{"user_id": userID, "index": index}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := requireUser(ctx, tx, userID); err != nil {
			return err
		}
		return indexError(repository.NewSQLiteEventBlobRepo(tx).DeleteAt(ctx, userID, index), index)
	})
}

func requireUser(ctx context.Context, tx db.DBTX, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	_, err := repository.NewSQLiteUserRepo(tx).GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return err
}

func indexError(err error, index int) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return err
}
