package service

import (
	"context"

	"github.com/alexanderramin/dayplan/internal/domain"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// EventService manages each user's ordered list of calendar blobs.
type EventService interface {
	Append(ctx context.Context, userID, payload string) (*domain.EventBlob, error)
	List(ctx context.Context, userID string) ([]domain.EventBlob, error)
	Update(ctx context.Context, userID string, index int, payload string) error
	Delete(ctx context.Context, userID string, index int) error
}

// PlanOutcome reports what PlanAndSave stored and published.
type PlanOutcome struct {
	Result    *domain.GenerationResult
	Saved     []domain.EventBlob
	Published int
}

type PlannerService interface {
	Plan(ctx context.Context, text string) (*domain.GenerationResult, error)
	PlanAndSave(ctx context.Context, userID, text string) (*PlanOutcome, error)
}

// Publisher pushes one event to an external calendar and returns the
// location it was stored under.
type Publisher interface {
	Publish(ctx context.Context, uid string, ev domain.Event) (string, error)
}
