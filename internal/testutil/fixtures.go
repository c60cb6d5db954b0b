package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/dayplan/internal/domain"
)

var userCounter atomic.Int64

// UserOption customises a test user.
type UserOption func(*domain.User)

func WithEmail(email string) UserOption {
	return func(u *domain.User) { u.Email = email }
}

func WithPasswordHash(hash string) UserOption {
	return func(u *domain.User) { u.PasswordHash = hash }
}

// NewTestUser returns a user with a unique id and email.
func NewTestUser(name string, opts ...UserOption) *domain.User {
	n := userCounter.Add(1)
	u := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "not-a-real-hash",
		CreatedAt:    time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// NewTestEvent returns a one-hour event on date starting at start.
func NewTestEvent(title, date, start string) domain.Event {
	end, err := domain.AddClockMinutes(start, 60)
	if err != nil {
		panic(err)
	}
	return domain.Event{Title: title, Date: date, StartTime: start, EndTime: end}
}

// UserCreator is the slice of a user repository fixtures need.
type UserCreator interface {
	Create(ctx context.Context, u *domain.User) error
}

// MustCreateUser persists a fresh test user and returns it.
func MustCreateUser(t *testing.T, repo UserCreator, name string, opts ...UserOption) *domain.User {
	t.Helper()
	u := NewTestUser(name, opts...)
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return u
}
