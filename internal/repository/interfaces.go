package repository

import (
	"context"

	"github.com/alexanderramin/dayplan/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// EventBlobRepo stores each user's blobs as an ordered list addressed by
// zero-based position.
type EventBlobRepo interface {
	Append(ctx context.Context, b *domain.EventBlob) error
	ListByUser(ctx context.Context, userID string) ([]domain.EventBlob, error)
	GetAt(ctx context.Context, userID string, index int) (*domain.EventBlob, error)
	ReplaceAt(ctx context.Context, userID string, index int, payload string) error
	DeleteAt(ctx context.Context, userID string, index int) error
	CountByUser(ctx context.Context, userID string) (int, error)
}
