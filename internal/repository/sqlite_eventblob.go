package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/dayplan/internal/db"
	"github.com/alexanderramin/dayplan/internal/domain"
)

// SQLiteEventBlobRepo implements EventBlobRepo. Positions are derived from
// insertion order, so deleting a blob shifts every later one down by one.
type SQLiteEventBlobRepo struct {
	db db.DBTX
}

func NewSQLiteEventBlobRepo(conn db.DBTX) *SQLiteEventBlobRepo {
	return &SQLiteEventBlobRepo{db: conn}
}

// Append stores b at the end of the user's list and sets b.Index.
func (r *SQLiteEventBlobRepo) Append(ctx context.Context, b *domain.EventBlob) error {
	count, err := r.CountByUser(ctx, b.UserID)
	if err != nil {
		return err
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_blobs (user_id, payload, source, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.Payload, string(b.Source), formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting event blob: %w", err)
	}
	b.Index = count
	return nil
}

func (r *SQLiteEventBlobRepo) ListByUser(ctx context.Context, userID string) ([]domain.EventBlob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, payload, source, created_at, updated_at
		FROM event_blobs WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing event blobs: %w", err)
	}
	defer rows.Close()

	var blobs []domain.EventBlob
	for rows.Next() {
		b, err := scanBlob(rows)
		if err != nil {
			return nil, err
		}
		b.Index = len(blobs)
		blobs = append(blobs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event blobs: %w", err)
	}
	return blobs, nil
}

func (r *SQLiteEventBlobRepo) GetAt(ctx context.Context, userID string, index int) (*domain.EventBlob, error) {
	if index < 0 {
		return nil, fmt.Errorf("event blob %d: %w", index, ErrNotFound)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, payload, source, created_at, updated_at
		FROM event_blobs WHERE user_id = ? ORDER BY id LIMIT 1 OFFSET ?`, userID, index)
	b, err := scanBlob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event blob %d: %w", index, ErrNotFound)
		}
		return nil, err
	}
	b.Index = index
	return &b, nil
}

func (r *SQLiteEventBlobRepo) ReplaceAt(ctx context.Context, userID string, index int, payload string) error {
	id, err := r.idAt(ctx, userID, index)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE event_blobs SET payload = ?, updated_at = ? WHERE id = ?`,
		payload, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("updating event blob: %w", err)
	}
	return nil
}

func (r *SQLiteEventBlobRepo) DeleteAt(ctx context.Context, userID string, index int) error {
	id, err := r.idAt(ctx, userID, index)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM event_blobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting event blob: %w", err)
	}
	return nil
}

func (r *SQLiteEventBlobRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_blobs WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting event blobs: %w", err)
	}
	return n, nil
}

func (r *SQLiteEventBlobRepo) idAt(ctx context.Context, userID string, index int) (int64, error) {
	if index < 0 {
		return 0, fmt.Errorf("event blob %d: %w", index, ErrNotFound)
	}
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM event_blobs WHERE user_id = ? ORDER BY id LIMIT 1 OFFSET ?`, userID, index).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("event blob %d: %w", index, ErrNotFound)
		}
		return 0, fmt.Errorf("locating event blob: %w", err)
	}
	return id, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBlob(s scanner) (domain.EventBlob, error) {
	var (
		b                    domain.EventBlob
		source               string
		createdAt, updatedAt string
	)
	if err := s.Scan(&b.UserID, &b.Payload, &source, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, err
		}
		return b, fmt.Errorf("scanning event blob: %w", err)
	}
	b.Source = domain.GenerationSource(source)
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}
