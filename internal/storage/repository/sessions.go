package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/terramail/terramail-backend/internal/models"
)

// GetLatestSession возвращает самую свежую сессию пользователя.
func (s *Storage) GetLatestSession(ctx context.Context, userUID string) (*models.ProcessingSession, error) {
	const op = "storage.GetLatestSession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, approved, rejected, loaded, tested,
			      is_active, created_at, updated_at
			  FROM processing_sessions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`
	sess := &models.ProcessingSession{}
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(
		&sess.ID, &sess.UserUID, &sess.Approved, &sess.Rejected, &sess.Loaded,
		&sess.Tested, &sess.IsActive, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// CreateSession создает новую сессию с нулевыми счетчиками.
func (s *Storage) CreateSession(ctx context.Context, userUID string) (*models.ProcessingSession, error) {
	const op = "storage.CreateSession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO processing_sessions (user_uid)
			  VALUES ($1)
			  RETURNING id, user_uid, approved, rejected, loaded, tested,
			      is_active, created_at, updated_at`
	sess := &models.ProcessingSession{}
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(
		&sess.ID, &sess.UserUID, &sess.Approved, &sess.Rejected, &sess.Loaded,
		&sess.Tested, &sess.IsActive, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// UpdateSession записывает счетчики и признак активности сессии.
func (s *Storage) UpdateSession(ctx context.Context, id int, upd models.DummySessionUpdate) (*models.ProcessingSession, error) {
	const op = "storage.UpdateSession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE processing_sessions
			  SET approved = $1, rejected = $2, loaded = $3, tested = $4,
			      is_active = $5, updated_at = now()
			  WHERE id = $6
			  RETURNING id, user_uid, approved, rejected, loaded, tested,
			      is_active, created_at, updated_at`
	sess := &models.ProcessingSession{}
	err := s.DB.QueryRowContext(ctx, query,
		upd.Approved, upd.Rejected, upd.Loaded, upd.Tested, upd.IsActive, id).Scan(
		&sess.ID, &sess.UserUID, &sess.Approved, &sess.Rejected, &sess.Loaded,
		&sess.Tested, &sess.IsActive, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}
