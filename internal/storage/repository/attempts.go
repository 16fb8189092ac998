package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/terramail/terramail-backend/internal/models"
)

// attemptLogLimit — глобальный предел журнала попыток входа.
// При переполнении вытесняются самые старые записи по времени.
const attemptLogLimit = 1000

// CreateAttempt добавляет запись о попытке входа и подрезает журнал
// до предела. Журнал общий, а не по адресам.
func (s *Storage) CreateAttempt(ctx context.Context, attempt models.LoginAttempt) error {
	const op = "storage.CreateAttempt"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO login_attempts (ip_address, email, success)
		VALUES ($1, $2, $3)`,
		attempt.IPAddress, attempt.Email, attempt.Success)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.DB.ExecContext(ctx, `
		DELETE FROM login_attempts
		WHERE id IN (
			SELECT id FROM login_attempts
			ORDER BY created_at DESC, id DESC
			OFFSET $1
		)`, attemptLogLimit)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountRecentFailures считает неудачные попытки с адреса позже момента since.
func (s *Storage) CountRecentFailures(ctx context.Context, ipAddress string, since time.Time) (int, error) {
	const op = "storage.CountRecentFailures"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE ip_address = $1
			AND success = FALSE
			AND created_at > $2`,
		ipAddress, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListAttempts возвращает последние попытки входа, новые сверху.
func (s *Storage) ListAttempts(ctx context.Context, limit int) ([]*models.LoginAttempt, error) {
	const op = "storage.ListAttempts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, ip_address, email, success, created_at
		FROM login_attempts
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.LoginAttempt
	for rows.Next() {
		var a models.LoginAttempt
		if err = rows.Scan(&a.ID, &a.IPAddress, &a.Email, &a.Success, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
