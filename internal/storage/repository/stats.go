package repository

import (
	"context"
	"fmt"

	"github.com/terramail/terramail-backend/internal/models"
)

// GetStats собирает сводку по четырем сущностям. Чистая выборка,
// собственного состояния у сводки нет.
func (s *Storage) GetStats(ctx context.Context) (*models.Stats, error) {
	const op = "storage.GetStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stats := &models.Stats{}

	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE role = 'admin'),
		       COUNT(*) FILTER (WHERE is_banned),
		       COUNT(*) FILTER (WHERE subscription_days > 0)
		FROM users`).Scan(
		&stats.TotalUsers, &stats.AdminUsers, &stats.BannedUsers, &stats.UsersWithAccess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = s.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(approved), 0),
		       COALESCE(SUM(rejected), 0),
		       COALESCE(SUM(loaded), 0),
		       COALESCE(SUM(tested), 0)
		FROM processing_sessions`).Scan(
		&stats.TotalApproved, &stats.TotalRejected, &stats.TotalLoaded, &stats.TotalTested)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = s.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_paid), 0),
		       COALESCE(SUM(amount_paid) FILTER (
		           WHERE created_at > now() - INTERVAL '30 days'), 0)
		FROM user_purchases`).Scan(
		&stats.TotalRevenue, &stats.MonthRevenue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}
