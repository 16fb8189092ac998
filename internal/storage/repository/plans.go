package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/terramail/terramail-backend/internal/models"
)

// CreatePlan сохраняет новый тариф и возвращает его с идентификатором.
func (s *Storage) CreatePlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscription_plans (name, days, price, description, is_active)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, created_at`
	if err := s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Days, plan.Price, plan.Description, plan.IsActive).
		Scan(&plan.ID, &plan.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

// GetPlan возвращает тариф по идентификатору.
func (s *Storage) GetPlan(ctx context.Context, id int) (*models.SubscriptionPlan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, days, price, description, is_active, created_at
			  FROM subscription_plans
			  WHERE id = $1`
	p := &models.SubscriptionPlan{}
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Days, &p.Price, &p.Description, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPlans возвращает тарифы по возрастанию цены.
// При activeOnly=true скрытые тарифы не попадают в выдачу.
func (s *Storage) ListPlans(ctx context.Context, activeOnly bool) ([]*models.SubscriptionPlan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, days, price, description, is_active, created_at
			  FROM subscription_plans`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY price ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionPlan
	for rows.Next() {
		var p models.SubscriptionPlan
		if err = rows.Scan(&p.ID, &p.Name, &p.Days, &p.Price, &p.Description,
			&p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePlan перезаписывает поля тарифа.
func (s *Storage) UpdatePlan(ctx context.Context, id int, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error) {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscription_plans
			  SET name = $1, days = $2, price = $3, description = $4, is_active = $5
			  WHERE id = $6
			  RETURNING id, name, days, price, description, is_active, created_at`
	p := &models.SubscriptionPlan{}
	err := s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Days, plan.Price, plan.Description, plan.IsActive, id).Scan(
		&p.ID, &p.Name, &p.Days, &p.Price, &p.Description, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// DeletePlan безвозвратно удаляет тариф. История покупок сохраняет
// ссылку на идентификатор, внешнего ключа здесь нет намеренно.
func (s *Storage) DeletePlan(ctx context.Context, id int) error {
	const op = "storage.DeletePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM subscription_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
