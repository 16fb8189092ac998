package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/terramail/terramail-backend/internal/models"
)

// CreatePurchase записывает покупку и увеличивает баланс дней пользователя
// одной транзакцией. Частичное применение невозможно: при любом сбое
// транзакция откатывается целиком.
func (s *Storage) CreatePurchase(ctx context.Context, purchase models.UserPurchase) (*models.UserPurchase, error) {
	const op = "storage.CreatePurchase"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Ссылочная целостность тарифа проверяется на записи, FK здесь нет.
	if purchase.PlanID != nil {
		var exists bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM subscription_plans WHERE id = $1)`,
			*purchase.PlanID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return nil, fmt.Errorf("%s: plan: %w", op, ErrNotFound)
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO user_purchases (user_uid, plan_id, days_added, amount_paid, payment_method)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		purchase.UserUID, purchase.PlanID, purchase.DaysAdded,
		purchase.AmountPaid, purchase.PaymentMethod).
		Scan(&purchase.ID, &purchase.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("%s: user: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET subscription_days = subscription_days + $1,
		    updated_at = now()
		WHERE uid = $2`,
		purchase.DaysAdded, purchase.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%s: user: %w", op, ErrNotFound)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &purchase, nil
}

// ListPurchasesByUser возвращает историю покупок пользователя с названием
// тарифа, новые сверху.
func (s *Storage) ListPurchasesByUser(ctx context.Context, userUID string) ([]*models.PurchaseWithPlan, error) {
	const op = "storage.ListPurchasesByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT p.id, p.user_uid, p.plan_id, p.days_added, p.amount_paid,
		       p.payment_method, p.created_at, sp.name
		FROM user_purchases p
		LEFT JOIN subscription_plans sp ON sp.id = p.plan_id
		WHERE p.user_uid = $1
		ORDER BY p.created_at DESC, p.id DESC`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PurchaseWithPlan
	for rows.Next() {
		var item models.PurchaseWithPlan
		var planName sql.NullString
		if err = rows.Scan(&item.ID, &item.UserUID, &item.PlanID, &item.DaysAdded,
			&item.AmountPaid, &item.PaymentMethod, &item.CreatedAt, &planName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if planName.Valid {
			item.PlanName = &planName.String
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
