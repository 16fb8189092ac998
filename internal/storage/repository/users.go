package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/terramail/terramail-backend/internal/models"
)

// uniqueViolation — код ошибки PostgreSQL для нарушения уникального индекса.
const uniqueViolation = "23505"

// UserPatch описывает частичное обновление учетной записи.
// nil-поле означает «не менять».
type UserPatch struct {
	Email            *string
	PasswordHash     *string
	Role             *string
	SubscriptionDays *int
	AllowedIPs       *[]string
	IsBanned         *bool
}

// CreateUser сохраняет новую учетную запись. Повторная почта
// превращается в ErrEmailTaken.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	allowedIPs, err := json.Marshal(user.AllowedIPs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO users (uid, email, password_hash, role, subscription_days,
			      allowed_ips, is_banned)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING created_at, updated_at;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UUID, user.Email, user.PasswordHash, user.Role, user.SubscriptionDays,
		allowedIPs, user.IsBanned).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// GetUserByEmail возвращает учетную запись по почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, role, subscription_days,
			      allowed_ips, is_banned, created_at, updated_at
			  FROM users
			  WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, email), op)
}

// GetUser возвращает учетную запись по её UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, role, subscription_days,
			      allowed_ips, is_banned, created_at, updated_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

// ListUsers возвращает все учетные записи, новые сверху.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, role, subscription_days,
			      allowed_ips, is_banned, created_at, updated_at
			  FROM users
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		var allowedIPs []byte
		if err = rows.Scan(&u.UUID, &u.Email, &u.PasswordHash, &u.Role,
			&u.SubscriptionDays, &allowedIPs, &u.IsBanned, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(allowedIPs, &u.AllowedIPs); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUser применяет частичное обновление одной командой UPDATE,
// чтение-изменение-запись на стороне приложения не используется.
func (s *Storage) UpdateUser(ctx context.Context, userUID string, patch UserPatch) (*models.User, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var allowedIPs []byte
	if patch.AllowedIPs != nil {
		var err error
		allowedIPs, err = json.Marshal(*patch.AllowedIPs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	query := `UPDATE users
			  SET email = COALESCE($1, email),
			      password_hash = COALESCE($2, password_hash),
			      role = COALESCE($3, role),
			      subscription_days = COALESCE($4, subscription_days),
			      allowed_ips = COALESCE($5, allowed_ips),
			      is_banned = COALESCE($6, is_banned),
			      updated_at = now()
			  WHERE uid = $7
			  RETURNING uid, email, password_hash, role, subscription_days,
			      allowed_ips, is_banned, created_at, updated_at`
	row := s.DB.QueryRowContext(ctx, query,
		patch.Email, patch.PasswordHash, patch.Role, patch.SubscriptionDays,
		nullableBytes(allowedIPs), patch.IsBanned, userUID)
	u, err := s.scanUser(row, op)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, err
	}
	return u, nil
}

// ToggleUserBan переключает блокировку одной командой и возвращает новое состояние.
func (s *Storage) ToggleUserBan(ctx context.Context, userUID string) (bool, error) {
	const op = "storage.ToggleUserBan"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_banned = NOT is_banned,
			      updated_at = now()
			  WHERE uid = $1
			  RETURNING is_banned`
	var banned bool
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&banned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return banned, nil
}

// DeleteUser удаляет учетную запись; сессии и покупки уходят каскадом
// по внешним ключам.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) error {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, userUID)
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

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var allowedIPs []byte
	if err := row.Scan(&u.UUID, &u.Email, &u.PasswordHash, &u.Role,
		&u.SubscriptionDays, &allowedIPs, &u.IsBanned, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(allowedIPs, &u.AllowedIPs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// nullableBytes превращает пустой срез в NULL для COALESCE.
func nullableBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}
