// Package throttle реализует блокировку входа по адресу на основе журнала
// попыток. Состояние не хранится отдельно: блокировка каждый раз выводится
// из свежих неудач в скользящем окне, поэтому снимается сама по истечении
// окна, без ручной разблокировки.
package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/terramail/terramail-backend/internal/lib/sl"
	"github.com/terramail/terramail-backend/internal/models"
)

// AttemptRepository описывает контракт журнала попыток входа.
type AttemptRepository interface {
	// CreateAttempt добавляет запись и подрезает журнал до предела.
	CreateAttempt(ctx context.Context, attempt models.LoginAttempt) error
	// CountRecentFailures считает неудачи с адреса позже момента since.
	CountRecentFailures(ctx context.Context, ipAddress string, since time.Time) (int, error)
	// ListAttempts возвращает последние попытки, новые сверху.
	ListAttempts(ctx context.Context, limit int) ([]*models.LoginAttempt, error)
}

// Service вычисляет блокировку и ведет журнал попыток.
type Service struct {
	repo        AttemptRepository
	log         *slog.Logger
	maxFailures int
	window      time.Duration
	now         func() time.Time
}

// New создает Service с заданными параметрами окна.
func New(repo AttemptRepository, log *slog.Logger, maxFailures int, window time.Duration) *Service {
	return &Service{
		repo:        repo,
		log:         log,
		maxFailures: maxFailures,
		window:      window,
		now:         time.Now,
	}
}

// IsBlocked сообщает, заблокирован ли адрес: в скользящем окне набралось
// не меньше maxFailures неудач. Пересчет идет по сырым записям журнала,
// это O(свежих попыток) на проверку — приемлемо при пределе журнала.
func (s *Service) IsBlocked(ctx context.Context, ipAddress string) (bool, error) {
	const op = "throttle.IsBlocked"
	since := s.now().Add(-s.window)
	count, err := s.repo.CountRecentFailures(ctx, ipAddress, since)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return count >= s.maxFailures, nil
}

// Record добавляет запись о попытке. Журнал ведется по возможности:
// сбой записи логируется, но исход аутентификации не меняет.
func (s *Service) Record(ctx context.Context, ipAddress string, email *string, success bool) {
	attempt := models.LoginAttempt{
		IPAddress: ipAddress,
		Email:     email,
		Success:   success,
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		s.log.Warn("failed to record login attempt",
			slog.String("ip", ipAddress), sl.Err(err))
	}
}

// ListRecent возвращает последние записи журнала для панели администратора.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*models.LoginAttempt, error) {
	return s.repo.ListAttempts(ctx, limit)
}
