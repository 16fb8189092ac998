// Package session реализует бизнес-логику рабочих сессий обработки писем.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/terramail/terramail-backend/internal/models"
	"github.com/terramail/terramail-backend/internal/storage/repository"
)

// Repository описывает контракт хранилища сессий.
type Repository interface {
	GetLatestSession(ctx context.Context, userUID string) (*models.ProcessingSession, error)
	CreateSession(ctx context.Context, userUID string) (*models.ProcessingSession, error)
	UpdateSession(ctx context.Context, id int, upd models.DummySessionUpdate) (*models.ProcessingSession, error)
}

// SessionService отвечает за «текущую» сессию пользователя.
type SessionService struct {
	repo Repository
	log  *slog.Logger
}

// NewSessionService создает новый экземпляр SessionService.
func NewSessionService(repo Repository, log *slog.Logger) *SessionService {
	return &SessionService{
		repo: repo,
		log:  log,
	}
}

// GetOrCreateCurrent возвращает самую свежую сессию пользователя,
// при её отсутствии создает новую с нулевыми счетчиками. Повторный
// вызов возвращает ту же сессию — операция идемпотентна.
func (s *SessionService) GetOrCreateCurrent(ctx context.Context, userUID string) (*models.ProcessingSession, error) {
	sess, err := s.repo.GetLatestSession(ctx, userUID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	sess, err = s.repo.CreateSession(ctx, userUID)
	if err != nil {
		return nil, err
	}
	s.log.Info("created processing session",
		slog.Int("id", sess.ID), slog.String("user_uid", userUID))
	return sess, nil
}

// Update записывает счетчики и признак активности сессии.
func (s *SessionService) Update(ctx context.Context, id int, req models.DummySessionUpdate) (*models.ProcessingSession, error) {
	return s.repo.UpdateSession(ctx, id, req)
}
