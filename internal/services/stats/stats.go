// Package stats реализует сводку для панели администратора.
package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/terramail/terramail-backend/internal/lib/sl"
	"github.com/terramail/terramail-backend/internal/models"
)

const statsCacheKey = "stats:summary"

const statsCacheTTL = time.Minute

// Repository описывает контракт хранилища для сводки.
type Repository interface {
	GetStats(ctx context.Context) (*models.Stats, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// StatsService собирает сводку, недолго держа её в кеше.
type StatsService struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewStatsService создает новый экземпляр StatsService.
func NewStatsService(repo Repository, cache Cache, log *slog.Logger) *StatsService {
	return &StatsService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Summary возвращает сводку по пользователям, сессиям и выручке.
func (s *StatsService) Summary(ctx context.Context) (*models.Stats, error) {
	var cached models.Stats
	found, err := s.cache.Get(statsCacheKey, &cached)
	if err != nil {
		s.log.Warn("stats cache read failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(statsCacheKey, stats, statsCacheTTL); err != nil {
		s.log.Warn("failed to cache stats", sl.Err(err))
	}
	return stats, nil
}
