// Package plan реализует бизнес-логику тарифов, включая кеширование витрины.
package plan

import (
	"context"
	"log/slog"
	"time"

	"github.com/terramail/terramail-backend/internal/lib/sl"
	"github.com/terramail/terramail-backend/internal/models"
)

// catalogCacheKey — ключ кеша публичной витрины тарифов.
const catalogCacheKey = "plans:active"

// catalogCacheTTL — время жизни витрины в кеше.
const catalogCacheTTL = 5 * time.Minute

// Repository описывает контракт хранилища тарифов.
type Repository interface {
	CreatePlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id int) (*models.SubscriptionPlan, error)
	// ListPlans возвращает тарифы по возрастанию цены.
	ListPlans(ctx context.Context, activeOnly bool) ([]*models.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, id int, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error)
	DeletePlan(ctx context.Context, id int) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// PlanService реализует операции над тарифами.
type PlanService struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewPlanService создает новый экземпляр PlanService.
func NewPlanService(repo Repository, cache Cache, log *slog.Logger) *PlanService {
	return &PlanService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListActive возвращает публичную витрину: только активные тарифы,
// по возрастанию цены. Витрина недолго живет в кеше.
func (s *PlanService) ListActive(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	var cached []*models.SubscriptionPlan
	found, err := s.cache.Get(catalogCacheKey, &cached)
	if err != nil {
		s.log.Warn("plan catalog cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.repo.ListPlans(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(catalogCacheKey, plans, catalogCacheTTL); err != nil {
		s.log.Warn("failed to cache plan catalog", sl.Err(err))
	}
	return plans, nil
}

// ListAll возвращает все тарифы для администратора, по возрастанию цены.
func (s *PlanService) ListAll(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	return s.repo.ListPlans(ctx, false)
}

// Create сохраняет новый тариф; по умолчанию тариф активен.
func (s *PlanService) Create(ctx context.Context, req models.DummyPlan) (*models.SubscriptionPlan, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	plan, err := s.repo.CreatePlan(ctx, models.SubscriptionPlan{
		Name:        req.Name,
		Days:        req.Days,
		Price:       req.Price,
		Description: req.Description,
		IsActive:    isActive,
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCatalog()
	return plan, nil
}

// Update перезаписывает тариф; признак активности сохраняется,
// если его не прислали — так тариф деактивируют, не удаляя.
func (s *PlanService) Update(ctx context.Context, id int, req models.DummyPlan) (*models.SubscriptionPlan, error) {
	existing, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	isActive := existing.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	plan, err := s.repo.UpdatePlan(ctx, id, models.SubscriptionPlan{
		Name:        req.Name,
		Days:        req.Days,
		Price:       req.Price,
		Description: req.Description,
		IsActive:    isActive,
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCatalog()
	return plan, nil
}

// Delete жестко удаляет тариф. Обычный путь — деактивация через Update.
func (s *PlanService) Delete(ctx context.Context, id int) error {
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog()
	return nil
}

func (s *PlanService) invalidateCatalog() {
	if err := s.cache.Invalidate(catalogCacheKey); err != nil {
		s.log.Warn("failed to invalidate plan catalog", sl.Err(err))
	}
}
