package plan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/terramail/terramail-backend/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreatePlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}

func (m *RepoMock) GetPlan(ctx context.Context, id int) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}

func (m *RepoMock) ListPlans(ctx context.Context, activeOnly bool) ([]*models.SubscriptionPlan, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionPlan), args.Error(1)
}

func (m *RepoMock) UpdatePlan(ctx context.Context, id int, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, id, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}

func (m *RepoMock) DeletePlan(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestPlanService_ListActive(t *testing.T) {
	plans := []*models.SubscriptionPlan{
		{ID: 1, Name: "Неделя", Days: 7, Price: 290, IsActive: true},
		{ID: 2, Name: "Месяц", Days: 30, Price: 990, IsActive: true},
	}

	t.Run("cache miss loads from repo", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "plans:active", mock.Anything).Return(false, nil).Once()
		repo.On("ListPlans", mock.Anything, true).Return(plans, nil).Once()
		cache.On("Set", "plans:active", plans, 5*time.Minute).Return(nil).Once()

		svc := NewPlanService(repo, cache, newNoopLogger())
		got, err := svc.ListActive(context.Background())
		require.NoError(t, err)
		assert.Equal(t, plans, got)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips repo", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "plans:active", mock.Anything).Return(true, nil).Once()

		svc := NewPlanService(repo, cache, newNoopLogger())
		_, err := svc.ListActive(context.Background())
		require.NoError(t, err)
		repo.AssertNotCalled(t, "ListPlans")
		cache.AssertExpectations(t)
	})

	t.Run("cache read error falls back to repo", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "plans:active", mock.Anything).
			Return(false, errors.New("redis down")).Once()
		repo.On("ListPlans", mock.Anything, true).Return(plans, nil).Once()
		cache.On("Set", "plans:active", plans, 5*time.Minute).
			Return(errors.New("redis down")).Once()

		svc := NewPlanService(repo, cache, newNoopLogger())
		got, err := svc.ListActive(context.Background())
		require.NoError(t, err)
		assert.Equal(t, plans, got)
	})
}

func TestPlanService_Create(t *testing.T) {
	inactive := false

	tests := []struct {
		name       string
		req        models.DummyPlan
		wantActive bool
	}{
		{
			name:       "active by default",
			req:        models.DummyPlan{Name: "Месяц", Days: 30, Price: 990},
			wantActive: true,
		},
		{
			name:       "explicitly inactive",
			req:        models.DummyPlan{Name: "Архив", Days: 30, Price: 990, IsActive: &inactive},
			wantActive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			repo.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p models.SubscriptionPlan) bool {
				return p.IsActive == tt.wantActive
			})).Return(&models.SubscriptionPlan{ID: 1, IsActive: tt.wantActive}, nil).Once()
			cache.On("Invalidate", "plans:active").Return(nil).Once()

			svc := NewPlanService(repo, cache, newNoopLogger())
			plan, err := svc.Create(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantActive, plan.IsActive)
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestPlanService_Update_KeepsActivityWhenOmitted(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	repo.On("GetPlan", mock.Anything, 3).
		Return(&models.SubscriptionPlan{ID: 3, IsActive: false}, nil).Once()
	repo.On("UpdatePlan", mock.Anything, 3, mock.MatchedBy(func(p models.SubscriptionPlan) bool {
		return !p.IsActive
	})).Return(&models.SubscriptionPlan{ID: 3, IsActive: false}, nil).Once()
	cache.On("Invalidate", "plans:active").Return(nil).Once()

	svc := NewPlanService(repo, cache, newNoopLogger())
	plan, err := svc.Update(context.Background(), 3, models.DummyPlan{Name: "Месяц", Days: 30, Price: 990})
	require.NoError(t, err)
	assert.False(t, plan.IsActive)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestPlanService_Delete_InvalidatesCache(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	repo.On("DeletePlan", mock.Anything, 3).Return(nil).Once()
	cache.On("Invalidate", "plans:active").Return(nil).Once()

	svc := NewPlanService(repo, cache, newNoopLogger())
	require.NoError(t, svc.Delete(context.Background(), 3))
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}
