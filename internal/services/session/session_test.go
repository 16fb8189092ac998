package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/terramail/terramail-backend/internal/models"
	"github.com/terramail/terramail-backend/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetLatestSession(ctx context.Context, userUID string) (*models.ProcessingSession, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProcessingSession), args.Error(1)
}

func (m *RepoMock) CreateSession(ctx context.Context, userUID string) (*models.ProcessingSession, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProcessingSession), args.Error(1)
}

func (m *RepoMock) UpdateSession(ctx context.Context, id int, upd models.DummySessionUpdate) (*models.ProcessingSession, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProcessingSession), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSessionService_GetOrCreateCurrent(t *testing.T) {
	existing := &models.ProcessingSession{ID: 5, UserUID: "uid-123", Approved: 10}
	created := &models.ProcessingSession{ID: 6, UserUID: "uid-123"}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		want       *models.ProcessingSession
		wantErr    bool
	}{
		{
			name: "returns existing session",
			setupMocks: func(r *RepoMock) {
				r.On("GetLatestSession", mock.Anything, "uid-123").Return(existing, nil).Once()
			},
			want: existing,
		},
		{
			name: "creates session when none exists",
			setupMocks: func(r *RepoMock) {
				r.On("GetLatestSession", mock.Anything, "uid-123").
					Return(nil, repository.ErrNotFound).Once()
				r.On("CreateSession", mock.Anything, "uid-123").Return(created, nil).Once()
			},
			want: created,
		},
		{
			name: "storage error passes through",
			setupMocks: func(r *RepoMock) {
				r.On("GetLatestSession", mock.Anything, "uid-123").
					Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := NewSessionService(repo, newNoopLogger())
			got, err := svc.GetOrCreateCurrent(context.Background(), "uid-123")

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestSessionService_GetOrCreateCurrent_Idempotent(t *testing.T) {
	created := &models.ProcessingSession{ID: 7, UserUID: "uid-123"}

	repo := new(RepoMock)
	repo.On("GetLatestSession", mock.Anything, "uid-123").
		Return(nil, repository.ErrNotFound).Once()
	repo.On("CreateSession", mock.Anything, "uid-123").Return(created, nil).Once()
	// повторный вызов возвращает ту же сессию, не создавая новую
	repo.On("GetLatestSession", mock.Anything, "uid-123").Return(created, nil).Once()

	svc := NewSessionService(repo, newNoopLogger())

	first, err := svc.GetOrCreateCurrent(context.Background(), "uid-123")
	require.NoError(t, err)
	second, err := svc.GetOrCreateCurrent(context.Background(), "uid-123")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	repo.AssertExpectations(t)
}

func TestSessionService_Update(t *testing.T) {
	upd := models.DummySessionUpdate{Approved: 3, Rejected: 1, Loaded: 10, Tested: 14, IsActive: true}
	updated := &models.ProcessingSession{ID: 5, UserUID: "uid-123", Approved: 3, Rejected: 1, Loaded: 10, Tested: 14, IsActive: true}

	repo := new(RepoMock)
	repo.On("UpdateSession", mock.Anything, 5, upd).Return(updated, nil).Once()

	svc := NewSessionService(repo, newNoopLogger())
	got, err := svc.Update(context.Background(), 5, upd)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	repo.AssertExpectations(t)
}
