package auth

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

	"github.com/terramail/terramail-backend/internal/lib/jwt"
	"github.com/terramail/terramail-backend/internal/lib/password"
	"github.com/terramail/terramail-backend/internal/models"
	"github.com/terramail/terramail-backend/internal/storage/repository"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type ThrottleMock struct{ mock.Mock }

func (m *ThrottleMock) IsBlocked(ctx context.Context, ipAddress string) (bool, error) {
	args := m.Called(ctx, ipAddress)
	return args.Bool(0), args.Error(1)
}

func (m *ThrottleMock) Record(ctx context.Context, ipAddress string, email *string, success bool) {
	m.Called(ctx, ipAddress, email, success)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAuthService_Register(t *testing.T) {
	users := new(UserRepoMock)
	throttle := new(ThrottleMock)
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	logger := newNoopLogger()

	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "new@example.com" &&
			u.Role == "user" &&
			u.UUID != "" &&
			u.PasswordHash != "secret123" &&
			password.Verify(logger, u.PasswordHash, "secret123")
	})).Return(&models.User{Email: "new@example.com", Role: "user"}, nil).Once()

	svc := NewAuthService(users, throttle, maker, logger)
	user, err := svc.Register(context.Background(), "new@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	users.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	logger := newNoopLogger()
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	activeUser := &models.User{
		UUID:         "uid-123",
		Email:        "user@example.com",
		PasswordHash: hash,
		Role:         "user",
	}
	bannedUser := &models.User{
		UUID:         "uid-456",
		Email:        "banned@example.com",
		PasswordHash: hash,
		Role:         "user",
		IsBanned:     true,
	}

	tests := []struct {
		name       string
		email      string
		pass       string
		setupMocks func(u *UserRepoMock, th *ThrottleMock)
		wantErr    error
		wantToken  bool
	}{
		{
			name:  "success login",
			email: "user@example.com",
			pass:  "secret123",
			setupMocks: func(u *UserRepoMock, th *ThrottleMock) {
				th.On("IsBlocked", mock.Anything, "10.0.0.1").Return(false, nil).Once()
				u.On("GetUserByEmail", mock.Anything, "user@example.com").Return(activeUser, nil).Once()
				th.On("Record", mock.Anything, "10.0.0.1", mock.Anything, true).Once()
			},
			wantToken: true,
		},
		{
			name:  "blocked by throttle",
			email: "user@example.com",
			pass:  "secret123",
			setupMocks: func(_ *UserRepoMock, th *ThrottleMock) {
				th.On("IsBlocked", mock.Anything, "10.0.0.1").Return(true, nil).Once()
				th.On("Record", mock.Anything, "10.0.0.1", mock.Anything, false).Once()
			},
			wantErr: ErrTooManyAttempts,
		},
		{
			name:  "unknown email",
			email: "ghost@example.com",
			pass:  "secret123",
			setupMocks: func(u *UserRepoMock, th *ThrottleMock) {
				th.On("IsBlocked", mock.Anything, "10.0.0.1").Return(false, nil).Once()
				u.On("GetUserByEmail", mock.Anything, "ghost@example.com").
					Return(nil, repository.ErrNotFound).Once()
				th.On("Record", mock.Anything, "10.0.0.1", mock.Anything, false).Once()
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:  "wrong password",
			email: "user@example.com",
			pass:  "wrongpass",
			setupMocks: func(u *UserRepoMock, th *ThrottleMock) {
				th.On("IsBlocked", mock.Anything, "10.0.0.1").Return(false, nil).Once()
				u.On("GetUserByEmail", mock.Anything, "user@example.com").Return(activeUser, nil).Once()
				th.On("Record", mock.Anything, "10.0.0.1", mock.Anything, false).Once()
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:  "banned account with valid password",
			email: "banned@example.com",
			pass:  "secret123",
			setupMocks: func(u *UserRepoMock, th *ThrottleMock) {
				th.On("IsBlocked", mock.Anything, "10.0.0.1").Return(false, nil).Once()
				u.On("GetUserByEmail", mock.Anything, "banned@example.com").Return(bannedUser, nil).Once()
				th.On("Record", mock.Anything, "10.0.0.1", mock.Anything, false).Once()
			},
			wantErr: ErrUserBanned,
		},
		{
			name:  "throttle check failure",
			email: "user@example.com",
			pass:  "secret123",
			setupMocks: func(_ *UserRepoMock, th *ThrottleMock) {
				th.On("IsBlocked", mock.Anything, "10.0.0.1").
					Return(false, errors.New("db down")).Once()
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UserRepoMock)
			throttle := new(ThrottleMock)
			tt.setupMocks(users, throttle)

			svc := NewAuthService(users, throttle, maker, logger)
			user, token, err := svc.Login(context.Background(), tt.email, tt.pass, "10.0.0.1")

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, ErrTooManyAttempts) ||
					errors.Is(tt.wantErr, ErrInvalidCredentials) ||
					errors.Is(tt.wantErr, ErrUserBanned) {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.email, user.Email)
				if tt.wantToken {
					claims, parseErr := maker.ParseToken(token)
					require.NoError(t, parseErr)
					assert.Equal(t, tt.email, claims.Email)
				}
			}

			users.AssertExpectations(t)
			throttle.AssertExpectations(t)
		})
	}
}
