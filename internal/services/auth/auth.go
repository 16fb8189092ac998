// Package auth содержит логику бизнес-уровня для регистрации и входа.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/terramail/terramail-backend/internal/lib/jwt"
	"github.com/terramail/terramail-backend/internal/lib/password"
	"github.com/terramail/terramail-backend/internal/models"
	"github.com/terramail/terramail-backend/internal/storage/repository"
)

// Ошибки входа; каждая ветка отражается на свой HTTP-статус.
var (
	// ErrInvalidCredentials — неизвестная почта или неверный пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserBanned — учетная запись заблокирована администратором.
	ErrUserBanned = errors.New("account is banned")
	// ErrTooManyAttempts — адрес временно заблокирован по числу неудач.
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)

// UserRepository описывает контракт для работы с учетными записями.
type UserRepository interface {
	// CreateUser сохраняет новую учетную запись.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// GetUserByEmail возвращает учетную запись по почте или ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Throttle описывает проверку блокировки и запись попыток.
type Throttle interface {
	IsBlocked(ctx context.Context, ipAddress string) (bool, error)
	Record(ctx context.Context, ipAddress string, email *string, success bool)
}

// AuthService отвечает за регистрацию, вход и выдачу JWT.
type AuthService struct {
	users    UserRepository
	throttle Throttle
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, throttle Throttle, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		throttle: throttle,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает учетную запись с хэшированием пароля и дефолтной ролью "user".
// Сбой хэширования поднимается наверх, пароль в открытом виде не сохраняется никогда.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string) (*models.User, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, err
	}
	user := models.User{
		UUID:         uuid.NewString(),
		Email:        email,
		PasswordHash: hashed,
		Role:         "user", // дефолтная роль при регистрации
	}
	return s.users.CreateUser(ctx, user)
}

// Login выполняет вход: блокировка → поиск по почте → проверка пароля →
// проверка бана. Каждая ветка оставляет ровно одну запись в журнале,
// в том числе отклоненная по блокировке — окно продолжает скользить.
func (s *AuthService) Login(ctx context.Context, email, rawPassword, ipAddress string) (*models.User, string, error) {
	const op = "auth.Login"

	blocked, err := s.throttle.IsBlocked(ctx, ipAddress)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if blocked {
		s.throttle.Record(ctx, ipAddress, &email, false)
		return nil, "", ErrTooManyAttempts
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.throttle.Record(ctx, ipAddress, &email, false)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	if !password.Verify(s.log, user.PasswordHash, rawPassword) {
		s.throttle.Record(ctx, ipAddress, &email, false)
		return nil, "", ErrInvalidCredentials
	}

	if user.IsBanned {
		s.throttle.Record(ctx, ipAddress, &email, false)
		return nil, "", ErrUserBanned
	}

	s.throttle.Record(ctx, ipAddress, &email, true)

	token, err := s.jwtMaker.GenerateToken(user.Email, user.Role, user.UUID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}
