// Package account реализует бизнес-логику учетных записей и их баланса дней:
// CRUD для администратора, переключение бана и проведение покупок.
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/terramail/terramail-backend/internal/lib/password"
	"github.com/terramail/terramail-backend/internal/lib/sl"
	"github.com/terramail/terramail-backend/internal/models"
	"github.com/terramail/terramail-backend/internal/rabbitmq"
	"github.com/terramail/terramail-backend/internal/storage/repository"
)

// Repository описывает контракт хранилища для учетных записей и покупок.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, userUID string, patch repository.UserPatch) (*models.User, error)
	ToggleUserBan(ctx context.Context, userUID string) (bool, error)
	DeleteUser(ctx context.Context, userUID string) error
	GetPlan(ctx context.Context, id int) (*models.SubscriptionPlan, error)
	// CreatePurchase применяет покупку и инкремент баланса одной транзакцией.
	CreatePurchase(ctx context.Context, purchase models.UserPurchase) (*models.UserPurchase, error)
	ListPurchasesByUser(ctx context.Context, userUID string) ([]*models.PurchaseWithPlan, error)
}

// EventPublisher публикует события биллинга в очередь уведомлений.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// AccountService реализует операции над учетными записями.
type AccountService struct {
	repo      Repository
	publisher EventPublisher // nil, если брокер не настроен
	log       *slog.Logger
}

// NewAccountService создает новый экземпляр AccountService.
func NewAccountService(repo Repository, publisher EventPublisher, log *slog.Logger) *AccountService {
	return &AccountService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Create заводит учетную запись от имени администратора.
// Повторная почта превращается в repository.ErrEmailTaken.
func (s *AccountService) Create(ctx context.Context, req models.DummyUser) (*models.User, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = "user"
	}
	user := models.User{
		UUID:             uuid.NewString(),
		Email:            req.Email,
		PasswordHash:     hashed,
		Role:             role,
		SubscriptionDays: req.SubscriptionDays,
		AllowedIPs:       req.AllowedIPs,
	}
	return s.repo.CreateUser(ctx, user)
}

// Get возвращает учетную запись по UID.
func (s *AccountService) Get(ctx context.Context, userUID string) (*models.User, error) {
	return s.repo.GetUser(ctx, userUID)
}

// List возвращает все учетные записи, новые сверху.
func (s *AccountService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// Update применяет частичное обновление; непереданные поля не трогаются.
func (s *AccountService) Update(ctx context.Context, userUID string, req models.DummyUserUpdate) (*models.User, error) {
	patch := repository.UserPatch{
		Email:            req.Email,
		Role:             req.Role,
		SubscriptionDays: req.SubscriptionDays,
		AllowedIPs:       req.AllowedIPs,
		IsBanned:         req.IsBanned,
	}
	if req.Password != nil {
		hashed, err := password.GetHash(*req.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hashed
	}
	return s.repo.UpdateUser(ctx, userUID, patch)
}

// ToggleBan переключает блокировку и возвращает новое состояние.
func (s *AccountService) ToggleBan(ctx context.Context, userUID string) (bool, error) {
	return s.repo.ToggleUserBan(ctx, userUID)
}

// Delete удаляет учетную запись вместе с её сессиями и покупками.
func (s *AccountService) Delete(ctx context.Context, userUID string) error {
	return s.repo.DeleteUser(ctx, userUID)
}

// AddPurchase проводит покупку: проверяет тариф, записывает покупку и
// увеличивает баланс дней одной транзакцией хранилища, затем по
// возможности публикует событие для письма-квитанции.
func (s *AccountService) AddPurchase(ctx context.Context, req models.DummyPurchase) (*models.UserPurchase, error) {
	const op = "account.AddPurchase"

	plan, err := s.repo.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	days := req.DaysAdded
	if days == 0 {
		days = plan.Days
	}
	method := req.PaymentMethod
	if method == "" {
		method = "manual"
	}

	planID := req.PlanID
	purchase, err := s.repo.CreatePurchase(ctx, models.UserPurchase{
		UserUID:       req.UserUID,
		PlanID:        &planID,
		DaysAdded:     days,
		AmountPaid:    req.AmountPaid,
		PaymentMethod: method,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("purchase applied",
		slog.Int("purchase_id", purchase.ID),
		slog.String("user_uid", purchase.UserUID),
		slog.Int("days_added", purchase.DaysAdded))

	s.publishReceipt(ctx, purchase, plan)
	return purchase, nil
}

// ListPurchases возвращает историю покупок пользователя с тарифами.
func (s *AccountService) ListPurchases(ctx context.Context, userUID string) ([]*models.PurchaseWithPlan, error) {
	return s.repo.ListPurchasesByUser(ctx, userUID)
}

// publishReceipt отправляет событие покупки в очередь. Сбой публикации
// не откатывает уже проведенную покупку.
func (s *AccountService) publishReceipt(ctx context.Context, purchase *models.UserPurchase, plan *models.SubscriptionPlan) {
	if s.publisher == nil {
		return
	}
	user, err := s.repo.GetUser(ctx, purchase.UserUID)
	if err != nil {
		s.log.Warn("failed to load user for receipt", sl.Err(err))
		return
	}
	event := models.PurchaseEvent{
		Email:      user.Email,
		PlanName:   plan.Name,
		DaysAdded:  purchase.DaysAdded,
		AmountPaid: purchase.AmountPaid,
	}
	if err := s.publisher.Publish(rabbitmq.PurchaseRoutingKey, event); err != nil {
		s.log.Warn("failed to publish purchase event", sl.Err(err))
	}
}
