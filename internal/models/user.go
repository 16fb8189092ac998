// Package models содержит доменную модель учетной записи пользователя,
// включающую данные для входа, роль, баланс дней подписки и служебные поля.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// User представляет учетную запись пользователя TerrraMail.
type User struct {
	UUID             string    // Уникальный идентификатор пользователя
	Email            string    // Электронная почта (уникальная)
	PasswordHash     string    // Хэш пароля пользователя
	Role             string    // Роль пользователя, admin или user
	SubscriptionDays int       // Остаток оплаченных дней доступа
	AllowedIPs       []string  // Разрешенные адреса; поле хранится, но не проверяется
	IsBanned         bool      // Признак блокировки учетной записи
	CreatedAt        time.Time // Дата создания
	UpdatedAt        time.Time // Дата последнего изменения
}

// PublicUser представляет учетную запись без секретных полей,
// именно в таком виде она уходит в HTTP-ответах.
type PublicUser struct {
	UUID             string    `json:"uuid"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	SubscriptionDays int       `json:"subscription_days"`
	AllowedIPs       []string  `json:"allowed_ips,omitempty"`
	IsBanned         bool      `json:"is_banned"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Public отбрасывает хэш пароля и возвращает представление для ответа.
func (u *User) Public() PublicUser {
	return PublicUser{
		UUID:             u.UUID,
		Email:            u.Email,
		Role:             u.Role,
		SubscriptionDays: u.SubscriptionDays,
		AllowedIPs:       u.AllowedIPs,
		IsBanned:         u.IsBanned,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// DummyUser используется для приёма данных из JSON-запроса на создание
// учетной записи, прежде чем конвертировать их в User.
type DummyUser struct {
	Email            string   `json:"email" validate:"required,email"`
	Password         string   `json:"password" validate:"required,min=6"`
	Role             string   `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	SubscriptionDays int      `json:"subscription_days,omitempty" validate:"omitempty,gte=0"`
	AllowedIPs       []string `json:"allowed_ips,omitempty"`
}

// DummyUserUpdate используется для частичного обновления учетной записи.
// Указатели отличают «поле не прислали» от «прислали пустое значение».
type DummyUserUpdate struct {
	Email            *string   `json:"email,omitempty" validate:"omitempty,email"`
	Password         *string   `json:"password,omitempty" validate:"omitempty,min=6"`
	Role             *string   `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	SubscriptionDays *int      `json:"subscription_days,omitempty" validate:"omitempty,gte=0"`
	AllowedIPs       *[]string `json:"allowed_ips,omitempty"`
	IsBanned         *bool     `json:"is_banned,omitempty"`
}
