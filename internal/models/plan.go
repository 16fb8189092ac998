package models

import "time"

// SubscriptionPlan представляет тариф — пакет дней доступа по фиксированной цене.
// Обычный путь вывода тарифа из продажи — деактивация, удаление остается
// за администратором.
type SubscriptionPlan struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Days        int       `json:"days"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// DummyPlan используется для приёма данных тарифа из JSON-запроса.
type DummyPlan struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Days        int     `json:"days" validate:"required,gt=0"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
