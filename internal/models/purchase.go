package models

import "time"

// UserPurchase представляет неизменяемую запись о покупке дней доступа.
// Создание покупки — единственное место, где платная операция меняет
// баланс дней пользователя, обе записи применяются одной транзакцией.
type UserPurchase struct {
	ID            int       `json:"id"`
	UserUID       string    `json:"user_uid"`
	PlanID        *int      `json:"plan_id"`
	DaysAdded     int       `json:"days_added"`
	AmountPaid    float64   `json:"amount_paid"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

// PurchaseWithPlan дополняет покупку названием тарифа для вывода истории.
type PurchaseWithPlan struct {
	UserPurchase
	PlanName *string `json:"plan_name"`
}

// DummyPurchase используется для приёма данных покупки из JSON-запроса.
// DaysAdded можно не передавать — тогда берется количество дней тарифа.
type DummyPurchase struct {
	UserUID       string  `json:"user_uid" validate:"required,uuid"`
	PlanID        int     `json:"plan_id" validate:"required,gt=0"`
	DaysAdded     int     `json:"days_added,omitempty" validate:"omitempty,gt=0"`
	AmountPaid    float64 `json:"amount_paid" validate:"required,gte=0"`
	PaymentMethod string  `json:"payment_method,omitempty"`
}

// PurchaseEvent — сообщение о совершенной покупке для очереди уведомлений.
type PurchaseEvent struct {
	Email      string  `json:"email"`
	PlanName   string  `json:"plan_name"`
	DaysAdded  int     `json:"days_added"`
	AmountPaid float64 `json:"amount_paid"`
}
