package models

import "time"

// ProcessingSession представляет рабочую сессию обработки писем пользователя.
// У пользователя есть одна «текущая» сессия — самая свежая по дате создания;
// при первом обращении она создается с нулевыми счетчиками.
type ProcessingSession struct {
	ID        int       `json:"id"`
	UserUID   string    `json:"user_uid"`
	Approved  int       `json:"approved"`
	Rejected  int       `json:"rejected"`
	Loaded    int       `json:"loaded"`
	Tested    int       `json:"tested"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DummySessionUpdate используется для приёма счетчиков сессии из JSON-запроса.
type DummySessionUpdate struct {
	Approved int  `json:"approved" validate:"gte=0"`
	Rejected int  `json:"rejected" validate:"gte=0"`
	Loaded   int  `json:"loaded" validate:"gte=0"`
	Tested   int  `json:"tested" validate:"gte=0"`
	IsActive bool `json:"is_active"`
}
