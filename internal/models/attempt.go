package models

import "time"

// LoginAttempt представляет одну попытку аутентификации.
// Журнал попыток ведется только на добавление и служит источником
// для вычисления блокировки по адресу.
type LoginAttempt struct {
	ID        int       `json:"id"`
	IPAddress string    `json:"ip_address"` // Адрес, с которого пришел запрос
	Email     *string   `json:"email"`      // Введенная почта; nil, если не передана
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}
