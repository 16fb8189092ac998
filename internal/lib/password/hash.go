// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// GetHash создает bcrypt-хеш пароля для безопасного хранения.
// Verify сравнивает сохраненный bcrypt-хеш с введённым паролем.
// Ошибка хеширования всегда поднимается наверх: запись пароля в открытом
// виде недопустима ни при каком сбое.
package password

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// GetHash принимает пароль пользователя и возвращает его bcrypt-хэш
// со стандартной стоимостью (work factor 10).
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// Verify сравнивает bcrypt-хэш с введённым паролем.
//
// Возвращает false и при несовпадении, и при поврежденном хэше в базе;
// второй случай дополнительно пишется в лог, наружу ошибка не уходит.
func Verify(log *slog.Logger, originalHash, externalPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		log.Warn("stored password hash is malformed",
			slog.String("op", "password.Verify"),
			slog.String("error", err.Error()))
	}
	return false
}
