package repository

import "errors"

// Ошибки уровня хранилища; сервисы и обработчики различают их через errors.Is.
var (
	// ErrNotFound возвращается, когда запись по идентификатору отсутствует.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken возвращается при попытке завести вторую учетку на ту же почту.
	ErrEmailTaken = errors.New("email already registered")
)
