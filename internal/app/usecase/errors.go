package usecase

import "errors"

// ErrNotFound возвращается хранилищем, когда связка для пользователя не существует
var ErrNotFound = errors.New("binding not found")

// IsNotFound проверяет, является ли ошибка отсутствием связки
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
