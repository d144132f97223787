// Package usecase предоставляет интерфейсы и бизнес-логику бота
package usecase

import "context"

// BindingStorage определяет интерфейс хранилища связок пользователь-ключ.
// Реализация обязана сериализовать мутации по одному пользователю и
// подтверждать запись только после сохранения на диск.
type BindingStorage interface {
	Get(ctx context.Context, userID int64) (UserBinding, error)
	Save(ctx context.Context, userID int64, apiKey string) error
	Delete(ctx context.Context, userID int64) error
	IncrementLinks(ctx context.Context, userID int64) error
}

// ShortenerAPI определяет интерфейс клиента удаленного сервиса сокращения ссылок
type ShortenerAPI interface {
	Validate(ctx context.Context, apiKey string) ValidationStatus
	Shorten(ctx context.Context, apiKey, link string) ShortenResult
}
