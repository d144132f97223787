// Package storage содержит реализации хранилища связок: память с файловым
// бэкапом и PostgreSQL.
package storage

import (
	"context"

	"github.com/Mrhacklx/Terabis/internal/app/usecase"
)

// New выбирает реализацию хранилища: PostgreSQL при заданном DSN, иначе
// память с файловым бэкапом. Возвращаемая функция освобождает ресурсы
// хранилища при остановке.
func New(ctx context.Context, dsn, filePath string) (usecase.BindingStorage, func(), error) {
	if dsn != "" {
		pg, err := NewPostgresStorage(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}

	mem, err := NewInMemoryStorage(filePath)
	if err != nil {
		return nil, nil, err
	}
	return mem, func() {}, nil
}
