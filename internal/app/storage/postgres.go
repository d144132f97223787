package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mrhacklx/Terabis/internal/app/usecase"
)

// PostgresStorage хранит связки в PostgreSQL. Атомарность мутаций по одному
// пользователю обеспечивает сама база: все операции — одиночные выражения
// над строкой с ключом user_id.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	storage := &PostgresStorage{
		pool: pool,
	}

	if err := storage.createTable(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS bindings (
			user_id BIGINT PRIMARY KEY,
			api_key TEXT NOT NULL,
			link_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := s.pool.Exec(ctx, query)
	return err
}

// Get получает связку пользователя
func (s *PostgresStorage) Get(ctx context.Context, userID int64) (usecase.UserBinding, error) {
	binding := usecase.UserBinding{UserID: userID}
	query := `SELECT api_key, link_count FROM bindings WHERE user_id = $1`

	err := s.pool.QueryRow(ctx, query, userID).Scan(&binding.APIKey, &binding.LinkCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return usecase.UserBinding{}, usecase.ErrNotFound
		}
		return usecase.UserBinding{}, fmt.Errorf("failed to query binding: %w", err)
	}

	return binding, nil
}

// Save сохраняет связку. Сначала пробуем вставку; если связка уже есть,
// обновляем только ключ, счетчик ссылок остается нетронутым.
func (s *PostgresStorage) Save(ctx context.Context, userID int64, apiKey string) error {
	insertQuery := `INSERT INTO bindings (user_id, api_key) VALUES ($1, $2)`

	_, err := s.pool.Exec(ctx, insertQuery, userID, apiKey)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			updateQuery := `UPDATE bindings SET api_key = $2 WHERE user_id = $1`
			if _, err := s.pool.Exec(ctx, updateQuery, userID, apiKey); err != nil {
				return fmt.Errorf("failed to update binding: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to insert binding: %w", err)
	}

	return nil
}

// Delete удаляет связку и сообщает, существовала ли она
func (s *PostgresStorage) Delete(ctx context.Context, userID int64) error {
	query := `DELETE FROM bindings WHERE user_id = $1`

	tag, err := s.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete binding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrNotFound
	}

	return nil
}

// IncrementLinks увеличивает счетчик сокращенных ссылок; отсутствие
// связки не ошибка
func (s *PostgresStorage) IncrementLinks(ctx context.Context, userID int64) error {
	query := `UPDATE bindings SET link_count = link_count + 1 WHERE user_id = $1`

	if _, err := s.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to increment link count: %w", err)
	}

	return nil
}

// Ping проверяет соединение с базой данных
func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close закрывает соединение с базой данных
func (s *PostgresStorage) Close() {
	s.pool.Close()
}
