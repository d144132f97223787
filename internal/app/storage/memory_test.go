package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mrhacklx/Terabis/internal/app/usecase"
)

func newTestStorage(t *testing.T) (*InMemoryStorage, string) {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), "user_data.json")
	s, err := NewInMemoryStorage(filePath)
	require.NoError(t, err)
	return s, filePath
}

func TestInMemoryStorage_SaveAndGet(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Get(ctx, 42)
	assert.ErrorIs(t, err, usecase.ErrNotFound)

	require.NoError(t, s.Save(ctx, 42, "ABC123"))

	binding, err := s.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), binding.UserID)
	assert.Equal(t, "ABC123", binding.APIKey)
	assert.Equal(t, int64(0), binding.LinkCount)
}

// Связка переживает перезапуск процесса: новое хранилище на том же файле
// видит все, что было записано до него
func TestInMemoryStorage_Durability(t *testing.T) {
	s, filePath := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 42, "ABC123"))
	require.NoError(t, s.IncrementLinks(ctx, 42))
	require.NoError(t, s.IncrementLinks(ctx, 42))

	restarted, err := NewInMemoryStorage(filePath)
	require.NoError(t, err)

	binding, err := restarted.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", binding.APIKey)
	assert.Equal(t, int64(2), binding.LinkCount)
}

func TestInMemoryStorage_DeleteIdempotent(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 42, "ABC123"))

	// Первое удаление срабатывает, второе сообщает об отсутствии, не падая
	require.NoError(t, s.Delete(ctx, 42))
	assert.ErrorIs(t, s.Delete(ctx, 42), usecase.ErrNotFound)

	_, err := s.Get(ctx, 42)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestInMemoryStorage_DeleteSurvivesRestart(t *testing.T) {
	s, filePath := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 42, "ABC123"))
	require.NoError(t, s.Delete(ctx, 42))

	restarted, err := NewInMemoryStorage(filePath)
	require.NoError(t, err)

	_, err = restarted.Get(ctx, 42)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestInMemoryStorage_SaveKeepsLinkCount(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 42, "OLD"))
	require.NoError(t, s.IncrementLinks(ctx, 42))

	// Повторное подключение с новым ключом не обнуляет статистику
	require.NoError(t, s.Save(ctx, 42, "NEW"))

	binding, err := s.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "NEW", binding.APIKey)
	assert.Equal(t, int64(1), binding.LinkCount)
}

func TestInMemoryStorage_IncrementWithoutBinding(t *testing.T) {
	s, _ := newTestStorage(t)

	// Пользователь мог отключиться между сокращением и инкрементом
	assert.NoError(t, s.IncrementLinks(context.Background(), 42))
}

func TestInMemoryStorage_ConcurrentUsers(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	const users = 20

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			assert.NoError(t, s.Save(ctx, userID, fmt.Sprintf("key-%d", userID)))
		}(int64(i))
	}
	wg.Wait()

	for i := 0; i < users; i++ {
		binding, err := s.Get(ctx, int64(i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("key-%d", i), binding.APIKey)
	}
}

// Конкурентные инкременты одного пользователя не теряют обновлений
func TestInMemoryStorage_ConcurrentIncrements(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 42, "ABC123"))

	const increments = 50

	var wg sync.WaitGroup
	for i := 0; i < increments; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.IncrementLinks(ctx, 42))
		}()
	}
	wg.Wait()

	binding, err := s.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(increments), binding.LinkCount)
}

func TestFileBackup_LoadMissingFile(t *testing.T) {
	backup := NewFileBackup(filepath.Join(t.TempDir(), "missing.json"))

	bindings, err := backup.Load()
	require.NoError(t, err)
	assert.Empty(t, bindings)
}

func TestFileBackup_SaveAllAndLoad(t *testing.T) {
	backup := NewFileBackup(filepath.Join(t.TempDir(), "user_data.json"))

	records := []BindingRecord{
		{UUID: "u1", UserID: 1, APIKey: "A", LinkCount: 3},
		{UUID: "u2", UserID: 2, APIKey: "B"},
	}
	require.NoError(t, backup.SaveAll(records))

	bindings, err := backup.Load()
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, "A", bindings[1].APIKey)
	assert.Equal(t, int64(3), bindings[1].LinkCount)
	assert.Equal(t, "B", bindings[2].APIKey)
}
