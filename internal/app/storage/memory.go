package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Mrhacklx/Terabis/internal/app/usecase"
)

// InMemoryStorage хранит связки в памяти и сбрасывает их в файл на каждой
// мутации, так что перезапуск процесса не теряет подключенных пользователей.
//
// Дисциплина блокировок: mu защищает карту и берется на чтение без
// ожидания мутаций других пользователей; мутации одного пользователя
// сериализуются его личным локом, мутации разных пользователей идут
// параллельно. flushMu сериализует пары снимок+запись файла, чтобы
// более старый снимок не мог затереть более новый.
type InMemoryStorage struct {
	mu        sync.RWMutex
	userLocks sync.Map // int64 -> *sync.Mutex
	bindings  map[int64]usecase.UserBinding
	backup    *FileBackup
	flushMu   sync.Mutex
}

func NewInMemoryStorage(filePath string) (*InMemoryStorage, error) {
	backup := NewFileBackup(filePath)

	bindings, err := backup.Load()
	if err != nil {
		return nil, err
	}

	return &InMemoryStorage{
		bindings: bindings,
		backup:   backup,
	}, nil
}

func (s *InMemoryStorage) lockUser(userID int64) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Get чистое чтение, без обращений к диску и сети
func (s *InMemoryStorage) Get(ctx context.Context, userID int64) (usecase.UserBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	binding, exists := s.bindings[userID]
	if !exists {
		return usecase.UserBinding{}, usecase.ErrNotFound
	}
	return binding, nil
}

// Save выполняет upsert: новый ключ перезаписывает старый, счетчик ссылок
// сохраняется
func (s *InMemoryStorage) Save(ctx context.Context, userID int64, apiKey string) error {
	userLock := s.lockUser(userID)
	userLock.Lock()
	defer userLock.Unlock()

	s.mu.Lock()
	binding := s.bindings[userID]
	binding.UserID = userID
	binding.APIKey = apiKey
	s.bindings[userID] = binding
	s.mu.Unlock()

	return s.flush()
}

// Delete удаляет связку; отсутствие связки отличимо от удаления
func (s *InMemoryStorage) Delete(ctx context.Context, userID int64) error {
	userLock := s.lockUser(userID)
	userLock.Lock()
	defer userLock.Unlock()

	s.mu.Lock()
	_, exists := s.bindings[userID]
	if !exists {
		s.mu.Unlock()
		return usecase.ErrNotFound
	}
	delete(s.bindings, userID)
	s.mu.Unlock()

	return s.flush()
}

// IncrementLinks увеличивает счетчик сокращенных ссылок. Пользователь мог
// отключиться между сокращением и инкрементом, поэтому отсутствие связки
// не считается ошибкой.
func (s *InMemoryStorage) IncrementLinks(ctx context.Context, userID int64) error {
	userLock := s.lockUser(userID)
	userLock.Lock()
	defer userLock.Unlock()

	s.mu.Lock()
	binding, exists := s.bindings[userID]
	if !exists {
		s.mu.Unlock()
		return nil
	}
	binding.LinkCount++
	s.bindings[userID] = binding
	s.mu.Unlock()

	return s.flush()
}

// flush сбрасывает снимок всех связок в файл. Снимок берется под flushMu,
// поэтому записи файла строго упорядочены и последняя всегда содержит все
// завершенные мутации.
func (s *InMemoryStorage) flush() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.RLock()
	records := make([]BindingRecord, 0, len(s.bindings))
	for _, binding := range s.bindings {
		records = append(records, BindingRecord{
			UUID:      uuid.New().String(),
			UserID:    binding.UserID,
			APIKey:    binding.APIKey,
			LinkCount: binding.LinkCount,
		})
	}
	s.mu.RUnlock()

	return s.backup.SaveAll(records)
}
