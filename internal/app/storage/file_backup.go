package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Mrhacklx/Terabis/internal/app/usecase"
)

// BindingRecord запись о связке в файле
type BindingRecord struct {
	UUID      string `json:"uuid"`
	UserID    int64  `json:"user_id"`
	APIKey    string `json:"api_key"`
	LinkCount int64  `json:"link_count"`
}

type FileBackup struct {
	filePath string
}

func NewFileBackup(filePath string) *FileBackup {
	return &FileBackup{
		filePath: filePath,
	}
}

// SaveAll перезаписывает файл целиком. Запись идет во временный файл
// с fsync и заменой через rename, чтобы сбой процесса не оставил
// файл наполовину записанным.
func (fb *FileBackup) SaveAll(records []BindingRecord) error {
	tmpPath := fb.filePath + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		file.Close()
		return fmt.Errorf("cannot encode records: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("cannot sync file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("cannot close file: %w", err)
	}

	if err := os.Rename(tmpPath, fb.filePath); err != nil {
		return fmt.Errorf("cannot replace backup file: %w", err)
	}

	return nil
}

// Load читает все связки из файла. Отсутствующий или пустой файл
// не ошибка: хранилище просто стартует пустым.
func (fb *FileBackup) Load() (map[int64]usecase.UserBinding, error) {
	bindings := make(map[int64]usecase.UserBinding)

	data, err := os.ReadFile(fb.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return bindings, nil
		}
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	if len(data) == 0 {
		return bindings, nil
	}

	var records []BindingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("cannot unmarshal records: %w", err)
	}

	for _, record := range records {
		bindings[record.UserID] = usecase.UserBinding{
			UserID:    record.UserID,
			APIKey:    record.APIKey,
			LinkCount: record.LinkCount,
		}
	}

	return bindings, nil
}
