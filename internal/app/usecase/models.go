package usecase

// UserBinding связка пользователя с его API ключом сервиса сокращения ссылок.
// Связка существует только для подключенных пользователей: отсутствие записи
// означает "не подключен", а не "подключен с пустым ключом".
type UserBinding struct {
	UserID    int64  `json:"user_id"`
	APIKey    string `json:"api_key"`
	LinkCount int64  `json:"link_count"`
}

// InboundMessage входящее сообщение от транспорта
type InboundMessage struct {
	UserID    int64
	ChatID    int64
	FirstName string
	Text      string
}

// Reply исходящий ответ пользователю
type Reply struct {
	ChatID   int64
	Text     string
	Markdown bool
}

// ValidationStatus результат проверки API ключа удаленным сервисом
type ValidationStatus int

const (
	StatusValid       ValidationStatus = iota // ключ принят сервисом
	StatusInvalid                             // сервис явно отверг ключ
	StatusUnreachable                         // сервис недоступен, ответ не получен
)

// ShortenStatus исход одного обращения к сервису сокращения
type ShortenStatus int

const (
	ShortenOK          ShortenStatus = iota // ссылка сокращена
	ShortenRejected                         // сервис отказал в сокращении
	ShortenUnreachable                      // сервис недоступен, ответ не получен
)

// ShortenResult итог сокращения одной ссылки
type ShortenResult struct {
	Status   ShortenStatus
	ShortURL string
}
