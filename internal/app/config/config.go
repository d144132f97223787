package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

const (
	defaultStorageFile = "user_data.json"
	defaultAPIBaseURL  = "https://bisgram.com/api"
	defaultTimeout     = 10 * time.Second
	defaultWorkers     = 8
	defaultPollTimeout = 30
)

type Config struct {
	BotToken        string        // токен Telegram бота
	APIBaseURL      string        // базовый адрес API сервиса сокращения ссылок
	StorageFilePath string        // путь к файлу для хранения связок
	DatabaseDSN     string        // DSN PostgreSQL; если задан, файл не используется
	RequestTimeout  time.Duration // таймаут исходящих сетевых запросов
	Workers         int           // число воркеров обработки событий
	PollTimeout     int           // таймаут long poll в секундах
	ServerAddress   string        // адрес HTTP-сервера вебхука
	WebhookURL      string        // публичный адрес вебхука
	WebhookSecret   string        // секрет для проверки запросов от Telegram
}

func NewConfig() *Config {
	cfg := &Config{
		APIBaseURL:  defaultAPIBaseURL,
		PollTimeout: defaultPollTimeout,
	}

	flag.StringVar(&cfg.ServerAddress, "a", "localhost:3000", "HTTP server address")
	flag.StringVar(&cfg.StorageFilePath, "f", defaultStorageFile, "file storage path")
	flag.StringVar(&cfg.DatabaseDSN, "d", "", "PostgreSQL DSN")
	flag.DurationVar(&cfg.RequestTimeout, "t", defaultTimeout, "outbound request timeout")
	flag.IntVar(&cfg.Workers, "w", defaultWorkers, "event worker count")

	flag.Parse()

	cfg.BotToken = os.Getenv("BOT_TOKEN")

	if envAPIBaseURL := os.Getenv("API_BASE_URL"); envAPIBaseURL != "" {
		cfg.APIBaseURL = envAPIBaseURL
	}

	if envServerAddr := os.Getenv("SERVER_ADDRESS"); envServerAddr != "" {
		cfg.ServerAddress = envServerAddr
	}

	// Хостинги обычно отдают порт через переменную PORT
	if envPort := os.Getenv("PORT"); envPort != "" {
		cfg.ServerAddress = ":" + envPort
	}

	if envStoragePath := os.Getenv("FILE_STORAGE_PATH"); envStoragePath != "" {
		cfg.StorageFilePath = envStoragePath
	}

	if envDSN := os.Getenv("DATABASE_DSN"); envDSN != "" {
		cfg.DatabaseDSN = envDSN
	}

	if envTimeout := os.Getenv("REQUEST_TIMEOUT"); envTimeout != "" {
		if d, err := time.ParseDuration(envTimeout); err == nil {
			cfg.RequestTimeout = d
		}
	}

	if envWorkers := os.Getenv("WORKERS"); envWorkers != "" {
		if n, err := strconv.Atoi(envWorkers); err == nil && n > 0 {
			cfg.Workers = n
		}
	}

	cfg.WebhookURL = os.Getenv("WEBHOOK_URL")
	cfg.WebhookSecret = os.Getenv("WEBHOOK_SECRET")

	return cfg
}
