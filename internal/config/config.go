package config

import (
	"fmt"
	"strings"
	"time"

	"butterfly-story/shared/utils"

	"github.com/kelseyhightower/envconfig"
)

// Поддерживаемые бэкенды хранилища развилок.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config содержит конфигурацию сервиса развилок.
type Config struct {
	// Настройки сервера
	Port            string        `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding     string        `envconfig:"LOG_ENCODING" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Хранилище развилок
	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"`
	StoreAddress string `envconfig:"STORE_ADDRESS" default:"0x0000000000000000000000000000000000000000"`
	ChainID      int64  `envconfig:"CHAIN_ID" default:"11155111"`
	RandomSeed   int64  `envconfig:"RANDOM_SEED" default:"0"` // 0 - от времени

	// Настройки Redis
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"butterfly:"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" default:"postgres"`
	DBName        string        `envconfig:"DB_NAME" default:"butterfly"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string `ignored:"true"`

	// Настройки RabbitMQ. Пустой URL - события только в WebSocket.
	RabbitMQURL       string        `envconfig:"RABBITMQ_URL"`
	ChoiceEventsQueue string        `envconfig:"CHOICE_EVENTS_QUEUE" default:"choice_events"`
	RabbitMQRetries   int           `envconfig:"RABBITMQ_RETRIES" default:"5"`
	RabbitMQRetryWait time.Duration `envconfig:"RABBITMQ_RETRY_WAIT" default:"5s"`

	// Секретное поле БЕЗ envconfig тега
	JWTSecret string `ignored:"true"`
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// SafeDSN - DSN без пароля, для логов.
func (c *Config) SafeDSN() string {
	return fmt.Sprintf("postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	var err error
	cfg.JWTSecret, err = utils.ReadSecretOrEnv("jwt_secret", "JWT_SECRET")
	if err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		cfg.DBPassword, err = utils.ReadSecretOrEnv("db_password", "DB_PASSWORD")
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("неизвестный STORE_BACKEND %q (ожидается memory, redis или postgres)", cfg.StoreBackend)
	}

	return &cfg, nil
}
