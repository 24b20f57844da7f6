package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config содержит все настройки сервиса заказов
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Mongo    MongoConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Import   ImportConfig
	Cron     CronConfig
	LogLevel string
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig - настройки подключения к PostgreSQL
// Один DSN используется и пулом pgx (пользователи), и GORM (каталог и заказы)
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - настройки Redis для кеширования списка категорий
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka для событий заказов
// Consumer в этом же процессе читает топик и отправляет письма
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// MongoConfig - настройки MongoDB для статусов задач импорта
type MongoConfig struct {
	URI    string
	DBName string
}

// JWTConfig - настройки подписи access токенов
type JWTConfig struct {
	Secret        string
	AccessTTLMins int
}

// SMTPConfig - настройки почтового сервера
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// ImportConfig - настройки фонового импорта прайс-листов
type ImportConfig struct {
	Workers   int    // Количество воркеров пула
	QueueSize int    // Размер буфера очереди задач
	TempDir   string // Каталог для временных файлов загрузки
}

// CronConfig - расписания фоновых задач
type CronConfig struct {
	PriceSyncSchedule    string // Периодическая синхронизация прайсов по URL
	TokenCleanupSchedule string // Удаление просроченных токенов подтверждения
	TokenTTLHours        int
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	workers, err := strconv.Atoi(getEnv("IMPORT_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_WORKERS value: %w", err)
	}

	queueSize, err := strconv.Atoi(getEnv("IMPORT_QUEUE_SIZE", "64"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_QUEUE_SIZE value: %w", err)
	}

	accessTTL, err := strconv.Atoi(getEnv("JWT_ACCESS_TTL_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TTL_MINUTES value: %w", err)
	}

	tokenTTL, err := strconv.Atoi(getEnv("CONFIRM_TOKEN_TTL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONFIRM_TOKEN_TTL_HOURS value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "orderservice"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "order_events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "orderservice-mailer"),
		},
		Mongo: MongoConfig{
			URI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName: getEnv("MONGO_DB", "orderservice"),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessTTLMins: accessTTL,
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnv("SMTP_PORT", "25"),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "noreply@orderservice.local"),
		},
		Import: ImportConfig{
			Workers:   workers,
			QueueSize: queueSize,
			TempDir:   getEnv("IMPORT_TEMP_DIR", os.TempDir()),
		},
		Cron: CronConfig{
			PriceSyncSchedule:    getEnv("CRON_PRICE_SYNC", "0 */6 * * *"),
			TokenCleanupSchedule: getEnv("CRON_TOKEN_CLEANUP", "0 * * * *"),
			TokenTTLHours:        tokenTTL,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL возвращает строку подключения в формате postgres://
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
