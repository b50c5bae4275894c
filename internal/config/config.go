// Пакет config собирает настройки сервисов каталога:
// значения по умолчанию, затем YAML-файл, затем .env и переменные окружения
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config настройки API и консьюмера аудита
type Config struct {
	HTTPAddr string `yaml:"httpAddr"`

	DBHost     string `yaml:"dbHost"`
	DBPort     string `yaml:"dbPort"`
	DBUser     string `yaml:"dbUser"`
	DBPassword string `yaml:"dbPassword"`
	DBName     string `yaml:"dbName"`

	RedisAddr string        `yaml:"redisAddr"`
	CacheTTL  time.Duration `yaml:"cacheTTL"`

	NATSURL     string `yaml:"natsURL"`
	NATSSubject string `yaml:"natsSubject"`

	ClickHouseDSN string        `yaml:"clickhouseDSN"`
	BatchSize     int           `yaml:"batchSize"`
	FlushInterval time.Duration `yaml:"flushInterval"`
	ConsumerPort  string        `yaml:"consumerPort"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

func def() Config {
	return Config{
		HTTPAddr: ":8080",

		DBHost: "localhost",
		DBPort: "5432",
		DBUser: "postgres",
		DBName: "appdb",

		RedisAddr: "localhost:6379",
		CacheTTL:  time.Minute,

		NATSURL:     "nats://localhost:4222",
		NATSSubject: "catalog",

		ClickHouseDSN: "tcp://localhost:9000?database=default",
		BatchSize:     10,
		FlushInterval: 5 * time.Second,
		ConsumerPort:  "8081",

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load читает конфигурацию. Путь к YAML задаётся CONFIG_FILE (файл необязателен),
// .env в рабочем каталоге подгружается без перезаписи уже заданных переменных
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile читает YAML по пути path (пустой путь пропускается) и применяет переменные окружения
func LoadFile(path string) (Config, error) {
	cfg := def()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = getenv("HTTP_ADDR", c.HTTPAddr)
	c.DBHost = getenv("DB_HOST", c.DBHost)
	c.DBPort = getenv("DB_PORT", c.DBPort)
	c.DBUser = getenv("DB_USER", c.DBUser)
	c.DBPassword = getenv("DB_PASSWORD", c.DBPassword)
	c.DBName = getenv("DB_NAME", c.DBName)
	c.RedisAddr = getenv("REDIS_ADDR", c.RedisAddr)
	c.NATSURL = getenv("NATS_URL", c.NATSURL)
	c.NATSSubject = getenv("NATS_SUBJECT", c.NATSSubject)
	c.ClickHouseDSN = getenv("CLICKHOUSE_DSN", c.ClickHouseDSN)
	c.ConsumerPort = getenv("CONSUMER_PORT", c.ConsumerPort)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("LOG_FORMAT", c.LogFormat)

	var err error
	if c.CacheTTL, err = getenvDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.FlushInterval, err = getenvDuration("FLUSH_INTERVAL", c.FlushInterval); err != nil {
		return err
	}
	if v, ok := lookup("BATCH_SIZE"); ok {
		bs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BATCH_SIZE: %w", err)
		}
		c.BatchSize = bs
	}
	return nil
}

// Validate проверяет значения, без которых сервисы не запустятся
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("flush interval must be positive, got %s", c.FlushInterval)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl cannot be negative, got %s", c.CacheTTL)
	}
	return nil
}

// PostgresDSN собирает строку подключения к PostgreSQL
func (c Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func getenv(k, fallback string) string {
	if v, ok := lookup(k); ok {
		return v
	}
	return fallback
}

func getenvDuration(k string, fallback time.Duration) (time.Duration, error) {
	v, ok := lookup(k)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return d, nil
}
