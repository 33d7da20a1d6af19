// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Server содержит конфигурацию сервера
type Server struct {
	Host            string        `json:"host" yaml:"host"`
	Port            int           `json:"port" yaml:"port"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Reporter описывает локального игрока, от имени которого записываются рейды.
// Если UUID не задан, он разрешается по имени через Mojang API.
type Reporter struct {
	UUID     string `json:"uuid" yaml:"uuid"`
	Username string `json:"username" yaml:"username"`
}

// Mojang содержит настройки клиента профилей
type Mojang struct {
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
	CacheTTL   time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
}

// Processing содержит конфигурацию обработки
type Processing struct {
	RaidTTL         time.Duration `json:"raid_ttl" yaml:"raid_ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval"`
	MaxLineBytes    int64         `json:"max_line_bytes" yaml:"max_line_bytes"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text, json
}

// Config содержит конфигурацию приложения
type Config struct {
	Server     Server     `json:"server" yaml:"server"`
	Reporter   Reporter   `json:"reporter" yaml:"reporter"`
	Mojang     Mojang     `json:"mojang" yaml:"mojang"`
	Processing Processing `json:"processing" yaml:"processing"`
	Logging    Logging    `json:"logging" yaml:"logging"`
}

// defaultConfig возвращает конфигурацию со значениями по умолчанию.
func defaultConfig() *Config {
	return &Config{
		Server: Server{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Mojang: Mojang{
			BaseURL:    DefaultMojangBaseURL,
			Timeout:    DefaultMojangTimeout,
			CacheTTL:   DefaultMojangCacheTTL,
			MaxRetries: DefaultMojangMaxRetries,
		},
		Processing: Processing{
			RaidTTL:         DefaultRaidTTL,
			CleanupInterval: DefaultCleanupInterval,
			MaxLineBytes:    DefaultMaxLineBytes,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем YAML-файл, затем переменные окружения
// (включая .env). Пустой путь означает config.yml в рабочем каталоге.
func LoadConfig(path string) (*Config, error) {
	// Отсутствие .env файла - это нормально.
	_ = godotenv.Load()

	if path == "" {
		path = DefaultConfigFile
	}

	cfg := defaultConfig()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию из env: %w", err)
	}
	return cfg, nil
}

// loadFromYAML накладывает значения из YAML-файла на cfg. Отсутствующий файл ошибкой не считается.
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}
	return nil
}

// applyEnv переопределяет значения конфигурации переменными окружения.
func applyEnv(cfg *Config) error {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	if portStr := getEnv("SERVER_PORT", ""); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("недопустимый SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	cfg.Reporter.UUID = getEnv("REPORTER_UUID", cfg.Reporter.UUID)
	cfg.Reporter.Username = getEnv("REPORTER_USERNAME", cfg.Reporter.Username)
	cfg.Mojang.BaseURL = getEnv("MOJANG_BASE_URL", cfg.Mojang.BaseURL)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)
	return nil
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ReporterUUID возвращает настроенный UUID наблюдателя или uuid.Nil, если он не задан.
func (c *Config) ReporterUUID() (uuid.UUID, error) {
	if c.Reporter.UUID == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(c.Reporter.UUID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("reporter.uuid: %w", err)
	}
	return id, nil
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout должно быть положительным")
	}

	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		return fmt.Errorf("таймауты сервера не могут быть отрицательными")
	}

	if _, err := c.ReporterUUID(); err != nil {
		return err
	}

	if c.Mojang.BaseURL == "" {
		return fmt.Errorf("mojang.base_url не может быть пустым")
	}

	if c.Mojang.Timeout <= 0 {
		return fmt.Errorf("mojang.timeout должно быть положительным")
	}

	if c.Mojang.CacheTTL < 0 {
		return fmt.Errorf("mojang.cache_ttl должно быть неотрицательным (0 отключает кэш)")
	}

	if c.Mojang.MaxRetries < 0 {
		return fmt.Errorf("mojang.max_retries должно быть неотрицательным")
	}

	if c.Processing.RaidTTL <= 0 {
		return fmt.Errorf("processing.raid_ttl должно быть положительным")
	}

	if c.Processing.CleanupInterval <= 0 {
		return fmt.Errorf("processing.cleanup_interval должно быть положительным")
	}

	if c.Processing.MaxLineBytes <= 0 {
		return fmt.Errorf("processing.max_line_bytes должно быть положительным")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json")
	}

	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
