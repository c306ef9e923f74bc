package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ignatzorin/lapor-client/internal/logger"
	"github.com/ignatzorin/lapor-client/internal/storage"
	"github.com/ignatzorin/lapor-client/internal/validation"
)

const (
	DefaultAPIURL   = "http://localhost:5000/api"
	DefaultContract = "v2"
)

// Config хранит все параметры запуска клиента.
type Config struct {
	Env             string
	LogLevel        string
	APIURL          string
	APIContract     string
	HTTPTimeout     time.Duration
	StorageDriver   string
	StoragePath     string
	MaxUploadSizeMB int64
	// FixtureMode nil, если режим не задан явно и выводится из хранилища.
	FixtureMode *bool
}

// Load читает переменные окружения и возвращает готовую конфигурацию.
func Load() (*Config, error) {
	// Загружаем .env только если он существует, иначе используем системные переменные.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: не удалось прочитать .env: %w", err)
	}

	cfg := &Config{
		Env:           getEnv("LAPOR_ENV", "development"),
		LogLevel:      getEnv("LAPOR_LOG_LEVEL", "warn"),
		APIURL:        strings.TrimRight(getEnv("LAPOR_API_URL", DefaultAPIURL), "/"),
		APIContract:   strings.ToLower(getEnv("LAPOR_API_CONTRACT", DefaultContract)),
		StorageDriver: getEnv("LAPOR_STORAGE_DRIVER", storage.DriverFile),
	}

	if err := validation.ValidateBaseURL(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("config: LAPOR_API_URL: %w", err)
	}
	if cfg.APIContract != "v1" && cfg.APIContract != "v2" {
		return nil, fmt.Errorf("config: неизвестная версия контракта %q (ожидается v1 или v2)", cfg.APIContract)
	}

	var err error
	cfg.HTTPTimeout, err = parseDuration("LAPOR_HTTP_TIMEOUT", getEnv("LAPOR_HTTP_TIMEOUT", "15s"))
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadSizeMB, err = parseInt64("LAPOR_MAX_UPLOAD_MB", getEnv("LAPOR_MAX_UPLOAD_MB", "10"))
	if err != nil {
		return nil, err
	}

	cfg.StoragePath = getEnv("LAPOR_STORAGE_PATH", "")
	if cfg.StoragePath == "" && cfg.StorageDriver == storage.DriverFile {
		cfg.StoragePath, err = defaultStoragePath()
		if err != nil {
			return nil, err
		}
	}

	if raw := getEnv("LAPOR_FIXTURE_MODE", ""); raw != "" {
		forced, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("config: не удалось распарсить LAPOR_FIXTURE_MODE %q: %w", raw, err)
		}
		cfg.FixtureMode = &forced
	}

	return cfg, nil
}

// MaxUploadBytes лимит размера фото в байтах.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadSizeMB * 1024 * 1024
}

// Endpoint итоговый адрес сервиса с учётом сохранённого переопределения.
type Endpoint struct {
	BaseURL     string
	FixtureMode bool
	// Overridden true, если адрес взят из ключа api_url.
	Overridden bool
}

// ResolveEndpoint применяет переопределение api_url из хранилища.
// Без переопределения клиент работает в режиме фикстур, если LAPOR_FIXTURE_MODE не говорит иное.
func ResolveEndpoint(cfg *Config, store storage.Storage) Endpoint {
	ep := Endpoint{BaseURL: cfg.APIURL, FixtureMode: true}

	override, ok, err := store.Get(storage.KeyAPIURL)
	switch {
	case err != nil:
		logger.WithComponent("config").WithError(err).Warn("не удалось прочитать api_url, используем адрес по умолчанию")
	case ok && validation.ValidateBaseURL(override) == nil:
		ep.BaseURL = strings.TrimRight(override, "/")
		ep.FixtureMode = false
		ep.Overridden = true
	case ok:
		logger.WithComponent("config").WithField("api_url", override).Warn("сохранённый api_url некорректен, игнорируем")
	}

	if cfg.FixtureMode != nil {
		ep.FixtureMode = *cfg.FixtureMode
	}
	return ep
}

// getEnv возвращает значение переменной окружения или дефолт.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func defaultStoragePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: не удалось определить каталог конфигурации: %w", err)
	}
	return filepath.Join(dir, "lapor", "storage.json"), nil
}

func parseDuration(key, v string) (time.Duration, error) {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: не удалось распарсить %s %q: %w", key, v, err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("config: %s должен быть положительным", key)
	}
	return dur, nil
}

func parseInt64(key, v string) (int64, error) {
	num, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: не удалось распарсить %s %q: %w", key, v, err)
	}
	if num <= 0 {
		return 0, fmt.Errorf("config: %s должен быть положительным", key)
	}
	return num, nil
}
