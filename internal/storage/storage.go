package storage

import (
	"context"
	"fmt"
)

// Ключи долговременного хранилища клиента.
const (
	KeyAuthToken = "auth_token"
	KeyUser      = "user"
	KeyAPIURL    = "api_url"
)

// Драйверы хранилища.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Storage долговременное key/value хранилище клиента (аналог localStorage).
// Отсутствующий ключ не является ошибкой: Get возвращает ok == false.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// Open открывает хранилище по имени драйвера.
// Для file path задаёт путь к JSON файлу, для sqlite/postgres это DSN.
func Open(ctx context.Context, driver, path string) (Storage, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStorage(path)
	case DriverSQLite, DriverPostgres:
		return NewSQLStorage(ctx, driver, path)
	case DriverMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("storage: неизвестный драйвер %q", driver)
	}
}
