package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const defaultSQLTimeout = 5 * time.Second

// SQLStorage хранит ключи в таблице client_storage (sqlite или postgres).
// Запросы пишутся с плейсхолдерами "?" и переписываются под драйвер через Rebind.
type SQLStorage struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSQLStorage подключается к базе и создаёт таблицу, если её нет.
func NewSQLStorage(ctx context.Context, driver, dsn string) (*SQLStorage, error) {
	driverName, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, fmt.Errorf("storage: DSN для драйвера %s не задан", driver)
	}

	conn, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось подключиться к %s: %w", driver, err)
	}

	if driverName == "sqlite3" {
		// SQLite не любит параллельных писателей, одно соединение на процесс.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(4)
		conn.SetMaxIdleConns(2)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	s := &SQLStorage{db: conn, timeout: defaultSQLTimeout}
	if err := s.initTable(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite3", nil
	case DriverPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("storage: драйвер %q не поддерживает SQL", driver)
	}
}

func (s *SQLStorage) initTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS client_storage (
			storage_key VARCHAR(255) PRIMARY KEY,
			storage_value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("storage: не удалось создать таблицу client_storage: %w", err)
	}
	return nil
}

func (s *SQLStorage) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var value string
	query := s.db.Rebind(`SELECT storage_value FROM client_storage WHERE storage_key = ?`)
	err := s.db.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: ошибка чтения ключа %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStorage) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	query := s.db.Rebind(`
		INSERT INTO client_storage (storage_key, storage_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (storage_key) DO UPDATE
		SET storage_value = excluded.storage_value, updated_at = excluded.updated_at
	`)
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("storage: ошибка записи ключа %s: %w", key, err)
	}
	return nil
}

func (s *SQLStorage) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	query := s.db.Rebind(`DELETE FROM client_storage WHERE storage_key = ?`)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("storage: ошибка удаления ключа %s: %w", key, err)
	}
	return nil
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
