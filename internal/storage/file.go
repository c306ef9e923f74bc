package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lapor-client/internal/logger"
)

// FileStorage хранит все ключи в одном JSON файле.
// Запись атомарная: временный файл в том же каталоге и rename.
type FileStorage struct {
	path string
	mu   sync.Mutex
	log  *logrus.Entry
}

// NewFileStorage создаёт файловое хранилище, каталог создаётся при необходимости.
func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: путь к файлу хранилища не задан")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", filepath.Dir(path), err)
	}

	return &FileStorage{
		path: path,
		log:  logger.WithComponent("storage").WithField("path", path),
	}, nil
}

func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

func (s *FileStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

func (s *FileStorage) Close() error { return nil }

// load читает файл. Отсутствующий или повреждённый файл считается пустым хранилищем.
func (s *FileStorage) load() (map[string]string, error) {
	values := make(map[string]string)

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	if len(raw) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(raw, &values); err != nil {
		s.log.WithError(err).Warn("файл хранилища повреждён, считаем его пустым")
		return make(map[string]string), nil
	}
	return values, nil
}

func (s *FileStorage) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: ошибка сериализации: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".storage-*.tmp")
	if err != nil {
		return fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	tempPath := tmp.Name()
	defer tmp.Close()

	if _, err := tmp.Write(data); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: не удалось выставить права: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}
	return nil
}
