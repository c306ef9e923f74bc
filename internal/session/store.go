package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lapor-client/internal/logger"
	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/storage"
)

// Store хранит токен и профиль пользователя в долговременном хранилище.
// Изменения, сделанные другим процессом, видны только после LoadSession.
type Store struct {
	mu      sync.RWMutex
	storage storage.Storage
	token   string
	user    *models.User
	log     *logrus.Entry
}

// NewStore создаёт Store и сразу читает сохранённую сессию.
func NewStore(s storage.Storage) *Store {
	st := &Store{
		storage: s,
		log:     logger.WithComponent("session"),
	}
	st.LoadSession()
	return st
}

// LoadSession перечитывает сессию из хранилища. Никогда не возвращает ошибку:
// повреждённые или недоступные данные считаются отсутствующими.
func (s *Store) LoadSession() models.Session {
	token, ok, err := s.storage.Get(storage.KeyAuthToken)
	if err != nil {
		s.log.WithError(err).Warn("не удалось прочитать токен")
		token = ""
	} else if !ok {
		token = ""
	}

	var user *models.User
	raw, ok, err := s.storage.Get(storage.KeyUser)
	switch {
	case err != nil:
		s.log.WithError(err).Warn("не удалось прочитать профиль")
	case ok && raw != "":
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.log.WithError(err).Warn("сохранённый профиль повреждён, игнорируем")
		} else {
			user = &u
		}
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	return s.Session()
}

// SetToken сохраняет токен. Пустой токен равносилен ClearToken.
func (s *Store) SetToken(token string) error {
	if token == "" {
		return s.ClearToken()
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.storage.Set(storage.KeyAuthToken, token); err != nil {
		return fmt.Errorf("session: не удалось сохранить токен: %w", err)
	}
	return nil
}

// ClearToken удаляет токен из памяти и хранилища.
func (s *Store) ClearToken() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if err := s.storage.Remove(storage.KeyAuthToken); err != nil {
		return fmt.Errorf("session: не удалось удалить токен: %w", err)
	}
	return nil
}

// SaveUser перезаписывает сохранённый профиль.
func (s *Store) SaveUser(user *models.User) error {
	if user == nil {
		return fmt.Errorf("session: профиль не задан")
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: не удалось сериализовать профиль: %w", err)
	}

	copied := *user
	s.mu.Lock()
	s.user = &copied
	s.mu.Unlock()

	if err := s.storage.Set(storage.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("session: не удалось сохранить профиль: %w", err)
	}
	return nil
}

// Logout очищает токен и профиль.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	var firstErr error
	for _, key := range []string{storage.KeyAuthToken, storage.KeyUser} {
		if err := s.storage.Remove(key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("session: не удалось удалить %s: %w", key, err)
		}
	}
	return firstErr
}

// Token возвращает текущий токен. Шлюз читает его в момент каждого запроса.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser возвращает копию профиля или nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Session() models.Session {
	return models.Session{Token: s.Token(), User: s.CurrentUser()}
}

func (s *Store) IsLoggedIn() bool {
	return s.Session().IsLoggedIn()
}

func (s *Store) IsAdmin() bool {
	return s.Session().IsAdmin()
}

// TokenExpiry возвращает exp, если токен оказался JWT. Подпись не проверяется.
func (s *Store) TokenExpiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
