package session

import (
	"context"
	"strings"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
	"github.com/ignatzorin/lapor-client/internal/validation"
)

// Authenticator описывает вызовы удалённого сервиса, нужные для входа и регистрации.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Register(ctx context.Context, input models.RegisterInput) (*models.RegisterResult, error)
}

// Manager связывает Store с удалённым сервисом.
type Manager struct {
	store *Store
	auth  Authenticator
}

func NewManager(store *Store, auth Authenticator) *Manager {
	return &Manager{store: store, auth: auth}
}

func (m *Manager) Store() *Store {
	return m.store
}

// Login входит и сохраняет токен с профилем. Ошибка сервиса возвращается без изменений.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "email и пароль обязательны")
	}

	before := m.store.Token()
	result, err := m.auth.Login(ctx, email, password)
	if err != nil {
		if m.store.Token() != before {
			m.discardSession()
		}
		return nil, err
	}

	if err := m.store.SetToken(result.Token); err != nil {
		m.discardSession()
		return nil, apperror.Wrap(err, apperror.ErrCodeTransport, "не удалось сохранить сессию")
	}
	if err := m.store.SaveUser(result.User); err != nil {
		m.discardSession()
		return nil, apperror.Wrap(err, apperror.ErrCodeTransport, "не удалось сохранить сессию")
	}
	return m.store.CurrentUser(), nil
}

// discardSession сбрасывает наполовину записанную сессию,
// чтобы новый токен не остался рядом с профилем прежнего пользователя.
func (m *Manager) discardSession() {
	if err := m.store.Logout(); err != nil {
		m.store.log.WithError(err).Warn("не удалось сбросить сессию после неудачного входа")
	}
}

// Register проверяет форму на клиенте и создаёт аккаунт. Вход не выполняется.
func (m *Manager) Register(ctx context.Context, input models.RegisterInput) (*models.RegisterResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)

	checks := []error{
		validation.ValidateName(input.Name),
		validation.ValidateEmail(input.Email),
		validation.ValidatePassword(input.Password),
	}
	if input.Phone != "" {
		checks = append(checks, validation.ValidatePhone(input.Phone))
	}
	for _, err := range checks {
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	return m.auth.Register(ctx, input)
}

func (m *Manager) Logout() error {
	return m.store.Logout()
}
