package models

// User описывает профиль пользователя, который вернул сервер при входе.
type User struct {
	ID    string  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Email string  `json:"email" yaml:"email"`
	Role  string  `json:"role" yaml:"role"`
	Phone *string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// AuthResult результат успешного входа.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// RegisterInput данные формы регистрации.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// RegisterResult подтверждение создания аккаунта.
type RegisterResult struct {
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// Session текущая сессия клиента.
// Пользователь считается вошедшим, только если есть и токен, и профиль.
type Session struct {
	Token string `json:"-"`
	User  *User  `json:"user,omitempty"`
}

func (s Session) IsLoggedIn() bool {
	return s.Token != "" && s.User != nil
}

func (s Session) IsAdmin() bool {
	return s.IsLoggedIn() && s.User.IsAdmin()
}
