package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeTransport   ErrorCode = "TRANSPORT_ERROR"
	ErrCodeAuth        ErrorCode = "AUTH_ERROR"
	ErrCodeValidation  ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"
)

// AppError ошибка слоя данных с кодом из таксономии клиента.
// HTTPStatus равен нулю, если ответа от сервера не было.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// FromHTTPStatus переводит неуспешный HTTP статус в код таксономии.
// message содержит сообщение сервера (или текст статуса, если сервер ничего не прислал).
func FromHTTPStatus(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{
		Code:       codeForStatus(status),
		Message:    message,
		HTTPStatus: status,
	}
}

func codeForStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrCodeAuth
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusTooManyRequests, status >= 500:
		return ErrCodeTransport
	case status >= 400:
		return ErrCodeValidation
	default:
		return ErrCodeTransport
	}
}

// Message возвращает сообщение для пользователя без кода и причины.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsTransport(err error) bool {
	return hasCode(err, ErrCodeTransport)
}

func IsAuth(err error) bool {
	return hasCode(err, ErrCodeAuth)
}

func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

func IsUnsupported(err error) bool {
	return hasCode(err, ErrCodeUnsupported)
}

var (
	ErrServiceDisabled   = New(ErrCodeTransport, "удалённый сервис отключён")
	ErrMalformedResponse = New(ErrCodeTransport, "некорректный ответ сервера")
	ErrNotLoggedIn       = New(ErrCodeAuth, "требуется авторизация")
	ErrForbidden         = New(ErrCodeAuth, "недостаточно прав")
	ErrNoStatistics      = New(ErrCodeUnsupported, "сервис не предоставляет статистику")
)
