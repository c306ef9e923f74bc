package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromHTTPStatus_Mapping(t *testing.T) {
	cases := []struct {
		status int
		code   ErrorCode
	}{
		{http.StatusBadRequest, ErrCodeValidation},
		{http.StatusUnprocessableEntity, ErrCodeValidation},
		{http.StatusConflict, ErrCodeValidation},
		{http.StatusUnauthorized, ErrCodeAuth},
		{http.StatusForbidden, ErrCodeAuth},
		{http.StatusNotFound, ErrCodeNotFound},
		{http.StatusTooManyRequests, ErrCodeTransport},
		{http.StatusInternalServerError, ErrCodeTransport},
		{http.StatusBadGateway, ErrCodeTransport},
	}

	for _, tc := range cases {
		err := FromHTTPStatus(tc.status, "msg")
		assert.Equal(t, tc.code, err.Code, "status %d", tc.status)
		assert.Equal(t, tc.status, err.HTTPStatus)
	}
}

func TestFromHTTPStatus_DefaultMessage(t *testing.T) {
	err := FromHTTPStatus(http.StatusNotFound, "")
	assert.Equal(t, "Not Found", err.Message)
}

func TestHelpers_SeeThroughWrapping(t *testing.T) {
	base := New(ErrCodeNotFound, "отчёт не найден")
	wrapped := fmt.Errorf("gateway: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, "отчёт не найден", Message(wrapped))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrCodeTransport, "сервер недоступен")

	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMessage_PlainError(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "", Message(nil))
}
