package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
)

type loginResponse struct {
	Token       string    `json:"token"`
	AccessToken string    `json:"access_token"`
	User        *wireUser `json:"user"`
}

// Login выполняет вход и передаёт полученный токен в TokenSource.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	req, err := jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	req.noAuth = true

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.status >= 300 {
		return nil, authError(resp)
	}

	var payload loginResponse
	if err := decodeJSON(resp.body, &payload); err != nil {
		return nil, err
	}
	token := payload.Token
	if token == "" {
		token = payload.AccessToken
	}
	if token == "" || payload.User == nil {
		return nil, apperror.ErrMalformedResponse
	}

	if c.tokens != nil {
		if err := c.tokens.SetToken(token); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeTransport, "не удалось сохранить токен")
		}
	}

	return &models.AuthResult{Token: token, User: payload.User.toModel()}, nil
}

// Register создаёт аккаунт. Поля формы проверяет вызывающий.
func (c *Client) Register(ctx context.Context, input models.RegisterInput) (*models.RegisterResult, error) {
	req, err := jsonRequest(http.MethodPost, "/auth/register", input)
	if err != nil {
		return nil, err
	}
	req.noAuth = true

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.status >= 300 {
		return nil, registerError(resp)
	}

	var payload struct {
		Message string    `json:"message"`
		User    *wireUser `json:"user"`
	}
	if len(strings.TrimSpace(string(resp.body))) > 0 {
		if err := decodeJSON(resp.body, &payload); err != nil {
			return nil, err
		}
	}
	return &models.RegisterResult{Message: payload.Message, User: payload.User.toModel()}, nil
}

// При входе любой 4xx, кроме 429, означает неверные учётные данные.
func authError(resp *response) error {
	if isClientError(resp.status) {
		msg := serverMessage(resp.body)
		if msg == "" {
			msg = "неверный email или пароль"
		}
		return &apperror.AppError{Code: apperror.ErrCodeAuth, Message: msg, HTTPStatus: resp.status}
	}
	return apperror.FromHTTPStatus(resp.status, serverMessage(resp.body))
}

func registerError(resp *response) error {
	if isClientError(resp.status) {
		msg := serverMessage(resp.body)
		if msg == "" {
			msg = "регистрация отклонена сервисом"
		}
		return &apperror.AppError{Code: apperror.ErrCodeValidation, Message: msg, HTTPStatus: resp.status}
	}
	return apperror.FromHTTPStatus(resp.status, serverMessage(resp.body))
}

func isClientError(status int) bool {
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests
}
