package fakeapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenManager выпускает и проверяет JWT фейкового сервиса.
type tokenManager struct {
	secret []byte
	ttl    time.Duration
}

func newTokenManager(secret string, ttl time.Duration) *tokenManager {
	return &tokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *tokenManager) issue(u *user) (string, error) {
	return SignToken(m.secret, strconv.Itoa(u.ID), u.Role, time.Now().Add(m.ttl))
}

// parse извлекает userID и роль из токена.
func (m *tokenManager) parse(token string) (int, string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return 0, "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", jwt.ErrTokenInvalidClaims
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, "", jwt.ErrTokenInvalidClaims
	}
	role, _ := claims["role"].(string)

	userID, err := strconv.Atoi(sub)
	if err != nil {
		return 0, "", errors.New("fakeapi: sub не является числом")
	}
	return userID, role, nil
}

// SignToken формирует HS256 токен с клеймами sub, role, iat и exp.
func SignToken(secret []byte, subject, role string, exp time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
