package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lapor-client/internal/logger"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "lapor-client/1.0"
	// DefaultMaxUploadBytes лимит размера фото, если не задан в Options.
	DefaultMaxUploadBytes int64 = 10 << 20

	// ответы больше этого размера считаем ошибкой сервера
	maxResponseBytes = 16 << 20
)

// TokenSource отдаёт текущий токен в момент запроса и принимает новый после входа.
type TokenSource interface {
	Token() string
	SetToken(token string) error
}

// Options параметры клиента удалённого сервиса.
type Options struct {
	// BaseURL пустой, если сервис отключён.
	BaseURL string
	// FixtureMode включает подстановку фикстур для списков при любой ошибке.
	FixtureMode bool
	Contract    Contract
	HTTPClient  *http.Client
	Timeout     time.Duration
	UserAgent   string
	Logger      *logrus.Entry
	// MaxUploadBytes ограничивает размер фото в CreateReport.
	MaxUploadBytes int64
}

// Client шлюз к удалённому API сервиса отчётов.
type Client struct {
	baseURL     string
	fixtureMode bool
	contract    Contract
	httpClient  *http.Client
	userAgent   string
	tokens      TokenSource
	log         *logrus.Entry

	maxUploadBytes int64
}

// NewClient создаёт экземпляр клиента.
func NewClient(opts Options, tokens TokenSource) *Client {
	if opts.Contract.Version == "" {
		opts.Contract = ContractV2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Logger == nil {
		opts.Logger = logger.WithComponent("gateway")
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		fixtureMode: opts.FixtureMode,
		contract:    opts.Contract,
		httpClient:  opts.HTTPClient,
		userAgent:   opts.UserAgent,
		tokens:      tokens,
		log:         opts.Logger,

		maxUploadBytes: opts.MaxUploadBytes,
	}
}

func (c *Client) Contract() Contract {
	return c.contract
}

func (c *Client) FixtureMode() bool {
	return c.fixtureMode
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// request описывает один вызов удалённого API.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	// noAuth отключает заголовок Authorization (вход и регистрация).
	noAuth bool
}

// response успешно полученный ответ (любой статус).
type response struct {
	status int
	body   []byte
}

func jsonRequest(method, path string, payload any) (request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("gateway: не удалось сериализовать запрос: %w", err)
	}
	return request{
		method:      method,
		path:        path,
		body:        bytes.NewReader(body),
		contentType: "application/json; charset=utf-8",
	}, nil
}

// send выполняет запрос. Ошибка возвращается только для сбоев транспорта,
// неуспешный HTTP статус разбирает вызывающий.
func (c *Client) send(ctx context.Context, r request) (*response, error) {
	if c.baseURL == "" {
		return nil, apperror.ErrServiceDisabled
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeTransport, "не удалось сформировать запрос")
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.tokens != nil && !r.noAuth {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method":     r.method,
			"path":       r.path,
			"request_id": requestID,
		}).WithError(err).Debug("запрос не выполнен")
		return nil, apperror.Wrap(err, apperror.ErrCodeTransport, "сервис недоступен")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeTransport, "не удалось прочитать ответ")
	}
	if len(body) > maxResponseBytes {
		return nil, apperror.New(apperror.ErrCodeTransport, "ответ сервера слишком большой")
	}

	c.log.WithFields(logrus.Fields{
		"method":      r.method,
		"path":        r.path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(started).Milliseconds(),
		"request_id":  requestID,
	}).Debug("запрос выполнен")

	return &response{status: resp.StatusCode, body: body}, nil
}

// call выполняет запрос и переводит неуспешный статус в ошибку по общей таблице.
func (c *Client) call(ctx context.Context, r request) (*response, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	if resp.status >= 300 {
		return nil, apperror.FromHTTPStatus(resp.status, serverMessage(resp.body))
	}
	return resp, nil
}

// decodeJSON разбирает тело ответа, пустое тело считается ошибкой формата.
func decodeJSON(body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return apperror.ErrMalformedResponse
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeTransport, apperror.ErrMalformedResponse.Message)
	}
	return nil
}

// serverMessage достаёт текст ошибки из тела ответа.
// Поддерживаются {"error": "..."}, {"error": {"message": "..."}}, {"message": "..."} и {"detail": "..."}.
func serverMessage(body []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Detail  string          `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if len(payload.Error) > 0 {
		var text string
		if err := json.Unmarshal(payload.Error, &text); err == nil && text != "" {
			return text
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Detail
}

// fallback решает, подменять ли ошибку списка фикстурами.
func (c *Client) fallback(op string, err error) bool {
	if !c.fixtureMode || err == nil {
		return false
	}
	c.log.WithField("operation", op).WithError(err).Warn("используем фикстуры вместо ответа сервиса")
	return true
}

func reportPath(id string) string {
	return "/reports/" + url.PathEscape(id)
}
