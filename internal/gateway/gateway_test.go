package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
	"github.com/ignatzorin/lapor-client/internal/testutil/fakeapi"
)

// memTokens TokenSource в памяти.
type memTokens struct{ token string }

func (m *memTokens) Token() string { return m.token }

func (m *memTokens) SetToken(token string) error {
	m.token = token
	return nil
}

func newFake(t *testing.T, opts fakeapi.Options) (*fakeapi.Server, string) {
	t.Helper()
	api := fakeapi.New(opts)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv.URL + "/api"
}

// deadURL возвращает адрес, на котором никто не слушает.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func rawServer(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func loginAs(t *testing.T, c *Client, email string) {
	t.Helper()
	_, err := c.Login(context.Background(), email, fakeapi.SeedPassword)
	require.NoError(t, err)
}

func TestClient_RequestHeaders(t *testing.T) {
	api, base := newFake(t, fakeapi.Options{})
	tokens := &memTokens{}
	c := NewClient(Options{BaseURL: base, UserAgent: "lapor-test/0.1"}, tokens)
	ctx := context.Background()

	_, err := c.ListCategories(ctx)
	require.NoError(t, err)
	first := api.LastRequest()
	assert.Equal(t, "application/json", first.Header.Get("Accept"))
	assert.Equal(t, "lapor-test/0.1", first.Header.Get("User-Agent"))
	assert.NotEmpty(t, first.Header.Get("X-Request-ID"))
	assert.Empty(t, first.Header.Get("Authorization"))

	// токен читается в момент запроса
	tokens.token = "changed-token"
	_, _ = c.ListCategories(ctx)
	second := api.LastRequest()
	assert.Equal(t, "Bearer changed-token", second.Header.Get("Authorization"))
	assert.NotEqual(t, first.Header.Get("X-Request-ID"), second.Header.Get("X-Request-ID"))
}

func TestClient_ServiceDisabled(t *testing.T) {
	c := NewClient(Options{}, &memTokens{})

	_, err := c.ListReports(context.Background(), nil)
	assert.ErrorIs(t, err, apperror.ErrServiceDisabled)
	assert.True(t, apperror.IsTransport(err))
}

func TestLogin_Success(t *testing.T) {
	_, base := newFake(t, fakeapi.Options{})
	tokens := &memTokens{}
	c := NewClient(Options{BaseURL: base}, tokens)

	result, err := c.Login(context.Background(), fakeapi.ReporterEmail, fakeapi.SeedPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, result.Token, tokens.token)
	assert.Equal(t, &models.User{ID: "2", Name: "Ujang Lapor", Email: fakeapi.ReporterEmail, Role: "reporter"}, result.User)
}

func TestLogin_Errors(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		_, base := newFake(t, fakeapi.Options{})
		tokens := &memTokens{}
		c := NewClient(Options{BaseURL: base}, tokens)

		_, err := c.Login(context.Background(), fakeapi.AdminEmail, "nope")
		require.Error(t, err)
		assert.True(t, apperror.IsAuth(err))
		assert.Equal(t, "Invalid email or password", apperror.Message(err))
		assert.Empty(t, tokens.token)
	})

	t.Run("bad request is auth error", func(t *testing.T) {
		c := NewClient(Options{BaseURL: rawServer(t, http.StatusBadRequest, `{"detail":"missing field"}`)}, &memTokens{})
		_, err := c.Login(context.Background(), "a@b.co", "x")
		assert.True(t, apperror.IsAuth(err))
		assert.Equal(t, "missing field", apperror.Message(err))
	})

	t.Run("rate limited", func(t *testing.T) {
		_, base := newFake(t, fakeapi.Options{LoginRateLimit: 1})
		c := NewClient(Options{BaseURL: base}, &memTokens{})
		_, _ = c.Login(context.Background(), fakeapi.AdminEmail, "nope")

		_, err := c.Login(context.Background(), fakeapi.AdminEmail, "nope")
		assert.True(t, apperror.IsTransport(err))
		assert.Equal(t, "Too many login attempts", apperror.Message(err))
	})

	t.Run("server error", func(t *testing.T) {
		c := NewClient(Options{BaseURL: rawServer(t, http.StatusInternalServerError, `{"error":{"message":"db down"}}`)}, &memTokens{})
		_, err := c.Login(context.Background(), "a@b.co", "x")
		assert.True(t, apperror.IsTransport(err))
		assert.Equal(t, "db down", apperror.Message(err))
	})

	t.Run("network", func(t *testing.T) {
		c := NewClient(Options{BaseURL: deadURL(t)}, &memTokens{})
		_, err := c.Login(context.Background(), "a@b.co", "x")
		assert.True(t, apperror.IsTransport(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		c := NewClient(Options{BaseURL: rawServer(t, http.StatusOK, `{"ok":true}`)}, &memTokens{})
		_, err := c.Login(context.Background(), "a@b.co", "x")
		assert.True(t, apperror.IsTransport(err))
	})
}

func TestRegister_ConflictIsValidation(t *testing.T) {
	_, base := newFake(t, fakeapi.Options{})
	c := NewClient(Options{BaseURL: base}, &memTokens{})

	_, err := c.Register(context.Background(), models.RegisterInput{
		Name: "Admin Lagi", Email: fakeapi.AdminEmail, Password: "password123",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, "Email already registered", apperror.Message(err))
}

func TestAuthCalls_OmitStoredToken(t *testing.T) {
	api, base := newFake(t, fakeapi.Options{})
	tokens := &memTokens{token: "stale-token"}
	c := NewClient(Options{BaseURL: base}, tokens)
	ctx := context.Background()

	_, err := c.Login(ctx, fakeapi.ReporterEmail, fakeapi.SeedPassword)
	require.NoError(t, err)
	login := api.LastRequest()
	assert.Equal(t, "/api/auth/login", login.Path)
	assert.Empty(t, login.Header.Get("Authorization"))

	_, _ = c.Register(ctx, models.RegisterInput{Name: "Siti", Email: fakeapi.AdminEmail, Password: "password123"})
	register := api.LastRequest()
	assert.Equal(t, "/api/auth/register", register.Path)
	assert.Empty(t, register.Header.Get("Authorization"))

	// после входа остальные запросы несут новый токен
	_, err = c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+tokens.token, api.LastRequest().Header.Get("Authorization"))
	assert.NotEqual(t, "stale-token", tokens.token)
}

func TestServerMessage(t *testing.T) {
	cases := map[string]string{
		`{"error":"plain"}`:                    "plain",
		`{"error":{"message":"nested"}}`:       "nested",
		`{"message":"msg"}`:                    "msg",
		`{"detail":"det"}`:                     "det",
		`{"error":"first","message":"second"}`: "first",
		`not json`:                             "",
		``:                                     "",
	}
	for body, want := range cases {
		assert.Equal(t, want, serverMessage([]byte(body)), body)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, apperror.IsAuth},
		{http.StatusForbidden, apperror.IsAuth},
		{http.StatusNotFound, apperror.IsNotFound},
		{http.StatusTooManyRequests, apperror.IsTransport},
		{http.StatusBadGateway, apperror.IsTransport},
		{http.StatusUnprocessableEntity, apperror.IsValidation},
	}
	for _, tc := range cases {
		c := NewClient(Options{BaseURL: rawServer(t, tc.status, `{}`)}, &memTokens{})
		_, err := c.GetReport(context.Background(), "1")
		require.Error(t, err)
		assert.True(t, tc.check(err), "status %d -> %v", tc.status, err)
	}
}
