package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	s := New(Options{})

	rec := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": AdminEmail, "password": SeedPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, "admin", payload.User["role"])

	rec = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": AdminEmail, "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	s := New(Options{LoginRateLimit: 1})
	body := map[string]string{"email": AdminEmail, "password": "wrong"}

	assert.Equal(t, http.StatusUnauthorized, doJSON(t, s, http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(t, s, http.MethodPost, "/api/auth/login", "", body).Code)
}

func TestListReports_Encodings(t *testing.T) {
	geo := New(Options{})
	rec := doJSON(t, geo, http.MethodGet, "/api/reports", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"FeatureCollection"`)

	flat := New(Options{Contract: "v1"})
	rec = doJSON(t, flat, http.MethodGet, "/api/reports", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "["))
}

func TestListReports_ServerSideFilter(t *testing.T) {
	s := New(Options{Encoding: EncodingFlat, ServerSideFilter: true})
	rec := doJSON(t, s, http.MethodGet, "/api/reports?categories=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0]["category_id"])
}

func TestUpdateStatus_RequiresAdmin(t *testing.T) {
	s := New(Options{})
	reporter, ok := s.IssueToken(ReporterEmail)
	require.True(t, ok)
	admin, ok := s.IssueToken(AdminEmail)
	require.True(t, ok)

	body := map[string]string{"status": "resolved"}
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, s, http.MethodPatch, "/api/reports/1", "", body).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, s, http.MethodPatch, "/api/reports/1", reporter, body).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, s, http.MethodPatch, "/api/reports/999", admin, body).Code)

	rec := doJSON(t, s, http.MethodPatch, "/api/reports/1", admin, body)
	require.Equal(t, http.StatusOK, rec.Code)
	snapshot, ok := s.ReportSnapshot(1)
	require.True(t, ok)
	assert.Equal(t, "resolved", snapshot["status"])
}

func TestStatistics_OnlyV1(t *testing.T) {
	v1 := New(Options{Contract: "v1"})
	rec := doJSON(t, v1, http.MethodGet, "/api/reports/statistics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"in_progress":0`)

	v2 := New(Options{})
	assert.Equal(t, http.StatusNotFound, doJSON(t, v2, http.MethodGet, "/api/reports/statistics", "", nil).Code)
}

func TestOutage(t *testing.T) {
	s := New(Options{})
	s.SetOutage(http.StatusServiceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, doJSON(t, s, http.MethodGet, "/api/categories", "", nil).Code)

	s.SetOutage(0)
	assert.Equal(t, http.StatusOK, doJSON(t, s, http.MethodGet, "/api/categories", "", nil).Code)
	assert.Len(t, s.Requests(), 2)
}
