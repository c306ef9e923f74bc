package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lapor-client/internal/storage"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LAPOR_ENV", "LAPOR_LOG_LEVEL", "LAPOR_API_URL", "LAPOR_API_CONTRACT",
		"LAPOR_HTTP_TIMEOUT", "LAPOR_STORAGE_DRIVER", "LAPOR_FIXTURE_MODE", "LAPOR_MAX_UPLOAD_MB",
	} {
		t.Setenv(key, "")
	}
	// пустые строки тоже считаются заданными, поэтому ставим значения по умолчанию явно
	t.Setenv("LAPOR_ENV", "development")
	t.Setenv("LAPOR_LOG_LEVEL", "warn")
	t.Setenv("LAPOR_API_URL", DefaultAPIURL)
	t.Setenv("LAPOR_API_CONTRACT", DefaultContract)
	t.Setenv("LAPOR_HTTP_TIMEOUT", "15s")
	t.Setenv("LAPOR_STORAGE_DRIVER", storage.DriverFile)
	t.Setenv("LAPOR_STORAGE_PATH", filepath.Join(t.TempDir(), "storage.json"))
	t.Setenv("LAPOR_MAX_UPLOAD_MB", "10")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, "v2", cfg.APIContract)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes())
	assert.Nil(t, cfg.FixtureMode)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LAPOR_API_URL", "https://lapor.example.com/api/")
	t.Setenv("LAPOR_API_CONTRACT", "V1")
	t.Setenv("LAPOR_HTTP_TIMEOUT", "3s")
	t.Setenv("LAPOR_FIXTURE_MODE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://lapor.example.com/api", cfg.APIURL)
	assert.Equal(t, "v1", cfg.APIContract)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	require.NotNil(t, cfg.FixtureMode)
	assert.False(t, *cfg.FixtureMode)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"contract":    {"LAPOR_API_CONTRACT", "v3"},
		"timeout":     {"LAPOR_HTTP_TIMEOUT", "soon"},
		"upload":      {"LAPOR_MAX_UPLOAD_MB", "-1"},
		"fixture":     {"LAPOR_FIXTURE_MODE", "maybe"},
		"api url":     {"LAPOR_API_URL", "ftp://lapor"},
		"zero timout": {"LAPOR_HTTP_TIMEOUT", "0s"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestResolveEndpoint_NoOverrideMeansFixtures(t *testing.T) {
	cfg := &Config{APIURL: DefaultAPIURL}
	ep := ResolveEndpoint(cfg, storage.NewMemoryStorage())

	assert.Equal(t, DefaultAPIURL, ep.BaseURL)
	assert.True(t, ep.FixtureMode)
	assert.False(t, ep.Overridden)
}

func TestResolveEndpoint_Override(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set(storage.KeyAPIURL, "https://lapor.example.com/api/"))

	ep := ResolveEndpoint(&Config{APIURL: DefaultAPIURL}, store)
	assert.Equal(t, "https://lapor.example.com/api", ep.BaseURL)
	assert.False(t, ep.FixtureMode)
	assert.True(t, ep.Overridden)
}

func TestResolveEndpoint_InvalidOverrideIgnored(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set(storage.KeyAPIURL, "not a url"))

	ep := ResolveEndpoint(&Config{APIURL: DefaultAPIURL}, store)
	assert.Equal(t, DefaultAPIURL, ep.BaseURL)
	assert.True(t, ep.FixtureMode)
}

func TestResolveEndpoint_ForcedFixtureMode(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set(storage.KeyAPIURL, "https://lapor.example.com/api"))
	forced := true

	ep := ResolveEndpoint(&Config{APIURL: DefaultAPIURL, FixtureMode: &forced}, store)
	assert.True(t, ep.FixtureMode)
	assert.True(t, ep.Overridden)
}

type brokenStorage struct{ storage.MemoryStorage }

func (*brokenStorage) Get(string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func TestResolveEndpoint_StorageError(t *testing.T) {
	ep := ResolveEndpoint(&Config{APIURL: DefaultAPIURL}, &brokenStorage{})
	assert.Equal(t, DefaultAPIURL, ep.BaseURL)
	assert.True(t, ep.FixtureMode)
}
