package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if body != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(body), 0o600))
	}
	t.Setenv("STOREFRONT_CONFIG_PATH", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := writeConfig(t, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://dummyjson.com", cfg.APIBaseURL)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 30, cfg.DashboardPageSize)
	assert.Equal(t, 15, cfg.RequestTimeoutSeconds)
	assert.Equal(t, 60, cfg.SessionTTLMinutes)
	assert.Equal(t, float64(10), cfg.APIRateLimit)
	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.SecureCookies)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())
	for _, attr := range cfg.Attributes() {
		assert.Equal(t, SourceDefault, attr.Source, attr.Name)
	}
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	writeConfig(t, `
api_base_url: http://catalog.internal
page_size: 25
metrics_enabled: false
trusted_proxies:
  - 10.0.0.0/8
`)
	t.Setenv("STOREFRONT_PAGE_SIZE", "50")
	t.Setenv("STOREFRONT_SECURE_COOKIES", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://catalog.internal", cfg.APIBaseURL)
	assert.Equal(t, SourceFile, cfg.Source("api_base_url"))

	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, SourceEnvironment, cfg.Source("page_size"))

	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, SourceFile, cfg.Source("metrics_enabled"))

	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, SourceEnvironment, cfg.Source("secure_cookies"))

	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.Equal(t, SourceDefault, cfg.Source("session_store"))
}

func TestLoad_Errors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		writeConfig(t, "page_size: [")
		_, err := Load()
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("bad integer env", func(t *testing.T) {
		writeConfig(t, "")
		t.Setenv("STOREFRONT_SESSION_TTL_MINUTES", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "STOREFRONT_SESSION_TTL_MINUTES")
	})

	t.Run("bad bool env", func(t *testing.T) {
		writeConfig(t, "")
		t.Setenv("STOREFRONT_METRICS_ENABLED", "maybe")
		_, err := Load()
		assert.ErrorContains(t, err, "STOREFRONT_METRICS_ENABLED")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *StorefrontConfig)
		wantErr string
	}{
		{"defaults", func(c *StorefrontConfig) {}, ""},
		{"relative url", func(c *StorefrontConfig) { c.APIBaseURL = "/api" }, "invalid api_base_url"},
		{"ftp url", func(c *StorefrontConfig) { c.APIBaseURL = "ftp://x" }, "invalid api_base_url"},
		{"zero page size", func(c *StorefrontConfig) { c.PageSize = 0 }, "page_size must be positive"},
		{"negative ttl", func(c *StorefrontConfig) { c.SessionTTLMinutes = -1 }, "session_ttl_minutes must be positive"},
		{"negative rate", func(c *StorefrontConfig) { c.APIRateLimit = -1 }, "api_rate_limit"},
		{"unknown store", func(c *StorefrontConfig) { c.SessionStore = "redis" }, "invalid session_store"},
		{"postgres store", func(c *StorefrontConfig) { c.SessionStore = SessionStorePostgres }, ""},
		{"bad proxy", func(c *StorefrontConfig) { c.TrustedProxies = []string{"nope"} }, "invalid trusted_proxies"},
		{"plain ip proxy", func(c *StorefrontConfig) { c.TrustedProxies = []string{"127.0.0.1"} }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestIsTrustedProxy(t *testing.T) {
	cfg := newDefault()
	cfg.TrustedProxies = []string{"10.0.0.0/8", "192.168.1.5"}

	assert.True(t, cfg.IsTrustedProxy("10.1.2.3"))
	assert.True(t, cfg.IsTrustedProxy("192.168.1.5"))
	assert.False(t, cfg.IsTrustedProxy("192.168.1.6"))
	assert.False(t, cfg.IsTrustedProxy("not-an-ip"))
}

func TestDurations(t *testing.T) {
	cfg := newDefault()
	assert.Equal(t, "15s", cfg.RequestTimeout().String())
	assert.Equal(t, "1h0m0s", cfg.SessionTTL().String())
}

func TestFormatText(t *testing.T) {
	writeConfig(t, "")
	cfg, err := Load()
	require.NoError(t, err)

	out := cfg.FormatText()
	assert.True(t, strings.HasPrefix(out, "Config file: "))
	assert.Contains(t, out, "NAME")
	assert.Regexp(t, `trusted_proxies\s+\(not set\)\s+default`, out)
	assert.Regexp(t, `page_size\s+10\s+default`, out)
}

func TestFormatJSON(t *testing.T) {
	writeConfig(t, "session_store: postgres\n")
	cfg, err := Load()
	require.NoError(t, err)

	out, err := cfg.FormatJSON()
	require.NoError(t, err)

	var decoded struct {
		ConfigFile string      `json:"config_file"`
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, cfg.ConfigFilePath(), decoded.ConfigFile)
	assert.Len(t, decoded.Attributes, len(attributeNames))
	assert.Contains(t, decoded.Attributes, Attribute{Name: "session_store", Value: "postgres", Source: SourceFile})
}

func TestReload(t *testing.T) {
	dir := writeConfig(t, "page_size: 20\n")

	cfg, err := Reload()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Same(t, cfg, Get())

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("page_size: 0\n"), 0o600))
	_, err = Reload()
	assert.Error(t, err)
	assert.Equal(t, 20, Get().PageSize)
}
