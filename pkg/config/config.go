package config

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/storefront/config"
	ConfigFileName    = "storefront.yml"
)

// Session store backends.
const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

// Attribute sources.
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// StorefrontConfig holds the service settings.
type StorefrontConfig struct {
	// APIBaseURL is the root of the remote catalog and auth API.
	APIBaseURL string `json:"api_base_url"`

	// PageSize is the product list page size.
	PageSize int `json:"page_size"`

	// DashboardPageSize is how many products the dashboard loads into an
	// empty mirror.
	DashboardPageSize int `json:"dashboard_page_size"`

	RequestTimeoutSeconds int `json:"request_timeout_seconds"`

	SessionTTLMinutes int `json:"session_ttl_minutes"`

	// APIRateLimit bounds outbound calls per second; 0 disables the bound.
	APIRateLimit float64 `json:"api_rate_limit"`

	// SessionStore is memory or postgres.
	SessionStore string `json:"session_store"`

	// TrustedProxies are CIDR ranges whose X-Forwarded-For is believed.
	TrustedProxies []string `json:"trusted_proxies"`

	MetricsEnabled bool `json:"metrics_enabled"`

	// SecureCookies marks the session cookie Secure.
	SecureCookies bool `json:"secure_cookies"`

	sources        map[string]string
	configFilePath string
}

// fileConfig is the YAML file shape; pointers tell "unset" from zero.
type fileConfig struct {
	APIBaseURL            *string  `yaml:"api_base_url"`
	PageSize              *int     `yaml:"page_size"`
	DashboardPageSize     *int     `yaml:"dashboard_page_size"`
	RequestTimeoutSeconds *int     `yaml:"request_timeout_seconds"`
	SessionTTLMinutes     *int     `yaml:"session_ttl_minutes"`
	APIRateLimit          *float64 `yaml:"api_rate_limit"`
	SessionStore          *string  `yaml:"session_store"`
	TrustedProxies        []string `yaml:"trusted_proxies"`
	MetricsEnabled        *bool    `yaml:"metrics_enabled"`
	SecureCookies         *bool    `yaml:"secure_cookies"`
}

// Attribute is one setting with its value and where it came from.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

var (
	globalConfig *StorefrontConfig
	configMu     sync.RWMutex
)

// Get returns the process configuration, loading it on first use. A config
// that fails to load falls back to the defaults.
func Get() *StorefrontConfig {
	configMu.RLock()
	if globalConfig != nil {
		defer configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			cfg = newDefault()
		}
		globalConfig = cfg
	}
	return globalConfig
}

// Reload re-reads the file and environment. The previous configuration
// stays in place when the new one does not load or validate.
func Reload() (*StorefrontConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return cfg, nil
}

// Default returns the built-in configuration, ignoring file and environment.
func Default() *StorefrontConfig {
	return newDefault()
}

func newDefault() *StorefrontConfig {
	c := &StorefrontConfig{
		APIBaseURL:            "https://dummyjson.com",
		PageSize:              10,
		DashboardPageSize:     30,
		RequestTimeoutSeconds: 15,
		SessionTTLMinutes:     60,
		APIRateLimit:          10,
		SessionStore:          SessionStoreMemory,
		TrustedProxies:        []string{},
		MetricsEnabled:        true,
		SecureCookies:         false,
		sources:               map[string]string{},
	}
	for _, name := range attributeNames {
		c.sources[name] = SourceDefault
	}
	return c
}

var attributeNames = []string{
	"api_base_url", "page_size", "dashboard_page_size",
	"request_timeout_seconds", "session_ttl_minutes", "api_rate_limit",
	"session_store", "trusted_proxies", "metrics_enabled", "secure_cookies",
}

// Path returns the config file location, honouring STOREFRONT_CONFIG_PATH.
func Path() string {
	dir := os.Getenv("STOREFRONT_CONFIG_PATH")
	if dir == "" {
		dir = DefaultConfigPath
	}
	return filepath.Join(dir, ConfigFileName)
}

// Load reads the config file, if present, then applies STOREFRONT_*
// environment overrides.
func Load() (*StorefrontConfig, error) {
	c := newDefault()
	c.configFilePath = Path()

	data, err := os.ReadFile(c.configFilePath)
	switch {
	case err == nil:
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", c.configFilePath, err)
		}
		c.applyFileConfig(&file)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", c.configFilePath, err)
	}

	if err := c.applyEnvConfig(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *StorefrontConfig) applyFileConfig(f *fileConfig) {
	set := func(name string) { c.sources[name] = SourceFile }

	if f.APIBaseURL != nil {
		c.APIBaseURL = *f.APIBaseURL
		set("api_base_url")
	}
	if f.PageSize != nil {
		c.PageSize = *f.PageSize
		set("page_size")
	}
	if f.DashboardPageSize != nil {
		c.DashboardPageSize = *f.DashboardPageSize
		set("dashboard_page_size")
	}
	if f.RequestTimeoutSeconds != nil {
		c.RequestTimeoutSeconds = *f.RequestTimeoutSeconds
		set("request_timeout_seconds")
	}
	if f.SessionTTLMinutes != nil {
		c.SessionTTLMinutes = *f.SessionTTLMinutes
		set("session_ttl_minutes")
	}
	if f.APIRateLimit != nil {
		c.APIRateLimit = *f.APIRateLimit
		set("api_rate_limit")
	}
	if f.SessionStore != nil {
		c.SessionStore = *f.SessionStore
		set("session_store")
	}
	if f.TrustedProxies != nil {
		c.TrustedProxies = f.TrustedProxies
		set("trusted_proxies")
	}
	if f.MetricsEnabled != nil {
		c.MetricsEnabled = *f.MetricsEnabled
		set("metrics_enabled")
	}
	if f.SecureCookies != nil {
		c.SecureCookies = *f.SecureCookies
		set("secure_cookies")
	}
}

func (c *StorefrontConfig) applyEnvConfig() error {
	env := func(name string) (string, bool) {
		val := os.Getenv("STOREFRONT_" + strings.ToUpper(name))
		return val, val != ""
	}
	setInt := func(name string, dst *int) error {
		if val, ok := env(name); ok {
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid STOREFRONT_%s: %w", strings.ToUpper(name), err)
			}
			*dst = i
			c.sources[name] = SourceEnvironment
		}
		return nil
	}
	setBool := func(name string, dst *bool) error {
		if val, ok := env(name); ok {
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid STOREFRONT_%s: %w", strings.ToUpper(name), err)
			}
			*dst = b
			c.sources[name] = SourceEnvironment
		}
		return nil
	}

	if val, ok := env("api_base_url"); ok {
		c.APIBaseURL = val
		c.sources["api_base_url"] = SourceEnvironment
	}
	if val, ok := env("session_store"); ok {
		c.SessionStore = val
		c.sources["session_store"] = SourceEnvironment
	}
	if val, ok := env("trusted_proxies"); ok {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = SourceEnvironment
	}
	if val, ok := env("api_rate_limit"); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid STOREFRONT_API_RATE_LIMIT: %w", err)
		}
		c.APIRateLimit = f
		c.sources["api_rate_limit"] = SourceEnvironment
	}

	for name, dst := range map[string]*int{
		"page_size":               &c.PageSize,
		"dashboard_page_size":     &c.DashboardPageSize,
		"request_timeout_seconds": &c.RequestTimeoutSeconds,
		"session_ttl_minutes":     &c.SessionTTLMinutes,
	} {
		if err := setInt(name, dst); err != nil {
			return err
		}
	}
	if err := setBool("metrics_enabled", &c.MetricsEnabled); err != nil {
		return err
	}
	return setBool("secure_cookies", &c.SecureCookies)
}

// ConfigFilePath returns the path the config was loaded from.
func (c *StorefrontConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns where an attribute's value came from.
func (c *StorefrontConfig) Source(name string) string {
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

func (c *StorefrontConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *StorefrontConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// IsTrustedProxy reports whether ip falls in a trusted proxy range.
func (c *StorefrontConfig) IsTrustedProxy(ip string) bool {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}
	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			if cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate checks the settings are usable.
func (c *StorefrontConfig) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_base_url: %q", c.APIBaseURL)
	}
	positive := map[string]int{
		"page_size":               c.PageSize,
		"dashboard_page_size":     c.DashboardPageSize,
		"request_timeout_seconds": c.RequestTimeoutSeconds,
		"session_ttl_minutes":     c.SessionTTLMinutes,
	}
	for _, name := range attributeNames {
		if v, ok := positive[name]; ok && v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if c.APIRateLimit < 0 {
		return fmt.Errorf("api_rate_limit must not be negative, got %v", c.APIRateLimit)
	}
	if c.SessionStore != SessionStoreMemory && c.SessionStore != SessionStorePostgres {
		return fmt.Errorf("invalid session_store: %q (expected %s or %s)", c.SessionStore, SessionStoreMemory, SessionStorePostgres)
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil && net.ParseIP(cidr) == nil {
			return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
		}
	}
	return nil
}

// Attributes lists every setting in display order.
func (c *StorefrontConfig) Attributes() []Attribute {
	values := map[string]string{
		"api_base_url":            c.APIBaseURL,
		"page_size":               strconv.Itoa(c.PageSize),
		"dashboard_page_size":     strconv.Itoa(c.DashboardPageSize),
		"request_timeout_seconds": strconv.Itoa(c.RequestTimeoutSeconds),
		"session_ttl_minutes":     strconv.Itoa(c.SessionTTLMinutes),
		"api_rate_limit":          strconv.FormatFloat(c.APIRateLimit, 'f', -1, 64),
		"session_store":           c.SessionStore,
		"trusted_proxies":         strings.Join(c.TrustedProxies, ","),
		"metrics_enabled":         strconv.FormatBool(c.MetricsEnabled),
		"secure_cookies":          strconv.FormatBool(c.SecureCookies),
	}
	out := make([]Attribute, 0, len(attributeNames))
	for _, name := range attributeNames {
		out = append(out, Attribute{Name: name, Value: values[name], Source: c.Source(name)})
	}
	return out
}

// FormatText renders the attributes as a table.
func (c *StorefrontConfig) FormatText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Config file: %s\n\n", c.configFilePath)
	fmt.Fprintf(&sb, "%-26s %-30s %s\n", "NAME", "VALUE", "SOURCE")
	fmt.Fprintf(&sb, "%-26s %-30s %s\n", "----", "-----", "------")
	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(&sb, "%-26s %-30s %s\n", attr.Name, value, attr.Source)
	}
	return sb.String()
}

// FormatJSON renders the attributes as JSON.
func (c *StorefrontConfig) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
