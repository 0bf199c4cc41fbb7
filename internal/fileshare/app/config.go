package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the optional YAML file layered under the environment.
const ConfigFileEnv = "FILESHARE_CONFIG"

type Config struct {
	Host         string `yaml:"host"`          // Listen address (default: 0.0.0.0)
	Port         int    `yaml:"port"`          // HTTP server port (default: 8000)
	DatabaseFile string `yaml:"database_file"` // Path to SQLite database file (default: ./users.db)
	RootDir      string `yaml:"root_dir"`      // Directory served as "/" (default: /)
	TemplateDir  string `yaml:"template_dir"`  // Optional: directory of page overrides

	TokenTTL          time.Duration `yaml:"token_ttl"`           // Absolute session lifetime (default: 1h)
	IdleTimeout       time.Duration `yaml:"idle_timeout"`        // Active users idle cutoff (default: 5m)
	RateLimitAttempts int           `yaml:"rate_limit_attempts"` // Failed logins before lockout (default: 5)
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`   // Lockout window (default: 2m)
	SharedPathsCache  time.Duration `yaml:"shared_paths_cache"`  // Grant cache lifetime (default: 30s)
	MaxNotifications  int           `yaml:"max_notifications"`   // Notices shown on the dashboard (default: 5)
	DBTimeout         time.Duration `yaml:"db_timeout"`          // Per query timeout (default: 5s)

	DetailedLoginErrors bool `yaml:"detailed_login_errors"` // Show the specific login failure (default: false)
	TrustProxyHeaders   bool `yaml:"trust_proxy_headers"`   // Take client IP from X-Forwarded-For (default: false)

	Env                  string        `yaml:"env"`                   // Environment (dev, staging, prod) (default: prod)
	LogLevel             string        `yaml:"log_level"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        `yaml:"log_format"`            // Log format (json, text) (default: json)
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"` // Housekeeping interval (default: 10m)
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Host:                 "0.0.0.0",
		Port:                 8000,
		DatabaseFile:         "users.db",
		RootDir:              "/",
		TokenTTL:             time.Hour,
		IdleTimeout:          5 * time.Minute,
		RateLimitAttempts:    5,
		RateLimitWindow:      2 * time.Minute,
		SharedPathsCache:     30 * time.Second,
		MaxNotifications:     5,
		DBTimeout:            5 * time.Second,
		Env:                  "prod",
		LogLevel:             "info",
		LogFormat:            "json",
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: 10 * time.Minute,
	}
}

// LoadConfig resolves defaults, then the YAML file named by
// FILESHARE_CONFIG, then the environment.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Host = getEnvOrDefault("HOST", cfg.Host)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.DatabaseFile = getEnvOrDefault("FILESHARE_DB_PATH", cfg.DatabaseFile)
	cfg.RootDir = getEnvOrDefault("FILESHARE_ROOT", cfg.RootDir)
	cfg.TemplateDir = getEnvOrDefault("FILESHARE_TEMPLATE_DIR", cfg.TemplateDir)

	cfg.TokenTTL = getEnvDurationOrDefault("TOKEN_EXPIRY", cfg.TokenTTL)
	cfg.IdleTimeout = getEnvDurationOrDefault("INACTIVE_USER_TIMEOUT", cfg.IdleTimeout)
	cfg.RateLimitAttempts = getEnvIntOrDefault("RATE_LIMIT_ATTEMPTS", cfg.RateLimitAttempts)
	cfg.RateLimitWindow = getEnvDurationOrDefault("RATE_LIMIT_WINDOW", cfg.RateLimitWindow)
	cfg.SharedPathsCache = getEnvDurationOrDefault("SHARED_PATHS_CACHE", cfg.SharedPathsCache)
	cfg.MaxNotifications = getEnvIntOrDefault("MAX_ADMIN_NOTIFICATIONS", cfg.MaxNotifications)
	cfg.DBTimeout = getEnvDurationOrDefault("DB_TIMEOUT", cfg.DBTimeout)

	cfg.DetailedLoginErrors = getEnvBoolOrDefault("FILESHARE_DETAILED_LOGIN_ERRORS", cfg.DetailedLoginErrors)
	cfg.TrustProxyHeaders = getEnvBoolOrDefault("TRUST_PROXY_HEADERS", cfg.TrustProxyHeaders)

	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)
	cfg.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval)

	return cfg, nil
}

// loadFile overlays the keys present in a YAML file. Absent keys keep their
// current value.
func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.DatabaseFile = strings.TrimSpace(c.DatabaseFile)
	c.RootDir = strings.TrimSpace(c.RootDir)
	c.TemplateDir = strings.TrimSpace(c.TemplateDir)
	return nil
}

// Validate checks ranges and that the serving root exists on fsys.
func (c Config) Validate(fsys afero.Fs) error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is invalid", c.Port)
	}
	if c.DatabaseFile == "" {
		return errors.New("database_file is required")
	}
	if c.RateLimitAttempts < 1 {
		return errors.New("rate_limit_attempts must be at least 1")
	}
	if c.MaxNotifications < 1 {
		return errors.New("max_notifications must be at least 1")
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"token_ttl", c.TokenTTL},
		{"idle_timeout", c.IdleTimeout},
		{"rate_limit_window", c.RateLimitWindow},
		{"shared_paths_cache", c.SharedPathsCache},
		{"db_timeout", c.DBTimeout},
		{"shutdown_grace_period", c.ShutdownGracePeriod},
		{"housekeeping_interval", c.HousekeepingInterval},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}

	if c.RootDir == "" {
		return errors.New("root_dir is required")
	}
	ok, err := afero.IsDir(fsys, c.RootDir)
	if err != nil {
		return fmt.Errorf("root_dir %s: %w", c.RootDir, err)
	}
	if !ok {
		return fmt.Errorf("root_dir %s is not a directory", c.RootDir)
	}
	return nil
}

// Addr is the listen address for http.Server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
