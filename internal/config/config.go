package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes application settings to the packages that need them.
type Provider interface {
	GetAppAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string

	GetDBUrl() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string

	GetActionsScriptDir() string
	GetActionsHotReload() bool
	GetActionsMemoTTL() time.Duration

	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetTracingZipkinURL() string
}

// Config holds all configuration for the application.
type Config struct {
	AppAddr       string
	AppBaseURL    string
	SessionSecret string

	DBUrl  string
	DBNs   string
	DBDb   string
	DBUser string
	DBPass string

	ActionsScriptDir string
	ActionsHotReload bool
	ActionsMemoTTL   time.Duration

	TracingEnabled     bool
	TracingServiceName string
	TracingZipkinURL   string
}

var _ Provider = (*Config)(nil)

// New loads configuration from the environment, reading a .env file first
// when one exists. An empty SURREAL_URL selects the in-memory chat store.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	return &Config{
		AppAddr:          getEnv("APP_ADDR", ":8080"),
		AppBaseURL:       getEnv("APP_BASE_URL", "http://localhost:8080"),
		SessionSecret:    getEnv("SESSION_SECRET", "parley-dev-secret"),
		DBUrl:            os.Getenv("SURREAL_URL"),
		DBNs:             getEnv("SURREAL_NS", "parley"),
		DBDb:             getEnv("SURREAL_DB", "chat"),
		DBUser:           os.Getenv("SURREAL_USER"),
		DBPass:           os.Getenv("SURREAL_PASS"),
		ActionsScriptDir: getEnv("ACTIONS_SCRIPT_DIR", "scripts/actions"),
		ActionsHotReload: getBool("ACTIONS_HOT_RELOAD", true),
		ActionsMemoTTL:   getDuration("ACTIONS_MEMO_TTL", time.Second),

		TracingEnabled:     getBool("PUBSUB_TRACING_ENABLED", false),
		TracingServiceName: os.Getenv("PUBSUB_TRACING_SERVICE_NAME"),
		TracingZipkinURL:   os.Getenv("PUBSUB_TRACING_ZIPKIN_URL"),
	}
}

func (c *Config) GetAppAddr() string               { return c.AppAddr }
func (c *Config) GetAppBaseURL() string            { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string         { return c.SessionSecret }
func (c *Config) GetDBUrl() string                 { return c.DBUrl }
func (c *Config) GetDBNs() string                  { return c.DBNs }
func (c *Config) GetDBDb() string                  { return c.DBDb }
func (c *Config) GetDBUser() string                { return c.DBUser }
func (c *Config) GetDBPass() string                { return c.DBPass }
func (c *Config) GetActionsScriptDir() string      { return c.ActionsScriptDir }
func (c *Config) GetActionsHotReload() bool        { return c.ActionsHotReload }
func (c *Config) GetActionsMemoTTL() time.Duration { return c.ActionsMemoTTL }
func (c *Config) GetTracingEnabled() bool          { return c.TracingEnabled }
func (c *Config) GetTracingServiceName() string    { return c.TracingServiceName }
func (c *Config) GetTracingZipkinURL() string      { return c.TracingZipkinURL }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		slog.Warn("Invalid boolean in environment, using default", "key", key, "value", v)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", v)
	}
	return fallback
}
