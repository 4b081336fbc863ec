package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the desk app.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	API         APIConfig
	Social      SocialConfig
	Credstore   CredstoreConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Monitor     MonitorConfig
	Revalidate  RevalidateConfig
}

// HTTPConfig configures the local server that serves the pages. It
// binds to loopback by default; the app owns a single user's session.
type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// APIConfig points at the remote account backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SocialConfig carries optional social sign-in settings. An empty
// GoogleClientID disables the Google affordance rather than failing.
type SocialConfig struct {
	GoogleClientID string
}

type CredstoreConfig struct {
	Path string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MonitorConfig struct {
	Interval time.Duration
}

type RevalidateConfig struct {
	Interval time.Duration
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the app can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "workhive-desk"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("DESK_HOST", "127.0.0.1"),
			Port:         getString("DESK_PORT", "4180"),
			ReadTimeout:  getDuration("DESK_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("DESK_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("DESK_IDLE_TIMEOUT", 120*time.Second),
		},
		API: APIConfig{
			BaseURL: getString("API_BASE_URL", "http://localhost:3000"),
			Timeout: getDuration("API_TIMEOUT", 10*time.Second),
		},
		Social: SocialConfig{
			GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		},
		Credstore: CredstoreConfig{
			Path: getString("CREDSTORE_PATH", "./data/session.db"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Monitor: MonitorConfig{
			Interval: getDuration("MONITOR_INTERVAL", 30*time.Second),
		},
		Revalidate: RevalidateConfig{
			Interval: getDuration("REVALIDATE_INTERVAL", 15*time.Minute),
		},
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL must not be empty")
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the local listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

// GoogleSignInEnabled reports whether the Google button should render.
func (c *Config) GoogleSignInEnabled() bool {
	return c.Social.GoogleClientID != ""
}
