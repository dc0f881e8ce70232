package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	devAPIBaseURL  = "http://localhost:5000/api"
	prodAPIBaseURL = "http://31.220.82.50:202/api"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Env                   string
	Port                  string
	APIBaseURL            string
	APITimeout            time.Duration
	SessionBackend        string
	SessionTTL            time.Duration
	CookieSecure          bool
	RedisAddr             string
	RedisPassword         string
	PostgresDSN           string
	MongoURI              string
	MongoDB               string
	CORSOrigins           []string
	LoginRedirectDelay    time.Duration
	RegisterRedirectDelay time.Duration
}

// Load reads the environment. The API base address defaults by APP_ENV and is
// fixed for the life of the process.
func Load() (*Config, error) {
	env := getenv("APP_ENV", "development")
	base := devAPIBaseURL
	if env != "development" {
		base = prodAPIBaseURL
	}

	cfg := &Config{
		Env:                   env,
		Port:                  getenv("PORT", "8080"),
		APIBaseURL:            strings.TrimRight(getenv("API_BASE_URL", base), "/"),
		APITimeout:            getenvDuration("API_TIMEOUT", 15*time.Second),
		SessionBackend:        strings.ToLower(getenv("SESSION_BACKEND", "redis")),
		SessionTTL:            getenvDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:          getenv("COOKIE_SECURE", "false") == "true",
		RedisAddr:             getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getenv("REDIS_PASSWORD", ""),
		PostgresDSN:           getenv("POSTGRES_DSN", ""),
		MongoURI:              getenv("MONGO_URI", ""),
		MongoDB:               getenv("MONGO_DB", "user_management"),
		CORSOrigins:           parseCSV(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LoginRedirectDelay:    getenvDuration("LOGIN_REDIRECT_DELAY", time.Second),
		RegisterRedirectDelay: getenvDuration("REGISTER_REDIRECT_DELAY", 1500*time.Millisecond),
	}

	switch cfg.SessionBackend {
	case "memory", "redis":
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required for the postgres session backend")
		}
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required for the mongo session backend")
		}
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getenvDuration accepts a Go duration ("1500ms") or whole seconds ("15").
func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
