package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Settings is the typed application configuration, populated from the
// environment. Registered in the root container under the well-known
// "settings" key; the container treats it like any other component.
type Settings struct {
	AppName  string
	Env      string // local | production | testing
	Debug    bool
	Port     string
	LogLevel string
}

// Load reads .env files (if present) and populates Settings from
// environment variables. Call once at bootstrap.
func Load(envFiles ...string) *Settings {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Settings{
		AppName:  env("APP_NAME", "loom"),
		Env:      env("APP_ENV", "local"),
		Debug:    envBool("APP_DEBUG", true),
		Port:     env("APP_PORT", "8000"),
		LogLevel: env("LOG_LEVEL", "info"),
	}
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (s *Settings) IsProduction() bool { return s.Env == "production" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
