package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App         AppConfig
	Container   ContainerConfig
	Log         LogConfig
	Diagnostics DiagnosticsConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

// ContainerConfig drives the container's autoload rule.
type ContainerConfig struct {
	AutoloadNamespace string
	AutoloadDir       string
}

type LogConfig struct {
	Level  string // trace | debug | info | warn | error | disabled
	Format string // json | console
}

type DiagnosticsConfig struct {
	Port    string
	Metrics bool
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "Fold"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", true),
		},
		Container: ContainerConfig{
			AutoloadNamespace: env("AUTOLOAD_NAMESPACE", "App/"),
			AutoloadDir:       env("AUTOLOAD_DIR", "./app"),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "json"),
		},
		Diagnostics: DiagnosticsConfig{
			Port:    env("DIAGNOSTICS_PORT", "8000"),
			Metrics: envBool("METRICS_ENABLED", true),
		},
	}
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
