package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-fold/framework/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

var keys = []string{
	"APP_NAME", "APP_ENV", "APP_DEBUG",
	"AUTOLOAD_NAMESPACE", "AUTOLOAD_DIR",
	"LOG_LEVEL", "LOG_FORMAT",
	"DIAGNOSTICS_PORT", "METRICS_ENABLED",
}

// unsetEnv removes key for the duration of the test; t.Setenv restores it.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func clean(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		unsetEnv(t, k)
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	clean(t)
	cfg := config.Load(missingEnvFile(t))

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"App.Name", cfg.App.Name, "Fold"},
		{"App.Env", cfg.App.Env, "local"},
		{"Container.AutoloadNamespace", cfg.Container.AutoloadNamespace, "App/"},
		{"Container.AutoloadDir", cfg.Container.AutoloadDir, "./app"},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.Format", cfg.Log.Format, "json"},
		{"Diagnostics.Port", cfg.Diagnostics.Port, "8000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.True(t, cfg.App.Debug)
	assert.True(t, cfg.Diagnostics.Metrics)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clean(t)
	t.Setenv("APP_NAME", "MyApp")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTOLOAD_NAMESPACE", "Acme/")
	t.Setenv("AUTOLOAD_DIR", "/srv/acme")
	t.Setenv("DIAGNOSTICS_PORT", "9000")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := config.Load(missingEnvFile(t))

	assert.Equal(t, "MyApp", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "Acme/", cfg.Container.AutoloadNamespace)
	assert.Equal(t, "/srv/acme", cfg.Container.AutoloadDir)
	assert.Equal(t, "9000", cfg.Diagnostics.Port)
	assert.False(t, cfg.Diagnostics.Metrics)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	clean(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=FromFile\nLOG_LEVEL=debug\n"), 0o600))

	cfg := config.Load(path)

	assert.Equal(t, "FromFile", cfg.App.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvWinsOverEnvFile(t *testing.T) {
	clean(t)
	t.Setenv("APP_NAME", "FromEnv")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=FromFile\n"), 0o600))

	cfg := config.Load(path)

	assert.Equal(t, "FromEnv", cfg.App.Name)
}

func TestLoad_AppDebugFalse(t *testing.T) {
	clean(t)
	t.Setenv("APP_DEBUG", "false")

	assert.False(t, config.Load(missingEnvFile(t)).App.Debug)
}

// ── Validate ─────────────────────────────────────────────────────────────────

func TestValidate_Defaults(t *testing.T) {
	clean(t)
	assert.NoError(t, config.Load(missingEnvFile(t)).Validate())
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		key    string
		msg    string
	}{
		{"missing name", func(c *config.Config) { c.App.Name = " " }, "APP_NAME", "APP_NAME is required."},
		{"bad env", func(c *config.Config) { c.App.Env = "prod env" }, "APP_ENV", "APP_ENV format is invalid."},
		{"port not int", func(c *config.Config) { c.Diagnostics.Port = "http" }, "DIAGNOSTICS_PORT", "DIAGNOSTICS_PORT must be an integer."},
		{"port range", func(c *config.Config) { c.Diagnostics.Port = "70000" }, "DIAGNOSTICS_PORT", "DIAGNOSTICS_PORT must be between 0 and 65535."},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, "LOG_FORMAT", "LOG_FORMAT must be one of json,console."},
		{"log level", func(c *config.Config) { c.Log.Level = "loud" }, "LOG_LEVEL", "LOG_LEVEL must be one of trace,debug,info,warn,warning,error,disabled,off,none."},
		{"autoload dir", func(c *config.Config) { c.Container.AutoloadDir = "" }, "AUTOLOAD_DIR", "AUTOLOAD_DIR is required when AUTOLOAD_NAMESPACE is set."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean(t)
			cfg := config.Load(missingEnvFile(t))
			tt.mutate(cfg)

			err := cfg.Validate()

			var verr *config.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.First(tt.key))
			assert.Len(t, verr.Bag, 1)
		})
	}
}

func TestValidate_OptionalKeys(t *testing.T) {
	clean(t)
	cfg := config.Load(missingEnvFile(t))
	cfg.Container.AutoloadNamespace = ""
	cfg.Container.AutoloadDir = ""
	cfg.Log.Level = "DEBUG"

	assert.NoError(t, cfg.Validate())
}
