package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "registry", cfg.RegistryDir)
	assert.Empty(t, cfg.UIDir)
	assert.Empty(t, cfg.EventsDB)
	assert.Equal(t, "https://example.com/actions/fallback", cfg.FallbackURL)
	assert.True(t, cfg.Synthesis)
	assert.Equal(t, 3*time.Second, cfg.ErrorDismiss)
	assert.Equal(t, 128, cfg.UICacheSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse(map[string]string{
		"ACTIONROUTE_REGISTRY_DIR":  "/etc/actionroute",
		"ACTIONROUTE_UI_DIR":        "/etc/actionroute/ui",
		"ACTIONROUTE_EVENTS_DB":     "/var/lib/actionroute/events.db",
		"ACTIONROUTE_SYNTHESIS":     "false",
		"ACTIONROUTE_ERROR_DISMISS": "500ms",
		"ACTIONROUTE_UI_CACHE_SIZE": "16",
		"ACTIONROUTE_LOG_LEVEL":     "DEBUG",
		"REGISTRY_DIR":              "ignored without prefix",
	})
	require.NoError(t, err)

	assert.Equal(t, "/etc/actionroute", cfg.RegistryDir)
	assert.Equal(t, "/etc/actionroute/ui", cfg.UIDir)
	assert.Equal(t, "/var/lib/actionroute/events.db", cfg.EventsDB)
	assert.False(t, cfg.Synthesis)
	assert.Equal(t, 500*time.Millisecond, cfg.ErrorDismiss)
	assert.Equal(t, 16, cfg.UICacheSize)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad duration", map[string]string{"ACTIONROUTE_ERROR_DISMISS": "soon"}},
		{"bad bool", map[string]string{"ACTIONROUTE_SYNTHESIS": "maybe"}},
		{"zero cache", map[string]string{"ACTIONROUTE_UI_CACHE_SIZE": "0"}},
		{"negative dismiss", map[string]string{"ACTIONROUTE_ERROR_DISMISS": "-1s"}},
		{"bad level", map[string]string{"ACTIONROUTE_LOG_LEVEL": "LOUD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.env)
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ACTIONROUTE_UI_CACHE_SIZE=7\nACTIONROUTE_UI_DIR=from-dotenv\n"), 0o644))

	// godotenv.Load never overrides variables that are already set.
	t.Setenv("ACTIONROUTE_UI_DIR", "from-env")
	t.Cleanup(func() { os.Unsetenv("ACTIONROUTE_UI_CACHE_SIZE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.UICacheSize)
	assert.Equal(t, "from-env", cfg.UIDir)
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
