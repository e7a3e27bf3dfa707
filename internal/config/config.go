// Package config loads runtime settings from a .env file and the process
// environment. Every variable is prefixed with ACTIONROUTE_.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable name.
const Prefix = "ACTIONROUTE_"

// Config holds the runtime settings of the resolver and its CLI.
type Config struct {
	// RegistryDir holds the .cue files of the action and compound registry.
	RegistryDir string `env:"REGISTRY_DIR" envDefault:"registry"`

	// UIDir holds data-driven UI definitions. Empty disables them.
	UIDir string `env:"UI_DIR"`

	// EventsDB is the SQLite analytics log. Empty disables persistence.
	EventsDB string `env:"EVENTS_DB"`

	AttachmentBaseURL string `env:"ATTACHMENT_BASE_URL" envDefault:"https://mail.example.com/attachments"`
	FallbackURL       string `env:"FALLBACK_URL" envDefault:"https://example.com/actions/fallback"`

	// Synthesis enables the content-synthesis placeholder tier.
	Synthesis bool `env:"SYNTHESIS" envDefault:"true"`

	ErrorDismiss time.Duration `env:"ERROR_DISMISS" envDefault:"3s"`
	UICacheSize  int           `env:"UI_CACHE_SIZE" envDefault:"128"`
	LogLevel     slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Load reads the given .env files (default ".env"), then parses the process
// environment. Missing .env files are ignored; variables already set in the
// environment win over .env values.
func Load(dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, path := range dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return Parse(environ())
}

// Parse builds a Config from an explicit environment map. Keys carry the
// ACTIONROUTE_ prefix.
func Parse(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      Prefix,
		Environment: environment,
	}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges env parsing cannot express.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.RegistryDir) == "" {
		errs = append(errs, fmt.Errorf("%sREGISTRY_DIR must not be empty", Prefix))
	}
	if c.ErrorDismiss <= 0 {
		errs = append(errs, fmt.Errorf("%sERROR_DISMISS must be positive, got %s", Prefix, c.ErrorDismiss))
	}
	if c.UICacheSize <= 0 {
		errs = append(errs, fmt.Errorf("%sUI_CACHE_SIZE must be positive, got %d", Prefix, c.UICacheSize))
	}
	return errors.Join(errs...)
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
