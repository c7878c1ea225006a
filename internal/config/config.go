package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const defaultTokenFileName = "fb_token"

// Config defines all environment-driven runtime options.
type Config struct {
	GraphURL     string `env:"FBADS_GRAPH_URL" envDefault:"https://graph.facebook.com" validate:"required,url"`
	GraphVersion string `env:"FBADS_GRAPH_VERSION" envDefault:"v22.0" validate:"required"`

	AuthURL                string `env:"FBADS_AUTH_URL" envDefault:"https://reimagine.gomarble.ai" validate:"required,url"`
	AuthInsecureSkipVerify bool   `env:"FBADS_AUTH_INSECURE_SKIP_VERIFY" envDefault:"false"`

	TokenFile string `env:"FBADS_TOKEN_FILE"`

	PollInterval time.Duration `env:"FBADS_POLL_INTERVAL" envDefault:"10s" validate:"gt=0"`
	PollAttempts int           `env:"FBADS_POLL_ATTEMPTS" envDefault:"6" validate:"min=1"`

	HTTPTimeout time.Duration `env:"FBADS_HTTP_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	RateLimit   float64       `env:"FBADS_RATE_LIMIT" envDefault:"0" validate:"gte=0"`

	Transport string `env:"FBADS_TRANSPORT" envDefault:"stdio" validate:"oneof=stdio http"`
	Host      string `env:"FBADS_HOST" envDefault:"127.0.0.1"`
	Port      int    `env:"FBADS_PORT" envDefault:"28080" validate:"min=1,max=65535"`

	LogLevel string `env:"FBADS_LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (if present) and parses environment variables into Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints declared on Config.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// ResolveTokenFile returns the configured token path, falling back to
// fb_token beside the running executable.
func (c *Config) ResolveTokenFile() (string, error) {
	if path := strings.TrimSpace(c.TokenFile); path != "" {
		return filepath.Abs(path)
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve token file: locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), defaultTokenFileName), nil
}

// GraphBaseURL joins the Graph host and API version.
func (c *Config) GraphBaseURL() string {
	return strings.TrimSuffix(c.GraphURL, "/") + "/" + strings.Trim(c.GraphVersion, "/")
}
