// Package config resolves process configuration from command-line flags and
// environment variables. Flags take precedence over the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Transport selects how MCP messages reach the server.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// Defaults.
const (
	DefaultTransport = TransportStdio
	DefaultPort      = 3020
)

// Environment variables.
const (
	EnvAPIKey           = "DINOX_API_KEY"
	EnvStorageDirectory = "IMAGE_STORAGE_DIRECTORY"
	EnvAuthToken        = "AUTH_TOKEN"
	EnvBaseURL          = "DINOX_API_BASE_URL"
	EnvLogLevel         = "DINOX_MCP_LOG_LEVEL"
)

var (
	// ErrMissingCredential means no backend API key is available for a
	// transport that needs one at startup.
	ErrMissingCredential = errors.New("DINO-X API key is required")
	ErrInvalidTransport  = errors.New("invalid transport")
	ErrInvalidPort       = errors.New("invalid port")
	ErrInvalidLogLevel   = errors.New("invalid log level")
)

// Config is the resolved, immutable server configuration.
type Config struct {
	APIKey                string
	Transport             Transport
	ImageStorageDirectory string
	Port                  int
	AuthToken             string
	EnableClientKey       bool
	BaseURL               string
	LogLevel              slog.Level
}

// Load resolves configuration from args (without the program name) and
// getenv, then validates it.
func Load(args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet("dinox-mcp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	apiKey := fs.String("dinox-api-key", "", "DINO-X API key")
	transport := fs.String("transport", string(DefaultTransport), "transport: stdio or http")
	useHTTP := fs.Bool("http", false, "shorthand for --transport=http")
	useStdio := fs.Bool("stdio", false, "shorthand for --transport=stdio")
	port := fs.Int("port", DefaultPort, "HTTP listen port")
	enableClientKey := fs.Bool("enable-client-key", false, "accept per-request API keys via ?key=")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	cfg := &Config{
		APIKey:                *apiKey,
		Transport:             Transport(strings.ToLower(*transport)),
		ImageStorageDirectory: getenv(EnvStorageDirectory),
		Port:                  *port,
		AuthToken:             getenv(EnvAuthToken),
		EnableClientKey:       *enableClientKey,
		BaseURL:               getenv(EnvBaseURL),
	}
	if cfg.APIKey == "" {
		cfg.APIKey = getenv(EnvAPIKey)
	}

	switch {
	case *useHTTP && *useStdio:
		return nil, fmt.Errorf("%w: --http and --stdio are mutually exclusive", ErrInvalidTransport)
	case *useHTTP:
		cfg.Transport = TransportHTTP
	case *useStdio:
		cfg.Transport = TransportStdio
	}

	if level := getenv(EnvLogLevel); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the transport, the port range and credential requirements.
//
// The stdio transport always needs an API key. The HTTP transport needs one
// unless client keys are enabled, in which case each request brings its own.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("%w: %q (want stdio or http)", ErrInvalidTransport, c.Transport)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d (want 1-65535)", ErrInvalidPort, c.Port)
	}

	if c.APIKey == "" && !(c.Transport == TransportHTTP && c.EnableClientKey) {
		return fmt.Errorf("%w: pass --dinox-api-key or set %s", ErrMissingCredential, EnvAPIKey)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
