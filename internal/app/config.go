package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/eggcracker/internal/excerpt"
	"github.com/hyperifyio/eggcracker/internal/fetch"
)

// Defaults applied before any file, env or flag source.
const (
	DefaultAddr          = ":8000"
	DefaultTimeout       = 15 * time.Second
	DefaultMaxBodyBytes  = 5 << 20
	DefaultMaxRedirects  = 10
	DefaultLogFormat     = "console"
	DefaultShutdownGrace = 10 * time.Second
)

// Config holds runtime configuration for the reader. It is built once at
// startup and treated as read-only afterwards.
type Config struct {
	Addr string

	// Allowlist of source domains; empty means unrestricted.
	Allowlist []string
	// MaxChars is the excerpt budget in characters.
	MaxChars int

	// Upstream fetch
	Timeout           time.Duration
	UserAgent         string
	MaxBodyBytes      int64
	MaxRedirects      int
	MaxConcurrent     int
	AllowPrivateHosts bool

	// Per-client limit on /read, requests per second. Zero disables it.
	RateLimit float64
	RateBurst int

	Verbose   bool
	LogFormat string
}

// DefaultConfig returns the configuration used when no source sets a value.
func DefaultConfig() Config {
	return Config{
		Addr:         DefaultAddr,
		MaxChars:     excerpt.DefaultMaxChars,
		Timeout:      DefaultTimeout,
		UserAgent:    fetch.DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
		MaxRedirects: DefaultMaxRedirects,
		LogFormat:    DefaultLogFormat,
	}
}

// ValidateConfig rejects settings the reader cannot run with.
func ValidateConfig(cfg Config) error {
	var errs []error
	if strings.TrimSpace(cfg.Addr) == "" {
		errs = append(errs, errors.New("config: addr is required"))
	}
	if cfg.MaxChars <= 0 {
		errs = append(errs, fmt.Errorf("config: max chars must be positive, got %d", cfg.MaxChars))
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("config: timeout must be positive, got %s", cfg.Timeout))
	}
	if cfg.MaxBodyBytes < 0 || cfg.MaxRedirects < 0 || cfg.MaxConcurrent < 0 || cfg.RateLimit < 0 || cfg.RateBurst < 0 {
		errs = append(errs, errors.New("config: negative limits are not allowed"))
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", cfg.LogFormat))
	}
	return errors.Join(errs...)
}

// SplitList splits a comma-separated list, dropping empty items.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			list = append(list, v)
		}
	}
	if len(list) == 0 {
		return nil
	}
	return list
}
