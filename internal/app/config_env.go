package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when the
// corresponding variables are set. Env takes precedence over a config file;
// flags are applied afterwards and remain highest precedence. Malformed
// values are reported and leave the field unchanged.
func ApplyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	var errs []error

	if v, ok := lookup("ALLOWLIST"); ok {
		cfg.Allowlist = SplitList(v)
	}
	if v, ok := lookup("ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("USER_AGENT"); ok && v != "" {
		cfg.UserAgent = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	setInt := func(dst *int, key string) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setInt(&cfg.MaxChars, "MAX_CHARS")
	setInt(&cfg.MaxRedirects, "MAX_REDIRECTS")
	setInt(&cfg.MaxConcurrent, "MAX_CONCURRENT")
	setInt(&cfg.RateBurst, "RATE_BURST")

	if v, ok := lookup("MAX_BODY_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_BODY_BYTES: %w", err))
		} else {
			cfg.MaxBodyBytes = n
		}
	}
	if v, ok := lookup("TIMEOUT"); ok && v != "" {
		d, err := ParseSeconds(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TIMEOUT: %w", err))
		} else {
			cfg.Timeout = d
		}
	}
	if v, ok := lookup("RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT: %w", err))
		} else {
			cfg.RateLimit = f
		}
	}

	// Booleans override when env present and truthy/falsey
	setBool := func(dst *bool, key string) {
		if s, ok := lookup(key); ok && s != "" {
			switch strings.ToLower(s) {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			default:
				errs = append(errs, fmt.Errorf("%s: invalid boolean %q", key, s))
			}
		}
	}
	setBool(&cfg.AllowPrivateHosts, "ALLOW_PRIVATE_HOSTS")
	setBool(&cfg.Verbose, "VERBOSE")

	return errors.Join(errs...)
}

// ParseSeconds parses a timeout given as float seconds ("15", "2.5") or as a
// Go duration ("1m30s").
func ParseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return secondsToDuration(f), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	return d, nil
}

func secondsToDuration(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return strings.TrimSpace(v), ok
}
