package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Addr      string   `yaml:"addr" json:"addr"`
	Allowlist []string `yaml:"allowlist" json:"allowlist"`
	MaxChars  int      `yaml:"maxChars" json:"maxChars"`

	Fetch struct {
		// Timeout in seconds.
		Timeout           float64 `yaml:"timeout" json:"timeout"`
		UserAgent         string  `yaml:"userAgent" json:"userAgent"`
		MaxBodyBytes      int64   `yaml:"maxBodyBytes" json:"maxBodyBytes"`
		MaxRedirects      int     `yaml:"maxRedirects" json:"maxRedirects"`
		MaxConcurrent     int     `yaml:"maxConcurrent" json:"maxConcurrent"`
		AllowPrivateHosts bool    `yaml:"allowPrivateHosts" json:"allowPrivateHosts"`
	} `yaml:"fetch" json:"fetch"`

	RateLimit struct {
		PerSecond float64 `yaml:"perSecond" json:"perSecond"`
		Burst     int     `yaml:"burst" json:"burst"`
	} `yaml:"rateLimit" json:"rateLimit"`

	Log struct {
		Verbose bool   `yaml:"verbose" json:"verbose"`
		Format  string `yaml:"format" json:"format"`
	} `yaml:"log" json:"log"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. It runs on top of
// DefaultConfig, before env and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if len(fc.Allowlist) > 0 {
		cfg.Allowlist = append([]string{}, fc.Allowlist...)
	}
	if fc.MaxChars > 0 {
		cfg.MaxChars = fc.MaxChars
	}
	if fc.Fetch.Timeout > 0 {
		cfg.Timeout = secondsToDuration(fc.Fetch.Timeout)
	}
	if fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Fetch.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = fc.Fetch.MaxBodyBytes
	}
	if fc.Fetch.MaxRedirects > 0 {
		cfg.MaxRedirects = fc.Fetch.MaxRedirects
	}
	if fc.Fetch.MaxConcurrent > 0 {
		cfg.MaxConcurrent = fc.Fetch.MaxConcurrent
	}
	if fc.Fetch.AllowPrivateHosts {
		cfg.AllowPrivateHosts = true
	}
	if fc.RateLimit.PerSecond > 0 {
		cfg.RateLimit = fc.RateLimit.PerSecond
	}
	if fc.RateLimit.Burst > 0 {
		cfg.RateBurst = fc.RateLimit.Burst
	}
	if fc.Log.Verbose {
		cfg.Verbose = true
	}
	if fc.Log.Format != "" {
		cfg.LogFormat = fc.Log.Format
	}
}
