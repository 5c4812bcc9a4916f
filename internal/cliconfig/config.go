// Package cliconfig loads codeloom's CLI defaults: first an optional YAML
// dotfile, then environment variables (optionally
// populated from a .env file), with each layer able to override the one
// before it. internal/cli then layers explicit flags on top of whatever
// this package produces — flags always win.
package cliconfig

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// OnParseError mirrors the three-way --on-parse-error policy.
type OnParseError string

const (
	OnParseErrorIgnore OnParseError = "ignore"
	OnParseErrorWarn   OnParseError = "warn"
	OnParseErrorError  OnParseError = "error"
)

// Config holds every flag's default value, before explicit CLI flags are
// applied on top.
type Config struct {
	OnParseError OnParseError `yaml:"on_parse_error"`
	Limit        int          `yaml:"limit"`
	Recursive    bool         `yaml:"recursive"`
	Detail       bool         `yaml:"detail"`
	Confirm      bool         `yaml:"confirm"`
}

// Default returns codeloom's built-in defaults, matching spec.md §6
// ("--on-parse-error {ignore,warn,error} (default ignore)"; every other
// flag defaults to off/unlimited).
func Default() Config {
	return Config{
		OnParseError: OnParseErrorIgnore,
		Limit:        0,
		Recursive:    false,
		Detail:       false,
		Confirm:      false,
	}
}

// Load builds a Config by layering, in order: built-in defaults, an
// optional YAML file at yamlPath (skipped if it doesn't exist), then a
// .env file (if present) merged into the process environment, then
// CODELOOM_* environment variables. It never errors on a missing file —
// only a malformed one that does exist is reported.
func Load(yamlPath string) (Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(yamlPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	// godotenv.Load is a no-op error when .env doesn't exist is still
	// returned, so only surface a real parse failure.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CODELOOM_ON_PARSE_ERROR"); v != "" {
		switch OnParseError(v) {
		case OnParseErrorIgnore, OnParseErrorWarn, OnParseErrorError:
			cfg.OnParseError = OnParseError(v)
		}
	}
	if v := os.Getenv("CODELOOM_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Limit = n
		}
	}
	if v := os.Getenv("CODELOOM_RECURSIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Recursive = b
		}
	}
	if v := os.Getenv("CODELOOM_DETAIL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Detail = b
		}
	}
	if v := os.Getenv("CODELOOM_CONFIRM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Confirm = b
		}
	}
}
