// Package config loads the settings of the ringy command.
//
// Settings are layered. Defaults are overridden by a YAML file, the file by
// RINGY_* environment variables, and those by command-line flags, which the
// command applies last.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sarchlab/ringy/core"
	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv.
const (
	EnvConfig   = "RINGY_CONFIG"
	EnvStrict   = "RINGY_STRICT"
	EnvDump     = "RINGY_DUMP"
	EnvDumpFile = "RINGY_DUMP_FILE"
	EnvLogLevel = "RINGY_LOG_LEVEL"
	EnvLogFile  = "RINGY_LOG_FILE"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds the settings of a run.
type Config struct {
	Strict   bool    `yaml:"strict"`
	Dump     bool    `yaml:"dump"`
	DumpFile string  `yaml:"dump_file"`
	LogLevel string  `yaml:"log_level"`
	LogFile  string  `yaml:"log_file"`
	FreqGHz  float64 `yaml:"freq_ghz"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		LogLevel: "error",
		FreqGHz:  1,
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// FromEnv loads the file named by RINGY_CONFIG, or the defaults if it is
// unset, and applies the RINGY_* overrides.
func FromEnv() (Config, error) {
	env.Load()

	cfg := Default()

	if path := env.Str(EnvConfig); path != "" {
		var err error

		cfg, err = Load(path)
		if err != nil {
			return cfg, err
		}
	}

	cfg.ApplyEnv()

	return cfg, nil
}

// ApplyEnv overrides the fields whose environment variables are set. The
// environment is read afresh on every call.
func (c *Config) ApplyEnv() {
	env.Load()

	if env.Has(EnvStrict) {
		c.Strict = env.Bool(EnvStrict)
	}

	if env.Has(EnvDump) {
		c.Dump = env.Bool(EnvDump)
	}

	c.DumpFile = env.Str(EnvDumpFile, c.DumpFile)
	c.LogLevel = env.Str(EnvLogLevel, c.LogLevel)
	c.LogFile = env.Str(EnvLogFile, c.LogFile)
}

// Validate checks that every field has a usable value.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}

	if c.FreqGHz <= 0 {
		return fmt.Errorf("%w: frequency must be positive, got %v", ErrInvalid, c.FreqGHz)
	}

	return nil
}

// Level converts LogLevel to a slog level. "trace" enables the per-instruction
// records of the core.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "trace":
		return core.LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.LogLevel)
	}
}
