// Package config loads tool configuration from a pairjit.yaml file,
// PAIRJIT_ environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "pairjit.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "pairjit.yml"

// Defaults applied before any file, env var, or flag is consulted.
const (
	DefaultLogLevel = "info"
	DefaultOutput   = "text"
)

// Config holds the settings every command shares.
type Config struct {
	// LogLevel is the slog level name: debug, info, warn, or error.
	LogLevel string `koanf:"log_level"`
	// Output selects the command output format: text or json.
	Output string `koanf:"output"`
	// LogDB is the path of the SQLite compile log. Empty disables
	// audit logging.
	LogDB string `koanf:"log_db"`
	// Manifest is the path of a CUE potential manifest applied when a
	// command does not name one explicitly.
	Manifest string `koanf:"manifest"`
}

// findConfigFile finds the config file to use.
// Priority: explicit path > pairjit.yaml > pairjit.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if _, err := os.Stat(ConfigFileNameAlt); err == nil {
		return ConfigFileNameAlt
	}
	return ""
}

// Load merges configuration from defaults, an optional config file,
// PAIRJIT_ environment variables, and explicitly set flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"log_level": DefaultLogLevel,
		"output":    DefaultOutput,
		"log_db":    "",
		"manifest":  "",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables: PAIRJIT_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider("PAIRJIT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PAIRJIT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only the ones explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn, or error)", c.LogLevel)
	}
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output %q (want text or json)", c.Output)
	}
	return nil
}
