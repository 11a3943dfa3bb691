package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/multiquery/pkg/core"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// connectionFlag is repeatable and replaces the file's connection list
// instead of being mapped onto a config key.
const connectionFlag = "connection-string"

// flags that select what to load rather than being settings themselves.
var nonSettingFlags = map[string]bool{
	"config":          true,
	"generate-config": true,
	"query":           true,
	"ping":            true,
	connectionFlag:    true,
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfigPath returns ~/.multi-query/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigName), nil
}

// FindDefaultConfig returns the config file to load when none is given:
// config.yaml, or config.json when only that one exists.
func FindDefaultConfig() (string, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	legacy := filepath.Join(filepath.Dir(path), LegacyConfigName)
	if _, err := os.Stat(legacy); err == nil {
		return legacy, nil
	}
	return path, nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
//
// An empty cfgFile means the default path, which may be absent. An explicit
// cfgFile that does not exist is an error unless connection strings were
// given as flags.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	explicit := cfgFile != ""
	if !explicit {
		var err error
		if cfgFile, err = FindDefaultConfig(); err != nil {
			return nil, err
		}
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"log_level":       "",
		"log_format":      DefaultLogFormat,
		"max_concurrency": 0,
		"timeout":         "0s",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file (YAML is a superset of JSON, so both are accepted)
	cliTargets, err := connectionFlags(flags)
	if err != nil {
		return nil, err
	}
	found := false
	if _, statErr := os.Stat(cfgFile); statErr == nil {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		found = true
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, statErr)
	} else if explicit && len(cliTargets) == 0 {
		return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, statErr)
	}

	// 3. Environment variables: MULTIQUERY_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || nonSettingFlags[f.Name] {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// -c flags replace the file's list wholesale.
	if len(cliTargets) > 0 {
		list := make([]interface{}, len(cliTargets))
		for i, t := range cliTargets {
			list[i] = map[string]interface{}{"name": t.Name, "uri": t.URI}
		}
		if err := k.Load(confmap.Provider(map[string]interface{}{
			"connection_strings": list,
		}, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load connection strings: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ConfigFile = cfgFile
	cfg.ConfigFound = found
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	for i := range cfg.ConnectionStrings {
		cfg.ConnectionStrings[i].Name = strings.TrimSpace(cfg.ConnectionStrings[i].Name)
		cfg.ConnectionStrings[i].URI = expandEnvVars(strings.TrimSpace(cfg.ConnectionStrings[i].URI))
	}
	return &cfg, nil
}

// connectionFlags parses the repeatable -c values.
func connectionFlags(flags *pflag.FlagSet) ([]core.Target, error) {
	if flags == nil || flags.Lookup(connectionFlag) == nil || !flags.Changed(connectionFlag) {
		return nil, nil
	}
	raw, err := flags.GetStringArray(connectionFlag)
	if err != nil {
		return nil, err
	}
	out := make([]core.Target, 0, len(raw))
	for _, s := range raw {
		t, err := core.ParseTarget(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// ConfigKey returns the context key used for storing the loaded config.
func ConfigKey() interface{} {
	return configKey{}
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{LogFormat: DefaultLogFormat}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}
