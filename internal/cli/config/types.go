// Package config provides configuration management for the multiquery CLI.
//
// Settings are layered from defaults, a YAML (or JSON) config file,
// MULTIQUERY_* environment variables and explicitly set flags, in that
// order of increasing precedence.
package config

import (
	"time"

	"github.com/leapstack-labs/multiquery/pkg/core"
)

// ConnectionString is one named target as written in the config file.
type ConnectionString struct {
	Name string `koanf:"name" yaml:"name"`
	URI  string `koanf:"uri" yaml:"uri"`
}

// Config holds all CLI configuration options.
type Config struct {
	ConnectionStrings []ConnectionString `koanf:"connection_strings" yaml:"connection_strings"`
	LogLevel          string             `koanf:"log_level" yaml:"log_level,omitempty"`
	LogFormat         string             `koanf:"log_format" yaml:"log_format,omitempty"`
	MaxConcurrency    int                `koanf:"max_concurrency" yaml:"max_concurrency,omitempty"`
	Timeout           time.Duration      `koanf:"timeout" yaml:"timeout,omitempty"`

	// ConfigFile is the path that was looked up; ConfigFound reports whether
	// it existed and was read.
	ConfigFile  string `koanf:"-" yaml:"-"`
	ConfigFound bool   `koanf:"-" yaml:"-"`
}

// Targets converts the configured connection strings into targets. The
// dialect is left empty for unknown schemes; resolution reports those.
func (c *Config) Targets() []core.Target {
	out := make([]core.Target, 0, len(c.ConnectionStrings))
	for _, cs := range c.ConnectionStrings {
		t := core.Target{Name: cs.Name, URI: cs.URI}
		if d, err := core.DialectFromURI(cs.URI); err == nil {
			t.Dialect = d
		}
		out = append(out, t)
	}
	return out
}

// Default configuration values.
const (
	DefaultConfigDir  = ".multi-query"
	DefaultConfigName = "config.yaml"
	LegacyConfigName  = "config.json"
	DefaultLogFormat  = "text"
	EnvPrefix         = "MULTIQUERY_"
)
