package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var validLogLevels = []string{"", "debug", "info", "warn", "error"}

var validLogFormats = []string{"text", "json"}

// Validate checks if the configuration is usable for a query run.
func (c *Config) Validate() error {
	if len(c.ConnectionStrings) == 0 {
		if !c.ConfigFound && c.ConfigFile != "" {
			return fmt.Errorf("failed to read config file %s: file does not exist\nHint: pass -c NAME,URI or run with --generate-config", c.ConfigFile)
		}
		return errors.New("no connection strings configured\nHint: pass -c NAME,URI or add connection_strings to the config file")
	}

	var errs []error
	for i, cs := range c.ConnectionStrings {
		if strings.TrimSpace(cs.Name) == "" {
			errs = append(errs, fmt.Errorf("connection_strings[%d]: name is required", i))
		}
		if strings.TrimSpace(cs.URI) == "" {
			errs = append(errs, fmt.Errorf("connection_strings[%d]: uri is required", i))
		}
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("invalid log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.LogFormat)) {
		errs = append(errs, fmt.Errorf("invalid log_format %q (valid: text, json)", c.LogFormat))
	}
	if c.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("max_concurrency must not be negative, got %d", c.MaxConcurrency))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}
