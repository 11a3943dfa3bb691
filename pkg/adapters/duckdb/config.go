package duckdb

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific configuration.
// Parsed from the query string of a duckdb:// URI using mapstructure.
type Params struct {
	// Extensions to install and load (e.g., "httpfs", "json"), comma separated
	// in the URI.
	Extensions []string `mapstructure:"extensions"`

	// Settings are passed to the driver as configuration options
	// (e.g., threads, memory_limit, access_mode).
	Settings map[string]string `mapstructure:"settings"`
}

// parseURI splits a duckdb:// URI (scheme already stripped) into the
// database path and its parameters.
func parseURI(rest string) (string, *Params, error) {
	path, rawQuery, _ := strings.Cut(rest, "?")
	if path == "" {
		path = memoryPath
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", nil, fmt.Errorf("invalid duckdb parameters: %w", err)
	}

	raw := map[string]any{}
	settings := map[string]string{}
	for key := range query {
		if key == "extensions" {
			raw["extensions"] = query.Get(key)
			continue
		}
		settings[key] = query.Get(key)
	}
	if len(settings) > 0 {
		raw["settings"] = settings
	}

	params, err := decodeParams(raw)
	if err != nil {
		return "", nil, err
	}
	return path, params, nil
}

func decodeParams(raw map[string]any) (*Params, error) {
	params := &Params{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToSliceHookFunc(","),
		Result:     params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create params decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid duckdb parameters: %w", err)
	}

	exts := params.Extensions[:0]
	for _, e := range params.Extensions {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !isIdent(e) {
			return nil, fmt.Errorf("invalid duckdb extension name %q", e)
		}
		exts = append(exts, e)
	}
	params.Extensions = exts
	return params, nil
}

// dsn renders the path and settings in the form the driver accepts.
func (p *Params) dsn(path string) string {
	if len(p.Settings) == 0 {
		return path
	}
	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		values.Set(k, p.Settings[k])
	}
	return path + "?" + values.Encode()
}

func isIdent(s string) bool {
	for _, r := range s {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
