package core

import (
	"errors"
	"fmt"
	"strings"
)

// ProvenanceKey is the reserved first key of every emitted row. It carries
// the name of the target that produced the row.
const ProvenanceKey = "db_name"

// Target is one configured backend: a logical name and a connection string.
// Names are labels only and need not be unique.
type Target struct {
	Name    string
	URI     string
	Dialect Dialect
}

// NewTarget builds a Target and resolves its dialect from the URI scheme.
func NewTarget(name, uri string) (Target, error) {
	d, err := DialectFromURI(uri)
	if err != nil {
		var ube *UnsupportedBackendError
		if errors.As(err, &ube) {
			ube.Target = name
		}
		return Target{Name: name, URI: uri}, err
	}
	return Target{Name: name, URI: uri, Dialect: d}, nil
}

// ParseTarget splits a "name,uri" (or "name=uri") pair on the first
// separator. The dialect is not resolved here.
func ParseTarget(s string) (Target, error) {
	i := strings.IndexAny(s, ",=")
	if i < 0 {
		return Target{}, fmt.Errorf("invalid connection string %q: expected format <name,uri>", s)
	}
	name, uri := strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	if name == "" || uri == "" {
		return Target{}, fmt.Errorf("invalid connection string %q: name and uri must be non-empty", s)
	}
	return Target{Name: name, URI: uri}, nil
}

// AdapterConfig holds what an adapter needs to open its connection pool.
type AdapterConfig struct {
	// Name is the target name, emitted as the provenance tag.
	Name string

	// URI is the full connection string including the scheme.
	URI string

	// Options contains additional driver-specific options.
	Options map[string]string
}

// AdapterConfig returns the connection config for this target.
func (t Target) AdapterConfig() AdapterConfig {
	return AdapterConfig{Name: t.Name, URI: t.URI}
}
