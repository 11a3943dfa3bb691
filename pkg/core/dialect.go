package core

import (
	"strings"
)

// Dialect identifies a backend kind and, through it, the decoding rules
// applied to its rows.
type Dialect string

// Supported dialects.
const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
	DialectDuckDB   Dialect = "duckdb"
)

// String returns the dialect name.
func (d Dialect) String() string {
	return string(d)
}

// schemeRule maps a connection string prefix to a dialect.
type schemeRule struct {
	Prefix  string
	Dialect Dialect
}

// schemes is the ordered scheme table. The first matching prefix wins;
// prefixes are disjoint so the order only matters for readability.
var schemes = []schemeRule{
	{Prefix: "postgres://", Dialect: DialectPostgres},
	{Prefix: "postgresql://", Dialect: DialectPostgres},
	{Prefix: "mysql://", Dialect: DialectMySQL},
	{Prefix: "sqlite://", Dialect: DialectSQLite},
	{Prefix: "sqlite3://", Dialect: DialectSQLite},
	{Prefix: "duckdb://", Dialect: DialectDuckDB},
}

// DialectFromURI returns the dialect selected by the URI's scheme prefix.
// Matching is case-insensitive on the scheme only.
func DialectFromURI(uri string) (Dialect, error) {
	lower := strings.ToLower(strings.TrimSpace(uri))
	for _, rule := range schemes {
		if strings.HasPrefix(lower, rule.Prefix) {
			return rule.Dialect, nil
		}
	}
	return "", &UnsupportedBackendError{
		Scheme:    schemeOf(uri),
		Supported: SupportedSchemes(),
	}
}

// SupportedSchemes lists the recognized URI prefixes in match order.
func SupportedSchemes() []string {
	out := make([]string, 0, len(schemes))
	for _, rule := range schemes {
		out = append(out, rule.Prefix)
	}
	return out
}

// StripScheme removes the dialect prefix from a URI, leaving the
// driver-specific remainder (path, host, query).
func StripScheme(uri string) string {
	trimmed := strings.TrimSpace(uri)
	lower := strings.ToLower(trimmed)
	for _, rule := range schemes {
		if strings.HasPrefix(lower, rule.Prefix) {
			return trimmed[len(rule.Prefix):]
		}
	}
	return trimmed
}

// schemeOf extracts "scheme://" (or the whole string when there is none) for
// error messages without echoing credentials.
func schemeOf(uri string) string {
	if i := strings.Index(uri, "://"); i >= 0 {
		return uri[:i+3]
	}
	if i := strings.Index(uri, ":"); i >= 0 {
		return uri[:i+1]
	}
	return uri
}
