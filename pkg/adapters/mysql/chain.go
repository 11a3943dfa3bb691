package mysql

import (
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/multiquery/pkg/core"
	"github.com/leapstack-labs/multiquery/pkg/normalize"
)

// Chain returns the MySQL decoder chain. Depending on protocol and driver
// settings a column arrives either as a native Go value or as raw text, so
// most types have a native decoder and a text decoder keyed by column type.
func Chain() *normalize.SQLChain {
	return normalize.NewChain[normalize.SQLCell](normalize.TextFallback,
		bitDecoder(),
		normalize.IntegerDecoder(),
		textDecoder("integer-text", isInteger, parseInteger),
		normalize.FloatDecoder(),
		textDecoder("float-text", isFloat, parseFloat),
		textDecoder("decimal-text", isDecimal, func(s, _ string) (core.Value, bool) {
			return core.DecimalFromText(s), true
		}),
		normalize.BoolDecoder(),
		normalize.TimeDecoder(timeKind),
		textDecoder("temporal-text", isTemporal, func(s, _ string) (core.Value, bool) {
			return core.Temporal(strings.Replace(s, " ", "T", 1)), true
		}),
		normalize.JSONDecoder(isJSON),
		textDecoder("string-text", isString, func(s, _ string) (core.Value, bool) {
			return core.String(s), true
		}),
		normalize.TextDecoder(),
		normalize.BinaryDecoder(isBinary),
	)
}

// textDecoder claims []byte or string cells of columns accepted by match.
func textDecoder(name string, match func(base string) bool, parse func(s, typ string) (core.Value, bool)) normalize.Decoder[normalize.SQLCell] {
	return normalize.SQLDecoder(name, func(c normalize.SQLCell) (core.Value, bool) {
		if !match(baseType(c.Type)) {
			return core.Value{}, false
		}
		var s string
		switch v := c.Value.(type) {
		case []byte:
			s = string(v)
		case string:
			s = v
		default:
			return core.Value{}, false
		}
		if !utf8.ValidString(s) {
			return core.Value{}, false
		}
		return parse(s, c.Type)
	})
}

// bitDecoder reads BIT(n) values, which arrive as big-endian bytes.
func bitDecoder() normalize.Decoder[normalize.SQLCell] {
	return normalize.SQLDecoder("bit", func(c normalize.SQLCell) (core.Value, bool) {
		b, ok := c.Value.([]byte)
		if !ok || baseType(c.Type) != "BIT" {
			return core.Value{}, false
		}
		return normalize.BigInt(new(big.Int).SetBytes(b)), true
	})
}

func parseInteger(s, _ string) (core.Value, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return core.Int(i), true
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return core.Value{}, false
	}
	return normalize.BigInt(n), true
}

func parseFloat(s, typ string) (core.Value, bool) {
	if baseType(typ) == "FLOAT" {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return core.Value{}, false
		}
		return core.Float32(float32(f)), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.Value{}, false
	}
	return core.Float(f), true
}

// baseType drops the UNSIGNED marker the driver puts in front of integer
// type names.
func baseType(typ string) string {
	return strings.TrimPrefix(normalize.BaseType(typ), "UNSIGNED ")
}

func isInteger(base string) bool {
	switch base {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR":
		return true
	}
	return false
}

func isFloat(base string) bool {
	return base == "FLOAT" || base == "DOUBLE" || base == "REAL"
}

func isDecimal(base string) bool {
	return base == "DECIMAL" || base == "NUMERIC"
}

func isTemporal(base string) bool {
	switch base {
	case "DATE", "DATETIME", "TIMESTAMP", "TIME":
		return true
	}
	return false
}

func isString(base string) bool {
	switch base {
	case "CHAR", "VARCHAR", "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "ENUM", "SET":
		return true
	}
	return false
}

func isJSON(typ string) bool {
	return baseType(typ) == "JSON"
}

func isBinary(typ string) bool {
	switch baseType(typ) {
	case "BINARY", "VARBINARY", "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "GEOMETRY":
		return true
	}
	return false
}

func timeKind(typ string) normalize.TimeKind {
	if baseType(typ) == "DATE" {
		return normalize.Date
	}
	return normalize.Timestamp
}
