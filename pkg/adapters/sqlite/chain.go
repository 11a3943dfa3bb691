package sqlite

import (
	"github.com/leapstack-labs/multiquery/pkg/core"
	"github.com/leapstack-labs/multiquery/pkg/normalize"
)

// Chain returns the SQLite decoder chain. SQLite values carry a storage
// class rather than a type, so the declared column type refines booleans,
// JSON and dates.
func Chain() *normalize.SQLChain {
	return normalize.NewChain[normalize.SQLCell](normalize.TextFallback,
		declaredBool(),
		normalize.IntegerDecoder(),
		normalize.FloatDecoder(),
		normalize.JSONDecoder(isJSON),
		normalize.TextDecoder(),
		normalize.TimeDecoder(timeKind),
		normalize.BinaryDecoder(func(string) bool { return true }),
	)
}

// declaredBool maps integer storage of BOOLEAN columns to booleans.
func declaredBool() normalize.Decoder[normalize.SQLCell] {
	return normalize.SQLDecoder("bool", func(c normalize.SQLCell) (core.Value, bool) {
		switch v := c.Value.(type) {
		case bool:
			return core.Bool(v), true
		case int64:
			if normalize.TypeIn(c.Type, "BOOLEAN", "BOOL") {
				return core.Bool(v != 0), true
			}
		}
		return core.Value{}, false
	})
}

func isJSON(typ string) bool {
	return normalize.TypeIn(typ, "JSON", "JSONB")
}

func timeKind(typ string) normalize.TimeKind {
	switch normalize.BaseType(typ) {
	case "DATE":
		return normalize.Date
	case "TIME":
		return normalize.TimeOfDay
	default:
		return normalize.Timestamp
	}
}
