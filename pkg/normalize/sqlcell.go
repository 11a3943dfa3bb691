package normalize

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/leapstack-labs/multiquery/pkg/core"
)

// SQLCell is one database/sql scan result together with the column's
// declared database type name.
type SQLCell struct {
	Value any
	Type  string
}

// SQLChain is a decoder chain over database/sql cells.
type SQLChain = Chain[SQLCell]

// BaseType upper-cases a database type name and drops any parameter list,
// so "decimal(10,2)" becomes "DECIMAL".
func BaseType(typ string) string {
	typ = strings.ToUpper(strings.TrimSpace(typ))
	if i := strings.IndexByte(typ, '('); i >= 0 {
		typ = strings.TrimSpace(typ[:i])
	}
	return typ
}

// TypeIn reports whether the base type of typ is one of names.
func TypeIn(typ string, names ...string) bool {
	base := BaseType(typ)
	for _, n := range names {
		if base == n {
			return true
		}
	}
	return false
}

// HexBytes renders binary data the way PostgreSQL prints bytea.
func HexBytes(b []byte) string {
	return `\x` + hex.EncodeToString(b)
}

// BigInt renders an arbitrary precision integer, exactly as Int when it fits
// in 64 bits and as decimal text otherwise.
func BigInt(n *big.Int) core.Value {
	if n.IsInt64() {
		return core.Int(n.Int64())
	}
	return core.DecimalFromText(n.String())
}

// SQLDecoder adapts a match function to a Decoder. nil cells are Null for
// every SQL decoder.
func SQLDecoder(name string, match func(SQLCell) (core.Value, bool)) Decoder[SQLCell] {
	return Decoder[SQLCell]{
		Name: name,
		Decode: func(c SQLCell) (core.Value, Outcome) {
			if c.Value == nil {
				return core.Null(), Null
			}
			if v, ok := match(c); ok {
				return v, Decoded
			}
			return core.Value{}, NotApplicable
		},
	}
}

// IntegerDecoder decodes every native Go integer width. Unsigned values
// beyond int64 are rendered as exact decimal text.
func IntegerDecoder() Decoder[SQLCell] {
	return SQLDecoder("integer", func(c SQLCell) (core.Value, bool) {
		switch v := c.Value.(type) {
		case int:
			return core.Int(int64(v)), true
		case int8:
			return core.Int(int64(v)), true
		case int16:
			return core.Int(int64(v)), true
		case int32:
			return core.Int(int64(v)), true
		case int64:
			return core.Int(v), true
		case uint8:
			return core.Int(int64(v)), true
		case uint16:
			return core.Int(int64(v)), true
		case uint32:
			return core.Int(int64(v)), true
		case uint:
			return unsigned(uint64(v)), true
		case uint64:
			return unsigned(v), true
		case *big.Int:
			if v == nil {
				return core.Value{}, false
			}
			return BigInt(v), true
		}
		return core.Value{}, false
	})
}

func unsigned(u uint64) core.Value {
	if u <= math.MaxInt64 {
		return core.Int(int64(u))
	}
	return core.DecimalFromText(new(big.Int).SetUint64(u).String())
}

// FloatDecoder decodes float32 and float64.
func FloatDecoder() Decoder[SQLCell] {
	return SQLDecoder("float", func(c SQLCell) (core.Value, bool) {
		switch v := c.Value.(type) {
		case float32:
			return core.Float32(v), true
		case float64:
			return core.Float(v), true
		}
		return core.Value{}, false
	})
}

// BoolDecoder decodes native booleans.
func BoolDecoder() Decoder[SQLCell] {
	return SQLDecoder("bool", func(c SQLCell) (core.Value, bool) {
		if b, ok := c.Value.(bool); ok {
			return core.Bool(b), true
		}
		return core.Value{}, false
	})
}

// TextDecoder decodes valid UTF-8 strings.
func TextDecoder() Decoder[SQLCell] {
	return SQLDecoder("text", func(c SQLCell) (core.Value, bool) {
		if s, ok := c.Value.(string); ok && utf8.ValidString(s) {
			return core.String(s), true
		}
		return core.Value{}, false
	})
}

// TimeDecoder decodes time.Time, rendered according to the column type.
func TimeDecoder(kindOf func(typ string) TimeKind) Decoder[SQLCell] {
	return SQLDecoder("time", func(c SQLCell) (core.Value, bool) {
		if t, ok := c.Value.(time.Time); ok {
			return core.Temporal(FormatTime(t, kindOf(c.Type))), true
		}
		return core.Value{}, false
	})
}

// BinaryDecoder renders raw bytes of binary columns as hex text.
func BinaryDecoder(isBinary func(typ string) bool) Decoder[SQLCell] {
	return SQLDecoder("binary", func(c SQLCell) (core.Value, bool) {
		if b, ok := c.Value.([]byte); ok && isBinary(c.Type) {
			return core.Fallback(HexBytes(b)), true
		}
		return core.Value{}, false
	})
}

// TextFallback is the last resort for database/sql cells: UTF-8 bytes and
// strings become fallback text, Stringers use their String method.
func TextFallback(c SQLCell) (core.Value, bool) {
	switch v := c.Value.(type) {
	case nil:
		return core.Null(), true
	case []byte:
		if utf8.Valid(v) {
			return core.Fallback(string(v)), true
		}
	case string:
		if utf8.ValidString(v) {
			return core.Fallback(v), true
		}
	case fmt.Stringer:
		return core.Fallback(v.String()), true
	}
	return core.Value{}, false
}

// JSONDecoder embeds text or byte cells of JSON columns as documents.
func JSONDecoder(isJSON func(typ string) bool) Decoder[SQLCell] {
	return SQLDecoder("json", func(c SQLCell) (core.Value, bool) {
		if !isJSON(c.Type) {
			return core.Value{}, false
		}
		var raw []byte
		switch v := c.Value.(type) {
		case string:
			raw = []byte(v)
		case []byte:
			raw = v
		default:
			return core.Value{}, false
		}
		doc, err := core.Document(raw)
		if err != nil {
			return core.Value{}, false
		}
		return doc, true
	})
}
