package duckdb

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"

	"github.com/leapstack-labs/multiquery/pkg/core"
	"github.com/leapstack-labs/multiquery/pkg/normalize"
)

// Chain returns the DuckDB decoder chain. Nested values (LIST, STRUCT, MAP)
// are decoded element-wise through the same chain. The driver reports JSON
// columns as VARCHAR and hands them over already unmarshaled, so JSON
// objects and arrays arrive here as maps and slices.
func Chain() *normalize.SQLChain {
	var chain *normalize.SQLChain
	elem := func(v any, typ string) (core.Value, error) {
		return chain.Decode("", typ, normalize.SQLCell{Value: v, Type: typ})
	}

	chain = normalize.NewChain[normalize.SQLCell](textFallback,
		normalize.BoolDecoder(),
		normalize.IntegerDecoder(),
		normalize.FloatDecoder(),
		decimalDecoder(),
		uuidDecoder(),
		normalize.TextDecoder(),
		normalize.TimeDecoder(timeKind),
		listDecoder(elem),
		structDecoder(elem),
		mapDecoder(elem),
		intervalDecoder(),
		normalize.BinaryDecoder(func(string) bool { return true }),
	)
	return chain
}

func decimalDecoder() normalize.Decoder[normalize.SQLCell] {
	return normalize.SQLDecoder("decimal", func(c normalize.SQLCell) (core.Value, bool) {
		d, ok := c.Value.(duckdb.Decimal)
		if !ok || d.Value == nil {
			return core.Value{}, false
		}
		return normalize.Decimal(d.Value, -int(d.Scale)), true
	})
}

// uuidDecoder accepts the 16 raw bytes the driver returns for UUID columns.
func uuidDecoder() normalize.Decoder[normalize.SQLCell] {
	return normalize.SQLDecoder("uuid", func(c normalize.SQLCell) (core.Value, bool) {
		if !normalize.TypeIn(c.Type, "UUID") {
			return core.Value{}, false
		}
		if s, ok := c.Value.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				return core.String(id.String()), true
			}
			return core.Value{}, false
		}
		raw, ok := uuidBytes(c.Value)
		if !ok {
			return core.Value{}, false
		}
		id, err := uuid.FromBytes(raw)
		if err != nil {
			return core.Value{}, false
		}
		return core.String(id.String()), true
	})
}

func uuidBytes(v any) ([]byte, bool) {
	if b, ok := v.([]byte); ok {
		return b, len(b) == 16
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Array || rv.Len() != 16 || rv.Type().Elem().Kind() != reflect.Uint8 {
		return nil, false
	}
	b := make([]byte, 16)
	reflect.Copy(reflect.ValueOf(b), rv)
	return b, true
}

func listDecoder(elem func(any, string) (core.Value, error)) normalize.Decoder[normalize.SQLCell] {
	return normalize.SQLDecoder("list", func(c normalize.SQLCell) (core.Value, bool) {
		items, ok := c.Value.([]any)
		if !ok {
			return core.Value{}, false
		}
		typ := elemType(c.Type)
		out := make([]core.Value, len(items))
		for i, item := range items {
			v, err := elem(item, typ)
			if err != nil {
				return core.Value{}, false
			}
			out[i] = v
		}
		return core.Array(out), true
	})
}

func structDecoder(elem func(any, string) (core.Value, error)) normalize.Decoder[normalize.SQLCell] {
	return normalize.SQLDecoder("struct", func(c normalize.SQLCell) (core.Value, bool) {
		fields, ok := c.Value.(map[string]any)
		if !ok {
			return core.Value{}, false
		}
		types := structFieldTypes(c.Type)
		obj := make(map[string]core.Value, len(fields))
		for k, f := range fields {
			v, err := elem(f, types[k])
			if err != nil {
				return core.Value{}, false
			}
			obj[k] = v
		}
		return document(obj)
	})
}

func mapDecoder(elem func(any, string) (core.Value, error)) normalize.Decoder[normalize.SQLCell] {
	return normalize.SQLDecoder("map", func(c normalize.SQLCell) (core.Value, bool) {
		m, ok := c.Value.(duckdb.Map)
		if !ok {
			return core.Value{}, false
		}
		valType := mapValueType(c.Type)
		obj := make(map[string]core.Value, len(m))
		for k, item := range m {
			v, err := elem(item, valType)
			if err != nil {
				return core.Value{}, false
			}
			obj[fmt.Sprint(k)] = v
		}
		return document(obj)
	})
}

// document marshals obj with sorted keys.
func document(obj map[string]core.Value) (core.Value, bool) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return core.Value{}, false
	}
	doc, err := core.Document(raw)
	if err != nil {
		return core.Value{}, false
	}
	return doc, true
}

func intervalDecoder() normalize.Decoder[normalize.SQLCell] {
	return normalize.SQLDecoder("interval", func(c normalize.SQLCell) (core.Value, bool) {
		iv, ok := c.Value.(duckdb.Interval)
		if !ok {
			return core.Value{}, false
		}
		return core.Fallback(formatInterval(iv.Months, iv.Days, iv.Micros)), true
	})
}

// formatInterval renders an interval as an ISO-8601 duration, e.g.
// P1Y2M3DT4H5M6.5S.
func formatInterval(months, days int32, micros int64) string {
	var sb strings.Builder
	sb.WriteString("P")
	if y := months / 12; y != 0 {
		sb.WriteString(strconv.Itoa(int(y)) + "Y")
	}
	if m := months % 12; m != 0 {
		sb.WriteString(strconv.Itoa(int(m)) + "M")
	}
	if days != 0 {
		sb.WriteString(strconv.Itoa(int(days)) + "D")
	}
	if micros == 0 {
		if sb.Len() == 1 {
			return "PT0S"
		}
		return sb.String()
	}

	sb.WriteString("T")
	sign := ""
	if micros < 0 {
		sign = "-"
		micros = -micros
	}
	hours := micros / 3_600_000_000
	micros %= 3_600_000_000
	minutes := micros / 60_000_000
	micros %= 60_000_000
	if hours != 0 {
		sb.WriteString(sign + strconv.FormatInt(hours, 10) + "H")
	}
	if minutes != 0 {
		sb.WriteString(sign + strconv.FormatInt(minutes, 10) + "M")
	}
	if micros != 0 {
		secs := normalize.ScaledDecimal(big.NewInt(micros), -6)
		secs = strings.TrimRight(strings.TrimRight(secs, "0"), ".")
		sb.WriteString(sign + secs + "S")
	}
	return sb.String()
}

// textFallback renders anything else through its default formatting.
func textFallback(c normalize.SQLCell) (core.Value, bool) {
	if v, ok := normalize.TextFallback(c); ok {
		return v, true
	}
	return core.Fallback(fmt.Sprint(c.Value)), true
}

// elemType strips one list suffix: "INTEGER[]" and "INTEGER[3]" become
// "INTEGER". Types the driver reports only as LIST have no element type.
func elemType(typ string) string {
	typ = strings.TrimSpace(typ)
	if !strings.HasSuffix(typ, "]") {
		return ""
	}
	if i := strings.LastIndexByte(typ, '['); i > 0 {
		return typ[:i]
	}
	return ""
}

// structFieldTypes parses `STRUCT("a" INTEGER, "b" DATE)` into field types
// keyed by field name. Other type names yield nil.
func structFieldTypes(typ string) map[string]string {
	inner, ok := typeArgs(typ, "STRUCT")
	if !ok {
		return nil
	}
	types := make(map[string]string)
	for _, part := range splitTopLevel(inner) {
		name, rest, ok := unquoteField(part)
		if !ok {
			continue
		}
		types[name] = strings.TrimSpace(rest)
	}
	return types
}

// mapValueType returns V from `MAP(K, V)`.
func mapValueType(typ string) string {
	inner, ok := typeArgs(typ, "MAP")
	if !ok {
		return ""
	}
	parts := splitTopLevel(inner)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func typeArgs(typ, prefix string) (string, bool) {
	typ = strings.TrimSpace(typ)
	if !strings.HasPrefix(typ, prefix+"(") || !strings.HasSuffix(typ, ")") {
		return "", false
	}
	return typ[len(prefix)+1 : len(typ)-1], true
}

// splitTopLevel splits on commas outside parentheses and quoted names.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start, quoted := 0, 0, false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case '(':
			if !quoted {
				depth++
			}
		case ')':
			if !quoted {
				depth--
			}
		case ',':
			if !quoted && depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// unquoteField splits `"na""me" TYPE` into the field name and its type.
func unquoteField(s string) (string, string, bool) {
	if !strings.HasPrefix(s, `"`) {
		return "", "", false
	}
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] != '"' {
			sb.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '"' {
			sb.WriteByte('"')
			i++
			continue
		}
		return sb.String(), s[i+1:], true
	}
	return "", "", false
}

func timeKind(typ string) normalize.TimeKind {
	switch normalize.BaseType(typ) {
	case "DATE":
		return normalize.Date
	case "TIME", "TIMETZ", "TIME WITH TIME ZONE":
		return normalize.TimeOfDay
	case "TIMESTAMPTZ", "TIMESTAMP WITH TIME ZONE":
		return normalize.TimestampTZ
	default:
		return normalize.Timestamp
	}
}
