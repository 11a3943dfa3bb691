package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindDecimal
	KindString
	KindTemporal
	KindDocument
	KindArray
	KindFallback
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindDecimal:  "decimal",
	KindString:   "string",
	KindTemporal: "temporal",
	KindDocument: "document",
	KindArray:    "array",
	KindFallback: "fallback",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is the backend-agnostic representation of one cell. The zero Value
// is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	doc  json.RawMessage
	arr  []Value
}

// Null returns the SQL NULL value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an exact 64-bit integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a 64-bit floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Float32 widens a 32-bit float through its shortest text form, so that
// 1.1 stays 1.1 instead of becoming 1.100000023841858.
func Float32(f float32) Value {
	wide, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		wide = float64(f)
	}
	return Float(wide)
}

// String returns a text value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Temporal returns a date, time or timestamp in ISO-8601 text form.
func Temporal(s string) Value { return Value{kind: KindTemporal, s: s} }

// Fallback returns the generic text rendering of a dialect-specific type.
func Fallback(s string) Value { return Value{kind: KindFallback, s: s} }

// Array returns a list value. A nil slice still produces an empty list;
// NULL arrays must be represented with Null.
func Array(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

// Document returns an embedded JSON document. The input is validated and
// compacted onto a single line.
func Document(raw []byte) (Value, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return Value{}, fmt.Errorf("invalid json document: %w", err)
	}
	return Value{kind: KindDocument, doc: json.RawMessage(buf.Bytes())}, nil
}

// DecimalFromText renders an exact decimal. It becomes a Float when the text
// converts to float64 without losing digits, and stays exact text otherwise.
func DecimalFromText(text string) Value {
	canon, ok := canonicalDecimal(text)
	if !ok {
		return Value{kind: KindDecimal, s: strings.TrimSpace(text)}
	}
	f, err := strconv.ParseFloat(canon, 64)
	if err != nil || math.IsInf(f, 0) {
		return Value{kind: KindDecimal, s: strings.TrimSpace(text)}
	}
	back, _ := canonicalDecimal(strconv.FormatFloat(f, 'f', -1, 64))
	if back != canon {
		return Value{kind: KindDecimal, s: strings.TrimSpace(text)}
	}
	return Float(f)
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is SQL NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the integer payload.
func (v Value) AsInt() int64 { return v.i }

// AsFloat returns the float payload.
func (v Value) AsFloat() float64 { return v.f }

// Text returns the payload of text-carrying kinds (string, decimal,
// temporal, fallback) and the raw JSON of documents.
func (v Value) Text() string {
	if v.kind == KindDocument {
		return string(v.doc)
	}
	return v.s
}

// Elems returns the elements of an array value.
func (v Value) Elems() []Value { return v.arr }

// MarshalJSON renders the value as JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		switch {
		case math.IsNaN(v.f):
			return []byte(`"NaN"`), nil
		case math.IsInf(v.f, 1):
			return []byte(`"Infinity"`), nil
		case math.IsInf(v.f, -1):
			return []byte(`"-Infinity"`), nil
		}
		return json.Marshal(v.f)
	case KindDocument:
		return v.doc, nil
	case KindArray:
		return json.Marshal(v.arr)
	default:
		return json.Marshal(v.s)
	}
}

// canonicalDecimal normalizes plain decimal notation: optional sign, digits,
// optional fraction. Leading integer zeros and trailing fraction zeros are
// removed and negative zero becomes "0". Exponent notation is rejected.
func canonicalDecimal(s string) (string, bool) {
	s = strings.TrimSpace(s)
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" && (!hasDot || fracPart == "") {
		return "", false
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return "", false
	}
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	fracPart = strings.TrimRight(fracPart, "0")

	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
