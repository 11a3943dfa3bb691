package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	out, err := json.Marshal(v)
	require.NoError(t, err)
	return string(out)
}

func TestValue_MarshalJSON(t *testing.T) {
	doc, err := Document([]byte("{\n  \"a\": [1, 2]\n}"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"null", Null(), `null`},
		{"zero value is null", Value{}, `null`},
		{"bool", Bool(true), `true`},
		{"int64 max", Int(math.MaxInt64), `9223372036854775807`},
		{"int64 min", Int(math.MinInt64), `-9223372036854775808`},
		{"float", Float(1.5), `1.5`},
		{"float32 widened by text", Float32(1.1), `1.1`},
		{"nan", Float(math.NaN()), `"NaN"`},
		{"positive infinity", Float(math.Inf(1)), `"Infinity"`},
		{"negative infinity", Float(math.Inf(-1)), `"-Infinity"`},
		{"string", String("héllo \"x\""), `"héllo \"x\""`},
		{"temporal", Temporal("2024-01-02T03:04:05"), `"2024-01-02T03:04:05"`},
		{"fallback", Fallback(`\x00ff`), `"\\x00ff"`},
		{"document compacted", doc, `{"a":[1,2]}`},
		{"empty array", Array(nil), `[]`},
		{"array with null", Array([]Value{Int(1), Null()}), `[1,null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, marshal(t, tt.value))
		})
	}
}

func TestDocument_Invalid(t *testing.T) {
	_, err := Document([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestDecimalFromText(t *testing.T) {
	tests := []struct {
		text     string
		wantKind Kind
		wantJSON string
	}{
		{"123.45", KindFloat, `123.45`},
		{"0.1", KindFloat, `0.1`},
		{"-0.00", KindFloat, `0`},
		{"100", KindFloat, `100`},
		{"1.10", KindFloat, `1.1`},
		{"12345678901234567890.12", KindDecimal, `"12345678901234567890.12"`},
		{"0.1000000000000000055511151231257827", KindDecimal, `"0.1000000000000000055511151231257827"`},
		{"9007199254740993", KindDecimal, `"9007199254740993"`},
		{"NaN", KindDecimal, `"NaN"`},
		{"1e10", KindDecimal, `"1e10"`},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v := DecimalFromText(tt.text)
			assert.Equal(t, tt.wantKind, v.Kind())
			assert.Equal(t, tt.wantJSON, marshal(t, v))
		})
	}
}

func TestCanonicalDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"007.500", "7.5", true},
		{"+1", "1", true},
		{"-0", "0", true},
		{".5", "0.5", true},
		{"5.", "5", true},
		{"", "", false},
		{".", "", false},
		{"1e5", "", false},
		{"1.2.3", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := canonicalDecimal(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "null", KindNull.String())
	assert.Equal(t, "decimal", KindDecimal.String())
	assert.Equal(t, "fallback", KindFallback.String())
}
