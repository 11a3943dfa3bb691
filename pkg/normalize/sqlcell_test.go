package normalize

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/leapstack-labs/multiquery/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestBaseType(t *testing.T) {
	assert.Equal(t, "DECIMAL", BaseType(" decimal(10,2) "))
	assert.Equal(t, "VARCHAR", BaseType("varchar"))
	assert.True(t, TypeIn("json", "JSON", "JSONB"))
	assert.False(t, TypeIn("TEXT", "JSON"))
}

func TestSQLDecoders(t *testing.T) {
	huge, _ := new(big.Int).SetString("170141183460469231731687303715884105727", 10)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 500000000, time.UTC)

	tests := []struct {
		name    string
		decoder Decoder[SQLCell]
		cell    SQLCell
		want    core.Value
		outcome Outcome
	}{
		{"nil is null", IntegerDecoder(), SQLCell{}, core.Null(), Null},
		{"int8", IntegerDecoder(), SQLCell{Value: int8(-3)}, core.Int(-3), Decoded},
		{"uint32", IntegerDecoder(), SQLCell{Value: uint32(7)}, core.Int(7), Decoded},
		{"uint64 fits", IntegerDecoder(), SQLCell{Value: uint64(math.MaxInt64)}, core.Int(math.MaxInt64), Decoded},
		{"uint64 overflow", IntegerDecoder(), SQLCell{Value: uint64(math.MaxUint64)}, core.DecimalFromText("18446744073709551615"), Decoded},
		{"big int", IntegerDecoder(), SQLCell{Value: huge}, core.DecimalFromText(huge.String()), Decoded},
		{"int rejects string", IntegerDecoder(), SQLCell{Value: "1"}, core.Value{}, NotApplicable},
		{"float32", FloatDecoder(), SQLCell{Value: float32(0.1)}, core.Float(0.1), Decoded},
		{"bool", BoolDecoder(), SQLCell{Value: false}, core.Bool(false), Decoded},
		{"text", TextDecoder(), SQLCell{Value: "héllo"}, core.String("héllo"), Decoded},
		{"text rejects invalid utf8", TextDecoder(), SQLCell{Value: "\xff"}, core.Value{}, NotApplicable},
		{"time", TimeDecoder(func(string) TimeKind { return Timestamp }), SQLCell{Value: ts}, core.Temporal("2024-01-02T03:04:05.5"), Decoded},
		{"binary", BinaryDecoder(func(string) bool { return true }), SQLCell{Value: []byte{0xca, 0xfe}}, core.Fallback(`\xcafe`), Decoded},
		{"binary by type only", BinaryDecoder(func(t string) bool { return t == "BLOB" }), SQLCell{Value: []byte{1}, Type: "TEXT"}, core.Value{}, NotApplicable},
		{"json invalid", JSONDecoder(func(string) bool { return true }), SQLCell{Value: "{"}, core.Value{}, NotApplicable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := tt.decoder.Decode(tt.cell)
			assert.Equal(t, tt.outcome, outcome)
			if outcome == Decoded {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

type stringer struct{}

func (stringer) String() string { return "custom" }

func TestTextFallback(t *testing.T) {
	v, ok := TextFallback(SQLCell{Value: []byte("abc")})
	assert.True(t, ok)
	assert.Equal(t, core.Fallback("abc"), v)

	v, ok = TextFallback(SQLCell{Value: stringer{}})
	assert.True(t, ok)
	assert.Equal(t, core.Fallback("custom"), v)

	v, ok = TextFallback(SQLCell{})
	assert.True(t, ok)
	assert.True(t, v.IsNull())

	_, ok = TextFallback(SQLCell{Value: []byte{0xff}})
	assert.False(t, ok)

	_, ok = TextFallback(SQLCell{Value: struct{}{}})
	assert.False(t, ok)
}
