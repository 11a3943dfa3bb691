package mysql

import (
	"math"
	"testing"
	"time"

	"github.com/leapstack-labs/multiquery/pkg/core"
	"github.com/leapstack-labs/multiquery/pkg/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	chain := Chain()

	tests := []struct {
		name     string
		cell     normalize.SQLCell
		wantKind core.Kind
		wantJSON string
	}{
		{"null", normalize.SQLCell{Value: nil, Type: "INT"}, core.KindNull, `null`},
		{"native int", normalize.SQLCell{Value: int64(-42), Type: "BIGINT"}, core.KindInt, `-42`},
		{"text int", normalize.SQLCell{Value: []byte("42"), Type: "INT"}, core.KindInt, `42`},
		{"text int64 min", normalize.SQLCell{Value: []byte("-9223372036854775808"), Type: "BIGINT"}, core.KindInt, `-9223372036854775808`},
		{"native unsigned max", normalize.SQLCell{Value: uint64(math.MaxUint64), Type: "UNSIGNED BIGINT"}, core.KindDecimal, `"18446744073709551615"`},
		{"text unsigned max", normalize.SQLCell{Value: []byte("18446744073709551615"), Type: "UNSIGNED BIGINT"}, core.KindDecimal, `"18446744073709551615"`},
		{"year", normalize.SQLCell{Value: []byte("2024"), Type: "YEAR"}, core.KindInt, `2024`},
		{"bit", normalize.SQLCell{Value: []byte{0x01, 0x00}, Type: "BIT"}, core.KindInt, `256`},
		{"text float", normalize.SQLCell{Value: []byte("1.5"), Type: "FLOAT"}, core.KindFloat, `1.5`},
		{"text double", normalize.SQLCell{Value: []byte("0.1"), Type: "DOUBLE"}, core.KindFloat, `0.1`},
		{"decimal lossless", normalize.SQLCell{Value: []byte("123.45"), Type: "DECIMAL"}, core.KindFloat, `123.45`},
		{"decimal exact", normalize.SQLCell{Value: []byte("12345678901234567890.12"), Type: "DECIMAL"}, core.KindDecimal, `"12345678901234567890.12"`},
		{"datetime parsed", normalize.SQLCell{Value: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Type: "DATETIME"}, core.KindTemporal, `"2024-01-02T03:04:05"`},
		{"date parsed", normalize.SQLCell{Value: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Type: "DATE"}, core.KindTemporal, `"2024-01-02"`},
		{"datetime text", normalize.SQLCell{Value: []byte("2024-01-02 03:04:05.5"), Type: "DATETIME"}, core.KindTemporal, `"2024-01-02T03:04:05.5"`},
		{"time text", normalize.SQLCell{Value: []byte("-12:30:00"), Type: "TIME"}, core.KindTemporal, `"-12:30:00"`},
		{"varchar", normalize.SQLCell{Value: []byte("héllo"), Type: "VARCHAR"}, core.KindString, `"héllo"`},
		{"enum", normalize.SQLCell{Value: []byte("small"), Type: "ENUM"}, core.KindString, `"small"`},
		{"json", normalize.SQLCell{Value: []byte(`{"a": [1, 2]}`), Type: "JSON"}, core.KindDocument, `{"a":[1,2]}`},
		{"blob", normalize.SQLCell{Value: []byte{0xde, 0xad}, Type: "BLOB"}, core.KindFallback, `"\\xdead"`},
		{"unknown text type", normalize.SQLCell{Value: []byte("POINT(1 2)"), Type: "UNKNOWN"}, core.KindFallback, `"POINT(1 2)"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := chain.Decode("col", tt.cell.Type, tt.cell)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, v.Kind())

			out, err := v.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.wantJSON, string(out))
		})
	}
}

func TestChain_Undecodable(t *testing.T) {
	_, err := Chain().Decode("raw", "UNKNOWN", normalize.SQLCell{Value: []byte{0xff, 0xfe}, Type: "UNKNOWN"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUndecodableColumn)
}
