package postgres

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/leapstack-labs/multiquery/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binaryCell(t *testing.T, m *pgtype.Map, oid uint32, v any) Cell {
	t.Helper()
	raw, err := m.Encode(oid, pgtype.BinaryFormatCode, v, nil)
	require.NoError(t, err)
	return Cell{Map: m, OID: oid, Format: pgtype.BinaryFormatCode, Raw: raw}
}

func textCell(m *pgtype.Map, oid uint32, s string) Cell {
	return Cell{Map: m, OID: oid, Format: pgtype.TextFormatCode, Raw: []byte(s)}
}

func strPtr(s string) *string { return &s }

func TestChain_Scalars(t *testing.T) {
	m := pgtype.NewMap()
	chain := Chain()

	loc := time.FixedZone("plus2", 2*60*60)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name     string
		cell     Cell
		wantKind core.Kind
		check    func(t *testing.T, v core.Value)
	}{
		{
			name:     "int8 max",
			cell:     binaryCell(t, m, pgtype.Int8OID, int64(math.MaxInt64)),
			wantKind: core.KindInt,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, int64(math.MaxInt64), v.AsInt()) },
		},
		{
			name:     "int8 min",
			cell:     binaryCell(t, m, pgtype.Int8OID, int64(math.MinInt64)),
			wantKind: core.KindInt,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, int64(math.MinInt64), v.AsInt()) },
		},
		{
			name:     "int2",
			cell:     binaryCell(t, m, pgtype.Int2OID, int16(-7)),
			wantKind: core.KindInt,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, int64(-7), v.AsInt()) },
		},
		{
			name:     "float4",
			cell:     binaryCell(t, m, pgtype.Float4OID, float32(0.1)),
			wantKind: core.KindFloat,
			check:    func(t *testing.T, v core.Value) { assert.InDelta(t, 0.1, v.AsFloat(), 0) },
		},
		{
			name:     "numeric lossless",
			cell:     binaryCell(t, m, pgtype.NumericOID, pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}),
			wantKind: core.KindFloat,
			check:    func(t *testing.T, v core.Value) { assert.InDelta(t, 123.45, v.AsFloat(), 0) },
		},
		{
			name:     "numeric exact",
			cell:     textCell(m, pgtype.NumericOID, "1234567890123456789012345.6789"),
			wantKind: core.KindDecimal,
			check: func(t *testing.T, v core.Value) {
				assert.Equal(t, "1234567890123456789012345.6789", v.Text())
			},
		},
		{
			name:     "numeric NaN",
			cell:     binaryCell(t, m, pgtype.NumericOID, pgtype.Numeric{NaN: true, Valid: true}),
			wantKind: core.KindDecimal,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, "NaN", v.Text()) },
		},
		{
			name:     "bool",
			cell:     binaryCell(t, m, pgtype.BoolOID, true),
			wantKind: core.KindBool,
			check:    func(t *testing.T, v core.Value) { assert.True(t, v.AsBool()) },
		},
		{
			name:     "varchar",
			cell:     binaryCell(t, m, pgtype.VarcharOID, "héllo"),
			wantKind: core.KindString,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, "héllo", v.Text()) },
		},
		{
			name:     "timestamp",
			cell:     binaryCell(t, m, pgtype.TimestampOID, pgtype.Timestamp{Time: time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.UTC), Valid: true}),
			wantKind: core.KindTemporal,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, "2024-01-02T03:04:05.123456", v.Text()) },
		},
		{
			name:     "timestamp infinity",
			cell:     binaryCell(t, m, pgtype.TimestampOID, pgtype.Timestamp{InfinityModifier: pgtype.Infinity, Valid: true}),
			wantKind: core.KindTemporal,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, "infinity", v.Text()) },
		},
		{
			name:     "timestamptz normalized to UTC",
			cell:     binaryCell(t, m, pgtype.TimestamptzOID, pgtype.Timestamptz{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, loc), Valid: true}),
			wantKind: core.KindTemporal,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, "2024-01-02T01:04:05Z", v.Text()) },
		},
		{
			name:     "date",
			cell:     binaryCell(t, m, pgtype.DateOID, pgtype.Date{Time: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Valid: true}),
			wantKind: core.KindTemporal,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, "2024-02-29", v.Text()) },
		},
		{
			name:     "time",
			cell:     binaryCell(t, m, pgtype.TimeOID, pgtype.Time{Microseconds: 3_723_500_000, Valid: true}),
			wantKind: core.KindTemporal,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, "01:02:03.5", v.Text()) },
		},
		{
			name:     "time end of day",
			cell:     binaryCell(t, m, pgtype.TimeOID, pgtype.Time{Microseconds: 86_400_000_000, Valid: true}),
			wantKind: core.KindTemporal,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, "24:00:00", v.Text()) },
		},
		{
			name:     "json",
			cell:     textCell(m, pgtype.JSONOID, `{"a": [1, 2]}`),
			wantKind: core.KindDocument,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, `{"a":[1,2]}`, v.Text()) },
		},
		{
			name:     "jsonb",
			cell:     binaryCell(t, m, pgtype.JSONBOID, []byte(`{"b": true}`)),
			wantKind: core.KindDocument,
			check:    func(t *testing.T, v core.Value) { assert.JSONEq(t, `{"b":true}`, v.Text()) },
		},
		{
			name:     "uuid",
			cell:     binaryCell(t, m, pgtype.UUIDOID, pgtype.UUID{Bytes: id, Valid: true}),
			wantKind: core.KindString,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, id.String(), v.Text()) },
		},
		{
			name:     "bytea",
			cell:     binaryCell(t, m, pgtype.ByteaOID, []byte{0x01, 0x02, 0xff}),
			wantKind: core.KindFallback,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, `\x0102ff`, v.Text()) },
		},
		{
			name:     "enum text falls back verbatim",
			cell:     textCell(m, 99999, "happy"),
			wantKind: core.KindFallback,
			check:    func(t *testing.T, v core.Value) { assert.Equal(t, "happy", v.Text()) },
		},
		{
			name:     "binary interval re-encoded as text",
			cell:     binaryCell(t, m, pgtype.IntervalOID, pgtype.Interval{Days: 1, Valid: true}),
			wantKind: core.KindFallback,
			check:    func(t *testing.T, v core.Value) { assert.Contains(t, v.Text(), "1 day") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := chain.Decode("col", "t", tt.cell)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, v.Kind())
			tt.check(t, v)
		})
	}
}

func TestChain_Null(t *testing.T) {
	m := pgtype.NewMap()
	chain := Chain()

	for _, oid := range []uint32{pgtype.Int4OID, pgtype.TextOID, pgtype.Int4ArrayOID, pgtype.JSONBOID, 99999} {
		v, err := chain.Decode("col", "t", Cell{Map: m, OID: oid, Format: pgtype.BinaryFormatCode})
		require.NoError(t, err)
		assert.True(t, v.IsNull(), "oid %d", oid)
	}
}

func TestChain_Arrays(t *testing.T) {
	m := pgtype.NewMap()
	chain := Chain()

	t.Run("empty array is not null", func(t *testing.T) {
		v, err := chain.Decode("col", "_int4", binaryCell(t, m, pgtype.Int4ArrayOID, []int32{}))
		require.NoError(t, err)
		assert.Equal(t, core.KindArray, v.Kind())
		assert.Empty(t, v.Elems())

		out, err := v.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, "[]", string(out))
	})

	t.Run("text elements with null", func(t *testing.T) {
		v, err := chain.Decode("col", "_text", binaryCell(t, m, pgtype.TextArrayOID, []*string{strPtr("a"), nil}))
		require.NoError(t, err)
		require.Len(t, v.Elems(), 2)
		assert.Equal(t, "a", v.Elems()[0].Text())
		assert.True(t, v.Elems()[1].IsNull())
	})

	t.Run("int8 extremes", func(t *testing.T) {
		v, err := chain.Decode("col", "_int8", binaryCell(t, m, pgtype.Int8ArrayOID, []int64{math.MinInt64, math.MaxInt64}))
		require.NoError(t, err)
		require.Len(t, v.Elems(), 2)
		assert.Equal(t, int64(math.MinInt64), v.Elems()[0].AsInt())
		assert.Equal(t, int64(math.MaxInt64), v.Elems()[1].AsInt())
	})

	t.Run("numeric elements", func(t *testing.T) {
		v, err := chain.Decode("col", "_numeric", binaryCell(t, m, pgtype.NumericArrayOID, []pgtype.Numeric{
			{Int: big.NewInt(15), Exp: -1, Valid: true},
			{},
		}))
		require.NoError(t, err)
		require.Len(t, v.Elems(), 2)
		assert.InDelta(t, 1.5, v.Elems()[0].AsFloat(), 0)
		assert.True(t, v.Elems()[1].IsNull())
	})
}

func TestChain_MultiDimensionalArrays(t *testing.T) {
	m := pgtype.NewMap()
	chain := Chain()

	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"binary int4", binaryCell(t, m, pgtype.Int4ArrayOID, [][]int32{{1, 2}, {3, 4}}), "{{1,2},{3,4}}"},
		{"binary text", binaryCell(t, m, pgtype.TextArrayOID, [][]string{{"a"}, {"b"}}), "{{a},{b}}"},
		{"text int4", textCell(m, pgtype.Int4ArrayOID, "{{1,2},{3,4}}"), "{{1,2},{3,4}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := chain.Decode("col", "_int4", tt.cell)
			require.NoError(t, err)
			assert.Equal(t, core.KindFallback, v.Kind())
			assert.Equal(t, tt.want, v.Text())
		})
	}

	t.Run("one dimension still decodes", func(t *testing.T) {
		v, err := chain.Decode("col", "_int4", binaryCell(t, m, pgtype.Int4ArrayOID, []int32{1, 2}))
		require.NoError(t, err)
		assert.Equal(t, core.KindArray, v.Kind())
		assert.Len(t, v.Elems(), 2)
	})
}

func TestChain_Undecodable(t *testing.T) {
	m := pgtype.NewMap()
	_, err := Chain().Decode("blob", "oid:99999", Cell{Map: m, OID: 99999, Format: pgtype.BinaryFormatCode, Raw: []byte{0xff, 0xfe}})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUndecodableColumn)
	assert.Contains(t, err.Error(), "blob")
}

func TestChain_Order(t *testing.T) {
	names := Chain().Names()
	require.NotEmpty(t, names)
	assert.Equal(t, "int2", names[0])
	assert.Equal(t, "bytea", names[len(names)-1])
}
