package postgres

import (
	"errors"
	"slices"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/leapstack-labs/multiquery/pkg/core"
	"github.com/leapstack-labs/multiquery/pkg/normalize"
)

// OIDs pgtype does not export.
const (
	qcharOID   = 18
	unknownOID = 705
)

// Cell is one raw PostgreSQL value with everything needed to decode it.
type Cell struct {
	Map    *pgtype.Map
	OID    uint32
	Format int16
	Raw    []byte
}

// Chain returns the PostgreSQL decoder chain, keyed by type OID and ordered
// from the narrowest type to the widest.
func Chain() *normalize.Chain[Cell] {
	return normalize.NewChain[Cell](fallback,
		oidDecoder("int2", []uint32{pgtype.Int2OID}, func(c Cell) (core.Value, error) {
			v, err := scan[int16](c)
			return core.Int(int64(v)), err
		}),
		oidDecoder("int4", []uint32{pgtype.Int4OID}, func(c Cell) (core.Value, error) {
			v, err := scan[int32](c)
			return core.Int(int64(v)), err
		}),
		oidDecoder("int8", []uint32{pgtype.Int8OID}, func(c Cell) (core.Value, error) {
			v, err := scan[int64](c)
			return core.Int(v), err
		}),
		oidDecoder("float4", []uint32{pgtype.Float4OID}, func(c Cell) (core.Value, error) {
			v, err := scan[float32](c)
			return core.Float32(v), err
		}),
		oidDecoder("float8", []uint32{pgtype.Float8OID}, func(c Cell) (core.Value, error) {
			v, err := scan[float64](c)
			return core.Float(v), err
		}),
		oidDecoder("numeric", []uint32{pgtype.NumericOID}, func(c Cell) (core.Value, error) {
			v, err := scan[pgtype.Numeric](c)
			return numericValue(v), err
		}),
		oidDecoder("bool", []uint32{pgtype.BoolOID}, func(c Cell) (core.Value, error) {
			v, err := scan[bool](c)
			return core.Bool(v), err
		}),
		oidDecoder("text", []uint32{pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID, pgtype.NameOID, qcharOID, unknownOID},
			func(c Cell) (core.Value, error) {
				v, err := scan[string](c)
				return core.String(v), err
			}),
		oidDecoder("timestamp", []uint32{pgtype.TimestampOID}, func(c Cell) (core.Value, error) {
			v, err := scan[pgtype.Timestamp](c)
			if inf, ok := infinity(v.InfinityModifier); ok {
				return inf, err
			}
			return core.Temporal(normalize.FormatTime(v.Time, normalize.Timestamp)), err
		}),
		oidDecoder("date", []uint32{pgtype.DateOID}, func(c Cell) (core.Value, error) {
			v, err := scan[pgtype.Date](c)
			if inf, ok := infinity(v.InfinityModifier); ok {
				return inf, err
			}
			return core.Temporal(normalize.FormatTime(v.Time, normalize.Date)), err
		}),
		oidDecoder("time", []uint32{pgtype.TimeOID}, func(c Cell) (core.Value, error) {
			v, err := scan[pgtype.Time](c)
			return core.Temporal(normalize.FormatMicros(v.Microseconds)), err
		}),
		oidDecoder("timestamptz", []uint32{pgtype.TimestamptzOID}, func(c Cell) (core.Value, error) {
			v, err := scan[pgtype.Timestamptz](c)
			if inf, ok := infinity(v.InfinityModifier); ok {
				return inf, err
			}
			return core.Temporal(normalize.FormatTime(v.Time, normalize.TimestampTZ)), err
		}),
		oidDecoder("json", []uint32{pgtype.JSONOID, pgtype.JSONBOID}, func(c Cell) (core.Value, error) {
			v, err := scan[[]byte](c)
			if err != nil {
				return core.Value{}, err
			}
			return core.Document(v)
		}),
		oidDecoder("text[]", []uint32{pgtype.TextArrayOID, pgtype.VarcharArrayOID, pgtype.BPCharArrayOID}, func(c Cell) (core.Value, error) {
			v, err := scanArray[*string](c)
			return array(v, core.String), err
		}),
		oidDecoder("int4[]", []uint32{pgtype.Int2ArrayOID, pgtype.Int4ArrayOID}, func(c Cell) (core.Value, error) {
			v, err := scanArray[*int32](c)
			return array(v, func(i int32) core.Value { return core.Int(int64(i)) }), err
		}),
		oidDecoder("int8[]", []uint32{pgtype.Int8ArrayOID}, func(c Cell) (core.Value, error) {
			v, err := scanArray[*int64](c)
			return array(v, core.Int), err
		}),
		oidDecoder("float4[]", []uint32{pgtype.Float4ArrayOID}, func(c Cell) (core.Value, error) {
			v, err := scanArray[*float32](c)
			return array(v, core.Float32), err
		}),
		oidDecoder("float8[]", []uint32{pgtype.Float8ArrayOID}, func(c Cell) (core.Value, error) {
			v, err := scanArray[*float64](c)
			return array(v, core.Float), err
		}),
		oidDecoder("bool[]", []uint32{pgtype.BoolArrayOID}, func(c Cell) (core.Value, error) {
			v, err := scanArray[*bool](c)
			return array(v, core.Bool), err
		}),
		oidDecoder("numeric[]", []uint32{pgtype.NumericArrayOID}, func(c Cell) (core.Value, error) {
			v, err := scanArray[pgtype.Numeric](c)
			out := make([]core.Value, len(v))
			for i, n := range v {
				out[i] = numericValue(n)
			}
			return core.Array(out), err
		}),
		oidDecoder("uuid", []uint32{pgtype.UUIDOID}, func(c Cell) (core.Value, error) {
			v, err := scan[pgtype.UUID](c)
			return core.String(uuid.UUID(v.Bytes).String()), err
		}),
		oidDecoder("bytea", []uint32{pgtype.ByteaOID}, func(c Cell) (core.Value, error) {
			v, err := scan[[]byte](c)
			return core.Fallback(normalize.HexBytes(v)), err
		}),
	)
}

// oidDecoder claims cells whose OID is in oids. A NULL cell is Null and a
// scan error makes the decoder not applicable.
func oidDecoder(name string, oids []uint32, decode func(Cell) (core.Value, error)) normalize.Decoder[Cell] {
	return normalize.Decoder[Cell]{
		Name: name,
		Decode: func(c Cell) (core.Value, normalize.Outcome) {
			if !slices.Contains(oids, c.OID) {
				return core.Value{}, normalize.NotApplicable
			}
			if c.Raw == nil {
				return core.Null(), normalize.Null
			}
			v, err := decode(c)
			if err != nil {
				return core.Value{}, normalize.NotApplicable
			}
			return v, normalize.Decoded
		},
	}
}

func scan[T any](c Cell) (T, error) {
	var v T
	err := c.Map.Scan(c.OID, c.Format, c.Raw, &v)
	return v, err
}

var errMultiDim = errors.New("multi-dimensional array")

// scanArray scans a one-dimensional array. Arrays with more dimensions are
// rejected so they reach the fallback with their shape intact.
func scanArray[T any](c Cell) ([]T, error) {
	v, err := scan[pgtype.Array[T]](c)
	if err != nil {
		return nil, err
	}
	if len(v.Dims) > 1 {
		return nil, errMultiDim
	}
	return v.Elements, nil
}

// array maps a scanned slice; nil elements are SQL NULLs.
func array[T any](elems []*T, conv func(T) core.Value) core.Value {
	out := make([]core.Value, len(elems))
	for i, e := range elems {
		if e == nil {
			out[i] = core.Null()
			continue
		}
		out[i] = conv(*e)
	}
	return core.Array(out)
}

func numericValue(n pgtype.Numeric) core.Value {
	switch {
	case !n.Valid:
		return core.Null()
	case n.NaN:
		return core.DecimalFromText("NaN")
	case n.InfinityModifier == pgtype.Infinity:
		return core.DecimalFromText("Infinity")
	case n.InfinityModifier == pgtype.NegativeInfinity:
		return core.DecimalFromText("-Infinity")
	}
	return normalize.Decimal(n.Int, int(n.Exp))
}

func infinity(m pgtype.InfinityModifier) (core.Value, bool) {
	switch m {
	case pgtype.Infinity:
		return core.Temporal("infinity"), true
	case pgtype.NegativeInfinity:
		return core.Temporal("-infinity"), true
	}
	return core.Value{}, false
}

// fallback passes text-format values through verbatim. Binary values are
// decoded by their codec and re-encoded in text format, which covers enums,
// intervals, network types and the like.
func fallback(c Cell) (core.Value, bool) {
	if c.Raw == nil {
		return core.Null(), true
	}
	if c.Format == pgtype.TextFormatCode {
		if utf8.Valid(c.Raw) {
			return core.Fallback(string(c.Raw)), true
		}
		return core.Value{}, false
	}

	t, ok := c.Map.TypeForOID(c.OID)
	if !ok {
		return core.Value{}, false
	}
	v, err := decodeValue(c, t)
	if err != nil {
		return core.Value{}, false
	}
	text, err := c.Map.Encode(c.OID, pgtype.TextFormatCode, v, nil)
	if err != nil || !utf8.Valid(text) {
		return core.Value{}, false
	}
	return core.Fallback(string(text)), true
}

// decodeValue decodes a binary cell for re-encoding. Arrays go through
// pgtype.Array so their dimensions survive the round trip.
func decodeValue(c Cell, t *pgtype.Type) (any, error) {
	if _, ok := t.Codec.(*pgtype.ArrayCodec); ok {
		var arr pgtype.Array[any]
		if err := c.Map.Scan(c.OID, c.Format, c.Raw, &arr); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return t.Codec.DecodeValue(c.Map, c.OID, c.Format, c.Raw)
}
