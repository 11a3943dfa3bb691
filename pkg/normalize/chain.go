package normalize

import (
	"github.com/leapstack-labs/multiquery/pkg/core"
)

// Outcome is the tri-state answer of a single decoder.
type Outcome uint8

// Decoder outcomes.
const (
	// NotApplicable means the cell is not of this decoder's type, or failed
	// to decode as it.
	NotApplicable Outcome = iota
	// Decoded means the decoder produced a non-null value.
	Decoded
	// Null means the cell is SQL NULL under this decoder's type.
	Null
)

// Decoder attempts to decode a cell as one candidate type.
type Decoder[C any] struct {
	Name   string
	Decode func(cell C) (core.Value, Outcome)
}

// Fallback renders a cell no decoder claimed. It returns false when the cell
// has no text representation either.
type Fallback[C any] func(cell C) (core.Value, bool)

// Chain is an ordered list of decoders plus a fallback, tried from the most
// specific type to the widest.
type Chain[C any] struct {
	decoders []Decoder[C]
	fallback Fallback[C]
}

// NewChain builds a chain. Decoders are tried in the given order.
func NewChain[C any](fallback Fallback[C], decoders ...Decoder[C]) *Chain[C] {
	return &Chain[C]{decoders: decoders, fallback: fallback}
}

// Names returns the decoder names in priority order.
func (c *Chain[C]) Names() []string {
	names := make([]string, len(c.decoders))
	for i, d := range c.decoders {
		names[i] = d.Name
	}
	return names
}

// Decode resolves one cell. column and typ are only used for error reporting.
func (c *Chain[C]) Decode(column, typ string, cell C) (core.Value, error) {
	sawNull := false
	for _, d := range c.decoders {
		v, outcome := d.Decode(cell)
		switch outcome {
		case Decoded:
			return v, nil
		case Null:
			sawNull = true
		}
	}
	if sawNull {
		return core.Null(), nil
	}
	if c.fallback != nil {
		if v, ok := c.fallback(cell); ok {
			return v, nil
		}
	}
	return core.Value{}, &core.UndecodableColumnError{Column: column, Type: typ}
}
