package normalize

import (
	"strconv"

	"github.com/leapstack-labs/multiquery/pkg/core"
)

// Column describes one result-set column and the output key it maps to.
type Column struct {
	Key  string
	Name string
	Type string
}

// Keys computes unique output keys for the given column names. The n-th
// repeat of a name gets the suffix _n. The provenance key counts as taken, and
// a generated key that collides with an existing one keeps counting up.
func Keys(names []string) []string {
	taken := map[string]bool{core.ProvenanceKey: true}
	seen := make(map[string]int, len(names))
	keys := make([]string, len(names))

	for i, name := range names {
		n := seen[name]
		key := name
		if n > 0 || taken[key] {
			if n == 0 {
				n = 1
			}
			key = name + "_" + strconv.Itoa(n)
			for taken[key] {
				n++
				key = name + "_" + strconv.Itoa(n)
			}
		}
		seen[name] = n + 1
		taken[key] = true
		keys[i] = key
	}
	return keys
}

// Columns pairs names with their database types and output keys. types may
// be shorter than names; missing types are empty.
func Columns(names, types []string) []Column {
	keys := Keys(names)
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Key: keys[i], Name: name}
		if i < len(types) {
			cols[i].Type = types[i]
		}
	}
	return cols
}

// Build decodes one row. Decoding is total: either every column decodes or
// the row is rejected, so partial rows never reach the output.
func Build[C any](target string, cols []Column, cells []C, chain *Chain[C]) (*core.Row, error) {
	row := core.NewRow(target)
	for i, col := range cols {
		v, err := chain.Decode(col.Name, col.Type, cells[i])
		if err != nil {
			return nil, err
		}
		if err := row.Set(col.Key, v); err != nil {
			return nil, err
		}
	}
	return row, nil
}
