package core

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row is one normalized result row. Field order is insertion order and the
// provenance key always comes first.
type Row struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// NewRow starts a row tagged with the producing target's name.
func NewRow(target string) *Row {
	fields := orderedmap.New[string, Value]()
	fields.Set(ProvenanceKey, String(target))
	return &Row{fields: fields}
}

// Set appends a field. Keys must be unique; a repeated key is an error
// rather than an overwrite.
func (r *Row) Set(key string, v Value) error {
	if _, present := r.fields.Get(key); present {
		return fmt.Errorf("duplicate row key %q", key)
	}
	r.fields.Set(key, v)
	return nil
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (Value, bool) {
	return r.fields.Get(key)
}

// Target returns the provenance tag.
func (r *Row) Target() string {
	v, _ := r.fields.Get(ProvenanceKey)
	return v.Text()
}

// Keys returns the field names in output order.
func (r *Row) Keys() []string {
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of fields, provenance key included.
func (r *Row) Len() int {
	return r.fields.Len()
}

// MarshalJSON renders the row as a JSON object in field order.
func (r *Row) MarshalJSON() ([]byte, error) {
	return r.fields.MarshalJSON()
}
