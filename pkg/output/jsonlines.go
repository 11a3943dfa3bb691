// Package output writes normalized rows as newline-delimited JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/leapstack-labs/multiquery/pkg/core"
)

type flusher interface {
	Flush() error
}

// JSONLines emits one JSON object per line. It is safe for concurrent use;
// each row is written with a single Write call so lines never interleave.
type JSONLines struct {
	mu sync.Mutex
	w  io.Writer
	n  int64
}

// NewJSONLines returns an emitter writing to w.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{w: w}
}

// Emit writes row as one line. Write and flush failures are reported as
// core.ErrIO.
func (j *JSONLines) Emit(row *core.Row) error {
	line, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(line); err != nil {
		return fmt.Errorf("%w: %w", core.ErrIO, err)
	}
	if f, ok := j.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("%w: %w", core.ErrIO, err)
		}
	}
	j.n++
	return nil
}

// Count returns the number of rows written so far.
func (j *JSONLines) Count() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.n
}
