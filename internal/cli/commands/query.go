package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// stdinQuery is the --query value that forces reading from stdin.
const stdinQuery = "-"

// ErrNoQuery is returned when no query file is given and stdin is a terminal.
var ErrNoQuery = errors.New("no query given\nHint: use --query FILE or pipe SQL on stdin")

// readQuery returns the SQL text from path, or from in when path is empty
// (and in is not a terminal) or "-". The text is passed through verbatim.
func readQuery(in io.Reader, path string) (string, error) {
	var (
		content []byte
		err     error
	)
	switch {
	case path != "" && path != stdinQuery:
		content, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read query file %s: %w", path, err)
		}
	case path == stdinQuery || !isTerminal(in):
		content, err = io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
	default:
		return "", ErrNoQuery
	}

	query := string(content)
	if strings.TrimSpace(query) == "" {
		return "", errors.New("query is empty")
	}
	return query, nil
}

// isTerminal reports whether r is an interactive terminal. Readers that are
// not files (tests, pipes wrapped by cobra) count as piped input.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
