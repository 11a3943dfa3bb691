package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQuery(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "q.sql")
	require.NoError(t, os.WriteFile(file, []byte("SELECT 1;\n"), 0o600))
	blank := filepath.Join(dir, "blank.sql")
	require.NoError(t, os.WriteFile(blank, []byte("  \n"), 0o600))

	tests := []struct {
		name      string
		in        string
		path      string
		want      string
		errSubstr string
	}{
		{name: "file verbatim", path: file, want: "SELECT 1;\n"},
		{name: "file wins over stdin", in: "SELECT 2", path: file, want: "SELECT 1;\n"},
		{name: "piped stdin", in: "SELECT 2", want: "SELECT 2"},
		{name: "dash reads stdin", in: "SELECT 3", path: "-", want: "SELECT 3"},
		{name: "missing file", path: filepath.Join(dir, "nope.sql"), errSubstr: "failed to read query file"},
		{name: "blank file", path: blank, errSubstr: "query is empty"},
		{name: "empty stdin", in: "", errSubstr: "query is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readQuery(strings.NewReader(tt.in), tt.path)
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(strings.NewReader("x")))

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.False(t, isTerminal(f), "regular files are not terminals")
}
