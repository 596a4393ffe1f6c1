package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.csv"), "a\n1\n")
	writeFile(t, filepath.Join(root, "A.CSV"), "a\n1\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "x")
	writeFile(t, filepath.Join(root, ".hidden.csv"), "a\n1\n")
	writeFile(t, filepath.Join(root, "nested", "c.csv"), "a\n1\n")
	writeFile(t, filepath.Join(root, ".git", "d.csv"), "a\n1\n")
	writeFile(t, filepath.Join(root, "big.csv"), "a\n"+strings.Repeat("1\n", 500))

	rel := func(paths []string) []string {
		out := make([]string, len(paths))
		for i, p := range paths {
			r, err := filepath.Rel(root, p)
			require.NoError(t, err)
			out[i] = filepath.ToSlash(r)
		}
		return out
	}

	tests := []struct {
		name string
		opts DiscoverOptions
		want []string
	}{
		{"top level", DiscoverOptions{}, []string{"A.CSV", "b.csv", "big.csv"}},
		{"recursive", DiscoverOptions{Recursive: true}, []string{"A.CSV", "b.csv", "big.csv", "nested/c.csv"}},
		{"hidden", DiscoverOptions{Recursive: true, IncludeHidden: true}, []string{".git/d.csv", ".hidden.csv", "A.CSV", "b.csv", "big.csv", "nested/c.csv"}},
		{"max size", DiscoverOptions{MaxSize: 100}, []string{"A.CSV", "b.csv"}},
		{"min size", DiscoverOptions{MinSize: 100}, []string{"big.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := DiscoverFiles(root, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rel(files))
		})
	}
}

func TestDiscoverFiles_MissingRoot(t *testing.T) {
	_, err := DiscoverFiles(filepath.Join(t.TempDir(), "nope"), DiscoverOptions{})
	assert.Error(t, err)
}
