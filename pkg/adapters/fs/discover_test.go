package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("<records/>"), 0644))
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.xml", "nested/b.xml", "nested/deep/c.xml", "notes.txt")

	got, err := Discover(filepath.Join(root, "**", "*.xml"), filepath.Join(root, "a.xml"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.xml"),
		filepath.Join(root, "nested", "b.xml"),
		filepath.Join(root, "nested", "deep", "c.xml"),
	}, got)
}

func TestDiscover_Errors(t *testing.T) {
	root := t.TempDir()

	_, err := Discover(filepath.Join(root, "*.xml"))
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, err = Discover("docs/[.xml")
	assert.ErrorContains(t, err, "invalid pattern")
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern, path string
		want          bool
	}{
		{"", "anything", true},
		{"docs/**/*.xml", filepath.FromSlash("docs/a/b.xml"), true},
		{"docs/**/*.xml", filepath.FromSlash("other/b.xml"), false},
		{"*.xml", filepath.FromSlash("deep/dir/b.xml"), true},
		{"*.xml", "b.yaml", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(filepath.FromSlash(tt.pattern), tt.path), "%s ~ %s", tt.pattern, tt.path)
	}
}

func TestWatchRoot(t *testing.T) {
	assert.Equal(t, filepath.FromSlash("docs"), WatchRoot("docs/**/*.xml"))
	assert.Equal(t, ".", WatchRoot("*.xml"))
	assert.Equal(t, filepath.FromSlash("a/b"), WatchRoot("a/b/*.xml"))
}
