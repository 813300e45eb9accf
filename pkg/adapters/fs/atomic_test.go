package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "out.json")
		require.NoError(t, writeFileAtomic(filename, []byte("hello atomic"), 0644))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "hello atomic", string(got))
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "out.json")
		require.NoError(t, os.WriteFile(filename, []byte("initial"), 0644))
		require.NoError(t, writeFileAtomic(filename, []byte("overwritten"), 0644))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "overwritten", string(got))
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, writeFileAtomic(filepath.Join(dir, "a.txt"), []byte("a"), 0644))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), "stale temp file %s", e.Name())
		}
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing_folder", "out.json")
		assert.Error(t, writeFileAtomic(filename, []byte("fail"), 0644))
	})
}

func TestWriteFile_CreatesParents(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "nested", "dir", "out.json")
	require.NoError(t, WriteFile(filename, []byte("[]")))

	got, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}
