package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix is the prefix of the temporary files used for atomic writes.
const TempFilePrefix = "kiln-tmp-"

// WriteFile writes data to filename atomically, creating the parent directory when needed.
// Readers of filename observe either the previous content or data, never a partial write.
func WriteFile(filename string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return writeFileAtomic(filename, data, 0644)
}

// writeFileAtomic stages data in a temp file next to filename and renames it into place.
// The directory of filename must exist.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	staged := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(staged)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(staged, perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err = os.Rename(staged, filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}
