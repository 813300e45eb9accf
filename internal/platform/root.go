package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFile is the optional project configuration read by the CLI.
const ConfigFile = ".kiln.yaml"

// FindRoot recursively looks upwards for a project root indicator.
// Indicators are: a .kiln directory or a .kiln.yaml file.
// If found, returns the absolute path to the root.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, DefaultSystemDir) || hasFile(dir, ConfigFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	return err == nil
}
