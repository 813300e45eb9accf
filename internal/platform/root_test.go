package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   project/ (.kiln)
	//     subdir/nested/
	//   configured/ (.kiln.yaml)
	//   empty/
	baseDir := t.TempDir()
	projectDir := filepath.Join(baseDir, "project")
	nestedDir := filepath.Join(projectDir, "subdir", "nested")
	configuredDir := filepath.Join(baseDir, "configured")
	emptyDir := filepath.Join(baseDir, "empty")

	require.NoError(t, os.MkdirAll(nestedDir, 0755))
	require.NoError(t, os.MkdirAll(emptyDir, 0755))
	require.NoError(t, os.MkdirAll(configuredDir, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(projectDir, DefaultSystemDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configuredDir, ConfigFile), []byte("format: yaml\n"), 0644))

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: projectDir, wantRoot: projectDir},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: projectDir},
		{name: "Config File Marker", startPath: configuredDir, wantRoot: configuredDir},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.wantRoot), filepath.Clean(got))
		})
	}
}
