// pkg/filesystem/filesystem_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: Real filesystem (OS implementation), afero memory filesystem
// PURPOSE: Verify both FS implementations behave alike for installation operations

package filesystem_test

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/gather/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplementations(t *testing.T) {
	impls := map[string]func(t *testing.T) (filesystem.FS, string){
		"os": func(t *testing.T) (filesystem.FS, string) {
			return filesystem.NewOS(), t.TempDir()
		},
		"memory": func(t *testing.T) (filesystem.FS, string) {
			return filesystem.NewMemory(), "/work"
		},
	}

	for name, setup := range impls {
		t.Run(name, func(t *testing.T) {
			fs, root := setup(t)
			dir := filepath.Join(root, "out")
			require.NoError(t, fs.MkdirAll(dir, 0755))

			staged := filepath.Join(dir, "Nfile.txt")
			final := filepath.Join(dir, "file.txt")

			require.NoError(t, fs.WriteFile(staged, []byte("long content"), 0644))
			require.NoError(t, fs.WriteFile(staged, []byte("short"), 0644))
			require.NoError(t, fs.Chmod(staged, 0600))
			require.NoError(t, fs.Rename(staged, final))

			data, err := fs.ReadFile(final)
			require.NoError(t, err)
			assert.Equal(t, "short", string(data))

			info, err := fs.Stat(final)
			require.NoError(t, err)
			assert.Equal(t, "-rw-------", info.Mode().Perm().String())

			_, err = fs.Stat(staged)
			assert.Error(t, err)

			require.NoError(t, fs.Remove(final))
			_, err = fs.ReadFile(final)
			assert.Error(t, err)

			_, err = fs.ReadFile(dir)
			assert.Error(t, err)
		})
	}
}
