// pkg/registry/config_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: Real filesystem (config file loading)
// PURPOSE: Test configuration store read/write/import/load operations

package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_ReadWriteDelete(t *testing.T) {
	c := registry.NewConfigStore()

	require.NoError(t, c.Set("feed.user_agent", "gather/1"))
	assert.True(t, c.Exists("feed.user_agent"))
	assert.Equal(t, "gather/1", c.String("feed.user_agent"))
	assert.Equal(t, "gather/1", c.Get("feed.user_agent"))

	c.Delete("feed.user_agent")
	assert.False(t, c.Exists("feed.user_agent"))
	assert.Nil(t, c.Get("feed.user_agent"))

	assert.Error(t, c.Set("", 1))
}

func TestConfigStore_ImportMergesAndListsKeys(t *testing.T) {
	c := registry.NewConfigStore()

	require.NoError(t, c.Import(map[string]interface{}{
		"options": map[string]interface{}{"template": "string"},
	}))
	require.NoError(t, c.Import(map[string]interface{}{
		"options": map[string]interface{}{"limit": "int"},
	}))

	assert.Equal(t, map[string]string{"template": "string", "limit": "int"}, c.Options())
	assert.Equal(t, []string{"options.limit", "options.template"}, c.Keys())
	assert.Equal(t, map[string]interface{}{"template": "string", "limit": "int"}, c.Sub("options"))
	assert.NoError(t, c.Import(nil))
}

func TestConfigStore_LoadFile(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[flags]\ndir = \"/srv/out\"\n"), 0644))
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("fetch:\n  retries: 5\n"), 0644))

	c := registry.NewConfigStore()
	require.NoError(t, c.LoadFile(tomlPath))
	require.NoError(t, c.LoadFile(yamlPath))

	assert.Equal(t, "/srv/out", c.String("flags.dir"))
	assert.Equal(t, "5", c.String("fetch.retries"))

	err := c.LoadFile(filepath.Join(dir, "config.ini"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))

	err = c.LoadFile(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}
