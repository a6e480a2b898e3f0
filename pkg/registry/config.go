package registry

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Keys under which plugins contribute command line flags.
const (
	// ConfigOptions maps a flag name to its kind: string, int, bool or strings.
	ConfigOptions = "options"
	// ConfigUsage maps a flag name to its help text.
	ConfigUsage = "usage"
)

// ConfigStore is the process-wide key/value configuration populated by
// plugins at registration and by the user's config file. Keys are
// "."-delimited paths.
type ConfigStore struct {
	mu sync.RWMutex
	k  *koanf.Koanf
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{k: koanf.New(".")}
}

// Get returns the raw value at key, or nil.
func (c *ConfigStore) Get(key string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k.Get(key)
}

// String returns the value at key as a string.
func (c *ConfigStore) String(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k.String(key)
}

// Set writes value at key.
func (c *ConfigStore) Set(key string, value interface{}) error {
	if key == "" {
		return errors.New(errors.ErrInvalidInput, "config key cannot be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.k.Set(key, value); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to set config key %s", key)
	}
	return nil
}

// Exists reports whether key is set.
func (c *ConfigStore) Exists(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k.Exists(key)
}

// Delete removes key and everything below it.
func (c *ConfigStore) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.k.Delete(key)
}

// Import merges a nested map into the store. The merge is all or nothing.
func (c *ConfigStore) Import(values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	staged := koanf.New(".")
	if err := staged.Load(confmap.Provider(values, "."), nil); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid configuration map")
	}
	return c.merge(staged)
}

// LoadFile merges a TOML or YAML file, chosen by extension.
func (c *ConfigStore) LoadFile(path string) error {
	staged := koanf.New(".")
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		return errors.Newf(errors.ErrConfigLoad, "unsupported config file type: %s", path)
	}
	if err := staged.Load(file.Provider(path), parser); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
	}
	return c.merge(staged)
}

func (c *ConfigStore) merge(staged *koanf.Koanf) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.k.Merge(staged); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to merge configuration")
	}
	return nil
}

// Keys returns every leaf key in sorted order.
func (c *ConfigStore) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := c.k.Keys()
	sort.Strings(keys)
	return keys
}

// Options returns the plugin-contributed flag declarations, name → kind.
func (c *ConfigStore) Options() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k.StringMap(ConfigOptions)
}

// Usage returns the help text contributed for a flag.
func (c *ConfigStore) Usage(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k.String(ConfigUsage + "." + name)
}

// Sub returns a copy of the subtree at key as a plain map.
func (c *ConfigStore) Sub(key string) map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k.Cut(key).Raw()
}
