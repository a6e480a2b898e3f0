// pkg/registry/registry_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: None
// PURPOSE: Test capability registration order, default fallback, singular inference
// and plugin entry point validation

package registry_test

import (
	"testing"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/registry"
	"github.com/arthur-debert/gather/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(job *types.Job, params []any) error { return nil }

func noopInput() types.InputProvider {
	return types.InputFunc(func(job *types.Job) (types.Result, error) { return nil, nil })
}

func TestRegister_PreservesOrderWithoutDuplicates(t *testing.T) {
	reg := registry.New()

	require.NoError(t, reg.Register("A", "output:x"))
	require.NoError(t, reg.Register("B", "output:x"))
	require.NoError(t, reg.Register("A", "output:x"))
	require.NoError(t, reg.Register("C", "output:x", "input"))

	got, err := reg.Select("output:x", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, got)

	got, err = reg.Select("input", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, got)
}

func TestRegister_InvalidInputLeavesRegistryUntouched(t *testing.T) {
	reg := registry.New()

	err := reg.RegisterWithConfig("A", map[string]interface{}{"k": "v"}, "output:x", "bad:cap:string")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	got, err := reg.Select("output:x", true)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, reg.Config().Exists("k"))

	assert.Error(t, reg.Register("", "input"))
	assert.Error(t, reg.Register("A", "output:"))
}

func TestSelect_FallsBackToDefaultTable(t *testing.T) {
	reg := registry.New()

	got, err := reg.Select("output:template", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"render"}, got)

	require.NoError(t, reg.Register("custom", "output:template"))
	got, err = reg.Select("output:template", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom"}, got)
}

func TestSelect_NoHandler(t *testing.T) {
	reg := registry.New()

	_, err := reg.Select("output:nothing", false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoHandler))

	got, err := reg.Select("output:nothing", true)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	// flat capabilities never fall back
	_, err = reg.Select("template", false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoHandler))
}

func TestSelect_ReturnsCopy(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("A", "output:x"))

	got, err := reg.Select("output:x", false)
	require.NoError(t, err)
	got[0] = "mutated"

	again, _ := reg.Select("output:x", false)
	assert.Equal(t, []string{"A"}, again)
}

func TestSingular(t *testing.T) {
	tests := []struct {
		name      string
		register  map[string][]string
		wantTopic string
		wantOK    bool
	}{
		{
			name:   "no providers",
			wantOK: false,
		},
		{
			name:      "exactly one",
			register:  map[string][]string{"feed": {"input:rss"}},
			wantTopic: "rss",
			wantOK:    true,
		},
		{
			name:     "two providers on one topic",
			register: map[string][]string{"feed": {"input:rss"}, "other": {"input:rss"}},
			wantOK:   false,
		},
		{
			name:     "two providers across topics",
			register: map[string][]string{"feed": {"input:rss"}, "structured": {"input:yaml"}},
			wantOK:   false,
		},
		{
			name:     "one provider with two topics",
			register: map[string][]string{"feed": {"input:rss", "input:atom"}},
			wantOK:   false,
		},
		{
			name:      "other groups ignored",
			register:  map[string][]string{"feed": {"input:rss", "input"}, "render": {"output:html"}},
			wantTopic: "rss",
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New()
			for id, caps := range tt.register {
				require.NoError(t, reg.Register(id, caps...))
			}

			topic, ok := reg.Singular("input")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTopic, topic)
		})
	}
}

func TestRegisterPlugin(t *testing.T) {
	reg := registry.New()

	err := reg.RegisterPlugin(&registry.Plugin{
		ID:           "render",
		Capabilities: []string{"output:html"},
		Config: map[string]interface{}{
			registry.ConfigOptions: map[string]interface{}{"template": "string"},
			registry.ConfigUsage:   map[string]interface{}{"template": "template file"},
		},
		Handlers: map[string]types.Handler{"html": noopHandler},
	})
	require.NoError(t, err)

	h, err := reg.Handler("render", "html")
	require.NoError(t, err)
	assert.NotNil(t, h)

	_, err = reg.Handler("render", "wiki")
	assert.True(t, errors.IsErrorCode(err, errors.ErrMethodNotFound))

	assert.Equal(t, map[string]string{"template": "string"}, reg.Config().Options())
	assert.Equal(t, "template file", reg.Config().Usage("template"))

	err = reg.RegisterPlugin(&registry.Plugin{ID: "render", Handlers: map[string]types.Handler{}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}

func TestRegisterPlugin_RequiresEntryPoints(t *testing.T) {
	reg := registry.New()

	err := reg.RegisterPlugin(&registry.Plugin{
		ID:           "broken",
		Capabilities: []string{"output:html"},
		Config:       map[string]interface{}{"broken": true},
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMethodNotFound))
	assert.False(t, reg.Config().Exists("broken"), "failed registration must not touch config")
	assert.Empty(t, reg.Plugins())

	err = reg.RegisterPlugin(&registry.Plugin{ID: "noinput", Capabilities: []string{"input:rss"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrMethodNotFound))

	require.NoError(t, reg.RegisterPlugin(&registry.Plugin{
		ID:           "feed",
		Capabilities: []string{"input", "input:rss"},
		NewInput:     noopInput,
	}))
	assert.Equal(t, []string{"feed"}, reg.Plugins())
}

func TestPlugin_LoadFailure(t *testing.T) {
	reg := registry.New()

	ids, err := reg.Select("output:wiki", false)
	require.NoError(t, err)

	_, err = reg.Plugin(ids[0])
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLoadFailure))
}

func TestParseCapability(t *testing.T) {
	c, err := registry.ParseCapability("output:rss")
	require.NoError(t, err)
	assert.Equal(t, registry.Capability{Group: "output", Topic: "rss"}, c)
	assert.Equal(t, "output:rss", c.String())
	assert.True(t, c.Namespaced())

	c, err = registry.ParseCapability("input")
	require.NoError(t, err)
	assert.False(t, c.Namespaced())
	assert.Equal(t, "input", c.String())

	for _, bad := range []string{"", ":x", "x:", "a:b:c"} {
		_, err := registry.ParseCapability(bad)
		assert.Error(t, err, bad)
	}
}
