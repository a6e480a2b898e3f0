package registry

import (
	"sync"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/logging"
	"github.com/arthur-debert/gather/pkg/types"
)

// Plugin describes a provider: its identifier, the capabilities it offers,
// an optional configuration map merged at registration, and the entry points
// backing those capabilities. Output handlers are keyed by action key and
// resolved once, when the plugin is registered.
type Plugin struct {
	ID           string
	Capabilities []string
	Config       map[string]interface{}

	NewInput func() types.InputProvider
	Handlers map[string]types.Handler
}

// Handler returns the plugin's handler for key.
func (p *Plugin) Handler(key string) (types.Handler, bool) {
	h, ok := p.Handlers[key]
	return h, ok && h != nil
}

// Registry maps capabilities to ordered provider lists and holds the plugin
// table and configuration store of one process run.
type Registry struct {
	mu        sync.RWMutex
	providers map[Capability][]string
	plugins   Store[*Plugin]
	config    *ConfigStore
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		providers: make(map[Capability][]string),
		plugins:   NewStore[*Plugin](),
		config:    NewConfigStore(),
	}
}

// Config returns the configuration store.
func (r *Registry) Config() *ConfigStore {
	return r.config
}

// Register appends id to the provider list of every capability, skipping
// lists that already contain it.
func (r *Registry) Register(id string, caps ...string) error {
	return r.RegisterWithConfig(id, nil, caps...)
}

// RegisterWithConfig merges cfg into the configuration store, then registers
// the capabilities. Nothing is changed when any input is invalid.
func (r *Registry) RegisterWithConfig(id string, cfg map[string]interface{}, caps ...string) error {
	parsed, err := parseAll(id, caps)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.config.Import(cfg); err != nil {
		return err
	}
	r.appendLocked(id, parsed)
	return nil
}

// RegisterPlugin validates p, stores it and registers its capabilities.
func (r *Registry) RegisterPlugin(p *Plugin) error {
	if p == nil {
		return errors.New(errors.ErrInvalidInput, "plugin cannot be nil")
	}
	parsed, err := parseAll(p.ID, p.Capabilities)
	if err != nil {
		return err
	}
	for _, c := range parsed {
		if err := checkEntryPoint(p, c); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.plugins.Has(p.ID) {
		return errors.Newf(errors.ErrAlreadyExists, "plugin '%s' is already registered", p.ID)
	}
	if err := r.config.Import(p.Config); err != nil {
		return err
	}
	if err := r.plugins.Register(p.ID, p); err != nil {
		return err
	}
	r.appendLocked(p.ID, parsed)

	logger := logging.GetLogger("registry")
	logger.Debug().
		Str("plugin", p.ID).
		Strs("capabilities", p.Capabilities).
		Msg("Plugin registered")
	return nil
}

// MustRegisterPlugin registers p and panics on failure. Built-in plugin
// registration errors are programming errors.
func (r *Registry) MustRegisterPlugin(p *Plugin) {
	if err := r.RegisterPlugin(p); err != nil {
		panic("failed to register plugin: " + err.Error())
	}
}

// Select returns the providers registered for capability in registration
// order. A namespaced capability with no providers falls back to the
// built-in default table. An empty result is a NO_HANDLER error unless
// optional is set.
func (r *Registry) Select(capability string, optional bool) ([]string, error) {
	c, err := ParseCapability(capability)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	list := append([]string(nil), r.providers[c]...)
	r.mu.RUnlock()

	if len(list) == 0 && c.Namespaced() {
		if id, ok := DefaultProvider(c.String()); ok {
			list = []string{id}
		}
	}
	if len(list) == 0 {
		if optional {
			return []string{}, nil
		}
		return nil, errors.Newf(errors.ErrNoHandler, "no provider registered for '%s'", capability).
			WithDetail("capability", capability)
	}
	return list, nil
}

// Singular returns the only topic with providers in group, provided the total
// number of providers across all of the group's topics is exactly one.
func (r *Registry) Singular(group string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	topic := ""
	for c, ids := range r.providers {
		if c.Group != group || len(ids) == 0 {
			continue
		}
		total += len(ids)
		topic = c.Topic
	}
	if total != 1 {
		return "", false
	}
	return topic, true
}

// Plugin returns the plugin registered under id. A provider named by the
// default table but never registered is a LOAD_FAILURE.
func (r *Registry) Plugin(id string) (*Plugin, error) {
	p, err := r.plugins.Get(id)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLoadFailure, "provider '%s' could not be loaded", id)
	}
	return p, nil
}

// Handler returns the output handler of provider id for key.
func (r *Registry) Handler(id, key string) (types.Handler, error) {
	p, err := r.Plugin(id)
	if err != nil {
		return nil, err
	}
	h, ok := p.Handler(key)
	if !ok {
		return nil, errors.Newf(errors.ErrMethodNotFound, "provider '%s' has no handler for '%s'", id, key)
	}
	return h, nil
}

// Plugins returns the registered plugin ids in registration order.
func (r *Registry) Plugins() []string {
	return r.plugins.List()
}

func (r *Registry) appendLocked(id string, caps []Capability) {
	for _, c := range caps {
		if contains(r.providers[c], id) {
			continue
		}
		r.providers[c] = append(r.providers[c], id)
	}
}

func parseAll(id string, caps []string) ([]Capability, error) {
	if id == "" {
		return nil, errors.New(errors.ErrInvalidInput, "provider id cannot be empty")
	}
	parsed := make([]Capability, 0, len(caps))
	for _, s := range caps {
		c, err := ParseCapability(s)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, c)
	}
	return parsed, nil
}

func checkEntryPoint(p *Plugin, c Capability) error {
	switch {
	case c.Group == GroupOutput:
		if _, ok := p.Handler(c.Topic); !ok {
			return errors.Newf(errors.ErrMethodNotFound,
				"plugin '%s' declares %s without a handler for '%s'", p.ID, c, c.Topic)
		}
	case c.Group == GroupInput || (!c.Namespaced() && c.Topic == GroupInput):
		if p.NewInput == nil {
			return errors.Newf(errors.ErrMethodNotFound,
				"plugin '%s' declares %s without an input entry point", p.ID, c)
		}
	}
	return nil
}

func contains(list []string, id string) bool {
	for _, s := range list {
		if s == id {
			return true
		}
	}
	return false
}
