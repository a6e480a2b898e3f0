package registry

import (
	"strings"

	"github.com/arthur-debert/gather/pkg/errors"
)

// Well-known capability groups.
const (
	GroupInput  = "input"
	GroupOutput = "output"
)

// Capability is a parsed capability key. Flat capabilities such as "input"
// have an empty Group.
type Capability struct {
	Group string
	Topic string
}

// ParseCapability splits "group:topic" or accepts a flat "name".
func ParseCapability(s string) (Capability, error) {
	parts := strings.Split(s, ":")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return Capability{Topic: parts[0]}, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return Capability{Group: parts[0], Topic: parts[1]}, nil
	default:
		return Capability{}, errors.Newf(errors.ErrInvalidInput, "malformed capability '%s'", s)
	}
}

// Namespaced reports whether the capability has a group.
func (c Capability) Namespaced() bool {
	return c.Group != ""
}

func (c Capability) String() string {
	if c.Group == "" {
		return c.Topic
	}
	return c.Group + ":" + c.Topic
}

// defaultProviders names the provider used for a well-known topic when no
// plugin registered for it. The table is fixed.
var defaultProviders = map[string]string{
	"input:rss":       "feed",
	"input:atom":      "feed",
	"input:yaml":      "structured",
	"input:toml":      "structured",
	"output:template": "render",
	"output:html":     "render",
	"output:yaml":     "render",
	"output:toml":     "render",
	"output:files":    "render",
	"output:wiki":     "wiki",
}

// DefaultProvider returns the built-in default for a namespaced capability.
func DefaultProvider(capability string) (string, bool) {
	id, ok := defaultProviders[capability]
	return id, ok
}
