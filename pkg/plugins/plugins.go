// Package plugins registers the providers compiled into the gather binary.
package plugins

import (
	"github.com/arthur-debert/gather/pkg/filesystem"
	"github.com/arthur-debert/gather/pkg/plugins/feed"
	"github.com/arthur-debert/gather/pkg/plugins/render"
	"github.com/arthur-debert/gather/pkg/plugins/structured"
	"github.com/arthur-debert/gather/pkg/registry"
)

// Builtin returns the built-in plugins in registration order.
func Builtin(fsys filesystem.FS) []*registry.Plugin {
	return []*registry.Plugin{
		feed.Plugin(fsys),
		structured.Plugin(fsys),
		render.Plugin(fsys),
	}
}

// Register adds every built-in plugin to reg.
func Register(reg *registry.Registry, fsys filesystem.FS) error {
	for _, p := range Builtin(fsys) {
		if err := reg.RegisterPlugin(p); err != nil {
			return err
		}
	}
	return nil
}
