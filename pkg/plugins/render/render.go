// Package render is the built-in output plugin. It turns a table into text
// templates, HTML pages, YAML or TOML dumps, and mirrors record URLs.
package render

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/filesystem"
	"github.com/arthur-debert/gather/pkg/registry"
	"github.com/arthur-debert/gather/pkg/table"
	"github.com/arthur-debert/gather/pkg/types"
)

// ID is the provider id of the render plugin.
const ID = "render"

// Action keys handled by the plugin.
const (
	ActionTemplate = "template"
	ActionHTML     = "html"
	ActionYAML     = "yaml"
	ActionTOML     = "toml"
	ActionFiles    = "files"
)

// Options contributed to the command line.
const (
	OptionSort  = "sort"
	OptionLimit = "limit"
)

// Plugin returns the registry entry of the render plugin. Templates named by
// action parameters are read through fsys.
func Plugin(fsys filesystem.FS) *registry.Plugin {
	r := &Renderer{fs: fsys}
	handlers := map[string]types.Handler{
		ActionTemplate: r.Template,
		ActionHTML:     r.HTML,
		ActionYAML:     r.YAML,
		ActionTOML:     r.TOML,
		ActionFiles:    r.Files,
	}
	caps := make([]string, 0, len(handlers))
	for _, key := range []string{ActionTemplate, ActionHTML, ActionYAML, ActionTOML, ActionFiles} {
		caps = append(caps, "output:"+key)
	}
	return &registry.Plugin{
		ID:           ID,
		Capabilities: caps,
		Config: map[string]interface{}{
			registry.ConfigOptions: map[string]interface{}{
				OptionSort:  "string",
				OptionLimit: "int",
			},
			registry.ConfigUsage: map[string]interface{}{
				OptionSort:  "sort records by field or role before rendering (prefix with - for descending)",
				OptionLimit: "render at most this many records",
			},
		},
		Handlers: handlers,
	}
}

// Renderer holds the output handlers.
type Renderer struct {
	fs filesystem.FS
}

// prepare returns a copy of the job's table with the sort and limit options
// applied. The job's own table stays whole for other actions and for the
// URL mirroring pass.
func prepare(job *types.Job) (*table.Table, error) {
	src := job.Table()
	if src == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no table to render")
	}
	tbl := src.Clone()
	if symbol := job.Options.String(OptionSort); symbol != "" {
		desc := strings.HasPrefix(symbol, "-")
		if err := tbl.SortBy(strings.TrimPrefix(symbol, "-"), desc); err != nil {
			return nil, err
		}
	}
	tbl.Limit(job.Options.Int(OptionLimit))
	return tbl, nil
}

// fileParam returns params[i] as a non-empty string.
func fileParam(params []any, i int, action string) (string, error) {
	if len(params) <= i {
		return "", errors.Newf(errors.ErrInvalidInput, "%s: missing parameter %d", action, i+1)
	}
	s, ok := params[i].(string)
	if !ok || s == "" {
		return "", errors.Newf(errors.ErrInvalidInput, "%s: parameter %d must be a file name, got %v", action, i+1, params[i])
	}
	return s, nil
}

func optionalParam(params []any, i int) string {
	if len(params) <= i || params[i] == nil {
		return ""
	}
	return fmt.Sprint(params[i])
}

// rows returns the records as field → value maps, in table order.
func rows(tbl *table.Table, withRoles bool) []map[string]any {
	out := make([]map[string]any, 0, tbl.Len())
	tbl.Reset()
	for r, ok := tbl.Next(); ok; r, ok = tbl.Next() {
		if withRoles {
			out = append(out, r.Map())
			continue
		}
		m := make(map[string]any)
		for i, f := range tbl.Fields() {
			v, _ := r.ByIndex(i)
			if v == nil {
				continue
			}
			m[f] = v
		}
		out = append(out, m)
	}
	tbl.Reset()
	return out
}
