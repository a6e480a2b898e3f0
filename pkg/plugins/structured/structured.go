// Package structured is the built-in input plugin for YAML and TOML
// documents that describe a table directly.
//
// A document has the shape
//
//	fields: [name, link]
//	well_known: {title: name, url: link}
//	records:
//	  - {name: One, link: "http://example.com/1"}
//	actions:
//	  html: [[index.html]]
//
// Records may also be lists holding one value per field. A document with
// `legacy: true` reports the files listed under `saved` as already written.
package structured

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/filesystem"
	"github.com/arthur-debert/gather/pkg/logging"
	"github.com/arthur-debert/gather/pkg/registry"
	"github.com/arthur-debert/gather/pkg/table"
	"github.com/arthur-debert/gather/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ID is the provider id of the structured plugin.
const ID = "structured"

// Formats understood by the plugin.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Document keys.
const (
	keyFields    = "fields"
	keyWellKnown = "well_known"
	keyRecords   = "records"
	keyActions   = "actions"
	keyLegacy    = "legacy"
	keySaved     = "saved"
)

// Plugin returns the registry entry of the structured plugin.
func Plugin(fsys filesystem.FS) *registry.Plugin {
	return &registry.Plugin{
		ID:           ID,
		Capabilities: []string{"input", "input:" + FormatYAML, "input:" + FormatTOML},
		NewInput:     func() types.InputProvider { return &Reader{fs: fsys} },
	}
}

// Reader loads a table description document.
type Reader struct {
	fs filesystem.FS
}

// Run reads job.Source. The format comes from the source_format option, or
// the file extension; documents that are neither valid YAML nor TOML tables
// are declined.
func (r *Reader) Run(job *types.Job) (types.Result, error) {
	logger := logging.GetLogger("structured").With().Str("source", job.Source).Logger()

	if job.Source == "" {
		return nil, nil
	}
	data, err := r.fs.ReadFile(job.Source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "cannot read %s", job.Source)
	}

	doc, format := decode(data, formatHint(job))
	if doc == nil {
		logger.Debug().Msg("Source is not a table document, declining")
		return nil, nil
	}
	logger.Debug().Str("format", format).Msg("Document decoded")

	if legacy, _ := doc[keyLegacy].(bool); legacy {
		return types.LegacyResult{Saved: stringList(doc[keySaved])}, nil
	}

	tbl, err := buildTable(doc)
	if err != nil {
		return nil, err
	}
	actions, err := buildActions(doc[keyActions])
	if err != nil {
		return nil, err
	}

	logger.Info().Int("records", tbl.Len()).Int("actions", len(actions)).Msg("Table loaded")
	return types.StructuredResult{Table: tbl, Actions: actions}, nil
}

func formatHint(job *types.Job) string {
	switch f := strings.ToLower(job.Options.String("source_format")); f {
	case FormatYAML, FormatTOML:
		return f
	}
	switch strings.ToLower(filepath.Ext(job.Source)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	}
	return ""
}

// decode tries the hinted format first, then the other one.
func decode(data []byte, hint string) (map[string]interface{}, string) {
	order := []string{FormatYAML, FormatTOML}
	if hint == FormatTOML {
		order = []string{FormatTOML, FormatYAML}
	}
	for _, format := range order {
		var doc map[string]interface{}
		var err error
		switch format {
		case FormatYAML:
			err = yaml.Unmarshal(data, &doc)
		case FormatTOML:
			err = toml.Unmarshal(data, &doc)
		}
		if err != nil || doc == nil {
			continue
		}
		if _, ok := doc[keyFields]; ok {
			return doc, format
		}
		if _, ok := doc[keyLegacy]; ok {
			return doc, format
		}
	}
	return nil, ""
}

func buildTable(doc map[string]interface{}) (*table.Table, error) {
	tbl := table.New()
	fields := stringList(doc[keyFields])
	if len(fields) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "document declares no fields")
	}
	tbl.AddFields(fields...)

	if wk, ok := doc[keyWellKnown].(map[string]interface{}); ok {
		roles := make(map[string]string, len(wk))
		for role, field := range wk {
			roles[role] = fmt.Sprint(field)
		}
		if dropped := tbl.AddWellKnown(roles); len(dropped) > 0 {
			logger := logging.GetLogger("structured")
			logger.Warn().Strs("roles", dropped).Msg("Roles point at unknown fields, dropped")
		}
	}

	records, _ := doc[keyRecords].([]interface{})
	for i, rec := range records {
		var err error
		switch v := rec.(type) {
		case map[string]interface{}:
			err = tbl.AddRecordMap(v)
		case []interface{}:
			err = tbl.AddRecord(v...)
		default:
			err = errors.Newf(errors.ErrInvalidInput, "record must be a map or a list, got %T", rec)
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "record %d", i)
		}
	}
	return tbl, nil
}

func buildActions(raw interface{}) (types.ActionSpec, error) {
	actions := types.ActionSpec{}
	if raw == nil {
		return actions, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.Newf(errors.ErrInvalidInput, "actions must be a map, got %T", raw)
	}
	for key, v := range m {
		entries, ok := v.([]interface{})
		if !ok {
			// passed through; the dispatcher rejects non-tuple entries
			entries = []interface{}{v}
		}
		actions[key] = entries
	}
	return actions, nil
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}
