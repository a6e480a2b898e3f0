package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/gather/pkg/registry"
	"github.com/arthur-debert/gather/pkg/types"
	"github.com/spf13/pflag"
)

// Core flag names.
const (
	FlagDir          = "dir"
	FlagGroup        = "group"
	FlagMode         = "mode"
	FlagSource       = "source"
	FlagSourceFormat = "source_format"
	FlagDest         = "dest"
	FlagDestFormat   = "dest_format"
	FlagFetchURLs    = "fetch_urls"
	FlagQuiet        = "quiet"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagFormat       = "format"
)

// configFlagsKey holds flag defaults in a config file: flags.<name> = value.
const configFlagsKey = "flags"

func addCoreFlags(fs *pflag.FlagSet) {
	fs.String(FlagDir, "", "output directory (required)")
	fs.String(FlagGroup, "", "group name or gid applied to saved files")
	fs.String(FlagMode, "", "octal permission mode applied to saved files")
	fs.String(FlagSource, "", "input source: a URL or a local file")
	fs.String(FlagSourceFormat, "", "input format, selects the input plugin (e.g. rss, yaml)")
	fs.String(FlagDest, "", "output file name for --dest_format")
	fs.String(FlagDestFormat, "", "output format, adds an output action writing --dest")
	fs.Bool(FlagFetchURLs, false, "mirror every URL found in the data into --dir")
	fs.Bool(FlagQuiet, false, "only log errors and print no report")
	fs.Bool(FlagDebug, false, "log debug output")
	fs.String(FlagConfig, "", "config file (default $XDG_CONFIG_HOME/gather/config.toml)")
	fs.String(FlagFormat, "auto", "report format: auto, term or text")
}

// addPluginFlags declares the flags plugins contributed through the
// configuration store. Names already taken by core flags are ignored.
func addPluginFlags(fs *pflag.FlagSet, cfg *registry.ConfigStore) []string {
	decls := cfg.Options()
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	var added []string
	for _, name := range names {
		if fs.Lookup(name) != nil {
			continue
		}
		usage := cfg.Usage(name)
		switch decls[name] {
		case "int":
			fs.Int(name, 0, usage)
		case "bool":
			fs.Bool(name, false, usage)
		case "strings":
			fs.StringSlice(name, nil, usage)
		default:
			fs.String(name, "", usage)
		}
		added = append(added, name)
	}
	return added
}

// applyConfigDefaults sets flags the user did not pass from flags.<name>
// entries of the configuration store.
func applyConfigDefaults(fs *pflag.FlagSet, cfg *registry.ConfigStore) error {
	defaults := cfg.Sub(configFlagsKey)
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}
		v, ok := defaults[f.Name]
		if !ok {
			return
		}
		var setErr error
		if list, isList := configList(v); isList {
			setErr = fs.Set(f.Name, strings.Join(list, ","))
		} else {
			setErr = fs.Set(f.Name, fmt.Sprint(v))
		}
		if setErr != nil {
			err = fmt.Errorf("config value for --%s: %w", f.Name, setErr)
		}
	})
	return err
}

// configList returns the elements of a config list value as text.
func configList(v interface{}) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []interface{}:
		out := make([]string, len(list))
		for i, item := range list {
			out[i] = fmt.Sprint(item)
		}
		return out, true
	}
	return nil, false
}

// collectOptions reads every flag into the job options.
func collectOptions(fs *pflag.FlagSet) types.Options {
	opts := types.Options{}
	fs.VisitAll(func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "bool":
			v, _ := fs.GetBool(f.Name)
			opts[f.Name] = v
		case "int":
			v, _ := fs.GetInt(f.Name)
			opts[f.Name] = v
		case "stringSlice":
			v, _ := fs.GetStringSlice(f.Name)
			opts[f.Name] = v
		default:
			opts[f.Name] = f.Value.String()
		}
	})
	return opts
}
