package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/gather/internal/version"
	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/fetch"
	"github.com/arthur-debert/gather/pkg/filesystem"
	"github.com/arthur-debert/gather/pkg/logging"
	"github.com/arthur-debert/gather/pkg/paths"
	"github.com/arthur-debert/gather/pkg/plugins"
	"github.com/arthur-debert/gather/pkg/registry"
	"github.com/arthur-debert/gather/pkg/report"
	"github.com/arthur-debert/gather/pkg/save"
	"github.com/arthur-debert/gather/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Deps are the collaborators of a run. Zero values get production defaults.
type Deps struct {
	FS      filesystem.FS
	Fetcher types.Fetcher
	Out     io.Writer
	// Plugins replaces the built-in plugin set.
	Plugins []*registry.Plugin
	// SkipLogSetup leaves the global logger alone, for tests that capture it.
	SkipLogSetup bool
}

func (d Deps) withDefaults() Deps {
	if d.FS == nil {
		d.FS = filesystem.NewOS()
	}
	if d.Fetcher == nil {
		d.Fetcher = fetch.New(fetch.Options{})
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Plugins == nil {
		d.Plugins = plugins.Builtin(d.FS)
	}
	return d
}

// NewRootCmd creates the gather command with a fresh registry holding the
// given plugins. Plugin-contributed flags are declared on the command.
func NewRootCmd(deps Deps) (*cobra.Command, error) {
	deps = deps.withDefaults()

	reg := registry.New()
	for _, p := range deps.Plugins {
		if err := reg.RegisterPlugin(p); err != nil {
			return nil, err
		}
	}

	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "gather --dir DIR [--source SRC] [flags]",
		Short: "Fetch structured content and save it through output plugins",
		Long: `gather runs an input plugin on a source, turns what it finds into a table,
hands the table to output plugins and installs the files they produce in a
target directory with one-generation backups and duplicate URL suppression.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return errors.Newf(errors.ErrUsage, "unexpected arguments: %v", args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			if err := loadConfig(reg, mustString(cmd, FlagConfig)); err != nil {
				return err
			}
			if err := applyConfigDefaults(flags, reg.Config()); err != nil {
				return errors.Wrap(err, errors.ErrUsage, "invalid configuration")
			}

			opts := collectOptions(flags)
			setupLogging(deps, opts, verbosity)

			runID := uuid.NewString()
			logging.WithRun(runID)
			log.Debug().Str("command", cmd.Name()).Str("version", version.Version).Msg("Command started")

			if opts.String(FlagDir) == "" {
				return errors.New(errors.ErrUsage, "--dir is required")
			}
			dir, err := paths.NormalizeDir(opts.String(FlagDir))
			if err != nil {
				return err
			}
			if err := checkOwnership(opts); err != nil {
				return err
			}

			format, err := report.ParseFormat(opts.String(FlagFormat))
			if err != nil {
				return errors.Wrap(err, errors.ErrUsage, "invalid --format")
			}
			if format == report.FormatAuto {
				format = report.FormatText
				if f, ok := deps.Out.(*os.File); ok {
					format = report.DetectFormat(f)
				}
			}

			r := &runner{
				reg:      reg,
				engine:   save.New(save.WithFS(deps.FS), save.WithFetcher(deps.Fetcher)),
				reporter: report.New(deps.Out, format),
				quiet:    opts.Bool(FlagQuiet),
			}
			return r.run(&types.Job{
				Source:  opts.String(FlagSource),
				Dir:     dir,
				Options: opts,
				Fetcher: deps.Fetcher,
			})
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	addCoreFlags(rootCmd.Flags())
	addPluginFlags(rootCmd.Flags(), reg.Config())

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrUsage, "invalid arguments")
	})
	rootCmd.SetOut(deps.Out)
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPluginsCmd(reg))
	if err := installTopics(rootCmd, deps.Out); err != nil {
		return nil, err
	}

	return rootCmd, nil
}

func setupLogging(deps Deps, opts types.Options, verbosity int) {
	if deps.SkipLogSetup {
		return
	}
	switch {
	case opts.Bool(FlagQuiet):
		verbosity = logging.VerbosityQuiet
	case opts.Bool(FlagDebug) && verbosity < logging.VerbosityDebug:
		verbosity = logging.VerbosityDebug
	}
	logging.SetupLogger(verbosity)
}

// loadConfig merges the config file into the registry's store. Without an
// explicit path the one in the config directory is used when it exists.
func loadConfig(reg *registry.Registry, path string) error {
	if path == "" {
		path = paths.New().ConfigFile()
		if path == "" {
			return nil
		}
	}
	return reg.Config().LoadFile(paths.ExpandHome(path))
}

// checkOwnership rejects --mode and --group values the save engine would
// fail on for every file.
func checkOwnership(opts types.Options) error {
	if mode := opts.String(FlagMode); mode != "" {
		if _, err := save.ParseMode(mode); err != nil {
			return errors.Wrap(err, errors.ErrUsage, "invalid --mode")
		}
	}
	if group := opts.String(FlagGroup); group != "" {
		if _, err := save.ResolveGroup(group, nil); err != nil {
			return errors.Wrap(err, errors.ErrUsage, "invalid --group")
		}
	}
	return nil
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gather version %s\n", version.Version)
			fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			fmt.Fprintf(out, "Built:  %s\n", version.Date)
		},
	}
}

func newPluginsCmd(reg *registry.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List registered plugins and their capabilities",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, id := range reg.Plugins() {
				p, err := reg.Plugin(id)
				if err != nil {
					continue
				}
				fmt.Fprintf(out, "%s\n", id)
				for _, c := range p.Capabilities {
					fmt.Fprintf(out, "  %s\n", c)
				}
			}
		},
	}
}
