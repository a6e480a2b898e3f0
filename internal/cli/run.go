package cli

import (
	"github.com/arthur-debert/gather/pkg/dispatcher"
	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/logging"
	"github.com/arthur-debert/gather/pkg/registry"
	"github.com/arthur-debert/gather/pkg/report"
	"github.com/arthur-debert/gather/pkg/save"
	"github.com/arthur-debert/gather/pkg/types"
)

// runner executes one job: input, dispatch, save, report.
type runner struct {
	reg      *registry.Registry
	engine   *save.Engine
	reporter *report.Reporter
	quiet    bool
}

func (r *runner) run(job *types.Job) error {
	logger := logging.GetLogger("cli.run")
	opts := job.Options

	candidates, err := inputCandidates(r.reg, opts.String(FlagSourceFormat))
	if err != nil {
		return err
	}
	logger.Debug().Strs("candidates", candidates).Msg("Input candidates selected")

	result, err := runInput(r.reg, candidates, job)
	if err != nil {
		return err
	}
	job.Result = result

	if legacy, ok := types.AsLegacy(result); ok {
		logger.Info().Int("files", len(legacy.Saved)).Msg("Input plugin saved its own files")
		if !r.quiet {
			r.reporter.Legacy(job.Dir, legacy.Saved)
		}
		return nil
	}

	addDestAction(r.reg, job)

	if err := dispatcher.Dispatch(r.reg, job); err != nil {
		return err
	}

	fetchURLs := opts.Bool(FlagFetchURLs)
	if len(job.Pending) == 0 && !job.Satisfied && !fetchURLs {
		logger.Warn().Msg("No output produced, nothing to save")
		return nil
	}

	batch := &save.Batch{
		Dir:       job.Dir,
		Items:     job.Pending,
		Satisfied: job.Satisfied,
		FetchURLs: fetchURLs,
		Table:     job.Table(),
		Group:     opts.String(FlagGroup),
		Mode:      opts.String(FlagMode),
	}
	saveErr := r.engine.Save(batch)
	if !r.quiet {
		if batch.Satisfied {
			r.reporter.Satisfied(job.Dir)
		} else {
			// includes the items discovered by the URL pre-pass
			r.reporter.Saved(job.Dir, batch.Items)
		}
	}
	return saveErr
}

// inputCandidates resolves the ordered input providers to try: the providers
// of input:<format> when a format is given, else those of the group's only
// topic, else the flat input capability.
func inputCandidates(reg *registry.Registry, format string) ([]string, error) {
	if format != "" {
		return reg.Select("input:"+format, false)
	}
	if topic, ok := reg.Singular(registry.GroupInput); ok {
		return reg.Select("input:"+topic, false)
	}
	return reg.Select(registry.GroupInput, false)
}

// runInput walks the candidates until one produces a result. Load failures,
// run failures and declines move on to the next candidate.
func runInput(reg *registry.Registry, candidates []string, job *types.Job) (types.Result, error) {
	logger := logging.GetLogger("cli.input")

	var lastErr error
	for _, id := range candidates {
		log := logger.With().Str("provider", id).Logger()

		p, err := reg.Plugin(id)
		if err != nil {
			log.Warn().Err(err).Msg("Input provider could not be loaded")
			lastErr = err
			continue
		}
		if p.NewInput == nil {
			lastErr = errors.Newf(errors.ErrMethodNotFound, "provider '%s' has no input entry point", id)
			log.Warn().Err(lastErr).Msg("Skipping provider")
			continue
		}

		result, err := p.NewInput().Run(job)
		if err != nil {
			lastErr = errors.Wrapf(err, errors.ErrRunFailure, "provider '%s' failed", id)
			log.Warn().Err(err).Msg("Input provider failed")
			continue
		}
		if !types.IsResult(result) {
			log.Debug().Msg("Input provider declined")
			continue
		}

		log.Info().Msg("Input provider produced a result")
		return result, nil
	}

	if lastErr != nil {
		return nil, errors.Wrap(lastErr, errors.ErrNoRun, "no input provider produced a result").
			WithDetail("candidates", candidates)
	}
	return nil, errors.New(errors.ErrNoRun, "every input provider declined the source").
		WithDetail("candidates", candidates)
}

// addDestAction appends the output action requested on the command line. The
// format falls back to the only registered output topic.
func addDestAction(reg *registry.Registry, job *types.Job) {
	logger := logging.GetLogger("cli.run")
	dest := job.Options.String(FlagDest)
	format := job.Options.String(FlagDestFormat)

	if format == "" {
		if dest == "" {
			return
		}
		topic, ok := reg.Singular(registry.GroupOutput)
		if !ok {
			logger.Warn().Str("dest", dest).Msg("No --dest_format given and no single output format to infer, ignoring --dest")
			return
		}
		format = topic
	}

	result, ok := types.AsStructured(job.Result)
	if !ok || result.Table == nil {
		return
	}
	if result.Actions == nil {
		result.Actions = types.ActionSpec{}
	}
	if dest != "" {
		result.Actions.Add(format, dest)
	} else {
		result.Actions.Add(format)
	}
	job.Result = *result
}
