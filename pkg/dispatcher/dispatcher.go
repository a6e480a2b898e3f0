// Package dispatcher routes the output actions of an input result to the
// registered output handlers.
package dispatcher

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/gather/pkg/logging"
	"github.com/arthur-debert/gather/pkg/registry"
	"github.com/arthur-debert/gather/pkg/types"
)

// Dispatch invokes, for every action key of job's structured result, the
// first provider of output:<key> that has a handler for it, once per
// parameter tuple. Handlers append Savables to job.Pending.
//
// Legacy results, and structured results without a table or without
// actions, need no dispatching. Keys without a usable provider and malformed
// parameter entries are logged and skipped; a failing handler is recorded as
// an error-only Savable. None of these abort the remaining actions.
func Dispatch(reg *registry.Registry, job *types.Job) error {
	logger := logging.GetLogger("dispatcher")

	result, ok := types.AsStructured(job.Result)
	if !ok || result.Table == nil || result.Actions == nil {
		logger.Debug().Msg("Result carries no actions, nothing to dispatch")
		return nil
	}

	keys := make([]string, 0, len(result.Actions))
	for key := range result.Actions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		handler, provider := resolve(reg, key)
		if handler == nil {
			logger.Warn().Str("action", key).Msg("No output plugin handles action, skipping")
			continue
		}

		for i, entry := range result.Actions[key] {
			params, ok := tuple(entry)
			if !ok {
				logger.Warn().
					Str("action", key).
					Int("entry", i).
					Str("type", fmt.Sprintf("%T", entry)).
					Msg("Action parameters are not a tuple, skipping")
				continue
			}

			logger.Debug().
				Str("action", key).
				Str("provider", provider).
				Int("params", len(params)).
				Msg("Invoking output handler")

			if err := handler(job, params); err != nil {
				logger.Warn().Err(err).Str("action", key).Str("provider", provider).Msg("Output handler failed")
				job.Add(types.NewFailed(failedName(key, params), err))
			}
		}
	}
	return nil
}

func resolve(reg *registry.Registry, key string) (types.Handler, string) {
	providers, _ := reg.Select("output:"+key, true)
	for _, id := range providers {
		h, err := reg.Handler(id, key)
		if err != nil {
			continue
		}
		return h, id
	}
	return nil, ""
}

func tuple(entry any) ([]any, bool) {
	switch v := entry.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// failedName labels the error Savable with the first string parameter, which
// by convention is the output file.
func failedName(key string, params []any) string {
	if len(params) > 0 {
		if s, ok := params[0].(string); ok && s != "" {
			return s
		}
	}
	return key
}
