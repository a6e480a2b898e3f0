package types

import (
	"fmt"
	"strconv"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/table"
)

// Fetcher retrieves the bytes behind a URL. Timeouts and retries are the
// implementation's concern.
type Fetcher interface {
	Fetch(url string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(url string) ([]byte, error)

// Fetch calls f(url).
func (f FetcherFunc) Fetch(url string) ([]byte, error) {
	return f(url)
}

// Options holds the parsed command line values, core and plugin contributed.
type Options map[string]any

// String returns the option as text, or "" when unset.
func (o Options) String(key string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool returns the option as a boolean.
func (o Options) Bool(key string) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Int returns the option as an int, or 0.
func (o Options) Int(key string) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Job is the state of one run shared by the input plugin, the output
// handlers and the save engine.
type Job struct {
	Source  string
	Dir     string
	Options Options
	Fetcher Fetcher

	Result Result

	// Pending collects the Savables output handlers produce.
	Pending []*Savable

	// Satisfied is set by a handler that installed its own multi-file output;
	// the save engine then skips the batch.
	Satisfied bool
}

// Add appends savables to the pending list.
func (j *Job) Add(s ...*Savable) {
	j.Pending = append(j.Pending, s...)
}

// MarkSatisfied flags the whole batch as already installed.
func (j *Job) MarkSatisfied() {
	j.Satisfied = true
}

// Table returns the structured result's table, or nil for legacy results.
func (j *Job) Table() *table.Table {
	if r, ok := AsStructured(j.Result); ok {
		return r.Table
	}
	return nil
}

// Actions returns the structured result's actions, or nil for legacy results.
func (j *Job) Actions() ActionSpec {
	if r, ok := AsStructured(j.Result); ok {
		return r.Actions
	}
	return nil
}

// Fetch retrieves url through the job's fetcher.
func (j *Job) Fetch(url string) ([]byte, error) {
	if j.Fetcher == nil {
		return nil, errors.Newf(errors.ErrFetch, "no fetcher configured for %s", url)
	}
	return j.Fetcher.Fetch(url)
}
