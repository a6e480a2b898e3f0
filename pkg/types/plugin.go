package types

// InputProvider retrieves data for a job. Returning a nil Result and a nil
// error declines the job so the next candidate provider is tried.
type InputProvider interface {
	Run(job *Job) (Result, error)
}

// InputFunc adapts a function to InputProvider.
type InputFunc func(job *Job) (Result, error)

// Run calls f(job).
func (f InputFunc) Run(job *Job) (Result, error) {
	return f(job)
}

// Handler processes one parameter tuple of an output action and appends the
// resulting Savables to job.
type Handler func(job *Job, params []any) error
