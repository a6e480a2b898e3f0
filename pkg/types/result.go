package types

import "github.com/arthur-debert/gather/pkg/table"

// Result is what an input plugin produces. It is either a LegacyResult, for
// plugins that already wrote their own files, or a StructuredResult carrying
// a table and the output actions requested for it.
type Result interface {
	isResult()
}

// LegacyResult reports files written directly by the input plugin.
type LegacyResult struct {
	Saved []string
}

func (LegacyResult) isResult() {}

// StructuredResult carries a populated table and the actions to run on it.
type StructuredResult struct {
	Table   *table.Table
	Actions ActionSpec
}

func (StructuredResult) isResult() {}

// AsStructured returns the structured variant of r. Plugins may return the
// result by value or by pointer; both are accepted, a nil pointer is not.
func AsStructured(r Result) (*StructuredResult, bool) {
	switch v := r.(type) {
	case StructuredResult:
		return &v, true
	case *StructuredResult:
		return v, v != nil
	}
	return nil, false
}

// IsResult reports whether r holds one of the two variants. A nil result,
// or a nil pointer to either variant, is not a result.
func IsResult(r Result) bool {
	if _, ok := AsStructured(r); ok {
		return true
	}
	_, ok := AsLegacy(r)
	return ok
}

// AsLegacy returns the legacy variant of r, by value or by pointer.
func AsLegacy(r Result) (*LegacyResult, bool) {
	switch v := r.(type) {
	case LegacyResult:
		return &v, true
	case *LegacyResult:
		return v, v != nil
	}
	return nil, false
}

// ActionSpec maps an output capability key to the parameter tuples its
// handler is invoked with, once per tuple.
type ActionSpec map[string][]any

// Add appends one parameter tuple for key.
func (a ActionSpec) Add(key string, params ...any) {
	tuple := make([]any, len(params))
	copy(tuple, params)
	a[key] = append(a[key], tuple)
}
