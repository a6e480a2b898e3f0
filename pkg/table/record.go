package table

import (
	"fmt"

	"github.com/arthur-debert/gather/pkg/errors"
)

// Record is a read/write view bound to one record of a Table.
type Record struct {
	table *Table
	pos   int
}

// Index returns the record's position in its table.
func (r *Record) Index() int {
	return r.pos
}

// row returns the bound record. A view outlives its record when Filter or
// Limit shrink the table.
func (r *Record) row() ([]any, error) {
	if r.pos < 0 || r.pos >= len(r.table.records) {
		return nil, errors.Newf(errors.ErrAccessor, "record %d no longer exists", r.pos).
			WithDetail("record", r.pos)
	}
	return r.table.records[r.pos], nil
}

// ByIndex returns the value at field position i.
func (r *Record) ByIndex(i int) (any, error) {
	if i < 0 || i >= len(r.table.fields) {
		return nil, errors.Newf(errors.ErrAccessor, "field position %d out of range", i).
			WithDetail("symbol", i)
	}
	row, err := r.row()
	if err != nil {
		return nil, err
	}
	return row[i], nil
}

// ByName returns the value of an exact field name. Roles are not consulted.
func (r *Record) ByName(name string) (any, error) {
	i, err := r.table.FieldIndex(name)
	if err != nil {
		return nil, err
	}
	row, err := r.row()
	if err != nil {
		return nil, err
	}
	return row[i], nil
}

// Get resolves symbol as a field name first, then as a well-known role.
func (r *Record) Get(symbol string) (any, error) {
	i, err := r.table.resolve(symbol)
	if err != nil {
		return nil, err
	}
	row, err := r.row()
	if err != nil {
		return nil, err
	}
	return row[i], nil
}

// String is Get formatted as text. Unknown symbols and nil values yield "".
func (r *Record) String(symbol string) string {
	v, err := r.Get(symbol)
	if err != nil || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Set writes value through a field name or role.
func (r *Record) Set(symbol string, value any) error {
	i, err := r.table.resolve(symbol)
	if err != nil {
		return err
	}
	row, err := r.row()
	if err != nil {
		return err
	}
	row[i] = value
	return nil
}

// SetByIndex writes value at field position i.
func (r *Record) SetByIndex(i int, value any) error {
	if i < 0 || i >= len(r.table.fields) {
		return errors.Newf(errors.ErrAccessor, "field position %d out of range", i).
			WithDetail("symbol", i)
	}
	row, err := r.row()
	if err != nil {
		return err
	}
	row[i] = value
	return nil
}

// Values returns a copy of the record's values in field order, or nil when
// the record no longer exists.
func (r *Record) Values() []any {
	row, err := r.row()
	if err != nil {
		return nil
	}
	out := make([]any, len(row))
	copy(out, row)
	return out
}

// Map returns the record keyed by field name, plus one entry per role that
// does not collide with a field name. A record that no longer exists
// yields nil.
func (r *Record) Map() map[string]any {
	row, err := r.row()
	if err != nil {
		return nil
	}
	out := make(map[string]any, len(row)+len(r.table.wellKnown))
	for i, name := range r.table.fields {
		out[name] = row[i]
	}
	for role, field := range r.table.wellKnown {
		if r.table.HasField(role) {
			continue
		}
		out[role] = row[r.table.index[field]]
	}
	return out
}
