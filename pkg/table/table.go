package table

import (
	"fmt"

	"github.com/arthur-debert/gather/pkg/errors"
)

// Well-known semantic roles an input plugin may alias to one of its fields.
const (
	RoleID        = "id"
	RoleTitle     = "title"
	RoleURL       = "url"
	RoleDate      = "date"
	RoleSummary   = "summary"
	RoleAuthor    = "author"
	RoleCategory  = "category"
	RoleLocation  = "location"
	RoleEnclosure = "enclosure"
)

// URLRoles lists the roles whose values are fetchable URLs.
var URLRoles = []string{RoleURL, RoleEnclosure}

// Table is the generic ordered table handed from input plugins to output
// plugins. Field names are unique, every record has one value per field and
// well-known roles always point at an existing field.
//
// A Table carries a single cursor; only one walk over it may be active at a
// time and it is not safe for concurrent use.
type Table struct {
	fields    []string
	index     map[string]int
	wellKnown map[string]string
	records   [][]any
	pos       int

	// accessors caches symbol resolution (field name or role) to a position
	accessors map[string]int
}

// New creates an empty table.
func New() *Table {
	return &Table{
		index:     make(map[string]int),
		wellKnown: make(map[string]string),
		accessors: make(map[string]int),
	}
}

// Clone returns an independent copy of the table with its cursor rewound.
// Record values themselves are shared, not deep-copied.
func (t *Table) Clone() *Table {
	c := New()
	c.fields = append([]string(nil), t.fields...)
	for name, i := range t.index {
		c.index[name] = i
	}
	for role, field := range t.wellKnown {
		c.wellKnown[role] = field
	}
	c.records = make([][]any, len(t.records))
	for i, row := range t.records {
		c.records[i] = append([]any(nil), row...)
	}
	return c
}

// AddFields appends previously unseen field names. Re-adding an existing
// name is a no-op.
func (t *Table) AddFields(names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, exists := t.index[name]; exists {
			continue
		}
		t.index[name] = len(t.fields)
		t.fields = append(t.fields, name)
		delete(t.accessors, name)
		if len(t.records) > 0 {
			// keep arity for tables that grow after records were added
			for i := range t.records {
				t.records[i] = append(t.records[i], nil)
			}
		}
	}
}

// AddWellKnown stores role aliases. Entries whose field does not exist are
// dropped and reported back to the caller.
func (t *Table) AddWellKnown(roles map[string]string) (dropped []string) {
	for role, field := range roles {
		if _, exists := t.index[field]; !exists {
			dropped = append(dropped, role)
			continue
		}
		t.wellKnown[role] = field
		delete(t.accessors, role)
	}
	return dropped
}

// AddRecord appends one record. The number of values must equal the number
// of fields; a mismatch leaves the table unchanged.
func (t *Table) AddRecord(values ...any) error {
	if len(values) != len(t.fields) {
		return errors.Newf(errors.ErrInvalidInput,
			"record has %d values, table has %d fields", len(values), len(t.fields)).
			WithDetail("fields", t.Fields())
	}
	row := make([]any, len(values))
	copy(row, values)
	t.records = append(t.records, row)
	return nil
}

// MustAddRecord is AddRecord for callers that treat an arity mismatch as a
// programming error.
func (t *Table) MustAddRecord(values ...any) {
	if err := t.AddRecord(values...); err != nil {
		panic(fmt.Sprintf("table: %v", err))
	}
}

// AddRecordMap appends a record built from a name→value map. Names that are
// not fields are rejected with an accessor error.
func (t *Table) AddRecordMap(values map[string]any) error {
	row := make([]any, len(t.fields))
	for name, v := range values {
		i, ok := t.index[name]
		if !ok {
			return accessorError(name)
		}
		row[i] = v
	}
	t.records = append(t.records, row)
	return nil
}

// Fields returns a copy of the ordered field names.
func (t *Table) Fields() []string {
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

// HasField reports whether name is a field of the table.
func (t *Table) HasField(name string) bool {
	_, ok := t.index[name]
	return ok
}

// FieldIndex returns the position of an exact field name.
func (t *Table) FieldIndex(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return -1, accessorError(name)
	}
	return i, nil
}

// WellKnown returns the field aliased by role.
func (t *Table) WellKnown(role string) (string, bool) {
	field, ok := t.wellKnown[role]
	return field, ok
}

// Roles returns a copy of the role → field map.
func (t *Table) Roles() map[string]string {
	out := make(map[string]string, len(t.wellKnown))
	for k, v := range t.wellKnown {
		out[k] = v
	}
	return out
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Record returns a view bound to record i.
func (t *Table) Record(i int) (*Record, error) {
	if i < 0 || i >= len(t.records) {
		return nil, errors.Newf(errors.ErrNotFound, "record %d out of range (0..%d)", i, len(t.records)-1)
	}
	return &Record{table: t, pos: i}, nil
}

// Reset rewinds the table cursor.
func (t *Table) Reset() {
	t.pos = 0
}

// Next returns the record under the cursor and advances it. The second
// return value is false once the records are exhausted.
func (t *Table) Next() (*Record, bool) {
	if t.pos >= len(t.records) {
		return nil, false
	}
	r := &Record{table: t, pos: t.pos}
	t.pos++
	return r, true
}

// URLFields returns the distinct fields aliased by URL-typed roles, in role order.
func (t *Table) URLFields() []string {
	var out []string
	seen := make(map[string]bool)
	for _, role := range URLRoles {
		field, ok := t.wellKnown[role]
		if !ok || seen[field] {
			continue
		}
		seen[field] = true
		out = append(out, field)
	}
	return out
}

// resolve maps a symbol to a field position. Fields win over roles; results
// are cached per table.
func (t *Table) resolve(symbol string) (int, error) {
	if i, ok := t.accessors[symbol]; ok {
		return i, nil
	}
	i, ok := t.index[symbol]
	if !ok {
		field, isRole := t.wellKnown[symbol]
		if !isRole {
			return -1, accessorError(symbol)
		}
		i = t.index[field]
	}
	t.accessors[symbol] = i
	return i, nil
}

func accessorError(symbol string) error {
	return errors.Newf(errors.ErrAccessor, "unknown field or role '%s'", symbol).
		WithDetail("symbol", symbol)
}
