// Package table provides the generic tabular data model exchanged between
// input and output plugins.
//
// A Table has ordered, uniquely named fields, an optional map from well-known
// semantic roles (title, url, date, ...) to concrete field names, and an
// ordered list of records whose arity always equals the field count. Records
// are read and written through Record views that accept a field position, an
// exact field name, or a role. Unknown names are ACCESSOR errors, never
// silent defaults.
package table
