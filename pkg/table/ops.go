package table

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Parameter functions output plugins apply before rendering. Each one keeps
// record arity intact and rewinds the cursor.

// SortBy orders records by the value behind symbol. time.Time values compare
// chronologically, everything else by its text form. The sort is stable.
func (t *Table) SortBy(symbol string, desc bool) error {
	i, err := t.resolve(symbol)
	if err != nil {
		return err
	}
	sort.SliceStable(t.records, func(a, b int) bool {
		c := compare(t.records[a][i], t.records[b][i])
		if desc {
			return c > 0
		}
		return c < 0
	})
	t.Reset()
	return nil
}

// Filter keeps the records for which keep returns true.
func (t *Table) Filter(keep func(*Record) bool) {
	kept := t.records[:0]
	for pos := range t.records {
		if keep(&Record{table: t, pos: pos}) {
			kept = append(kept, t.records[pos])
		}
	}
	for pos := len(kept); pos < len(t.records); pos++ {
		t.records[pos] = nil
	}
	t.records = kept
	t.Reset()
}

// Limit truncates the table to its first n records. n <= 0 is a no-op.
func (t *Table) Limit(n int) {
	if n > 0 && n < len(t.records) {
		t.records = t.records[:n]
	}
	t.Reset()
}

// Apply rewrites the value behind symbol in every record.
func (t *Table) Apply(symbol string, fn func(any) any) error {
	i, err := t.resolve(symbol)
	if err != nil {
		return err
	}
	for _, row := range t.records {
		row[i] = fn(row[i])
	}
	t.Reset()
	return nil
}

func compare(a, b any) int {
	ta, aIsTime := a.(time.Time)
	tb, bIsTime := b.(time.Time)
	if aIsTime && bIsTime {
		return ta.Compare(tb)
	}
	return strings.Compare(text(a), text(b))
}

func text(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
