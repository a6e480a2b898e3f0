// pkg/table/table_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: None
// PURPOSE: Test field registration, role aliasing, record arity and cursor walks

package table_test

import (
	"testing"
	"time"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/arthur-debert/gather/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New()
	tbl.AddFields("guid", "headline", "link", "published")
	tbl.AddWellKnown(map[string]string{
		table.RoleID:    "guid",
		table.RoleTitle: "headline",
		table.RoleURL:   "link",
		table.RoleDate:  "published",
	})
	require.NoError(t, tbl.AddRecord("1", "First", "http://example.com/1", "2024-01-02"))
	require.NoError(t, tbl.AddRecord("2", "Second", "http://example.com/2", "2024-01-01"))
	return tbl
}

func TestAddFields_IgnoresDuplicates(t *testing.T) {
	tbl := table.New()
	tbl.AddFields("a", "b")
	tbl.AddFields("b", "c", "a")

	assert.Equal(t, []string{"a", "b", "c"}, tbl.Fields())

	i, err := tbl.FieldIndex("c")
	require.NoError(t, err)
	assert.Equal(t, 2, i)
}

func TestAddFields_AfterRecordsKeepsArity(t *testing.T) {
	tbl := table.New()
	tbl.AddFields("a")
	require.NoError(t, tbl.AddRecord(1))

	tbl.AddFields("b")

	r, err := tbl.Record(0)
	require.NoError(t, err)
	assert.Equal(t, []any{1, nil}, r.Values())
}

func TestAddWellKnown_DropsUnknownFields(t *testing.T) {
	tbl := table.New()
	tbl.AddFields("headline")

	dropped := tbl.AddWellKnown(map[string]string{
		table.RoleTitle: "headline",
		table.RoleURL:   "missing",
	})

	assert.Equal(t, []string{table.RoleURL}, dropped)
	field, ok := tbl.WellKnown(table.RoleTitle)
	assert.True(t, ok)
	assert.Equal(t, "headline", field)
	_, ok = tbl.WellKnown(table.RoleURL)
	assert.False(t, ok)
}

func TestAddRecord_ArityMismatchLeavesRecordsUnchanged(t *testing.T) {
	for _, n := range []int{0, 1, 3, 7} {
		tbl := table.New()
		tbl.AddFields("a", "b")
		require.NoError(t, tbl.AddRecord("x", "y"))

		err := tbl.AddRecord(make([]any, n)...)

		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		assert.Equal(t, 1, tbl.Len(), "arity %d must not append", n)
	}
}

func TestMustAddRecord_Panics(t *testing.T) {
	tbl := table.New()
	tbl.AddFields("a")
	assert.Panics(t, func() { tbl.MustAddRecord(1, 2) })
}

func TestAddRecordMap(t *testing.T) {
	tbl := table.New()
	tbl.AddFields("a", "b")

	require.NoError(t, tbl.AddRecordMap(map[string]any{"b": 2}))
	r, err := tbl.Record(0)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, 2}, r.Values())

	err = tbl.AddRecordMap(map[string]any{"zzz": 1})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAccessor))
	assert.Equal(t, 1, tbl.Len())
}

func TestRecordAccess(t *testing.T) {
	tbl := newFeedTable(t)
	r, err := tbl.Record(0)
	require.NoError(t, err)

	v, err := r.ByIndex(1)
	require.NoError(t, err)
	assert.Equal(t, "First", v)

	v, err = r.ByName("link")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/1", v)

	v, err = r.Get(table.RoleTitle)
	require.NoError(t, err)
	assert.Equal(t, "First", v)

	_, err = r.ByName(table.RoleTitle)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAccessor), "ByName must not resolve roles")

	_, err = r.Get("bogus")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAccessor))
	assert.Contains(t, err.Error(), "bogus")

	_, err = r.ByIndex(4)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAccessor))
}

func TestRecordAccess_FieldWinsOverRole(t *testing.T) {
	tbl := table.New()
	tbl.AddFields("title", "name")
	tbl.AddWellKnown(map[string]string{table.RoleTitle: "name"})
	require.NoError(t, tbl.AddRecord("field-title", "role-title"))

	r, err := tbl.Record(0)
	require.NoError(t, err)

	assert.Equal(t, "field-title", r.String("title"))
	assert.Equal(t, "field-title", r.Map()["title"])
}

func TestRecordSet(t *testing.T) {
	tbl := newFeedTable(t)
	r, err := tbl.Record(1)
	require.NoError(t, err)

	require.NoError(t, r.Set(table.RoleTitle, "Changed"))
	assert.Equal(t, "Changed", r.String("headline"))

	require.NoError(t, r.SetByIndex(0, "id-2"))
	assert.Equal(t, "id-2", r.String(table.RoleID))

	err = r.Set("nope", 1)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAccessor))
}

func TestRecordMap_IncludesRoles(t *testing.T) {
	tbl := newFeedTable(t)
	r, err := tbl.Record(0)
	require.NoError(t, err)

	m := r.Map()
	assert.Equal(t, "First", m["headline"])
	assert.Equal(t, "First", m[table.RoleTitle])
	assert.Equal(t, "http://example.com/1", m[table.RoleURL])
}

func TestCursor_IsRestartable(t *testing.T) {
	tbl := newFeedTable(t)

	var ids []string
	for r, ok := tbl.Next(); ok; r, ok = tbl.Next() {
		ids = append(ids, r.String(table.RoleID))
	}
	assert.Equal(t, []string{"1", "2"}, ids)

	_, ok := tbl.Next()
	assert.False(t, ok)

	tbl.Reset()
	r, ok := tbl.Next()
	require.True(t, ok)
	assert.Equal(t, 0, r.Index())
}

func TestRecord_OutOfRange(t *testing.T) {
	tbl := newFeedTable(t)
	_, err := tbl.Record(2)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestSortBy(t *testing.T) {
	tbl := newFeedTable(t)

	require.NoError(t, tbl.SortBy(table.RoleDate, false))
	r, _ := tbl.Record(0)
	assert.Equal(t, "Second", r.String(table.RoleTitle))

	require.NoError(t, tbl.SortBy(table.RoleDate, true))
	r, _ = tbl.Record(0)
	assert.Equal(t, "First", r.String(table.RoleTitle))

	assert.Error(t, tbl.SortBy("unknown", false))
}

func TestSortBy_Times(t *testing.T) {
	tbl := table.New()
	tbl.AddFields("when")
	late := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	early := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	tbl.MustAddRecord(late)
	tbl.MustAddRecord(early)

	require.NoError(t, tbl.SortBy("when", false))
	r, _ := tbl.Record(0)
	v, _ := r.Get("when")
	assert.Equal(t, early, v)
}

func TestFilterAndLimit(t *testing.T) {
	tbl := newFeedTable(t)
	tbl.MustAddRecord("3", "Third", "http://example.com/3", "2024-01-03")

	tbl.Filter(func(r *table.Record) bool { return r.String(table.RoleID) != "2" })
	assert.Equal(t, 2, tbl.Len())

	tbl.Limit(1)
	assert.Equal(t, 1, tbl.Len())
	r, _ := tbl.Record(0)
	assert.Equal(t, "First", r.String(table.RoleTitle))
}

func TestRecord_StaleAfterLimit(t *testing.T) {
	tbl := newFeedTable(t)
	second, err := tbl.Record(1)
	require.NoError(t, err)

	tbl.Limit(1)

	_, err = second.ByIndex(0)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAccessor))
	_, err = second.ByName("headline")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAccessor))
	_, err = second.Get(table.RoleTitle)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAccessor))
	assert.True(t, errors.IsErrorCode(second.Set(table.RoleTitle, "x"), errors.ErrAccessor))
	assert.True(t, errors.IsErrorCode(second.SetByIndex(0, "x"), errors.ErrAccessor))
	assert.Empty(t, second.String(table.RoleTitle))
	assert.Nil(t, second.Values())
	assert.Nil(t, second.Map())
}

func TestClone(t *testing.T) {
	tbl := newFeedTable(t)
	c := tbl.Clone()

	c.Limit(1)
	r, err := c.Record(0)
	require.NoError(t, err)
	require.NoError(t, r.Set(table.RoleTitle, "Changed"))

	assert.Equal(t, 2, tbl.Len())
	orig, _ := tbl.Record(0)
	assert.Equal(t, "First", orig.String(table.RoleTitle))
	assert.Equal(t, []string{"link"}, c.URLFields())
}

func TestApply(t *testing.T) {
	tbl := newFeedTable(t)
	require.NoError(t, tbl.Apply(table.RoleTitle, func(v any) any { return "* " + v.(string) }))

	r, _ := tbl.Record(1)
	assert.Equal(t, "* Second", r.String("headline"))
}

func TestURLFields(t *testing.T) {
	tbl := newFeedTable(t)
	assert.Equal(t, []string{"link"}, tbl.URLFields())

	tbl.AddFields("media")
	tbl.AddWellKnown(map[string]string{table.RoleEnclosure: "media"})
	assert.Equal(t, []string{"link", "media"}, tbl.URLFields())
}
