// pkg/report/report_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: None
// PURPOSE: Test run summaries and plain text report lines

package report_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/arthur-debert/gather/pkg/report"
	"github.com/arthur-debert/gather/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items() []*types.Savable {
	saved := types.NewText("a.html", "a")
	saved.State = types.StateCommitted
	skipped := types.NewFetch("b.pdf", "http://example.com/b.pdf", true)
	skipped.State = types.StateCommitted
	skipped.Skipped = true
	failed := types.NewFailed("c.html", fmt.Errorf("disk full"))
	return []*types.Savable{saved, skipped, failed}
}

func TestSummarize(t *testing.T) {
	s := report.Summarize(items())
	assert.Equal(t, report.Summary{Saved: 1, Skipped: 1, Failed: 1}, s)
	assert.Equal(t, "1 saved, 1 skipped, 1 failed", s.String())
}

func TestSaved_Text(t *testing.T) {
	var buf bytes.Buffer
	report.New(&buf, report.FormatText).Saved("/out", items())

	out := buf.String()
	assert.Contains(t, out, "/out\n")
	assert.Contains(t, out, "saved   a.html")
	assert.Contains(t, out, "skipped b.pdf")
	assert.Contains(t, out, "failed  c.html")
	assert.Contains(t, out, "disk full")
	assert.NotContains(t, out, "\x1b[", "text format has no escape codes")
}

func TestLegacy(t *testing.T) {
	var buf bytes.Buffer
	report.New(&buf, report.FormatText).Legacy("/out", []string{"x", "y"})
	assert.Contains(t, buf.String(), "2 saved by input plugin")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want report.Format
	}{
		{"", report.FormatAuto},
		{"TERM", report.FormatTerminal},
		{"plain", report.FormatText},
	}
	for _, tt := range tests {
		got, err := report.ParseFormat(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := report.ParseFormat("json")
	assert.Error(t, err)
}
