// Package report prints the outcome of a run: one line per artifact and a
// closing summary.
package report

import (
	"fmt"
	"io"

	"github.com/arthur-debert/gather/pkg/types"
	"github.com/charmbracelet/lipgloss"
)

// Summary counts artifacts by outcome.
type Summary struct {
	Saved   int
	Skipped int
	Failed  int
}

// Summarize counts items by their final state.
func Summarize(items []*types.Savable) Summary {
	var s Summary
	for _, item := range items {
		switch {
		case item.Failed():
			s.Failed++
		case item.Skipped:
			s.Skipped++
		case item.State == types.StateCommitted:
			s.Saved++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d saved, %d skipped, %d failed", s.Saved, s.Skipped, s.Failed)
}

type styles struct {
	saved   lipgloss.Style
	skipped lipgloss.Style
	failed  lipgloss.Style
	detail  lipgloss.Style
	header  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		saved:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1F7A1F", Dark: "#5FD75F"}).Bold(true),
		skipped: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8A6D00", Dark: "#D7AF5F"}),
		failed:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF5F5F"}).Bold(true),
		detail:  r.NewStyle().Faint(true).PaddingLeft(4),
		header:  r.NewStyle().Bold(true).Underline(true),
	}
}

// Reporter writes run reports.
type Reporter struct {
	w      io.Writer
	format Format
	st     styles
}

// New creates a Reporter. FormatAuto must be resolved by the caller, see
// DetectFormat; it is treated as FormatText here.
func New(w io.Writer, format Format) *Reporter {
	return &Reporter{w: w, format: format, st: newStyles(lipgloss.NewRenderer(w))}
}

func (r *Reporter) render(style lipgloss.Style, s string) string {
	if r.format != FormatTerminal {
		return s
	}
	return style.Render(s)
}

// Saved prints the outcome of a save batch.
func (r *Reporter) Saved(dir string, items []*types.Savable) {
	fmt.Fprintln(r.w, r.render(r.st.header, dir))
	for _, item := range items {
		var status string
		switch {
		case item.Failed():
			status = r.render(r.st.failed, "failed ")
		case item.Skipped:
			status = r.render(r.st.skipped, "skipped")
		default:
			status = r.render(r.st.saved, "saved  ")
		}
		fmt.Fprintf(r.w, "  %s %s\n", status, item.File)
		if item.Failed() {
			fmt.Fprintln(r.w, r.render(r.st.detail, item.Error))
		}
	}
	fmt.Fprintln(r.w, Summarize(items).String())
}

// Legacy prints the files an input plugin reported as written by itself.
func (r *Reporter) Legacy(dir string, saved []string) {
	fmt.Fprintln(r.w, r.render(r.st.header, dir))
	for _, f := range saved {
		fmt.Fprintf(r.w, "  %s %s\n", r.render(r.st.saved, "saved  "), f)
	}
	fmt.Fprintf(r.w, "%d saved by input plugin\n", len(saved))
}

// Satisfied prints the note for a batch a handler installed by itself.
func (r *Reporter) Satisfied(dir string) {
	fmt.Fprintln(r.w, r.render(r.st.header, dir))
	fmt.Fprintln(r.w, r.render(r.st.skipped, "installed by output handler"))
}
