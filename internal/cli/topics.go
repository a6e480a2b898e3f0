package cli

import (
	"embed"
	"io"
	"io/fs"
	"os"

	"github.com/arthur-debert/gather/pkg/cobrax/topics"
	"github.com/arthur-debert/gather/pkg/report"
	"github.com/spf13/cobra"
)

//go:embed help/*.md
var helpFiles embed.FS

// installTopics adds `gather help <topic>`. Markdown is rendered with
// glamour only when out is a terminal.
func installTopics(rootCmd *cobra.Command, out io.Writer) error {
	sub, err := fs.Sub(helpFiles, "help")
	if err != nil {
		return err
	}
	opts := topics.Options{Renderer: &topics.PlainRenderer{}}
	if f, ok := out.(*os.File); ok && report.DetectFormat(f) == report.FormatTerminal {
		opts.Renderer = topics.NewGlamourRenderer()
	}
	tm, err := topics.New(sub, opts)
	if err != nil {
		return err
	}
	tm.Install(rootCmd)
	return nil
}
