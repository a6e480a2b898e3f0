package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/gather/internal/cli"
	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/charmbracelet/lipgloss"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF5F5F"}).Bold(true)

func main() {
	rootCmd, err := cli.NewRootCmd(cli.Deps{})
	if err == nil {
		err = rootCmd.Execute()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		if errors.IsErrorCode(err, errors.ErrUsage) {
			fmt.Fprintln(os.Stderr, "Run 'gather --help' for usage.")
		}
	}
	os.Exit(errors.ExitCode(err))
}
