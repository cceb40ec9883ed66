package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/xentune/internal/input"
	"github.com/icco/xentune/internal/tui"
	"github.com/spf13/cobra"
)

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Run the explorer in the terminal",
	Long: `Run the explorer in the terminal.

Click and drag with the mouse to play. The terminal does not report key
releases, so the number keys toggle EDO steps on and off instead.`,
	Run: runTerm,
}

func init() {
	rootCmd.AddCommand(termCmd)
}

func runTerm(cmd *cobra.Command, args []string) {
	logger, err := newLogger(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
	r, err := newRig(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}

	router := input.NewRouter(r.session, input.DefaultLayout(80), nil)
	p := tea.NewProgram(tui.New(router, "xentune"), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := p.Run()
	if err := r.Close(); err != nil {
		logger.Error("shutdown", "err", err)
	}
	if runErr != nil {
		fmt.Printf("Error running program: %v\n", runErr)
		exit(1)
	}
}
