package cmd

import (
	"fmt"
	"os"

	"github.com/icco/xentune/internal/gui"
	"github.com/icco/xentune/internal/input"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the explorer window",
	Long: `Open the explorer in a window.

The top band is a continuous cents axis, below it the ratio keyboard and the
EDO keyboard. Click, drag or touch to play; the number row plays EDO steps
0 through 9.

Keys:
  1-0          play EDO steps
  esc          all off
  arrows       change the EDO size
  w            next waveform
  r            reference drone on/off
  tab          next ratio set
  m            show the ratio modes row
  ctrl+shift+v paste ratio sets from the clipboard
`,
	Run: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) {
	logger, err := newLogger(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
	r, err := newRig(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}

	router := input.NewRouter(r.session, input.DefaultLayout(960), nil)
	runErr := gui.Run(router, "xentune")
	if err := r.Close(); err != nil {
		logger.Error("shutdown", "err", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running window: %v\n", runErr)
		exit(1)
	}
}
