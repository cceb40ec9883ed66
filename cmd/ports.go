package cmd

import (
	"fmt"

	"github.com/icco/xentune/internal/midiout"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI outputs usable with --midi-out",
	Run: func(cmd *cobra.Command, args []string) {
		names := midiout.OutPorts()
		if len(names) == 0 {
			fmt.Println("No MIDI output ports found.")
			return
		}
		for i, name := range names {
			fmt.Printf("%2d  %s\n", i, name)
		}
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
