package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/xentune/internal/input"
	"github.com/icco/xentune/internal/tui"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var (
	deviceName string
	rootNote   uint8
)

var virtualCmd = &cobra.Command{
	Use:   "virtual",
	Short: "Play EDO steps from a virtual MIDI device",
	Long: `Create a virtual MIDI input device and play the EDO keyboard from it.

The device shows up as a MIDI output destination in other music software.
The root note plays step 0 and every key above it plays the next step of the
current EDO, so a 19-EDO scale fills a keyboard from the root up. All Notes
Off (CC 123) silences everything. The terminal explorer runs alongside.

Example:
  xentune virtual --name "Xentune" --edo 19
`,
	Run: runVirtual,
}

func init() {
	virtualCmd.Flags().StringVarP(&deviceName, "name", "n", "Xentune Virtual Input", "Name for the virtual MIDI device")
	virtualCmd.Flags().Uint8Var(&rootNote, "root-note", 60, "MIDI note that plays EDO step 0")
	rootCmd.AddCommand(virtualCmd)
}

func runVirtual(cmd *cobra.Command, args []string) {
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
	p := tea.NewProgram(tui.New(router, "xentune • "+deviceName), tea.WithAltScreen(), tea.WithMouseCellMotion())

	in, err := openVirtualIn(deviceName, p, logger.Debug)
	if err != nil {
		_ = r.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		p.Send(tea.Quit())
	}()

	_, runErr := p.Run()
	in.Close()
	if err := r.Close(); err != nil {
		logger.Error("shutdown", "err", err)
	}
	if runErr != nil {
		fmt.Printf("Error running program: %v\n", runErr)
		exit(1)
	}
}

// virtualIn is an open virtual MIDI input feeding a running program.
type virtualIn struct {
	driver *rtmididrv.Driver
	port   drivers.In
	stop   func()
}

func openVirtualIn(name string, p *tea.Program, debug func(msg interface{}, keyvals ...interface{})) (*virtualIn, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}

	port, err := driver.OpenVirtualIn(name)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to create virtual MIDI port: %w", err)
	}

	// The callback runs on the driver's goroutine; p.Send hands each event to
	// the program loop, which owns the session.
	stop, err := port.Listen(func(data []byte, timestamp int32) {
		msg, ok := decodeMIDI(midi.Message(data), rootNote)
		if !ok {
			return
		}
		debug("midi in", "msg", midi.Message(data).String())
		p.Send(msg)
	}, drivers.ListenConfig{})
	if err != nil {
		_ = port.Close()
		driver.Close()
		return nil, fmt.Errorf("failed to listen to MIDI port: %w", err)
	}

	go p.Send(tui.StatusMsg(fmt.Sprintf("Listening on: %s", port.String())))
	return &virtualIn{driver: driver, port: port, stop: stop}, nil
}

func (v *virtualIn) Close() {
	if v.stop != nil {
		v.stop()
	}
	_ = v.port.Close()
	v.driver.Close()
}

// decodeMIDI turns an incoming message into a program message. Notes below
// root are ignored; notes above the EDO are left to the router to reject.
func decodeMIDI(msg midi.Message, root uint8) (tea.Msg, bool) {
	var ch, key, vel, cc, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		if key < root {
			return nil, false
		}
		return tui.StepMsg{Step: int(key - root), Down: true}, true
	case msg.GetNoteEnd(&ch, &key):
		if key < root {
			return nil, false
		}
		return tui.StepMsg{Step: int(key - root)}, true
	case msg.GetControlChange(&ch, &cc, &val):
		if cc == 123 {
			return tea.KeyMsg{Type: tea.KeyEsc}, true
		}
	}
	return nil, false
}
