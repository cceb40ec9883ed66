package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	baseFrequency float64
	edoDivisions  int
	ratioText     string
	refOffset     float64
	refEnabled    bool
	refPolicy     string
	waveformName  string
	centsDown     float64
	centsUp       float64
	channelCount  int
	midiOutName   string
	recordPath    string
	mute          bool
	logLevel      string
	logFile       string
	logFileHandle *os.File

	osExit = os.Exit
)

var rootCmd = &cobra.Command{
	Use:   "xentune",
	Short: "A microtonal tuning explorer",
	Long: `xentune is a microtonal tuning explorer.

Play free pitches on a cents axis, just-intonation chords on a ratio keyboard
and equal divisions of the octave on an EDO keyboard, against a reference
drone that follows whatever you hold down. Sound comes from a built-in
oscillator bank and, optionally, a MIDI output using pitch bend per voice.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	defer closeLog()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		closeLog()
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.Float64Var(&baseFrequency, "base", 220, "base frequency in Hz")
	f.IntVar(&edoDivisions, "edo", 12, "equal divisions of the octave (at least 2)")
	f.StringVar(&ratioText, "ratios", "4:5:6:7:8", `ratio sets separated by spaces, e.g. "4:5:6 8:9:10"`)
	f.Float64Var(&refOffset, "ref-offset", 1200, "cents the reference drone sits below the base")
	f.BoolVar(&refEnabled, "ref", true, "start the reference drone while anything is held")
	f.StringVar(&refPolicy, "ref-policy", "immediate", "when disabling the drone takes effect: immediate or deferred")
	f.StringVarP(&waveformName, "waveform", "w", "sawtooth", "sine, square, sawtooth or triangle")
	f.Float64Var(&centsDown, "cents-down", 1400, "cents shown below the base on the cents axis")
	f.Float64Var(&centsUp, "cents-up", 2000, "cents shown above the base on the cents axis")
	f.IntVar(&channelCount, "channels", 10, "voices including the reference drone (2-15)")
	f.StringVar(&midiOutName, "midi-out", "", "also play on the MIDI output whose name contains this")
	f.StringVar(&recordPath, "record", "", "write everything played to this Standard MIDI File")
	f.BoolVar(&mute, "mute", false, "do not open the audio device")
	f.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	f.StringVar(&logFile, "log-file", "", "write logs to this file")
}

// newLogger builds the logger for a command. Terminal hosts own the screen,
// so unless a log file is given their logs are discarded.
func newLogger(toStderr bool) (*log.Logger, error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	var w io.Writer = io.Discard
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		logFileHandle = f
		w = f
	case toStderr:
		w = os.Stderr
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "xentune",
	}), nil
}

// exit closes the log file before leaving, since os.Exit skips the deferred
// close in Execute.
func exit(code int) {
	closeLog()
	osExit(code)
}

func closeLog() {
	if logFileHandle != nil {
		_ = logFileHandle.Close()
		logFileHandle = nil
	}
}
