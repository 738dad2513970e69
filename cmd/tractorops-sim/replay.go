package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tractorops-sim/internal/core"
	"tractorops-sim/internal/logging"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayColor     bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded telemetry log",
	Long:  "replay re-emits a JSONL telemetry log through the configured sinks at a speed multiplier.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}

		var writer core.TelemetryWriter
		switch {
		case replayColor:
			writer = core.NewColorStdoutWriter()
		case replayPrintOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "":
			writer = &core.StdoutWriter{}
		default:
			log := logging.New("info")
			gw, err := core.NewGreptimeDBWriter(os.Getenv("GREPTIMEDB_ENDPOINT"), "public", log)
			if err != nil {
				return fmt.Errorf("init GreptimeDB writer: %w", err)
			}
			writer = gw
		}

		return core.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to telemetry log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	replayCmd.Flags().BoolVar(&replayColor, "color", false, "Human-friendly colorized STDOUT output")
}
