package main

import (
	"log/slog"
	"os"

	"tractorops-sim/internal/config"
	"tractorops-sim/internal/core"
)

// newWriters assembles the sink stack from flags, config, and env.
// Returns the telemetry writer, the alert writer, and a cleanup func.
func newWriters(cfg *config.Config, printOnly, colorOut bool, logFile string, log *slog.Logger) (core.TelemetryWriter, core.AlertWriter, func(), error) {
	cleanup := func() {}

	var stdout core.TelemetryWriter
	if colorOut {
		stdout = core.NewColorStdoutWriter()
	} else {
		stdout = &core.StdoutWriter{}
	}

	writers := []core.TelemetryWriter{stdout}

	if logFile != "" {
		fw, err := core.NewFileWriter(logFile, logFile+".alerts")
		if err != nil {
			return nil, nil, cleanup, err
		}
		writers = append(writers, fw)
		cleanup = func() { _ = fw.Close() }
	}

	endpoint := cfg.Sinks.GreptimeEndpoint
	if env := os.Getenv("GREPTIMEDB_ENDPOINT"); env != "" {
		endpoint = env
	}
	if endpoint != "" && !printOnly {
		gw, err := core.NewGreptimeDBWriter(endpoint, cfg.Sinks.GreptimeDatabase, log)
		if err != nil {
			return nil, nil, cleanup, err
		}
		writers = append(writers, gw)
	}

	mw := core.NewMultiWriter(writers...)
	return mw, mw, cleanup, nil
}
