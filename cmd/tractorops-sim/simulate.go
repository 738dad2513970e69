package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tractorops-sim/internal/admin"
	"tractorops-sim/internal/config"
	"tractorops-sim/internal/core"
	"tractorops-sim/internal/logging"
	"tractorops-sim/internal/source"
)

var (
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simLogFile    string
	simPrintOnly  bool
	simColor      bool
	simListen     string
	simSource     string
	simLogLevel   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time tractor simulator",
	Long:  "simulate connects the telemetry core to the simulated machine and serves the admin UI.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(simLogLevel)
		ctx := logging.NewContext(context.Background(), log)

		var cfg *config.Config
		if simConfigPath != "" {
			loaded, err := config.Load(simConfigPath, simSchemaPath)
			if err != nil {
				return err
			}
			cfg = loaded
		} else {
			cfg = config.Default()
		}

		if cmd.Flags().Changed("tick") {
			cfg.TickInterval = config.Duration(simTick)
		}
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			cfg.TickInterval = config.Duration(d)
		}
		if machineID := os.Getenv("MACHINE_ID"); machineID != "" {
			cfg.MachineID = machineID
		}
		if simListen != "" {
			cfg.Admin.Listen = simListen
		}

		writer, alertWriter, cleanup, err := newWriters(cfg, simPrintOnly, simColor, simLogFile, log)
		if err != nil {
			return err
		}
		defer cleanup()

		c := core.New(cfg, writer, alertWriter)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		info, err := c.Connect(ctx, source.Descriptor{Type: source.Type(simSource), Port: "virtual"})
		if err != nil {
			return err
		}
		log.Info("machine connected", "manufacturer", info.Manufacturer, "model", info.Model)

		srv := admin.NewServer(c)
		go func() {
			log.Info("admin UI listening", "addr", cfg.Admin.Listen)
			if err := srv.Start(ctx, cfg.Admin.Listen); err != nil && err != http.ErrServerClosed {
				log.Error("admin server failed", "err", err)
			}
		}()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		c.Disconnect(ctx)
		cancel()
		log.Info("tractor simulation stopped")
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "", "Path to simulation configuration YAML (defaults applied when empty)")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/tractorops.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 100*time.Millisecond, "Telemetry tick interval (e.g. 100ms, 1s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export telemetry logs (JSONL)")
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simColor, "color", false, "Human-friendly colorized STDOUT output")
	simulateCmd.Flags().StringVar(&simListen, "listen", "", "Admin UI listen address (overrides config)")
	simulateCmd.Flags().StringVar(&simSource, "source", string(source.TypeSimulation), "Data source type: simulation, can_bus, obd_ii")
	simulateCmd.Flags().StringVar(&simLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}
