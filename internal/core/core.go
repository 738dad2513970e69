// Core wiring the state machine, simulator, and safety gate together.
package core

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"tractorops-sim/internal/config"
	"tractorops-sim/internal/logging"
	"tractorops-sim/internal/safety"
	"tractorops-sim/internal/source"
	"tractorops-sim/internal/telemetry"
)

// Core owns the connection state, the telemetry simulator, and the safety
// gate, runs the periodic tick, and exposes the consumer-facing contract.
// All mutation happens under one mutex; external reads receive copies.
type Core struct {
	mu      sync.Mutex
	cfg     *config.Config
	machine *safety.Machine
	gate    *safety.Gate
	sim     *telemetry.Simulator
	src     source.DataSource
	info    telemetry.TractorInfo
	session string

	writer      TelemetryWriter
	alertWriter AlertWriter

	dataSubs   map[string]DataCallback
	statusSubs map[string]StatusCallback
	alertSubs  map[string]AlertCallback

	cancel context.CancelFunc
	done   chan struct{}
	now    func() time.Time
}

// New builds a core from configuration. Writers may be nil when no export
// sink is attached.
func New(cfg *config.Config, writer TelemetryWriter, alertWriter AlertWriter) *Core {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Core{
		cfg:         cfg,
		machine:     safety.NewMachine(),
		writer:      writer,
		alertWriter: alertWriter,
		dataSubs:    make(map[string]DataCallback),
		statusSubs:  make(map[string]StatusCallback),
		alertSubs:   make(map[string]AlertCallback),
		now:         time.Now,
	}
	c.gate = safety.NewGate(safety.GateOptions{
		SafeMode:  cfg.Safety.SafeMode,
		MaxRate:   cfg.Safety.MaxCommandRate,
		AllowList: cfg.Safety.AllowCommands,
		Ranges:    c.channelBounds,
	})
	return c
}

// channelBounds resolves command value ranges from the live catalog. Only
// called from gate.Check, which only runs under c.mu.
func (c *Core) channelBounds(channel string) (min, max float64, ok bool) {
	if c.sim == nil {
		return 0, 0, false
	}
	return c.sim.Channels().Bounds(channel)
}

// Connect establishes the machine link described by desc, resets the
// simulator to seed values, and starts the tick loop.
func (c *Core) Connect(ctx context.Context, desc source.Descriptor) (telemetry.TractorInfo, error) {
	log := logging.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine.Status() != safety.StatusDisconnected {
		return telemetry.TractorInfo{}, fmt.Errorf("already %s", c.machine.Status())
	}

	channels := telemetry.DefaultChannels()
	src, err := source.New(desc, channels, c.seed())
	if err != nil {
		return telemetry.TractorInfo{}, err
	}
	sim, err := telemetry.NewSimulator(channels, src, c.cfg.HistoryCapacity)
	if err != nil {
		return telemetry.TractorInfo{}, err
	}
	info, err := src.Connect(ctx)
	if err != nil {
		c.machine.Fault()
		c.notifyStatusLocked(ctx)
		return telemetry.TractorInfo{}, fmt.Errorf("source connect: %w", err)
	}

	c.src = src
	c.sim = sim
	c.info = info
	c.session = uuid.New().String()
	c.sim.Reset(c.now())
	if err := c.machine.Connect(); err != nil {
		return telemetry.TractorInfo{}, err
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	loopCtx = logging.NewContext(loopCtx, log)
	c.cancel = cancel
	done := make(chan struct{})
	c.done = done
	go c.run(loopCtx, done)

	c.notifyStatusLocked(ctx)
	log.Info("connected", "source", desc.Type, "model", info.Model, "session", c.session)
	return info, nil
}

func (c *Core) seed() int64 {
	if c.cfg.Seed != 0 {
		return c.cfg.Seed
	}
	return c.now().UnixNano()
}

// Disconnect stops the tick loop, waits for it to finish, and returns the
// machine to DISCONNECTED. No tick fires after Disconnect returns.
// Disconnecting also clears an active emergency stop.
func (c *Core) Disconnect(ctx context.Context) {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine.Status() == safety.StatusDisconnected {
		// No session; status subscribers only see real transitions.
		return
	}
	if c.src != nil {
		if err := c.src.Disconnect(); err != nil {
			logging.FromContext(ctx).Warn("source disconnect failed", "err", err)
		}
		c.src = nil
	}
	c.machine.Disconnect()
	c.notifyStatusLocked(ctx)
	logging.FromContext(ctx).Info("disconnected", "session", c.session)
}

// run is the tick loop; one instance per connected session. The done
// channel is passed in rather than read from the struct: Disconnect clears
// c.done under the mutex, possibly before this goroutine is scheduled.
func (c *Core) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	log := logging.FromContext(ctx)
	interval := c.cfg.TickInterval.Std()
	log.Info("tick loop starting", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !c.tick(ctx) {
				return
			}
		case <-ctx.Done():
			log.Info("tick loop stopping")
			return
		}
	}
}

// tick advances the simulator once and fans the results out. Returns
// false when a simulation fault halts the loop.
func (c *Core) tick(ctx context.Context) bool {
	log := logging.FromContext(ctx)

	c.mu.Lock()
	now := c.now()
	snapshot, alerts, err := c.sim.Tick(now)
	if err != nil {
		// Simulation fault: move to ERROR, surface it once, and halt
		// rather than retrying into corrupted state.
		c.machine.Fault()
		log.Error("simulation fault, halting tick loop", "err", err)
		c.notifyStatusLocked(ctx)
		c.mu.Unlock()
		return false
	}
	rows := readingRows(c.cfg.MachineID, snapshot, c.sim.Channels().Names())
	aRows := alertRows(c.cfg.MachineID, alerts)
	dataSubs := make([]DataCallback, 0, len(c.dataSubs))
	for _, cb := range c.dataSubs {
		dataSubs = append(dataSubs, cb)
	}
	alertSubs := make([]AlertCallback, 0, len(c.alertSubs))
	for _, cb := range c.alertSubs {
		alertSubs = append(alertSubs, cb)
	}
	c.mu.Unlock()

	c.writeRows(ctx, rows, aRows)

	for _, cb := range dataSubs {
		// Each subscriber owns its copy; mutation never leaks to peers.
		cb, snap := cb, maps.Clone(snapshot)
		invoke(ctx, subData, func() { cb(snap) })
	}
	for _, a := range alerts {
		log.Warn("threshold alert", "channel", a.Channel, "severity", a.Severity.String(), "value", a.Value)
		for _, cb := range alertSubs {
			cb, a := cb, a
			invoke(ctx, subAlert, func() { cb(a) })
		}
	}
	return true
}

// writeRows pushes rows to the attached sinks, preferring batch mode.
func (c *Core) writeRows(ctx context.Context, rows []ReadingRow, aRows []AlertRow) {
	log := logging.FromContext(ctx)
	if c.writer != nil {
		if bw, ok := c.writer.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				log.Error("batch write failed", "err", err)
			}
		} else {
			for _, row := range rows {
				if err := c.writer.Write(row); err != nil {
					log.Error("write failed", "channel", row.Channel, "err", err)
				}
			}
		}
	}
	if len(aRows) > 0 && c.alertWriter != nil {
		if bw, ok := c.alertWriter.(batchAlertWriter); ok {
			if err := bw.WriteAlerts(aRows); err != nil {
				log.Error("alert batch write failed", "err", err)
			}
		} else {
			for _, a := range aRows {
				if err := c.alertWriter.WriteAlert(a); err != nil {
					log.Error("alert write failed", "err", err)
				}
			}
		}
	}
}

// SendCommand routes a command through the safety gate. Gate refusals come
// back as a *safety.Rejection; anything else is a fault.
func (c *Core) SendCommand(ctx context.Context, cmd safety.Command) error {
	log := logging.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if rej := c.gate.Check(cmd, c.machine.Status()); rej != nil {
		log.Debug("command rejected", "command", cmd.Name, "reason", rej.Reason)
		return rej
	}

	if cmd.Name == safety.CmdEmergencyStop {
		if err := c.machine.EmergencyStop(); err != nil {
			return err
		}
		log.Warn("EMERGENCY STOP ACTIVATED", "session", c.session)
		c.notifyStatusLocked(ctx)
		return nil
	}

	// Accepted commands are logged transiently; there is no real actuator
	// behind the educational simulator.
	if cmd.Value != nil {
		log.Info("command accepted", "command", cmd.Name, "value", *cmd.Value)
	} else {
		log.Info("command accepted", "command", cmd.Name)
	}
	return nil
}

// ClearEmergencyStop releases the latch. Explicit operator action; never
// routed through the gate and never automatic.
func (c *Core) ClearEmergencyStop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.machine.ClearEmergencyStop(); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("emergency stop cleared", "session", c.session)
	c.notifyStatusLocked(ctx)
	return nil
}

// SetSafeMode toggles the gate's allow-list restriction.
func (c *Core) SetSafeMode(on bool) { c.gate.SetSafeMode(on) }

// SafeMode reports whether safe mode is active.
func (c *Core) SafeMode() bool { return c.gate.SafeMode() }

// Status returns the current connection state.
func (c *Core) Status() safety.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Status()
}

// TractorInfo returns the identity of the connected machine.
func (c *Core) TractorInfo() telemetry.TractorInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// Snapshot returns a copy of all current channel readings, or nil when no
// session is active.
func (c *Core) Snapshot() map[string]telemetry.Parameter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sim == nil {
		return nil
	}
	return c.sim.Snapshot()
}

// History returns up to count recent entries for a channel, oldest first.
func (c *Core) History(channel string, count int) []telemetry.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sim == nil {
		return nil
	}
	return c.sim.History(channel, count)
}

// notifyStatusLocked fans out a state transition. Caller holds c.mu;
// status callbacks therefore must not call back into the core.
func (c *Core) notifyStatusLocked(ctx context.Context) {
	status := c.machine.Status()
	for _, cb := range c.statusSubs {
		cb := cb
		invoke(ctx, subStatus, func() { cb(status) })
	}
}
