// Simulator advancing all tractor channels tick by tick.
package telemetry

import (
	"fmt"
	"time"
)

// Sampler produces the next value for a channel. The Generator implements
// it for simulation; a CAN or OBD adapter would implement it for real
// hardware.
type Sampler interface {
	Sample(name string, t, prev float64) (float64, error)
}

// Simulator owns the channel set, rolling history, and alert latches.
// It performs no I/O and is not safe for concurrent use; the owner
// serializes access (the core holds a single mutex around Tick and reads).
type Simulator struct {
	channels *ChannelSet
	sampler  Sampler
	history  map[string]*historyRing
	latch    map[string]int
	capacity int
	start    time.Time
}

// DefaultHistoryCapacity bounds per-channel history retention.
const DefaultHistoryCapacity = 1000

// NewSimulator validates the catalog and prepares history buffers.
func NewSimulator(channels *ChannelSet, sampler Sampler, capacity int) (*Simulator, error) {
	if err := channels.Validate(); err != nil {
		return nil, fmt.Errorf("invalid channel catalog: %w", err)
	}
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	s := &Simulator{
		channels: channels,
		sampler:  sampler,
		history:  make(map[string]*historyRing, len(channels.params)),
		latch:    make(map[string]int, len(channels.params)),
		capacity: capacity,
	}
	for name := range channels.params {
		s.history[name] = newHistoryRing(capacity)
	}
	s.Reset(time.Now())
	return s, nil
}

// Reset restores seed values, clears history and alert latches, and
// restarts the simulation clock. Called on every (re)connect.
func (s *Simulator) Reset(now time.Time) {
	s.start = now
	s.channels.Reset(now)
	for name, ring := range s.history {
		ring.reset()
		s.latch[name] = levelNone
	}
}

// Tick advances every channel in dependency order, records history, and
// evaluates thresholds. It returns a full snapshot copy plus any alerts
// newly triggered this tick. A sampler error aborts the tick; the caller
// treats it as a simulation fault.
func (s *Simulator) Tick(now time.Time) (map[string]Parameter, []Alert, error) {
	t := now.Sub(s.start).Seconds()
	for _, name := range s.channels.order {
		p := s.channels.Get(name)
		v, err := s.sampler.Sample(name, t, p.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("sampling %s: %w", name, err)
		}
		p.Value = p.Clamp(v)
		p.Timestamp = now
		s.history[name].append(HistoryEntry{Timestamp: now, Value: p.Value})
	}
	return s.channels.Snapshot(), s.evaluate(now), nil
}

// evaluate grades every channel against its thresholds and fires alerts
// for new crossings. A channel re-arms only after retreating past its
// warning threshold; escalation warning to critical fires again.
func (s *Simulator) evaluate(now time.Time) []Alert {
	var alerts []Alert
	for _, name := range s.channels.order {
		p := s.channels.Get(name)
		level := thresholdLevel(p)
		switch {
		case level == levelNone:
			s.latch[name] = levelNone
		case level > s.latch[name]:
			s.latch[name] = level
			alerts = append(alerts, s.newAlert(p, level, now))
		}
		// level below the latch but still crossed: stay latched, no re-fire.
	}
	return alerts
}

func (s *Simulator) newAlert(p *Parameter, level int, now time.Time) Alert {
	sev := SeverityWarning
	if level == levelCritical {
		sev = SeverityCritical
	}
	return Alert{
		Channel:   p.Name,
		Message:   fmt.Sprintf("%s: %s is %.1f %s", sev, p.Label, p.Value, p.Unit),
		Severity:  sev,
		Value:     p.Value,
		Timestamp: now,
	}
}

// History returns up to count most recent entries for a channel, oldest
// first. Unknown channels return nil.
func (s *Simulator) History(name string, count int) []HistoryEntry {
	ring, ok := s.history[name]
	if !ok {
		return nil
	}
	return ring.last(count)
}

// Snapshot returns a copy of all current channel values.
func (s *Simulator) Snapshot() map[string]Parameter { return s.channels.Snapshot() }

// Channels exposes the catalog for bounds lookups by the safety gate.
func (s *Simulator) Channels() *ChannelSet { return s.channels }
