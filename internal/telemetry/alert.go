package telemetry

import "time"

// Severity grades a threshold alert.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityCritical
)

func (s Severity) String() string {
	if s == SeverityCritical {
		return "CRITICAL"
	}
	return "WARNING"
}

// Alert reports a threshold crossing on one channel.
type Alert struct {
	Channel   string    `json:"channel"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"ts"`
}

// alert latch levels per channel; an alert re-fires only after the value
// retreats past the warning threshold (re-arm).
const (
	levelNone = iota
	levelWarning
	levelCritical
)

// thresholdLevel grades the current value against the channel thresholds,
// honoring the channel's bad direction.
func thresholdLevel(p *Parameter) int {
	crossed := func(threshold float64) bool {
		if p.Direction == LowIsBad {
			return p.Value <= threshold
		}
		return p.Value >= threshold
	}
	if p.CriticalThreshold != nil && crossed(*p.CriticalThreshold) {
		return levelCritical
	}
	if p.WarningThreshold != nil && crossed(*p.WarningThreshold) {
		return levelWarning
	}
	return levelNone
}
