// Parameter model for tractor telemetry channels.
package telemetry

import "time"

// Direction states which side of a threshold is the bad one.
type Direction int

const (
	// HighIsBad alerts when the value rises to or above a threshold.
	HighIsBad Direction = iota
	// LowIsBad alerts when the value falls to or below a threshold (fuel).
	LowIsBad
)

// Parameter holds one telemetry channel's metadata and current reading.
type Parameter struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	Timestamp   time.Time `json:"ts"`
	Description string    `json:"description,omitempty"`

	// Bounds are pointers: GPS channels have none and stay unclamped.
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`

	WarningThreshold  *float64  `json:"warning_threshold,omitempty"`
	CriticalThreshold *float64  `json:"critical_threshold,omitempty"`
	Direction         Direction `json:"-"`

	Profile Profile `json:"-"`
	seed    float64
}

// Clamp returns v forced into the channel's bounds. Channels without both
// bounds pass v through unchanged.
func (p *Parameter) Clamp(v float64) float64 {
	if p.MinValue == nil || p.MaxValue == nil {
		return v
	}
	if v < *p.MinValue {
		return *p.MinValue
	}
	if v > *p.MaxValue {
		return *p.MaxValue
	}
	return v
}

// TractorInfo identifies the connected machine.
type TractorInfo struct {
	Manufacturer   string  `json:"manufacturer"`
	Model          string  `json:"model"`
	Year           string  `json:"year"`
	SerialNumber   string  `json:"serial_number"`
	EngineType     string  `json:"engine_type"`
	Horsepower     float64 `json:"horsepower,omitempty"`
	OperatingHours float64 `json:"operating_hours"`
}

func ptr(v float64) *float64 { return &v }
