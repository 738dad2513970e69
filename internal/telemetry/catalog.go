package telemetry

import (
	"fmt"
	"time"
)

// ChannelSet is the full set of channels for one machine, keyed by name.
// It is owned by the Simulator; external callers only ever see copies.
type ChannelSet struct {
	params map[string]*Parameter
	order  []string
}

// updateOrder fixes the per-tick update sequence. Load-like channels come
// before the temperatures whose targets derive from them.
var updateOrder = []string{
	"engine_load",
	"engine_rpm",
	"vehicle_speed",
	"fuel_level",
	"hydraulic_pressure",
	"pto_speed",
	"engine_temp",
	"coolant_temp",
	"transmission_temp",
	"latitude",
	"longitude",
}

// DefaultChannels builds the standard tractor channel catalog with seed
// values, bounds, thresholds, and motion profiles.
func DefaultChannels() *ChannelSet {
	params := []*Parameter{
		{
			Name: "engine_rpm", Label: "Engine RPM", Unit: "rpm",
			Value: 1500, MinValue: ptr(800), MaxValue: ptr(2400),
			WarningThreshold: ptr(2200), CriticalThreshold: ptr(2350),
			Description: "Engine rotational speed",
			Profile:     Profile{Kind: ProfilePeriodic, Base: 1500, Amplitude: 200, Frequency: 0.1, Sigma: 25},
		},
		{
			Name: "engine_load", Label: "Engine Load", Unit: "%",
			Value: 25, MinValue: ptr(0), MaxValue: ptr(100),
			WarningThreshold: ptr(90), CriticalThreshold: ptr(95),
			Description: "Engine load percentage",
			Profile:     Profile{Kind: ProfilePeriodic, Base: 25, Amplitude: 15, Frequency: 0.08, Sigma: 5},
		},
		{
			Name: "engine_temp", Label: "Engine Temperature", Unit: "°C",
			Value: 85, MinValue: ptr(60), MaxValue: ptr(120),
			WarningThreshold: ptr(105), CriticalThreshold: ptr(115),
			Description: "Engine coolant temperature",
			Profile: Profile{
				Kind: ProfileThermal, ApproachRate: 0.05, Sigma: 0.5,
				TargetBase: 80, TargetGain: 0.25, TargetFrom: "engine_load",
			},
		},
		{
			Name: "vehicle_speed", Label: "Vehicle Speed", Unit: "km/h",
			Value: 12, MinValue: ptr(0), MaxValue: ptr(50),
			Description: "Current vehicle speed",
			Profile:     Profile{Kind: ProfilePeriodic, Base: 12, Amplitude: 8, Frequency: 0.05, Sigma: 2},
		},
		{
			Name: "fuel_level", Label: "Fuel Level", Unit: "%",
			Value: 75, MinValue: ptr(0), MaxValue: ptr(100),
			WarningThreshold: ptr(20), CriticalThreshold: ptr(10),
			Direction:   LowIsBad,
			Description: "Fuel tank level",
			Profile:     Profile{Kind: ProfileDecay, MaxDrain: 0.01},
		},
		{
			Name: "hydraulic_pressure", Label: "Hydraulic Pressure", Unit: "psi",
			Value: 2000, MinValue: ptr(1000), MaxValue: ptr(3000),
			WarningThreshold: ptr(2800), CriticalThreshold: ptr(2900),
			Description: "Main hydraulic system pressure",
			Profile:     Profile{Kind: ProfilePeriodic, Base: 2000, Sigma: 50},
		},
		{
			Name: "pto_speed", Label: "PTO Speed", Unit: "rpm",
			Value: 540, MinValue: ptr(0), MaxValue: ptr(1000),
			Description: "Power Take-Off speed",
			Profile:     Profile{Kind: ProfileBurst, ActiveChance: 0.2, ActiveLevel: 540, Sigma: 10},
		},
		{
			Name: "coolant_temp", Label: "Coolant Temperature", Unit: "°C",
			Value: 82, MinValue: ptr(60), MaxValue: ptr(110),
			WarningThreshold: ptr(100), CriticalThreshold: ptr(105),
			Description: "Engine coolant temperature",
			Profile: Profile{
				Kind: ProfileThermal, ApproachRate: 0.04, Sigma: 0.4,
				TargetBase: 76, TargetGain: 0.2, TargetFrom: "engine_load",
			},
		},
		{
			Name: "transmission_temp", Label: "Transmission Temperature", Unit: "°C",
			Value: 75, MinValue: ptr(40), MaxValue: ptr(120),
			WarningThreshold: ptr(100), CriticalThreshold: ptr(110),
			Description: "Transmission oil temperature",
			Profile: Profile{
				Kind: ProfileThermal, ApproachRate: 0.03, Sigma: 0.4,
				TargetBase: 70, TargetGain: 0.25, TargetFrom: "engine_load",
			},
		},
		{
			Name: "latitude", Label: "Latitude", Unit: "°",
			Value:       40.7128,
			Description: "GPS latitude coordinate",
			Profile:     Profile{Kind: ProfileWalk, Sigma: 0.00005},
		},
		{
			Name: "longitude", Label: "Longitude", Unit: "°",
			Value:       -74.0060,
			Description: "GPS longitude coordinate",
			Profile:     Profile{Kind: ProfileWalk, Sigma: 0.00005},
		},
	}

	cs := &ChannelSet{params: make(map[string]*Parameter, len(params)), order: updateOrder}
	for _, p := range params {
		p.seed = p.Value
		cs.params[p.Name] = p
	}
	return cs
}

// Validate checks catalog invariants before the simulator starts using it.
func (cs *ChannelSet) Validate() error {
	for _, name := range cs.order {
		p, ok := cs.params[name]
		if !ok {
			return fmt.Errorf("channel %q in update order but not in catalog", name)
		}
		if p.MinValue != nil && p.MaxValue != nil && *p.MinValue > *p.MaxValue {
			return fmt.Errorf("channel %q: min %v exceeds max %v", name, *p.MinValue, *p.MaxValue)
		}
		if p.WarningThreshold != nil && p.CriticalThreshold != nil {
			w, c := *p.WarningThreshold, *p.CriticalThreshold
			if p.Direction == HighIsBad && w > c {
				return fmt.Errorf("channel %q: warning %v above critical %v", name, w, c)
			}
			if p.Direction == LowIsBad && w < c {
				return fmt.Errorf("channel %q: warning %v below critical %v", name, w, c)
			}
		}
		if p.Profile.Kind == ProfileThermal && p.Profile.TargetFrom != "" {
			if _, ok := cs.params[p.Profile.TargetFrom]; !ok {
				return fmt.Errorf("channel %q: target source %q not in catalog", name, p.Profile.TargetFrom)
			}
		}
	}
	return nil
}

// Get returns the named channel, or nil.
func (cs *ChannelSet) Get(name string) *Parameter { return cs.params[name] }

// Names returns channel names in update order.
func (cs *ChannelSet) Names() []string {
	out := make([]string, len(cs.order))
	copy(out, cs.order)
	return out
}

// Bounds returns the physical range of a channel, if both bounds are set.
func (cs *ChannelSet) Bounds(name string) (min, max float64, ok bool) {
	p := cs.params[name]
	if p == nil || p.MinValue == nil || p.MaxValue == nil {
		return 0, 0, false
	}
	return *p.MinValue, *p.MaxValue, true
}

// Reset restores every channel to its seed value.
func (cs *ChannelSet) Reset(now time.Time) {
	for _, p := range cs.params {
		p.Value = p.seed
		p.Timestamp = now
	}
}

// Snapshot returns a copy of every channel keyed by name.
func (cs *ChannelSet) Snapshot() map[string]Parameter {
	out := make(map[string]Parameter, len(cs.params))
	for name, p := range cs.params {
		out[name] = *p
	}
	return out
}
