// Signal generation for simulated tractor channels.
package telemetry

import (
	"fmt"
	"math"
	"math/rand"
)

// ProfileKind selects the motion rule for a channel.
type ProfileKind string

const (
	// ProfilePeriodic drifts around a base with a sine term plus noise.
	ProfilePeriodic ProfileKind = "periodic"
	// ProfileThermal approaches a target derived from another channel.
	ProfileThermal ProfileKind = "thermal"
	// ProfileDecay only ever decreases (fuel).
	ProfileDecay ProfileKind = "decay"
	// ProfileBurst snaps between an active band and zero (PTO).
	ProfileBurst ProfileKind = "burst"
	// ProfileWalk is an unclamped random walk (GPS).
	ProfileWalk ProfileKind = "walk"
)

// Profile holds the per-channel motion parameters.
type Profile struct {
	Kind ProfileKind

	// Periodic
	Base      float64
	Amplitude float64
	Frequency float64

	// Thermal: next = prev + (TargetBase + TargetGain*source - prev)*ApproachRate
	ApproachRate float64
	TargetBase   float64
	TargetGain   float64
	TargetFrom   string

	// Decay
	MaxDrain float64

	// Burst
	ActiveChance float64
	ActiveLevel  float64

	// Gaussian noise sigma, shared by all kinds that use it.
	Sigma float64
}

// Generator computes the next value for each channel. It reads sibling
// channels through the shared ChannelSet, so thermal targets see values
// already updated earlier in the same tick.
type Generator struct {
	channels *ChannelSet
	rnd      *rand.Rand
}

// NewGenerator creates a generator over the given channel set. The seed
// makes runs reproducible in tests; pass a time-derived seed in production.
func NewGenerator(channels *ChannelSet, seed int64) *Generator {
	return &Generator{channels: channels, rnd: rand.New(rand.NewSource(seed))}
}

// Sample returns the next value for the named channel given elapsed
// simulation time t (seconds) and the previous value.
func (g *Generator) Sample(name string, t, prev float64) (float64, error) {
	p := g.channels.Get(name)
	if p == nil {
		return 0, fmt.Errorf("unknown channel %q", name)
	}

	prof := p.Profile
	switch prof.Kind {
	case ProfilePeriodic:
		v := prof.Base + prof.Amplitude*math.Sin(t*prof.Frequency) + g.rnd.NormFloat64()*prof.Sigma
		return p.Clamp(v), nil

	case ProfileThermal:
		target := prof.TargetBase
		if prof.TargetFrom != "" {
			src := g.channels.Get(prof.TargetFrom)
			if src == nil {
				return 0, fmt.Errorf("channel %q: missing target source %q", name, prof.TargetFrom)
			}
			target += prof.TargetGain * src.Value
		}
		v := prev + (target-prev)*prof.ApproachRate + g.rnd.NormFloat64()*prof.Sigma
		return p.Clamp(v), nil

	case ProfileDecay:
		return p.Clamp(prev - g.rnd.Float64()*prof.MaxDrain), nil

	case ProfileBurst:
		if g.rnd.Float64() < prof.ActiveChance {
			return p.Clamp(prof.ActiveLevel + g.rnd.NormFloat64()*prof.Sigma), nil
		}
		return p.Clamp(0), nil

	case ProfileWalk:
		return prev + g.rnd.NormFloat64()*prof.Sigma, nil

	default:
		return 0, fmt.Errorf("channel %q: unknown profile kind %q", name, prof.Kind)
	}
}
