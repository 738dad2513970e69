// Data-source seam between the core and machine backends.
package source

import (
	"context"
	"fmt"
	"os"

	"tractorops-sim/internal/telemetry"
)

// Type identifies a machine backend.
type Type string

const (
	TypeSimulation Type = "simulation"
	TypeCANBus     Type = "can_bus"
	TypeOBD        Type = "obd_ii"
)

// Descriptor describes one connectable backend, as returned by Scan and
// accepted by the core's Connect.
type Descriptor struct {
	Type        Type   `json:"type"`
	Name        string `json:"name"`
	Port        string `json:"port"`
	Description string `json:"description"`
	Recommended bool   `json:"recommended"`
}

// DataSource is the capability interface every backend implements. The
// simulator implements Sample directly; real CAN/OBD adapters would read
// the bus instead.
type DataSource interface {
	Connect(ctx context.Context) (telemetry.TractorInfo, error)
	Disconnect() error
	Sample(name string, t, prev float64) (float64, error)
}

// New builds the backend for a descriptor over the given channel set.
func New(desc Descriptor, channels *telemetry.ChannelSet, seed int64) (DataSource, error) {
	gen := telemetry.NewGenerator(channels, seed)
	switch desc.Type {
	case TypeSimulation:
		return &SimulationSource{gen: gen}, nil
	case TypeCANBus:
		return &CANBusSource{gen: gen, port: desc.Port}, nil
	case TypeOBD:
		return &OBDSource{gen: gen, port: desc.Port}, nil
	default:
		return nil, fmt.Errorf("unsupported source type %q", desc.Type)
	}
}

// Scan enumerates connectable backends. The simulator is always present
// and recommended; a CAN entry appears when a can0 interface exists.
func Scan() []Descriptor {
	out := []Descriptor{{
		Type:        TypeSimulation,
		Name:        "Educational Simulator",
		Port:        "virtual",
		Description: "Safe simulation environment for learning",
		Recommended: true,
	}}
	if _, err := os.Stat("/sys/class/net/can0"); err == nil {
		out = append(out, Descriptor{
			Type:        TypeCANBus,
			Name:        "CAN Bus Interface",
			Port:        "can0",
			Description: "Direct CAN bus communication",
		})
	}
	return out
}
