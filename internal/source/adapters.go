package source

import (
	"context"

	"tractorops-sim/internal/telemetry"
)

// CANBusSource is a stub CAN adapter. No wire-protocol decoding is done;
// values come from the same generator as the simulator so the rest of the
// stack can be exercised against the CAN descriptor.
type CANBusSource struct {
	gen  *telemetry.Generator
	port string
}

func (s *CANBusSource) Connect(ctx context.Context) (telemetry.TractorInfo, error) {
	return telemetry.TractorInfo{
		Manufacturer: "CAN Tractor Co.",
		Model:        "CAN-Enabled 300",
		Year:         "2023",
		SerialNumber: "CAN-" + s.port,
		EngineType:   "Tier 4 Diesel",
	}, nil
}

func (s *CANBusSource) Disconnect() error { return nil }

func (s *CANBusSource) Sample(name string, t, prev float64) (float64, error) {
	return s.gen.Sample(name, t, prev)
}

// OBDSource is a stub OBD-II adapter, simulated like the CAN one.
type OBDSource struct {
	gen  *telemetry.Generator
	port string
}

func (s *OBDSource) Connect(ctx context.Context) (telemetry.TractorInfo, error) {
	return telemetry.TractorInfo{
		Manufacturer: "OBD Tractors",
		Model:        "OBD-Compatible 250",
		Year:         "2022",
		SerialNumber: "OBD-" + s.port,
		EngineType:   "Electronic Diesel",
	}, nil
}

func (s *OBDSource) Disconnect() error { return nil }

func (s *OBDSource) Sample(name string, t, prev float64) (float64, error) {
	return s.gen.Sample(name, t, prev)
}
