package source

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tractorops-sim/internal/telemetry"
)

// SimulationSource is the built-in machine backend driven by the signal
// generator.
type SimulationSource struct {
	gen *telemetry.Generator
}

// Connect returns the fixed simulated machine identity.
func (s *SimulationSource) Connect(ctx context.Context) (telemetry.TractorInfo, error) {
	return telemetry.TractorInfo{
		Manufacturer:   "Educational Tractors Inc.",
		Model:          "EduDemo 2025",
		Year:           "2025",
		SerialNumber:   fmt.Sprintf("EDU-SIM-%s", uuid.New().String()[:8]),
		EngineType:     "Simulated Diesel",
		Horsepower:     120,
		OperatingHours: 1250.5,
	}, nil
}

// Disconnect is a no-op for the simulator.
func (s *SimulationSource) Disconnect() error { return nil }

// Sample delegates to the signal generator.
func (s *SimulationSource) Sample(name string, t, prev float64) (float64, error) {
	return s.gen.Sample(name, t, prev)
}
