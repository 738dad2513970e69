// Export row types and writer seams for telemetry sinks.
package core

import (
	"time"

	"tractorops-sim/internal/telemetry"
)

// ReadingRow is one flattened channel reading ready for a sink.
type ReadingRow struct {
	MachineID string    `json:"machine_id"` // TAG
	Channel   string    `json:"channel"`    // TAG
	Value     float64   `json:"value"`      // FIELD
	Unit      string    `json:"unit"`       // FIELD
	Timestamp time.Time `json:"ts"`         // TIME INDEX
}

// AlertRow is one threshold alert ready for a sink.
type AlertRow struct {
	MachineID string    `json:"machine_id"`
	Channel   string    `json:"channel"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"ts"`
}

// TelemetryWriter is an interface to support different output sinks.
type TelemetryWriter interface {
	Write(ReadingRow) error
}

// AlertWriter handles threshold alert rows.
type AlertWriter interface {
	WriteAlert(AlertRow) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]ReadingRow) error
}

// Optional: alert writers may support batch mode.
type batchAlertWriter interface {
	WriteAlerts([]AlertRow) error
}

// readingRows flattens a snapshot into rows in the catalog's update order.
func readingRows(machineID string, snapshot map[string]telemetry.Parameter, order []string) []ReadingRow {
	rows := make([]ReadingRow, 0, len(snapshot))
	for _, name := range order {
		p, ok := snapshot[name]
		if !ok {
			continue
		}
		rows = append(rows, ReadingRow{
			MachineID: machineID,
			Channel:   p.Name,
			Value:     p.Value,
			Unit:      p.Unit,
			Timestamp: p.Timestamp,
		})
	}
	return rows
}

func alertRows(machineID string, alerts []telemetry.Alert) []AlertRow {
	rows := make([]AlertRow, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, AlertRow{
			MachineID: machineID,
			Channel:   a.Channel,
			Severity:  a.Severity.String(),
			Message:   a.Message,
			Value:     a.Value,
			Timestamp: a.Timestamp,
		})
	}
	return rows
}
