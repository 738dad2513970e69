// Writer implementation printing telemetry to STDOUT.
package core

import (
	"encoding/json"
	"fmt"
)

// StdoutWriter prints reading and alert rows as JSON lines.
type StdoutWriter struct{}

// Write outputs a single reading row.
func (w *StdoutWriter) Write(row ReadingRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteBatch outputs multiple reading rows.
func (w *StdoutWriter) WriteBatch(rows []ReadingRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteAlert prints a threshold alert to STDOUT.
func (w *StdoutWriter) WriteAlert(a AlertRow) error {
	data, _ := json.Marshal(a)
	fmt.Println(string(data))
	return nil
}

// WriteAlerts prints multiple alerts.
func (w *StdoutWriter) WriteAlerts(rows []AlertRow) error {
	for _, a := range rows {
		_ = w.WriteAlert(a)
	}
	return nil
}
