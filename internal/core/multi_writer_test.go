package core

import (
	"errors"
	"testing"
	"time"
)

// batchMockWriter records whether batch mode was used.
type batchMockWriter struct {
	MockWriter
	batches      int
	alertBatches int
}

func (w *batchMockWriter) WriteBatch(rows []ReadingRow) error {
	w.batches++
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

func (w *batchMockWriter) WriteAlerts(rows []AlertRow) error {
	w.alertBatches++
	for _, a := range rows {
		if err := w.WriteAlert(a); err != nil {
			return err
		}
	}
	return nil
}

// rowOnlyWriter implements TelemetryWriter and nothing else.
type rowOnlyWriter struct {
	rows []ReadingRow
}

func (w *rowOnlyWriter) Write(row ReadingRow) error {
	w.rows = append(w.rows, row)
	return nil
}

type failWriter struct{}

func (failWriter) Write(ReadingRow) error { return errors.New("sink down") }

func sampleRows(n int) []ReadingRow {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	rows := make([]ReadingRow, n)
	for i := range rows {
		rows[i] = ReadingRow{
			MachineID: "tractor-test",
			Channel:   "engine_rpm",
			Value:     1500 + float64(i),
			Unit:      "RPM",
			Timestamp: base.Add(time.Duration(i) * 100 * time.Millisecond),
		}
	}
	return rows
}

func TestMultiWriter_FansOut(t *testing.T) {
	a := &MockWriter{}
	b := &MockWriter{}
	mw := NewMultiWriter(a, b)

	row := sampleRows(1)[0]
	if err := mw.Write(row); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(a.Rows) != 1 || len(b.Rows) != 1 {
		t.Errorf("expected one row per sink, got %d and %d", len(a.Rows), len(b.Rows))
	}
}

func TestMultiWriter_BatchPrefersBatchMode(t *testing.T) {
	batch := &batchMockWriter{}
	plain := &rowOnlyWriter{}
	mw := NewMultiWriter(batch, plain)

	rows := sampleRows(5)
	if err := mw.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if batch.batches != 1 {
		t.Errorf("expected one batch call, got %d", batch.batches)
	}
	if len(batch.Rows) != 5 || len(plain.rows) != 5 {
		t.Errorf("expected 5 rows per sink, got %d and %d", len(batch.Rows), len(plain.rows))
	}
}

func TestMultiWriter_ErrorDoesNotStopOtherSinks(t *testing.T) {
	ok := &MockWriter{}
	mw := NewMultiWriter(failWriter{}, ok)

	if err := mw.Write(sampleRows(1)[0]); err == nil {
		t.Error("expected the sink error to surface")
	}
	if len(ok.Rows) != 1 {
		t.Errorf("healthy sink missed the row, got %d", len(ok.Rows))
	}
}

func TestMultiWriter_AlertsSkipRowOnlySinks(t *testing.T) {
	batch := &batchMockWriter{}
	plain := &rowOnlyWriter{}
	single := &MockWriter{}
	mw := NewMultiWriter(batch, plain, single)

	alerts := []AlertRow{
		{MachineID: "tractor-test", Channel: "fuel_level", Severity: "warning", Message: "fuel low", Value: 18},
		{MachineID: "tractor-test", Channel: "fuel_level", Severity: "critical", Message: "fuel critical", Value: 9},
	}
	if err := mw.WriteAlerts(alerts); err != nil {
		t.Fatalf("WriteAlerts: %v", err)
	}
	if batch.alertBatches != 1 || len(batch.Alerts) != 2 {
		t.Errorf("batch sink: expected 1 batch with 2 alerts, got %d batch(es), %d alerts", batch.alertBatches, len(batch.Alerts))
	}
	if len(single.Alerts) != 2 {
		t.Errorf("single-alert sink: expected 2 alerts, got %d", len(single.Alerts))
	}
}
