package core

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReplayLog_DeliversRowsInOrder(t *testing.T) {
	rows := sampleRows(4)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatal(err)
		}
	}

	out := &MockWriter{}
	if err := ReplayLog(&buf, out, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(out.Rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(out.Rows))
	}
	for i, r := range out.Rows {
		if r.Value != rows[i].Value || !r.Timestamp.Equal(rows[i].Timestamp) {
			t.Errorf("row %d replayed as %+v, want %+v", i, r, rows[i])
		}
	}
}

func TestReplayLog_BadInput(t *testing.T) {
	out := &MockWriter{}
	if err := ReplayLog(strings.NewReader("{not json"), out, 0); err == nil {
		t.Error("expected decode error")
	}
}

func TestReplayLog_WriterErrorStopsReplay(t *testing.T) {
	rows := sampleRows(3)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		_ = enc.Encode(r)
	}
	if err := ReplayLog(&buf, failWriter{}, 0); err == nil {
		t.Error("expected writer error to surface")
	}
}

func TestReplayLogFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.log")

	fw, err := NewFileWriter(path, "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	rows := sampleRows(3)
	for _, r := range rows {
		if err := fw.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}

	out := &MockWriter{}
	if err := ReplayLogFile(path, out, 0); err != nil {
		t.Fatalf("ReplayLogFile: %v", err)
	}
	if len(out.Rows) != len(rows) {
		t.Errorf("expected %d rows, got %d", len(rows), len(out.Rows))
	}

	if err := ReplayLogFile(filepath.Join(dir, "missing.log"), out, 0); err == nil {
		t.Error("expected error for missing file")
	}
	_ = os.Remove(path)
}
