package core

import (
	"encoding/json"
	"os"
)

// FileWriter writes telemetry and alert rows to JSONL files.
type FileWriter struct {
	teleFile  *os.File
	alertFile *os.File
	teleEnc   *json.Encoder
	alertEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. alertPath may be empty to skip the
// alert log.
func NewFileWriter(telemetryPath, alertPath string) (*FileWriter, error) {
	tf, err := os.Create(telemetryPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{teleFile: tf, teleEnc: json.NewEncoder(tf)}
	if alertPath != "" {
		af, err := os.Create(alertPath)
		if err != nil {
			tf.Close()
			return nil, err
		}
		fw.alertFile = af
		fw.alertEnc = json.NewEncoder(af)
	}
	return fw, nil
}

// Write logs a single reading row.
func (f *FileWriter) Write(row ReadingRow) error {
	return f.teleEnc.Encode(row)
}

// WriteBatch logs multiple reading rows.
func (f *FileWriter) WriteBatch(rows []ReadingRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteAlert logs a single alert row, if enabled.
func (f *FileWriter) WriteAlert(a AlertRow) error {
	if f.alertEnc == nil {
		return nil
	}
	return f.alertEnc.Encode(a)
}

// WriteAlerts logs multiple alert rows.
func (f *FileWriter) WriteAlerts(rows []AlertRow) error {
	for _, a := range rows {
		if err := f.WriteAlert(a); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the underlying files.
func (f *FileWriter) Close() error {
	err := f.teleFile.Close()
	if f.alertFile != nil {
		if cerr := f.alertFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
