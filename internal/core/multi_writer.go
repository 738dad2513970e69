package core

// MultiWriter fans rows out to several sinks; the first error wins but
// every sink still sees the rows.
type MultiWriter struct {
	writers []TelemetryWriter
}

// NewMultiWriter combines writers into one.
func NewMultiWriter(writers ...TelemetryWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write sends a row to every sink.
func (m *MultiWriter) Write(row ReadingRow) error {
	var first error
	for _, w := range m.writers {
		if err := w.Write(row); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteBatch prefers each sink's batch mode when available.
func (m *MultiWriter) WriteBatch(rows []ReadingRow) error {
	var first error
	for _, w := range m.writers {
		var err error
		if bw, ok := w.(batchWriter); ok {
			err = bw.WriteBatch(rows)
		} else {
			for _, r := range rows {
				if werr := w.Write(r); werr != nil && err == nil {
					err = werr
				}
			}
		}
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteAlert forwards an alert to every sink that handles alerts.
func (m *MultiWriter) WriteAlert(a AlertRow) error {
	var first error
	for _, w := range m.writers {
		if aw, ok := w.(AlertWriter); ok {
			if err := aw.WriteAlert(a); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// WriteAlerts forwards alerts, preferring batch mode.
func (m *MultiWriter) WriteAlerts(rows []AlertRow) error {
	var first error
	for _, w := range m.writers {
		switch aw := w.(type) {
		case batchAlertWriter:
			if err := aw.WriteAlerts(rows); err != nil && first == nil {
				first = err
			}
		case AlertWriter:
			for _, a := range rows {
				if err := aw.WriteAlert(a); err != nil && first == nil {
					first = err
				}
			}
		}
	}
	return first
}
