// ColorStdoutWriter prints human-friendly, colorized telemetry to STDOUT.
package core

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints rows using ANSI colors when STDOUT is a TTY.
type ColorStdoutWriter struct {
	out   io.Writer
	color bool
}

// NewColorStdoutWriter creates a writer on os.Stdout, enabling color only
// for interactive terminals.
func NewColorStdoutWriter() *ColorStdoutWriter {
	return &ColorStdoutWriter{
		out:   os.Stdout,
		color: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (w *ColorStdoutWriter) paint(c, s string) string {
	if !w.color {
		return s
	}
	return c + s + colorReset
}

// Write prints a single reading row.
func (w *ColorStdoutWriter) Write(row ReadingRow) error {
	_, err := fmt.Fprintf(w.out, "%s %s %s %s\n",
		w.paint(colorGray, "["+row.Timestamp.Format(time.RFC3339)+"]"),
		w.paint(colorBlue, row.MachineID),
		w.paint(colorCyan, row.Channel),
		w.paint(colorGreen, fmt.Sprintf("%.2f %s", row.Value, row.Unit)),
	)
	return err
}

// WriteBatch prints multiple reading rows.
func (w *ColorStdoutWriter) WriteBatch(rows []ReadingRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteAlert prints a threshold alert, red for critical.
func (w *ColorStdoutWriter) WriteAlert(a AlertRow) error {
	sevColor := colorYellow
	if a.Severity == "CRITICAL" {
		sevColor = colorRed
	}
	_, err := fmt.Fprintf(w.out, "%s %s %s %s\n",
		w.paint(colorGray, "["+a.Timestamp.Format(time.RFC3339)+"]"),
		w.paint(sevColor, "ALERT "+a.Severity),
		w.paint(colorCyan, a.Channel),
		a.Message,
	)
	return err
}

// WriteAlerts prints multiple alerts.
func (w *ColorStdoutWriter) WriteAlerts(rows []AlertRow) error {
	for _, a := range rows {
		if err := w.WriteAlert(a); err != nil {
			return err
		}
	}
	return nil
}
