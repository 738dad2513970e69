package core

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// GreptimeDBWriter writes telemetry to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client     *greptime.Client
	db         string
	teleTable  string
	alertTable string
	log        *slog.Logger
}

// NewGreptimeDBWriter creates a GreptimeDB writer. The ingester client cannot
// execute SQL DDL; tables are auto-created by GreptimeDB on first write, with
// their TTLs supplied as ingest hints (see WriteBatch / WriteAlerts).
func NewGreptimeDBWriter(endpoint, database string, log *slog.Logger) (*GreptimeDBWriter, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		host = endpoint
		portStr = ""
	}
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if port, err := strconv.Atoi(portStr); err == nil {
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.Default()
	}
	return &GreptimeDBWriter{
		client:     client,
		db:         database,
		teleTable:  "tractor_telemetry",
		alertTable: "tractor_alerts",
		log:        log,
	}, nil
}

// Write inserts a single reading row.
func (w *GreptimeDBWriter) Write(row ReadingRow) error {
	return w.WriteBatch([]ReadingRow{row})
}

// WriteBatch inserts multiple reading rows.
func (w *GreptimeDBWriter) WriteBatch(rows []ReadingRow) error {
	if len(rows) == 0 {
		return nil
	}

	ctx := ingesterContext.New(context.Background(),
		ingesterContext.WithHint([]*ingesterContext.Hint{{Key: "ttl", Value: "30d"}}))

	tbl, err := table.New(w.teleTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("machine_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("channel", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("value", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("unit", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		if err := tbl.AddRow(r.MachineID, r.Channel, r.Value, r.Unit, r.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.log.Error("greptime write failed", "err", err)
		return err
	}
	return nil
}

// WriteAlert inserts a single alert row.
func (w *GreptimeDBWriter) WriteAlert(a AlertRow) error {
	return w.WriteAlerts([]AlertRow{a})
}

// WriteAlerts inserts multiple alert rows.
func (w *GreptimeDBWriter) WriteAlerts(rows []AlertRow) error {
	if len(rows) == 0 {
		return nil
	}

	ctx := ingesterContext.New(context.Background(),
		ingesterContext.WithHint([]*ingesterContext.Hint{{Key: "ttl", Value: "90d"}}))

	tbl, err := table.New(w.alertTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("machine_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("channel", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("severity", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("message", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("value", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, a := range rows {
		if err := tbl.AddRow(a.MachineID, a.Channel, a.Severity, a.Message, a.Value, a.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.log.Error("greptime alert write failed", "err", err)
		return err
	}
	return nil
}
