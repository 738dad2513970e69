// Live terminal dashboard over the telemetry core.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"tractorops-sim/internal/config"
	"tractorops-sim/internal/core"
	"tractorops-sim/internal/logging"
	"tractorops-sim/internal/safety"
	"tractorops-sim/internal/source"
	"tractorops-sim/internal/telemetry"
)

type snapshotMsg map[string]telemetry.Parameter

type alertMsg telemetry.Alert

type statusMsg safety.Status

// channelOrder fixes the table row order; presentation concern only.
var channelOrder = []string{
	"engine_rpm", "engine_load", "engine_temp", "coolant_temp",
	"transmission_temp", "vehicle_speed", "fuel_level",
	"hydraulic_pressure", "pto_speed", "latitude", "longitude",
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusBad     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type model struct {
	core     *core.Core
	ctx      context.Context
	table    table.Model
	logView  viewport.Model
	logLines []string
	status   safety.Status
	safeMode bool
	info     telemetry.TractorInfo
	width    int
	ready    bool
	lastErr  string
}

func newModel(ctx context.Context, c *core.Core) model {
	cols := []table.Column{
		{Title: "Channel", Width: 24},
		{Title: "Value", Width: 12},
		{Title: "Unit", Width: 6},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(len(channelOrder)+1))
	return model{
		core:     c,
		ctx:      ctx,
		table:    t,
		logView:  viewport.New(80, 8),
		status:   c.Status(),
		safeMode: c.SafeMode(),
		info:     c.TractorInfo(),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.logView.Width = msg.Width - 4
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "e":
			m.lastErr = ""
			if err := m.core.SendCommand(m.ctx, safety.Command{Name: safety.CmdEmergencyStop}); err != nil {
				m.lastErr = err.Error()
			}
		case "c":
			m.lastErr = ""
			if err := m.core.ClearEmergencyStop(m.ctx); err != nil {
				m.lastErr = err.Error()
			}
		case "s":
			m.core.SetSafeMode(!m.core.SafeMode())
			m.safeMode = m.core.SafeMode()
		}

	case snapshotMsg:
		rows := make([]table.Row, 0, len(channelOrder))
		for _, name := range channelOrder {
			p, ok := msg[name]
			if !ok {
				continue
			}
			rows = append(rows, table.Row{p.Label, fmt.Sprintf("%.2f", p.Value), p.Unit})
		}
		m.table.SetRows(rows)

	case alertMsg:
		style := warningStyle
		if msg.Severity == telemetry.SeverityCritical {
			style = criticalStyle
		}
		line := style.Render(fmt.Sprintf("[%s] %s", msg.Timestamp.Format("15:04:05"), msg.Message))
		m.logLines = append(m.logLines, line)
		if len(m.logLines) > 200 {
			m.logLines = m.logLines[len(m.logLines)-200:]
		}
		width := m.logView.Width
		if width <= 0 {
			width = 80
		}
		m.logView.SetContent(wordwrap.String(joinLines(m.logLines), width))
		m.logView.GotoBottom()

	case statusMsg:
		m.status = safety.Status(msg)
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

func (m model) View() string {
	if !m.ready {
		return "starting dashboard..."
	}
	statusStyle := statusOK
	if m.status != safety.StatusConnected {
		statusStyle = statusBad
	}
	header := titleStyle.Render(fmt.Sprintf("%s %s", m.info.Manufacturer, m.info.Model)) +
		"  " + statusStyle.Render(string(m.status))
	if m.safeMode {
		header += "  " + helpStyle.Render("[safe mode]")
	}
	if m.lastErr != "" {
		header += "\n" + criticalStyle.Render(m.lastErr)
	}
	help := helpStyle.Render("e: emergency stop  c: clear  s: safe mode  q: quit")
	return header + "\n\n" + m.table.View() + "\n\nAlerts:\n" + m.logView.View() + "\n" + help
}

func main() {
	log := logging.New("warn")
	ctx := logging.NewContext(context.Background(), log)

	cfg := config.Default()
	c := core.New(cfg, nil, nil)

	if _, err := c.Connect(ctx, source.Descriptor{Type: source.TypeSimulation, Port: "virtual"}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	m := newModel(ctx, c)
	p := tea.NewProgram(m, tea.WithAltScreen())

	c.SubscribeData(func(snap map[string]telemetry.Parameter) { p.Send(snapshotMsg(snap)) })
	c.SubscribeAlert(func(a telemetry.Alert) { p.Send(alertMsg(a)) })
	c.SubscribeStatus(func(s safety.Status) { p.Send(statusMsg(s)) })

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	c.Disconnect(ctx)
}
