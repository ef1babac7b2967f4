package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gpuprobe/internal/gpu"
	"gpuprobe/internal/logging"
	"gpuprobe/internal/metrics"
	"gpuprobe/internal/report"
)

const notAvailable = "n/a"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

// Model is the live accelerator view behind `gpuprobe watch`
type Model struct {
	facility  gpu.Facility
	collector metrics.Collector
	logger    *logging.Logger
	refresh   time.Duration

	quitting bool
	probing  bool

	snapshot    gpu.Snapshot
	hasSnapshot bool
	queryError  string

	sample       metrics.Sample
	hasSample    bool
	metricsError string

	lastUpdate time.Time
}

// NewModel creates a watch model that re-queries facility every refresh interval
func NewModel(facility gpu.Facility, collector metrics.Collector, logger *logging.Logger, refresh time.Duration) Model {
	if refresh <= 0 {
		refresh = 2 * time.Second
	}
	return Model{
		facility:  facility,
		collector: collector,
		logger:    logger,
		refresh:   refresh,
		probing:   true,
	}
}

// Init issues the first probe (already marked in flight by NewModel) and schedules the refresh tick
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.probeCmd(), m.tickCmd())
}

// Update handles key presses, refresh ticks and probe results
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case tickMsg:
		if m.probing {
			return m, m.tickCmd()
		}
		m.probing = true
		return m, tea.Batch(m.probeCmd(), m.tickCmd())
	case probeResultMsg:
		m.applyProbe(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "r":
		if m.probing {
			return m, nil
		}
		m.probing = true
		return m, m.probeCmd()
	}
	return m, nil
}

func (m *Model) applyProbe(msg probeResultMsg) {
	m.probing = false
	m.lastUpdate = msg.at

	if msg.queryErr != nil {
		m.queryError = msg.queryErr.Error()
		m.hasSnapshot = false
		m.hasSample = false
		m.logger.Warn("tui.probe.failed", "Device query failed", map[string]interface{}{
			"error": m.queryError,
		})
		return
	}

	m.queryError = ""
	m.snapshot = msg.snapshot
	m.hasSnapshot = true

	m.sample = msg.sample
	m.hasSample = msg.hasSample
	m.metricsError = ""
	if msg.metricsErr != nil {
		m.metricsError = msg.metricsErr.Error()
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// probeCmd queries the facility and, when a device is available, samples it.
// Only one probe is in flight at a time.
func (m Model) probeCmd() tea.Cmd {
	facility := m.facility
	collector := m.collector
	return func() tea.Msg {
		return probe(facility, collector)
	}
}

func probe(facility gpu.Facility, collector metrics.Collector) probeResultMsg {
	msg := probeResultMsg{at: time.Now()}

	msg.snapshot, msg.queryErr = gpu.Query(facility)
	if msg.queryErr != nil || !msg.snapshot.Available || collector == nil {
		return msg
	}

	if !collector.IsInitialized() {
		if err := collector.Initialize(msg.snapshot.CurrentDevice); err != nil {
			msg.metricsErr = err
			return msg
		}
	}

	msg.sample, msg.metricsErr = collector.Collect()
	msg.hasSample = msg.metricsErr == nil
	return msg
}

// View renders the availability block and the live metrics of the current device
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(report.Greeting))
	b.WriteString("\n\n")

	b.WriteString(boxStyle.Render(m.renderAvailability()))
	b.WriteString("\n")

	if m.hasSnapshot && m.snapshot.Available {
		b.WriteString(boxStyle.Render(m.renderMetrics()))
		b.WriteString("\n")
	}

	footer := "r refresh • q/esc quit"
	if !m.lastUpdate.IsZero() {
		footer = fmt.Sprintf("updated %s • %s", m.lastUpdate.Format("15:04:05"), footer)
	}
	b.WriteString(helpStyle.Render(footer))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderAvailability() string {
	if m.queryError != "" {
		return badStyle.Render("Device query failed: " + m.queryError)
	}
	if !m.hasSnapshot {
		return labelStyle.Render("Querying devices...")
	}

	snap := m.snapshot
	availability := "CUDA available: " + report.FormatBool(snap.Available)

	if !snap.Available {
		return strings.Join([]string{
			badStyle.Render(availability),
			labelStyle.Render("Device count: 0"),
			labelStyle.Render("Current device: " + report.NoCurrentDevice),
			labelStyle.Render("Device name: " + report.NoDeviceName),
		}, "\n")
	}

	return strings.Join([]string{
		okStyle.Render(availability),
		valueStyle.Render(fmt.Sprintf("Device count: %d", snap.DeviceCount)),
		valueStyle.Render(fmt.Sprintf("Current device: %d", snap.CurrentDevice)),
		valueStyle.Render("Device name: " + snap.DeviceName),
	}, "\n")
}

func (m Model) renderMetrics() string {
	if m.metricsError != "" {
		return badStyle.Render("Metrics unavailable: " + m.metricsError)
	}
	if !m.hasSample {
		return labelStyle.Render("Sampling device...")
	}

	s := m.sample
	lines := []string{
		valueStyle.Render("Utilization: " + formatFloat(s.GPUUtil, "%.0f%%")),
		valueStyle.Render("Memory: " + formatMemory(s.GPUMemMB, s.GPUMemTotalMB)),
		valueStyle.Render("Power: " + formatFloat(s.GPUWatts, "%.1f W")),
		valueStyle.Render("Temperature: " + formatFloat(s.TempGPU, "%.0f °C")),
	}
	return strings.Join(lines, "\n")
}

func formatFloat(v *float64, format string) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf(format, *v)
}

func formatMemory(used, total *uint64) string {
	if used == nil {
		return notAvailable
	}
	if total == nil {
		return fmt.Sprintf("%d MB", *used)
	}
	return fmt.Sprintf("%d / %d MB", *used, *total)
}
