// Package tui provides a Bubble Tea dashboard for smart-transfer.
// model.go implements the main Bubble Tea model with three panels:
// registered plugins, operation history, and runtime metrics.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/insajin/smart-transfer/internal/branding"
)

// Panel represents which dashboard panel is currently focused.
type Panel int

const (
	// PanelPlugins is the registered plugin panel (top).
	PanelPlugins Panel = iota
	// PanelOperations is the operation history panel (middle).
	PanelOperations
	// PanelMetrics is the metrics panel (bottom).
	PanelMetrics

	panelCount = 3
)

// maxVisibleRows is the number of table rows shown per panel.
const maxVisibleRows = 5

// PluginRow is a single registered plugin.
type PluginRow struct {
	Name         string
	Version      string
	Type         string
	Source       string
	Capabilities []string
	Initialized  bool
}

// OperationEntry is a single compress or decompress call.
type OperationEntry struct {
	ID       string
	Kind     string
	Plugin   string
	Target   string
	Error    string
	Duration time.Duration
	Time     time.Time
}

// Succeeded reports whether the operation finished without error.
func (o OperationEntry) Succeeded() bool {
	return o.Error == ""
}

// DashboardData holds all data displayed on the dashboard.
type DashboardData struct {
	// Plugin panel data
	PluginsDir string
	Watching   bool
	LastEvent  string
	Plugins    []PluginRow

	// Operation panel data, newest last
	Operations []OperationEntry

	// Metrics panel data
	StartTime          time.Time
	LibrariesLoaded    int64
	LibrariesSkipped   int64
	CompressAttempts   int64
	CompressFailures   int64
	DecompressAttempts int64
	DecompressFailures int64
	BytesWritten       int64
	AvgLatency         time.Duration
}

// DataProvider is an interface for fetching dashboard data.
type DataProvider interface {
	// FetchData returns the current dashboard data snapshot.
	FetchData() DashboardData
}

// tickMsg signals a periodic data refresh.
type tickMsg time.Time

// Model is the main Bubble Tea model for the dashboard.
type Model struct {
	// data holds the current dashboard snapshot.
	data DashboardData
	// provider fetches fresh data on each tick.
	provider DataProvider
	// activePanel tracks the currently focused panel.
	activePanel Panel
	// selectedPlugin and selectedOp track the selected row per table.
	selectedPlugin int
	selectedOp     int
	// scroll offsets for the two tables.
	pluginOffset int
	opOffset     int
	// showDetail toggles the expanded row detail view.
	showDetail bool
	// width and height store the terminal dimensions.
	width  int
	height int
	// quitting signals the program should exit.
	quitting bool
}

// NewModel creates a new dashboard Model with the given DataProvider.
func NewModel(provider DataProvider) Model {
	return Model{
		data:        provider.FetchData(),
		provider:    provider,
		activePanel: PanelPlugins,
	}
}

// Init implements tea.Model. It starts the auto-refresh ticker.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tickMsg every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model. It processes messages and updates state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tickCmd()
	}

	return m, nil
}

// refresh fetches new data and keeps selections inside the new bounds.
func (m *Model) refresh() {
	m.data = m.provider.FetchData()
	m.selectedPlugin, m.pluginOffset = clampSelection(m.selectedPlugin, m.pluginOffset, len(m.data.Plugins))
	m.selectedOp, m.opOffset = clampSelection(m.selectedOp, m.opOffset, len(m.data.Operations))
}

// handleKeyPress processes keyboard input.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "r":
		m.refresh()
		return m, nil

	case "d":
		m.showDetail = !m.showDetail
		return m, nil

	case "tab":
		m.activePanel = (m.activePanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
		return m, nil

	case "up", "k":
		switch m.activePanel {
		case PanelPlugins:
			m.selectedPlugin, m.pluginOffset = moveSelection(m.selectedPlugin, m.pluginOffset, len(m.data.Plugins), -1)
		case PanelOperations:
			m.selectedOp, m.opOffset = moveSelection(m.selectedOp, m.opOffset, len(m.data.Operations), -1)
		}
		return m, nil

	case "down", "j":
		switch m.activePanel {
		case PanelPlugins:
			m.selectedPlugin, m.pluginOffset = moveSelection(m.selectedPlugin, m.pluginOffset, len(m.data.Plugins), 1)
		case PanelOperations:
			m.selectedOp, m.opOffset = moveSelection(m.selectedOp, m.opOffset, len(m.data.Operations), 1)
		}
		return m, nil
	}

	return m, nil
}

// moveSelection moves a table selection by delta and adjusts its scroll offset.
func moveSelection(selected, offset, total, delta int) (int, int) {
	if total == 0 {
		return 0, 0
	}
	selected += delta
	if selected < 0 {
		selected = 0
	}
	if selected > total-1 {
		selected = total - 1
	}
	if selected < offset {
		offset = selected
	}
	if selected >= offset+maxVisibleRows {
		offset = selected - maxVisibleRows + 1
	}
	return selected, offset
}

// clampSelection keeps a selection valid after the table shrinks.
func clampSelection(selected, offset, total int) (int, int) {
	return moveSelection(selected, offset, total, 0)
}

// View implements tea.Model. It renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return branding.CLIName + " dashboard closed.\n"
	}

	// Use sensible defaults if window size is not yet reported.
	w := m.width
	if w == 0 {
		w = 80
	}
	contentWidth := w - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(contentWidth),
		m.renderPluginPanel(contentWidth),
		m.renderOperationPanel(contentWidth),
		m.renderMetricsPanel(contentWidth),
		m.renderFooter(contentWidth),
	)
}

// renderHeader returns the dashboard title bar.
func (m Model) renderHeader(width int) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(branding.ColorWhite)).
		Background(lipgloss.Color(branding.ColorDeep)).
		Padding(0, 1).
		Width(width).
		Render(branding.CLIName + " Dashboard")
}

// renderFooter returns the keyboard shortcut help bar.
func (m Model) renderFooter(width int) string {
	keys := []struct {
		key  string
		desc string
	}{
		{"q", "quit"},
		{"r", "refresh"},
		{"d", "toggle detail"},
		{"tab", "switch panel"},
		{"up/down", "scroll"},
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts,
			helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc),
		)
	}

	help := strings.Join(parts, helpStyle.Render("  |  "))
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(help)
}

// renderPluginPanel renders the registered plugin table.
func (m Model) renderPluginPanel(width int) string {
	colName, colVersion, colType, colState, colSource := 12, 10, 12, 8, 24

	watch := watchOff.Render("off")
	if m.data.Watching {
		watch = watchOn.Render("on")
	}
	dir := m.data.PluginsDir
	if dir == "" {
		dir = "--"
	}

	rows := []string{
		labelStyle.Render("Plugin Dir:") + " " + valueStyle.Render(dir),
		labelStyle.Render("Watching:") + " " + watch,
	}
	if m.data.LastEvent != "" {
		rows = append(rows, labelStyle.Render("Last Event:")+" "+valueStyle.Render(m.data.LastEvent))
	}
	rows = append(rows, headerStyle.Render(
		fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
			colName, "Name",
			colVersion, "Version",
			colType, "Type",
			colState, "State",
			colSource, "Source",
		),
	))

	if len(m.data.Plugins) == 0 {
		rows = append(rows, normalRowStyle.Render("  No plugins registered"))
	} else {
		end := min(m.pluginOffset+maxVisibleRows, len(m.data.Plugins))
		for i := m.pluginOffset; i < end; i++ {
			p := m.data.Plugins[i]
			row := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
				colName, truncate(p.Name, colName),
				colVersion, truncate(p.Version, colVersion),
				colType, truncate(p.Type, colType),
				colState, formatPluginState(p.Initialized),
				colSource, truncate(p.Source, colSource),
			)
			if i == m.selectedPlugin && m.activePanel == PanelPlugins {
				rows = append(rows, selectedRowStyle.Render(row))
			} else {
				rows = append(rows, normalRowStyle.Render(row))
			}
		}
		if len(m.data.Plugins) > maxVisibleRows {
			rows = append(rows, helpStyle.Render(fmt.Sprintf("  [%d/%d plugins]", m.selectedPlugin+1, len(m.data.Plugins))))
		}
	}

	if m.showDetail && m.activePanel == PanelPlugins && m.selectedPlugin < len(m.data.Plugins) {
		p := m.data.Plugins[m.selectedPlugin]
		rows = append(rows, helpStyle.Render(fmt.Sprintf(
			"\n  Detail: Name=%s  Capabilities=%s  Source=%s",
			p.Name, strings.Join(p.Capabilities, ","), p.Source,
		)))
	}

	title := titleStyle.Render(fmt.Sprintf(" Plugins (%d) ", len(m.data.Plugins)))
	return title + "\n" + m.getPanelStyle(PanelPlugins, width).Render(strings.Join(rows, "\n"))
}

// renderOperationPanel renders the operation history table.
func (m Model) renderOperationPanel(width int) string {
	colID, colKind, colPlugin, colStatus, colDuration, colTime := 10, 11, 8, 10, 10, 10

	rows := []string{headerStyle.Render(
		fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s",
			colID, "ID",
			colKind, "Kind",
			colPlugin, "Plugin",
			colStatus, "Status",
			colDuration, "Duration",
			colTime, "Time",
		),
	)}

	if len(m.data.Operations) == 0 {
		rows = append(rows, normalRowStyle.Render("  No operations yet"))
	} else {
		end := min(m.opOffset+maxVisibleRows, len(m.data.Operations))
		for i := m.opOffset; i < end; i++ {
			op := m.data.Operations[i]
			row := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s",
				colID, truncate(op.ID, colID),
				colKind, op.Kind,
				colPlugin, truncate(op.Plugin, colPlugin),
				colStatus, formatOperationStatus(op),
				colDuration, formatOpDuration(op.Duration),
				colTime, op.Time.Format("15:04:05"),
			)
			if i == m.selectedOp && m.activePanel == PanelOperations {
				rows = append(rows, selectedRowStyle.Render(row))
			} else {
				rows = append(rows, normalRowStyle.Render(row))
			}
		}
		if len(m.data.Operations) > maxVisibleRows {
			rows = append(rows, helpStyle.Render(fmt.Sprintf("  [%d/%d operations]", m.selectedOp+1, len(m.data.Operations))))
		}
	}

	if m.showDetail && m.activePanel == PanelOperations && m.selectedOp < len(m.data.Operations) {
		op := m.data.Operations[m.selectedOp]
		detail := fmt.Sprintf("\n  Detail: ID=%s  Target=%s", op.ID, op.Target)
		if op.Error != "" {
			detail += "  Error=" + op.Error
		}
		rows = append(rows, helpStyle.Render(detail))
	}

	title := titleStyle.Render(" Operations ")
	return title + "\n" + m.getPanelStyle(PanelOperations, width).Render(strings.Join(rows, "\n"))
}

// renderMetricsPanel renders the counters panel.
func (m Model) renderMetricsPanel(width int) string {
	uptime := "--"
	if !m.data.StartTime.IsZero() {
		uptime = formatDuration(time.Since(m.data.StartTime))
	}

	lines := []string{
		labelStyle.Render("Uptime:") + " " + valueStyle.Render(uptime),
		labelStyle.Render("Libraries:") + " " + valueStyle.Render(fmt.Sprintf("%d loaded, %d skipped", m.data.LibrariesLoaded, m.data.LibrariesSkipped)),
		labelStyle.Render("Compress:") + " " + valueStyle.Render(fmt.Sprintf("%d calls, %d failed", m.data.CompressAttempts, m.data.CompressFailures)),
		labelStyle.Render("Decompress:") + " " + valueStyle.Render(fmt.Sprintf("%d calls, %d failed", m.data.DecompressAttempts, m.data.DecompressFailures)),
		labelStyle.Render("Bytes Written:") + " " + valueStyle.Render(formatBytes(m.data.BytesWritten)),
		labelStyle.Render("Avg Latency:") + " " + valueStyle.Render(formatOpDuration(m.data.AvgLatency)),
	}

	title := titleStyle.Render(" Metrics ")
	return title + "\n" + m.getPanelStyle(PanelMetrics, width).Render(strings.Join(lines, "\n"))
}

// getPanelStyle returns the appropriate panel style based on focus state.
func (m Model) getPanelStyle(panel Panel, width int) lipgloss.Style {
	if m.activePanel == panel {
		return activePanelStyle.Width(width - 2)
	}
	return panelStyle.Width(width - 2)
}

// formatPluginState returns a color-coded initialization state.
func formatPluginState(initialized bool) string {
	if initialized {
		return pluginReady.Render("ready")
	}
	return pluginIdle.Render("idle")
}

// formatOperationStatus returns a color-coded operation result.
func formatOperationStatus(op OperationEntry) string {
	if op.Succeeded() {
		return opSucceeded.Render("ok")
	}
	return opFailed.Render("failed")
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	totalSeconds := int(d.Seconds())
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// formatOpDuration formats an operation duration. Zero duration shows "--".
func formatOpDuration(d time.Duration) string {
	if d == 0 {
		return "--"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// formatBytes formats a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// truncate shortens a string to maxLen, adding an ellipsis if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
