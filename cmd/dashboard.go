// Package cmd는 smart-transfer CLI의 명령어를 정의합니다.
// dashboard.go implements the TUI dashboard command.
package cmd

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/insajin/smart-transfer/internal/manager"
	"github.com/insajin/smart-transfer/internal/tui"
)

// dashboardCmd opens the interactive TUI dashboard.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open TUI dashboard for plugins and operations",
	Long: `Opens an interactive TUI dashboard showing registered plugins,
recent operations, and runtime metrics.

Panels:
  - Plugins: name, version, type, state, source
  - Operations: recent compress/decompress history
  - Metrics: libraries loaded/skipped, call counters, latency

With plugins.watch enabled (or --watch), new libraries copied into the
plugin directory are loaded while the dashboard is open.

Keyboard shortcuts:
  q          quit dashboard
  r          manual refresh
  d          toggle row detail
  tab        switch between panels
  up/down    scroll the focused table`,
	RunE: runDashboard,
}

var dashboardWatch bool

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().BoolVar(&dashboardWatch, "watch", false, "watch the plugin directory while open")
}

// runDashboard initializes and runs the Bubble Tea TUI program.
func runDashboard(cmd *cobra.Command, args []string) error {
	m, cfg, err := openManager()
	if err != nil {
		return err
	}
	defer closeManager(m)

	provider := newManagerProvider(m)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if dashboardWatch || cfg.Plugins.Watch {
		events, err := m.Watch(ctx)
		if err != nil {
			return fmt.Errorf("plugin directory watch: %w", err)
		}
		provider.setWatching(true)
		go provider.consume(events)
	}

	p := tea.NewProgram(tui.NewModel(provider), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}

	return nil
}

// managerProvider adapts a Manager to tui.DataProvider.
type managerProvider struct {
	m *manager.Manager

	mu        sync.Mutex
	watching  bool
	lastEvent string
}

func newManagerProvider(m *manager.Manager) *managerProvider {
	return &managerProvider{m: m}
}

func (p *managerProvider) setWatching(on bool) {
	p.mu.Lock()
	p.watching = on
	p.mu.Unlock()
}

// consume records watch events until the channel closes.
func (p *managerProvider) consume(events <-chan manager.WatchEvent) {
	for ev := range events {
		msg := "registered " + ev.Plugin
		if ev.Err != nil {
			msg = fmt.Sprintf("failed %s: %v", ev.Path, ev.Err)
		}
		p.mu.Lock()
		p.lastEvent = msg
		p.mu.Unlock()
	}
	p.setWatching(false)
}

// FetchData implements tui.DataProvider.
func (p *managerProvider) FetchData() tui.DashboardData {
	p.mu.Lock()
	watching, lastEvent := p.watching, p.lastEvent
	p.mu.Unlock()

	data := tui.DashboardData{
		PluginsDir: p.m.PluginsDir(),
		Watching:   watching,
		LastEvent:  lastEvent,
	}

	for _, info := range p.m.ListPlugins() {
		data.Plugins = append(data.Plugins, tui.PluginRow{
			Name:         info.Name,
			Version:      info.Version,
			Type:         string(info.Type),
			Source:       info.Source,
			Capabilities: info.Capabilities,
			Initialized:  info.Initialized,
		})
	}

	for _, op := range p.m.History() {
		data.Operations = append(data.Operations, tui.OperationEntry{
			ID:       op.ID,
			Kind:     string(op.Kind),
			Plugin:   op.Plugin,
			Target:   op.Target,
			Error:    op.Error,
			Duration: op.Duration,
			Time:     op.StartedAt,
		})
	}

	mt := p.m.Metrics()
	data.StartTime = mt.StartTime()
	data.LibrariesLoaded = mt.LibrariesLoaded.Load()
	data.LibrariesSkipped = mt.LibrariesSkipped.Load()
	data.CompressAttempts = mt.CompressAttempts.Load()
	data.CompressFailures = mt.CompressFailures.Load()
	data.DecompressAttempts = mt.DecompressAttempts.Load()
	data.DecompressFailures = mt.DecompressFailures.Load()
	data.BytesWritten = mt.BytesWritten.Load()
	data.AvgLatency = mt.AvgLatency()
	return data
}
