// Package tui provides a Bubble Tea dashboard for smart-transfer.
// styles.go defines lipgloss styles for the dashboard panels and status indicators.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/insajin/smart-transfer/internal/branding"
)

// Panel border and title styles.
var (
	// panelStyle defines the base panel with a rounded border.
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(branding.ColorBorderGray)).
			Padding(0, 1)

	// activePanelStyle highlights the currently focused panel.
	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(branding.ColorPrimary)).
				Padding(0, 1)

	// titleStyle formats panel titles.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(branding.ColorWhite)).
			Background(lipgloss.Color(branding.ColorDeep)).
			Padding(0, 1)
)

// Plugin state styles.
var (
	// pluginReady renders plugins that passed Initialize.
	pluginReady = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorSuccess)).
			Bold(true)

	// pluginIdle renders plugins that are registered but not initialized.
	pluginIdle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorWarning)).
			Bold(true)

	// watchOn renders the directory watch indicator.
	watchOn = lipgloss.NewStyle().
		Foreground(lipgloss.Color(branding.ColorSuccess))

	// watchOff renders the disabled directory watch indicator.
	watchOff = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorMutedGray))
)

// Table formatting styles.
var (
	// headerStyle formats table column headers.
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(branding.ColorWhite)).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(branding.ColorMedium))

	// selectedRowStyle highlights the currently selected table row.
	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(branding.ColorDeep)).
				Foreground(lipgloss.Color(branding.ColorWhite))

	// normalRowStyle formats a normal (unselected) table row.
	normalRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorLightGray))
)

// Label and value styles for key-value pairs.
var (
	// labelStyle formats labels in key-value displays.
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorLightGray)).
			Width(18)

	// valueStyle formats values in key-value displays.
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorWhite))
)

// Operation status indicator styles.
var (
	// opSucceeded renders succeeded operations.
	opSucceeded = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorSuccess))

	// opFailed renders failed operations.
	opFailed = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorError))
)

// Footer and help styles.
var (
	// helpStyle renders keyboard shortcut hints in the footer.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorMutedGray))

	// helpKeyStyle renders keyboard shortcut keys.
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(branding.ColorSuccess)).
			Bold(true)
)
