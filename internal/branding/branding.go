// Package branding centralizes the smart-transfer identity constants,
// the color palette shared by the dashboard and tables, and the banner.
package branding

// Application identity constants.
const (
	AppName    = "smart-transfer"
	CLIName    = "Smart Transfer"
	BinaryName = "smart-transfer"
)

// Palette in hex format for Lipgloss true color support.
const (
	// ColorPrimary is the main accent color.
	ColorPrimary = "#2563EB"
	// ColorDeep is a dark blue for title backgrounds.
	ColorDeep = "#1E3A8A"
	// ColorMedium is a medium blue for table header rules.
	ColorMedium = "#3B82F6"
	// ColorSuccess marks ready plugins and succeeded operations.
	ColorSuccess = "#10B981"
	// ColorWarning marks optional or uninitialized plugins.
	ColorWarning = "#F59E0B"
	// ColorError marks failures.
	ColorError = "#DC2626"
	// ColorWhite is pure white.
	ColorWhite = "#FFFFFF"
	// ColorLightGray is a light gray for labels.
	ColorLightGray = "#A1A1AA"
	// ColorMutedGray is a muted gray for help text.
	ColorMutedGray = "#71717A"
	// ColorBorderGray is a panel border gray for inactive elements.
	ColorBorderGray = "#52525B"
)

// Banner is a compact ASCII art archive box for CLI startup display.
const Banner = `
   _________
  /________/|
  |  |==|  ||
  |  |==|  ||
  |________|/`

// StartupBanner returns the full banner with the application name appended.
func StartupBanner() string {
	return Banner + "\n" +
		"  " + CLIName + "\n"
}
