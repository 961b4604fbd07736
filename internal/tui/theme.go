package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/fireflymoney/internal/model"
)

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext1 lipgloss.Color = "#bac2de"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface2 lipgloss.Color = "#585b70"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

// ---------------------------------------------------------------------------
// Semantic color aliases
// ---------------------------------------------------------------------------

const (
	colorAccent   = colorPink
	colorBrand    = colorMauve
	colorFocus    = colorLavender
	colorSuccess  = colorGreen
	colorError    = colorRed
	colorWarning  = colorYellow
	colorInfo     = colorTeal
	colorDisabled = colorOverlay0
)

// typeColor is the selector colour for a transaction type.
func typeColor(t model.TransactionType) lipgloss.Color {
	switch t {
	case model.Withdrawal:
		return colorRed
	case model.Deposit:
		return colorGreen
	case model.Transfer, model.OpeningBalance:
		return colorBlue
	default:
		return colorText
	}
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)

	headerBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 2)

	headerAppStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true)

	rangeTitleStyle = lipgloss.NewStyle().
			Foreground(colorPeach).
			Background(colorMantle).
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Background(colorSurface0).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorOverlay1).
				Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorMantle).
			Padding(0, 2)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Background(colorSurface0).
			Padding(0, 2)

	statusErrStyle = statusBarStyle.Foreground(colorError)

	listBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorSubtext0)

	labelStyle    = lipgloss.NewStyle().Foreground(colorSubtext0)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorOverlay1)
	disabledStyle = lipgloss.NewStyle().Foreground(colorDisabled).Strikethrough(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	focusStyle    = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	skeletonStyle = lipgloss.NewStyle().Foreground(colorSurface2)
	creditStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	debitStyle    = lipgloss.NewStyle().Foreground(colorError)
	fieldErrStyle = lipgloss.NewStyle().Foreground(colorError).Italic(true)

	bannerErrStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(0, 1)

	bannerOKStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSuccess).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(colorMantle).
			Background(colorBrand).
			Bold(true).
			Padding(0, 2)

	buttonBusyStyle = buttonStyle.Background(colorSurface2).Foreground(colorSubtext1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorInfo).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().Foreground(colorWarning)
)

// amountStyle colours a value red when negative and green when positive.
func amountStyle(sign int) lipgloss.Style {
	switch {
	case sign < 0:
		return debitStyle
	case sign > 0:
		return creditStyle
	default:
		return lipgloss.NewStyle().Foreground(colorText)
	}
}
