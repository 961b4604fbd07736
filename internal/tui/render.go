package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const appName = "fireflymoney"

func (m Model) renderHeader(title string) string {
	line := headerAppStyle.Render(appName)
	if title != "" {
		line += "  " + rangeTitleStyle.Render(title)
	}
	if m.width <= 0 {
		return headerBarStyle.Render(line)
	}
	return headerBarStyle.Width(m.width).Render(line)
}

func (m Model) sectionWidth() int {
	w := m.width - 4
	if w <= 0 || w > 96 {
		w = 72
	}
	return w
}

func (m Model) renderSection(title, content string) string {
	w := m.sectionWidth()
	inner := w - 4
	sep := lipgloss.NewStyle().Foreground(colorSurface2).Render(strings.Repeat("─", inner))
	return listBoxStyle.Width(w).Render(titleStyle.Render(title) + "\n" + sep + "\n" + content)
}

func (m Model) renderFooter(bindings []key.Binding) string {
	bg := colorMantle
	keyStyle := helpKeyStyle.Background(bg)
	descStyle := helpDescStyle.Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")
	sep := lipgloss.NewStyle().Background(bg).Render("  ")

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" && h.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(h.Key)+space+descStyle.Render(h.Desc))
	}
	content := strings.Join(parts, sep)
	if m.width <= 0 {
		return footerStyle.Render(content)
	}
	return footerStyle.Width(m.width).Render(content)
}

func (m Model) renderStatus() string {
	style := statusBarStyle
	if m.statusErr {
		style = statusErrStyle
	}
	flat := strings.ReplaceAll(m.status, "\n", " ")
	if m.width <= 0 {
		return style.Render(flat)
	}
	return style.Width(m.width).Render(flat)
}

// placeWithFooter pins the status and footer lines to the bottom of the
// terminal when its height is known.
func (m Model) placeWithFooter(body, statusLine, footer string) string {
	if m.height <= 0 {
		return body + "\n\n" + statusLine + "\n" + footer
	}
	contentHeight := max(m.height-2, 1)
	if lipgloss.Height(body) >= contentHeight {
		return body + "\n" + statusLine + "\n" + footer
	}
	main := lipgloss.Place(m.width, contentHeight, lipgloss.Left, lipgloss.Top, body)
	lines := splitLines(main)
	for i, line := range lines {
		lines[i] = padRight(line, m.width)
	}
	return strings.Join(lines, "\n") + "\n" + statusLine + "\n" + footer
}

func skeleton(rows, width int) string {
	out := make([]string, rows)
	for i := range out {
		w := width - (i%3)*6
		out[i] = skeletonStyle.Render(strings.Repeat("░", max(w, 4)))
	}
	return strings.Join(out, "\n")
}

// row lays out a left and right cell across width columns.
func row(left, right string, width int) string {
	gap := width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		left = ansi.Truncate(left, max(width-ansi.StringWidth(right)-2, 1), "…")
		gap = max(width-ansi.StringWidth(left)-ansi.StringWidth(right), 1)
	}
	return left + strings.Repeat(" ", gap) + right
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func padRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if width <= 0 || w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
