// Package components provides reusable widgets for the payoff explorer.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/payoff/internal/tui/theme"
)

// Metric is one labeled figure shown in a MetricCard.
type Metric struct {
	Label string
	Value string
	Note  string
}

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// MetricCard renders a bordered card with a label, a bold value and an
// optional note. outerWidth includes the border.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active

	style := cardStyle(outerWidth)
	content := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(m.Label) + "\n" +
		lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true).Render(m.Value)
	if m.Note != "" {
		content += "\n" + lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(m.Note)
	}
	return style.Render(content)
}

// MetricCardRow renders metrics side by side, filling exactly totalWidth.
func MetricCardRow(metrics []Metric, totalWidth int) string {
	if len(metrics) == 0 {
		return ""
	}
	widths := LayoutRow(totalWidth, len(metrics))
	cards := make([]string, len(metrics))
	for i, m := range metrics {
		cards[i] = MetricCard(m, widths[i])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// ContentCard renders a bordered card with an optional title above body.
func ContentCard(title, body string, outerWidth int) string {
	t := theme.Active

	content := body
	if title != "" {
		content = lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true).Render(title) +
			"\n" + body
	}
	return cardStyle(outerWidth).Render(content)
}

// CardInnerWidth returns the usable text width inside a card of the given
// outer width.
func CardInnerWidth(outerWidth int) int {
	w := outerWidth - 4 // 2 border + 2 padding
	if w < 10 {
		w = 10
	}
	return w
}

func cardStyle(outerWidth int) lipgloss.Style {
	t := theme.Active
	w := outerWidth - 2
	if w < 10 {
		w = 10
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(w).
		Padding(0, 1)
}
