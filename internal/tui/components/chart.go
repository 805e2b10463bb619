package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/payoff/internal/tui/theme"
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as one row of block characters.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := maxOf(values)
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		buf.WriteRune(blocks[blockIndex(v/peak)])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// BalanceChart renders a declining balance series as a column chart that
// fits width x height cells. Series longer than the chart are sampled.
// label formats the top-of-axis value.
func BalanceChart(values []float64, width, height int, label func(float64) string) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := maxOf(values)
	if peak == 0 {
		peak = 1
	}
	top := label(peak)
	axisW := len(top) + 1
	cols := width - axisW - 1
	if cols < 1 || height < 2 {
		return Sparkline(values, t.Accent)
	}
	sampled := sample(values, cols)

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		switch row {
		case height:
			b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, top)))
		default:
			b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, "")))
		}

		lo := float64(row-1) / float64(height)
		hi := float64(row) / float64(height)
		var line strings.Builder
		for _, v := range sampled {
			f := v / peak
			switch {
			case f >= hi:
				line.WriteRune('█')
			case f > lo:
				line.WriteRune(blocks[blockIndex((f-lo)*float64(height))])
			default:
				line.WriteRune(' ')
			}
		}
		b.WriteString(bar.Render(line.String()))
		b.WriteString("\n")
	}
	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", len(sampled)))))
	return b.String()
}

// sample picks n evenly spaced values, always keeping the first and last.
func sample(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	if n == 1 {
		return values[:1]
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = values[i*(len(values)-1)/(n-1)]
	}
	return out
}

func blockIndex(frac float64) int {
	idx := int(frac * float64(len(blocks)-1))
	if idx < 0 {
		return 0
	}
	if idx >= len(blocks) {
		return len(blocks) - 1
	}
	return idx
}

func maxOf(values []float64) float64 {
	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	return peak
}
