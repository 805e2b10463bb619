package components

import (
	"github.com/charmbracelet/bubbles/progress"

	"github.com/theirongolddev/payoff/internal/tui/theme"
)

// ProgressBar renders a static progress bar with percentage for pct in [0, 1].
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}

	bar := progress.New(
		progress.WithGradient(string(t.Accent), string(t.AccentBright)),
		progress.WithWidth(width),
	)
	bar.EmptyColor = string(t.TextDim)
	return bar.ViewAs(pct)
}
