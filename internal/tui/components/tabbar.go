package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/payoff/internal/tui/theme"
)

// Tab is one entry of the tab bar. Key is the first letter of Name.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Best", Key: 'b'},
	{Name: "Candidates", Key: 'c'},
	{Name: "Schedule", Key: 's'},
}

const tabPad = 1

// RenderTabBar renders the tab bar with the given active index. Each tab
// is its name padded by one space on both sides; tabs are separated by a
// single rule character.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	active := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, tabPad)
	inactive := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, tabPad)
	key := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true).
		Underline(true)
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = active.Render(tab.Name)
			continue
		}
		parts[i] = inactive.Render(key.Render(tab.Name[:1]) + tab.Name[1:])
	}

	bar := strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}

// TabAtX returns the tab under column x of the tab bar, or -1.
func TabAtX(x int) int {
	pos := 0
	for i, tab := range Tabs {
		w := len(tab.Name) + 2*tabPad
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}
