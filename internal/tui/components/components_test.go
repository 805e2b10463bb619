package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestLayoutRowSumsToWidth(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{80, 3}, {81, 4}, {7, 7}, {100, 1}} {
		widths := LayoutRow(tc.total, tc.n)
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != tc.total {
			t.Fatalf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Months", Value: "40"},
		{Label: "Interest", Value: "1,856.26", Note: "A 120 / B 330"},
	}, 60)
	if got := lipgloss.Width(row); got != 60 {
		t.Fatalf("row width = %d, want 60", got)
	}
	if !strings.Contains(row, "1,856.26") {
		t.Fatal("row is missing value")
	}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	pos := 0
	for i, tab := range Tabs {
		w := len(tab.Name) + 2
		if got := TabAtX(pos + w/2); got != i {
			t.Fatalf("x=%d -> tab=%d, want %d", pos+w/2, got, i)
		}
		pos += w
		if got := TabAtX(pos); got != -1 {
			t.Fatalf("separator at x=%d -> tab=%d, want -1", pos, got)
		}
		pos++
	}
	if got := TabAtX(pos + 5); got != -1 {
		t.Fatalf("past the last tab -> %d, want -1", got)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if TabIdxByKey('c') != 1 || TabIdxByKey('z') != -1 {
		t.Fatal("unexpected tab lookup")
	}
}

func TestBalanceChartDimensions(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(100 - i)
	}
	chart := BalanceChart(values, 40, 5, func(v float64) string { return "100" })

	lines := strings.Split(chart, "\n")
	if len(lines) != 6 {
		t.Fatalf("chart has %d lines, want 6", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w > 40 {
			t.Fatalf("line %d width %d exceeds 40", i, w)
		}
	}
}

func TestSample(t *testing.T) {
	got := sample([]float64{1, 2, 3, 4, 5}, 3)
	if len(got) != 3 || got[0] != 1 || got[2] != 5 {
		t.Fatalf("sample = %v", got)
	}
}
