package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/payoff/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{0.5, "0.50"},
		{1856.2644, "1,856.26"},
		{16612.11, "16,612.11"},
		{1234567.891, "1,234,567.89"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMonths(t *testing.T) {
	if got := FormatMonths(40); got != "40 mo (3.33 yr)" {
		t.Errorf("FormatMonths(40) = %q", got)
	}
	if got := FormatYears(234); got != "19.50" {
		t.Errorf("FormatYears(234) = %q", got)
	}
}

func TestFormatRate(t *testing.T) {
	if got := FormatRate(model.MonthlyRate(4.3)); got != "4.30%" {
		t.Errorf("FormatRate = %q, want 4.30%%", got)
	}
}

func TestFormatAge(t *testing.T) {
	if got := FormatAge(time.Time{}); got != "-" {
		t.Errorf("FormatAge(zero) = %q", got)
	}
	if got := FormatAge(time.Now().Add(-3 * time.Hour)); !strings.Contains(got, "hours ago") {
		t.Errorf("FormatAge(-3h) = %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Top splits",
		Headers: []string{"Payment A", "Months"},
		Rows: [][]string{
			{"120.00", "40"},
			{"---"},
			{"121.00", "40"},
		},
	})
	for _, want := range []string{"Top splits", "Payment A", "120.00", "121.00", "╭", "╯"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\n"); got != 8 {
		t.Errorf("table has %d lines, want 8:\n%s", got, out)
	}

	if RenderTable(Table{}) != "" {
		t.Error("empty table should render nothing")
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 50, 100}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("empty sparkline should be empty")
	}
}

func TestRenderStatusColors(t *testing.T) {
	for name, render := range map[string]func(string) string{
		"good": RenderGood,
		"warn": RenderWarn,
		"bad":  RenderBad,
	} {
		if got := render("unreachable"); !strings.Contains(got, "unreachable") {
			t.Errorf("%s: %q lost its text", name, got)
		}
	}
}
