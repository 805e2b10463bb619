// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/theirongolddev/payoff/internal/model"
)

// FormatMoney formats an amount with thousands separators and two decimals.
// e.g., 1856.2644 -> "1,856.26"
func FormatMoney(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatYears converts a month count to years with two decimals.
func FormatYears(months int) string {
	return fmt.Sprintf("%.2f", float64(months)/12)
}

// FormatMonths formats a month count with its length in years.
// e.g., 40 -> "40 mo (3.33 yr)"
func FormatMonths(months int) string {
	return fmt.Sprintf("%s mo (%s yr)", FormatNumber(int64(months)), FormatYears(months))
}

// FormatRate formats a monthly rate fraction as an annual percentage.
// e.g., 0.0035833 -> "4.30%"
func FormatRate(monthly float64) string {
	return fmt.Sprintf("%.2f%%", model.AnnualPct(monthly))
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatAge formats a timestamp relative to now.
// e.g., "3 hours ago"
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
