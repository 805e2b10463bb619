package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/search"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"
)

func newTable(cols []table.Column, rows []table.Row) table.Model {
	t := theme.Active
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Foreground(t.TextMuted).
		Bold(true)
	styles.Cell = styles.Cell.Foreground(t.TextPrimary)
	styles.Selected = styles.Selected.
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true)

	return table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(minContentHeight),
		table.WithStyles(styles),
	)
}

func candidateColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 6},
		{Title: "Payment A", Width: 12},
		{Title: "Payment B", Width: 12},
		{Title: "Months", Width: 8},
		{Title: "Interest", Width: 12},
		{Title: "Status", Width: 34},
	}
}

func candidateRows(cands []search.Candidate) []table.Row {
	rows := make([]table.Row, len(cands))
	for i, c := range cands {
		months, interest := "-", "-"
		if c.Status == search.Accepted {
			months = strconv.Itoa(c.Result.Months)
			interest = cli.FormatMoney(c.Result.TotalInterest)
		}
		rows[i] = table.Row{
			strconv.Itoa(c.Index + 1),
			cli.FormatMoney(c.Plan.PaymentA),
			cli.FormatMoney(c.Plan.PaymentB),
			months,
			interest,
			c.Status.String(),
		}
	}
	return rows
}

func scheduleColumns() []table.Column {
	return []table.Column{
		{Title: "Month", Width: 6},
		{Title: "Paid A", Width: 10},
		{Title: "Balance A", Width: 12},
		{Title: "Paid B", Width: 10},
		{Title: "Balance B", Width: 12},
		{Title: "Interest", Width: 10},
		{Title: "Balance", Width: 12},
	}
}

func scheduleRows(periods []model.Period) []table.Row {
	rows := make([]table.Row, len(periods))
	for i, p := range periods {
		rows[i] = table.Row{
			strconv.Itoa(p.Month),
			cli.FormatMoney(p.A.Payment),
			cli.FormatMoney(p.A.Closing),
			cli.FormatMoney(p.B.Payment),
			cli.FormatMoney(p.B.Closing),
			cli.FormatMoney(p.Interest()),
			cli.FormatMoney(p.Balance()),
		}
	}
	return rows
}

func (a App) renderBestTab(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if a.err != nil {
		body := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(a.err.Error()) +
			"\n\n" + muted.Render("Fix the loans in "+config.Path()+" and press [r] to rerun.")
		return components.ContentCard("Search failed", body, cw)
	}

	counts := components.MetricCardRow([]components.Metric{
		{Label: "Candidates", Value: cli.FormatNumber(int64(len(a.report.Candidates)))},
		{Label: "Accepted", Value: cli.FormatNumber(int64(a.report.Accepted))},
		{Label: "Rejected", Value: cli.FormatNumber(int64(a.report.Rejected))},
		{Label: "Stalled", Value: cli.FormatNumber(int64(a.report.Stalled))},
	}, cw)

	best := a.report.Best
	if best == nil {
		body := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render("No split pays more than the first month's interest on both loans.") +
			"\n\n" + muted.Render("Raise the budget or widen the sweep range.")
		return lipgloss.JoinVertical(lipgloss.Left, components.ContentCard("No feasible split", body, cw), counts)
	}

	headline := components.MetricCardRow([]components.Metric{
		{Label: "Payment A", Value: cli.FormatMoney(best.Plan.PaymentA), Note: "per month"},
		{Label: "Payment B", Value: cli.FormatMoney(best.Plan.PaymentB), Note: "per month"},
		{Label: "Paid off in", Value: cli.FormatMonths(best.Result.Months)},
		{Label: "Total interest", Value: cli.FormatMoney(best.Result.TotalInterest)},
	}, cw)

	parts := []string{headline}
	if len(a.bestSchedule) > 0 {
		balances := make([]float64, len(a.bestSchedule))
		for i, p := range a.bestSchedule {
			balances[i] = p.Balance()
		}
		chartH := a.height - 20
		if chartH < 4 {
			chartH = 4
		}
		if chartH > 12 {
			chartH = 12
		}
		chart := components.BalanceChart(balances, components.CardInnerWidth(cw)-10, chartH, cli.FormatMoney)
		parts = append(parts, components.ContentCard("Combined balance", chart, cw))
	}
	parts = append(parts, counts)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderCandidatesTab(cw int) string {
	if len(a.report.Candidates) == 0 {
		return components.ContentCard("Candidates", "No candidates in the sweep range.", cw)
	}
	hint := lipgloss.NewStyle().Foreground(theme.Active.TextDim).Background(theme.Active.Surface).
		Render("[Enter] show schedule")
	return components.ContentCard("Candidates", a.candTable.View()+"\n"+hint, cw)
}

func (a App) renderScheduleTab(cw int) string {
	t := theme.Active
	if a.selected < 0 {
		return components.ContentCard("Schedule", "Select a split on the Candidates tab.", cw)
	}

	c := a.report.Candidates[a.selected]
	title := fmt.Sprintf("Schedule · A %s / B %s", cli.FormatMoney(c.Plan.PaymentA), cli.FormatMoney(c.Plan.PaymentB))
	if a.schedErr != nil {
		body := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(a.schedErr.Error())
		return components.ContentCard(title, body, cw)
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(
		fmt.Sprintf("%s · %s interest", cli.FormatMonths(a.schedResult.Months), cli.FormatMoney(a.schedResult.TotalInterest))))
	b.WriteString("\n")
	b.WriteString(a.schedTable.View())
	return components.ContentCard(title, b.String(), cw)
}
