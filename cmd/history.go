package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/store"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 20, "Number of runs to list (0 = all)")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	h, err := store.Open(config.HistoryPath())
	if err != nil {
		return err
	}
	defer h.Close()

	runs, err := h.ListRuns(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("\n  No runs recorded yet.")
		return nil
	}

	t := cli.Table{
		Title:   fmt.Sprintf("History  %s", config.HistoryPath()),
		Headers: []string{"ID", "Kind", "When", "Budget", "Payment A", "Payment B", "Months", "Interest"},
	}
	for _, r := range runs {
		months, interest := "-", "-"
		if r.Feasible {
			months = cli.FormatNumber(int64(r.Result.Months))
			interest = cli.FormatMoney(r.Result.TotalInterest)
		}
		t.Rows = append(t.Rows, []string{
			shortID(r.ID),
			r.Kind,
			cli.FormatAge(r.CreatedAt),
			cli.FormatMoney(r.Budget),
			cli.FormatMoney(r.Plan.PaymentA),
			cli.FormatMoney(r.Plan.PaymentB),
			months,
			interest,
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	h, err := store.Open(config.HistoryPath())
	if err != nil {
		return err
	}
	defer h.Close()

	r, err := findRun(cmd.Context(), h, args[0])
	if err != nil {
		return err
	}

	pairs := [][2]string{
		{"ID", r.ID},
		{"Kind", r.Kind},
		{"Recorded", r.CreatedAt.Local().Format("2006-01-02 15:04:05")},
		{"Loan A", fmt.Sprintf("%s at %s", cli.FormatMoney(r.A.Principal), cli.FormatRate(r.A.MonthlyRate))},
	}
	if r.Kind != store.KindSingle {
		pairs = append(pairs, [2]string{"Loan B",
			fmt.Sprintf("%s at %s", cli.FormatMoney(r.B.Principal), cli.FormatRate(r.B.MonthlyRate))})
	}
	pairs = append(pairs, [2]string{"Budget", cli.FormatMoney(r.Budget)})
	if r.Kind == store.KindSplit {
		pairs = append(pairs, [2]string{"Candidates", cli.FormatNumber(int64(r.Candidates))})
	}
	if r.Feasible {
		pairs = append(pairs,
			[2]string{"Plan", fmt.Sprintf("A %s / B %s", cli.FormatMoney(r.Plan.PaymentA), cli.FormatMoney(r.Plan.PaymentB))},
			[2]string{"Months", cli.FormatMonths(r.Result.Months)},
			[2]string{"Total interest", cli.FormatMoney(r.Result.TotalInterest)},
		)
	} else {
		pairs = append(pairs, [2]string{"Result", cli.RenderWarn("no feasible split")})
	}

	fmt.Println()
	fmt.Print(cli.RenderKV(pairs))
	return nil
}

// findRun resolves a full ID or a unique prefix as printed by `history`.
func findRun(ctx context.Context, h *store.History, id string) (store.Run, error) {
	r, err := h.GetRun(ctx, id)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, store.ErrRunNotFound) {
		return store.Run{}, err
	}
	runs, err := h.ListRuns(ctx, 0)
	if err != nil {
		return store.Run{}, err
	}
	var match []store.Run
	for _, r := range runs {
		if strings.HasPrefix(r.ID, id) {
			match = append(match, r)
		}
	}
	switch len(match) {
	case 0:
		return store.Run{}, fmt.Errorf("%w: %s", store.ErrRunNotFound, id)
	case 1:
		return match[0], nil
	default:
		return store.Run{}, fmt.Errorf("id prefix %q matches %d runs", id, len(match))
	}
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	h, err := store.Open(config.HistoryPath())
	if err != nil {
		return err
	}
	defer h.Close()

	n, err := h.ClearRuns(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("  Deleted %s runs.\n", cli.FormatNumber(n))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
