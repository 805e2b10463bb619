package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/search"
	"github.com/theirongolddev/payoff/internal/store"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Search for the best split of the monthly budget (default command)",
	RunE:  runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, _ []string) error {
	cfg := appCfg
	rep, elapsed, err := runSearch(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("LOAN PAYOFF  Best budget split"))
	fmt.Println()
	fmt.Print(cli.RenderKV(inputPairs(cfg)))
	fmt.Println()

	if rep.Best == nil {
		fmt.Println("  " + cli.RenderWarn("No feasible split: no candidate pays more than the first month's interest on both loans."))
		fmt.Printf("  %s rejected, %s stalled. Raise the budget or widen the sweep.\n",
			cli.FormatNumber(int64(rep.Rejected)), cli.FormatNumber(int64(rep.Stalled)))
	} else {
		best := rep.Best
		fmt.Print(cli.RenderKV([][2]string{
			{"Payment A", cli.RenderGood(cli.FormatMoney(best.Plan.PaymentA))},
			{"Payment B", cli.RenderGood(cli.FormatMoney(best.Plan.PaymentB))},
			{"Months", cli.FormatNumber(int64(best.Result.Months))},
			{"Years", cli.FormatYears(best.Result.Months)},
			{"Total interest", cli.FormatMoney(best.Result.TotalInterest)},
		}))
		fmt.Println()
		fmt.Print(cli.RenderTable(rankingTable(rep, cfg.General.Top)))
	}

	fmt.Fprintf(os.Stderr, "\n  %s candidates (%s accepted) in %s\n",
		cli.FormatNumber(int64(len(rep.Candidates))),
		cli.FormatNumber(int64(rep.Accepted)),
		elapsed.Round(time.Millisecond))

	run := store.Run{
		Kind:       store.KindSplit,
		A:          cfg.LoanA.Loan(),
		B:          cfg.LoanB.Loan(),
		Budget:     cfg.Budget.Total,
		Feasible:   rep.Best != nil,
		Candidates: len(rep.Candidates),
	}
	if rep.Best != nil {
		run.Plan = rep.Best.Plan
		run.Result = rep.Best.Result
	}
	recordRun(cmd.Context(), cfg, run)
	return nil
}

// runSearch runs the split search, drawing progress on stderr.
func runSearch(ctx context.Context, cfg config.Config) (search.Report, time.Duration, error) {
	p, err := searchParams(cfg)
	if err != nil {
		return search.Report{}, 0, err
	}

	total := len(p.Candidates)
	if !flagQuiet && total >= 1000 {
		every := total / 100
		p.Progress = func(done, total int) {
			if done%every == 0 || done == total {
				fmt.Fprintf(os.Stderr, "\r  Simulating %s", cli.RenderProgressBar(done, total, 30))
			}
		}
	}

	start := time.Now()
	rep, err := search.Run(ctx, p)
	if p.Progress != nil {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
	if err != nil {
		return search.Report{}, 0, err
	}
	return rep, time.Since(start), nil
}

func inputPairs(cfg config.Config) [][2]string {
	lower, upper, step := cfg.Sweep.Bounds(cfg.Budget.Total)
	return [][2]string{
		{cfg.LoanA.Name, loanText(cfg.LoanA)},
		{cfg.LoanB.Name, loanText(cfg.LoanB)},
		{"Budget", cli.FormatMoney(cfg.Budget.Total) + " / month"},
		{"Sweep", fmt.Sprintf("payment A from %s to %s, step %s",
			cli.FormatMoney(lower), cli.FormatMoney(upper), cli.FormatMoney(step))},
	}
}

func loanText(l config.LoanConfig) string {
	return fmt.Sprintf("%s at %s", cli.FormatMoney(l.Principal), cli.FormatRate(model.MonthlyRate(l.AnnualRatePct)))
}

func rankingTable(rep search.Report, top int) cli.Table {
	t := cli.Table{
		Title:   fmt.Sprintf("Top %d splits", top),
		Headers: []string{"Rank", "Payment A", "Payment B", "Months", "Years", "Interest"},
	}
	for i, c := range rep.Top(top) {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", i+1),
			cli.FormatMoney(c.Plan.PaymentA),
			cli.FormatMoney(c.Plan.PaymentB),
			cli.FormatNumber(int64(c.Result.Months)),
			cli.FormatYears(c.Result.Months),
			cli.FormatMoney(c.Result.TotalInterest),
		})
	}
	return t
}

// recordRun stores r in the history database. Failures are logged, not
// returned: the calculation already succeeded.
func recordRun(ctx context.Context, cfg config.Config, r store.Run) {
	if cfg.General.NoHistory {
		return
	}
	h, err := store.Open(config.HistoryPath())
	if err != nil {
		slog.Warn("history unavailable", "error", err)
		return
	}
	defer h.Close()

	saved, err := h.SaveRun(ctx, r)
	if err != nil {
		slog.Warn("recording run failed", "error", err)
		return
	}
	slog.Debug("run recorded", "id", saved.ID, "kind", saved.Kind)
}
