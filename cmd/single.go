package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/payoff/internal/amortize"
	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/store"
)

var (
	flagPayment  float64
	flagSchedule bool
)

var singleCmd = &cobra.Command{
	Use:   "single",
	Short: "Simulate loan A alone at a fixed monthly payment",
	Long: "Simulate loan A alone at a fixed monthly payment.\n" +
		"Use --principal-a and --rate-a to override the configured loan.",
	RunE: runSingle,
}

func init() {
	singleCmd.Flags().Float64VarP(&flagPayment, "payment", "p", 0, "Monthly payment (required)")
	singleCmd.Flags().BoolVarP(&flagSchedule, "schedule", "s", false, "Print the month-by-month schedule")
	_ = singleCmd.MarkFlagRequired("payment")
	rootCmd.AddCommand(singleCmd)
}

func runSingle(cmd *cobra.Command, _ []string) error {
	cfg := appCfg
	if err := cfg.LoanA.Validate("loan_a"); err != nil {
		return fmt.Errorf("%w\nrun `payoff setup` or pass --principal-a", err)
	}
	loan := cfg.LoanA.Loan()

	schedule, res, err := amortize.SingleSchedule(loan.Principal, loan.MonthlyRate, flagPayment, simOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("simulating %s: %w", cfg.LoanA.Name, err)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("LOAN PAYOFF  Single loan"))
	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{cfg.LoanA.Name, loanText(cfg.LoanA)},
		{"Payment", cli.FormatMoney(flagPayment) + " / month"},
		{"Months", cli.FormatNumber(int64(res.Months))},
		{"Years", cli.FormatYears(res.Months)},
		{"Total interest", cli.FormatMoney(res.TotalInterest)},
		{"Balance", balanceTrend(schedule)},
	}))

	if flagSchedule {
		fmt.Println()
		fmt.Print(cli.RenderTable(singleScheduleTable(schedule)))
	}

	recordRun(cmd.Context(), cfg, store.Run{
		Kind:     store.KindSingle,
		A:        loan,
		Budget:   flagPayment,
		Plan:     model.Plan{PaymentA: flagPayment},
		Result:   res,
		Feasible: true,
	})
	return nil
}

// trendWidth caps the balance sparkline so long schedules fit one line.
const trendWidth = 48

// balanceTrend renders the combined closing balance per month, sampled down
// to at most trendWidth points.
func balanceTrend(periods []model.Period) string {
	n := len(periods)
	if n == 0 {
		return "repaid"
	}
	width := min(n, trendWidth)
	values := make([]float64, width)
	for i := range values {
		p := periods[i*n/width]
		values[i] = p.A.Opening + p.B.Opening
	}
	return cli.RenderSparkline(values)
}

func singleScheduleTable(periods []model.Period) cli.Table {
	t := cli.Table{
		Title:   "Schedule",
		Headers: []string{"Month", "Opening", "Interest", "Payment", "Closing"},
	}
	for _, p := range periods {
		t.Rows = append(t.Rows, []string{
			cli.FormatNumber(int64(p.Month)),
			cli.FormatMoney(p.A.Opening),
			cli.FormatMoney(p.A.Interest),
			cli.FormatMoney(p.A.Payment),
			cli.FormatMoney(p.A.Closing),
		})
	}
	return t
}
