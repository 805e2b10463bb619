package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/payoff/internal/amortize"
	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/store"
)

var (
	flagPaymentA float64
	flagPaymentB float64
)

var jointCmd = &cobra.Command{
	Use:   "joint",
	Short: "Simulate both loans under an explicit payment plan",
	Long: "Simulate both loans under an explicit payment plan. Payment B defaults to\n" +
		"the budget minus payment A. Once either loan is repaid the other receives\n" +
		"the whole budget.",
	RunE: runJoint,
}

func init() {
	jointCmd.Flags().Float64Var(&flagPaymentA, "payment-a", 0, "Monthly payment to loan A (required)")
	jointCmd.Flags().Float64Var(&flagPaymentB, "payment-b", 0, "Monthly payment to loan B (default budget - payment A)")
	jointCmd.Flags().BoolVarP(&flagSchedule, "schedule", "s", false, "Print the month-by-month schedule")
	_ = jointCmd.MarkFlagRequired("payment-a")
	rootCmd.AddCommand(jointCmd)
}

func runJoint(cmd *cobra.Command, _ []string) error {
	cfg := appCfg
	if err := errors.Join(cfg.LoanA.Validate("loan_a"), cfg.LoanB.Validate("loan_b")); err != nil {
		return fmt.Errorf("%w\nrun `payoff setup` or pass --principal-a/--principal-b flags", err)
	}
	a, b := cfg.LoanA.Loan(), cfg.LoanB.Loan()

	budget := cfg.Budget.Total
	plan := model.SplitBudget(budget, flagPaymentA)
	if cmd.Flags().Changed("payment-b") {
		plan.PaymentB = flagPaymentB
		budget = plan.Total()
	}

	schedule, res, err := amortize.JointSchedule(a, b, plan, budget, simOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("simulating plan: %w", err)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("LOAN PAYOFF  Joint plan"))
	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{cfg.LoanA.Name, loanText(cfg.LoanA)},
		{cfg.LoanB.Name, loanText(cfg.LoanB)},
		{"Budget", cli.FormatMoney(budget) + " / month"},
		{"Plan", fmt.Sprintf("A %s / B %s", cli.FormatMoney(plan.PaymentA), cli.FormatMoney(plan.PaymentB))},
		{"Months", cli.FormatNumber(int64(res.Months))},
		{"Years", cli.FormatYears(res.Months)},
		{"Total interest", cli.FormatMoney(res.TotalInterest)},
		{"Balance", balanceTrend(schedule)},
	}))

	if flagSchedule {
		fmt.Println()
		fmt.Print(cli.RenderTable(jointScheduleTable(schedule)))
	}

	recordRun(cmd.Context(), cfg, store.Run{
		Kind:     store.KindJoint,
		A:        a,
		B:        b,
		Budget:   budget,
		Plan:     plan,
		Result:   res,
		Feasible: true,
	})
	return nil
}

func jointScheduleTable(periods []model.Period) cli.Table {
	t := cli.Table{
		Title:   "Schedule",
		Headers: []string{"Month", "Interest A", "Paid A", "Balance A", "Interest B", "Paid B", "Balance B"},
	}
	for _, p := range periods {
		t.Rows = append(t.Rows, []string{
			cli.FormatNumber(int64(p.Month)),
			cli.FormatMoney(p.A.Interest),
			cli.FormatMoney(p.A.Payment),
			cli.FormatMoney(p.A.Closing),
			cli.FormatMoney(p.B.Interest),
			cli.FormatMoney(p.B.Payment),
			cli.FormatMoney(p.B.Closing),
		})
	}
	return t
}
