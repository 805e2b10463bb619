package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	path := configPath()

	fmt.Printf("  Config file: %s\n", path)
	if fileExists(path) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	workers := "all CPUs"
	if cfg.General.Workers > 0 {
		workers = strconv.Itoa(cfg.General.Workers)
	}
	section("General", [][2]string{
		{"Log level", cfg.General.LogLevel},
		{"Workers", workers},
		{"Max months", cli.FormatNumber(int64(cfg.General.MaxMonths))},
		{"Top", strconv.Itoa(cfg.General.Top)},
		{"History", onOff(!cfg.General.NoHistory)},
	})

	for _, l := range []struct {
		title string
		loan  config.LoanConfig
	}{{"Loan A", cfg.LoanA}, {"Loan B", cfg.LoanB}} {
		section(l.title, [][2]string{
			{"Name", l.loan.Name},
			{"Principal", orUnset(l.loan.Principal, cli.FormatMoney(l.loan.Principal))},
			{"Annual rate", fmt.Sprintf("%g%%", l.loan.AnnualRatePct)},
		})
	}

	lower, upper, step := cfg.Sweep.Bounds(cfg.Budget.Total)
	section("Budget", [][2]string{
		{"Monthly total", orUnset(cfg.Budget.Total, cli.FormatMoney(cfg.Budget.Total))},
		{"Sweep", fmt.Sprintf("%s to %s, step %s", cli.FormatMoney(lower), cli.FormatMoney(upper), cli.FormatMoney(step))},
	})

	redis := config.GetRedisAddr(cfg)
	if redis == "" {
		redis = "not configured (sqlite cache)"
	}
	section("Server", [][2]string{
		{"Listen", cfg.Server.Addr},
		{"Redis", redis},
		{"Cache TTL", fmt.Sprintf("%ds", cfg.Server.CacheTTLSec)},
	})

	section("Appearance", [][2]string{{"Theme", cfg.Appearance.Theme}})

	if err := cfg.Validate(); err != nil {
		fmt.Println("  " + cli.RenderWarn("Incomplete: "+err.Error()))
		fmt.Println()
	}
	fmt.Println("  Run `payoff setup` to reconfigure.")
	return nil
}

func section(title string, pairs [][2]string) {
	fmt.Printf("  [%s]\n", title)
	fmt.Print(cli.RenderKV(pairs))
	fmt.Println()
}

func orUnset(v float64, s string) string {
	if v == 0 {
		return "not set"
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
