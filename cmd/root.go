// Package cmd implements the payoff CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/payoff/internal/amortize"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/logging"
	"github.com/theirongolddev/payoff/internal/search"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagWorkers   int
	flagMaxMonths int
	flagNoHistory bool
	flagQuiet     bool

	flagPrincipalA float64
	flagRateA      float64
	flagPrincipalB float64
	flagRateB      float64
	flagBudget     float64
	flagLower      float64
	flagUpper      float64
	flagStep       float64
	flagTop        int
)

// appCfg is the loaded configuration with flag overrides applied.
var appCfg config.Config

var rootCmd = &cobra.Command{
	Use:   "payoff",
	Short: "Split a monthly budget between two loans",
	Long: "Find the split of a fixed monthly budget between two loans that repays both soonest,\n" +
		"breaking ties on total interest.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runSplit,
}

// Execute is the main entry point called from main.go.
// Interrupts cancel the running command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "Config file (default "+config.Path()+")")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.IntVarP(&flagWorkers, "workers", "w", 0, "Parallel simulations (0 = all CPUs)")
	pf.IntVar(&flagMaxMonths, "max-months", 0, "Abort a simulation after this many months")
	pf.BoolVar(&flagNoHistory, "no-history", false, "Do not record this run in the history database")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")

	pf.Float64Var(&flagPrincipalA, "principal-a", 0, "Loan A principal")
	pf.Float64Var(&flagRateA, "rate-a", 0, "Loan A annual rate in percent")
	pf.Float64Var(&flagPrincipalB, "principal-b", 0, "Loan B principal")
	pf.Float64Var(&flagRateB, "rate-b", 0, "Loan B annual rate in percent")
	pf.Float64VarP(&flagBudget, "budget", "b", 0, "Combined monthly budget")
	pf.Float64Var(&flagLower, "lower", 0, "First payment A candidate")
	pf.Float64Var(&flagUpper, "upper", 0, "Exclusive upper bound for payment A (0 = budget)")
	pf.Float64Var(&flagStep, "step", 0, "Step between payment A candidates")
	pf.IntVarP(&flagTop, "top", "n", 0, "Rows in the ranking table")
}

// loadConfig reads the config file, applies any flags the user set and
// configures logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	path := configPath()
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	setInt := func(name string, dst *int, v int) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setFloat := func(name string, dst *float64, v float64) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setInt("workers", &cfg.General.Workers, flagWorkers)
	setInt("max-months", &cfg.General.MaxMonths, flagMaxMonths)
	setInt("top", &cfg.General.Top, flagTop)
	setFloat("principal-a", &cfg.LoanA.Principal, flagPrincipalA)
	setFloat("rate-a", &cfg.LoanA.AnnualRatePct, flagRateA)
	setFloat("principal-b", &cfg.LoanB.Principal, flagPrincipalB)
	setFloat("rate-b", &cfg.LoanB.AnnualRatePct, flagRateB)
	setFloat("budget", &cfg.Budget.Total, flagBudget)
	setFloat("lower", &cfg.Sweep.Lower, flagLower)
	setFloat("upper", &cfg.Sweep.Upper, flagUpper)
	setFloat("step", &cfg.Sweep.Step, flagStep)
	if flagNoHistory {
		cfg.General.NoHistory = true
	}

	if flags.Changed("log-level") {
		level, ok := logging.ParseLevel(flagLogLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", flagLogLevel)
		}
		logging.SetupWithLevel(level)
	} else {
		logging.Setup(cfg.General.LogLevel)
	}

	appCfg = cfg
	slog.Debug("config loaded", "path", path, "exists", fileExists(path))
	return nil
}

// searchParams turns a validated config into search parameters.
func searchParams(cfg config.Config) (search.Params, error) {
	if err := cfg.Validate(); err != nil {
		return search.Params{}, fmt.Errorf("%w\nrun `payoff setup` or pass --principal-a/--budget flags", err)
	}
	lower, upper, step := cfg.Sweep.Bounds(cfg.Budget.Total)
	candidates, err := search.Sweep(lower, upper, step)
	if err != nil {
		return search.Params{}, err
	}
	return search.Params{
		A:          cfg.LoanA.Loan(),
		B:          cfg.LoanB.Loan(),
		Budget:     cfg.Budget.Total,
		Candidates: candidates,
		Workers:    cfg.General.Workers,
		Options:    simOptions(cfg),
	}, nil
}

func simOptions(cfg config.Config) []amortize.Option {
	if cfg.General.MaxMonths > 0 {
		return []amortize.Option{amortize.WithMaxMonths(cfg.General.MaxMonths)}
	}
	return nil
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.Path()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
