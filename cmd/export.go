package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/payoff/internal/amortize"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/report"
)

var (
	flagFormat     string
	flagOutput     string
	flagNoSchedule bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the best split and its schedule as json, yaml, toml or pdf",
	Long: "Run the split search and write a report. The format comes from --format,\n" +
		"or from the extension of --output.",
	Example: "  payoff export -o plan.pdf\n  payoff export --format yaml",
	RunE:    runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Output format: json, yaml, toml, pdf")
	exportCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVar(&flagNoSchedule, "no-schedule", false, "Leave out the month-by-month schedule")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := exportFormat(flagFormat, flagOutput)
	if err != nil {
		return err
	}
	if format == report.PDF && flagOutput == "" {
		return fmt.Errorf("pdf export needs --output")
	}

	cfg := appCfg
	rep, _, err := runSearch(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	a, b := cfg.LoanA.Loan(), cfg.LoanB.Loan()
	var schedule []model.Period
	if rep.Best != nil && !flagNoSchedule {
		schedule, _, err = amortize.JointSchedule(a, b, rep.Best.Plan, cfg.Budget.Total, simOptions(cfg)...)
		if err != nil {
			return fmt.Errorf("building schedule: %w", err)
		}
	}
	doc := report.FromSearch(a, b, cfg.Budget.Total, rep, cfg.General.Top, schedule)

	var w io.Writer = os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput) //nolint:gosec // output path is chosen by the local user
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagOutput, err)
		}
		defer f.Close()
		w = f
	}

	if err := report.Write(w, format, doc); err != nil {
		return err
	}
	if flagOutput != "" {
		slog.Info("report written", "path", flagOutput, "format", string(format))
	}
	return nil
}

// exportFormat resolves the format flag, falling back to the output
// file's extension and then to JSON.
func exportFormat(name, output string) (report.Format, error) {
	if name != "" {
		return report.ParseFormat(name)
	}
	if ext := filepath.Ext(output); ext != "" {
		return report.ParseFormat(ext)
	}
	return report.JSON, nil
}
