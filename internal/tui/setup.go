package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/tui/theme"
)

// SetupValues holds the text fields of the setup form.
type SetupValues struct {
	NameA      string
	PrincipalA string
	RateA      string
	NameB      string
	PrincipalB string
	RateB      string
	Budget     string
	Theme      string
}

// SetupValuesFrom pre-fills the form from cfg.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		NameA:      cfg.LoanA.Name,
		PrincipalA: formatField(cfg.LoanA.Principal),
		RateA:      strconv.FormatFloat(cfg.LoanA.AnnualRatePct, 'f', -1, 64),
		NameB:      cfg.LoanB.Name,
		PrincipalB: formatField(cfg.LoanB.Principal),
		RateB:      strconv.FormatFloat(cfg.LoanB.AnnualRatePct, 'f', -1, 64),
		Budget:     formatField(cfg.Budget.Total),
		Theme:      cfg.Appearance.Theme,
	}
}

// Apply parses the form values into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	fields := []struct {
		name string
		in   string
		dst  *float64
	}{
		{"loan A principal", v.PrincipalA, &cfg.LoanA.Principal},
		{"loan A rate", v.RateA, &cfg.LoanA.AnnualRatePct},
		{"loan B principal", v.PrincipalB, &cfg.LoanB.Principal},
		{"loan B rate", v.RateB, &cfg.LoanB.AnnualRatePct},
		{"budget", v.Budget, &cfg.Budget.Total},
	}
	for _, f := range fields {
		n, err := parseField(f.in)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = n
	}
	if s := strings.TrimSpace(v.NameA); s != "" {
		cfg.LoanA.Name = s
	}
	if s := strings.TrimSpace(v.NameB); s != "" {
		cfg.LoanB.Name = s
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	return cfg.Validate()
}

// NewSetupForm builds the interactive form that edits vals in place.
func NewSetupForm(vals *SetupValues) *huh.Form {
	loanGroup := func(label string, name, principal, rate *string) *huh.Group {
		return huh.NewGroup(
			huh.NewInput().Title(label+" name").Value(name),
			huh.NewInput().Title(label+" principal").
				Description("Outstanding balance").
				Validate(positive).Value(principal),
			huh.NewInput().Title(label+" annual rate (%)").
				Description("e.g. 4.3").
				Validate(nonNegative).Value(rate),
		)
	}

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("payoff setup").
				Description("Two loans share one monthly budget.\nFind the split that repays both soonest."),
		),
		loanGroup("Loan A", &vals.NameA, &vals.PrincipalA, &vals.RateA),
		loanGroup("Loan B", &vals.NameB, &vals.PrincipalB, &vals.RateB),
		huh.NewGroup(
			huh.NewInput().Title("Monthly budget").
				Description("Combined payment across both loans").
				Validate(positive).Value(&vals.Budget),
			huh.NewSelect[string]().Title("Color theme").
				Options(themes...).Value(&vals.Theme),
		),
	).WithShowHelp(true)
}

func positive(s string) error {
	n, err := parseField(s)
	if err != nil {
		return err
	}
	if n <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}

func nonNegative(s string) error {
	n, err := parseField(s)
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func parseField(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, errors.New("required")
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return n, nil
}

// formatField leaves unset amounts blank so the form shows its placeholder.
func formatField(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
