// Package report exports search reports and repayment schedules as JSON,
// YAML, TOML or PDF documents.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/search"
)

// Format is an export format.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
	PDF  Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{JSON, YAML, TOML, PDF}

// ParseFormat maps a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "pdf":
		return PDF, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, yaml, toml or pdf)", s)
	}
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Document is the exported view of one calculation. LoanB, Plan, Search and
// Schedule are omitted when they do not apply.
type Document struct {
	Title     string    `json:"title" yaml:"title" toml:"title"`
	Kind      string    `json:"kind" yaml:"kind" toml:"kind"`
	Generated time.Time `json:"generated" yaml:"generated" toml:"generated"`

	LoanA  model.Loan   `json:"loan_a" yaml:"loan_a" toml:"loan_a"`
	LoanB  *model.Loan  `json:"loan_b,omitempty" yaml:"loan_b,omitempty" toml:"loan_b,omitempty"`
	Budget float64      `json:"budget" yaml:"budget" toml:"budget"`
	Plan   *model.Plan  `json:"plan,omitempty" yaml:"plan,omitempty" toml:"plan,omitempty"`
	Result model.Result `json:"result" yaml:"result" toml:"result"`

	Search   *SearchSummary `json:"search,omitempty" yaml:"search,omitempty" toml:"search,omitempty"`
	Schedule []model.Period `json:"schedule,omitempty" yaml:"schedule,omitempty" toml:"schedule,omitempty"`
}

// SearchSummary condenses a search.Report for export.
type SearchSummary struct {
	Feasible bool               `json:"feasible" yaml:"feasible" toml:"feasible"`
	Accepted int                `json:"accepted" yaml:"accepted" toml:"accepted"`
	Rejected int                `json:"rejected" yaml:"rejected" toml:"rejected"`
	Stalled  int                `json:"stalled" yaml:"stalled" toml:"stalled"`
	Top      []search.Candidate `json:"top,omitempty" yaml:"top,omitempty" toml:"top,omitempty"`
}

// FromSearch builds a document for a split search. When the search found a
// winner, schedule should hold the winner's joint schedule; it may be nil.
func FromSearch(a, b model.Loan, budget float64, rep search.Report, top int, schedule []model.Period) Document {
	doc := Document{
		Title:     "Loan payoff: best budget split",
		Kind:      "split",
		Generated: time.Now(),
		LoanA:     a,
		LoanB:     &b,
		Budget:    budget,
		Search: &SearchSummary{
			Feasible: rep.Best != nil,
			Accepted: rep.Accepted,
			Rejected: rep.Rejected,
			Stalled:  rep.Stalled,
			Top:      rep.Top(top),
		},
		Schedule: schedule,
	}
	if rep.Best != nil {
		plan := rep.Best.Plan
		doc.Plan = &plan
		doc.Result = rep.Best.Result
	}
	return doc
}

// FromSingle builds a document for a single-loan simulation.
func FromSingle(a model.Loan, payment float64, res model.Result, schedule []model.Period) Document {
	return Document{
		Title:     "Loan payoff: single loan",
		Kind:      "single",
		Generated: time.Now(),
		LoanA:     a,
		Budget:    payment,
		Plan:      &model.Plan{PaymentA: payment},
		Result:    res,
		Schedule:  schedule,
	}
}

// FromJoint builds a document for a joint simulation of an explicit plan.
func FromJoint(a, b model.Loan, plan model.Plan, budget float64, res model.Result, schedule []model.Period) Document {
	return Document{
		Title:     "Loan payoff: joint plan",
		Kind:      "joint",
		Generated: time.Now(),
		LoanA:     a,
		LoanB:     &b,
		Budget:    budget,
		Plan:      &plan,
		Result:    res,
		Schedule:  schedule,
	}
}

// Write encodes doc to w in the given format.
func Write(w io.Writer, f Format, doc Document) error {
	var err error
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err == nil {
			err = enc.Close()
		}
	case TOML:
		err = toml.NewEncoder(w).Encode(doc)
	case PDF:
		err = writePDF(w, doc)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return fmt.Errorf("writing %s report: %w", f, err)
	}
	return nil
}
