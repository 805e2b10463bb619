// Package search finds the split of a combined monthly budget between two
// loans that repays both soonest, breaking ties on total interest.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/payoff/internal/amortize"
	"github.com/theirongolddev/payoff/internal/model"
)

// MaxCandidates bounds the size of a sweep.
const MaxCandidates = 1_000_000

// ErrNoFeasibleSplit is returned by Report.Require when no candidate passed
// the feasibility filter.
var ErrNoFeasibleSplit = errors.New("no feasible split found")

// Status classifies how a candidate was handled.
type Status int

const (
	// Accepted candidates were simulated to completion.
	Accepted Status = iota
	// RejectedA means payment A does not exceed loan A's initial interest.
	RejectedA
	// RejectedB means payment B does not exceed loan B's initial interest.
	RejectedB
	// Stalled candidates passed the filter but hit the max-months guard.
	Stalled
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case RejectedA:
		return "rejected: payment A below interest"
	case RejectedB:
		return "rejected: payment B below interest"
	case Stalled:
		return "stalled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText lets Status encode as a readable string in every exporter.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Candidate is the evaluation of one payment-A value.
type Candidate struct {
	Index  int          `json:"index" yaml:"index" toml:"index"`
	Plan   model.Plan   `json:"plan" yaml:"plan" toml:"plan"`
	Status Status       `json:"status" yaml:"status" toml:"status"`
	Result model.Result `json:"result" yaml:"result" toml:"result"`
}

// Params configures a search run.
type Params struct {
	A, B       model.Loan
	Budget     float64
	Candidates []float64

	// Workers bounds parallel simulation. Zero means GOMAXPROCS.
	Workers int
	// Options are passed to every joint simulation.
	Options []amortize.Option
	// Progress, if set, is called after each candidate is evaluated.
	Progress func(done, total int)
}

// Report is the outcome of a search run.
type Report struct {
	// Best is nil when no candidate was feasible.
	Best       *model.Outcome `json:"best" yaml:"best" toml:"best,omitempty"`
	Candidates []Candidate    `json:"candidates" yaml:"candidates" toml:"candidates"`
	Accepted   int            `json:"accepted" yaml:"accepted" toml:"accepted"`
	Rejected   int            `json:"rejected" yaml:"rejected" toml:"rejected"`
	Stalled    int            `json:"stalled" yaml:"stalled" toml:"stalled"`
}

// Require returns the best outcome or ErrNoFeasibleSplit.
func (r Report) Require() (model.Outcome, error) {
	if r.Best == nil {
		return model.Outcome{}, ErrNoFeasibleSplit
	}
	return *r.Best, nil
}

// Top returns up to n accepted candidates in ranking order. Equal results
// keep sweep order.
func (r Report) Top(n int) []Candidate {
	var out []Candidate
	for _, c := range r.Candidates {
		if c.Status == Accepted {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Result.Less(out[j].Result)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Feasible reports which loan, if any, a plan fails to cover. It compares
// each payment against the interest on that loan's starting principal.
func Feasible(a, b model.Loan, plan model.Plan) Status {
	if plan.PaymentA <= a.InitialInterest() {
		return RejectedA
	}
	if plan.PaymentB <= b.InitialInterest() {
		return RejectedB
	}
	return Accepted
}

// Run evaluates every candidate and folds the results in sweep order, so the
// winner is the same for any worker count.
func Run(ctx context.Context, p Params) (Report, error) {
	if err := validate(p); err != nil {
		return Report{}, err
	}

	total := len(p.Candidates)
	results := make([]Candidate, total)
	if total == 0 {
		return Report{Candidates: results}, nil
	}

	numWorkers := p.Workers
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > total {
		numWorkers = total
	}

	work := make(chan int, total)
	for i := range p.Candidates {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	var processed atomic.Int64

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					return
				}
				results[idx] = evaluate(idx, p)
				n := processed.Add(1)
				if p.Progress != nil {
					p.Progress(int(n), total)
				}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Report{}, fmt.Errorf("search canceled after %d of %d candidates: %w", processed.Load(), total, err)
	}

	report := fold(results)
	slog.Debug("search finished",
		"candidates", total,
		"accepted", report.Accepted,
		"rejected", report.Rejected,
		"stalled", report.Stalled,
		"workers", numWorkers,
	)
	return report, nil
}

func evaluate(idx int, p Params) Candidate {
	c := Candidate{
		Index: idx,
		Plan:  model.SplitBudget(p.Budget, p.Candidates[idx]),
	}
	c.Status = Feasible(p.A, p.B, c.Plan)
	if c.Status != Accepted {
		return c
	}

	res, err := amortize.SimulateJoint(p.A, p.B, c.Plan, p.Budget, p.Options...)
	if err != nil {
		slog.Debug("candidate stalled", "payment_a", c.Plan.PaymentA, "error", err)
		c.Status = Stalled
		return c
	}
	c.Result = res
	return c
}

// fold picks the best accepted candidate, replacing it only on strict
// improvement so the earliest of equal candidates wins.
func fold(results []Candidate) Report {
	r := Report{Candidates: results}
	for _, c := range results {
		switch c.Status {
		case Accepted:
			r.Accepted++
		case Stalled:
			r.Stalled++
			continue
		default:
			r.Rejected++
			continue
		}
		if r.Best == nil || c.Result.Less(r.Best.Result) {
			r.Best = &model.Outcome{Plan: c.Plan, Result: c.Result}
		}
	}
	return r
}

func validate(p Params) error {
	for _, l := range []struct {
		name string
		loan model.Loan
	}{{"A", p.A}, {"B", p.B}} {
		if !isFinite(l.loan.Principal) || l.loan.Principal <= 0 {
			return fmt.Errorf("%w: loan %s principal must be positive", amortize.ErrInvalidInput, l.name)
		}
		if !isFinite(l.loan.MonthlyRate) || l.loan.MonthlyRate < 0 {
			return fmt.Errorf("%w: loan %s rate must not be negative", amortize.ErrInvalidInput, l.name)
		}
	}
	if !isFinite(p.Budget) || p.Budget <= 0 {
		return fmt.Errorf("%w: budget must be positive", amortize.ErrInvalidInput)
	}
	if len(p.Candidates) > MaxCandidates {
		return fmt.Errorf("%w: %d candidates exceeds limit of %d", amortize.ErrInvalidInput, len(p.Candidates), MaxCandidates)
	}
	for i, v := range p.Candidates {
		if !isFinite(v) {
			return fmt.Errorf("%w: candidate %d is not finite", amortize.ErrInvalidInput, i)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
