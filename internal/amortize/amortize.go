// Package amortize simulates month-by-month repayment of one loan, or of two
// loans sharing a fixed combined budget.
package amortize

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultMaxMonths bounds every simulation loop.
	DefaultMaxMonths = 10_000

	// BalanceTolerance is the residue below which a joint-simulated loan
	// counts as repaid.
	BalanceTolerance = 1e-2
)

var (
	// ErrInfeasiblePayment means the payment does not exceed the interest
	// charged on the initial balance.
	ErrInfeasiblePayment = errors.New("payment does not exceed initial interest charge")

	// ErrNonTerminating means a simulation hit the max-months guard. It is
	// a member of the ErrInfeasiblePayment family.
	ErrNonTerminating = fmt.Errorf("%w: repayment did not terminate", ErrInfeasiblePayment)

	// ErrInvalidInput covers negative, zero or non-finite arguments.
	ErrInvalidInput = errors.New("invalid input")
)

type options struct {
	maxMonths int
	observe   func(Step)
}

// Option tunes a simulation run.
type Option func(*options)

// WithMaxMonths overrides DefaultMaxMonths. Values < 1 are ignored.
func WithMaxMonths(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.maxMonths = n
		}
	}
}

// Step is what an observer sees after each simulated month.
type Step struct {
	Month int
	// Opening, Interest, Payment and Closing are indexed by loan position.
	Opening  [2]float64
	Interest [2]float64
	Payment  [2]float64
	Closing  [2]float64

	// Allocated is the budget share before capping at the balance.
	Allocated [2]float64
}

// WithObserver registers fn to receive every simulated month. It does not
// change the simulation result.
func WithObserver(fn func(Step)) Option {
	return func(o *options) {
		o.observe = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{maxMonths: DefaultMaxMonths}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
