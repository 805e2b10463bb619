package amortize

import (
	"fmt"
	"math"

	"github.com/theirongolddev/payoff/internal/model"
)

// SimulateJoint amortizes loans a and b concurrently. Each month both
// loans accrue interest, then receive their plan share; once one loan is
// repaid the other receives the whole budget.
//
// Feasibility is not checked here. Callers filter plans first; a plan that
// never repays fails with ErrNonTerminating once the max-months guard trips.
func SimulateJoint(a, b model.Loan, plan model.Plan, budget float64, opts ...Option) (model.Result, error) {
	if !finite(a.Principal, a.MonthlyRate, b.Principal, b.MonthlyRate, plan.PaymentA, plan.PaymentB, budget) {
		return model.Result{}, fmt.Errorf("%w: non-finite argument", ErrInvalidInput)
	}
	if a.Principal < 0 || b.Principal < 0 {
		return model.Result{}, fmt.Errorf("%w: principals must not be negative", ErrInvalidInput)
	}
	if a.MonthlyRate < 0 || b.MonthlyRate < 0 {
		return model.Result{}, fmt.Errorf("%w: rates must not be negative", ErrInvalidInput)
	}
	o := buildOptions(opts)

	var res model.Result
	balA, balB := a.Principal, b.Principal
	for balA > BalanceTolerance || balB > BalanceTolerance {
		if res.Months >= o.maxMonths {
			return res, fmt.Errorf("%w after %d months (balances %.2f / %.2f)",
				ErrNonTerminating, res.Months, balA, balB)
		}
		openA, openB := balA, balB

		var intA, intB float64
		if balA > 0 {
			intA = balA * a.MonthlyRate
			balA += intA
		}
		if balB > 0 {
			intB = balB * b.MonthlyRate
			balB += intB
		}
		res.TotalInterest += intA + intB

		payA, payB := allocate(balA, balB, plan, budget)
		closeA := math.Max(0, balA-payA)
		closeB := math.Max(0, balB-payB)
		res.Months++

		if o.observe != nil {
			o.observe(Step{
				Month:    res.Months,
				Opening:  [2]float64{openA, openB},
				Interest: [2]float64{intA, intB},
				Payment:  [2]float64{balA - closeA, balB - closeB},
				Closing:  [2]float64{closeA, closeB},

				Allocated: [2]float64{payA, payB},
			})
		}
		balA, balB = closeA, closeB
	}
	return res, nil
}

// allocate applies the reallocation rule to post-interest balances.
func allocate(balA, balB float64, plan model.Plan, budget float64) (float64, float64) {
	switch {
	case balA <= 0 && balB > 0:
		return 0, budget
	case balB <= 0 && balA > 0:
		return budget, 0
	default:
		return plan.PaymentA, plan.PaymentB
	}
}

// JointSchedule runs SimulateJoint and records every period. The recorded
// payment is the amount actually applied, capped at the loan's balance.
func JointSchedule(a, b model.Loan, plan model.Plan, budget float64, opts ...Option) ([]model.Period, model.Result, error) {
	var periods []model.Period
	record := WithObserver(func(s Step) {
		periods = append(periods, model.Period{
			Month: s.Month,
			A:     loanPeriod(s, 0),
			B:     loanPeriod(s, 1),
		})
	})
	res, err := SimulateJoint(a, b, plan, budget, withOption(opts, record)...)
	if err != nil {
		return nil, res, err
	}
	return periods, res, nil
}

func withOption(opts []Option, extra Option) []Option {
	out := make([]Option, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, extra)
}
