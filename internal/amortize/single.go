package amortize

import (
	"fmt"

	"github.com/theirongolddev/payoff/internal/model"
)

// SimulateSingle amortizes one loan under a constant monthly payment and
// returns the number of periods and the cumulative interest.
//
// The payment must exceed principal*rate. The check uses the starting
// principal only; the max-months guard catches anything it lets through.
func SimulateSingle(principal, rate, payment float64, opts ...Option) (model.Result, error) {
	if err := validateSingle(principal, rate, payment); err != nil {
		return model.Result{}, err
	}
	o := buildOptions(opts)

	var res model.Result
	balance := principal
	for balance > 0 {
		if res.Months >= o.maxMonths {
			return res, fmt.Errorf("%w after %d months (balance %.2f)", ErrNonTerminating, res.Months, balance)
		}

		opening := balance
		interest := balance * rate
		balance = balance + interest - payment
		res.TotalInterest += interest
		res.Months++

		if o.observe != nil {
			paid := payment
			closing := balance
			if closing < 0 {
				paid += closing
				closing = 0
			}
			o.observe(Step{
				Month:    res.Months,
				Opening:  [2]float64{opening},
				Interest: [2]float64{interest},
				Payment:  [2]float64{paid},
				Closing:  [2]float64{closing},

				Allocated: [2]float64{payment},
			})
		}

		if balance < 0 {
			break
		}
	}
	return res, nil
}

// SingleSchedule runs SimulateSingle and records every period.
func SingleSchedule(principal, rate, payment float64, opts ...Option) ([]model.Period, model.Result, error) {
	var periods []model.Period
	record := WithObserver(func(s Step) {
		periods = append(periods, model.Period{Month: s.Month, A: loanPeriod(s, 0)})
	})
	res, err := SimulateSingle(principal, rate, payment, withOption(opts, record)...)
	if err != nil {
		return nil, res, err
	}
	return periods, res, nil
}

func validateSingle(principal, rate, payment float64) error {
	if !finite(principal, rate, payment) {
		return fmt.Errorf("%w: non-finite argument", ErrInvalidInput)
	}
	if principal <= 0 {
		return fmt.Errorf("%w: principal must be positive, got %.2f", ErrInvalidInput, principal)
	}
	if rate < 0 {
		return fmt.Errorf("%w: rate must not be negative, got %g", ErrInvalidInput, rate)
	}
	if charge := principal * rate; payment <= charge {
		return fmt.Errorf("%w: payment %.2f, interest %.2f", ErrInfeasiblePayment, payment, charge)
	}
	return nil
}

func loanPeriod(s Step, i int) model.LoanPeriod {
	return model.LoanPeriod{
		Opening:  s.Opening[i],
		Interest: s.Interest[i],
		Payment:  s.Payment[i],
		Closing:  s.Closing[i],
	}
}
