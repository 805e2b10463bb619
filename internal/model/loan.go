// Package model defines domain types shared by the payoff simulators and search.
package model

// Loan is an immutable simulation input.
type Loan struct {
	Principal   float64 `json:"principal" yaml:"principal" toml:"principal"`
	MonthlyRate float64 `json:"monthly_rate" yaml:"monthly_rate" toml:"monthly_rate"`
}

// MonthlyRate converts an annual percentage rate (e.g. 4.3) to the
// per-period fraction the simulators expect.
func MonthlyRate(annualPct float64) float64 {
	return annualPct / 100 / 12
}

// AnnualPct is the inverse of MonthlyRate.
func AnnualPct(monthly float64) float64 {
	return monthly * 12 * 100
}

// NewLoan builds a Loan from a principal and an annual percentage rate.
func NewLoan(principal, annualPct float64) Loan {
	return Loan{Principal: principal, MonthlyRate: MonthlyRate(annualPct)}
}

// InitialInterest is the interest charged on the principal in the first period.
func (l Loan) InitialInterest() float64 {
	return l.Principal * l.MonthlyRate
}

// Plan is a split of the combined monthly budget between loan A and loan B.
type Plan struct {
	PaymentA float64 `json:"payment_a" yaml:"payment_a" toml:"payment_a"`
	PaymentB float64 `json:"payment_b" yaml:"payment_b" toml:"payment_b"`
}

// Total returns the combined monthly payment of the plan.
func (p Plan) Total() float64 {
	return p.PaymentA + p.PaymentB
}

// SplitBudget builds the plan that pays paymentA to loan A and the rest of
// budget to loan B. PaymentB is negative when paymentA exceeds the budget.
func SplitBudget(budget, paymentA float64) Plan {
	return Plan{PaymentA: paymentA, PaymentB: budget - paymentA}
}
