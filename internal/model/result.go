package model

// Result is the output of one simulator run.
type Result struct {
	Months        int     `json:"months" yaml:"months" toml:"months"`
	TotalInterest float64 `json:"total_interest" yaml:"total_interest" toml:"total_interest"`
}

// Years returns Months expressed in years.
func (r Result) Years() float64 {
	return float64(r.Months) / 12
}

// Less orders results by months ascending, then total interest ascending.
func (r Result) Less(o Result) bool {
	if r.Months != o.Months {
		return r.Months < o.Months
	}
	return r.TotalInterest < o.TotalInterest
}

// Outcome pairs a simulation result with the plan that produced it.
type Outcome struct {
	Plan   Plan   `json:"plan" yaml:"plan" toml:"plan"`
	Result Result `json:"result" yaml:"result" toml:"result"`
}

// LoanPeriod is one loan's movement within a single month.
type LoanPeriod struct {
	Opening  float64 `json:"opening" yaml:"opening" toml:"opening"`
	Interest float64 `json:"interest" yaml:"interest" toml:"interest"`
	Payment  float64 `json:"payment" yaml:"payment" toml:"payment"`
	Closing  float64 `json:"closing" yaml:"closing" toml:"closing"`
}

// Period is one row of a repayment schedule. B is zero-valued for
// single-loan schedules.
type Period struct {
	Month int        `json:"month" yaml:"month" toml:"month"`
	A     LoanPeriod `json:"a" yaml:"a" toml:"a"`
	B     LoanPeriod `json:"b,omitempty" yaml:"b,omitempty" toml:"b,omitempty"`
}

// Interest returns the interest accrued across both loans in the period.
func (p Period) Interest() float64 {
	return p.A.Interest + p.B.Interest
}

// Balance returns the combined closing balance of the period.
func (p Period) Balance() float64 {
	return p.A.Closing + p.B.Closing
}
