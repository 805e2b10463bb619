package server

import (
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/search"
)

// LoanRequest describes a loan by principal and annual percentage rate.
type LoanRequest struct {
	Principal     float64 `json:"principal"`
	AnnualRatePct float64 `json:"annual_rate_pct"`
}

func (l LoanRequest) loan() model.Loan {
	return model.NewLoan(l.Principal, l.AnnualRatePct)
}

// SingleRequest is the body of POST /v1/single.
type SingleRequest struct {
	Loan     LoanRequest `json:"loan"`
	Payment  float64     `json:"payment"`
	Schedule bool        `json:"schedule,omitempty"`
}

// JointRequest is the body of POST /v1/joint. A zero budget means the sum
// of the two payments.
type JointRequest struct {
	LoanA    LoanRequest `json:"loan_a"`
	LoanB    LoanRequest `json:"loan_b"`
	PaymentA float64     `json:"payment_a"`
	PaymentB float64     `json:"payment_b"`
	Budget   float64     `json:"budget,omitempty"`
	Schedule bool        `json:"schedule,omitempty"`
}

// SplitRequest is the body of POST /v1/split. A zero upper bound means the
// budget and a zero step means 1, so an empty sweep is written with upper
// equal to lower.
type SplitRequest struct {
	LoanA  LoanRequest `json:"loan_a"`
	LoanB  LoanRequest `json:"loan_b"`
	Budget float64     `json:"budget"`
	Lower  float64     `json:"lower"`
	Upper  float64     `json:"upper,omitempty"`
	Step   float64     `json:"step,omitempty"`
	Top    int         `json:"top,omitempty"`
}

// SimulationResponse answers /v1/single and /v1/joint.
type SimulationResponse struct {
	Result   model.Result   `json:"result"`
	Years    float64        `json:"years"`
	Schedule []model.Period `json:"schedule,omitempty"`
}

// SplitResponse answers /v1/split. Best is null when no split is feasible.
type SplitResponse struct {
	Best     *model.Outcome     `json:"best"`
	Years    float64            `json:"years,omitempty"`
	Accepted int                `json:"accepted"`
	Rejected int                `json:"rejected"`
	Stalled  int                `json:"stalled"`
	Top      []search.Candidate `json:"top"`
}

// ErrorResponse is written for every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
