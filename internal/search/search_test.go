package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/payoff/internal/amortize"
	"github.com/theirongolddev/payoff/internal/model"
)

func referenceParams(t *testing.T) Params {
	t.Helper()
	candidates, err := Sweep(120, 140, 1)
	require.NoError(t, err)
	return Params{
		A:          model.NewLoan(3767.08, 4.3),
		B:          model.NewLoan(12108.60, 7.3),
		Budget:     450,
		Candidates: candidates,
	}
}

func TestRun_ReferenceScenario(t *testing.T) {
	report, err := Run(context.Background(), referenceParams(t))
	require.NoError(t, err)
	require.NotNil(t, report.Best)

	assert.Equal(t, 120.0, report.Best.Plan.PaymentA)
	assert.Equal(t, 330.0, report.Best.Plan.PaymentB)
	assert.Equal(t, 40, report.Best.Result.Months)
	assert.InDelta(t, 1856.26, report.Best.Result.TotalInterest, 0.5)

	assert.Equal(t, 20, report.Accepted)
	assert.Zero(t, report.Rejected)
	assert.Len(t, report.Candidates, 20)
}

func TestRun_WorkerCountDoesNotChangeWinner(t *testing.T) {
	p := referenceParams(t)

	p.Workers = 1
	sequential, err := Run(context.Background(), p)
	require.NoError(t, err)

	p.Workers = 8
	parallel, err := Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, sequential.Best, parallel.Best)
	assert.Equal(t, sequential.Candidates, parallel.Candidates)
}

func TestRun_TiesKeepFirstCandidate(t *testing.T) {
	// Zero rates and a budget that A and B share evenly: every split
	// finishes in the same month with zero interest.
	p := Params{
		A:          model.Loan{Principal: 1000},
		B:          model.Loan{Principal: 1000},
		Budget:     200,
		Candidates: []float64{100, 100, 100},
		Workers:    3,
	}

	report, err := Run(context.Background(), p)
	require.NoError(t, err)
	require.NotNil(t, report.Best)

	assert.Equal(t, 10, report.Best.Result.Months)
	for _, c := range report.Candidates {
		assert.Equal(t, report.Best.Result, c.Result)
	}
	assert.Equal(t, 0, report.Top(1)[0].Index)
}

func TestRun_FiltersInfeasibleCandidates(t *testing.T) {
	a := model.Loan{Principal: 1000, MonthlyRate: 0.01} // interest 10
	b := model.Loan{Principal: 2000, MonthlyRate: 0.01} // interest 20

	p := Params{
		A:      a,
		B:      b,
		Budget: 100,
		// 10 fails A exactly at the boundary; 80 leaves B exactly 20;
		// 150 makes B's share negative.
		Candidates: []float64{5, 10, 50, 80, 150},
	}

	report, err := Run(context.Background(), p)
	require.NoError(t, err)

	statuses := make([]Status, len(report.Candidates))
	for i, c := range report.Candidates {
		statuses[i] = c.Status
	}
	assert.Equal(t, []Status{RejectedA, RejectedA, Accepted, RejectedB, RejectedB}, statuses)
	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 4, report.Rejected)

	require.NotNil(t, report.Best)
	assert.Equal(t, 50.0, report.Best.Plan.PaymentA)
}

func TestRun_NoFeasibleSplit(t *testing.T) {
	p := Params{
		A:          model.Loan{Principal: 10000, MonthlyRate: 0.02},
		B:          model.Loan{Principal: 10000, MonthlyRate: 0.02},
		Budget:     300,
		Candidates: []float64{50, 100, 150, 200, 250},
	}

	report, err := Run(context.Background(), p)
	require.NoError(t, err, "an empty result is not an error")
	assert.Nil(t, report.Best)
	assert.Equal(t, 5, report.Rejected)

	_, err = report.Require()
	assert.ErrorIs(t, err, ErrNoFeasibleSplit)
}

func TestRun_StalledCandidatesAreSkipped(t *testing.T) {
	p := referenceParams(t)
	p.Options = []amortize.Option{amortize.WithMaxMonths(10)}

	report, err := Run(context.Background(), p)
	require.NoError(t, err)

	assert.Nil(t, report.Best)
	assert.Equal(t, 20, report.Stalled)
	assert.Zero(t, report.Accepted)
}

func TestRun_EmptyCandidates(t *testing.T) {
	p := referenceParams(t)
	p.Candidates = nil

	report, err := Run(context.Background(), p)
	require.NoError(t, err)
	assert.Nil(t, report.Best)
	assert.Empty(t, report.Candidates)
}

func TestRun_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero principal", func(p *Params) { p.A.Principal = 0 }},
		{"negative rate", func(p *Params) { p.B.MonthlyRate = -0.01 }},
		{"zero budget", func(p *Params) { p.Budget = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := referenceParams(t)
			tt.mutate(&p)
			_, err := Run(context.Background(), p)
			assert.ErrorIs(t, err, amortize.ErrInvalidInput)
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, referenceParams(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_ReportsProgress(t *testing.T) {
	p := referenceParams(t)
	p.Workers = 1

	var calls []int
	p.Progress = func(done, total int) {
		assert.Equal(t, 20, total)
		calls = append(calls, done)
	}

	_, err := Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, calls, 20)
	assert.Equal(t, 20, calls[len(calls)-1])
}

func TestReport_TopOrdersByMonthsThenInterest(t *testing.T) {
	report := Report{Candidates: []Candidate{
		{Index: 0, Status: Accepted, Result: model.Result{Months: 41, TotalInterest: 100}},
		{Index: 1, Status: RejectedB},
		{Index: 2, Status: Accepted, Result: model.Result{Months: 40, TotalInterest: 900}},
		{Index: 3, Status: Accepted, Result: model.Result{Months: 40, TotalInterest: 800}},
	}}

	top := report.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, 3, top[0].Index)
	assert.Equal(t, 2, top[1].Index)

	assert.Len(t, report.Top(0), 3)
}

func TestSweep(t *testing.T) {
	got, err := Sweep(120, 140, 1)
	require.NoError(t, err)
	require.Len(t, got, 20)
	assert.Equal(t, 120.0, got[0])
	assert.Equal(t, 139.0, got[19])

	got, err = Sweep(0, 1, 0.1)
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Less(t, got[len(got)-1], 1.0)

	got, err = Sweep(5, 5, 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Sweep(0, 10, 0)
	assert.ErrorIs(t, err, amortize.ErrInvalidInput)
	_, err = Sweep(10, 0, 1)
	assert.ErrorIs(t, err, amortize.ErrInvalidInput)
	_, err = Sweep(0, 1e9, 1e-3)
	assert.ErrorIs(t, err, amortize.ErrInvalidInput)
}
