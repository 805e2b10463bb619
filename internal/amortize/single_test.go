package amortize

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/payoff/internal/model"
)

func TestSimulateSingle_ReferenceScenario(t *testing.T) {
	res, err := SimulateSingle(34767.08, model.MonthlyRate(4.3), 220)
	require.NoError(t, err)

	assert.Equal(t, 234, res.Months)
	assert.InDelta(t, 16612.1, res.TotalInterest, 1.0)
}

func TestSimulateSingle_InfeasiblePayment(t *testing.T) {
	// 1000 * 0.01 = 10, so a payment of exactly 10 never reduces the balance.
	_, err := SimulateSingle(1000, 0.01, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInfeasiblePayment)

	_, err = SimulateSingle(1000, 0.01, 5)
	assert.ErrorIs(t, err, ErrInfeasiblePayment)
}

func TestSimulateSingle_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		payment   float64
	}{
		{"zero principal", 0, 0.01, 100},
		{"negative principal", -500, 0.01, 100},
		{"negative rate", 1000, -0.01, 100},
		{"NaN payment", 1000, 0.01, math.NaN()},
		{"infinite principal", math.Inf(1), 0.01, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SimulateSingle(tt.principal, tt.rate, tt.payment)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.False(t, errors.Is(err, ErrInfeasiblePayment), "invalid input must not look infeasible")
		})
	}
}

func TestSimulateSingle_TerminatesBelowZero(t *testing.T) {
	cases := []struct {
		principal, rate, payment float64
	}{
		{1000, 0.01, 10.5},
		{5000, model.MonthlyRate(7.3), 100},
		{250, 0, 7},
		{12108.60, model.MonthlyRate(7.3), 330},
	}

	for _, c := range cases {
		res, err := SimulateSingle(c.principal, c.rate, c.payment)
		require.NoError(t, err)
		require.GreaterOrEqual(t, res.Months, 1)
		require.GreaterOrEqual(t, res.TotalInterest, 0.0)

		// Recompute independently: after res.Months periods the balance is
		// at or below zero, and one period earlier it was still positive.
		balance := c.principal
		for i := 0; i < res.Months; i++ {
			if i == res.Months-1 {
				assert.Greater(t, balance, 0.0)
			}
			balance += balance*c.rate - c.payment
		}
		assert.LessOrEqual(t, balance, 0.0)
	}
}

func TestSimulateSingle_ExactZeroBalance(t *testing.T) {
	// The balance lands exactly on zero after the second payment; the loop
	// ends there without an extra period.
	res, err := SimulateSingle(100, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Months)
	assert.Zero(t, res.TotalInterest)
}

func TestSimulateSingle_MonotonicInPayment(t *testing.T) {
	principal := 20000.0
	rate := model.MonthlyRate(6)

	prev := math.MaxInt
	for payment := 101.0; payment <= 2000; payment += 37 {
		res, err := SimulateSingle(principal, rate, payment)
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Months, prev, "payment %.0f increased months", payment)
		prev = res.Months
	}
}

func TestSimulateSingle_Idempotent(t *testing.T) {
	first, err := SimulateSingle(34767.08, model.MonthlyRate(4.3), 220)
	require.NoError(t, err)
	second, err := SimulateSingle(34767.08, model.MonthlyRate(4.3), 220)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSimulateSingle_MaxMonthsGuard(t *testing.T) {
	// Feasible but slow: 1158 months at the default rate.
	_, err := SimulateSingle(1000, 0.01, 10.0001, WithMaxMonths(500))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonTerminating)
	assert.ErrorIs(t, err, ErrInfeasiblePayment)

	res, err := SimulateSingle(1000, 0.01, 10.0001)
	require.NoError(t, err)
	assert.Equal(t, 1158, res.Months)
}

func TestSingleSchedule_MatchesResult(t *testing.T) {
	periods, res, err := SingleSchedule(5000, model.MonthlyRate(5), 450)
	require.NoError(t, err)
	require.Len(t, periods, res.Months)

	var interest float64
	for i, p := range periods {
		assert.Equal(t, i+1, p.Month)
		interest += p.A.Interest
		if i > 0 {
			assert.InDelta(t, periods[i-1].A.Closing, p.A.Opening, 1e-9)
		}
	}
	assert.InDelta(t, res.TotalInterest, interest, 1e-9)

	last := periods[len(periods)-1]
	assert.Zero(t, last.A.Closing)
	assert.Less(t, last.A.Payment, 450.0)
	assert.Zero(t, last.B)
}
