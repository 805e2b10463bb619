package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/payoff/internal/amortize"
	"github.com/theirongolddev/payoff/internal/server"
	"github.com/theirongolddev/payoff/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	svc := server.New(server.Config{Cache: store.NewMemoryCache(), CacheBackend: "memory"})
	ts := httptest.NewServer(svc.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

var (
	loanA = server.LoanRequest{Principal: 3767.08, AnnualRatePct: 4.3}
	loanB = server.LoanRequest{Principal: 12108.60, AnnualRatePct: 7.3}
)

func TestNew_AddsScheme(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8787", New("127.0.0.1:8787").baseURL)
	assert.Equal(t, "https://example.com", New("https://example.com/").baseURL)
}

func TestHealthAndStatus(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", st.CacheBackend)
}

func TestSplit(t *testing.T) {
	c := newTestClient(t)

	resp, err := c.Split(context.Background(), server.SplitRequest{
		LoanA: loanA, LoanB: loanB, Budget: 450, Lower: 120, Upper: 140,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Best)
	assert.Equal(t, 120.0, resp.Best.Plan.PaymentA)
	assert.Equal(t, 40, resp.Best.Result.Months)
	assert.Equal(t, 20, resp.Accepted)
}

func TestSplit_NoFeasible(t *testing.T) {
	c := newTestClient(t)

	resp, err := c.Split(context.Background(), server.SplitRequest{
		LoanA:  server.LoanRequest{Principal: 10000, AnnualRatePct: 24},
		LoanB:  server.LoanRequest{Principal: 10000, AnnualRatePct: 24},
		Budget: 300, Lower: 50, Upper: 300, Step: 50,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Best)
}

func TestSingle_Schedule(t *testing.T) {
	c := newTestClient(t)

	resp, err := c.Single(context.Background(), server.SingleRequest{
		Loan: server.LoanRequest{Principal: 100}, Payment: 50, Schedule: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Result.Months)
	assert.Len(t, resp.Schedule, 2)
}

func TestJoint(t *testing.T) {
	c := newTestClient(t)

	resp, err := c.Joint(context.Background(), server.JointRequest{
		LoanA: loanA, LoanB: loanB, PaymentA: 120, PaymentB: 330,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, resp.Result.Months)
}

func TestErrorsMapToSentinels(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Single(ctx, server.SingleRequest{Loan: server.LoanRequest{Principal: 1000, AnnualRatePct: 12}, Payment: 10})
	assert.ErrorIs(t, err, amortize.ErrInfeasiblePayment)

	_, err = c.Single(ctx, server.SingleRequest{Loan: server.LoanRequest{Principal: -1}, Payment: 10})
	assert.ErrorIs(t, err, amortize.ErrInvalidInput)
}

func TestUnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer ts.Close()

	err := New(ts.URL).Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "418")
	assert.Contains(t, err.Error(), "teapot")
}
