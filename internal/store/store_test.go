package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/payoff/internal/model"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestHistory_SaveAndList(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first, err := h.SaveRun(ctx, Run{
		Kind:      KindSingle,
		CreatedAt: base,
		A:         model.NewLoan(34767.08, 4.3),
		Budget:    220,
		Plan:      model.Plan{PaymentA: 220},
		Result:    model.Result{Months: 234, TotalInterest: 16612.11},
		Feasible:  true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := h.SaveRun(ctx, Run{
		Kind:       KindSplit,
		CreatedAt:  base.Add(time.Hour),
		A:          model.NewLoan(3767.08, 4.3),
		B:          model.NewLoan(12108.60, 7.3),
		Budget:     450,
		Plan:       model.SplitBudget(450, 120),
		Result:     model.Result{Months: 40, TotalInterest: 1856.26},
		Feasible:   true,
		Candidates: 20,
	})
	require.NoError(t, err)

	runs, err := h.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0], "newest first")
	assert.Equal(t, first, runs[1])

	limited, err := h.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	got, err := h.GetRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestHistory_GetRunMissing(t *testing.T) {
	h := openTestHistory(t)

	_, err := h.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestHistory_CorruptCreatedAt(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	run, err := h.SaveRun(ctx, Run{Kind: KindSingle, A: model.NewLoan(100, 0), Feasible: true})
	require.NoError(t, err)
	_, err = h.db.ExecContext(ctx, "UPDATE runs SET created_at = 'yesterday' WHERE run_id = ?", run.ID)
	require.NoError(t, err)

	_, err = h.GetRun(ctx, run.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRunNotFound)
	assert.Contains(t, err.Error(), "created_at")

	_, err = h.ListRuns(ctx, 0)
	assert.Error(t, err)
}

func TestHistory_ClearRuns(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := h.SaveRun(ctx, Run{Kind: KindJoint, A: model.Loan{Principal: 1}})
		require.NoError(t, err)
	}

	n, err := h.ClearRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	runs, err := h.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestHistory_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	h, err := Open(path)
	require.NoError(t, err)
	saved, err := h.SaveRun(ctx, Run{Kind: KindSingle, A: model.Loan{Principal: 5}})
	require.NoError(t, err)
	require.NoError(t, h.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	h, err = Open(path)
	require.NoError(t, err)
	defer h.Close()

	got, err := h.GetRun(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestHistory_CacheHitMissExpiry(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	_, ok, err := h.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, h.Set(ctx, "k", []byte(`{"months":40}`), time.Minute))
	require.NoError(t, h.Set(ctx, "forever", []byte("x"), 0))

	val, ok, err := h.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"months":40}`, string(val))

	now = now.Add(2 * time.Minute)
	_, ok, err = h.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "expired entry is a miss")

	pruned, err := h.PruneCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	_, ok, err = h.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	buf := []byte("a")
	require.NoError(t, c.Set(ctx, "k", buf, time.Second))
	buf[0] = 'b'

	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", string(val), "Set copies the value")

	now = now.Add(time.Second)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestKey(t *testing.T) {
	type req struct {
		Budget float64 `json:"budget"`
	}

	k1, err := Key("split", req{Budget: 450})
	require.NoError(t, err)
	k2, err := Key("split", req{Budget: 450})
	require.NoError(t, err)
	k3, err := Key("split", req{Budget: 451})
	require.NoError(t, err)
	k4, err := Key("joint", req{Budget: 450})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, k1, k4)
	assert.Contains(t, k1, "payoff:split:")

	_, err = Key("bad", func() {})
	assert.Error(t, err)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("PAYOFF_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PAYOFF_TEST_REDIS_ADDR not set")
	}
	c := NewRedisCache(addr)
	defer c.Close()
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	key, err := Key("test", time.Now().UnixNano())
	require.NoError(t, err)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, []byte("v"), time.Minute))
	val, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(val))
}

var (
	_ Cache = (*History)(nil)
	_ Cache = (*RedisCache)(nil)
	_ Cache = (*MemoryCache)(nil)
)
