// Package store keeps a SQLite-backed history of runs and caches computed
// results locally or in Redis.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/payoff/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Run kinds recorded in the history.
const (
	KindSingle = "single"
	KindJoint  = "joint"
	KindSplit  = "split"
)

// ErrRunNotFound is returned by GetRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored calculation. Single-loan runs leave B and PaymentB zero.
type Run struct {
	ID         string       `json:"id"`
	Kind       string       `json:"kind"`
	CreatedAt  time.Time    `json:"created_at"`
	A          model.Loan   `json:"loan_a"`
	B          model.Loan   `json:"loan_b"`
	Budget     float64      `json:"budget"`
	Plan       model.Plan   `json:"plan"`
	Result     model.Result `json:"result"`
	Feasible   bool         `json:"feasible"`
	Candidates int          `json:"candidates"`
}

// History provides SQLite-backed run history and a local result cache.
type History struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*History, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &History{db: db, now: time.Now}, nil
}

// Close closes the history database.
func (h *History) Close() error {
	return h.db.Close()
}

// SaveRun stores r, assigning an ID and timestamp when they are unset.
// It returns the stored run.
func (h *History) SaveRun(ctx context.Context, r Run) (Run, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = h.now()
	}
	r.CreatedAt = r.CreatedAt.UTC().Truncate(time.Second)

	feasible := 0
	if r.Feasible {
		feasible = 1
	}

	_, err := h.db.ExecContext(ctx, `INSERT OR REPLACE INTO runs
		(run_id, kind, created_at, loan_a_principal, loan_a_rate, loan_b_principal, loan_b_rate,
		 budget, payment_a, payment_b, months, total_interest, feasible, candidates)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Kind, r.CreatedAt.Format(time.RFC3339),
		r.A.Principal, r.A.MonthlyRate, r.B.Principal, r.B.MonthlyRate,
		r.Budget, r.Plan.PaymentA, r.Plan.PaymentB,
		r.Result.Months, r.Result.TotalInterest, feasible, r.Candidates,
	)
	if err != nil {
		return Run{}, fmt.Errorf("saving run: %w", err)
	}
	return r, nil
}

const runColumns = `run_id, kind, created_at, loan_a_principal, loan_a_rate, loan_b_principal, loan_b_rate,
	budget, payment_a, payment_b, months, total_interest, feasible, candidates`

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (h *History) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given ID, or ErrRunNotFound.
func (h *History) GetRun(ctx context.Context, id string) (Run, error) {
	row := h.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE run_id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// ClearRuns deletes every stored run and returns how many were removed.
func (h *History) ClearRuns(ctx context.Context) (int64, error) {
	res, err := h.db.ExecContext(ctx, "DELETE FROM runs")
	if err != nil {
		return 0, fmt.Errorf("clearing runs: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	var created string
	var bPrincipal, bRate, budget, payA, payB, interest sql.NullFloat64
	var months sql.NullInt64
	var feasible int

	err := s.Scan(
		&r.ID, &r.Kind, &created, &r.A.Principal, &r.A.MonthlyRate, &bPrincipal, &bRate,
		&budget, &payA, &payB, &months, &interest, &feasible, &r.Candidates,
	)
	if err != nil {
		return Run{}, err
	}

	if r.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return Run{}, fmt.Errorf("parsing created_at of run %s: %w", r.ID, err)
	}
	r.B = model.Loan{Principal: bPrincipal.Float64, MonthlyRate: bRate.Float64}
	r.Budget = budget.Float64
	r.Plan = model.Plan{PaymentA: payA.Float64, PaymentB: payB.Float64}
	r.Result = model.Result{Months: int(months.Int64), TotalInterest: interest.Float64}
	r.Feasible = feasible != 0
	return r, nil
}
