package search

import (
	"fmt"
	"math"

	"github.com/theirongolddev/payoff/internal/amortize"
)

// Sweep returns the candidates lower, lower+step, ... strictly below upper.
// Each value is computed from its index so long sweeps do not drift.
func Sweep(lower, upper, step float64) ([]float64, error) {
	if !isFinite(lower) || !isFinite(upper) || !isFinite(step) {
		return nil, fmt.Errorf("%w: sweep bounds must be finite", amortize.ErrInvalidInput)
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: sweep step must be positive, got %g", amortize.ErrInvalidInput, step)
	}
	if upper < lower {
		return nil, fmt.Errorf("%w: sweep upper bound %g below lower bound %g", amortize.ErrInvalidInput, upper, lower)
	}

	n := math.Ceil((upper - lower) / step)
	if n > MaxCandidates {
		return nil, fmt.Errorf("%w: sweep of %.0f candidates exceeds limit of %d", amortize.ErrInvalidInput, n, MaxCandidates)
	}

	out := make([]float64, 0, int(n))
	for i := 0; i < int(n); i++ {
		v := lower + float64(i)*step
		if v >= upper {
			break
		}
		out = append(out, v)
	}
	return out, nil
}
