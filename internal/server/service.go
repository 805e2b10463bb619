// Package server exposes the payoff simulators and split search over an
// HTTP JSON API with Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theirongolddev/payoff/internal/amortize"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/search"
	"github.com/theirongolddev/payoff/internal/store"
)

// DefaultMaxCandidates bounds the sweep size a single request may ask for.
const DefaultMaxCandidates = 100_000

// Recorder stores completed runs. Answers served from the result cache were
// recorded when first computed and are not recorded again.
type Recorder interface {
	SaveRun(ctx context.Context, r store.Run) (store.Run, error)
}

// Config controls the server runtime behavior.
type Config struct {
	Addr          string
	Workers       int
	MaxMonths     int
	Top           int
	MaxCandidates int

	// Cache, if set, stores encoded split and joint responses.
	Cache        store.Cache
	CacheBackend string
	CacheTTL     time.Duration

	// History, if set, records every successful split search.
	History Recorder
}

// Status is served at /v1/status.
type Status struct {
	StartedAt     time.Time `json:"started_at"`
	UptimeSec     int64     `json:"uptime_sec"`
	Requests      int64     `json:"requests"`
	Searches      int64     `json:"searches"`
	CacheBackend  string    `json:"cache_backend,omitempty"`
	CacheHits     int64     `json:"cache_hits"`
	CacheMisses   int64     `json:"cache_misses"`
	CacheEntries  int       `json:"cache_entries,omitempty"`
	Workers       int       `json:"workers"`
	MaxMonths     int       `json:"max_months"`
	MaxCandidates int       `json:"max_candidates"`
	LastError     string    `json:"last_error,omitempty"`
}

// Service provides the HTTP API.
type Service struct {
	cfg     Config
	reg     *prometheus.Registry
	metrics *metrics

	mu          sync.RWMutex
	startedAt   time.Time
	requests    int64
	searches    int64
	cacheHits   int64
	cacheMisses int64
	lastError   string
}

// New returns a new service with the provided config.
func New(cfg Config) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.MaxMonths < 1 {
		cfg.MaxMonths = amortize.DefaultMaxMonths
	}
	if cfg.Top < 1 {
		cfg.Top = 10
	}
	if cfg.MaxCandidates < 1 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	if cfg.Cache != nil && cfg.CacheBackend == "" {
		cfg.CacheBackend = "custom"
	}

	reg := prometheus.NewRegistry()
	return &Service{
		cfg:       cfg,
		reg:       reg,
		metrics:   newMetrics(reg),
		startedAt: time.Now(),
	}
}

// Handler returns the API routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /healthz", s.instrument("healthz", s.handleHealth))
	mux.Handle("GET /v1/status", s.instrument("status", s.handleStatus))
	mux.Handle("POST /v1/single", s.instrument("single", s.handleSingle))
	mux.Handle("POST /v1/joint", s.instrument("joint", s.handleJoint))
	mux.Handle("POST /v1/split", s.instrument("split", s.handleSplit))
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{Registry: s.reg}))
	return mux
}

// Run serves the API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	slog.Info("server listening", "addr", s.cfg.Addr, "cache", s.cfg.CacheBackend)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:     s.startedAt,
		UptimeSec:     int64(time.Since(s.startedAt).Seconds()),
		Requests:      s.requests,
		Searches:      s.searches,
		CacheBackend:  s.cfg.CacheBackend,
		CacheHits:     s.cacheHits,
		CacheMisses:   s.cacheMisses,
		Workers:       s.cfg.Workers,
		MaxMonths:     s.cfg.MaxMonths,
		MaxCandidates: s.cfg.MaxCandidates,
		LastError:     s.lastError,
	}
	// Only in-process caches can report their size.
	if c, ok := s.cfg.Cache.(interface{ Len() int }); ok {
		st.CacheEntries = c.Len()
	}
	return st
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleSingle(w http.ResponseWriter, r *http.Request) {
	var req SingleRequest
	if !s.decode(w, r, &req) {
		return
	}

	loan := req.Loan.loan()
	opts := []amortize.Option{amortize.WithMaxMonths(s.cfg.MaxMonths)}

	var resp SimulationResponse
	var err error
	if req.Schedule {
		resp.Schedule, resp.Result, err = amortize.SingleSchedule(loan.Principal, loan.MonthlyRate, req.Payment, opts...)
	} else {
		resp.Result, err = amortize.SimulateSingle(loan.Principal, loan.MonthlyRate, req.Payment, opts...)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp.Years = resp.Result.Years()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleJoint(w http.ResponseWriter, r *http.Request) {
	var req JointRequest
	if !s.decode(w, r, &req) {
		return
	}
	plan := model.Plan{PaymentA: req.PaymentA, PaymentB: req.PaymentB}
	if req.Budget == 0 {
		req.Budget = plan.Total()
	}

	s.cached(w, r, "joint", req, func() (any, error) {
		a, b := req.LoanA.loan(), req.LoanB.loan()
		opts := []amortize.Option{amortize.WithMaxMonths(s.cfg.MaxMonths)}

		var resp SimulationResponse
		var err error
		if req.Schedule {
			resp.Schedule, resp.Result, err = amortize.JointSchedule(a, b, plan, req.Budget, opts...)
		} else {
			resp.Result, err = amortize.SimulateJoint(a, b, plan, req.Budget, opts...)
		}
		if err != nil {
			return nil, err
		}
		resp.Years = resp.Result.Years()
		return resp, nil
	})
}

func (s *Service) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req SplitRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Upper == 0 {
		req.Upper = req.Budget
	}
	if req.Step == 0 {
		req.Step = 1
	}
	if req.Top < 1 {
		req.Top = s.cfg.Top
	}

	s.cached(w, r, "split", req, func() (any, error) {
		return s.runSplit(r.Context(), req)
	})
}

func (s *Service) runSplit(ctx context.Context, req SplitRequest) (SplitResponse, error) {
	candidates, err := search.Sweep(req.Lower, req.Upper, req.Step)
	if err != nil {
		return SplitResponse{}, err
	}
	if len(candidates) > s.cfg.MaxCandidates {
		return SplitResponse{}, fmt.Errorf("%w: %d candidates exceeds server limit of %d",
			amortize.ErrInvalidInput, len(candidates), s.cfg.MaxCandidates)
	}

	a, b := req.LoanA.loan(), req.LoanB.loan()
	rep, err := search.Run(ctx, search.Params{
		A:          a,
		B:          b,
		Budget:     req.Budget,
		Candidates: candidates,
		Workers:    s.cfg.Workers,
		Options:    []amortize.Option{amortize.WithMaxMonths(s.cfg.MaxMonths)},
	})
	if err != nil {
		return SplitResponse{}, err
	}

	s.mu.Lock()
	s.searches++
	s.mu.Unlock()
	s.metrics.candidates.WithLabelValues("accepted").Add(float64(rep.Accepted))
	s.metrics.candidates.WithLabelValues("rejected").Add(float64(rep.Rejected))
	s.metrics.candidates.WithLabelValues("stalled").Add(float64(rep.Stalled))

	resp := SplitResponse{
		Best:     rep.Best,
		Accepted: rep.Accepted,
		Rejected: rep.Rejected,
		Stalled:  rep.Stalled,
		Top:      rep.Top(req.Top),
	}
	if resp.Top == nil {
		resp.Top = []search.Candidate{}
	}
	if rep.Best != nil {
		resp.Years = rep.Best.Result.Years()
	}

	if s.cfg.History != nil {
		run := store.Run{
			Kind:       store.KindSplit,
			A:          a,
			B:          b,
			Budget:     req.Budget,
			Feasible:   rep.Best != nil,
			Candidates: len(candidates),
		}
		if rep.Best != nil {
			run.Plan, run.Result = rep.Best.Plan, rep.Best.Result
		}
		if _, err := s.cfg.History.SaveRun(ctx, run); err != nil {
			slog.Warn("recording run failed", "error", err)
		}
	}
	return resp, nil
}

// cached answers from the result cache when possible, otherwise computes,
// stores and writes the response.
func (s *Service) cached(w http.ResponseWriter, r *http.Request, kind string, req any, compute func() (any, error)) {
	var key string
	if s.cfg.Cache != nil {
		var err error
		key, err = store.Key(kind, req)
		if err == nil {
			data, ok, err := s.cfg.Cache.Get(r.Context(), key)
			switch {
			case err != nil:
				slog.Warn("cache lookup failed", "error", err)
			case ok:
				s.recordCache(true)
				w.Header().Set("X-Cache", "hit")
				writeRaw(w, http.StatusOK, data)
				return
			}
		}
		s.recordCache(false)
	}

	resp, err := compute()
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if key != "" {
		if err := s.cfg.Cache.Set(r.Context(), key, data, s.cfg.CacheTTL); err != nil {
			slog.Warn("cache store failed", "error", err)
		}
		w.Header().Set("X-Cache", "miss")
	}
	writeRaw(w, http.StatusOK, data)
}

func (s *Service) recordCache(hit bool) {
	s.mu.Lock()
	if hit {
		s.cacheHits++
	} else {
		s.cacheMisses++
	}
	s.mu.Unlock()

	if hit {
		s.metrics.cache.WithLabelValues("hit").Inc()
	} else {
		s.metrics.cache.WithLabelValues("miss").Inc()
	}
}

func (s *Service) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, fmt.Errorf("%w: decoding request: %v", amortize.ErrInvalidInput, err))
		return false
	}
	return true
}

// statusFor maps simulator and search errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, amortize.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, amortize.ErrInfeasiblePayment):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
	}
	writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, code int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n"))
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts, times and logs every request to route.
func (s *Service) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		h(rec, r)

		elapsed := time.Since(start)
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		s.metrics.duration.WithLabelValues(route).Observe(elapsed.Seconds())

		level := slog.LevelDebug
		if rec.code >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "request",
			"route", route,
			"code", rec.code,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
