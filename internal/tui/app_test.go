package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/search"
)

func referenceConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.LoanA = config.LoanConfig{Name: "car", Principal: 3767.08, AnnualRatePct: 4.3}
	cfg.LoanB = config.LoanConfig{Name: "student", Principal: 12108.60, AnnualRatePct: 7.3}
	cfg.Budget.Total = 450
	cfg.Sweep = config.SweepConfig{Lower: 120, Upper: 140, Step: 1}
	return cfg
}

func buildParams(cfg config.Config) (search.Params, error) {
	lower, upper, step := cfg.Sweep.Bounds(cfg.Budget.Total)
	cands, err := search.Sweep(lower, upper, step)
	if err != nil {
		return search.Params{}, err
	}
	return search.Params{
		A:          cfg.LoanA.Loan(),
		B:          cfg.LoanB.Loan(),
		Budget:     cfg.Budget.Total,
		Candidates: cands,
	}, nil
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	app, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T, want App", m)
	}
	return app
}

func loadedApp(t *testing.T) App {
	t.Helper()
	cfg := referenceConfig()
	a := NewApp(cfg, buildParams, false)
	a = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})

	p, err := buildParams(cfg)
	if err != nil {
		t.Fatal(err)
	}
	rep, err := search.Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	return update(t, a, SearchDoneMsg{Report: rep})
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestSearchDoneSelectsBest(t *testing.T) {
	a := loadedApp(t)

	if !a.loaded {
		t.Fatal("app should be loaded")
	}
	if a.selected != 0 {
		t.Fatalf("selected = %d, want 0 (payment A 120)", a.selected)
	}
	if len(a.bestSchedule) != 40 {
		t.Fatalf("best schedule has %d periods, want 40", len(a.bestSchedule))
	}

	view := a.View()
	for _, want := range []string{"Payment A", "120", "330", "Combined balance"} {
		if !strings.Contains(view, want) {
			t.Errorf("best tab view missing %q", want)
		}
	}
}

func TestTabSwitching(t *testing.T) {
	a := loadedApp(t)

	a = update(t, a, keyRune('c'))
	if a.activeTab != tabCandidates {
		t.Fatalf("after 'c' activeTab = %d", a.activeTab)
	}
	a = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
	if a.activeTab != tabSchedule {
		t.Fatalf("after right activeTab = %d", a.activeTab)
	}
	a = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
	if a.activeTab != tabBest {
		t.Fatalf("right should wrap to the first tab, got %d", a.activeTab)
	}
	a = update(t, a, tea.KeyMsg{Type: tea.KeyLeft})
	if a.activeTab != tabSchedule {
		t.Fatalf("left should wrap to the last tab, got %d", a.activeTab)
	}
}

func TestEnterShowsCandidateSchedule(t *testing.T) {
	a := loadedApp(t)

	a = update(t, a, keyRune('c'))
	a = update(t, a, tea.KeyMsg{Type: tea.KeyDown})
	a = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	if a.activeTab != tabSchedule {
		t.Fatalf("enter should open the schedule tab, got %d", a.activeTab)
	}
	if a.selected != 1 {
		t.Fatalf("selected = %d, want 1", a.selected)
	}
	if len(a.schedule) == 0 || a.schedErr != nil {
		t.Fatalf("schedule not computed: %d periods, err %v", len(a.schedule), a.schedErr)
	}
	if !strings.Contains(a.View(), "121") {
		t.Error("schedule title should name payment A 121")
	}
}

func TestMouseClickSelectsTab(t *testing.T) {
	a := loadedApp(t)

	a = update(t, a, tea.MouseMsg{X: 8, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if a.activeTab != tabCandidates {
		t.Fatalf("click on Candidates: activeTab = %d", a.activeTab)
	}

	// Clicks below the tab bar are ignored.
	a = update(t, a, tea.MouseMsg{X: 1, Y: 5, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if a.activeTab != tabCandidates {
		t.Fatalf("click off the bar changed tab to %d", a.activeTab)
	}
}

func TestSearchErrorView(t *testing.T) {
	a := NewApp(referenceConfig(), buildParams, false)
	a = update(t, a, tea.WindowSizeMsg{Width: 100, Height: 30})
	a = update(t, a, SearchDoneMsg{Err: errors.New("budget must be positive")})

	view := a.View()
	if !strings.Contains(view, "Search failed") || !strings.Contains(view, "budget must be positive") {
		t.Fatal("error view should show the search error")
	}
}

func TestNoFeasibleSplitView(t *testing.T) {
	a := NewApp(referenceConfig(), buildParams, false)
	a = update(t, a, tea.WindowSizeMsg{Width: 100, Height: 30})
	a = update(t, a, SearchDoneMsg{Report: search.Report{
		Candidates: []search.Candidate{{Status: search.RejectedA}},
		Rejected:   1,
	}})

	if a.selected != -1 {
		t.Fatalf("selected = %d, want -1", a.selected)
	}
	if !strings.Contains(a.View(), "No feasible split") {
		t.Fatal("view should report the missing split")
	}
}

func TestHelpOverlayAndQuit(t *testing.T) {
	a := loadedApp(t)

	a = update(t, a, keyRune('?'))
	if !a.showHelp || !strings.Contains(a.View(), "Keyboard Shortcuts") {
		t.Fatal("? should open help")
	}
	a = update(t, a, keyRune('x'))
	if a.showHelp {
		t.Fatal("any key should close help")
	}

	_, cmd := a.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

func TestNarrowTerminal(t *testing.T) {
	a := loadedApp(t)
	a = update(t, a, tea.WindowSizeMsg{Width: 50, Height: 30})
	if !strings.Contains(a.View(), "Terminal too narrow") {
		t.Fatal("narrow terminal should show the width warning")
	}
}

func TestProgressUpdatesLoadingView(t *testing.T) {
	a := NewApp(referenceConfig(), buildParams, false)
	a = update(t, a, tea.WindowSizeMsg{Width: 100, Height: 30})
	a = update(t, a, ProgressMsg{Done: 5, Total: 20})

	if a.progress != 5 || a.progressMax != 20 {
		t.Fatalf("progress = %d/%d", a.progress, a.progressMax)
	}
	if !strings.Contains(a.View(), "5 / 20") {
		t.Fatal("loading view should show progress counts")
	}
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := SetupValuesFrom(cfg)
	vals.PrincipalA = "3,767.08"
	vals.RateA = "4.3"
	vals.PrincipalB = "12108.60"
	vals.RateB = "7.3"
	vals.Budget = "450"

	if err := vals.Apply(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.LoanA.Principal != 3767.08 || cfg.LoanB.AnnualRatePct != 7.3 || cfg.Budget.Total != 450 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	back := SetupValuesFrom(cfg)
	if back.RateA != "4.3" || back.Budget == "" {
		t.Fatalf("round trip lost values: %+v", back)
	}
}

func TestSetupValuesApplyRejectsBadInput(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := SetupValuesFrom(cfg)
	vals.PrincipalA = "lots"

	if err := vals.Apply(&cfg); err == nil {
		t.Fatal("non-numeric principal should fail")
	}

	vals = SetupValuesFrom(cfg)
	vals.PrincipalA, vals.PrincipalB, vals.Budget = "100", "200", "0"
	if err := vals.Apply(&cfg); err == nil {
		t.Fatal("zero budget should fail validation")
	}
}

func TestQuitCancelsSearch(t *testing.T) {
	for _, key := range []tea.KeyMsg{keyRune('q'), {Type: tea.KeyCtrlC}} {
		a := NewApp(referenceConfig(), buildParams, false)
		_ = a.startSearch()
		ctx := a.run.ctx
		if ctx == nil {
			t.Fatal("startSearch should create a search context")
		}

		_, cmd := a.Update(key)
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s should quit", key)
		}
		if !errors.Is(ctx.Err(), context.Canceled) {
			t.Fatalf("%s left the search running: %v", key, ctx.Err())
		}
	}
}

func TestRestartCancelsPreviousSearch(t *testing.T) {
	a := NewApp(referenceConfig(), buildParams, false)
	_ = a.startSearch()
	first := a.run.ctx
	_ = a.startSearch()

	if !errors.Is(first.Err(), context.Canceled) {
		t.Fatal("a new search should cancel the previous one")
	}
	if a.run.ctx.Err() != nil {
		t.Fatal("the new search should be live")
	}
}

func TestRunSearchCmdCanceled(t *testing.T) {
	p, err := buildParams(referenceConfig())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := runSearchCmd(ctx, p, make(chan tea.Msg, 1))()
	done, ok := msg.(SearchDoneMsg)
	if !ok {
		t.Fatalf("got %T, want SearchDoneMsg", msg)
	}
	if !errors.Is(done.Err, context.Canceled) {
		t.Fatalf("Err = %v, want context.Canceled", done.Err)
	}
}
