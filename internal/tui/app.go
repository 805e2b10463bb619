// Package tui provides the interactive Bubble Tea explorer for payoff.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/payoff/internal/amortize"
	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/search"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"
)

// ProgressMsg reports how many candidates the search has evaluated.
type ProgressMsg struct {
	Done  int
	Total int
}

// SearchDoneMsg is sent when the split search finishes.
type SearchDoneMsg struct {
	Report  search.Report
	Elapsed time.Duration
	Err     error
}

// ParamsFunc turns a configuration into search parameters.
type ParamsFunc func(config.Config) (search.Params, error)

const (
	tabBest = iota
	tabCandidates
	tabSchedule
)

const (
	minTerminalWidth = 72
	maxContentWidth  = 140
	minContentHeight = 5
)

// App is the root Bubble Tea model.
type App struct {
	cfg    config.Config
	build  ParamsFunc
	params search.Params

	// Search results
	report  search.Report
	loaded  bool
	err     error
	elapsed time.Duration

	// Schedule of the best split and of the candidate picked on the
	// Candidates tab.
	bestSchedule []model.Period
	selected     int
	schedule     []model.Period
	schedResult  model.Result
	schedErr     error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	candTable  table.Model
	schedTable table.Model

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	setupErr  error

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
	run         *searchRun
}

// searchRun owns the context of the search in flight. It is shared by
// every copy of App so a quit from any Update cancels the same search.
type searchRun struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// restart cancels the previous search, if any, and returns a fresh context.
func (r *searchRun) restart() context.Context {
	r.stop()
	r.ctx, r.cancel = context.WithCancel(context.Background())
	return r.ctx
}

func (r *searchRun) stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

// NewApp creates the explorer. When needSetup is true the setup form runs
// first and its values are saved before the search starts.
func NewApp(cfg config.Config, build ParamsFunc, needSetup bool) App {
	theme.SetActive(cfg.Appearance.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		cfg:        cfg,
		build:      build,
		selected:   -1,
		spinner:    sp,
		loadSub:    make(chan tea.Msg, 1),
		run:        &searchRun{},
		candTable:  newTable(candidateColumns(), nil),
		schedTable: newTable(scheduleColumns(), nil),
	}
	if needSetup {
		a.setupVals = SetupValuesFrom(cfg)
		a.setupForm = NewSetupForm(&a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.setupForm != nil {
		return tea.Batch(tea.EnableMouseCellMotion, a.setupForm.Init())
	}
	return tea.Batch(tea.EnableMouseCellMotion, a.spinner.Tick, a.startSearch())
}

// startSearch builds parameters from the current config and runs the search
// on a goroutine. Errors building parameters are delivered as SearchDoneMsg.
func (a App) startSearch() tea.Cmd {
	ctx := a.run.restart()
	p, err := a.build(a.cfg)
	if err != nil {
		return func() tea.Msg { return SearchDoneMsg{Err: err} }
	}
	return runSearchCmd(ctx, p, a.loadSub)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeTables()
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.run.stop()
			return a, tea.Quit
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		return a.updateKey(msg)

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := components.TabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Done
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case SearchDoneMsg:
		a.applyReport(msg)
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		a.run.stop()
		return a, tea.Quit
	case "?":
		a.showHelp = true
		return a, nil
	}

	if !a.loaded {
		return a, nil
	}

	switch key {
	case "r":
		return a.rerun()
	case "left", "shift+tab":
		a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "enter":
		if a.activeTab == tabCandidates {
			a.selectCandidate(a.candTable.Cursor())
			a.activeTab = tabSchedule
			return a, nil
		}
	}

	if len(key) == 1 {
		if tab := components.TabIdxByKey(rune(key[0])); tab >= 0 {
			a.activeTab = tab
			return a, nil
		}
	}

	var cmd tea.Cmd
	switch a.activeTab {
	case tabCandidates:
		a.candTable, cmd = a.candTable.Update(msg)
	case tabSchedule:
		a.schedTable, cmd = a.schedTable.Update(msg)
	}
	return a, cmd
}

func (a App) rerun() (tea.Model, tea.Cmd) {
	a.loaded = false
	a.err = nil
	a.progress, a.progressMax = 0, 0
	return a, tea.Batch(a.spinner.Tick, a.startSearch())
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg := a.cfg
		if err := a.setupVals.Apply(&cfg); err != nil {
			a.setupErr = err
		} else {
			a.setupErr = config.Save(cfg)
			a.cfg = cfg
			theme.SetActive(cfg.Appearance.Theme)
		}
		a.setupForm = nil
		return a, tea.Batch(a.spinner.Tick, a.startSearch())

	case huh.StateAborted:
		a.setupForm = nil
		return a, tea.Batch(a.spinner.Tick, a.startSearch())
	}

	return a, cmd
}

func (a *App) applyReport(msg SearchDoneMsg) {
	a.loaded = true
	a.err = msg.Err
	a.elapsed = msg.Elapsed
	a.report = msg.Report
	a.bestSchedule = nil
	a.selected = -1
	a.schedule = nil
	a.schedErr = nil

	if msg.Err != nil {
		a.candTable.SetRows(nil)
		a.schedTable.SetRows(nil)
		return
	}

	p, err := a.build(a.cfg)
	if err == nil {
		a.params = p
	}

	a.candTable.SetRows(candidateRows(a.report.Candidates))
	a.candTable.SetCursor(0)

	if top := a.report.Top(1); len(top) > 0 {
		a.selectCandidate(top[0].Index)
		a.bestSchedule = a.schedule
		a.candTable.SetCursor(a.selected)
	}
}

// selectCandidate computes the joint schedule of candidate idx.
func (a *App) selectCandidate(idx int) {
	if idx < 0 || idx >= len(a.report.Candidates) {
		return
	}
	c := a.report.Candidates[idx]
	a.selected = idx
	a.schedule, a.schedResult, a.schedErr = amortize.JointSchedule(
		a.params.A, a.params.B, c.Plan, a.params.Budget, a.params.Options...)
	a.schedTable.SetRows(scheduleRows(a.schedule))
	a.schedTable.SetCursor(0)
}

func (a *App) resizeTables() {
	h := a.height - 8
	if h < minContentHeight {
		h = minContentHeight
	}
	a.candTable.SetHeight(h)
	a.schedTable.SetHeight(h - 2)
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  payoff needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	t := theme.Active

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logo.Render("◈ payoff"))
	b.WriteString(muted.Render(" · two-loan budget split"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	if a.progressMax > 0 {
		b.WriteString(muted.Render(fmt.Sprintf(" Simulating splits %s / %s\n\n",
			cli.FormatNumber(int64(a.progress)), cli.FormatNumber(int64(a.progressMax)))))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), 40))
	} else {
		b.WriteString(muted.Render(" Preparing candidates..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(title.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range []struct{ key, desc string }{
		{"b c s", "Jump to tab"},
		{"← → tab", "Previous / next tab"},
		{"j k ↑ ↓", "Move through tables"},
		{"Enter", "Show schedule of the selected split"},
		{"r", "Rerun the search"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	} {
		fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", bind.key)), desc.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(desc.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, a.width)
	statusBar := components.RenderStatusBar(a.width, a.statusInfo())

	contentH := a.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabBest:
		content = a.renderBestTab(cw)
	case tabCandidates:
		content = a.renderCandidatesTab(cw)
	case tabSchedule:
		content = a.renderScheduleTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.Place(a.width, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (a App) statusInfo() string {
	if a.err != nil {
		return "search failed"
	}
	return fmt.Sprintf("%s candidates · %s", cli.FormatNumber(int64(len(a.report.Candidates))),
		a.elapsed.Round(time.Millisecond))
}

// runSearchCmd runs the search on a goroutine. It streams ProgressMsg
// updates and a final SearchDoneMsg through sub until ctx is canceled.
func runSearchCmd(ctx context.Context, p search.Params, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking so workers are never stalled by the UI; the next
			// update catches up.
			p.Progress = func(done, total int) {
				select {
				case sub <- ProgressMsg{Done: done, Total: total}:
				default:
				}
			}

			rep, err := search.Run(ctx, p)
			done := SearchDoneMsg{Report: rep, Elapsed: time.Since(start), Err: err}
			select {
			case sub <- done:
			default:
				// Nobody reads sub after quit.
				select {
				case sub <- done:
				case <-ctx.Done():
				}
			}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the search goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	n := strings.Count(s, "\n") + 1
	if n >= h {
		return s
	}
	return s + strings.Repeat("\n", h-n)
}
