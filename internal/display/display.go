// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] shows the household settings as a form adjusted with the arrow
// keys, the cooking time recomputed on every change, and a status bar for
// the egg timer. Notifications are printed above the rendered area via
// Program.Println / Printf, so concurrent writes never garble the display.
package display

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/engine"
	"github.com/hammamikhairi/ottoegg/internal/i18n"
	"github.com/hammamikhairi/ottoegg/internal/logger"
	"github.com/hammamikhairi/ottoegg/internal/units"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	timerRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	timerDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)

	timerPausedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#71717a")).
				Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// BannerStyle is muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#52525b")).
			Padding(0, 1)

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fdba74"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))
)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [New] then [UI.Run] (blocking). Other goroutines may call
// [UI.Println] and [UI.Printf] at any time.
type UI struct {
	program *tea.Program
	engine  *engine.Engine
	timer   domain.TimerController
	tr      i18n.Translator
	log     *logger.Logger
	done    atomic.Bool
}

// New creates the display. Call Run to start.
func New(eng *engine.Engine, timer domain.TimerController, tr i18n.Translator, log *logger.Logger) *UI {
	return &UI{engine: eng, timer: timer, tr: tr, log: log}
}

// Println prints a line above the form. Thread-safe. Falls back to
// fmt.Println before the program starts.
func (u *UI) Println(a ...any) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the form on its own line. Thread-safe.
func (u *UI) Printf(format string, a ...any) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// PrintUrgent prints an alert line in red.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// Run loads the settings and starts the event loop. Blocks until the user
// quits or ctx is cancelled.
func (u *UI) Run(ctx context.Context) error {
	s, err := u.engine.Settings(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	m := newModel(ctx, u.engine, u.timer, u.tr, u.log, *s)
	u.program = tea.NewProgram(m, tea.WithContext(ctx))
	_, err = u.program.Run()
	u.done.Store(true)
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

const (
	tickInterval = 250 * time.Millisecond
	saveDelay    = 400 * time.Millisecond
)

type model struct {
	ctx    context.Context
	engine *engine.Engine
	timer  domain.TimerController
	tr     i18n.Translator
	log    *logger.Logger

	settings   domain.Settings
	prefs      units.Preferences
	est        engine.Estimate
	snap       domain.TimerSnapshot
	cursor     int
	showEnergy bool
	status     string
	rev        int // bumped on every edit; saves are debounced on it
	width      int
	progress   progress.Model
}

// Messages.
type (
	tickMsg  time.Time
	saveMsg  struct{ rev int }
	savedMsg struct{ err error }
	timerMsg struct {
		snap domain.TimerSnapshot
		err  error
	}
)

func newModel(ctx context.Context, eng *engine.Engine, timer domain.TimerController,
	tr i18n.Translator, log *logger.Logger, s domain.Settings) model {
	m := model{
		ctx:      ctx,
		engine:   eng,
		timer:    timer,
		tr:       tr,
		log:      log,
		settings: s,
		prefs:    units.FromSettings(s),
		snap:     timer.Snapshot(),
		progress: progress.New(
			progress.WithSolidFill("#fde68a"),
			progress.WithoutPercentage(),
			progress.WithWidth(24),
		),
	}
	m.recalc()
	return m
}

func (m *model) recalc() {
	m.est = m.engine.Evaluate(engine.Params(&m.settings))
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.snap = m.timer.Snapshot()
		return m, tea.Batch(tickCmd(), tea.SetWindowTitle(m.titleStr()))

	case saveMsg:
		if msg.rev != m.rev {
			return m, nil // superseded by a later edit
		}
		return m, m.saveCmd()

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
			m.log.Error("saving settings: %v", msg.err)
		}
		return m, nil

	case timerMsg:
		m.snap = msg.snap
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Sequence(m.saveCmd(), tea.Quit)
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(fields)) % len(fields)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(fields)
	case "left", "h", "-":
		return m.edit(-1)
	case "right", "l", "+":
		return m.edit(+1)
	case "u":
		m.prefs = m.prefs.Toggle()
		m.prefs.Apply(&m.settings)
		return m.changed()
	case "e":
		m.showEnergy = !m.showEnergy
	case "s", "enter":
		return m, m.startCmd()
	case "p", " ":
		if m.snap.Status == domain.TimerPaused {
			return m, m.timerCmd(m.timer.Resume)
		}
		return m, m.timerCmd(m.timer.Pause)
	case "x":
		return m, func() tea.Msg {
			return timerMsg{snap: m.timer.Cancel(m.ctx)}
		}
	case "d":
		return m, m.timerCmd(m.timer.Dismiss)
	}
	return m, nil
}

func (m model) edit(dir int) (tea.Model, tea.Cmd) {
	fields[m.cursor].adjust(&m.settings, dir)
	return m.changed()
}

// changed recomputes the estimate and schedules a save.
func (m model) changed() (tea.Model, tea.Cmd) {
	m.recalc()
	m.rev++
	rev := m.rev
	return m, tea.Tick(saveDelay, func(time.Time) tea.Msg { return saveMsg{rev: rev} })
}

func (m model) saveCmd() tea.Cmd {
	s := m.settings
	eng, ctx := m.engine, m.ctx
	return func() tea.Msg {
		_, err := eng.Update(ctx, func(st *domain.Settings) error {
			*st = s
			return nil
		})
		return savedMsg{err: err}
	}
}

func (m model) startCmd() tea.Cmd {
	d := m.est.Duration()
	if d <= 0 {
		m.log.Debug("no cooking time to start a timer with")
		return func() tea.Msg {
			return timerMsg{snap: m.snap, err: fmt.Errorf("%s: %s", m.tr.T("cookingTime"), units.NoTime)}
		}
	}
	label := m.tr.T(consistencyKey(m.settings.Consistency))
	return m.timerCmd(func(ctx context.Context) (domain.TimerSnapshot, error) {
		return m.timer.Begin(ctx, d, label)
	})
}

func (m model) timerCmd(fn func(context.Context) (domain.TimerSnapshot, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		snap, err := fn(ctx)
		return timerMsg{snap: snap, err: err}
	}
}

func (m model) titleStr() string {
	switch m.snap.Status {
	case domain.TimerRunning:
		return "OttoEgg — " + fmtRemaining(m.snap.Remaining)
	case domain.TimerPaused:
		return "OttoEgg — " + fmtRemaining(m.snap.Remaining) + " (" + m.tr.T("timerPause") + ")"
	case domain.TimerComplete:
		return "OttoEgg — " + m.tr.T("timerComplete")
	}
	return "OttoEgg"
}
