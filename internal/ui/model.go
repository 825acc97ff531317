// Package ui is the terminal rendering surface for a sheet panel. It turns
// bubbletea mouse and key messages into document pointer events and panel
// intents, pumps the panel's timers from animation frames, and draws the
// sliding sheet over a background view.
package ui

import (
	"log/slog"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/asheshgoplani/sheetdeck/internal/config"
	"github.com/asheshgoplani/sheetdeck/internal/host"
	"github.com/asheshgoplani/sheetdeck/internal/logging"
	"github.com/asheshgoplani/sheetdeck/internal/sheet"
)

var uiLog = logging.ForComponent(logging.CompUI)

// DefaultCellHeight is how many px-equivalent units one terminal row spans.
const DefaultCellHeight = 20

// Options configure a SheetModel.
type Options struct {
	// CellHeight scales rows to pointer units, so drag thresholds keep
	// their meaning in the terminal.
	CellHeight int
	// Now is the clock shared with the TickScheduler. Defaults to time.Now.
	Now func() time.Time
	// Background is the scrollable text behind the sheet.
	Background []string
	// OnEvent observes every panel notification.
	OnEvent func(*sheet.Event)

	// Err is shown in the status bar until a config reload succeeds.
	Err error

	ConfigChanges <-chan *config.UserConfig
	ConfigErrors  <-chan error
	ThemeChanges  <-chan bool
}

// SheetModel is the bubbletea model hosting one panel.
type SheetModel struct {
	doc   *host.Document
	panel *sheet.Panel
	sched *TickScheduler
	opts  Options
	now   func() time.Time

	cellHeight    int
	width, height int

	background viewport.Model
	body       viewport.Model
	bar        progress.Model
	spin       spinner.Model
	spinning   bool

	sheetLines []string
	layout     sheetLayout
	slide      slide
	drawn      bool
	ticking    bool

	lastEvent string
	err       error
	quitting  bool
}

// NewSheetModel wraps panel, whose document must be driven by sched.
// The panel is attached here, so a panel configured open starts its
// startup timer with the model.
func NewSheetModel(panel *sheet.Panel, sched *TickScheduler, opts Options) *SheetModel {
	if opts.CellHeight <= 0 {
		opts.CellHeight = DefaultCellHeight
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := &SheetModel{
		doc:        panel.Document(),
		panel:      panel,
		sched:      sched,
		opts:       opts,
		now:        now,
		cellHeight: opts.CellHeight,
		width:      80,
		height:     24,
		background: viewport.New(80, 23),
		body:       viewport.New(0, 0),
		spin:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		err:        opts.Err,
	}
	m.refreshStyles()
	m.background.SetContent(joinLines(opts.Background))

	for _, t := range []sheet.EventType{
		sheet.EventOpened, sheet.EventClosing, sheet.EventClosed,
		sheet.EventIconLeft, sheet.EventIconRight,
		sheet.EventCTAPrimary, sheet.EventCTASecondary,
	} {
		panel.On(t, m.observe)
	}
	m.doc.Scroll.OnChange(func(locked bool) {
		uiLog.Debug("scroll_lock_changed", slog.Bool("locked", locked))
	})

	panel.Attach()
	m.sync()
	return m
}

// Panel returns the hosted panel.
func (m *SheetModel) Panel() *sheet.Panel { return m.panel }

// LastEvent returns the most recent notification type.
func (m *SheetModel) LastEvent() string { return m.lastEvent }

func (m *SheetModel) observe(e *sheet.Event) {
	m.lastEvent = string(e.Type)
	if e.Type == sheet.EventIconLeft && e.Panel.IsOpen() {
		// The left icon is "back": it dismisses the sheet
		e.Panel.Close()
	}
	if e.Type == sheet.EventIconRight || e.Type == sheet.EventCTASecondary {
		e.Panel.Close()
	}
	if m.opts.OnEvent != nil {
		m.opts.OnEvent(e)
	}
}

func (m *SheetModel) refreshStyles() {
	m.bar = progress.New(progress.WithSolidFill(string(ColorAccent)), progress.WithoutPercentage())
	m.spin.Style = IconStyle
}

// Init implements tea.Model.
func (m *SheetModel) Init() tea.Cmd {
	return tea.Batch(
		waitForConfig(m.opts.ConfigChanges),
		waitForConfigError(m.opts.ConfigErrors),
		waitForTheme(m.opts.ThemeChanges),
		m.followUp(),
	)
}

// Update implements tea.Model.
func (m *SheetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.background.Width = msg.Width
		m.background.Height = m.stageHeight()

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseMsg:
		m.handleMouse(msg)

	case frameMsg:
		m.ticking = false
		m.sched.Fire()

	case spinner.TickMsg:
		if m.spinnerActive() {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			m.spinning = false
		}

	case configChangedMsg:
		m.applyConfig(msg.cfg)
		cmds = append(cmds, waitForConfig(m.opts.ConfigChanges))

	case configErrorMsg:
		m.err = msg.err
		cmds = append(cmds, waitForConfigError(m.opts.ConfigErrors))

	case themeChangedMsg:
		theme := "light"
		if msg.dark {
			theme = "dark"
		}
		InitTheme(theme)
		m.refreshStyles()
		cmds = append(cmds, waitForTheme(m.opts.ThemeChanges))
	}

	m.sync()
	cmds = append(cmds, m.followUp())
	return m, tea.Batch(cmds...)
}

// followUp keeps frames coming while an animation or timer is pending and
// starts the spinner when the indeterminate indicator is on screen.
func (m *SheetModel) followUp() tea.Cmd {
	var cmds []tea.Cmd
	if !m.ticking && (m.sched.Pending() > 0 || !m.slide.done(m.now())) {
		m.ticking = true
		cmds = append(cmds, frameCmd())
	}
	if !m.spinning && m.spinnerActive() {
		m.spinning = true
		cmds = append(cmds, m.spin.Tick)
	}
	return tea.Batch(cmds...)
}

func (m *SheetModel) spinnerActive() bool {
	pr := m.panel.Progress()
	return m.drawn && pr.Mode() == sheet.ProgressIndeterminate
}

func (m *SheetModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	p := m.panel
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, keys.Close):
		if top, ok := m.doc.Stack.Top(); ok && top == p.ID() {
			p.Close()
		}
	case key.Matches(msg, keys.Open):
		p.Open()
	case key.Matches(msg, keys.Toggle):
		p.Toggle()
	case key.Matches(msg, keys.Confirm):
		p.Activate(sheet.SlotCTAPrimary)
	case key.Matches(msg, keys.More):
		p.SetProgress(stepProgress(p.Progress().Value(), 0.1))
	case key.Matches(msg, keys.Less):
		p.SetProgress(stepProgress(p.Progress().Value(), -0.1))
	case key.Matches(msg, keys.Mode):
		p.SetProgressMode(nextMode(p.Progress().Mode()))
	case key.Matches(msg, keys.Size):
		if p.Size() == sheet.SizeFull {
			p.SetSize(sheet.SizeContent)
		} else {
			p.SetSize(sheet.SizeFull)
		}
	case key.Matches(msg, keys.DragClose):
		p.SetDragClose(!p.DragClose())
	case key.Matches(msg, keys.BlockBg):
		p.SetBlockBg(!p.BlockBg())
	case key.Matches(msg, keys.ScrollUp):
		m.scroll(-1, false)
	case key.Matches(msg, keys.ScrollDown):
		m.scroll(1, false)
	}
	return nil
}

func (m *SheetModel) handleMouse(msg tea.MouseMsg) {
	ev := host.PointerEvent{Source: host.SourceMouse, X: msg.X, Y: msg.Y * m.cellHeight}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scroll(-1, m.hitAt(msg.X, msg.Y) == hitBody)
		case tea.MouseButtonWheelDown:
			m.scroll(1, m.hitAt(msg.X, msg.Y) == hitBody)
		case tea.MouseButtonLeft:
			m.press(msg, ev)
		}
	case tea.MouseActionMotion:
		ev.Kind = host.PointerMove
		m.doc.Listeners.Dispatch(ev)
	case tea.MouseActionRelease:
		ev.Kind = host.PointerUp
		m.doc.Listeners.Dispatch(ev)
	}
}

func (m *SheetModel) press(msg tea.MouseMsg, ev host.PointerEvent) {
	kind, slot := m.layout.hit(msg.X, msg.Y)
	switch kind {
	case hitHandle:
		ev.Kind = host.PointerDown
		ev.Target = "handle"
		m.panel.PressHandle(ev)
	case hitSlot:
		m.panel.Activate(slot)
	case hitOutside:
		// The backdrop belongs to the topmost panel
		if !m.drawn || !m.panel.BlockBg() {
			return
		}
		if top, ok := m.doc.Stack.Top(); ok && top == m.panel.ID() {
			m.panel.Close()
		}
	}
}

func (m *SheetModel) hitAt(x, y int) hitKind {
	kind, _ := m.layout.hit(x, y)
	return kind
}

// scroll moves the sheet body when asked to, or the background unless the
// document scroll lock is held.
func (m *SheetModel) scroll(lines int, body bool) {
	if body {
		m.body.SetYOffset(m.body.YOffset + lines)
		return
	}
	if m.doc.Scroll.Locked() {
		if m.drawn {
			m.body.SetYOffset(m.body.YOffset + lines)
		}
		return
	}
	m.background.SetYOffset(m.background.YOffset + lines)
}

func (m *SheetModel) applyConfig(cfg *config.UserConfig) {
	cfg.Style.Apply(m.doc.Styles)
	theme := config.ResolveTheme(cfg.Theme)
	if Theme(theme) != GetCurrentTheme() {
		InitTheme(theme)
		m.refreshStyles()
	}
	m.err = nil
	uiLog.Info("config_applied",
		slog.String("theme", theme),
		slog.Duration("sheet_delay", m.panel.TransitionDuration()))
}

// sync recomputes the sheet's rendering and advances the slide toward the
// panel's visual target. While a drag is in progress the sheet follows the
// pointer with no easing.
func (m *SheetModel) sync() {
	now := m.now()
	m.sheetLines, m.layout = m.composeSheet()
	height := float64(len(m.sheetLines))

	snap := m.panel.Snapshot()
	if snap.State == sheet.Closed {
		m.drawn = false
		m.slide = still(height)
		m.layout.visible = false
		return
	}

	target := height
	if snap.Visual.Shown {
		target = math.Min(float64(snap.Visual.Offset)/float64(m.cellHeight), height)
	}
	if !m.drawn {
		m.drawn = true
		m.slide = still(height)
	}
	switch {
	case snap.Visual.TransitionDisabled:
		m.slide = still(target)
	case target != m.slide.to:
		m.slide = slide{from: m.slide.at(now), to: target, start: now, dur: m.panel.TransitionDuration()}
	}

	offset := int(math.Round(m.slide.at(now)))
	rows := min(max(len(m.sheetLines)-offset, 0), len(m.sheetLines))
	m.layout.rows = rows
	m.layout.top = m.stageHeight() - rows
	m.layout.visible = rows > 0
}

func stepProgress(v, step float64) float64 {
	return math.Round((v+step)*10) / 10
}

func nextMode(m sheet.ProgressMode) sheet.ProgressMode {
	switch m {
	case sheet.ProgressNone:
		return sheet.ProgressDeterminate
	case sheet.ProgressDeterminate:
		return sheet.ProgressIndeterminate
	default:
		return sheet.ProgressNone
	}
}

type configChangedMsg struct{ cfg *config.UserConfig }

type configErrorMsg struct{ err error }

func waitForConfig(ch <-chan *config.UserConfig) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configChangedMsg{cfg: cfg}
	}
}

func waitForConfigError(ch <-chan error) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return configErrorMsg{err: err}
	}
}
