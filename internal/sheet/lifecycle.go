package sheet

import (
	"log/slog"
	"time"

	"github.com/asheshgoplani/sheetdeck/internal/host"
	"github.com/asheshgoplani/sheetdeck/internal/logging"
)

var lifecycleLog = logging.ForComponent(logging.CompLifecycle)

// State is the lifecycle state of a panel.
type State int

const (
	Closed State = iota
	// Open is entered synchronously by Open; the entry transition runs
	// from the style alone and is reported by Entering.
	Open
	// Closing is closed with the exit transition still running; the panel
	// is still drawn and still in the interactive tree.
	Closing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// State returns the lifecycle state.
func (p *Panel) State() State { return p.state }

// IsOpen reports the authoritative open flag. It is true from the moment
// Open runs and false from the moment Close runs, whatever the animation
// is doing.
func (p *Panel) IsOpen() bool { return p.isOpen }

// IsClosing reports whether the exit transition is in flight.
func (p *Panel) IsClosing() bool { return p.isClosing }

// Entering reports whether the entry transition is still running after
// an open.
func (p *Panel) Entering() bool { return p.entering }

// TransitionDuration returns the current animation time from the style
// sheet. It is read fresh on every call.
func (p *Panel) TransitionDuration() time.Duration {
	return p.doc.Styles.Duration(p.id, host.DelayProperty, host.DefaultDelay)
}

// Open shows the panel. It is a no-op unless the panel is closed. A panel
// that was never attached is attached first.
func (p *Panel) Open() *Panel {
	p.post(intent{kind: intentOpen, source: "method"})
	return p
}

// Close starts dismissing the panel. It is a no-op unless the panel is
// open, including while it is already closing.
func (p *Panel) Close() *Panel {
	p.post(intent{kind: intentClose, source: "method"})
	return p
}

// Toggle opens a closed panel and closes an open one. It does nothing
// while the panel is closing.
func (p *Panel) Toggle() *Panel {
	p.post(intent{kind: intentToggle, source: "method"})
	return p
}

func (p *Panel) applyOpen(source string) {
	if p.detached {
		lifecycleLog.Debug("open_ignored_detached", slog.String("panel", p.id))
		return
	}
	if !p.attached {
		p.attached = true
	}
	if p.state != Closed {
		lifecycleLog.Debug("open_ignored",
			slog.String("panel", p.id),
			slog.String("state", p.state.String()),
			slog.String("source", source))
		return
	}
	stopTimer(&p.startupTimer)

	p.state = Open
	p.isOpen = true
	p.entering = true
	p.visual = Visual{Shown: true}
	p.cfg.Open = true
	p.mirror.reflect(FacetOpen, presentAttr(""))

	p.doc.Scroll.Acquire(p.id)
	p.doc.Stack.Push(p.id)

	lifecycleLog.Info("panel_opened", slog.String("panel", p.id), slog.String("source", source))
	p.emit(EventOpened, source)

	// A handler may have detached the panel
	if p.detached {
		return
	}
	p.settleTimer = p.doc.Scheduler.AfterFunc(p.TransitionDuration(), p.settle)
}

// settle ends the entry transition.
func (p *Panel) settle() {
	p.settleTimer = nil
	p.entering = false
}

func (p *Panel) applyClose(source string) {
	if p.startupTimer != nil && p.state == Closed {
		// Close wins over a startup open that has not run yet
		stopTimer(&p.startupTimer)
		p.cfg.Open = false
		p.mirror.reflect(FacetOpen, attr{})
		lifecycleLog.Debug("startup_open_cancelled",
			slog.String("panel", p.id),
			slog.String("source", source))
		return
	}
	if p.detached || p.state != Open {
		lifecycleLog.Debug("close_ignored",
			slog.String("panel", p.id),
			slog.String("state", p.state.String()),
			slog.String("source", source))
		return
	}
	// An external close wins over a drag in progress
	if p.drag != nil {
		p.endDrag(DragInterrupted)
	}

	ev := p.emit(EventClosing, source)
	if ev.DefaultPrevented() {
		lifecycleLog.Debug("close_vetoed", slog.String("panel", p.id), slog.String("source", source))
		p.visual.Offset = 0
		p.cfg.Open = true
		p.mirror.reflect(FacetOpen, presentAttr(""))
		return
	}
	if p.detached {
		return
	}

	stopTimer(&p.settleTimer)
	p.state = Closing
	p.isOpen = false
	p.isClosing = true
	p.entering = false
	p.visual.Shown = false
	p.visual.TransitionDisabled = false

	d := p.TransitionDuration()
	lifecycleLog.Info("panel_closing",
		slog.String("panel", p.id),
		slog.String("source", source),
		slog.Duration("duration", d))
	p.closeTimer = p.doc.Scheduler.AfterFunc(d, p.finishClose)
}

// finishClose runs when the exit transition is over and takes the panel
// out of the interactive tree.
func (p *Panel) finishClose() {
	p.closeTimer = nil
	if p.detached || p.state != Closing {
		return
	}
	p.cfg.Open = false
	p.mirror.reflect(FacetOpen, attr{})
	p.doc.Scroll.Release(p.id)
	p.doc.Stack.Remove(p.id)

	p.state = Closed
	p.isClosing = false
	p.visual = Visual{}

	lifecycleLog.Info("panel_closed", slog.String("panel", p.id))
	p.emit(EventClosed, "timer")
}

func (p *Panel) applyToggle(source string) {
	switch p.state {
	case Closed:
		p.applyOpen(source)
	case Open:
		p.applyClose(source)
	default:
		lifecycleLog.Debug("toggle_ignored",
			slog.String("panel", p.id),
			slog.String("state", p.state.String()))
	}
}
