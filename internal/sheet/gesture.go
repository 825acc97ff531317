package sheet

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/asheshgoplani/sheetdeck/internal/host"
	"github.com/asheshgoplani/sheetdeck/internal/logging"
)

var gestureLog = logging.ForComponent(logging.CompGesture)

// DefaultDragThreshold is the distance, in px-equivalent units, a release
// must exceed to dismiss the panel.
const DefaultDragThreshold = 100

// DragOutcome is how a drag session ended.
type DragOutcome int

const (
	DragNone DragOutcome = iota
	// DragCommitted released beyond the threshold and closed the panel.
	DragCommitted
	// DragCancelled released at or within the threshold, or the platform
	// cancelled the press.
	DragCancelled
	// DragInterrupted was ended by Close or Detach while in flight.
	DragInterrupted
)

func (o DragOutcome) String() string {
	switch o {
	case DragCommitted:
		return "committed"
	case DragCancelled:
		return "cancelled"
	case DragInterrupted:
		return "interrupted"
	default:
		return "none"
	}
}

// sessionKinds are the document events a drag session listens to.
var sessionKinds = []host.EventKind{
	host.PointerMove, host.PointerUp, host.PointerCancel,
	host.TouchMove, host.TouchEnd, host.TouchCancel,
}

// dragSession owns every document listener registered for one drag. It is
// acquired on press and released exactly once, whichever way the drag
// ends.
type dragSession struct {
	registry *host.Registry
	handles  []host.Handle
	startY   int
	source   host.Source
	moves    int
	sample   rate.Sometimes
	released bool
}

func acquireDragSession(reg *host.Registry, owner string, press host.PointerEvent, fn host.Listener) *dragSession {
	s := &dragSession{
		registry: reg,
		startY:   press.Y,
		source:   press.Source,
		sample:   rate.Sometimes{First: 1, Interval: 250 * time.Millisecond},
	}
	for _, kind := range sessionKinds {
		s.handles = append(s.handles, reg.Add(owner, kind, fn))
	}
	return s
}

func (s *dragSession) release() {
	if s.released {
		return
	}
	s.released = true
	for _, h := range s.handles {
		s.registry.Remove(h)
	}
	s.handles = nil
}

// IsDragging reports whether a drag session is active.
func (p *Panel) IsDragging() bool { return p.drag != nil }

// DragDelta returns the signed offset of the active drag, or 0.
func (p *Panel) DragDelta() int { return p.dragDelta }

// DragThreshold returns the dismiss distance.
func (p *Panel) DragThreshold() int { return p.dragThreshold }

// LastDragOutcome returns how the most recent drag session ended.
func (p *Panel) LastDragOutcome() DragOutcome { return p.lastOutcome }

// PressHandle starts a drag session from a press on the drag handle. It
// returns false, and registers nothing, when drag-close is disabled, the
// panel is not open, or a session is already active.
func (p *Panel) PressHandle(ev host.PointerEvent) bool {
	switch {
	case !p.cfg.DragClose:
		return false
	case p.drag != nil:
		return false
	case p.detached || !p.isOpen:
		return false
	}
	p.drag = acquireDragSession(p.doc.Listeners, p.id, ev, p.onDocumentEvent)
	p.dragDelta = 0
	p.visual.TransitionDisabled = true
	gestureLog.Debug("drag_started",
		slog.String("panel", p.id),
		slog.Int("start_y", ev.Y),
		slog.Int("listeners", len(p.drag.handles)))
	return true
}

func (p *Panel) onDocumentEvent(ev host.PointerEvent) {
	if p.drag == nil {
		return
	}
	switch {
	case ev.IsMove():
		p.dragMove(ev)
	case ev.IsEnd():
		p.dragEnd(ev)
	case ev.IsCancel():
		p.endDrag(DragCancelled)
	}
}

// dragMove tracks the pointer 1:1. Only movement toward the dismiss
// direction translates the panel; it never rises past its resting place.
func (p *Panel) dragMove(ev host.PointerEvent) {
	s := p.drag
	delta := ev.Y - s.startY
	p.dragDelta = delta
	if delta > 0 {
		p.visual.Offset = delta
	} else {
		p.visual.Offset = 0
	}
	s.moves++
	logging.Aggregate(logging.CompGesture, "drag_move", slog.String("panel", p.id), slog.Int("delta", delta))
	s.sample.Do(func() {
		gestureLog.Debug("drag_move", slog.String("panel", p.id), slog.Int("delta", delta))
	})
}

func (p *Panel) dragEnd(ev host.PointerEvent) {
	p.dragDelta = ev.Y - p.drag.startY
	if p.dragDelta > p.dragThreshold {
		p.endDrag(DragCommitted)
		return
	}
	p.endDrag(DragCancelled)
}

// endDrag releases the session and settles the visual state. A commit
// then asks the lifecycle to close; the exit transition starts from the
// dragged offset.
func (p *Panel) endDrag(outcome DragOutcome) {
	s := p.drag
	if s == nil {
		return
	}
	delta := p.dragDelta
	s.release()
	p.drag = nil
	p.dragDelta = 0
	p.lastOutcome = outcome
	p.visual.TransitionDisabled = false
	if outcome != DragCommitted {
		p.visual.Offset = 0
	}
	gestureLog.Debug("drag_ended",
		slog.String("panel", p.id),
		slog.String("outcome", outcome.String()),
		slog.Int("delta", delta),
		slog.Int("moves", s.moves))
	if outcome == DragCommitted {
		p.post(intent{kind: intentClose, source: "gesture"})
	}
}
