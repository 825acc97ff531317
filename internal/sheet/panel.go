// Package sheet implements a dismissible panel that slides in from the
// bottom edge. A Panel keeps a declarative facet map and typed state in
// sync, runs the open/close lifecycle against animation timing read from
// the host style sheet, and recognizes drag-to-dismiss gestures on its
// handle.
//
// Every change, whether a facet write, a method call or a gesture commit,
// goes through one dispatcher, and only the lifecycle code mutates the
// open/closed state. A Panel is not safe for concurrent use; drive it from
// the goroutine that owns its host.Document.
package sheet

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/asheshgoplani/sheetdeck/internal/host"
	"github.com/asheshgoplani/sheetdeck/internal/logging"
)

var sheetLog = logging.ForComponent(logging.CompSheet)

// DefaultStartupDelay defers the first open after Attach so the entry
// transition has a starting frame to animate from.
const DefaultStartupDelay = 16 * time.Millisecond

var panelSeq atomic.Uint64

// Panel is one sheet instance.
type Panel struct {
	id  string
	doc *host.Document

	mirror   *mirror
	dispatch dispatcher
	events   emitter

	cfg      Config
	progress Progress
	content  []string

	state     State
	isOpen    bool
	isClosing bool
	entering  bool
	visual    Visual

	attached bool
	detached bool

	settleTimer  host.Timer
	closeTimer   host.Timer
	startupTimer host.Timer

	drag          *dragSession
	dragDelta     int
	dragThreshold int
	lastOutcome   DragOutcome

	startupDelay time.Duration
}

// Option configures a Panel at construction.
type Option func(*Panel)

// WithID sets the panel ID used for style lookups and scroll-lock
// ownership.
func WithID(id string) Option {
	return func(p *Panel) { p.id = id }
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(p *Panel) { p.cfg = cfg }
}

// WithContent sets the initial body content.
func WithContent(blocks ...string) Option {
	return func(p *Panel) { p.content = append([]string(nil), blocks...) }
}

// WithThreshold sets the drag distance, in px-equivalent units, beyond
// which a release dismisses the panel.
func WithThreshold(units int) Option {
	return func(p *Panel) {
		if units > 0 {
			p.dragThreshold = units
		}
	}
}

// WithStartupDelay overrides DefaultStartupDelay.
func WithStartupDelay(d time.Duration) Option {
	return func(p *Panel) {
		if d >= 0 {
			p.startupDelay = d
		}
	}
}

// New constructs a detached-from-tree panel in doc. Call Attach to connect
// it, or Open, which attaches implicitly.
func New(doc *host.Document, opts ...Option) *Panel {
	p := &Panel{
		doc:           doc,
		cfg:           DefaultConfig(),
		dragThreshold: DefaultDragThreshold,
		startupDelay:  DefaultStartupDelay,
		lastOutcome:   DragNone,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.id == "" {
		p.id = fmt.Sprintf("sheet-%d", panelSeq.Add(1))
	}
	if p.cfg.Size == "" {
		p.cfg.Size = SizeContent
	}
	p.cfg.ProgressMode = ParseProgressMode(string(p.cfg.ProgressMode))
	p.progress.setMode(p.cfg.ProgressMode)
	p.dispatch.apply = p.applyIntent
	p.mirror = newMirror(p.attributeChanged)
	for name, v := range p.cfg.Facets() {
		p.mirror.reflect(name, presentAttr(v))
	}
	return p
}

// Build is the one-call form: construct a panel from content and a full
// configuration. It behaves exactly like New with WithConfig and
// WithContent.
func Build(doc *host.Document, content []string, cfg Config, opts ...Option) *Panel {
	return New(doc, append([]Option{WithConfig(cfg), WithContent(content...)}, opts...)...)
}

// ID returns the panel ID.
func (p *Panel) ID() string {
	return p.id
}

// Document returns the host the panel lives in.
func (p *Panel) Document() *host.Document {
	return p.doc
}

// Attach connects the panel to its document. If the open facet is already
// present, the first open runs after the startup delay.
func (p *Panel) Attach() *Panel {
	if p.attached || p.detached {
		return p
	}
	p.attached = true
	sheetLog.Debug("panel_attached", slog.String("panel", p.id))
	if p.mirror.get(FacetOpen).present && p.state == Closed {
		p.startupTimer = p.doc.Scheduler.AfterFunc(p.startupDelay, func() {
			p.startupTimer = nil
			if !p.mirror.get(FacetOpen).present {
				return
			}
			p.post(intent{kind: intentOpen, source: "startup"})
		})
	}
	return p
}

// Detach destroys the panel. Pending timers are cancelled, an active drag
// session releases its document listeners, and any scroll lock held is
// returned. No notifications are emitted, and later calls are no-ops.
func (p *Panel) Detach() {
	if p.detached {
		return
	}
	p.endDrag(DragInterrupted)
	stopTimer(&p.startupTimer)
	stopTimer(&p.settleTimer)
	stopTimer(&p.closeTimer)
	if p.state != Closed {
		p.doc.Scroll.Release(p.id)
		p.doc.Stack.Remove(p.id)
	}
	p.state = Closed
	p.isOpen = false
	p.isClosing = false
	p.entering = false
	p.visual = Visual{}
	p.attached = false
	p.detached = true
	sheetLog.Debug("panel_detached",
		slog.String("panel", p.id),
		slog.Int("document_listeners", p.doc.Listeners.Count()))
}

// Attached reports whether the panel is connected to its document.
func (p *Panel) Attached() bool {
	return p.attached
}

// Detached reports whether the panel was destroyed.
func (p *Panel) Detached() bool {
	return p.detached
}

func stopTimer(t *host.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// Heading returns the heading text.
func (p *Panel) Heading() string { return p.cfg.Heading }

// Description returns the description text.
func (p *Panel) Description() string { return p.cfg.Description }

// Size returns the size mode.
func (p *Panel) Size() Size { return p.cfg.Size }

// BlockBg reports whether the backdrop blocks the background.
func (p *Panel) BlockBg() bool { return p.cfg.BlockBg }

// DragClose reports whether the drag handle is enabled.
func (p *Panel) DragClose() bool { return p.cfg.DragClose }

// IconLeft returns the left icon label.
func (p *Panel) IconLeft() string { return p.cfg.IconLeft }

// IconRight returns the right icon label.
func (p *Panel) IconRight() string { return p.cfg.IconRight }

// Config returns the typed configuration.
func (p *Panel) Config() Config { return p.cfg }

// SetHeading writes the heading facet.
func (p *Panel) SetHeading(text string) *Panel {
	return p.setText(FacetHeading, text)
}

// SetDescription writes the description facet.
func (p *Panel) SetDescription(text string) *Panel {
	return p.setText(FacetDescription, text)
}

// SetIconLeft writes the left icon label. Empty removes the icon.
func (p *Panel) SetIconLeft(label string) *Panel {
	return p.setText(FacetIconLeft, label)
}

// SetIconRight writes the right icon label. Empty removes the icon.
func (p *Panel) SetIconRight(label string) *Panel {
	return p.setText(FacetIconRight, label)
}

// SetSize writes the size facet.
func (p *Panel) SetSize(s Size) *Panel {
	return p.SetAttribute(FacetSize, string(s))
}

// SetBlockBg writes the block-bg presence facet.
func (p *Panel) SetBlockBg(on bool) *Panel {
	return p.ToggleAttribute(FacetBlockBg, on)
}

// SetDragClose writes the drag-close presence facet.
func (p *Panel) SetDragClose(on bool) *Panel {
	return p.ToggleAttribute(FacetDragClose, on)
}

// SetProgressMode writes the progress-mode facet.
func (p *Panel) SetProgressMode(m ProgressMode) *Panel {
	if m == ProgressNone || m == "" {
		return p.RemoveAttribute(FacetProgressMode)
	}
	return p.SetAttribute(FacetProgressMode, string(m))
}

// SetCTA sets the footer button labels. They have no declarative facet.
func (p *Panel) SetCTA(primary, secondary string) *Panel {
	p.cfg.CTAPrimary = primary
	p.cfg.CTASecondary = secondary
	return p
}

func (p *Panel) setText(name, text string) *Panel {
	if text == "" {
		return p.RemoveAttribute(name)
	}
	return p.SetAttribute(name, text)
}

// UpdateContent replaces the body content.
func (p *Panel) UpdateContent(blocks ...string) *Panel {
	p.content = append([]string(nil), blocks...)
	return p
}

// Content returns the body content.
func (p *Panel) Content() []string {
	return append([]string(nil), p.content...)
}
