package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheshgoplani/sheetdeck/internal/host"
)

func TestOpenThenCloseReachesClosedOnce(t *testing.T) {
	p, sched, rec := newTestPanel(t)

	p.Open().Open().Close().Open().Close()
	sched.Advance(transition)
	sched.Advance(transition)

	assert.Equal(t, Closed, p.State())
	assert.Equal(t, 1, rec.count(EventOpened))
	assert.Equal(t, 1, rec.count(EventClosing))
	assert.Equal(t, 1, rec.count(EventClosed))
	assert.Equal(t, []EventType{EventOpened, EventClosing, EventClosed}, rec.events)
}

func TestOpenIsImmediate(t *testing.T) {
	p, sched, rec := newTestPanel(t)

	p.Open()
	assert.Equal(t, Open, p.State())
	assert.True(t, p.IsOpen())
	assert.True(t, p.HasAttribute(FacetOpen))
	assert.True(t, p.Document().Scroll.Locked())
	assert.True(t, p.Entering())
	assert.Equal(t, 1, rec.count(EventOpened))

	sched.Advance(transition)
	assert.False(t, p.Entering())
	assert.Equal(t, Open, p.State())
}

func TestCloseWaitsForTransition(t *testing.T) {
	p, sched, rec := newTestPanel(t)
	p.Open()
	sched.Advance(transition)

	p.Close()
	assert.Equal(t, 1, rec.count(EventClosing), "closing is emitted before the panel moves")
	assert.Equal(t, Closing, p.State())
	assert.False(t, p.IsOpen())
	assert.True(t, p.HasAttribute(FacetOpen), "open marker stays until removal")
	assert.True(t, p.Document().Scroll.Locked())

	sched.Advance(ms(299))
	assert.Equal(t, Closing, p.State())
	assert.Zero(t, rec.count(EventClosed))

	sched.Advance(ms(1))
	assert.Equal(t, Closed, p.State())
	assert.False(t, p.HasAttribute(FacetOpen))
	assert.False(t, p.Document().Scroll.Locked())
	assert.Equal(t, 1, rec.count(EventClosed))
}

func TestClosingIsEmittedBeforeVisualChange(t *testing.T) {
	p, _, _ := newTestPanel(t)
	p.Open()

	var seen Snapshot
	p.On(EventClosing, func(e *Event) { seen = e.Panel.Snapshot() })
	p.Close()

	assert.Equal(t, Open, seen.State)
	assert.True(t, seen.Visual.Shown)
	assert.False(t, p.Visual().Shown)
}

func TestCloseTwiceIsIdempotent(t *testing.T) {
	once, onceSched, onceRec := newTestPanel(t)
	once.Open().Close()
	onceSched.Advance(transition)

	twice, twiceSched, twiceRec := newTestPanel(t)
	twice.Open().Close().Close()
	twiceSched.Advance(transition)

	assert.Equal(t, once.State(), twice.State())
	assert.Equal(t, onceRec.events, twiceRec.events)
	assert.Zero(t, twiceSched.Pending())
}

func TestCloseRereadsDuration(t *testing.T) {
	p, sched, _ := newTestPanel(t)
	p.Open()

	p.Document().Styles.SetElement(p.ID(), host.DelayProperty, "500ms")
	p.Close()
	sched.Advance(ms(300))
	assert.Equal(t, Closing, p.State())
	sched.Advance(ms(200))
	assert.Equal(t, Closed, p.State())

	p.Document().Styles.SetElement(p.ID(), host.DelayProperty, "50")
	p.Open().Close()
	sched.Advance(ms(50))
	assert.Equal(t, Closed, p.State())
}

func TestClosingVeto(t *testing.T) {
	p, sched, rec := newTestPanel(t)
	p.Open()

	off := p.On(EventClosing, func(e *Event) { e.PreventDefault() })
	p.Close()
	sched.Advance(transition)
	assert.Equal(t, Open, p.State())
	assert.Zero(t, rec.count(EventClosed))

	p.RemoveAttribute(FacetOpen)
	assert.Equal(t, Open, p.State())
	assert.True(t, p.HasAttribute(FacetOpen), "vetoed close restores the open marker")

	off()
	p.Close()
	sched.Advance(transition)
	assert.Equal(t, Closed, p.State())
}

func TestToggle(t *testing.T) {
	p, sched, rec := newTestPanel(t)

	p.Toggle()
	assert.Equal(t, Open, p.State())

	p.Toggle()
	assert.Equal(t, Closing, p.State())

	p.Toggle()
	assert.Equal(t, Closing, p.State(), "toggle is inert while closing")

	sched.Advance(transition)
	p.Toggle()
	assert.Equal(t, Open, p.State())
	assert.Equal(t, 2, rec.count(EventOpened))
}

func TestOpenIgnoredWhileClosing(t *testing.T) {
	p, sched, rec := newTestPanel(t)
	p.Open().Close()

	p.Open()
	assert.Equal(t, Closing, p.State())
	sched.Advance(transition)
	assert.Equal(t, Closed, p.State())
	assert.Equal(t, 1, rec.count(EventOpened))
}

func TestHandlerCloseRunsAfterOpenCompletes(t *testing.T) {
	p, _, rec := newTestPanel(t)
	p.On(EventOpened, func(e *Event) { e.Panel.Close() })

	p.Open()

	assert.Equal(t, Closing, p.State())
	assert.Equal(t, []EventType{EventOpened, EventClosing}, rec.events)
}

func TestDetachWhileClosingCancelsRemoval(t *testing.T) {
	p, sched, rec := newTestPanel(t)
	p.Open().Close()

	p.Detach()
	assert.Zero(t, sched.Pending())
	sched.Advance(transition)

	assert.True(t, p.Detached())
	assert.Zero(t, rec.count(EventClosed))
	assert.False(t, p.Document().Scroll.Locked())
	assert.Zero(t, p.Document().Stack.Len())

	p.Open()
	assert.Equal(t, Closed, p.State(), "a detached panel stays dead")
}

func TestScrollLockSharedAcrossPanels(t *testing.T) {
	sched := host.NewManualScheduler()
	doc := host.NewDocument(sched)
	a := New(doc, WithID("a")).Attach()
	b := New(doc, WithID("b")).Attach()

	a.Open()
	b.Open()
	top, _ := doc.Stack.Top()
	assert.Equal(t, "b", top)

	a.Close()
	sched.Advance(transition)
	assert.True(t, doc.Scroll.Locked(), "b is still open")

	b.Close()
	sched.Advance(transition)
	assert.False(t, doc.Scroll.Locked())
	assert.Zero(t, doc.Stack.Len())
}

func TestStartupDelayOpensFromFacet(t *testing.T) {
	sched := host.NewManualScheduler()
	doc := host.NewDocument(sched)
	cfg := DefaultConfig()
	cfg.Open = true
	p := New(doc, WithConfig(cfg))
	rec := &recorder{}
	rec.watch(p, EventOpened)

	assert.Equal(t, Closed, p.State())
	p.Attach()
	assert.Equal(t, Closed, p.State(), "first open waits for a starting frame")

	sched.Advance(DefaultStartupDelay)
	assert.Equal(t, Open, p.State())
	assert.Equal(t, 1, rec.count(EventOpened))
}

func TestStartupOpenCancelledByFacetRemoval(t *testing.T) {
	sched := host.NewManualScheduler()
	doc := host.NewDocument(sched)
	cfg := DefaultConfig()
	cfg.Open = true
	p := New(doc, WithConfig(cfg)).Attach()
	rec := &recorder{}
	rec.watch(p, EventOpened)

	p.RemoveAttribute(FacetOpen)
	sched.Advance(DefaultStartupDelay)

	assert.Equal(t, Closed, p.State())
	assert.False(t, p.HasAttribute(FacetOpen))
	assert.False(t, doc.Scroll.Locked())
	assert.Zero(t, doc.Stack.Len())
	assert.Zero(t, rec.count(EventOpened))
}

func TestStartupOpenCancelledByClose(t *testing.T) {
	sched := host.NewManualScheduler()
	doc := host.NewDocument(sched)
	cfg := DefaultConfig()
	cfg.Open = true
	p := New(doc, WithConfig(cfg)).Attach()
	rec := &recorder{}
	rec.watch(p, EventOpened, EventClosing, EventClosed)

	p.Close()
	sched.Advance(DefaultStartupDelay)

	assert.Equal(t, Closed, p.State())
	assert.False(t, p.HasAttribute(FacetOpen))
	assert.False(t, doc.Scroll.Locked())
	assert.Zero(t, rec.count(EventOpened))
	assert.Zero(t, rec.count(EventClosing))
	assert.Zero(t, rec.count(EventClosed))

	// The facet still drives the panel afterwards
	p.SetAttribute(FacetOpen, "")
	assert.Equal(t, Open, p.State())
}

func TestOpenAttachesImplicitly(t *testing.T) {
	doc := host.NewDocument(nil)
	p := Build(doc, []string{"body"}, DefaultConfig())
	require.False(t, p.Attached())

	p.Open()
	assert.True(t, p.Attached())
	assert.Equal(t, Open, p.State())
	assert.Equal(t, []string{"body"}, p.Content())
}
