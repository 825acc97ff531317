package sheet

import (
	"testing"
	"time"

	"github.com/asheshgoplani/sheetdeck/internal/host"
)

// recorder collects notification types in emission order.
type recorder struct {
	events []EventType
}

func (r *recorder) watch(p *Panel, types ...EventType) {
	for _, t := range types {
		p.On(t, func(e *Event) { r.events = append(r.events, e.Type) })
	}
}

func (r *recorder) count(t EventType) int {
	n := 0
	for _, e := range r.events {
		if e == t {
			n++
		}
	}
	return n
}

func newTestPanel(t *testing.T, opts ...Option) (*Panel, *host.ManualScheduler, *recorder) {
	t.Helper()
	sched := host.NewManualScheduler()
	doc := host.NewDocument(sched)
	p := New(doc, append([]Option{WithID("sheet")}, opts...)...).Attach()
	rec := &recorder{}
	rec.watch(p, EventOpened, EventClosing, EventClosed)
	return p, sched, rec
}

const transition = host.DefaultDelay

func press(y int) host.PointerEvent {
	return host.PointerEvent{Kind: host.PointerDown, Source: host.SourceMouse, Y: y}
}

func move(y int) host.PointerEvent {
	return host.PointerEvent{Kind: host.PointerMove, Source: host.SourceMouse, Y: y}
}

func release(y int) host.PointerEvent {
	return host.PointerEvent{Kind: host.PointerUp, Source: host.SourceMouse, Y: y}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
