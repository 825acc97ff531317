package sheet

// EventType names a panel notification.
type EventType string

const (
	EventOpened       EventType = "opened"
	EventClosing      EventType = "closing"
	EventClosed       EventType = "closed"
	EventIconLeft     EventType = "icon-left"
	EventIconRight    EventType = "icon-right"
	EventCTAPrimary   EventType = "cta-primary"
	EventCTASecondary EventType = "cta-secondary"
)

// Event is delivered synchronously to every handler of its type.
type Event struct {
	Type      EventType
	Panel     *Panel
	Source    string
	prevented bool
}

// PreventDefault vetoes the action announced by a "closing" event. It has
// no effect on other events.
func (e *Event) PreventDefault() {
	if e.Type == EventClosing {
		e.prevented = true
	}
}

// DefaultPrevented reports whether a handler vetoed the event.
func (e *Event) DefaultPrevented() bool {
	return e.prevented
}

// Handler observes panel notifications.
type Handler func(*Event)

type subscription struct {
	id int
	fn Handler
}

type emitter struct {
	next     int
	handlers map[EventType][]subscription
}

// On subscribes fn to notifications of type t. The returned function
// unsubscribes; calling it twice is harmless.
func (p *Panel) On(t EventType, fn Handler) func() {
	if p.events.handlers == nil {
		p.events.handlers = make(map[EventType][]subscription)
	}
	p.events.next++
	id := p.events.next
	p.events.handlers[t] = append(p.events.handlers[t], subscription{id: id, fn: fn})
	return func() {
		subs := p.events.handlers[t]
		for i, s := range subs {
			if s.id == id {
				p.events.handlers[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (p *Panel) emit(t EventType, source string) *Event {
	ev := &Event{Type: t, Panel: p, Source: source}
	subs := append([]subscription(nil), p.events.handlers[t]...)
	for _, s := range subs {
		s.fn(ev)
	}
	return ev
}

// Slot is an activatable region of the panel chrome.
type Slot int

const (
	SlotIconLeft Slot = iota
	SlotIconRight
	SlotCTAPrimary
	SlotCTASecondary
)

func (s Slot) event() EventType {
	switch s {
	case SlotIconLeft:
		return EventIconLeft
	case SlotIconRight:
		return EventIconRight
	case SlotCTAPrimary:
		return EventCTAPrimary
	default:
		return EventCTASecondary
	}
}

// Activate emits the notification for a slot. Slots are inert while the
// panel is not open or when the slot has no label.
func (p *Panel) Activate(s Slot) *Panel {
	if !p.isOpen {
		return p
	}
	var label string
	switch s {
	case SlotIconLeft:
		label = p.cfg.IconLeft
	case SlotIconRight:
		label = p.cfg.IconRight
	case SlotCTAPrimary:
		label = p.cfg.CTAPrimary
	case SlotCTASecondary:
		label = p.cfg.CTASecondary
	}
	if label == "" {
		return p
	}
	p.emit(s.event(), "slot")
	return p
}
