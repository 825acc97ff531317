package host

// EventKind identifies a pointer or touch event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	PointerCancel
	TouchStart
	TouchMove
	TouchEnd
	TouchCancel
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "pointerdown"
	case PointerMove:
		return "pointermove"
	case PointerUp:
		return "pointerup"
	case PointerCancel:
		return "pointercancel"
	case TouchStart:
		return "touchstart"
	case TouchMove:
		return "touchmove"
	case TouchEnd:
		return "touchend"
	case TouchCancel:
		return "touchcancel"
	default:
		return "unknown"
	}
}

// Source is the input device that produced an event.
type Source int

const (
	SourceMouse Source = iota
	SourceTouch
)

// PointerEvent is a pointer or touch event in document coordinates.
// Y grows downward. Units are px-equivalent; the TUI scales cell rows.
type PointerEvent struct {
	Kind   EventKind
	Source Source
	X, Y   int
	Target string
}

// IsMove reports whether the event continues a press.
func (e PointerEvent) IsMove() bool {
	return e.Kind == PointerMove || e.Kind == TouchMove
}

// IsEnd reports whether the event releases a press.
func (e PointerEvent) IsEnd() bool {
	return e.Kind == PointerUp || e.Kind == TouchEnd
}

// IsCancel reports whether the platform aborted the press.
func (e PointerEvent) IsCancel() bool {
	return e.Kind == PointerCancel || e.Kind == TouchCancel
}
