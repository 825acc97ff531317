package sheet

// Visual is what the renderer needs to draw the panel container.
type Visual struct {
	// Shown is the resting target of the slide: true for on screen.
	Shown bool
	// Offset translates the container toward the dismiss edge, in
	// px-equivalent units.
	Offset int
	// TransitionDisabled is set while a drag tracks the pointer 1:1.
	TransitionDisabled bool
}

// Visual returns the current visual state.
func (p *Panel) Visual() Visual { return p.visual }

// Snapshot is a read-only copy of everything a renderer or store needs.
type Snapshot struct {
	ID        string
	State     State
	IsOpen    bool
	Closing   bool
	Entering  bool
	Visual    Visual
	Dragging  bool
	DragDelta int
	Config    Config
	Progress  Progress
	Content   []string
	Attached  bool
}

// Snapshot copies the panel state.
func (p *Panel) Snapshot() Snapshot {
	return Snapshot{
		ID:        p.id,
		State:     p.state,
		IsOpen:    p.isOpen,
		Closing:   p.isClosing,
		Entering:  p.entering,
		Visual:    p.visual,
		Dragging:  p.drag != nil,
		DragDelta: p.dragDelta,
		Config:    p.cfg,
		Progress:  p.progress,
		Content:   p.Content(),
		Attached:  p.attached,
	}
}
