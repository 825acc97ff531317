// Package host models the surface a sheet panel is mounted in: the
// document-scope listener registry, the shared scroll lock, the style sheet
// that carries animation timing, the timer scheduler and the z-ordered
// interactive tree.
//
// Nothing in this package is safe for concurrent use. A Document is driven
// from one goroutine, which in the TUI is the bubbletea Update loop.
package host

import "github.com/asheshgoplani/sheetdeck/internal/logging"

var hostLog = logging.ForComponent(logging.CompHost)

// Document bundles the process-wide resources shared by every panel.
type Document struct {
	Listeners *Registry
	Scroll    *ScrollLock
	Styles    *StyleSheet
	Scheduler Scheduler
	Stack     *Stack
}

// NewDocument creates a document backed by the given scheduler.
// A nil scheduler gets a ManualScheduler, which only fires on Advance.
func NewDocument(s Scheduler) *Document {
	if s == nil {
		s = NewManualScheduler()
	}
	return &Document{
		Listeners: NewRegistry(),
		Scroll:    NewScrollLock(),
		Styles:    NewStyleSheet(),
		Scheduler: s,
		Stack:     &Stack{},
	}
}
