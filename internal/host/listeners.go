package host

import "log/slog"

// Listener receives document-scope events.
type Listener func(PointerEvent)

// Handle identifies one registration. The zero Handle is never issued.
type Handle struct {
	id   uint64
	kind EventKind
}

// Valid reports whether the handle came from Add.
func (h Handle) Valid() bool {
	return h.id != 0
}

type registration struct {
	id    uint64
	kind  EventKind
	owner string
	fn    Listener
}

// Registry holds listeners registered at document scope, the equivalent of
// window-level listeners in a browser. Listeners receive events regardless
// of where the pointer is.
type Registry struct {
	next    uint64
	entries []registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers fn for events of the given kind on behalf of owner.
func (r *Registry) Add(owner string, kind EventKind, fn Listener) Handle {
	r.next++
	r.entries = append(r.entries, registration{id: r.next, kind: kind, owner: owner, fn: fn})
	hostLog.Debug("listener_added",
		slog.String("owner", owner),
		slog.String("kind", kind.String()),
		slog.Int("total", len(r.entries)))
	return Handle{id: r.next, kind: kind}
}

// Remove drops a registration. It returns false if the handle was unknown
// or already removed.
func (r *Registry) Remove(h Handle) bool {
	for i, e := range r.entries {
		if e.id == h.id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			hostLog.Debug("listener_removed",
				slog.String("owner", e.owner),
				slog.String("kind", e.kind.String()),
				slog.Int("total", len(r.entries)))
			return true
		}
	}
	return false
}

// Dispatch delivers ev to every listener registered for its kind, in
// registration order, and returns how many were called. A listener removed
// by an earlier listener in the same dispatch is skipped.
func (r *Registry) Dispatch(ev PointerEvent) int {
	var targets []registration
	for _, e := range r.entries {
		if e.kind == ev.Kind {
			targets = append(targets, e)
		}
	}
	called := 0
	for _, t := range targets {
		if !r.has(t.id) {
			continue
		}
		t.fn(ev)
		called++
	}
	return called
}

func (r *Registry) has(id uint64) bool {
	for _, e := range r.entries {
		if e.id == id {
			return true
		}
	}
	return false
}

// Count returns the number of live registrations.
func (r *Registry) Count() int {
	return len(r.entries)
}

// CountFor returns the number of live registrations owned by owner.
func (r *Registry) CountFor(owner string) int {
	n := 0
	for _, e := range r.entries {
		if e.owner == owner {
			n++
		}
	}
	return n
}
