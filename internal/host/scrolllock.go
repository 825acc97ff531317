package host

import "log/slog"

// ScrollLock suspends background scrolling while at least one panel holds
// it. Holders are keyed by panel ID, so a panel that acquires twice still
// counts once. The lock engages on the first holder and releases when the
// last one leaves.
type ScrollLock struct {
	holders  map[string]struct{}
	onChange []func(locked bool)
}

// NewScrollLock returns an unlocked scroll lock.
func NewScrollLock() *ScrollLock {
	return &ScrollLock{holders: make(map[string]struct{})}
}

// Acquire adds owner as a holder. It returns true when this call engaged
// the lock.
func (s *ScrollLock) Acquire(owner string) bool {
	if _, ok := s.holders[owner]; ok {
		return false
	}
	s.holders[owner] = struct{}{}
	if len(s.holders) != 1 {
		return false
	}
	hostLog.Debug("scroll_locked", slog.String("owner", owner))
	s.notify(true)
	return true
}

// Release removes owner as a holder. It returns true when this call
// released the lock.
func (s *ScrollLock) Release(owner string) bool {
	if _, ok := s.holders[owner]; !ok {
		return false
	}
	delete(s.holders, owner)
	if len(s.holders) != 0 {
		return false
	}
	hostLog.Debug("scroll_unlocked", slog.String("owner", owner))
	s.notify(false)
	return true
}

// Locked reports whether background scrolling is suspended.
func (s *ScrollLock) Locked() bool {
	return len(s.holders) > 0
}

// Holders returns the number of panels holding the lock.
func (s *ScrollLock) Holders() int {
	return len(s.holders)
}

// OnChange registers fn to run whenever the lock engages or releases.
func (s *ScrollLock) OnChange(fn func(locked bool)) {
	s.onChange = append(s.onChange, fn)
}

func (s *ScrollLock) notify(locked bool) {
	for _, fn := range s.onChange {
		fn(locked)
	}
}
