package host

import "time"

// Timer is a pending fire-once callback.
type Timer interface {
	// Stop cancels the callback. It returns false if the timer already
	// fired or was already stopped.
	Stop() bool
}

// Scheduler runs deferred callbacks on the document's goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// ManualScheduler is a Scheduler driven by explicit Advance calls. Tests and
// headless hosts use it to step animation time deterministically.
type ManualScheduler struct {
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	due     time.Duration
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManualScheduler returns a scheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc schedules fn to run once d has elapsed on the manual clock.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &manualTimer{due: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Now returns the elapsed manual time.
func (s *ManualScheduler) Now() time.Duration {
	return s.now
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (s *ManualScheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d and fires every timer that comes
// due, earliest first. Timers scheduled by a callback fire in the same call
// if they fall inside the window. It returns the number of timers fired.
func (s *ManualScheduler) Advance(d time.Duration) int {
	target := s.now + d
	fired := 0
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		s.now = next.due
		next.fired = true
		next.fn()
		fired++
	}
	s.now = target
	s.compact()
	return fired
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	var best *manualTimer
	for _, t := range s.timers {
		if t.stopped || t.fired || t.due > target {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *ManualScheduler) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.timers = live
}
