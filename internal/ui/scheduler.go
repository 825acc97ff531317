package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/asheshgoplani/sheetdeck/internal/host"
)

// frameInterval paces animation frames and timer checks (~60fps).
const frameInterval = 16 * time.Millisecond

type frameMsg time.Time

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// TickScheduler is a host.Scheduler whose timers fire from the bubbletea
// update loop. Callbacks therefore run on the same goroutine as every other
// panel mutation.
type TickScheduler struct {
	now    func() time.Time
	seq    uint64
	timers []*tickTimer
}

type tickTimer struct {
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func (t *tickTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewTickScheduler creates a scheduler reading time from now. A nil now
// uses time.Now.
func NewTickScheduler(now func() time.Time) *TickScheduler {
	if now == nil {
		now = time.Now
	}
	return &TickScheduler{now: now}
}

// AfterFunc implements host.Scheduler.
func (s *TickScheduler) AfterFunc(d time.Duration, fn func()) host.Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &tickTimer{due: s.now().Add(d), seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Pending returns the number of live timers.
func (s *TickScheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Fire runs every timer that is due, earliest first, including timers
// that callbacks schedule already due. It returns how many ran.
func (s *TickScheduler) Fire() int {
	now := s.now()
	fired := 0
	for {
		var next *tickTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.due.After(now) {
				continue
			}
			if next == nil || t.due.Before(next.due) || (t.due.Equal(next.due) && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			break
		}
		next.fired = true
		next.fn()
		fired++
	}
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.timers = live
	return fired
}
