package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickSchedulerFiresDueTimers(t *testing.T) {
	clock := newFakeClock()
	s := NewTickScheduler(clock.now)

	var order []string
	s.AfterFunc(30*time.Millisecond, func() { order = append(order, "b") })
	s.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	stopped := s.AfterFunc(20*time.Millisecond, func() { order = append(order, "x") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	assert.Zero(t, s.Fire())
	assert.Equal(t, 2, s.Pending())

	clock.advance(50 * time.Millisecond)
	assert.Equal(t, 2, s.Fire())
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Zero(t, s.Pending())
}

func TestTickSchedulerChainedZeroDelay(t *testing.T) {
	clock := newFakeClock()
	s := NewTickScheduler(clock.now)

	ran := 0
	s.AfterFunc(0, func() {
		ran++
		s.AfterFunc(0, func() { ran++ })
	})
	assert.Equal(t, 2, s.Fire())
	assert.Equal(t, 2, ran)
}

func TestSlideEasesOut(t *testing.T) {
	start := newFakeClock().t
	s := slide{from: 10, to: 0, start: start, dur: 100 * time.Millisecond}

	assert.Equal(t, 10.0, s.at(start))
	half := s.at(start.Add(50 * time.Millisecond))
	assert.Less(t, half, 5.0, "ease-out covers more than half the distance by midpoint")
	assert.Greater(t, half, 0.0)
	assert.Equal(t, 0.0, s.at(start.Add(100*time.Millisecond)))
	assert.True(t, s.done(start.Add(100*time.Millisecond)))
	assert.True(t, still(3).done(start))
}

func TestOverlayAt(t *testing.T) {
	base := "aaaaaa\nbbbbbb\ncccccc"
	got := overlayAt(base, "XY\nZW", 2, 1, 6)
	assert.Equal(t, "aaaaaa\nbbXYbb\nccZWcc", got)

	clipped := overlayAt(base, "XY\nZW\nQQ", 0, 2, 6)
	assert.Equal(t, "aaaaaa\nbbbbbb\nXYcccc", clipped)
}
