package ui

import "time"

// slide interpolates the sheet's vertical offset, in rows, from one resting
// place to another. An offset of 0 is fully shown.
type slide struct {
	from, to float64
	start    time.Time
	dur      time.Duration
}

func still(at float64) slide {
	return slide{from: at, to: at}
}

func (s slide) at(now time.Time) float64 {
	if s.dur <= 0 {
		return s.to
	}
	t := float64(now.Sub(s.start)) / float64(s.dur)
	switch {
	case t >= 1:
		return s.to
	case t <= 0:
		return s.from
	}
	return s.from + (s.to-s.from)*easeOutCubic(t)
}

func (s slide) done(now time.Time) bool {
	return s.dur <= 0 || !now.Before(s.start.Add(s.dur))
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}
