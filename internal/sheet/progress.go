package sheet

import "math"

// Progress is the state of the panel's progress indicator.
type Progress struct {
	mode  ProgressMode
	value float64
}

// Mode returns the indicator mode.
func (pr Progress) Mode() ProgressMode {
	if pr.mode == "" {
		return ProgressNone
	}
	return pr.mode
}

// Value returns the last value set, in [0,1]. Indeterminate mode ignores it.
func (pr Progress) Value() float64 {
	return pr.value
}

// Removed reports whether the indicator takes no space at all.
func (pr Progress) Removed() bool {
	return pr.Mode() == ProgressNone
}

// Complete reports whether a determinate indicator reached 1.
func (pr Progress) Complete() bool {
	return pr.Mode() == ProgressDeterminate && pr.value >= 1
}

// Visible reports whether the indicator is drawn. Reaching 1 in
// determinate mode dismisses it.
func (pr Progress) Visible() bool {
	switch pr.Mode() {
	case ProgressIndeterminate:
		return true
	case ProgressDeterminate:
		return !pr.Complete()
	default:
		return false
	}
}

// Percent returns the fill as a whole percentage.
func (pr Progress) Percent() int {
	return int(math.Round(pr.value * 100))
}

func (pr *Progress) setMode(m ProgressMode) {
	pr.mode = m
}

func (pr *Progress) set(v float64) {
	pr.value = clampUnit(v)
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// SetProgress sets the indicator value, clamped to [0,1]. In determinate
// mode a value of 1 hides the indicator; a later value below 1 shows it
// again.
func (p *Panel) SetProgress(v float64) *Panel {
	p.post(intent{kind: intentProgress, value: v, source: "method"})
	return p
}

// Progress returns the indicator state.
func (p *Panel) Progress() Progress {
	return p.progress
}
