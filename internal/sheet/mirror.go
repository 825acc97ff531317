package sheet

import (
	"log/slog"

	"github.com/sahilm/fuzzy"

	"github.com/asheshgoplani/sheetdeck/internal/logging"
)

var mirrorLog = logging.ForComponent(logging.CompMirror)

// attr is one declarative value. An absent attribute is the zero value, so
// presence flags compare correctly.
type attr struct {
	value   string
	present bool
}

func presentAttr(v string) attr { return attr{value: v, present: true} }

// mirror is the declarative side of the panel. External writes notify
// changed; reflected writes, made when internal state already matches, do
// not, so a facet never re-enters its own update.
type mirror struct {
	attrs      map[string]attr
	reflecting map[string]bool
	changed    func(name string, old, val attr)
}

func newMirror(changed func(name string, old, val attr)) *mirror {
	return &mirror{
		attrs:      make(map[string]attr),
		reflecting: make(map[string]bool),
		changed:    changed,
	}
}

func (m *mirror) get(name string) attr {
	return m.attrs[name]
}

func (m *mirror) write(name string, v attr) {
	old := m.attrs[name]
	if old == v {
		return
	}
	if v.present {
		m.attrs[name] = v
	} else {
		delete(m.attrs, name)
	}
	if m.reflecting[name] {
		return
	}
	m.changed(name, old, v)
}

func (m *mirror) reflect(name string, v attr) {
	m.reflecting[name] = true
	defer delete(m.reflecting, name)
	m.write(name, v)
}

// SetAttribute writes a declarative facet. Unknown names are stored and
// otherwise ignored.
func (p *Panel) SetAttribute(name, value string) *Panel {
	p.mirror.write(name, presentAttr(value))
	return p
}

// RemoveAttribute clears a declarative facet.
func (p *Panel) RemoveAttribute(name string) *Panel {
	p.mirror.write(name, attr{})
	return p
}

// ToggleAttribute sets or clears a presence facet.
func (p *Panel) ToggleAttribute(name string, on bool) *Panel {
	if on {
		return p.SetAttribute(name, "")
	}
	return p.RemoveAttribute(name)
}

// Attribute returns the declarative value of a facet.
func (p *Panel) Attribute(name string) (string, bool) {
	a := p.mirror.get(name)
	return a.value, a.present
}

// HasAttribute reports whether a facet is present.
func (p *Panel) HasAttribute(name string) bool {
	return p.mirror.get(name).present
}

// Attributes returns a copy of the declarative representation.
func (p *Panel) Attributes() map[string]string {
	out := make(map[string]string, len(p.mirror.attrs))
	for k, v := range p.mirror.attrs {
		out[k] = v.value
	}
	return out
}

func (p *Panel) attributeChanged(name string, old, val attr) {
	if !isObserved(name) {
		attrs := []any{slog.String("panel", p.id), slog.String("facet", name)}
		if matches := fuzzy.Find(name, ObservedFacets); len(matches) > 0 {
			attrs = append(attrs, slog.String("did_you_mean", matches[0].Str))
		}
		mirrorLog.Debug("facet_ignored", attrs...)
		return
	}
	p.post(intent{kind: intentFacet, facet: name, old: old, val: val, source: "attribute"})
}

// applyFacet runs the update function for one facet. The typed state is
// compared before mutating, so a change that converges on the current value
// does nothing.
func (p *Panel) applyFacet(name string, v attr) {
	switch name {
	case FacetHeading:
		if p.cfg.Heading == v.value {
			return
		}
		p.cfg.Heading = v.value
	case FacetDescription:
		if p.cfg.Description == v.value {
			return
		}
		p.cfg.Description = v.value
	case FacetSize:
		size := ParseSize(v.value)
		if p.cfg.Size == size {
			return
		}
		p.cfg.Size = size
	case FacetOpen:
		p.cfg.Open = v.present
		if !v.present {
			stopTimer(&p.startupTimer)
		}
		if !p.attached {
			// Attach defers the first open
			return
		}
		if v.present {
			p.applyOpen("attribute")
		} else {
			p.applyClose("attribute")
		}
		return
	case FacetBlockBg:
		if p.cfg.BlockBg == v.present {
			return
		}
		p.cfg.BlockBg = v.present
	case FacetDragClose:
		if p.cfg.DragClose == v.present {
			return
		}
		p.cfg.DragClose = v.present
		if !v.present {
			// The handle is gone; a session in flight cannot finish
			p.endDrag(DragCancelled)
		}
	case FacetIconLeft:
		if p.cfg.IconLeft == v.value {
			return
		}
		p.cfg.IconLeft = v.value
	case FacetIconRight:
		if p.cfg.IconRight == v.value {
			return
		}
		p.cfg.IconRight = v.value
	case FacetProgressMode:
		p.progress.setMode(ParseProgressMode(v.value))
		p.cfg.ProgressMode = p.progress.Mode()
	default:
		return
	}
	mirrorLog.Debug("facet_applied",
		slog.String("panel", p.id),
		slog.String("facet", name),
		slog.String("value", v.value),
		slog.Bool("present", v.present))
}
