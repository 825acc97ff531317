package sheet

type intentKind int

const (
	intentFacet intentKind = iota
	intentOpen
	intentClose
	intentToggle
	intentProgress
)

// intent is one request to change the panel: a facet write, a method call,
// a gesture commit or a progress update.
type intent struct {
	kind   intentKind
	facet  string
	old    attr
	val    attr
	source string
	value  float64
}

// dispatcher applies intents one at a time in arrival order. Intents posted
// while another is being applied (from a notification handler, say) wait in
// the queue instead of running nested.
type dispatcher struct {
	queue    []intent
	draining bool
	apply    func(intent)
}

func (d *dispatcher) post(in intent) {
	d.queue = append(d.queue, in)
	if d.draining {
		return
	}
	d.draining = true
	defer func() { d.draining = false }()
	for len(d.queue) > 0 {
		next := d.queue[0]
		d.queue = d.queue[1:]
		d.apply(next)
	}
}

func (p *Panel) post(in intent) {
	p.dispatch.post(in)
}

func (p *Panel) applyIntent(in intent) {
	switch in.kind {
	case intentFacet:
		if in.old == in.val {
			return
		}
		p.applyFacet(in.facet, in.val)
	case intentOpen:
		p.applyOpen(in.source)
	case intentClose:
		p.applyClose(in.source)
	case intentToggle:
		p.applyToggle(in.source)
	case intentProgress:
		p.progress.set(in.value)
	}
}
