package sheet

import "strings"

// Facet names as they appear in the declarative representation.
const (
	FacetHeading      = "heading"
	FacetDescription  = "description"
	FacetSize         = "size"
	FacetOpen         = "open"
	FacetBlockBg      = "block-bg"
	FacetDragClose    = "drag-close"
	FacetIconLeft     = "icon-left"
	FacetIconRight    = "icon-right"
	FacetProgressMode = "progress-mode"
)

// ObservedFacets lists every facet the panel reacts to. Other names are
// stored but have no effect.
var ObservedFacets = []string{
	FacetHeading,
	FacetDescription,
	FacetSize,
	FacetOpen,
	FacetBlockBg,
	FacetDragClose,
	FacetIconLeft,
	FacetIconRight,
	FacetProgressMode,
}

func isObserved(name string) bool {
	for _, f := range ObservedFacets {
		if f == name {
			return true
		}
	}
	return false
}

// Size controls how tall the panel grows.
type Size string

const (
	SizeContent Size = "content"
	SizeFull    Size = "full"
)

// ParseSize maps a declarative value to a Size. Anything but "full" is
// content-sized.
func ParseSize(v string) Size {
	if strings.EqualFold(strings.TrimSpace(v), string(SizeFull)) {
		return SizeFull
	}
	return SizeContent
}

// ProgressMode selects how the progress indicator renders.
type ProgressMode string

const (
	ProgressNone          ProgressMode = "none"
	ProgressDeterminate   ProgressMode = "int"
	ProgressIndeterminate ProgressMode = "inf"
)

// ParseProgressMode accepts the short declarative forms and their long
// names. Unknown values mean no indicator.
func ParseProgressMode(v string) ProgressMode {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "int", "determinate":
		return ProgressDeterminate
	case "inf", "indeterminate":
		return ProgressIndeterminate
	default:
		return ProgressNone
	}
}

// Config is the typed configuration of a panel. The CTA labels exist only
// here; they have no declarative facet.
type Config struct {
	Heading      string
	Description  string
	Size         Size
	Open         bool
	BlockBg      bool
	DragClose    bool
	IconLeft     string
	IconRight    string
	CTAPrimary   string
	CTASecondary string
	ProgressMode ProgressMode
}

// DefaultConfig matches the builder defaults: content-sized, draggable,
// back/close icons, no progress.
func DefaultConfig() Config {
	return Config{
		Size:         SizeContent,
		DragClose:    true,
		IconLeft:     "back",
		IconRight:    "close",
		ProgressMode: ProgressNone,
	}
}

// Facets returns the declarative form of c. Presence flags map to an empty
// value when set and are omitted otherwise, as are empty strings.
func (c Config) Facets() map[string]string {
	out := make(map[string]string)
	setText := func(name, v string) {
		if v != "" {
			out[name] = v
		}
	}
	setFlag := func(name string, on bool) {
		if on {
			out[name] = ""
		}
	}
	setText(FacetHeading, c.Heading)
	setText(FacetDescription, c.Description)
	if c.Size != "" {
		out[FacetSize] = string(c.Size)
	}
	setFlag(FacetOpen, c.Open)
	setFlag(FacetBlockBg, c.BlockBg)
	setFlag(FacetDragClose, c.DragClose)
	setText(FacetIconLeft, c.IconLeft)
	setText(FacetIconRight, c.IconRight)
	if c.ProgressMode != "" && c.ProgressMode != ProgressNone {
		out[FacetProgressMode] = string(c.ProgressMode)
	}
	return out
}
