package svgcanvas

import (
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgconvert/svgpath"
)

// Drawer knows how to do the actual draw operations
// but doesn't need any SVG kwowledge
// In particular, tranformations matrix are already applied to the points
// before sending them to the Drawer.
type Drawer interface {
	// Clear must reset the internal state (used before starting a new path painting)
	Clear()

	svgpath.Adder

	// SetColor set the color for the current path
	SetColor(color Pattern, opacity float64)

	// Draw fills or strokes the accumulated path using the current settings
	// depending on the filling mode
	Draw()
}

type Filler interface {
	Drawer

	// Decide to use or not the NonZeroWinding rule for the current path
	SetWinding(useNonZeroWinding bool)
}

type Stroker interface {
	Drawer

	// Parametrize the stroking style for the current path
	SetStrokeOptions(options StrokeOptions)
}

// Driver is an output backend (raster image, vector document...).
type Driver interface {
	// SetupDrawers returns the backend painters, and
	// will be called at the begining of every paint operation.
	// If the `willXXX` boolean is false, the returned drawer should be nil
	// to avoid useless operations.
	SetupDrawers(willFill, willStroke bool) (Filler, Stroker)

	// SetSize changes the size of the current page, in device units.
	// Backends with a fixed canvas may ignore it.
	SetSize(width, height float64)

	// ShowPage emits the current page; following operations
	// are drawn on a new one.
	ShowPage()

	// Finish flushes the output. No drawing may happen afterwards.
	Finish() error
}

// Clipper is implemented by drivers supporting clipping paths.
// Clips are nested: PopClip removes the last pushed one.
type Clipper interface {
	// PushClip intersects the clipping region with `path`,
	// given in device space.
	PushClip(path svgpath.Path, useNonZeroWinding bool)
	PopClip()
}

type DashOptions struct {
	Dash       []float64 // values for the dash pattern (nil or an empty slice for no dashes)
	DashOffset float64   // starting offset into the dash array
}

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join
const (
	Miter JoinMode = iota // default value
	Round
	Bevel
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	ButtCap CapMode = iota // default value
	SquareCap
	RoundCap
)

func (c CapMode) String() string {
	switch c {
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	default:
		return "<unknown CapMode>"
	}
}

type JoinOptions struct {
	MiterLimit fixed.Int26_6 // the miter cutoff value, as a ratio of the line width
	LineJoin   JoinMode
	LineCap    CapMode // used at both ends of open sub-paths
}

// StrokeOptions are expressed in device space.
type StrokeOptions struct {
	LineWidth fixed.Int26_6 // width of the line
	Join      JoinOptions
	Dash      DashOptions
}
