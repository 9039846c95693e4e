package svgcanvas

import (
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
)

// Pattern is either PlainColor or Gradient
type Pattern interface {
	isPattern()
}

// PlainColor is a flat color source.
type PlainColor struct {
	color.NRGBA
}

// NewPlainColor returns a PlainColor from its components.
func NewPlainColor(r, g, b, a uint8) PlainColor {
	return PlainColor{color.NRGBA{R: r, G: g, B: b, A: a}}
}

// Transparent paints nothing.
var Transparent = PlainColor{}

func (PlainColor) isPattern() {}
func (Gradient) isPattern()   {}

// GradientUnits is the type for gradient units
type GradientUnits byte

// SVG bounds paremater constants
const (
	ObjectBoundingBox GradientUnits = iota
	UserSpaceOnUse
)

// SpreadMethod is the type for spread parameters
type SpreadMethod byte

// SVG spread parameter constants
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// GradStop represents a stop in the SVG 2.0 gradient specification
type GradStop struct {
	StopColor color.Color
	Offset    float64
	Opacity   float64
}

// Bounds defines a bounding box, such as a viewport
// or a path extent.
type Bounds struct{ X, Y, W, H float64 }

// Gradient holds a description of an SVG 2.0 gradient
type Gradient struct {
	Direction GradientDirecter
	Stops     []GradStop
	Bounds    Bounds
	// Matrix maps gradient space to user space, until
	// the gradient is set as source of a Context,
	// which then locks it to device space.
	Matrix rasterx.Matrix2D
	Spread SpreadMethod
	Units  GradientUnits
}

// GradientDirecter is either Linear or Radial
type GradientDirecter interface {
	isRadial() bool
}

// x1, y1, x2, y2
type Linear [4]float64

func (Linear) isRadial() bool { return false }

// cx, cy, fx, fy, r, fr
type Radial [6]float64

func (Radial) isRadial() bool { return true }

// IsRadial returns true for radial gradients.
func (g Gradient) IsRadial() bool { return g.Direction != nil && g.Direction.isRadial() }

// FirstColor returns the color of the first stop, with its
// opacity applied, or transparent if the gradient has no stop.
// Backends without gradient support use it as fallback.
func (g Gradient) FirstColor() color.NRGBA {
	if len(g.Stops) == 0 || g.Stops[0].StopColor == nil {
		return color.NRGBA{}
	}
	c := color.NRGBAModel.Convert(g.Stops[0].StopColor).(color.NRGBA)
	c.A = uint8(math.Round(float64(c.A) * math.Max(0, math.Min(1, g.Stops[0].Opacity))))
	return c
}
