// Package svgcanvas provides a stateful 2D drawing context,
// with a transformation matrix, a current path and a stack of
// saved graphic states, which forwards paint operations
// to an output Driver.
package svgcanvas

import (
	"math"

	"github.com/pkg/errors"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgconvert/svgpath"
)

// ErrRestoreUnderflow is returned by Restore when
// no state has been saved.
var ErrRestoreUnderflow = errors.New("restore without matching save")

// FillRule selects the inside of a self-intersecting path.
type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

// state is the part of the context saved and restored
type state struct {
	matrix     rasterx.Matrix2D
	fillRule   FillRule
	lineCap    CapMode
	lineJoin   JoinMode
	miterLimit float64
	lineWidth  float64
	dash       DashOptions
	source     Pattern
	alpha      float64
	clips      int // number of clipping paths pushed to the driver
}

var defaultState = state{
	matrix:     rasterx.Identity,
	miterLimit: 10,
	lineWidth:  2,
	source:     NewPlainColor(0, 0, 0, 0xff),
	alpha:      1,
}

// Context is the drawing context. Path commands are given in
// user space and stored in device space, so that changing the
// matrix does not affect the points already added.
// The current path is not part of the saved state.
type Context struct {
	driver Driver
	state
	stack []state

	path svgpath.Path

	// device space start of the current sub-path,
	// and whether a close requires a new sub-path
	start     fixed.Point26_6
	afterStop bool
	inPath    bool
}

// NewContext returns a context drawing on `driver`,
// with an identity matrix.
func NewContext(driver Driver) *Context {
	return &Context{driver: driver, state: defaultState}
}

// Save pushes a copy of the current graphic state.
func (c *Context) Save() {
	saved := c.state
	saved.dash.Dash = append([]float64(nil), c.dash.Dash...)
	c.stack = append(c.stack, saved)
}

// Restore pops the last saved graphic state.
func (c *Context) Restore() error {
	if len(c.stack) == 0 {
		return ErrRestoreUnderflow
	}
	clips := c.clips
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.popClips(clips - c.clips)
	return nil
}

// Depth returns the number of saved states.
func (c *Context) Depth() int { return len(c.stack) }

// Matrix returns the current transformation matrix.
func (c *Context) Matrix() rasterx.Matrix2D { return c.matrix }

// SetMatrix replaces the current transformation matrix.
func (c *Context) SetMatrix(m rasterx.Matrix2D) { c.matrix = m }

// Transform composes `m` onto the current matrix:
// `m` is applied to user coordinates first.
func (c *Context) Transform(m rasterx.Matrix2D) { c.matrix = c.matrix.Mult(m) }

// Translate composes a translation onto the current matrix.
func (c *Context) Translate(x, y float64) { c.matrix = c.matrix.Translate(x, y) }

// Scale composes a scaling onto the current matrix.
func (c *Context) Scale(x, y float64) { c.matrix = c.matrix.Scale(x, y) }

// Rotate composes a rotation, in radians, onto the current matrix.
func (c *Context) Rotate(theta float64) { c.matrix = c.matrix.Rotate(theta) }

func (c *Context) SetFillRule(r FillRule) { c.fillRule = r }

func (c *Context) FillRule() FillRule { return c.fillRule }

func (c *Context) SetLineCap(cap CapMode) { c.lineCap = cap }

func (c *Context) SetLineJoin(join JoinMode) { c.lineJoin = join }

func (c *Context) SetMiterLimit(limit float64) { c.miterLimit = limit }

// SetLineWidth sets the stroke width, in user space.
func (c *Context) SetLineWidth(width float64) { c.lineWidth = width }

// LineWidth returns the stroke width, in user space.
func (c *Context) LineWidth() float64 { return c.lineWidth }

// SetDash sets the dash pattern, in user space.
// An empty `dashes` disables dashing.
func (c *Context) SetDash(dashes []float64, offset float64) {
	c.dash = DashOptions{Dash: append([]float64(nil), dashes...), DashOffset: offset}
}

// SetSource sets the paint used by the next fill or stroke operations.
// A nil pattern or a zero alpha disables painting.
// The gradient matrices of user space gradients are combined
// with the current matrix, so that later transformations
// do not affect the source.
func (c *Context) SetSource(p Pattern, alpha float64) {
	if g, ok := p.(Gradient); ok && g.Units == UserSpaceOnUse {
		g.Matrix = c.matrix.Mult(g.Matrix)
		p = g
	}
	c.source, c.alpha = p, alpha
}

// Source returns the current paint and its alpha.
func (c *Context) Source() (Pattern, float64) { return c.source, c.alpha }

func fToFixed(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

func (c *Context) device(x, y float64) fixed.Point26_6 {
	return fToFixed(c.matrix.Transform(x, y))
}

// UserToDevice applies the current matrix.
func (c *Context) UserToDevice(x, y float64) (float64, float64) {
	return c.matrix.Transform(x, y)
}

// ensureStart starts a sub-path at the current point
// if the previous one was closed.
func (c *Context) ensureStart() {
	if c.afterStop || !c.inPath {
		c.path.Start(c.start)
		c.afterStop = false
		c.inPath = true
	}
}

// MoveTo starts a new sub-path.
func (c *Context) MoveTo(x, y float64) {
	c.start = c.device(x, y)
	c.path.Start(c.start)
	c.afterStop = false
	c.inPath = true
}

func (c *Context) LineTo(x, y float64) {
	c.ensureStart()
	c.path.Line(c.device(x, y))
}

func (c *Context) QuadTo(x1, y1, x, y float64) {
	c.ensureStart()
	c.path.QuadBezier(c.device(x1, y1), c.device(x, y))
}

func (c *Context) CubicTo(x1, y1, x2, y2, x, y float64) {
	c.ensureStart()
	c.path.CubeBezier(c.device(x1, y1), c.device(x2, y2), c.device(x, y))
}

// ClosePath closes the current sub-path; the current point
// goes back to its start.
func (c *Context) ClosePath() {
	if !c.inPath {
		return
	}
	c.path.Stop(true)
	c.afterStop = true
}

// NewPath clears the current path.
func (c *Context) NewPath() {
	c.path.Clear()
	c.inPath = false
	c.afterStop = false
}

// Path returns the current path, in device space.
// The returned slice is only valid until the next path operation.
func (c *Context) Path() svgpath.Path { return c.path }

// Fill paints the inside of the current path, then clears it.
func (c *Context) Fill() {
	c.FillPreserve()
	c.NewPath()
}

// FillPreserve paints the inside of the current path,
// keeping it for a following operation.
func (c *Context) FillPreserve() {
	if !c.paints() {
		return
	}
	filler, _ := c.driver.SetupDrawers(true, false)
	if filler == nil {
		return
	}
	filler.Clear()
	filler.SetWinding(c.fillRule == NonZero)
	c.path.AddTo(filler)
	filler.SetColor(c.source, c.alpha)
	filler.Draw()
	filler.SetWinding(true) // default is true
}

// Stroke paints the outline of the current path, then clears it.
func (c *Context) Stroke() {
	c.StrokePreserve()
	c.NewPath()
}

// StrokePreserve paints the outline of the current path,
// keeping it for a following operation.
func (c *Context) StrokePreserve() {
	if !c.paints() || c.lineWidth <= 0 {
		return
	}
	_, stroker := c.driver.SetupDrawers(false, true)
	if stroker == nil {
		return
	}
	stroker.Clear()
	stroker.SetStrokeOptions(c.strokeOptions())
	c.path.AddTo(stroker)
	stroker.SetColor(c.source, c.alpha)
	stroker.Draw()
}

// Clip intersects the clipping region with the current path,
// using the current fill rule, then clears the path.
// The clip lasts until the state is restored.
// Drivers not implementing Clipper ignore it.
func (c *Context) Clip() {
	if clipper, ok := c.driver.(Clipper); ok {
		clipper.PushClip(c.path, c.fillRule == NonZero)
		c.clips++
	}
	c.NewPath()
}

func (c *Context) popClips(n int) {
	if n <= 0 {
		return
	}
	clipper := c.driver.(Clipper)
	for i := 0; i < n; i++ {
		clipper.PopClip()
	}
}

// releaseClips pops every active clip, which do
// not survive a page change.
func (c *Context) releaseClips() {
	c.popClips(c.clips)
	c.clips = 0
	for i := range c.stack {
		c.stack[i].clips = 0
	}
}

// paints returns false when the current operation would be invisible
func (c *Context) paints() bool {
	if c.source == nil || c.alpha <= 0 || !c.path.HasSegments() {
		return false
	}
	if pc, ok := c.source.(PlainColor); ok && pc.A == 0 {
		return false
	}
	return true
}

// deviceScale returns the factor applied by the current matrix
// to lengths, averaged on both axis.
func (c *Context) deviceScale() float64 {
	m := c.matrix
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

func (c *Context) strokeOptions() StrokeOptions {
	scale := c.deviceScale()
	var dash []float64
	if len(c.dash.Dash) != 0 {
		dash = make([]float64, len(c.dash.Dash))
		for i, d := range c.dash.Dash {
			dash[i] = d * scale
		}
	}
	return StrokeOptions{
		LineWidth: fixed.Int26_6(c.lineWidth * scale * 64),
		Join: JoinOptions{
			MiterLimit: fixed.Int26_6(c.miterLimit * 64),
			LineJoin:   c.lineJoin,
			LineCap:    c.lineCap,
		},
		Dash: DashOptions{Dash: dash, DashOffset: c.dash.DashOffset * scale},
	}
}

// SetSize changes the size of the current page, in device units.
func (c *Context) SetSize(width, height float64) { c.driver.SetSize(width, height) }

// ShowPage emits the current page.
func (c *Context) ShowPage() {
	c.NewPath()
	c.releaseClips()
	c.driver.ShowPage()
}

// Finish releases the context and flushes the driver.
// The context must not be used afterwards.
func (c *Context) Finish() error {
	c.NewPath()
	c.releaseClips()
	c.stack = nil
	return c.driver.Finish()
}
