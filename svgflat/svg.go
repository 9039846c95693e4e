// Implements a vector backend writing a flattened SVG
// document, by wrapping github.com/ajstarks/svgo.
//
// The output contains one path element per paint operation,
// with coordinates already in device space (points): groups,
// transforms and references of the input are resolved.
package svgflat

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/pkg/errors"

	"github.com/benoitkugler/svgconvert/svgcanvas"
	"github.com/benoitkugler/svgconvert/svgpath"
)

// assert interface conformance
var (
	_ svgcanvas.Driver  = (*Renderer)(nil)
	_ svgcanvas.Filler  = (*filler)(nil)
	_ svgcanvas.Stroker = (*stroker)(nil)
)

// Renderer writes a single page SVG document.
// Only the first page is kept: ShowPage
// freezes the output.
type Renderer struct {
	body          bytes.Buffer
	canvas        *svg.SVG // writes into body
	width, height float64
	output        io.Writer
	gradients     int  // used to generate ids
	closed        bool // after the first page
}

// NewRenderer returns a renderer for a document of the given
// size, in points, which will be written to `output` (if not nil).
func NewRenderer(width, height float64, output io.Writer) *Renderer {
	r := &Renderer{width: width, height: height, output: output}
	r.canvas = svg.New(&r.body)
	return r
}

// SetupDrawers implements svgcanvas.Driver.
func (r *Renderer) SetupDrawers(willFill, willStroke bool) (f svgcanvas.Filler, s svgcanvas.Stroker) {
	if r.closed {
		return nil, nil
	}
	if willFill {
		f = &filler{pather: pather{r: r}, useNonZeroWinding: true}
	}
	if willStroke {
		s = &stroker{pather: pather{r: r}}
	}
	return f, s
}

// SetSize changes the size of the document.
func (r *Renderer) SetSize(width, height float64) {
	if r.closed {
		return
	}
	r.width, r.height = width, height
}

// ShowPage ends the page: following drawings are ignored.
func (r *Renderer) ShowPage() { r.closed = true }

// errWriter keeps the first write error, since svgo ignores them
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// Finish writes the document.
func (r *Renderer) Finish() error {
	if r.output == nil {
		return nil
	}
	out := &errWriter{w: r.output}
	doc := svg.New(out)
	doc.Startraw(
		fmt.Sprintf(`width="%spt"`, fmtFloat(r.width)),
		fmt.Sprintf(`height="%spt"`, fmtFloat(r.height)),
		fmt.Sprintf(`viewBox="0 0 %s %s"`, fmtFloat(r.width), fmtFloat(r.height)),
	)
	if _, err := io.Copy(out, &r.body); err != nil {
		return errors.Wrap(err, "writing SVG document")
	}
	doc.End()
	if out.err != nil {
		return errors.Wrap(out.err, "writing SVG document")
	}
	return nil
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func colorString(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// paint returns the style value for `pattern` and the effective opacity,
// emitting a gradient definition if needed.
func (r *Renderer) paint(pattern svgcanvas.Pattern, opacity float64, path svgpath.Path) (string, float64) {
	switch pattern := pattern.(type) {
	case svgcanvas.PlainColor:
		return colorString(pattern.NRGBA), opacity * float64(pattern.A) / 255
	case svgcanvas.Gradient:
		return r.defineGradient(pattern, opacity, path), 1
	}
	return "none", 1
}

// toPercent maps a device coordinate to a percentage of the
// [origin, origin+length] range, clamped to what svgo supports.
func toPercent(v, origin, length float64) uint8 {
	if length == 0 {
		return 0
	}
	p := math.Round((v - origin) / length * 100)
	return uint8(math.Max(0, math.Min(255, p)))
}

// defineGradient writes a gradient element expressed relatively
// to the bounding box of `path`, and returns the reference to it.
func (r *Renderer) defineGradient(g svgcanvas.Gradient, opacity float64, path svgpath.Path) string {
	bbox := path.Bounds()
	minX, minY := float64(bbox.Min.X)/64, float64(bbox.Min.Y)/64
	w, h := float64(bbox.Max.X-bbox.Min.X)/64, float64(bbox.Max.Y-bbox.Min.Y)/64
	// resolve a point of the gradient into bounding box percentages
	point := func(x, y float64) (uint8, uint8) {
		x, y = g.Matrix.Transform(x, y)
		if g.Units == svgcanvas.ObjectBoundingBox {
			return toPercent(x, 0, 1), toPercent(y, 0, 1)
		}
		return toPercent(x, minX, w), toPercent(y, minY, h)
	}

	stops := make([]svg.Offcolor, len(g.Stops))
	for i, stop := range g.Stops {
		c := color.NRGBA{A: 0xff}
		if stop.StopColor != nil {
			c = color.NRGBAModel.Convert(stop.StopColor).(color.NRGBA)
		}
		stops[i] = svg.Offcolor{
			Offset:  uint8(math.Round(math.Max(0, math.Min(1, stop.Offset)) * 100)),
			Color:   colorString(c),
			Opacity: stop.Opacity * opacity * float64(c.A) / 255,
		}
	}

	r.gradients++
	id := fmt.Sprintf("g%d", r.gradients)
	r.canvas.Def()
	switch dir := g.Direction.(type) {
	case svgcanvas.Linear:
		x1, y1 := point(dir[0], dir[1])
		x2, y2 := point(dir[2], dir[3])
		r.canvas.LinearGradient(id, x1, y1, x2, y2, stops)
	case svgcanvas.Radial:
		cx, cy := point(dir[0], dir[1])
		fx, fy := point(dir[2], dir[3])
		var radius uint8
		if g.Units == svgcanvas.ObjectBoundingBox {
			radius = toPercent(dir[4], 0, 1)
		} else {
			sx, sy := g.Matrix.TransformVector(dir[4], 0)
			radius = toPercent(math.Hypot(sx, sy), 0, math.Max(w, h))
		}
		r.canvas.RadialGradient(id, cx, cy, radius, fx, fy, stops)
	}
	r.canvas.DefEnd()
	return "url(#" + id + ")"
}

// implements the common path commands,
// shared by the filler and the stroker
type pather struct {
	svgpath.Path
	r *Renderer
}

// implements the filling operation
type filler struct {
	pather
	useNonZeroWinding bool
	pattern           svgcanvas.Pattern
	opacity           float64
}

func (f *filler) SetWinding(useNonZeroWinding bool) {
	f.useNonZeroWinding = useNonZeroWinding
}

func (f *filler) SetColor(pattern svgcanvas.Pattern, opacity float64) {
	f.pattern, f.opacity = pattern, opacity
}

func (f *filler) Draw() {
	fill, opacity := f.r.paint(f.pattern, f.opacity, f.Path)
	style := []string{"fill:" + fill, "stroke:none"}
	if opacity != 1 {
		style = append(style, "fill-opacity:"+fmtFloat(opacity))
	}
	if !f.useNonZeroWinding {
		style = append(style, "fill-rule:evenodd")
	}
	f.r.canvas.Path(f.ToSVGPath(), strings.Join(style, ";"))
}

// implements the stroking operation
type stroker struct {
	pather
	options svgcanvas.StrokeOptions
	pattern svgcanvas.Pattern
	opacity float64
}

func (s *stroker) SetStrokeOptions(options svgcanvas.StrokeOptions) {
	s.options = options
}

func (s *stroker) SetColor(pattern svgcanvas.Pattern, opacity float64) {
	s.pattern, s.opacity = pattern, opacity
}

var (
	capNames  = [...]string{svgcanvas.ButtCap: "butt", svgcanvas.SquareCap: "square", svgcanvas.RoundCap: "round"}
	joinNames = [...]string{svgcanvas.Miter: "miter", svgcanvas.Round: "round", svgcanvas.Bevel: "bevel"}
)

func (s *stroker) Draw() {
	stroke, opacity := s.r.paint(s.pattern, s.opacity, s.Path)
	style := []string{
		"fill:none",
		"stroke:" + stroke,
		"stroke-width:" + fmtFloat(float64(s.options.LineWidth)/64),
		"stroke-linecap:" + capNames[s.options.Join.LineCap],
		"stroke-linejoin:" + joinNames[s.options.Join.LineJoin],
		"stroke-miterlimit:" + fmtFloat(float64(s.options.Join.MiterLimit)/64),
	}
	if opacity != 1 {
		style = append(style, "stroke-opacity:"+fmtFloat(opacity))
	}
	if len(s.options.Dash.Dash) != 0 {
		dashes := make([]string, len(s.options.Dash.Dash))
		for i, d := range s.options.Dash.Dash {
			dashes[i] = fmtFloat(d)
		}
		style = append(style, "stroke-dasharray:"+strings.Join(dashes, ","),
			"stroke-dashoffset:"+fmtFloat(s.options.Dash.DashOffset))
	}
	s.r.canvas.Path(s.ToSVGPath(), strings.Join(style, ";"))
}
