// Implements a PDF backend to render SVG images,
// by wrapping github.com/benoitkugler/pdf.
//
// Each page is a content stream whose coordinate system
// is flipped, so that the device space matches the SVG one
// (origin at the top left, y axis going down).
package svgpdf

import (
	"image/color"
	"io"

	"github.com/benoitkugler/pdf/contentstream"
	"github.com/benoitkugler/pdf/model"
	"github.com/pkg/errors"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgconvert/svgcanvas"
	"github.com/benoitkugler/svgconvert/svgpath"
)

// assert interface conformance
var (
	_ svgcanvas.Driver  = (*Renderer)(nil)
	_ svgcanvas.Clipper = (*Renderer)(nil)
	_ svgcanvas.Filler  = (*filler)(nil)
	_ svgcanvas.Stroker = (*stroker)(nil)
)

// Renderer writes a multi-page PDF document.
type Renderer struct {
	doc           model.Document
	page          *contentstream.Appearance // lazily created
	width, height float64                   // size of the next page to create
	output        io.Writer

	fillOpacityStates   map[float64]*model.GraphicState
	strokeOpacityStates map[float64]*model.GraphicState
}

// NewRenderer return a renderer whose first page has
// the given size, in PDF points. The document is written to `output`
// when finished, if it is not nil.
func NewRenderer(width, height float64, output io.Writer) *Renderer {
	return &Renderer{
		width:               width,
		height:              height,
		output:              output,
		fillOpacityStates:   make(map[float64]*model.GraphicState),
		strokeOpacityStates: make(map[float64]*model.GraphicState),
	}
}

func (r *Renderer) currentPage() *contentstream.Appearance {
	if r.page == nil {
		page := contentstream.NewAppearance(r.width, r.height)
		page.Ops(
			contentstream.OpSave{},
			contentstream.OpConcat{Matrix: model.Matrix{1, 0, 0, -1, 0, r.height}},
		)
		r.page = &page
	}
	return r.page
}

// SetupDrawers implements svgcanvas.Driver.
func (r *Renderer) SetupDrawers(willFill, willStroke bool) (f svgcanvas.Filler, s svgcanvas.Stroker) {
	page := r.currentPage()
	if willFill {
		f = &filler{pather: pather{pdf: page}, fillOpacityStates: r.fillOpacityStates, useNonZeroWinding: true}
	}
	if willStroke {
		s = &stroker{pather: pather{pdf: page}, strokeOpacityStates: r.strokeOpacityStates}
	}
	return f, s
}

// SetSize sets the size of the current page, if nothing has been
// drawn on it yet, or of the next one.
func (r *Renderer) SetSize(width, height float64) {
	r.width, r.height = width, height
}

// ShowPage closes the current page, which may be empty.
func (r *Renderer) ShowPage() {
	page := r.currentPage()
	page.Ops(contentstream.OpRestore{})
	po := new(model.PageObject)
	page.ApplyToPageObject(po, true)
	r.doc.Catalog.Pages.Kids = append(r.doc.Catalog.Pages.Kids, po)
	r.page = nil
}

// PageCount returns the number of pages emitted so far.
func (r *Renderer) PageCount() int { return len(r.doc.Catalog.Pages.Kids) }

// Finish closes the last page and writes the document.
func (r *Renderer) Finish() error {
	if r.page != nil || r.PageCount() == 0 {
		r.ShowPage()
	}
	if r.output == nil {
		return nil
	}
	if err := r.doc.Write(r.output, nil); err != nil {
		return errors.Wrap(err, "writing PDF document")
	}
	return nil
}

// PushClip implements svgcanvas.Clipper: the clip is
// enclosed in a saved graphic state, restored by PopClip.
func (r *Renderer) PushClip(path svgpath.Path, useNonZeroWinding bool) {
	page := r.currentPage()
	p := pather{pdf: page}
	path.AddTo(&p)
	page.Ops(contentstream.OpSave{})
	page.Ops(p.ops...)
	if useNonZeroWinding {
		page.Ops(contentstream.OpClip{})
	} else {
		page.Ops(contentstream.OpEOClip{})
	}
	page.Ops(contentstream.OpEndPath{})
}

// PopClip implements svgcanvas.Clipper.
func (r *Renderer) PopClip() {
	r.currentPage().Ops(contentstream.OpRestore{})
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

// implements the common path commands,
// shared by the filler and the stroker.
// Path operations are buffered, since PDF forbids
// changing colors between path construction and painting.
type pather struct {
	pdf     *contentstream.Appearance
	ops     []contentstream.Operation
	current fixed.Point26_6
}

func (p *pather) Clear() {
	p.ops = p.ops[:0]
}

func (p *pather) Start(a fixed.Point26_6) {
	x, y := fixedTof(a)
	p.ops = append(p.ops, contentstream.OpMoveTo{X: x, Y: y})
	p.current = a
}

func (p *pather) Line(b fixed.Point26_6) {
	x, y := fixedTof(b)
	p.ops = append(p.ops, contentstream.OpLineTo{X: x, Y: y})
	p.current = b
}

// PDF has no quadratic curves: they are elevated to cubic ones
func (p *pather) QuadBezier(b fixed.Point26_6, c fixed.Point26_6) {
	x0, y0 := fixedTof(p.current)
	cx, cy := fixedTof(b)
	x, y := fixedTof(c)
	p.ops = append(p.ops, contentstream.OpCubicTo{
		X1: x0 + 2./3*(cx-x0), Y1: y0 + 2./3*(cy-y0),
		X2: x + 2./3*(cx-x), Y2: y + 2./3*(cy-y),
		X3: x, Y3: y,
	})
	p.current = c
}

func (p *pather) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.ops = append(p.ops, contentstream.OpCubicTo{X1: cx0, Y1: cy0, X2: cx1, Y2: cy1, X3: x, Y3: y})
	p.current = d
}

func (p *pather) Stop(closeLoop bool) {
	if closeLoop {
		p.ops = append(p.ops, contentstream.OpClosePath{})
	}
}

// resolvePattern returns the flat color used for `pattern`.
// Gradients are approximated by their first stop.
func resolvePattern(pattern svgcanvas.Pattern) color.NRGBA {
	switch pattern := pattern.(type) {
	case svgcanvas.PlainColor:
		return pattern.NRGBA
	case svgcanvas.Gradient:
		return pattern.FirstColor()
	}
	return color.NRGBA{}
}

// opacityState returns the cached graphic state for `opacity`
func opacityState(cache map[float64]*model.GraphicState, opacity float64, stroke bool) *model.GraphicState {
	gs, ok := cache[opacity]
	if !ok {
		gs = &model.GraphicState{BM: []model.Name{"Normal"}}
		if stroke {
			gs.CA = model.ObjFloat(opacity)
		} else {
			gs.Ca = model.ObjFloat(opacity)
		}
		cache[opacity] = gs
	}
	return gs
}

// implements the filling operation
type filler struct {
	pather
	useNonZeroWinding bool
	fillOpacityStates map[float64]*model.GraphicState
	color             color.NRGBA
	opacity           float64
}

func (f *filler) SetWinding(useNonZeroWinding bool) {
	f.useNonZeroWinding = useNonZeroWinding
}

func (f *filler) SetColor(pattern svgcanvas.Pattern, opacity float64) {
	f.color, f.opacity = resolvePattern(pattern), opacity
}

func (f *filler) Draw() {
	f.pdf.SetColorFill(f.color)
	opacity := f.opacity * float64(f.color.A) / 255.
	name := f.pdf.AddExtGState(opacityState(f.fillOpacityStates, opacity, false))
	f.pdf.Ops(contentstream.OpSetExtGState{Dict: name})
	f.pdf.Ops(f.ops...)
	if f.useNonZeroWinding {
		f.pdf.Ops(contentstream.OpFill{})
	} else {
		f.pdf.Ops(contentstream.OpEOFill{})
	}
}

// implements the stroking operation
type stroker struct {
	pather
	strokeOpacityStates map[float64]*model.GraphicState
	options             []contentstream.Operation
	color               color.NRGBA
	opacity             float64
}

func (s *stroker) SetStrokeOptions(options svgcanvas.StrokeOptions) {
	var capStyle, joinStyle uint8
	switch options.Join.LineCap {
	case svgcanvas.ButtCap:
		capStyle = 0
	case svgcanvas.RoundCap:
		capStyle = 1
	case svgcanvas.SquareCap:
		capStyle = 2
	}
	switch options.Join.LineJoin {
	case svgcanvas.Bevel:
		joinStyle = 2
	case svgcanvas.Miter:
		joinStyle = 0
	case svgcanvas.Round:
		joinStyle = 1
	}

	s.options = []contentstream.Operation{
		contentstream.OpSetDash{Dash: model.DashPattern{
			Array: options.Dash.Dash,
			Phase: options.Dash.DashOffset,
		}},
		contentstream.OpSetLineWidth{W: float64(options.LineWidth) / 64},
		contentstream.OpSetLineCap{Style: capStyle},
		contentstream.OpSetLineJoin{Style: joinStyle},
		contentstream.OpSetMiterLimit{Limit: float64(options.Join.MiterLimit) / 64},
	}
}

func (s *stroker) SetColor(pattern svgcanvas.Pattern, opacity float64) {
	s.color, s.opacity = resolvePattern(pattern), opacity
}

func (s *stroker) Draw() {
	s.pdf.SetColorStroke(s.color)
	opacity := s.opacity * float64(s.color.A) / 255.
	name := s.pdf.AddExtGState(opacityState(s.strokeOpacityStates, opacity, true))
	s.pdf.Ops(contentstream.OpSetExtGState{Dict: name})
	s.pdf.Ops(s.options...)
	s.pdf.Ops(s.ops...)
	s.pdf.Ops(contentstream.OpStroke{})
}
