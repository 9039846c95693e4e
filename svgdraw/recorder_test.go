package svgdraw

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgconvert/svgcanvas"
	"github.com/benoitkugler/svgconvert/svgpath"
	"github.com/benoitkugler/svgconvert/svgtree"
)

// event is one recorded driver call
type event struct {
	Op       string // fill, stroke, clip, unclip, size or page
	Color    color.NRGBA
	Alpha    float64
	Box      [4]float64 // device bounds of the painted path
	Width    float64    // stroke only
	EvenOdd  bool       // fill only
	Gradient bool
}

// recorder is a driver logging its calls
type recorder struct {
	events []event
}

func (r *recorder) SetupDrawers(willFill, willStroke bool) (svgcanvas.Filler, svgcanvas.Stroker) {
	var (
		f svgcanvas.Filler
		s svgcanvas.Stroker
	)
	if willFill {
		f = &recordDrawer{r: r, op: "fill"}
	}
	if willStroke {
		s = &recordDrawer{r: r, op: "stroke"}
	}
	return f, s
}

func (r *recorder) SetSize(width, height float64) {
	r.events = append(r.events, event{Op: "size", Box: [4]float64{0, 0, width, height}})
}

func (r *recorder) ShowPage() { r.events = append(r.events, event{Op: "page"}) }

func (r *recorder) Finish() error { return nil }

func (r *recorder) PushClip(path svgpath.Path, useNonZeroWinding bool) {
	r.events = append(r.events, event{Op: "clip", Box: roundBox(path.Bounds()), EvenOdd: !useNonZeroWinding})
}

func (r *recorder) PopClip() { r.events = append(r.events, event{Op: "unclip"}) }

func (r *recorder) paints() []event {
	var out []event
	for _, e := range r.events {
		if e.Op == "fill" || e.Op == "stroke" {
			out = append(out, e)
		}
	}
	return out
}

type recordDrawer struct {
	svgpath.Path
	r       *recorder
	op      string
	pattern svgcanvas.Pattern
	opacity float64
	evenOdd bool
	width   float64
}

func (d *recordDrawer) SetColor(pattern svgcanvas.Pattern, opacity float64) {
	d.pattern, d.opacity = pattern, opacity
}

func (d *recordDrawer) SetWinding(useNonZeroWinding bool) { d.evenOdd = !useNonZeroWinding }

func (d *recordDrawer) SetStrokeOptions(options svgcanvas.StrokeOptions) {
	d.width = float64(options.LineWidth) / 64
}

// roundTenth absorbs the fixed point precision
func roundTenth(v float64) float64 { return math.Round(v*10) / 10 }

func roundBox(bbox fixed.Rectangle26_6) [4]float64 {
	return [4]float64{
		roundTenth(float64(bbox.Min.X) / 64), roundTenth(float64(bbox.Min.Y) / 64),
		roundTenth(float64(bbox.Max.X) / 64), roundTenth(float64(bbox.Max.Y) / 64),
	}
}

func (d *recordDrawer) Draw() {
	e := event{
		Op:      d.op,
		Alpha:   d.opacity,
		EvenOdd: d.evenOdd,
		Width:   roundTenth(d.width),
		Box:     roundBox(d.Bounds()),
	}
	switch p := d.pattern.(type) {
	case svgcanvas.PlainColor:
		e.Color = p.NRGBA
	case svgcanvas.Gradient:
		e.Color, e.Gradient = p.FirstColor(), true
	}
	d.r.events = append(d.r.events, e)
}

// recordFormat plugs a recorder in a surface
type recordFormat struct {
	ratio    float64
	pages    bool
	recorder *recorder
}

func (f *recordFormat) String() string              { return fmt.Sprintf("record(%g)", f.ratio) }
func (f *recordFormat) deviceRatio(float64) float64 { return f.ratio }
func (f *recordFormat) multipage() bool             { return f.pages }

func (f *recordFormat) newDriver(width, height float64, _ Options, _ io.Writer) (svgcanvas.Driver, float64, float64) {
	return f.recorder, width, height
}

// render draws `svg` on a recorder, with a device ratio of 1
func render(t *testing.T, svg string, opts Options) (*Surface, *recorder, error) {
	t.Helper()
	return renderWith(t, &recordFormat{ratio: 1, recorder: &recorder{}}, svg, opts)
}

func renderWith(t *testing.T, format *recordFormat, svg string, opts Options) (*Surface, *recorder, error) {
	t.Helper()
	root, err := svgtree.ParseBytes([]byte(svg))
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSurface(format, root, opts, nil)
	return s, format.recorder, err
}

// mustRender fails the test on error and returns the paint events
func mustRender(t *testing.T, svg string) []event {
	t.Helper()
	_, rec, err := render(t, svg, Options{})
	if err != nil {
		t.Fatal(err)
	}
	return rec.paints()
}

var (
	black = color.NRGBA{A: 0xff}
	red   = color.NRGBA{R: 0xff, A: 0xff}
	green = color.NRGBA{G: 0x80, A: 0xff}
	blue  = color.NRGBA{B: 0xff, A: 0xff}
)
