// Implements a raster backend to render SVG images,
// by wrapping rasterx.
package svgraster

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/srwiley/rasterx"

	"github.com/benoitkugler/svgconvert/svgcanvas"
)

// assert interface conformance
var (
	_ svgcanvas.Driver  = (*Renderer)(nil)
	_ svgcanvas.Filler  = filler{}
	_ svgcanvas.Stroker = stroker{}
)

// Renderer draws on an RGBA image, and optionnaly
// encodes it as PNG when finished.
type Renderer struct {
	img    *image.RGBA
	dasher *rasterx.Dasher // to avoid shared state
	filler *rasterx.Filler // we use separated instance
	output io.Writer
}

// NewRenderer returns a renderer drawing on a new image of the given size,
// initialized with `background` (which may be nil for a transparent one).
// If `output` is not nil, the image is written to it in PNG format
// by Finish.
func NewRenderer(width, height int, background color.Color, output io.Writer) *Renderer {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	}
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	return &Renderer{
		img:    img,
		dasher: rasterx.NewDasher(width, height, scanner),
		filler: rasterx.NewFiller(width, height, scanner),
		output: output,
	}
}

// Image returns the image drawn so far.
func (rd *Renderer) Image() *image.RGBA { return rd.img }

// SetupDrawers implements svgcanvas.Driver.
func (rd *Renderer) SetupDrawers(willFill, willStroke bool) (f svgcanvas.Filler, s svgcanvas.Stroker) {
	if willFill {
		f = filler{rd.filler}
	}
	if willStroke {
		s = stroker{rd.dasher}
	}
	return f, s
}

// SetSize is a no-op: the canvas size is fixed at creation.
func (rd *Renderer) SetSize(width, height float64) {}

// ShowPage is a no-op: only one page is supported.
func (rd *Renderer) ShowPage() {}

// Finish encodes the image to the output, if any.
func (rd *Renderer) Finish() error {
	if rd.output == nil {
		return nil
	}
	if err := png.Encode(rd.output, rd.img); err != nil {
		return errors.Wrap(err, "encoding PNG")
	}
	return nil
}

type filler struct {
	*rasterx.Filler
}

func (f filler) SetColor(color svgcanvas.Pattern, opacity float64) {
	setColorFromPattern(color, opacity, f.Scanner)
}

type stroker struct {
	*rasterx.Dasher
}

func (s stroker) SetColor(color svgcanvas.Pattern, opacity float64) {
	setColorFromPattern(color, opacity, s.Scanner)
}

func (s stroker) SetStrokeOptions(options svgcanvas.StrokeOptions) {
	s.SetStroke(
		options.LineWidth, options.Join.MiterLimit, capToFunc[options.Join.LineCap],
		capToFunc[options.Join.LineCap], rasterx.FlatGap,
		joinToJoin[options.Join.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
}

func toRasterxGradient(grad svgcanvas.Gradient) rasterx.Gradient {
	var (
		points   [5]float64
		isRadial bool
	)
	switch dir := grad.Direction.(type) {
	case svgcanvas.Linear:
		points[0], points[1], points[2], points[3] = dir[0], dir[1], dir[2], dir[3]
		isRadial = false
	case svgcanvas.Radial:
		points[0], points[1], points[2], points[3], points[4], _ = dir[0], dir[1], dir[2], dir[3], dir[4], dir[5] // in rasterx fr is ignored
		isRadial = true
	}
	stops := make([]rasterx.GradStop, len(grad.Stops))
	for i := range grad.Stops {
		stops[i] = rasterx.GradStop(grad.Stops[i])
	}
	return rasterx.Gradient{
		Points:   points,
		Stops:    stops,
		Bounds:   grad.Bounds,
		Matrix:   grad.Matrix,
		Spread:   rasterx.SpreadMethod(grad.Spread),
		Units:    rasterx.GradientUnits(grad.Units),
		IsRadial: isRadial,
	}
}

// resolve gradient color
func setColorFromPattern(color svgcanvas.Pattern, opacity float64, scanner rasterx.Scanner) {
	switch fillerColor := color.(type) {
	case svgcanvas.PlainColor:
		scanner.SetColor(withOpacity(fillerColor.NRGBA, opacity))
	case svgcanvas.Gradient:
		if fillerColor.Units == svgcanvas.ObjectBoundingBox {
			fRect := scanner.GetPathExtent()
			mnx, mny := float64(fRect.Min.X)/64, float64(fRect.Min.Y)/64
			mxx, mxy := float64(fRect.Max.X)/64, float64(fRect.Max.Y)/64
			fillerColor.Bounds.X, fillerColor.Bounds.Y = mnx, mny
			fillerColor.Bounds.W, fillerColor.Bounds.H = mxx-mnx, mxy-mny
		}
		rasterxGradient := toRasterxGradient(fillerColor)
		scanner.SetColor(rasterxGradient.GetColorFunction(opacity))
	}
}

// withOpacity multiplies the alpha of `c`, which
// is kept (contrary to rasterx.ApplyOpacity)
func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * math.Max(0, math.Min(1, opacity))))
	return c
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgcanvas.Round: rasterx.Round,
		svgcanvas.Bevel: rasterx.Bevel,
		svgcanvas.Miter: rasterx.Miter,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgcanvas.ButtCap:   rasterx.ButtCap,
		svgcanvas.SquareCap: rasterx.SquareCap,
		svgcanvas.RoundCap:  rasterx.RoundCap,
	}
)
