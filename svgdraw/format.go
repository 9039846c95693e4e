package svgdraw

import (
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/benoitkugler/svgconvert/svgcanvas"
	"github.com/benoitkugler/svgconvert/svgflat"
	"github.com/benoitkugler/svgconvert/svgpdf"
	"github.com/benoitkugler/svgconvert/svgraster"
)

// Format is an output target. See PNG, SVG and PDF.
type Format interface {
	String() string

	// deviceRatio returns the number of device units per pixel
	deviceRatio(dpi float64) float64
	// newDriver returns the driver for a first page of the given size,
	// and the actual size it uses.
	newDriver(width, height float64, opts Options, output io.Writer) (svgcanvas.Driver, float64, float64)
	// multipage returns true if the svg children of the root are pages
	multipage() bool
}

var (
	// PNG renders a raster image, one device unit per pixel.
	PNG Format = pngFormat{}
	// SVG renders a flattened, single page SVG document, in points.
	SVG Format = svgFormat{}
	// PDF renders a PDF document, in points. The svg children
	// of the root element, if any, are drawn on separate pages.
	PDF Format = pdfFormat{}
)

// FormatByName returns the format for "png", "svg" or "pdf" (case insensitive).
func FormatByName(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	case "pdf":
		return PDF, nil
	}
	return nil, errors.Errorf("unsupported output format %q", name)
}

// vector outputs use points
func pointsPerPixel(dpi float64) float64 { return 72 / dpi }

type pngFormat struct{}

func (pngFormat) String() string              { return "png" }
func (pngFormat) deviceRatio(float64) float64 { return 1 }
func (pngFormat) multipage() bool             { return false }

func (pngFormat) newDriver(width, height float64, opts Options, output io.Writer) (svgcanvas.Driver, float64, float64) {
	w, h := int(math.Round(width)), int(math.Round(height))
	return svgraster.NewRenderer(w, h, opts.Background, output), float64(w), float64(h)
}

type svgFormat struct{}

func (svgFormat) String() string                  { return "svg" }
func (svgFormat) deviceRatio(dpi float64) float64 { return pointsPerPixel(dpi) }
func (svgFormat) multipage() bool                 { return false }

func (svgFormat) newDriver(width, height float64, _ Options, output io.Writer) (svgcanvas.Driver, float64, float64) {
	return svgflat.NewRenderer(width, height, output), width, height
}

type pdfFormat struct{}

func (pdfFormat) String() string                  { return "pdf" }
func (pdfFormat) deviceRatio(dpi float64) float64 { return pointsPerPixel(dpi) }
func (pdfFormat) multipage() bool                 { return true }

func (pdfFormat) newDriver(width, height float64, _ Options, output io.Writer) (svgcanvas.Driver, float64, float64) {
	return svgpdf.NewRenderer(width, height, output), width, height
}
