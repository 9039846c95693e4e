package svgdraw

import (
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/srwiley/rasterx"

	"github.com/benoitkugler/svgconvert/svgcanvas"
	"github.com/benoitkugler/svgconvert/svgtree"
)

// PageSize is the size of an emitted page, in device units.
type PageSize struct {
	Width, Height float64
}

// Surface draws one SVG document on one output.
// It is created by NewSurface, which renders the whole document,
// and must be released with Finish.
type Surface struct {
	format Format
	opts   Options
	logger hclog.Logger
	dpi    float64
	ratio  float64 // device units per user unit

	driver svgcanvas.Driver
	ctx    *svgcanvas.Context

	root   *svgtree.Node
	parent *svgtree.Node // node being visited
	page   *svgtree.Node // current page, in multi-page mode
	frames []*frame

	// definitions, by id
	markers   map[string]*svgtree.Node
	gradients map[string]*svgtree.Node
	patterns  map[string]*svgtree.Node
	paths     map[string]*svgtree.Node

	pageSizes []PageSize

	// device size of the first page
	width, height float64

	// current viewport size, in user units, used for percentages
	contextWidth, contextHeight float64
	fontSize                    float64
}

// NewSurface renders `root` using the given output format.
// The result is written to `output`, if not nil, by Finish.
func NewSurface(format Format, root *svgtree.Node, opts Options, output io.Writer) (*Surface, error) {
	opts = opts.withDefaults()
	s := &Surface{
		format:    format,
		opts:      opts,
		logger:    opts.Logger,
		dpi:       opts.DPI,
		ratio:     format.deviceRatio(opts.DPI),
		root:      root,
		markers:   make(map[string]*svgtree.Node),
		gradients: make(map[string]*svgtree.Node),
		patterns:  make(map[string]*svgtree.Node),
		paths:     make(map[string]*svgtree.Node),
	}
	s.fontSize = 12 * s.dpi / 72

	width, height, viewBox, err := s.nodeFormat(root)
	if err != nil {
		return nil, err
	}
	s.driver, s.width, s.height = format.newDriver(width*s.ratio, height*s.ratio, opts, output)
	if s.width <= 0 || s.height <= 0 {
		return nil, errors.Wrapf(ErrMissingDimensions, "%s output is %gx%g", format, s.width, s.height)
	}
	s.pageSizes = append(s.pageSizes, PageSize{s.width, s.height})
	s.ctx = svgcanvas.NewContext(s.driver)
	s.ctx.Scale(s.ratio, s.ratio)
	s.setContextSize(width, height, viewBox)
	s.ctx.MoveTo(0, 0)

	s.indexDefinitions(root)

	s.logger.Debug("drawing", "format", format, "width", s.width, "height", s.height)
	if format.multipage() {
		err = s.drawPages()
	} else {
		err = s.draw(root, true)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// PageSizes returns the size of each emitted page.
func (s *Surface) PageSizes() []PageSize { return s.pageSizes }

// Finish flushes the output.
func (s *Surface) Finish() error {
	return errors.Wrapf(s.ctx.Finish(), "finishing %s output", s.format)
}

// nodeFormat resolves the viewport of an svg element:
// width and height default to 100% and fall back on the viewbox.
func (s *Surface) nodeFormat(node *svgtree.Node) (width, height float64, viewBox *svgcanvas.Bounds, err error) {
	widthAttr, heightAttr := node.Get("width"), node.Get("height")
	if widthAttr == "" {
		widthAttr = "100%"
	}
	if heightAttr == "" {
		heightAttr = "100%"
	}
	width = s.size(widthAttr, axisX)
	height = s.size(heightAttr, axisY)

	if vb := parseFloats(node.Get("viewBox")); len(vb) == 4 && vb[2] > 0 && vb[3] > 0 {
		viewBox = &svgcanvas.Bounds{X: vb[0], Y: vb[1], W: vb[2], H: vb[3]}
		if width == 0 {
			width = vb[2]
		}
		if height == 0 {
			height = vb[3]
		}
	}
	if viewBox == nil && (width <= 0 || height <= 0) {
		return 0, 0, nil, errors.Wrapf(ErrMissingDimensions, "<%s> element", node.Tag)
	}
	return width, height, viewBox, nil
}

// setContextSize fits the viewbox (if any) in the viewport of
// size width x height, preserving the aspect ratio
// and centering it.
func (s *Surface) setContextSize(width, height float64, viewBox *svgcanvas.Bounds) {
	if viewBox == nil {
		s.contextWidth, s.contextHeight = width, height
		return
	}
	x, y := width/viewBox.W, height/viewBox.H
	switch {
	case x > y:
		s.ctx.Translate((width-viewBox.W*y)/2, 0)
		s.ctx.Scale(y, y)
		s.ctx.Translate(-viewBox.X, -viewBox.Y/y*x)
	case x < y:
		s.ctx.Translate(0, (height-viewBox.H*x)/2)
		s.ctx.Scale(x, x)
		s.ctx.Translate(-viewBox.X/x*y, -viewBox.Y)
	default:
		s.ctx.Scale(x, y)
		s.ctx.Translate(-viewBox.X, -viewBox.Y)
	}
	s.contextWidth, s.contextHeight = viewBox.W, viewBox.H
}

// drawPages draws each svg child of the root on its own page,
// or the root itself when it has none.
func (s *Surface) drawPages() error {
	var pages []*svgtree.Node
	for _, child := range s.root.Children {
		if child.Tag == "svg" {
			pages = append(pages, child)
		}
	}
	if len(pages) == 0 {
		return s.draw(s.root, true)
	}

	s.pageSizes = s.pageSizes[:0]
	for _, page := range pages {
		width, height, viewBox, err := s.nodeFormat(page)
		if err != nil {
			return err
		}
		size := PageSize{width * s.ratio, height * s.ratio}
		s.pageSizes = append(s.pageSizes, size)
		s.ctx.SetSize(size.Width, size.Height)

		depth := s.ctx.Depth()
		s.ctx.Save()
		s.ctx.SetMatrix(rasterx.Identity.Scale(s.ratio, s.ratio))
		s.setContextSize(width, height, viewBox)
		s.page = page
		if err := s.draw(page, true); err != nil {
			return err
		}
		// root pages keep their own state: unwind it with the page one
		for s.ctx.Depth() > depth {
			if err := s.ctx.Restore(); err != nil {
				return err
			}
		}
		s.ctx.ShowPage()
	}
	s.page = nil
	return nil
}

// unresolved handles a missing reference, according to the error mode.
func (s *Surface) unresolved(kind, ref string) error {
	switch s.opts.ErrorMode {
	case StrictErrorMode:
		return errors.Wrapf(ErrUnresolvedReference, "%s %q", kind, ref)
	case WarnErrorMode:
		s.logger.Warn("unresolved reference", "kind", kind, "ref", ref)
	}
	return nil
}

// parseURL extracts the id of `url(#id) [fallback]` or `#id`.
// The remaining text after the url is returned as `fallback`.
func parseURL(value string) (id, fallback string) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "url(") {
		end := strings.IndexByte(value, ')')
		if end == -1 {
			return "", ""
		}
		id = strings.Trim(value[len("url("):end], ` "'`)
		fallback = strings.TrimSpace(value[end+1:])
	} else {
		id = value
	}
	if i := strings.IndexByte(id, '#'); i != -1 {
		id = id[i+1:]
	}
	return id, fallback
}
