package svgdraw

import (
	"github.com/pkg/errors"

	"github.com/benoitkugler/svgconvert/svgpath"
	"github.com/benoitkugler/svgconvert/svgtree"
)

// pathBuilder returns the builder used by path-like elements,
// which records the vertices for the markers of the current element.
func (s *Surface) pathBuilder() *pathRecorder {
	r := &pathRecorder{b: s.ctx}
	if f := s.top(); f != nil {
		f.path = r
	}
	return r
}

// invalid handles malformed content, according to the error mode.
func (s *Surface) invalid(node *svgtree.Node, value string, err error) error {
	switch s.opts.ErrorMode {
	case StrictErrorMode:
		return errors.Wrapf(err, "<%s> %q", node.Tag, shorten(value))
	case WarnErrorMode:
		s.logger.Warn("invalid content", "tag", node.Tag, "value", shorten(value), "error", err)
	}
	return nil
}

func buildRect(s *Surface, node *svgtree.Node) error {
	width, height := s.size(node.Get("width"), axisX), s.size(node.Get("height"), axisY)
	if width <= 0 || height <= 0 {
		return nil
	}
	x, y := s.size(node.Get("x"), axisX), s.size(node.Get("y"), axisY)
	rxAttr, ryAttr := node.Get("rx"), node.Get("ry")
	if rxAttr == "" {
		rxAttr = ryAttr
	} else if ryAttr == "" {
		ryAttr = rxAttr
	}
	rx, ry := s.size(rxAttr, axisX), s.size(ryAttr, axisY)
	svgpath.AddRoundRect(s.pathBuilder(), x, y, width, height, rx, ry)
	return nil
}

func buildCircle(s *Surface, node *svgtree.Node) error {
	r := s.size(node.Get("r"), axisXY)
	if r <= 0 {
		return nil
	}
	cx, cy := s.size(node.Get("cx"), axisX), s.size(node.Get("cy"), axisY)
	svgpath.AddEllipse(s.pathBuilder(), cx, cy, r, r)
	return nil
}

func buildEllipse(s *Surface, node *svgtree.Node) error {
	rx, ry := s.size(node.Get("rx"), axisX), s.size(node.Get("ry"), axisY)
	if rx <= 0 || ry <= 0 {
		return nil
	}
	cx, cy := s.size(node.Get("cx"), axisX), s.size(node.Get("cy"), axisY)
	svgpath.AddEllipse(s.pathBuilder(), cx, cy, rx, ry)
	return nil
}

func buildLine(s *Surface, node *svgtree.Node) error {
	b := s.pathBuilder()
	b.MoveTo(s.size(node.Get("x1"), axisX), s.size(node.Get("y1"), axisY))
	b.LineTo(s.size(node.Get("x2"), axisX), s.size(node.Get("y2"), axisY))
	return nil
}

// addPoints draws the polyline given by the points attribute.
// An odd coordinate is ignored.
func addPoints(s *Surface, node *svgtree.Node, closed bool) error {
	points := parseFloats(node.Get("points"))
	if len(points)%2 == 1 {
		if err := s.invalid(node, node.Get("points"), errors.New("odd number of coordinates")); err != nil {
			return err
		}
		points = points[:len(points)-1]
	}
	if len(points) < 4 {
		return nil
	}
	b := s.pathBuilder()
	b.MoveTo(points[0], points[1])
	for i := 2; i < len(points); i += 2 {
		b.LineTo(points[i], points[i+1])
	}
	if closed {
		b.ClosePath()
	}
	return nil
}

func buildPolyline(s *Surface, node *svgtree.Node) error { return addPoints(s, node, false) }

func buildPolygon(s *Surface, node *svgtree.Node) error { return addPoints(s, node, true) }

// buildPath draws the path data up to the first error.
func buildPath(s *Surface, node *svgtree.Node) error {
	d := node.Get("d")
	if d == "" {
		return nil
	}
	if err := svgpath.Compile(d, s.pathBuilder()); err != nil {
		return s.invalid(node, d, err)
	}
	return nil
}

// buildSVG establishes the viewport of a nested svg element.
// Root elements and pages are already handled by the surface.
func buildSVG(s *Surface, node *svgtree.Node) error {
	if node.Root || node == s.page {
		return nil
	}
	width, height, viewBox, err := s.nodeFormat(node)
	if err != nil {
		s.logger.Debug("ignoring nested svg viewport", "error", err)
		return nil
	}
	s.ctx.Translate(s.size(node.Get("x"), axisX), s.size(node.Get("y"), axisY))
	s.setContextSize(width, height, viewBox)
	return nil
}

// buildUse draws the referenced element, offset by x and y.
func buildUse(s *Surface, node *svgtree.Node) error {
	href := node.Get("href")
	id, _ := parseURL(href)
	target := s.paths[id]
	if target == nil {
		return s.unresolved("element", href)
	}

	s.ctx.Save()
	s.ctx.Translate(s.size(node.Get("x"), axisX), s.size(node.Get("y"), axisY))
	err := s.draw(instantiate(target, node), s.top().strokeAndFill)
	if rerr := s.ctx.Restore(); err == nil {
		err = rerr
	}
	return err
}

// instantiate returns a copy of `target` which inherits from `use`.
// Symbols are drawn as groups.
func instantiate(target, use *svgtree.Node) *svgtree.Node {
	out := target.Clone(use.Attrs)
	out.Root = false
	if out.Tag == "symbol" {
		out.Tag = "g"
	}
	return out
}
