package svgdraw

import (
	"github.com/srwiley/rasterx"

	"github.com/benoitkugler/svgconvert/svgcanvas"
	"github.com/benoitkugler/svgconvert/svgtree"
)

// gradientOrPattern fills the current path with the paint
// server referenced by `value`, such as url(#grad).
func (s *Surface) gradientOrPattern(node *svgtree.Node, value string, opacity float64) error {
	pattern, err := s.paintServer(node, value)
	if err != nil {
		return err
	}
	s.ctx.SetSource(pattern, opacity)
	s.ctx.FillPreserve()
	return nil
}

// paintServer resolves a url(#id) paint.
// Patterns are not supported and, like unresolved references,
// use the fallback color given after the url, if any.
func (s *Surface) paintServer(node *svgtree.Node, value string) (svgcanvas.Pattern, error) {
	id, fallback := parseURL(value)
	if def := s.gradients[id]; def != nil {
		return s.buildGradient(def)
	}
	if _, ok := s.patterns[id]; ok {
		if s.opts.ErrorMode == WarnErrorMode {
			s.logger.Warn("pattern paint is not supported", "id", id)
		}
	} else if err := s.unresolved("paint server", id); err != nil {
		return nil, err
	}
	if fallback == "" {
		return svgcanvas.Transparent, nil
	}
	return resolveColor(node, fallback, 1), nil
}

// gradientDefinition merges the attributes of a gradient
// with the ones of the gradients it references through href.
// The first element of the chain defining stops provides them.
func (s *Surface) gradientDefinition(node *svgtree.Node) (attrs map[string]string, stops []*svgtree.Node) {
	attrs = make(map[string]string)
	visited := make(map[*svgtree.Node]bool)
	for current := node; current != nil && !visited[current]; {
		visited[current] = true
		for k, v := range current.Attrs {
			if _, ok := attrs[k]; !ok {
				attrs[k] = v
			}
		}
		if len(stops) == 0 {
			for _, child := range current.Children {
				if child.Tag == "stop" {
					stops = append(stops, child)
				}
			}
		}
		id, _ := parseURL(current.Get("href"))
		current = s.gradients[id]
	}
	return attrs, stops
}

func (s *Surface) buildGradient(node *svgtree.Node) (svgcanvas.Pattern, error) {
	attrs, stopNodes := s.gradientDefinition(node)

	var grad svgcanvas.Gradient
	offset := 0.
	for _, stop := range stopNodes {
		o, _ := readFraction(stop.Get("offset"))
		o = clamp01(o)
		if o < offset { // offsets never decrease
			o = offset
		}
		offset = o
		stopColor := stop.Get("stop-color")
		if stopColor == "" {
			stopColor = "black"
		}
		grad.Stops = append(grad.Stops, svgcanvas.GradStop{
			StopColor: resolveColor(stop, stopColor, 1).NRGBA,
			Offset:    o,
			Opacity:   parseOpacity(stop.Get("stop-opacity")),
		})
	}
	switch len(grad.Stops) {
	case 0:
		return svgcanvas.Transparent, nil
	case 1:
		return svgcanvas.PlainColor{NRGBA: grad.FirstColor()}, nil
	}

	if attrs["gradientUnits"] == "userSpaceOnUse" {
		grad.Units = svgcanvas.UserSpaceOnUse
	}
	switch attrs["spreadMethod"] {
	case "reflect":
		grad.Spread = svgcanvas.ReflectSpread
	case "repeat":
		grad.Spread = svgcanvas.RepeatSpread
	}

	coord := func(key, def string, ax axis) float64 {
		v, ok := attrs[key]
		if !ok {
			v = def
		}
		if grad.Units == svgcanvas.UserSpaceOnUse {
			return s.size(v, ax)
		}
		f, err := readFraction(v)
		if err != nil {
			f, _ = readFraction(def)
		}
		return f
	}
	if node.Tag == "radialGradient" {
		cx, cy := coord("cx", "50%", axisX), coord("cy", "50%", axisY)
		fx, fy := cx, cy
		if _, ok := attrs["fx"]; ok {
			fx = coord("fx", "50%", axisX)
		}
		if _, ok := attrs["fy"]; ok {
			fy = coord("fy", "50%", axisY)
		}
		grad.Direction = svgcanvas.Radial{cx, cy, fx, fy, coord("r", "50%", axisXY), coord("fr", "0%", axisXY)}
	} else {
		grad.Direction = svgcanvas.Linear{
			coord("x1", "0%", axisX), coord("y1", "0%", axisY),
			coord("x2", "100%", axisX), coord("y2", "0%", axisY),
		}
	}

	matrix := &standaloneMatrix{m: rasterx.Identity}
	if attr := attrs["gradientTransform"]; attr != "" {
		ops, err := s.parseTransform(attr)
		if err != nil {
			return nil, err
		}
		applyTransforms(matrix, ops)
	}
	grad.Matrix = matrix.m
	return grad, nil
}
