package svgdraw

import (
	"strconv"
	"strings"

	"github.com/benoitkugler/svgconvert/svgcanvas"
	"github.com/benoitkugler/svgconvert/svgtree"
)

// paint is the resolved painting style of one node
type paint struct {
	fill, stroke               string // raw values, possibly url references
	fillOpacity, strokeOpacity float64
	childOpacity               float64 // multiplier given to the children
	fillRule                   svgcanvas.FillRule
	lineCap                    *svgcanvas.CapMode  // nil leaves the context value
	lineJoin                   *svgcanvas.JoinMode // nil leaves the context value
	miterLimit                 float64
	lineWidth                  float64
	dash                       []float64 // nil leaves the context value
	dashOffset                 float64
	display, visible           bool
}

func parseOpacity(value string) float64 {
	if value == "" {
		return 1
	}
	f, err := readFraction(value)
	if err != nil {
		return 1
	}
	return clamp01(f)
}

// strokeWidth is the explicit attribute, or 1 for path-like
// elements, or 0.
func (s *Surface) strokeWidth(node *svgtree.Node) float64 {
	if v, ok := node.Attrs["stroke-width"]; ok {
		return s.size(v, axisXY)
	}
	if pathTags[node.Tag] {
		return 1
	}
	return 0
}

// resolvePaint computes the style of `node`, whose ancestors
// opacities multiply to `multiplier`.
func (s *Surface) resolvePaint(node *svgtree.Node, multiplier float64) paint {
	opacity := multiplier * parseOpacity(node.Get("opacity"))
	p := paint{
		fill:          "black",
		stroke:        node.Get("stroke"),
		fillOpacity:   opacity * parseOpacity(node.Get("fill-opacity")),
		strokeOpacity: opacity * parseOpacity(node.Get("stroke-opacity")),
		childOpacity:  opacity,
		miterLimit:    4,
		lineWidth:     s.strokeWidth(node),
		display:       node.Get("display") != "none",
		visible:       true,
	}
	if v, ok := node.Attrs["fill"]; ok {
		p.fill = v
	}
	if node.Get("fill-rule") == "evenodd" {
		p.fillRule = svgcanvas.EvenOdd
	}
	switch node.Get("visibility") {
	case "hidden", "collapse":
		p.visible = false
	}
	p.visible = p.visible && p.display

	switch node.Get("stroke-linecap") {
	case "square":
		c := svgcanvas.SquareCap
		p.lineCap = &c
	case "round":
		c := svgcanvas.RoundCap
		p.lineCap = &c
	}
	switch node.Get("stroke-linejoin") {
	case "round":
		j := svgcanvas.Round
		p.lineJoin = &j
	case "bevel":
		j := svgcanvas.Bevel
		p.lineJoin = &j
	}
	if v := node.Get("stroke-miterlimit"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			p.miterLimit = f
		}
	}

	if v := node.Get("stroke-dasharray"); v != "" {
		var dashes []float64
		sum := 0.
		for _, field := range strings.Fields(normalize(v)) {
			d := s.size(field, axisXY)
			dashes = append(dashes, d)
			sum += d
		}
		if sum > 0 {
			if len(dashes)%2 == 1 { // repeated to get an even count
				dashes = append(dashes, dashes...)
			}
			p.dash = dashes
			p.dashOffset = s.size(node.Get("stroke-dashoffset"), axisXY)
		} else {
			p.dash = []float64{}
		}
	}
	return p
}

// resolveColor handles currentColor, then parses `value`.
func resolveColor(node *svgtree.Node, value string, opacity float64) svgcanvas.PlainColor {
	if strings.TrimSpace(value) == "currentColor" {
		value = node.Get("color")
		if value == "" {
			value = "black"
		}
	}
	return svgcanvas.PlainColor{NRGBA: parseColor(value, opacity)}
}

// isReference returns true for url(#...) paints
func isReference(value string) bool { return strings.Contains(value, "url(#") }
