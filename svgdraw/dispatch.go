package svgdraw

import "github.com/benoitkugler/svgconvert/svgtree"

// geometryBuilder adds the geometry of one element to the
// current path of the surface context.
type geometryBuilder interface {
	build(s *Surface, node *svgtree.Node) error
}

type builderFunc func(s *Surface, node *svgtree.Node) error

func (f builderFunc) build(s *Surface, node *svgtree.Node) error { return f(s, node) }

// noGeometry is used for containers and unsupported elements.
type noGeometry struct{}

func (noGeometry) build(*Surface, *svgtree.Node) error { return nil }

// elements with a default stroke width of 1
var pathTags = map[string]bool{
	"circle":   true,
	"ellipse":  true,
	"line":     true,
	"path":     true,
	"polygon":  true,
	"polyline": true,
	"rect":     true,
}

// elements which are only drawn when referenced
var definitionTags = map[string]bool{
	"clipPath":       true,
	"filter":         true,
	"linearGradient": true,
	"marker":         true,
	"mask":           true,
	"pattern":        true,
	"radialGradient": true,
	"symbol":         true,
}

// elements which are known but draw nothing by themselves
var inertTags = map[string]bool{
	"a": true, "desc": true, "g": true, "metadata": true, "style": true,
	"switch": true, "text": true, "title": true, "tspan": true,
}

var builders map[string]geometryBuilder

// built in init since use and svg builders draw
// elements recursively
func init() {
	builders = map[string]geometryBuilder{
		"circle":   builderFunc(buildCircle),
		"ellipse":  builderFunc(buildEllipse),
		"line":     builderFunc(buildLine),
		"path":     builderFunc(buildPath),
		"polygon":  builderFunc(buildPolygon),
		"polyline": builderFunc(buildPolyline),
		"rect":     builderFunc(buildRect),
		"svg":      builderFunc(buildSVG),
		"use":      builderFunc(buildUse),
	}
	for tag := range inertTags {
		builders[tag] = noGeometry{}
	}
}

// builderFor never returns nil
func (s *Surface) builderFor(tag string) geometryBuilder {
	if b, ok := builders[tag]; ok {
		return b
	}
	s.logger.Debug("unsupported element", "tag", tag)
	return noGeometry{}
}
