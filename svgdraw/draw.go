// Package svgdraw renders a parsed SVG document
// on a drawing context, whose driver produces PNG, PDF
// or flattened SVG output.
//
// Each element is visited recursively: its graphic state
// is saved, its transform applied, its geometry built and painted,
// then its children are drawn and the state is restored.
// Top-level (root) elements are not restored, so that
// their transform applies to the following roots.
package svgdraw

import (
	"github.com/pkg/errors"

	"github.com/benoitkugler/svgconvert/svgtree"
)

// frame is the walker state for one element being visited.
// Nodes are never modified.
type frame struct {
	node          *svgtree.Node
	childOpacity  float64 // opacity multiplier of the children
	strokeAndFill bool    // false to only build the geometry

	// set by path-like builders, used for markers
	path *pathRecorder

	// restored when leaving the node
	contextWidth, contextHeight float64
}

// top returns the innermost frame, or nil
func (s *Surface) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// draw renders `node` and its children.
// When `strokeAndFill` is false, the geometry of the subtree
// is accumulated in the current path without being painted.
func (s *Surface) draw(node *svgtree.Node, strokeAndFill bool) error {
	if node.Tag == "defs" {
		for _, child := range node.Children {
			s.registerDef(child)
		}
		return nil
	}
	if definitionTags[node.Tag] {
		s.registerDef(node)
		return nil
	}
	if len(s.frames) >= s.opts.MaxDepth {
		return errors.Wrapf(ErrTooDeep, "at <%s> (depth %d)", node.Tag, len(s.frames))
	}

	// enter
	f := &frame{
		node:          node,
		strokeAndFill: strokeAndFill,
		contextWidth:  s.contextWidth,
		contextHeight: s.contextHeight,
	}
	multiplier := 1.
	if parent := s.top(); parent != nil {
		multiplier = parent.childOpacity
	}
	s.frames = append(s.frames, f)
	parentNode := s.parent
	s.parent = node
	defer func() {
		s.parent = parentNode
		s.contextWidth, s.contextHeight = f.contextWidth, f.contextHeight
		s.frames = s.frames[:len(s.frames)-1]
	}()

	s.ctx.Save()
	s.ctx.MoveTo(s.size(node.Get("x"), axisX), s.size(node.Get("y"), axisY))

	if attr := node.Get("transform"); attr != "" {
		ops, err := s.parseTransform(attr)
		if err != nil {
			return err
		}
		applyTransforms(s.ctx, ops)
	}

	p := s.resolvePaint(node, multiplier)
	f.childOpacity = p.childOpacity

	if f.strokeAndFill {
		if err := s.clip(node); err != nil {
			return err
		}
	}
	if p.lineCap != nil {
		s.ctx.SetLineCap(*p.lineCap)
	}
	if p.lineJoin != nil {
		s.ctx.SetLineJoin(*p.lineJoin)
	}
	s.ctx.SetMiterLimit(p.miterLimit)
	if p.dash != nil {
		s.ctx.SetDash(p.dash, p.dashOffset)
	}

	if err := s.builderFor(node.Tag).build(s, node); err != nil {
		return err
	}

	switch {
	case !f.strokeAndFill: // keep the geometry
	case p.visible:
		if err := s.fillAndStroke(node, p); err != nil {
			return err
		}
		if err := s.drawMarkers(f, p.lineWidth); err != nil {
			return err
		}
	default:
		s.ctx.NewPath()
	}

	if p.display {
		for _, child := range node.Children {
			if err := s.draw(child, f.strokeAndFill); err != nil {
				return err
			}
		}
	}

	if !node.Root {
		if err := s.ctx.Restore(); err != nil {
			return err
		}
	}
	return nil
}

// fillAndStroke paints the current path: fill first, then stroke.
func (s *Surface) fillAndStroke(node *svgtree.Node, p paint) error {
	s.ctx.SetFillRule(p.fillRule)
	if isReference(p.fill) {
		if err := s.gradientOrPattern(node, p.fill, p.fillOpacity); err != nil {
			return err
		}
	} else {
		s.ctx.SetSource(resolveColor(node, p.fill, 1), p.fillOpacity)
		s.ctx.FillPreserve()
	}

	s.ctx.SetLineWidth(p.lineWidth)
	if isReference(p.stroke) {
		pattern, err := s.paintServer(node, p.stroke)
		if err != nil {
			return err
		}
		s.ctx.SetSource(pattern, p.strokeOpacity)
	} else {
		s.ctx.SetSource(resolveColor(node, p.stroke, 1), p.strokeOpacity)
	}
	s.ctx.Stroke()
	return nil
}
