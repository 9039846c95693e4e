package svgdraw

import (
	"github.com/benoitkugler/svgconvert/svgcanvas"
	"github.com/benoitkugler/svgconvert/svgtree"
)

// clip applies the `clip-path` of `node`, if any.
// The content of the clip element is drawn without painting,
// and the resulting path becomes the clipping region until
// the state of `node` is restored.
func (s *Surface) clip(node *svgtree.Node) error {
	ref := node.Get("clip-path")
	if !isReference(ref) {
		return nil
	}
	id, _ := parseURL(ref)
	target := s.paths[id]
	if target == nil || target.Tag != "clipPath" {
		return s.unresolved("clip path", ref)
	}

	s.ctx.Save()
	if target.Get("clipPathUnits") == "objectBoundingBox" {
		s.ctx.Translate(s.size(node.Get("x"), axisX), s.size(node.Get("y"), axisY))
		s.ctx.Scale(s.size(node.Get("width"), axisX), s.size(node.Get("height"), axisY))
	}
	s.ctx.NewPath()
	group := target.Clone(nil)
	group.Tag, group.Root = "g", false
	err := s.draw(group, false)
	if rerr := s.ctx.Restore(); err == nil {
		err = rerr
	}
	if err != nil {
		return err
	}

	// the path is not part of the saved state
	rule := svgcanvas.NonZero
	if target.Get("clip-rule") == "evenodd" {
		rule = svgcanvas.EvenOdd
	}
	fillRule := s.ctx.FillRule()
	s.ctx.SetFillRule(rule)
	s.ctx.Clip()
	s.ctx.SetFillRule(fillRule)
	return nil
}
