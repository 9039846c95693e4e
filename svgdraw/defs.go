package svgdraw

import "github.com/benoitkugler/svgconvert/svgtree"

// register stores `node` by id in the matching caches.
// The first element with a given id wins.
func (s *Surface) register(node *svgtree.Node) {
	id := node.ID()
	if id == "" {
		return
	}
	var cache map[string]*svgtree.Node
	switch node.Tag {
	case "linearGradient", "radialGradient":
		cache = s.gradients
	case "pattern":
		cache = s.patterns
	case "marker":
		cache = s.markers
	}
	if _, ok := cache[id]; cache != nil && !ok {
		cache[id] = node
	}
	if _, ok := s.paths[id]; !ok {
		s.paths[id] = node
	}
}

// registerDef stores a definition, and the
// content of definition containers.
func (s *Surface) registerDef(node *svgtree.Node) {
	s.register(node)
	if node.Tag == "defs" || node.Tag == "g" {
		for _, child := range node.Children {
			s.registerDef(child)
		}
	}
}

// indexDefinitions registers all the elements of the document,
// so that references may precede their target.
func (s *Surface) indexDefinitions(node *svgtree.Node) {
	s.register(node)
	for _, child := range node.Children {
		s.indexDefinitions(child)
	}
}
