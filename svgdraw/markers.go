package svgdraw

import (
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/svgconvert/svgpath"
	"github.com/benoitkugler/svgconvert/svgtree"
)

// vertex is an end point of a path segment, with the
// direction (in radians) of the segments around it.
type vertex struct {
	x, y          float64
	in, out       float64
	hasIn, hasOut bool
}

// angle returns the bisector of the incoming and outgoing directions
func (v vertex) angle() float64 {
	switch {
	case v.hasIn && v.hasOut:
		return math.Atan2(math.Sin(v.in)+math.Sin(v.out), math.Cos(v.in)+math.Cos(v.out))
	case v.hasIn:
		return v.in
	case v.hasOut:
		return v.out
	}
	return 0
}

// pathRecorder forwards the commands to a builder
// and records the vertices of the path.
type pathRecorder struct {
	b        svgpath.Builder
	vertices []vertex

	curX, curY     float64
	startX, startY float64 // current sub-path
	start          int     // index of the vertex starting the sub-path
}

var _ svgpath.Builder = (*pathRecorder)(nil)

func direction(x0, y0, x1, y1 float64) float64 { return math.Atan2(y1-y0, x1-x0) }

// leave sets the outgoing direction of the last vertex
func (r *pathRecorder) leave(dir float64) {
	if len(r.vertices) == 0 {
		r.vertices = append(r.vertices, vertex{x: r.curX, y: r.curY})
	}
	last := &r.vertices[len(r.vertices)-1]
	last.out, last.hasOut = dir, true
}

func (r *pathRecorder) arrive(x, y, dir float64) {
	r.vertices = append(r.vertices, vertex{x: x, y: y, in: dir, hasIn: true})
	r.curX, r.curY = x, y
}

// firstDistinct returns the first point of `pts` (x, y pairs)
// different from (x0, y0), or the last one.
func firstDistinct(x0, y0 float64, pts ...float64) (float64, float64) {
	for i := 0; i < len(pts); i += 2 {
		if pts[i] != x0 || pts[i+1] != y0 {
			return pts[i], pts[i+1]
		}
	}
	return pts[len(pts)-2], pts[len(pts)-1]
}

func (r *pathRecorder) MoveTo(x, y float64) {
	r.b.MoveTo(x, y)
	r.vertices = append(r.vertices, vertex{x: x, y: y})
	r.start = len(r.vertices) - 1
	r.curX, r.curY, r.startX, r.startY = x, y, x, y
}

func (r *pathRecorder) LineTo(x, y float64) {
	r.b.LineTo(x, y)
	dir := direction(r.curX, r.curY, x, y)
	r.leave(dir)
	r.arrive(x, y, dir)
}

func (r *pathRecorder) QuadTo(x1, y1, x, y float64) {
	r.b.QuadTo(x1, y1, x, y)
	ox, oy := firstDistinct(r.curX, r.curY, x1, y1, x, y)
	r.leave(direction(r.curX, r.curY, ox, oy))
	ix, iy := firstDistinct(x, y, x1, y1, r.curX, r.curY)
	r.arrive(x, y, direction(ix, iy, x, y))
}

func (r *pathRecorder) CubicTo(x1, y1, x2, y2, x, y float64) {
	r.b.CubicTo(x1, y1, x2, y2, x, y)
	ox, oy := firstDistinct(r.curX, r.curY, x1, y1, x2, y2, x, y)
	r.leave(direction(r.curX, r.curY, ox, oy))
	ix, iy := firstDistinct(x, y, x2, y2, x1, y1, r.curX, r.curY)
	r.arrive(x, y, direction(ix, iy, x, y))
}

// ClosePath adds a vertex back at the start of the sub-path,
// which continues in the direction of the first segment.
func (r *pathRecorder) ClosePath() {
	r.b.ClosePath()
	if len(r.vertices) == 0 {
		return
	}
	first := r.vertices[r.start]
	dir := direction(r.curX, r.curY, r.startX, r.startY)
	if r.curX == r.startX && r.curY == r.startY {
		dir = r.vertices[len(r.vertices)-1].in
	}
	r.leave(dir)
	r.arrive(r.startX, r.startY, dir)
	closing := &r.vertices[len(r.vertices)-1]
	closing.out, closing.hasOut = first.out, first.hasOut
}

// drawMarkers draws the markers referenced by the element of `f`
// on the vertices of its path.
func (s *Surface) drawMarkers(f *frame, strokeWidth float64) error {
	if f.path == nil || len(f.path.vertices) == 0 {
		return nil
	}
	node := f.node
	var markers [3]*svgtree.Node // start, mid, end
	for i, key := range [...]string{"marker-start", "marker-mid", "marker-end"} {
		ref := node.Get(key)
		if ref == "" {
			ref = node.Get("marker")
		}
		if ref == "" || ref == "none" {
			continue
		}
		id, _ := parseURL(ref)
		markers[i] = s.markers[id]
		if markers[i] == nil {
			if err := s.unresolved("marker", id); err != nil {
				return err
			}
		}
	}

	vertices := f.path.vertices
	for i, v := range vertices {
		marker, isStart := markers[1], i == 0
		switch {
		case isStart:
			marker = markers[0]
		case i == len(vertices)-1:
			marker = markers[2]
		}
		if marker == nil {
			continue
		}
		if err := s.drawMarker(marker, v, isStart, strokeWidth); err != nil {
			return err
		}
	}
	return nil
}

func (s *Surface) drawMarker(marker *svgtree.Node, v vertex, isStart bool, strokeWidth float64) error {
	s.ctx.NewPath()
	s.ctx.Save()
	s.ctx.Translate(v.x, v.y)

	switch orient := strings.TrimSpace(marker.Get("orient")); orient {
	case "", "0":
	case "auto":
		s.ctx.Rotate(v.angle())
	case "auto-start-reverse":
		angle := v.angle()
		if isStart {
			angle += math.Pi
		}
		s.ctx.Rotate(angle)
	default:
		if deg, err := strconv.ParseFloat(strings.TrimSuffix(orient, "deg"), 64); err == nil {
			s.ctx.Rotate(degToRad(deg))
		}
	}
	if marker.Get("markerUnits") != "userSpaceOnUse" {
		s.ctx.Scale(strokeWidth, strokeWidth)
	}

	widthAttr, heightAttr := marker.Get("markerWidth"), marker.Get("markerHeight")
	if widthAttr == "" {
		widthAttr = "3"
	}
	if heightAttr == "" {
		heightAttr = "3"
	}
	width, height := s.size(widthAttr, axisX), s.size(heightAttr, axisY)
	if vb := parseFloats(marker.Get("viewBox")); len(vb) == 4 && vb[2] > 0 && vb[3] > 0 {
		sx, sy := width/vb[2], height/vb[3]
		if !strings.HasPrefix(marker.Get("preserveAspectRatio"), "none") {
			sx = math.Min(sx, sy)
			sy = sx
		}
		s.ctx.Scale(sx, sy)
	}
	s.ctx.Translate(-s.size(marker.Get("refX"), axisX), -s.size(marker.Get("refY"), axisY))

	for _, child := range marker.Children {
		if err := s.draw(child, true); err != nil {
			return err
		}
	}
	return s.ctx.Restore()
}
