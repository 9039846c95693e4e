package svgdraw

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benoitkugler/svgconvert/svgtree"
)

func TestDrawWithoutPaint(t *testing.T) {
	s, rec, err := render(t, `<svg width="100" height="50"/>`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	group := node("g", "fill", "red", "stroke", "blue", "marker-end", "url(#m)")
	group.Children = []*svgtree.Node{
		node("rect", "x", "1", "y", "1", "width", "4", "height", "4"),
		node("line", "x1", "6", "y1", "6", "x2", "8", "y2", "8"),
	}

	depth := s.ctx.Depth()
	s.ctx.NewPath()
	if err := s.draw(group, false); err != nil {
		t.Fatal(err)
	}
	if paints := rec.paints(); len(paints) != 0 {
		t.Errorf("expected no paint, got %v", paints)
	}
	path := s.ctx.Path()
	if !path.HasSegments() {
		t.Fatal("expected the geometry to be kept in the current path")
	}
	if diff := cmp.Diff([4]float64{1, 1, 8, 8}, roundBox(path.Bounds())); diff != "" {
		t.Errorf("unexpected path bounds:\n%s", diff)
	}
	if d := s.ctx.Depth(); d != depth {
		t.Errorf("unbalanced states: %d, want %d", d, depth)
	}
}

func TestClipPath(t *testing.T) {
	for _, test := range []struct {
		svg  string
		want []event
	}{
		{
			`<svg width="100" height="50">
				<defs><clipPath id="c"><rect width="5" height="5" fill="green"/></clipPath></defs>
				<rect width="10" height="10" fill="red" clip-path="url(#c)"/>
			</svg>`,
			[]event{
				{Op: "clip", Box: [4]float64{0, 0, 5, 5}},
				{Op: "fill", Color: red, Alpha: 1, Box: [4]float64{0, 0, 10, 10}},
				{Op: "unclip"},
			},
		},
		{
			`<svg width="100" height="50">
				<clipPath id="c" clipPathUnits="objectBoundingBox" clip-rule="evenodd">
					<rect width="0.5" height="0.5"/>
				</clipPath>
				<g clip-path="url(#c)" x="10" y="10" width="20" height="20">
					<rect x="10" y="10" width="20" height="20" fill="red"/>
				</g>
			</svg>`,
			[]event{
				{Op: "clip", Box: [4]float64{10, 10, 20, 20}, EvenOdd: true},
				{Op: "fill", Color: red, Alpha: 1, Box: [4]float64{10, 10, 30, 30}},
				{Op: "unclip"},
			},
		},
		{
			`<svg width="100" height="50">
				<rect width="10" height="10" fill="red" clip-path="url(other.svg#c)"/>
			</svg>`,
			[]event{
				{Op: "fill", Color: red, Alpha: 1, Box: [4]float64{0, 0, 10, 10}},
			},
		},
	} {
		_, rec, err := render(t, test.svg, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(test.want, rec.events); diff != "" {
			t.Errorf("%s (-want +got):\n%s", test.svg, diff)
		}
	}

	_, _, err := render(t, `<svg width="100" height="50">
		<rect width="10" height="10" clip-path="url(#missing)"/>
	</svg>`, Options{ErrorMode: StrictErrorMode})
	if !errors.Is(err, ErrUnresolvedReference) {
		t.Errorf("expected ErrUnresolvedReference, got %v", err)
	}
}

func TestIsReference(t *testing.T) {
	for value, want := range map[string]bool{
		"url(#a)":          true,
		"url(#a) red":      true,
		"url(other.svg#a)": false,
		"red":              false,
	} {
		if got := isReference(value); got != want {
			t.Errorf("isReference(%q) = %v", value, got)
		}
	}
}
