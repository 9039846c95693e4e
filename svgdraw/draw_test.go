package svgdraw

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"
)

func TestFillBeforeStroke(t *testing.T) {
	got := mustRender(t, `<svg width="100" height="50">
		<rect x="10" y="10" width="20" height="10" fill="red" stroke="blue" stroke-width="2"/>
	</svg>`)
	want := []event{
		{Op: "fill", Color: red, Alpha: 1, Box: [4]float64{10, 10, 30, 20}},
		{Op: "stroke", Color: blue, Alpha: 1, Box: [4]float64{10, 10, 30, 20}, Width: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected paints (-want +got):\n%s", diff)
	}
}

func TestDefaultPaint(t *testing.T) {
	got := mustRender(t, `<svg width="100" height="50">
		<g stroke="black"><line x1="0" y1="5" x2="10" y2="5"/></g>
		<polygon points="0 0 10 0 10 10" fill-rule="evenodd" stroke="red"/>
	</svg>`)
	want := []event{
		{Op: "fill", Color: black, Alpha: 1, Box: [4]float64{0, 5, 10, 5}},
		{Op: "stroke", Color: black, Alpha: 1, Box: [4]float64{0, 5, 10, 5}, Width: 1},
		{Op: "fill", Color: black, Alpha: 1, Box: [4]float64{0, 0, 10, 10}, EvenOdd: true},
		{Op: "stroke", Color: red, Alpha: 1, Box: [4]float64{0, 0, 10, 10}, Width: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected paints (-want +got):\n%s", diff)
	}
}

func TestDisplayAndVisibility(t *testing.T) {
	got := mustRender(t, `<svg width="100" height="50">
		<g display="none"><rect width="10" height="10" display="inline" fill="red"/></g>
		<rect width="10" height="10" display="none" fill="red"/>
		<g visibility="hidden">
			<rect width="10" height="10" fill="red"/>
			<rect width="20" height="20" visibility="visible" fill="blue"/>
		</g>
	</svg>`)
	want := []event{
		{Op: "fill", Color: blue, Alpha: 1, Box: [4]float64{0, 0, 20, 20}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected paints (-want +got):\n%s", diff)
	}
}

func TestDefinitionsAreNotPainted(t *testing.T) {
	got := mustRender(t, `<svg width="100" height="50">
		<defs><rect id="r" width="2" height="2" fill="green"/></defs>
		<symbol id="s"><rect width="3" height="3"/></symbol>
		<clipPath id="c"><rect width="4" height="4"/></clipPath>
	</svg>`)
	if len(got) != 0 {
		t.Fatalf("expected no paint, got %v", got)
	}

	got = mustRender(t, `<svg width="100" height="50">
		<use href="#r" x="5" y="5"/>
		<use href="#s" x="10" y="10" fill="blue"/>
		<defs><rect id="r" width="2" height="2" fill="green"/></defs>
		<symbol id="s"><rect width="3" height="3"/></symbol>
	</svg>`)
	want := []event{
		{Op: "fill", Color: green, Alpha: 1, Box: [4]float64{5, 5, 7, 7}},
		{Op: "fill", Color: blue, Alpha: 1, Box: [4]float64{10, 10, 13, 13}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected paints (-want +got):\n%s", diff)
	}
}

func TestOpacity(t *testing.T) {
	got := mustRender(t, `<svg width="100" height="50">
		<g opacity="0.5">
			<rect width="10" height="10" opacity="0.5" fill-opacity="0.5" stroke="black"/>
		</g>
	</svg>`)
	want := []event{
		{Op: "fill", Color: black, Alpha: 0.125, Box: [4]float64{0, 0, 10, 10}},
		{Op: "stroke", Color: black, Alpha: 0.25, Box: [4]float64{0, 0, 10, 10}, Width: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected paints (-want +got):\n%s", diff)
	}
}

func TestMatrixReplaces(t *testing.T) {
	got := mustRender(t, `<svg width="100" height="50">
		<g transform="translate(100, 100)">
			<rect width="10" height="10" transform="matrix(1 0 0 1 5 5)"/>
		</g>
	</svg>`)
	want := []event{{Op: "fill", Color: black, Alpha: 1, Box: [4]float64{5, 5, 15, 15}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected paints (-want +got):\n%s", diff)
	}
}

func TestTransformShortForms(t *testing.T) {
	const doc = `<svg width="100" height="50"><rect width="10" height="10" transform="%s"/></svg>`
	for _, pair := range [][2]string{
		{"scale(2)", "scale(2, 2)"},
		{"translate(5)", "translate(5 5)"},
		{"rotate(90, 5, 5)", "translate(5,5) rotate(90) translate(-5,-5)"},
	} {
		short := mustRender(t, strings.Replace(doc, "%s", pair[0], 1))
		long := mustRender(t, strings.Replace(doc, "%s", pair[1], 1))
		if diff := cmp.Diff(long, short); diff != "" {
			t.Errorf("%s and %s differ:\n%s", pair[0], pair[1], diff)
		}
	}
}

func TestViewportFit(t *testing.T) {
	for _, test := range []struct {
		svg string
		box [4]float64
	}{
		// wider than the viewbox: centered horizontally
		{`<svg width="200" height="100" viewBox="0 0 10 10"><rect width="10" height="10"/></svg>`, [4]float64{50, 0, 150, 100}},
		// taller: centered vertically
		{`<svg width="100" height="200" viewBox="0 0 10 10"><rect width="10" height="10"/></svg>`, [4]float64{0, 50, 100, 150}},
		// same aspect ratio
		{`<svg width="100" height="50" viewBox="5 5 20 10"><rect x="5" y="5" width="20" height="10"/></svg>`, [4]float64{0, 0, 100, 50}},
		// size from the viewbox
		{`<svg viewBox="0 0 30 20"><rect width="30" height="20"/></svg>`, [4]float64{0, 0, 30, 20}},
	} {
		got := mustRender(t, test.svg)
		want := []event{{Op: "fill", Color: black, Alpha: 1, Box: test.box}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", test.svg, diff)
		}
	}
}

func TestRootIsNotRestored(t *testing.T) {
	s, _, err := render(t, `<svg width="10" height="10"><g><rect width="1" height="1"/></g></svg>`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if d := s.ctx.Depth(); d != 1 {
		t.Errorf("expected one unrestored state, got %d", d)
	}

	s, _, err = render(t, `<svg width="10" height="10"><rect width="1" height="1"/></svg>
		<svg width="20" height="20"><rect width="2" height="2"/></svg>`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if d := s.ctx.Depth(); d != 2 {
		t.Errorf("expected two unrestored states, got %d", d)
	}
}

const pagesDoc = `<svg width="100" height="100">
	<svg width="200" height="100"><rect width="10" height="10"/></svg>
	<svg width="40" height="80" viewBox="0 0 20 40"><rect width="20" height="40"/></svg>
	<rect width="5" height="5"/>
</svg>`

func TestPages(t *testing.T) {
	format := &recordFormat{ratio: 0.75, pages: true, recorder: &recorder{}}
	s, rec, err := renderWith(t, format, pagesDoc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]PageSize{{150, 75}, {30, 60}}, s.PageSizes()); diff != "" {
		t.Errorf("unexpected page sizes:\n%s", diff)
	}
	want := []event{
		{Op: "size", Box: [4]float64{0, 0, 150, 75}},
		{Op: "fill", Color: black, Alpha: 1, Box: [4]float64{0, 0, 7.5, 7.5}},
		{Op: "page"},
		{Op: "size", Box: [4]float64{0, 0, 30, 60}},
		{Op: "fill", Color: black, Alpha: 1, Box: [4]float64{0, 0, 30, 60}},
		{Op: "page"},
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}
	if d := s.ctx.Depth(); d != 0 {
		t.Errorf("unbalanced pages: depth %d", d)
	}

	// following top-level svg elements are root pages,
	// which are not restored by the walker
	format = &recordFormat{ratio: 1, pages: true, recorder: &recorder{}}
	s, rec, err = renderWith(t, format, `<svg width="10" height="10"><rect width="1" height="1"/></svg>
		<svg width="20" height="20"><rect width="2" height="2"/></svg>`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(rec.paints()); n != 1 {
		t.Errorf("expected 1 paint, got %d", n)
	}
	if d := s.ctx.Depth(); d != 0 {
		t.Errorf("unbalanced root pages: depth %d", d)
	}

	// single page formats draw everything once
	s, rec, err = render(t, pagesDoc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]PageSize{{100, 100}}, s.PageSizes()); diff != "" {
		t.Errorf("unexpected page sizes:\n%s", diff)
	}
	if n := len(rec.paints()); n != 3 {
		t.Errorf("expected 3 paints, got %d", n)
	}
}

func TestGradientFill(t *testing.T) {
	got := mustRender(t, `<svg width="100" height="50">
		<rect width="10" height="10" fill="url(#g)" stroke="url(#flat)"/>
		<rect width="10" height="10" fill="url(#missing) red"/>
		<defs>
			<linearGradient id="base"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
			<linearGradient id="g" href="#base" x2="0" y2="1"/>
			<radialGradient id="flat"><stop offset="0.5" stop-color="blue"/></radialGradient>
		</defs>
	</svg>`)
	want := []event{
		{Op: "fill", Color: red, Alpha: 1, Box: [4]float64{0, 0, 10, 10}, Gradient: true},
		{Op: "stroke", Color: blue, Alpha: 1, Box: [4]float64{0, 0, 10, 10}, Width: 1},
		{Op: "fill", Color: red, Alpha: 1, Box: [4]float64{0, 0, 10, 10}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected paints (-want +got):\n%s", diff)
	}
}

func TestMarkers(t *testing.T) {
	got := mustRender(t, `<svg width="100" height="50">
		<defs>
			<marker id="m" markerUnits="userSpaceOnUse" orient="auto">
				<rect width="2" height="2" fill="red"/>
			</marker>
		</defs>
		<path d="M0 0 L10 0 L10 10" fill="none" stroke="black" marker-end="url(#m)"/>
	</svg>`)
	want := []event{
		{Op: "stroke", Color: black, Alpha: 1, Box: [4]float64{0, 0, 10, 10}, Width: 1},
		// rotated by 90 degrees at the last vertex
		{Op: "fill", Color: red, Alpha: 1, Box: [4]float64{8, 10, 10, 12}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected paints (-want +got):\n%s", diff)
	}
}

func TestErrors(t *testing.T) {
	_, _, err := render(t, `<svg><rect width="1" height="1"/></svg>`, Options{})
	if !errors.Is(err, ErrMissingDimensions) {
		t.Errorf("expected missing dimensions, got %v", err)
	}

	_, _, err = render(t, `<svg width="10" height="10"><rect transform="rotate(1 2)"/></svg>`, Options{})
	var terr *TransformError
	if !errors.As(err, &terr) || terr.Fragment != "rotate(1 2" || terr.Got != 2 {
		t.Errorf("expected a transform error, got %v", err)
	}

	nested := `<svg width="10" height="10">` + strings.Repeat("<g>", 10) + strings.Repeat("</g>", 10) + `</svg>`
	if _, _, err = render(t, nested, Options{MaxDepth: 5}); !errors.Is(err, ErrTooDeep) {
		t.Errorf("expected too deep error, got %v", err)
	}
	if _, _, err = render(t, nested, Options{}); err != nil {
		t.Errorf("unexpected error %v", err)
	}

	recursive := `<svg width="10" height="10"><g id="a"><use href="#a"/></g></svg>`
	if _, _, err = render(t, recursive, Options{}); !errors.Is(err, ErrTooDeep) {
		t.Errorf("expected too deep error, got %v", err)
	}
}

func TestErrorModes(t *testing.T) {
	const doc = `<svg width="10" height="10">
		<use href="#missing"/>
		<path d="M 0 0 L 10" stroke="black"/>
	</svg>`

	var logs bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &logs, Level: hclog.Warn})
	_, rec, err := render(t, doc, Options{Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "unresolved reference") || !strings.Contains(logs.String(), "invalid content") {
		t.Errorf("missing warnings in %q", logs.String())
	}
	if n := len(rec.paints()); n != 0 {
		t.Errorf("expected no paint, got %d", n)
	}

	logs.Reset()
	if _, _, err = render(t, doc, Options{Logger: logger, ErrorMode: IgnoreErrorMode}); err != nil {
		t.Fatal(err)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected logs %q", logs.String())
	}

	_, _, err = render(t, doc, Options{ErrorMode: StrictErrorMode})
	if !errors.Is(err, ErrUnresolvedReference) {
		t.Errorf("expected unresolved reference, got %v", err)
	}
}
