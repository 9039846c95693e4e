package svgdraw

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benoitkugler/svgconvert/svgpdf"
	"github.com/benoitkugler/svgconvert/svgtree"
)

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="10">
	<rect width="10" height="10" fill="red"/>
</svg>`

func TestConvertPNG(t *testing.T) {
	out, err := ConvertPNG(Source{Bytes: []byte(redSquare)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("unexpected size %v", b)
	}
	at := func(x, y int) color.NRGBA { return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA) }
	if c := at(5, 5); c != red {
		t.Errorf("expected red, got %v", c)
	}
	if c := at(15, 5); c != (color.NRGBA{}) {
		t.Errorf("expected transparent, got %v", c)
	}

	out, err = ConvertPNG(Source{Bytes: []byte(redSquare)}, Options{Background: color.White})
	if err != nil {
		t.Fatal(err)
	}
	img, err = png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if c := at(15, 5); c != (color.NRGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("expected white background, got %v", c)
	}
}

func TestPNGSize(t *testing.T) {
	root, err := svgtree.ParseBytes([]byte(`<svg width="10.6" height="1in"/>`))
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSurface(PNG, root, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]PageSize{{11, 96}}, s.PageSizes()); diff != "" {
		t.Error(diff)
	}
	if err := s.Finish(); err != nil {
		t.Fatal(err)
	}

	// rounded to an empty image
	root, err = svgtree.ParseBytes([]byte(`<svg width="0.4" height="10"/>`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err = NewSurface(PNG, root, Options{}, nil); !errors.Is(err, ErrMissingDimensions) {
		t.Errorf("expected ErrMissingDimensions, got %v", err)
	}
}

func TestVectorSizes(t *testing.T) {
	root, err := svgtree.ParseBytes([]byte(`<svg width="96" height="48"/>`))
	if err != nil {
		t.Fatal(err)
	}
	for _, format := range []Format{SVG, PDF} {
		s, err := NewSurface(format, root, Options{}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]PageSize{{72, 36}}, s.PageSizes()); diff != "" {
			t.Errorf("%s: %s", format, diff)
		}
	}
}

func TestOutputs(t *testing.T) {
	src := Source{Bytes: []byte(redSquare)}

	out, err := ConvertSVG(src, Options{Output: InMemory})
	if out != nil || err != nil {
		t.Errorf("expected nothing, got %v %v", out, err)
	}

	var buf bytes.Buffer
	out, err = ConvertSVG(src, Options{Output: &buf})
	if out != nil || err != nil {
		t.Errorf("expected nothing, got %v %v", out, err)
	}
	if !strings.Contains(buf.String(), "<path") {
		t.Errorf("unexpected output %s", buf.String())
	}

	out, err = Convert(SVG, Source{Reader: strings.NewReader(redSquare)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, buf.Bytes()) {
		t.Error("expected the same output for bytes and reader sources")
	}
}

func TestPDFPages(t *testing.T) {
	root, err := svgtree.ParseBytes([]byte(pagesDoc))
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSurface(PDF, root, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Finish(); err != nil {
		t.Fatal(err)
	}
	if n := s.driver.(*svgpdf.Renderer).PageCount(); n != 2 {
		t.Errorf("expected 2 pages, got %d", n)
	}

	out, err := ConvertPDF(Source{Bytes: []byte(pagesDoc)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("unexpected output %q", out[:10])
	}
}

func TestSources(t *testing.T) {
	for _, src := range []Source{
		{},
		{Bytes: []byte(redSquare), URL: "image.svg"},
		{URL: "ftp://example.com/image.svg"},
	} {
		if _, err := ConvertPNG(src, Options{}); !errors.Is(err, ErrSource) {
			t.Errorf("expected invalid source error, got %v", err)
		}
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "image.svg")
	if err := os.WriteFile(path, []byte(redSquare), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, url := range []string{path, "file://" + filepath.ToSlash(path)} {
		if _, err := ConvertPNG(Source{URL: url}, Options{}); err != nil {
			t.Errorf("%s: %s", url, err)
		}
	}
	if _, err := ConvertPNG(Source{URL: filepath.Join(dir, "missing.svg")}, Options{}); err == nil {
		t.Error("expected error for missing file")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/image.svg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte(redSquare))
	}))
	defer server.Close()

	if _, err := ConvertPNG(Source{URL: server.URL + "/image.svg"}, Options{}); err != nil {
		t.Error(err)
	}
	if _, err := ConvertPNG(Source{URL: server.URL + "/missing.svg"}, Options{}); err == nil {
		t.Error("expected error for a 404 response")
	}
}

func TestFormatByName(t *testing.T) {
	for name, expected := range map[string]Format{"png": PNG, "PDF": PDF, "Svg": SVG} {
		got, err := FormatByName(name)
		if err != nil || got != expected {
			t.Errorf("%s: unexpected %v %v", name, got, err)
		}
	}
	if _, err := FormatByName("gif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestShorten(t *testing.T) {
	if s := shorten(" short "); s != "short" {
		t.Errorf("unexpected %q", s)
	}
	if s := shorten(strings.Repeat("a", 50)); len(s) != 43 {
		t.Errorf("unexpected %q", s)
	}
}
