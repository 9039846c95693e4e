package svgflat

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/srwiley/rasterx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/svgconvert/svgcanvas"
)

func rect(c *svgcanvas.Context, x, y, w, h float64) {
	c.MoveTo(x, y)
	c.LineTo(x+w, y)
	c.LineTo(x+w, y+h)
	c.LineTo(x, y+h)
	c.ClosePath()
}

func TestDocument(t *testing.T) {
	var out bytes.Buffer
	rd := NewRenderer(10, 10, &out)
	c := svgcanvas.NewContext(rd)
	c.SetSize(75, 37.5)

	rect(c, 0, 0, 10, 10)
	c.SetSource(svgcanvas.NewPlainColor(0xff, 0, 0, 0xff), 0.5)
	c.SetFillRule(svgcanvas.EvenOdd)
	c.FillPreserve()
	c.SetDash([]float64{1, 2}, 0)
	c.SetSource(svgcanvas.NewPlainColor(0, 0, 0xff, 0xff), 1)
	c.Stroke()

	c.ShowPage()
	rect(c, 0, 0, 10, 10)
	c.Fill() // ignored
	require.NoError(t, c.Finish())

	doc := out.String()
	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, `width="75pt"`)
	assert.Contains(t, doc, `viewBox="0 0 75 37.5"`)
	assert.Equal(t, 2, strings.Count(doc, "<path"))
	assert.Contains(t, doc, "fill:#ff0000;stroke:none;fill-opacity:0.5;fill-rule:evenodd")
	assert.Contains(t, doc, "stroke:#0000ff;stroke-width:2")
	assert.Contains(t, doc, "stroke-dasharray:1,2")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(doc), "</svg>"))
}

func TestGradient(t *testing.T) {
	var out bytes.Buffer
	c := svgcanvas.NewContext(NewRenderer(100, 100, &out))
	rect(c, 10, 10, 50, 50)
	c.SetSource(svgcanvas.Gradient{
		Direction: svgcanvas.Linear{0, 0, 1, 0},
		Matrix:    rasterx.Identity,
		Stops: []svgcanvas.GradStop{
			{StopColor: svgcanvas.NewPlainColor(0xff, 0, 0, 0xff).NRGBA, Offset: 0, Opacity: 1},
			{StopColor: svgcanvas.NewPlainColor(0, 0, 0xff, 0xff).NRGBA, Offset: 1, Opacity: 1},
		},
	}, 1)
	c.Fill()
	require.NoError(t, c.Finish())

	doc := out.String()
	assert.Contains(t, doc, `<linearGradient id="g1"`)
	assert.Contains(t, doc, `x2="100%"`)
	assert.Contains(t, doc, "fill:url(#g1)")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteError(t *testing.T) {
	rd := NewRenderer(10, 10, failingWriter{})
	assert.Error(t, rd.Finish())

	assert.NoError(t, NewRenderer(10, 10, nil).Finish())
}

func TestToPercent(t *testing.T) {
	assert.Equal(t, uint8(50), toPercent(15, 10, 10))
	assert.Equal(t, uint8(0), toPercent(5, 10, 10))
	assert.Equal(t, uint8(0), toPercent(5, 10, 0))
	assert.Equal(t, uint8(255), toPercent(1000, 0, 1))
}
