package svgraster

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/svgconvert/svgcanvas"
)

func nrgbaAt(t *testing.T, rd *Renderer, x, y int) color.NRGBA {
	t.Helper()
	return color.NRGBAModel.Convert(rd.Image().At(x, y)).(color.NRGBA)
}

func TestFillRect(t *testing.T) {
	var out bytes.Buffer
	rd := NewRenderer(100, 50, nil, &out)
	c := svgcanvas.NewContext(rd)
	c.MoveTo(10, 10)
	c.LineTo(60, 10)
	c.LineTo(60, 40)
	c.LineTo(10, 40)
	c.ClosePath()
	c.SetSource(svgcanvas.NewPlainColor(0xff, 0, 0, 0xff), 1)
	c.Fill()
	require.NoError(t, c.Finish())

	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, nrgbaAt(t, rd, 30, 25))
	assert.Equal(t, color.NRGBA{}, nrgbaAt(t, rd, 80, 25))

	img, err := png.Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestBackgroundAndOpacity(t *testing.T) {
	rd := NewRenderer(20, 20, color.White, nil)
	c := svgcanvas.NewContext(rd)
	c.MoveTo(0, 0)
	c.LineTo(10, 0)
	c.LineTo(10, 20)
	c.LineTo(0, 20)
	c.ClosePath()
	c.SetSource(svgcanvas.NewPlainColor(0, 0, 0xff, 0x80), 0.5)
	c.Fill()
	require.NoError(t, c.Finish()) // no output

	assert.Equal(t, color.NRGBA{0xff, 0xff, 0xff, 0xff}, nrgbaAt(t, rd, 15, 5))
	// a quarter of blue over white
	blended := nrgbaAt(t, rd, 5, 5)
	assert.Equal(t, uint8(0xff), blended.B)
	assert.InDelta(t, 0xbf, int(blended.R), 2)
}

func TestStroke(t *testing.T) {
	rd := NewRenderer(20, 20, nil, nil)
	c := svgcanvas.NewContext(rd)
	c.MoveTo(0, 10)
	c.LineTo(20, 10)
	c.SetLineWidth(4)
	c.SetSource(svgcanvas.NewPlainColor(0, 0x80, 0, 0xff), 1)
	c.Stroke()

	assert.Equal(t, color.NRGBA{G: 0x80, A: 0xff}, nrgbaAt(t, rd, 10, 10))
	assert.Equal(t, color.NRGBA{}, nrgbaAt(t, rd, 10, 2))
}

func TestWithOpacity(t *testing.T) {
	c := withOpacity(color.NRGBA{R: 10, A: 200}, 0.5)
	assert.Equal(t, color.NRGBA{R: 10, A: 100}, c)
	assert.Equal(t, uint8(0), withOpacity(color.NRGBA{A: 200}, -1).A)
}
