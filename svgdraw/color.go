package svgdraw

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// parseColor resolves an SVG color string, and multiplies
// its alpha by `opacity`. "none", "transparent" and empty values
// are fully transparent; unknown colors are black.
func parseColor(value string, opacity float64) color.NRGBA {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "none" || v == "transparent" {
		return color.NRGBA{}
	}
	c, ok := parseColorValue(v)
	if !ok {
		c = color.NRGBA{A: 0xff}
	}
	c.A = uint8(math.Round(float64(c.A) * clamp01(opacity)))
	return c
}

func clamp01(f float64) float64 { return math.Max(0, math.Min(1, f)) }

func parseColorValue(v string) (color.NRGBA, bool) {
	if named, ok := colornames.Map[v]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, true
	}
	if strings.HasPrefix(v, "#") {
		return parseHexColor(v[1:])
	}
	name, args, ok := functionArgs(v)
	if !ok {
		return color.NRGBA{}, false
	}
	switch name {
	case "rgb", "rgba":
		if len(args) < 3 {
			return color.NRGBA{}, false
		}
		c := color.NRGBA{A: 0xff}
		for i, p := range [...]*uint8{&c.R, &c.G, &c.B} {
			f, err := readChannel(args[i])
			if err != nil {
				return color.NRGBA{}, false
			}
			*p = f
		}
		if len(args) >= 4 {
			a, err := readFraction(args[3])
			if err != nil {
				return color.NRGBA{}, false
			}
			c.A = uint8(math.Round(clamp01(a) * 0xff))
		}
		return c, true
	case "hsl", "hsla":
		if len(args) < 3 {
			return color.NRGBA{}, false
		}
		h, err1 := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
		s, err2 := readFraction(args[1])
		l, err3 := readFraction(args[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return color.NRGBA{}, false
		}
		c := hslToRGB(h, clamp01(s), clamp01(l))
		if len(args) >= 4 {
			a, err := readFraction(args[3])
			if err != nil {
				return color.NRGBA{}, false
			}
			c.A = uint8(math.Round(clamp01(a) * 0xff))
		}
		return c, true
	}
	return color.NRGBA{}, false
}

// functionArgs splits `name(a, b, c)`
func functionArgs(v string) (name string, args []string, ok bool) {
	open := strings.IndexByte(v, '(')
	if open == -1 || !strings.HasSuffix(v, ")") {
		return "", nil, false
	}
	name = strings.TrimSpace(v[:open])
	inner := strings.NewReplacer(",", " ", "/", " ").Replace(v[open+1 : len(v)-1])
	return name, strings.Fields(inner), true
}

// readChannel parses a 0-255 value or a percentage
func readChannel(v string) (uint8, error) {
	if strings.HasSuffix(v, "%") {
		f, err := readFraction(v)
		return uint8(math.Round(clamp01(f) * 0xff)), err
	}
	f, err := strconv.ParseFloat(v, 64)
	return uint8(math.Round(math.Max(0, math.Min(0xff, f)))), err
}

// parseHexColor accepts the rgb, rgba, rrggbb and rrggbbaa forms
func parseHexColor(hex string) (color.NRGBA, bool) {
	switch len(hex) {
	case 3, 4:
		long := make([]byte, 0, 8)
		for i := 0; i < len(hex); i++ {
			long = append(long, hex[i], hex[i])
		}
		hex = string(long)
	case 6, 8:
	default:
		return color.NRGBA{}, false
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, true
}

func hslToRGB(h, s, l float64) color.NRGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.NRGBA{
		R: uint8(math.Round((r + m) * 0xff)),
		G: uint8(math.Round((g + m) * 0xff)),
		B: uint8(math.Round((b + m) * 0xff)),
		A: 0xff,
	}
}

// ParseColor resolves an SVG color string, such as "red",
// "#ff000080" or "rgb(10%, 20%, 30%)".
// Unknown colors are black.
func ParseColor(value string) color.NRGBA { return parseColor(value, 1) }
