package svgdraw

import (
	"math"
	"strconv"
	"strings"
)

// axis selects the viewport dimension used for percentages
type axis uint8

const (
	axisXY axis = iota // normalized diagonal
	axisX
	axisY
)

// inches per unit; px depends on nothing
var units = [...]struct {
	suffix string
	inches float64
}{
	{"mm", 1 / 25.4},
	{"cm", 1 / 2.54},
	{"in", 1},
	{"pt", 1 / 72.},
	{"pc", 1 / 6.},
}

// normalize separates numbers with single spaces:
// commas become spaces and a sign starts a new number,
// unless it belongs to an exponent.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true // avoid leading spaces
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ',', ' ', '\n', '\r', '\t':
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		case '-', '+':
			if i > 0 && (s[i-1] == 'e' || s[i-1] == 'E') {
				break
			}
			if !space {
				b.WriteByte(' ')
			}
		}
		b.WriteByte(c)
		space = false
	}
	return strings.TrimSuffix(b.String(), " ")
}

// size resolves a length to user units (pixels).
// An empty or unknown value resolves to 0.
func (s *Surface) size(value string, reference axis) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	value = normalize(value)
	if i := strings.IndexByte(value, ' '); i != -1 {
		value = value[:i]
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}

	number := func(suffix string) float64 {
		f, _ := strconv.ParseFloat(strings.TrimSuffix(value, suffix), 64)
		return f
	}
	switch {
	case strings.HasSuffix(value, "%"):
		var ref float64
		switch reference {
		case axisX:
			ref = s.contextWidth
		case axisY:
			ref = s.contextHeight
		default:
			ref = math.Hypot(s.contextWidth, s.contextHeight) / math.Sqrt2
		}
		return number("%") * ref / 100
	case strings.HasSuffix(value, "em"):
		return s.fontSize * number("em")
	case strings.HasSuffix(value, "ex"):
		return s.fontSize * number("ex") / 2
	case strings.HasSuffix(value, "px"):
		return number("px")
	}
	for _, unit := range units {
		if strings.HasSuffix(value, unit.suffix) {
			return number(unit.suffix) * s.dpi * unit.inches
		}
	}
	s.logger.Debug("unknown length", "value", value)
	return 0
}

// parseFloats parses a list of numbers separated by spaces or commas,
// stopping at the first invalid one.
func parseFloats(value string) []float64 {
	fields := strings.Fields(normalize(value))
	out := make([]float64, 0, len(fields))
	for _, field := range fields {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			break
		}
		out = append(out, f)
	}
	return out
}

// readFraction parses a number or a percentage.
func readFraction(v string) (float64, error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err := strconv.ParseFloat(v, 64)
	return f / d, err
}
