package svgpath

import (
	"math"
	"strconv"
	"unicode"

	"github.com/pkg/errors"
)

var (
	errParamMismatch  = errors.New("param mismatch")
	errCommandUnknown = errors.New("unknown command")
)

// pathCursor is used to compile path data into
// calls on a Builder
type pathCursor struct {
	b                   Builder
	points              []float64
	placeX, placeY      float64 // start of the current sub-path
	curX, curY          float64
	cntlPtX, cntlPtY    float64
	inPath              bool
	fromCubic, fromQuad bool // kind of the previous command, for reflections
}

// Compile parses the path data string `d` (the content of
// the `d` attribute of a path element) and feeds the
// resulting commands to `b`.
// On error, the commands already emitted are kept in `b`,
// which matches the SVG rule of rendering a path up to
// the first error.
func Compile(d string, b Builder) error {
	c := pathCursor{b: b}
	lastIndex := -1
	for i := 0; i < len(d); i++ {
		if !isCommand(d[i]) {
			continue
		}
		if lastIndex != -1 {
			if err := c.addSeg(d[lastIndex:i]); err != nil {
				return err
			}
		} else if !isBlank(d[:i]) {
			return errors.Wrapf(errCommandUnknown, "path data must start with a command: %q", d)
		}
		lastIndex = i
	}
	if lastIndex != -1 {
		return c.addSeg(d[lastIndex:])
	}
	if !isBlank(d) {
		return errors.Wrapf(errCommandUnknown, "path data without command: %q", d)
	}
	return nil
}

func isCommand(b byte) bool {
	switch b {
	case 'M', 'm', 'Z', 'z', 'L', 'l', 'H', 'h', 'V', 'v',
		'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a':
		return true
	}
	return false
}

func isBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) && r != ',' {
			return false
		}
	}
	return true
}

// ParseNumbers splits `s` into numbers. Separators are
// white spaces and commas; a sign or a second decimal point
// also starts a new number, so that "10-5" and "1.5.5" are valid.
func ParseNumbers(s string) ([]float64, error) {
	var out []float64
	i := 0
	for i < len(s) {
		c := s[i]
		if c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' {
			i++
			continue
		}
		start := i
		if c == '+' || c == '-' {
			i++
		}
		var seenDot, seenDigit bool
		for ; i < len(s); i++ {
			c = s[i]
			if '0' <= c && c <= '9' {
				seenDigit = true
			} else if c == '.' && !seenDot {
				seenDot = true
			} else {
				break
			}
		}
		if !seenDigit {
			return out, errors.Errorf("invalid number at %d in %q", start, s)
		}
		if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
			j := i + 1
			if j < len(s) && (s[j] == '+' || s[j] == '-') {
				j++
			}
			k := j
			for k < len(s) && '0' <= s[k] && s[k] <= '9' {
				k++
			}
			if k > j {
				i = k
			}
		}
		f, err := strconv.ParseFloat(s[start:i], 64)
		if err != nil {
			return out, errors.Wrapf(err, "invalid number in %q", s)
		}
		out = append(out, f)
	}
	return out, nil
}

func (c *pathCursor) moveTo(x, y float64) {
	c.b.MoveTo(x, y)
	c.placeX, c.placeY = x, y
	c.curX, c.curY = x, y
	c.inPath = true
}

func (c *pathCursor) lineTo(x, y float64) {
	c.b.LineTo(x, y)
	c.curX, c.curY = x, y
}

// reflect returns the reflection of the last control point
// about the current point, if the previous command was of
// the same kind, or the current point otherwise.
func (c *pathCursor) reflect(same bool) (float64, float64) {
	if !same {
		return c.curX, c.curY
	}
	return 2*c.curX - c.cntlPtX, 2*c.curY - c.cntlPtY
}

// checkCount returns an error if the number of points
// is not a non zero multiple of n
func (c *pathCursor) checkCount(key byte, n int) error {
	if len(c.points) == 0 || len(c.points)%n != 0 {
		return errors.Wrapf(errParamMismatch, "command %c expects a multiple of %d values, got %d", key, n, len(c.points))
	}
	return nil
}

// addSeg decodes an SVG seqment string into equivalent Builder commands
func (c *pathCursor) addSeg(segString string) error {
	// Parse the string describing the numeric points in SVG format
	var err error
	c.points, err = ParseNumbers(segString[1:])
	if err != nil {
		return err
	}
	key := segString[0]
	rel := 'a' <= key && key <= 'z'
	lower := key | 0x20
	var dx, dy float64
	offset := func() {
		if rel {
			dx, dy = c.curX, c.curY
		}
	}
	// commands other than move require a current point
	if lower != 'm' && !c.inPath {
		c.moveTo(c.curX, c.curY)
	}
	fromCubic, fromQuad := false, false
	switch lower {
	case 'z':
		if len(c.points) != 0 {
			return errors.Wrapf(errParamMismatch, "command %c takes no value", key)
		}
		c.b.ClosePath()
		c.curX, c.curY = c.placeX, c.placeY
		c.inPath = false
	case 'm':
		if err := c.checkCount(key, 2); err != nil {
			return err
		}
		offset()
		c.moveTo(c.points[0]+dx, c.points[1]+dy)
		for i := 2; i < len(c.points)-1; i += 2 { // implicit line to
			offset()
			c.lineTo(c.points[i]+dx, c.points[i+1]+dy)
		}
	case 'l':
		if err := c.checkCount(key, 2); err != nil {
			return err
		}
		for i := 0; i < len(c.points)-1; i += 2 {
			offset()
			c.lineTo(c.points[i]+dx, c.points[i+1]+dy)
		}
	case 'h':
		if err := c.checkCount(key, 1); err != nil {
			return err
		}
		for _, x := range c.points {
			offset()
			c.lineTo(x+dx, c.curY)
		}
	case 'v':
		if err := c.checkCount(key, 1); err != nil {
			return err
		}
		for _, y := range c.points {
			offset()
			c.lineTo(c.curX, y+dy)
		}
	case 'c':
		if err := c.checkCount(key, 6); err != nil {
			return err
		}
		for i := 0; i < len(c.points)-5; i += 6 {
			offset()
			p := c.points[i : i+6]
			c.b.CubicTo(p[0]+dx, p[1]+dy, p[2]+dx, p[3]+dy, p[4]+dx, p[5]+dy)
			c.cntlPtX, c.cntlPtY = p[2]+dx, p[3]+dy
			c.curX, c.curY = p[4]+dx, p[5]+dy
		}
		fromCubic = true
	case 's':
		if err := c.checkCount(key, 4); err != nil {
			return err
		}
		for i := 0; i < len(c.points)-3; i += 4 {
			offset()
			p := c.points[i : i+4]
			x1, y1 := c.reflect(c.fromCubic || i > 0)
			c.b.CubicTo(x1, y1, p[0]+dx, p[1]+dy, p[2]+dx, p[3]+dy)
			c.cntlPtX, c.cntlPtY = p[0]+dx, p[1]+dy
			c.curX, c.curY = p[2]+dx, p[3]+dy
		}
		fromCubic = true
	case 'q':
		if err := c.checkCount(key, 4); err != nil {
			return err
		}
		for i := 0; i < len(c.points)-3; i += 4 {
			offset()
			p := c.points[i : i+4]
			c.b.QuadTo(p[0]+dx, p[1]+dy, p[2]+dx, p[3]+dy)
			c.cntlPtX, c.cntlPtY = p[0]+dx, p[1]+dy
			c.curX, c.curY = p[2]+dx, p[3]+dy
		}
		fromQuad = true
	case 't':
		if err := c.checkCount(key, 2); err != nil {
			return err
		}
		for i := 0; i < len(c.points)-1; i += 2 {
			offset()
			x1, y1 := c.reflect(c.fromQuad || i > 0)
			c.b.QuadTo(x1, y1, c.points[i]+dx, c.points[i+1]+dy)
			c.cntlPtX, c.cntlPtY = x1, y1
			c.curX, c.curY = c.points[i]+dx, c.points[i+1]+dy
		}
		fromQuad = true
	case 'a':
		if err := c.checkCount(key, 7); err != nil {
			return err
		}
		for i := 0; i < len(c.points)-6; i += 7 {
			offset()
			p := c.points[i : i+7]
			p[5] += dx
			p[6] += dy
			c.arcTo(p)
		}
	default:
		return errors.Wrapf(errCommandUnknown, "command %c", key)
	}
	c.fromCubic, c.fromQuad = fromCubic, fromQuad
	return nil
}

// arcTo adds an elliptical arc from the current point,
// with points holding rx, ry, rotation, large arc flag, sweep flag, x, y (absolute)
func (c *pathCursor) arcTo(points []float64) {
	points[0], points[1] = math.Abs(points[0]), math.Abs(points[1])
	if points[5] == c.curX && points[6] == c.curY { // no-op
		return
	}
	if points[0] == 0 || points[1] == 0 { // degenerated to a line
		c.lineTo(points[5], points[6])
		return
	}
	cx, cy := findEllipseCenter(&points[0], &points[1], points[2]*math.Pi/180, c.curX,
		c.curY, points[5], points[6], points[4] == 0, points[3] == 0)
	c.curX, c.curY = addArc(c.b, points, cx, cy, c.curX, c.curY)
}
