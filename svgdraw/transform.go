package svgdraw

import (
	"fmt"
	"math"
	"strings"

	"github.com/srwiley/rasterx"
)

// TransformError is returned for a transform
// with a wrong number of values.
type TransformError struct {
	Fragment string // as found in the attribute, without the closing parenthesis
	Keyword  string
	Got      int
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("invalid transform %q: wrong number of values (%d) for %s", e.Fragment, e.Got, e.Keyword)
}

type transformKind uint8

const (
	tScale transformKind = iota
	tTranslate
	tMatrix
	tRotate
	tSkewX
	tSkewY
)

// detection order: the first keyword contained
// in a fragment wins
var transformKeywords = [...]string{
	tScale:     "scale",
	tTranslate: "translate",
	tMatrix:    "matrix",
	tRotate:    "rotate",
	tSkewX:     "skewX",
	tSkewY:     "skewY",
}

type transformOp struct {
	kind   transformKind
	values []float64
}

// matrixHolder is implemented by the drawing context,
// and by standalone matrices such as gradient transforms.
type matrixHolder interface {
	Matrix() rasterx.Matrix2D
	SetMatrix(rasterx.Matrix2D)
}

type standaloneMatrix struct{ m rasterx.Matrix2D }

func (s *standaloneMatrix) Matrix() rasterx.Matrix2D     { return s.m }
func (s *standaloneMatrix) SetMatrix(m rasterx.Matrix2D) { s.m = m }

// parseTransform splits a transform attribute into its operations,
// in document order. Fragments without a known keyword are ignored.
func (s *Surface) parseTransform(attr string) ([]transformOp, error) {
	var ops []transformOp
	for _, fragment := range strings.Split(attr, ")") {
		kind := -1
		for k, keyword := range transformKeywords {
			if strings.Contains(fragment, keyword) {
				kind = k
				break
			}
		}
		if kind == -1 {
			continue
		}
		keyword := transformKeywords[kind]
		args := strings.ReplaceAll(strings.ReplaceAll(fragment, keyword, ""), "(", "")
		var values []float64
		for _, field := range strings.Fields(normalize(args)) {
			values = append(values, s.size(field, axisXY))
		}

		op := transformOp{kind: transformKind(kind), values: values}
		var ok bool
		switch op.kind {
		case tScale, tTranslate:
			ok = len(values) == 1 || len(values) == 2
		case tMatrix:
			ok = len(values) == 6
		case tRotate:
			ok = len(values) == 1 || len(values) == 3
		case tSkewX, tSkewY:
			ok = len(values) == 1
		}
		if !ok {
			return nil, &TransformError{Fragment: strings.TrimSpace(fragment), Keyword: keyword, Got: len(values)}
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func degToRad(angle float64) float64 { return angle * math.Pi / 180 }

// applySkew adds the angle to the xy (skewX) or yx (skewY)
// cell of the current matrix.
func applySkew(target matrixHolder, kind transformKind, radians float64) {
	m := target.Matrix()
	if kind == tSkewX {
		m.C += radians
	} else {
		m.B += radians
	}
	target.SetMatrix(m)
}

// applyTransforms composes the operations onto the matrix of `target`.
// A matrix operation replaces the current matrix.
func applyTransforms(target matrixHolder, ops []transformOp) {
	for _, op := range ops {
		v := op.values
		m := target.Matrix()
		switch op.kind {
		case tMatrix:
			target.SetMatrix(rasterx.Matrix2D{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]})
		case tRotate:
			if len(v) == 3 {
				m = m.Translate(v[1], v[2]).Rotate(degToRad(v[0])).Translate(-v[1], -v[2])
			} else {
				m = m.Rotate(degToRad(v[0]))
			}
			target.SetMatrix(m)
		case tSkewX, tSkewY:
			applySkew(target, op.kind, degToRad(v[0]))
		case tScale:
			x, y := v[0], v[0]
			if len(v) == 2 {
				y = v[1]
			}
			target.SetMatrix(m.Scale(x, y))
		case tTranslate:
			x, y := v[0], v[0]
			if len(v) == 2 {
				y = v[1]
			}
			target.SetMatrix(m.Translate(x, y))
		}
	}
}
