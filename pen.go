package canvas2pdf

import "math"

// Pen is the running current point of a path. Rewrite and the PDF adapter both feed it the
// operations they see so that they agree on where a corner arc starts.
type Pen struct {
	Point
	start Point
}

// Set moves the pen to (x,y) and starts a new subpath there.
func (p *Pen) Set(x, y float64) {
	p.Point = Point{x, y}
	p.start = p.Point
}

// Update moves the pen to the end point of a call to the named operation. The arguments of
// arcTo are x1, y1, x2, y2, r, optionally followed by the start point.
func (p *Pen) Update(name string, args []any) {
	f := func(i int) float64 {
		if i < len(args) {
			if v, ok := toFloat(args[i]); ok {
				return v
			}
		}
		return math.NaN()
	}

	var q Point
	subpath := false
	switch name {
	case OpMoveTo, OpRect:
		q = Point{f(0), f(1)}
		subpath = true
	case OpLineTo:
		q = Point{f(0), f(1)}
	case OpBezierCurveTo:
		q = Point{f(4), f(5)}
	case OpQuadraticCurveTo:
		q = Point{f(2), f(3)}
	case OpArcTo:
		p0 := p.Point
		if 7 <= len(args) {
			p0 = Point{f(5), f(6)}
		}
		corner, err := ArcToGeometry(p0, Point{f(0), f(1)}, Point{f(2), f(3)}, f(4))
		if err != nil {
			return
		}
		q = corner.End()
	case OpArc:
		x, y, r, a1 := f(0), f(1), f(2), f(4)
		q = Point{x + r*math.Cos(a1), y + r*math.Sin(a1)}
	case OpEllipse:
		x, y, rx, ry, rot, a1 := f(0), f(1), f(2), f(3), f(4), f(6)
		sinrot, cosrot := math.Sincos(rot)
		sina, cosa := math.Sincos(a1)
		q = Point{x + rx*cosa*cosrot - ry*sina*sinrot, y + rx*cosa*sinrot + ry*sina*cosrot}
	case OpClosePath:
		q = p.start
	default:
		return
	}
	if math.IsNaN(q.X) || math.IsNaN(q.Y) {
		return
	} else if subpath {
		p.Set(q.X, q.Y)
	} else {
		p.Point = q
	}
}
