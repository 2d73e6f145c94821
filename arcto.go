package canvas2pdf

import (
	"errors"
	"math"
)

// ErrNegativeRadius is returned for a corner arc with a negative radius.
var ErrNegativeRadius = errors.New("negative radius")

// ArcTo is the solution of a rounded corner: the circle with center C and radius R touches
// the segment P0-P1 at T1 and P1-P2 at T2. The arc runs from angle A1 to A2, with decreasing
// angle when CCW is set (the canvas anticlockwise flag).
type ArcTo struct {
	T1, T2 Point
	C      Point
	R      float64
	A1, A2 float64
	CCW    bool
}

// ArcToGeometry returns the rounded corner at P1 for a path coming from P0 and continuing to P2
// with radius r. For r = 0, or when the points are collinear or coincide, both tangent points
// and the center equal P1 and the arc has zero sweep.
func ArcToGeometry(p0, p1, p2 Point, r float64) (ArcTo, error) {
	if r < 0.0 || math.IsNaN(r) {
		return ArcTo{}, ErrNegativeRadius
	}
	corner := ArcTo{T1: p1, T2: p1, C: p1, R: r}
	if r == 0.0 {
		return corner, nil
	}

	u1 := p0.Sub(p1).Norm(1.0)
	u2 := p2.Sub(p1).Norm(1.0)
	cross := u1.PerpDot(u2)
	if (u1 == Point{}) || (u2 == Point{}) || Equal(cross, 0.0) {
		return corner, nil
	}

	// theta is the interior angle at P1, in (0,PI)
	theta := math.Acos(math.Max(-1.0, math.Min(1.0, u1.Dot(u2))))
	d := r / math.Tan(theta/2.0)
	h := r / math.Sin(theta/2.0)
	corner.T1 = p1.Add(u1.Mul(d))
	corner.T2 = p1.Add(u2.Mul(d))
	corner.C = p1.Add(u1.Add(u2).Norm(h))
	corner.A1 = corner.T1.Sub(corner.C).Angle()
	corner.A2 = corner.T2.Sub(corner.C).Angle()

	sweep := angleNorm(corner.A2 - corner.A1)
	corner.CCW = math.Pi < sweep
	return corner, nil
}

// Sweep returns the signed angle swept from A1 to A2, negative when CCW.
func (a ArcTo) Sweep() float64 {
	sweep := angleNorm(a.A2 - a.A1)
	if a.CCW && sweep != 0.0 {
		sweep -= 2.0 * math.Pi
	}
	return sweep
}

// End returns the pen position after the corner.
func (a ArcTo) End() Point {
	return a.T2
}
