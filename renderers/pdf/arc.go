package pdf

import (
	"math"

	"github.com/tdewolff/canvas2pdf"
)

type cubic struct {
	cp1, cp2, end canvas2pdf.Point
}

// arcSweep returns the signed angle swept by a canvas arc from theta0 to theta1. A sweep of a
// full turn or more draws the full circle.
func arcSweep(theta0, theta1 float64, ccw bool) float64 {
	if !ccw && 2.0*math.Pi <= theta1-theta0 {
		return 2.0 * math.Pi
	} else if ccw && 2.0*math.Pi <= theta0-theta1 {
		return -2.0 * math.Pi
	}

	sweep := math.Mod(theta1-theta0, 2.0*math.Pi)
	if sweep < 0.0 {
		sweep += 2.0 * math.Pi
	}
	if ccw && sweep != 0.0 {
		sweep -= 2.0 * math.Pi
	}
	return sweep
}

// ellipseToCubics returns the start point of the elliptical arc centered at (cx,cy) with radii
// rx and ry rotated by rot, running from angle theta0 over the signed sweep, and the cubic
// Béziers approximating it. Each Bézier covers at most a quarter turn.
func ellipseToCubics(cx, cy, rx, ry, rot, theta0, sweep float64) (canvas2pdf.Point, []cubic) {
	m := canvas2pdf.Identity.Translate(cx, cy).Rotate(rot).Scale(rx, ry)
	unit := func(theta float64) canvas2pdf.Point {
		sintheta, costheta := math.Sincos(theta)
		return canvas2pdf.Point{X: costheta, Y: sintheta}
	}

	start := m.Dot(unit(theta0))
	n := int(math.Ceil(math.Abs(sweep) / (0.5 * math.Pi)))
	if n == 0 {
		return start, nil
	}

	// also see https://pomax.github.io/bezierinfo/#circles_cubic
	dtheta := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(dtheta/4.0)

	cubics := make([]cubic, 0, n)
	theta := theta0
	p0 := unit(theta)
	for i := 0; i < n; i++ {
		theta += dtheta
		p3 := unit(theta)
		cp1 := canvas2pdf.Point{X: p0.X - k*p0.Y, Y: p0.Y + k*p0.X}
		cp2 := canvas2pdf.Point{X: p3.X + k*p3.Y, Y: p3.Y - k*p3.X}
		cubics = append(cubics, cubic{m.Dot(cp1), m.Dot(cp2), m.Dot(p3)})
		p0 = p3
	}
	return start, cubics
}
