package canvas2pdf

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/tdewolff/test"
)

func TestArcToGeometry(t *testing.T) {
	// right-angled corner at (10,0), from the left going down the screen
	corner, err := ArcToGeometry(Point{0, 0}, Point{10, 0}, Point{10, 10}, 2.0)
	test.Error(t, err)
	test.T(t, corner.T1, Point{8, 0})
	test.T(t, corner.T2, Point{10, 2})
	test.T(t, corner.C, Point{8, 2})
	test.Float(t, corner.R, 2.0)
	test.Float(t, corner.A1, -0.5*math.Pi)
	test.Float(t, corner.A2, 0.0)
	test.That(t, !corner.CCW)
	test.Float(t, corner.Sweep(), 0.5*math.Pi)
	test.T(t, corner.End(), corner.T2)

	// the tangent points lie on the circle and on the edges
	corner, err = ArcToGeometry(Point{0, 0}, Point{10, 0}, Point{0, 10}, 3.0)
	test.Error(t, err)
	test.Float(t, corner.T1.Sub(corner.C).Length(), 3.0)
	test.Float(t, corner.T2.Sub(corner.C).Length(), 3.0)
	test.Float(t, corner.T1.Y, 0.0)
	test.Float(t, corner.T2.X+corner.T2.Y, 10.0)
}

func TestArcToSymmetry(t *testing.T) {
	var tts = []struct {
		p0, p1, p2 Point
		r          float64
	}{
		{Point{0, 0}, Point{10, 0}, Point{10, 10}, 2.0},
		{Point{0, 0}, Point{10, 0}, Point{0, 10}, 3.0},
		{Point{-5, 3}, Point{1.5, -2}, Point{7, 8.25}, 0.5},
		{Point{0, 0}, Point{0, 10}, Point{20, 11}, 4.0},
	}
	for _, tt := range tts {
		t.Run(fmt.Sprint(tt.p0, tt.p1, tt.p2, tt.r), func(t *testing.T) {
			a, err := ArcToGeometry(tt.p0, tt.p1, tt.p2, tt.r)
			test.Error(t, err)
			b, err := ArcToGeometry(tt.p2, tt.p1, tt.p0, tt.r)
			test.Error(t, err)

			test.T(t, b.C, a.C)
			test.Float(t, b.R, a.R)
			test.T(t, b.CCW, !a.CCW)
			test.T(t, b.T1, a.T2)
			test.T(t, b.T2, a.T1)
			test.Float(t, b.Sweep(), -a.Sweep())
		})
	}
}

func TestArcToDegenerate(t *testing.T) {
	p1 := Point{10.5, -3.25}

	// zero radius
	corner, err := ArcToGeometry(Point{0, 0}, p1, Point{20, 20}, 0.0)
	test.Error(t, err)
	test.That(t, corner.T1 == p1, "T1 must equal P1 exactly")
	test.That(t, corner.T2 == p1, "T2 must equal P1 exactly")
	test.That(t, corner.C == p1)

	// collinear
	corner, err = ArcToGeometry(Point{0, 0}, Point{5, 0}, Point{10, 0}, 2.0)
	test.Error(t, err)
	test.T(t, corner.T1, Point{5, 0})
	test.T(t, corner.T2, Point{5, 0})
	test.Float(t, corner.Sweep(), 0.0)

	// coincident
	corner, err = ArcToGeometry(p1, p1, Point{20, 20}, 2.0)
	test.Error(t, err)
	test.T(t, corner.End(), p1)

	_, err = ArcToGeometry(Point{0, 0}, p1, Point{20, 20}, -1.0)
	test.That(t, errors.Is(err, ErrNegativeRadius))
}
