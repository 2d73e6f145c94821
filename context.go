package canvas2pdf

import (
	"image"
	"image/color"
	"sort"
)

// Context is the canvas 2D drawing surface as seen by a host. It is implemented by Recorder,
// which captures the calls, and by the PDF adapter in renderers/pdf, which draws them.
//
// Styles are either a CSS color string or a *Gradient.
type Context interface {
	Save()
	Restore()
	Scale(x, y float64)
	Rotate(angle float64)
	Translate(x, y float64)
	Transform(a, b, c, d, e, f float64)
	SetTransform(a, b, c, d, e, f float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ArcTo(x1, y1, x2, y2, r float64)
	BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64)
	QuadraticCurveTo(cpx, cpy, x, y float64)
	ClosePath()
	Rect(x, y, w, h float64)
	Arc(x, y, r, startAngle, endAngle float64, ccw bool)
	Ellipse(x, y, rx, ry, rotation, startAngle, endAngle float64, ccw bool)

	// Fill accepts an optional fill rule ("nonzero" or "evenodd") or color.
	Fill(args ...string)
	Stroke()
	Clip(fillRule ...string)
	FillRect(x, y, w, h float64)
	StrokeRect(x, y, w, h float64)
	ClearRect(x, y, w, h float64)

	FillText(text string, x, y float64)
	StrokeText(text string, x, y float64)
	MeasureText(text string) TextMetrics

	// DrawImage accepts 2, 4 or 8 numbers: dx dy, dx dy dw dh, or sx sy sw sh dx dy dw dh.
	DrawImage(img image.Image, args ...float64)
	SetLineDash(segments []float64)
	CreateLinearGradient(x0, y0, x1, y1 float64) *Gradient
	CreateRadialGradient(x0, y0, r0, x1, y1, r1 float64) *Gradient

	// End finishes the drawing. For a document target it is the completion signal.
	End() error

	FillStyle() any
	SetFillStyle(style any)
	StrokeStyle() any
	SetStrokeStyle(style any)
	LineWidth() float64
	SetLineWidth(width float64)
	LineCap() string
	SetLineCap(lineCap string)
	LineJoin() string
	SetLineJoin(lineJoin string)
	MiterLimit() float64
	SetMiterLimit(limit float64)
	LineDashOffset() float64
	SetLineDashOffset(offset float64)
	GlobalAlpha() float64
	SetGlobalAlpha(alpha float64)
	Font() string
	SetFont(font string)
	TextAlign() string
	SetTextAlign(align string)
	TextBaseline() string
	SetTextBaseline(baseline string)
}

// FillStroker is implemented by targets that can fill and stroke the current path in one
// painting operation.
type FillStroker interface {
	FillAndStroke(args ...string)
}

// ArcToFromer is implemented by targets that accept the start point of a corner arc
// explicitly instead of tracking it themselves.
type ArcToFromer interface {
	ArcToFrom(x0, y0, x1, y1, x2, y2, r float64)
}

// Backgrounder is implemented by targets that can paint the whole page.
type Backgrounder interface {
	Background(color string)
}

// TextMetrics is the result of MeasureText.
type TextMetrics struct {
	Width  float64
	Height float64
}

////////////////////////////////////////////////////////////////

// GradientKind is either a linear or a radial gradient.
type GradientKind int

// see GradientKind
const (
	LinearGradient GradientKind = iota
	RadialGradient
)

// Stop is a color stop of a gradient.
type Stop struct {
	Offset float64
	Color  color.RGBA
}

// Gradient is a linear gradient from (X0,Y0) to (X1,Y1), or a radial gradient between the
// circles (X0,Y0,R0) and (X1,Y1,R1).
type Gradient struct {
	Kind       GradientKind
	X0, Y0, R0 float64
	X1, Y1, R1 float64
	Stops      []Stop
}

// NewLinearGradient returns a linear gradient.
func NewLinearGradient(x0, y0, x1, y1 float64) *Gradient {
	return &Gradient{Kind: LinearGradient, X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// NewRadialGradient returns a radial gradient.
func NewRadialGradient(x0, y0, r0, x1, y1, r1 float64) *Gradient {
	return &Gradient{Kind: RadialGradient, X0: x0, Y0: y0, R0: r0, X1: x1, Y1: y1, R1: r1}
}

// AddColorStop adds a color stop. Offsets outside [0,1] and unparsable colors are ignored,
// and stops stay sorted by offset.
func (g *Gradient) AddColorStop(offset float64, col string) {
	if offset < 0.0 || 1.0 < offset {
		return
	}
	c, err := ParseColor(col)
	if err != nil {
		Logger().Warn("ignoring gradient color stop", "color", col, "err", err)
		return
	}
	g.Stops = append(g.Stops, Stop{offset, c})
	sort.SliceStable(g.Stops, func(i, j int) bool {
		return g.Stops[i].Offset < g.Stops[j].Offset
	})
}

func (g *Gradient) String() string {
	if g.Kind == LinearGradient {
		return "LinearGradient" + formatValue([]float64{g.X0, g.Y0, g.X1, g.Y1})
	}
	return "RadialGradient" + formatValue([]float64{g.X0, g.Y0, g.R0, g.X1, g.Y1, g.R1})
}
