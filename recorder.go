package canvas2pdf

import (
	"errors"
	"fmt"
	"image"
	"maps"
	"slices"
)

// ErrUnsupported is returned for operation and property names outside the drawing surface.
var ErrUnsupported = errors.New("unsupported")

// ErrArguments is returned when an operation is called with the wrong arguments.
var ErrArguments = errors.New("bad arguments")

// Defaults holds the initial values of the tracked properties.
var Defaults = map[string]any{
	PropFillStyle:      "#000000",
	PropStrokeStyle:    "#000000",
	PropLineWidth:      1.0,
	PropLineCap:        "butt",
	PropLineJoin:       "miter",
	PropMiterLimit:     10.0,
	PropLineDashOffset: 0.0,
	PropGlobalAlpha:    1.0,
	PropFont:           DefaultFont,
	PropTextAlign:      "left",
	PropTextBaseline:   "alphabetic",
}

// Recorder is a drawing surface that draws nothing. It appends every operation and property
// access to its log, which can later be rewritten and replayed onto a real surface. A recorder
// is used for a single drawing pass.
type Recorder struct {
	log   Log
	props map[string]any
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		props: maps.Clone(Defaults),
	}
}

// Log returns the recorded operations.
func (r *Recorder) Log() Log {
	return r.log
}

// Reset clears the log and restores the default property values.
func (r *Recorder) Reset() {
	r.log = nil
	r.props = maps.Clone(Defaults)
}

func (r *Recorder) record(name string, args ...any) {
	r.log = append(r.log, Op{Kind: CallOp, Name: name, Args: args})
}

func (r *Recorder) read(name string) any {
	v := r.props[name]
	r.log = append(r.log, Op{Kind: ReadOp, Name: name, Value: v})
	return v
}

func (r *Recorder) write(name string, v any) {
	r.props[name] = v
	r.log = append(r.log, Op{Kind: WriteOp, Name: name, Value: v})
}

// Call records an operation by name, for hosts without static types. Unsupported names are
// reported to the logger and ignored.
func (r *Recorder) Call(name string, args ...any) (any, error) {
	if !IsOperation(name) {
		Logger().Warn("unsupported operation", "name", name)
		return nil, fmt.Errorf("%w operation %q", ErrUnsupported, name)
	}
	return Invoke(r, name, args...)
}

// Get reads a property by name. Unsupported names are reported and read as nil.
func (r *Recorder) Get(name string) any {
	if !IsProperty(name) {
		Logger().Warn("unsupported property", "name", name)
		return nil
	}
	return r.read(name)
}

// Set writes a property by name. Unsupported names are reported and ignored.
func (r *Recorder) Set(name string, value any) error {
	if !IsProperty(name) {
		Logger().Warn("unsupported property", "name", name)
		return fmt.Errorf("%w property %q", ErrUnsupported, name)
	}
	return Assign(r, name, value)
}

func (r *Recorder) Save()                  { r.record(OpSave) }
func (r *Recorder) Restore()               { r.record(OpRestore) }
func (r *Recorder) Scale(x, y float64)     { r.record(OpScale, x, y) }
func (r *Recorder) Rotate(angle float64)   { r.record(OpRotate, angle) }
func (r *Recorder) Translate(x, y float64) { r.record(OpTranslate, x, y) }

func (r *Recorder) Transform(a, b, c, d, e, f float64) {
	r.record(OpTransform, a, b, c, d, e, f)
}

func (r *Recorder) SetTransform(a, b, c, d, e, f float64) {
	r.record(OpSetTransform, a, b, c, d, e, f)
}

func (r *Recorder) BeginPath()          { r.record(OpBeginPath) }
func (r *Recorder) MoveTo(x, y float64) { r.record(OpMoveTo, x, y) }
func (r *Recorder) LineTo(x, y float64) { r.record(OpLineTo, x, y) }

func (r *Recorder) ArcTo(x1, y1, x2, y2, radius float64) {
	r.record(OpArcTo, x1, y1, x2, y2, radius)
}

// ArcToFrom records a corner arc with an explicit start point, as produced by Rewrite.
func (r *Recorder) ArcToFrom(x0, y0, x1, y1, x2, y2, radius float64) {
	r.record(OpArcTo, x1, y1, x2, y2, radius, x0, y0)
}

func (r *Recorder) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) {
	r.record(OpBezierCurveTo, cp1x, cp1y, cp2x, cp2y, x, y)
}

func (r *Recorder) QuadraticCurveTo(cpx, cpy, x, y float64) {
	r.record(OpQuadraticCurveTo, cpx, cpy, x, y)
}

func (r *Recorder) ClosePath()              { r.record(OpClosePath) }
func (r *Recorder) Rect(x, y, w, h float64) { r.record(OpRect, x, y, w, h) }

func (r *Recorder) Arc(x, y, radius, startAngle, endAngle float64, ccw bool) {
	r.record(OpArc, x, y, radius, startAngle, endAngle, ccw)
}

func (r *Recorder) Ellipse(x, y, rx, ry, rotation, startAngle, endAngle float64, ccw bool) {
	r.record(OpEllipse, x, y, rx, ry, rotation, startAngle, endAngle, ccw)
}

func (r *Recorder) Fill(args ...string)     { r.record(OpFill, stringArgs(args)...) }
func (r *Recorder) Stroke()                 { r.record(OpStroke) }
func (r *Recorder) Clip(fillRule ...string) { r.record(OpClip, stringArgs(fillRule)...) }

// FillAndStroke records a combined fill and stroke, as produced by Rewrite.
func (r *Recorder) FillAndStroke(args ...string) {
	r.record(OpFillAndStroke, stringArgs(args)...)
}

func (r *Recorder) FillRect(x, y, w, h float64)   { r.record(OpFillRect, x, y, w, h) }
func (r *Recorder) StrokeRect(x, y, w, h float64) { r.record(OpStrokeRect, x, y, w, h) }
func (r *Recorder) ClearRect(x, y, w, h float64)  { r.record(OpClearRect, x, y, w, h) }

func (r *Recorder) FillText(text string, x, y float64)   { r.record(OpFillText, text, x, y) }
func (r *Recorder) StrokeText(text string, x, y float64) { r.record(OpStrokeText, text, x, y) }

// MeasureText measures with the standard PDF font metrics of the current font, which are the
// metrics the text will be drawn with.
func (r *Recorder) MeasureText(text string) TextMetrics {
	r.record(OpMeasureText, text)
	font, _ := r.props[PropFont].(string)
	face, err := ParseFont(font)
	if err != nil {
		face = MustParseFont(DefaultFont)
	}
	return TextMetrics{
		Width:  face.TextWidth(text),
		Height: face.LineHeight(),
	}
}

func (r *Recorder) DrawImage(img image.Image, args ...float64) {
	r.record(OpDrawImage, append([]any{img}, floatArgs(args)...)...)
}

func (r *Recorder) SetLineDash(segments []float64) {
	r.record(OpSetLineDash, slices.Clone(segments))
}

// CreateLinearGradient records the call and returns a new gradient. The gradient is shared
// with the log, so stops added later are seen on replay.
func (r *Recorder) CreateLinearGradient(x0, y0, x1, y1 float64) *Gradient {
	r.record(OpCreateLinearGradient, x0, y0, x1, y1)
	return NewLinearGradient(x0, y0, x1, y1)
}

// CreateRadialGradient records the call and returns a new gradient.
func (r *Recorder) CreateRadialGradient(x0, y0, r0, x1, y1, r1 float64) *Gradient {
	r.record(OpCreateRadialGradient, x0, y0, r0, x1, y1, r1)
	return NewRadialGradient(x0, y0, r0, x1, y1, r1)
}

// Background records painting the whole page.
func (r *Recorder) Background(color string) { r.record(OpBackground, color) }

// End records the end of the drawing.
func (r *Recorder) End() error {
	r.record(OpEnd)
	return nil
}

func (r *Recorder) FillStyle() any            { return r.read(PropFillStyle) }
func (r *Recorder) SetFillStyle(style any)    { r.write(PropFillStyle, style) }
func (r *Recorder) StrokeStyle() any          { return r.read(PropStrokeStyle) }
func (r *Recorder) SetStrokeStyle(style any)  { r.write(PropStrokeStyle, style) }
func (r *Recorder) LineWidth() float64        { return r.readFloat(PropLineWidth) }
func (r *Recorder) SetLineWidth(w float64)    { r.write(PropLineWidth, w) }
func (r *Recorder) LineCap() string           { return r.readString(PropLineCap) }
func (r *Recorder) SetLineCap(lineCap string) { r.write(PropLineCap, lineCap) }
func (r *Recorder) LineJoin() string          { return r.readString(PropLineJoin) }
func (r *Recorder) SetLineJoin(join string)   { r.write(PropLineJoin, join) }
func (r *Recorder) MiterLimit() float64       { return r.readFloat(PropMiterLimit) }
func (r *Recorder) SetMiterLimit(l float64)   { r.write(PropMiterLimit, l) }
func (r *Recorder) LineDashOffset() float64   { return r.readFloat(PropLineDashOffset) }
func (r *Recorder) SetLineDashOffset(o float64) {
	r.write(PropLineDashOffset, o)
}
func (r *Recorder) GlobalAlpha() float64            { return r.readFloat(PropGlobalAlpha) }
func (r *Recorder) SetGlobalAlpha(alpha float64)    { r.write(PropGlobalAlpha, alpha) }
func (r *Recorder) Font() string                    { return r.readString(PropFont) }
func (r *Recorder) SetFont(font string)             { r.write(PropFont, font) }
func (r *Recorder) TextAlign() string               { return r.readString(PropTextAlign) }
func (r *Recorder) SetTextAlign(align string)       { r.write(PropTextAlign, align) }
func (r *Recorder) TextBaseline() string            { return r.readString(PropTextBaseline) }
func (r *Recorder) SetTextBaseline(baseline string) { r.write(PropTextBaseline, baseline) }

func (r *Recorder) readFloat(name string) float64 {
	f, _ := toFloat(r.read(name))
	return f
}

func (r *Recorder) readString(name string) string {
	s, _ := r.read(name).(string)
	return s
}

func stringArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}

func floatArgs(fs []float64) []any {
	args := make([]any, len(fs))
	for i, f := range fs {
		args[i] = f
	}
	return args
}
