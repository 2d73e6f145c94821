package canvas2pdf

import (
	"fmt"
	"image"
)

// argument signatures: f number, b boolean, s string, i image, a number list, and the optional
// or variadic forms B (trailing boolean), S (strings) and F (numbers)
type method struct {
	sig string
	fn  func(Context, args) any
}

var methods = map[string]method{
	OpSave:    {"", func(c Context, a args) any { c.Save(); return nil }},
	OpRestore: {"", func(c Context, a args) any { c.Restore(); return nil }},
	OpScale:   {"ff", func(c Context, a args) any { c.Scale(a.f(0), a.f(1)); return nil }},
	OpRotate:  {"f", func(c Context, a args) any { c.Rotate(a.f(0)); return nil }},
	OpTranslate: {"ff", func(c Context, a args) any {
		c.Translate(a.f(0), a.f(1))
		return nil
	}},
	OpTransform: {"ffffff", func(c Context, a args) any {
		c.Transform(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4), a.f(5))
		return nil
	}},
	OpSetTransform: {"ffffff", func(c Context, a args) any {
		c.SetTransform(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4), a.f(5))
		return nil
	}},
	OpBeginPath: {"", func(c Context, a args) any { c.BeginPath(); return nil }},
	OpMoveTo:    {"ff", func(c Context, a args) any { c.MoveTo(a.f(0), a.f(1)); return nil }},
	OpLineTo:    {"ff", func(c Context, a args) any { c.LineTo(a.f(0), a.f(1)); return nil }},
	OpArcTo: {"fffffF", func(c Context, a args) any {
		if c, ok := c.(ArcToFromer); ok && 7 <= len(a) {
			c.ArcToFrom(a.f(5), a.f(6), a.f(0), a.f(1), a.f(2), a.f(3), a.f(4))
			return nil
		}
		c.ArcTo(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4))
		return nil
	}},
	OpBezierCurveTo: {"ffffff", func(c Context, a args) any {
		c.BezierCurveTo(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4), a.f(5))
		return nil
	}},
	OpQuadraticCurveTo: {"ffff", func(c Context, a args) any {
		c.QuadraticCurveTo(a.f(0), a.f(1), a.f(2), a.f(3))
		return nil
	}},
	OpClosePath: {"", func(c Context, a args) any { c.ClosePath(); return nil }},
	OpRect: {"ffff", func(c Context, a args) any {
		c.Rect(a.f(0), a.f(1), a.f(2), a.f(3))
		return nil
	}},
	OpArc: {"fffffB", func(c Context, a args) any {
		c.Arc(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4), a.b(5))
		return nil
	}},
	OpEllipse: {"fffffffB", func(c Context, a args) any {
		c.Ellipse(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4), a.f(5), a.f(6), a.b(7))
		return nil
	}},
	OpFill:   {"S", func(c Context, a args) any { c.Fill(a.strings(0)...); return nil }},
	OpStroke: {"", func(c Context, a args) any { c.Stroke(); return nil }},
	OpClip:   {"S", func(c Context, a args) any { c.Clip(a.strings(0)...); return nil }},
	OpFillAndStroke: {"S", func(c Context, a args) any {
		if c, ok := c.(FillStroker); ok {
			c.FillAndStroke(a.strings(0)...)
			return nil
		}
		c.Fill(a.strings(0)...)
		c.Stroke()
		return nil
	}},
	OpFillRect: {"ffff", func(c Context, a args) any {
		c.FillRect(a.f(0), a.f(1), a.f(2), a.f(3))
		return nil
	}},
	OpStrokeRect: {"ffff", func(c Context, a args) any {
		c.StrokeRect(a.f(0), a.f(1), a.f(2), a.f(3))
		return nil
	}},
	OpClearRect: {"ffff", func(c Context, a args) any {
		c.ClearRect(a.f(0), a.f(1), a.f(2), a.f(3))
		return nil
	}},
	OpFillText: {"sff", func(c Context, a args) any {
		c.FillText(a.s(0), a.f(1), a.f(2))
		return nil
	}},
	OpStrokeText: {"sff", func(c Context, a args) any {
		c.StrokeText(a.s(0), a.f(1), a.f(2))
		return nil
	}},
	OpMeasureText: {"s", func(c Context, a args) any { return c.MeasureText(a.s(0)) }},
	OpDrawImage: {"iF", func(c Context, a args) any {
		c.DrawImage(a[0].(image.Image), a.floats(1)...)
		return nil
	}},
	OpSetLineDash: {"a", func(c Context, a args) any { c.SetLineDash(a.list(0)); return nil }},
	OpCreateLinearGradient: {"ffff", func(c Context, a args) any {
		return c.CreateLinearGradient(a.f(0), a.f(1), a.f(2), a.f(3))
	}},
	OpCreateRadialGradient: {"ffffff", func(c Context, a args) any {
		return c.CreateRadialGradient(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4), a.f(5))
	}},
	OpBackground: {"s", func(c Context, a args) any {
		if c, ok := c.(Backgrounder); ok {
			c.Background(a.s(0))
		}
		return nil
	}},
	OpEnd: {"", func(c Context, a args) any { return c.End() }},
}

// Invoke calls the named operation on ctx with arguments as recorded in an operation log or
// passed by a dynamic host. Numbers may be of any Go numeric type. Arguments beyond those of
// the operation are ignored. It returns the result of the operation, if any.
func Invoke(ctx Context, name string, arguments ...any) (any, error) {
	m, ok := methods[name]
	if !ok {
		return nil, fmt.Errorf("%w operation %q", ErrUnsupported, name)
	} else if !args(arguments).match(m.sig) {
		return nil, fmt.Errorf("%w: %v", ErrArguments, Call(name, arguments...))
	}
	result := m.fn(ctx, arguments)
	if err, ok := result.(error); ok {
		return nil, err
	}
	return result, nil
}

// Assign sets the named property on ctx.
func Assign(ctx Context, name string, value any) error {
	switch name {
	case PropFillStyle:
		ctx.SetFillStyle(value)
		return nil
	case PropStrokeStyle:
		ctx.SetStrokeStyle(value)
		return nil
	case PropLineWidth, PropMiterLimit, PropLineDashOffset, PropGlobalAlpha:
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%w: %v", ErrArguments, Write(name, value))
		}
		switch name {
		case PropLineWidth:
			ctx.SetLineWidth(f)
		case PropMiterLimit:
			ctx.SetMiterLimit(f)
		case PropLineDashOffset:
			ctx.SetLineDashOffset(f)
		case PropGlobalAlpha:
			ctx.SetGlobalAlpha(f)
		}
		return nil
	case PropLineCap, PropLineJoin, PropFont, PropTextAlign, PropTextBaseline:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %v", ErrArguments, Write(name, value))
		}
		switch name {
		case PropLineCap:
			ctx.SetLineCap(s)
		case PropLineJoin:
			ctx.SetLineJoin(s)
		case PropFont:
			ctx.SetFont(s)
		case PropTextAlign:
			ctx.SetTextAlign(s)
		case PropTextBaseline:
			ctx.SetTextBaseline(s)
		}
		return nil
	}
	return fmt.Errorf("%w property %q", ErrUnsupported, name)
}

// Property returns the named property of ctx.
func Property(ctx Context, name string) (any, error) {
	switch name {
	case PropFillStyle:
		return ctx.FillStyle(), nil
	case PropStrokeStyle:
		return ctx.StrokeStyle(), nil
	case PropLineWidth:
		return ctx.LineWidth(), nil
	case PropLineCap:
		return ctx.LineCap(), nil
	case PropLineJoin:
		return ctx.LineJoin(), nil
	case PropMiterLimit:
		return ctx.MiterLimit(), nil
	case PropLineDashOffset:
		return ctx.LineDashOffset(), nil
	case PropGlobalAlpha:
		return ctx.GlobalAlpha(), nil
	case PropFont:
		return ctx.Font(), nil
	case PropTextAlign:
		return ctx.TextAlign(), nil
	case PropTextBaseline:
		return ctx.TextBaseline(), nil
	}
	return nil, fmt.Errorf("%w property %q", ErrUnsupported, name)
}

////////////////////////////////////////////////////////////////

type args []any

func (a args) match(sig string) bool {
	i := 0
	for _, c := range sig {
		switch c {
		case 'B':
			return len(a) <= i || isArg('b', a[i])
		case 'S', 'F':
			for ; i < len(a); i++ {
				if !isArg(c, a[i]) {
					return false
				}
			}
			return true
		}
		if len(a) <= i || !isArg(c, a[i]) {
			return false
		}
		i++
	}
	return true
}

func isArg(c rune, v any) bool {
	switch c {
	case 'f', 'F':
		switch v.(type) {
		case float64, float32, int, int64, int32:
			return true
		}
	case 'b':
		_, isBool := v.(bool)
		_, isNum := toFloat(v)
		return isBool || isNum || v == nil
	case 's', 'S':
		_, ok := v.(string)
		return ok
	case 'i':
		_, ok := v.(image.Image)
		return ok
	case 'a':
		switch v := v.(type) {
		case []float64:
			return true
		case []any:
			for _, item := range v {
				if _, ok := toFloat(item); !ok {
					return false
				}
			}
			return true
		}
	}
	return false
}

func (a args) f(i int) float64 {
	v, _ := toFloat(a[i])
	return v
}

func (a args) b(i int) bool {
	if len(a) <= i {
		return false
	} else if v, ok := a[i].(bool); ok {
		return v
	}
	v, _ := toFloat(a[i])
	return v != 0.0
}

func (a args) s(i int) string {
	s, _ := a[i].(string)
	return s
}

func (a args) strings(i int) []string {
	ss := []string{}
	for _, v := range a[i:] {
		ss = append(ss, v.(string))
	}
	return ss
}

func (a args) floats(i int) []float64 {
	fs := []float64{}
	for _, v := range a[i:] {
		f, _ := toFloat(v)
		fs = append(fs, f)
	}
	return fs
}

func (a args) list(i int) []float64 {
	switch v := a[i].(type) {
	case []float64:
		return v
	case []any:
		return args(v).floats(0)
	}
	return nil
}
