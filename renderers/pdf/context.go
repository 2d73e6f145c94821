package pdf

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/tdewolff/canvas2pdf"
	"github.com/tdewolff/canvas2pdf/advice"
	"golang.org/x/image/draw"
)

// ContextOptions are the options of the drawing surface.
type ContextOptions struct {
	// Rules is set when a host draws onto the surface directly, without the log being rewritten
	// first. The first lineTo of a path then starts a subpath, and a fill that is directly
	// followed by a stroke is painted as one operation.
	Rules bool

	// Debug logs every operation at debug level.
	Debug bool
}

var (
	_ canvas2pdf.Context      = (*Context)(nil)
	_ canvas2pdf.FillStroker  = (*Context)(nil)
	_ canvas2pdf.ArcToFromer  = (*Context)(nil)
	_ canvas2pdf.Backgrounder = (*Context)(nil)
)

// DefaultContextOptions are the default surface options, for replaying a rewritten log.
var DefaultContextOptions = ContextOptions{}

type contextState struct {
	fillStyle    any
	strokeStyle  any
	lineWidth    float64
	lineCap      string
	lineJoin     string
	miterLimit   float64
	dashes       []float64
	dashOffset   float64
	alpha        float64
	font         string
	face         canvas2pdf.FontFace
	textAlign    string
	textBaseline string
}

type moveToState struct {
	moveTo bool
}

type fillAndStrokeState struct {
	fillCalled bool
	evenOdd    bool
	fillStyle  any // fill style at the time of the fill
}

// Context is a canvas drawing surface that draws onto a page of a PDF document.
type Context struct {
	doc  *Document
	page *Page
	opts ContextOptions
	ops  *advice.Table

	pen   canvas2pdf.Pen
	open  bool // a subpath is started
	dirty bool // the page has path segments that are not yet painted

	state contextState
	stack []contextState

	err   error
	ended bool
}

// NewContext starts a new page of width by height points in the document and returns a
// drawing surface for it. A nil opts uses DefaultContextOptions.
func NewContext(doc *Document, width, height float64, opts *ContextOptions) *Context {
	if opts == nil {
		defaultOptions := DefaultContextOptions
		opts = &defaultOptions
	}
	c := &Context{
		doc:  doc,
		page: doc.NewPage(width, height),
		opts: *opts,
		state: contextState{
			fillStyle:    canvas2pdf.Defaults[canvas2pdf.PropFillStyle],
			strokeStyle:  canvas2pdf.Defaults[canvas2pdf.PropStrokeStyle],
			lineWidth:    1.0,
			lineCap:      "butt",
			lineJoin:     "miter",
			miterLimit:   10.0,
			alpha:        1.0,
			font:         canvas2pdf.DefaultFont,
			face:         canvas2pdf.MustParseFont(canvas2pdf.DefaultFont),
			textAlign:    "left",
			textBaseline: "alphabetic",
		},
	}
	c.ops = c.registry().Wrap(c.impls())
	return c
}

// Page returns the page being drawn on.
func (c *Context) Page() *Page {
	return c.page
}

// Err returns the first error, without finishing the document.
func (c *Context) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.doc.Err()
}

func (c *Context) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *Context) registry() *advice.Registry {
	r := advice.New()
	if c.opts.Debug {
		r.Advice("debug", func(r *advice.Registry) any {
			r.BeforeAll(func(call *advice.Call) {
				canvas2pdf.Logger().Debug("pdf", "op", canvas2pdf.Call(call.Name, call.Args...).String())
			})
			return nil
		})
	}

	// remember the point where the drawing operations end
	r.Advice("point", func(r *advice.Registry) any {
		update := func(call *advice.Call) {
			c.pen.Update(call.Name, call.Args)
		}
		r.Before(update, canvas2pdf.OpLineTo, canvas2pdf.OpMoveTo)
		r.After(func(call *advice.Call) {
			if p, ok := call.Result.(canvas2pdf.Point); ok {
				c.pen.Point = p
			}
		}, canvas2pdf.OpArcTo)
		r.After(update, canvas2pdf.OpBezierCurveTo, canvas2pdf.OpQuadraticCurveTo, canvas2pdf.OpArc,
			canvas2pdf.OpEllipse, canvas2pdf.OpRect, canvas2pdf.OpClosePath)
		return &c.pen
	})
	if !c.opts.Rules {
		return r
	}

	// the first lineTo after beginPath starts a subpath
	r.Advice("moveTo", func(r *advice.Registry) any {
		state := &moveToState{}
		r.Before(func(*advice.Call) {
			state.moveTo = true
		}, canvas2pdf.OpBeginPath)
		r.After(func(*advice.Call) {
			state.moveTo = false
		}, canvas2pdf.OpLineTo, canvas2pdf.OpMoveTo, canvas2pdf.OpArcTo, canvas2pdf.OpClosePath)
		return state
	})

	// PDF ends the path when painting, so a fill that is followed by a stroke of the same path is
	// painted at once. Property writes do not end the path.
	r.Advice("fillAndStroke", func(r *advice.Registry) any {
		state := &fillAndStrokeState{}
		flush := func() {
			if state.fillCalled {
				c.withFillStyle(state.fillStyle, func() { c.fillPath(state.evenOdd) })
			}
		}
		r.Before(func(call *advice.Call) {
			flush()
			state.fillCalled = true
			state.evenOdd = c.fillArgs(call.Args)
			state.fillStyle = c.state.fillStyle
		}, canvas2pdf.OpFill)
		r.Before(func(*advice.Call) {
			if state.fillCalled {
				c.withFillStyle(state.fillStyle, func() { c.fillStrokePath(state.evenOdd) })
			} else {
				c.paintStroke()
			}
		}, canvas2pdf.OpStroke)
		r.BeforeAllExcept(func(*advice.Call) {
			flush()
		}, append([]string{canvas2pdf.OpStroke, canvas2pdf.OpFill}, canvas2pdf.Properties...)...)
		r.AfterAllExcept(func(*advice.Call) {
			state.fillCalled = false
			state.fillStyle = nil
		}, append([]string{canvas2pdf.OpFill}, canvas2pdf.Properties...)...)
		return state
	})
	return r
}

func (c *Context) impls() map[string]advice.Func {
	return map[string]advice.Func{
		canvas2pdf.OpSave:    func(*advice.Call) { c.save() },
		canvas2pdf.OpRestore: func(*advice.Call) { c.restore() },
		canvas2pdf.OpScale: func(call *advice.Call) {
			a := args(call.Args)
			c.page.Transform(canvas2pdf.Identity.Scale(a.f(0), a.f(1)))
		},
		canvas2pdf.OpRotate: func(call *advice.Call) {
			c.page.Transform(canvas2pdf.Identity.Rotate(args(call.Args).f(0)))
		},
		canvas2pdf.OpTranslate: func(call *advice.Call) {
			a := args(call.Args)
			c.page.Transform(canvas2pdf.Identity.Translate(a.f(0), a.f(1)))
		},
		canvas2pdf.OpTransform: func(call *advice.Call) {
			a := args(call.Args)
			c.page.Transform(canvas2pdf.NewMatrix(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4), a.f(5)))
		},
		canvas2pdf.OpSetTransform: func(call *advice.Call) {
			a := args(call.Args)
			c.setTransform(canvas2pdf.NewMatrix(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4), a.f(5)))
		},
		canvas2pdf.OpBeginPath: func(*advice.Call) { c.beginPath() },
		canvas2pdf.OpMoveTo: func(call *advice.Call) {
			a := args(call.Args)
			c.moveTo(a.f(0), a.f(1))
		},
		canvas2pdf.OpLineTo: func(call *advice.Call) {
			a := args(call.Args)
			c.lineTo(a.f(0), a.f(1))
		},
		canvas2pdf.OpArcTo: func(call *advice.Call) {
			a := args(call.Args)
			p0 := c.pen.Point
			if 7 <= len(a) {
				p0 = canvas2pdf.Point{X: a.f(5), Y: a.f(6)}
			}
			if end, ok := c.arcTo(p0, canvas2pdf.Point{X: a.f(0), Y: a.f(1)}, canvas2pdf.Point{X: a.f(2), Y: a.f(3)}, a.f(4)); ok {
				call.Result = end
			}
		},
		canvas2pdf.OpBezierCurveTo: func(call *advice.Call) {
			a := args(call.Args)
			c.ensureSubpath(a.f(0), a.f(1))
			c.page.CubeTo(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4), a.f(5))
		},
		canvas2pdf.OpQuadraticCurveTo: func(call *advice.Call) {
			a := args(call.Args)
			c.ensureSubpath(a.f(0), a.f(1))
			c.page.QuadTo(a.f(0), a.f(1), a.f(2), a.f(3))
		},
		canvas2pdf.OpClosePath: func(*advice.Call) {
			if c.open {
				c.page.ClosePath()
			}
		},
		canvas2pdf.OpRect: func(call *advice.Call) {
			a := args(call.Args)
			c.page.Rect(a.f(0), a.f(1), a.f(2), a.f(3))
			c.open, c.dirty = true, true
		},
		canvas2pdf.OpArc: func(call *advice.Call) {
			a := args(call.Args)
			c.ellipse(a.f(0), a.f(1), a.f(2), a.f(2), 0.0, a.f(3), a.f(4), a.b(5))
		},
		canvas2pdf.OpEllipse: func(call *advice.Call) {
			a := args(call.Args)
			c.ellipse(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4), a.f(5), a.f(6), a.b(7))
		},
		canvas2pdf.OpFill: func(call *advice.Call) {
			if !c.opts.Rules {
				c.paintFill(call.Args)
			}
		},
		canvas2pdf.OpStroke: func(*advice.Call) {
			if !c.opts.Rules {
				c.paintStroke()
			}
		},
		canvas2pdf.OpFillAndStroke: func(call *advice.Call) { c.paintFillAndStroke(call.Args) },
		canvas2pdf.OpClip: func(call *advice.Call) {
			evenOdd := c.fillArgs(call.Args)
			if !c.dirty {
				// clipping to an empty path hides everything
				c.page.Rect(0.0, 0.0, 0.0, 0.0)
			}
			c.page.Clip(evenOdd)
			c.open, c.dirty = false, false
		},
		canvas2pdf.OpFillRect: func(call *advice.Call) {
			a := args(call.Args)
			c.page.Rect(a.f(0), a.f(1), a.f(2), a.f(3))
			c.dirty = true
			c.paintFill(nil)
		},
		canvas2pdf.OpStrokeRect: func(call *advice.Call) {
			a := args(call.Args)
			c.page.Rect(a.f(0), a.f(1), a.f(2), a.f(3))
			c.dirty = true
			c.paintStroke()
		},
		canvas2pdf.OpClearRect: func(call *advice.Call) {
			a := args(call.Args)
			c.clearRect(a.f(0), a.f(1), a.f(2), a.f(3))
		},
		canvas2pdf.OpFillText: func(call *advice.Call) {
			a := args(call.Args)
			c.text(a.s(0), a.f(1), a.f(2), TextFill)
		},
		canvas2pdf.OpStrokeText: func(call *advice.Call) {
			a := args(call.Args)
			c.text(a.s(0), a.f(1), a.f(2), TextStroke)
		},
		canvas2pdf.OpMeasureText: func(call *advice.Call) {
			text := args(call.Args).s(0)
			call.Result = canvas2pdf.TextMetrics{
				Width:  c.page.TextWidth(c.state.face, text),
				Height: c.state.face.LineHeight(),
			}
		},
		canvas2pdf.OpDrawImage: func(call *advice.Call) {
			img, _ := call.Args[0].(image.Image)
			c.drawImage(img, args(call.Args[1:]).floats())
		},
		canvas2pdf.OpSetLineDash: func(call *advice.Call) {
			segments, _ := call.Args[0].([]float64)
			c.setLineDash(segments)
		},
		canvas2pdf.OpCreateLinearGradient: func(call *advice.Call) {
			a := args(call.Args)
			call.Result = canvas2pdf.NewLinearGradient(a.f(0), a.f(1), a.f(2), a.f(3))
		},
		canvas2pdf.OpCreateRadialGradient: func(call *advice.Call) {
			a := args(call.Args)
			call.Result = canvas2pdf.NewRadialGradient(a.f(0), a.f(1), a.f(2), a.f(3), a.f(4), a.f(5))
		},
		canvas2pdf.OpBackground: func(call *advice.Call) { c.background(args(call.Args).s(0)) },
		canvas2pdf.OpEnd: func(*advice.Call) {
			if c.dirty {
				c.page.EndPath()
				c.dirty = false
			}
		},

		canvas2pdf.PropFillStyle:      func(call *advice.Call) { c.setFillStyle(call.Args[0]) },
		canvas2pdf.PropStrokeStyle:    func(call *advice.Call) { c.setStrokeStyle(call.Args[0]) },
		canvas2pdf.PropLineWidth:      func(call *advice.Call) { c.setLineWidth(args(call.Args).f(0)) },
		canvas2pdf.PropLineCap:        func(call *advice.Call) { c.setLineCap(args(call.Args).s(0)) },
		canvas2pdf.PropLineJoin:       func(call *advice.Call) { c.setLineJoin(args(call.Args).s(0)) },
		canvas2pdf.PropMiterLimit:     func(call *advice.Call) { c.setMiterLimit(args(call.Args).f(0)) },
		canvas2pdf.PropLineDashOffset: func(call *advice.Call) { c.setLineDashOffset(args(call.Args).f(0)) },
		canvas2pdf.PropGlobalAlpha:    func(call *advice.Call) { c.setGlobalAlpha(args(call.Args).f(0)) },
		canvas2pdf.PropFont:           func(call *advice.Call) { c.setFont(args(call.Args).s(0)) },
		canvas2pdf.PropTextAlign:      func(call *advice.Call) { c.setTextAlign(args(call.Args).s(0)) },
		canvas2pdf.PropTextBaseline:   func(call *advice.Call) { c.setTextBaseline(args(call.Args).s(0)) },
	}
}

func (c *Context) invoke(name string, arguments ...any) any {
	if c.ended {
		canvas2pdf.Logger().Warn("ignoring operation after end", "op", name)
		return nil
	}
	result, _ := c.ops.Invoke(name, arguments...)
	return result
}

////////////////////////////////////////////////////////////////

func (c *Context) save() {
	state := c.state
	state.dashes = slices.Clone(c.state.dashes)
	c.stack = append(c.stack, state)
	c.page.Save()
}

func (c *Context) restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.page.Restore()
}

// setTransform resets the transformation to the flipped page and then applies m, in one cm.
func (c *Context) setTransform(m canvas2pdf.Matrix) {
	inv, ok := c.page.CTM().Inv()
	if !ok {
		canvas2pdf.Logger().Warn("cannot reset a singular transformation", "ctm", c.page.CTM().String())
		return
	}
	_, height := c.page.Size()
	flip := canvas2pdf.Identity.Translate(0.0, height).Scale(1.0, -1.0)
	c.page.Transform(inv.Mul(flip).Mul(m))
}

func (c *Context) beginPath() {
	if c.dirty {
		c.page.EndPath()
	}
	c.open, c.dirty = false, false
}

func (c *Context) moveTo(x, y float64) {
	c.page.MoveTo(x, y)
	c.open, c.dirty = true, true
}

func (c *Context) lineTo(x, y float64) {
	state, _ := c.ops.State("moveTo").(*moveToState)
	if !c.open || (state != nil && state.moveTo) {
		c.page.MoveTo(x, y)
		c.pen.Set(x, y)
	} else {
		c.page.LineTo(x, y)
	}
	c.open, c.dirty = true, true
}

// ensureSubpath starts a subpath at (x,y) when there is none.
func (c *Context) ensureSubpath(x, y float64) {
	if !c.open {
		c.page.MoveTo(x, y)
		c.pen.Set(x, y)
	}
	c.open, c.dirty = true, true
}

// arcTo draws the rounded corner at P1, as a line to the first tangent point followed by the
// arc. It returns the second tangent point.
func (c *Context) arcTo(p0, p1, p2 canvas2pdf.Point, r float64) (canvas2pdf.Point, bool) {
	corner, err := canvas2pdf.ArcToGeometry(p0, p1, p2, r)
	if err != nil {
		c.fail(fmt.Errorf("arcTo: %w", err))
		return canvas2pdf.Point{}, false
	}
	if !c.open {
		c.ensureSubpath(p1.X, p1.Y)
		return p1, true
	}

	c.page.LineTo(corner.T1.X, corner.T1.Y)
	if sweep := corner.Sweep(); sweep != 0.0 {
		_, cubics := ellipseToCubics(corner.C.X, corner.C.Y, corner.R, corner.R, 0.0, corner.A1, sweep)
		for _, cb := range cubics {
			c.page.CubeTo(cb.cp1.X, cb.cp1.Y, cb.cp2.X, cb.cp2.Y, cb.end.X, cb.end.Y)
		}
	}
	c.dirty = true
	return corner.End(), true
}

func (c *Context) ellipse(x, y, rx, ry, rot, theta0, theta1 float64, ccw bool) {
	if rx < 0.0 || ry < 0.0 {
		c.fail(fmt.Errorf("arc: %w", canvas2pdf.ErrNegativeRadius))
		return
	}

	start, cubics := ellipseToCubics(x, y, rx, ry, rot, theta0, arcSweep(theta0, theta1, ccw))
	if c.open {
		c.page.LineTo(start.X, start.Y)
	} else {
		c.page.MoveTo(start.X, start.Y)
	}
	for _, cb := range cubics {
		c.page.CubeTo(cb.cp1.X, cb.cp1.Y, cb.cp2.X, cb.cp2.Y, cb.end.X, cb.end.Y)
	}
	c.open, c.dirty = true, true
}

// fillArgs returns the fill rule of the fill arguments. Any other string is a color that
// becomes the fill style.
func (c *Context) fillArgs(arguments []any) bool {
	evenOdd := false
	for _, arg := range arguments {
		switch s, _ := arg.(string); s {
		case "evenodd":
			evenOdd = true
		case "nonzero":
			evenOdd = false
		default:
			c.setFillStyle(s)
		}
	}
	return evenOdd
}

func (c *Context) paintFill(arguments []any) {
	c.fillPath(c.fillArgs(arguments))
}

func (c *Context) fillPath(evenOdd bool) {
	if c.dirty {
		c.page.Fill(evenOdd)
	}
	c.open, c.dirty = false, false
}

func (c *Context) paintStroke() {
	if c.dirty {
		c.page.Stroke()
	}
	c.open, c.dirty = false, false
}

func (c *Context) paintFillAndStroke(arguments []any) {
	c.fillStrokePath(c.fillArgs(arguments))
}

func (c *Context) fillStrokePath(evenOdd bool) {
	if c.dirty {
		c.page.FillStroke(evenOdd)
	}
	c.open, c.dirty = false, false
}

// withFillStyle paints with the given fill style, which was current when a fill was deferred,
// and then restores the current fill style.
func (c *Context) withFillStyle(style any, paint func()) {
	if style == nil || style == c.state.fillStyle {
		paint()
		return
	}
	if p, ok := c.paint(style); ok {
		c.page.SetFill(p)
	}
	paint()
	if p, ok := c.paint(c.state.fillStyle); ok {
		c.page.SetFill(p)
	}
}

// clearRect paints white since PDF has no way to erase.
func (c *Context) clearRect(x, y, w, h float64) {
	c.page.Save()
	c.page.SetAlpha(1.0)
	c.page.SetFill(Paint{Color: canvas2pdf.White})
	c.page.Rect(x, y, w, h)
	c.page.Fill(false)
	c.page.Restore()
	c.open, c.dirty = false, false
}

// background fills the whole page regardless of the transformation.
func (c *Context) background(col string) {
	paint, ok := c.paint(col)
	if !ok {
		return
	}
	inv, ok := c.page.CTM().Inv()
	if !ok {
		canvas2pdf.Logger().Warn("cannot paint background under a singular transformation")
		return
	}
	width, height := c.page.Size()
	c.page.Save()
	c.page.Transform(inv)
	c.page.SetAlpha(1.0)
	c.page.SetFill(paint)
	c.page.Rect(0.0, 0.0, width, height)
	c.page.Fill(false)
	c.page.Restore()
	c.open, c.dirty = false, false
}

func (c *Context) text(text string, x, y float64, mode TextMode) {
	face := c.state.face
	w := c.page.TextWidth(face, text)
	switch c.state.textAlign {
	case "right", "end":
		x -= w
	case "center":
		x -= w / 2.0
	}

	lineHeight := face.LineHeight()
	switch c.state.textBaseline {
	case "bottom", "ideographic":
		y -= lineHeight
	case "middle":
		y -= lineHeight / 2.0
	case "alphabetic":
		y -= lineHeight/2.0 + 1.0
	}
	c.page.Text(face, text, x, y, mode)
}

type subImager interface {
	SubImage(image.Rectangle) image.Image
}

func (c *Context) drawImage(img image.Image, a []float64) {
	if img == nil {
		canvas2pdf.Logger().Warn("ignoring drawImage without image")
		return
	}
	size := img.Bounds().Size()
	switch len(a) {
	case 2:
		c.page.DrawImage(img, a[0], a[1], float64(size.X), float64(size.Y))
	case 4:
		c.page.DrawImage(img, a[0], a[1], a[2], a[3])
	case 8:
		origin := img.Bounds().Min
		rect := image.Rect(int(a[0]), int(a[1]), int(a[0]+a[2]), int(a[1]+a[3])).Add(origin).Intersect(img.Bounds())
		if rect.Empty() {
			return
		}
		var crop image.Image
		if sub, ok := img.(subImager); ok {
			crop = sub.SubImage(rect)
		} else {
			dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
			draw.Copy(dst, image.Point{}, img, rect, draw.Src, nil)
			crop = dst
		}
		c.page.DrawImage(crop, a[4], a[5], a[6], a[7])
	default:
		canvas2pdf.Logger().Warn("ignoring drawImage", "args", len(a)+1)
	}
}

////////////////////////////////////////////////////////////////

// paint returns the paint for a style, which is a color string or a *Gradient.
func (c *Context) paint(style any) (Paint, bool) {
	switch v := style.(type) {
	case string:
		col, err := canvas2pdf.ParseColor(v)
		if err != nil {
			canvas2pdf.Logger().Warn("ignoring style", "style", v, "err", err)
			return Paint{}, false
		}
		return Paint{Color: col}, true
	case *canvas2pdf.Gradient:
		if v != nil {
			return Paint{Gradient: v}, true
		}
	}
	canvas2pdf.Logger().Warn("ignoring style", "style", style)
	return Paint{}, false
}

func (c *Context) setFillStyle(style any) {
	if paint, ok := c.paint(style); ok {
		c.state.fillStyle = style
		c.page.SetFill(paint)
	}
}

func (c *Context) setStrokeStyle(style any) {
	if paint, ok := c.paint(style); ok {
		c.state.strokeStyle = style
		c.page.SetStroke(paint)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (c *Context) setLineWidth(width float64) {
	if 0.0 < width && finite(width) {
		c.state.lineWidth = width
		c.page.SetLineWidth(width)
	}
}

var lineCaps = map[string]int{"butt": 0, "round": 1, "square": 2}
var lineJoins = map[string]int{"miter": 0, "round": 1, "bevel": 2}

func (c *Context) setLineCap(lineCap string) {
	if v, ok := lineCaps[lineCap]; ok {
		c.state.lineCap = lineCap
		c.page.SetLineCap(v)
	}
}

func (c *Context) setLineJoin(lineJoin string) {
	if v, ok := lineJoins[lineJoin]; ok {
		c.state.lineJoin = lineJoin
		c.page.SetLineJoin(v)
	}
}

func (c *Context) setMiterLimit(limit float64) {
	if 0.0 < limit && finite(limit) {
		c.state.miterLimit = limit
		c.page.SetMiterLimit(limit)
	}
}

func (c *Context) setLineDash(segments []float64) {
	zero := true
	for _, segment := range segments {
		if segment < 0.0 || !finite(segment) {
			return
		} else if segment != 0.0 {
			zero = false
		}
	}
	if zero {
		segments = nil
	}
	c.state.dashes = slices.Clone(segments)
	c.page.SetDashes(c.state.dashOffset, c.state.dashes)
}

func (c *Context) setLineDashOffset(offset float64) {
	if finite(offset) {
		c.state.dashOffset = offset
		c.page.SetDashes(offset, c.state.dashes)
	}
}

func (c *Context) setGlobalAlpha(alpha float64) {
	if 0.0 <= alpha && alpha <= 1.0 {
		c.state.alpha = alpha
		c.page.SetAlpha(alpha)
	}
}

func (c *Context) setFont(font string) {
	face, err := canvas2pdf.ParseFont(font)
	if err != nil {
		canvas2pdf.Logger().Warn("ignoring font", "font", font, "err", err)
		return
	}
	c.state.font = font
	c.state.face = face
}

func (c *Context) setTextAlign(align string) {
	switch align {
	case "start", "end", "left", "right", "center":
		c.state.textAlign = align
	}
}

func (c *Context) setTextBaseline(baseline string) {
	switch baseline {
	case "top", "hanging", "middle", "alphabetic", "ideographic", "bottom":
		c.state.textBaseline = baseline
	}
}

////////////////////////////////////////////////////////////////

type args []any

func (a args) f(i int) float64 {
	if i < len(a) {
		v, _ := a[i].(float64)
		return v
	}
	return 0.0
}

func (a args) b(i int) bool {
	if i < len(a) {
		v, _ := a[i].(bool)
		return v
	}
	return false
}

func (a args) s(i int) string {
	if i < len(a) {
		v, _ := a[i].(string)
		return v
	}
	return ""
}

func (a args) floats() []float64 {
	fs := make([]float64, len(a))
	for i := range a {
		fs[i] = a.f(i)
	}
	return fs
}

////////////////////////////////////////////////////////////////

// Save pushes the drawing state.
func (c *Context) Save() { c.invoke(canvas2pdf.OpSave) }

// Restore pops the drawing state.
func (c *Context) Restore()               { c.invoke(canvas2pdf.OpRestore) }
func (c *Context) Scale(x, y float64)     { c.invoke(canvas2pdf.OpScale, x, y) }
func (c *Context) Rotate(angle float64)   { c.invoke(canvas2pdf.OpRotate, angle) }
func (c *Context) Translate(x, y float64) { c.invoke(canvas2pdf.OpTranslate, x, y) }

func (c *Context) Transform(a, b, cc, d, e, f float64) {
	c.invoke(canvas2pdf.OpTransform, a, b, cc, d, e, f)
}

// SetTransform replaces the transformation, relative to the top-left corner of the page.
func (c *Context) SetTransform(a, b, cc, d, e, f float64) {
	c.invoke(canvas2pdf.OpSetTransform, a, b, cc, d, e, f)
}

func (c *Context) BeginPath()          { c.invoke(canvas2pdf.OpBeginPath) }
func (c *Context) MoveTo(x, y float64) { c.invoke(canvas2pdf.OpMoveTo, x, y) }
func (c *Context) LineTo(x, y float64) { c.invoke(canvas2pdf.OpLineTo, x, y) }

func (c *Context) ArcTo(x1, y1, x2, y2, r float64) {
	c.invoke(canvas2pdf.OpArcTo, x1, y1, x2, y2, r)
}

// ArcToFrom draws a rounded corner starting at (x0,y0) instead of at the current point.
func (c *Context) ArcToFrom(x0, y0, x1, y1, x2, y2, r float64) {
	c.invoke(canvas2pdf.OpArcTo, x1, y1, x2, y2, r, x0, y0)
}

func (c *Context) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) {
	c.invoke(canvas2pdf.OpBezierCurveTo, cp1x, cp1y, cp2x, cp2y, x, y)
}

func (c *Context) QuadraticCurveTo(cpx, cpy, x, y float64) {
	c.invoke(canvas2pdf.OpQuadraticCurveTo, cpx, cpy, x, y)
}

func (c *Context) ClosePath()              { c.invoke(canvas2pdf.OpClosePath) }
func (c *Context) Rect(x, y, w, h float64) { c.invoke(canvas2pdf.OpRect, x, y, w, h) }

func (c *Context) Arc(x, y, r, startAngle, endAngle float64, ccw bool) {
	c.invoke(canvas2pdf.OpArc, x, y, r, startAngle, endAngle, ccw)
}

func (c *Context) Ellipse(x, y, rx, ry, rotation, startAngle, endAngle float64, ccw bool) {
	c.invoke(canvas2pdf.OpEllipse, x, y, rx, ry, rotation, startAngle, endAngle, ccw)
}

// Fill fills the current path. The arguments are a fill rule or a color that becomes the fill
// style.
func (c *Context) Fill(arguments ...string) { c.invoke(canvas2pdf.OpFill, stringArgs(arguments)...) }
func (c *Context) Stroke()                  { c.invoke(canvas2pdf.OpStroke) }

// FillAndStroke fills and strokes the current path as one painting operation.
func (c *Context) FillAndStroke(arguments ...string) {
	c.invoke(canvas2pdf.OpFillAndStroke, stringArgs(arguments)...)
}

func (c *Context) Clip(fillRule ...string)        { c.invoke(canvas2pdf.OpClip, stringArgs(fillRule)...) }
func (c *Context) FillRect(x, y, w, h float64)   { c.invoke(canvas2pdf.OpFillRect, x, y, w, h) }
func (c *Context) StrokeRect(x, y, w, h float64) { c.invoke(canvas2pdf.OpStrokeRect, x, y, w, h) }
func (c *Context) ClearRect(x, y, w, h float64)  { c.invoke(canvas2pdf.OpClearRect, x, y, w, h) }

func (c *Context) FillText(text string, x, y float64) {
	c.invoke(canvas2pdf.OpFillText, text, x, y)
}

func (c *Context) StrokeText(text string, x, y float64) {
	c.invoke(canvas2pdf.OpStrokeText, text, x, y)
}

func (c *Context) MeasureText(text string) canvas2pdf.TextMetrics {
	metrics, _ := c.invoke(canvas2pdf.OpMeasureText, text).(canvas2pdf.TextMetrics)
	return metrics
}

func (c *Context) DrawImage(img image.Image, arguments ...float64) {
	a := make([]any, 0, 1+len(arguments))
	a = append(a, img)
	for _, arg := range arguments {
		a = append(a, arg)
	}
	c.invoke(canvas2pdf.OpDrawImage, a...)
}

func (c *Context) SetLineDash(segments []float64) {
	c.invoke(canvas2pdf.OpSetLineDash, slices.Clone(segments))
}

func (c *Context) CreateLinearGradient(x0, y0, x1, y1 float64) *canvas2pdf.Gradient {
	g, _ := c.invoke(canvas2pdf.OpCreateLinearGradient, x0, y0, x1, y1).(*canvas2pdf.Gradient)
	return g
}

func (c *Context) CreateRadialGradient(x0, y0, r0, x1, y1, r1 float64) *canvas2pdf.Gradient {
	g, _ := c.invoke(canvas2pdf.OpCreateRadialGradient, x0, y0, r0, x1, y1, r1).(*canvas2pdf.Gradient)
	return g
}

// Background fills the whole page with a color.
func (c *Context) Background(color string) { c.invoke(canvas2pdf.OpBackground, color) }

// End finishes the page and closes the document. It returns the first error that occurred
// while drawing or writing, and can be called more than once.
func (c *Context) End() error {
	if c.ended {
		return c.Err()
	}
	c.invoke(canvas2pdf.OpEnd)
	c.ended = true
	if err := c.doc.Close(); err != nil {
		c.fail(err)
	}
	return c.err
}

func (c *Context) FillStyle() any            { return c.state.fillStyle }
func (c *Context) SetFillStyle(style any)    { c.invoke(canvas2pdf.PropFillStyle, style) }
func (c *Context) StrokeStyle() any          { return c.state.strokeStyle }
func (c *Context) SetStrokeStyle(style any)  { c.invoke(canvas2pdf.PropStrokeStyle, style) }
func (c *Context) LineWidth() float64        { return c.state.lineWidth }
func (c *Context) SetLineWidth(w float64)    { c.invoke(canvas2pdf.PropLineWidth, w) }
func (c *Context) LineCap() string           { return c.state.lineCap }
func (c *Context) SetLineCap(lineCap string) { c.invoke(canvas2pdf.PropLineCap, lineCap) }
func (c *Context) LineJoin() string          { return c.state.lineJoin }
func (c *Context) SetLineJoin(join string)   { c.invoke(canvas2pdf.PropLineJoin, join) }
func (c *Context) MiterLimit() float64       { return c.state.miterLimit }
func (c *Context) SetMiterLimit(l float64)   { c.invoke(canvas2pdf.PropMiterLimit, l) }
func (c *Context) LineDashOffset() float64   { return c.state.dashOffset }

func (c *Context) SetLineDashOffset(offset float64) {
	c.invoke(canvas2pdf.PropLineDashOffset, offset)
}

func (c *Context) GlobalAlpha() float64            { return c.state.alpha }
func (c *Context) SetGlobalAlpha(alpha float64)    { c.invoke(canvas2pdf.PropGlobalAlpha, alpha) }
func (c *Context) Font() string                    { return c.state.font }
func (c *Context) SetFont(font string)             { c.invoke(canvas2pdf.PropFont, font) }
func (c *Context) TextAlign() string               { return c.state.textAlign }
func (c *Context) SetTextAlign(align string)       { c.invoke(canvas2pdf.PropTextAlign, align) }
func (c *Context) TextBaseline() string            { return c.state.textBaseline }
func (c *Context) SetTextBaseline(baseline string) { c.invoke(canvas2pdf.PropTextBaseline, baseline) }

func stringArgs(ss []string) []any {
	a := make([]any, len(ss))
	for i, s := range ss {
		a[i] = s
	}
	return a
}
