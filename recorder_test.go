package canvas2pdf

import (
	"errors"
	"image"
	"testing"

	"github.com/tdewolff/test"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Save()
	r.SetFillStyle("#FF0000")
	r.BeginPath()
	r.MoveTo(0, 0)
	r.LineTo(10, 0)
	r.ArcTo(20, 0, 20, 10, 2)
	r.Arc(5, 5, 2, 0, 3.14, true)
	r.ClosePath()
	r.Fill("evenodd")
	r.Stroke()
	r.SetLineDash([]float64{2, 1})
	r.FillText("label", 1, 2)
	r.Restore()
	test.Error(t, r.End())

	test.T(t, records(r.Log()), []string{
		"save()",
		"fillStyle = \"#FF0000\"",
		"beginPath()",
		"moveTo(0, 0)",
		"lineTo(10, 0)",
		"arcTo(20, 0, 20, 10, 2)",
		"arc(5, 5, 2, 0, 3.14, true)",
		"closePath()",
		"fill(\"evenodd\")",
		"stroke()",
		"setLineDash([2 1])",
		"fillText(\"label\", 1, 2)",
		"restore()",
		"end()",
	})
}

func TestRecorderProperties(t *testing.T) {
	r := NewRecorder()
	test.T(t, r.FillStyle(), any("#000000"))
	test.Float(t, r.LineWidth(), 1.0)
	test.String(t, r.LineCap(), "butt")
	test.String(t, r.LineJoin(), "miter")
	test.Float(t, r.MiterLimit(), 10.0)
	test.Float(t, r.GlobalAlpha(), 1.0)
	test.String(t, r.Font(), "10px Helvetica")
	test.String(t, r.TextAlign(), "left")
	test.String(t, r.TextBaseline(), "alphabetic")

	r.SetLineWidth(2.5)
	r.SetTextAlign("center")
	test.Float(t, r.LineWidth(), 2.5)
	test.String(t, r.TextAlign(), "center")

	log := r.Log()
	test.T(t, len(log), 13)
	test.T(t, log[0].Kind, ReadOp)
	test.T(t, log[0].Value, any("#000000"))
	test.T(t, log[9].Kind, WriteOp)
	test.T(t, log[9].Value, any(2.5))
	test.T(t, log[11].Value, any(2.5))

	r.Reset()
	test.T(t, len(r.Log()), 0)
	test.Float(t, r.LineWidth(), 1.0)
}

func TestRecorderDynamic(t *testing.T) {
	r := NewRecorder()
	_, err := r.Call("lineTo", 1, 2)
	test.Error(t, err)
	_, err = r.Call("arc", 5, 5, 2, 0, 3.14)
	test.Error(t, err)
	test.Error(t, r.Set("lineWidth", 3))
	test.T(t, r.Get("lineWidth"), any(3.0))

	_, err = r.Call("drawFocusIfNeeded")
	test.That(t, errors.Is(err, ErrUnsupported))
	_, err = r.Call("lineTo", "a", "b")
	test.That(t, errors.Is(err, ErrArguments))
	test.That(t, errors.Is(r.Set("filter", "blur(2px)"), ErrUnsupported))
	test.That(t, errors.Is(r.Set("lineWidth", "wide"), ErrArguments))
	test.That(t, r.Get("direction") == nil)

	// unsupported names are not recorded
	test.T(t, records(r.Log()), []string{
		"lineTo(1, 2)",
		"arc(5, 5, 2, 0, 3.14, false)",
		"lineWidth = 3",
		"lineWidth",
	})
}

func TestRecorderMeasureText(t *testing.T) {
	r := NewRecorder()
	metrics := r.MeasureText("Hello")
	test.Float(t, metrics.Width, 22.78)
	test.Float(t, metrics.Height, 9.25)

	r.SetFont("20px Courier")
	metrics = r.MeasureText("abc")
	test.Float(t, metrics.Width, 36.0)

	r.SetFont("not a font")
	metrics = r.MeasureText("Hello")
	test.Float(t, metrics.Width, 22.78)
	test.T(t, r.Log().Count(OpMeasureText), 3)
}

func TestRecorderGradient(t *testing.T) {
	r := NewRecorder()
	g := r.CreateLinearGradient(0, 0, 100, 0)
	g.AddColorStop(1.0, "blue")
	g.AddColorStop(0.0, "red")
	g.AddColorStop(1.5, "green")
	g.AddColorStop(0.5, "nope")
	r.SetFillStyle(g)

	test.T(t, len(g.Stops), 2)
	test.Float(t, g.Stops[0].Offset, 0.0)
	test.T(t, g.Stops[0].Color, MustParseColor("red"))

	log := r.Log()
	test.T(t, log[0].Name, OpCreateLinearGradient)
	test.That(t, log[1].Value.(*Gradient) == g, "write must share the gradient")
	test.String(t, log[1].String(), "fillStyle = LinearGradient[0 0 100 0]")
}

func TestRecorderDrawImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	r := NewRecorder()
	r.DrawImage(img, 1, 2)
	r.DrawImage(img, 0, 0, 2, 2, 10, 10, 20, 20)

	log := r.Log()
	test.T(t, len(log[0].Args), 3)
	test.T(t, len(log[1].Args), 9)
	test.That(t, log[0].Args[0].(*image.RGBA) == img)
}
