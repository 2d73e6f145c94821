package script

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dop251/goja"
	"github.com/tdewolff/canvas2pdf"
	"github.com/tdewolff/test"
)

func pngBytes(t *testing.T, w, h int) []byte {
	buf := &bytes.Buffer{}
	test.Error(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestScript(t *testing.T) {
	rec := canvas2pdf.NewRecorder()
	err := Run(context.Background(), rec, "path.js", `
ctx.beginPath();
ctx.moveTo(1, 2);
ctx.lineTo(3.5, 4);
ctx.arc(5, 5, 1, 0, Math.PI);
ctx.fill("evenodd");
ctx.lineWidth = 2;
ctx.lineWidth = "wide";
var w = ctx.lineWidth;
ctx.setLineDash([1, 2]);
`, nil)
	test.Error(t, err)

	log := rec.Log()
	test.T(t, len(log), 8)
	test.String(t, log[0].String(), "beginPath()")
	test.String(t, log[1].String(), "moveTo(1, 2)")
	test.String(t, log[2].String(), "lineTo(3.5, 4)")
	test.String(t, log[3].String(), "arc(5, 5, 1, 0, 3.141592653589793, false)")
	test.String(t, log[4].String(), `fill("evenodd")`)
	test.String(t, log[5].String(), "lineWidth = 2")
	test.String(t, log[6].String(), "lineWidth")
	test.String(t, log[7].String(), "setLineDash([1 2])")
}

func TestScriptResults(t *testing.T) {
	rec := canvas2pdf.NewRecorder()
	h, err := New(rec, &Options{Width: 100.0, Height: 50.0})
	test.Error(t, err)
	test.Error(t, h.Run(context.Background(), "results.js", `
var m = ctx.measureText("ab");
var width = m.width;
var size = canvas.width + "x" + canvas.height;
var same = canvas.getContext("2d") === ctx;
var webgl = canvas.getContext("webgl");
var g = ctx.createLinearGradient(0, 0, 10, 0);
g.addColorStop(0, "red");
g.addColorStop(1, "blue");
ctx.fillStyle = g;
var font = ctx.font;
`))

	vm := h.Runtime()
	test.Float(t, vm.Get("width").ToFloat(), 11.12)
	test.String(t, vm.Get("size").String(), "100x50")
	test.That(t, vm.Get("same").ToBoolean())
	test.That(t, vm.Get("webgl").Export() == nil)
	test.String(t, vm.Get("font").String(), canvas2pdf.DefaultFont)

	g, ok := rec.FillStyle().(*canvas2pdf.Gradient)
	test.That(t, ok)
	test.T(t, len(g.Stops), 2)
	test.T(t, g.Kind, canvas2pdf.LinearGradient)
}

func TestScriptImage(t *testing.T) {
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 2, 3))

	rec := canvas2pdf.NewRecorder()
	h, err := New(rec, &Options{
		FS: fstest.MapFS{"a.png": {Data: pngBytes(t, 4, 4)}},
	})
	test.Error(t, err)
	test.Error(t, h.Run(context.Background(), "image.js", `
var img = loadImage("`+uri+`");
var file = loadImage("a.png");
ctx.drawImage(img, 1, 2);
ctx.drawImage(file, 0, 0, 8, 8);
var size = img.width + "x" + img.height;
`))
	test.String(t, h.Runtime().Get("size").String(), "2x3")

	log := rec.Log()
	test.T(t, log.Count(canvas2pdf.OpDrawImage), 2)
	img, ok := log[0].Args[0].(image.Image)
	test.That(t, ok)
	test.T(t, img.Bounds().Size(), image.Point{2, 3})
	test.T(t, len(log[1].Args), 5)
}

func TestScriptErrors(t *testing.T) {
	var tts = []struct {
		src string
		err string
	}{
		{`ctx.moveTo("a");`, "moveTo"},
		{`ctx.drawImage(null, 0, 0);`, "drawImage"},
		{`loadImage("a.png");`, "cannot load image"},
		{`loadImage("data:image/png;base64,AAAA");`, "cannot load image"},
		{`ctx.foo();`, "foo"},
		{`throw new Error("boom");`, "boom"},
	}
	for _, tt := range tts {
		t.Run(tt.src, func(t *testing.T) {
			err := Run(context.Background(), canvas2pdf.NewRecorder(), "error.js", tt.src, nil)
			test.That(t, err != nil && strings.Contains(err.Error(), tt.err), err)
		})
	}
}

func TestScriptInterrupt(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := Run(ctx, canvas2pdf.NewRecorder(), "loop.js", `for (;;) {}`, nil)
	test.That(t, errors.Is(err, context.DeadlineExceeded), err)

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	err = Run(ctx, canvas2pdf.NewRecorder(), "noop.js", ``, nil)
	test.That(t, errors.Is(err, context.Canceled), err)
}

func TestScriptConsole(t *testing.T) {
	buf := &bytes.Buffer{}
	canvas2pdf.SetLogger(slog.New(slog.NewTextHandler(buf, nil)))
	defer canvas2pdf.SetLogger(nil)

	test.Error(t, Run(context.Background(), canvas2pdf.NewRecorder(), "console.js", `console.log("hello", 42);`, nil))
	test.That(t, strings.Contains(buf.String(), `msg="hello 42"`), buf.String())
}

func TestScriptUnsupportedProperty(t *testing.T) {
	buf := &bytes.Buffer{}
	canvas2pdf.SetLogger(slog.New(slog.NewTextHandler(buf, nil)))
	defer canvas2pdf.SetLogger(nil)

	rec := canvas2pdf.NewRecorder()
	h, err := New(rec, nil)
	test.Error(t, err)
	test.Error(t, h.Run(context.Background(), "unsupported.js", `
ctx.imageSmoothingEnabled = false;
var v = ctx.shadowBlur;
var has = "lineWidth" in ctx;
`))
	test.That(t, goja.IsUndefined(h.Runtime().Get("v")))
	test.That(t, h.Runtime().Get("has").ToBoolean())
	test.T(t, len(rec.Log()), 0)

	s := buf.String()
	test.That(t, strings.Contains(s, `msg="set unsupported canvas property" name=imageSmoothingEnabled`), s)
	test.That(t, strings.Contains(s, `msg="get unsupported canvas property" name=shadowBlur`), s)
}
