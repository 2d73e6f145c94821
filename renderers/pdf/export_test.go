package pdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/tdewolff/canvas2pdf"
	"github.com/tdewolff/test"
)

func drawTriangle(c canvas2pdf.Context) error {
	c.SetFillStyle("#ff000080")
	c.SetStrokeStyle("blue")
	c.SetLineWidth(2.0)
	c.BeginPath()
	c.MoveTo(10.0, 10.0)
	c.LineTo(90.0, 10.0)
	c.LineTo(50.0, 80.0)
	c.ClosePath()
	c.Fill()
	c.Stroke()
	return nil
}

func drawScene(c canvas2pdf.Context) error {
	if err := drawTriangle(c); err != nil {
		return err
	}

	c.Save()
	c.Translate(100.0, 100.0)
	c.Rotate(0.25 * math.Pi)
	c.BeginPath()
	c.MoveTo(0.0, 0.0)
	c.ArcTo(50.0, 0.0, 50.0, 50.0, 10.0)
	c.LineTo(50.0, 50.0)
	c.Arc(0.0, 50.0, 20.0, 0.0, math.Pi, false)
	c.ClosePath()
	c.Stroke()
	c.Restore()

	c.SetFont("bold 16px Times")
	c.SetTextAlign("center")
	c.FillText("canvas2pdf", 200.0, 200.0)
	m := c.MeasureText("canvas2pdf")
	c.StrokeRect(200.0-m.Width/2.0, 190.0, m.Width, m.Height)

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	c.DrawImage(img, 300.0, 300.0, 16.0, 16.0)
	c.ClearRect(0.0, 0.0, 5.0, 5.0)
	return nil
}

// contentStream returns the first content stream of an uncompressed PDF.
func contentStream(b []byte) string {
	start := bytes.Index(b, []byte("stream\n"))
	end := bytes.Index(b, []byte("\nendstream"))
	if start == -1 || end == -1 {
		return ""
	}
	return string(b[start+len("stream\n") : end])
}

func TestExport(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "scene.pdf")
	f, err := os.Create(filename)
	test.Error(t, err)

	opts := DefaultExportOptions
	opts.Background = "white"
	opts.Title = "Scene"
	test.Error(t, Export(context.Background(), f, drawScene, &opts))
	test.Error(t, f.Close())

	n, err := api.PageCountFile(filename)
	test.Error(t, err)
	test.T(t, n, 1)

	dims, err := api.PageDimsFile(filename)
	test.Error(t, err)
	test.T(t, len(dims), 1)
	test.Float(t, dims[0].Width, 595.0)
	test.Float(t, dims[0].Height, 842.0)
}

func TestExportDirect(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "direct.pdf")
	f, err := os.Create(filename)
	test.Error(t, err)

	opts := DefaultExportOptions
	opts.Width, opts.Height = 200.0, 100.0
	opts.Direct = true
	test.Error(t, Export(context.Background(), f, drawScene, &opts))
	test.Error(t, f.Close())

	dims, err := api.PageDimsFile(filename)
	test.Error(t, err)
	test.T(t, len(dims), 1)
	test.Float(t, dims[0].Width, 200.0)
	test.Float(t, dims[0].Height, 100.0)
}

func TestExportModes(t *testing.T) {
	opts := DefaultExportOptions
	opts.Compress = false

	buffered := &bytes.Buffer{}
	test.Error(t, Export(context.Background(), buffered, drawTriangle, &opts))

	opts.Direct = true
	direct := &bytes.Buffer{}
	test.Error(t, Export(context.Background(), direct, drawTriangle, &opts))

	test.String(t, contentStream(buffered.Bytes()), "1 0 0 -1 0 842 cm 1 0 0 rg /A0 gs 0 0 1 RG 2 w 10 10 m 90 10 l 50 80 l h B")
	test.String(t, contentStream(direct.Bytes()), contentStream(buffered.Bytes()))

	// properties set between the fill and the stroke of a path
	drawBorder := func(c canvas2pdf.Context) error {
		c.BeginPath()
		c.Rect(0.0, 0.0, 5.0, 5.0)
		c.ClosePath()
		c.SetFillStyle("blue")
		c.Fill()
		c.SetLineWidth(3.0)
		c.SetStrokeStyle("red")
		c.Stroke()
		return nil
	}

	opts.Direct = false
	buffered.Reset()
	test.Error(t, Export(context.Background(), buffered, drawBorder, &opts))
	test.String(t, contentStream(buffered.Bytes()), "1 0 0 -1 0 842 cm 0 0 5 5 re h 0 0 1 rg f 3 w 1 0 0 RG 0 0 5 5 re h S")

	opts.Direct = true
	direct.Reset()
	test.Error(t, Export(context.Background(), direct, drawBorder, &opts))
	test.String(t, contentStream(direct.Bytes()), "1 0 0 -1 0 842 cm 0 0 5 5 re h 0 0 1 rg 3 w 1 0 0 RG B")
}

func TestExportPanZoom(t *testing.T) {
	opts := DefaultExportOptions
	opts.Compress = false
	opts.Width, opts.Height = 100.0, 100.0
	opts.PanX, opts.PanY = 10.0, 20.0
	opts.Zoom = 2.0

	buf := &bytes.Buffer{}
	test.Error(t, Export(context.Background(), buf, func(c canvas2pdf.Context) error {
		c.FillRect(0.0, 0.0, 1.0, 1.0)
		return nil
	}, &opts))
	s := contentStream(buf.Bytes())
	test.That(t, strings.HasPrefix(s, "1 0 0 -1 0 100 cm 1 0 0 1 10 20 cm 2 0 0 2 0 0 cm 0 0 1 1 re f "), s)
	test.That(t, strings.HasSuffix(s, " 1 0 0 1 -10 -20 cm"), s)
}

func TestExportErrors(t *testing.T) {
	errDraw := errors.New("draw failed")

	opts := DefaultExportOptions
	opts.Width = 0.0
	err := Export(context.Background(), &bytes.Buffer{}, drawTriangle, &opts)
	test.That(t, errors.Is(err, ErrSize))

	err = Export(context.Background(), &bytes.Buffer{}, func(canvas2pdf.Context) error {
		return errDraw
	}, nil)
	test.That(t, errors.Is(err, errDraw))

	opts = DefaultExportOptions
	opts.Strict = true
	err = Export(context.Background(), &bytes.Buffer{}, func(c canvas2pdf.Context) error {
		c.BeginPath()
		c.MoveTo(0.0, 0.0)
		c.LineTo(1.0, 1.0)
		c.Stroke()
		return nil
	}, &opts)
	test.That(t, errors.Is(err, canvas2pdf.ErrUnclosedPath))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Export(ctx, &bytes.Buffer{}, drawTriangle, nil)
	test.That(t, errors.Is(err, context.Canceled))

	err = Export(context.Background(), errorWriter{}, drawTriangle, nil)
	test.That(t, errors.Is(err, errWrite))
}

func TestExportAsync(t *testing.T) {
	buf := &bytes.Buffer{}
	done := ExportAsync(context.Background(), buf, drawTriangle, nil)
	test.Error(t, <-done)
	_, ok := <-done
	test.That(t, !ok)
	test.That(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-1.7")))
}
