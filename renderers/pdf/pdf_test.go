package pdf

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/tdewolff/canvas2pdf"
	"github.com/tdewolff/test"
)

type errorWriter struct{}

var errWrite = errors.New("write failed")

func (errorWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestPDFPath(t *testing.T) {
	buf := &bytes.Buffer{}
	page := NewDocument(buf, nil).NewPage(100.0, 50.0)
	page.SetAlpha(0.5)
	page.SetFill(Paint{Color: color.RGBA{255, 0, 0, 255}})
	page.SetStroke(Paint{Color: color.RGBA{0, 0, 255, 255}})
	page.SetLineWidth(5.0)
	page.SetLineCap(1)
	page.SetLineJoin(1)
	page.SetDashes(2.0, []float64{1.0, 2.0, 3.0})
	test.String(t, page.String(), " 1 0 0 -1 0 50 cm /A0 gs 1 0 0 rg 0 0 1 RG 5 w 1 J 1 j [1 2 3 1 2 3] 2 d")

	// unchanged state is not written again
	page.Reset()
	page.SetAlpha(0.5)
	page.SetFill(Paint{Color: color.RGBA{255, 0, 0, 255}})
	page.SetLineWidth(5.0)
	page.SetDashes(2.0, []float64{1.0, 2.0, 3.0})
	test.String(t, page.String(), "")

	gs := page.resources["ExtGState"].(pdfDict)["A0"].(pdfDict)
	test.Float(t, gs["ca"].(float64), 0.5)
	test.Float(t, gs["CA"].(float64), 0.5)
}

func TestPDFOpacity(t *testing.T) {
	page := NewDocument(&bytes.Buffer{}, nil).NewPage(10.0, 10.0)
	page.Reset()
	page.SetFill(Paint{Color: color.RGBA{0, 0, 0, 128}}) // premultiplied
	test.String(t, page.String(), " 0 g /A0 gs")

	page.Reset()
	page.SetAlpha(0.5)
	test.String(t, page.String(), " /A1 gs")

	page.Reset()
	page.SetFill(Paint{Color: canvas2pdf.Black})
	page.SetAlpha(1.0)
	test.String(t, page.String(), " 0 g /A2 gs /A3 gs")
	test.That(t, len(page.graphicsStates) == 4)
}

func TestPDFSaveRestore(t *testing.T) {
	page := NewDocument(&bytes.Buffer{}, nil).NewPage(10.0, 10.0)
	page.Reset()
	page.SetLineWidth(5.0)
	page.Save()
	page.SetLineWidth(2.0)
	page.Transform(canvas2pdf.Identity.Translate(1.0, 2.0))
	page.Restore()
	page.SetLineWidth(5.0)
	page.Restore() // empty stack
	test.String(t, page.String(), " 5 w q 2 w 1 0 0 1 1 2 cm Q")
	test.T(t, page.CTM(), canvas2pdf.NewMatrix(1.0, 0.0, 0.0, -1.0, 0.0, 10.0))
}

func TestPDFSegments(t *testing.T) {
	page := NewDocument(&bytes.Buffer{}, nil).NewPage(10.0, 10.0)
	page.Reset()
	page.MoveTo(0.0, 0.0)
	page.QuadTo(3.0, 0.0, 3.0, 3.0)
	page.LineTo(0.0, 3.0)
	page.ClosePath()
	page.Rect(1.0, 2.0, 3.0, 4.0)
	page.FillStroke(true)
	page.Rect(0.0, 0.0, 1.0, 1.0)
	page.Clip(false)
	page.EndPath()
	test.String(t, page.String(), " 0 0 m 2 0 3 1 3 3 c 0 3 l h 1 2 3 4 re B* 0 0 1 1 re W n n")
}

func TestPDFDashes(t *testing.T) {
	var tts = []struct {
		phase  float64
		dashes []float64
		s      string
	}{
		{0.0, []float64{2.0, 1.0}, " [2 1] 0 d"},
		{-1.0, []float64{2.0, 2.0}, " [2 2] 3 d"},
		{1.0, []float64{3.0}, " [3 3] 1 d"},
		{0.0, nil, ""},
	}
	for _, tt := range tts {
		t.Run(tt.s, func(t *testing.T) {
			page := NewDocument(&bytes.Buffer{}, nil).NewPage(10.0, 10.0)
			page.Reset()
			page.SetDashes(tt.phase, tt.dashes)
			test.String(t, page.String(), tt.s)
		})
	}

	page := NewDocument(&bytes.Buffer{}, nil).NewPage(10.0, 10.0)
	page.SetDashes(0.0, []float64{1.0, 1.0})
	page.Reset()
	page.SetDashes(0.0, nil)
	test.String(t, page.String(), " [] 0 d")
}

func TestPDFText(t *testing.T) {
	doc := NewDocument(&bytes.Buffer{}, nil)
	page := doc.NewPage(100.0, 100.0)
	page.Reset()
	face := canvas2pdf.MustParseFont("10px Helvetica")
	page.Text(face, "a(b)", 10.0, 20.0, TextFill)
	test.String(t, page.String(), ` BT /F0 10 Tf 0 Tr 1 0 0 -1 10 27.18 Tm (a\(b\)) Tj ET`)

	page.Reset()
	page.Text(face, " é€☃", 0.0, 0.0, TextStroke)
	test.String(t, page.String(), " BT /F0 10 Tf 1 Tr 1 0 0 -1 0 7.18 Tm ( \xe9\x80?) Tj ET")

	page.Reset()
	page.Text(canvas2pdf.MustParseFont("bold 12px Times"), "x", 0.0, 0.0, TextFill)
	test.That(t, strings.HasPrefix(page.String(), " BT /F1 12 Tf"))
	test.That(t, len(doc.fonts) == 2)

	page.Reset()
	page.Text(face, "", 0.0, 0.0, TextFill)
	test.String(t, page.String(), "")
}

func TestPDFImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	doc := NewDocument(&bytes.Buffer{}, nil)
	page := doc.NewPage(10.0, 10.0)
	page.Reset()
	page.DrawImage(img, 1.0, 2.0, 4.0, 6.0)
	test.String(t, page.String(), " q 4 0 0 -6 1 8 cm /Im0 Do Q")

	page.Reset()
	page.SetAlpha(0.5)
	page.DrawImage(img, 0.0, 0.0, 2.0, 2.0)
	test.String(t, page.String(), " /A0 gs q 2 0 0 -2 0 2 cm /Im0 Do Q")
	test.That(t, len(doc.images) == 1)

	page.Reset()
	page.DrawImage(image.NewRGBA(image.Rect(0, 0, 0, 0)), 0.0, 0.0, 1.0, 1.0)
	test.String(t, page.String(), "")
}

func TestPDFImageMask(t *testing.T) {
	buf := &bytes.Buffer{}
	doc := NewDocument(buf, &Options{Compress: false, ImageEncoding: Lossless})
	page := doc.NewPage(10.0, 10.0)
	page.DrawImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), 0.0, 0.0, 1.0, 1.0)
	test.Error(t, doc.Close())
	test.That(t, strings.Contains(buf.String(), "/ColorSpace/DeviceGray"))
	test.That(t, strings.Contains(buf.String(), "/SMask "))

	buf.Reset()
	doc = NewDocument(buf, &Options{Compress: false, ImageEncoding: Lossy})
	page = doc.NewPage(10.0, 10.0)
	page.DrawImage(image.NewGray(image.Rect(0, 0, 1, 1)), 0.0, 0.0, 1.0, 1.0)
	test.Error(t, doc.Close())
	test.That(t, strings.Contains(buf.String(), "/Filter/DCTDecode"))
	test.That(t, !strings.Contains(buf.String(), "/SMask "))
}

func TestPDFGradient(t *testing.T) {
	g := canvas2pdf.NewLinearGradient(0.0, 0.0, 10.0, 0.0)
	g.AddColorStop(0.0, "red")
	g.AddColorStop(0.5, "lime")
	g.AddColorStop(1.0, "blue")

	page := NewDocument(&bytes.Buffer{}, nil).NewPage(10.0, 10.0)
	page.Reset()
	page.SetFill(Paint{Gradient: g})
	page.SetStroke(Paint{Gradient: g})
	test.String(t, page.String(), " /Pattern cs /P0 scn /Pattern CS /P0 SCN")

	pattern := page.resources["Pattern"].(pdfDict)["P0"].(pdfDict)
	shading := pattern["Shading"].(pdfDict)
	test.T(t, shading["ShadingType"], 2)
	fn := shading["Function"].(pdfDict)
	test.T(t, fn["FunctionType"], 3)
	test.T(t, len(fn["Functions"].(pdfArray)), 2)
	test.T(t, fn["Bounds"], pdfArray{0.5})

	// patterns are bound to the transformation
	page.Transform(canvas2pdf.Identity.Scale(2.0, 2.0))
	page.Reset()
	page.SetFill(Paint{Gradient: g})
	test.String(t, page.String(), " /Pattern cs /P1 scn")
}

func TestPDFStopsFunction(t *testing.T) {
	red := canvas2pdf.MustParseColor("red")
	blue := canvas2pdf.MustParseColor("blue")

	fn := patternStopsFunction(nil)
	test.T(t, fn["FunctionType"], 2)
	test.T(t, fn["C0"], pdfArray{0.0, 0.0, 0.0})

	fn = patternStopsFunction([]canvas2pdf.Stop{{Offset: 0.0, Color: red}, {Offset: 1.0, Color: blue}})
	test.T(t, fn["FunctionType"], 2)
	test.T(t, fn["C0"], pdfArray{1.0, 0.0, 0.0})
	test.T(t, fn["C1"], pdfArray{0.0, 0.0, 1.0})

	fn = patternStopsFunction([]canvas2pdf.Stop{{Offset: 0.5, Color: red}})
	test.T(t, fn["FunctionType"], 3)
	test.T(t, fn["Bounds"], pdfArray{0.5})

	fn = patternStopsFunction([]canvas2pdf.Stop{{Offset: 0.25, Color: red}, {Offset: 0.75, Color: blue}})
	test.T(t, fn["FunctionType"], 3)
	test.T(t, fn["Bounds"], pdfArray{0.25, 0.75})
}

func TestPDFDocument(t *testing.T) {
	buf := &bytes.Buffer{}
	doc := NewDocument(buf, &Options{Compress: false})
	doc.SetTitle("a1")
	doc.SetAuthor("b(2)")
	page := doc.NewPage(100.0, 50.0)
	page.Rect(0.0, 0.0, 10.0, 10.0)
	page.Fill(false)
	doc.NewPage(20.0, 30.0)
	test.Error(t, doc.Close())

	s := buf.String()
	test.That(t, strings.HasPrefix(s, "%PDF-1.7\n"))
	test.That(t, strings.HasSuffix(s, "%%EOF\n"))
	test.That(t, strings.Contains(s, "stream\n1 0 0 -1 0 50 cm 0 0 10 10 re f\nendstream"))
	test.That(t, strings.Contains(s, "/Type/Pages/Count 2"))
	test.T(t, strings.Count(s, "/Type/Page/"), 2)
	test.That(t, strings.Contains(s, "/MediaBox[0 0 20 30]"))
	test.That(t, strings.Contains(s, "/Title(a1)"))
	test.That(t, strings.Contains(s, `/Author(b\(2\))`))
	test.That(t, strings.Contains(s, "/Producer(tdewolff/canvas2pdf)"))

	test.That(t, errors.Is(doc.Close(), ErrClosed))
}

func TestPDFTextString(t *testing.T) {
	test.String(t, encodeTextString("abc"), "abc")
	test.String(t, encodeTextString("é"), "\xfe\xff\x00\xe9")
}

func TestPDFWriteError(t *testing.T) {
	doc := NewDocument(errorWriter{}, nil)
	test.That(t, errors.Is(doc.Err(), errWrite))
	doc.NewPage(10.0, 10.0)
	test.That(t, errors.Is(doc.Close(), errWrite))
	test.That(t, errors.Is(doc.Close(), errWrite))
}

func TestDec(t *testing.T) {
	var tts = []struct {
		f float64
		s string
	}{
		{0.0, "0"},
		{10.0, "10"},
		{27.18, "27.18"},
		{-3.0, "-3"},
	}
	for _, tt := range tts {
		t.Run(tt.s, func(t *testing.T) {
			test.String(t, dec(tt.f).String(), tt.s)
		})
	}
}
