package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"reflect"
	"slices"

	"github.com/tdewolff/canvas2pdf"
	"golang.org/x/text/encoding/charmap"
)

// Paint is either a solid color or a gradient.
type Paint struct {
	Color    color.RGBA
	Gradient *canvas2pdf.Gradient
}

// IsGradient returns true if the paint is a gradient.
func (p Paint) IsGradient() bool {
	return p.Gradient != nil
}

// Equal returns true if both paints are the same color or the same gradient.
func (p Paint) Equal(q Paint) bool {
	if p.Gradient != nil || q.Gradient != nil {
		return p.Gradient == q.Gradient
	}
	return p.Color == q.Color
}

func (p Paint) alpha() float64 {
	if p.IsGradient() {
		return 1.0
	}
	return float64(p.Color.A) / 255.0
}

// TextMode is the text rendering mode.
type TextMode int

// see TextMode
const (
	TextFill TextMode = iota
	TextStroke
)

type pageState struct {
	ctm        canvas2pdf.Matrix
	fill       Paint
	stroke     Paint
	alpha      float64    // global alpha
	opacity    [2]float64 // fill and stroke opacity in effect
	lineWidth  float64
	lineCap    int
	lineJoin   int
	miterLimit float64
	dashes     []float64 // dash array followed by the phase
}

// Page is the content stream of a page. Coordinates are canvas coordinates, with the origin in
// the top-left corner and the y-axis pointing down, in points.
type Page struct {
	*bytes.Buffer
	pdf           *Document
	width, height float64
	resources     pdfDict

	graphicsStates map[[2]float64]pdfName
	state          pageState
	stack          []pageState

	pos, start canvas2pdf.Point
}

// NewPage finishes the current page and starts a new one with the given size in points.
func (w *Document) NewPage(width, height float64) *Page {
	if w.page != nil {
		w.pages = append(w.pages, w.page.writePage(pdfRef(3)))
	}

	flip := canvas2pdf.NewMatrix(1.0, 0.0, 0.0, -1.0, 0.0, height)
	w.page = &Page{
		Buffer:         &bytes.Buffer{},
		pdf:            w,
		width:          width,
		height:         height,
		resources:      pdfDict{},
		graphicsStates: map[[2]float64]pdfName{},
		state: pageState{
			ctm:        flip,
			fill:       Paint{Color: canvas2pdf.Black},
			stroke:     Paint{Color: canvas2pdf.Black},
			alpha:      1.0,
			opacity:    [2]float64{1.0, 1.0},
			lineWidth:  1.0,
			miterLimit: 10.0,
			dashes:     []float64{0.0},
		},
	}
	w.page.writeMatrix(flip)
	return w.page
}

// Size returns the size of the page in points.
func (w *Page) Size() (float64, float64) {
	return w.width, w.height
}

// CTM returns the current transformation matrix from canvas to PDF user space, which includes
// the initial flip of the y-axis.
func (w *Page) CTM() canvas2pdf.Matrix {
	return w.state.ctm
}

func (w *Page) writePage(parent pdfRef) pdfRef {
	b := w.Bytes()
	if 0 < len(b) && b[0] == ' ' {
		b = b[1:]
	}
	stream := pdfStream{
		dict:   pdfDict{},
		stream: b,
	}
	if w.pdf.compress {
		stream.dict["Filter"] = pdfFilterFlate
	}
	contents := w.pdf.writeObject(stream)
	page := pdfDict{
		"Type":      pdfName("Page"),
		"Parent":    parent,
		"MediaBox":  pdfArray{0.0, 0.0, w.width, w.height},
		"Resources": w.resources,
		"Group": pdfDict{
			"Type": pdfName("Group"),
			"S":    pdfName("Transparency"),
			"I":    true,
			"CS":   pdfName("DeviceRGB"),
		},
		"Contents": contents,
	}
	return w.pdf.writeObject(page)
}

func (w *Page) writeMatrix(m canvas2pdf.Matrix) {
	a, b, c, d, e, f := m.Values()
	fmt.Fprintf(w, " %v %v %v %v %v %v cm", dec(a), dec(b), dec(c), dec(d), dec(e), dec(f))
}

// Save pushes the graphics state.
func (w *Page) Save() {
	state := w.state
	state.dashes = append([]float64{}, w.state.dashes...)
	w.stack = append(w.stack, state)
	fmt.Fprintf(w, " q")
}

// Restore pops the graphics state. It does nothing when the stack is empty.
func (w *Page) Restore() {
	if len(w.stack) == 0 {
		return
	}
	w.state = w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	fmt.Fprintf(w, " Q")
}

// Transform concatenates m to the current transformation matrix.
func (w *Page) Transform(m canvas2pdf.Matrix) {
	if m.Equals(canvas2pdf.Identity) {
		return
	}
	w.writeMatrix(m)
	w.state.ctm = w.state.ctm.Mul(m)
}

// MoveTo starts a new subpath.
func (w *Page) MoveTo(x, y float64) {
	fmt.Fprintf(w, " %v %v m", dec(x), dec(y))
	w.pos = canvas2pdf.Point{X: x, Y: y}
	w.start = w.pos
}

// LineTo appends a straight segment.
func (w *Page) LineTo(x, y float64) {
	fmt.Fprintf(w, " %v %v l", dec(x), dec(y))
	w.pos = canvas2pdf.Point{X: x, Y: y}
}

// CubeTo appends a cubic Bézier.
func (w *Page) CubeTo(cpx1, cpy1, cpx2, cpy2, x, y float64) {
	fmt.Fprintf(w, " %v %v %v %v %v %v c", dec(cpx1), dec(cpy1), dec(cpx2), dec(cpy2), dec(x), dec(y))
	w.pos = canvas2pdf.Point{X: x, Y: y}
}

// QuadTo appends a quadratic Bézier, written as the equivalent cubic.
func (w *Page) QuadTo(cpx, cpy, x, y float64) {
	cp := canvas2pdf.Point{X: cpx, Y: cpy}
	end := canvas2pdf.Point{X: x, Y: y}
	cp1 := w.pos.Add(cp.Sub(w.pos).Mul(2.0 / 3.0))
	cp2 := end.Add(cp.Sub(end).Mul(2.0 / 3.0))
	w.CubeTo(cp1.X, cp1.Y, cp2.X, cp2.Y, x, y)
}

// Rect appends a closed rectangle subpath.
func (w *Page) Rect(x, y, width, height float64) {
	fmt.Fprintf(w, " %v %v %v %v re", dec(x), dec(y), dec(width), dec(height))
	w.pos = canvas2pdf.Point{X: x, Y: y}
	w.start = w.pos
}

// ClosePath closes the current subpath.
func (w *Page) ClosePath() {
	fmt.Fprintf(w, " h")
	w.pos = w.start
}

// Fill fills the current path and ends it.
func (w *Page) Fill(evenOdd bool) {
	if evenOdd {
		fmt.Fprintf(w, " f*")
	} else {
		fmt.Fprintf(w, " f")
	}
}

// Stroke strokes the current path and ends it.
func (w *Page) Stroke() {
	fmt.Fprintf(w, " S")
}

// FillStroke fills and then strokes the current path as one painting operation.
func (w *Page) FillStroke(evenOdd bool) {
	if evenOdd {
		fmt.Fprintf(w, " B*")
	} else {
		fmt.Fprintf(w, " B")
	}
}

// Clip intersects the clipping path with the current path and ends it.
func (w *Page) Clip(evenOdd bool) {
	if evenOdd {
		fmt.Fprintf(w, " W* n")
	} else {
		fmt.Fprintf(w, " W n")
	}
}

// EndPath ends the current path without painting it.
func (w *Page) EndPath() {
	fmt.Fprintf(w, " n")
}

// SetAlpha sets the global alpha that multiplies the opacity of the fill and stroke paints.
func (w *Page) SetAlpha(alpha float64) {
	w.state.alpha = alpha
	w.updateOpacity()
}

func (w *Page) updateOpacity() {
	opacity := [2]float64{w.state.fill.alpha() * w.state.alpha, w.state.stroke.alpha() * w.state.alpha}
	if opacity != w.state.opacity {
		fmt.Fprintf(w, " /%v gs", w.getOpacityGS(opacity))
		w.state.opacity = opacity
	}
}

func (w *Page) writeColor(c color.RGBA, gray, rgb string) {
	a := float64(c.A) / 255.0
	if a == 0.0 {
		a = 1.0
	}
	if c.R == c.G && c.R == c.B {
		fmt.Fprintf(w, " %v %v", dec(float64(c.R)/255.0/a), gray)
	} else {
		fmt.Fprintf(w, " %v %v %v %v", dec(float64(c.R)/255.0/a), dec(float64(c.G)/255.0/a), dec(float64(c.B)/255.0/a), rgb)
	}
}

// SetFill sets the filling paint. Gradients are bound to the current transformation.
func (w *Page) SetFill(fill Paint) {
	if fill.IsGradient() {
		fmt.Fprintf(w, " /Pattern cs /%v scn", w.getPattern(fill.Gradient))
	} else if fill.Equal(w.state.fill) {
		return
	} else {
		w.writeColor(fill.Color, "g", "rg")
	}
	w.state.fill = fill
	w.updateOpacity()
}

// SetStroke sets the stroking paint. Gradients are bound to the current transformation.
func (w *Page) SetStroke(stroke Paint) {
	if stroke.IsGradient() {
		fmt.Fprintf(w, " /Pattern CS /%v SCN", w.getPattern(stroke.Gradient))
	} else if stroke.Equal(w.state.stroke) {
		return
	} else {
		w.writeColor(stroke.Color, "G", "RG")
	}
	w.state.stroke = stroke
	w.updateOpacity()
}

// SetLineWidth sets the stroke width.
func (w *Page) SetLineWidth(lineWidth float64) {
	if lineWidth != w.state.lineWidth {
		fmt.Fprintf(w, " %v w", dec(lineWidth))
		w.state.lineWidth = lineWidth
	}
}

// SetLineCap sets the stroke cap: 0 for butt, 1 for round and 2 for square.
func (w *Page) SetLineCap(lineCap int) {
	if lineCap != w.state.lineCap {
		fmt.Fprintf(w, " %d J", lineCap)
		w.state.lineCap = lineCap
	}
}

// SetLineJoin sets the stroke join: 0 for miter, 1 for round and 2 for bevel.
func (w *Page) SetLineJoin(lineJoin int) {
	if lineJoin != w.state.lineJoin {
		fmt.Fprintf(w, " %d j", lineJoin)
		w.state.lineJoin = lineJoin
	}
}

// SetMiterLimit sets the miter limit.
func (w *Page) SetMiterLimit(miterLimit float64) {
	if miterLimit != w.state.miterLimit {
		fmt.Fprintf(w, " %v M", dec(miterLimit))
		w.state.miterLimit = miterLimit
	}
}

// SetDashes sets the dash phase and array. An empty array draws solid lines.
func (w *Page) SetDashes(dashPhase float64, dashArray []float64) {
	if len(dashArray)%2 == 1 {
		dashArray = append(dashArray, dashArray...)
	}

	// PDF can't handle negative dash phases
	if dashPhase < 0.0 {
		totalLength := 0.0
		for _, dash := range dashArray {
			totalLength += dash
		}
		if 0.0 < totalLength {
			dashPhase = math.Mod(dashPhase, totalLength) + totalLength
		} else {
			dashPhase = 0.0
		}
	}

	dashes := append(append([]float64{}, dashArray...), dashPhase)
	if len(dashes) == 1 {
		dashes[0] = 0.0
	}
	if slices.Equal(dashes, w.state.dashes) {
		return
	}
	if len(dashes) == 1 {
		fmt.Fprintf(w, " [] 0 d")
	} else {
		fmt.Fprintf(w, " [%v", dec(dashes[0]))
		for _, dash := range dashes[1 : len(dashes)-1] {
			fmt.Fprintf(w, " %v", dec(dash))
		}
		fmt.Fprintf(w, "] %v d", dec(dashes[len(dashes)-1]))
	}
	w.state.dashes = dashes
}

// TextWidth returns the advance width of the text in the face.
func (w *Page) TextWidth(face canvas2pdf.FontFace, text string) float64 {
	return face.TextWidth(text)
}

// Text writes a single line of text with the top-left corner of its line box at (x,y).
func (w *Page) Text(face canvas2pdf.FontFace, text string, x, y float64, mode TextMode) {
	if text == "" {
		return
	}
	ref := w.pdf.getFont(face.StandardName())
	if _, ok := w.resources["Font"]; !ok {
		w.resources["Font"] = pdfDict{}
	}
	var name pdfName
	for fontName, fontRef := range w.resources["Font"].(pdfDict) {
		if ref == fontRef {
			name = fontName
			break
		}
	}
	if name == "" {
		name = pdfName(fmt.Sprintf("F%d", len(w.resources["Font"].(pdfDict))))
		w.resources["Font"].(pdfDict)[name] = ref
	}

	// the text matrix undoes the flip of the page so that glyphs stand upright
	fmt.Fprintf(w, " BT /%v %v Tf %d Tr 1 0 0 -1 %v %v Tm (", name, dec(face.Size), mode, dec(x), dec(y+face.Ascent()))
	for _, r := range text {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			if '\u2000' <= r && r <= '\u200A' {
				c = ' '
			} else {
				c = '?'
			}
		}
		switch c {
		case '\n':
			w.WriteString(`\n`)
		case '\r':
			w.WriteString(`\r`)
		case '\t':
			w.WriteString(`\t`)
		case '\b':
			w.WriteString(`\b`)
		case '\f':
			w.WriteString(`\f`)
		case '\\', '(', ')':
			w.WriteByte('\\')
			w.WriteByte(c)
		default:
			w.WriteByte(c)
		}
	}
	fmt.Fprintf(w, ") Tj ET")
}

// DrawImage embeds and draws an image into the rectangle (x,y,width,height). The global alpha
// applies to the image.
func (w *Page) DrawImage(img image.Image, x, y, width, height float64) {
	size := img.Bounds().Size()
	if size.X == 0 || size.Y == 0 {
		return
	}

	ref := w.embedImage(img)
	if _, ok := w.resources["XObject"]; !ok {
		w.resources["XObject"] = pdfDict{}
	}
	var name pdfName
	for imageName, imageRef := range w.resources["XObject"].(pdfDict) {
		if ref == imageRef {
			name = imageName
			break
		}
	}
	if name == "" {
		name = pdfName(fmt.Sprintf("Im%d", len(w.resources["XObject"].(pdfDict))))
		w.resources["XObject"].(pdfDict)[name] = ref
	}

	fmt.Fprintf(w, " q")
	if opacity := [2]float64{w.state.alpha, w.state.alpha}; opacity != w.state.opacity {
		fmt.Fprintf(w, " /%v gs", w.getOpacityGS(opacity))
	}
	// image space is the unit square with the first row at the top
	fmt.Fprintf(w, " %v 0 0 %v %v %v cm /%v Do Q", dec(width), dec(-height), dec(x), dec(y+height), name)
}

func (w *Page) embedImage(img image.Image) pdfRef {
	if ref, ok := w.pdf.images[img]; ok {
		return ref
	}

	var filter pdfFilter
	var stream []byte
	var streamMask []byte
	var hasMask bool

	size := img.Bounds().Size()
	sp := img.Bounds().Min // starting point
	if w.pdf.imageEncoding == Lossy {
		filter = pdfFilterDCT
		streamMask = make([]byte, size.X*size.Y)
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				_, _, _, A := img.At(sp.X+x, sp.Y+y).RGBA()
				streamMask[y*size.X+x] = byte(A >> 8)
				if A>>8 != 255 {
					hasMask = true
				}
			}
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, nil); err != nil && w.pdf.err == nil {
			w.pdf.err = err
		}
		stream = buf.Bytes()
	} else {
		filter = pdfFilterFlate
		stream = make([]byte, size.X*size.Y*3)
		streamMask = make([]byte, size.X*size.Y)
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				i := (y*size.X + x) * 3
				R, G, B, A := img.At(sp.X+x, sp.Y+y).RGBA()
				if A != 0 {
					stream[i+0] = byte((R * 65535 / A) >> 8)
					stream[i+1] = byte((G * 65535 / A) >> 8)
					stream[i+2] = byte((B * 65535 / A) >> 8)
					streamMask[y*size.X+x] = byte(A >> 8)
				}
				if A>>8 != 255 {
					hasMask = true
				}
			}
		}
	}

	dict := pdfDict{
		"Type":             pdfName("XObject"),
		"Subtype":          pdfName("Image"),
		"Width":            size.X,
		"Height":           size.Y,
		"ColorSpace":       pdfName("DeviceRGB"),
		"BitsPerComponent": 8,
		"Interpolate":      true,
		"Filter":           filter,
	}
	if hasMask {
		dict["SMask"] = w.pdf.writeObject(pdfStream{
			dict: pdfDict{
				"Type":             pdfName("XObject"),
				"Subtype":          pdfName("Image"),
				"Width":            size.X,
				"Height":           size.Y,
				"ColorSpace":       pdfName("DeviceGray"),
				"BitsPerComponent": 8,
				"Interpolate":      true,
				"Filter":           pdfFilterFlate,
			},
			stream: streamMask,
		})
	}

	ref := w.pdf.writeObject(pdfStream{
		dict:   dict,
		stream: stream,
	})
	w.pdf.images[img] = ref
	return ref
}

func (w *Page) getOpacityGS(opacity [2]float64) pdfName {
	if name, ok := w.graphicsStates[opacity]; ok {
		return name
	}
	name := pdfName(fmt.Sprintf("A%d", len(w.graphicsStates)))
	w.graphicsStates[opacity] = name

	if _, ok := w.resources["ExtGState"]; !ok {
		w.resources["ExtGState"] = pdfDict{}
	}
	w.resources["ExtGState"].(pdfDict)[name] = pdfDict{
		"ca": opacity[0],
		"CA": opacity[1],
	}
	return name
}

func (w *Page) getPattern(g *canvas2pdf.Gradient) pdfName {
	shading := pdfDict{
		"ColorSpace": pdfName("DeviceRGB"),
		"Function":   patternStopsFunction(g.Stops),
		"Extend":     pdfArray{true, true},
	}
	if g.Kind == canvas2pdf.LinearGradient {
		shading["ShadingType"] = 2
		shading["Coords"] = pdfArray{g.X0, g.Y0, g.X1, g.Y1}
	} else {
		shading["ShadingType"] = 3
		shading["Coords"] = pdfArray{g.X0, g.Y0, g.R0, g.X1, g.Y1, g.R1}
	}
	a, b, c, d, e, f := w.state.ctm.Values()
	pattern := pdfDict{
		"Type":        pdfName("Pattern"),
		"PatternType": 2,
		"Shading":     shading,
		"Matrix":      pdfArray{a, b, c, d, e, f},
	}

	if _, ok := w.resources["Pattern"]; !ok {
		w.resources["Pattern"] = pdfDict{}
	}
	for name, pat := range w.resources["Pattern"].(pdfDict) {
		if reflect.DeepEqual(pat, pattern) {
			return name
		}
	}
	name := pdfName(fmt.Sprintf("P%d", len(w.resources["Pattern"].(pdfDict))))
	w.resources["Pattern"].(pdfDict)[name] = pattern
	return name
}

// patternStopsFunction returns a stitching function over the color stops. The first and last
// colors extend to offsets 0 and 1, and a gradient without stops is transparent black, which
// is painted as black since shading opacity is not supported.
func patternStopsFunction(stops []canvas2pdf.Stop) pdfDict {
	if len(stops) == 0 {
		return patternStopFunction(canvas2pdf.Black, canvas2pdf.Black)
	}

	points := append([]canvas2pdf.Stop{}, stops...)
	if 0.0 < points[0].Offset {
		points = append([]canvas2pdf.Stop{{Offset: 0.0, Color: points[0].Color}}, points...)
	}
	if last := points[len(points)-1]; last.Offset < 1.0 {
		points = append(points, canvas2pdf.Stop{Offset: 1.0, Color: last.Color})
	}
	if len(points) == 1 {
		return patternStopFunction(points[0].Color, points[0].Color)
	} else if len(points) == 2 {
		return patternStopFunction(points[0].Color, points[1].Color)
	}

	fs := pdfArray{}
	encode := pdfArray{}
	bounds := pdfArray{}
	for i := 0; i < len(points)-1; i++ {
		fs = append(fs, patternStopFunction(points[i].Color, points[i+1].Color))
		encode = append(encode, 0, 1)
		if i != 0 {
			bounds = append(bounds, points[i].Offset)
		}
	}
	return pdfDict{
		"FunctionType": 3,
		"Domain":       pdfArray{0, 1},
		"Encode":       encode,
		"Bounds":       bounds,
		"Functions":    fs,
	}
}

func patternStopFunction(c0, c1 color.RGBA) pdfDict {
	rgb := func(c color.RGBA) pdfArray {
		a := float64(c.A) / 255.0
		if a == 0.0 {
			return pdfArray{0.0, 0.0, 0.0}
		}
		return pdfArray{float64(c.R) / 255.0 / a, float64(c.G) / 255.0 / a, float64(c.B) / 255.0 / a}
	}
	return pdfDict{
		"FunctionType": 2,
		"Domain":       pdfArray{0, 1},
		"N":            1,
		"C0":           rgb(c0),
		"C1":           rgb(c1),
	}
}
