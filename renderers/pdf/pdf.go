// Package pdf draws canvas operations onto the pages of a PDF document.
//
// Document and Page form a small PDF writer with the standard Type1 fonts, opacity, shading
// patterns and images. Context adapts a Page to the canvas2pdf.Context interface, and Export
// drives a drawing function through either the buffered or the direct pipeline.
package pdf

// ImageEncoding is the encoding of embedded images.
type ImageEncoding int

// see ImageEncoding
const (
	Lossless ImageEncoding = iota
	Lossy
)

func (enc ImageEncoding) String() string {
	if enc == Lossy {
		return "lossy"
	}
	return "lossless"
}

// Options are the document options.
type Options struct {
	Compress bool
	ImageEncoding
}

// DefaultOptions are the default document options.
var DefaultOptions = Options{
	Compress:      true,
	ImageEncoding: Lossless,
}
