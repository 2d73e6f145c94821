package pdf

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"errors"
	"fmt"
	"image"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf16"
)

// ErrClosed is returned when writing to a document that was already closed.
var ErrClosed = errors.New("document closed")

// Document writes a PDF file page by page. Write errors are sticky: after the first error
// nothing is written anymore and Close returns it.
type Document struct {
	w   io.Writer
	err error

	pos        int
	objOffsets []int
	pages      []pdfRef

	page          *Page
	fonts         map[string]pdfRef
	images        map[image.Image]pdfRef
	compress      bool
	imageEncoding ImageEncoding
	closed        bool

	title    string
	subject  string
	keywords string
	author   string
	creator  string
}

// NewDocument returns a PDF document writing to w. The header is written immediately.
func NewDocument(w io.Writer, opts *Options) *Document {
	if opts == nil {
		defaultOptions := DefaultOptions
		opts = &defaultOptions
	}
	doc := &Document{
		w:             w,
		objOffsets:    []int{0, 0, 0}, // catalog, metadata, page tree
		fonts:         map[string]pdfRef{},
		images:        map[image.Image]pdfRef{},
		compress:      opts.Compress,
		imageEncoding: opts.ImageEncoding,
	}
	doc.write("%%PDF-1.7\n%%Ŧǟċơ\n")
	return doc
}

// SetTitle sets the document's title.
func (w *Document) SetTitle(title string) {
	w.title = title
}

// SetSubject sets the document's subject.
func (w *Document) SetSubject(subject string) {
	w.subject = subject
}

// SetKeywords sets the document's keywords.
func (w *Document) SetKeywords(keywords string) {
	w.keywords = keywords
}

// SetAuthor sets the document's author.
func (w *Document) SetAuthor(author string) {
	w.author = author
}

// SetCreator sets the document's creator.
func (w *Document) SetCreator(creator string) {
	w.creator = creator
}

// Err returns the first write error.
func (w *Document) Err() error {
	return w.err
}

func (w *Document) writeBytes(b []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(b)
	w.pos += n
	w.err = err
}

func (w *Document) write(s string, v ...any) {
	if w.err != nil {
		return
	}
	n, err := fmt.Fprintf(w.w, s, v...)
	w.pos += n
	w.err = err
}

type pdfRef int
type pdfName string
type pdfArray []any
type pdfDict map[pdfName]any
type pdfFilter string
type pdfStream struct {
	dict   pdfDict
	stream []byte
}

const (
	pdfFilterASCII85 pdfFilter = "ASCII85Decode"
	pdfFilterFlate   pdfFilter = "FlateDecode"
	pdfFilterDCT     pdfFilter = "DCTDecode"
)

func pdfValContinuesName(val any) bool {
	switch val.(type) {
	case string, pdfName, pdfFilter, pdfArray, pdfDict, pdfStream:
		return false
	}
	return true
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `(`, `\(`)
	return strings.ReplaceAll(s, `)`, `\)`)
}

func (w *Document) writeVal(i any) {
	switch v := i.(type) {
	case bool:
		if v {
			w.write("true")
		} else {
			w.write("false")
		}
	case int:
		w.write("%d", v)
	case float64:
		w.write("%v", dec(v))
	case string:
		w.write("(%v)", escapeString(v))
	case pdfRef:
		w.write("%v 0 R", v)
	case pdfName, pdfFilter:
		w.write("/%v", v)
	case pdfArray:
		w.write("[")
		for j, val := range v {
			if j != 0 {
				w.write(" ")
			}
			w.writeVal(val)
		}
		w.write("]")
	case pdfDict:
		w.write("<<")
		for _, key := range []pdfName{"Type", "Subtype"} {
			if val, ok := v[key]; ok {
				w.write("/%v", key)
				if pdfValContinuesName(val) {
					w.write(" ")
				}
				w.writeVal(val)
			}
		}
		keys := []string{}
		for key := range v {
			if key != "Type" && key != "Subtype" {
				keys = append(keys, string(key))
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			w.writeVal(pdfName(key))
			if pdfValContinuesName(v[pdfName(key)]) {
				w.write(" ")
			}
			w.writeVal(v[pdfName(key)])
		}
		w.write(">>")
	case pdfStream:
		if v.dict == nil {
			v.dict = pdfDict{}
		}

		filters := []pdfFilter{}
		if filter, ok := v.dict["Filter"].(pdfFilter); ok {
			filters = append(filters, filter)
		} else if filterArray, ok := v.dict["Filter"].(pdfArray); ok {
			for i := len(filterArray) - 1; i >= 0; i-- {
				if filter, ok := filterArray[i].(pdfFilter); ok {
					filters = append(filters, filter)
				}
			}
		}

		b := v.stream
		for _, filter := range filters {
			var b2 bytes.Buffer
			switch filter {
			case pdfFilterASCII85:
				enc := ascii85.NewEncoder(&b2)
				enc.Write(b)
				enc.Close()
				b2.WriteString("~>")
				b = b2.Bytes()
			case pdfFilterFlate:
				enc := zlib.NewWriter(&b2)
				enc.Write(b)
				enc.Close()
				b = b2.Bytes()
			default:
				// already encoded, eg. DCTDecode
			}
		}

		v.dict["Length"] = len(b)
		w.writeVal(v.dict)
		w.write("stream\n")
		w.writeBytes(b)
		w.write("\nendstream")
	default:
		panic(fmt.Sprintf("unknown PDF type %T", i))
	}
}

func (w *Document) writeObject(val any) pdfRef {
	w.objOffsets = append(w.objOffsets, w.pos)
	w.write("%v 0 obj", len(w.objOffsets))
	w.writeVal(val)
	w.write("endobj\n")
	return pdfRef(len(w.objOffsets))
}

// getFont returns the object of one of the 14 standard Type1 fonts, which are never embedded.
func (w *Document) getFont(name string) pdfRef {
	if ref, ok := w.fonts[name]; ok {
		return ref
	}
	dict := pdfDict{
		"Type":     pdfName("Font"),
		"Subtype":  pdfName("Type1"),
		"BaseFont": pdfName(name),
	}
	if name != "Symbol" && name != "ZapfDingbats" {
		dict["Encoding"] = pdfName("WinAnsiEncoding")
	}
	ref := w.writeObject(dict)
	w.fonts[name] = ref
	return ref
}

// encodeTextString encodes s as a PDF text string, using UTF-16BE when it is not ASCII.
func encodeTextString(s string) string {
	ascii := true
	for _, r := range s {
		if 0x80 <= r {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	rs := utf16.Encode([]rune(s))
	b := make([]byte, 2+2*len(rs))
	b[0] = 254
	b[1] = 255
	for i, r := range rs {
		b[2+2*i+0] = byte(r >> 8)
		b[2+2*i+1] = byte(r & 0x00FF)
	}
	return string(b)
}

// Close writes the last page and finishes the document. Closing twice returns ErrClosed.
func (w *Document) Close() error {
	if w.closed {
		if w.err != nil {
			return w.err
		}
		return ErrClosed
	}
	w.closed = true

	if w.page != nil {
		w.pages = append(w.pages, w.page.writePage(pdfRef(3)))
		w.page = nil
	}

	kids := pdfArray{}
	for _, page := range w.pages {
		kids = append(kids, page)
	}

	// document catalog
	w.objOffsets[0] = w.pos
	w.write("%v 0 obj", 1)
	w.writeVal(pdfDict{
		"Type":  pdfName("Catalog"),
		"Pages": pdfRef(3),
	})
	w.write("endobj\n")

	// metadata
	info := pdfDict{
		"Producer":     "tdewolff/canvas2pdf",
		"CreationDate": time.Now().UTC().Format("D:20060102150405Z"),
	}
	for key, val := range map[pdfName]string{
		"Title":    w.title,
		"Subject":  w.subject,
		"Keywords": w.keywords,
		"Author":   w.author,
		"Creator":  w.creator,
	} {
		if val != "" {
			info[key] = encodeTextString(val)
		}
	}
	w.objOffsets[1] = w.pos
	w.write("%v 0 obj", 2)
	w.writeVal(info)
	w.write("endobj\n")

	// page tree
	w.objOffsets[2] = w.pos
	w.write("%v 0 obj", 3)
	w.writeVal(pdfDict{
		"Type":  pdfName("Pages"),
		"Kids":  kids,
		"Count": len(kids),
	})
	w.write("endobj\n")

	xrefOffset := w.pos
	w.write("xref\n0 %d\n0000000000 65535 f \n", len(w.objOffsets)+1)
	for _, objOffset := range w.objOffsets {
		w.write("%010d 00000 n \n", objOffset)
	}
	w.write("trailer\n")
	w.writeVal(pdfDict{
		"Root": pdfRef(1),
		"Size": len(w.objOffsets) + 1,
		"Info": pdfRef(2),
	})
	w.write("\nstartxref\n%v\n%%%%EOF\n", xrefOffset)
	return w.err
}
