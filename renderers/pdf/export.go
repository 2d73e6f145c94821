package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tdewolff/canvas2pdf"
)

// ErrSize is returned when exporting a page without area.
var ErrSize = errors.New("invalid page size")

// ExportOptions are the options of Export.
type ExportOptions struct {
	Width, Height float64 // page size in points

	Background string  // page color, none when empty
	PanX, PanY float64 // translation applied before drawing
	Zoom       float64 // scale applied before drawing, 1 when zero

	// Direct draws onto the page while the drawing function runs, relying on the rules of
	// ContextOptions. Otherwise the drawing is recorded, rewritten and then replayed.
	Direct bool
	Strict bool // fail on unclosed paths while rewriting
	Debug  bool // log every operation drawn on the page

	Options
	Title    string
	Subject  string
	Keywords string
	Author   string
	Creator  string
}

// DefaultExportOptions are the default export options, for an A4 page.
var DefaultExportOptions = ExportOptions{
	Width:   595.0,
	Height:  842.0,
	Zoom:    1.0,
	Options: DefaultOptions,
}

// DrawFunc draws onto a canvas.
type DrawFunc func(canvas2pdf.Context) error

// Export writes a single page PDF to w with the drawing made by draw. The context is checked
// between the replayed operations.
func Export(ctx context.Context, w io.Writer, draw DrawFunc, opts *ExportOptions) error {
	if opts == nil {
		defaultOptions := DefaultExportOptions
		opts = &defaultOptions
	}
	if !(0.0 < opts.Width) || !(0.0 < opts.Height) {
		return fmt.Errorf("%w: %gx%g", ErrSize, opts.Width, opts.Height)
	}

	doc := NewDocument(w, &opts.Options)
	doc.SetTitle(opts.Title)
	doc.SetSubject(opts.Subject)
	doc.SetKeywords(opts.Keywords)
	doc.SetAuthor(opts.Author)
	doc.SetCreator(opts.Creator)

	if opts.Direct {
		pc := NewContext(doc, opts.Width, opts.Height, &ContextOptions{Rules: true, Debug: opts.Debug})
		if err := drawPage(pc, draw, opts); err != nil {
			return err
		}
		return pc.End()
	}

	rec := canvas2pdf.NewRecorder()
	if err := drawPage(rec, draw, opts); err != nil {
		return err
	} else if err := rec.End(); err != nil {
		return err
	}
	log, err := canvas2pdf.Rewrite(rec.Log(), &canvas2pdf.RewriteOptions{Strict: opts.Strict})
	if err != nil {
		return err
	}

	pc := NewContext(doc, opts.Width, opts.Height, &ContextOptions{Debug: opts.Debug})
	if err := canvas2pdf.ReplayContext(ctx, log, pc); err != nil {
		return err
	}
	return pc.End()
}

// drawPage draws the background and the drawing, positioned by pan and zoom.
func drawPage(c canvas2pdf.Context, draw DrawFunc, opts *ExportOptions) error {
	zoom := opts.Zoom
	if zoom == 0.0 {
		zoom = 1.0
	}
	if opts.Background != "" {
		if bg, ok := c.(canvas2pdf.Backgrounder); ok {
			bg.Background(opts.Background)
		}
	}
	c.Translate(opts.PanX, opts.PanY)
	c.Scale(zoom, zoom)
	if err := draw(c); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	c.Scale(1.0/zoom, 1.0/zoom)
	c.Translate(-opts.PanX, -opts.PanY)
	return nil
}

// ExportAsync runs Export on a goroutine. The returned channel receives the result exactly
// once and is then closed.
func ExportAsync(ctx context.Context, w io.Writer, draw DrawFunc, opts *ExportOptions) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- Export(ctx, w, draw, opts)
	}()
	return done
}
