// Package script runs JavaScript drawing code against a canvas2pdf.Context.
//
// The script sees a global ctx with the methods and properties of a 2D canvas context, a global
// canvas with the page size, loadImage to decode data URIs or files into images for drawImage,
// and console.log which writes to the package logger.
package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"slices"
	"strings"

	"github.com/dop251/goja"
	"github.com/tdewolff/canvas2pdf"
	"github.com/tdewolff/parse/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrImage is returned for images that cannot be loaded.
var ErrImage = errors.New("cannot load image")

// Options are the options of a script host.
type Options struct {
	Width, Height float64 // exposed as canvas.width and canvas.height

	// FS resolves loadImage paths that are not data URIs. Only data URIs load when nil.
	FS fs.FS
}

// Image is a decoded image as seen by scripts.
type Image struct {
	image.Image
	Width  int
	Height int
}

// Host is a JavaScript runtime bound to a drawing surface. A host is not safe for concurrent
// use.
type Host struct {
	vm   *goja.Runtime
	c    canvas2pdf.Context
	opts Options
}

// New returns a host that draws on c.
func New(c canvas2pdf.Context, opts *Options) (*Host, error) {
	if opts == nil {
		opts = &Options{}
	}
	h := &Host{
		vm:   goja.New(),
		c:    c,
		opts: *opts,
	}
	h.vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	if err := h.bind(); err != nil {
		return nil, err
	}
	return h, nil
}

// Runtime returns the underlying JavaScript runtime.
func (h *Host) Runtime() *goja.Runtime {
	return h.vm
}

func (h *Host) bind() error {
	obj := h.newContextObject()
	if err := h.vm.Set("ctx", obj); err != nil {
		return err
	}

	canvas := h.vm.NewObject()
	canvas.Set("width", h.opts.Width)
	canvas.Set("height", h.opts.Height)
	canvas.Set("getContext", func(call goja.FunctionCall) goja.Value {
		if kind := call.Argument(0).String(); kind != "2d" {
			return goja.Null()
		}
		return obj
	})
	if err := h.vm.Set("canvas", canvas); err != nil {
		return err
	}

	if err := h.vm.Set("loadImage", func(call goja.FunctionCall) goja.Value {
		img, err := h.loadImage(call.Argument(0).String())
		if err != nil {
			panic(h.vm.NewGoError(err))
		}
		return h.vm.ToValue(img)
	}); err != nil {
		return err
	}

	console := h.vm.NewObject()
	console.Set("log", func(call goja.FunctionCall) goja.Value {
		msg := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			msg[i] = arg.String()
		}
		canvas2pdf.Logger().Info(strings.Join(msg, " "), "source", "script")
		return goja.Undefined()
	})
	return h.vm.Set("console", console)
}

// newContextObject returns the ctx object. Every operation dispatches by name to the surface, and
// every property is read and written through the surface. Other names are reported, reads give
// undefined and writes are ignored.
func (h *Host) newContextObject() *goja.Object {
	obj := &contextObject{
		h:       h,
		methods: map[string]goja.Value{},
	}
	names := append(slices.Clone(canvas2pdf.Operations), canvas2pdf.OpFillAndStroke)
	for _, name := range names {
		obj.methods[name] = h.vm.ToValue(h.operation(name))
	}
	return h.vm.NewDynamicObject(obj)
}

// contextObject is the script side of a canvas2pdf.Context.
type contextObject struct {
	h       *Host
	methods map[string]goja.Value
}

func (o *contextObject) Get(key string) goja.Value {
	if method, ok := o.methods[key]; ok {
		return method
	}
	v, err := canvas2pdf.Property(o.h.c, key)
	if err != nil {
		canvas2pdf.Logger().Warn("get unsupported canvas property", "name", key)
		return nil
	}
	return o.h.vm.ToValue(v)
}

func (o *contextObject) Set(key string, val goja.Value) bool {
	if _, ok := o.methods[key]; ok {
		canvas2pdf.Logger().Warn("ignoring assignment to canvas operation", "name", key)
		return true
	} else if !canvas2pdf.IsProperty(key) {
		canvas2pdf.Logger().Warn("set unsupported canvas property", "name", key)
		return true
	}
	if err := canvas2pdf.Assign(o.h.c, key, o.h.export(val)); err != nil {
		// assigning a bad value to a canvas property is ignored
		canvas2pdf.Logger().Warn("ignoring property", "name", key, "err", err)
	}
	return true
}

func (o *contextObject) Has(key string) bool {
	_, ok := o.methods[key]
	return ok || canvas2pdf.IsProperty(key)
}

func (o *contextObject) Delete(key string) bool {
	return false
}

func (o *contextObject) Keys() []string {
	keys := make([]string, 0, len(o.methods)+len(canvas2pdf.Properties))
	for name := range o.methods {
		keys = append(keys, name)
	}
	slices.Sort(keys)
	return append(keys, canvas2pdf.Properties...)
}

func (h *Host) operation(name string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		arguments := make([]any, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			arguments = append(arguments, h.export(arg))
		}
		if name == canvas2pdf.OpDrawImage && 0 < len(arguments) && arguments[0] == nil {
			panic(h.vm.NewTypeError("drawImage: no image"))
		}

		result, err := canvas2pdf.Invoke(h.c, name, arguments...)
		if err != nil {
			panic(h.vm.NewTypeError(fmt.Sprintf("%s: %v", name, err)))
		} else if result == nil {
			return goja.Undefined()
		}
		return h.vm.ToValue(result)
	}
}

// export converts a script value to the Go value expected by the surface.
func (h *Host) export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	switch x := v.Export().(type) {
	case *Image:
		if x == nil {
			return nil
		}
		return x.Image
	case Image:
		return x.Image
	default:
		return x
	}
}

func (h *Host) loadImage(src string) (*Image, error) {
	var b []byte
	if strings.HasPrefix(src, "data:") {
		var err error
		if _, b, err = parse.DataURI([]byte(src)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImage, err)
		}
	} else if h.opts.FS != nil {
		var err error
		if b, err = fs.ReadFile(h.opts.FS, src); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImage, err)
		}
	} else {
		return nil, fmt.Errorf("%w: %q is not a data URI", ErrImage, src)
	}

	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImage, err)
	}
	size := img.Bounds().Size()
	return &Image{img, size.X, size.Y}, nil
}

// Run runs the script src, named name in error messages. The script is interrupted when ctx is
// done.
func (h *Host) Run(ctx context.Context, name, src string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	defer h.vm.ClearInterrupt()
	go func() {
		select {
		case <-ctx.Done():
			h.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	if _, err := h.vm.RunScript(name, src); err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause := interrupted.Unwrap(); cause != nil {
				return cause
			}
			return context.Canceled
		}
		return err
	}
	return nil
}

// Run draws on c by running the script src.
func Run(ctx context.Context, c canvas2pdf.Context, name, src string, opts *Options) error {
	h, err := New(c, opts)
	if err != nil {
		return err
	}
	return h.Run(ctx, name, src)
}
