package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/tdewolff/argp"
	"github.com/tdewolff/canvas2pdf"
	"github.com/tdewolff/canvas2pdf/renderers/pdf"
	"github.com/tdewolff/canvas2pdf/script"
)

type Render struct {
	Width      float64 `short:"W" default:"595" desc:"Page width in points"`
	Height     float64 `short:"H" default:"842" desc:"Page height in points"`
	Background string  `short:"b" desc:"Page background color"`
	PanX       float64 `desc:"Horizontal translation"`
	PanY       float64 `desc:"Vertical translation"`
	Zoom       float64 `short:"z" default:"1" desc:"Scale factor"`
	Direct     bool    `desc:"Draw directly onto the page instead of rewriting the recorded drawing"`
	Strict     bool    `desc:"Fail on unclosed paths"`
	Lossy      bool    `desc:"Encode images as JPEG"`
	NoCompress bool    `desc:"Do not compress streams"`
	Title      string  `desc:"Document title"`
	Author     string  `desc:"Document author"`
	Verbose    bool    `short:"v" desc:"Log warnings"`
	Debug      bool    `short:"d" desc:"Log every drawn operation"`
	Output     string  `short:"o" desc:"Output file, stdout when empty"`
	Input      string  `index:"0" desc:"Input JavaScript file"`
}

type Log struct {
	Width   float64 `short:"W" default:"595" desc:"Canvas width"`
	Height  float64 `short:"H" default:"842" desc:"Canvas height"`
	Rewrite bool    `short:"r" desc:"Print the rewritten log"`
	Strict  bool    `desc:"Fail on unclosed paths"`
	Verbose bool    `short:"v" desc:"Log warnings"`
	Input   string  `index:"0" desc:"Input JavaScript file"`
}

func main() {
	root := argp.NewCmd(&Render{}, "Canvas drawing to PDF converter")
	root.AddCmd(&Log{}, "log", "Print the operations recorded from a drawing")
	root.Parse()
	root.PrintHelp()
}

func setLogger(verbose, debug bool) {
	if !verbose && !debug {
		return
	}
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	canvas2pdf.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func readScript(filename string) (string, *script.Options, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return "", nil, err
	}
	return string(b), &script.Options{
		FS: os.DirFS(filepath.Dir(filename)),
	}, nil
}

func (cmd *Render) Run() error {
	if cmd.Input == "" {
		return argp.ShowUsage
	}
	setLogger(cmd.Verbose, cmd.Debug)

	src, scriptOpts, err := readScript(cmd.Input)
	if err != nil {
		return err
	}
	scriptOpts.Width, scriptOpts.Height = cmd.Width, cmd.Height

	opts := pdf.DefaultExportOptions
	opts.Width, opts.Height = cmd.Width, cmd.Height
	opts.Background = cmd.Background
	opts.PanX, opts.PanY = cmd.PanX, cmd.PanY
	opts.Zoom = cmd.Zoom
	opts.Direct = cmd.Direct
	opts.Strict = cmd.Strict
	opts.Debug = cmd.Debug
	opts.Compress = !cmd.NoCompress
	if cmd.Lossy {
		opts.ImageEncoding = pdf.Lossy
	}
	opts.Title = cmd.Title
	if opts.Title == "" {
		opts.Title = strings.TrimSuffix(filepath.Base(cmd.Input), filepath.Ext(cmd.Input))
	}
	opts.Author = cmd.Author
	opts.Creator = "canvas2pdf"

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var w io.Writer = os.Stdout
	if cmd.Output != "" {
		f, err := os.Create(cmd.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	name := filepath.Base(cmd.Input)
	err = pdf.Export(ctx, w, func(c canvas2pdf.Context) error {
		return script.Run(ctx, c, name, src, scriptOpts)
	}, &opts)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Input, err)
	}
	if f, ok := w.(*os.File); ok && f != os.Stdout {
		return f.Close()
	}
	return nil
}

func (cmd *Log) Run() error {
	if cmd.Input == "" {
		return argp.ShowUsage
	}
	setLogger(cmd.Verbose, false)

	src, scriptOpts, err := readScript(cmd.Input)
	if err != nil {
		return err
	}
	scriptOpts.Width, scriptOpts.Height = cmd.Width, cmd.Height

	rec := canvas2pdf.NewRecorder()
	if err := script.Run(context.Background(), rec, filepath.Base(cmd.Input), src, scriptOpts); err != nil {
		return err
	}

	log := rec.Log()
	if cmd.Rewrite {
		if log, err = canvas2pdf.Rewrite(log, &canvas2pdf.RewriteOptions{Strict: cmd.Strict}); err != nil {
			return err
		}
	}
	fmt.Print(log)
	return nil
}
