package canvas2pdf

import (
	"errors"
	"image/color"
	"testing"

	"github.com/tdewolff/test"
)

func TestParseColor(t *testing.T) {
	var tts = []struct {
		s   string
		col color.RGBA
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}},
		{"#ff0000", color.RGBA{255, 0, 0, 255}},
		{"#f00", color.RGBA{255, 0, 0, 255}},
		{"#0f08", color.RGBA{0, 136, 0, 136}},
		{"#00ff0080", color.RGBA{0, 128, 0, 128}},
		{"red", color.RGBA{255, 0, 0, 255}},
		{"Red", color.RGBA{255, 0, 0, 255}},
		{" aliceblue ", color.RGBA{240, 248, 255, 255}},
		{"transparent", color.RGBA{0, 0, 0, 0}},
		{"rgb(255, 0, 0)", color.RGBA{255, 0, 0, 255}},
		{"rgb(100%,0%,0%)", color.RGBA{255, 0, 0, 255}},
		{"rgba(255, 255, 255, 0.5)", color.RGBA{128, 128, 128, 128}},
		{"rgb(255 255 255 / 50%)", color.RGBA{128, 128, 128, 128}},
		{"rgb(300, -5, 0)", color.RGBA{255, 0, 0, 255}},
		{"hsl(0, 100%, 50%)", color.RGBA{255, 0, 0, 255}},
		{"hsl(120deg 100% 50%)", color.RGBA{0, 255, 0, 255}},
		{"hsla(240, 100%, 50%, 0)", color.RGBA{0, 0, 0, 0}},
	}
	for _, tt := range tts {
		t.Run(tt.s, func(t *testing.T) {
			col, err := ParseColor(tt.s)
			test.Error(t, err)
			test.T(t, col, tt.col)
		})
	}
}

func TestParseColorErrors(t *testing.T) {
	var tts = []string{
		"",
		"#12",
		"#ggg",
		"notacolor",
		"red blue",
		"rgb(1, 2)",
		"rgb(1, 2, 3",
		"rgb(1px, 2, 3)",
		"hsl(10%, 50%, 50%)",
	}
	for _, tt := range tts {
		t.Run(tt, func(t *testing.T) {
			col, err := ParseColor(tt)
			test.That(t, errors.Is(err, ErrColor))
			test.T(t, col, Black)
		})
	}
}
