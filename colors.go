package canvas2pdf

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"github.com/tdewolff/parse/v2/strconv"
)

// ErrColor is returned for color strings that cannot be parsed.
var ErrColor = errors.New("invalid color")

// Transparent is the fully transparent color.
var Transparent = color.RGBA{0, 0, 0, 0}

// Black is the default fill and stroke color.
var Black = color.RGBA{0, 0, 0, 255}

// White is the color used to clear.
var White = color.RGBA{255, 255, 255, 255}

type colorArg struct {
	v       float64
	percent bool
}

// ParseColor parses a CSS color: hexadecimal (#rgb, #rgba, #rrggbb, #rrggbbaa), a named color,
// transparent, or one of the rgb(), rgba(), hsl() and hsla() functions with integer or
// percentage components. The returned color is alpha-premultiplied.
func ParseColor(s string) (color.RGBA, error) {
	l := css.NewLexer(parse.NewInputString(strings.TrimSpace(s)))
	tt, data := l.Next()
	switch tt {
	case css.HashToken:
		if col, ok := parseHex(data[1:]); ok && isEnd(l) {
			return col, nil
		}
	case css.IdentToken:
		name := strings.ToLower(string(data))
		if name == "transparent" && isEnd(l) {
			return Transparent, nil
		} else if col, ok := cssColors[name]; ok && isEnd(l) {
			return col, nil
		}
	case css.FunctionToken:
		name := strings.ToLower(string(data[:len(data)-1]))
		args, ok := parseColorArgs(l)
		if !ok {
			break
		}
		switch name {
		case "rgb", "rgba":
			if len(args) != 3 && len(args) != 4 {
				break
			}
			var rgb [3]float64
			for i := 0; i < 3; i++ {
				rgb[i] = args[i].v
				if args[i].percent {
					rgb[i] = rgb[i] * 255.0 / 100.0
				}
			}
			return nrgba(rgb[0], rgb[1], rgb[2], alphaArg(args)), nil
		case "hsl", "hsla":
			if len(args) != 3 && len(args) != 4 || args[0].percent {
				break
			}
			r, g, b := hslToRGB(args[0].v, args[1].v/100.0, args[2].v/100.0)
			return nrgba(r, g, b, alphaArg(args)), nil
		}
	}
	return Black, fmt.Errorf("%w: %q", ErrColor, s)
}

// MustParseColor is like ParseColor but panics on error.
func MustParseColor(s string) color.RGBA {
	col, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return col
}

func isEnd(l *css.Lexer) bool {
	for {
		tt, _ := l.Next()
		if tt == css.ErrorToken {
			return true
		} else if tt != css.WhitespaceToken {
			return false
		}
	}
}

// parseColorArgs reads the arguments of a color function up to and including the closing
// parenthesis, accepting both comma and space (with "/" before the alpha) separated syntax.
func parseColorArgs(l *css.Lexer) ([]colorArg, bool) {
	args := []colorArg{}
	for {
		tt, data := l.Next()
		switch tt {
		case css.NumberToken, css.PercentageToken, css.DimensionToken:
			f, n := strconv.ParseFloat(data)
			if n == 0 {
				return nil, false
			}
			unit := string(data[n:])
			if tt == css.DimensionToken && unit != "deg" {
				return nil, false
			}
			args = append(args, colorArg{f, tt == css.PercentageToken})
		case css.WhitespaceToken, css.CommaToken:
		case css.DelimToken:
			if len(data) != 1 || data[0] != '/' {
				return nil, false
			}
		case css.RightParenthesisToken:
			return args, isEnd(l)
		default:
			return nil, false
		}
	}
}

func alphaArg(args []colorArg) float64 {
	if len(args) < 4 {
		return 1.0
	} else if args[3].percent {
		return args[3].v / 100.0
	}
	return args[3].v
}

func parseHex(b []byte) (color.RGBA, bool) {
	h := make([]uint8, len(b))
	for i, c := range b {
		if '0' <= c && c <= '9' {
			h[i] = c - '0'
		} else if 'a' <= c && c <= 'f' {
			h[i] = 10 + c - 'a'
		} else if 'A' <= c && c <= 'F' {
			h[i] = 10 + c - 'A'
		} else {
			return Black, false
		}
	}
	a := 15
	switch len(h) {
	case 4:
		a = int(h[3])
		fallthrough
	case 3:
		return nrgba(float64(h[0]*17), float64(h[1]*17), float64(h[2]*17), float64(a*17)/255.0), true
	case 8:
		a = int(h[6]*16 + h[7])
		return nrgba(float64(h[0]*16+h[1]), float64(h[2]*16+h[3]), float64(h[4]*16+h[5]), float64(a)/255.0), true
	case 6:
		return color.RGBA{h[0]*16 + h[1], h[2]*16 + h[3], h[4]*16 + h[5], 255}, true
	}
	return Black, false
}

// nrgba converts non-premultiplied components, r, g and b in [0,255] and a in [0,1], clamping
// values that are out of range.
func nrgba(r, g, b, a float64) color.RGBA {
	clamp := func(v, max float64) float64 {
		if math.IsNaN(v) || v < 0.0 {
			return 0.0
		} else if max < v {
			return max
		}
		return v
	}
	a = clamp(a, 1.0)
	return color.RGBA{
		uint8(clamp(r, 255.0)*a + 0.5),
		uint8(clamp(g, 255.0)*a + 0.5),
		uint8(clamp(b, 255.0)*a + 0.5),
		uint8(a*255.0 + 0.5),
	}
}

// hslToRGB converts hue in degrees and saturation and lightness in [0,1] to RGB in [0,255].
func hslToRGB(h, s, l float64) (float64, float64, float64) {
	h = math.Mod(h, 360.0)
	if h < 0.0 {
		h += 360.0
	}
	s = math.Max(0.0, math.Min(1.0, s))
	l = math.Max(0.0, math.Min(1.0, l))

	var m2 float64
	if l < 0.5 {
		m2 = l * (1.0 + s)
	} else {
		m2 = l + s - l*s
	}
	m1 := 2.0*l - m2
	hue := func(h float64) float64 {
		if h < 0.0 {
			h += 360.0
		} else if 360.0 <= h {
			h -= 360.0
		}
		switch {
		case h < 60.0:
			return m1 + (m2-m1)*h/60.0
		case h < 180.0:
			return m2
		case h < 240.0:
			return m1 + (m2-m1)*(240.0-h)/60.0
		}
		return m1
	}
	return 255.0 * hue(h+120.0), 255.0 * hue(h), 255.0 * hue(h-120.0)
}

var cssColors = map[string]color.RGBA{
	"aliceblue":            color.RGBA{240, 248, 255, 255},
	"antiquewhite":         color.RGBA{250, 235, 215, 255},
	"aqua":                 color.RGBA{0, 255, 255, 255},
	"aquamarine":           color.RGBA{127, 255, 212, 255},
	"azure":                color.RGBA{240, 255, 255, 255},
	"beige":                color.RGBA{245, 245, 220, 255},
	"bisque":               color.RGBA{255, 228, 196, 255},
	"black":                color.RGBA{0, 0, 0, 255},
	"blanchedalmond":       color.RGBA{255, 235, 205, 255},
	"blue":                 color.RGBA{0, 0, 255, 255},
	"blueviolet":           color.RGBA{138, 43, 226, 255},
	"brown":                color.RGBA{165, 42, 42, 255},
	"burlywood":            color.RGBA{222, 184, 135, 255},
	"cadetblue":            color.RGBA{95, 158, 160, 255},
	"chartreuse":           color.RGBA{127, 255, 0, 255},
	"chocolate":            color.RGBA{210, 105, 30, 255},
	"coral":                color.RGBA{255, 127, 80, 255},
	"cornflowerblue":       color.RGBA{100, 149, 237, 255},
	"cornsilk":             color.RGBA{255, 248, 220, 255},
	"crimson":              color.RGBA{220, 20, 60, 255},
	"cyan":                 color.RGBA{0, 255, 255, 255},
	"darkblue":             color.RGBA{0, 0, 139, 255},
	"darkcyan":             color.RGBA{0, 139, 139, 255},
	"darkgoldenrod":        color.RGBA{184, 134, 11, 255},
	"darkgray":             color.RGBA{169, 169, 169, 255},
	"darkgreen":            color.RGBA{0, 100, 0, 255},
	"darkgrey":             color.RGBA{169, 169, 169, 255},
	"darkkhaki":            color.RGBA{189, 183, 107, 255},
	"darkmagenta":          color.RGBA{139, 0, 139, 255},
	"darkolivegreen":       color.RGBA{85, 107, 47, 255},
	"darkorange":           color.RGBA{255, 140, 0, 255},
	"darkorchid":           color.RGBA{153, 50, 204, 255},
	"darkred":              color.RGBA{139, 0, 0, 255},
	"darksalmon":           color.RGBA{233, 150, 122, 255},
	"darkseagreen":         color.RGBA{143, 188, 143, 255},
	"darkslateblue":        color.RGBA{72, 61, 139, 255},
	"darkslategray":        color.RGBA{47, 79, 79, 255},
	"darkslategrey":        color.RGBA{47, 79, 79, 255},
	"darkturquoise":        color.RGBA{0, 206, 209, 255},
	"darkviolet":           color.RGBA{148, 0, 211, 255},
	"deeppink":             color.RGBA{255, 20, 147, 255},
	"deepskyblue":          color.RGBA{0, 191, 255, 255},
	"dimgray":              color.RGBA{105, 105, 105, 255},
	"dimgrey":              color.RGBA{105, 105, 105, 255},
	"dodgerblue":           color.RGBA{30, 144, 255, 255},
	"firebrick":            color.RGBA{178, 34, 34, 255},
	"floralwhite":          color.RGBA{255, 250, 240, 255},
	"forestgreen":          color.RGBA{34, 139, 34, 255},
	"fuchsia":              color.RGBA{255, 0, 255, 255},
	"gainsboro":            color.RGBA{220, 220, 220, 255},
	"ghostwhite":           color.RGBA{248, 248, 255, 255},
	"gold":                 color.RGBA{255, 215, 0, 255},
	"goldenrod":            color.RGBA{218, 165, 32, 255},
	"gray":                 color.RGBA{128, 128, 128, 255},
	"green":                color.RGBA{0, 128, 0, 255},
	"greenyellow":          color.RGBA{173, 255, 47, 255},
	"grey":                 color.RGBA{128, 128, 128, 255},
	"honeydew":             color.RGBA{240, 255, 240, 255},
	"hotpink":              color.RGBA{255, 105, 180, 255},
	"indianred":            color.RGBA{205, 92, 92, 255},
	"indigo":               color.RGBA{75, 0, 130, 255},
	"ivory":                color.RGBA{255, 255, 240, 255},
	"khaki":                color.RGBA{240, 230, 140, 255},
	"lavender":             color.RGBA{230, 230, 250, 255},
	"lavenderblush":        color.RGBA{255, 240, 245, 255},
	"lawngreen":            color.RGBA{124, 252, 0, 255},
	"lemonchiffon":         color.RGBA{255, 250, 205, 255},
	"lightblue":            color.RGBA{173, 216, 230, 255},
	"lightcoral":           color.RGBA{240, 128, 128, 255},
	"lightcyan":            color.RGBA{224, 255, 255, 255},
	"lightgoldenrodyellow": color.RGBA{250, 250, 210, 255},
	"lightgray":            color.RGBA{211, 211, 211, 255},
	"lightgreen":           color.RGBA{144, 238, 144, 255},
	"lightgrey":            color.RGBA{211, 211, 211, 255},
	"lightpink":            color.RGBA{255, 182, 193, 255},
	"lightsalmon":          color.RGBA{255, 160, 122, 255},
	"lightseagreen":        color.RGBA{32, 178, 170, 255},
	"lightskyblue":         color.RGBA{135, 206, 250, 255},
	"lightslategray":       color.RGBA{119, 136, 153, 255},
	"lightslategrey":       color.RGBA{119, 136, 153, 255},
	"lightsteelblue":       color.RGBA{176, 196, 222, 255},
	"lightyellow":          color.RGBA{255, 255, 224, 255},
	"lime":                 color.RGBA{0, 255, 0, 255},
	"limegreen":            color.RGBA{50, 205, 50, 255},
	"linen":                color.RGBA{250, 240, 230, 255},
	"magenta":              color.RGBA{255, 0, 255, 255},
	"maroon":               color.RGBA{128, 0, 0, 255},
	"mediumaquamarine":     color.RGBA{102, 205, 170, 255},
	"mediumblue":           color.RGBA{0, 0, 205, 255},
	"mediumorchid":         color.RGBA{186, 85, 211, 255},
	"mediumpurple":         color.RGBA{147, 112, 219, 255},
	"mediumseagreen":       color.RGBA{60, 179, 113, 255},
	"mediumslateblue":      color.RGBA{123, 104, 238, 255},
	"mediumspringgreen":    color.RGBA{0, 250, 154, 255},
	"mediumturquoise":      color.RGBA{72, 209, 204, 255},
	"mediumvioletred":      color.RGBA{199, 21, 133, 255},
	"midnightblue":         color.RGBA{25, 25, 112, 255},
	"mintcream":            color.RGBA{245, 255, 250, 255},
	"mistyrose":            color.RGBA{255, 228, 225, 255},
	"moccasin":             color.RGBA{255, 228, 181, 255},
	"navajowhite":          color.RGBA{255, 222, 173, 255},
	"navy":                 color.RGBA{0, 0, 128, 255},
	"oldlace":              color.RGBA{253, 245, 230, 255},
	"olive":                color.RGBA{128, 128, 0, 255},
	"olivedrab":            color.RGBA{107, 142, 35, 255},
	"orange":               color.RGBA{255, 165, 0, 255},
	"orangered":            color.RGBA{255, 69, 0, 255},
	"orchid":               color.RGBA{218, 112, 214, 255},
	"palegoldenrod":        color.RGBA{238, 232, 170, 255},
	"palegreen":            color.RGBA{152, 251, 152, 255},
	"paleturquoise":        color.RGBA{175, 238, 238, 255},
	"palevioletred":        color.RGBA{219, 112, 147, 255},
	"papayawhip":           color.RGBA{255, 239, 213, 255},
	"peachpuff":            color.RGBA{255, 218, 185, 255},
	"peru":                 color.RGBA{205, 133, 63, 255},
	"pink":                 color.RGBA{255, 192, 203, 255},
	"plum":                 color.RGBA{221, 160, 221, 255},
	"powderblue":           color.RGBA{176, 224, 230, 255},
	"purple":               color.RGBA{128, 0, 128, 255},
	"red":                  color.RGBA{255, 0, 0, 255},
	"rosybrown":            color.RGBA{188, 143, 143, 255},
	"royalblue":            color.RGBA{65, 105, 225, 255},
	"saddlebrown":          color.RGBA{139, 69, 19, 255},
	"salmon":               color.RGBA{250, 128, 114, 255},
	"sandybrown":           color.RGBA{244, 164, 96, 255},
	"seagreen":             color.RGBA{46, 139, 87, 255},
	"seashell":             color.RGBA{255, 245, 238, 255},
	"sienna":               color.RGBA{160, 82, 45, 255},
	"silver":               color.RGBA{192, 192, 192, 255},
	"skyblue":              color.RGBA{135, 206, 235, 255},
	"slateblue":            color.RGBA{106, 90, 205, 255},
	"slategray":            color.RGBA{112, 128, 144, 255},
	"slategrey":            color.RGBA{112, 128, 144, 255},
	"snow":                 color.RGBA{255, 250, 250, 255},
	"springgreen":          color.RGBA{0, 255, 127, 255},
	"steelblue":            color.RGBA{70, 130, 180, 255},
	"tan":                  color.RGBA{210, 180, 140, 255},
	"teal":                 color.RGBA{0, 128, 128, 255},
	"thistle":              color.RGBA{216, 191, 216, 255},
	"tomato":               color.RGBA{255, 99, 71, 255},
	"turquoise":            color.RGBA{64, 224, 208, 255},
	"violet":               color.RGBA{238, 130, 238, 255},
	"wheat":                color.RGBA{245, 222, 179, 255},
	"white":                color.RGBA{255, 255, 255, 255},
	"whitesmoke":           color.RGBA{245, 245, 245, 255},
	"yellow":               color.RGBA{255, 255, 0, 255},
	"yellowgreen":          color.RGBA{154, 205, 50, 255},
}
