package canvas2pdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"github.com/tdewolff/parse/v2/strconv"
	"golang.org/x/text/encoding/charmap"
)

// ErrFont is returned for font shorthands that cannot be parsed.
var ErrFont = errors.New("invalid font")

// DefaultFont is the font of a new drawing surface.
const DefaultFont = "10px Helvetica"

// FontStyle is the style of a font face.
type FontStyle int

// see FontStyle
const (
	FontRegular FontStyle = 0
	FontBold    FontStyle = 1 << iota
	FontItalic
)

// FontFace is a parsed CSS font shorthand mapped onto one of the standard PDF fonts.
type FontFace struct {
	Family string // helvetica, times, courier, symbol or dingbats
	Style  FontStyle
	Size   float64
}

// ParseFont parses a CSS font shorthand such as "italic bold 12px/1.5 'Times New Roman', serif".
// The size is required. The first family that maps to a standard PDF font is chosen, and
// Helvetica is used when none does.
func ParseFont(s string) (FontFace, error) {
	face := FontFace{Family: "helvetica"}
	l := css.NewLexer(parse.NewInputString(s))
	hasSize := false
	for !hasSize {
		tt, data := l.Next()
		switch tt {
		case css.WhitespaceToken:
		case css.IdentToken:
			switch ident := strings.ToLower(string(data)); ident {
			case "normal", "small-caps", "lighter":
			case "italic", "oblique":
				face.Style |= FontItalic
			case "bold", "bolder":
				face.Style |= FontBold
			default:
				size, ok := fontSizeKeywords[ident]
				if !ok {
					return FontFace{}, fmt.Errorf("%w: unexpected %q in %q", ErrFont, data, s)
				}
				face.Size = size
				hasSize = true
			}
		case css.NumberToken:
			weight, n := strconv.ParseInt(data)
			if n != len(data) || weight < 100 || 900 < weight {
				return FontFace{}, fmt.Errorf("%w: bad weight in %q", ErrFont, s)
			} else if 600 <= weight {
				face.Style |= FontBold
			}
		case css.DimensionToken, css.PercentageToken:
			size, ok := parseFontSize(data)
			if !ok {
				return FontFace{}, fmt.Errorf("%w: bad size in %q", ErrFont, s)
			}
			face.Size = size
			hasSize = true
		default:
			return FontFace{}, fmt.Errorf("%w: missing size in %q", ErrFont, s)
		}
	}

	// optional line height, then the family list
	families := []string{}
	family := []string{}
	lineHeight := false
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if 0 < len(family) {
				families = append(families, strings.Join(family, " "))
			}
			for _, name := range families {
				if std, ok := fontFamilies[strings.ToLower(name)]; ok {
					face.Family = std
					break
				}
			}
			return face, nil
		case css.WhitespaceToken:
		case css.DelimToken:
			if len(families) != 0 || len(family) != 0 || lineHeight || string(data) != "/" {
				return FontFace{}, fmt.Errorf("%w: unexpected %q in %q", ErrFont, data, s)
			}
			lineHeight = true
			for tt == css.DelimToken || tt == css.WhitespaceToken {
				tt, _ = l.Next()
			}
			if tt != css.NumberToken && tt != css.DimensionToken && tt != css.PercentageToken && tt != css.IdentToken {
				return FontFace{}, fmt.Errorf("%w: bad line height in %q", ErrFont, s)
			}
		case css.IdentToken:
			family = append(family, string(data))
		case css.StringToken:
			family = append(family, string(data[1:len(data)-1]))
		case css.CommaToken:
			if 0 < len(family) {
				families = append(families, strings.Join(family, " "))
				family = family[:0]
			}
		default:
			return FontFace{}, fmt.Errorf("%w: unexpected %q in %q", ErrFont, data, s)
		}
	}
}

func parseFontSize(data []byte) (float64, bool) {
	size, n := strconv.ParseFloat(data)
	if n == 0 || size < 0.0 {
		return 0.0, false
	}
	unit, ok := fontSizeUnits[strings.ToLower(string(data[n:]))]
	if !ok {
		return 0.0, false
	}
	return size * unit, true
}

// canvas units are CSS pixels
var fontSizeUnits = map[string]float64{
	"px":  1.0,
	"pt":  96.0 / 72.0,
	"pc":  16.0,
	"in":  96.0,
	"cm":  96.0 / 2.54,
	"mm":  96.0 / 25.4,
	"em":  10.0,
	"rem": 10.0,
	"ex":  5.0,
	"%":   0.1,
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9.0,
	"x-small":  10.0,
	"small":    13.0,
	"medium":   16.0,
	"large":    18.0,
	"x-large":  24.0,
	"xx-large": 32.0,
	"smaller":  10.0 / 1.2,
	"larger":   10.0 * 1.2,
}

var fontFamilies = map[string]string{
	"helvetica":       "helvetica",
	"arial":           "helvetica",
	"sans-serif":      "helvetica",
	"system-ui":       "helvetica",
	"times":           "times",
	"times new roman": "times",
	"times-roman":     "times",
	"serif":           "times",
	"courier":         "courier",
	"courier new":     "courier",
	"monospace":       "courier",
	"symbol":          "symbol",
	"zapfdingbats":    "dingbats",
	"dingbats":        "dingbats",
}

// MustParseFont is like ParseFont but panics on error.
func MustParseFont(s string) FontFace {
	face, err := ParseFont(s)
	if err != nil {
		panic(err)
	}
	return face
}

// StandardName returns the name of the standard PDF Type1 font.
func (face FontFace) StandardName() string {
	switch face.Family {
	case "courier":
		switch face.Style {
		case FontBold:
			return "Courier-Bold"
		case FontItalic:
			return "Courier-Oblique"
		case FontBold | FontItalic:
			return "Courier-BoldOblique"
		}
		return "Courier"
	case "times":
		switch face.Style {
		case FontBold:
			return "Times-Bold"
		case FontItalic:
			return "Times-Italic"
		case FontBold | FontItalic:
			return "Times-BoldItalic"
		}
		return "Times-Roman"
	case "symbol":
		return "Symbol"
	case "dingbats":
		return "ZapfDingbats"
	}
	switch face.Style {
	case FontBold:
		return "Helvetica-Bold"
	case FontItalic:
		return "Helvetica-Oblique"
	case FontBold | FontItalic:
		return "Helvetica-BoldOblique"
	}
	return "Helvetica"
}

func (face FontFace) metrics() *fontMetrics {
	switch face.Family {
	case "courier":
		return &courierMetrics
	case "times":
		if face.Style&FontBold != 0 {
			return &timesBoldMetrics
		} else if face.Style&FontItalic != 0 {
			return &timesItalicMetrics
		}
		return &timesMetrics
	}
	if face.Style&FontBold != 0 {
		return &helveticaBoldMetrics
	}
	return &helveticaMetrics
}

// Ascent returns the distance from the baseline to the top of the line box.
func (face FontFace) Ascent() float64 {
	return face.Size * float64(face.metrics().ascender) / 1000.0
}

// LineHeight returns the height of the line box, excluding the line gap.
func (face FontFace) LineHeight() float64 {
	m := face.metrics()
	return face.Size * float64(m.ascender-m.descender) / 1000.0
}

// TextWidth returns the advance width of the text, as written in WinAnsi encoding.
func (face FontFace) TextWidth(text string) float64 {
	m := face.metrics()
	w := 0
	for _, r := range text {
		w += m.width(r)
	}
	return face.Size * float64(w) / 1000.0
}

func (face FontFace) String() string {
	return fmt.Sprintf("%gpx %v", face.Size, face.StandardName())
}

type fontMetrics struct {
	ascender, descender int
	ascii               [95]int // widths of codes 32 to 126
	fallback            int
}

func (m *fontMetrics) width(r rune) int {
	c, ok := charmap.Windows1252.EncodeRune(r)
	if !ok {
		return m.fallback
	} else if 32 <= c && c <= 126 {
		return m.ascii[c-32]
	}
	return m.fallback
}
