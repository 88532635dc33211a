package vskia

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/image/colornames"
)

// ErrUnresolvableColor is returned when color text does not parse, or parses
// to something other than a concrete RGBA value (such as currentcolor).
var ErrUnresolvableColor = errors.New("vskia: unresolvable color")

// Color is a non-premultiplied 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// RGBA implements image/color.Color. Values are alpha-premultiplied.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// String formats the color as #rrggbbaa, which ResolveColor accepts back.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ResolveColor parses a CSS color value. Accepted forms are rgb()/rgba(),
// hsl()/hsla(), hex notation, named colors and transparent. Any other input
// yields an error wrapping ErrUnresolvableColor.
func ResolveColor(text string) (Color, error) {
	toks, err := lexColor(text)
	if err != nil {
		return Color{}, colorError(text, err.Error())
	}
	if len(toks) == 0 {
		return Color{}, colorError(text, "empty")
	}

	var c Color
	rest := toks[1:]
	switch first := toks[0]; first.tt {
	case css.IdentToken:
		c, err = namedColor(first.data)
	case css.HashToken:
		c, err = hexColor(strings.TrimPrefix(first.data, "#"))
	case css.FunctionToken:
		var args []colorToken
		args, rest, err = functionArgs(rest)
		if err != nil {
			break
		}
		switch name := strings.ToLower(strings.TrimSuffix(first.data, "(")); name {
		case "rgb", "rgba":
			c, err = rgbFunction(args)
		case "hsl", "hsla":
			c, err = hslFunction(args)
		default:
			err = fmt.Errorf("unsupported function %s()", name)
		}
	default:
		err = fmt.Errorf("unexpected %s", first.data)
	}
	if err != nil {
		return Color{}, colorError(text, err.Error())
	}
	if len(rest) > 0 {
		return Color{}, colorError(text, "trailing "+rest[0].data)
	}
	return c, nil
}

func colorError(text, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrUnresolvableColor, text, reason)
}

type colorToken struct {
	tt   css.TokenType
	data string
}

// lexColor tokenizes text with the CSS lexer, dropping whitespace and
// comments.
func lexColor(text string) ([]colorToken, error) {
	l := css.NewLexer(parse.NewInputString(text))
	var toks []colorToken
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != io.EOF {
				return nil, err
			}
			return toks, nil
		case css.WhitespaceToken, css.CommentToken:
			continue
		}
		toks = append(toks, colorToken{tt: tt, data: string(data)})
	}
}

// functionArgs splits the tokens following a function token into its
// arguments and whatever comes after the closing parenthesis.
func functionArgs(toks []colorToken) (args, rest []colorToken, err error) {
	for i, t := range toks {
		if t.tt == css.RightParenthesisToken {
			return toks[:i], toks[i+1:], nil
		}
	}
	return nil, nil, errors.New("unterminated function")
}

// splitChannels accepts both the legacy comma form (a, b, c[, alpha]) and
// the space form (a b c[ / alpha]).
func splitChannels(args []colorToken) (channels []colorToken, alpha *colorToken, err error) {
	commas := 0
	for _, a := range args {
		if a.tt == css.CommaToken {
			commas++
		}
	}
	if commas > 0 {
		if len(args) != 5 && len(args) != 7 {
			return nil, nil, errors.New("wrong number of arguments")
		}
		for i, a := range args {
			if (i%2 == 1) != (a.tt == css.CommaToken) {
				return nil, nil, errors.New("misplaced comma")
			}
		}
		channels = []colorToken{args[0], args[2], args[4]}
		if len(args) == 7 {
			alpha = &args[6]
		}
		return channels, alpha, nil
	}
	switch {
	case len(args) == 3:
		return args, nil, nil
	case len(args) == 5 && args[3].tt == css.DelimToken && args[3].data == "/":
		return args[:3], &args[4], nil
	}
	return nil, nil, errors.New("wrong number of arguments")
}

func rgbFunction(args []colorToken) (Color, error) {
	channels, alphaTok, err := splitChannels(args)
	if err != nil {
		return Color{}, err
	}
	var rgb [3]uint8
	kind := channels[0].tt
	for i, ch := range channels {
		if ch.tt != kind {
			return Color{}, errors.New("mixed numbers and percentages")
		}
		switch ch.tt {
		case css.NumberToken:
			v, err := strconv.ParseFloat(ch.data, 64)
			if err != nil {
				return Color{}, err
			}
			rgb[i] = clampByte(v)
		case css.PercentageToken:
			v, err := parsePercentage(ch.data)
			if err != nil {
				return Color{}, err
			}
			rgb[i] = clampUnit(v)
		default:
			return Color{}, fmt.Errorf("unexpected %s", ch.data)
		}
	}
	a, err := parseAlpha(alphaTok)
	if err != nil {
		return Color{}, err
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2], A: a}, nil
}

func hslFunction(args []colorToken) (Color, error) {
	channels, alphaTok, err := splitChannels(args)
	if err != nil {
		return Color{}, err
	}
	hue, err := parseHue(channels[0])
	if err != nil {
		return Color{}, err
	}
	var sl [2]float64
	for i, ch := range channels[1:] {
		if ch.tt != css.PercentageToken {
			return Color{}, fmt.Errorf("expected percentage, got %s", ch.data)
		}
		if sl[i], err = parsePercentage(ch.data); err != nil {
			return Color{}, err
		}
		sl[i] = math.Max(0, math.Min(1, sl[i]))
	}
	a, err := parseAlpha(alphaTok)
	if err != nil {
		return Color{}, err
	}
	r, g, b := colorful.Hsl(hue, sl[0], sl[1]).Clamped().RGB255()
	return Color{R: r, G: g, B: b, A: a}, nil
}

// parseHue returns the hue in degrees normalized to [0, 360).
func parseHue(t colorToken) (float64, error) {
	var deg float64
	switch t.tt {
	case css.NumberToken:
		v, err := strconv.ParseFloat(t.data, 64)
		if err != nil {
			return 0, err
		}
		deg = v
	case css.DimensionToken:
		num, unit := splitDimension(t.data)
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		switch strings.ToLower(unit) {
		case "deg":
			deg = v
		case "rad":
			deg = v * 180 / math.Pi
		case "grad":
			deg = v * 0.9
		case "turn":
			deg = v * 360
		default:
			return 0, fmt.Errorf("unknown angle unit %q", unit)
		}
	default:
		return 0, fmt.Errorf("expected hue, got %s", t.data)
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg, nil
}

// parseAlpha reads an optional alpha value; a missing alpha is opaque.
func parseAlpha(t *colorToken) (uint8, error) {
	if t == nil {
		return 255, nil
	}
	switch t.tt {
	case css.NumberToken:
		v, err := strconv.ParseFloat(t.data, 64)
		if err != nil {
			return 0, err
		}
		return clampUnit(v), nil
	case css.PercentageToken:
		v, err := parsePercentage(t.data)
		if err != nil {
			return 0, err
		}
		return clampUnit(v), nil
	}
	return 0, fmt.Errorf("unexpected alpha %s", t.data)
}

func namedColor(name string) (Color, error) {
	switch low := strings.ToLower(name); low {
	case "transparent":
		return Color{}, nil
	case "currentcolor":
		return Color{}, errors.New("currentcolor is not an RGBA value")
	default:
		nc, ok := colornames.Map[low]
		if !ok {
			return Color{}, fmt.Errorf("unknown color name %q", name)
		}
		return Color{R: nc.R, G: nc.G, B: nc.B, A: nc.A}, nil
	}
}

func hexColor(x string) (Color, error) {
	digit := func(i, n int) (uint8, error) {
		v, err := strconv.ParseUint(x[i:i+n], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("bad hex digits in #%s", x)
		}
		if n == 1 {
			v |= v << 4
		}
		return uint8(v), nil
	}
	var n int
	switch len(x) {
	case 3, 4:
		n = 1
	case 6, 8:
		n = 2
	default:
		return Color{}, fmt.Errorf("bad hex length in #%s", x)
	}
	var ch [4]uint8
	ch[3] = 255
	for i := 0; i*n < len(x); i++ {
		v, err := digit(i*n, n)
		if err != nil {
			return Color{}, err
		}
		ch[i] = v
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

func parsePercentage(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	return v / 100, nil
}

// splitDimension separates "120deg" into "120" and "deg".
func splitDimension(s string) (num, unit string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c == '.', c == '+', c == '-':
			continue
		case (c == 'e' || c == 'E') && i+1 < len(s) && (s[i+1] >= '0' && s[i+1] <= '9' || s[i+1] == '+' || s[i+1] == '-'):
			continue
		}
		return s[:i], s[i:]
	}
	return s, ""
}

// clampByte rounds a 0..255 channel value.
func clampByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

// clampUnit maps a 0..1 value onto 0..255.
func clampUnit(v float64) uint8 {
	return clampByte(v * 255)
}
