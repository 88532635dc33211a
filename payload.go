package vskia

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Shape payload tags, as sent by the host.
const (
	TagRect      = "R"
	TagCircle    = "C"
	TagRoundRect = "RR"
	TagLine      = "L"
	TagPoints    = "P"
)

// PayloadError reports a structurally malformed shape payload. It is a hard
// failure for the call that carried it.
type PayloadError struct {
	Tag    string // variant tag, empty if the union itself is malformed
	Reason string
	Err    error // underlying decode error, if any
}

func (e *PayloadError) Error() string {
	msg := "vskia: malformed shape payload"
	if e.Tag != "" {
		msg += " (" + e.Tag + ")"
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PayloadError) Unwrap() error { return e.Err }

// IsMalformedPayload reports whether err carries a *PayloadError.
func IsMalformedPayload(err error) bool {
	var pe *PayloadError
	return errors.As(err, &pe)
}

type rectAttr struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
	X      uint32 `json:"x"`
	Y      uint32 `json:"y"`
	Color  string `json:"color"`
	Style  string `json:"style"`
}

type circleAttr struct {
	CX    uint32 `json:"cx"`
	CY    uint32 `json:"cy"`
	R     uint32 `json:"r"`
	Color string `json:"color"`
	Style string `json:"style"`
}

type roundRectAttr struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
	R      uint32 `json:"r"`
	X      uint32 `json:"x"`
	Y      uint32 `json:"y"`
	Color  string `json:"color"`
	Style  string `json:"style"`
}

type lineAttr struct {
	P1          Point  `json:"p1"`
	P2          Point  `json:"p2"`
	Color       string `json:"color"`
	StrokeWidth uint32 `json:"stroke_width"`
}

type pointsAttr struct {
	Points      []Point `json:"points"`
	Color       string  `json:"color"`
	StrokeWidth uint32  `json:"stroke_width"`
	Style       string  `json:"style"`
}

// required lists the fields each variant must carry. Style is optional and
// defaults to stroke.
var required = map[string][]string{
	TagRect:      {"width", "height", "x", "y", "color"},
	TagCircle:    {"cx", "cy", "r", "color"},
	TagRoundRect: {"width", "height", "r", "x", "y", "color"},
	TagLine:      {"p1", "p2", "color", "stroke_width"},
	TagPoints:    {"points", "color", "stroke_width"},
}

// DecodeShape converts a host shape payload into a Shape. The payload is a
// JSON object holding exactly one variant, optionally wrapped in an "attr"
// envelope:
//
//	{"attr": {"C": {"cx": 50, "cy": 50, "r": 10, "color": "rgba(255,0,0,255)", "style": "fill"}}}
//
// Structural problems yield a *PayloadError. A color that cannot be resolved
// yields an error wrapping ErrUnresolvableColor; callers applying updates are
// expected to ignore that case rather than report it.
func DecodeShape(payload []byte) (Shape, error) {
	tag, body, err := decodeUnion(payload)
	if err != nil {
		return nil, err
	}
	fields, err := decodeFields(tag, body)
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagRect:
		var a rectAttr
		if err := unmarshalAttr(tag, fields, &a); err != nil {
			return nil, err
		}
		c, err := resolveAttrColor(tag, a.Color)
		if err != nil {
			return nil, err
		}
		return Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height, Color: c, Style: ParseStyle(a.Style)}, nil
	case TagCircle:
		var a circleAttr
		if err := unmarshalAttr(tag, fields, &a); err != nil {
			return nil, err
		}
		c, err := resolveAttrColor(tag, a.Color)
		if err != nil {
			return nil, err
		}
		return Circle{CX: a.CX, CY: a.CY, R: a.R, Color: c, Style: ParseStyle(a.Style)}, nil
	case TagRoundRect:
		var a roundRectAttr
		if err := unmarshalAttr(tag, fields, &a); err != nil {
			return nil, err
		}
		c, err := resolveAttrColor(tag, a.Color)
		if err != nil {
			return nil, err
		}
		return RoundRect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height, R: a.R, Color: c, Style: ParseStyle(a.Style)}, nil
	case TagLine:
		var a lineAttr
		if err := unmarshalAttr(tag, fields, &a); err != nil {
			return nil, err
		}
		c, err := resolveAttrColor(tag, a.Color)
		if err != nil {
			return nil, err
		}
		return Line{P1: a.P1, P2: a.P2, StrokeWidth: a.StrokeWidth, Color: c}, nil
	case TagPoints:
		var a pointsAttr
		if err := unmarshalAttr(tag, fields, &a); err != nil {
			return nil, err
		}
		c, err := resolveAttrColor(tag, a.Color)
		if err != nil {
			return nil, err
		}
		return Points{Points: a.Points, StrokeWidth: a.StrokeWidth, Color: c, Style: ParseStyle(a.Style)}, nil
	}
	// decodeUnion only lets known tags through.
	return nil, &PayloadError{Tag: tag, Reason: "unknown variant"}
}

// decodeUnion unwraps the optional envelope and returns the single variant
// tag with its body.
func decodeUnion(payload []byte) (string, json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return "", nil, &PayloadError{Reason: "not a JSON object", Err: err}
	}
	if obj == nil {
		return "", nil, &PayloadError{Reason: "null payload"}
	}
	if attr, ok := obj["attr"]; ok {
		obj = nil
		if err := json.Unmarshal(attr, &obj); err != nil || obj == nil {
			return "", nil, &PayloadError{Reason: "attr is not a JSON object", Err: err}
		}
	}
	if len(obj) != 1 {
		return "", nil, &PayloadError{Reason: fmt.Sprintf("expected exactly one variant, got %d", len(obj))}
	}
	for tag, body := range obj {
		if _, ok := required[tag]; !ok {
			return "", nil, &PayloadError{Tag: tag, Reason: "unknown variant"}
		}
		return tag, body, nil
	}
	panic("unreachable")
}

// decodeFields checks that every required field of the variant is present.
// "strokeWidth" is accepted in place of "stroke_width".
func decodeFields(tag string, body json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, &PayloadError{Tag: tag, Reason: "variant body is not a JSON object", Err: err}
	}
	if v, ok := fields["strokeWidth"]; ok {
		if _, dup := fields["stroke_width"]; !dup {
			fields["stroke_width"] = v
		}
		delete(fields, "strokeWidth")
	}
	var missing []string
	for _, f := range required[tag] {
		if v, ok := fields[f]; !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &PayloadError{Tag: tag, Reason: fmt.Sprintf("missing field(s) %v", missing)}
	}
	return fields, nil
}

func unmarshalAttr(tag string, fields map[string]json.RawMessage, dst any) error {
	buf, err := json.Marshal(fields)
	if err != nil {
		return &PayloadError{Tag: tag, Reason: "re-encode fields", Err: err}
	}
	if err := json.Unmarshal(buf, dst); err != nil {
		return &PayloadError{Tag: tag, Reason: "invalid field", Err: err}
	}
	return nil
}

func resolveAttrColor(tag, text string) (Color, error) {
	c, err := ResolveColor(text)
	if err != nil {
		return Color{}, fmt.Errorf("%s color: %w", tag, err)
	}
	return c, nil
}

// UnmarshalJSON requires exactly two unsigned coordinates.
func (p *Point) UnmarshalJSON(b []byte) error {
	var v []uint32
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if len(v) != 2 {
		return fmt.Errorf("point must have 2 coordinates, got %d", len(v))
	}
	p[0], p[1] = v[0], v[1]
	return nil
}
