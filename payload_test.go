package vskia

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeShapeVariants(t *testing.T) {
	red := Color{255, 0, 0, 255}
	tests := []struct {
		name    string
		payload string
		want    Shape
	}{
		{
			name:    "rect",
			payload: `{"R": {"width": 100, "height": 50, "x": 1, "y": 2, "color": "rgba(255,0,0,255)", "style": "fill"}}`,
			want:    Rect{X: 1, Y: 2, Width: 100, Height: 50, Color: red, Style: StyleFill},
		},
		{
			name:    "circle in envelope",
			payload: `{"attr": {"C": {"cx": 50, "cy": 50, "r": 10, "color": "rgba(255,0,0,255)", "style": "fill"}}}`,
			want:    Circle{CX: 50, CY: 50, R: 10, Color: red, Style: StyleFill},
		},
		{
			name:    "round rect stroke",
			payload: `{"RR": {"width": 20, "height": 10, "r": 3, "x": 0, "y": 0, "color": "red", "style": "stroke"}}`,
			want:    RoundRect{Width: 20, Height: 10, R: 3, Color: red, Style: StyleStroke},
		},
		{
			name:    "line",
			payload: `{"L": {"p1": [0, 0], "p2": [10, 20], "color": "#ff0000", "stroke_width": 2}}`,
			want:    Line{P1: Point{0, 0}, P2: Point{10, 20}, StrokeWidth: 2, Color: red},
		},
		{
			name:    "line camel case width",
			payload: `{"L": {"p1": [1, 1], "p2": [2, 2], "color": "red", "strokeWidth": 4}}`,
			want:    Line{P1: Point{1, 1}, P2: Point{2, 2}, StrokeWidth: 4, Color: red},
		},
		{
			name:    "points",
			payload: `{"P": {"points": [[0, 0], [5, 5], [10, 0]], "color": "red", "stroke_width": 1, "style": "fill"}}`,
			want:    Points{Points: []Point{{0, 0}, {5, 5}, {10, 0}}, StrokeWidth: 1, Color: red, Style: StyleFill},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeShape([]byte(tt.payload))
			if err != nil {
				t.Fatalf("DecodeShape: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeShapeStyleDefaults(t *testing.T) {
	for _, style := range []string{`"bogus"`, `""`, `"FILL"`, `null`} {
		payload := `{"C": {"cx": 1, "cy": 1, "r": 1, "color": "red", "style": ` + style + `}}`
		s, err := DecodeShape([]byte(payload))
		if err != nil {
			t.Fatalf("style %s: %v", style, err)
		}
		if got := s.(Circle).Style; got != StyleStroke {
			t.Errorf("style %s decoded as %v, want stroke", style, got)
		}
	}
	s, err := DecodeShape([]byte(`{"R": {"width": 1, "height": 1, "x": 0, "y": 0, "color": "red"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.(Rect).Style != StyleStroke {
		t.Error("missing style should default to stroke")
	}
}

func TestDecodeShapeMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{`},
		{"array", `[1, 2]`},
		{"null", `null`},
		{"unknown tag", `{"X": {"color": "red"}}`},
		{"unknown tag in envelope", `{"attr": {"Triangle": {}}}`},
		{"two variants", `{"R": {}, "C": {}}`},
		{"empty object", `{}`},
		{"attr not object", `{"attr": 5}`},
		{"body not object", `{"C": [1, 2, 3]}`},
		{"missing field", `{"C": {"cx": 1, "cy": 1, "color": "red"}}`},
		{"null field", `{"C": {"cx": 1, "cy": 1, "r": null, "color": "red"}}`},
		{"missing color", `{"R": {"width": 1, "height": 1, "x": 0, "y": 0}}`},
		{"negative number", `{"C": {"cx": -1, "cy": 1, "r": 1, "color": "red"}}`},
		{"float number", `{"C": {"cx": 1.5, "cy": 1, "r": 1, "color": "red"}}`},
		{"string number", `{"C": {"cx": "1", "cy": 1, "r": 1, "color": "red"}}`},
		{"color not string", `{"C": {"cx": 1, "cy": 1, "r": 1, "color": 5}}`},
		{"short point", `{"L": {"p1": [1], "p2": [2, 2], "color": "red", "stroke_width": 1}}`},
		{"long point", `{"P": {"points": [[1, 2, 3]], "color": "red", "stroke_width": 1}}`},
		{"line missing width", `{"L": {"p1": [1, 1], "p2": [2, 2], "color": "red"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeShape([]byte(tt.payload))
			if err == nil {
				t.Fatalf("DecodeShape = %v, want error", s)
			}
			if !IsMalformedPayload(err) {
				t.Errorf("error %v is not a *PayloadError", err)
			}
			if errors.Is(err, ErrUnresolvableColor) {
				t.Errorf("structural error %v must not wrap ErrUnresolvableColor", err)
			}
		})
	}
}

func TestDecodeShapeUnresolvableColor(t *testing.T) {
	for _, c := range []string{"not-a-color", "currentcolor", ""} {
		payload := `{"C": {"cx": 1, "cy": 1, "r": 1, "color": "` + c + `"}}`
		_, err := DecodeShape([]byte(payload))
		if !errors.Is(err, ErrUnresolvableColor) {
			t.Errorf("color %q: err = %v, want ErrUnresolvableColor", c, err)
		}
		if IsMalformedPayload(err) {
			t.Errorf("color %q: color failure reported as malformed payload", c)
		}
	}
}

func TestPayloadErrorMessage(t *testing.T) {
	_, err := DecodeShape([]byte(`{"X": {}}`))
	var pe *PayloadError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PayloadError", err)
	}
	if pe.Tag != "X" {
		t.Errorf("Tag = %q, want X", pe.Tag)
	}
	if want := "vskia: malformed shape payload (X): unknown variant"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
