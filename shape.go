package vskia

import (
	"fmt"
	"image"
	"strings"
)

// PaintStyle selects whether a shape is outlined or filled.
type PaintStyle uint8

const (
	StyleStroke PaintStyle = iota // outline only (default)
	StyleFill                     // filled interior
)

// ParseStyle maps "stroke" and "fill" to a PaintStyle. Anything else,
// including the empty string, is StyleStroke.
func ParseStyle(s string) PaintStyle {
	if s == "fill" {
		return StyleFill
	}
	return StyleStroke
}

func (s PaintStyle) String() string {
	if s == StyleFill {
		return "fill"
	}
	return "stroke"
}

// ShapeKind identifies a Shape variant.
type ShapeKind uint8

const (
	KindRect      ShapeKind = iota // axis-aligned rectangle
	KindCircle                     // circle by center and radius
	KindRoundRect                  // rectangle with rounded corners
	KindLine                       // single segment
	KindPoints                     // polyline or polygon
)

var kindNames = [...]string{"Rect", "Circle", "RoundRect", "Line", "Points"}

func (k ShapeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// Shape is an immutable drawable primitive. The set of implementations is
// closed: Rect, Circle, RoundRect, Line and Points.
type Shape interface {
	Kind() ShapeKind
	// Bounds returns the shape's geometric extent, ignoring stroke width.
	Bounds() image.Rectangle
	String() string

	isShape()
}

// Point is an unsigned integer coordinate pair.
type Point [2]uint32

// Rect is an axis-aligned rectangle with its top-left corner at X, Y.
type Rect struct {
	X, Y, Width, Height uint32
	Color               Color
	Style               PaintStyle
}

// Circle is a circle centered at CX, CY.
type Circle struct {
	CX, CY, R uint32
	Color     Color
	Style     PaintStyle
}

// RoundRect is a rectangle whose corners are rounded with radius R.
type RoundRect struct {
	X, Y, Width, Height, R uint32
	Color                  Color
	Style                  PaintStyle
}

// Line is a single segment. Lines are always stroked.
type Line struct {
	P1, P2      Point
	StrokeWidth uint32
	Color       Color
}

// Points is a sequence of points, stroked as an open polyline or filled as
// a polygon. A Node keeps its own copy of the slice.
type Points struct {
	Points      []Point
	StrokeWidth uint32
	Color       Color
	Style       PaintStyle
}

func (Rect) Kind() ShapeKind      { return KindRect }
func (Circle) Kind() ShapeKind    { return KindCircle }
func (RoundRect) Kind() ShapeKind { return KindRoundRect }
func (Line) Kind() ShapeKind      { return KindLine }
func (Points) Kind() ShapeKind    { return KindPoints }

func (Rect) isShape()      {}
func (Circle) isShape()    {}
func (RoundRect) isShape() {}
func (Line) isShape()      {}
func (Points) isShape()    {}

func (r Rect) Bounds() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Width), int(r.Y)+int(r.Height))
}

func (c Circle) Bounds() image.Rectangle {
	cx, cy, r := int(c.CX), int(c.CY), int(c.R)
	return image.Rect(cx-r, cy-r, cx+r, cy+r)
}

func (r RoundRect) Bounds() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Width), int(r.Y)+int(r.Height))
}

func (l Line) Bounds() image.Rectangle {
	return image.Rect(int(l.P1[0]), int(l.P1[1]), int(l.P2[0]), int(l.P2[1]))
}

func (p Points) Bounds() image.Rectangle {
	if len(p.Points) == 0 {
		return image.Rectangle{}
	}
	b := image.Rect(int(p.Points[0][0]), int(p.Points[0][1]), int(p.Points[0][0]), int(p.Points[0][1]))
	for _, pt := range p.Points[1:] {
		x, y := int(pt[0]), int(pt[1])
		b.Min.X = min(b.Min.X, x)
		b.Min.Y = min(b.Min.Y, y)
		b.Max.X = max(b.Max.X, x)
		b.Max.Y = max(b.Max.Y, y)
	}
	return b
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect{x=%d y=%d w=%d h=%d %s %s}", r.X, r.Y, r.Width, r.Height, r.Color, r.Style)
}

func (c Circle) String() string {
	return fmt.Sprintf("Circle{cx=%d cy=%d r=%d %s %s}", c.CX, c.CY, c.R, c.Color, c.Style)
}

func (r RoundRect) String() string {
	return fmt.Sprintf("RoundRect{x=%d y=%d w=%d h=%d r=%d %s %s}", r.X, r.Y, r.Width, r.Height, r.R, r.Color, r.Style)
}

func (l Line) String() string {
	return fmt.Sprintf("Line{%d,%d -> %d,%d width=%d %s}", l.P1[0], l.P1[1], l.P2[0], l.P2[1], l.StrokeWidth, l.Color)
}

func (p Points) String() string {
	var b strings.Builder
	for i, pt := range p.Points {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d,%d", pt[0], pt[1])
	}
	return fmt.Sprintf("Points{[%s] width=%d %s %s}", b.String(), p.StrokeWidth, p.Color, p.Style)
}
