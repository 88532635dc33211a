package vskia

import (
	"image"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
)

// Painter draws a single shape onto a surface. Implementations must only
// touch dst; the walker relies on painting having no other side effects.
type Painter interface {
	Paint(dst *image.RGBA, s Shape)
}

// PainterFunc adapts a function to the Painter interface.
type PainterFunc func(dst *image.RGBA, s Shape)

// Paint calls f(dst, s).
func (f PainterFunc) Paint(dst *image.RGBA, s Shape) { f(dst, s) }

// DefaultStrokeWidth is the outline width used for rectangles, circles and
// rounded rectangles, which carry no width of their own.
const DefaultStrokeWidth = 1.0

// Draw2DPainter rasterizes shapes with draw2d's anti-aliased scan converter.
type Draw2DPainter struct {
	// StrokeWidth overrides DefaultStrokeWidth when positive.
	StrokeWidth float64
}

// Paint implements Painter.
func (p Draw2DPainter) Paint(dst *image.RGBA, s Shape) {
	if dst.Bounds().Empty() || s == nil {
		return
	}
	gc := draw2dimg.NewGraphicContext(dst)
	gc.SetLineCap(draw2d.ButtCap)
	gc.SetLineJoin(draw2d.MiterJoin)

	width := p.StrokeWidth
	if width <= 0 {
		width = DefaultStrokeWidth
	}

	switch s := s.(type) {
	case Rect:
		x, y := float64(s.X), float64(s.Y)
		draw2dkit.Rectangle(gc, x, y, x+float64(s.Width), y+float64(s.Height))
		finish(gc, s.Color, s.Style, width)
	case Circle:
		draw2dkit.Circle(gc, float64(s.CX), float64(s.CY), float64(s.R))
		finish(gc, s.Color, s.Style, width)
	case RoundRect:
		x, y := float64(s.X), float64(s.Y)
		d := 2 * float64(s.R)
		draw2dkit.RoundedRectangle(gc, x, y, x+float64(s.Width), y+float64(s.Height), d, d)
		finish(gc, s.Color, s.Style, width)
	case Line:
		if s.StrokeWidth == 0 {
			return
		}
		gc.SetLineCap(draw2d.RoundCap)
		gc.MoveTo(float64(s.P1[0]), float64(s.P1[1]))
		gc.LineTo(float64(s.P2[0]), float64(s.P2[1]))
		finish(gc, s.Color, StyleStroke, float64(s.StrokeWidth))
	case Points:
		if len(s.Points) < 2 {
			return
		}
		gc.SetLineJoin(draw2d.RoundJoin)
		gc.MoveTo(float64(s.Points[0][0]), float64(s.Points[0][1]))
		for _, pt := range s.Points[1:] {
			gc.LineTo(float64(pt[0]), float64(pt[1]))
		}
		if s.Style == StyleFill {
			gc.Close()
		} else if s.StrokeWidth == 0 {
			return
		}
		finish(gc, s.Color, s.Style, float64(s.StrokeWidth))
	}
}

// finish fills or strokes the current path.
func finish(gc *draw2dimg.GraphicContext, c Color, style PaintStyle, width float64) {
	if style == StyleFill {
		gc.SetFillColor(c)
		gc.Fill()
		return
	}
	gc.SetStrokeColor(c)
	gc.SetLineWidth(width)
	gc.Stroke()
}
