package vskia

import (
	"image"
	"time"

	"go.uber.org/zap"
)

// RenderCommand is a single paint instruction emitted during traversal.
type RenderCommand struct {
	Node  NodeID
	Shape Shape
	// Order is the 1-based position in paint order.
	Order int
}

const defaultCommandCap = 64

// Renderer walks a Tree and paints it. It keeps its command buffer between
// frames so steady-state rendering does not allocate for commands.
type Renderer struct {
	Painter Painter

	commands []RenderCommand
	log      *zap.Logger
	debug    bool
}

// NewRenderer returns a Renderer using p, or a Draw2DPainter if p is nil.
func NewRenderer(p Painter) *Renderer {
	if p == nil {
		p = Draw2DPainter{}
	}
	return &Renderer{
		Painter:  p,
		commands: make([]RenderCommand, 0, defaultCommandCap),
		log:      zap.NewNop(),
	}
}

// Commands returns the commands emitted by the last Render or Traverse.
// The returned slice MUST NOT be mutated.
func (r *Renderer) Commands() []RenderCommand {
	return r.commands
}

// CanvasBounds returns the surface bounds for t: the width and height of a
// Rect root shape, or an empty rectangle for any other root (or no root).
func CanvasBounds(t *Tree) image.Rectangle {
	root := t.Root()
	if root == nil {
		return image.Rectangle{}
	}
	if r, ok := root.shape.(Rect); ok {
		return image.Rect(0, 0, int(r.Width), int(r.Height))
	}
	return image.Rectangle{}
}

// Traverse emits render commands for t without painting anything. The
// root's own shape only sizes the canvas and is not painted; each of its
// children is walked in order, pre-order beneath it.
func (r *Renderer) Traverse(t *Tree) []RenderCommand {
	r.commands = r.commands[:0]
	root := t.Root()
	if root == nil {
		return r.commands
	}
	order := 0
	emit := func(n *Node) bool {
		if n.shape != nil {
			order++
			r.commands = append(r.commands, RenderCommand{Node: n.id, Shape: n.shape, Order: order})
		}
		return true
	}
	for _, c := range root.children {
		t.Walk(c, emit)
	}
	return r.commands
}

// Render traverses t and paints every command, in order, onto a fresh
// surface sized by CanvasBounds. Later commands paint over earlier ones.
// The surface is always non-nil, possibly empty.
func (r *Renderer) Render(t *Tree) *image.RGBA {
	var t0 time.Time
	var traverseTime time.Duration
	if r.debug {
		t0 = time.Now()
	}

	dst := image.NewRGBA(CanvasBounds(t))
	r.Traverse(t)

	if r.debug {
		traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	r.submit(dst)

	if r.debug {
		r.log.Debug("render",
			zap.Duration("traverse", traverseTime),
			zap.Duration("paint", time.Since(t0)),
			zap.Int("commands", len(r.commands)),
			zap.Int("width", dst.Bounds().Dx()),
			zap.Int("height", dst.Bounds().Dy()),
		)
	}
	return dst
}

// submit paints the command buffer onto dst.
func (r *Renderer) submit(dst *image.RGBA) {
	for i := range r.commands {
		r.Painter.Paint(dst, r.commands[i].Shape)
	}
}

// Rasterize renders t with the draw2d painter.
func Rasterize(t *Tree) *image.RGBA {
	return NewRenderer(nil).Render(t)
}
