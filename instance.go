package vskia

import (
	"errors"
	"fmt"
	"image"
	"io"

	"go.uber.org/zap"
)

// Instance is the host-facing scene: a Tree whose root id is chosen by the
// host, plus the commands a UI reconciler issues against it. All commands
// address nodes by id.
//
// Instance is not safe for concurrent use; the host serializes calls.
type Instance struct {
	tree     *Tree
	renderer *Renderer
	log      *zap.Logger
	debug    bool
}

// NewInstance creates an instance whose root node has the given id.
func NewInstance(rootID NodeID) *Instance {
	t := NewTree()
	root, _ := t.NewNodeWithID(rootID) // fresh tree, cannot collide
	_ = t.SetRoot(root.ID())
	return &Instance{
		tree:     t,
		renderer: NewRenderer(nil),
		log:      zap.NewNop(),
	}
}

// Tree returns the underlying tree.
func (in *Instance) Tree() *Tree {
	return in.tree
}

// Root returns the root node.
func (in *Instance) Root() *Node {
	return in.tree.Root()
}

// SetLogger sets the logger used for ignored commands and render stats.
// A nil logger disables logging.
func (in *Instance) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	in.log = l
	in.renderer.log = l
}

// SetDebugMode enables or disables debug logging of ignored commands and
// per-render timing.
func (in *Instance) SetDebugMode(enabled bool) {
	in.debug = enabled
	in.renderer.debug = enabled
}

// SetPainter replaces the paint primitive used by Render.
func (in *Instance) SetPainter(p Painter) {
	if p == nil {
		p = Draw2DPainter{}
	}
	in.renderer.Painter = p
}

// find looks id up anywhere under the root.
func (in *Instance) find(id NodeID) *Node {
	root := in.tree.Root()
	if root == nil {
		return nil
	}
	return in.tree.FindByID(root.ID(), id)
}

// AppendChild creates node childID and appends it to containerID. A missing
// container is ignored. A childID that is already live is an error.
func (in *Instance) AppendChild(childID, containerID NodeID) error {
	container := in.find(containerID)
	if container == nil {
		in.ignored("append child: container not found", childID, containerID)
		return nil
	}
	child, err := in.tree.NewNodeWithID(childID)
	if err != nil {
		return fmt.Errorf("append child: %w", err)
	}
	if err := in.tree.Append(container.ID(), child.ID()); err != nil {
		in.tree.Discard(child.ID())
		return fmt.Errorf("append child: %w", err)
	}
	return nil
}

// InsertChildBefore creates node childID and inserts it before the direct
// child beforeID of containerID. If the container or the anchor is missing
// the command is ignored and no node is created.
func (in *Instance) InsertChildBefore(childID, beforeID, containerID NodeID) error {
	container := in.find(containerID)
	if container == nil {
		in.ignored("insert child: container not found", childID, containerID)
		return nil
	}
	child, err := in.tree.NewNodeWithID(childID)
	if err != nil {
		return fmt.Errorf("insert child: %w", err)
	}
	ok, err := in.tree.InsertBefore(container.ID(), child.ID(), beforeID)
	if err != nil || !ok {
		in.tree.Discard(child.ID())
	}
	if err != nil {
		return fmt.Errorf("insert child: %w", err)
	}
	if !ok {
		in.ignored("insert child: anchor not found", childID, containerID, zap.Uint32("before", uint32(beforeID)))
	}
	return nil
}

// RemoveChild removes the direct child childID of containerID together with
// its subtree. Missing nodes are ignored, so removing twice is harmless.
func (in *Instance) RemoveChild(childID, containerID NodeID) {
	container := in.find(containerID)
	if container == nil {
		in.ignored("remove child: container not found", childID, containerID)
		return
	}
	if !in.tree.RemoveByID(container.ID(), childID) {
		in.ignored("remove child: not a direct child", childID, containerID)
	}
}

// SetShape installs s on node id, replacing any previous shape. A missing
// node is ignored.
func (in *Instance) SetShape(id NodeID, s Shape) {
	n := in.find(id)
	if n == nil {
		if in.debug {
			in.log.Debug("set shape: node not found", zap.Uint32("node", uint32(id)))
		}
		return
	}
	n.SetShape(s)
}

// ApplyShapePayload decodes a host shape payload and installs it on node id.
// A malformed payload is returned as an error and leaves the node untouched.
// A payload whose color cannot be resolved is dropped silently, also leaving
// the node untouched.
func (in *Instance) ApplyShapePayload(id NodeID, payload []byte) error {
	s, err := DecodeShape(payload)
	switch {
	case err == nil:
		in.SetShape(id, s)
		return nil
	case errors.Is(err, ErrUnresolvableColor):
		if in.debug {
			in.log.Debug("set shape: color ignored", zap.Uint32("node", uint32(id)), zap.Error(err))
		}
		return nil
	default:
		return fmt.Errorf("set shape on %d: %w", id, err)
	}
}

// Render paints the current tree onto a new surface.
func (in *Instance) Render() *image.RGBA {
	return in.renderer.Render(in.tree)
}

// ToDataURI renders the tree and returns it as a base64 PNG data URI.
func (in *Instance) ToDataURI() (string, error) {
	return DataURI(in.Render())
}

// WritePNG renders the tree and writes it to w as PNG.
func (in *Instance) WritePNG(w io.Writer) error {
	return EncodePNG(w, in.Render())
}

// Dump returns a human-readable outline of the tree.
func (in *Instance) Dump() string {
	return Dump(in.tree)
}

func (in *Instance) ignored(msg string, child, container NodeID, extra ...zap.Field) {
	if !in.debug {
		return
	}
	fields := append([]zap.Field{
		zap.Uint32("child", uint32(child)),
		zap.Uint32("container", uint32(container)),
	}, extra...)
	in.log.Debug(msg, fields...)
}
