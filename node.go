package vskia

import (
	"fmt"
	"math"
	"slices"
)

// NodeID identifies a node for the lifetime of the tree that created it.
type NodeID uint32

// --- ID allocator ---

// IDAllocator mints node ids. It is owned by a Tree rather than being
// process-wide, but keeps the same contract: ids only ever grow and a minted
// id is never handed out twice. Not safe for concurrent use.
type IDAllocator struct {
	high NodeID
}

// Next returns a fresh id, one past the highest id seen so far. It reports
// false once the id space is exhausted; ids never wrap.
func (a *IDAllocator) Next() (NodeID, bool) {
	if a.high == math.MaxUint32 {
		return 0, false
	}
	a.high++
	return a.high, true
}

// Claim records an id chosen by the host so later calls to Next never mint
// it (or anything below it).
func (a *IDAllocator) Claim(id NodeID) {
	if id > a.high {
		a.high = id
	}
}

// High returns the highest id minted or claimed so far.
func (a *IDAllocator) High() NodeID {
	return a.high
}

// --- Node ---

// defaultBackground is the background every new node starts with.
var defaultBackground = Color{R: 0, G: 0, B: 0, A: 100}

// Node is a single element of the scene graph. Nodes live in their Tree's
// arena; a node refers to its children by id and never to its parent.
type Node struct {
	id NodeID

	x, y          int32
	width, height int32
	background    Color

	shape    Shape
	children []NodeID

	// owned is set while the node sits in some parent's child list or is
	// the tree root.
	owned bool
}

func newNode(id NodeID) *Node {
	return &Node{id: id, background: defaultBackground}
}

// ID returns the node's id. It never changes.
func (n *Node) ID() NodeID { return n.id }

// Position returns the node's x and y.
func (n *Node) Position() (x, y int32) { return n.x, n.y }

// SetPosition sets the node's x and y.
func (n *Node) SetPosition(x, y int32) {
	n.x, n.y = x, y
}

// Width returns the node's declared width.
func (n *Node) Width() int32 { return n.width }

// SetWidth sets the node's declared width.
func (n *Node) SetWidth(w int32) { n.width = w }

// Height returns the node's declared height.
func (n *Node) Height() int32 { return n.height }

// SetHeight sets the node's declared height.
func (n *Node) SetHeight(h int32) { n.height = h }

// BackgroundColor returns the node's background color.
func (n *Node) BackgroundColor() Color { return n.background }

// SetBackgroundColor replaces the node's background color.
func (n *Node) SetBackgroundColor(c Color) { n.background = c }

// Shape returns the node's shape, or nil if it has none. A Points shape is
// returned with its own copy of the point list.
func (n *Node) Shape() Shape { return cloneShape(n.shape) }

// SetShape replaces the node's shape wholesale. The node keeps its own copy
// of a Points shape's point list.
func (n *Node) SetShape(s Shape) { n.shape = cloneShape(s) }

// ClearShape removes the node's shape.
func (n *Node) ClearShape() { n.shape = nil }

// Children returns the ids of the node's direct children in paint order.
// The returned slice MUST NOT be mutated.
func (n *Node) Children() []NodeID { return n.children }

// NumChildren returns the number of direct children.
func (n *Node) NumChildren() int { return len(n.children) }

// IsAttached reports whether the node is the tree root or owned by a parent.
func (n *Node) IsAttached() bool { return n.owned }

func (n *Node) String() string {
	shape := "none"
	if n.shape != nil {
		shape = n.shape.String()
	}
	return fmt.Sprintf("Node#%d pos=(%d,%d) size=%dx%d bg=%s shape=%s",
		n.id, n.x, n.y, n.width, n.height, n.background, shape)
}

// --- Helpers ---

// cloneShape copies the only shape that carries a slice.
func cloneShape(s Shape) Shape {
	if p, ok := s.(Points); ok {
		p.Points = slices.Clone(p.Points)
		return p
	}
	return s
}

// indexOfChild returns the position of id among n's direct children, or -1.
func (n *Node) indexOfChild(id NodeID) int {
	for i, c := range n.children {
		if c == id {
			return i
		}
	}
	return -1
}

// removeChildAt drops the child id at index i, preserving sibling order.
func (n *Node) removeChildAt(i int) {
	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = 0
	n.children = n.children[:len(n.children)-1]
}
