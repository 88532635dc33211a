package vskia

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is returned when an id does not name a live node.
	ErrUnknownNode = errors.New("vskia: unknown node")
	// ErrDuplicateID is returned when a host-supplied id is already live.
	ErrDuplicateID = errors.New("vskia: duplicate node id")
	// ErrAlreadyAttached is returned when attaching a node that already has
	// an owner.
	ErrAlreadyAttached = errors.New("vskia: node already attached")
	// ErrCycle is returned when a node would become its own descendant.
	ErrCycle = errors.New("vskia: node would become its own descendant")
	// ErrIndexOutOfRange is returned by ChildAt for an invalid index.
	ErrIndexOutOfRange = errors.New("vskia: child index out of range")
	// ErrIDsExhausted is returned by NewNode once every id has been used.
	ErrIDsExhausted = errors.New("vskia: node ids exhausted")
)

// Tree owns every node it creates. Nodes are stored in an arena keyed by id;
// ownership is expressed by child id lists, so a node is either the root,
// in exactly one parent's child list, or detached (created but not yet
// attached). Removing a node frees its whole subtree.
//
// Tree is not safe for concurrent use; callers serialize access.
type Tree struct {
	nodes   map[NodeID]*Node
	root    NodeID
	hasRoot bool
	ids     IDAllocator

	// scratch stack reused by traversals
	stack []NodeID
}

// NewTree returns an empty tree with its own id allocator.
func NewTree() *Tree {
	return &Tree{nodes: make(map[NodeID]*Node)}
}

// NewNode creates a detached node with a freshly minted id. It fails once
// the id space is used up and never replaces a live node.
func (t *Tree) NewNode() (*Node, error) {
	id, ok := t.ids.Next()
	if !ok {
		return nil, fmt.Errorf("new node: %w", ErrIDsExhausted)
	}
	if _, live := t.nodes[id]; live {
		return nil, fmt.Errorf("new node %d: %w", id, ErrDuplicateID)
	}
	n := newNode(id)
	t.nodes[id] = n
	return n, nil
}

// NewNodeWithID creates a detached node using an id chosen by the host.
// The id must not belong to a live node.
func (t *Tree) NewNodeWithID(id NodeID) (*Node, error) {
	if _, ok := t.nodes[id]; ok {
		return nil, fmt.Errorf("new node %d: %w", id, ErrDuplicateID)
	}
	t.ids.Claim(id)
	n := newNode(id)
	t.nodes[id] = n
	return n, nil
}

// Node returns the live node with the given id, attached or not.
func (t *Tree) Node(id NodeID) *Node {
	return t.nodes[id]
}

// Len returns the number of live nodes, detached ones included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// IDs returns the tree's id allocator.
func (t *Tree) IDs() *IDAllocator {
	return &t.ids
}

// Root returns the root node, or nil if none has been set.
func (t *Tree) Root() *Node {
	if !t.hasRoot {
		return nil
	}
	return t.nodes[t.root]
}

// SetRoot makes the detached node id the root. A previous root and its
// subtree are freed.
func (t *Tree) SetRoot(id NodeID) error {
	n, err := t.detached(id, "set root")
	if err != nil {
		return err
	}
	if t.hasRoot {
		if t.root == id {
			return nil
		}
		t.free(t.root)
	}
	n.owned = true
	t.root = id
	t.hasRoot = true
	return nil
}

// Append adds child as the last child of parent.
func (t *Tree) Append(parent, child NodeID) error {
	p, c, err := t.attachable(parent, child, "append")
	if err != nil {
		return err
	}
	p.children = append(p.children, child)
	c.owned = true
	return nil
}

// InsertBefore inserts child immediately before the direct child of parent
// whose id is anchor. Only direct children are considered; if anchor is not
// one of them nothing happens and false is returned, leaving child detached.
func (t *Tree) InsertBefore(parent, child, anchor NodeID) (bool, error) {
	p, c, err := t.attachable(parent, child, "insert before")
	if err != nil {
		return false, err
	}
	i := p.indexOfChild(anchor)
	if i < 0 {
		return false, nil
	}
	p.children = append(p.children, 0)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = child
	c.owned = true
	return true, nil
}

// RemoveByID removes the direct child of parent with the given id and frees
// its subtree. Deeper descendants are never matched. It reports whether a
// child was removed; removing a missing child is a no-op.
func (t *Tree) RemoveByID(parent, id NodeID) bool {
	p := t.nodes[parent]
	if p == nil {
		return false
	}
	i := p.indexOfChild(id)
	if i < 0 {
		return false
	}
	p.removeChildAt(i)
	t.free(id)
	return true
}

// ChildAt returns the i-th direct child of parent.
func (t *Tree) ChildAt(parent NodeID, i int) (*Node, error) {
	p := t.nodes[parent]
	if p == nil {
		return nil, fmt.Errorf("child at %d of %d: %w", i, parent, ErrUnknownNode)
	}
	if i < 0 || i >= len(p.children) {
		return nil, fmt.Errorf("child at %d of %d (len %d): %w", i, parent, len(p.children), ErrIndexOutOfRange)
	}
	return t.nodes[p.children[i]], nil
}

// NumChildren returns the number of direct children of parent, or 0 if
// parent is not live.
func (t *Tree) NumChildren(parent NodeID) int {
	p := t.nodes[parent]
	if p == nil {
		return 0
	}
	return len(p.children)
}

// FindByID searches the subtree rooted at from, from included, for the node
// with the given id. The search is pre-order in child order; nil is
// returned when the id is not in that subtree.
func (t *Tree) FindByID(from, id NodeID) *Node {
	var found *Node
	t.Walk(from, func(n *Node) bool {
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits the subtree rooted at from in pre-order, children in order.
// Returning false from fn stops the walk.
func (t *Tree) Walk(from NodeID, fn func(n *Node) bool) {
	start := t.nodes[from]
	if start == nil {
		return
	}
	// Take the scratch stack so a nested Walk from fn allocates its own.
	stack := append(t.stack[:0], from)
	t.stack = nil
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[id]
		if !fn(n) {
			break
		}
		// Push in reverse so the first child is visited first.
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	t.stack = stack[:0]
}

// Discard frees a detached node and its subtree. Attached nodes are left
// alone; remove them through their parent instead.
func (t *Tree) Discard(id NodeID) bool {
	n := t.nodes[id]
	if n == nil || n.owned {
		return false
	}
	t.free(id)
	return true
}

// --- Helpers ---

// free deletes id and every descendant from the arena.
func (t *Tree) free(id NodeID) {
	var doomed []NodeID
	t.Walk(id, func(n *Node) bool {
		doomed = append(doomed, n.id)
		return true
	})
	for _, d := range doomed {
		n := t.nodes[d]
		n.children = nil
		n.shape = nil
		n.owned = false
		delete(t.nodes, d)
	}
	if t.hasRoot && t.root == id {
		t.hasRoot = false
		t.root = 0
	}
}

func (t *Tree) detached(id NodeID, op string) (*Node, error) {
	n := t.nodes[id]
	if n == nil {
		return nil, fmt.Errorf("%s: node %d: %w", op, id, ErrUnknownNode)
	}
	if n.owned {
		return nil, fmt.Errorf("%s: node %d: %w", op, id, ErrAlreadyAttached)
	}
	return n, nil
}

// attachable validates that child can be placed under parent.
func (t *Tree) attachable(parent, child NodeID, op string) (*Node, *Node, error) {
	p := t.nodes[parent]
	if p == nil {
		return nil, nil, fmt.Errorf("%s: parent %d: %w", op, parent, ErrUnknownNode)
	}
	c, err := t.detached(child, op)
	if err != nil {
		return nil, nil, err
	}
	// A detached child may already carry a subtree; parent must not be in it.
	if t.FindByID(child, parent) != nil {
		return nil, nil, fmt.Errorf("%s: %d under %d: %w", op, child, parent, ErrCycle)
	}
	return p, c, nil
}
