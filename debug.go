package vskia

import (
	"slices"
	"strings"
)

// debugMaxDepth bounds the indentation Dump will emit; deeper levels are
// printed flush at that depth.
const debugMaxDepth = 32

// Dump returns an indented outline of the tree rooted at t's root, one node
// per line in traversal order. Detached nodes are listed after the tree.
func Dump(t *Tree) string {
	var b strings.Builder
	root := t.Root()
	if root == nil {
		b.WriteString("(empty tree)\n")
		return b.String()
	}
	seen := make(map[NodeID]bool, t.Len())
	dumpNode(&b, t, root, 0, seen)

	var detached []NodeID
	for id, n := range t.nodes {
		if !seen[id] && !n.owned {
			detached = append(detached, id)
		}
	}
	if len(detached) > 0 {
		slices.Sort(detached)
		b.WriteString("detached:\n")
		for _, id := range detached {
			dumpNode(&b, t, t.nodes[id], 1, seen)
		}
	}
	return b.String()
}

func dumpNode(b *strings.Builder, t *Tree, n *Node, depth int, seen map[NodeID]bool) {
	seen[n.id] = true
	b.WriteString(strings.Repeat("  ", min(depth, debugMaxDepth)))
	b.WriteString(n.String())
	b.WriteByte('\n')
	for _, c := range n.children {
		dumpNode(b, t, t.nodes[c], depth+1, seen)
	}
}
