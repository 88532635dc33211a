package vskia

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// newTestTree returns a tree with a root and n children appended in order.
func newTestTree(t *testing.T, n int) (*Tree, *Node, []*Node) {
	t.Helper()
	tr := NewTree()
	root := mint(t, tr)
	if err := tr.SetRoot(root.ID()); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}
	kids := make([]*Node, n)
	for i := range kids {
		kids[i] = mint(t, tr)
		if err := tr.Append(root.ID(), kids[i].ID()); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return tr, root, kids
}

// --- Append ---

func TestAppendOrder(t *testing.T) {
	tr, root, kids := newTestTree(t, 3)
	want := []NodeID{kids[0].ID(), kids[1].ID(), kids[2].ID()}
	if diff := cmp.Diff(want, root.Children()); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	for _, k := range kids {
		if !k.IsAttached() {
			t.Errorf("child %d should be attached", k.ID())
		}
	}
	if tr.Len() != 4 {
		t.Errorf("Len = %d, want 4", tr.Len())
	}
}

func TestAppendThenFindRoundTrips(t *testing.T) {
	tr, root, kids := newTestTree(t, 2)
	grand := mint(t, tr)
	if err := tr.Append(kids[1].ID(), grand.ID()); err != nil {
		t.Fatal(err)
	}
	for _, id := range []NodeID{root.ID(), kids[0].ID(), kids[1].ID(), grand.ID()} {
		n := tr.FindByID(root.ID(), id)
		if n == nil || n.ID() != id {
			t.Errorf("FindByID(%d) = %v", id, n)
		}
	}
}

func TestAppendRejectsAttachedChild(t *testing.T) {
	tr, root, kids := newTestTree(t, 2)
	err := tr.Append(kids[0].ID(), kids[1].ID())
	if !errors.Is(err, ErrAlreadyAttached) {
		t.Fatalf("err = %v, want ErrAlreadyAttached", err)
	}
	if err := tr.Append(kids[0].ID(), root.ID()); !errors.Is(err, ErrAlreadyAttached) {
		t.Fatalf("appending root: err = %v, want ErrAlreadyAttached", err)
	}
}

func TestAppendRejectsCycle(t *testing.T) {
	tr := NewTree()
	a := mint(t, tr)
	b := mint(t, tr)
	if err := tr.Append(a.ID(), b.ID()); err != nil {
		t.Fatal(err)
	}
	// a is detached but b lives in its subtree.
	if err := tr.Append(b.ID(), a.ID()); !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
	if err := tr.Append(a.ID(), a.ID()); !errors.Is(err, ErrCycle) {
		t.Fatalf("self append: err = %v, want ErrCycle", err)
	}
}

func TestAppendUnknownNodes(t *testing.T) {
	tr, root, _ := newTestTree(t, 0)
	if err := tr.Append(root.ID(), 999); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown child: err = %v", err)
	}
	n := mint(t, tr)
	if err := tr.Append(999, n.ID()); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown parent: err = %v", err)
	}
	if n.IsAttached() {
		t.Error("failed append must leave the child detached")
	}
}

// --- InsertBefore ---

func TestInsertBeforeFirst(t *testing.T) {
	tr := NewTree()
	root := mint(t, tr) // 1
	if err := tr.SetRoot(root.ID()); err != nil {
		t.Fatal(err)
	}
	a := mint(t, tr) // 2
	b := mint(t, tr) // 3
	if a.ID() != 2 || b.ID() != 3 {
		t.Fatalf("ids = %d, %d, want 2, 3", a.ID(), b.ID())
	}
	for _, n := range []*Node{a, b} {
		if err := tr.Append(root.ID(), n.ID()); err != nil {
			t.Fatal(err)
		}
	}
	c := mint(t, tr)
	ok, err := tr.InsertBefore(root.ID(), c.ID(), 2)
	if err != nil || !ok {
		t.Fatalf("InsertBefore = %v, %v", ok, err)
	}
	want := []NodeID{c.ID(), a.ID(), b.ID()}
	if diff := cmp.Diff(want, root.Children()); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertBeforeMiddleAndLast(t *testing.T) {
	tr, root, kids := newTestTree(t, 2)
	x := mint(t, tr)
	if ok, err := tr.InsertBefore(root.ID(), x.ID(), kids[1].ID()); err != nil || !ok {
		t.Fatalf("InsertBefore = %v, %v", ok, err)
	}
	want := []NodeID{kids[0].ID(), x.ID(), kids[1].ID()}
	if diff := cmp.Diff(want, root.Children()); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertBeforeMissingAnchor(t *testing.T) {
	tr, root, _ := newTestTree(t, 2)
	before := append([]NodeID(nil), root.Children()...)
	c := mint(t, tr)
	ok, err := tr.InsertBefore(root.ID(), c.ID(), 12345)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("InsertBefore with a missing anchor should report false")
	}
	if diff := cmp.Diff(before, root.Children()); diff != "" {
		t.Errorf("children changed (-want +got):\n%s", diff)
	}
	if c.IsAttached() {
		t.Error("child should stay detached")
	}
}

func TestInsertBeforeIgnoresGrandchildAnchor(t *testing.T) {
	tr, root, kids := newTestTree(t, 1)
	grand := mint(t, tr)
	if err := tr.Append(kids[0].ID(), grand.ID()); err != nil {
		t.Fatal(err)
	}
	c := mint(t, tr)
	ok, err := tr.InsertBefore(root.ID(), c.ID(), grand.ID())
	if err != nil || ok {
		t.Fatalf("InsertBefore = %v, %v; want false, nil", ok, err)
	}
	if diff := cmp.Diff([]NodeID{kids[0].ID()}, root.Children()); diff != "" {
		t.Errorf("root children changed:\n%s", diff)
	}
	if diff := cmp.Diff([]NodeID{grand.ID()}, kids[0].Children()); diff != "" {
		t.Errorf("grandchildren changed:\n%s", diff)
	}
}

// --- RemoveByID ---

func TestRemoveByIDFreesSubtree(t *testing.T) {
	tr, root, kids := newTestTree(t, 2)
	grand := mint(t, tr)
	if err := tr.Append(kids[0].ID(), grand.ID()); err != nil {
		t.Fatal(err)
	}
	if !tr.RemoveByID(root.ID(), kids[0].ID()) {
		t.Fatal("RemoveByID should report a removal")
	}
	if diff := cmp.Diff([]NodeID{kids[1].ID()}, root.Children()); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if tr.Node(kids[0].ID()) != nil || tr.Node(grand.ID()) != nil {
		t.Error("removed subtree should be freed from the arena")
	}
	if tr.FindByID(root.ID(), grand.ID()) != nil {
		t.Error("grandchild still reachable after removal")
	}
	if tr.Len() != 2 {
		t.Errorf("Len = %d, want 2", tr.Len())
	}
}

func TestRemoveByIDIdempotent(t *testing.T) {
	tr, root, kids := newTestTree(t, 3)
	tr.RemoveByID(root.ID(), kids[1].ID())
	once := Dump(tr)
	if tr.RemoveByID(root.ID(), kids[1].ID()) {
		t.Error("second RemoveByID should be a no-op")
	}
	if twice := Dump(tr); twice != once {
		t.Errorf("tree changed on second removal:\n%s\nvs\n%s", once, twice)
	}
}

func TestRemoveByIDIgnoresGrandchild(t *testing.T) {
	tr, root, kids := newTestTree(t, 1)
	grand := mint(t, tr)
	if err := tr.Append(kids[0].ID(), grand.ID()); err != nil {
		t.Fatal(err)
	}
	before := Dump(tr)
	if tr.RemoveByID(root.ID(), grand.ID()) {
		t.Error("RemoveByID must not match a grandchild")
	}
	if after := Dump(tr); after != before {
		t.Errorf("tree changed:\n%s\nvs\n%s", before, after)
	}
}

func TestRemoveByIDUnknownParent(t *testing.T) {
	tr, _, kids := newTestTree(t, 1)
	if tr.RemoveByID(999, kids[0].ID()) {
		t.Error("unknown parent should be a no-op")
	}
}

// --- ChildAt ---

func TestChildAt(t *testing.T) {
	tr, root, kids := newTestTree(t, 3)
	for i, k := range kids {
		n, err := tr.ChildAt(root.ID(), i)
		if err != nil {
			t.Fatalf("ChildAt(%d): %v", i, err)
		}
		if n != k {
			t.Errorf("ChildAt(%d) = %d, want %d", i, n.ID(), k.ID())
		}
	}
	for _, i := range []int{-1, 3, 100} {
		if _, err := tr.ChildAt(root.ID(), i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("ChildAt(%d) err = %v, want ErrIndexOutOfRange", i, err)
		}
	}
	if _, err := tr.ChildAt(999, 0); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown parent err = %v", err)
	}
	if tr.NumChildren(root.ID()) != 3 || tr.NumChildren(999) != 0 {
		t.Error("NumChildren mismatch")
	}
}

// --- FindByID / Walk ---

func TestFindByIDMissing(t *testing.T) {
	tr, root, _ := newTestTree(t, 2)
	if n := tr.FindByID(root.ID(), 777); n != nil {
		t.Errorf("FindByID = %v, want nil", n)
	}
	if n := tr.FindByID(777, root.ID()); n != nil {
		t.Errorf("FindByID from unknown = %v, want nil", n)
	}
}

func TestFindByIDScopedToSubtree(t *testing.T) {
	tr, _, kids := newTestTree(t, 2)
	if n := tr.FindByID(kids[0].ID(), kids[1].ID()); n != nil {
		t.Error("sibling should not be found from another subtree")
	}
}

func TestWalkPreOrder(t *testing.T) {
	// root
	//   a
	//     a1
	//     a2
	//   b
	//     b1
	tr, root, kids := newTestTree(t, 2)
	a, b := kids[0], kids[1]
	a1, a2, b1 := mint(t, tr), mint(t, tr), mint(t, tr)
	for _, p := range [][2]NodeID{{a.ID(), a1.ID()}, {a.ID(), a2.ID()}, {b.ID(), b1.ID()}} {
		if err := tr.Append(p[0], p[1]); err != nil {
			t.Fatal(err)
		}
	}
	var got []NodeID
	tr.Walk(root.ID(), func(n *Node) bool {
		got = append(got, n.ID())
		return true
	})
	want := []NodeID{root.ID(), a.ID(), a1.ID(), a2.ID(), b.ID(), b1.ID()}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkStop(t *testing.T) {
	tr, root, _ := newTestTree(t, 5)
	visits := 0
	tr.Walk(root.ID(), func(n *Node) bool {
		visits++
		return visits < 3
	})
	if visits != 3 {
		t.Errorf("visits = %d, want 3", visits)
	}
}

func TestWalkNested(t *testing.T) {
	tr, root, kids := newTestTree(t, 3)
	var outer []NodeID
	tr.Walk(root.ID(), func(n *Node) bool {
		outer = append(outer, n.ID())
		// A nested lookup must not disturb the outer walk.
		tr.FindByID(root.ID(), kids[2].ID())
		return true
	})
	want := []NodeID{root.ID(), kids[0].ID(), kids[1].ID(), kids[2].ID()}
	if diff := cmp.Diff(want, outer); diff != "" {
		t.Errorf("outer walk mismatch (-want +got):\n%s", diff)
	}
}

// --- Root / Discard / host ids ---

func TestSetRootReplacesAndFrees(t *testing.T) {
	tr, root, kids := newTestTree(t, 2)
	next := mint(t, tr)
	if err := tr.SetRoot(next.ID()); err != nil {
		t.Fatal(err)
	}
	if tr.Root() != next {
		t.Error("root not replaced")
	}
	if tr.Node(root.ID()) != nil || tr.Node(kids[0].ID()) != nil {
		t.Error("old root subtree should be freed")
	}
	if tr.Len() != 1 {
		t.Errorf("Len = %d, want 1", tr.Len())
	}
}

func TestSetRootRejectsAttached(t *testing.T) {
	tr, _, kids := newTestTree(t, 1)
	if err := tr.SetRoot(kids[0].ID()); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("err = %v, want ErrAlreadyAttached", err)
	}
	if err := tr.SetRoot(999); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("err = %v, want ErrUnknownNode", err)
	}
}

func TestDiscard(t *testing.T) {
	tr, root, kids := newTestTree(t, 1)
	d := mint(t, tr)
	dc := mint(t, tr)
	if err := tr.Append(d.ID(), dc.ID()); err != nil {
		t.Fatal(err)
	}
	if tr.Discard(kids[0].ID()) {
		t.Error("Discard must leave attached nodes alone")
	}
	if tr.Discard(root.ID()) {
		t.Error("Discard must leave the root alone")
	}
	if !tr.Discard(d.ID()) {
		t.Fatal("Discard of a detached node should succeed")
	}
	if tr.Node(d.ID()) != nil || tr.Node(dc.ID()) != nil {
		t.Error("discarded subtree still live")
	}
}

func TestNewNodeWithID(t *testing.T) {
	tr := NewTree()
	n, err := tr.NewNodeWithID(40)
	if err != nil {
		t.Fatal(err)
	}
	if n.ID() != 40 {
		t.Errorf("ID = %d, want 40", n.ID())
	}
	if _, err := tr.NewNodeWithID(40); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
	if got := mint(t, tr).ID(); got != 41 {
		t.Errorf("minted id after claim = %d, want 41", got)
	}
	if tr.IDs().High() != 41 {
		t.Errorf("High = %d, want 41", tr.IDs().High())
	}
}
