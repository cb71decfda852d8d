package model

// Entry describes one node of an indexed tree.
type Entry struct {
	// Node is the indexed node.
	Node *Node

	// Path is the derived location of the node.
	Path Path

	// Parent is the pre-order index of the parent, or -1 for the root.
	Parent int

	// Depth is the distance from the root (the root has depth 0).
	Depth int
}

// Tree is a read-only pre-order index over a validated node tree.
// Index 0 is the root. An empty tree has length zero.
type Tree struct {
	entries  []Entry
	children [][]int
	index    map[*Node]int
}

// NewTree indexes root. The tree must already satisfy ValidateTree;
// a nil root yields an empty tree.
func NewTree(root *Node) *Tree {
	t := &Tree{index: make(map[*Node]int)}
	if root == nil {
		return t
	}
	t.add(root, Path{{Tag: root.Tag, Index: 0}}, -1, 0)
	return t
}

func (t *Tree) add(n *Node, path Path, parent, depth int) {
	idx := len(t.entries)
	t.entries = append(t.entries, Entry{Node: n, Path: path, Parent: parent, Depth: depth})
	t.children = append(t.children, nil)
	t.index[n] = idx

	seen := make(map[string]int, len(n.Children))
	for _, c := range n.Children {
		i := seen[c.Tag]
		seen[c.Tag] = i + 1
		t.children[idx] = append(t.children[idx], len(t.entries))
		t.add(c, path.Child(c.Tag, i), idx, depth+1)
	}
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.entries) }

// Empty reports whether the tree has no nodes.
func (t *Tree) Empty() bool { return len(t.entries) == 0 }

// Entry returns the entry at pre-order index i.
func (t *Tree) Entry(i int) Entry { return t.entries[i] }

// Node returns the node at pre-order index i.
func (t *Tree) Node(i int) *Node { return t.entries[i].Node }

// Children returns the pre-order indices of the children of i in document order.
func (t *Tree) Children(i int) []int { return t.children[i] }

// IndexOf returns the pre-order index of n.
func (t *Tree) IndexOf(n *Node) (int, bool) {
	i, ok := t.index[n]
	return i, ok
}

// Extent returns the union of all node bounds and whether any node had bounds.
func (t *Tree) Extent() (Rect, bool) {
	var (
		out   Rect
		found bool
	)
	for _, e := range t.entries {
		if e.Node.Bounds == nil {
			continue
		}
		if !found {
			out, found = *e.Node.Bounds, true
			continue
		}
		out = out.Union(*e.Node.Bounds)
	}
	return out, found
}
