package model

// ValidateTree checks the tree invariants: no nil children, no node reachable
// twice, non-empty tags, and bounds present and well-formed on every non-root
// node. A nil root is a valid empty tree.
func ValidateTree(root *Node) error {
	if root == nil {
		return nil
	}
	type frame struct {
		node *Node
		path Path
		root bool
	}
	seen := make(map[*Node]struct{})
	stack := []frame{{node: root, path: Path{{Tag: root.Tag}}, root: true}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, dup := seen[f.node]; dup {
			return &MalformedTreeError{Path: f.path, Err: ErrCycle}
		}
		seen[f.node] = struct{}{}

		if f.node.Tag == "" {
			return &MalformedTreeError{Path: f.path, Err: ErrMissingTag}
		}
		if f.node.Bounds == nil && !f.root {
			return &MalformedTreeError{Path: f.path, Err: ErrMissingBounds}
		}
		if f.node.Bounds != nil && !f.node.Bounds.Valid() {
			return &MalformedTreeError{Path: f.path, Err: ErrInvalidBounds}
		}

		counts := make(map[string]int, len(f.node.Children))
		frames := make([]frame, 0, len(f.node.Children))
		for i, c := range f.node.Children {
			if c == nil {
				return &MalformedTreeError{Path: f.path.Child("?", i), Err: ErrNilNode}
			}
			idx := counts[c.Tag]
			counts[c.Tag] = idx + 1
			frames = append(frames, frame{node: c, path: f.path.Child(c.Tag, idx)})
		}
		// push in reverse so children are checked in document order
		for i := len(frames) - 1; i >= 0; i-- {
			stack = append(stack, frames[i])
		}
	}
	return nil
}
