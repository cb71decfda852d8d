package model

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Rect is an axis-aligned rectangle in device pixels.
// It serializes to JSON as [left, top, right, bottom].
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Valid reports whether right >= left and bottom >= top.
func (r Rect) Valid() bool { return r.Right >= r.Left && r.Bottom >= r.Top }

// Center returns the center point of the rectangle.
func (r Rect) Center() (float64, float64) {
	return float64(r.Left+r.Right) / 2, float64(r.Top+r.Bottom) / 2
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

// Delta returns the per-edge movement from r to o as [left, top, right, bottom].
func (r Rect) Delta(o Rect) [4]int {
	return [4]int{o.Left - r.Left, o.Top - r.Top, o.Right - r.Right, o.Bottom - r.Bottom}
}

// String renders the rectangle in uiautomator notation, e.g. "[0,0][1080,1920]".
func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}

// MarshalJSON encodes the rectangle as a four element array.
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{r.Left, r.Top, r.Right, r.Bottom})
}

// UnmarshalJSON decodes a four element array.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var v [4]int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to decode bounds: %w", err)
	}
	*r = Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}
	return nil
}

// Attributes holds the attributes of a node keyed by name.
// An attribute is present when its key is in the map, so an empty
// string value is different from an absent attribute.
type Attributes map[string]string

// Get returns the value of the named attribute and whether it is present.
func (a Attributes) Get(name string) (string, bool) {
	v, ok := a[name]
	return v, ok
}

// Has reports whether the named attribute is present.
func (a Attributes) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Keys returns the attribute names in lexical order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Attribute name aliases found in dumps produced by different uiautomator versions.
var (
	resourceIDKeys  = []string{"resource-id", "resource_id", "id"}
	contentDescKeys = []string{"content-desc", "content_desc", "contentDescription"}
)

// Node is one element of a UI hierarchy.
//
// Tag is the widget class name (the synthetic root uses the element name,
// normally "hierarchy"). Tags are not unique; identity between two snapshots
// is resolved by the matcher, never by Tag or position alone.
type Node struct {
	// Tag is the element class name, e.g. "android.widget.TextView".
	Tag string

	// Attributes holds every attribute other than class, text and bounds.
	Attributes Attributes

	// Text is the displayed text. Comparison normalizes whitespace;
	// the raw value is kept for reporting.
	Text string

	// Bounds is the on-screen rectangle. It is nil only for the synthetic root.
	Bounds *Rect

	// Children are kept in document order.
	Children []*Node
}

// ResourceID returns the developer assigned resource identifier, or "".
func (n *Node) ResourceID() string {
	return n.firstAttr(resourceIDKeys)
}

// ContentDesc returns the accessibility description, or "".
func (n *Node) ContentDesc() string {
	return n.firstAttr(contentDescKeys)
}

// Password reports whether the node is a password field.
func (n *Node) Password() bool {
	if n == nil {
		return false
	}
	v, _ := n.Attributes.Get("password")
	return v == "true"
}

func (n *Node) firstAttr(keys []string) string {
	if n == nil {
		return ""
	}
	for _, k := range keys {
		if v, ok := n.Attributes[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

// Size returns the number of nodes in the subtree rooted at n.
// A nil node has size zero.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	size := 1
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

// Walk visits the subtree rooted at n in pre-order.
// Returning false from fn skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Tag: n.Tag, Text: n.Text}
	if n.Attributes != nil {
		out.Attributes = make(Attributes, len(n.Attributes))
		for k, v := range n.Attributes {
			out.Attributes[k] = v
		}
	}
	if n.Bounds != nil {
		b := *n.Bounds
		out.Bounds = &b
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}
