package model

import (
	"encoding/json"
	"fmt"
)

// ChangeType classifies a difference between two snapshots.
// The string values are part of the JSON wire format and must not change.
type ChangeType string

const (
	// ChangeAdded marks a region present only in the candidate tree.
	ChangeAdded ChangeType = "added"
	// ChangeRemoved marks a region present only in the base tree.
	ChangeRemoved ChangeType = "removed"
	// ChangeText marks a matched node whose normalized text differs.
	ChangeText ChangeType = "text_change"
	// ChangeAttribute marks a matched node whose functional attribute differs.
	ChangeAttribute ChangeType = "attribute_change"
	// ChangeBounds marks a matched node that moved beyond the tolerance.
	ChangeBounds ChangeType = "bounds_change"
)

// ChangeTypes returns every change type in reporting order.
func ChangeTypes() []ChangeType {
	return []ChangeType{ChangeAdded, ChangeRemoved, ChangeText, ChangeAttribute, ChangeBounds}
}

// Valid reports whether t is a known change type.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeAdded, ChangeRemoved, ChangeText, ChangeAttribute, ChangeBounds:
		return true
	default:
		return false
	}
}

// Value is a string with explicit presence. An absent value serializes to JSON null.
type Value struct {
	S       string
	Present bool
}

// Present returns a present value.
func Present(s string) Value { return Value{S: s, Present: true} }

// Absent returns an absent value.
func Absent() Value { return Value{} }

// String returns the value, or "<absent>".
func (v Value) String() string {
	if !v.Present {
		return "<absent>"
	}
	return v.S
}

// MarshalJSON encodes the value as a JSON string or null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Present {
		return []byte("null"), nil
	}
	return json.Marshal(v.S)
}

// UnmarshalJSON decodes a JSON string or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}
	*v = Present(s)
	return nil
}

// NodeSummary is a compact description of an added or removed region.
type NodeSummary struct {
	Class       string        `json:"class"`
	ResourceID  string        `json:"resource_id,omitempty"`
	Text        string        `json:"text,omitempty"`
	ContentDesc string        `json:"content_desc,omitempty"`
	Bounds      *Rect         `json:"bounds,omitempty"`
	Size        int           `json:"size"`
	Children    []NodeSummary `json:"children,omitempty"`
}

// ChangeRecord is one typed difference.
//
// Path is the location in the tree the record refers to: the candidate
// tree for ChangeAdded, the base tree for every other type.
type ChangeRecord struct {
	Type  ChangeType
	Path  Path
	Class string

	// Attribute, From and To are set for ChangeAttribute. From and To are
	// also set for ChangeText and hold the raw (unnormalized) text.
	Attribute string
	From      Value
	To        Value

	// FromBounds, ToBounds and Delta are set for ChangeBounds.
	FromBounds *Rect
	ToBounds   *Rect
	Delta      *[4]int

	// Node is set for ChangeAdded and ChangeRemoved.
	Node *NodeSummary

	// Sensitive marks records of password fields. It is not serialized.
	Sensitive bool
}

type changeRecordJSON struct {
	Type      ChangeType      `json:"type"`
	Path      string          `json:"path"`
	Class     string          `json:"class"`
	Attribute string          `json:"attribute,omitempty"`
	From      json.RawMessage `json:"from,omitempty"`
	To        json.RawMessage `json:"to,omitempty"`
	Delta     *[4]int         `json:"delta,omitempty"`
	Node      *NodeSummary    `json:"node,omitempty"`
}

// MarshalJSON encodes the record with only the fields its type defines.
func (c ChangeRecord) MarshalJSON() ([]byte, error) {
	out := changeRecordJSON{
		Type:  c.Type,
		Path:  c.Path.String(),
		Class: c.Class,
	}
	var err error
	switch c.Type {
	case ChangeText, ChangeAttribute:
		out.Attribute = c.Attribute
		if out.From, err = json.Marshal(c.From); err != nil {
			return nil, err
		}
		if out.To, err = json.Marshal(c.To); err != nil {
			return nil, err
		}
	case ChangeBounds:
		if c.FromBounds != nil {
			if out.From, err = json.Marshal(c.FromBounds); err != nil {
				return nil, err
			}
		}
		if c.ToBounds != nil {
			if out.To, err = json.Marshal(c.ToBounds); err != nil {
				return nil, err
			}
		}
		out.Delta = c.Delta
	case ChangeAdded, ChangeRemoved:
		out.Node = c.Node
	default:
		return nil, fmt.Errorf("unknown change type %q", c.Type)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a record produced by MarshalJSON.
func (c *ChangeRecord) UnmarshalJSON(data []byte) error {
	var in changeRecordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	path, err := ParsePath(in.Path)
	if err != nil {
		return err
	}
	rec := ChangeRecord{Type: in.Type, Path: path, Class: in.Class, Attribute: in.Attribute, Node: in.Node}
	switch in.Type {
	case ChangeText, ChangeAttribute:
		if err := decodeOptional(in.From, &rec.From); err != nil {
			return err
		}
		if err := decodeOptional(in.To, &rec.To); err != nil {
			return err
		}
	case ChangeBounds:
		if len(in.From) > 0 {
			rec.FromBounds = &Rect{}
			if err := json.Unmarshal(in.From, rec.FromBounds); err != nil {
				return err
			}
		}
		if len(in.To) > 0 {
			rec.ToBounds = &Rect{}
			if err := json.Unmarshal(in.To, rec.ToBounds); err != nil {
				return err
			}
		}
		rec.Delta = in.Delta
	case ChangeAdded, ChangeRemoved:
	default:
		return fmt.Errorf("unknown change type %q", in.Type)
	}
	*c = rec
	return nil
}

func decodeOptional(raw json.RawMessage, v *Value) error {
	if len(raw) == 0 {
		*v = Absent()
		return nil
	}
	return json.Unmarshal(raw, v)
}

// Summarize builds the summary of n. Only nodes for which include returns
// true are counted and described; a nil include keeps every node.
func Summarize(n *Node, include func(*Node) bool) *NodeSummary {
	if n == nil {
		return nil
	}
	s := summarize(n, include)
	return &s
}

func summarize(n *Node, include func(*Node) bool) NodeSummary {
	s := NodeSummary{
		Class:       n.Tag,
		ResourceID:  n.ResourceID(),
		Text:        n.Text,
		ContentDesc: n.ContentDesc(),
		Size:        1,
	}
	if n.Bounds != nil {
		b := *n.Bounds
		s.Bounds = &b
	}
	for _, c := range n.Children {
		if include != nil && !include(c) {
			continue
		}
		cs := summarize(c, include)
		s.Size += cs.Size
		s.Children = append(s.Children, cs)
	}
	return s
}
