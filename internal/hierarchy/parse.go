package hierarchy

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nao1215/uidiff/internal/model"
)

// ErrInvalidXML is returned when the document is not well-formed or has
// more than one root element.
var ErrInvalidXML = errors.New("invalid hierarchy XML")

// Attribute names mapped onto dedicated node fields.
const (
	attrClass  = "class"
	attrText   = "text"
	attrBounds = "bounds"
)

// Parse parses a uiautomator hierarchy dump.
//
// The document element becomes the root; <hierarchy> has no bounds and is
// the usual synthetic root. Each element becomes a node whose tag is its
// class attribute, falling back to the element name. An empty document
// yields a nil tree.
func Parse(raw []byte) (*model.Node, error) {
	return parse(bytes.NewReader(raw))
}

// ParseFile reads and parses a dump from disk.
func ParseFile(path string) (*model.Node, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	root, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return root, nil
}

type frame struct {
	node   *model.Node
	path   model.Path
	counts map[string]int
}

func parse(r io.Reader) (*model.Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		root  *model.Node
		stack []*frame
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidXML, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return nil, fmt.Errorf("%w: multiple root elements", ErrInvalidXML)
			}
			var path model.Path
			if len(stack) == 0 {
				path = model.Path{{Tag: tagOf(t), Index: 0}}
			} else {
				parent := stack[len(stack)-1]
				tag := tagOf(t)
				path = parent.path.Child(tag, parent.counts[tag])
				parent.counts[tag]++
			}

			n, err := newNode(t, len(stack) == 0)
			if err != nil {
				return nil, &model.MalformedTreeError{Path: path, Err: err}
			}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, &frame{node: n, path: path, counts: make(map[string]int)})
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	return root, nil
}

func tagOf(el xml.StartElement) string {
	for _, a := range el.Attr {
		if a.Name.Local == attrClass && a.Value != "" {
			return a.Value
		}
	}
	return el.Name.Local
}

func newNode(el xml.StartElement, isRoot bool) (*model.Node, error) {
	n := &model.Node{Tag: tagOf(el)}
	seen := make(map[string]struct{}, len(el.Attr))
	for _, a := range el.Attr {
		key := a.Name.Local
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q", model.ErrDuplicateAttribute, key)
		}
		seen[key] = struct{}{}

		switch key {
		case attrClass:
		case attrText:
			n.Text = a.Value
		case attrBounds:
			b, err := ParseBounds(a.Value)
			if err != nil {
				return nil, err
			}
			n.Bounds = &b
		default:
			if n.Attributes == nil {
				n.Attributes = make(model.Attributes, len(el.Attr))
			}
			n.Attributes[key] = a.Value
		}
	}
	if n.Bounds == nil && !isRoot {
		return nil, model.ErrMissingBounds
	}
	return n, nil
}

// ParseBounds parses uiautomator bounds notation "[left,top][right,bottom]".
func ParseBounds(s string) (model.Rect, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return model.Rect{}, fmt.Errorf("%w: %q", model.ErrInvalidBounds, s)
	}
	corners := strings.Split(s[1:len(s)-1], "][")
	if len(corners) != 2 {
		return model.Rect{}, fmt.Errorf("%w: %q", model.ErrInvalidBounds, s)
	}
	var v [4]int
	for i, corner := range corners {
		x, y, ok := strings.Cut(corner, ",")
		if !ok {
			return model.Rect{}, fmt.Errorf("%w: %q", model.ErrInvalidBounds, s)
		}
		var err error
		if v[2*i], err = strconv.Atoi(strings.TrimSpace(x)); err != nil {
			return model.Rect{}, fmt.Errorf("%w: %q", model.ErrInvalidBounds, s)
		}
		if v[2*i+1], err = strconv.Atoi(strings.TrimSpace(y)); err != nil {
			return model.Rect{}, fmt.Errorf("%w: %q", model.ErrInvalidBounds, s)
		}
	}
	r := model.Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}
	if !r.Valid() {
		return model.Rect{}, fmt.Errorf("%w: %q", model.ErrInvalidBounds, s)
	}
	return r, nil
}
