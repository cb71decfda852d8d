package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned when a path string cannot be parsed.
var ErrInvalidPath = errors.New("invalid node path")

// PathStep is one level of a node path: the tag and the index of the
// node among its siblings with the same tag.
type PathStep struct {
	Tag   string
	Index int
}

// Path locates a node by walking from the root. Paths are for reporting
// only and never take part in identity resolution.
type Path []PathStep

// String renders the path as "/tag[index]/tag[index]...".
func (p Path) String() string {
	var sb strings.Builder
	for _, s := range p {
		sb.WriteByte('/')
		sb.WriteString(s.Tag)
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(s.Index))
		sb.WriteByte(']')
	}
	return sb.String()
}

// Parent returns the path of the parent node, or nil for the root.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	return p[:len(p)-1]
}

// Child returns a new path extended by one step. p is not modified.
func (p Path) Child(tag string, index int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, PathStep{Tag: tag, Index: index})
}

// Equal reports whether both paths have the same steps.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePath parses the output of Path.String.
// Tags may contain any character except '/'.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPath, s)
	}
	parts := strings.Split(s[1:], "/")
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		open := strings.LastIndexByte(part, '[')
		if open <= 0 || !strings.HasSuffix(part, "]") {
			return nil, fmt.Errorf("%w: malformed step %q", ErrInvalidPath, part)
		}
		idx, err := strconv.Atoi(part[open+1 : len(part)-1])
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: bad index in step %q", ErrInvalidPath, part)
		}
		out = append(out, PathStep{Tag: part[:open], Index: idx})
	}
	return out, nil
}
