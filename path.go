package shapekit

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: a mapping key or a sequence index.
type Segment struct {
	Key     string
	Index   int
	isIndex bool
}

// KeySeg returns a key segment.
func KeySeg(k string) Segment { return Segment{Key: k} }

// IndexSeg returns an index segment.
func IndexSeg(i int) Segment { return Segment{Index: i, isIndex: true} }

// IsIndex reports whether the segment addresses a sequence element.
func (s Segment) IsIndex() bool { return s.isIndex }

func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path locates a value in the raw tree, starting at the root.
type Path []Segment

// Field returns a new path extended with a key segment.
func (p Path) Field(name string) Path {
	return append(append(make(Path, 0, len(p)+1), p...), KeySeg(name))
}

// Index returns a new path extended with an index segment.
func (p Path) Index(i int) Path {
	return append(append(make(Path, 0, len(p)+1), p...), IndexSeg(i))
}

// Join returns p followed by rest. Neither input is modified.
func (p Path) Join(rest Path) Path {
	if len(rest) == 0 {
		return p
	}
	out := make(Path, 0, len(p)+len(rest))
	out = append(out, p...)
	return append(out, rest...)
}

// Pointer renders the path as an RFC 6901 JSON Pointer ("/" for the root).
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.String(), "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// Dotted renders the path as dot-separated segments ("" for the root).
func (p Path) Dotted() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}
