// Package symbol turns container metadata trees into canonical path symbols.
//
// A metadata tree is the nested key/value view of a video container produced by
// an external box dumper. Every leaf contributes a bare path symbol
// ("moov/trak/mdia/hdlr/@handlerType") and, unless its key is denylisted, a
// value-augmented one ("moov/trak/mdia/hdlr/@handlerType=vide").
package symbol

import (
	"sort"

	"github.com/spf13/cast"
)

// Entry is a single key of a metadata tree. Exactly one of Value or Sub is
// meaningful: Sub is nil for scalar leaves.
type Entry struct {
	Key   string
	Value string
	Sub   *Tree
}

// IsLeaf reports whether the entry holds a scalar value.
func (e Entry) IsLeaf() bool { return e.Sub == nil }

// Tree is an ordered list of entries. Repeated sibling elements are kept as
// repeated entries sharing the same key.
type Tree struct {
	Entries []Entry
}

// NewTree returns an empty tree.
func NewTree() *Tree { return &Tree{} }

// Leaf appends a scalar entry and returns the tree for chaining.
func (t *Tree) Leaf(key, value string) *Tree {
	t.Entries = append(t.Entries, Entry{Key: key, Value: value})
	return t
}

// Node appends a subtree entry and returns the tree for chaining.
func (t *Tree) Node(key string, sub *Tree) *Tree {
	if sub == nil {
		sub = NewTree()
	}
	t.Entries = append(t.Entries, Entry{Key: key, Sub: sub})
	return t
}

// Len returns the number of direct entries.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}

// FromMap converts a decoded nested map into a Tree. Map keys are visited in
// lexical order so the result does not depend on map iteration. Lists become
// repeated sibling entries; scalars are rendered with cast.ToString and nil
// becomes the empty string.
func FromMap(m map[string]any) *Tree {
	t := NewTree()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		appendValue(t, k, m[k])
	}
	return t
}

func appendValue(t *Tree, key string, v any) {
	switch val := v.(type) {
	case map[string]any:
		t.Node(key, FromMap(val))
	case []any:
		for _, item := range val {
			appendValue(t, key, item)
		}
	case nil:
		t.Leaf(key, "")
	default:
		t.Leaf(key, cast.ToString(val))
	}
}
