package symbol

import (
	"iter"
	"regexp"
	"slices"
	"strings"
)

var finalNumber = regexp.MustCompile(`-\d+$`)

// defaultDenylist holds attribute keys whose values identify the device or the
// content rather than the producing software.
var defaultDenylist = []string{
	"@author", "@count", "@creationTime", "@depth", "@duration", "@entryCount",
	"@flags", "@gpscoords", "@matrix", "@modelName", "@modificationTime",
	"@name", "@sampleCount", "@segmentDuration", "@size", "@stuff",
	"@timescale", "@version", "@width", "@height", "@language",
}

// DefaultDenylist returns a fresh copy of the built-in value denylist.
func DefaultDenylist() map[string]struct{} {
	out := make(map[string]struct{}, len(defaultDenylist))
	for _, k := range defaultDenylist {
		out[k] = struct{}{}
	}
	return out
}

// Options controls symbol canonicalisation.
type Options struct {
	// KeepFinalNumber keeps "-<digits>" suffixes on subtree keys so indexed
	// siblings such as trak-0 and trak-1 stay distinct.
	KeepFinalNumber bool
	// Denylist suppresses the value-augmented symbol for these leaf keys.
	Denylist map[string]struct{}
}

// DefaultOptions strips final numbers and uses the built-in denylist.
func DefaultOptions() Options {
	return Options{Denylist: DefaultDenylist()}
}

func (o Options) canonical(key string) string {
	if o.KeepFinalNumber {
		return key
	}
	return finalNumber.ReplaceAllString(key, "")
}

func (o Options) denied(key string) bool {
	_, ok := o.Denylist[key]
	return ok
}

type frame struct {
	prefix string
	tree   *Tree
	next   int
}

// Symbols returns a restartable iterator over the symbols of t in depth-first
// pre-order. Only leaves produce symbols.
func Symbols(t *Tree, opts Options) iter.Seq[string] {
	return func(yield func(string) bool) {
		if t == nil {
			return
		}
		stack := []frame{{tree: t}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(top.tree.Entries) {
				stack = stack[:len(stack)-1]
				continue
			}
			e := top.tree.Entries[top.next]
			top.next++

			if e.Sub != nil {
				stack = append(stack, frame{prefix: join(top.prefix, opts.canonical(e.Key)), tree: e.Sub})
				continue
			}

			path := join(top.prefix, e.Key)
			if !yield(path) {
				return
			}
			if opts.denied(e.Key) {
				continue
			}
			if !yield(path + "=" + e.Value) {
				return
			}
		}
	}
}

// Extract materialises the symbols of t in traversal order.
func Extract(t *Tree, opts Options) []string {
	return slices.Collect(Symbols(t, opts))
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	var b strings.Builder
	b.Grow(len(prefix) + 1 + len(key))
	b.WriteString(prefix)
	b.WriteByte('/')
	b.WriteString(key)
	return b.String()
}
