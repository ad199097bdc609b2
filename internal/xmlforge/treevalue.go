// Package xmlforge turns SOAP-wrapped XML and flat JSON order events into a
// uniform tree representation and extracts typed notification fields from it
// by path.
package xmlforge

import "sort"

// Kind discriminates the three node shapes a parsed document is built from.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// TreeValue is a single node of a parsed document: a scalar, an ordered list
// or a keyed mapping, optionally carrying XML attributes and inline text.
// Nodes are created once per parse and never mutated afterwards.
type TreeValue struct {
	kind    Kind
	scalar  string
	list    []*TreeValue
	entries map[string]*TreeValue
	attrs   map[string]string
}

// NewScalar creates a scalar leaf.
func NewScalar(value string) *TreeValue {
	return &TreeValue{kind: KindScalar, scalar: value}
}

// NewAttributedScalar creates a scalar leaf carrying XML attributes, the
// shape an element like <Code name="B&amp;Q">BQ</Code> parses into.
func NewAttributedScalar(value string, attrs map[string]string) *TreeValue {
	return &TreeValue{kind: KindScalar, scalar: value, attrs: copyAttrs(attrs)}
}

// NewList creates an ordered list node.
func NewList(items ...*TreeValue) *TreeValue {
	return &TreeValue{kind: KindList, list: items}
}

// NewMap creates a keyed mapping node. Document roots are always maps.
func NewMap(entries map[string]*TreeValue) *TreeValue {
	return &TreeValue{kind: KindMap, entries: entries}
}

// NewAttributedMap creates a mapping node carrying XML attributes.
func NewAttributedMap(entries map[string]*TreeValue, attrs map[string]string) *TreeValue {
	return &TreeValue{kind: KindMap, entries: entries, attrs: copyAttrs(attrs)}
}

func (v *TreeValue) Kind() Kind { return v.kind }

// Scalar returns the scalar value; empty for non-scalar nodes.
func (v *TreeValue) Scalar() string {
	if v.kind != KindScalar {
		return ""
	}
	return v.scalar
}

// At returns the list element at index i, or nil when out of range or the
// node is not a list.
func (v *TreeValue) At(i int) *TreeValue {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return nil
	}
	return v.list[i]
}

// Len returns the number of list elements or map entries.
func (v *TreeValue) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.entries)
	default:
		return 0
	}
}

// Get returns the map entry for key, or nil when absent or the node is not
// a map.
func (v *TreeValue) Get(key string) *TreeValue {
	if v.kind != KindMap {
		return nil
	}
	return v.entries[key]
}

// Keys returns the map keys in sorted order, for deterministic diagnostics.
func (v *TreeValue) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.entries))
	for k := range v.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Attr returns the named XML attribute and whether it is present.
func (v *TreeValue) Attr(name string) (string, bool) {
	val, ok := v.attrs[name]
	return val, ok
}

// HasAttrs reports whether the node carries any XML attributes.
func (v *TreeValue) HasAttrs() bool {
	return len(v.attrs) > 0
}

func copyAttrs(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
