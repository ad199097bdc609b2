package xmlforge

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Disambiguation selects between an XML attribute and inline text content
// when both could carry a field's value.
type Disambiguation struct {
	attr string
}

// TextContent resolves to the node's scalar text.
var TextContent = Disambiguation{}

// PreferAttribute resolves to the named attribute; absent attribute means
// absent value, no fallback to text.
func PreferAttribute(name string) Disambiguation {
	return Disambiguation{attr: name}
}

type cachedLeaf struct {
	value   string
	present bool
}

// Extractor resolves extraction paths against parsed documents. Resolution
// never errors; every failure mode normalizes to an absent result.
//
// Resolved leaf values are memoized per (document ID, path, disambiguation)
// in a fixed-size LRU cache. The cache stores scalar copies only, never node
// references, and is a pure optimization: clearing it at any point changes
// nothing but latency. Safe for concurrent use.
type Extractor struct {
	cache *lru.Cache[string, cachedLeaf]
}

const defaultCacheSize = 4096

// NewExtractor creates an extractor with the default cache size.
func NewExtractor() *Extractor {
	return NewExtractorWithCacheSize(defaultCacheSize)
}

// NewExtractorWithCacheSize creates an extractor with an explicit memo
// capacity. Sizes below 1 disable memoization entirely.
func NewExtractorWithCacheSize(size int) *Extractor {
	if size < 1 {
		return &Extractor{}
	}
	cache, err := lru.New[string, cachedLeaf](size)
	if err != nil {
		return &Extractor{}
	}
	return &Extractor{cache: cache}
}

// ClearCache drops every memoized value. Never required for correctness.
func (x *Extractor) ClearCache() {
	if x.cache != nil {
		x.cache.Purge()
	}
}

// Resolve walks path against the document and returns the reached node, or
// nil when any step does not apply: a key against a non-map, an index
// against a non-list, an out-of-range index, a missing key.
func (x *Extractor) Resolve(doc *Document, path Path) *TreeValue {
	if doc == nil || doc.Root == nil {
		return nil
	}
	node := doc.Root
	for _, seg := range path.segments {
		if node == nil {
			return nil
		}
		if seg.isIndex {
			node = node.At(seg.index)
		} else {
			node = node.Get(seg.key)
		}
	}
	return node
}

// ExtractText resolves path and reduces the reached node to a scalar string
// under the given disambiguation rule. The second return is false when the
// value is absent; empty strings normalize to absent so optional fields
// never surface "" as a real value.
func (x *Extractor) ExtractText(doc *Document, path Path, d Disambiguation) (string, bool) {
	cacheKey := ""
	if x.cache != nil && doc != nil {
		cacheKey = doc.ID + "|" + path.CacheKey() + "|@" + d.attr
		if leaf, ok := x.cache.Get(cacheKey); ok {
			return leaf.value, leaf.present
		}
	}

	value, present := x.extractText(doc, path, d)

	if cacheKey != "" {
		x.cache.Add(cacheKey, cachedLeaf{value: value, present: present})
	}
	return value, present
}

func (x *Extractor) extractText(doc *Document, path Path, d Disambiguation) (string, bool) {
	node := x.Resolve(doc, path)
	if node == nil {
		return "", false
	}

	if d.attr != "" {
		val, ok := node.Attr(d.attr)
		if !ok || val == "" {
			return "", false
		}
		return val, true
	}

	if node.Kind() != KindScalar {
		return "", false
	}
	if node.Scalar() == "" {
		return "", false
	}
	return node.Scalar(), true
}
