package xmlforge

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of an extraction path: either a map key or a list
// index, never both.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key creates a map-key segment.
func Key(k string) Segment {
	return Segment{key: k}
}

// Index creates a list-index segment. Negative indices never resolve.
func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

// String renders the segment for cache keys and diagnostics. Indices carry
// a '#' prefix so Key("0") and Index(0) never collide in the canonical form.
func (s Segment) String() string {
	if s.isIndex {
		return "#" + strconv.Itoa(s.index)
	}
	return s.key
}

// Path is a non-empty ordered sequence of segments, immutable once built.
// Its canonical string form doubles as a cache key.
type Path struct {
	segments []Segment
	canon    string
}

// NewPath builds a path from segments. An empty segment list is a
// programming error and is rejected.
func NewPath(segments ...Segment) (Path, error) {
	if len(segments) == 0 {
		return Path{}, fmt.Errorf("extraction path must not be empty")
	}
	segs := make([]Segment, len(segments))
	copy(segs, segments)

	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return Path{segments: segs, canon: strings.Join(parts, "/")}, nil
}

// MustPath is NewPath for statically known paths, panicking on emptiness.
// Used by the field spec tables below, which are build-time constants.
func MustPath(segments ...Segment) Path {
	p, err := NewPath(segments...)
	if err != nil {
		panic(err)
	}
	return p
}

// Segments returns a copy of the path's segments.
func (p Path) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// CacheKey returns the canonical string form, unique per segment sequence.
func (p Path) CacheKey() string {
	return p.canon
}

func (p Path) String() string {
	return p.canon
}
