package scan

import (
	"sort"

	"relint/internal/source"
)

// Index wraps a sorted zone partition with O(log n) point queries.
// Every consumer that needs to know "is this offset code / string / comment"
// goes through an Index so the heuristics live in one place.
type Index struct {
	file  *source.File
	zones []Zone
}

// NewIndex classifies the file and builds the query structure.
func NewIndex(f *source.File) *Index {
	return &Index{file: f, zones: Classify(f)}
}

// IndexFromZones rebuilds an index from a partition computed earlier for
// content identical to f's, rebinding every zone to f. The input slice
// is not modified.
func IndexFromZones(f *source.File, zones []Zone) *Index {
	bound := make([]Zone, len(zones))
	for i, z := range zones {
		z.Span.File = f.ID
		bound[i] = z
	}
	return &Index{file: f, zones: bound}
}

// Zones returns the partition in offset order.
// Callers must not modify the returned slice.
func (x *Index) Zones() []Zone {
	return x.zones
}

// File returns the file this index classifies.
func (x *Index) File() *source.File {
	return x.file
}

// ZoneAt returns the zone containing the offset. ok is false when the offset
// lies at or past end of file.
func (x *Index) ZoneAt(off uint32) (Zone, bool) {
	i := sort.Search(len(x.zones), func(i int) bool {
		return x.zones[i].Span.End > off
	})
	if i >= len(x.zones) || off < x.zones[i].Span.Start {
		return Zone{}, false
	}
	return x.zones[i], true
}

// KindAt returns the zone kind at the offset, defaulting to ZoneCode past EOF.
func (x *Index) KindAt(off uint32) ZoneKind {
	z, ok := x.ZoneAt(off)
	if !ok {
		return ZoneCode
	}
	return z.Kind
}

// InCode reports whether the offset lies in plain code text.
func (x *Index) InCode(off uint32) bool {
	return x.KindAt(off) == ZoneCode
}

// CommentZones returns only the comment zones, in offset order.
func (x *Index) CommentZones() []Zone {
	out := make([]Zone, 0, 4)
	for _, z := range x.zones {
		if z.Kind.IsComment() {
			out = append(out, z)
		}
	}
	return out
}

// CodeZones returns only the plain code zones, in offset order.
func (x *Index) CodeZones() []Zone {
	out := make([]Zone, 0, len(x.zones))
	for _, z := range x.zones {
		if z.Kind == ZoneCode {
			out = append(out, z)
		}
	}
	return out
}
