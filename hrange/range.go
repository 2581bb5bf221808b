package hrange

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	"github.com/hupe1980/meshgo/core"
	"github.com/hupe1980/meshgo/handle"
)

// pair is a closed interval [first, last] of handles.
type pair struct {
	first, last handle.Handle
}

// Range is an ordered set of handles stored as sorted, disjoint, maximal
// intervals. Structured meshes produce long contiguous handle runs, so a
// Range over millions of entities usually holds a handful of pairs.
//
// The zero value is an empty Range ready to use. Range is not safe for
// concurrent mutation.
type Range struct {
	pairs []pair
}

// New returns an empty Range.
func New() *Range {
	return &Range{}
}

// Of returns a Range holding the given handles.
func Of(hs ...handle.Handle) *Range {
	return FromSlice(hs)
}

// FromSlice builds a Range from an unordered slice of handles.
func FromSlice(hs []handle.Handle) *Range {
	sorted := slices.Clone(hs)
	slices.Sort(sorted)
	r := &Range{}
	for _, h := range sorted {
		r.Insert(h)
	}
	return r
}

// Span returns a Range holding [first, last].
func Span(first, last handle.Handle) *Range {
	r := &Range{}
	r.InsertRange(first, last)
	return r
}

// search returns the index of the first pair whose last >= h.
func (r *Range) search(h handle.Handle) int {
	return sort.Search(len(r.pairs), func(i int) bool { return r.pairs[i].last >= h })
}

// Insert adds h. Appending past the back is O(1); other inserts are
// O(log n) plus the cost of shifting pairs.
func (r *Range) Insert(h handle.Handle) {
	r.InsertRange(h, h)
}

// InsertRange adds every handle in [first, last]. Neighbouring or
// overlapping pairs are merged so the representation stays maximal.
func (r *Range) InsertRange(first, last handle.Handle) {
	if first > last {
		first, last = last, first
	}
	n := len(r.pairs)
	// Fast path: append or extend at the back.
	if n == 0 || first > r.pairs[n-1].last {
		if n > 0 && r.pairs[n-1].last+1 == first {
			r.pairs[n-1].last = last
			return
		}
		r.pairs = append(r.pairs, pair{first, last})
		return
	}

	// i: first pair that overlaps or touches [first, last] from the left.
	i := r.search(first)
	if i > 0 && r.pairs[i-1].last+1 == first {
		i--
	}
	// j: one past the last pair that overlaps or touches from the right.
	j := i
	for j < n && (r.pairs[j].first <= last || (last < ^handle.Handle(0) && r.pairs[j].first == last+1)) {
		j++
	}
	if i == j {
		r.pairs = slices.Insert(r.pairs, i, pair{first, last})
		return
	}
	merged := pair{min(first, r.pairs[i].first), max(last, r.pairs[j-1].last)}
	r.pairs[i] = merged
	r.pairs = slices.Delete(r.pairs, i+1, j)
}

// Erase removes h. It reports whether h was present.
func (r *Range) Erase(h handle.Handle) bool {
	if !r.Contains(h) {
		return false
	}
	r.EraseRange(h, h)
	return true
}

// EraseRange removes every handle in [first, last], splitting pairs as
// needed.
func (r *Range) EraseRange(first, last handle.Handle) {
	if first > last {
		first, last = last, first
	}
	i := r.search(first)
	if i == len(r.pairs) || r.pairs[i].first > last {
		return
	}
	j := i
	for j < len(r.pairs) && r.pairs[j].first <= last {
		j++
	}
	lo, hi := r.pairs[i], r.pairs[j-1]
	var keep [2]pair
	n := 0
	if lo.first < first {
		keep[n] = pair{lo.first, first - 1}
		n++
	}
	if hi.last > last {
		keep[n] = pair{last + 1, hi.last}
		n++
	}
	r.pairs = slices.Replace(r.pairs, i, j, keep[:n]...)
}

// Contains reports whether h is in the range in O(log n).
func (r *Range) Contains(h handle.Handle) bool {
	i := r.search(h)
	return i < len(r.pairs) && r.pairs[i].first <= h
}

// ContainsRange reports whether every handle in [first, last] is present.
func (r *Range) ContainsRange(first, last handle.Handle) bool {
	i := r.search(first)
	return i < len(r.pairs) && r.pairs[i].first <= first && r.pairs[i].last >= last
}

// Size returns the number of handles.
func (r *Range) Size() int {
	var n uint64
	for _, p := range r.pairs {
		n += uint64(p.last-p.first) + 1
	}
	return int(n)
}

// Empty reports whether the range holds no handles.
func (r *Range) Empty() bool { return len(r.pairs) == 0 }

// PairCount returns the number of stored intervals.
func (r *Range) PairCount() int { return len(r.pairs) }

// Clear removes all handles.
func (r *Range) Clear() { r.pairs = r.pairs[:0] }

// Front returns the smallest handle, or handle.Null if empty.
func (r *Range) Front() handle.Handle {
	if len(r.pairs) == 0 {
		return handle.Null
	}
	return r.pairs[0].first
}

// Back returns the largest handle, or handle.Null if empty.
func (r *Range) Back() handle.Handle {
	if len(r.pairs) == 0 {
		return handle.Null
	}
	return r.pairs[len(r.pairs)-1].last
}

// All yields every handle in ascending order. The sequence is restartable.
func (r *Range) All() iter.Seq[handle.Handle] {
	return func(yield func(handle.Handle) bool) {
		for _, p := range r.pairs {
			for h := p.first; ; h++ {
				if !yield(h) {
					return
				}
				if h == p.last {
					break
				}
			}
		}
	}
}

// Backward yields every handle in descending order.
func (r *Range) Backward() iter.Seq[handle.Handle] {
	return func(yield func(handle.Handle) bool) {
		for i := len(r.pairs) - 1; i >= 0; i-- {
			p := r.pairs[i]
			for h := p.last; ; h-- {
				if !yield(h) {
					return
				}
				if h == p.first {
					break
				}
			}
		}
	}
}

// Pairs yields the stored intervals in ascending order.
func (r *Range) Pairs() iter.Seq2[handle.Handle, handle.Handle] {
	return func(yield func(handle.Handle, handle.Handle) bool) {
		for _, p := range r.pairs {
			if !yield(p.first, p.last) {
				return
			}
		}
	}
}

// Slice materializes the range. Prefer All for large ranges.
func (r *Range) Slice() []handle.Handle {
	out := make([]handle.Handle, 0, r.Size())
	for h := range r.All() {
		out = append(out, h)
	}
	return out
}

// Clone returns a deep copy.
func (r *Range) Clone() *Range {
	return &Range{pairs: slices.Clone(r.pairs)}
}

// Equal reports whether both ranges hold the same handles.
func (r *Range) Equal(other *Range) bool {
	return slices.Equal(r.pairs, other.pairs)
}

// Merge inserts every handle of other into r.
func (r *Range) Merge(other *Range) {
	if other.Empty() {
		return
	}
	if r.Empty() || other.pairs[0].first > r.Back() {
		for _, p := range other.pairs {
			r.InsertRange(p.first, p.last)
		}
		return
	}
	r.pairs = Union(r, other).pairs
}

// Validate checks the interval invariant: pairs are well formed, sorted,
// disjoint and maximal.
func (r *Range) Validate() error {
	for i, p := range r.pairs {
		if p.first > p.last {
			return fmt.Errorf("%w: pair %d reversed [%d,%d]", core.ErrInvalidArgument, i, p.first, p.last)
		}
		if i > 0 && r.pairs[i-1].last+1 >= p.first {
			return fmt.Errorf("%w: pair %d not disjoint/maximal", core.ErrInvalidArgument, i)
		}
	}
	return nil
}

// String returns a compact representation such as "[Hex#1-Hex#8, Hex#10]".
func (r *Range) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range r.pairs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.first.String())
		if p.last != p.first {
			sb.WriteByte('-')
			sb.WriteString(p.last.String())
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
