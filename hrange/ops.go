package hrange

import (
	"github.com/hupe1980/meshgo/handle"
)

// appendPair appends p to out, merging with the previous pair if they touch.
func appendPair(out []pair, p pair) []pair {
	if n := len(out); n > 0 && out[n-1].last+1 >= p.first {
		if p.last > out[n-1].last {
			out[n-1].last = p.last
		}
		return out
	}
	return append(out, p)
}

// Union returns a new Range holding the handles of a or b in O(n+m).
func Union(a, b *Range) *Range {
	out := make([]pair, 0, len(a.pairs)+len(b.pairs))
	i, j := 0, 0
	for i < len(a.pairs) || j < len(b.pairs) {
		var p pair
		switch {
		case j == len(b.pairs):
			p = a.pairs[i]
			i++
		case i == len(a.pairs):
			p = b.pairs[j]
			j++
		case a.pairs[i].first <= b.pairs[j].first:
			p = a.pairs[i]
			i++
		default:
			p = b.pairs[j]
			j++
		}
		out = appendPair(out, p)
	}
	return &Range{pairs: out}
}

// Intersect returns a new Range holding the handles in both a and b in O(n+m).
func Intersect(a, b *Range) *Range {
	var out []pair
	i, j := 0, 0
	for i < len(a.pairs) && j < len(b.pairs) {
		pa, pb := a.pairs[i], b.pairs[j]
		lo, hi := max(pa.first, pb.first), min(pa.last, pb.last)
		if lo <= hi {
			out = append(out, pair{lo, hi})
		}
		if pa.last < pb.last {
			i++
		} else {
			j++
		}
	}
	return &Range{pairs: out}
}

// Subtract returns a new Range holding the handles of a that are not in b
// in O(n+m).
func Subtract(a, b *Range) *Range {
	var out []pair
	j := 0
	for _, p := range a.pairs {
		cur := p.first
		for j < len(b.pairs) && b.pairs[j].last < cur {
			j++
		}
		covered := false
		for k := j; k < len(b.pairs) && b.pairs[k].first <= p.last; k++ {
			q := b.pairs[k]
			if q.first > cur {
				out = append(out, pair{cur, q.first - 1})
			}
			if q.last >= p.last {
				covered = true
				break
			}
			cur = q.last + 1
		}
		if !covered {
			out = append(out, pair{cur, p.last})
		}
	}
	return &Range{pairs: out}
}

// Sub returns the handles of r within [first, last].
func (r *Range) Sub(first, last handle.Handle) *Range {
	return Intersect(r, Span(first, last))
}

// SubsetByType returns the handles of r with type t.
func (r *Range) SubsetByType(t handle.Type) *Range {
	return r.Sub(handle.First(t), handle.Last(t))
}

// SubsetByDimension returns the handles of r with dimension d.
func (r *Range) SubsetByDimension(d int) *Range {
	first, last := handle.FirstOfDim(d), handle.LastOfDim(d)
	if first == handle.Null {
		return New()
	}
	return r.Sub(first, last)
}

// NumOfType counts the handles of type t without allocating.
func (r *Range) NumOfType(t handle.Type) int {
	return r.countWithin(handle.First(t), handle.Last(t))
}

// NumOfDimension counts the handles of dimension d without allocating.
func (r *Range) NumOfDimension(d int) int {
	first, last := handle.FirstOfDim(d), handle.LastOfDim(d)
	if first == handle.Null {
		return 0
	}
	return r.countWithin(first, last)
}

func (r *Range) countWithin(first, last handle.Handle) int {
	n := 0
	for i := r.search(first); i < len(r.pairs) && r.pairs[i].first <= last; i++ {
		p := r.pairs[i]
		n += int(min(p.last, last)-max(p.first, first)) + 1
	}
	return n
}

// AllOfOneType reports whether every handle in r shares one type.
func (r *Range) AllOfOneType() bool {
	return r.Empty() || r.Front().Type() == r.Back().Type()
}

// AllOfOneDimension reports whether every handle in r shares one dimension.
func (r *Range) AllOfOneDimension() bool {
	return r.Empty() || r.Front().Dim() == r.Back().Dim()
}
