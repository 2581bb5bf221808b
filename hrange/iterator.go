package hrange

import "github.com/hupe1980/meshgo/handle"

// Iterator is a restartable cursor over a Range. It reads the Range lazily;
// mutating the Range invalidates the cursor until Reset is called.
type Iterator struct {
	r       *Range
	pair    int
	next    handle.Handle
	reverse bool
}

// Iter returns a forward cursor positioned before the first handle.
func (r *Range) Iter() *Iterator {
	it := &Iterator{r: r}
	it.Reset()
	return it
}

// ReverseIter returns a cursor that walks the range from back to front.
func (r *Range) ReverseIter() *Iterator {
	it := &Iterator{r: r, reverse: true}
	it.Reset()
	return it
}

// Reset rewinds the cursor.
func (it *Iterator) Reset() {
	if it.reverse {
		it.pair = len(it.r.pairs) - 1
		if it.pair >= 0 {
			it.next = it.r.pairs[it.pair].last
		}
		return
	}
	it.pair = 0
	if len(it.r.pairs) > 0 {
		it.next = it.r.pairs[0].first
	}
}

// Next returns the next handle and false once the range is exhausted.
func (it *Iterator) Next() (handle.Handle, bool) {
	if it.pair < 0 || it.pair >= len(it.r.pairs) {
		return handle.Null, false
	}
	h := it.next
	p := it.r.pairs[it.pair]
	if it.reverse {
		if h == p.first {
			it.pair--
			if it.pair >= 0 {
				it.next = it.r.pairs[it.pair].last
			}
		} else {
			it.next--
		}
		return h, true
	}
	if h == p.last {
		it.pair++
		if it.pair < len(it.r.pairs) {
			it.next = it.r.pairs[it.pair].first
		}
	} else {
		it.next++
	}
	return h, true
}
