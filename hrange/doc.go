// Package hrange provides Range, a run-length compressed ordered set of
// entity handles.
//
// A Range stores sorted, disjoint, maximal [first, last] intervals. Insert
// merges neighbouring intervals, Erase splits them, and set algebra (Union,
// Intersect, Subtract) runs in O(n+m) over the interval lists. Queries
// return Ranges so that bulk-created entities, which receive contiguous
// handles, are never materialized one by one:
//
//	r := hrange.New()
//	r.InsertRange(first, last) // one pair, however many handles
//	for h := range r.All() {
//	    // ...
//	}
package hrange
