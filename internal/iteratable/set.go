/*
Package iteratable implements iteratable container data structures.

Set is a special-purpose set type, suitable mainly for implementing
algorithms around scanners, parsers, etc. These kinds of algorithms are
often more straightforward to describe as set constructions and operations.

Add mutates the set in place; Snapshot and Subset leave it unchanged and
return copies.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package iteratable

// entry pairs a caller-supplied dedup key with the value stored under it.
// Earley-item dedup keys are opaque hashes (see package chart), so Set
// never compares values itself — only keys.
type entry struct {
	key string
	val interface{}
}

// Set is a deduplicated, insertion-ordered container. Insertion order is
// preserved because callers (the Earley driver, chiefly) iterate a Set by
// growing index while appending to it, and rely on first-discovery order
// for deterministic output.
type Set struct {
	entries []entry
	index   map[string]int
}

// NewSet returns an empty Set, optionally pre-sized for capacityHint
// elements.
func NewSet(capacityHint int) *Set {
	return &Set{
		entries: make([]entry, 0, capacityHint),
		index:   make(map[string]int, capacityHint),
	}
}

// Add inserts val under key unless key is already present. It reports
// whether the element was newly added.
func (s *Set) Add(key string, val interface{}) bool {
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, entry{key, val})
	return true
}

// Len returns the number of elements currently in the set.
func (s *Set) Len() int {
	return len(s.entries)
}

// At returns the element at position i, in insertion order. Valid only for
// 0 <= i < Len(); callers that grow the set while iterating must reread
// Len() each step rather than caching it.
func (s *Set) At(i int) interface{} {
	return s.entries[i].val
}

// Each calls fn once for every element, in insertion order. fn must not
// mutate the set; use a growing-index loop via At/Len instead when the
// callback may insert.
func (s *Set) Each(fn func(val interface{})) {
	for _, e := range s.entries {
		fn(e.val)
	}
}

// Snapshot returns an independent copy of the set's elements as they stand
// right now, in insertion order. Needed wherever iteration must not
// observe insertions made during that same iteration — the Earley
// completer snapshots its origin column for exactly this reason.
func (s *Set) Snapshot() []interface{} {
	out := make([]interface{}, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.val
	}
	return out
}

// Subset returns a new Set containing only the elements for which pred
// returns true, preserving insertion order.
func (s *Set) Subset(pred func(val interface{}) bool) *Set {
	out := NewSet(0)
	for _, e := range s.entries {
		if pred(e.val) {
			out.Add(e.key, e.val)
		}
	}
	return out
}
