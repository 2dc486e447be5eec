/*
Package chart implements the recognizer's working-state data model: Earley
items, the columns (one per token boundary) that hold them, and the
completed chart those columns form once recognition saturates.

This package holds data only — no predict/scan/complete logic lives here
(see package earley for the recognizer driver, and package forest for the
tree reconstruction that consumes a completed Chart). Keeping the model
separate from both its producer and its consumer is what lets the
recognizer and the forest builder depend on a shared vocabulary without
depending on each other.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package chart

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/halvar-voss/earleyforest/grammar"
	"github.com/halvar-voss/earleyforest/internal/iteratable"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'earleyforest.chart'.
func tracer() tracing.Trace {
	return tracing.Select("earleyforest.chart")
}

// OpenEnd marks an Earley item whose end column is not yet known (the item
// is still active, dot short of the end of its production).
const OpenEnd = -1

// Token is an opaque input record. Only Kind participates in recognition;
// Raw and Position pass through unexamined to leaves of a reconstructed
// parse tree.
type Token struct {
	Kind     string
	Raw      string
	Position Span
}

// Span denotes a half-open interval (x…y) of token positions.
type Span [2]int

// From returns the start value of a span.
func (s Span) From() int { return s[0] }

// To returns the end value of a span.
func (s Span) To() int { return s[1] }

// Item is an EarleyItem: (name, production, dot, start, end). It records
// that `name` is being recognized via the production at ProdIndex, with
// Dot symbols of it matched so far, starting recognition at column Start.
// End is OpenEnd while the item is still active.
type Item struct {
	Name      string
	ProdIndex int
	Dot       int
	Start     int
	End       int
}

// Production looks up the production this item walks, via g.
func (it Item) Production(g *grammar.Grammar) grammar.Production {
	return g.Production(it.Name, it.ProdIndex)
}

// Completed reports whether the dot has reached the end of the item's
// production, i.e. the item is a completed item.
func (it Item) Completed(g *grammar.Grammar) bool {
	return it.Dot == len(it.Production(g))
}

// NextSymbol returns the symbol just after the dot, and true, or the zero
// Symbol and false if the item is completed.
func (it Item) NextSymbol(g *grammar.Grammar) (grammar.Symbol, bool) {
	p := it.Production(g)
	if it.Dot >= len(p) {
		return grammar.Symbol{}, false
	}
	return p[it.Dot], true
}

// Advance returns a copy of it with the dot moved one symbol to the right.
func (it Item) Advance() Item {
	it.Dot++
	return it
}

// key computes the deduplication key for it: two items are equal for
// deduplication purposes by (name, production identity, dot, start) only —
// end does not participate, since an item's end column is only known once
// it completes. Reuses cnf/structhash for this, the same library
// gorgo/lr/earley.hash() uses to key completion backlinks; here it keys
// every column insertion, not just backlinks.
func (it Item) key() string {
	h, err := structhash.Hash(struct {
		Name  string
		Prod  int
		Dot   int
		Start int
	}{it.Name, it.ProdIndex, it.Dot, it.Start}, 1)
	if err != nil {
		// structhash only fails on unhashable types; our key struct is
		// plain scalars, so this is unreachable in practice.
		panic(err)
	}
	return h
}

func (it Item) String(g *grammar.Grammar) string {
	p := it.Production(g)
	s := it.Name + " →"
	for i, sym := range p {
		if i == it.Dot {
			s += " •"
		}
		s += " " + sym.String()
	}
	if it.Dot == len(p) {
		s += " •"
	}
	end := "?"
	if it.End != OpenEnd {
		end = fmt.Sprint(it.End)
	}
	return fmt.Sprintf("[%s, %d…%s]", s, it.Start, end)
}

// Column holds the deduplicated, insertion-ordered set of items discovered
// at one token boundary. There are N+1 columns for N tokens.
type Column struct {
	Index int
	// Kind is the terminal kind of the token just before this column, or
	// the sentinel "^" at index 0.
	Kind string
	set  *iteratable.Set
}

// NewColumn returns an empty column for the given index and preceding
// token kind.
func NewColumn(index int, kind string) *Column {
	return &Column{Index: index, Kind: kind, set: iteratable.NewSet(8)}
}

// Add inserts item into the column unless an equal item (by dedup key) is
// already present. It returns true if the item was newly added.
func (c *Column) Add(item Item) bool {
	return c.set.Add(item.key(), item)
}

// Len returns the number of items currently in the column. Columns only
// grow during recognition, so callers drive a growing-index loop against
// Len rather than taking a fixed-length range over Items().
func (c *Column) Len() int {
	return c.set.Len()
}

// At returns the item at position i, in discovery order.
func (c *Column) At(i int) Item {
	return c.set.At(i).(Item)
}

// Items returns the column's items in discovery order.
func (c *Column) Items() []Item {
	out := make([]Item, 0, c.set.Len())
	c.set.Each(func(v interface{}) { out = append(out, v.(Item)) })
	return out
}

// Snapshot returns an independent copy of the column's items as they stand
// right now. The Earley completer must call this on the origin column
// before iterating it, because completing an item may insert new items
// into that very column (typically for ε-completions, where start==end) —
// iteration must not observe items inserted during the same completer
// call.
func (c *Column) Snapshot() []Item {
	vals := c.set.Snapshot()
	out := make([]Item, len(vals))
	for i, v := range vals {
		out[i] = v.(Item)
	}
	return out
}

// retainCompleted discards in-progress items, keeping only items whose dot
// has reached the end of their production. Applied once per column after
// the whole chart has saturated.
func (c *Column) retainCompleted(g *grammar.Grammar) {
	kept := c.set.Subset(func(v interface{}) bool {
		return v.(Item).Completed(g)
	})
	final := iteratable.NewSet(kept.Len())
	for i := 0; i < kept.Len(); i++ {
		it := kept.At(i).(Item)
		it.End = c.Index
		final.Add(it.key(), it)
	}
	c.set = final
}

// Chart is the recognizer's complete working state: one Column per token
// boundary, 0..=N for N tokens.
type Chart struct {
	Columns []*Column
}

// Column returns the column at index i.
func (ch *Chart) Column(i int) *Column {
	return ch.Columns[i]
}

// Len returns the number of columns (always N+1 for N tokens).
func (ch *Chart) Len() int {
	return len(ch.Columns)
}

// RetainCompleted discards, in every column, all items that are not
// completed. Called once after the chart has fully saturated; the forest
// builder only ever sees the completed chart this produces.
func (ch *Chart) RetainCompleted(g *grammar.Grammar) {
	for _, c := range ch.Columns {
		c.retainCompleted(g)
	}
}

// Dump logs every item of every column at Debug level, mirroring
// gorgo/lr/earley/debug.go's dumpState/itemSetString helpers. The
// diagnostic entry point earleyforest.Chart calls it before returning the
// completed chart.
func (ch *Chart) Dump(g *grammar.Grammar) {
	for _, c := range ch.Columns {
		tracer().Debugf("--- column %04d (%q) ---", c.Index, c.Kind)
		for i, it := range c.Items() {
			tracer().Debugf("[%2d] %s", i, it.String(g))
		}
	}
}
