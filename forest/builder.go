package forest

import (
	"fmt"

	"github.com/halvar-voss/earleyforest/chart"
	"github.com/halvar-voss/earleyforest/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'earleyforest.forest'.
func tracer() tracing.Trace {
	return tracing.Select("earleyforest.forest")
}

// Build reconstructs every parse tree a completed chart admits, rooted at
// g's user-declared start nonterminal (the Γ sentinel itself never
// appears in the returned trees).
//
// ch must already have had chart.Chart.RetainCompleted applied — Build
// does not apply the post-pass itself; earleyforest.Parse applies it
// exactly once, between earley.Recognize and Build.
//
// Build cannot fail on a chart that actually admits a derivation: forest
// construction cannot fail once recognition has succeeded. The error
// return exists only to surface a chart that was not actually
// post-processed into a completed chart, i.e. caller misuse.
func Build(g *grammar.Grammar, ch *chart.Chart, tokens []chart.Token) ([]*Tree, error) {
	b := &builder{g: g, ch: ch, tokens: tokens, memo: make(map[itemKey][][]*Tree), byEnd: make(map[int]map[nameStart][]chart.Item)}
	last := ch.Column(ch.Len() - 1)
	var roots []*Tree
	for i := 0; i < last.Len(); i++ {
		item := last.At(i)
		if item.Name != g.StartSentinel() || item.Start != 0 {
			continue
		}
		for _, assignment := range b.childrenOf(item) {
			// Γ's single production is [Rule(start)]: exactly one child,
			// itself already the root Tree of the user's start symbol.
			roots = append(roots, assignment[0])
		}
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("forest: chart has no completed derivation rooted at %q; was RetainCompleted applied?", g.StartSentinel())
	}
	tracer().Infof("reconstructed %d tree(s)", len(roots))
	return roots, nil
}

// itemKey identifies an item for memoization: (name, production, start,
// end). Unlike the chart package's column-insertion dedup key, end
// participates here — children_of is a function of the exact span an item
// covers, not just where it began.
type itemKey struct {
	name  string
	prod  int
	start int
	end   int
}

func keyOf(it chart.Item) itemKey {
	return itemKey{it.Name, it.ProdIndex, it.Start, it.End}
}

// nameStart identifies completed items of a given nonterminal starting at
// a given column, within one end-column's index.
type nameStart struct {
	name  string
	start int
}

// builder holds the memo table and a per-end-column index of completed
// items, built lazily. The index plays the role of gorgo/lr/sppf's
// two-level searchTree (end, then start) for symbol nodes: both exist to
// avoid linearly rescanning a column for every candidate split.
type builder struct {
	g      *grammar.Grammar
	ch     *chart.Chart
	tokens []chart.Token
	memo   map[itemKey][][]*Tree
	byEnd  map[int]map[nameStart][]chart.Item
}

func (b *builder) index(end int) map[nameStart][]chart.Item {
	if idx, ok := b.byEnd[end]; ok {
		return idx
	}
	col := b.ch.Column(end)
	idx := make(map[nameStart][]chart.Item, col.Len())
	for i := 0; i < col.Len(); i++ {
		it := col.At(i)
		ns := nameStart{it.Name, it.Start}
		idx[ns] = append(idx[ns], it)
	}
	b.byEnd[end] = idx
	return idx
}

// childrenOf returns every valid assignment of children trees for item,
// one []*Tree per distinct derivation. Results are memoized by item
// identity; a cyclic ε-derivation (A ⇒* A) is broken by seeding the memo
// with an empty result before recursing into item's own production.
func (b *builder) childrenOf(item chart.Item) [][]*Tree {
	k := keyOf(item)
	if v, ok := b.memo[k]; ok {
		return v
	}
	b.memo[k] = nil // cycle guard: any re-entrant lookup sees "no assignments yet"
	result := b.expand(item.Production(b.g), 0, item.Start, item.End)
	b.memo[k] = result
	return result
}

// expand enumerates every assignment of children for syms[m:], starting at
// column pos, that reaches exactly column hi: the cross-product step.
// Terminals consume exactly one token in place; nonterminals fan out over
// every completed item of the right name and start, each of which itself
// fans out over its own childrenOf.
func (b *builder) expand(syms grammar.Production, m, pos, hi int) [][]*Tree {
	if m == len(syms) {
		if pos == hi {
			return [][]*Tree{{}}
		}
		return nil
	}
	sym := syms[m]
	if sym.IsTerminal() {
		return b.expandTerminal(syms, m, pos, hi, sym)
	}
	return b.expandNonterminal(syms, m, pos, hi, sym)
}

func (b *builder) expandTerminal(syms grammar.Production, m, pos, hi int, sym grammar.Symbol) [][]*Tree {
	if pos >= hi || pos >= len(b.tokens) || b.tokens[pos].Kind != sym.TermKind() {
		return nil
	}
	leaf := Leaf(b.tokens[pos])
	rest := b.expand(syms, m+1, pos+1, hi)
	return prepend(leaf, rest)
}

func (b *builder) expandNonterminal(syms grammar.Production, m, pos, hi int, sym grammar.Symbol) [][]*Tree {
	var out [][]*Tree
	for end := pos; end <= hi; end++ {
		candidates := b.index(end)[nameStart{sym.Name(), pos}]
		if len(candidates) == 0 {
			continue
		}
		// rest depends only on (m+1, end, hi), not on which candidate item
		// or which of its own child-assignments we pick, so it is computed
		// once per split position rather than once per candidate.
		rest := b.expand(syms, m+1, end, hi)
		if len(rest) == 0 {
			continue
		}
		for _, candidate := range candidates {
			for _, childAssignment := range b.childrenOf(candidate) {
				node := Node(sym.Name(), childAssignment)
				out = append(out, prepend(node, rest)...)
			}
		}
	}
	return out
}

// prepend returns, for each assignment in rest, a new assignment with
// head prepended. If rest is empty (no valid completions), prepend
// contributes nothing — a dead end does not yield a degenerate tree.
func prepend(head *Tree, rest [][]*Tree) [][]*Tree {
	if len(rest) == 0 {
		return nil
	}
	out := make([][]*Tree, len(rest))
	for i, r := range rest {
		combined := make([]*Tree, 0, len(r)+1)
		combined = append(combined, head)
		combined = append(combined, r...)
		out[i] = combined
	}
	return out
}
