/*
Package earley implements the Earley recognizer driver: the predict/scan/
complete loop that saturates a Chart's columns, plus the structured error
the driver reports on rejection.

The driver is grounded directly on gorgo/lr/earley.Parser — its Parse/
setupNextState/innerLoop/scan/predict/complete structure — adapted so it
walks a grammar.Grammar and chart.Chart directly rather than an
LRAnalysis (gorgo's recognizer shares that type with its LR/GLR/SLR
backends; ours has only one backend, so it needs only the grammar's
nullable set, computed once at grammar.Compile time).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package earley

import (
	"fmt"

	"github.com/halvar-voss/earleyforest/chart"
	"github.com/halvar-voss/earleyforest/grammar"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'earleyforest.recognizer'.
func tracer() tracing.Trace {
	return tracing.Select("earleyforest.recognizer")
}

// rootSentinelKind is the synthetic terminal kind used for column 0's
// "preceding token", since column 0 has no actual preceding token.
const rootSentinelKind = "^"

// RecognitionError reports that the input was rejected: no completed item
// spanning the whole input, rooted at the start symbol, was found in the
// final column: the input was rejected.
type RecognitionError struct {
	// Furthest is the deepest column index the recognizer advanced a scan
	// into.
	Furthest int
	// Expected is the set of terminal kinds that would have been accepted
	// as the next token at column Furthest.
	Expected []string
}

func (e *RecognitionError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("unrecognized input: no valid token at position %d", e.Furthest)
	}
	return fmt.Sprintf("unrecognized input at position %d: expected one of %v", e.Furthest, e.Expected)
}

// Recognize drives the Earley recognizer to saturation over tokens under
// grammar g, and returns the saturated chart, in-progress items included.
// It does not apply the chart.Chart.RetainCompleted post-pass; callers that
// want the completed chart apply it themselves.
//
// On success, Recognize's caller (typically package earleyforest or
// package forest's Build) can rely on the final column containing at least
// one completed item rooted at g's Γ start rule spanning the whole input.
// On failure, Recognize returns a *RecognitionError and a nil chart; there
// is no partial result.
func Recognize(g *grammar.Grammar, tokens []chart.Token) (*chart.Chart, error) {
	g.Dump()
	furthest := 0
	columns := make([]*chart.Column, len(tokens)+1)
	columns[0] = chart.NewColumn(0, rootSentinelKind)
	for i := 1; i <= len(tokens); i++ {
		columns[i] = chart.NewColumn(i, tokens[i-1].Kind)
	}
	ch := &chart.Chart{Columns: columns}

	seed := chart.Item{Name: g.StartSentinel(), ProdIndex: 0, Dot: 0, Start: 0, End: chart.OpenEnd}
	columns[0].Add(seed)

	// All columns exist up front (their Kind is known from the token stream
	// alone) so that scan, which writes into column i+1 while saturating
	// column i, never targets a column that has not been created yet.
	for i := 0; i <= len(tokens); i++ {
		advanced := saturate(g, ch, i, tokens)
		if advanced {
			furthest = i + 1
		}
	}

	if !accepted(g, ch) {
		return nil, &RecognitionError{Furthest: furthest, Expected: expectedTerminals(g, ch.Column(furthest))}
	}
	return ch, nil
}

// saturate processes column i to a fixed point, applying scan/predict/
// complete to every item as it is discovered. It iterates by growing index
// rather than ranging over a snapshot, because predict and complete may
// append new items to the very column being iterated; dedup on insertion
// guarantees termination.
// It reports whether any token was successfully scanned into column i+1.
func saturate(g *grammar.Grammar, ch *chart.Chart, i int, tokens []chart.Token) (scanned bool) {
	col := ch.Column(i)
	for k := 0; k < col.Len(); k++ {
		item := col.At(k)
		if item.Completed(g) {
			complete(g, ch, i, item)
			continue
		}
		sym, _ := item.NextSymbol(g)
		if sym.IsTerminal() {
			if i < len(tokens) && tokens[i].Kind == sym.TermKind() {
				if ch.Column(i + 1).Add(item.Advance()) {
					scanned = true
				}
			}
			continue
		}
		predict(g, ch, i, item, sym)
	}
	return scanned
}

// predict implements the Predictor: for [A→…•B…, j] in Si, add [B→•α, i]
// to Si for every production α of B, ε-productions included. If B is
// nullable, also add [A→…B•…, j] to Si directly: the completer works from
// a snapshot of Si, so an item that starts waiting on B after B's ε-item
// was already completed would otherwise never be advanced past B.
func predict(g *grammar.Grammar, ch *chart.Chart, i int, item chart.Item, B grammar.Symbol) {
	rule, ok := g.Lookup(B.Name())
	if !ok {
		// grammar.Compile already rejected undefined nonterminals; this
		// cannot happen against a compiled Grammar.
		stuck(fmt.Sprintf("predict: undefined nonterminal %q survived grammar.Compile", B.Name()))
		return
	}
	col := ch.Column(i)
	for idx := range rule.Productions {
		col.Add(chart.Item{Name: B.Name(), ProdIndex: idx, Dot: 0, Start: i, End: chart.OpenEnd})
	}
	if g.DerivesEpsilon(B.Name()) {
		col.Add(item.Advance())
	}
}

// complete implements the Completer: for a completed item [A→…•, j] in Si,
// add [B→…A•…, k] to Si for every item [B→…•A…, k] found in Sj. The
// origin column is snapshotted before iterating it, because j may equal i
// (typical for ε-completions) and the iteration must not observe items
// inserted by this very call.
func complete(g *grammar.Grammar, ch *chart.Chart, i int, item chart.Item) {
	origin := ch.Column(item.Start)
	target := ch.Column(i)
	for _, candidate := range origin.Snapshot() {
		sym, ok := candidate.NextSymbol(g)
		if !ok || sym.IsTerminal() || sym.Name() != item.Name {
			continue
		}
		target.Add(candidate.Advance())
	}
}

// accepted reports whether the final column contains a completed item
// rooted at the start sentinel spanning the whole input.
func accepted(g *grammar.Grammar, ch *chart.Chart) bool {
	last := ch.Column(ch.Len() - 1)
	for i := 0; i < last.Len(); i++ {
		item := last.At(i)
		if item.Completed(g) && item.Name == g.StartSentinel() && item.Start == 0 {
			return true
		}
	}
	return false
}

// expectedTerminals collects the set of terminal kinds that would have
// been accepted as the next token at column c, derived from items in c
// whose next symbol is a terminal.
func expectedTerminals(g *grammar.Grammar, c *chart.Column) []string {
	seen := map[string]bool{}
	var out []string
	for i := 0; i < c.Len(); i++ {
		sym, ok := c.At(i).NextSymbol(g)
		if !ok || !sym.IsTerminal() {
			continue
		}
		if !seen[sym.TermKind()] {
			seen[sym.TermKind()] = true
			out = append(out, sym.TermKind())
		}
	}
	return out
}

// stuck reports a recognizer-internal invariant violation: a state the
// driver cannot itself recover from because it indicates a bug in the
// driver rather than a malformed input (grammar.Compile already rejected
// malformed grammars before Recognize ever runs). Mirrors
// gorgo/lr/earley/parsetree.go's "stuck" helper and its
// panic-on-parser-stuck configuration flag.
func stuck(msg string) {
	tracer().Errorf("earley: %s", msg)
	if gconf.GetBool("panic-on-recognizer-stuck") {
		panic("earleyforest: recognizer is stuck: " + msg)
	}
}
