/*
Package earleyforest implements a general-purpose Earley-style chart parser.

Given a context-free grammar (package grammar) and an already-lexed token
stream, it produces the set of all valid derivations (a parse forest, see
package forest) under that grammar. The recognizer (package earley) copes
directly with ambiguous and left-recursive grammars; the forest builder
recovers every parse tree the completed chart admits, not just one.

Earley's algorithm for parsing arbitrary context-free grammars has been
known since 1968. A very accessible discussion of both the recognizer and
forest reconstruction may be found in "Parsing Techniques" by Dick Grune
and Ceriel J.H. Jacobs, section 7.2, and in Loup Vaillant's "Earley Parsing
Explained" (http://loup-vaillant.fr/tutorials/earley-parsing/).

Lexing, grammar-builder ergonomics, tree rendering and CLI harnesses are
explicitly out of scope for this module: it consumes an already-compiled
*grammar.Grammar and an already-lexed []chart.Token, and hands back
[]*forest.Tree or a structured error.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package earleyforest

import (
	"github.com/halvar-voss/earleyforest/chart"
	"github.com/halvar-voss/earleyforest/earley"
	"github.com/halvar-voss/earleyforest/forest"
	"github.com/halvar-voss/earleyforest/grammar"
)

// Token and Span are re-exported from package chart, the data model shared
// by the recognizer and the forest builder, so that the common case never
// needs an explicit import of chart.
type (
	Token = chart.Token
	Span  = chart.Span
)

// Parse drives the Earley recognizer to saturation over tokens under
// grammar g and, on success, reconstructs every parse tree rooted at g's
// start nonterminal.
//
// On failure it returns a *earley.RecognitionError (tokens were rejected)
// and a nil tree slice; there is no partial result. Ill-formed grammars
// never reach Parse: grammar.Compile rejects them with a
// *grammar.GrammarError. On success the returned slice is never empty: a
// unique parse is simply a slice of length one.
func Parse(g *grammar.Grammar, tokens []Token) ([]*forest.Tree, error) {
	ch, err := earley.Recognize(g, tokens)
	if err != nil {
		return nil, err
	}
	ch.RetainCompleted(g)
	return forest.Build(g, ch, tokens)
}

// Chart drives the Earley recognizer to saturation and returns the
// completed chart, without attempting forest reconstruction. It exists as
// a diagnostic aid for callers who want to inspect the recognizer's
// working state directly; it logs the completed chart via chart.Chart.Dump
// before returning it.
func Chart(g *grammar.Grammar, tokens []Token) (*chart.Chart, error) {
	ch, err := earley.Recognize(g, tokens)
	if err != nil {
		return nil, err
	}
	ch.RetainCompleted(g)
	ch.Dump(g)
	return ch, nil
}
