/*
Package forest reconstructs every parse tree a completed Earley chart
admits: the shared-node intent of gorgo/lr/sppf's "Shared Packed Parse
Forest", but exposed as eagerly enumerated, independent logical trees
rather than a packed or/and-edge graph clients must walk with a pruning
cursor: callers need exhaustive enumeration of every derivation, not
disambiguation down to one.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package forest

import (
	"strings"

	"github.com/halvar-voss/earleyforest/chart"
)

// Kind distinguishes a leaf node (one token) from an internal node (a rule
// name plus an ordered list of children).
type Kind uint8

const (
	// KindLeaf marks a Tree holding a single matched Token.
	KindLeaf Kind = iota
	// KindNode marks a Tree holding a reduced nonterminal and its children.
	KindNode
)

// Tree is the tagged-union output node: either a leaf wrapping one matched
// token, or an internal node naming the rule that reduced and its ordered
// children. Multiple distinct Trees in a returned collection express
// ambiguity; there is no other representation for it.
type Tree struct {
	Kind     Kind
	Token    chart.Token // valid when Kind == KindLeaf
	Name     string      // valid when Kind == KindNode
	Children []*Tree     // valid when Kind == KindNode
}

// Leaf returns a leaf Tree wrapping tok.
func Leaf(tok chart.Token) *Tree {
	return &Tree{Kind: KindLeaf, Token: tok}
}

// Node returns an internal Tree for nonterminal name with the given
// children, in production order.
func Node(name string, children []*Tree) *Tree {
	return &Tree{Kind: KindNode, Name: name, Children: children}
}

// IsLeaf reports whether t is a leaf node.
func (t *Tree) IsLeaf() bool {
	return t.Kind == KindLeaf
}

// Leaves returns the leaf tokens of t in left-to-right order. Concatenating
// Leaves() across any one parse must reproduce the original input exactly.
func (t *Tree) Leaves() []chart.Token {
	var out []chart.Token
	t.collectLeaves(&out)
	return out
}

func (t *Tree) collectLeaves(out *[]chart.Token) {
	if t.IsLeaf() {
		*out = append(*out, t.Token)
		return
	}
	for _, c := range t.Children {
		c.collectLeaves(out)
	}
}

// String renders a compact, deterministic Lisp-like form of t, useful for
// test assertions and debugging ("(Sum (Sum 1) + (Product 2))"-style).
func (t *Tree) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Tree) write(b *strings.Builder) {
	if t.IsLeaf() {
		b.WriteString(t.Token.Raw)
		return
	}
	b.WriteByte('(')
	b.WriteString(t.Name)
	for _, c := range t.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}
