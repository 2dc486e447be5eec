/*
Package grammar implements the symbol and production model consumed by the
Earley recognizer: terminals (token kinds), nonterminals (rule names), and
productions (ordered sequences of symbols), assembled into a validated
Grammar.

Grammar-builder ergonomics (a fluent DSL, lexer-rule sugar, and the like) are
out of scope for this package; it only assembles and validates a finished
rule table, the way gorgo/lr.GrammarBuilder.Grammar() validates its rule
table before handing it to a parser, minus the fluent front-end.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package grammar

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'earleyforest.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("earleyforest.grammar")
}

// startSentinel is the reserved internal start nonterminal. It never
// collides with a user-supplied rule name: Compile rejects a user rule
// declared under this name.
const startSentinel = "Γ"

// SymbolKind distinguishes a nonterminal reference from a terminal reference.
type SymbolKind uint8

const (
	// RuleSymbol is a Symbol referring to a nonterminal by name.
	RuleSymbol SymbolKind = iota
	// TerminalSymbol is a Symbol referring to a token kind.
	TerminalSymbol
)

// Symbol is a tagged variant: either a reference to a nonterminal (Rule) or
// to a terminal token kind (Terminal).
type Symbol struct {
	Kind SymbolKind
	name string // nonterminal name, if Kind == RuleSymbol
	kind string // terminal token kind, if Kind == TerminalSymbol
}

// Rule returns a Symbol referring to the nonterminal named name.
func Rule(name string) Symbol {
	return Symbol{Kind: RuleSymbol, name: name}
}

// Terminal returns a Symbol referring to the terminal token kind kind.
func Terminal(kind string) Symbol {
	return Symbol{Kind: TerminalSymbol, kind: kind}
}

// IsTerminal reports whether s refers to a token kind rather than a rule.
func (s Symbol) IsTerminal() bool {
	return s.Kind == TerminalSymbol
}

// Name returns the nonterminal name this symbol refers to. It panics if s
// is a terminal symbol.
func (s Symbol) Name() string {
	if s.Kind != RuleSymbol {
		panic("grammar: Name() called on a terminal symbol")
	}
	return s.name
}

// TermKind returns the token kind this symbol refers to. It panics if s is
// a nonterminal symbol.
func (s Symbol) TermKind() string {
	if s.Kind != TerminalSymbol {
		panic("grammar: TermKind() called on a rule symbol")
	}
	return s.kind
}

func (s Symbol) String() string {
	if s.IsTerminal() {
		return fmt.Sprintf("'%s'", s.kind)
	}
	return s.name
}

// Production is a finite ordered sequence of Symbols. An empty Production
// denotes an ε-production.
type Production []Symbol

func (p Production) String() string {
	if len(p) == 0 {
		return "ε"
	}
	s := ""
	for i, sym := range p {
		if i > 0 {
			s += " "
		}
		s += sym.String()
	}
	return s
}

// GrammarRule is a pair (name, productions): a nonterminal and its non-empty
// ordered set of alternative right-hand sides. (Not to be confused with the
// Symbol constructor Rule(name); a Go package cannot declare a type and a
// function under the same name.)
type GrammarRule struct {
	Name        string
	Productions []Production
}

// Grammar is a mapping from nonterminal name to GrammarRule, plus the
// reserved start rule injected by Compile.
type Grammar struct {
	start    string
	rules    map[string]*GrammarRule
	nullable map[string]bool
}

// StartName returns the name of the user-declared start nonterminal (not
// the Γ sentinel).
func (g *Grammar) StartName() string {
	return g.start
}

// StartSentinel returns the reserved Γ rule name the recognizer always
// seeds from. Its one production is a single Symbol referencing the
// user-declared start nonterminal.
func (g *Grammar) StartSentinel() string {
	return startSentinel
}

// Lookup returns the GrammarRule for name, and whether it exists.
func (g *Grammar) Lookup(name string) (*GrammarRule, bool) {
	r, ok := g.rules[name]
	return r, ok
}

// Production returns the production at index idx of rule name. It panics if
// the rule or the index do not exist; callers are expected to only ever
// hold (name, idx) pairs obtained from this Grammar.
func (g *Grammar) Production(name string, idx int) Production {
	r, ok := g.rules[name]
	if !ok || idx < 0 || idx >= len(r.Productions) {
		panic(fmt.Sprintf("grammar: no such production %s[%d]", name, idx))
	}
	return r.Productions[idx]
}

// DerivesEpsilon reports whether the nonterminal named name can derive the
// empty string. Terminals and unknown names are never nullable.
func (g *Grammar) DerivesEpsilon(name string) bool {
	return g.nullable[name]
}

// EachRule calls fn once for every user-declared rule (the Γ sentinel is
// not visited).
func (g *Grammar) EachRule(fn func(r *GrammarRule)) {
	for name, r := range g.rules {
		if name == startSentinel {
			continue
		}
		fn(r)
	}
}

// Dump logs every production of every user-declared rule at Debug level,
// the same diagnostic gesture gorgo/lr/doc.go shows as b.Grammar().Dump()
// before driving a parser from a freshly assembled grammar.
func (g *Grammar) Dump() {
	g.EachRule(func(r *GrammarRule) {
		for i, p := range r.Productions {
			tracer().Debugf("%s[%d] → %s", r.Name, i, p.String())
		}
	})
}

// GrammarError reports a grammar that Compile refused to accept: a
// production referencing an undefined nonterminal, or a missing start
// rule. Detected eagerly, before any recognition is attempted.
type GrammarError struct {
	Rule    string
	Message string
}

func (e *GrammarError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("grammar violation in rule %q: %s", e.Rule, e.Message)
	}
	return fmt.Sprintf("grammar violation: %s", e.Message)
}

// Compile assembles a Grammar from a mapping of nonterminal name to its
// productions, validates it, and injects the Γ start rule.
//
// Compile requires:
//   - start to name a key of rules;
//   - no key of rules to be the reserved Γ sentinel name;
//   - every rule to have a non-empty production list;
//   - every Rule(n) symbol appearing in any production to resolve to a key
//     of rules.
//
// On any violation it returns a *GrammarError and a nil Grammar; the
// recognizer must never be started on an ill-formed grammar.
func Compile(start string, rules map[string][]Production) (*Grammar, error) {
	if _, ok := rules[start]; !ok {
		return nil, &GrammarError{Message: fmt.Sprintf("start nonterminal %q is not declared", start)}
	}
	if _, ok := rules[startSentinel]; ok {
		return nil, &GrammarError{Rule: startSentinel, Message: "rule name is reserved for the start sentinel"}
	}
	compiled := make(map[string]*GrammarRule, len(rules)+1)
	for name, prods := range rules {
		if len(prods) == 0 {
			return nil, &GrammarError{Rule: name, Message: "rule has no productions"}
		}
		compiled[name] = &GrammarRule{Name: name, Productions: prods}
	}
	for name, r := range compiled {
		for _, p := range r.Productions {
			for _, sym := range p {
				if sym.IsTerminal() {
					continue
				}
				if _, ok := compiled[sym.Name()]; !ok {
					return nil, &GrammarError{Rule: name, Message: fmt.Sprintf("references undefined nonterminal %q", sym.Name())}
				}
			}
		}
	}
	compiled[startSentinel] = &GrammarRule{Name: startSentinel, Productions: []Production{{Rule(start)}}}
	g := &Grammar{start: start, rules: compiled}
	g.nullable = computeNullable(compiled)
	tracer().Debugf("compiled grammar: %d rule(s), start=%q, %d nullable", len(compiled)-1, start, len(g.nullable))
	return g, nil
}

// computeNullable returns the fixpoint set of nonterminals that can derive
// ε: directly via an empty production, or transitively through a
// production whose every symbol is itself nullable. This is the one piece
// of static grammar analysis the Earley predictor needs; unlike
// gorgo/lr.LRAnalysis it does not compute FIRST/FOLLOW sets, which that
// package needs only for LALR table construction.
func computeNullable(rules map[string]*GrammarRule) map[string]bool {
	nullable := make(map[string]bool)
	changed := true
	for changed {
		changed = false
		for name, r := range rules {
			if nullable[name] {
				continue
			}
			for _, p := range r.Productions {
				if productionNullable(p, nullable) {
					nullable[name] = true
					changed = true
					break
				}
			}
		}
	}
	return nullable
}

func productionNullable(p Production, nullable map[string]bool) bool {
	for _, sym := range p {
		if sym.IsTerminal() {
			return false
		}
		if !nullable[sym.Name()] {
			return false
		}
	}
	return true
}
