package forest

import (
	"testing"
	"time"

	"github.com/halvar-voss/earleyforest/chart"
	"github.com/halvar-voss/earleyforest/earley"
	"github.com/halvar-voss/earleyforest/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func tok(kind, raw string) chart.Token {
	return chart.Token{Kind: kind, Raw: raw}
}

func buildForest(t *testing.T, g *grammar.Grammar, tokens []chart.Token) []*Tree {
	t.Helper()
	ch, err := earley.Recognize(g, tokens)
	if err != nil {
		t.Fatalf("earley.Recognize: %v", err)
	}
	ch.RetainCompleted(g)
	trees, err := Build(g, ch, tokens)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return trees
}

// ambiguousSumGrammar mirrors scenario S1: Sum → Sum Plus Sum | int is
// genuinely ambiguous over three or more summands.
func ambiguousSumGrammar(t *testing.T) *grammar.Grammar {
	g, err := grammar.Compile("Sum", map[string][]grammar.Production{
		"Sum": {
			{grammar.Rule("Sum"), grammar.Rule("Plus"), grammar.Rule("Sum")},
			{grammar.Terminal("int")},
		},
		"Plus": {{grammar.Terminal("plus")}},
	})
	if err != nil {
		t.Fatalf("grammar.Compile: %v", err)
	}
	return g
}

func TestBuildSingleTokenYieldsOneLeaf(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "earleyforest.forest")
	defer teardown()
	assert := assert.New(t)

	g := ambiguousSumGrammar(t)
	trees := buildForest(t, g, []chart.Token{tok("int", "1")})
	if assert.Len(trees, 1) {
		assert.Equal("(Sum 1)", trees[0].String())
	}
}

func TestBuildAmbiguousInputYieldsTwoParses(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "earleyforest.forest")
	defer teardown()
	assert := assert.New(t)

	g := ambiguousSumGrammar(t)
	tokens := []chart.Token{
		tok("int", "1"), tok("plus", "+"), tok("int", "2"),
		tok("plus", "+"), tok("int", "3"),
	}
	trees := buildForest(t, g, tokens)
	assert.Len(trees, 2, "1+2+3 has exactly two left/right-associative parses under Sum → Sum Plus Sum | int")

	rendered := make(map[string]bool, len(trees))
	for _, tr := range trees {
		rendered[tr.String()] = true
		// every distinct parse must still cover exactly the same leaves,
		// in the same order, as the original token stream.
		leaves := tr.Leaves()
		if assert.Len(leaves, 5) {
			assert.Equal("1", leaves[0].Raw)
			assert.Equal("+", leaves[1].Raw)
			assert.Equal("2", leaves[2].Raw)
			assert.Equal("+", leaves[3].Raw)
			assert.Equal("3", leaves[4].Raw)
		}
	}
	assert.True(rendered["(Sum (Sum (Sum 1) (Plus +) (Sum 2)) (Plus +) (Sum 3))"], "expected the left-associative parse, got %v", rendered)
	assert.True(rendered["(Sum (Sum 1) (Plus +) (Sum (Sum 2) (Plus +) (Sum 3)))"], "expected the right-associative parse, got %v", rendered)
}

// nullableGrammar mirrors scenario S4.
func nullableGrammar(t *testing.T) *grammar.Grammar {
	g, err := grammar.Compile("Start", map[string][]grammar.Production{
		"Start": {{grammar.Rule("Opt"), grammar.Terminal("int")}},
		"Opt":   {{}, {grammar.Terminal("minus")}},
	})
	if err != nil {
		t.Fatalf("grammar.Compile: %v", err)
	}
	return g
}

func TestBuildRendersEpsilonBranchAsEmptyChildren(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "earleyforest.forest")
	defer teardown()
	assert := assert.New(t)

	g := nullableGrammar(t)
	trees := buildForest(t, g, []chart.Token{tok("int", "1")})
	if assert.Len(trees, 1) {
		assert.Equal("(Start (Opt) 1)", trees[0].String())
	}
}

func TestBuildLeftRecursiveUnambiguous(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "earleyforest.forest")
	defer teardown()
	assert := assert.New(t)

	g, err := grammar.Compile("List", map[string][]grammar.Production{
		"List": {
			{grammar.Rule("List"), grammar.Terminal("int")},
			{grammar.Terminal("int")},
		},
	})
	if err != nil {
		t.Fatalf("grammar.Compile: %v", err)
	}
	tokens := []chart.Token{tok("int", "1"), tok("int", "2"), tok("int", "3")}
	trees := buildForest(t, g, tokens)
	if assert.Len(trees, 1, "List is unambiguous: exactly one parse") {
		assert.Equal("(List (List (List 1) 2) 3)", trees[0].String())
	}
}

func TestBuildEmptyInputWhenStartNullable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "earleyforest.forest")
	defer teardown()
	assert := assert.New(t)

	g, err := grammar.Compile("Start", map[string][]grammar.Production{
		"Start": {{}, {grammar.Terminal("int")}},
	})
	if err != nil {
		t.Fatalf("grammar.Compile: %v", err)
	}
	trees := buildForest(t, g, nil)
	if assert.Len(trees, 1) {
		assert.Equal("(Start)", trees[0].String())
		assert.Empty(trees[0].Leaves())
	}
}

// TestBuildTerminatesOnCyclicEpsilonDerivation exercises the cycle-break
// guard in childrenOf: A can
// derive itself via a chain of nullable nonterminals with no intervening
// terminal, which would diverge without the memo-seeded cycle break.
func TestBuildTerminatesOnCyclicEpsilonDerivation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "earleyforest.forest")
	defer teardown()
	assert := assert.New(t)

	g, err := grammar.Compile("Start", map[string][]grammar.Production{
		"Start": {{grammar.Rule("A")}, {grammar.Terminal("int")}},
		"A":     {{grammar.Rule("Start")}, {}},
	})
	if err != nil {
		t.Fatalf("grammar.Compile: %v", err)
	}

	done := make(chan []*Tree, 1)
	go func() {
		done <- buildForest(t, g, nil)
	}()
	select {
	case trees := <-done:
		assert.NotEmpty(trees, "expected at least one parse of the empty input")
	case <-time.After(2 * time.Second):
		t.Fatal("Build did not terminate on a cyclic ε-derivation")
	}
}
