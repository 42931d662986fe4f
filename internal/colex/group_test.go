package colex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

func TestGroupByLanguage(t *testing.T) {
	t.Parallel()

	p := GroupByLanguage([]domain.Observation{
		obs("bank", "en", "river_edge"),
		obs("bank", "en", "financial_institution"),
		obs("bank", "en", "river_edge"),
		{Word: "banque", Language: "fr", Sense: "financial_institution", Headword: "bank"},
	})

	require.Len(t, p.Languages, 2)
	assert.Equal(t, "en", p.Languages[0].Code)
	assert.Equal(t, "fr", p.Languages[1].Code)

	assert.Equal(t, []domain.SenseNode{
		node("bank", "financial_institution"),
		node("bank", "river_edge"),
	}, p.Languages[0].Words["bank"])
	assert.Equal(t, []domain.SenseNode{
		node("bank", "financial_institution"),
	}, p.Languages[1].Words["banque"])

	assert.Equal(t, map[domain.SenseNode]int{
		node("bank", "financial_institution"): 2,
		node("bank", "river_edge"):            1,
	}, p.NodeLanguages)
}

func TestGroupByLanguage_NodeCountedOncePerLanguage(t *testing.T) {
	t.Parallel()

	p := GroupByLanguage([]domain.Observation{
		{Word: "louer", Language: "fr", Sense: "rent", Headword: "let"},
		{Word: "vanter", Language: "fr", Sense: "rent", Headword: "let"},
	})
	assert.Equal(t, 1, p.NodeLanguages[node("let", "rent")])
}

func TestLanguage_Pairs(t *testing.T) {
	t.Parallel()

	a, b, c := node("w", "a"), node("w", "b"), node("w", "c")
	lang := Language{Code: "en", Words: map[string][]domain.SenseNode{
		"one":   {a, b, c},
		"two":   {a, b},
		"three": {c},
	}}

	assert.Equal(t, PairSet{
		domain.NewPair(a, b): {},
		domain.NewPair(a, c): {},
		domain.NewPair(b, c): {},
	}, lang.Pairs(nil))

	withoutC := lang.Pairs(func(n domain.SenseNode) bool { return n != c })
	assert.Equal(t, PairSet{domain.NewPair(a, b): {}}, withoutC)
}

func TestAccumulator(t *testing.T) {
	t.Parallel()

	a, b, c := node("w", "a"), node("w", "b"), node("w", "c")
	acc := NewAccumulator()
	acc.Merge(PairSet{domain.NewPair(a, b): {}, domain.NewPair(b, c): {}})
	acc.Merge(PairSet{domain.NewPair(a, b): {}})
	acc.Merge(PairSet{})

	assert.Equal(t, 3, acc.Languages())
	assert.Equal(t, 2, acc.Len())

	assert.Equal(t, []domain.Edge{
		domain.NewEdge(a, b, 2),
		domain.NewEdge(b, c, 1),
	}, acc.Edges(0))
}

func TestAccumulator_MinWeight(t *testing.T) {
	t.Parallel()

	a, b, c := node("w", "a"), node("w", "b"), node("w", "c")
	acc := NewAccumulator()
	acc.Merge(PairSet{domain.NewPair(a, b): {}, domain.NewPair(b, c): {}})
	acc.Merge(PairSet{domain.NewPair(a, b): {}})

	assert.Equal(t, []domain.Edge{domain.NewEdge(a, b, 2)}, acc.Edges(2))
}

func TestAccumulator_MergeAfterSealPanics(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator()
	_ = acc.Edges(1)
	assert.Panics(t, func() { acc.Merge(PairSet{}) })
}

func TestAccumulator_ConcurrentMerge(t *testing.T) {
	t.Parallel()

	p := domain.NewPair(node("w", "a"), node("w", "b"))
	acc := NewAccumulator()

	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.Merge(PairSet{p: {}})
		}()
	}
	wg.Wait()

	edges := acc.Edges(1)
	require.Len(t, edges, 1)
	assert.Equal(t, 64, edges[0].Weight)
}
