package colex

import (
	"slices"
	"sync"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

// Accumulator tallies, for every sense pair, the number of languages that
// colexify it. It is safe for concurrent Merge calls. Edges seals it: the
// tally is read-only from then on and a later Merge panics.
type Accumulator struct {
	mu      sync.Mutex
	weights map[domain.Pair]int
	merged  int
	sealed  bool
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{weights: make(map[domain.Pair]int)}
}

// Merge adds one language's pair set: each pair in it gains weight 1.
// The caller must pass each language once.
func (a *Accumulator) Merge(pairs PairSet) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sealed {
		panic("colex: merge into sealed accumulator")
	}
	for p := range pairs {
		a.weights[p]++
	}
	a.merged++
}

// Languages returns the number of pair sets merged so far.
func (a *Accumulator) Languages() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.merged
}

// Len returns the number of distinct pairs seen.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.weights)
}

// Edges seals the accumulator and returns every pair with weight at least
// minWeight, sorted by (A, B). A minWeight below 1 is treated as 1.
func (a *Accumulator) Edges(minWeight int) []domain.Edge {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sealed = true
	minWeight = max(minWeight, 1)

	edges := make([]domain.Edge, 0, len(a.weights))
	for p, w := range a.weights {
		if w >= minWeight {
			edges = append(edges, domain.Edge{Pair: p, Weight: w})
		}
	}
	slices.SortFunc(edges, func(x, y domain.Edge) int { return x.Pair.Compare(y.Pair) })
	return edges
}
