package domain

import (
	"cmp"
	"fmt"
)

// Observation is one attested (word, language, sense) fact.
//
// Headword names the dictionary word whose translation table carried the
// sense. It is empty when the observation is anchored on its own word.
type Observation struct {
	Word     string
	Language string
	Sense    string
	Headword string
}

// Node returns the sense node this observation attests.
func (o Observation) Node() SenseNode {
	word := o.Headword
	if word == "" {
		word = o.Word
	}
	return SenseNode{Word: word, Sense: o.Sense}
}

// SenseNode is a vertex of the colexification graph. Identity is the
// (Word, Sense) pair; no other state is attached.
type SenseNode struct {
	Word  string
	Sense string
}

// Compare orders nodes by word, then sense.
func (n SenseNode) Compare(other SenseNode) int {
	if c := cmp.Compare(n.Word, other.Word); c != 0 {
		return c
	}
	return cmp.Compare(n.Sense, other.Sense)
}

// Less reports whether n sorts before other.
func (n SenseNode) Less(other SenseNode) bool {
	return n.Compare(other) < 0
}

func (n SenseNode) String() string {
	return n.Word + "\t" + n.Sense
}

// Pair is an unordered pair of distinct nodes stored with A < B.
type Pair struct {
	A, B SenseNode
}

// NewPair canonicalises the orientation of x and y.
// It panics when x == y: a sense is never colexified with itself.
func NewPair(x, y SenseNode) Pair {
	switch c := x.Compare(y); {
	case c < 0:
		return Pair{A: x, B: y}
	case c > 0:
		return Pair{A: y, B: x}
	default:
		panic(fmt.Sprintf("domain: self-loop on node %q/%q", x.Word, x.Sense))
	}
}

// Compare orders pairs by A, then B.
func (p Pair) Compare(other Pair) int {
	if c := p.A.Compare(other.A); c != 0 {
		return c
	}
	return p.B.Compare(other.B)
}

// Edge is a weighted colexification edge. Weight counts the distinct
// languages that colexify A and B.
type Edge struct {
	Pair
	Weight int
}

// NewEdge builds a canonical edge. See NewPair for the self-loop rule.
func NewEdge(x, y SenseNode, weight int) Edge {
	return Edge{Pair: NewPair(x, y), Weight: weight}
}

// Graph is an immutable edge list in canonical order.
type Graph struct {
	Edges []Edge
}

// Nodes returns the endpoints of all edges in first-seen order.
func (g Graph) Nodes() []SenseNode {
	seen := make(map[SenseNode]struct{}, len(g.Edges))
	nodes := make([]SenseNode, 0, len(g.Edges))
	add := func(n SenseNode) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		nodes = append(nodes, n)
	}
	for _, e := range g.Edges {
		add(e.A)
		add(e.B)
	}
	return nodes
}

// Weights returns the edge weights in edge order.
func (g Graph) Weights() []int {
	weights := make([]int, len(g.Edges))
	for i, e := range g.Edges {
		weights[i] = e.Weight
	}
	return weights
}
