// Package colex builds colexification graphs from sense observations.
//
// Construction runs in three explicit steps:
//
//  1. GroupByLanguage partitions observations into language → word → senses.
//  2. Each language reduces its words to a PairSet: the distinct sense pairs
//     that any of its words colexify.
//  3. An Accumulator counts, per pair, the languages whose PairSet held it.
//
// Builder wires the steps together and runs step 2 in parallel.
package colex

import (
	"slices"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

// Language is one language's partition: every word mapped to the sorted,
// distinct sense nodes it was observed with.
type Language struct {
	Code  string
	Words map[string][]domain.SenseNode
}

// Partitions is the result of GroupByLanguage, ordered by language code.
type Partitions struct {
	Languages []Language
	// NodeLanguages counts, per sense node, the distinct languages that
	// attest it.
	NodeLanguages map[domain.SenseNode]int
}

// GroupByLanguage partitions observations by language, then by word within
// each language. Repeated observations collapse into one. Nothing in the
// result is mutated afterwards.
func GroupByLanguage(observations []domain.Observation) Partitions {
	byLanguage := make(map[string][]domain.Observation)
	for _, o := range observations {
		byLanguage[o.Language] = append(byLanguage[o.Language], o)
	}

	codes := make([]string, 0, len(byLanguage))
	for code := range byLanguage {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	p := Partitions{
		Languages:     make([]Language, 0, len(codes)),
		NodeLanguages: make(map[domain.SenseNode]int),
	}
	for _, code := range codes {
		lang := groupByWord(code, byLanguage[code])
		p.Languages = append(p.Languages, lang)

		seen := make(map[domain.SenseNode]struct{})
		for _, nodes := range lang.Words {
			for _, n := range nodes {
				if _, ok := seen[n]; !ok {
					seen[n] = struct{}{}
					p.NodeLanguages[n]++
				}
			}
		}
	}
	return p
}

func groupByWord(code string, observations []domain.Observation) Language {
	sets := make(map[string]map[domain.SenseNode]struct{})
	for _, o := range observations {
		set, ok := sets[o.Word]
		if !ok {
			set = make(map[domain.SenseNode]struct{})
			sets[o.Word] = set
		}
		set[o.Node()] = struct{}{}
	}

	words := make(map[string][]domain.SenseNode, len(sets))
	for word, set := range sets {
		nodes := make([]domain.SenseNode, 0, len(set))
		for n := range set {
			nodes = append(nodes, n)
		}
		slices.SortFunc(nodes, domain.SenseNode.Compare)
		words[word] = nodes
	}
	return Language{Code: code, Words: words}
}

// PairSet is the set of sense pairs one language colexifies.
type PairSet map[domain.Pair]struct{}

// Pairs reduces a language to the distinct sense pairs its words colexify.
// A pair shared by several homonyms of the language is recorded once.
// Nodes for which keep returns false are ignored; a nil keep keeps all.
func (l Language) Pairs(keep func(domain.SenseNode) bool) PairSet {
	pairs := make(PairSet)
	var kept []domain.SenseNode
	for _, nodes := range l.Words {
		kept = kept[:0]
		for _, n := range nodes {
			if keep == nil || keep(n) {
				kept = append(kept, n)
			}
		}
		for i := 1; i < len(kept); i++ {
			for j := 0; j < i; j++ {
				pairs[domain.Pair{A: kept[j], B: kept[i]}] = struct{}{}
			}
		}
	}
	return pairs
}
