package domain

import (
	"encoding/binary"
	"hash/fnv"
	"sort"

	"github.com/mr-tron/base58"
)

// ConceptID returns the stable identifier of a sense node: the base58
// encoding of the big-endian 64-bit FNV-1a hash of "word\tsense".
// The same node always maps to the same ID, across runs and inputs.
func ConceptID(n SenseNode) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(n.Word))
	_, _ = h.Write([]byte{'\t'})
	_, _ = h.Write([]byte(n.Sense))

	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], h.Sum64())
	return base58.Encode(sum[:])
}

// Collision lists distinct nodes that share one concept ID.
type Collision struct {
	ID    string
	Nodes []SenseNode
}

// FindCollisions groups the given nodes by concept ID and returns every
// group with more than one distinct node, ordered by ID. Repeated nodes
// are counted once.
func FindCollisions(nodes []SenseNode) []Collision {
	return FindCollisionsFunc(nodes, ConceptID)
}

// FindCollisionsFunc is FindCollisions with the node IDs given by idOf.
func FindCollisionsFunc(nodes []SenseNode, idOf func(SenseNode) string) []Collision {
	byID := make(map[string]map[SenseNode]struct{})
	for _, n := range nodes {
		id := idOf(n)
		set, ok := byID[id]
		if !ok {
			set = make(map[SenseNode]struct{}, 1)
			byID[id] = set
		}
		set[n] = struct{}{}
	}

	var out []Collision
	for id, set := range byID {
		if len(set) < 2 {
			continue
		}
		c := Collision{ID: id, Nodes: make([]SenseNode, 0, len(set))}
		for n := range set {
			c.Nodes = append(c.Nodes, n)
		}
		sort.Slice(c.Nodes, func(i, j int) bool { return c.Nodes[i].Less(c.Nodes[j]) })
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
