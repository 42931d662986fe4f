// Package cytoscape renders colexification graphs as Cytoscape.js
// elements JSON.
package cytoscape

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

// NodeIDs selects how node identities are derived.
type NodeIDs string

const (
	// ConceptIDs uses domain.ConceptID, stable across runs and inputs.
	ConceptIDs NodeIDs = "concept"
	// SequentialIDs numbers nodes 1, 2, 3… in first-seen order.
	SequentialIDs NodeIDs = "sequential"
)

// Document is the top-level Cytoscape.js elements object.
type Document struct {
	Elements Elements `json:"elements"`
}

// Elements holds the node and edge lists.
type Elements struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type Node struct {
	Data NodeData `json:"data"`
}

type NodeData struct {
	ID    string `json:"id"`
	Word  string `json:"word"`
	Sense string `json:"sense"`
}

type Edge struct {
	Data EdgeData `json:"data"`
}

type EdgeData struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Build converts g into a document. Nodes are listed in first-seen order
// over the edges and every edge appears once, unchanged. Two distinct
// nodes sharing a concept ID fail with domain.ErrIDCollision.
func Build(g domain.Graph, ids NodeIDs) (Document, error) {
	dir, err := newDirectory(g.Nodes(), ids)
	if err != nil {
		return Document{}, err
	}

	doc := Document{Elements: Elements{
		Nodes: make([]Node, 0, len(dir.order)),
		Edges: make([]Edge, 0, len(g.Edges)),
	}}
	for _, n := range dir.order {
		doc.Elements.Nodes = append(doc.Elements.Nodes, Node{Data: NodeData{
			ID:    dir.id(n),
			Word:  n.Word,
			Sense: n.Sense,
		}})
	}
	for _, e := range g.Edges {
		doc.Elements.Edges = append(doc.Elements.Edges, Edge{Data: EdgeData{
			Source: dir.id(e.A),
			Target: dir.id(e.B),
			Weight: e.Weight,
		}})
	}
	return doc, nil
}

// directory maps sense nodes to their document IDs.
type directory struct {
	ids   map[domain.SenseNode]string
	order []domain.SenseNode
}

func newDirectory(nodes []domain.SenseNode, scheme NodeIDs) (*directory, error) {
	d := &directory{
		ids:   make(map[domain.SenseNode]string, len(nodes)),
		order: nodes,
	}

	switch scheme {
	case ConceptIDs, "":
		return d, d.assign(domain.ConceptID)
	case SequentialIDs:
		for i, n := range nodes {
			d.ids[n] = strconv.Itoa(i + 1)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("node ids %q: %w", scheme, domain.ErrValidation)
	}
}

// assign names every node with idOf, rejecting IDs shared by two nodes.
func (d *directory) assign(idOf func(domain.SenseNode) string) error {
	owner := make(map[string]domain.SenseNode, len(d.order))
	for _, n := range d.order {
		id := idOf(n)
		if prev, ok := owner[id]; ok {
			return fmt.Errorf("%w: %s shared by %q and %q", domain.ErrIDCollision, id, prev, n)
		}
		owner[id] = n
		d.ids[n] = id
	}
	return nil
}

// id returns the ID of n. Every edge endpoint is registered when the
// directory is built, so a miss is a bug.
func (d *directory) id(n domain.SenseNode) string {
	id, ok := d.ids[n]
	if !ok {
		panic(fmt.Sprintf("cytoscape: edge references unknown node %q", n))
	}
	return id
}

// Encode writes doc as JSON. indent pretty-prints it.
func Encode(w io.Writer, doc Document, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// Decode reads a document written by Encode.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Graph converts doc back into an edge list, the inverse of Build.
func (doc Document) Graph() (domain.Graph, error) {
	nodes := make(map[string]domain.SenseNode, len(doc.Elements.Nodes))
	for _, n := range doc.Elements.Nodes {
		nodes[n.Data.ID] = domain.SenseNode{Word: n.Data.Word, Sense: n.Data.Sense}
	}

	g := domain.Graph{Edges: make([]domain.Edge, 0, len(doc.Elements.Edges))}
	for i, e := range doc.Elements.Edges {
		src, ok := nodes[e.Data.Source]
		if !ok {
			return domain.Graph{}, fmt.Errorf("edge %d: unknown source %q: %w", i, e.Data.Source, domain.ErrNotFound)
		}
		dst, ok := nodes[e.Data.Target]
		if !ok {
			return domain.Graph{}, fmt.Errorf("edge %d: unknown target %q: %w", i, e.Data.Target, domain.ErrNotFound)
		}
		if src == dst {
			return domain.Graph{}, fmt.Errorf("edge %d: self-loop on %q: %w", i, e.Data.Source, domain.ErrInvalidRecord)
		}
		g.Edges = append(g.Edges, domain.NewEdge(src, dst, e.Data.Weight))
	}
	return g, nil
}
