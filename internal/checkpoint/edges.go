package checkpoint

import (
	"fmt"
	"io"
	"strconv"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

const edgeColumns = 5

// WriteEdges writes checkpoint B, one row per edge in the given order.
func WriteEdges(w io.Writer, edges []domain.Edge) error {
	cw := newWriter(w)
	record := make([]string, edgeColumns)
	for _, e := range edges {
		record[0], record[1] = e.A.Word, e.A.Sense
		record[2], record[3] = e.B.Word, e.B.Sense
		record[4] = strconv.Itoa(e.Weight)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write edge: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush edges: %w", err)
	}
	return nil
}

// ReadEdges parses checkpoint B. Rows keep file order; each edge comes back
// in canonical orientation. Wrong column counts, weights that are not
// positive integers and self-loops fail with a *domain.RecordError.
func ReadEdges(r io.Reader) ([]domain.Edge, error) {
	var edges []domain.Edge
	err := readRows(r, func(line int, record []string) error {
		e, err := parseEdge(record)
		if err != nil {
			return &domain.RecordError{Line: line, Reason: err.Error()}
		}
		edges = append(edges, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

func parseEdge(record []string) (domain.Edge, error) {
	if len(record) != edgeColumns {
		return domain.Edge{}, fmt.Errorf("want %d columns, got %d", edgeColumns, len(record))
	}
	weight, err := strconv.Atoi(record[4])
	if err != nil {
		return domain.Edge{}, fmt.Errorf("weight %q is not an integer", record[4])
	}
	if weight < 1 {
		return domain.Edge{}, fmt.Errorf("weight %d is not positive", weight)
	}

	a := domain.SenseNode{Word: record[0], Sense: record[1]}
	b := domain.SenseNode{Word: record[2], Sense: record[3]}
	if a == b {
		return domain.Edge{}, fmt.Errorf("self-loop on %q/%q", a.Word, a.Sense)
	}
	return domain.NewEdge(a, b, weight), nil
}
