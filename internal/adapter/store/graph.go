package store

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

// timeLayout is fixed-width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Neighbor is a node adjacent to a queried node.
type Neighbor struct {
	Node   domain.SenseNode
	Weight int
}

// Run records one graph load.
type Run struct {
	ID       uuid.UUID
	LoadedAt time.Time
	Nodes    int
	Edges    int
}

// Replace swaps the stored graph for g in one transaction and records the
// load under runID. Nodes are keyed by concept ID; two distinct nodes with
// the same ID fail with domain.ErrIDCollision before anything is written.
func (s *Store) Replace(ctx context.Context, runID uuid.UUID, g domain.Graph) error {
	nodes := g.Nodes()
	if collisions := domain.FindCollisionsFunc(nodes, s.nodeID); len(collisions) > 0 {
		c := collisions[0]
		return fmt.Errorf("replace graph: %w: %s shared by %d nodes", domain.ErrIDCollision, c.ID, len(c.Nodes))
	}

	err := s.runInTx(ctx, func(ctx context.Context) error {
		if err := s.exec(ctx, s.sb.Delete("edges")); err != nil {
			return fmt.Errorf("clear edges: %w", err)
		}
		if err := s.exec(ctx, s.sb.Delete("nodes")); err != nil {
			return fmt.Errorf("clear nodes: %w", err)
		}

		for batch := range slices.Chunk(nodes, s.batchSize) {
			insert := s.sb.Insert("nodes").Columns("id", "word", "sense")
			for _, n := range batch {
				insert = insert.Values(s.nodeID(n), n.Word, n.Sense)
			}
			if err := s.exec(ctx, insert); err != nil {
				return mapError(err, "nodes", fmt.Sprintf("batch of %d", len(batch)))
			}
		}

		for batch := range slices.Chunk(g.Edges, s.batchSize) {
			insert := s.sb.Insert("edges").Columns("source", "target", "weight")
			for _, e := range batch {
				insert = insert.Values(s.nodeID(e.A), s.nodeID(e.B), e.Weight)
			}
			if err := s.exec(ctx, insert); err != nil {
				return mapError(err, "edges", fmt.Sprintf("batch of %d", len(batch)))
			}
		}

		record := s.sb.Insert("runs").
			Columns("id", "loaded_at", "node_count", "edge_count").
			Values(runID.String(), time.Now().UTC().Format(timeLayout), len(nodes), len(g.Edges))
		if err := s.exec(ctx, record); err != nil {
			return mapError(err, "run", runID.String())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace graph: %w", err)
	}

	s.log.Info("graph stored",
		slog.String("driver", s.driver),
		slog.String("run_id", runID.String()),
		slog.Int("nodes", len(nodes)),
		slog.Int("edges", len(g.Edges)),
	)
	return nil
}

// Edges returns the stored graph with edges sorted by (A, B).
func (s *Store) Edges(ctx context.Context) (domain.Graph, error) {
	query := s.sb.
		Select("a.word", "a.sense", "b.word", "b.sense", "e.weight").
		From("edges e").
		Join("nodes a ON a.id = e.source").
		Join("nodes b ON b.id = e.target")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Graph{}, fmt.Errorf("build edges query: %w", err)
	}

	rows, err := s.q(ctx).QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return domain.Graph{}, mapError(err, "edges", "all")
	}
	defer rows.Close()

	g := domain.Graph{Edges: []domain.Edge{}}
	for rows.Next() {
		var a, b domain.SenseNode
		var weight int
		if err := rows.Scan(&a.Word, &a.Sense, &b.Word, &b.Sense, &weight); err != nil {
			return domain.Graph{}, fmt.Errorf("scan edge: %w", err)
		}
		g.Edges = append(g.Edges, domain.NewEdge(a, b, weight))
	}
	if err := rows.Err(); err != nil {
		return domain.Graph{}, mapError(err, "edges", "all")
	}

	// Sorted here rather than in SQL: database collations differ from Go's
	// byte order.
	slices.SortFunc(g.Edges, func(x, y domain.Edge) int { return x.Pair.Compare(y.Pair) })
	return g, nil
}

// Neighbors lists the nodes adjacent to n, heaviest edge first, ties by
// node order. limit <= 0 returns all of them. An unknown node fails with
// domain.ErrNotFound.
func (s *Store) Neighbors(ctx context.Context, n domain.SenseNode, limit int) ([]Neighbor, error) {
	var id string
	lookup := s.sb.Select("id").From("nodes").Where(sq.Eq{"word": n.Word, "sense": n.Sense})
	sqlStr, args, err := lookup.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build node query: %w", err)
	}
	if err := s.q(ctx).QueryRowContext(ctx, sqlStr, args...).Scan(&id); err != nil {
		return nil, mapError(err, "node", n.String())
	}

	query := s.sb.
		Select("m.word", "m.sense", "e.weight").
		From("edges e").
		Join("nodes m ON m.id = CASE WHEN e.source = ? THEN e.target ELSE e.source END", id).
		Where(sq.Or{sq.Eq{"e.source": id}, sq.Eq{"e.target": id}})

	sqlStr, args, err = query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build neighbors query: %w", err)
	}

	rows, err := s.q(ctx).QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapError(err, "neighbors", n.String())
	}
	defer rows.Close()

	var out []Neighbor
	for rows.Next() {
		var nb Neighbor
		if err := rows.Scan(&nb.Node.Word, &nb.Node.Sense, &nb.Weight); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		out = append(out, nb)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "neighbors", n.String())
	}

	slices.SortFunc(out, func(x, y Neighbor) int {
		if c := cmp.Compare(y.Weight, x.Weight); c != 0 {
			return c
		}
		return x.Node.Compare(y.Node)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Counts returns the number of stored nodes and edges.
func (s *Store) Counts(ctx context.Context) (nodes, edges int, err error) {
	if nodes, err = s.count(ctx, "nodes"); err != nil {
		return 0, 0, err
	}
	if edges, err = s.count(ctx, "edges"); err != nil {
		return 0, 0, err
	}
	return nodes, edges, nil
}

// LastRun returns the most recent load, or domain.ErrNotFound when the
// store is empty.
func (s *Store) LastRun(ctx context.Context) (Run, error) {
	query := s.sb.
		Select("id", "loaded_at", "node_count", "edge_count").
		From("runs").
		OrderBy("loaded_at DESC").
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return Run{}, fmt.Errorf("build run query: %w", err)
	}

	var (
		run      Run
		id       string
		loadedAt string
	)
	if err := s.q(ctx).QueryRowContext(ctx, sqlStr, args...).Scan(&id, &loadedAt, &run.Nodes, &run.Edges); err != nil {
		return Run{}, mapError(err, "run", "latest")
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("parse run id %q: %w", id, err)
	}
	if run.LoadedAt, err = time.Parse(timeLayout, loadedAt); err != nil {
		return Run{}, fmt.Errorf("parse run time %q: %w", loadedAt, err)
	}
	return run, nil
}

func (s *Store) count(ctx context.Context, table string) (int, error) {
	sqlStr, args, err := s.sb.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int
	if err := s.q(ctx).QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, mapError(err, table, "count")
	}
	return n, nil
}

func (s *Store) exec(ctx context.Context, b sq.Sqlizer) error {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	_, err = s.q(ctx).ExecContext(ctx, sqlStr, args...)
	return err
}
