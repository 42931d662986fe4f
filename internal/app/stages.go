package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/palasimi/colexification-graphs/internal/checkpoint"
	"github.com/palasimi/colexification-graphs/internal/colex"
	"github.com/palasimi/colexification-graphs/internal/config"
	"github.com/palasimi/colexification-graphs/internal/cytoscape"
	"github.com/palasimi/colexification-graphs/internal/domain"
	"github.com/palasimi/colexification-graphs/internal/report"
	"github.com/palasimi/colexification-graphs/internal/wiktionary"
)

// Extract reads a Kaikki JSONL dump from r and writes checkpoint A to w.
func Extract(ctx context.Context, log *slog.Logger, cfg config.ExtractConfig, r io.Reader, w io.Writer) (wiktionary.Stats, error) {
	policy, err := domain.ParseSensePolicy(cfg.SensePolicy)
	if err != nil {
		return wiktionary.Stats{}, err
	}

	x, err := wiktionary.New(log, wiktionary.Options{
		Policy:       policy,
		SkipPOS:      cfg.SkipPOS,
		SkipSynonyms: cfg.SkipSynonyms,
		DedupWindow:  cfg.DedupWindow,
		MaxLineSize:  cfg.MaxLineSize,
	})
	if err != nil {
		return wiktionary.Stats{}, fmt.Errorf("create extractor: %w", err)
	}

	out := checkpoint.NewObservationWriter(w)
	stats, err := x.Run(ctx, r, out.Write)
	if err != nil {
		return stats, fmt.Errorf("extract: %w", err)
	}
	if err := out.Flush(); err != nil {
		return stats, err
	}

	log.Info("extraction finished",
		slog.Int("lines", stats.TotalLines),
		slog.Int("malformed", stats.MalformedLines),
		slog.Int("skipped_entries", stats.SkippedEntries),
		slog.Int("observations", stats.Observations),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("warnings", stats.Warnings),
	)
	return stats, nil
}

// ReadObservations loads all of checkpoint A into memory.
func ReadObservations(r io.Reader) ([]domain.Observation, error) {
	var observations []domain.Observation
	_, err := checkpoint.ReadObservations(r, func(o domain.Observation) error {
		observations = append(observations, o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read observations: %w", err)
	}
	return observations, nil
}

// Build reads checkpoint A from r, builds the graph and writes checkpoint B
// to w.
func Build(ctx context.Context, log *slog.Logger, cfg config.BuildConfig, r io.Reader, w io.Writer) (colex.Stats, error) {
	observations, err := ReadObservations(r)
	if err != nil {
		return colex.Stats{}, err
	}

	b := colex.NewBuilder(log, colex.Options{
		SenseCutoff: cfg.SenseCutoff,
		EdgeCutoff:  cfg.EdgeCutoff,
		Workers:     cfg.EffectiveWorkers(),
	})
	g, stats, err := b.BuildWithStats(ctx, observations)
	if err != nil {
		return stats, fmt.Errorf("build graph: %w", err)
	}

	if err := checkpoint.WriteEdges(w, g.Edges); err != nil {
		return stats, err
	}
	return stats, nil
}

// Format reads checkpoint B from r and writes the Cytoscape document to w.
// It returns the number of nodes written.
func Format(cfg config.FormatConfig, r io.Reader, w io.Writer) (int, error) {
	edges, err := checkpoint.ReadEdges(r)
	if err != nil {
		return 0, fmt.Errorf("read edges: %w", err)
	}

	doc, err := cytoscape.Build(domain.Graph{Edges: edges}, cytoscape.NodeIDs(cfg.NodeIDs))
	if err != nil {
		return 0, fmt.Errorf("format graph: %w", err)
	}
	if err := cytoscape.Encode(w, doc, cfg.Indent); err != nil {
		return 0, err
	}
	return len(doc.Elements.Nodes), nil
}

// Quantiles reads checkpoint B from r and writes the weight summary to w.
func Quantiles(r io.Reader, w io.Writer) (report.Summary, error) {
	edges, err := checkpoint.ReadEdges(r)
	if err != nil {
		return report.Summary{}, fmt.Errorf("read edges: %w", err)
	}
	s := report.Summarize(edges)
	if err := report.Write(w, s); err != nil {
		return s, err
	}
	return s, nil
}

// Collisions reads checkpoint A from r and writes every group of distinct
// nodes sharing a concept ID to w, one tab-separated line per node.
func Collisions(r io.Reader, w io.Writer) ([]domain.Collision, error) {
	seen := make(map[domain.SenseNode]struct{})
	var nodes []domain.SenseNode
	_, err := checkpoint.ReadObservations(r, func(o domain.Observation) error {
		n := o.Node()
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			nodes = append(nodes, n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read observations: %w", err)
	}

	collisions := domain.FindCollisions(nodes)
	for _, c := range collisions {
		for _, n := range c.Nodes {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, n.Word, n.Sense); err != nil {
				return collisions, fmt.Errorf("write collisions: %w", err)
			}
		}
	}
	return collisions, nil
}
