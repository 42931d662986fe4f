package colex

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

// Options configures a Builder. Zero values select the defaults.
type Options struct {
	// SenseCutoff drops sense nodes attested in fewer languages before
	// pairing. Default 1 keeps every node.
	SenseCutoff int
	// EdgeCutoff drops edges lighter than this at emission. Default 1.
	EdgeCutoff int
	// Workers bounds the languages reduced in parallel.
	// Default runtime.GOMAXPROCS(0).
	Workers int
}

// Stats describes one build.
type Stats struct {
	Observations int
	// Languages counts the languages merged into the graph.
	Languages    int
	Nodes        int
	DroppedNodes int
	Pairs        int
	Edges        int
	DroppedEdges int
	Duration     time.Duration
}

// Builder turns observations into a colexification graph.
type Builder struct {
	log  *slog.Logger
	opts Options
}

// NewBuilder creates a Builder.
func NewBuilder(log *slog.Logger, opts Options) *Builder {
	if log == nil {
		log = slog.Default()
	}
	opts.SenseCutoff = max(opts.SenseCutoff, 1)
	opts.EdgeCutoff = max(opts.EdgeCutoff, 1)
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Builder{log: log, opts: opts}
}

// Build computes the weighted edge set of observations. Edge weight is the
// number of distinct languages that colexify the pair; edges come sorted by
// (A, B). Empty input gives an empty graph. A cancelled ctx aborts the
// build and nothing is returned.
func (b *Builder) Build(ctx context.Context, observations []domain.Observation) (domain.Graph, error) {
	g, _, err := b.BuildWithStats(ctx, observations)
	return g, err
}

// BuildWithStats is Build that also reports what the build did.
func (b *Builder) BuildWithStats(ctx context.Context, observations []domain.Observation) (domain.Graph, Stats, error) {
	start := time.Now()
	stats := Stats{Observations: len(observations)}

	parts := GroupByLanguage(observations)
	stats.Nodes = len(parts.NodeLanguages)

	var keep func(domain.SenseNode) bool
	if b.opts.SenseCutoff > 1 {
		keep = func(n domain.SenseNode) bool {
			return parts.NodeLanguages[n] >= b.opts.SenseCutoff
		}
		for _, count := range parts.NodeLanguages {
			if count < b.opts.SenseCutoff {
				stats.DroppedNodes++
			}
		}
	}

	acc := NewAccumulator()
	if err := b.reduce(ctx, parts.Languages, keep, acc); err != nil {
		return domain.Graph{}, stats, err
	}

	stats.Languages = acc.Languages()
	stats.Pairs = acc.Len()
	edges := acc.Edges(b.opts.EdgeCutoff)
	stats.Edges = len(edges)
	stats.DroppedEdges = stats.Pairs - stats.Edges
	stats.Duration = time.Since(start)

	b.log.Info("graph built",
		slog.Int("observations", stats.Observations),
		slog.Int("languages", stats.Languages),
		slog.Int("nodes", stats.Nodes),
		slog.Int("dropped_nodes", stats.DroppedNodes),
		slog.Int("edges", stats.Edges),
		slog.Int("dropped_edges", stats.DroppedEdges),
		slog.Duration("duration", stats.Duration),
	)

	return domain.Graph{Edges: edges}, stats, nil
}

// reduce turns each language into its pair set and merges it into acc.
// Languages are independent, so they run in parallel; the merge is a sum
// and does not depend on completion order.
func (b *Builder) reduce(ctx context.Context, languages []Language, keep func(domain.SenseNode) bool, acc *Accumulator) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for _, lang := range languages {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pairs := lang.Pairs(keep)
			acc.Merge(pairs)
			b.log.Debug("language reduced",
				slog.String("language", lang.Code),
				slog.Int("words", len(lang.Words)),
				slog.Int("pairs", len(pairs)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("reduce languages: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("reduce languages: %w", err)
	}
	return nil
}
