package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/palasimi/colexification-graphs/internal/checkpoint"
	"github.com/palasimi/colexification-graphs/internal/config"
	"github.com/palasimi/colexification-graphs/internal/domain"
	"github.com/palasimi/colexification-graphs/internal/fileio"
	"github.com/palasimi/colexification-graphs/internal/manifest"
	"github.com/palasimi/colexification-graphs/pkg/ctxutil"
)

// Pipeline phases.
const (
	PhaseExtract = "extract"
	PhaseBuild   = "build"
	PhaseFormat  = "format"
	PhaseReport  = "report"
	PhaseStore   = "store"
)

// allPhases defines the canonical execution order.
var allPhases = []string{PhaseExtract, PhaseBuild, PhaseFormat, PhaseReport, PhaseStore}

// DefaultPhases run when no phase is named. Loading the SQL store is opt-in.
var DefaultPhases = []string{PhaseExtract, PhaseBuild, PhaseFormat, PhaseReport}

// Artifact file names inside the output directory.
const (
	ObservationsFile = "observations.tsv"
	EdgesFile        = "edges.tsv"
	GraphFile        = "graph.json"
	QuantilesFile    = "quantiles.yaml"
)

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Rows     int
	Skipped  int
	Errors   int
	Duration time.Duration
	Err      error
}

// GraphStore receives the finished graph.
type GraphStore interface {
	Replace(ctx context.Context, runID uuid.UUID, g domain.Graph) error
	Close() error
}

// StoreOpener opens the graph store for the store phase.
type StoreOpener func(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (GraphStore, error)

// Pipeline runs the extract → build → format chain over files in one output
// directory. Every phase reads its input from the previous phase's file, so
// a later phase can be rerun alone.
type Pipeline struct {
	log       *slog.Logger
	cfg       *config.Config
	input     string
	outDir    string
	openStore StoreOpener
	runID     uuid.UUID
	results   map[string]PhaseResult
	manifest  *manifest.Manifest
}

// NewPipeline creates a Pipeline reading the dump at input and writing into
// outDir. openStore may be nil when the store phase is never run.
func NewPipeline(log *slog.Logger, cfg *config.Config, input, outDir string, openStore StoreOpener) *Pipeline {
	runID := uuid.New()
	return &Pipeline{
		log:       log,
		cfg:       cfg,
		input:     input,
		outDir:    outDir,
		openStore: openStore,
		runID:     runID,
		results:   make(map[string]PhaseResult),
		manifest:  manifest.New(runID, Version, input, *cfg),
	}
}

// RunID returns the ID recorded in logs, the manifest and the store.
func (p *Pipeline) RunID() uuid.UUID {
	return p.runID
}

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// Run executes the pipeline. If phases is empty, DefaultPhases run; the
// listed phases always run in canonical order. The first failing phase
// stops the run and its error is returned. A manifest left by an earlier
// run is removed first; the new one is written only when every phase
// succeeded.
func (p *Pipeline) Run(ctx context.Context, phases []string) error {
	if len(phases) == 0 {
		phases = DefaultPhases
	}
	for _, ph := range phases {
		if !slices.Contains(allPhases, ph) {
			return fmt.Errorf("unknown phase %q: %w", ph, domain.ErrValidation)
		}
	}

	if err := os.MkdirAll(p.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	// A manifest describes a finished run only.
	if err := os.Remove(p.path(manifest.FileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove previous manifest: %w", err)
	}

	ctx = ctxutil.WithRunID(ctxutil.WithLogger(ctx, p.log), p.runID)
	log := ctxutil.LoggerFromCtx(ctx)

	toRun := make([]string, 0, len(phases))
	for _, ph := range allPhases {
		if slices.Contains(phases, ph) {
			toRun = append(toRun, ph)
		}
	}

	for _, phase := range toRun {
		start := time.Now()
		log.Info("starting phase", slog.String("phase", phase))

		var result PhaseResult
		switch phase {
		case PhaseExtract:
			result = p.runExtract(ctx, log)
		case PhaseBuild:
			result = p.runBuild(ctx, log)
		case PhaseFormat:
			result = p.runFormat()
		case PhaseReport:
			result = p.runReport()
		case PhaseStore:
			result = p.runStore(ctx, log)
		}
		result.Duration = time.Since(start)
		p.results[phase] = result

		if result.Err != nil {
			log.Error("phase failed",
				slog.String("phase", phase),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
			return fmt.Errorf("phase %s: %w", phase, result.Err)
		}
		log.Info("phase completed",
			slog.String("phase", phase),
			slog.Int("rows", result.Rows),
			slog.Int("skipped", result.Skipped),
			slog.Int("errors", result.Errors),
			slog.Duration("duration", result.Duration),
		)
	}

	p.manifest.Finish()
	if err := manifest.Write(p.path(manifest.FileName), p.manifest); err != nil {
		return err
	}

	log.Info("pipeline completed", slog.Int("phases_run", len(toRun)))
	return nil
}

func (p *Pipeline) path(name string) string {
	return filepath.Join(p.outDir, name)
}

// Transform opens the input file and creates the output file around fn.
// The output is removed when fn or closing fails, so no partial artifact is
// left behind.
func Transform(in, out string, fn func(r io.Reader, w io.Writer) error) (err error) {
	r, err := fileio.Open(in)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := fileio.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", out, cerr)
		}
		if err != nil && out != fileio.Stdio {
			_ = os.Remove(out)
		}
	}()

	return fn(r, w)
}

func (p *Pipeline) runExtract(ctx context.Context, log *slog.Logger) PhaseResult {
	out := p.path(ObservationsFile)
	var result PhaseResult

	err := Transform(p.input, out, func(r io.Reader, w io.Writer) error {
		stats, err := Extract(ctx, log, p.cfg.Extract, r, w)
		result.Rows = stats.Observations
		result.Skipped = stats.SkippedEntries + stats.Duplicates
		result.Errors = stats.MalformedLines
		return err
	})
	if err != nil {
		result.Err = err
		return result
	}
	result.Err = p.manifest.AddArtifact(PhaseExtract, out, result.Rows)
	return result
}

func (p *Pipeline) runBuild(ctx context.Context, log *slog.Logger) PhaseResult {
	out := p.path(EdgesFile)
	var result PhaseResult

	err := Transform(p.path(ObservationsFile), out, func(r io.Reader, w io.Writer) error {
		stats, err := Build(ctx, log, p.cfg.Build, r, w)
		result.Rows = stats.Edges
		result.Skipped = stats.DroppedEdges
		return err
	})
	if err != nil {
		result.Err = err
		return result
	}
	result.Err = p.manifest.AddArtifact(PhaseBuild, out, result.Rows)
	return result
}

func (p *Pipeline) runFormat() PhaseResult {
	out := p.path(GraphFile)
	var result PhaseResult

	err := Transform(p.path(EdgesFile), out, func(r io.Reader, w io.Writer) error {
		nodes, err := Format(p.cfg.Format, r, w)
		result.Rows = nodes
		return err
	})
	if err != nil {
		result.Err = err
		return result
	}
	result.Err = p.manifest.AddArtifact(PhaseFormat, out, result.Rows)
	return result
}

func (p *Pipeline) runReport() PhaseResult {
	out := p.path(QuantilesFile)
	var result PhaseResult

	err := Transform(p.path(EdgesFile), out, func(r io.Reader, w io.Writer) error {
		s, err := Quantiles(r, w)
		result.Rows = s.Edges
		return err
	})
	if err != nil {
		result.Err = err
		return result
	}
	result.Err = p.manifest.AddArtifact(PhaseReport, out, result.Rows)
	return result
}

func (p *Pipeline) runStore(ctx context.Context, log *slog.Logger) PhaseResult {
	if p.openStore == nil {
		return PhaseResult{Err: errors.New("graph store not configured")}
	}

	r, err := fileio.Open(p.path(EdgesFile))
	if err != nil {
		return PhaseResult{Err: err}
	}
	defer r.Close()

	edges, err := checkpoint.ReadEdges(r)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("read edges: %w", err)}
	}

	s, err := p.openStore(ctx, p.cfg.Store, log)
	if err != nil {
		return PhaseResult{Err: err}
	}
	defer s.Close()

	if err := s.Replace(ctx, p.runID, domain.Graph{Edges: edges}); err != nil {
		return PhaseResult{Err: err}
	}
	return PhaseResult{Rows: len(edges)}
}
