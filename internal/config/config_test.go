package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
log:
  level: "debug"
  format: "json"

extract:
  sense_policy: "normalized"
  skip_pos: ["Character", "symbol"]
  skip_synonyms: true
  dedup_window: 1024
  max_line_size: 65536

build:
  sense_cutoff: 20
  edge_cutoff: 4
  workers: 3

format:
  node_ids: "sequential"
  indent: true

store:
  driver: "pgx"
  dsn: "postgres://u:p@localhost:5432/colex"
  batch_size: 100
`

func TestLoad_ValidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Extract.SensePolicy != "normalized" {
		t.Errorf("SensePolicy = %q", cfg.Extract.SensePolicy)
	}
	if !slices.Equal(cfg.Extract.SkipPOS, []string{"character", "symbol"}) {
		t.Errorf("SkipPOS = %v", cfg.Extract.SkipPOS)
	}
	if !cfg.Extract.SkipSynonyms {
		t.Error("SkipSynonyms should be true")
	}
	if cfg.Extract.DedupWindow != 1024 || cfg.Extract.MaxLineSize != 65536 {
		t.Errorf("Extract = %+v", cfg.Extract)
	}
	if cfg.Build.SenseCutoff != 20 || cfg.Build.EdgeCutoff != 4 || cfg.Build.EffectiveWorkers() != 3 {
		t.Errorf("Build = %+v", cfg.Build)
	}
	if cfg.Format.NodeIDs != NodeIDsSequential || !cfg.Format.Indent {
		t.Errorf("Format = %+v", cfg.Format)
	}
	if cfg.Store.Driver != DriverPostgres || cfg.Store.BatchSize != 100 {
		t.Errorf("Store = %+v", cfg.Store)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log defaults = %+v", cfg.Log)
	}
	if cfg.Extract.SensePolicy != "exact" {
		t.Errorf("SensePolicy default = %q", cfg.Extract.SensePolicy)
	}
	if !slices.Equal(cfg.Extract.SkipPOS, []string{"character", "symbol", "punct"}) {
		t.Errorf("SkipPOS default = %v", cfg.Extract.SkipPOS)
	}
	if cfg.Extract.SkipSynonyms {
		t.Error("SkipSynonyms default should be false")
	}
	if cfg.Extract.MaxLineSize != 16<<20 {
		t.Errorf("MaxLineSize default = %d", cfg.Extract.MaxLineSize)
	}
	if cfg.Build.SenseCutoff != 1 || cfg.Build.EdgeCutoff != 1 {
		t.Errorf("cutoffs should default to 1, got %+v", cfg.Build)
	}
	if cfg.Build.EffectiveWorkers() < 1 {
		t.Error("EffectiveWorkers should be positive")
	}
	if cfg.Format.NodeIDs != NodeIDsConcept {
		t.Errorf("NodeIDs default = %q", cfg.Format.NodeIDs)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.DSN != "colexification.db" || cfg.Store.BatchSize != 500 {
		t.Errorf("Store defaults = %+v", cfg.Store)
	}
}

func TestLoad_LogLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeYAML(t, t.TempDir(), `
extract:
  sense_policy: "stemmed"
build:
  workers: -2
format:
  node_ids: "uuid"
store:
  driver: "mysql"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *domain.ValidationError, got %T: %v", err, err)
	}
	fields := make(map[string]bool)
	for _, fe := range vErr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"extract.sense_policy", "build.workers", "format.node_ids", "store.driver"} {
		if !fields[want] {
			t.Errorf("missing validation error for %s (got %v)", want, vErr.Errors)
		}
	}
}

func TestValidate_NegativeCutoffs(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Extract: ExtractConfig{SensePolicy: "exact", MaxLineSize: 1 << 20},
		Build:   BuildConfig{SenseCutoff: 0, EdgeCutoff: -1},
		Format:  FormatConfig{NodeIDs: NodeIDsConcept},
		Store:   StoreConfig{Driver: DriverSQLite, BatchSize: 10},
	}

	err := cfg.Validate()
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
