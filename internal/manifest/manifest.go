// Package manifest records what a pipeline run produced, so two runs on
// the same input can be compared by digest.
package manifest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"

	"github.com/palasimi/colexification-graphs/internal/config"
)

// FileName is the manifest's name inside a run's output directory.
const FileName = "manifest.yaml"

// Manifest describes one run.
type Manifest struct {
	RunID      string        `yaml:"run_id"`
	Version    string        `yaml:"version"`
	Input      string        `yaml:"input"`
	StartedAt  time.Time     `yaml:"started_at"`
	FinishedAt time.Time     `yaml:"finished_at"`
	Config     config.Config `yaml:"config"`
	Artifacts  []Artifact    `yaml:"artifacts"`
}

// Artifact is one output file.
type Artifact struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Rows   int    `yaml:"rows"`
	Bytes  int64  `yaml:"bytes"`
	BLAKE3 string `yaml:"blake3"`
}

// New starts a manifest for a run.
func New(runID uuid.UUID, version, input string, cfg config.Config) *Manifest {
	return &Manifest{
		RunID:     runID.String(),
		Version:   version,
		Input:     input,
		StartedAt: time.Now().UTC(),
		Config:    cfg,
	}
}

// AddArtifact digests the file at path and records it.
func (m *Manifest) AddArtifact(name, path string, rows int) error {
	sum, size, err := Digest(path)
	if err != nil {
		return err
	}
	m.Artifacts = append(m.Artifacts, Artifact{
		Name:   name,
		Path:   path,
		Rows:   rows,
		Bytes:  size,
		BLAKE3: sum,
	})
	return nil
}

// Finish stamps the finish time.
func (m *Manifest) Finish() {
	m.FinishedAt = time.Now().UTC()
}

// Digest returns the hex BLAKE3-256 digest and size of the file at path,
// as stored on disk.
func Digest(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("digest %s: %w", path, err)
	}
	defer f.Close()

	hasher := blake3.New(32, nil)
	n, err := io.Copy(hasher, f)
	if err != nil {
		return "", 0, fmt.Errorf("digest %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), n, nil
}

// Write stores m as YAML at path.
func Write(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// SameOutputs reports whether two runs produced byte-identical artifacts
// under the same names.
func SameOutputs(a, b *Manifest) bool {
	if len(a.Artifacts) != len(b.Artifacts) {
		return false
	}
	digests := make(map[string]string, len(a.Artifacts))
	for _, art := range a.Artifacts {
		digests[art.Name] = art.BLAKE3
	}
	for _, art := range b.Artifacts {
		if d, ok := digests[art.Name]; !ok || d != art.BLAKE3 {
			return false
		}
	}
	return true
}
