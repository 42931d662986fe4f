// Package report summarises the edge weights of a colexification graph.
package report

import (
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

// Divisions are the quantile counts reported by Summarize.
var Divisions = []int{2, 3, 4, 5, 10, 100, 1000}

// Summary describes the weight distribution of a graph.
type Summary struct {
	Edges     int     `yaml:"edges"`
	Min       int     `yaml:"min"`
	Max       int     `yaml:"max"`
	Mean      float64 `yaml:"mean"`
	Quantiles []Cut   `yaml:"quantiles,omitempty"`
}

// Cut lists the n-1 cut points that divide the weights into n groups.
type Cut struct {
	N      int       `yaml:"n"`
	Points []float64 `yaml:"points,flow"`
}

// Quantiles returns the n-1 cut points dividing data into n intervals of
// equal probability, using the exclusive method (the default of Python's
// statistics.quantiles). data must be sorted. It returns nil when
// n < 1 or data has fewer than two values.
func Quantiles(data []int, n int) []float64 {
	ld := len(data)
	if n < 1 || ld < 2 {
		return nil
	}

	m := ld + 1
	points := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		j := min(max(i*m/n, 1), ld-1)
		delta := i*m - j*n
		points = append(points, float64(data[j-1]*(n-delta)+data[j]*delta)/float64(n))
	}
	return points
}

// Summarize computes the weight summary of edges. With fewer than two
// edges the summary carries no quantiles.
func Summarize(edges []domain.Edge) Summary {
	s := Summary{Edges: len(edges)}
	if len(edges) == 0 {
		return s
	}

	weights := domain.Graph{Edges: edges}.Weights()
	slices.Sort(weights)
	total := 0
	for _, w := range weights {
		total += w
	}

	s.Min = weights[0]
	s.Max = weights[len(weights)-1]
	s.Mean = float64(total) / float64(len(weights))
	if len(weights) < 2 {
		return s
	}
	for _, n := range Divisions {
		s.Quantiles = append(s.Quantiles, Cut{N: n, Points: Quantiles(weights, n)})
	}
	return s
}

// Write encodes s as YAML.
func Write(w io.Writer, s Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}
