package checkpoint

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palasimi/colexification-graphs/internal/domain"
)

func TestObservations_RoundTrip(t *testing.T) {
	t.Parallel()

	in := []domain.Observation{
		{Word: "bank", Language: "en", Sense: "river_edge"},
		{Word: "banque", Language: "fr", Sense: "financial_institution", Headword: "bank"},
		{Word: `say "hi"`, Language: "en", Sense: "greeting"},
		{Word: "", Language: "en", Sense: ""},
	}

	var buf bytes.Buffer
	w := NewObservationWriter(&buf)
	for _, o := range in {
		require.NoError(t, w.Write(o))
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, len(in), w.Rows())

	var out []domain.Observation
	n, err := ReadObservations(&buf, func(o domain.Observation) error {
		out = append(out, o)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, len(in), n)
	assert.Equal(t, in, out)
}

func TestReadObservations_Fixture(t *testing.T) {
	t.Parallel()

	f, err := os.Open("testdata/observations.tsv")
	require.NoError(t, err)
	defer f.Close()

	var nodes []domain.SenseNode
	_, err = ReadObservations(f, func(o domain.Observation) error {
		nodes = append(nodes, o.Node())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.SenseNode{
		{Word: "bank", Sense: "river_edge"},
		{Word: "bank", Sense: "financial_institution"},
		{Word: "bank", Sense: "financial_institution"},
	}, nodes)
}

func TestReadObservations_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{name: "too few columns", input: "bank\ten\triver\nbank\ten\n", wantLine: 2},
		{name: "too many columns", input: "a\tb\tc\td\te\n", wantLine: 1},
		{name: "empty language", input: "bank\t\triver\n", wantLine: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadObservations(strings.NewReader(tt.input), func(domain.Observation) error { return nil })
			require.ErrorIs(t, err, domain.ErrInvalidRecord)

			var recErr *domain.RecordError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, tt.wantLine, recErr.Line)
		})
	}
}

func TestReadObservations_CallbackError(t *testing.T) {
	t.Parallel()

	stop := errors.New("stop")
	_, err := ReadObservations(strings.NewReader("a\ten\ts\n"), func(domain.Observation) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestEdges_RoundTrip(t *testing.T) {
	t.Parallel()

	in := []domain.Edge{
		domain.NewEdge(
			domain.SenseNode{Word: "bank", Sense: "river_edge"},
			domain.SenseNode{Word: "bank", Sense: "financial_institution"},
			1,
		),
		domain.NewEdge(
			domain.SenseNode{Word: "tree", Sense: "plant"},
			domain.SenseNode{Word: "wood", Sense: "material, \"timber\""},
			42,
		),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEdges(&buf, in))

	out, err := ReadEdges(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadEdges_Fixture(t *testing.T) {
	t.Parallel()

	f, err := os.Open("testdata/edges.tsv")
	require.NoError(t, err)
	defer f.Close()

	edges, err := ReadEdges(f)
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, 3, edges[0].Weight)
	assert.Equal(t, domain.SenseNode{Word: "bench", Sense: "long seat"}, edges[1].B)
}

func TestReadEdges_Canonicalises(t *testing.T) {
	t.Parallel()

	edges, err := ReadEdges(strings.NewReader("b\ts\ta\ts\t2\n"))
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "a", edges[0].A.Word)
	assert.Equal(t, "b", edges[0].B.Word)
}

func TestReadEdges_Empty(t *testing.T) {
	t.Parallel()

	edges, err := ReadEdges(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestReadEdges_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "wrong column count", input: "a\ts\tb\ts\n"},
		{name: "non-integer weight", input: "a\ts\tb\ts\tmany\n"},
		{name: "zero weight", input: "a\ts\tb\ts\t0\n"},
		{name: "negative weight", input: "a\ts\tb\ts\t-3\n"},
		{name: "self-loop", input: "a\ts\ta\ts\t1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadEdges(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, domain.ErrInvalidRecord)
		})
	}
}
