package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palasimi/colexification-graphs/internal/config"
	"github.com/palasimi/colexification-graphs/internal/domain"
)

func TestExtract_UnknownSensePolicy(t *testing.T) {
	cfg := defaultConfig(t).Extract
	cfg.SensePolicy = "fuzzy"

	var out bytes.Buffer
	_, err := Extract(context.Background(), discardLogger(), cfg, strings.NewReader(sampleDump), &out)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, out.Len())
}

func TestBuild_FromObservations(t *testing.T) {
	input := "bank\ten\triver_edge\n" +
		"bank\ten\tfinancial_institution\n" +
		"banque\tfr\tfinancial_institution\tbank\n"

	var out bytes.Buffer
	stats, err := Build(context.Background(), discardLogger(), defaultConfig(t).Build, strings.NewReader(input), &out)
	require.NoError(t, err)

	assert.Equal(t, "bank\tfinancial_institution\tbank\triver_edge\t1\n", out.String())
	assert.Equal(t, 1, stats.Edges)
	assert.Equal(t, 3, stats.Observations)
}

func TestBuild_BadCheckpoint(t *testing.T) {
	var out bytes.Buffer
	_, err := Build(context.Background(), discardLogger(), defaultConfig(t).Build, strings.NewReader("bank\ten\n"), &out)

	var recErr *domain.RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 1, recErr.Line)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestFormat_SequentialIDs(t *testing.T) {
	var out bytes.Buffer
	nodes, err := Format(config.FormatConfig{NodeIDs: config.NodeIDsSequential}, strings.NewReader(sampleEdges), &out)
	require.NoError(t, err)

	assert.Equal(t, 3, nodes)
	assert.Contains(t, out.String(), `"source":"1","target":"2","weight":1`)
	assert.Contains(t, out.String(), `"source":"2","target":"3","weight":1`)
}

func TestFormat_EmptyGraph(t *testing.T) {
	var out bytes.Buffer
	nodes, err := Format(config.FormatConfig{NodeIDs: config.NodeIDsConcept}, strings.NewReader(""), &out)
	require.NoError(t, err)

	assert.Zero(t, nodes)
	assert.JSONEq(t, `{"elements":{"nodes":[],"edges":[]}}`, out.String())
}

func TestQuantiles_Summary(t *testing.T) {
	var out bytes.Buffer
	s, err := Quantiles(strings.NewReader(sampleEdges), &out)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Edges)
	assert.Contains(t, out.String(), "edges: 2")
}

func TestCollisions_None(t *testing.T) {
	input := "bank\ten\triver_edge\n" +
		"banque\tfr\tfinancial_institution\tbank\n" +
		"bank\ten\tfinancial_institution\n"

	var out bytes.Buffer
	collisions, err := Collisions(strings.NewReader(input), &out)
	require.NoError(t, err)

	assert.Empty(t, collisions)
	assert.Zero(t, out.Len())
}

func TestExtractThenBuild_RepairedFieldsDoNotReachGraph(t *testing.T) {
	dump := sampleDump +
		`{"word":"cat","pos":"noun","lang_code":"en","senses":[{"translations":[{"code":"fr","word":"\nchat","sense":"feline"},{"code":"\nxx","word":"kat","sense":"feline"}]}]}` + "\n" +
		`{"word":"dog","pos":"noun","lang_code":"en","senses":[{"translations":[{"code":"fr","word":"\nchien","sense":"canine"}]}]}` + "\n"
	cfg := defaultConfig(t)

	var observations bytes.Buffer
	_, err := Extract(context.Background(), discardLogger(), cfg.Extract, strings.NewReader(dump), &observations)
	require.NoError(t, err)

	var edges bytes.Buffer
	_, err = Build(context.Background(), discardLogger(), cfg.Build, &observations, &edges)
	require.NoError(t, err)
	assert.Equal(t, sampleEdges, edges.String())
}
