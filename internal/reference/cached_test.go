package reference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache map[string]*GeneRecord

func (m memCache) GetGene(_ context.Context, assembly, symbol string) (*GeneRecord, bool, error) {
	r, ok := m[assembly+"/"+symbol]
	return r, ok, nil
}

func (m memCache) PutGene(_ context.Context, assembly string, rec *GeneRecord) error {
	m[assembly+"/"+rec.Symbol] = rec
	return nil
}

func TestCachedLookup(t *testing.T) {
	srv, calls := newEnsemblServer(t, map[string]string{"KRAS": "kras_grch38.json"})
	cache := memCache{}
	lookup := NewCachedLookup(NewEnsemblClientWithURL(srv.URL), cache, "grch38")

	first, err := lookup.LookupGene(context.Background(), "KRAS")
	require.NoError(t, err)
	second, err := lookup.LookupGene(context.Background(), "KRAS")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, cache, "GRCh38/KRAS")

	_, err = lookup.LookupGene(context.Background(), "NOTAGENE")
	require.Error(t, err)
	assert.NotContains(t, cache, "GRCh38/NOTAGENE")
}

func TestResolveAll(t *testing.T) {
	srv, _ := newEnsemblServer(t, map[string]string{
		"KRAS": "kras_grch38.json",
		"TP53": "tp53_grch37.json",
	})
	client := NewEnsemblClientWithURL(srv.URL)

	records, err := ResolveAll(context.Background(), client, []string{"TP53", "KRAS"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "TP53", records[0].Symbol)

	assert.Equal(t, map[string]string{
		"ENST00000269305": "TP53",
		"ENST00000311936": "KRAS",
	}, TranscriptSymbols(records))

	_, err = ResolveAll(context.Background(), client, []string{"KRAS", "NOTAGENE"})
	assert.ErrorIs(t, err, ErrGeneNotFound)
}
