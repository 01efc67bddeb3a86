package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeVariant(id string, typ Type) *Variant {
	return &Variant{
		ID:    id,
		Type:  typ,
		Chrom: "1",
		Pos:   100,
		Coding: map[string]*MutationSyntax{
			"ENST00000000001": {TranscriptID: "ENST00000000001", ProteinPos: -1},
		},
	}
}

func allTypes() []*Variant {
	return []*Variant{
		makeVariant("unknown", Unknown),
		makeVariant("snp", SNP),
		makeVariant("ins", Insertion),
		makeVariant("del", Deletion),
		makeVariant("fsins", FrameshiftInsertion),
		makeVariant("fsdel", FrameshiftDeletion),
	}
}

func ids(vs []*Variant) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{"defaults drop only unknown", FilterOptions{}, []string{"snp", "ins", "del", "fsins", "fsdel"}},
		{"snp", FilterOptions{SNP: true}, []string{"ins", "del", "fsins", "fsdel"}},
		{"indel", FilterOptions{Indel: true}, []string{"snp"}},
		{"frameshift only", FilterOptions{FrameshiftIndel: true}, []string{"snp", "ins", "del"}},
		{"indel and frameshift", FilterOptions{Indel: true, FrameshiftIndel: true}, []string{"snp"}},
		{"snp and frameshift", FilterOptions{SNP: true, FrameshiftIndel: true}, []string{"ins", "del"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(allTypes(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_Empty(t *testing.T) {
	got, err := Filter(allTypes(), FilterOptions{SNP: true, Indel: true})
	assert.ErrorIs(t, err, ErrNoVariants)
	assert.Empty(t, got)

	_, err = Filter(nil, FilterOptions{})
	assert.ErrorIs(t, err, ErrNoVariants)
}

func TestFilter_PreservesOrder(t *testing.T) {
	in := []*Variant{
		makeVariant("c", SNP),
		makeVariant("a", Deletion),
		makeVariant("b", SNP),
	}
	got, err := Filter(in, FilterOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids(got))
}

func TestNew(t *testing.T) {
	coding := map[string]*MutationSyntax{
		"ENST00000269305": {TranscriptID: "ENST00000269305", TranscriptPos: 523, ProteinPos: 174, GeneID: "TP53"},
	}
	v := New("rs1", "17", 7675088, "c", "t", coding, false)
	require.NotNil(t, v)
	assert.Equal(t, "C", v.Ref)
	assert.Equal(t, "T", v.Alt)
	assert.Equal(t, SNP, v.Type)
	assert.Equal(t, int64(7675088), v.Pos)
	assert.False(t, v.Homozygous)
	assert.Equal(t, "17:7675088C>T", v.Key())
	assert.Equal(t, []string{"ENST00000269305"}, v.Transcripts())

	assert.Nil(t, New("rs2", "17", 1, "C", "T", nil, true))
}

func TestMutationSyntax_HasGene(t *testing.T) {
	assert.True(t, (&MutationSyntax{GeneID: "KRAS"}).HasGene())
	assert.False(t, (&MutationSyntax{}).HasGene())
}
