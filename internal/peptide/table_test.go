package peptide

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/vibe-neo/internal/variant"
)

func testVariants() []*variant.Variant {
	coding := func(tx string) map[string]*variant.MutationSyntax {
		return map[string]*variant.MutationSyntax{tx: {TranscriptID: tx, ProteinPos: -1}}
	}
	return []*variant.Variant{
		{ID: "kras", Type: variant.SNP, Chrom: "12", Pos: 25245351, Ref: "C", Alt: "A", Coding: coding("ENST00000311936")},
		{ID: "egfr", Type: variant.FrameshiftDeletion, Chrom: "7", Pos: 55174772, Ref: "GAATTA", Coding: coding("ENST00000275493")},
	}
}

func TestProteinHit_TranscriptID(t *testing.T) {
	assert.Equal(t, "ENST00000311936", ProteinHit{ProteinID: "ENST00000311936:FRED2_3"}.TranscriptID())
	assert.Equal(t, "ENST00000311936", ProteinHit{ProteinID: "ENST00000311936"}.TranscriptID())
	assert.Equal(t, "chr12:tx1", ProteinHit{ProteinID: "chr12:tx1:FRED2_0"}.TranscriptID())
	assert.Equal(t, "chr12:tx1", ProteinHit{ProteinID: "chr12:tx1"}.TranscriptID())
}

func TestTableSource_Peptides(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := NewTableSource(findTestFile(t, "peptides.tsv"), testVariants())
	src.SetLogger(zap.New(core))

	peps, err := src.Peptides()
	require.NoError(t, err)

	var seqs []string
	for _, p := range peps {
		seqs = append(seqs, p.Sequence)
	}
	assert.Equal(t, []string{"VVVGACGVGK", "LVVVGAGGVG", "KIPVAIKTSP", "NLKSRMEFK"}, seqs)

	kras := peps[0]
	require.Len(t, kras.Hits, 3)
	assert.Equal(t, "ENST00000256078", kras.Hits[1].TranscriptID())
	require.Len(t, kras.Hits[0].Variants, 1)
	assert.Equal(t, "kras", kras.Hits[0].Variants[0].ID)
	assert.True(t, kras.HasVariants())

	assert.False(t, peps[1].HasVariants())

	// the unknown key on the EGFR row is dropped with a warning; the BRCA2
	// variant is not part of the index either
	require.Len(t, peps[2].Hits[0].Variants, 1)
	assert.Equal(t, "egfr", peps[2].Hits[0].Variants[0].ID)
	assert.False(t, peps[3].HasVariants())
	assert.Equal(t, 2, logs.Len())
}

func TestTableSource_ProteinMode(t *testing.T) {
	src := NewTableSource(findTestFile(t, "peptides.tsv"), nil)
	peps, err := src.Peptides()
	require.NoError(t, err)
	for _, p := range peps {
		assert.False(t, p.HasVariants(), p.Sequence)
	}
}

func TestTableSource_MissingFile(t *testing.T) {
	_, err := NewTableSource("/nonexistent/peptides.tsv", nil).Peptides()
	assert.Error(t, err)
}

func TestTableSource_SkipsBlankSequences(t *testing.T) {
	in := "sequence\tprotein_id\tvariants\n\tENST1\t\nAAAAAAAA\tENST1\t\n"
	peps, err := NewTableSource("", nil).read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, peps, 1)
	assert.Equal(t, "AAAAAAAA", peps[0].Sequence)
}

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}
