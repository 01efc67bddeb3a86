package provenance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-neo/internal/annotate"
	"github.com/inodb/vibe-neo/internal/peptide"
	"github.com/inodb/vibe-neo/internal/variant"
)

var (
	krasG12C = &variant.Variant{ID: "rs121913530", Type: variant.SNP, Chrom: "12", Pos: 25245351, Ref: "C", Alt: "A"}
	krasG13D = &variant.Variant{ID: "rs112445441", Type: variant.SNP, Chrom: "12", Pos: 25245347, Ref: "C", Alt: "T"}
	tp53R175 = &variant.Variant{ID: "rs28934578", Type: variant.SNP, Chrom: "17", Pos: 7675088, Ref: "C", Alt: "T"}
)

func testGenes() annotate.TranscriptGenes {
	return annotate.TranscriptGenes{
		"ENST00000311936": "KRAS",
		"ENST00000256078": "KRAS",
		"ENST00000269305": "TP53",
		"ENST00000389048": "",
	}
}

func TestFormatVariants(t *testing.T) {
	p := &peptide.Peptide{
		Sequence: "VVVGACGVGK",
		Hits: []peptide.ProteinHit{
			{ProteinID: "ENST00000311936:FRED2_0", Variants: []*variant.Variant{krasG12C, krasG13D, krasG12C}},
			{ProteinID: "ENST00000269305:FRED2_0"},
			{ProteinID: "ENST00000256078:FRED2_0", Variants: []*variant.Variant{krasG12C}},
			{ProteinID: "ENST00000311936:FRED2_1", Variants: []*variant.Variant{krasG12C, krasG13D}},
		},
	}

	assert.Equal(t,
		"ENST00000311936:12:25245351C>A,12:25245347C>T|ENST00000256078:12:25245351C>A",
		FormatVariants(p))
	assert.Equal(t, "", FormatVariants(&peptide.Peptide{Sequence: "AAAAAAAA"}))
}

func TestReconcile_VariantMode(t *testing.T) {
	peps := []*peptide.Peptide{
		{Sequence: "VVVGACGVGK", Hits: []peptide.ProteinHit{
			{ProteinID: "ENST00000311936:FRED2_0", Variants: []*variant.Variant{krasG12C}},
			{ProteinID: "ENST00000256078:FRED2_0", Variants: []*variant.Variant{krasG12C}},
		}},
		{Sequence: "LVVVGAGGVG", Hits: []peptide.ProteinHit{
			{ProteinID: "ENST00000311936:FRED2_0"},
		}},
		{Sequence: "HMTEVVRHC", Hits: []peptide.ProteinHit{
			{ProteinID: "ENST00000269305:FRED2_0", Variants: []*variant.Variant{tp53R175}},
			{ProteinID: "ENST00000389048:FRED2_0"},
			{ProteinID: "ENST00000999999:FRED2_0"},
		}},
	}

	rows := NewReconciler(testGenes(), Options{WithVariants: true}).Reconcile(peps)
	require.Len(t, rows, 2, "peptide without variants is dropped")

	assert.Equal(t, "VVVGACGVGK", rows[0].Sequence)
	assert.Equal(t, []string{"KRAS"}, rows[0].Genes)
	assert.Equal(t, "ENST00000311936:12:25245351C>A|ENST00000256078:12:25245351C>A", rows[0].Variants)

	assert.Equal(t, "HMTEVVRHC", rows[1].Sequence)
	assert.Equal(t, []string{"-", "TP53"}, rows[1].Genes)
	assert.Equal(t, "ENST00000269305:17:7675088C>T", rows[1].Variants)
}

func TestReconcile_ProteinMode(t *testing.T) {
	peps := []*peptide.Peptide{
		{Sequence: "LVVVGAGGVG", Hits: []peptide.ProteinHit{{ProteinID: "ENST00000311936"}}},
		{Sequence: "HMTEVVRHC", Hits: []peptide.ProteinHit{{ProteinID: "ENST00000269305"}}},
	}

	rows := NewReconciler(testGenes(), Options{}).Reconcile(peps)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"KRAS"}, rows[0].Genes)
	assert.Empty(t, rows[0].Variants)
}

func TestReconcile_MergesDuplicateSequences(t *testing.T) {
	peps := []*peptide.Peptide{
		{Sequence: "VVVGACGVGK", Hits: []peptide.ProteinHit{{ProteinID: "ENST00000269305"}}},
		{Sequence: "VVVGACGVGK", Hits: []peptide.ProteinHit{{ProteinID: "ENST00000311936"}}},
	}

	rows := NewReconciler(testGenes(), Options{}).Reconcile(peps)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"KRAS", "TP53"}, rows[0].Genes)
	assert.Len(t, peps[0].Hits, 1, "input peptides are not modified")
}

func TestReconcile_LengthWindow(t *testing.T) {
	peps := []*peptide.Peptide{
		{Sequence: "AAAAAAA"},
		{Sequence: "AAAAAAAA"},
		{Sequence: "AAAAAAAAAAAA"},
		{Sequence: "AAAAAAAAAAAAA"},
	}

	rows := NewReconciler(testGenes(), Options{MinLength: 8, MaxLength: 12}).Reconcile(peps)
	require.Len(t, rows, 2)
	assert.Equal(t, "AAAAAAAA", rows[0].Sequence)
	assert.Equal(t, "AAAAAAAAAAAA", rows[1].Sequence)
}

func TestJoin(t *testing.T) {
	rows := []Row{
		{Sequence: "VVVGACGVGK", Genes: []string{"KRAS"}},
		{Sequence: "HMTEVVRHC", Genes: []string{"TP53"}},
	}
	table := &peptide.BindingTable{
		Alleles: []string{"HLA-A*02:01", "HLA-B*07:02"},
		Rows: []peptide.BindingRow{
			{Peptide: "HMTEVVRHC", Method: "bimas", Scores: map[string]float64{"HLA-A*02:01": 1.5, "HLA-B*07:02": 2}},
			{Peptide: "NOTREPORTED", Method: "bimas", Scores: map[string]float64{"HLA-A*02:01": 9}},
			{Peptide: "VVVGACGVGK", Method: "bimas", Scores: map[string]float64{"HLA-A*02:01": 0.25}},
		},
	}

	scored := NewReconciler(testGenes(), Options{}).Join(rows, table)
	require.Len(t, scored, 2)
	assert.Equal(t, "HMTEVVRHC", scored[0].Sequence)
	assert.Equal(t, []float64{1.5, 2}, scored[0].Scores)
	assert.Equal(t, "bimas", scored[1].Method)
	assert.Equal(t, []float64{0.25, 0}, scored[1].Scores)
}
