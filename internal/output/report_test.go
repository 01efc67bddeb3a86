package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-neo/internal/provenance"
)

var (
	krasRow = provenance.Row{
		Sequence: "VVVGACGVGK",
		Genes:    []string{"KRAS"},
		Variants: "ENST00000311936:12:25245351C>A",
	}
	multiGeneRow = provenance.Row{
		Sequence: "HMTEVVRHC",
		Genes:    []string{"-", "TP53"},
		Variants: "ENST00000269305:17:7675088C>T",
	}
)

func TestReportWriter_WithoutScores(t *testing.T) {
	tests := []struct {
		name         string
		withVariants bool
		want         string
	}{
		{
			name:         "variants",
			withVariants: true,
			want: "Sequence\tAntigen ID\tVariants\n" +
				"VVVGACGVGK\tKRAS\tENST00000311936:12:25245351C>A\n" +
				"HMTEVVRHC\t-,TP53\tENST00000269305:17:7675088C>T\n",
		},
		{
			name: "proteins",
			want: "Sequence\tAntigen ID\n" +
				"VVVGACGVGK\tKRAS\n" +
				"HMTEVVRHC\t-,TP53\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewReportWriter(&buf, tt.withVariants)
			require.NoError(t, w.WriteHeader())
			require.NoError(t, w.Write(krasRow))
			require.NoError(t, w.Write(multiGeneRow))
			require.NoError(t, w.Flush())
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestReportWriter_WithScores(t *testing.T) {
	var buf bytes.Buffer
	w := NewScoredReportWriter(&buf, []string{"HLA-A*02:01", "HLA-B*07:02"}, true)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteScored(provenance.ScoredRow{
		Row:    krasRow,
		Method: "bimas",
		Scores: []float64{0.12345, 12.5},
	}))
	require.NoError(t, w.Flush())

	assert.Equal(t,
		"Sequence\tMethod\tHLA-A*02:01\tHLA-B*07:02\tAntigen ID\tVariants\n"+
			"VVVGACGVGK\tbimas\t0.123\t12.500\tKRAS\tENST00000311936:12:25245351C>A\n",
		buf.String())
}

func TestCondensedWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewCondensedWriter(&buf, []string{"HLA-A*02:01", "HLA-B*07:02"})

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(provenance.ScoredRow{
		Row:    multiGeneRow,
		Method: "bimas",
		Scores: []float64{3.14159, 0},
	}))
	require.NoError(t, w.Flush())

	assert.Equal(t,
		"Alleles:\tHLA-A*02:01\tHLA-B*07:02\n"+
			"HMTEVVRHC\t3.142\t0.000\t- TP53\n",
		buf.String())
}

func TestWritePeptideList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePeptideList(&buf, []provenance.Row{krasRow, multiGeneRow}))
	assert.Equal(t, "VVVGACGVGK\nHMTEVVRHC\n", buf.String())
}

func TestCompanionPaths(t *testing.T) {
	tests := []struct {
		out       string
		peptides  string
		condensed string
	}{
		{"out/report.csv", "out/report.txt", "out/report_etk.tsv"},
		{"report.tsv", "report.txt", "report_etk.tsv"},
		{"report", "report.txt", "report_etk.tsv"},
		{"report.txt", "report_peptides.txt", "report_etk.tsv"},
	}
	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			assert.Equal(t, tt.peptides, PeptideListPath(tt.out))
			assert.Equal(t, tt.condensed, CondensedPath(tt.out))
		})
	}
}
