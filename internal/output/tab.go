package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/inodb/vibe-neo/internal/variant"
	"github.com/inodb/vibe-neo/internal/vcf"
)

// variantRow is one variant x transcript row of the variant table.
// Transcript and protein indices are 0-based.
type variantRow struct {
	ID           string `csv:"#Uploaded_variation"`
	Location     string `csv:"Location"`
	Ref          string `csv:"Ref"`
	Alt          string `csv:"Alt"`
	Type         string `csv:"Type"`
	Synonymous   string `csv:"Synonymous"`
	Gene         string `csv:"Gene"`
	Feature      string `csv:"Feature"`
	Consequence  string `csv:"Consequence"`
	CDSIndex     string `csv:"CDS_index"`
	ProteinIndex string `csv:"Protein_index"`
}

// WriteVariantTable writes variants as a tab-delimited table with one row
// per variant and transcript.
func WriteVariantTable(w io.Writer, variants []*variant.Variant) error {
	var rows []*variantRow
	for _, v := range variants {
		for _, txID := range v.Transcripts() {
			rows = append(rows, newVariantRow(v, v.Coding[txID]))
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("write variant table: %w", err)
	}
	return nil
}

func newVariantRow(v *variant.Variant, ms *variant.MutationSyntax) *variantRow {
	row := &variantRow{
		ID:           v.ID,
		Location:     fmt.Sprintf("%s:%d", v.Chrom, v.Pos),
		Ref:          dash(v.Ref),
		Alt:          dash(v.Alt),
		Type:         v.Type.String(),
		Synonymous:   "-",
		Gene:         dash(ms.GeneID),
		Feature:      ms.TranscriptID,
		Consequence:  "-",
		CDSIndex:     strconv.Itoa(ms.TranscriptPos),
		ProteinIndex: "-",
	}
	if v.Synonymous {
		row.Synonymous = "YES"
	}
	if ms.ProteinPos >= 0 {
		row.ProteinIndex = strconv.Itoa(ms.ProteinPos)
	}
	if entry, err := vcf.ParseCSQEntry(ms.Annotation); err == nil && entry.Consequence != "" {
		row.Consequence = entry.Consequence
	}
	return row
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
