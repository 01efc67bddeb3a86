// Package peptide holds the peptide model handed back by external peptide
// generators and binding predictors, and file-backed adapters for both.
package peptide

import (
	"strings"

	"github.com/inodb/vibe-neo/internal/variant"
)

// generatorSuffix marks the protein copies numbered by the peptide generator.
const generatorSuffix = ":FRED2"

// ProteinHit is one protein's contribution to a peptide.
type ProteinHit struct {
	ProteinID string             // transcript ID, optionally suffixed by the generator (e.g. "ENST1:FRED2_0")
	Variants  []*variant.Variant // variants within the peptide on this protein
}

// TranscriptID returns the protein ID without the generator suffix.
func (h ProteinHit) TranscriptID() string {
	id, _, _ := strings.Cut(h.ProteinID, generatorSuffix)
	return id
}

// Peptide is a generated peptide and the proteins it occurs in.
type Peptide struct {
	Sequence string
	Hits     []ProteinHit
}

// HasVariants reports whether any contributing protein carries a variant
// within the peptide.
func (p *Peptide) HasVariants() bool {
	for _, h := range p.Hits {
		if len(h.Variants) > 0 {
			return true
		}
	}
	return false
}

// Source yields the peptides of an external generator. Order is not
// significant.
type Source interface {
	Peptides() ([]*Peptide, error)
}

// Predictor scores peptides for a set of alleles.
type Predictor interface {
	Predict(peptides []*Peptide, alleles []string, method string) (*BindingTable, error)
}

// BindingTable is a peptide x allele score matrix keyed by (peptide, method).
type BindingTable struct {
	Alleles []string
	Rows    []BindingRow
}

// BindingRow holds the scores of one peptide for one prediction method.
type BindingRow struct {
	Peptide string
	Method  string
	Scores  map[string]float64
}
