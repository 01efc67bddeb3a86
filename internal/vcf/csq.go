package vcf

import (
	"errors"
	"fmt"
	"strings"
)

// CSQFieldCount is the number of leading CSQ sub-fields that are decoded.
// Trailing fields (codons, frequencies, ...) are ignored.
const CSQFieldCount = 16

// ErrCSQArity is returned for a sub-annotation with too few sub-fields.
var ErrCSQArity = errors.New("csq entry has too few fields")

// CSQEntry is one decoded VEP consequence sub-annotation, in VEP's default
// field order:
//
//	Allele|Consequence|IMPACT|SYMBOL|Gene|Feature_type|Feature|BIOTYPE|EXON|INTRON|
//	HGVSc|HGVSp|cDNA_position|CDS_position|Protein_position|Amino_acids|...
type CSQEntry struct {
	Allele          string
	Consequence     string // "&"-joined SO terms
	Impact          string
	Symbol          string
	GeneID          string
	FeatureType     string
	Feature         string // transcript ID for Feature_type "Transcript"
	Biotype         string
	Exon            string
	Intron          string
	HGVSc           string
	HGVSp           string
	CDNAPosition    string
	CDSPosition     string
	ProteinPosition string
	AminoAcids      string
	Raw             string // the sub-annotation as it appeared in INFO
}

// ParseCSQEntry decodes a single "|"-separated sub-annotation. It returns an
// error wrapping ErrCSQArity when fewer than CSQFieldCount fields are present.
func ParseCSQEntry(s string) (CSQEntry, error) {
	raw := strings.TrimSpace(s)
	f := strings.Split(raw, "|")
	if len(f) < CSQFieldCount {
		return CSQEntry{}, fmt.Errorf("%w: got %d, want at least %d", ErrCSQArity, len(f), CSQFieldCount)
	}
	return CSQEntry{
		Allele:          f[0],
		Consequence:     f[1],
		Impact:          f[2],
		Symbol:          f[3],
		GeneID:          f[4],
		FeatureType:     f[5],
		Feature:         f[6],
		Biotype:         f[7],
		Exon:            f[8],
		Intron:          f[9],
		HGVSc:           f[10],
		HGVSp:           f[11],
		CDNAPosition:    f[12],
		CDSPosition:     f[13],
		ProteinPosition: f[14],
		AminoAcids:      f[15],
		Raw:             raw,
	}, nil
}

// Consequences returns the individual SO terms of the entry.
func (e CSQEntry) Consequences() []string {
	if e.Consequence == "" {
		return nil
	}
	return strings.Split(e.Consequence, "&")
}

// IsTranscript reports whether the entry describes a transcript feature
// (as opposed to a RegulatoryFeature or MotifFeature).
func (e CSQEntry) IsTranscript() bool {
	return e.FeatureType == "Transcript"
}
