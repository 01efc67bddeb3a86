package variant

import (
	"sort"
	"strconv"
	"strings"
)

// MutationSyntax describes a variant's effect on one transcript.
// Positions are 0-based.
type MutationSyntax struct {
	TranscriptID  string
	TranscriptPos int // CDS position, 0-based
	ProteinPos    int // amino acid position, 0-based, -1 if absent
	Annotation    string
	GeneID        string // empty when the annotation carries no gene
}

// HasGene reports whether the annotation named a gene.
func (m *MutationSyntax) HasGene() bool {
	return m.GeneID != ""
}

// Variant is a single genomic change with its per-transcript coding effects.
type Variant struct {
	ID         string
	Type       Type
	Chrom      string
	Pos        int64 // 1-based genomic position
	Ref        string
	Alt        string
	Coding     map[string]*MutationSyntax
	Homozygous bool // not set by this pipeline
	Synonymous bool
}

// New builds a Variant, uppercasing alleles and classifying the type from
// the raw allele lengths. It returns nil if coding is empty.
func New(id, chrom string, pos int64, ref, alt string, coding map[string]*MutationSyntax, synonymous bool) *Variant {
	if len(coding) == 0 {
		return nil
	}
	return &Variant{
		ID:         id,
		Type:       Classify(ref, alt),
		Chrom:      chrom,
		Pos:        pos,
		Ref:        strings.ToUpper(ref),
		Alt:        strings.ToUpper(alt),
		Coding:     coding,
		Synonymous: synonymous,
	}
}

// Key returns the canonical identity of the variant, e.g. "12:25245351C>A".
func (v *Variant) Key() string {
	return FormatKey(v.Chrom, v.Pos, v.Ref, v.Alt)
}

// String implements fmt.Stringer using the canonical key.
func (v *Variant) String() string {
	return v.Key()
}

// Transcripts returns the sorted transcript IDs with coding effects.
func (v *Variant) Transcripts() []string {
	ids := make([]string, 0, len(v.Coding))
	for id := range v.Coding {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FormatKey formats a canonical variant key from its components.
func FormatKey(chrom string, pos int64, ref, alt string) string {
	return chrom + ":" + strconv.FormatInt(pos, 10) + ref + ">" + alt
}
