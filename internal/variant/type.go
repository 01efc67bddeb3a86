// Package variant defines the typed variant model produced from annotated
// VCF records and the filter chain applied before peptide generation.
package variant

// Type is the biological class of a variant.
type Type int

// Variant types.
const (
	Unknown Type = iota
	SNP
	Insertion
	Deletion
	FrameshiftInsertion
	FrameshiftDeletion
)

var typeNames = [...]string{
	Unknown:             "UNKNOWN",
	SNP:                 "SNP",
	Insertion:           "INS",
	Deletion:            "DEL",
	FrameshiftInsertion: "FSINS",
	FrameshiftDeletion:  "FSDEL",
}

// String returns the short tag for the type (e.g. "FSDEL").
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return typeNames[Unknown]
	}
	return typeNames[t]
}

// ParseType returns the Type for a short tag, or Unknown.
func ParseType(s string) Type {
	for i, name := range typeNames {
		if name == s {
			return Type(i)
		}
	}
	return Unknown
}

// IsIndel returns true for insertions and deletions, frameshift or not.
func (t Type) IsIndel() bool {
	switch t {
	case Insertion, Deletion, FrameshiftInsertion, FrameshiftDeletion:
		return true
	}
	return false
}

// IsFrameshift returns true for frameshift insertions and deletions.
func (t Type) IsFrameshift() bool {
	return t == FrameshiftInsertion || t == FrameshiftDeletion
}

// Classify derives the variant type from raw allele lengths.
//
// Only pure insertions (empty ref) and pure deletions (empty alt) are
// recognized as indels; an allele pair where both sides are non-empty and
// not single bases is Unknown, whatever its net length change.
func Classify(ref, alt string) Type {
	r, a := len(ref), len(alt)
	switch {
	case r == 1 && a == 1:
		return SNP
	case r > 0 && a == 0:
		if r%3 == 0 {
			return Deletion
		}
		return FrameshiftDeletion
	case r == 0 && a > 0:
		if a%3 == 0 {
			return Insertion
		}
		return FrameshiftInsertion
	}
	return Unknown
}
