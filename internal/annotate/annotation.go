// Package annotate turns VEP-annotated VCF records into typed variants.
package annotate

// Consequence types (Sequence Ontology terms) that VEP writes into CSQ.
const (
	// HIGH impact
	ConsequenceStopGained        = "stop_gained"
	ConsequenceFrameshiftVariant = "frameshift_variant"
	ConsequenceStartLost         = "start_lost"

	// MODERATE impact
	ConsequenceMissenseVariant  = "missense_variant"
	ConsequenceInframeInsertion = "inframe_insertion"
	ConsequenceInframeDeletion  = "inframe_deletion"
	ConsequenceProteinAltering  = "protein_altering_variant"

	// LOW impact
	ConsequenceSynonymousVariant     = "synonymous_variant"
	ConsequenceSpliceRegion          = "splice_region_variant"
	ConsequenceStopRetained          = "stop_retained_variant"
	ConsequenceIncompleteTerminal    = "incomplete_terminal_codon_variant"
	ConsequenceCodingSequenceVariant = "coding_sequence_variant"

	// MODIFIER impact
	Consequence5PrimeUTR = "5_prime_UTR_variant"
	Consequence3PrimeUTR = "3_prime_UTR_variant"
)

// codingConsequences are the terms that alter, or may alter, the protein
// sequence derived from a transcript.
var codingConsequences = map[string]struct{}{
	Consequence3PrimeUTR:             {},
	Consequence5PrimeUTR:             {},
	ConsequenceStartLost:             {},
	ConsequenceStopGained:            {},
	ConsequenceFrameshiftVariant:     {},
	ConsequenceInframeInsertion:      {},
	ConsequenceInframeDeletion:       {},
	ConsequenceMissenseVariant:       {},
	ConsequenceProteinAltering:       {},
	ConsequenceSpliceRegion:          {},
	ConsequenceIncompleteTerminal:    {},
	ConsequenceStopRetained:          {},
	ConsequenceSynonymousVariant:     {},
	ConsequenceCodingSequenceVariant: {},
}

// IsCodingRelevant returns true if the SO term is in the coding-relevant set.
func IsCodingRelevant(consequence string) bool {
	_, ok := codingConsequences[consequence]
	return ok
}

// AnyCodingRelevant returns true if at least one term is coding-relevant.
func AnyCodingRelevant(consequences []string) bool {
	for _, c := range consequences {
		if IsCodingRelevant(c) {
			return true
		}
	}
	return false
}

// HasConsequence returns true if any term equals consequence exactly.
func HasConsequence(consequences []string, consequence string) bool {
	for _, c := range consequences {
		if c == consequence {
			return true
		}
	}
	return false
}
