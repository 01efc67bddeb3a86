// Package reference resolves gene symbols to their canonical transcript and
// protein through the Ensembl REST API.
package reference

import (
	"context"
	"errors"
	"strings"
)

// ErrGeneNotFound is returned when a symbol has no Ensembl record.
var ErrGeneNotFound = errors.New("gene not found")

// GeneRecord holds the Ensembl identifiers of a gene's canonical transcript.
type GeneRecord struct {
	Symbol       string
	GeneID       string
	TranscriptID string
	ProteinID    string
}

// Lookup resolves gene symbols.
type Lookup interface {
	LookupGene(ctx context.Context, symbol string) (*GeneRecord, error)
}

// NormalizeAssembly returns "GRCh37" or "GRCh38" for case-insensitive input,
// defaulting to GRCh38.
func NormalizeAssembly(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return "GRCh37"
	}
	return "GRCh38"
}
