package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/inodb/vibe-neo/internal/reference"
)

// GetGene returns the cached gene record for symbol in assembly.
func (s *Store) GetGene(ctx context.Context, assembly, symbol string) (*reference.GeneRecord, bool, error) {
	rec := &reference.GeneRecord{Symbol: symbol}
	err := s.db.QueryRowContext(ctx, `SELECT gene_id, transcript_id, protein_id
		FROM gene_lookups WHERE assembly=? AND symbol=?`, assembly, symbol,
	).Scan(&rec.GeneID, &rec.TranscriptID, &rec.ProteinID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query gene lookup: %w", err)
	}
	return rec, true, nil
}

// PutGene caches a gene record, replacing any previous record for the same
// assembly and symbol.
func (s *Store) PutGene(ctx context.Context, assembly string, rec *reference.GeneRecord) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO gene_lookups VALUES (?, ?, ?, ?, ?)`,
		assembly, rec.Symbol, rec.GeneID, rec.TranscriptID, rec.ProteinID,
	); err != nil {
		return fmt.Errorf("insert gene lookup: %w", err)
	}
	return nil
}

// ClearGenes removes all cached gene lookups.
func (s *Store) ClearGenes(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM gene_lookups")
	return err
}

var _ reference.Cache = (*Store)(nil)
