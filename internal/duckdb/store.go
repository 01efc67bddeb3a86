// Package duckdb persists filtered variants and reference lookups in DuckDB.
// Each ingestion is stored as a run identified by a UUID, together with the
// fingerprint of the annotation file it was read from.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for stored variant runs.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path, empty for an in-memory database.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		source VARCHAR,
		source_size BIGINT,
		source_modtime TIMESTAMP,
		created_at TIMESTAMP,
		variant_count BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS variants (
		run_id VARCHAR,
		ord BIGINT,
		variant_key VARCHAR,
		variant_id VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		variant_type VARCHAR,
		synonymous BOOLEAN,
		PRIMARY KEY (run_id, variant_key)
	)`,
	`CREATE TABLE IF NOT EXISTS coding (
		run_id VARCHAR,
		variant_key VARCHAR,
		transcript_id VARCHAR,
		transcript_pos BIGINT,
		protein_pos BIGINT,
		gene VARCHAR,
		has_gene BOOLEAN,
		annotation VARCHAR,
		PRIMARY KEY (run_id, variant_key, transcript_id)
	)`,
	`CREATE TABLE IF NOT EXISTS gene_lookups (
		assembly VARCHAR,
		symbol VARCHAR,
		gene_id VARCHAR,
		transcript_id VARCHAR,
		protein_id VARCHAR,
		PRIMARY KEY (assembly, symbol)
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
