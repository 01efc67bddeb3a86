package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-neo/internal/variant"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// Run describes one stored ingestion of filtered variants.
type Run struct {
	ID           string
	Source       FileFingerprint
	CreatedAt    time.Time
	VariantCount int64
}

// WriteRun stores variants as a new run read from source and returns the
// run ID. Variants sharing a key are stored once, keeping the first. The
// run row is written last; on failure every row of the run is removed.
func (s *Store) WriteRun(ctx context.Context, source FileFingerprint, variants []*variant.Variant) (string, error) {
	runID := uuid.NewString()

	seen := make(map[string]bool, len(variants))
	deduped := make([]*variant.Variant, 0, len(variants))
	for _, v := range variants {
		if k := v.Key(); !seen[k] {
			seen[k] = true
			deduped = append(deduped, v)
		}
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if err := writeRunRows(ctx, conn, runID, source, deduped); err != nil {
		_ = s.deleteRunRows(context.WithoutCancel(ctx), runID)
		return "", err
	}
	return runID, nil
}

func writeRunRows(ctx context.Context, conn *sql.Conn, runID string, source FileFingerprint, variants []*variant.Variant) error {
	if err := appendRows(conn, "variants", func(a *goduckdb.Appender) error {
		for i, v := range variants {
			if err := a.AppendRow(
				runID, int64(i), v.Key(), v.ID, v.Chrom, v.Pos, v.Ref, v.Alt,
				v.Type.String(), v.Synonymous,
			); err != nil {
				return fmt.Errorf("append variant %s: %w", v.Key(), err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := appendRows(conn, "coding", func(a *goduckdb.Appender) error {
		for _, v := range variants {
			for _, txID := range v.Transcripts() {
				ms := v.Coding[txID]
				if err := a.AppendRow(
					runID, v.Key(), ms.TranscriptID,
					int64(ms.TranscriptPos), int64(ms.ProteinPos),
					ms.GeneID, ms.HasGene(), ms.Annotation,
				); err != nil {
					return fmt.Errorf("append coding %s/%s: %w", v.Key(), txID, err)
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx,
		`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?)`,
		runID, source.Path, source.Size, source.ModTime.UTC(), time.Now().UTC(), int64(len(variants)),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// appendRows runs fill against an Appender for table and flushes it.
func appendRows(conn *sql.Conn, table string, fill func(*goduckdb.Appender) error) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	if err := fill(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		run_id, source, source_size, source_modtime, created_at, variant_count
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.Source.Path, &r.Source.Size, &r.Source.ModTime,
			&r.CreatedAt, &r.VariantCount,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LoadRun returns the variants of a run in file order.
func (s *Store) LoadRun(ctx context.Context, runID string) ([]*variant.Variant, error) {
	if err := s.checkRun(ctx, runID); err != nil {
		return nil, err
	}
	return s.queryVariants(ctx, runID, `SELECT variant_key, variant_id, chrom, pos, ref, alt, variant_type, synonymous
		FROM variants WHERE run_id=? ORDER BY ord`, runID)
}

// SearchByGene returns the variants of a run with at least one coding
// transcript of the given gene, in file order.
func (s *Store) SearchByGene(ctx context.Context, runID, gene string) ([]*variant.Variant, error) {
	if err := s.checkRun(ctx, runID); err != nil {
		return nil, err
	}
	return s.queryVariants(ctx, runID, `SELECT v.variant_key, v.variant_id, v.chrom, v.pos, v.ref, v.alt, v.variant_type, v.synonymous
		FROM variants v
		WHERE v.run_id=? AND EXISTS (
			SELECT 1 FROM coding c
			WHERE c.run_id=v.run_id AND c.variant_key=v.variant_key AND c.has_gene AND c.gene=?)
		ORDER BY v.ord`, runID, gene)
}

// DeleteRun removes a run and its variants.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	if err := s.checkRun(ctx, runID); err != nil {
		return err
	}
	return s.deleteRunRows(ctx, runID)
}

// deleteRunRows removes the rows of runID from every run table. It keeps
// going past a failing table and returns the first error.
func (s *Store) deleteRunRows(ctx context.Context, runID string) error {
	var first error
	for _, table := range []string{"coding", "variants", "runs"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id=?", runID); err != nil && first == nil {
			first = fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return first
}

func (s *Store) checkRun(ctx context.Context, runID string) error {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs WHERE run_id=?`, runID).Scan(&n); err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

func (s *Store) queryVariants(ctx context.Context, runID, query string, args ...any) ([]*variant.Variant, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	var (
		variants []*variant.Variant
		byKey    = make(map[string]*variant.Variant)
	)
	for rows.Next() {
		var (
			key, typ string
			v        variant.Variant
		)
		if err := rows.Scan(&key, &v.ID, &v.Chrom, &v.Pos, &v.Ref, &v.Alt, &typ, &v.Synonymous); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		v.Type = variant.ParseType(typ)
		v.Coding = make(map[string]*variant.MutationSyntax)
		byKey[key] = &v
		variants = append(variants, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	if len(variants) == 0 {
		return variants, nil
	}

	if err := s.loadCoding(ctx, runID, byKey); err != nil {
		return nil, err
	}
	return variants, nil
}

func (s *Store) loadCoding(ctx context.Context, runID string, byKey map[string]*variant.Variant) error {
	rows, err := s.db.QueryContext(ctx, `SELECT
		variant_key, transcript_id, transcript_pos, protein_pos, gene, annotation
		FROM coding WHERE run_id=?`, runID)
	if err != nil {
		return fmt.Errorf("query coding: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key            string
			txPos, protPos int64
			ms             variant.MutationSyntax
		)
		if err := rows.Scan(&key, &ms.TranscriptID, &txPos, &protPos, &ms.GeneID, &ms.Annotation); err != nil {
			return fmt.Errorf("scan coding: %w", err)
		}
		v, ok := byKey[key]
		if !ok {
			continue
		}
		ms.TranscriptPos = int(txPos)
		ms.ProteinPos = int(protPos)
		v.Coding[ms.TranscriptID] = &ms
	}
	return rows.Err()
}
