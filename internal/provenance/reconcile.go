// Package provenance maps generated peptides back to the transcripts, genes
// and variants they were derived from.
package provenance

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-neo/internal/annotate"
	"github.com/inodb/vibe-neo/internal/peptide"
)

// NoGene is written for transcripts without a known gene.
const NoGene = "-"

// Options controls which peptides are reported.
type Options struct {
	WithVariants bool // input was variant-derived; report the Variants column
	MinLength    int  // minimum peptide length, 0 for no bound
	MaxLength    int  // maximum peptide length, 0 for no bound
}

// Row is the provenance of one peptide.
type Row struct {
	Sequence string
	Genes    []string // sorted, deduplicated
	Variants string   // "tx:v1,v2|tx2:v3", empty without variants
}

// ScoredRow is a Row joined with one row of binding predictions.
type ScoredRow struct {
	Row
	Method string
	Scores []float64 // in BindingTable.Alleles order
}

// Reconciler builds report rows from peptides.
type Reconciler struct {
	genes  annotate.TranscriptGenes
	opts   Options
	logger *zap.Logger
}

// NewReconciler creates a reconciler using genes to name the transcripts
// of contributing proteins.
func NewReconciler(genes annotate.TranscriptGenes, opts Options) *Reconciler {
	return &Reconciler{genes: genes, opts: opts, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (r *Reconciler) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Reconcile returns one row per reported peptide, in first-seen order.
// Peptides with the same sequence are merged. With variant-derived input,
// peptides without any variant on a contributing protein are dropped.
func (r *Reconciler) Reconcile(peptides []*peptide.Peptide) []Row {
	var rows []Row
	dropped := 0
	for _, p := range mergeBySequence(peptides) {
		if !r.inLengthWindow(p.Sequence) || (r.opts.WithVariants && !p.HasVariants()) {
			dropped++
			continue
		}
		row := Row{Sequence: p.Sequence, Genes: r.geneIDs(p)}
		if r.opts.WithVariants {
			row.Variants = FormatVariants(p)
		}
		rows = append(rows, row)
	}

	r.logger.Info("reconciled peptides",
		zap.Int("reported", len(rows)),
		zap.Int("dropped", dropped))
	return rows
}

// Join pairs each binding row with the provenance of its peptide, in
// binding-table order. Binding rows for unreported peptides are skipped.
func (r *Reconciler) Join(rows []Row, table *peptide.BindingTable) []ScoredRow {
	bySeq := make(map[string]Row, len(rows))
	for _, row := range rows {
		bySeq[row.Sequence] = row
	}

	var out []ScoredRow
	for _, b := range table.Rows {
		row, ok := bySeq[b.Peptide]
		if !ok {
			continue
		}
		scores := make([]float64, len(table.Alleles))
		for i, a := range table.Alleles {
			scores[i] = b.Scores[a]
		}
		out = append(out, ScoredRow{Row: row, Method: b.Method, Scores: scores})
	}
	return out
}

func (r *Reconciler) inLengthWindow(seq string) bool {
	n := len(seq)
	if r.opts.MinLength > 0 && n < r.opts.MinLength {
		return false
	}
	if r.opts.MaxLength > 0 && n > r.opts.MaxLength {
		return false
	}
	return true
}

func (r *Reconciler) geneIDs(p *peptide.Peptide) []string {
	seen := make(map[string]struct{})
	for _, h := range p.Hits {
		tx := h.TranscriptID()
		gene, ok := r.genes.Gene(tx)
		if !ok {
			if _, known := r.genes[tx]; !known {
				r.logger.Debug("transcript without gene mapping", zap.String("transcript", tx))
			}
			gene = NoGene
		}
		seen[gene] = struct{}{}
	}
	genes := make([]string, 0, len(seen))
	for g := range seen {
		genes = append(genes, g)
	}
	sort.Strings(genes)
	return genes
}

// FormatVariants groups the variants of p by contributing protein:
// "tx:v1,v2|tx2:v3". Groups keep first-occurrence order, variants are
// deduplicated by key within a group, proteins without variants are left
// out and identical groups are written once.
func FormatVariants(p *peptide.Peptide) string {
	var groups []string
	seenGroup := make(map[string]struct{})
	for _, h := range p.Hits {
		if len(h.Variants) == 0 {
			continue
		}
		var keys []string
		seenKey := make(map[string]struct{})
		for _, v := range h.Variants {
			k := v.Key()
			if _, ok := seenKey[k]; ok {
				continue
			}
			seenKey[k] = struct{}{}
			keys = append(keys, k)
		}
		group := h.TranscriptID() + ":" + strings.Join(keys, ",")
		if _, ok := seenGroup[group]; ok {
			continue
		}
		seenGroup[group] = struct{}{}
		groups = append(groups, group)
	}
	return strings.Join(groups, "|")
}

func mergeBySequence(peptides []*peptide.Peptide) []*peptide.Peptide {
	bySeq := make(map[string]*peptide.Peptide, len(peptides))
	var out []*peptide.Peptide
	for _, p := range peptides {
		if m, ok := bySeq[p.Sequence]; ok {
			m.Hits = append(m.Hits, p.Hits...)
			continue
		}
		m := &peptide.Peptide{Sequence: p.Sequence, Hits: append([]peptide.ProteinHit(nil), p.Hits...)}
		bySeq[p.Sequence] = m
		out = append(out, m)
	}
	return out
}
