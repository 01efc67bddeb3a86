package annotate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-neo/internal/variant"
	"github.com/inodb/vibe-neo/internal/vcf"
)

// Assembler builds typed variants from annotated VCF records.
type Assembler struct {
	geneFilter map[string]struct{}
	logger     *zap.Logger
}

// NewAssembler creates an assembler. An empty geneFilter disables gene
// filtering; otherwise only sub-annotations whose gene symbol is listed
// contribute coding effects.
func NewAssembler(geneFilter []string) *Assembler {
	a := &Assembler{logger: zap.NewNop()}
	if len(geneFilter) > 0 {
		a.geneFilter = make(map[string]struct{}, len(geneFilter))
		for _, g := range geneFilter {
			a.geneFilter[g] = struct{}{}
		}
	}
	return a
}

// SetLogger sets the logger for warnings about malformed input.
func (a *Assembler) SetLogger(l *zap.Logger) {
	a.logger = l
}

// LineResult holds what was extracted from one record.
type LineResult struct {
	Record     *vcf.Record
	Coding     map[string]*variant.MutationSyntax
	Synonymous bool
}

// ParseLine parses a single raw line. It returns nil, nil for blank and
// comment lines and a *vcf.ParseError for lines with missing columns.
func (a *Assembler) ParseLine(line string, index int) (*LineResult, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}
	r, err := vcf.ParseRecord(line, index)
	if err != nil {
		return nil, err
	}
	res := a.ParseRecord(r)
	return &res, nil
}

// ParseRecord extracts per-transcript coding effects and the synonymous
// flag from a record's consequence annotations. Malformed sub-annotations
// are logged and skipped.
func (a *Assembler) ParseRecord(r *vcf.Record) LineResult {
	res := LineResult{
		Record: r,
		Coding: make(map[string]*variant.MutationSyntax),
	}

	for _, raw := range r.Annotations() {
		entry, err := vcf.ParseCSQEntry(raw)
		if err != nil {
			a.logger.Warn("INFO field in different format, skipping sub-annotation",
				zap.Int("line", r.Line),
				zap.Error(err))
			continue
		}

		consequences := entry.Consequences()
		if HasConsequence(consequences, ConsequenceSynonymousVariant) {
			res.Synonymous = true
		}

		// RegulatoryFeature, MotifFeature and genes outside the filter
		if !entry.IsTranscript() || !a.keepGene(entry.Symbol) {
			continue
		}
		if !AnyCodingRelevant(consequences) {
			continue
		}

		txPos, ok := parsePosition(entry.CDSPosition)
		if !ok {
			continue
		}
		protPos, ok := parsePosition(entry.ProteinPosition)
		if !ok {
			protPos = -1
		}

		res.Coding[entry.Feature] = &variant.MutationSyntax{
			TranscriptID:  entry.Feature,
			TranscriptPos: txPos,
			ProteinPos:    protPos,
			Annotation:    entry.Raw,
			GeneID:        entry.Symbol,
		}
	}

	return res
}

// Assemble converts a parsed line into a Variant. It returns nil when the
// line has no coding effects.
func (a *Assembler) Assemble(res LineResult) *variant.Variant {
	r := res.Record
	return variant.New(r.ID, r.Chrom, r.Pos, r.Ref, r.Alt, res.Coding, res.Synonymous)
}

// AssembleAll reads every record and returns the resulting variants in input
// order. Lines with missing columns are logged and skipped; read errors are
// returned.
func (a *Assembler) AssembleAll(reader vcf.RecordReader) ([]*variant.Variant, error) {
	var variants []*variant.Variant
	records := 0

	for {
		r, err := reader.Next()
		if err != nil {
			var pe *vcf.ParseError
			if errors.As(err, &pe) {
				a.logger.Warn("malformed record, skipping line",
					zap.Int("line", pe.Line),
					zap.String("reason", pe.Message))
				continue
			}
			return nil, fmt.Errorf("read record: %w", err)
		}
		if r == nil {
			break
		}
		records++

		if v := a.Assemble(a.ParseRecord(r)); v != nil {
			variants = append(variants, v)
		}
	}

	a.logger.Info("assembled variants",
		zap.Int("lines", reader.LineNumber()),
		zap.Int("records", records),
		zap.Int("variants", len(variants)))

	return variants, nil
}

func (a *Assembler) keepGene(symbol string) bool {
	if len(a.geneFilter) == 0 {
		return true
	}
	_, ok := a.geneFilter[symbol]
	return ok
}

// parsePosition converts a 1-based CSQ position (or "start-end" range) to a
// 0-based start. Empty and unresolved ("?") positions are rejected.
func parsePosition(s string) (int, bool) {
	if s == "" || strings.Contains(s, "?") {
		return 0, false
	}
	start, _, _ := strings.Cut(s, "-")
	n, err := strconv.Atoi(start)
	if err != nil {
		return 0, false
	}
	return n - 1, true
}
