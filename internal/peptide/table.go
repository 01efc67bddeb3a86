package peptide

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/inodb/vibe-neo/internal/variant"
)

// tableRow is one (peptide, protein) row of a generator's peptide table.
type tableRow struct {
	Sequence  string `csv:"sequence"`
	ProteinID string `csv:"protein_id"`
	Variants  string `csv:"variants"`
}

// TableSource reads peptides from a tab-separated table with the columns
// sequence, protein_id and variants. The variants column holds
// comma-separated variant keys (see variant.FormatKey) that are resolved
// against the variants passed to NewTableSource.
type TableSource struct {
	path   string
	index  map[string]*variant.Variant
	logger *zap.Logger
}

// NewTableSource creates a source for path. variants may be nil when the
// peptides were generated from plain proteins; the variants column is then
// ignored.
func NewTableSource(path string, variants []*variant.Variant) *TableSource {
	s := &TableSource{path: path, logger: zap.NewNop()}
	if variants != nil {
		s.index = make(map[string]*variant.Variant, len(variants))
		for _, v := range variants {
			s.index[v.Key()] = v
		}
	}
	return s
}

// SetLogger sets the logger for unresolved variant keys.
func (s *TableSource) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Peptides reads the table.
func (s *TableSource) Peptides() ([]*Peptide, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open peptide table: %w", err)
	}
	defer f.Close()

	return s.read(f)
}

func (s *TableSource) read(r io.Reader) ([]*Peptide, error) {
	var rows []tableRow
	if err := gocsv.UnmarshalCSV(newTSVReader(r), &rows); err != nil {
		return nil, fmt.Errorf("decode peptide table: %w", err)
	}

	bySeq := make(map[string]*Peptide)
	var peptides []*Peptide
	for i, row := range rows {
		seq := strings.TrimSpace(row.Sequence)
		if seq == "" {
			continue
		}
		p, ok := bySeq[seq]
		if !ok {
			p = &Peptide{Sequence: seq}
			bySeq[seq] = p
			peptides = append(peptides, p)
		}
		p.Hits = append(p.Hits, ProteinHit{
			ProteinID: strings.TrimSpace(row.ProteinID),
			Variants:  s.resolve(row.Variants, i+1),
		})
	}
	return peptides, nil
}

func (s *TableSource) resolve(keys string, row int) []*variant.Variant {
	if s.index == nil || strings.TrimSpace(keys) == "" {
		return nil
	}
	var out []*variant.Variant
	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		v, ok := s.index[key]
		if !ok {
			s.logger.Warn("peptide table refers to unknown variant",
				zap.Int("row", row),
				zap.String("variant", key))
			continue
		}
		out = append(out, v)
	}
	return out
}

func newTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}
