package peptide

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// TablePredictor serves binding predictions computed by an external tool
// and stored as a tab-separated table with the header
// "peptide<TAB>method<TAB><allele>...".
type TablePredictor struct {
	path string
}

// NewTablePredictor creates a predictor backed by the table at path.
func NewTablePredictor(path string) *TablePredictor {
	return &TablePredictor{path: path}
}

// Predict returns the stored scores of peptides for alleles. An empty
// alleles list selects every allele in the table; an empty method selects
// every method. Requesting an allele or a method missing from the table is
// an error.
func (p *TablePredictor) Predict(peptides []*Peptide, alleles []string, method string) (*BindingTable, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("open binding table: %w", err)
	}
	defer f.Close()

	table, err := ReadBindingTable(f)
	if err != nil {
		return nil, err
	}
	return table.Select(peptides, alleles, method)
}

// ReadBindingTable decodes a binding table.
func ReadBindingTable(r io.Reader) (*BindingTable, error) {
	records, err := newTSVReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode binding table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("binding table: empty file")
	}

	header := records[0]
	if len(header) < 3 || !strings.EqualFold(header[0], "peptide") || !strings.EqualFold(header[1], "method") {
		return nil, fmt.Errorf("binding table: header must start with peptide, method and at least one allele")
	}

	table := &BindingTable{Alleles: append([]string(nil), header[2:]...)}
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("binding table row %d: expected %d columns, found %d", i+1, len(header), len(rec))
		}
		row := BindingRow{
			Peptide: rec[0],
			Method:  rec[1],
			Scores:  make(map[string]float64, len(table.Alleles)),
		}
		for j, allele := range table.Alleles {
			score, err := strconv.ParseFloat(strings.TrimSpace(rec[j+2]), 64)
			if err != nil {
				return nil, fmt.Errorf("binding table row %d: invalid score for %s: %w", i+1, allele, err)
			}
			row.Scores[allele] = score
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Select restricts the table to the given peptides, alleles and method,
// keeping row order.
func (t *BindingTable) Select(peptides []*Peptide, alleles []string, method string) (*BindingTable, error) {
	if len(alleles) == 0 {
		alleles = t.Alleles
	}
	known := make(map[string]struct{}, len(t.Alleles))
	for _, a := range t.Alleles {
		known[a] = struct{}{}
	}
	for _, a := range alleles {
		if _, ok := known[a]; !ok {
			return nil, fmt.Errorf("allele %s not in binding table", a)
		}
	}

	if method != "" && !t.hasMethod(method) {
		return nil, fmt.Errorf("method %s not in binding table", method)
	}

	wanted := make(map[string]struct{}, len(peptides))
	for _, p := range peptides {
		wanted[p.Sequence] = struct{}{}
	}

	out := &BindingTable{Alleles: append([]string(nil), alleles...)}
	for _, row := range t.Rows {
		if _, ok := wanted[row.Peptide]; !ok {
			continue
		}
		if method != "" && !strings.EqualFold(row.Method, method) {
			continue
		}
		scores := make(map[string]float64, len(alleles))
		for _, a := range alleles {
			scores[a] = row.Scores[a]
		}
		out.Rows = append(out.Rows, BindingRow{Peptide: row.Peptide, Method: row.Method, Scores: scores})
	}
	return out, nil
}

func (t *BindingTable) hasMethod(method string) bool {
	for _, row := range t.Rows {
		if strings.EqualFold(row.Method, method) {
			return true
		}
	}
	return false
}
