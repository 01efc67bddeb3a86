// Package output provides report and variant table writers.
package output

import (
	"bufio"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inodb/vibe-neo/internal/provenance"
)

// ReportWriter writes the peptide report: one row per peptide, or one row
// per peptide and prediction method when binding scores are included.
type ReportWriter struct {
	w            *bufio.Writer
	alleles      []string
	withScores   bool
	withVariants bool
}

// NewReportWriter creates a writer for a report without binding scores.
func NewReportWriter(w io.Writer, withVariants bool) *ReportWriter {
	return &ReportWriter{w: bufio.NewWriter(w), withVariants: withVariants}
}

// NewScoredReportWriter creates a writer for a report with one score column
// per allele.
func NewScoredReportWriter(w io.Writer, alleles []string, withVariants bool) *ReportWriter {
	return &ReportWriter{
		w:            bufio.NewWriter(w),
		alleles:      alleles,
		withScores:   true,
		withVariants: withVariants,
	}
}

// WriteHeader writes the header line.
func (rw *ReportWriter) WriteHeader() error {
	cols := []string{"Sequence"}
	if rw.withScores {
		cols = append(cols, "Method")
		cols = append(cols, rw.alleles...)
	}
	cols = append(cols, "Antigen ID")
	if rw.withVariants {
		cols = append(cols, "Variants")
	}
	return rw.writeLine(cols)
}

// Write writes a peptide row of a report without scores.
func (rw *ReportWriter) Write(row provenance.Row) error {
	values := []string{row.Sequence, strings.Join(row.Genes, ",")}
	if rw.withVariants {
		values = append(values, row.Variants)
	}
	return rw.writeLine(values)
}

// WriteScored writes a peptide row with its binding scores.
func (rw *ReportWriter) WriteScored(row provenance.ScoredRow) error {
	values := []string{row.Sequence, row.Method}
	values = append(values, formatScores(row.Scores)...)
	values = append(values, strings.Join(row.Genes, ","))
	if rw.withVariants {
		values = append(values, row.Variants)
	}
	return rw.writeLine(values)
}

// Flush flushes any buffered data to the underlying writer.
func (rw *ReportWriter) Flush() error {
	return rw.w.Flush()
}

func (rw *ReportWriter) writeLine(values []string) error {
	_, err := rw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// CondensedWriter writes the peptide x allele score matrix used by
// downstream epitope selection tools.
type CondensedWriter struct {
	w       *bufio.Writer
	alleles []string
}

// NewCondensedWriter creates a condensed score matrix writer.
func NewCondensedWriter(w io.Writer, alleles []string) *CondensedWriter {
	return &CondensedWriter{w: bufio.NewWriter(w), alleles: alleles}
}

// WriteHeader writes the "Alleles:" header line.
func (cw *CondensedWriter) WriteHeader() error {
	_, err := cw.w.WriteString("Alleles:\t" + strings.Join(cw.alleles, "\t") + "\n")
	return err
}

// Write writes a peptide, its scores and its space-separated genes.
func (cw *CondensedWriter) Write(row provenance.ScoredRow) error {
	values := append([]string{row.Sequence}, formatScores(row.Scores)...)
	values = append(values, strings.Join(row.Genes, " "))
	_, err := cw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (cw *CondensedWriter) Flush() error {
	return cw.w.Flush()
}

// WritePeptideList writes one peptide sequence per line.
func WritePeptideList(w io.Writer, rows []provenance.Row) error {
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		if _, err := bw.WriteString(row.Sequence + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// PeptideListPath returns the path of the plain peptide list written next
// to the report at path.
func PeptideListPath(path string) string {
	base, ext := splitExt(path)
	if strings.EqualFold(ext, ".txt") {
		return base + "_peptides.txt"
	}
	return base + ".txt"
}

// CondensedPath returns the path of the condensed score matrix written next
// to the report at path.
func CondensedPath(path string) string {
	base, _ := splitExt(path)
	return base + "_etk.tsv"
}

func splitExt(path string) (string, string) {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext), ext
}

func formatScores(scores []float64) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = strconv.FormatFloat(s, 'f', 3, 64)
	}
	return out
}
