// Package genelist loads gene symbol lists used to restrict annotation
// parsing and to drive protein-ID mode.
package genelist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// hugoColumn is the symbol column of OncoKB-style cancer gene list tables.
const hugoColumn = "Hugo Symbol"

// Load reads a gene list file. Plain lists hold one symbol per line with
// blank lines ignored. Tab-separated tables with a "Hugo Symbol" header
// column, such as the OncoKB cancerGeneList.tsv, are read from that column.
// Symbols keep file order; duplicates are dropped.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gene list: %w", err)
	}
	defer f.Close()

	genes, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("gene list %s: %w", path, err)
	}
	return genes, nil
}

// Read reads a gene list from r. See Load for the accepted formats.
func Read(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)

	col := 0
	first := true
	seen := make(map[string]bool)
	var genes []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")

		if first {
			first = false
			if idx := headerIndex(fields); idx >= 0 {
				col = idx
				continue
			}
			if len(fields) > 1 {
				return nil, fmt.Errorf("missing %q column", hugoColumn)
			}
		}

		if len(fields) <= col {
			continue
		}
		gene := strings.TrimSpace(fields[col])
		if gene == "" || seen[gene] {
			continue
		}
		seen[gene] = true
		genes = append(genes, gene)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading gene list: %w", err)
	}
	return genes, nil
}

func headerIndex(fields []string) int {
	for i, f := range fields {
		if strings.TrimSpace(f) == hugoColumn {
			return i
		}
	}
	return -1
}
