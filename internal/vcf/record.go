package vcf

import "strings"

// Record is one data line of an annotated VCF. Quality and filter columns
// are not retained.
type Record struct {
	Line  int    // 0-based line index in the input
	Chrom string // Chromosome name (e.g., "12", "chr12")
	Pos   int64  // 1-based genomic position
	ID    string // Variant identifier (e.g., rs ID or ".")
	Ref   string // Reference allele, as written
	Alt   string // Alternate allele, as written
	Info  string // Raw INFO column
}

// Annotations returns the comma-separated consequence sub-annotations of
// the INFO column. When INFO holds a CSQ key only its value is used;
// otherwise the whole column is treated as the annotation list.
func (r *Record) Annotations() []string {
	info := r.Info
	if v, ok := infoValue(info, "CSQ"); ok {
		info = v
	}
	if info == "" || info == "." {
		return nil
	}
	return strings.Split(info, ",")
}

func infoValue(info, key string) (string, bool) {
	prefix := key + "="
	for _, kv := range strings.Split(info, ";") {
		if strings.HasPrefix(kv, prefix) {
			return kv[len(prefix):], true
		}
	}
	return "", false
}
