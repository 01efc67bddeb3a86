package variant

import "errors"

// ErrNoVariants is returned when no variant survives filtering.
var ErrNoVariants = errors.New("no variants left after filtering")

// FilterOptions toggles the optional filters. Unknown-type variants are
// always removed.
type FilterOptions struct {
	SNP             bool // drop SNPs
	Indel           bool // drop all insertions and deletions
	FrameshiftIndel bool // drop frameshift insertions and deletions
}

// Predicate reports whether a variant is kept.
type Predicate func(*Variant) bool

// Chain returns the predicates for opts in their fixed application order.
func (opts FilterOptions) Chain() []Predicate {
	chain := []Predicate{func(v *Variant) bool { return v.Type != Unknown }}
	if opts.SNP {
		chain = append(chain, func(v *Variant) bool { return v.Type != SNP })
	}
	if opts.Indel {
		chain = append(chain, func(v *Variant) bool { return !v.Type.IsIndel() })
	}
	if opts.FrameshiftIndel {
		chain = append(chain, func(v *Variant) bool { return !v.Type.IsFrameshift() })
	}
	return chain
}

// Filter applies the chain for opts, preserving input order.
// It returns ErrNoVariants, along with the empty slice, when nothing is left.
func Filter(variants []*Variant, opts FilterOptions) ([]*Variant, error) {
	out := variants
	for _, keep := range opts.Chain() {
		out = apply(out, keep)
	}
	if len(out) == 0 {
		return out, ErrNoVariants
	}
	return out, nil
}

func apply(variants []*Variant, keep Predicate) []*Variant {
	out := make([]*Variant, 0, len(variants))
	for _, v := range variants {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
