package reference

import (
	"context"

	"go.uber.org/zap"
)

// Cache stores resolved gene records per assembly.
type Cache interface {
	GetGene(ctx context.Context, assembly, symbol string) (*GeneRecord, bool, error)
	PutGene(ctx context.Context, assembly string, rec *GeneRecord) error
}

// CachedLookup serves lookups from a Cache and falls back to another Lookup
// on a miss, storing what it resolves.
type CachedLookup struct {
	next     Lookup
	cache    Cache
	assembly string
	logger   *zap.Logger
}

// NewCachedLookup wraps next with cache for the given assembly.
func NewCachedLookup(next Lookup, cache Cache, assembly string) *CachedLookup {
	return &CachedLookup{
		next:     next,
		cache:    cache,
		assembly: NormalizeAssembly(assembly),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger.
func (c *CachedLookup) SetLogger(l *zap.Logger) {
	c.logger = l
}

// LookupGene returns the cached record for symbol, resolving and caching it
// on a miss.
func (c *CachedLookup) LookupGene(ctx context.Context, symbol string) (*GeneRecord, error) {
	rec, ok, err := c.cache.GetGene(ctx, c.assembly, symbol)
	if err != nil {
		return nil, err
	}
	if ok {
		c.logger.Debug("gene lookup cache hit", zap.String("symbol", symbol))
		return rec, nil
	}

	rec, err = c.next.LookupGene(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := c.cache.PutGene(ctx, c.assembly, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ResolveAll looks up each symbol in order. The first failure aborts.
func ResolveAll(ctx context.Context, lookup Lookup, symbols []string) ([]*GeneRecord, error) {
	records := make([]*GeneRecord, 0, len(symbols))
	for _, s := range symbols {
		rec, err := lookup.LookupGene(ctx, s)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// TranscriptSymbols maps each record's canonical transcript to its symbol.
func TranscriptSymbols(records []*GeneRecord) map[string]string {
	m := make(map[string]string, len(records))
	for _, r := range records {
		m[r.TranscriptID] = r.Symbol
	}
	return m
}
