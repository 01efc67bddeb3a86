package reference

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
)

// Ensembl REST endpoints per assembly.
const (
	EnsemblGRCh38URL = "https://rest.ensembl.org"
	EnsemblGRCh37URL = "https://grch37.rest.ensembl.org"
)

// EnsemblClient looks up genes with the Ensembl REST API.
type EnsemblClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewEnsemblClient creates a client for the given assembly
// ("GRCh37" or "GRCh38").
func NewEnsemblClient(assembly string) *EnsemblClient {
	baseURL := EnsemblGRCh38URL
	if NormalizeAssembly(assembly) == "GRCh37" {
		baseURL = EnsemblGRCh37URL
	}
	return NewEnsemblClientWithURL(baseURL)
}

// NewEnsemblClientWithURL creates a client against a custom base URL.
func NewEnsemblClientWithURL(baseURL string) *EnsemblClient {
	return &EnsemblClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LookupGene resolves an HGNC symbol to its canonical transcript and the
// protein it encodes.
func (c *EnsemblClient) LookupGene(ctx context.Context, symbol string) (*GeneRecord, error) {
	u := fmt.Sprintf("%s/lookup/symbol/homo_sapiens/%s?expand=1",
		c.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("REST API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read REST response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrGeneNotFound, symbol)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("REST API error %d: %s", resp.StatusCode, string(body))
	}

	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return nil, fmt.Errorf("decode REST response: %w", err)
	}
	return parseGeneLookup(symbol, parsed)
}

// parseGeneLookup picks the canonical transcript of an expanded gene lookup.
// GRCh38 responses name it in "canonical_transcript"; GRCh37 responses only
// flag it with "is_canonical".
func parseGeneLookup(symbol string, gene *gabs.Container) (*GeneRecord, error) {
	rec := &GeneRecord{Symbol: symbol}
	rec.GeneID, _ = gene.Path("id").Data().(string)
	if rec.GeneID == "" {
		return nil, fmt.Errorf("%w: %s", ErrGeneNotFound, symbol)
	}

	canonical, _ := gene.Path("canonical_transcript").Data().(string)
	canonical = stripVersion(canonical)

	transcripts, _ := gene.S("Transcript").Children()
	var chosen *gabs.Container
	for _, tx := range transcripts {
		id, _ := tx.Path("id").Data().(string)
		if canonical != "" && stripVersion(id) == canonical {
			chosen = tx
			break
		}
		if canonical == "" && isCanonical(tx) {
			chosen = tx
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: no canonical transcript for %s", ErrGeneNotFound, symbol)
	}

	id, _ := chosen.Path("id").Data().(string)
	rec.TranscriptID = stripVersion(id)
	protein, _ := chosen.Path("Translation.id").Data().(string)
	rec.ProteinID = stripVersion(protein)
	if rec.ProteinID == "" {
		return nil, fmt.Errorf("%w: canonical transcript %s of %s is non-coding", ErrGeneNotFound, rec.TranscriptID, symbol)
	}
	return rec, nil
}

// isCanonical reads the is_canonical flag, which Ensembl encodes as 0/1.
func isCanonical(tx *gabs.Container) bool {
	switch v := tx.Path("is_canonical").Data().(type) {
	case float64:
		return v == 1
	case bool:
		return v
	}
	return false
}

func stripVersion(id string) string {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}
