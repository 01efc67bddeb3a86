package annotate

import "github.com/inodb/vibe-neo/internal/variant"

// TranscriptGenes maps transcript IDs to gene IDs for report columns. An
// empty value records a transcript whose annotation named no gene.
type TranscriptGenes map[string]string

// BuildTranscriptGenes folds the coding effects of variants into a
// transcript-to-gene map. Later variants win on conflicting entries.
func BuildTranscriptGenes(variants []*variant.Variant) TranscriptGenes {
	genes := make(TranscriptGenes)
	for _, v := range variants {
		for txID, ms := range v.Coding {
			genes[txID] = ms.GeneID
		}
	}
	return genes
}

// Gene returns the gene for a transcript. ok is false when the transcript
// is unknown or its annotation carried no gene.
func (g TranscriptGenes) Gene(transcriptID string) (gene string, ok bool) {
	gene = g[transcriptID]
	return gene, gene != ""
}
