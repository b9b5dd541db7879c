package forensic

import (
	"github.com/fakeyai/verdict/internal/gateway"
)

const defaultCitationTitle = "Verified Source"

// CollectCitations walks candidates in backend order and keeps every
// grounding chunk that carries a web source. Duplicates and empty URLs
// pass through untouched so list positions stay aligned with what the
// backend reported. Never fails; no groundable chunks means an empty
// slice.
func CollectCitations(candidates []gateway.Candidate) []Citation {
	citations := []Citation{}
	for _, cand := range candidates {
		if cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			title := chunk.Web.Title
			if title == "" {
				title = defaultCitationTitle
			}
			citations = append(citations, Citation{Title: title, URL: chunk.Web.URI})
		}
	}
	return citations
}
