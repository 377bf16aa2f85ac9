package nudge

import "axon/internal/types"

// DefaultMinRelevance is the documented relevance-gate threshold.
const DefaultMinRelevance = 0.7

// Eligible is the final relevance gate: a resolved nudge may enter the
// outgoing response only when its relevance score meets the minimum.
// The boundary is inclusive. A nil nudge is never eligible.
func Eligible(n *types.Nudge, minRelevance float64) bool {
	return n != nil && n.RelevanceScore >= minRelevance
}
