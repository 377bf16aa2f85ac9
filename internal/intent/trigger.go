package intent

import "axon/internal/types"

// ShouldTrigger is the pure predicate deciding whether this turn attempts
// monetization. An unsafe analysis never triggers. Otherwise a turn triggers
// on a high enough propensity score, or on commercial/transactional intent
// combined with any struggle at all.
func ShouldTrigger(a types.IntentAnalysis, conversionThreshold int) bool {
	if !a.IsSafeForAds {
		return false
	}
	if a.PropensityScore >= conversionThreshold {
		return true
	}
	return a.Bucket.Commercial() && a.Struggle != types.StruggleNone
}

// ShouldTrigger applies the analyzer's configured conversion threshold.
func (a *Analyzer) ShouldTrigger(analysis types.IntentAnalysis) bool {
	return ShouldTrigger(analysis, a.cfg.ConversionThreshold)
}
