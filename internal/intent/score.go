package intent

import "axon/internal/types"

// groundingScoreFloor is the propensity at which a pattern analysis is
// worth grounding with live search results.
const groundingScoreFloor = 60

// patternSignals is the raw JSON shape the model returns for the pattern
// strategy. Pointer fields distinguish "absent" from zero values.
type patternSignals struct {
	PrimaryTopic          string   `json:"primary_topic"`
	TopicRepeatCount      int      `json:"topic_repeat_count"`
	UsagePattern          string   `json:"usage_pattern"`
	IsHomeworkPattern     bool     `json:"is_homework_pattern"`
	DetectedSubjects      []string `json:"detected_subjects"`
	CommercialOpportunity string   `json:"commercial_opportunity"`
	PropensityScore       *int     `json:"propensity_score"`
	IsSafeForAds          *bool    `json:"is_safe_for_ads"`
	SafetyReason          string   `json:"safety_reason"`
	Reasoning             string   `json:"reasoning"`
}

func (s patternSignals) safe() bool {
	return s.IsSafeForAds == nil || *s.IsSafeForAds
}

// scorePropensity maps the raw pattern signals to the final 0-100 score.
// Repeated questions are the key signal: a user re-asking the same topic is
// far more likely to engage with a tool or course recommendation.
func scorePropensity(sig patternSignals, repeatedQueryThreshold int) int {
	score := 30
	if sig.PropensityScore != nil {
		score = *sig.PropensityScore
	}

	// First match wins. While the configured threshold is 3 the >= 3 arm is
	// shadowed; the ordering is load-bearing and must not be rearranged.
	switch {
	case sig.TopicRepeatCount >= repeatedQueryThreshold:
		score += 50
	case sig.TopicRepeatCount >= 3:
		score += 30
	case sig.TopicRepeatCount >= 2:
		score += 15
	}

	switch sig.UsagePattern {
	case "SHOPPING":
		score += 30
	case "GRINDING":
		score += 25
	case "URGENT":
		score += 20
	case "LEARNING":
		score += 10
	}

	if sig.IsHomeworkPattern {
		score += 15
	}

	return clampScore(score)
}

// struggleForPattern maps the usage-pattern label to a struggle level.
func struggleForPattern(pattern string) types.StruggleLevel {
	switch pattern {
	case "GRINDING", "URGENT":
		return types.StruggleHigh
	case "LEARNING":
		return types.StruggleModerate
	case "SHOPPING":
		return types.StruggleMild
	default:
		return types.StruggleNone
	}
}

// bucketForPattern derives the intent bucket from the pattern signals.
func bucketForPattern(sig patternSignals, repeatedQueryThreshold int) types.IntentBucket {
	if sig.TopicRepeatCount >= repeatedQueryThreshold && sig.CommercialOpportunity != "" {
		return types.IntentCommercial
	}
	switch sig.UsagePattern {
	case "SHOPPING":
		return types.IntentTransactional
	case "GRINDING", "LEARNING":
		return types.IntentEducational
	}
	return types.IntentEducational
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
