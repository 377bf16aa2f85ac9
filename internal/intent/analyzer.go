// Package intent is the turn-by-turn decision core: it classifies the
// conversation with one of three strategies, scores the user's propensity to
// engage with a commercial nudge, and applies the safety gate. Every path
// degrades to a safe zero-score analysis; Analyze never fails.
package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"axon/internal/llmclient"
	"axon/internal/serp"
	"axon/internal/types"
	"axon/internal/util/jsonutil"
)

// patternWindow is the rolling window of messages fed to the pattern prompt.
const patternWindow = 20

// strongIntentKeywords upgrade a quick classification to commercial intent
// regardless of what the model said about the bucket.
var strongIntentKeywords = []string{
	"i need", "i want", "buy", "purchase", "looking for", "recommend",
}

// Searcher is the slice of the search gateway the classifier needs for
// grounding. Satisfied by *serp.Client and by test fakes.
type Searcher interface {
	Search(ctx context.Context, query, searchType, location string) serp.Result
}

// Config carries the tunable thresholds of the decision pipeline.
type Config struct {
	// ConversionThreshold is the propensity score at or above which a turn
	// triggers monetization.
	ConversionThreshold int
	// RepeatedQueryThreshold is the topic-repeat count treated as grinding.
	RepeatedQueryThreshold int
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{ConversionThreshold: 70, RepeatedQueryThreshold: 3}
}

// Analyzer chooses an analysis strategy per turn and produces a normalized
// IntentAnalysis.
type Analyzer struct {
	reasoner llmclient.Reasoner
	search   Searcher
	cfg      Config
	logger   *zap.Logger
}

func NewAnalyzer(reasoner llmclient.Reasoner, search Searcher, cfg Config, logger *zap.Logger) *Analyzer {
	if cfg.ConversionThreshold <= 0 {
		cfg.ConversionThreshold = 70
	}
	if cfg.RepeatedQueryThreshold <= 0 {
		cfg.RepeatedQueryThreshold = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{reasoner: reasoner, search: search, cfg: cfg, logger: logger}
}

// Analyze inspects the conversation and returns one IntentAnalysis.
// Strategy selection: an image forces the multimodal strategy; short
// conversations get the quick single-message pass; everything else runs the
// full pattern analysis.
func (a *Analyzer) Analyze(ctx context.Context, messages []types.Message, image string, demoMode bool) types.IntentAnalysis {
	if image != "" {
		return a.multimodalAnalyze(ctx, lastMessage(messages), image)
	}
	if len(messages) < 3 {
		return a.quickAnalyze(ctx, lastMessage(messages), demoMode)
	}
	return a.patternAnalyze(ctx, messages)
}

// quickAnalyze classifies the latest message alone, then applies the
// keyword override and the demo escape hatch.
func (a *Analyzer) quickAnalyze(ctx context.Context, msg *types.Message, demoMode bool) types.IntentAnalysis {
	if msg == nil {
		return defaultAnalysis("no message to analyze")
	}

	out, err := a.reasoner.Generate(ctx, llmclient.Request{
		Prompt:      fmt.Sprintf(singleMessagePrompt, msg.Content),
		Temperature: 0.1,
		MaxTokens:   200,
	})
	if err != nil {
		a.logger.Warn("quick analysis failed", zap.Error(err))
		return defaultAnalysis("quick analysis error: " + err.Error())
	}

	var sig quickSignals
	if err := jsonutil.Extract(out, &sig); err != nil {
		a.logger.Warn("quick analysis returned unparseable payload", zap.Error(err))
		return defaultAnalysis("quick analysis error: unparseable payload")
	}

	bucket := types.ParseIntentBucket(sig.IntentBucket)
	struggle := types.StruggleNone
	score := 10

	if hasStrongIntent(msg.Content) || bucket.Commercial() {
		struggle = types.StruggleMild
		score = 75 // sits above the default conversion threshold
		if bucket == types.IntentEducational {
			bucket = types.IntentCommercial
		}
	}

	if demoMode && bucket.Commercial() {
		score = 99
		struggle = types.StruggleHigh
		a.logger.Info("demo mode forced propensity",
			zap.Int("score", score), zap.String("message", msg.Content))
	}

	return finalize(types.IntentAnalysis{
		Bucket:           bucket,
		Struggle:         struggle,
		PropensityScore:  score,
		DetectedEntities: sig.DetectedEntities,
		Reasoning:        "quick heuristic classification",
		IsSafeForAds:     sig.safe(),
		SafetyReason:     sig.SafetyReason,
	})
}

// patternAnalyze runs the full rolling-window analysis and, when the signals
// look commercial enough, grounds them with live shopping results.
func (a *Analyzer) patternAnalyze(ctx context.Context, messages []types.Message) types.IntentAnalysis {
	transcript := formatConversation(messages)

	out, err := a.reasoner.Generate(ctx, llmclient.Request{
		Prompt:      fmt.Sprintf(patternAnalysisPrompt, transcript),
		Temperature: 0.2,
		MaxTokens:   500,
	})
	if err != nil {
		a.logger.Warn("pattern analysis failed", zap.Error(err))
		return defaultAnalysis("pattern analysis error: " + err.Error())
	}

	var sig patternSignals
	if err := jsonutil.Extract(out, &sig); err != nil {
		a.logger.Warn("pattern analysis returned unparseable payload", zap.Error(err))
		return defaultAnalysis("pattern analysis error: unparseable payload")
	}

	score := scorePropensity(sig, a.cfg.RepeatedQueryThreshold)
	struggle := struggleForPattern(sig.UsagePattern)
	bucket := bucketForPattern(sig, a.cfg.RepeatedQueryThreshold)

	var grounding serp.Digest
	if score >= groundingScoreFloor || bucket.Commercial() {
		if query := groundingQuery(sig); query != "" && a.search != nil {
			a.logger.Debug("grounding intent with live search", zap.String("query", query))
			grounding = serp.ShoppingDigest(a.search.Search(ctx, query, serp.TypeShopping, "United States"), 1000)
		}
	}

	return finalize(types.IntentAnalysis{
		Bucket:              bucket,
		Struggle:            struggle,
		PropensityScore:     score,
		DetectedEntities:    sig.DetectedSubjects,
		RecommendedCategory: sig.CommercialOpportunity,
		GroundingData:       grounding.Text,
		GroundingImages:     grounding.Images,
		Reasoning:           sig.Reasoning,
		IsSafeForAds:        sig.safe(),
		SafetyReason:        sig.SafetyReason,
	})
}

// multimodalAnalyze classifies the latest message together with an uploaded
// image. Visual search is assumed to imply an active need, so struggle is
// pinned at moderate and the score comes from the model's estimate.
func (a *Analyzer) multimodalAnalyze(ctx context.Context, msg *types.Message, image string) types.IntentAnalysis {
	content := "No text provided"
	if msg != nil {
		content = msg.Content
	}

	out, err := a.reasoner.Generate(ctx, llmclient.Request{
		Prompt:      fmt.Sprintf(multimodalAnalysisPrompt, content),
		ImageB64:    image,
		Temperature: 0.1,
		MaxTokens:   300,
	})
	if err != nil {
		a.logger.Warn("multimodal analysis failed", zap.Error(err))
		return defaultAnalysis("multimodal analysis error: " + err.Error())
	}

	var sig multimodalSignals
	if err := jsonutil.Extract(out, &sig); err != nil {
		a.logger.Warn("multimodal analysis returned unparseable payload", zap.Error(err))
		return defaultAnalysis("multimodal analysis error: unparseable payload")
	}

	bucket := types.IntentCommercial
	if sig.IntentBucket != "" {
		bucket = types.ParseIntentBucket(sig.IntentBucket)
	}
	score := 90
	if sig.PropensityScore != nil {
		score = clampScore(*sig.PropensityScore)
	}
	reasoning := sig.Reasoning
	if reasoning == "" {
		reasoning = "visual analysis"
	}

	return finalize(types.IntentAnalysis{
		Bucket:              bucket,
		Struggle:            types.StruggleModerate,
		PropensityScore:     score,
		DetectedEntities:    sig.DetectedEntities,
		RecommendedCategory: sig.CommercialOpportunity,
		Reasoning:           reasoning,
		IsSafeForAds:        sig.safe(),
	})
}

// quickSignals is the raw JSON shape of the single-message prompt.
type quickSignals struct {
	IntentBucket        string   `json:"intent_bucket"`
	DetectedEntities    []string `json:"detected_entities"`
	IsQuestion          bool     `json:"is_question"`
	IsEquationOrProblem bool     `json:"is_equation_or_problem"`
	IsSafeForAds        *bool    `json:"is_safe_for_ads"`
	SafetyReason        string   `json:"safety_reason"`
}

func (s quickSignals) safe() bool { return s.IsSafeForAds == nil || *s.IsSafeForAds }

// multimodalSignals is the raw JSON shape of the image prompt.
type multimodalSignals struct {
	IntentBucket          string   `json:"intent_bucket"`
	DetectedEntities      []string `json:"detected_entities"`
	CommercialOpportunity string   `json:"commercial_opportunity"`
	PropensityScore       *int     `json:"propensity_score"`
	IsSafeForAds          *bool    `json:"is_safe_for_ads"`
	Reasoning             string   `json:"reasoning"`
}

func (s multimodalSignals) safe() bool { return s.IsSafeForAds == nil || *s.IsSafeForAds }

// finalize enforces the safety gate on every strategy's output: an unsafe
// analysis carries no propensity and no grounding, even if already fetched.
func finalize(a types.IntentAnalysis) types.IntentAnalysis {
	a.PropensityScore = clampScore(a.PropensityScore)
	if !a.IsSafeForAds {
		a.PropensityScore = 0
		a.GroundingData = ""
		a.GroundingImages = nil
	}
	return a
}

// defaultAnalysis is the deterministic fallback for every failure mode.
func defaultAnalysis(reason string) types.IntentAnalysis {
	if reason == "" {
		reason = "default analysis"
	}
	return types.IntentAnalysis{
		Bucket:           types.IntentEducational,
		Struggle:         types.StruggleNone,
		PropensityScore:  0,
		DetectedEntities: []string{},
		Reasoning:        reason,
		IsSafeForAds:     true,
	}
}

// groundingQuery builds the search query for grounding, preferring the
// commercial-opportunity text over the first detected subject. An empty
// return means grounding is skipped.
func groundingQuery(sig patternSignals) string {
	if sig.CommercialOpportunity != "" {
		return "buy " + sig.CommercialOpportunity
	}
	if len(sig.DetectedSubjects) > 0 {
		return "buy " + sig.DetectedSubjects[0]
	}
	return ""
}

// formatConversation renders the rolling window as a numbered transcript,
// truncating long messages to keep the prompt bounded.
func formatConversation(messages []types.Message) string {
	if len(messages) == 0 {
		return "[No messages]"
	}
	window := messages
	if len(window) > patternWindow {
		window = window[len(window)-patternWindow:]
	}
	lines := make([]string, 0, len(window))
	for i, msg := range window {
		role := "ASSISTANT"
		if msg.Role == "user" {
			role = "USER"
		}
		content := msg.Content
		if runes := []rune(content); len(runes) > 500 {
			content = string(runes[:500])
		}
		lines = append(lines, fmt.Sprintf("[%d] %s: %s", i+1, role, content))
	}
	return strings.Join(lines, "\n")
}

func hasStrongIntent(content string) bool {
	lower := strings.ToLower(content)
	for _, k := range strongIntentKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func lastMessage(messages []types.Message) *types.Message {
	if len(messages) == 0 {
		return nil
	}
	return &messages[len(messages)-1]
}
