package types

import "time"

// IntentBucket is the coarse classification of what the user is trying to do.
type IntentBucket string

const (
	IntentEducational   IntentBucket = "educational"
	IntentCommercial    IntentBucket = "commercial"
	IntentNavigational  IntentBucket = "navigational"
	IntentTransactional IntentBucket = "transactional"
)

// Commercial reports whether the bucket is one we can monetize directly.
func (b IntentBucket) Commercial() bool {
	return b == IntentCommercial || b == IntentTransactional
}

// ParseIntentBucket normalizes a raw bucket string, defaulting to educational.
func ParseIntentBucket(s string) IntentBucket {
	switch IntentBucket(s) {
	case IntentEducational, IntentCommercial, IntentNavigational, IntentTransactional:
		return IntentBucket(s)
	}
	return IntentEducational
}

// StruggleLevel is the inferred difficulty/urgency state of the user.
type StruggleLevel string

const (
	StruggleNone     StruggleLevel = "none"
	StruggleMild     StruggleLevel = "mild"
	StruggleModerate StruggleLevel = "moderate"
	StruggleHigh     StruggleLevel = "high"
)

// Message is a single turn in a conversation. Immutable once appended.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// IntentAnalysis is the normalized result of one classifier pass.
// Invariant: if IsSafeForAds is false, PropensityScore is 0 and the
// grounding fields are empty.
type IntentAnalysis struct {
	Bucket              IntentBucket  `json:"intent_bucket"`
	Struggle            StruggleLevel `json:"struggle_level"`
	PropensityScore     int           `json:"propensity_score"`
	DetectedEntities    []string      `json:"detected_entities"`
	RecommendedCategory string        `json:"recommended_category,omitempty"`
	GroundingData       string        `json:"grounding_data,omitempty"`
	GroundingImages     []string      `json:"grounding_images,omitempty"`
	Reasoning           string        `json:"reasoning,omitempty"`
	IsSafeForAds        bool          `json:"is_safe_for_ads"`
	SafetyReason        string        `json:"safety_reason,omitempty"`
}

// Nudge is a single product/service recommendation eligible for injection
// into a reply. Constructed once by the resolver, immutable thereafter.
type Nudge struct {
	ProductName       string   `json:"product_name"`
	VendorName        string   `json:"vendor_name"`
	RelevanceScore    float64  `json:"relevance_score"`
	NudgeText         string   `json:"nudge_text"`
	Link              string   `json:"link,omitempty"`
	CallToAction      string   `json:"call_to_action,omitempty"`
	LocalAvailability string   `json:"local_availability,omitempty"`
	Images            []string `json:"images,omitempty"`
}

// RevenueEvent records one simulated monetization event.
type RevenueEvent struct {
	Amount    float64   `json:"amount"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Bucket    string    `json:"intent_bucket"`
	SessionID string    `json:"session_id"`
}

// ConversationState is the full per-session state: the append-only message
// log plus the rolling results of the pipeline. Mutations go through the
// session store, which serializes writers per session.
type ConversationState struct {
	SessionID     string          `json:"session_id"`
	Messages      []Message       `json:"messages"`
	CurrentIntent *IntentAnalysis `json:"current_intent,omitempty"`
	NudgesShown   []Nudge         `json:"nudges_shown"`
	TotalRevenue  float64         `json:"total_revenue_generated"`
	RevenueEvents []RevenueEvent  `json:"revenue_events"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AddMessage appends a message with the current timestamp.
func (c *ConversationState) AddMessage(role, content string) {
	c.Messages = append(c.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// RecentMessages returns the last count messages for prompt context.
func (c *ConversationState) RecentMessages(count int) []Message {
	if len(c.Messages) <= count {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-count:]
}
