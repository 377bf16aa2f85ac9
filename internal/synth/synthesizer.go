// Package synth rewrites the assistant reply, weaving a gated nudge into
// the prose without breaking the conversational flow.
package synth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"axon/internal/llmclient"
	"axon/internal/nudge"
	"axon/internal/types"
)

const systemInstruction = `You are a helpful AI assistant with a subtle commercial awareness feature.

When responding to users:
1. FIRST, fully answer their question with accurate, helpful information
2. THEN, if a nudge is provided, naturally weave it into your response
3. The nudge should feel like genuine advice, not an advertisement
4. Use transitional phrases like "By the way...", "You might also find...", "If you're looking for..."
5. Never interrupt the main answer - the nudge comes AFTER the help
6. Keep the nudge brief and non-pushy

IMPORTANT RULES:
- If the nudge doesn't fit naturally, leave it out entirely
- Never use phrases like "I recommend" or "I suggest" for the nudge
- Make it sound like helpful additional information, not a sales pitch
- Include specific details from the nudge (price, availability) only if relevant`

const fallbackReply = "I apologize, but I'm having trouble generating a response right now. Please try again."

// Synthesizer generates the outgoing reply. It is the consumer of the
// relevance gate: a resolved nudge below the minimum relevance is dropped
// silently and the reply is synthesized without it.
type Synthesizer struct {
	reasoner     llmclient.Reasoner
	minRelevance float64
	logger       *zap.Logger
}

func New(reasoner llmclient.Reasoner, minRelevance float64, logger *zap.Logger) *Synthesizer {
	if minRelevance <= 0 {
		minRelevance = nudge.DefaultMinRelevance
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{reasoner: reasoner, minRelevance: minRelevance, logger: logger}
}

// Accepts reports whether the nudge passes the relevance gate.
func (s *Synthesizer) Accepts(n *types.Nudge) bool {
	return nudge.Eligible(n, s.minRelevance)
}

// Respond generates the reply. Failures degrade: first to a plain
// no-nudge generation, then to a static apology. Never returns an error.
func (s *Synthesizer) Respond(ctx context.Context, userMessage, conversationContext string, n *types.Nudge) string {
	nudgeSection := "No nudge to include."
	if s.Accepts(n) {
		nudgeSection = formatNudgeSection(n)
	}

	prompt := fmt.Sprintf(`USER MESSAGE:
%s

%s

Provide a helpful response to the user. If a nudge is included above, naturally incorporate it at the end of your response.`, userMessage, nudgeSection)

	if conversationContext != "" {
		prompt = "CONVERSATION CONTEXT:\n" + conversationContext + "\n\n" + prompt
	}

	out, err := s.reasoner.Generate(ctx, llmclient.Request{
		Prompt:            prompt,
		SystemInstruction: systemInstruction,
		Temperature:       0.7,
		MaxTokens:         1500,
	})
	if err == nil {
		return strings.TrimSpace(out)
	}
	s.logger.Warn("synthesis failed, falling back to plain response", zap.Error(err))

	out, err = s.reasoner.Generate(ctx, llmclient.Request{
		Prompt:            userMessage,
		SystemInstruction: "You are a helpful AI assistant. Answer clearly and concisely.",
		Temperature:       0.7,
	})
	if err != nil {
		return fallbackReply
	}
	return strings.TrimSpace(out)
}

func formatNudgeSection(n *types.Nudge) string {
	lines := []string{
		"NUDGE TO INCLUDE:",
		"Product: " + n.ProductName,
		"Vendor: " + n.VendorName,
		fmt.Sprintf("Relevance: %.0f%%", n.RelevanceScore*100),
		"Suggested phrasing: " + n.NudgeText,
	}
	if n.LocalAvailability != "" {
		lines = append(lines, "Local availability: "+n.LocalAvailability)
	}
	if n.CallToAction != "" {
		lines = append(lines, "Call to action: "+n.CallToAction)
	}
	return strings.Join(lines, "\n")
}
