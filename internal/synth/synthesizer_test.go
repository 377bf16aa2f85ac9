package synth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"axon/internal/llmclient"
	"axon/internal/types"
)

// scriptedReasoner replays one answer per call and can fail the first N.
type scriptedReasoner struct {
	failFirst int
	calls     int
	requests  []llmclient.Request
}

func (s *scriptedReasoner) Generate(_ context.Context, req llmclient.Request) (string, error) {
	s.calls++
	s.requests = append(s.requests, req)
	if s.calls <= s.failFirst {
		return "", errors.New("model overloaded")
	}
	return "  Here's your answer.  ", nil
}

func eligibleNudge() *types.Nudge {
	return &types.Nudge{
		ProductName:    "Delta Repair Kit",
		VendorName:     "Home Depot",
		RelevanceScore: 0.9,
		NudgeText:      "By the way, this kit is well reviewed.",
		CallToAction:   "Check it out at Home Depot",
	}
}

func TestRespondIncludesEligibleNudge(t *testing.T) {
	reasoner := &scriptedReasoner{}
	s := New(reasoner, 0.7, nil)

	out := s.Respond(context.Background(), "how do I fix my faucet?", "USER: hi", eligibleNudge())

	if out != "Here's your answer." {
		t.Fatalf("unexpected reply: %q", out)
	}
	prompt := reasoner.requests[0].Prompt
	if !strings.Contains(prompt, "NUDGE TO INCLUDE:") {
		t.Fatalf("prompt missing nudge section: %q", prompt)
	}
	if !strings.Contains(prompt, "Delta Repair Kit") {
		t.Fatalf("prompt missing product: %q", prompt)
	}
	if !strings.Contains(prompt, "CONVERSATION CONTEXT:\nUSER: hi") {
		t.Fatalf("prompt missing context: %q", prompt)
	}
	if reasoner.requests[0].SystemInstruction == "" {
		t.Fatal("synthesis must carry the system instruction")
	}
}

func TestRespondDropsLowRelevanceNudge(t *testing.T) {
	reasoner := &scriptedReasoner{}
	s := New(reasoner, 0.7, nil)

	n := eligibleNudge()
	n.RelevanceScore = 0.69
	s.Respond(context.Background(), "question", "", n)

	prompt := reasoner.requests[0].Prompt
	if strings.Contains(prompt, "Delta Repair Kit") {
		t.Fatalf("low-relevance nudge leaked into the prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "No nudge to include.") {
		t.Fatalf("expected the empty-nudge marker: %q", prompt)
	}
}

func TestRespondNilNudge(t *testing.T) {
	reasoner := &scriptedReasoner{}
	s := New(reasoner, 0.7, nil)
	s.Respond(context.Background(), "question", "", nil)
	if !strings.Contains(reasoner.requests[0].Prompt, "No nudge to include.") {
		t.Fatal("nil nudge should synthesize without a nudge section")
	}
}

func TestRespondFallsBackToPlainGeneration(t *testing.T) {
	reasoner := &scriptedReasoner{failFirst: 1}
	s := New(reasoner, 0.7, nil)

	out := s.Respond(context.Background(), "question", "", eligibleNudge())

	if out != "Here's your answer." {
		t.Fatalf("expected the plain fallback reply, got %q", out)
	}
	if reasoner.calls != 2 {
		t.Fatalf("expected two generation attempts, got %d", reasoner.calls)
	}
	if strings.Contains(reasoner.requests[1].Prompt, "NUDGE") {
		t.Fatal("the fallback generation must not carry the nudge")
	}
}

func TestRespondStaticFallback(t *testing.T) {
	reasoner := &scriptedReasoner{failFirst: 2}
	s := New(reasoner, 0.7, nil)

	out := s.Respond(context.Background(), "question", "", nil)
	if out != fallbackReply {
		t.Fatalf("expected the static apology, got %q", out)
	}
}

func TestAcceptsMatchesGate(t *testing.T) {
	s := New(&scriptedReasoner{}, 0.7, nil)
	if s.Accepts(nil) {
		t.Fatal("nil nudge must not be accepted")
	}
	if !s.Accepts(&types.Nudge{RelevanceScore: 0.7}) {
		t.Fatal("the boundary is inclusive")
	}
	if s.Accepts(&types.Nudge{RelevanceScore: 0.699}) {
		t.Fatal("below the minimum must be rejected")
	}
}
