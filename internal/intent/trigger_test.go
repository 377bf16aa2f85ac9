package intent

import (
	"testing"

	"axon/internal/types"
)

func TestShouldTrigger(t *testing.T) {
	cases := []struct {
		name string
		a    types.IntentAnalysis
		want bool
	}{
		{
			"score at threshold",
			types.IntentAnalysis{Bucket: types.IntentEducational, Struggle: types.StruggleNone, PropensityScore: 70, IsSafeForAds: true},
			true,
		},
		{
			"score below threshold, no commercial signal",
			types.IntentAnalysis{Bucket: types.IntentEducational, Struggle: types.StruggleNone, PropensityScore: 69, IsSafeForAds: true},
			false,
		},
		{
			"commercial with any struggle beats the threshold",
			types.IntentAnalysis{Bucket: types.IntentCommercial, Struggle: types.StruggleMild, PropensityScore: 69, IsSafeForAds: true},
			true,
		},
		{
			"transactional with struggle",
			types.IntentAnalysis{Bucket: types.IntentTransactional, Struggle: types.StruggleHigh, PropensityScore: 5, IsSafeForAds: true},
			true,
		},
		{
			"commercial without struggle stays below threshold",
			types.IntentAnalysis{Bucket: types.IntentCommercial, Struggle: types.StruggleNone, PropensityScore: 69, IsSafeForAds: true},
			false,
		},
		{
			"unsafe never triggers",
			types.IntentAnalysis{Bucket: types.IntentCommercial, Struggle: types.StruggleHigh, PropensityScore: 100, IsSafeForAds: false},
			false,
		},
	}

	for _, tc := range cases {
		if got := ShouldTrigger(tc.a, 70); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestShouldTriggerIsPure(t *testing.T) {
	a := types.IntentAnalysis{Bucket: types.IntentCommercial, Struggle: types.StruggleMild, PropensityScore: 42, IsSafeForAds: true}
	ShouldTrigger(a, 70)
	if a.Bucket != types.IntentCommercial || a.Struggle != types.StruggleMild || a.PropensityScore != 42 || !a.IsSafeForAds {
		t.Fatal("ShouldTrigger must not mutate its input")
	}
}

func TestAnalyzerShouldTriggerUsesConfiguredThreshold(t *testing.T) {
	a := NewAnalyzer(&fakeReasoner{}, nil, Config{ConversionThreshold: 90, RepeatedQueryThreshold: 3}, nil)
	analysis := types.IntentAnalysis{Bucket: types.IntentEducational, PropensityScore: 85, IsSafeForAds: true}
	if a.ShouldTrigger(analysis) {
		t.Fatal("score 85 must not trigger at threshold 90")
	}
	analysis.PropensityScore = 90
	if !a.ShouldTrigger(analysis) {
		t.Fatal("score 90 must trigger at threshold 90")
	}
}
