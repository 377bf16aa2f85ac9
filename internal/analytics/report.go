// Package analytics aggregates cross-session metrics for the operator
// dashboard and fans out live monetization events to watchers.
package analytics

import (
	"sort"
	"strings"
	"time"

	"axon/internal/types"
)

// costPerSession is the mocked average reasoner cost used for CPIF:
// roughly 1000 tokens per session at $5 per 1M tokens.
const costPerSession = 0.005

type Metrics struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalSessions int     `json:"total_sessions"`
	ActiveNudges  int     `json:"active_nudges"`
	CPIF          float64 `json:"cpif"`
}

type RevenuePoint struct {
	Time    string  `json:"time"`
	Revenue float64 `json:"revenue"`
	Amount  float64 `json:"amount"`
}

type DistributionSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type Conversion struct {
	SessionID string  `json:"session_id"`
	Intent    string  `json:"intent"`
	Status    string  `json:"status"`
	Revenue   float64 `json:"revenue"`
	Timestamp string  `json:"timestamp"`
}

type Charts struct {
	RevenueOverTime    []RevenuePoint      `json:"revenue_over_time"`
	IntentDistribution []DistributionSlice `json:"intent_distribution"`
}

type Report struct {
	Metrics           Metrics      `json:"metrics"`
	Charts            Charts       `json:"charts"`
	RecentConversions []Conversion `json:"recent_conversions"`
}

// BuildReport computes the dashboard payload from session snapshots.
// CPIF is revenue net of estimated reasoner cost, per session.
func BuildReport(snapshots []types.ConversationState, now time.Time) Report {
	var totalRevenue float64
	var totalNudges int
	intentCounts := map[string]int{}
	var events []types.RevenueEvent

	for _, s := range snapshots {
		totalRevenue += s.TotalRevenue
		totalNudges += len(s.NudgesShown)
		if s.CurrentIntent != nil {
			intentCounts[string(s.CurrentIntent.Bucket)]++
		}
		events = append(events, s.RevenueEvents...)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	var chart []RevenuePoint
	var running float64
	for _, e := range events {
		running += e.Amount
		chart = append(chart, RevenuePoint{
			Time:    e.Timestamp.Format("15:04:05"),
			Revenue: running,
			Amount:  e.Amount,
		})
	}
	if len(chart) == 0 {
		chart = []RevenuePoint{{Time: now.Format("15:04:05")}}
	}

	var distribution []DistributionSlice
	for _, bucket := range []string{"educational", "commercial", "transactional", "navigational"} {
		if v := intentCounts[bucket]; v > 0 {
			distribution = append(distribution, DistributionSlice{Name: titleWord(bucket), Value: v})
		}
	}

	conversions := make([]Conversion, 0, 20)
	for i := len(events) - 1; i >= 0 && len(conversions) < 20; i-- {
		e := events[i]
		intent := e.Bucket
		if intent == "" {
			intent = "unknown"
		}
		sessionID := e.SessionID
		if sessionID == "" {
			sessionID = "unknown"
		}
		conversions = append(conversions, Conversion{
			SessionID: sessionID,
			Intent:    titleWord(intent),
			Status:    "Converted",
			Revenue:   e.Amount,
			Timestamp: e.Timestamp.Format(time.RFC3339),
		})
	}

	totalSessions := len(snapshots)
	cpif := 0.0
	if totalSessions > 0 {
		cpif = (totalRevenue - float64(totalSessions)*costPerSession) / float64(totalSessions)
	}

	return Report{
		Metrics: Metrics{
			TotalRevenue:  totalRevenue,
			TotalSessions: totalSessions,
			ActiveNudges:  totalNudges,
			CPIF:          cpif,
		},
		Charts: Charts{
			RevenueOverTime:    chart,
			IntentDistribution: distribution,
		},
		RecentConversions: conversions,
	}
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
