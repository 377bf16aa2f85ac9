// Package nudge maps an intent analysis to at most one product
// recommendation, via live shopping search with a deterministic offline
// fallback, and gates it on relevance before it may reach a reply.
package nudge

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"axon/internal/serp"
	"axon/internal/types"
)

// DefaultLocation is used when the caller does not pass one.
const DefaultLocation = "United States"

// Searcher is the slice of the search gateway the resolver needs.
type Searcher interface {
	Search(ctx context.Context, query, searchType, location string) serp.Result
}

// Resolver finds the best matching product for a detected intent.
type Resolver struct {
	search Searcher
	logger *zap.Logger
}

func NewResolver(search Searcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{search: search, logger: logger}
}

// FindNudge resolves zero-or-one nudge for the analysis. It never returns
// an error: a failed or empty live search falls back to the mock catalog,
// and anything unresolvable yields nil.
func (r *Resolver) FindNudge(ctx context.Context, analysis types.IntentAnalysis, location string) *types.Nudge {
	if len(analysis.DetectedEntities) == 0 {
		return nil
	}
	if location == "" {
		location = DefaultLocation
	}

	query := buildQuery(analysis)

	if r.search == nil {
		n := newNudge(mockResult(query), analysis)
		return &n
	}

	res := r.search.Search(ctx, query, serp.TypeShopping, location)
	if res.Failed() {
		r.logger.Debug("live search unavailable, using mock catalog",
			zap.String("query", query), zap.String("reason", res.Err))
		n := newNudge(mockResult(query), analysis)
		return &n
	}
	if len(res.ShoppingResults) == 0 {
		return nil
	}

	n := newNudge(res.ShoppingResults[0], analysis)
	return &n
}

// buildQuery joins the first detected entities and appends a domain
// modifier chosen from the intent bucket and struggle level.
func buildQuery(analysis types.IntentAnalysis) string {
	entities := analysis.DetectedEntities
	if len(entities) > 3 {
		entities = entities[:3]
	}
	query := strings.Join(entities, " ")

	if analysis.Bucket == types.IntentEducational || analysis.Struggle == types.StruggleHigh {
		query += " online course tutoring"
	} else if analysis.Struggle == types.StruggleModerate || analysis.Struggle == types.StruggleHigh {
		query += " best buy"
	}
	return query
}

// newNudge converts a raw search result into an immutable Nudge.
// The relevance score is additive over intent signals, not derived from the
// search ranking.
func newNudge(item serp.ShoppingItem, analysis types.IntentAnalysis) types.Nudge {
	relevance := 0.6
	if analysis.Bucket.Commercial() {
		relevance += 0.15
	}
	switch analysis.Struggle {
	case types.StruggleHigh:
		relevance += 0.15
	case types.StruggleModerate:
		relevance += 0.10
	}
	if relevance > 1.0 {
		relevance = 1.0
	}

	product := item.Title
	if product == "" {
		product = "Recommended Product"
	}
	vendor := item.Source
	if vendor == "" {
		vendor = "Online Retailer"
	}
	ctaVendor := item.Source
	if ctaVendor == "" {
		ctaVendor = "the store"
	}

	var images []string
	if item.Thumbnail != "" {
		images = []string{item.Thumbnail}
	}

	link := item.BestLink()
	return types.Nudge{
		ProductName:       product,
		VendorName:        vendor,
		RelevanceScore:    relevance,
		NudgeText:         nudgeText(item, analysis, link),
		Link:              link,
		CallToAction:      "Check it out at " + ctaVendor,
		LocalAvailability: item.LocalAvailability,
		Images:            images,
	}
}

// nudgeText renders the natural-language nudge: a struggle-keyed prefix,
// the product as a clickable reference when a link exists, then price,
// rating, and local-availability clauses.
func nudgeText(item serp.ShoppingItem, analysis types.IntentAnalysis, link string) string {
	product := item.Title
	if product == "" {
		product = "this product"
	}
	if link != "" {
		product = fmt.Sprintf("[**%s**](%s)", product, encodeLink(link))
	} else {
		product = fmt.Sprintf("**%s**", product)
	}

	source := item.Source
	if source == "" {
		source = "online"
	}

	var prefix string
	switch analysis.Struggle {
	case types.StruggleHigh:
		prefix = "By the way, since you're working through this"
	case types.StruggleModerate:
		prefix = "If you'd like a little help"
	default:
		prefix = "You might also find this useful"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s from %s", prefix, product, source)
	if item.Price != "" {
		fmt.Fprintf(&b, " (%s)", item.Price)
	}
	if item.Rating >= 4.5 {
		fmt.Fprintf(&b, " has excellent reviews (%s★)", strconv.FormatFloat(item.Rating, 'f', -1, 64))
	}
	if item.LocalAvailability != "" {
		fmt.Fprintf(&b, ". %s.", item.LocalAvailability)
	} else {
		b.WriteString(".")
	}
	return b.String()
}

// encodeLink percent-encodes characters unsafe inside a markdown link
// target, leaving URL structure characters intact.
func encodeLink(link string) string {
	const safe = ":/=&?%+"
	var b strings.Builder
	for i := 0; i < len(link); i++ {
		c := link[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '_' || c == '.' || c == '~':
			b.WriteByte(c)
		case strings.IndexByte(safe, c) >= 0:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// mockResult routes the query to a deterministic catalog record so demos
// and tests work with no live search configured. Same query, same record.
func mockResult(query string) serp.ShoppingItem {
	q := strings.ToLower(query)

	if containsAny(q, "faucet", "plumbing", "wrench", "pipe", "repair") {
		return serp.ShoppingItem{
			Title:             "Delta Faucet Repair Kit - Complete Set",
			Source:            "Home Depot",
			Price:             "$24.99",
			Rating:            4.7,
			LocalAvailability: "In stock at nearby store",
			Link:              "https://www.homedepot.com/b/Plumbing/Delta/N-5yc1vZbqewZ1z0v",
		}
	}
	if containsAny(q, "calculus", "math", "tutoring", "study") {
		return serp.ShoppingItem{
			Title:  "Brilliant.org Premium - Learn Calculus Interactively",
			Source: "Brilliant",
			Price:  "$12.99/mo",
			Rating: 4.9,
			Link:   "https://brilliant.org/courses/calculus-done-right/",
		}
	}
	if containsAny(q, "laptop", "computer", "macbook", "coding") {
		return serp.ShoppingItem{
			Title:             "MacBook Air M3 - 15 inch",
			Source:            "Apple Store",
			Price:             "$1,299",
			Rating:            4.8,
			LocalAvailability: "Available for pickup today",
			Link:              "https://www.apple.com/macbook-air/",
		}
	}
	return serp.ShoppingItem{
		Title:             "Top Rated " + titleCase(query) + " Solution",
		Source:            "Amazon",
		Price:             "$29.99",
		Rating:            4.5,
		LocalAvailability: "Prime delivery available",
		Link:              "https://www.amazon.com/s?k=" + url.QueryEscape(query),
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
		}
	}
	return strings.Join(words, " ")
}
