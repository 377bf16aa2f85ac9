package serp

import (
	"fmt"
	"strings"
)

// Digest is the human-readable grounding payload built from raw results.
type Digest struct {
	Text   string
	Images []string
}

// ShoppingDigest condenses the top results into a short grounding digest:
// up to three lines of product info and up to two thumbnail URLs.
func ShoppingDigest(r Result, charLimit int) Digest {
	if r.Failed() {
		return Digest{}
	}
	if charLimit <= 0 {
		charLimit = 1000
	}

	var lines []string
	var images []string

	switch {
	case len(r.ShoppingResults) > 0:
		for _, item := range top(r.ShoppingResults, 3) {
			title := item.Title
			if title == "" {
				title = "Unknown Product"
			}
			price := item.Price
			if price == "" {
				price = "N/A"
			}
			merchant := item.Source
			if merchant == "" {
				merchant = "Unknown Seller"
			}
			entry := fmt.Sprintf("- %s (%s) from %s", title, price, merchant)
			if item.Rating > 0 {
				entry += fmt.Sprintf(" [%.1f stars", item.Rating)
				if item.Reviews > 0 {
					entry += fmt.Sprintf(" (%d reviews)", item.Reviews)
				}
				entry += "]"
			}
			lines = append(lines, entry)
			if item.Thumbnail != "" {
				images = append(images, item.Thumbnail)
			}
		}
	case len(r.OrganicResults) > 0:
		for _, item := range top(r.OrganicResults, 3) {
			lines = append(lines, fmt.Sprintf("- %s: %s", item.Title, item.Snippet))
		}
	}

	text := strings.Join(lines, "\n")
	if len(text) > charLimit {
		text = text[:charLimit]
	}
	return Digest{Text: text, Images: top(images, 2)}
}

func top[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
