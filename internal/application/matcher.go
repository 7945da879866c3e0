package application

import (
	"strings"

	"trazoo-cod-gateway/internal/domain"
)

// MatchContext carries the discriminators available for reconciling a
// candidate order against the request that created it, in descending order
// of discriminating power.
type MatchContext struct {
	Tag       string
	Note      string
	Email     string
	VariantID int64
	Quantity  int
}

// MatchOrder selects the most plausible candidate for the order the
// workflow just created, or nil when nothing qualifies.
//
// A candidate carrying tags without the COD tag, or a note that differs
// from the COD note, is ruled out. The remaining discriminators score the
// candidate: matching email and matching line item outweigh the markers
// alone. Missing metadata never disqualifies a candidate on its own; the
// listing may not return every field. Ties go to the earliest candidate,
// which is the newest order in a newest-first listing.
func MatchOrder(candidates []domain.Order, mctx MatchContext) *domain.Order {
	var best *domain.Order
	bestScore := 0

	for i := range candidates {
		o := &candidates[i]

		if o.Tags != "" && !hasTag(o.Tags, mctx.Tag) {
			continue
		}
		if o.Note != "" && mctx.Note != "" && o.Note != mctx.Note {
			continue
		}

		score := 0
		if o.Tags != "" {
			score++
		}
		if o.Note != "" && o.Note == mctx.Note {
			score++
		}
		if mctx.Email != "" && o.Email != "" && strings.EqualFold(o.Email, mctx.Email) {
			score += 2
		}
		if hasLineItem(o.LineItems, mctx.VariantID, mctx.Quantity) {
			score += 2
		}

		if score > bestScore {
			bestScore = score
			best = o
		}
	}

	return best
}

// hasTag reports whether a comma-separated Shopify tag string contains tag.
func hasTag(tags, tag string) bool {
	for _, t := range strings.Split(tags, ",") {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

func hasLineItem(items []domain.LineItem, variantID int64, quantity int) bool {
	for _, li := range items {
		if li.VariantID == variantID && li.Quantity == quantity {
			return true
		}
	}
	return false
}
