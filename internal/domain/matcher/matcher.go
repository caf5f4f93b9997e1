// Package matcher reconciles refunds against the purchases they reverse.
//
// Refunds are processed one at a time in input order. Each refund first
// passes an anomaly guard, then searches for a purchase across widening time
// windows. Within a window an exact match (same magnitude, same normalized
// merchant name) is preferred; failing that, a fuzzy match on name similarity
// is accepted. A full refund removes both records from the final set; a
// partial refund decrements the purchase's remaining balance in place.
//
// Example usage:
//
//	m := matcher.New(matcher.DefaultConfig(), logger)
//	result := m.Reconcile(filtered)
//	// result.Final is the cleaned set, result.Removed the audit trail.
package matcher

import (
	"log/slog"
	"time"

	"github.com/neoledger/neo-export-backend/internal/domain/normalizer"
	"github.com/neoledger/neo-export-backend/internal/domain/similarity"
	"github.com/neoledger/neo-export-backend/internal/domain/transaction"
)

// Matcher runs refund reconciliation over a filtered transaction list.
type Matcher struct {
	config Config
	logger *slog.Logger
}

// New creates a matcher with the given config. A nil logger falls back to
// slog.Default().
func New(config Config, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{config: config, logger: logger}
}

// purchaseArena is the matcher's working set: a mutable copy of the filtered
// purchases, addressed by index. Balance decrements write through the index,
// so no aliased references to caller-owned records are ever mutated.
type purchaseArena struct {
	records []transaction.Transaction
	names   []string // normalized merchant names, computed once
	dropped []bool   // removed from the final set
}

func newPurchaseArena(purchases []transaction.Transaction) *purchaseArena {
	a := &purchaseArena{
		records: make([]transaction.Transaction, len(purchases)),
		names:   make([]string, len(purchases)),
		dropped: make([]bool, len(purchases)),
	}
	copy(a.records, purchases)
	for i, p := range purchases {
		a.names[i] = normalizer.Normalize(p.Description)
	}
	return a
}

// Reconcile matches every refund in txs against the purchases in txs and
// returns the cleaned transaction set plus the disposition log. The input
// slice is never mutated.
func (m *Matcher) Reconcile(txs []transaction.Transaction) *Result {
	var purchases, refunds []transaction.Transaction
	for _, tx := range txs {
		switch tx.Category {
		case transaction.CategoryPurchase:
			purchases = append(purchases, tx)
		case transaction.CategoryRefund:
			refunds = append(refunds, tx)
		}
	}

	arena := newPurchaseArena(purchases)
	result := &Result{}
	var remaining []transaction.Transaction

	for _, refund := range refunds {
		refName := normalizer.Normalize(refund.Description)

		m.logger.Debug("processing refund",
			"description", refund.Description,
			"amount_cents", refund.AmountCents,
			"date", refund.DateString(),
		)

		if m.isAnomalous(refund, refName, purchases) {
			m.logger.Debug("refund too large relative to past purchases, skipping match",
				"description", refund.Description,
				"amount_cents", refund.AmountCents,
			)
			result.Removed = append(result.Removed, Disposition{Transaction: refund, Reason: ReasonRefundTooLarge})
			remaining = append(remaining, refund)
			result.Anomalies++
			continue
		}

		idx := m.findMatch(arena, refund, refName)
		if idx < 0 {
			m.logger.Debug("refund not matched", "description", refund.Description)
			remaining = append(remaining, refund)
			result.Unmatched++
			continue
		}

		m.resolve(arena, idx, refund, result)
	}

	final := make([]transaction.Transaction, 0, len(arena.records)+len(remaining))
	for i, p := range arena.records {
		if !arena.dropped[i] {
			final = append(final, p)
		}
	}
	result.Final = append(final, remaining...)

	return result
}

// isAnomalous reports whether the refund's magnitude is implausibly large
// relative to the merchant's purchase history. History is the filtered input
// purchases at their original amounts, before any balance adjustments.
func (m *Matcher) isAnomalous(refund transaction.Transaction, refName string, history []transaction.Transaction) bool {
	var maxMagnitude int64
	seen := false
	for _, p := range history {
		if normalizer.Normalize(p.Description) != refName {
			continue
		}
		seen = true
		if mag := p.Magnitude(); mag > maxMagnitude {
			maxMagnitude = mag
		}
	}
	if !seen {
		return false
	}
	return float64(refund.Magnitude()) > m.config.AnomalyMultiplier*float64(maxMagnitude)
}

// findMatch searches the arena across widening time tiers and returns the
// matched purchase index, or -1. Nearer-in-time tiers win even when a wider
// tier also holds a qualifying purchase.
func (m *Matcher) findMatch(arena *purchaseArena, refund transaction.Transaction, refName string) int {
	refundTime := refund.Time()

	for _, days := range m.config.TimeTiers {
		window := time.Duration(days) * 24 * time.Hour

		if idx := m.findExact(arena, refund, refName, refundTime, window); idx >= 0 {
			return idx
		}
		if idx := m.findFuzzy(arena, refund, refName, refundTime, window); idx >= 0 {
			return idx
		}
	}

	return -1
}

// findExact looks for a purchase with identical magnitude and identical
// normalized name, dated strictly before the refund and within the window.
func (m *Matcher) findExact(arena *purchaseArena, refund transaction.Transaction, refName string, refundTime time.Time, window time.Duration) int {
	for i := range arena.records {
		if arena.dropped[i] {
			continue
		}
		p := &arena.records[i]
		if p.Magnitude() != refund.Magnitude() || arena.names[i] != refName {
			continue
		}
		if inWindow(p.Time(), refundTime, window) {
			return i
		}
	}
	return -1
}

// findFuzzy looks for a purchase with a same-direction amount and a
// sufficiently similar name. Ties resolve to the first purchase in input
// order; no ranking by similarity or amount closeness is applied.
func (m *Matcher) findFuzzy(arena *purchaseArena, refund transaction.Transaction, refName string, refundTime time.Time, window time.Duration) int {
	for i := range arena.records {
		if arena.dropped[i] {
			continue
		}
		p := &arena.records[i]
		if !sameDirection(refund.AmountCents, p.AmountCents) {
			continue
		}
		if similarity.Jaccard(arena.names[i], refName) < m.config.SimilarityThreshold {
			continue
		}
		if inWindow(p.Time(), refundTime, window) {
			return i
		}
	}
	return -1
}

// resolve applies a matched refund to the purchase at idx, logging every
// removal or adjustment.
func (m *Matcher) resolve(arena *purchaseArena, idx int, refund transaction.Transaction, result *Result) {
	match := &arena.records[idx]

	m.logger.Debug("matched refund to purchase",
		"refund", refund.Description,
		"purchase", match.Description,
		"purchase_date", match.DateString(),
		"purchase_amount_cents", match.AmountCents,
	)

	if refund.Magnitude() >= match.Magnitude() {
		// Refund fully covers the purchase: both leave the final set.
		result.Removed = append(result.Removed,
			Disposition{Transaction: refund, Reason: ReasonFullRefund},
			Disposition{Transaction: *match, Reason: ReasonFullyRefunded},
		)
		arena.dropped[idx] = true
		result.FullMatches++
		return
	}

	// Partial refund: shrink the purchase's remaining balance toward zero,
	// keeping its native sign.
	if match.AmountCents < 0 {
		match.AmountCents += refund.Magnitude()
	} else {
		match.AmountCents -= refund.Magnitude()
	}
	result.Removed = append(result.Removed, Disposition{Transaction: refund, Reason: ReasonPartialRefund})
	result.PartialMatches++

	if match.AmountCents == 0 {
		result.Removed = append(result.Removed, Disposition{Transaction: *match, Reason: ReasonRefundedByParts})
		arena.dropped[idx] = true
	}
}

// inWindow reports whether purchaseTime is strictly before refundTime and no
// more than window behind it (inclusive upper bound).
func inWindow(purchaseTime, refundTime time.Time, window time.Duration) bool {
	if !purchaseTime.Before(refundTime) {
		return false
	}
	return refundTime.Sub(purchaseTime) <= window
}

func sameDirection(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	return (a > 0) == (b > 0)
}
