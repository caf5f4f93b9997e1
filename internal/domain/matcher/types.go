package matcher

import "github.com/neoledger/neo-export-backend/internal/domain/transaction"

// Config holds matcher tuning parameters.
type Config struct {
	// TimeTiers are the search windows in days, smallest first. A refund
	// only looks at a wider tier when every narrower tier came up empty.
	TimeTiers []int

	// SimilarityThreshold is the minimum Jaccard score for a fuzzy name
	// match. Default: 0.75.
	SimilarityThreshold float64

	// AnomalyMultiplier rejects a refund whose magnitude exceeds this
	// multiple of the largest same-merchant purchase. Default: 2.5.
	AnomalyMultiplier float64
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		TimeTiers:           []int{1, 2, 7, 15, 30, 45},
		SimilarityThreshold: 0.75,
		AnomalyMultiplier:   2.5,
	}
}

// Disposition reasons recorded in the removed-transaction log.
const (
	ReasonRefundTooLarge  = "Refund too large compared to past purchases"
	ReasonFullRefund      = "Full refund match"
	ReasonFullyRefunded   = "Fully refunded purchase"
	ReasonPartialRefund   = "Partial refund applied"
	ReasonRefundedByParts = "Fully refunded purchase after adjustment"
)

// Disposition is an append-only audit entry: a copy of a transaction the
// matcher removed, adjusted, or rejected, plus the reason. Never mutated
// after creation; consumed only by the disposition exporter.
type Disposition struct {
	Transaction transaction.Transaction
	Reason      string
}

// Result is the output of one reconciliation run.
type Result struct {
	// Final is the cleaned transaction set: surviving purchases (partially
	// refunded ones at their remaining balance) followed by unmatched
	// refunds in their input order.
	Final []transaction.Transaction

	// Removed is the disposition log for every record the run altered or
	// rejected. Unmatched refunds that simply passed through are not
	// logged.
	Removed []Disposition

	// Counters for run reporting.
	FullMatches    int
	PartialMatches int
	Anomalies      int
	Unmatched      int
}
