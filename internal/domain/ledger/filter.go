// Package ledger pre-filters the raw transaction list before refund matching
// runs. The filter keeps a transaction iff its authorization date falls
// inside the configured window, its status is not declined, and its category
// is not in the exclusion set. It runs once and preserves input order.
package ledger

import (
	"time"

	"github.com/neoledger/neo-export-backend/internal/domain/transaction"
)

// DefaultExcludedCategories lists the non-reconcilable operational categories
// dropped before matching.
var DefaultExcludedCategories = []transaction.Category{
	transaction.CategoryPayment,
	transaction.CategoryRewardsCashOut,
	transaction.CategoryInterestEarned,
	transaction.CategoryDisputeCompleted,
	transaction.CategoryDisputeInProgress,
	transaction.CategoryInProgress,
}

// FilterConfig bounds the filter window and category exclusions.
type FilterConfig struct {
	Start              time.Time // inclusive
	End                time.Time // exclusive
	ExcludedCategories []transaction.Category
}

// YearConfig returns a FilterConfig covering a full calendar year (UTC) with
// the default category exclusions.
func YearConfig(year int) FilterConfig {
	return FilterConfig{
		Start:              time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:                time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
		ExcludedCategories: DefaultExcludedCategories,
	}
}

// Filter returns the order-preserving subsequence of txs that survives the
// date window, status, and category checks.
func Filter(txs []transaction.Transaction, cfg FilterConfig) []transaction.Transaction {
	excluded := make(map[transaction.Category]bool, len(cfg.ExcludedCategories))
	for _, cat := range cfg.ExcludedCategories {
		excluded[cat] = true
	}

	kept := make([]transaction.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Status == transaction.StatusDeclined {
			continue
		}
		if excluded[tx.Category] {
			continue
		}
		ts := tx.Time()
		if ts.Before(cfg.Start) || !ts.Before(cfg.End) {
			continue
		}
		kept = append(kept, tx)
	}

	return kept
}
