// Package transaction defines the transaction record shared by the ledger
// filter, the refund matcher, and the CSV exporters.
//
// Both purchases and refunds are represented by the same record; Category
// discriminates the role. Amounts are signed integer cents: positive is money
// in, negative is money out. The matcher compares magnitudes only and keeps
// each record's native sign.
package transaction

import "time"

// Category tags the operational role of a transaction.
type Category string

const (
	CategoryPurchase          Category = "PURCHASE"
	CategoryRefund            Category = "REFUND"
	CategoryPayment           Category = "PAYMENT"
	CategoryRewardsCashOut    Category = "REWARDS_ACCOUNT_CASH_OUT"
	CategoryInterestEarned    Category = "INTEREST_EARNED"
	CategoryDisputeCompleted  Category = "DISPUTE_COMPLETED"
	CategoryDisputeInProgress Category = "DISPUTE_IN_PROGRESS"
	CategoryInProgress        Category = "IN_PROGRESS"
)

// Status is the authorization status reported by the card network.
type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
)

// Transaction is a single ledger entry as returned by the Neo API.
// Records are read-only inputs; only the matcher adjusts AmountCents, and only
// on its own working copy of a purchase when a partial refund is applied.
type Transaction struct {
	Description              string   `json:"description"`
	Category                 Category `json:"category"`
	AmountCents              int64    `json:"amountCents"`
	AuthorizationProcessedAt string   `json:"authorizationProcessedAt"`
	Status                   Status   `json:"status"`
}

// Time parses the authorization timestamp. The ingest layer guarantees
// RFC 3339 timestamps; a malformed value yields the zero time.
func (t Transaction) Time() time.Time {
	ts, _ := time.Parse(time.RFC3339, t.AuthorizationProcessedAt)
	return ts
}

// DateString returns the date portion of the authorization timestamp,
// e.g. "2024-03-01".
func (t Transaction) DateString() string {
	if len(t.AuthorizationProcessedAt) >= 10 {
		return t.AuthorizationProcessedAt[:10]
	}
	return t.AuthorizationProcessedAt
}

// Magnitude returns the absolute amount in cents.
func (t Transaction) Magnitude() int64 {
	if t.AmountCents < 0 {
		return -t.AmountCents
	}
	return t.AmountCents
}
