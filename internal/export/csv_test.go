package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoledger/neo-export-backend/internal/domain/matcher"
	"github.com/neoledger/neo-export-backend/internal/domain/transaction"
)

func TestRenderFinal_DebitCreditSplit(t *testing.T) {
	txs := []transaction.Transaction{
		{
			Description:              "ACME STORE",
			Category:                 transaction.CategoryPurchase,
			AmountCents:              -5000,
			AuthorizationProcessedAt: "2024-03-01T10:00:00Z",
			Status:                   transaction.StatusApproved,
		},
		{
			Description:              "ACME STORE",
			Category:                 transaction.CategoryRefund,
			AmountCents:              1234,
			AuthorizationProcessedAt: "2024-03-05T10:00:00Z",
			Status:                   transaction.StatusApproved,
		},
	}

	payload := string(RenderFinal(txs))

	assert.True(t, strings.HasPrefix(payload, "\uFEFF"), "payload must start with a BOM")

	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(payload, "\uFEFF"), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"Date","Description","Category","Debit","Credit","Status"`, lines[0])
	assert.Equal(t, `"2024-03-01","ACME STORE","PURCHASE","50.00","","APPROVED"`, lines[1])
	assert.Equal(t, `"2024-03-05","ACME STORE","REFUND","","12.34","APPROVED"`, lines[2])
}

func TestRenderFinal_ZeroAmountLeavesBothEmpty(t *testing.T) {
	txs := []transaction.Transaction{
		{
			Description:              "VOID",
			Category:                 transaction.CategoryPurchase,
			AmountCents:              0,
			AuthorizationProcessedAt: "2024-03-01T10:00:00Z",
			Status:                   transaction.StatusApproved,
		},
	}

	payload := string(RenderFinal(txs))
	assert.Contains(t, payload, `"2024-03-01","VOID","PURCHASE","","","APPROVED"`)
}

func TestRenderFinal_DebitCreditMutuallyExclusive(t *testing.T) {
	txs := []transaction.Transaction{
		{Description: "a", AmountCents: -199, AuthorizationProcessedAt: "2024-01-01T00:00:00Z"},
		{Description: "b", AmountCents: 5, AuthorizationProcessedAt: "2024-01-02T00:00:00Z"},
		{Description: "c", AmountCents: -100000, AuthorizationProcessedAt: "2024-01-03T00:00:00Z"},
	}

	payload := strings.TrimPrefix(string(RenderFinal(txs)), "\uFEFF")
	lines := strings.Split(strings.TrimSuffix(payload, "\n"), "\n")
	require.Len(t, lines, 4)

	for _, line := range lines[1:] {
		fields := strings.Split(line, `","`)
		require.Len(t, fields, 6)
		debit, credit := fields[3], fields[4]
		assert.False(t, debit != "" && credit != "", "row %q has both debit and credit", line)
		assert.False(t, debit == "" && credit == "", "row %q has neither debit nor credit", line)
	}
}

func TestRenderFinal_QuotesEmbeddedQuotes(t *testing.T) {
	txs := []transaction.Transaction{
		{Description: `JOE'S "DINER"`, AmountCents: -100, AuthorizationProcessedAt: "2024-01-01T00:00:00Z"},
	}

	payload := string(RenderFinal(txs))
	assert.Contains(t, payload, `"JOE'S ""DINER"""`)
}

func TestRenderRemoved_SignedAmountAndReason(t *testing.T) {
	removed := []matcher.Disposition{
		{
			Transaction: transaction.Transaction{
				Description:              "ACME STORE",
				Category:                 transaction.CategoryPurchase,
				AmountCents:              -5000,
				AuthorizationProcessedAt: "2024-03-01T10:00:00Z",
				Status:                   transaction.StatusApproved,
			},
			Reason: matcher.ReasonFullyRefunded,
		},
	}

	payload := string(RenderRemoved(removed))

	assert.True(t, strings.HasPrefix(payload, "\uFEFF"))
	assert.Contains(t, payload, `"Date","Description","Category","Amount","Status","Reason for Removal"`)
	assert.Contains(t, payload, `"2024-03-01","ACME STORE","PURCHASE","-50.00","APPROVED","Fully refunded purchase"`)
}

func TestRenderRemoved_EmptyLogProducesNothing(t *testing.T) {
	assert.Nil(t, RenderRemoved(nil))
	assert.Nil(t, RenderRemoved([]matcher.Disposition{}))
}

func TestFilenames(t *testing.T) {
	now := time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "Neo_Transactions_2024_Filtered_2025-02-14.csv", FinalFilename(2024, now))
	assert.Equal(t, "Removed_Transactions_2025-02-14.csv", RemovedFilename(now))
}
