// Package export renders the reconciled transaction set and the disposition
// log into downloadable CSV payloads.
//
// Both renderers emit a UTF-8 byte-order mark so spreadsheet tools detect the
// encoding, quote every field, and separate records with newlines. The
// formatting deliberately bypasses encoding/csv, which cannot force quoting
// of every field or prepend a BOM.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/neoledger/neo-export-backend/internal/domain/matcher"
	"github.com/neoledger/neo-export-backend/internal/domain/transaction"
)

const bom = "\uFEFF"

// Artifact is one downloadable payload with its suggested filename.
type Artifact struct {
	Filename string
	Payload  []byte
}

// FinalFilename suggests a name for the cleaned-transaction export.
func FinalFilename(year int, now time.Time) string {
	return fmt.Sprintf("Neo_Transactions_%d_Filtered_%s.csv", year, now.Format("2006-01-02"))
}

// RemovedFilename suggests a name for the disposition-log export.
func RemovedFilename(now time.Time) string {
	return fmt.Sprintf("Removed_Transactions_%s.csv", now.Format("2006-01-02"))
}

// RenderFinal renders the cleaned transaction set. Negative amounts land in
// the Debit column, positive amounts in Credit, both formatted to two decimal
// places; a zero amount leaves both columns empty.
func RenderFinal(txs []transaction.Transaction) []byte {
	var b strings.Builder
	b.WriteString(bom)
	writeRow(&b, "Date", "Description", "Category", "Debit", "Credit", "Status")

	for _, tx := range txs {
		var debit, credit string
		if tx.AmountCents < 0 {
			debit = formatCents(-tx.AmountCents)
		} else if tx.AmountCents > 0 {
			credit = formatCents(tx.AmountCents)
		}
		writeRow(&b, tx.DateString(), tx.Description, string(tx.Category), debit, credit, string(tx.Status))
	}

	return []byte(b.String())
}

// RenderRemoved renders the disposition log with the signed amount in a
// single column. Returns nil when the log is empty: no artifact is produced.
func RenderRemoved(removed []matcher.Disposition) []byte {
	if len(removed) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(bom)
	writeRow(&b, "Date", "Description", "Category", "Amount", "Status", "Reason for Removal")

	for _, d := range removed {
		tx := d.Transaction
		writeRow(&b, tx.DateString(), tx.Description, string(tx.Category), formatSignedCents(tx.AmountCents), string(tx.Status), d.Reason)
	}

	return []byte(b.String())
}

func writeRow(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// formatCents renders a non-negative cent amount as dollars with two decimal
// places, e.g. 5000 -> "50.00".
func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// formatSignedCents keeps the sign, e.g. -5000 -> "-50.00".
func formatSignedCents(cents int64) string {
	if cents < 0 {
		return "-" + formatCents(-cents)
	}
	return formatCents(cents)
}
