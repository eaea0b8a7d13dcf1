// Package report derives read-only views over the transaction ledger:
// completed-trip projections, aggregate totals, CSV export and the printable
// weighing ticket.
package report

import (
	"strings"

	"github.com/example/weighbridge/internal/model"
)

// Summary aggregates a filtered set of completed transactions.
type Summary struct {
	Count    int   `json:"count"`
	TotalNet int64 `json:"totalNet"`
}

// Filter returns the completed transactions of one direction whose plate or
// driver contains the query substring. Matching is case-normalized to follow
// the uppercase-on-input convention.
func Filter(txs []model.Transaction, direction model.Direction, query string) []model.Transaction {
	query = strings.ToUpper(strings.TrimSpace(query))

	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Status != model.StatusCompleted || tx.Direction != direction {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToUpper(tx.PlateNumber), query) &&
			!strings.Contains(strings.ToUpper(tx.DriverName), query) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Summarize counts transactions and sums their net weight.
func Summarize(txs []model.Transaction) Summary {
	s := Summary{Count: len(txs)}
	for _, tx := range txs {
		s.TotalNet += tx.NetWeight
	}
	return s
}
