package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Recalculate returns the entries annotated with a running balance.
//
// Entries are sorted ascending by date; ISO dates compare correctly as
// strings. The sort is stable, so entries sharing a date keep their
// insertion order — that is the documented tie-break. Walking in order:
//
//   - openingBalance entries reset the running balance to debit−credit.
//     They do not accumulate onto prior state, so a well-formed ledger
//     has at most one, chronologically first.
//   - every other type accumulates debit−credit.
//
// Malformed input (an out-of-place openingBalance, duplicate dates) is
// not rejected; the output is whatever the rule above produces. The
// function is pure and idempotent over its input set.
func Recalculate(entries []LedgerEntry) []LedgerEntry {
	out := make([]LedgerEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})

	running := decimal.Zero
	for i := range out {
		if out[i].Type == EntryOpeningBalance {
			running = out[i].Debit.Sub(out[i].Credit)
		} else {
			running = running.Add(out[i].Debit).Sub(out[i].Credit)
		}
		out[i].Balance = running
	}
	return out
}
