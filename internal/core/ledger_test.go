package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"pharmacy-ledger/internal/core"
)

func entry(date string, typ core.EntryType, debit, credit int64) core.LedgerEntry {
	return core.LedgerEntry{
		Date:   date,
		Type:   typ,
		Debit:  decimal.NewFromInt(debit),
		Credit: decimal.NewFromInt(credit),
	}
}

func TestRecalculate_OpeningThenActivity(t *testing.T) {
	entries := []core.LedgerEntry{
		entry("2024-01-01", core.EntryOpeningBalance, 500, 0),
		entry("2024-01-05", core.EntrySale, 200, 0),
		entry("2024-01-10", core.EntryPayment, 0, 300),
	}

	out := core.Recalculate(entries)

	want := []int64{500, 700, 400}
	for i, w := range want {
		if !out[i].Balance.Equal(decimal.NewFromInt(w)) {
			t.Errorf("entry %d: balance = %s, want %d", i, out[i].Balance, w)
		}
	}
}

func TestRecalculate_RunningBalanceLaw(t *testing.T) {
	entries := []core.LedgerEntry{
		entry("2024-02-03", core.EntrySale, 1200, 0),
		entry("2024-02-01", core.EntrySale, 350, 0),
		entry("2024-02-10", core.EntryPayment, 0, 800),
		entry("2024-02-15", core.EntryReturn, 0, 150),
		entry("2024-02-20", core.EntrySale, 90, 0),
	}

	out := core.Recalculate(entries)

	if !out[0].Balance.Equal(out[0].Debit.Sub(out[0].Credit)) {
		t.Errorf("first balance = %s, want debit-credit %s", out[0].Balance, out[0].Debit.Sub(out[0].Credit))
	}
	for i := 1; i < len(out); i++ {
		want := out[i-1].Balance.Add(out[i].Debit).Sub(out[i].Credit)
		if !out[i].Balance.Equal(want) {
			t.Errorf("entry %d: balance = %s, want %s", i, out[i].Balance, want)
		}
	}
}

func TestRecalculate_SortsByDate(t *testing.T) {
	entries := []core.LedgerEntry{
		entry("2024-03-20", core.EntryPayment, 0, 100),
		entry("2024-03-01", core.EntrySale, 400, 0),
	}

	out := core.Recalculate(entries)

	if out[0].Date != "2024-03-01" || out[1].Date != "2024-03-20" {
		t.Fatalf("entries not sorted by date: %s, %s", out[0].Date, out[1].Date)
	}
	if !out[1].Balance.Equal(decimal.NewFromInt(300)) {
		t.Errorf("final balance = %s, want 300", out[1].Balance)
	}
}

// An opening-balance entry resets the running balance wherever it lands,
// even out of place. That is the documented behavior, not a defect.
func TestRecalculate_OpeningBalanceResetsMidLedger(t *testing.T) {
	entries := []core.LedgerEntry{
		entry("2024-01-01", core.EntrySale, 250, 0),
		entry("2024-01-15", core.EntryOpeningBalance, 1000, 0),
		entry("2024-01-20", core.EntryPayment, 0, 400),
	}

	out := core.Recalculate(entries)

	if !out[1].Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("opening entry balance = %s, want 1000 (reset, not 1250)", out[1].Balance)
	}
	if !out[2].Balance.Equal(decimal.NewFromInt(600)) {
		t.Errorf("final balance = %s, want 600", out[2].Balance)
	}
}

// Entries sharing a date keep insertion order: the sort is stable.
func TestRecalculate_EqualDateKeepsInsertionOrder(t *testing.T) {
	entries := []core.LedgerEntry{
		entry("2024-04-05", core.EntrySale, 100, 0),
		entry("2024-04-05", core.EntryPayment, 0, 100),
	}

	out := core.Recalculate(entries)

	if out[0].Type != core.EntrySale || out[1].Type != core.EntryPayment {
		t.Fatalf("equal-date entries reordered: %s, %s", out[0].Type, out[1].Type)
	}
	if !out[1].Balance.IsZero() {
		t.Errorf("final balance = %s, want 0", out[1].Balance)
	}
}

func TestRecalculate_Idempotent(t *testing.T) {
	entries := []core.LedgerEntry{
		entry("2024-05-09", core.EntryPayment, 0, 50),
		entry("2024-05-01", core.EntryOpeningBalance, 300, 0),
		entry("2024-05-09", core.EntrySale, 75, 0),
	}

	first := core.Recalculate(entries)
	second := core.Recalculate(entries)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Date != second[i].Date || first[i].Type != second[i].Type || !first[i].Balance.Equal(second[i].Balance) {
			t.Errorf("entry %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRecalculate_DoesNotMutateInput(t *testing.T) {
	entries := []core.LedgerEntry{
		entry("2024-06-10", core.EntrySale, 20, 0),
		entry("2024-06-01", core.EntrySale, 10, 0),
	}

	_ = core.Recalculate(entries)

	if entries[0].Date != "2024-06-10" {
		t.Error("input slice was reordered")
	}
	if !entries[0].Balance.IsZero() {
		t.Error("input entry balance was written")
	}
}

func TestRecalculate_Empty(t *testing.T) {
	if out := core.Recalculate(nil); len(out) != 0 {
		t.Errorf("expected empty output, got %d entries", len(out))
	}
}
