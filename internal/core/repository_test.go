package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-ledger/internal/core"
)

func TestRepository_SnapshotIsDeepCopy(t *testing.T) {
	repo, proc := newProcessor()
	_, err := proc.OpenAccount(core.AccountOpeningEvent{
		Date: "2024-01-01", Kind: core.AccountCustomer, Name: "Asha Rao", OpeningAmount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	snap := repo.Snapshot()
	snap.Customers[0].Name = "mutated"
	snap.Customers[0].Ledger[0].Debit = decimal.NewFromInt(999)

	fresh := repo.Snapshot()
	assert.Equal(t, "Asha Rao", fresh.Customers[0].Name)
	assert.True(t, fresh.Customers[0].Ledger[0].Debit.Equal(decimal.NewFromInt(100)))
}

func TestRepository_RestoreRecomputesBalances(t *testing.T) {
	repo := core.NewRepository()

	// Persisted balances are stale on purpose; the ledger entries are
	// the source of truth.
	repo.Restore(core.Snapshot{
		Customers: []core.Account{{
			ID: "c1", Name: "Asha Rao",
			Ledger: []core.LedgerEntry{
				{Date: "2024-01-05", Type: core.EntrySale, Debit: decimal.NewFromInt(200)},
				{Date: "2024-01-01", Type: core.EntryOpeningBalance, Debit: decimal.NewFromInt(500)},
			},
		}},
	})

	ledger := repo.Customers()[0].Ledger
	require.Len(t, ledger, 2)
	assert.Equal(t, "2024-01-01", ledger[0].Date)
	assert.True(t, ledger[0].Balance.Equal(decimal.NewFromInt(500)))
	assert.True(t, ledger[1].Balance.Equal(decimal.NewFromInt(700)))
}

func TestRepository_RestoreNotifiesSubscribers(t *testing.T) {
	repo := core.NewRepository()
	calls := 0
	repo.Subscribe(func(core.Snapshot) { calls++ })

	repo.Restore(core.Snapshot{})
	assert.Equal(t, 1, calls)
}

func TestRepository_RoundTripThroughSnapshot(t *testing.T) {
	repo, proc := newProcessor()
	seedInventory(repo, proc, core.IntakeLine{Name: "Dolo", Batch: "D9", Quantity: 12})
	_, err := proc.RecordSale(core.SaleEvent{
		Date: "2024-02-01", CustomerName: "Asha Rao", CustomerPhone: "9998887770",
		Total: decimal.NewFromInt(60), AmountReceived: decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	restored := core.NewRepository()
	restored.Restore(repo.Snapshot())

	assert.Equal(t, repo.Snapshot(), restored.Snapshot())
}
