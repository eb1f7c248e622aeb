package gateway_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-ledger/internal/core"
	"pharmacy-ledger/internal/gateway"
)

func TestMemory_GetAbsentLeavesDefault(t *testing.T) {
	g := gateway.NewMemory()

	items := []core.InventoryItem{{ID: "default"}}
	require.NoError(t, g.Get(context.Background(), gateway.CollectionInventory, &items))
	assert.Equal(t, "default", items[0].ID, "absent collection must leave the default untouched")
}

func TestMemory_SaveReplacesWholesale(t *testing.T) {
	g := gateway.NewMemory()
	ctx := context.Background()

	require.NoError(t, g.Save(ctx, gateway.CollectionInventory, []core.InventoryItem{{ID: "a"}, {ID: "b"}}))
	require.NoError(t, g.Save(ctx, gateway.CollectionInventory, []core.InventoryItem{{ID: "c"}}))

	var items []core.InventoryItem
	require.NoError(t, g.Get(ctx, gateway.CollectionInventory, &items))
	require.Len(t, items, 1, "save is replace, not merge")
	assert.Equal(t, "c", items[0].ID)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := gateway.NewMemory()

	require.NoError(t, src.Save(ctx, gateway.CollectionInventory, []core.InventoryItem{{
		ID: "a", Name: "Paracetamol", Batch: "B1", Stock: 10,
		PurchasePrice: decimal.RequireFromString("18.50"),
	}}))
	require.NoError(t, src.Save(ctx, gateway.CollectionCustomers, []core.Account{{
		ID: "c1", Name: "Asha Rao",
		Ledger: []core.LedgerEntry{{
			ID: "l1", Date: "2024-01-01", Type: core.EntryOpeningBalance,
			Debit: decimal.NewFromInt(500), Balance: decimal.NewFromInt(500),
		}},
	}}))

	doc, err := src.ExportSnapshot(ctx)
	require.NoError(t, err)

	dst := gateway.NewMemory()
	require.NoError(t, dst.ImportSnapshot(ctx, doc))

	roundTripped, err := dst.ExportSnapshot(ctx)
	require.NoError(t, err)

	require.Len(t, roundTripped.Collections, 2)
	for name, data := range doc.Collections {
		assert.JSONEq(t, string(data), string(roundTripped.Collections[name]), "collection %s", name)
	}
}

func TestImportSnapshot_ReplacesEverything(t *testing.T) {
	ctx := context.Background()
	g := gateway.NewMemory()
	require.NoError(t, g.Save(ctx, gateway.CollectionTransactions, []core.Transaction{{ID: "INV-0001"}}))

	require.NoError(t, g.ImportSnapshot(ctx, &gateway.Document{}))

	var txns []core.Transaction
	require.NoError(t, g.Get(ctx, gateway.CollectionTransactions, &txns))
	assert.Empty(t, txns, "import replaces all collections, including ones absent from the document")
}
