package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"pharmacy-ledger/internal/core"
)

func TestApplyDeltas(t *testing.T) {
	items := []core.InventoryItem{
		{ID: "a", Name: "Paracetamol", Batch: "B1", Stock: 10},
		{ID: "b", Name: "Cetirizine", Batch: "C7", Stock: 4},
	}

	tests := []struct {
		name      string
		deltas    []core.StockDelta
		wantStock map[string]int
	}{
		{
			name:      "sale decrements exactly",
			deltas:    []core.StockDelta{{ItemID: "a", Quantity: -3}},
			wantStock: map[string]int{"a": 7, "b": 4},
		},
		{
			name:      "return increments exactly",
			deltas:    []core.StockDelta{{ItemID: "b", Quantity: 5}},
			wantStock: map[string]int{"a": 10, "b": 9},
		},
		{
			name:      "negative stock is not rejected",
			deltas:    []core.StockDelta{{ItemID: "b", Quantity: -6}},
			wantStock: map[string]int{"a": 10, "b": -2},
		},
		{
			name:      "unmatched id silently dropped",
			deltas:    []core.StockDelta{{ItemID: "ghost", Quantity: -2}, {ItemID: "a", Quantity: -1}},
			wantStock: map[string]int{"a": 9, "b": 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := core.ApplyDeltas(items, tt.deltas)
			if len(out) != len(items) {
				t.Fatalf("collection length changed: %d", len(out))
			}
			for _, it := range out {
				if it.Stock != tt.wantStock[it.ID] {
					t.Errorf("item %s: stock = %d, want %d", it.ID, it.Stock, tt.wantStock[it.ID])
				}
			}
			// input untouched
			if items[0].Stock != 10 || items[1].Stock != 4 {
				t.Error("input collection mutated")
			}
		})
	}
}

func TestApplyIntake_MatchOverwritesLatestWins(t *testing.T) {
	items := []core.InventoryItem{{
		ID:            "a",
		Name:          "Paracetamol",
		Batch:         "B1",
		Stock:         10,
		PurchasePrice: decimal.NewFromInt(20),
		MRP:           decimal.NewFromInt(30),
		Expiry:        "2025-01-01",
	}}

	out := core.ApplyIntake(items, []core.IntakeLine{{
		Name:          "paracetamol", // case-insensitive match
		Batch:         "b1",
		Quantity:      5,
		PurchasePrice: decimal.NewFromInt(22),
		MRP:           decimal.NewFromInt(33),
		Expiry:        "2026-06-30",
	}})

	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	got := out[0]
	if got.Stock != 15 {
		t.Errorf("stock = %d, want 15", got.Stock)
	}
	if !got.PurchasePrice.Equal(decimal.NewFromInt(22)) || !got.MRP.Equal(decimal.NewFromInt(33)) || got.Expiry != "2026-06-30" {
		t.Errorf("purchasePrice/mrp/expiry not overwritten: %+v", got)
	}
	if got.ID != "a" {
		t.Errorf("identity changed on match: %s", got.ID)
	}
}

func TestApplyIntake_SynthesizesNewItem(t *testing.T) {
	out := core.ApplyIntake(nil, []core.IntakeLine{{
		Name:          "Amoxicillin",
		Batch:         "AX3",
		Expiry:        "2026-01-31",
		Quantity:      40,
		PurchasePrice: decimal.NewFromInt(55),
		MRP:           decimal.NewFromInt(80),
		GSTPercent:    decimal.NewFromInt(12),
		HSNCode:       "3004",
	}})

	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	got := out[0]
	if got.ID == "" {
		t.Error("new item has no generated identity")
	}
	if got.Stock != 40 {
		t.Errorf("stock = %d, want 40", got.Stock)
	}
	if got.MinStockLimit != core.DefaultMinStockLimit {
		t.Errorf("minStockLimit = %d, want default %d", got.MinStockLimit, core.DefaultMinStockLimit)
	}
	if got.UnitsPerPack != 1 {
		t.Errorf("unitsPerPack = %d, want 1", got.UnitsPerPack)
	}
}

func TestApplyIntake_SuppliedMinStockLimit(t *testing.T) {
	out := core.ApplyIntake(nil, []core.IntakeLine{{
		Name: "Insulin", Batch: "I1", Quantity: 6, MinStockLimit: 3,
	}})
	if out[0].MinStockLimit != 3 {
		t.Errorf("minStockLimit = %d, want supplied 3", out[0].MinStockLimit)
	}
}

func TestApplyIntake_SameLineTwiceAccumulates(t *testing.T) {
	line := core.IntakeLine{Name: "Dolo", Batch: "D9", Quantity: 10}
	out := core.ApplyIntake(nil, []core.IntakeLine{line, line})
	if len(out) != 1 {
		t.Fatalf("expected one record for repeated key, got %d", len(out))
	}
	if out[0].Stock != 20 {
		t.Errorf("stock = %d, want 20", out[0].Stock)
	}
}

func TestStockKey_Normalization(t *testing.T) {
	if core.StockKey(" Paracetamol ", "B1") != core.StockKey("paracetamol", "b1") {
		t.Error("stock key is not case/whitespace insensitive")
	}
}
