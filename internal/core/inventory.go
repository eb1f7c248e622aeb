package core

import "github.com/google/uuid"

// DefaultMinStockLimit applies when a purchase line synthesizes a new
// inventory record without supplying its own reorder threshold.
const DefaultMinStockLimit = 10

// StockDelta is a signed stock mutation against a known inventory item.
type StockDelta struct {
	ItemID   string
	Quantity int // loose units; negative deducts
}

// ApplyDeltas applies signed stock deltas matched by item identity and
// returns the full updated collection (replace semantics).
//
// Deltas whose ItemID matches no item are silently dropped: manually
// entered bill lines carry no inventory link and are tolerated, not an
// error. Nothing prevents stock from going negative — that is a
// UI-layer concern.
func ApplyDeltas(items []InventoryItem, deltas []StockDelta) []InventoryItem {
	out := make([]InventoryItem, len(items))
	copy(out, items)

	index := make(map[string]int, len(out))
	for i, it := range out {
		index[it.ID] = i
	}

	for _, d := range deltas {
		i, ok := index[d.ItemID]
		if !ok {
			continue
		}
		out[i].Stock += d.Quantity
	}
	return out
}

// ApplyIntake applies purchase/bulk-intake lines matched by the
// normalized name+batch key and returns the full updated collection.
//
// On a match, stock is incremented and purchasePrice, mrp and expiry are
// overwritten with the incoming values (latest purchase wins). On no
// match, a new inventory record is synthesized with a generated identity
// and DefaultMinStockLimit unless the line supplies its own.
func ApplyIntake(items []InventoryItem, lines []IntakeLine) []InventoryItem {
	out := make([]InventoryItem, len(items))
	copy(out, items)

	index := make(map[string]int, len(out))
	for i, it := range out {
		index[it.StockKey()] = i
	}

	for _, ln := range lines {
		key := StockKey(ln.Name, ln.Batch)
		if i, ok := index[key]; ok {
			out[i].Stock += ln.Quantity
			out[i].PurchasePrice = ln.PurchasePrice
			out[i].MRP = ln.MRP
			out[i].Expiry = ln.Expiry
			continue
		}

		minLimit := ln.MinStockLimit
		if minLimit == 0 {
			minLimit = DefaultMinStockLimit
		}
		unitsPerPack := ln.UnitsPerPack
		if unitsPerPack == 0 {
			unitsPerPack = 1
		}
		out = append(out, InventoryItem{
			ID:            uuid.NewString(),
			Name:          ln.Name,
			Batch:         ln.Batch,
			Stock:         ln.Quantity,
			UnitsPerPack:  unitsPerPack,
			MinStockLimit: minLimit,
			PurchasePrice: ln.PurchasePrice,
			MRP:           ln.MRP,
			GSTPercent:    ln.GSTPercent,
			Expiry:        ln.Expiry,
			HSNCode:       ln.HSNCode,
		})
		index[key] = len(out) - 1
	}
	return out
}
