package core

import "sync"

// Snapshot is a deep copy of every collection, shaped exactly as the
// persisted document: one field per named collection.
type Snapshot struct {
	Transactions    []Transaction    `json:"transactions"`
	Inventory       []InventoryItem  `json:"inventory"`
	SalesReturns    []SalesReturn    `json:"salesReturns"`
	PurchaseReturns []PurchaseReturn `json:"purchaseReturns"`
	Purchases       []Purchase       `json:"purchases"`
	PurchaseOrders  []PurchaseOrder  `json:"purchaseOrders"`
	Distributors    []Account        `json:"distributors"`
	Customers       []Account        `json:"customers"`
}

// Repository is the explicit, injectable in-memory session state: a
// struct of typed collections owned by the EventProcessor. All mutation
// happens synchronously under one lock (single-writer model); UI layers
// subscribe to change notifications rather than owning the state.
type Repository struct {
	mu sync.RWMutex

	transactions    []Transaction
	inventory       []InventoryItem
	salesReturns    []SalesReturn
	purchaseReturns []PurchaseReturn
	purchases       []Purchase
	purchaseOrders  []PurchaseOrder
	distributors    []Account
	customers       []Account

	subscribers []func(Snapshot)
}

func NewRepository() *Repository {
	return &Repository{}
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Subscribers are invoked outside the repository lock.
func (r *Repository) Subscribe(fn func(Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// Snapshot returns a deep copy of all collections.
func (r *Repository) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Repository) snapshotLocked() Snapshot {
	return Snapshot{
		Transactions:    cloneTransactions(r.transactions),
		Inventory:       append([]InventoryItem(nil), r.inventory...),
		SalesReturns:    cloneSalesReturns(r.salesReturns),
		PurchaseReturns: clonePurchaseReturns(r.purchaseReturns),
		Purchases:       clonePurchases(r.purchases),
		PurchaseOrders:  clonePurchaseOrders(r.purchaseOrders),
		Distributors:    cloneAccounts(r.distributors),
		Customers:       cloneAccounts(r.customers),
	}
}

// Restore replaces every collection from a snapshot and recomputes each
// account's running balances, then notifies subscribers. Used at session
// load and backup import.
func (r *Repository) Restore(s Snapshot) {
	r.mu.Lock()
	r.transactions = cloneTransactions(s.Transactions)
	r.inventory = append([]InventoryItem(nil), s.Inventory...)
	r.salesReturns = cloneSalesReturns(s.SalesReturns)
	r.purchaseReturns = clonePurchaseReturns(s.PurchaseReturns)
	r.purchases = clonePurchases(s.Purchases)
	r.purchaseOrders = clonePurchaseOrders(s.PurchaseOrders)
	r.distributors = cloneAccounts(s.Distributors)
	r.customers = cloneAccounts(s.Customers)
	for i := range r.distributors {
		r.distributors[i].Ledger = Recalculate(r.distributors[i].Ledger)
	}
	for i := range r.customers {
		r.customers[i].Ledger = Recalculate(r.customers[i].Ledger)
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.publish(snap)
}

func (r *Repository) publish(snap Snapshot) {
	r.mu.RLock()
	subs := append([]func(Snapshot){}, r.subscribers...)
	r.mu.RUnlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// ── Read accessors (copies) ──────────────────────────────────────────────────

func (r *Repository) Inventory() []InventoryItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]InventoryItem(nil), r.inventory...)
}

func (r *Repository) Transactions() []Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneTransactions(r.transactions)
}

func (r *Repository) Purchases() []Purchase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clonePurchases(r.purchases)
}

func (r *Repository) SalesReturns() []SalesReturn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSalesReturns(r.salesReturns)
}

func (r *Repository) PurchaseReturns() []PurchaseReturn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clonePurchaseReturns(r.purchaseReturns)
}

func (r *Repository) PurchaseOrders() []PurchaseOrder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clonePurchaseOrders(r.purchaseOrders)
}

func (r *Repository) Customers() []Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAccounts(r.customers)
}

func (r *Repository) Distributors() []Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAccounts(r.distributors)
}

// ── Clone helpers ────────────────────────────────────────────────────────────

func cloneAccounts(in []Account) []Account {
	out := append([]Account(nil), in...)
	for i := range out {
		out[i].Ledger = append([]LedgerEntry(nil), out[i].Ledger...)
	}
	return out
}

func cloneTransactions(in []Transaction) []Transaction {
	out := append([]Transaction(nil), in...)
	for i := range out {
		out[i].Items = append([]SaleItem(nil), out[i].Items...)
	}
	return out
}

func clonePurchases(in []Purchase) []Purchase {
	out := append([]Purchase(nil), in...)
	for i := range out {
		out[i].Items = append([]IntakeLine(nil), out[i].Items...)
	}
	return out
}

func cloneSalesReturns(in []SalesReturn) []SalesReturn {
	out := append([]SalesReturn(nil), in...)
	for i := range out {
		out[i].Items = append([]ReturnItem(nil), out[i].Items...)
	}
	return out
}

func clonePurchaseReturns(in []PurchaseReturn) []PurchaseReturn {
	out := append([]PurchaseReturn(nil), in...)
	for i := range out {
		out[i].Items = append([]ReturnItem(nil), out[i].Items...)
	}
	return out
}

func clonePurchaseOrders(in []PurchaseOrder) []PurchaseOrder {
	out := append([]PurchaseOrder(nil), in...)
	for i := range out {
		out[i].Items = append([]POItem(nil), out[i].Items...)
	}
	return out
}
