// Package gateway is the durable mirror of the in-memory session state.
//
// The core never talks to storage directly: the application layer hands
// whole collections to a Gateway after in-memory mutation completes.
// Writes are replace, not merge, and a failed write never unwinds the
// already-applied in-memory state.
package gateway

import (
	"context"
	"encoding/json"
)

// Collection names. Each holds one whole JSON-encoded collection per
// identity; two users never see each other's aggregates.
const (
	CollectionTransactions    = "transactions"
	CollectionInventory       = "inventory"
	CollectionSalesReturns    = "salesReturns"
	CollectionPurchaseReturns = "purchaseReturns"
	CollectionPurchases       = "purchases"
	CollectionPurchaseOrders  = "purchaseOrders"
	CollectionDistributors    = "distributors"
	CollectionCustomers       = "customers"
)

// Collections lists every known collection in persistence order.
var Collections = []string{
	CollectionTransactions,
	CollectionInventory,
	CollectionSalesReturns,
	CollectionPurchaseReturns,
	CollectionPurchases,
	CollectionPurchaseOrders,
	CollectionDistributors,
	CollectionCustomers,
}

// Document is the full-backup serialization of all collections.
type Document struct {
	Collections map[string]json.RawMessage `json:"collections"`
}

// Gateway is durable storage keyed by logical collection name,
// namespaced to one identity.
type Gateway interface {
	// Get decodes the named collection into out. If the collection is
	// absent, out is left untouched (the caller's default stands).
	Get(ctx context.Context, collection string, out any) error

	// Save replaces the stored value for a collection wholesale.
	Save(ctx context.Context, collection string, value any) error

	// ExportSnapshot serializes all stored collections into one document.
	ExportSnapshot(ctx context.Context) (*Document, error)

	// ImportSnapshot replaces all stored collections from a document.
	ImportSnapshot(ctx context.Context, doc *Document) error
}

// Factory builds a Gateway bound to one identity's namespace.
type Factory func(userID string) Gateway
