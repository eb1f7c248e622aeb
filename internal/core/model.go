package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryOpeningBalance EntryType = "openingBalance"
	EntrySale           EntryType = "sale"
	EntryPurchase       EntryType = "purchase"
	EntryPayment        EntryType = "payment"
	EntryReturn         EntryType = "return"
)

// LedgerEntry is one dated debit/credit record against an account.
// Balance is derived: it is recomputed by Recalculate whenever the
// entry set changes and is never authoritative input.
type LedgerEntry struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"` // YYYY-MM-DD
	Type        EntryType       `json:"type"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// AccountKind distinguishes the two counterparty ledgers.
type AccountKind string

const (
	AccountCustomer    AccountKind = "customer"
	AccountDistributor AccountKind = "distributor"
)

// WalkInCustomerName is the placeholder used by the billing screen for
// anonymous counter sales. A walk-in with no phone number is never
// persisted as an account.
const WalkInCustomerName = "Walk-in Customer"

// Account is a customer or distributor counterparty. The ledger is the
// sole source of truth for its balance; the current balance is the
// Balance of the chronologically last entry.
type Account struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Phone   string        `json:"phone,omitempty"`
	Address string        `json:"address,omitempty"`
	GSTIN   string        `json:"gstin,omitempty"`
	Ledger  []LedgerEntry `json:"ledger"`
}

// Balance returns the running balance after the chronologically last
// entry, or zero for an empty ledger.
func (a Account) Balance() decimal.Decimal {
	if len(a.Ledger) == 0 {
		return decimal.Zero
	}
	return a.Ledger[len(a.Ledger)-1].Balance
}

// InventoryItem is one stocked product batch. Stock is always expressed
// in loose units (e.g. single tablets); prices are per pack.
type InventoryItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Batch         string          `json:"batch"`
	Stock         int             `json:"stock"`
	UnitsPerPack  int             `json:"unitsPerPack"`
	MinStockLimit int             `json:"minStockLimit"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	MRP           decimal.Decimal `json:"mrp"`
	GSTPercent    decimal.Decimal `json:"gstPercent"`
	Expiry        string          `json:"expiry"`
	HSNCode       string          `json:"hsnCode,omitempty"`
}

// StockKey returns the item's normalized natural key.
func (it InventoryItem) StockKey() string {
	return StockKey(it.Name, it.Batch)
}

// StockKey builds the normalized name+batch natural key used to match
// purchase lines against existing inventory.
func StockKey(name, batch string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "-" + strings.ToLower(strings.TrimSpace(batch))
}

// SaleItem is one billed line on a sales transaction. ItemID links back
// to inventory; manually entered lines may carry no link.
type SaleItem struct {
	ItemID     string          `json:"itemId,omitempty"`
	Name       string          `json:"name"`
	Batch      string          `json:"batch,omitempty"`
	Quantity   int             `json:"quantity"` // loose units
	Price      decimal.Decimal `json:"price"`    // per loose unit, GST inclusive
	GSTPercent decimal.Decimal `json:"gstPercent"`
}

// Transaction is the header record for one sale.
type Transaction struct {
	ID             string          `json:"id"`
	Date           string          `json:"date"`
	CustomerID     string          `json:"customerId,omitempty"`
	CustomerName   string          `json:"customerName"`
	Items          []SaleItem      `json:"items"`
	Total          decimal.Decimal `json:"total"`
	AmountReceived decimal.Decimal `json:"amountReceived"`
	PaymentMode    string          `json:"paymentMode,omitempty"`
}

// IntakeLine is the shape every bulk-intake producer (purchase entry
// form, CSV importer, AI bill extractor) must supply. The core performs
// no parsing of raw documents.
type IntakeLine struct {
	Name          string          `json:"name"`
	Batch         string          `json:"batch"`
	Expiry        string          `json:"expiry"`
	Quantity      int             `json:"quantity"` // loose units
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	MRP           decimal.Decimal `json:"mrp"`
	GSTPercent    decimal.Decimal `json:"gstPercent"`
	HSNCode       string          `json:"hsnCode,omitempty"`
	UnitsPerPack  int             `json:"unitsPerPack,omitempty"`
	MinStockLimit int             `json:"minStockLimit,omitempty"`
}

// Purchase is the header record for one supplier bill.
type Purchase struct {
	ID              string          `json:"id"`
	Date            string          `json:"date"`
	DistributorID   string          `json:"distributorId,omitempty"`
	SupplierName    string          `json:"supplierName"`
	InvoiceNumber   string          `json:"invoiceNumber,omitempty"`
	Items           []IntakeLine    `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PurchaseOrderID string          `json:"purchaseOrderId,omitempty"`
}

// ReturnItem is one returned line, priced at the value being refunded.
type ReturnItem struct {
	ItemID   string          `json:"itemId,omitempty"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"` // loose units
	Price    decimal.Decimal `json:"price"`
}

// SalesReturn is the header record for goods coming back from a customer.
type SalesReturn struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"`
	CustomerID   string          `json:"customerId,omitempty"`
	CustomerName string          `json:"customerName"`
	Items        []ReturnItem    `json:"items"`
	TotalRefund  decimal.Decimal `json:"totalRefund"`
	Reason       string          `json:"reason,omitempty"`
}

// PurchaseReturn is the header record for goods sent back to a supplier.
type PurchaseReturn struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	DistributorID string          `json:"distributorId,omitempty"`
	SupplierName  string          `json:"supplierName"`
	Items         []ReturnItem    `json:"items"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	Reason        string          `json:"reason,omitempty"`
}

// POStatus is the purchase order lifecycle state.
type POStatus string

const (
	POStatusDraft   POStatus = "draft"
	POStatusOrdered POStatus = "ordered"
	// POStatusPartiallyReceived is a declared state with no transition
	// producing it anywhere in the system.
	POStatusPartiallyReceived POStatus = "partially_received"
	POStatusReceived          POStatus = "received"
)

// POItem is one requested line on a purchase order.
type POItem struct {
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
}

// PurchaseOrder is a pre-commitment to buy, later fulfilled by a
// recorded Purchase that references its ID.
type PurchaseOrder struct {
	ID            string   `json:"id"`
	Date          string   `json:"date"`
	DistributorID string   `json:"distributorId,omitempty"`
	SupplierName  string   `json:"supplierName"`
	Status        POStatus `json:"status"`
	Items         []POItem `json:"items"`
}
