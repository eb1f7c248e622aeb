package core

import "github.com/shopspring/decimal"

// Events are admitted after the UI layer has done field-level input
// validation; the processor applies them without re-validating fields.

// SaleEvent records a counter or credit sale.
type SaleEvent struct {
	Date           string          `json:"date"`
	CustomerName   string          `json:"customerName"`
	CustomerPhone  string          `json:"customerPhone,omitempty"`
	Items          []SaleItem      `json:"items"`
	Total          decimal.Decimal `json:"total"`
	AmountReceived decimal.Decimal `json:"amountReceived"`
	PaymentMode    string          `json:"paymentMode,omitempty"`
}

// PurchaseEvent records a supplier bill, including bulk intake lines
// produced by the CSV importer or the AI bill extractor.
type PurchaseEvent struct {
	Date            string          `json:"date"`
	SupplierName    string          `json:"supplierName"`
	SupplierGSTIN   string          `json:"supplierGstin,omitempty"`
	InvoiceNumber   string          `json:"invoiceNumber,omitempty"`
	Items           []IntakeLine    `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PurchaseOrderID string          `json:"purchaseOrderId,omitempty"`
}

// SalesReturnEvent records goods returned by a customer.
type SalesReturnEvent struct {
	Date          string          `json:"date"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Items         []ReturnItem    `json:"items"`
	TotalRefund   decimal.Decimal `json:"totalRefund"`
	Reason        string          `json:"reason,omitempty"`
}

// PurchaseReturnEvent records goods sent back to a supplier.
type PurchaseReturnEvent struct {
	Date          string          `json:"date"`
	SupplierName  string          `json:"supplierName"`
	SupplierGSTIN string          `json:"supplierGstin,omitempty"`
	Items         []ReturnItem    `json:"items"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	Reason        string          `json:"reason,omitempty"`
}

// PaymentEvent records money received from a customer or paid to a
// distributor against an existing account.
type PaymentEvent struct {
	Date        string          `json:"date"`
	Kind        AccountKind     `json:"kind"`
	AccountID   string          `json:"accountId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// AccountOpeningEvent declares a counterparty with an opening balance.
// A positive amount is money owed to the pharmacy (debit); a negative
// amount is money the pharmacy owes (credit).
type AccountOpeningEvent struct {
	Date          string          `json:"date"`
	Kind          AccountKind     `json:"kind"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone,omitempty"`
	Address       string          `json:"address,omitempty"`
	GSTIN         string          `json:"gstin,omitempty"`
	OpeningAmount decimal.Decimal `json:"openingAmount"`
}

// PurchaseOrderEvent drafts a new purchase order.
type PurchaseOrderEvent struct {
	Date          string   `json:"date"`
	SupplierName  string   `json:"supplierName"`
	SupplierGSTIN string   `json:"supplierGstin,omitempty"`
	Items         []POItem `json:"items"`
}
