package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when a payment references an account
// that does not exist. Payments are direct user operations, so the gap
// is surfaced instead of being swallowed.
var ErrAccountNotFound = errors.New("account not found")

// EventProcessor orchestrates every business event: it resolves the
// counterparty account, mutates inventory, appends ledger entries and
// recomputes running balances, and creates the header record — all
// synchronously against the in-memory repository. Durability is the
// caller's concern (two-phase: apply, then persist the snapshot).
type EventProcessor struct {
	repo *Repository
}

func NewEventProcessor(repo *Repository) *EventProcessor {
	return &EventProcessor{repo: repo}
}

// RecordSale decrements stock for each linked line, creates the
// Transaction header, and — when a customer account is resolved or
// created — appends a sale entry (debit = total) plus a payment entry
// (credit = amountReceived) for any money taken at the counter.
//
// If the ledger append fails after a fresh account was created, the
// account is rolled back; the already-applied inventory and header
// mutations deliberately are not.
func (p *EventProcessor) RecordSale(ev SaleEvent) (*Transaction, error) {
	p.repo.mu.Lock()

	customers, idx, isNew := ResolveAccount(AccountCustomer, ev.CustomerName, ev.CustomerPhone, p.repo.customers)
	p.repo.customers = customers

	deltas := make([]StockDelta, 0, len(ev.Items))
	for _, it := range ev.Items {
		deltas = append(deltas, StockDelta{ItemID: it.ItemID, Quantity: -it.Quantity})
	}
	p.repo.inventory = ApplyDeltas(p.repo.inventory, deltas)

	txn := Transaction{
		ID:             nextSerial("INV", len(p.repo.transactions)),
		Date:           ev.Date,
		CustomerName:   ev.CustomerName,
		Items:          ev.Items,
		Total:          ev.Total,
		AmountReceived: ev.AmountReceived,
		PaymentMode:    ev.PaymentMode,
	}
	if idx >= 0 {
		txn.CustomerID = p.repo.customers[idx].ID
	}
	p.repo.transactions = append(p.repo.transactions, txn)

	var appendErr error
	if idx >= 0 {
		entries := []LedgerEntry{{
			ID:          uuid.NewString(),
			Date:        ev.Date,
			Type:        EntrySale,
			Description: fmt.Sprintf("Sale %s", txn.ID),
			Debit:       ev.Total,
		}}
		if ev.AmountReceived.IsPositive() {
			entries = append(entries, LedgerEntry{
				ID:          uuid.NewString(),
				Date:        ev.Date,
				Type:        EntryPayment,
				Description: fmt.Sprintf("Payment against %s", txn.ID),
				Credit:      ev.AmountReceived,
			})
		}
		appendErr = appendEntries(&p.repo.customers[idx], entries...)
		if appendErr != nil && isNew {
			p.repo.customers = p.repo.customers[:len(p.repo.customers)-1]
		}
	}

	snap := p.repo.snapshotLocked()
	p.repo.mu.Unlock()
	p.repo.publish(snap)

	if appendErr != nil {
		return &txn, fmt.Errorf("record sale %s: %w", txn.ID, appendErr)
	}
	return &txn, nil
}

// RecordPurchase applies bulk intake to inventory (incrementing matched
// batches, creating the rest), creates the Purchase header, appends a
// purchase entry (debit = totalAmount) to the resolved distributor, and
// marks a referenced PurchaseOrder as received.
func (p *EventProcessor) RecordPurchase(ev PurchaseEvent) (*Purchase, error) {
	p.repo.mu.Lock()

	distributors, idx, isNew := ResolveAccount(AccountDistributor, ev.SupplierName, ev.SupplierGSTIN, p.repo.distributors)
	p.repo.distributors = distributors

	p.repo.inventory = ApplyIntake(p.repo.inventory, ev.Items)

	pur := Purchase{
		ID:              nextSerial("PUR", len(p.repo.purchases)),
		Date:            ev.Date,
		SupplierName:    ev.SupplierName,
		InvoiceNumber:   ev.InvoiceNumber,
		Items:           ev.Items,
		TotalAmount:     ev.TotalAmount,
		PurchaseOrderID: ev.PurchaseOrderID,
	}
	if idx >= 0 {
		pur.DistributorID = p.repo.distributors[idx].ID
	}
	p.repo.purchases = append(p.repo.purchases, pur)

	// Only the ordered → received transition is driven here; draft and
	// partially_received orders are left untouched.
	if ev.PurchaseOrderID != "" {
		for i := range p.repo.purchaseOrders {
			if p.repo.purchaseOrders[i].ID == ev.PurchaseOrderID && p.repo.purchaseOrders[i].Status == POStatusOrdered {
				p.repo.purchaseOrders[i].Status = POStatusReceived
			}
		}
	}

	var appendErr error
	if idx >= 0 {
		desc := fmt.Sprintf("Purchase %s", pur.ID)
		if ev.InvoiceNumber != "" {
			desc = fmt.Sprintf("Purchase %s (bill %s)", pur.ID, ev.InvoiceNumber)
		}
		appendErr = appendEntries(&p.repo.distributors[idx], LedgerEntry{
			ID:          uuid.NewString(),
			Date:        ev.Date,
			Type:        EntryPurchase,
			Description: desc,
			Debit:       ev.TotalAmount,
		})
		if appendErr != nil && isNew {
			p.repo.distributors = p.repo.distributors[:len(p.repo.distributors)-1]
		}
	}

	snap := p.repo.snapshotLocked()
	p.repo.mu.Unlock()
	p.repo.publish(snap)

	if appendErr != nil {
		return &pur, fmt.Errorf("record purchase %s: %w", pur.ID, appendErr)
	}
	return &pur, nil
}

// RecordSalesReturn increments stock for each matched item and appends a
// return entry (credit = totalRefund) to the customer referenced by the
// return. A walk-in return with no resolvable customer skips the ledger.
func (p *EventProcessor) RecordSalesReturn(ev SalesReturnEvent) (*SalesReturn, error) {
	p.repo.mu.Lock()

	customers, idx, isNew := ResolveAccount(AccountCustomer, ev.CustomerName, ev.CustomerPhone, p.repo.customers)
	p.repo.customers = customers

	deltas := make([]StockDelta, 0, len(ev.Items))
	for _, it := range ev.Items {
		deltas = append(deltas, StockDelta{ItemID: it.ItemID, Quantity: it.Quantity})
	}
	p.repo.inventory = ApplyDeltas(p.repo.inventory, deltas)

	ret := SalesReturn{
		ID:           nextSerial("SR", len(p.repo.salesReturns)),
		Date:         ev.Date,
		CustomerName: ev.CustomerName,
		Items:        ev.Items,
		TotalRefund:  ev.TotalRefund,
		Reason:       ev.Reason,
	}
	if idx >= 0 {
		ret.CustomerID = p.repo.customers[idx].ID
	}
	p.repo.salesReturns = append(p.repo.salesReturns, ret)

	var appendErr error
	if idx >= 0 {
		appendErr = appendEntries(&p.repo.customers[idx], LedgerEntry{
			ID:          uuid.NewString(),
			Date:        ev.Date,
			Type:        EntryReturn,
			Description: fmt.Sprintf("Sales return %s", ret.ID),
			Credit:      ev.TotalRefund,
		})
		if appendErr != nil && isNew {
			p.repo.customers = p.repo.customers[:len(p.repo.customers)-1]
		}
	}

	snap := p.repo.snapshotLocked()
	p.repo.mu.Unlock()
	p.repo.publish(snap)

	if appendErr != nil {
		return &ret, fmt.Errorf("record sales return %s: %w", ret.ID, appendErr)
	}
	return &ret, nil
}

// RecordPurchaseReturn decrements stock for each matched item and
// appends a return entry (credit = totalValue) to the distributor
// matched by supplier name.
func (p *EventProcessor) RecordPurchaseReturn(ev PurchaseReturnEvent) (*PurchaseReturn, error) {
	p.repo.mu.Lock()

	distributors, idx, isNew := ResolveAccount(AccountDistributor, ev.SupplierName, ev.SupplierGSTIN, p.repo.distributors)
	p.repo.distributors = distributors

	deltas := make([]StockDelta, 0, len(ev.Items))
	for _, it := range ev.Items {
		deltas = append(deltas, StockDelta{ItemID: it.ItemID, Quantity: -it.Quantity})
	}
	p.repo.inventory = ApplyDeltas(p.repo.inventory, deltas)

	ret := PurchaseReturn{
		ID:           nextSerial("PR", len(p.repo.purchaseReturns)),
		Date:         ev.Date,
		SupplierName: ev.SupplierName,
		Items:        ev.Items,
		TotalValue:   ev.TotalValue,
		Reason:       ev.Reason,
	}
	if idx >= 0 {
		ret.DistributorID = p.repo.distributors[idx].ID
	}
	p.repo.purchaseReturns = append(p.repo.purchaseReturns, ret)

	var appendErr error
	if idx >= 0 {
		appendErr = appendEntries(&p.repo.distributors[idx], LedgerEntry{
			ID:          uuid.NewString(),
			Date:        ev.Date,
			Type:        EntryReturn,
			Description: fmt.Sprintf("Purchase return %s", ret.ID),
			Credit:      ev.TotalValue,
		})
		if appendErr != nil && isNew {
			p.repo.distributors = p.repo.distributors[:len(p.repo.distributors)-1]
		}
	}

	snap := p.repo.snapshotLocked()
	p.repo.mu.Unlock()
	p.repo.publish(snap)

	if appendErr != nil {
		return &ret, fmt.Errorf("record purchase return %s: %w", ret.ID, appendErr)
	}
	return &ret, nil
}

// RecordPayment appends a payment entry (credit = amount) to an existing
// account. No inventory or header effect.
func (p *EventProcessor) RecordPayment(ev PaymentEvent) (*Account, error) {
	p.repo.mu.Lock()

	accounts := p.repo.customers
	if ev.Kind == AccountDistributor {
		accounts = p.repo.distributors
	}

	idx := -1
	for i := range accounts {
		if accounts[i].ID == ev.AccountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.repo.mu.Unlock()
		return nil, fmt.Errorf("record payment for %s %q: %w", ev.Kind, ev.AccountID, ErrAccountNotFound)
	}

	desc := ev.Description
	if desc == "" {
		desc = "Payment received"
		if ev.Kind == AccountDistributor {
			desc = "Payment made"
		}
	}
	err := appendEntries(&accounts[idx], LedgerEntry{
		ID:          uuid.NewString(),
		Date:        ev.Date,
		Type:        EntryPayment,
		Description: desc,
		Credit:      ev.Amount,
	})

	snap := p.repo.snapshotLocked()
	p.repo.mu.Unlock()
	p.repo.publish(snap)

	if err != nil {
		return nil, fmt.Errorf("record payment for %s %q: %w", ev.Kind, ev.AccountID, err)
	}
	acc := accounts[idx]
	return &acc, nil
}

// OpenAccount creates a counterparty with a single openingBalance entry.
// A positive opening amount becomes a debit, a negative one a credit.
//
// If the ledger append fails, the freshly created account is deleted to
// avoid an orphaned zero-history account — the one case where rollback
// is performed.
func (p *EventProcessor) OpenAccount(ev AccountOpeningEvent) (*Account, error) {
	p.repo.mu.Lock()

	acc := Account{
		ID:      uuid.NewString(),
		Name:    ev.Name,
		Phone:   ev.Phone,
		Address: ev.Address,
		GSTIN:   ev.GSTIN,
	}

	entry := LedgerEntry{
		ID:          uuid.NewString(),
		Date:        ev.Date,
		Type:        EntryOpeningBalance,
		Description: "Opening balance",
	}
	if ev.OpeningAmount.IsNegative() {
		entry.Credit = ev.OpeningAmount.Neg()
	} else {
		entry.Debit = ev.OpeningAmount
	}

	err := appendEntries(&acc, entry)
	if err == nil {
		if ev.Kind == AccountDistributor {
			p.repo.distributors = append(p.repo.distributors, acc)
		} else {
			p.repo.customers = append(p.repo.customers, acc)
		}
	}

	snap := p.repo.snapshotLocked()
	p.repo.mu.Unlock()
	p.repo.publish(snap)

	if err != nil {
		return nil, fmt.Errorf("open %s account %q: %w", ev.Kind, ev.Name, err)
	}
	return &acc, nil
}

// DraftPurchaseOrder creates a purchase order in draft state.
func (p *EventProcessor) DraftPurchaseOrder(ev PurchaseOrderEvent) (*PurchaseOrder, error) {
	p.repo.mu.Lock()

	distributors, idx, _ := ResolveAccount(AccountDistributor, ev.SupplierName, ev.SupplierGSTIN, p.repo.distributors)
	p.repo.distributors = distributors

	po := PurchaseOrder{
		ID:           nextSerial("PO", len(p.repo.purchaseOrders)),
		Date:         ev.Date,
		SupplierName: ev.SupplierName,
		Status:       POStatusDraft,
		Items:        ev.Items,
	}
	if idx >= 0 {
		po.DistributorID = p.repo.distributors[idx].ID
	}
	p.repo.purchaseOrders = append(p.repo.purchaseOrders, po)

	snap := p.repo.snapshotLocked()
	p.repo.mu.Unlock()
	p.repo.publish(snap)
	return &po, nil
}

// PlacePurchaseOrder transitions a draft purchase order to ordered.
func (p *EventProcessor) PlacePurchaseOrder(poID string) (*PurchaseOrder, error) {
	p.repo.mu.Lock()

	idx := -1
	for i := range p.repo.purchaseOrders {
		if p.repo.purchaseOrders[i].ID == poID {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.repo.mu.Unlock()
		return nil, fmt.Errorf("purchase order %q not found", poID)
	}
	if p.repo.purchaseOrders[idx].Status != POStatusDraft {
		status := p.repo.purchaseOrders[idx].Status
		p.repo.mu.Unlock()
		return nil, fmt.Errorf("purchase order %q is %s, not draft", poID, status)
	}
	p.repo.purchaseOrders[idx].Status = POStatusOrdered
	po := p.repo.purchaseOrders[idx]

	snap := p.repo.snapshotLocked()
	p.repo.mu.Unlock()
	p.repo.publish(snap)
	return &po, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// appendEntries validates and appends entries to the account's ledger,
// then recomputes all running balances. On error the ledger is left
// untouched.
func appendEntries(acc *Account, entries ...LedgerEntry) error {
	for _, e := range entries {
		if err := validateEntry(e); err != nil {
			return err
		}
	}
	acc.Ledger = Recalculate(append(acc.Ledger, entries...))
	return nil
}

// validateEntry guards the two properties the ledger chronology cannot
// recover from: an unparseable date and negative amounts.
func validateEntry(e LedgerEntry) error {
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return fmt.Errorf("ledger entry date %q: %w", e.Date, err)
	}
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return fmt.Errorf("ledger entry amounts must not be negative (debit %s, credit %s)", e.Debit, e.Credit)
	}
	return nil
}

// nextSerial builds a human-readable header serial like INV-0007 from
// the current collection length. Records are never deleted, so length is
// a stable counter.
func nextSerial(prefix string, count int) string {
	return fmt.Sprintf("%s-%04d", prefix, count+1)
}
