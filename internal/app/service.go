// Package app wires the reconciliation core to the persistence gateway
// behind the interface every UI adapter calls.
package app

import (
	"context"
	"fmt"

	"pharmacy-ledger/internal/core"
	"pharmacy-ledger/internal/gateway"
)

// Service is one identity's working session: the authoritative in-memory
// state plus its best-effort durable mirror.
//
// The contract is two-phase by design: Record* methods mutate in memory
// and return synchronously; Persist is a separate, independently
// failable call. A persistence failure is surfaced to the caller as a
// notification concern and never rolls back applied state.
type Service struct {
	repo *core.Repository
	proc *core.EventProcessor
	gw   gateway.Gateway
}

func NewService(gw gateway.Gateway) *Service {
	repo := core.NewRepository()
	return &Service{
		repo: repo,
		proc: core.NewEventProcessor(repo),
		gw:   gw,
	}
}

// Repository exposes the session state for read accessors and change
// subscriptions.
func (s *Service) Repository() *core.Repository { return s.repo }

// Load hydrates the session from the durable mirror. Collections absent
// from storage stay empty; account balances are recomputed from the
// ledgers on restore.
func (s *Service) Load(ctx context.Context) error {
	var snap core.Snapshot
	reads := []struct {
		name string
		out  any
	}{
		{gateway.CollectionTransactions, &snap.Transactions},
		{gateway.CollectionInventory, &snap.Inventory},
		{gateway.CollectionSalesReturns, &snap.SalesReturns},
		{gateway.CollectionPurchaseReturns, &snap.PurchaseReturns},
		{gateway.CollectionPurchases, &snap.Purchases},
		{gateway.CollectionPurchaseOrders, &snap.PurchaseOrders},
		{gateway.CollectionDistributors, &snap.Distributors},
		{gateway.CollectionCustomers, &snap.Customers},
	}
	for _, r := range reads {
		if err := s.gw.Get(ctx, r.name, r.out); err != nil {
			return fmt.Errorf("load session: %w", err)
		}
	}
	s.repo.Restore(snap)
	return nil
}

// Persist mirrors the current snapshot to durable storage, one wholesale
// write per collection. The first failure aborts and is returned; the
// in-memory state is untouched either way.
func (s *Service) Persist(ctx context.Context) error {
	snap := s.repo.Snapshot()
	writes := []struct {
		name  string
		value any
	}{
		{gateway.CollectionTransactions, snap.Transactions},
		{gateway.CollectionInventory, snap.Inventory},
		{gateway.CollectionSalesReturns, snap.SalesReturns},
		{gateway.CollectionPurchaseReturns, snap.PurchaseReturns},
		{gateway.CollectionPurchases, snap.Purchases},
		{gateway.CollectionPurchaseOrders, snap.PurchaseOrders},
		{gateway.CollectionDistributors, snap.Distributors},
		{gateway.CollectionCustomers, snap.Customers},
	}
	for _, w := range writes {
		if err := s.gw.Save(ctx, w.name, w.value); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	return nil
}

// ── Event application (synchronous, in-memory) ───────────────────────────────

func (s *Service) RecordSale(ev core.SaleEvent) (*core.Transaction, error) {
	return s.proc.RecordSale(ev)
}

func (s *Service) RecordPurchase(ev core.PurchaseEvent) (*core.Purchase, error) {
	return s.proc.RecordPurchase(ev)
}

func (s *Service) RecordSalesReturn(ev core.SalesReturnEvent) (*core.SalesReturn, error) {
	return s.proc.RecordSalesReturn(ev)
}

func (s *Service) RecordPurchaseReturn(ev core.PurchaseReturnEvent) (*core.PurchaseReturn, error) {
	return s.proc.RecordPurchaseReturn(ev)
}

func (s *Service) RecordPayment(ev core.PaymentEvent) (*core.Account, error) {
	return s.proc.RecordPayment(ev)
}

func (s *Service) OpenAccount(ev core.AccountOpeningEvent) (*core.Account, error) {
	return s.proc.OpenAccount(ev)
}

func (s *Service) DraftPurchaseOrder(ev core.PurchaseOrderEvent) (*core.PurchaseOrder, error) {
	return s.proc.DraftPurchaseOrder(ev)
}

func (s *Service) PlacePurchaseOrder(poID string) (*core.PurchaseOrder, error) {
	return s.proc.PlacePurchaseOrder(poID)
}

// ── Reports and backup ───────────────────────────────────────────────────────

func (s *Service) GSTReport(month string) core.GSTReport {
	return core.GSTSummary(s.repo.Transactions(), s.repo.Purchases(), month)
}

// ExportBackup serializes the durable mirror into one document. Persist
// first if the in-memory state must be included.
func (s *Service) ExportBackup(ctx context.Context) (*gateway.Document, error) {
	return s.gw.ExportSnapshot(ctx)
}

// ImportBackup replaces the durable mirror from a document, then reloads
// the session from it.
func (s *Service) ImportBackup(ctx context.Context, doc *gateway.Document) error {
	if err := s.gw.ImportSnapshot(ctx, doc); err != nil {
		return err
	}
	return s.Load(ctx)
}
