// Package web exposes the reconciliation core over a JSON HTTP API. It
// is an adapter: field-level input validation happens here, and every
// state change follows the apply-then-persist contract of the app layer.
package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pharmacy-ledger/internal/ai"
	"pharmacy-ledger/internal/app"
	"pharmacy-ledger/internal/core"
	"pharmacy-ledger/internal/gateway"
	"pharmacy-ledger/internal/intake"
)

// Handler holds the session registry, the bill extractor, and auth config.
type Handler struct {
	registry  *app.Registry
	extractor ai.ExtractorService
	jwtSecret string
	users     map[string]string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(registry *app.Registry, extractor ai.ExtractorService, users map[string]string, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		registry:  registry,
		extractor: extractor,
		jwtSecret: jwtSecret,
		users:     users,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Auth (public) ─────────────────────────────────────────────────────────
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes ──────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Backup import carries whole-shop state; everything else gets 1 MB.
		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(16 << 20)) // 16 MB
			r.Post("/api/backup", h.importBackup)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB

			// Events
			r.Post("/api/events/sale", h.recordSale)
			r.Post("/api/events/purchase", h.recordPurchase)
			r.Post("/api/events/sales-return", h.recordSalesReturn)
			r.Post("/api/events/purchase-return", h.recordPurchaseReturn)
			r.Post("/api/events/payment", h.recordPayment)
			r.Post("/api/events/account-opening", h.openAccount)

			// Purchase orders
			r.Post("/api/purchase-orders", h.draftPurchaseOrder)
			r.Post("/api/purchase-orders/{id}/place", h.placePurchaseOrder)

			// Read views
			r.Get("/api/inventory", h.listInventory)
			r.Get("/api/transactions", h.listTransactions)
			r.Get("/api/purchases", h.listPurchases)
			r.Get("/api/sales-returns", h.listSalesReturns)
			r.Get("/api/purchase-returns", h.listPurchaseReturns)
			r.Get("/api/purchase-orders", h.listPurchaseOrders)
			r.Get("/api/customers", h.listCustomers)
			r.Get("/api/distributors", h.listDistributors)

			// Reports
			r.Get("/api/reports/gst", h.gstReport)

			// Intake producers
			r.Post("/api/intake/csv", h.intakeCSV)
			r.Post("/api/intake/bill", h.intakeBill)

			// Backup export
			r.Get("/api/backup", h.exportBackup)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// session resolves the authenticated identity's working session. Writes
// the error response itself on failure.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*app.Service, bool) {
	claims := authFromContext(r.Context())
	if claims == nil {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return nil, false
	}
	svc, err := h.registry.ForUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, "session load failed: "+err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return nil, false
	}
	return svc, true
}

// eventResponse wraps an applied event's result. The apply phase has
// already succeeded when this is built; a persistence failure is
// reported alongside the data, never as a rollback.
type eventResponse struct {
	Data         any    `json:"data"`
	PersistError string `json:"persistError,omitempty"`
}

// respondApplied persists the session and writes the applied result. The
// in-memory state is authoritative at this point, so a persist failure
// degrades to a warning in the response body.
func respondApplied(w http.ResponseWriter, r *http.Request, svc *app.Service, data any) {
	resp := eventResponse{Data: data}
	if err := svc.Persist(r.Context()); err != nil {
		resp.PersistError = err.Error()
	}
	writeJSONStatus(w, http.StatusCreated, resp)
}

// ── Event endpoints ───────────────────────────────────────────────────────────

func (h *Handler) recordSale(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.session(w, r)
	if !ok {
		return
	}
	var ev core.SaleEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	if len(ev.Items) == 0 {
		writeError(w, r, "sale needs at least one item", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	tx, err := svc.RecordSale(ev)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	respondApplied(w, r, svc, tx)
}

func (h *Handler) recordPurchase(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.session(w, r)
	if !ok {
		return
	}
	var ev core.PurchaseEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	if ev.SupplierName == "" {
		writeError(w, r, "supplier name is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	p, err := svc.RecordPurchase(ev)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	respondApplied(w, r, svc, p)
}

func (h *Handler) recordSalesReturn(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.session(w, r)
	if !ok {
		return
	}
	var ev core.SalesReturnEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	sr, err := svc.RecordSalesReturn(ev)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	respondApplied(w, r, svc, sr)
}

func (h *Handler) recordPurchaseReturn(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.session(w, r)
	if !ok {
		return
	}
	var ev core.PurchaseReturnEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	pr, err := svc.RecordPurchaseReturn(ev)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	respondApplied(w, r, svc, pr)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.session(w, r)
	if !ok {
		return
	}
	var ev core.PaymentEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	acc, err := svc.RecordPayment(ev)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
			return
		}
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	respondApplied(w, r, svc, acc)
}

func (h *Handler) openAccount(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.session(w, r)
	if !ok {
		return
	}
	var ev core.AccountOpeningEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	if ev.Name == "" {
		writeError(w, r, "account name is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	acc, err := svc.OpenAccount(ev)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	respondApplied(w, r, svc, acc)
}

// ── Purchase orders ───────────────────────────────────────────────────────────

func (h *Handler) draftPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.session(w, r)
	if !ok {
		return
	}
	var ev core.PurchaseOrderEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	if ev.SupplierName == "" || len(ev.Items) == 0 {
		writeError(w, r, "purchase order needs a supplier and at least one item", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	po, err := svc.DraftPurchaseOrder(ev)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	respondApplied(w, r, svc, po)
}

func (h *Handler) placePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.session(w, r)
	if !ok {
		return
	}
	po, err := svc.PlacePurchaseOrder(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	respondApplied(w, r, svc, po)
}

// ── Read views ────────────────────────────────────────────────────────────────

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	if svc, ok := h.session(w, r); ok {
		writeJSON(w, svc.Repository().Inventory())
	}
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	if svc, ok := h.session(w, r); ok {
		writeJSON(w, svc.Repository().Transactions())
	}
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	if svc, ok := h.session(w, r); ok {
		writeJSON(w, svc.Repository().Purchases())
	}
}

func (h *Handler) listSalesReturns(w http.ResponseWriter, r *http.Request) {
	if svc, ok := h.session(w, r); ok {
		writeJSON(w, svc.Repository().SalesReturns())
	}
}

func (h *Handler) listPurchaseReturns(w http.ResponseWriter, r *http.Request) {
	if svc, ok := h.session(w, r); ok {
		writeJSON(w, svc.Repository().PurchaseReturns())
	}
}

func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	if svc, ok := h.session(w, r); ok {
		writeJSON(w, svc.Repository().PurchaseOrders())
	}
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	if svc, ok := h.session(w, r); ok {
		writeJSON(w, svc.Repository().Customers())
	}
}

func (h *Handler) listDistributors(w http.ResponseWriter, r *http.Request) {
	if svc, ok := h.session(w, r); ok {
		writeJSON(w, svc.Repository().Distributors())
	}
}

// ── Reports ───────────────────────────────────────────────────────────────────

// gstReport handles GET /api/reports/gst?month=YYYY-MM.
func (h *Handler) gstReport(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.session(w, r)
	if !ok {
		return
	}
	month := r.URL.Query().Get("month")
	if len(month) != 7 {
		writeError(w, r, "month must be in YYYY-MM format", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, svc.GSTReport(month))
}

// ── Intake producers ──────────────────────────────────────────────────────────

// intakeCSV parses an uploaded CSV body into intake lines for the clerk
// to review. Nothing is applied; the reviewed lines come back through
// POST /api/events/purchase.
func (h *Handler) intakeCSV(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.session(w, r); !ok {
		return
	}
	lines, err := intake.ParseCSV(r.Body)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, lines)
}

// intakeBill extracts structured intake lines from free-form bill text.
// Like the CSV producer, the result is a draft for review, not an
// applied event.
func (h *Handler) intakeBill(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.session(w, r); !ok {
		return
	}
	if h.extractor == nil {
		writeError(w, r, "bill extraction is not configured", "UNAVAILABLE", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, r, "bill text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	out, err := h.extractor.ExtractBill(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, "bill extraction failed: "+err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, out)
}

// ── Backup ────────────────────────────────────────────────────────────────────

func (h *Handler) exportBackup(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.session(w, r)
	if !ok {
		return
	}
	// Flush the in-memory state first so the export reflects it.
	if err := svc.Persist(r.Context()); err != nil {
		writeError(w, r, "persist before export failed: "+err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	doc, err := svc.ExportBackup(r.Context())
	if err != nil {
		writeError(w, r, "export failed: "+err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="pharmacy-backup.json"`)
	writeJSON(w, doc)
}

func (h *Handler) importBackup(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.session(w, r)
	if !ok {
		return
	}
	var doc gateway.Document
	if !decodeJSON(w, r, &doc) {
		return
	}
	if err := svc.ImportBackup(r.Context(), &doc); err != nil {
		writeError(w, r, "import failed: "+err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "imported"})
}
