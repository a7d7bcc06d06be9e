package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saffron-pos/api/internal/billing"
	"github.com/saffron-pos/api/internal/database"
)

// BillStore defines the database methods needed to render bills.
// Satisfied by *database.Queries; narrow interface for testability.
type BillStore interface {
	orderReader
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
}

// BillHandler renders and emails bills for orders.
type BillHandler struct {
	store  BillStore
	mailer billing.Mailer
}

// NewBillHandler creates a new BillHandler. mailer may be nil when SMTP is
// not configured; emailing then returns 503.
func NewBillHandler(store BillStore, mailer billing.Mailer) *BillHandler {
	return &BillHandler{store: store, mailer: mailer}
}

// RegisterRoutes registers the bill endpoints. All require authentication.
func (h *BillHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders/{orderID}/bill/", h.Preview)
	r.Post("/orders/{orderID}/bill/", h.Email)
}

// --- Request / Response types ---

type billPreviewResponse struct {
	BillText string        `json:"bill_text"`
	Order    orderResponse `json:"order"`
	PDF      string        `json:"pdf"`
}

type emailBillRequest struct {
	Email string `json:"email"`
}

type emailBillResponse struct {
	Status string `json:"status"`
	Email  string `json:"email"`
}

// --- Handlers ---

// Preview returns the bill as text, the full order, and a base64-encoded PDF.
func (h *BillHandler) Preview(w http.ResponseWriter, r *http.Request) {
	bill, order, ok := h.loadBill(w, r)
	if !ok {
		return
	}

	orderResp, err := buildOrderResponse(r.Context(), h.store, order)
	if err != nil {
		log.Printf("ERROR: assemble order response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to render bill"})
		return
	}

	pdfBytes, err := bill.PDF()
	if err != nil {
		log.Printf("ERROR: render bill pdf: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to render bill"})
		return
	}

	writeJSON(w, http.StatusOK, billPreviewResponse{
		BillText: bill.Text(),
		Order:    orderResp,
		PDF:      base64.StdEncoding.EncodeToString(pdfBytes),
	})
}

// Email renders the bill and mails it, PDF attached, to the given address.
// A missing order reports 404 before any body validation.
func (h *BillHandler) Email(w http.ResponseWriter, r *http.Request) {
	bill, _, ok := h.loadBill(w, r)
	if !ok {
		return
	}

	var req emailBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
		return
	}

	if h.mailer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "mail delivery not configured"})
		return
	}

	pdfBytes, err := bill.PDF()
	if err != nil {
		log.Printf("ERROR: render bill pdf: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to render bill"})
		return
	}

	msg := billing.Message{
		To:             req.Email,
		Subject:        fmt.Sprintf("Your bill for table %s", bill.TableNumber),
		Body:           bill.Text(),
		Attachment:     pdfBytes,
		AttachmentName: fmt.Sprintf("bill-%s.pdf", bill.OrderID),
	}
	if err := h.mailer.Send(r.Context(), msg); err != nil {
		log.Printf("ERROR: email bill for order %s: %v", bill.OrderID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("failed to send bill: %v", err),
		})
		return
	}

	writeJSON(w, http.StatusOK, emailBillResponse{Status: "emailed", Email: req.Email})
}

// --- Helpers ---

// loadBill resolves the order from the URL and assembles its bill. On
// failure it writes the error response and reports ok=false.
func (h *BillHandler) loadBill(w http.ResponseWriter, r *http.Request) (billing.Bill, database.Order, bool) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return billing.Bill{}, database.Order{}, false
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return billing.Bill{}, database.Order{}, false
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch order"})
		return billing.Bill{}, database.Order{}, false
	}

	details, err := h.store.ListOrderLineDetails(r.Context(), order.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch order"})
		return billing.Bill{}, database.Order{}, false
	}

	lines := make([]billing.Line, 0, len(details))
	for _, d := range details {
		lines = append(lines, billing.Line{
			Name:      d.ItemName,
			Quantity:  d.Quantity,
			UnitPrice: numericToDecimal(d.UnitPrice),
		})
	}

	bill := billing.Bill{
		OrderID:     order.ID,
		GuestName:   order.GuestName,
		TableNumber: order.TableNumber,
		Lines:       lines,
	}
	return bill, order, true
}
