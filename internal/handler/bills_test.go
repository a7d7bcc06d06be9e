package handler_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/saffron-pos/api/internal/billing"
	"github.com/saffron-pos/api/internal/database"
	"github.com/saffron-pos/api/internal/handler"
)

type mockMailer struct {
	err  error
	sent []billing.Message
}

func (m *mockMailer) Send(ctx context.Context, msg billing.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newBillFixture(t *testing.T, mailer billing.Mailer) (*mockOrderReadStore, http.Handler, database.Order) {
	t.Helper()

	order := database.Order{
		ID:          uuid.New(),
		GuestName:   "Asha Verma",
		TableNumber: "T7",
		WaiterID:    pgtype.UUID{},
		Status:      "served",
	}
	store := &mockOrderReadStore{
		orders: map[uuid.UUID]database.Order{order.ID: order},
		lines: map[uuid.UUID][]database.ListOrderLineDetailsRow{
			order.ID: {
				lineDetail(t, order.ID, "Paneer Tikka", "450.00", 2),
				lineDetail(t, order.ID, "Dal Makhani", "850.00", 1),
			},
		},
	}

	h := handler.NewBillHandler(store, mailer)
	router := protectedRouter(h.RegisterRoutes)
	return store, router, order
}

func TestBillPreview(t *testing.T) {
	_, router, order := newBillFixture(t, &mockMailer{})
	token := tokenFor(t, uuid.New(), "meera", "reception", false)

	rr := doRequest(t, router, "GET", "/orders/"+order.ID.String()+"/bill/", nil, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		BillText string `json:"bill_text"`
		Order    struct {
			GuestName string `json:"guest_name"`
			Total     string `json:"total"`
		} `json:"order"`
		PDF string `json:"pdf"`
	}
	decodeBody(t, rr, &resp)

	if resp.Order.Total != "1750.00" {
		t.Errorf("total: got %s, want 1750.00", resp.Order.Total)
	}
	if resp.Order.GuestName != "Asha Verma" {
		t.Errorf("order guest: got %s", resp.Order.GuestName)
	}
	for _, want := range []string{
		"Guest: Asha Verma",
		"Table: T7",
		" - 2 x Paneer Tikka @ 450.00 = 900.00",
		"Total: 1750.00",
	} {
		if !strings.Contains(resp.BillText, want) {
			t.Errorf("bill text missing %q:\n%s", want, resp.BillText)
		}
	}

	pdfBytes, err := base64.StdEncoding.DecodeString(resp.PDF)
	if err != nil {
		t.Fatalf("decode pdf: %v", err)
	}
	if !strings.HasPrefix(string(pdfBytes), "%PDF-") {
		t.Error("pdf payload is not a PDF document")
	}
}

func TestBillPreview_NotFound(t *testing.T) {
	_, router, _ := newBillFixture(t, &mockMailer{})
	token := tokenFor(t, uuid.New(), "meera", "reception", false)

	rr := doRequest(t, router, "GET", "/orders/"+uuid.New().String()+"/bill/", nil, token)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestEmailBill(t *testing.T) {
	mailer := &mockMailer{}
	_, router, order := newBillFixture(t, mailer)
	token := tokenFor(t, uuid.New(), "meera", "reception", false)

	rr := doRequest(t, router, "POST", "/orders/"+order.ID.String()+"/bill/",
		map[string]string{"email": "asha@example.com"}, token)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		Status string `json:"status"`
		Email  string `json:"email"`
	}
	decodeBody(t, rr, &resp)
	if resp.Status != "emailed" || resp.Email != "asha@example.com" {
		t.Errorf("response: %+v", resp)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("sent: got %d, want 1", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if msg.To != "asha@example.com" {
		t.Errorf("to: got %s", msg.To)
	}
	if !strings.Contains(msg.Body, "Total: 1750.00") {
		t.Errorf("mail body missing total:\n%s", msg.Body)
	}
	if len(msg.Attachment) == 0 || !strings.HasPrefix(string(msg.Attachment), "%PDF-") {
		t.Error("mail is missing its PDF attachment")
	}
	if msg.AttachmentName != "bill-"+order.ID.String()+".pdf" {
		t.Errorf("attachment name: got %s", msg.AttachmentName)
	}
}

func TestEmailBill_InvalidAddress(t *testing.T) {
	mailer := &mockMailer{}
	_, router, order := newBillFixture(t, mailer)
	token := tokenFor(t, uuid.New(), "meera", "reception", false)

	for _, email := range []string{"", "not-an-address"} {
		rr := doRequest(t, router, "POST", "/orders/"+order.ID.String()+"/bill/",
			map[string]string{"email": email}, token)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("email %q: got %d, want %d", email, rr.Code, http.StatusBadRequest)
		}
	}
	if len(mailer.sent) != 0 {
		t.Error("mail sent despite invalid address")
	}
}

// A missing order reports not-found even when the body is also invalid.
// Existence is checked first.
func TestEmailBill_MissingOrderWinsOverBadBody(t *testing.T) {
	mailer := &mockMailer{}
	_, router, _ := newBillFixture(t, mailer)
	token := tokenFor(t, uuid.New(), "meera", "reception", false)

	rr := doRequest(t, router, "POST", "/orders/"+uuid.New().String()+"/bill/",
		map[string]string{}, token)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
	if len(mailer.sent) != 0 {
		t.Error("mail sent for missing order")
	}
}

func TestEmailBill_TransportFailure(t *testing.T) {
	mailer := &mockMailer{err: errors.New("connection refused")}
	_, router, order := newBillFixture(t, mailer)
	token := tokenFor(t, uuid.New(), "meera", "reception", false)

	rr := doRequest(t, router, "POST", "/orders/"+order.ID.String()+"/bill/",
		map[string]string{"email": "asha@example.com"}, token)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}

	var resp struct {
		Error string `json:"error"`
	}
	decodeBody(t, rr, &resp)
	if !strings.Contains(resp.Error, "connection refused") {
		t.Errorf("transport message not surfaced: %s", resp.Error)
	}
}

func TestEmailBill_NoMailerConfigured(t *testing.T) {
	_, router, order := newBillFixture(t, nil)
	token := tokenFor(t, uuid.New(), "meera", "reception", false)

	rr := doRequest(t, router, "POST", "/orders/"+order.ID.String()+"/bill/",
		map[string]string{"email": "asha@example.com"}, token)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}
