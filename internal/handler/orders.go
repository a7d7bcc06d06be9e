package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/saffron-pos/api/internal/billing"
	"github.com/saffron-pos/api/internal/database"
	"github.com/saffron-pos/api/internal/enum"
	"github.com/saffron-pos/api/internal/middleware"
	"github.com/saffron-pos/api/internal/policy"
	"github.com/saffron-pos/api/internal/service"
	"github.com/saffron-pos/api/internal/ws"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// orderReader covers the reads needed to assemble a full order payload.
type orderReader interface {
	ListOrderLineDetails(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderLineDetailsRow, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

// OrderStore defines the database methods needed to read orders.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	orderReader
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
}

// OrderCreator creates orders transactionally.
// Satisfied by *service.OrderService.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// StatusChanger applies role-checked status changes.
// Satisfied by *service.LifecycleService.
type StatusChanger interface {
	ChangeStatus(ctx context.Context, orderID uuid.UUID, status string, actor *policy.Actor) (database.Order, error)
}

// Broadcaster pushes events to connected staff displays.
// Satisfied by *ws.Hub; nil disables broadcasting.
type Broadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// OrderHandler handles order creation, listing, and status changes.
type OrderHandler struct {
	store     OrderStore
	creator   OrderCreator
	lifecycle StatusChanger
	hub       Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, creator OrderCreator, lifecycle StatusChanger, hub Broadcaster) *OrderHandler {
	return &OrderHandler{store: store, creator: creator, lifecycle: lifecycle, hub: hub}
}

// RegisterRoutes registers the order endpoints. All require authentication.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders/", h.Create)
	r.Get("/orders/", h.List)
	r.Get("/orders/{orderID}/", h.Get)
	// POST is the primary verb; PATCH accepted for clients that prefer it.
	r.Post("/orders/{orderID}/status/", h.UpdateStatus)
	r.Patch("/orders/{orderID}/status/", h.UpdateStatus)
}

// --- Request / Response types ---

type createOrderRequest struct {
	GuestName   string                   `json:"guest_name"`
	TableNumber string                   `json:"table_number"`
	Items       []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
	UnitPrice  string `json:"unit_price,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderLineResponse struct {
	ID           uuid.UUID        `json:"id"`
	MenuItem     menuItemResponse `json:"menu_item"`
	CategoryName string           `json:"category_name"`
	Quantity     int32            `json:"quantity"`
	UnitPrice    string           `json:"unit_price"`
	LineTotal    string           `json:"line_total"`
}

type orderResponse struct {
	ID          uuid.UUID           `json:"id"`
	GuestName   string              `json:"guest_name"`
	TableNumber string              `json:"table_number"`
	Status      string              `json:"status"`
	Waiter      *userResponse       `json:"waiter"`
	Items       []orderLineResponse `json:"items"`
	Total       string              `json:"total"`
	CreatedAt   time.Time           `json:"created_at"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int32           `json:"limit"`
	Offset int32           `json:"offset"`
}

// --- Handlers ---

// Create opens a new order with its lines. Waiters only (superuser bypasses).
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if !policy.Allowed(actor, policy.CreateOrderRoles) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "waiter role required"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	lines := make([]service.CreateOrderLineRequest, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.CreateOrderLineRequest{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}

	result, err := h.creator.CreateOrder(r.Context(), service.CreateOrderRequest{
		GuestName:   req.GuestName,
		TableNumber: req.TableNumber,
		WaiterID:    actor.ID,
		Lines:       lines,
	})
	if err != nil {
		if isOrderValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create order"})
		return
	}

	resp, err := buildOrderResponse(r.Context(), h.store, result.Order)
	if err != nil {
		log.Printf("ERROR: assemble order response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create order"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(ws.EventOrderCreated, resp)
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List returns orders, newest first, optionally filtered by status.
// Query params: status, limit (default 20, max 100), offset.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var status pgtype.Text
	if s := r.URL.Query().Get("status"); s != "" {
		if !enum.IsValidOrderStatus(s) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
		status = pgtype.Text{String: s, Valid: true}
	}

	limit := int32(defaultPageLimit)
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		if n > maxPageLimit {
			n = maxPageLimit
		}
		limit = int32(n)
	}

	var offset int32
	if o := r.URL.Query().Get("offset"); o != "" {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
			return
		}
		offset = int32(n)
	}

	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch orders"})
		return
	}

	// Each listed order carries the same representation as GET /orders/{id}/:
	// lines, waiter, and derived total.
	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		full, err := buildOrderResponse(r.Context(), h.store, o)
		if err != nil {
			log.Printf("ERROR: assemble order response: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch orders"})
			return
		}
		resp = append(resp, full)
	}

	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp, Limit: limit, Offset: offset})
}

// Get returns one order with its lines, waiter, and derived total.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch order"})
		return
	}

	resp, err := buildOrderResponse(r.Context(), h.store, order)
	if err != nil {
		log.Printf("ERROR: assemble order response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch order"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus moves an order to a new status, subject to the role policy.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	actor := middleware.ActorFromContext(r.Context())

	order, err := h.lifecycle.ChangeStatus(r.Context(), orderID, req.Status, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrInvalidStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		case errors.Is(err, service.ErrStatusForbidden):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient role for this status"})
		default:
			log.Printf("ERROR: change order status: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update status"})
		}
		return
	}

	resp, err := buildOrderResponse(r.Context(), h.store, order)
	if err != nil {
		log.Printf("ERROR: assemble order response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update status"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(ws.EventOrderStatusChanged, resp)
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// buildOrderResponse assembles the full order payload: lines in insertion
// order, the assigned waiter, and the total derived from the stored unit
// prices.
func buildOrderResponse(ctx context.Context, store orderReader, order database.Order) (orderResponse, error) {
	details, err := store.ListOrderLineDetails(ctx, order.ID)
	if err != nil {
		return orderResponse{}, err
	}

	items := make([]orderLineResponse, 0, len(details))
	billLines := make([]billing.Line, 0, len(details))
	for _, d := range details {
		line := billing.Line{
			Name:      d.ItemName,
			Quantity:  d.Quantity,
			UnitPrice: numericToDecimal(d.UnitPrice),
		}
		billLines = append(billLines, line)

		items = append(items, orderLineResponse{
			ID: d.ID,
			MenuItem: menuItemResponse{
				ID:           d.MenuItemID,
				CategoryID:   d.CategoryID,
				Name:         d.ItemName,
				Description:  d.ItemDescription.String,
				Price:        numericToString(d.ItemPrice),
				IsVegetarian: d.IsVegetarian,
				IsVegan:      d.IsVegan,
				SpiceLevel:   d.SpiceLevel.String,
				IsAvailable:  d.IsAvailable,
			},
			CategoryName: d.CategoryName,
			Quantity:     d.Quantity,
			UnitPrice:    numericToString(d.UnitPrice),
			LineTotal:    line.LineTotal().StringFixed(2),
		})
	}

	var waiter *userResponse
	if order.WaiterID.Valid {
		user, err := store.GetUserByID(ctx, uuid.UUID(order.WaiterID.Bytes))
		if err == nil {
			waiter = &userResponse{
				ID:          user.ID,
				Username:    user.Username,
				Role:        user.Role,
				IsSuperuser: user.IsSuperuser,
			}
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return orderResponse{}, err
		}
	}

	return orderResponse{
		ID:          order.ID,
		GuestName:   order.GuestName,
		TableNumber: order.TableNumber,
		Status:      order.Status,
		Waiter:      waiter,
		Items:       items,
		Total:       billing.Total(billLines).StringFixed(2),
		CreatedAt:   order.CreatedAt,
	}, nil
}

func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrGuestNameRequired) ||
		errors.Is(err, service.ErrTableNumberRequired) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidMenuItemID) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrInvalidUnitPrice)
}

// numericToDecimal converts a NUMERIC column to a decimal, zero when null.
func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}
