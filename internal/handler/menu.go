package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/saffron-pos/api/internal/database"
	"github.com/saffron-pos/api/internal/enum"
	"github.com/saffron-pos/api/internal/middleware"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuCategories(ctx context.Context) ([]database.MenuCategory, error)
	GetMenuCategory(ctx context.Context, id uuid.UUID) (database.MenuCategory, error)
	CreateMenuCategory(ctx context.Context, arg database.CreateMenuCategoryParams) (database.MenuCategory, error)
	ListAvailableMenuItems(ctx context.Context) ([]database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
}

// MenuHandler handles menu browsing and administration.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterRoutes registers the public menu endpoints.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu/", h.ListItems)
	r.Get("/menu/categories/", h.ListCategories)
}

// RegisterProtectedRoutes registers menu administration endpoints.
func (h *MenuHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/menu/", h.CreateItem)
	r.Post("/menu/categories/", h.CreateCategory)
}

// --- Request / Response types ---

type categoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int32     `json:"sort_order"`
}

type menuItemResponse struct {
	ID           uuid.UUID `json:"id"`
	CategoryID   uuid.UUID `json:"category_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	IsVegetarian bool      `json:"is_vegetarian"`
	IsVegan      bool      `json:"is_vegan"`
	SpiceLevel   string    `json:"spice_level"`
	IsAvailable  bool      `json:"is_available"`
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int32  `json:"sort_order"`
}

type createMenuItemRequest struct {
	CategoryID   string `json:"category_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	IsVegetarian bool   `json:"is_vegetarian"`
	IsVegan      bool   `json:"is_vegan"`
	SpiceLevel   string `json:"spice_level"`
	IsAvailable  *bool  `json:"is_available"`
}

// --- Handlers ---

// ListCategories returns all menu categories ordered by sort_order.
func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListMenuCategories(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch categories"})
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListItems returns all available menu items for guest browsing.
func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListAvailableMenuItems(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch menu"})
		return
	}

	resp := make([]menuItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toMenuItemResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateCategory adds a menu category. Superuser only.
func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil || !actor.IsSuperuser {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "superuser required"})
		return
	}

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	category, err := h.store.CreateMenuCategory(r.Context(), database.CreateMenuCategoryParams{
		Name:        req.Name,
		Description: textOrNull(req.Description),
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create category"})
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// CreateItem adds a menu item. Superuser only.
func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil || !actor.IsSuperuser {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "superuser required"})
		return
	}

	var req createMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	if req.SpiceLevel != "" && !enum.IsValidSpiceLevel(req.SpiceLevel) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid spice_level"})
		return
	}

	if _, err := h.store.GetMenuCategory(r.Context(), categoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create menu item"})
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	var priceNum pgtype.Numeric
	if err := priceNum.Scan(price.StringFixed(2)); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		CategoryID:   categoryID,
		Name:         req.Name,
		Description:  textOrNull(req.Description),
		Price:        priceNum,
		IsVegetarian: req.IsVegetarian,
		IsVegan:      req.IsVegan,
		SpiceLevel:   textOrNull(req.SpiceLevel),
		IsAvailable:  available,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create menu item"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// --- Helpers ---

func toCategoryResponse(c database.MenuCategory) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description.String,
		SortOrder:   c.SortOrder,
	}
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:           m.ID,
		CategoryID:   m.CategoryID,
		Name:         m.Name,
		Description:  m.Description.String,
		Price:        numericToString(m.Price),
		IsVegetarian: m.IsVegetarian,
		IsVegan:      m.IsVegan,
		SpiceLevel:   m.SpiceLevel.String,
		IsAvailable:  m.IsAvailable,
	}
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// numericToString renders a NUMERIC column with two decimal places.
func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
