package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/saffron-pos/api/internal/database"
)

// TableStatsStore defines the database methods needed for occupancy stats.
// Satisfied by *database.Queries; narrow interface for testability.
type TableStatsStore interface {
	ListActiveOrders(ctx context.Context) ([]database.Order, error)
	CountOrders(ctx context.Context) (int64, error)
	CountOrdersByStatus(ctx context.Context) ([]database.CountOrdersByStatusRow, error)
}

// TableStatsHandler reports table occupancy for the reception display.
type TableStatsHandler struct {
	store TableStatsStore
}

// NewTableStatsHandler creates a new TableStatsHandler.
func NewTableStatsHandler(store TableStatsStore) *TableStatsHandler {
	return &TableStatsHandler{store: store}
}

// RegisterRoutes registers the stats endpoint.
func (h *TableStatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tables/stats/", h.Stats)
}

type tableStatsResponse struct {
	OccupiedTables  []string         `json:"occupied_tables"`
	TablesOccupied  int              `json:"total_tables_occupied"`
	TotalOrders     int64            `json:"total_orders"`
	ActiveOrders    int              `json:"active_orders"`
	ClosedOrders    int64            `json:"closed_orders"`
	StatusBreakdown map[string]int64 `json:"status_breakdown"`
}

// Stats returns occupancy derived from non-closed orders. A table is
// occupied while any of its orders is still open.
func (h *TableStatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	active, err := h.store.ListActiveOrders(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch stats"})
		return
	}

	total, err := h.store.CountOrders(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch stats"})
		return
	}

	byStatus, err := h.store.CountOrdersByStatus(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch stats"})
		return
	}

	tables := make(map[string]bool)
	for _, o := range active {
		tables[o.TableNumber] = true
	}
	occupied := make([]string, 0, len(tables))
	for t := range tables {
		occupied = append(occupied, t)
	}
	sort.Strings(occupied)

	breakdown := make(map[string]int64, len(byStatus))
	var closed int64
	for _, row := range byStatus {
		breakdown[row.Status] = row.Count
		if row.Status == "closed" {
			closed = row.Count
		}
	}

	writeJSON(w, http.StatusOK, tableStatsResponse{
		OccupiedTables:  occupied,
		TablesOccupied:  len(occupied),
		TotalOrders:     total,
		ActiveOrders:    len(active),
		ClosedOrders:    closed,
		StatusBreakdown: breakdown,
	})
}
