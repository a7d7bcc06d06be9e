package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/saffron-pos/api/internal/database"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrGuestNameRequired   = errors.New("guest_name is required")
	ErrTableNumberRequired = errors.New("table_number is required")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID   = errors.New("invalid menu_item_id")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrInvalidUnitPrice    = errors.New("invalid unit_price")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	GuestName   string
	TableNumber string
	WaiterID    uuid.UUID
	Lines       []CreateOrderLineRequest
}

// CreateOrderLineRequest is a single line in the order. UnitPrice is
// optional; when empty the menu item's current catalog price is captured.
type CreateOrderLineRequest struct {
	MenuItemID string
	Quantity   int32
	UnitPrice  string
}

// CreateOrderResult is the full created order with its lines.
type CreateOrderResult struct {
	Order database.Order
	Lines []database.OrderLine
}

// OrderService handles order creation.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// preparedLine holds a resolved order line ready to insert.
type preparedLine struct {
	menuItemID uuid.UUID
	quantity   int32
	unitPrice  decimal.Decimal
}

// CreateOrder validates the request, resolves unit prices, and creates the
// order with all its lines in a single transaction. Either the order and
// every line persist, or nothing does.
//
// A line's unit price is fixed here: a supplied value is used as-is, an
// absent one is copied from the menu item's current price. Later catalog
// price changes never touch existing orders.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if req.GuestName == "" {
		return nil, ErrGuestNameRequired
	}
	if req.TableNumber == "" {
		return nil, ErrTableNumberRequired
	}
	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		if _, err := uuid.Parse(line.MenuItemID); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidMenuItemID)
		}
		if line.UnitPrice != "" {
			if _, err := decimal.NewFromString(line.UnitPrice); err != nil {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidUnitPrice)
			}
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// Resolve every line before touching the orders table so a bad line
	// costs nothing.
	prepared := make([]preparedLine, 0, len(req.Lines))
	for i, line := range req.Lines {
		itemID, _ := uuid.Parse(line.MenuItemID)

		item, err := store.GetMenuItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("items[%d]: get menu item: %w", i, err)
		}

		unitPrice := numericToDecimal(item.Price)
		if line.UnitPrice != "" {
			unitPrice, _ = decimal.NewFromString(line.UnitPrice)
		}

		prepared = append(prepared, preparedLine{
			menuItemID: itemID,
			quantity:   line.Quantity,
			unitPrice:  unitPrice,
		})
	}

	waiterID := pgtype.UUID{}
	if req.WaiterID != uuid.Nil {
		waiterID = pgtype.UUID{Bytes: req.WaiterID, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		GuestName:   req.GuestName,
		TableNumber: req.TableNumber,
		WaiterID:    waiterID,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var lines []database.OrderLine
	for _, pl := range prepared {
		line, err := store.CreateOrderLine(ctx, database.CreateOrderLineParams{
			OrderID:    order.ID,
			MenuItemID: pl.menuItemID,
			Quantity:   pl.quantity,
			UnitPrice:  decimalToNumeric(pl.unitPrice),
		})
		if err != nil {
			return nil, fmt.Errorf("create order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Lines: lines}, nil
}

// --- Helpers ---

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

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
