package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `
INSERT INTO orders (guest_name, table_number, waiter_id)
VALUES ($1, $2, $3)
RETURNING id, guest_name, table_number, waiter_id, status, created_at
`

type CreateOrderParams struct {
	GuestName   string
	TableNumber string
	WaiterID    pgtype.UUID
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder, arg.GuestName, arg.TableNumber, arg.WaiterID)
	var o Order
	err := row.Scan(&o.ID, &o.GuestName, &o.TableNumber, &o.WaiterID, &o.Status, &o.CreatedAt)
	return o, err
}

const createOrderLine = `
INSERT INTO order_lines (order_id, menu_item_id, quantity, unit_price)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, menu_item_id, quantity, unit_price, created_at
`

type CreateOrderLineParams struct {
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Quantity   int32
	UnitPrice  pgtype.Numeric
}

func (q *Queries) CreateOrderLine(ctx context.Context, arg CreateOrderLineParams) (OrderLine, error) {
	row := q.db.QueryRow(ctx, createOrderLine, arg.OrderID, arg.MenuItemID, arg.Quantity, arg.UnitPrice)
	var l OrderLine
	err := row.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Quantity, &l.UnitPrice, &l.CreatedAt)
	return l, err
}

const getOrder = `
SELECT id, guest_name, table_number, waiter_id, status, created_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var o Order
	err := row.Scan(&o.ID, &o.GuestName, &o.TableNumber, &o.WaiterID, &o.Status, &o.CreatedAt)
	return o, err
}

const listOrders = `
SELECT id, guest_name, table_number, waiter_id, status, created_at
FROM orders
WHERE ($1::text IS NULL OR status = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListOrdersParams struct {
	Status pgtype.Text
	Limit  int32
	Offset int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.GuestName, &o.TableNumber, &o.WaiterID, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const listActiveOrders = `
SELECT id, guest_name, table_number, waiter_id, status, created_at
FROM orders
WHERE status <> 'closed'
ORDER BY created_at DESC, id DESC
`

// ListActiveOrders returns every order that has not been closed, for the
// table-occupancy report.
func (q *Queries) ListActiveOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listActiveOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.GuestName, &o.TableNumber, &o.WaiterID, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const updateOrderStatus = `
UPDATE orders
SET status = $2
WHERE id = $1
RETURNING id, guest_name, table_number, waiter_id, status, created_at
`

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

// UpdateOrderStatus overwrites the order's status unconditionally.
// Last write wins; there is no version check.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status)
	var o Order
	err := row.Scan(&o.ID, &o.GuestName, &o.TableNumber, &o.WaiterID, &o.Status, &o.CreatedAt)
	return o, err
}

const listOrderLineDetails = `
SELECT ol.id, ol.order_id, ol.menu_item_id, ol.quantity, ol.unit_price, ol.created_at,
       mi.category_id, mi.name, mi.description, mi.price,
       mi.is_vegetarian, mi.is_vegan, mi.spice_level, mi.is_available,
       mc.name AS category_name, mc.description AS category_description, mc.sort_order AS category_sort_order
FROM order_lines ol
JOIN menu_items mi ON mi.id = ol.menu_item_id
JOIN menu_categories mc ON mc.id = mi.category_id
WHERE ol.order_id = $1
ORDER BY ol.created_at, ol.id
`

type ListOrderLineDetailsRow struct {
	ID                  uuid.UUID
	OrderID             uuid.UUID
	MenuItemID          uuid.UUID
	Quantity            int32
	UnitPrice           pgtype.Numeric
	CreatedAt           time.Time
	CategoryID          uuid.UUID
	ItemName            string
	ItemDescription     pgtype.Text
	ItemPrice           pgtype.Numeric
	IsVegetarian        bool
	IsVegan             bool
	SpiceLevel          pgtype.Text
	IsAvailable         bool
	CategoryName        string
	CategoryDescription pgtype.Text
	CategorySortOrder   int32
}

// ListOrderLineDetails returns an order's lines in insertion order, each
// joined with its menu item and category.
func (q *Queries) ListOrderLineDetails(ctx context.Context, orderID uuid.UUID) ([]ListOrderLineDetailsRow, error) {
	rows, err := q.db.Query(ctx, listOrderLineDetails, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOrderLineDetailsRow
	for rows.Next() {
		var r ListOrderLineDetailsRow
		if err := rows.Scan(
			&r.ID, &r.OrderID, &r.MenuItemID, &r.Quantity, &r.UnitPrice, &r.CreatedAt,
			&r.CategoryID, &r.ItemName, &r.ItemDescription, &r.ItemPrice,
			&r.IsVegetarian, &r.IsVegan, &r.SpiceLevel, &r.IsAvailable,
			&r.CategoryName, &r.CategoryDescription, &r.CategorySortOrder,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countOrders = `
SELECT COUNT(*) FROM orders
`

func (q *Queries) CountOrders(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countOrders)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countOrdersByStatus = `
SELECT status, COUNT(*)
FROM orders
GROUP BY status
`

type CountOrdersByStatusRow struct {
	Status string
	Count  int64
}

func (q *Queries) CountOrdersByStatus(ctx context.Context) ([]CountOrdersByStatusRow, error) {
	rows, err := q.db.Query(ctx, countOrdersByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountOrdersByStatusRow
	for rows.Next() {
		var r CountOrdersByStatusRow
		if err := rows.Scan(&r.Status, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
