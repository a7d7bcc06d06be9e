package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listMenuCategories = `
SELECT id, name, description, sort_order
FROM menu_categories
ORDER BY sort_order, name
`

func (q *Queries) ListMenuCategories(ctx context.Context) ([]MenuCategory, error) {
	rows, err := q.db.Query(ctx, listMenuCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuCategory
	for rows.Next() {
		var c MenuCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const getMenuCategory = `
SELECT id, name, description, sort_order
FROM menu_categories
WHERE id = $1
`

func (q *Queries) GetMenuCategory(ctx context.Context, id uuid.UUID) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, getMenuCategory, id)
	var c MenuCategory
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder)
	return c, err
}

const createMenuCategory = `
INSERT INTO menu_categories (name, description, sort_order)
VALUES ($1, $2, $3)
RETURNING id, name, description, sort_order
`

type CreateMenuCategoryParams struct {
	Name        string
	Description pgtype.Text
	SortOrder   int32
}

func (q *Queries) CreateMenuCategory(ctx context.Context, arg CreateMenuCategoryParams) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, createMenuCategory, arg.Name, arg.Description, arg.SortOrder)
	var c MenuCategory
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder)
	return c, err
}

const listAvailableMenuItems = `
SELECT mi.id, mi.category_id, mi.name, mi.description, mi.price,
       mi.is_vegetarian, mi.is_vegan, mi.spice_level, mi.is_available
FROM menu_items mi
JOIN menu_categories mc ON mc.id = mi.category_id
WHERE mi.is_available
ORDER BY mc.sort_order, mc.name, mi.name
`

func (q *Queries) ListAvailableMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listAvailableMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.CategoryID, &m.Name, &m.Description, &m.Price,
			&m.IsVegetarian, &m.IsVegan, &m.SpiceLevel, &m.IsAvailable); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const getMenuItem = `
SELECT id, category_id, name, description, price,
       is_vegetarian, is_vegan, spice_level, is_available
FROM menu_items
WHERE id = $1
`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, id)
	var m MenuItem
	err := row.Scan(&m.ID, &m.CategoryID, &m.Name, &m.Description, &m.Price,
		&m.IsVegetarian, &m.IsVegan, &m.SpiceLevel, &m.IsAvailable)
	return m, err
}

const createMenuItem = `
INSERT INTO menu_items (category_id, name, description, price, is_vegetarian, is_vegan, spice_level, is_available)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, category_id, name, description, price, is_vegetarian, is_vegan, spice_level, is_available
`

type CreateMenuItemParams struct {
	CategoryID   uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	IsVegetarian bool
	IsVegan      bool
	SpiceLevel   pgtype.Text
	IsAvailable  bool
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.CategoryID, arg.Name, arg.Description, arg.Price,
		arg.IsVegetarian, arg.IsVegan, arg.SpiceLevel, arg.IsAvailable)
	var m MenuItem
	err := row.Scan(&m.ID, &m.CategoryID, &m.Name, &m.Description, &m.Price,
		&m.IsVegetarian, &m.IsVegan, &m.SpiceLevel, &m.IsAvailable)
	return m, err
}
