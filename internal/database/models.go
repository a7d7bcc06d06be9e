package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID
	Username       string
	HashedPassword string
	Role           string
	IsSuperuser    bool
	CreatedAt      time.Time
}

type MenuCategory struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	SortOrder   int32
}

type MenuItem struct {
	ID           uuid.UUID
	CategoryID   uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	IsVegetarian bool
	IsVegan      bool
	SpiceLevel   pgtype.Text
	IsAvailable  bool
}

type Order struct {
	ID          uuid.UUID
	GuestName   string
	TableNumber string
	WaiterID    pgtype.UUID
	Status      string
	CreatedAt   time.Time
}

type OrderLine struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Quantity   int32
	UnitPrice  pgtype.Numeric
	CreatedAt  time.Time
}
