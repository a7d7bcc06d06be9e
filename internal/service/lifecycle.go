package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saffron-pos/api/internal/database"
	"github.com/saffron-pos/api/internal/enum"
	"github.com/saffron-pos/api/internal/policy"
)

// Errors returned by the lifecycle service.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrStatusForbidden = errors.New("insufficient role to change to this status")
)

// LifecycleStore defines the DB methods needed to change order status.
// Satisfied by *database.Queries.
type LifecycleStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// LifecycleService enforces the role policy on order status changes.
type LifecycleService struct {
	store LifecycleStore
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(store LifecycleStore) *LifecycleService {
	return &LifecycleService{store: store}
}

// ChangeStatus moves an order to the requested status on behalf of actor.
//
// The destination must be a defined status literal and the actor's role must
// be permitted for that destination. The write itself is unconditional: any
// destination is reachable from any current status, so repeating a change is
// harmless and concurrent changes are last-write-wins.
func (s *LifecycleService) ChangeStatus(ctx context.Context, orderID uuid.UUID, status string, actor *policy.Actor) (database.Order, error) {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}

	if !enum.IsValidOrderStatus(status) {
		return database.Order{}, ErrInvalidStatus
	}

	roles, ok := policy.RolesForStatus(status)
	if !ok {
		return database.Order{}, ErrInvalidStatus
	}
	if !policy.Allowed(actor, roles) {
		return database.Order{}, ErrStatusForbidden
	}

	order, err := s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:     orderID,
		Status: status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("update order status: %w", err)
	}
	return order, nil
}
