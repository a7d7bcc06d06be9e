package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saffron-pos/api/internal/database"
	"github.com/saffron-pos/api/internal/policy"
)

type mockLifecycleStore struct {
	orders      map[uuid.UUID]database.Order
	updateErr   error
	updateCalls []database.UpdateOrderStatusParams
}

func (m *mockLifecycleStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return order, nil
}

func (m *mockLifecycleStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	if m.updateErr != nil {
		return database.Order{}, m.updateErr
	}
	m.updateCalls = append(m.updateCalls, arg)
	order := m.orders[arg.ID]
	order.Status = arg.Status
	m.orders[arg.ID] = order
	return order, nil
}

func waiter() *policy.Actor    { return &policy.Actor{ID: uuid.New(), Username: "priya", Role: "waiter"} }
func chef() *policy.Actor      { return &policy.Actor{ID: uuid.New(), Username: "arjun", Role: "chef"} }
func reception() *policy.Actor { return &policy.Actor{ID: uuid.New(), Username: "meera", Role: "reception"} }
func superuser() *policy.Actor {
	return &policy.Actor{ID: uuid.New(), Username: "admin", Role: "waiter", IsSuperuser: true}
}

func newLifecycleFixture(status string) (*LifecycleService, *mockLifecycleStore, uuid.UUID) {
	orderID := uuid.New()
	store := &mockLifecycleStore{
		orders: map[uuid.UUID]database.Order{
			orderID: {ID: orderID, GuestName: "Asha", TableNumber: "T7", Status: status},
		},
	}
	return NewLifecycleService(store), store, orderID
}

func TestChangeStatus_RolePolicy(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		actor   *policy.Actor
		wantErr error
	}{
		{"chef may mark preparing", "preparing", chef(), nil},
		{"chef may mark ready", "ready", chef(), nil},
		{"chef may mark served", "served", chef(), nil},
		{"chef may not accept", "accepted", chef(), ErrStatusForbidden},
		{"chef may not close", "closed", chef(), ErrStatusForbidden},
		{"reception may accept", "accepted", reception(), nil},
		{"reception may close", "closed", reception(), nil},
		{"reception may not mark ready", "ready", reception(), ErrStatusForbidden},
		{"waiter may mark pending", "pending", waiter(), nil},
		{"waiter may not mark preparing", "preparing", waiter(), ErrStatusForbidden},
		{"superuser may accept", "accepted", superuser(), nil},
		{"superuser may mark ready", "ready", superuser(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, orderID := newLifecycleFixture("pending")

			order, err := svc.ChangeStatus(context.Background(), orderID, tt.status, tt.actor)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error: got %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(store.updateCalls) != 0 {
					t.Error("status written despite policy denial")
				}
				return
			}
			if order.Status != tt.status {
				t.Errorf("status: got %s, want %s", order.Status, tt.status)
			}
		})
	}
}

func TestChangeStatus_UnknownStatus(t *testing.T) {
	svc, store, orderID := newLifecycleFixture("pending")

	_, err := svc.ChangeStatus(context.Background(), orderID, "invalid_status", superuser())
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("error: got %v, want ErrInvalidStatus", err)
	}
	if len(store.updateCalls) != 0 {
		t.Error("status written despite invalid destination")
	}
}

func TestChangeStatus_OrderNotFound(t *testing.T) {
	svc, _, _ := newLifecycleFixture("pending")

	_, err := svc.ChangeStatus(context.Background(), uuid.New(), "accepted", reception())
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("error: got %v, want ErrOrderNotFound", err)
	}
}

// A missing order reports not-found even when the status is bogus and the
// caller has no role for it. Existence is checked first.
func TestChangeStatus_NotFoundWinsOverBadStatus(t *testing.T) {
	svc, _, _ := newLifecycleFixture("pending")

	_, err := svc.ChangeStatus(context.Background(), uuid.New(), "invalid_status", chef())
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("error: got %v, want ErrOrderNotFound", err)
	}
}

func TestChangeStatus_RepeatIsIdempotent(t *testing.T) {
	svc, store, orderID := newLifecycleFixture("pending")

	for i := 0; i < 2; i++ {
		order, err := svc.ChangeStatus(context.Background(), orderID, "accepted", reception())
		if err != nil {
			t.Fatalf("change %d: %v", i+1, err)
		}
		if order.Status != "accepted" {
			t.Fatalf("change %d: status %s, want accepted", i+1, order.Status)
		}
	}
	if len(store.updateCalls) != 2 {
		t.Errorf("update calls: got %d, want 2", len(store.updateCalls))
	}
}

// Any destination is reachable from any current status.
func TestChangeStatus_BackwardMoveAllowed(t *testing.T) {
	svc, _, orderID := newLifecycleFixture("served")

	order, err := svc.ChangeStatus(context.Background(), orderID, "preparing", chef())
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if order.Status != "preparing" {
		t.Errorf("status: got %s, want preparing", order.Status)
	}
}
