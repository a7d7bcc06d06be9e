// Package policy maps staff roles to the order actions they may perform.
// Reception accepts and closes orders, the kitchen moves them through
// preparation, and any staff role may return an order to pending.
package policy

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/saffron-pos/api/internal/enum"
)

// Actor is a resolved staff identity. Session and token handling live in the
// auth layer; the policy only ever sees the result.
type Actor struct {
	ID          uuid.UUID
	Username    string
	Role        string
	IsSuperuser bool
}

// CreateOrderRoles is the role set required to create an order.
var CreateOrderRoles = []string{enum.RoleWaiter}

// statusRoles maps a destination order status to the roles permitted to
// request it. Superusers bypass the table entirely.
var statusRoles = map[string][]string{
	enum.OrderStatusPending:   {enum.RoleWaiter, enum.RoleReception, enum.RoleChef},
	enum.OrderStatusAccepted:  {enum.RoleReception},
	enum.OrderStatusPreparing: {enum.RoleChef},
	enum.OrderStatusReady:     {enum.RoleChef},
	enum.OrderStatusServed:    {enum.RoleChef},
	enum.OrderStatusClosed:    {enum.RoleReception},
}

// RolesForStatus returns the roles permitted to move an order to the given
// destination status. ok is false for an undefined status literal.
func RolesForStatus(status string) (roles []string, ok bool) {
	roles, ok = statusRoles[status]
	return roles, ok
}

// Allowed reports whether the actor satisfies the required role set.
// A nil actor (unauthenticated) never passes; a superuser always does.
func Allowed(actor *Actor, roles []string) bool {
	if actor == nil {
		return false
	}
	if actor.IsSuperuser {
		return true
	}
	for _, r := range roles {
		if actor.Role == r {
			return true
		}
	}
	return false
}

// Validate checks that the status-role table covers every defined order
// status with a non-empty role set. Called once at startup; a failure here
// is a programming error, not a runtime condition.
func Validate() error {
	for _, s := range enum.OrderStatuses() {
		roles, ok := statusRoles[s]
		if !ok {
			return fmt.Errorf("status %q has no role policy", s)
		}
		if len(roles) == 0 {
			return fmt.Errorf("status %q has an empty role set", s)
		}
	}
	if len(statusRoles) != len(enum.OrderStatuses()) {
		return fmt.Errorf("role policy defines %d statuses, want %d", len(statusRoles), len(enum.OrderStatuses()))
	}
	return nil
}
