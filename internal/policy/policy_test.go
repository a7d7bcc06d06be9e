package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/saffron-pos/api/internal/enum"
)

func actor(role string) *Actor {
	return &Actor{ID: uuid.New(), Username: "staff", Role: role}
}

func TestValidateCoversAllStatuses(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("policy table invalid: %v", err)
	}
}

func TestRolesForStatus(t *testing.T) {
	tests := []struct {
		status string
		want   []string
	}{
		{enum.OrderStatusAccepted, []string{enum.RoleReception}},
		{enum.OrderStatusClosed, []string{enum.RoleReception}},
		{enum.OrderStatusPreparing, []string{enum.RoleChef}},
		{enum.OrderStatusReady, []string{enum.RoleChef}},
		{enum.OrderStatusServed, []string{enum.RoleChef}},
		{enum.OrderStatusPending, []string{enum.RoleWaiter, enum.RoleReception, enum.RoleChef}},
	}

	for _, tt := range tests {
		roles, ok := RolesForStatus(tt.status)
		if !ok {
			t.Errorf("%s: no policy entry", tt.status)
			continue
		}
		if len(roles) != len(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.status, roles, tt.want)
			continue
		}
		for i := range roles {
			if roles[i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.status, roles, tt.want)
			}
		}
	}
}

func TestRolesForStatusUnknown(t *testing.T) {
	if _, ok := RolesForStatus("invalid_status"); ok {
		t.Error("expected no policy entry for undefined status")
	}
}

func TestAllowed(t *testing.T) {
	reception := []string{enum.RoleReception}

	if Allowed(nil, reception) {
		t.Error("unauthenticated actor must never pass")
	}
	if Allowed(actor(enum.RoleChef), reception) {
		t.Error("chef must not pass a reception-only check")
	}
	if !Allowed(actor(enum.RoleReception), reception) {
		t.Error("reception must pass a reception-only check")
	}
}

func TestAllowedSuperuserBypassesRoles(t *testing.T) {
	su := &Actor{ID: uuid.New(), Username: "admin", Role: enum.RoleWaiter, IsSuperuser: true}
	if !Allowed(su, []string{enum.RoleReception}) {
		t.Error("superuser must pass any role check")
	}
	if !Allowed(su, nil) {
		t.Error("superuser must pass an empty role set")
	}
}
