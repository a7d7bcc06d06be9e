package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusAccepted  = "accepted"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusClosed    = "closed"
)

// OrderStatuses returns every defined order status in lifecycle order.
func OrderStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusAccepted,
		OrderStatusPreparing,
		OrderStatusReady,
		OrderStatusServed,
		OrderStatusClosed,
	}
}

// IsValidOrderStatus reports whether s is one of the defined status literals.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusPreparing,
		OrderStatusReady, OrderStatusServed, OrderStatusClosed:
		return true
	}
	return false
}

// ── Staff roles (CHECK constrained in DB) ──

const (
	RoleWaiter    = "waiter"
	RoleReception = "reception"
	RoleChef      = "chef"
)

// ── Menu labels ──

const (
	SpiceLevelMild    = "mild"
	SpiceLevelMedium  = "medium"
	SpiceLevelHot     = "hot"
	SpiceLevelVeryHot = "very_hot"
)

// IsValidSpiceLevel reports whether s is one of the defined spice labels.
func IsValidSpiceLevel(s string) bool {
	switch s {
	case SpiceLevelMild, SpiceLevelMedium, SpiceLevelHot, SpiceLevelVeryHot:
		return true
	}
	return false
}
