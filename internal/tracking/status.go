package tracking

// Cargo lifecycle states as reported by the tracking system.
const (
	StatusNotShipped    = "NOT_SHIPPED"
	StatusInTransit     = "IN_TRANSIT"
	StatusPortArrival   = "PORT_ARRIVAL"
	StatusCustoms       = "CUSTOMS"
	StatusWarehouse     = "WAREHOUSE"
	StatusSiteDelivered = "SITE_DELIVERED"
	StatusDelayed       = "DELAYED"
	StatusUnknown       = "UNKNOWN"
)

// KnownStatuses lists every recognized state, in lifecycle order.
var KnownStatuses = []string{
	StatusNotShipped,
	StatusInTransit,
	StatusPortArrival,
	StatusCustoms,
	StatusWarehouse,
	StatusSiteDelivered,
	StatusDelayed,
	StatusUnknown,
}

func isKnownStatus(status string) bool {
	for _, s := range KnownStatuses {
		if s == status {
			return true
		}
	}
	return false
}
