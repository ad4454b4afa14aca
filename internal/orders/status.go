package orders

import "github.com/phamdt203/zenmart-backend/pkg/enums"

// allowedTransitions is the complete lifecycle graph. Delivered and canceled
// are terminal; cancel_requested can be resolved either way by an admin.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendingConfirmation: {
		enums.OrderStatusWaitingForPickup,
		enums.OrderStatusCanceled,
	},
	enums.OrderStatusWaitingForPickup: {
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelRequested,
	},
	enums.OrderStatusCancelRequested: {
		enums.OrderStatusCanceled,
		enums.OrderStatusWaitingForPickup,
	},
}

// CanTransition reports whether an order may move from one status to another.
// A same-status transition is not part of the graph; callers treat it as a
// no-op before consulting this.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
