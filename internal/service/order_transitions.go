package service

import "github.com/shiva/campusq/internal/model"

// Order actions, also used as the event name in the audit trail.
const (
	ActionCreate   = "create"
	ActionActivate = "activate_qr"
	ActionExpire   = "expire_qr"
	ActionCancel   = "cancel"
	ActionComplete = "complete"
)

// orderTransitions lists, per action, the statuses it may start from.
// Cancel accepts everything except COMPLETED; a repeat cancel restamps cancelledAt.
var orderTransitions = map[string][]model.OrderStatus{
	ActionActivate: {model.OrderPaid, model.OrderQRExpired},
	ActionExpire:   {model.OrderQRActive},
	ActionCancel:   {model.OrderPending, model.OrderPaid, model.OrderQRActive, model.OrderQRExpired, model.OrderCancelled},
	ActionComplete: {model.OrderQRActive},
}

// ValidOrderTransition reports whether action may be applied to an order in from.
func ValidOrderTransition(action string, from model.OrderStatus) bool {
	allowed, ok := orderTransitions[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}
