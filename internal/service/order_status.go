package service

import (
	"strings"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
)

// allowedTransitions is the order status machine. pending either fails
// at charge issuance or hands off to the downstream fulfillment
// statuses; nothing skips pending.
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusFailed: true,
		constants.OrderStatusPaid:   true,
	},
	constants.OrderStatusPaid: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusShipped:    true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
}

// CanTransitionOrderStatus reports whether the move is allowed.
func CanTransitionOrderStatus(from, to string) bool {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	if from == to {
		return false
	}
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}
