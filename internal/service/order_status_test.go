package service

import (
	"testing"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
)

func TestCanTransitionOrderStatus(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusPaid, true},
		{constants.OrderStatusPending, constants.OrderStatusFailed, true},
		{constants.OrderStatusPending, constants.OrderStatusShipped, false},
		{constants.OrderStatusPaid, constants.OrderStatusProcessing, true},
		{constants.OrderStatusPaid, constants.OrderStatusShipped, true},
		{constants.OrderStatusPaid, constants.OrderStatusPending, false},
		{constants.OrderStatusProcessing, constants.OrderStatusShipped, true},
		{constants.OrderStatusProcessing, constants.OrderStatusDelivered, false},
		{constants.OrderStatusShipped, constants.OrderStatusDelivered, true},
		{constants.OrderStatusDelivered, constants.OrderStatusShipped, false},
		{constants.OrderStatusFailed, constants.OrderStatusPaid, false},
		{constants.OrderStatusPaid, constants.OrderStatusPaid, false},
		{"  Paid ", "PROCESSING", true},
		{"unknown", constants.OrderStatusPaid, false},
	}

	for _, tc := range cases {
		if got := CanTransitionOrderStatus(tc.from, tc.to); got != tc.allowed {
			t.Fatalf("transition %q -> %q: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}
