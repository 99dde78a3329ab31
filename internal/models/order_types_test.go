package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusPreparing, true},
		{OrderStatusPaid, OrderStatusCancelled, true},
		{OrderStatusPreparing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},

		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusPreparing, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatusPaid, OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OrderStatusCanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStatusesHaveNoEdges(t *testing.T) {
	for _, terminal := range []string{OrderStatusDelivered, OrderStatusCancelled} {
		for _, to := range []string{
			OrderStatusPending, OrderStatusPaid, OrderStatusPreparing,
			OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
		} {
			assert.False(t, OrderStatusCanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	assert.True(t, IsValidOrderStatus("pending"))
	assert.True(t, IsValidOrderStatus("cancelled"))
	assert.False(t, IsValidOrderStatus("refunded"))
	assert.False(t, IsValidOrderStatus(""))
}
