package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{OrderPending, OrderPaid, OrderShipped, OrderCompleted, OrderCancelled} {
		assert.True(t, ValidOrderStatus(s), s)
	}
	assert.False(t, ValidOrderStatus("refunded"))
	assert.False(t, ValidOrderStatus(""))
}

func TestCanTransitionOrder(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderPending, OrderPaid, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderPending, OrderCompleted, false},
		{OrderPaid, OrderShipped, true},
		{OrderPaid, OrderCancelled, true},
		{OrderPaid, OrderCompleted, false},
		{OrderShipped, OrderCompleted, true},
		{OrderShipped, OrderCancelled, true},
		{OrderShipped, OrderPaid, false},
		// Terminal statuses go nowhere
		{OrderCompleted, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderCancelled, OrderPaid, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransitionOrder(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCanTransitionOrder_SameStatusIsAllowed(t *testing.T) {
	for _, s := range []string{OrderPending, OrderPaid, OrderShipped, OrderCompleted, OrderCancelled} {
		assert.True(t, CanTransitionOrder(s, s), s)
	}
}
