package states

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	for _, value := range Values() {
		status, ok := FromString(value)
		require.True(t, ok)
		assert.Equal(t, value, status.String())
	}

	_, ok := FromString("shipped")
	assert.False(t, ok)
	_, ok = FromString("")
	assert.False(t, ok)
}

func TestStatusProperties(t *testing.T) {
	assert.True(t, OrderPlacedStatus.HoldsStock())
	assert.True(t, OrderApprovedStatus.HoldsStock())
	assert.False(t, OrderDoneStatus.HoldsStock())
	assert.False(t, OrderCancelledStatus.HoldsStock())

	assert.True(t, OrderDoneStatus.IsTerminal())
	assert.True(t, OrderCancelledStatus.IsTerminal())
	assert.False(t, OrderPlacedStatus.IsTerminal())
}

func TestStrictPolicy(t *testing.T) {
	policy := NewTransitionPolicy(true)
	legal := [][2]OrderStatus{
		{OrderPlacedStatus, OrderApprovedStatus},
		{OrderApprovedStatus, OrderDoneStatus},
		{OrderPlacedStatus, OrderCancelledStatus},
		{OrderApprovedStatus, OrderCancelledStatus},
	}
	for _, pair := range legal {
		assert.NoError(t, policy.Check(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	illegal := [][2]OrderStatus{
		{OrderPlacedStatus, OrderDoneStatus},
		{OrderDoneStatus, OrderPlacedStatus},
		{OrderDoneStatus, OrderCancelledStatus},
		{OrderApprovedStatus, OrderPlacedStatus},
		{OrderPlacedStatus, OrderPlacedStatus},
	}
	for _, pair := range illegal {
		err := policy.Check(pair[0], pair[1])
		assert.True(t, errors.Is(err, ErrorIllegalTransition), "%s -> %s", pair[0], pair[1])
	}
}

func TestPermissivePolicy(t *testing.T) {
	policy := NewTransitionPolicy(false)
	assert.False(t, policy.Strict())
	assert.NoError(t, policy.Check(OrderPlacedStatus, OrderDoneStatus))
	assert.NoError(t, policy.Check(OrderDoneStatus, OrderPlacedStatus))
	assert.NoError(t, policy.Check(OrderCancelledStatus, OrderCancelledStatus))

	err := policy.Check(OrderCancelledStatus, OrderPlacedStatus)
	assert.True(t, errors.Is(err, ErrorReopenCancelled))
}
