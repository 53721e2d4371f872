package sync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/nhle/tasklists/internal/sync"
)

func TestPublish_InvokesHandlersInRegistrationOrder(t *testing.T) {
	ch := appsync.NewChannel()
	var order []int
	ch.Subscribe("A", func() { order = append(order, 1) })
	ch.Subscribe("A", func() { order = append(order, 2) })
	ch.Subscribe("A", func() { order = append(order, 3) })

	n := ch.Publish("A")

	assert.Equal(t, 3, n)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestPublish_IsPartitionedByListName(t *testing.T) {
	ch := appsync.NewChannel()
	var a, b int
	ch.Subscribe("A", func() { a++ })
	ch.Subscribe("B", func() { b++ })

	ch.Publish("A")

	assert.Equal(t, 1, a)
	assert.Equal(t, 0, b)
}

func TestPublish_NoSubscribers(t *testing.T) {
	ch := appsync.NewChannel()
	assert.Equal(t, 0, ch.Publish("nobody"))
}

func TestUnsubscribe(t *testing.T) {
	ch := appsync.NewChannel()
	var first, second int
	sub := ch.Subscribe("A", func() { first++ })
	ch.Subscribe("A", func() { second++ })

	ch.Unsubscribe(sub)
	ch.Publish("A")

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 1, ch.Subscribers("A"))
}

func TestUnsubscribe_UnknownIsNoop(t *testing.T) {
	ch := appsync.NewChannel()
	sub := ch.Subscribe("A", func() {})

	ch.Unsubscribe(sub)
	require.NotPanics(t, func() {
		ch.Unsubscribe(sub)
		ch.Unsubscribe(appsync.Subscription{ListName: "missing"})
	})
	assert.Equal(t, 0, ch.Subscribers("A"))
}

func TestPublish_NestedSameNameIsDropped(t *testing.T) {
	ch := appsync.NewChannel()
	calls := 0
	nested := -1
	ch.Subscribe("A", func() {
		calls++
		nested = ch.Publish("A")
	})

	ch.Publish("A")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, nested)

	// The guard is released once the outer publish returns.
	ch.Publish("A")
	assert.Equal(t, 2, calls)
}

func TestPublish_NestedOtherNameRuns(t *testing.T) {
	ch := appsync.NewChannel()
	var b int
	ch.Subscribe("B", func() { b++ })
	ch.Subscribe("A", func() { ch.Publish("B") })

	ch.Publish("A")

	assert.Equal(t, 1, b)
}

func TestPublish_UsesSnapshotOfHandlers(t *testing.T) {
	ch := appsync.NewChannel()
	var late, second int
	var sub2 appsync.Subscription
	ch.Subscribe("A", func() {
		ch.Subscribe("A", func() { late++ })
		ch.Unsubscribe(sub2)
	})
	sub2 = ch.Subscribe("A", func() { second++ })

	ch.Publish("A")

	// Handlers registered during publish wait for the next one; removed
	// handlers still run for the publish already in flight.
	assert.Equal(t, 0, late)
	assert.Equal(t, 1, second)

	ch.Publish("A")
	assert.Equal(t, 1, late)
	assert.Equal(t, 1, second)
}
