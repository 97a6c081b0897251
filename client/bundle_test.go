package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleAddMergesQuantity(t *testing.T) {
	b := newBundleList(NewMemoryKV())

	require.NoError(t, b.Add(Item{ProductID: "p1", Title: "Banana Chips", Price: 60}))
	require.NoError(t, b.Add(Item{ProductID: "p1", Quantity: 2}))
	require.NoError(t, b.Add(Item{ProductID: "p2", Title: "Murukku", Price: 80, Quantity: 1}))

	items := b.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity) // zero quantity defaults to 1
	assert.Equal(t, "p2", items[1].ProductID)
}

func TestBundleRemoveAndClear(t *testing.T) {
	b := newBundleList(NewMemoryKV())

	require.NoError(t, b.Add(Item{ProductID: "p1", Quantity: 1}))
	require.NoError(t, b.Add(Item{ProductID: "p2", Quantity: 1}))

	b.Remove("p1")
	b.Remove("p1") // absent product is a no-op
	require.Len(t, b.Items(), 1)

	b.Clear()
	assert.Empty(t, b.Items())

	assert.ErrorIs(t, b.Add(Item{}), ErrInvalidInput)
}
