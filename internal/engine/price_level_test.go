package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidar/internal/common"
)

func TestPriceLevel_AggregateVolume(t *testing.T) {
	level := newPriceLevel(d(100))
	assert.True(t, level.Volume().IsZero())
	assert.True(t, level.empty())

	a := limit(1, common.Sell, 100, 10)
	b := limit(2, common.Sell, 100, 5)
	level.push(a)
	level.push(b)

	assert.Equal(t, 2, level.Len())
	assert.True(t, level.Volume().Equal(d(15)))
	assert.Equal(t, a, level.head())

	// A partially filled order contributes only its remainder.
	c := limit(3, common.Sell, 100, 10)
	c.Filled = d(4)
	level.push(c)
	assert.True(t, level.Volume().Equal(d(21)))

	// Partial fill of the head.
	a.Filled = d(6)
	level.reduce(d(6))
	assert.True(t, level.Volume().Equal(d(15)))

	// Full consumption of the head.
	a.Filled = d(10)
	level.reduce(d(4))
	level.dropHead()
	assert.True(t, level.Volume().Equal(d(11)))
	assert.Equal(t, b, level.head())
}

func TestPriceLevel_Remove(t *testing.T) {
	level := newPriceLevel(d(100))
	a := limit(1, common.Sell, 100, 10)
	b := limit(2, common.Sell, 100, 5)
	c := limit(3, common.Sell, 100, 7)
	level.push(a)
	level.push(b)
	level.push(c)

	assert.Nil(t, level.remove(99))

	removed := level.remove(2)
	require.Equal(t, b, removed)
	assert.True(t, level.Volume().Equal(d(17)))
	// FIFO order preserved around the removal.
	assert.Equal(t, []*common.Order{a, c}, level.Orders())

	level.remove(1)
	level.remove(3)
	assert.True(t, level.empty())
	assert.True(t, level.Volume().IsZero())
}

func TestPriceLevel_OrdersIsACopy(t *testing.T) {
	level := newPriceLevel(d(100))
	level.push(limit(1, common.Sell, 100, 10))

	orders := level.Orders()
	orders[0] = nil
	assert.NotNil(t, level.head())
}
