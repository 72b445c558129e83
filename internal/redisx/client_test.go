package redisx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientIsNoop(t *testing.T) {
	ctx := context.Background()
	var c *Client

	ok, err := c.Claim(ctx, DedupKey("rewards", "e1"), "1", TTLDedup)
	require.NoError(t, err)
	assert.True(t, ok)

	var out map[string]string
	hit, err := c.GetJSON(ctx, OrderStatusKey("o1"), &out)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, c.SetJSON(ctx, OrderStatusKey("o1"), map[string]string{"status": "pending"}, TTLStatusCache))
	assert.NoError(t, c.Del(ctx, OrderStatusKey("o1")))
	assert.NoError(t, c.Close())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "idem:checkout:u1:abc", IdemCheckoutKey("u1", "abc"))
	assert.Equal(t, "order_status:o1", OrderStatusKey("o1"))
	assert.Equal(t, "dedup:rewards:e1", DedupKey("rewards", "e1"))
}
