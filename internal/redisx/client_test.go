package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestJSONRoundTripAndMiss(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	var out []string
	found, err := GetJSON(ctx, rdb, BookedMonth(2025, 12), &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, rdb, BookedMonth(2025, 12), []string{"2025-12-25"}, time.Minute))
	found, err = GetJSON(ctx, rdb, BookedMonth(2025, 12), &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"2025-12-25"}, out)
}

func TestFirstSeen(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	first, err := FirstSeen(ctx, rdb, "worker", "evt-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := FirstSeen(ctx, rdb, "worker", "evt-1")
	require.NoError(t, err)
	assert.False(t, again)
}

func TestInvalidateOrder(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(OrderView(7), "{}"))
	require.NoError(t, mr.Set(KeyBookedAll, "[]"))
	require.NoError(t, mr.Set(BookedMonth(2026, 3), "[]"))
	require.NoError(t, mr.Set(BookedMonth(2026, 4), "[]"))

	require.NoError(t, InvalidateOrder(ctx, rdb, 7, "2026-03-14"))

	assert.False(t, mr.Exists(OrderView(7)))
	assert.False(t, mr.Exists(KeyBookedAll))
	assert.False(t, mr.Exists(BookedMonth(2026, 3)))
	assert.True(t, mr.Exists(BookedMonth(2026, 4)))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "booked:2025-01", BookedMonth(2025, 1))
	assert.Equal(t, "order_view:12", OrderView(12))
	assert.Equal(t, "dedup:worker:abc", Dedup("worker", "abc"))
}
