package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// GetJSON returns found=false on a cache miss; any other error is a real Redis failure.
func GetJSON(ctx context.Context, rdb redis.Cmdable, key string, out any) (found bool, err error) {
	b, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func SetJSON(ctx context.Context, rdb redis.Cmdable, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// FirstSeen menandai id sebagai sudah diproses; false berarti duplikat.
func FirstSeen(ctx context.Context, rdb redis.Cmdable, service, id string) (bool, error) {
	return rdb.SetNX(ctx, Dedup(service, id), "1", TTLDedup).Result()
}

// InvalidateOrder drops every cached view derived from one order, replacing a full page reload
// after a mutation. eventDate may be empty when unknown.
func InvalidateOrder(ctx context.Context, rdb redis.Cmdable, orderID int64, eventDate string) error {
	keys := []string{OrderView(orderID), KeyBookedAll}
	if t, err := time.Parse(time.DateOnly, eventDate); err == nil {
		keys = append(keys, BookedMonth(t.Year(), int(t.Month())))
	}
	return rdb.Del(ctx, keys...).Err()
}
