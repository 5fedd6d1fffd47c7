package stockcache

import (
	"fmt"
	"strconv"
	"time"

	"wms.GO/config"
	"wms.GO/core/cache"
)

// TTL for cached quantities. Writes invalidate eagerly, so the TTL only
// covers out-of-process writers.
const ttl = 60 * time.Second

func key(msku string, locationID uint) string {
	return fmt.Sprintf("stock:%s:%d", msku, locationID)
}

// Get returns a cached quantity. Uses Redis when configured, the
// in-process cache otherwise.
func Get(msku string, locationID uint) (int, bool) {
	k := key(msku, locationID)
	if config.RedisClient != nil {
		val, err := config.RedisClient.Get(config.RedisCtx(), k).Result()
		if err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	v, ok := cache.GetInstance().Get(k)
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// Set stores a quantity.
func Set(msku string, locationID uint, quantity int) {
	k := key(msku, locationID)
	if config.RedisClient != nil {
		config.RedisClient.Set(config.RedisCtx(), k, strconv.Itoa(quantity), ttl)
		return
	}
	cache.GetInstance().Set(k, quantity, int64(ttl/time.Second), []string{"stock"})
}

// Invalidate drops the cached quantity for one (msku, location).
func Invalidate(msku string, locationID uint) {
	k := key(msku, locationID)
	if config.RedisClient != nil {
		config.RedisClient.Del(config.RedisCtx(), k)
		return
	}
	cache.GetInstance().Delete(k)
}

// Flush drops every cached quantity. Called after a ledger repair, when
// any cached value may be stale.
func Flush() {
	if config.RedisClient != nil {
		ctx := config.RedisCtx()
		iter := config.RedisClient.Scan(ctx, 0, "stock:*", 0).Iterator()
		for iter.Next(ctx) {
			config.RedisClient.Del(ctx, iter.Val())
		}
		return
	}
	cache.GetInstance().DeleteByTag("stock")
}
