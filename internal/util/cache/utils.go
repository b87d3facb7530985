package cache_utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crmm/internal/cache"

	"github.com/valkey-io/valkey-go"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheTimeout = 10 * time.Second
	DefaultCacheExpiry  = 10 * time.Minute
	DefaultQueueTimeout = 30 * time.Second
)

type CacheUtil[T any] struct {
	client  valkey.Client
	prefix  string
	timeout time.Duration
	expiry  time.Duration

	loads singleflight.Group
}

func NewCacheUtil[T any](client valkey.Client, prefix string) *CacheUtil[T] {
	return &CacheUtil[T]{
		client:  client,
		prefix:  prefix,
		timeout: DefaultCacheTimeout,
		expiry:  DefaultCacheExpiry,
	}
}

func TestCacheConnection() {
	cacheUtil := NewCacheUtil[string](cache.GetCache(), "crmm_test:")

	testKey := "connection_test"
	testValue := "valkey_is_working"

	cacheUtil.Set(testKey, &testValue)

	retrievedValue := cacheUtil.Get(testKey)
	if retrievedValue == nil {
		panic("Cache test failed: could not retrieve cached value")
	}

	if *retrievedValue != testValue {
		panic("Cache test failed: retrieved value does not match expected")
	}

	cacheUtil.Invalidate(testKey)

	if cacheUtil.Get(testKey) != nil {
		panic("Cache test failed: test key was not properly invalidated")
	}
}

func (c *CacheUtil[T]) Get(key string) *T {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	result := c.client.Do(ctx, c.client.B().Get().Key(c.prefix+key).Build())
	if result.Error() != nil {
		return nil
	}

	data, err := result.AsBytes()
	if err != nil {
		return nil
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return nil
	}

	return &item
}

func (c *CacheUtil[T]) Set(key string, item *T) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	data, err := json.Marshal(item)
	if err != nil {
		return
	}

	c.client.Do(ctx, c.client.B().Set().Key(c.prefix+key).Value(string(data)).Ex(c.expiry).Build())
}

// GetOrLoad serves key from Valkey and falls back to load on a miss. Concurrent
// misses for the same key share one load call.
func (c *CacheUtil[T]) GetOrLoad(key string, load func() (*T, error)) (*T, error) {
	if cached := c.Get(key); cached != nil {
		return cached, nil
	}

	result, err, _ := c.loads.Do(key, func() (any, error) {
		return load()
	})
	if err != nil {
		return nil, err
	}

	item, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value type for key %s", key)
	}

	if item != nil {
		c.Set(key, item)
	}

	return item, nil
}

func (c *CacheUtil[T]) Invalidate(keys ...string) {
	if len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	fullKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		fullKeys = append(fullKeys, c.prefix+key)
	}

	c.client.Do(ctx, c.client.B().Del().Key(fullKeys...).Build())
}
