// Package redistest provides an in-memory stand-in for the few Redis
// commands the services use.
package redistest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// KV ignores expirations but records them for assertions.
type KV struct {
	mu   sync.Mutex
	vals map[string]string
	ttls map[string]time.Duration
}

func NewKV() *KV {
	return &KV{vals: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (k *KV) Get(_ context.Context, key string) *goredis.StringCmd {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.vals[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (k *KV) Set(_ context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd {
	k.mu.Lock()
	defer k.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		k.vals[key] = string(v)
	case string:
		k.vals[key] = v
	default:
		k.vals[key] = fmt.Sprint(v)
	}
	k.ttls[key] = expiration
	return goredis.NewStatusResult("OK", nil)
}

func (k *KV) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	k.mu.Lock()
	defer k.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := k.vals[key]; ok {
			delete(k.vals, key)
			delete(k.ttls, key)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func (k *KV) Incr(_ context.Context, key string) *goredis.IntCmd {
	k.mu.Lock()
	defer k.mu.Unlock()
	n, _ := strconv.ParseInt(k.vals[key], 10, 64)
	n++
	k.vals[key] = strconv.FormatInt(n, 10)
	return goredis.NewIntResult(n, nil)
}

func (k *KV) Expire(_ context.Context, key string, expiration time.Duration) *goredis.BoolCmd {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.vals[key]; !ok {
		return goredis.NewBoolResult(false, nil)
	}
	k.ttls[key] = expiration
	return goredis.NewBoolResult(true, nil)
}

// TTL returns the last expiration set on key.
func (k *KV) TTL(key string) time.Duration {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ttls[key]
}

// Has reports whether key is present.
func (k *KV) Has(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.vals[key]
	return ok
}
