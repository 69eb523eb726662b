package memo

import (
	"context"
	"sync"
	"time"
)

// FetchFunc 是单个 key 的实际取数逻辑，每个 key 在条目有效期内只会被调用一次。
type FetchFunc[V any] func(ctx context.Context, key string) (V, error)

// Options 控制缓存行为。TTL 为 0 时条目永不过期。
type Options struct {
	TTL time.Duration
}

// Cache 将 key 映射到进行中或已完成的一次取数结果。
type Cache[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry[V]
}

// entry 在 done 关闭前代表进行中的请求，关闭后 value/err 只读。
type entry[V any] struct {
	done     chan struct{}
	value    V
	err      error
	storedAt time.Time
}

// New 构造一个空缓存，默认使用 time.Now 作为时钟。
func New[V any](opts Options) *Cache[V] {
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &Cache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry[V]),
	}
}

// Do 返回 key 对应的结果：首次调用触发 fetch，其余调用等待并共享同一结果（包括错误）。
// fetch 脱离首个调用方的取消信号运行；调用方自身的 ctx 结束时只会放弃等待。
func (c *Cache[V]) Do(ctx context.Context, key string, fetch FetchFunc[V]) (V, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && c.expired(e) {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		e = &entry[V]{done: make(chan struct{})}
		c.entries[key] = e
		c.mu.Unlock()
		go c.run(context.WithoutCancel(ctx), key, e, fetch)
	} else {
		c.mu.Unlock()
	}

	select {
	case <-e.done:
		return e.value, e.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (c *Cache[V]) run(ctx context.Context, key string, e *entry[V], fetch FetchFunc[V]) {
	defer close(e.done)
	e.value, e.err = fetch(ctx, key)
	c.mu.Lock()
	e.storedAt = c.now()
	c.mu.Unlock()
}

// Outcome 是一次已完成取数的结果快照。
type Outcome[V any] struct {
	Value V
	Err   error
}

// Lookup 返回已完成且未过期的条目；进行中或不存在时 ok 为 false。
func (c *Cache[V]) Lookup(key string) (Outcome[V], bool) {
	c.mu.Lock()
	e, exists := c.entries[key]
	c.mu.Unlock()
	if !exists {
		return Outcome[V]{}, false
	}

	select {
	case <-e.done:
	default:
		return Outcome[V]{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired(e) {
		return Outcome[V]{}, false
	}
	return Outcome[V]{Value: e.value, Err: e.err}, true
}

// Store 直接写入一个已完成的成功结果，覆盖同 key 的已有条目。
// 已在等待旧条目的调用方仍会拿到旧条目的结果。
func (c *Cache[V]) Store(key string, value V) {
	e := &entry[V]{done: make(chan struct{}), value: value}
	close(e.done)

	c.mu.Lock()
	defer c.mu.Unlock()
	e.storedAt = c.now()
	c.entries[key] = e
}

// Invalidate 删除 key 对应的条目，下一次 Do 会重新取数。返回条目是否存在。
func (c *Cache[V]) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Len 返回当前条目数（含进行中的请求）。
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// expired 需在持有 c.mu 时调用；进行中的条目永不过期。
func (c *Cache[V]) expired(e *entry[V]) bool {
	if c.ttl <= 0 || e.storedAt.IsZero() {
		return false
	}
	return !c.now().Before(e.storedAt.Add(c.ttl))
}
