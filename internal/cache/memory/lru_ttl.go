package memory

import (
	"container/list"
	"sync"
	"time"
)

type item[K comparable, V any] struct {
	key      K
	value    V
	deadline time.Time
}

// LRUTTL is a threadsafe LRU cache with a shared TTL for all entries.
type LRUTTL[K comparable, V any] struct {
	mu      sync.Mutex
	ll      *list.List
	byKey   map[K]*list.Element
	maxSize int
	ttl     time.Duration
}

func NewLRUTTL[K comparable, V any](maxSize int, ttl time.Duration) *LRUTTL[K, V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LRUTTL[K, V]{
		ll:      list.New(),
		byKey:   make(map[K]*list.Element),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func (c *LRUTTL[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ele, ok := c.byKey[key]
	if !ok {
		return zero, false
	}
	it := ele.Value.(*item[K, V])
	if time.Now().After(it.deadline) {
		c.ll.Remove(ele)
		delete(c.byKey, key)
		return zero, false
	}
	c.ll.MoveToFront(ele)
	return it.value, true
}

func (c *LRUTTL[K, V]) Set(key K, value V) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline := time.Now().Add(c.ttl)
	if ele, ok := c.byKey[key]; ok {
		it := ele.Value.(*item[K, V])
		it.value = value
		it.deadline = deadline
		c.ll.MoveToFront(ele)
		return
	}
	c.byKey[key] = c.ll.PushFront(&item[K, V]{key: key, value: value, deadline: deadline})
	for c.ll.Len() > c.maxSize {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.byKey, oldest.Value.(*item[K, V]).key)
	}
}

func (c *LRUTTL[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.byKey[key]; ok {
		c.ll.Remove(ele)
		delete(c.byKey, key)
	}
}

func (c *LRUTTL[K, V]) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll = list.New()
	c.byKey = make(map[K]*list.Element)
}

func (c *LRUTTL[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
