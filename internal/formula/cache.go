package formula

import (
	"container/list"
	"sync"
)

// lruCache is a bounded least-recently-used cache of compiled programs keyed
// by literal formula text. A single mutex guards the whole get-or-compile
// path: contention is low relative to compile cost, and holding the lock
// across compilation guarantees at most one compile per distinct text.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

type cacheEntry struct {
	key     string
	program node
}

func newLRUCache(capacity int) *lruCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &lruCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// getOrCompile returns the cached program for key, compiling and inserting it
// on a miss. The least-recently-used entry is evicted when the cache is full.
func (c *lruCache) getOrCompile(key string, compile func() (node, error)) (node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).program, nil
	}

	program, err := compile()
	if err != nil {
		return nil, err
	}

	el := c.order.PushFront(&cacheEntry{key: key, program: program})
	c.items[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
	return program, nil
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *lruCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}
