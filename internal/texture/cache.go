// Package texture keeps a bounded in-memory cache of decoded images so
// scrolling a large grid stays responsive without unbounded memory growth.
//
// Entries are keyed by picture id and resolution tier; thumbnail and
// preview decodes of the same picture are cached independently because a
// grid and a single-image preview have very different memory/latency
// tradeoffs. Eviction is least-recently-used, O(1) via a doubly-linked
// recency list indexed by a map.
package texture

import (
	"container/list"
	"fmt"
	"image"
	"sync"

	"github.com/google/uuid"
)

// Tier selects the resolution an image is decoded at.
type Tier int

const (
	TierThumbnail Tier = iota
	TierPreview
)

func (t Tier) String() string {
	switch t {
	case TierThumbnail:
		return "thumbnail"
	case TierPreview:
		return "preview"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Key identifies one cached decode.
type Key struct {
	ID   uuid.UUID
	Tier Tier
}

// DecodeFunc produces the pixel data for a cache miss. It may be slow
// (disk and codec work) and is never invoked while the cache lock is held.
type DecodeFunc func() (image.Image, error)

type entry struct {
	key Key
	img image.Image
}

// Cache is a capacity-bounded LRU cache of decoded images. All methods
// are safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[Key]*list.Element
}

// NewCache creates a cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[Key]*list.Element),
	}
}

// GetOrDecode returns the cached image for (id, tier), marking it most
// recently used. On a miss it runs decode outside the lock, stores the
// result and evicts the least recently used entries over capacity. Two
// concurrent misses on the same key may both decode; the first stored
// result wins. A failed decode is never cached, so the next access
// retries.
func (c *Cache) GetOrDecode(id uuid.UUID, tier Tier, decode DecodeFunc) (image.Image, error) {
	key := Key{ID: id, Tier: tier}

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		img := el.Value.(*entry).img
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	img, err := decode()
	if err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", tier, id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		// Lost the race with a concurrent decode; keep the stored buffer.
		c.order.MoveToFront(el)
		return el.Value.(*entry).img, nil
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, img: img})
	for len(c.entries) > c.capacity {
		c.evictOldest()
	}
	return img, nil
}

// Peek reports the cached image for (id, tier) without touching recency
// and without decoding on a miss.
func (c *Cache) Peek(id uuid.UUID, tier Tier) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[Key{ID: id, Tier: tier}]
	if !ok {
		return nil, false
	}
	return el.Value.(*entry).img, true
}

// Invalidate drops every tier cached for id, for when the source file
// changed on disk or the record was deleted. Invalidating an absent id is
// a no-op.
func (c *Cache) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.entries {
		if key.ID == id {
			c.order.Remove(el)
			delete(c.entries, key)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the configured maximum entry count.
func (c *Cache) Capacity() int {
	return c.capacity
}

func (c *Cache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.entries, el.Value.(*entry).key)
}
