package cache

import (
	"errors"
	"sync"
	"time"
)

// expiryMargin treats entries as stale slightly before their real expiry,
// so a value handed out is still valid for at least this long.
const expiryMargin = 10 * time.Second

var ErrInvalidConfig = errors.New("cache: maxSize must be >= 1 and defaultTimeout > 0")

type node[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
	prev      *node[K, V]
	next      *node[K, V]
}

// TimedLRU is a size-bounded LRU cache with a per-entry expiry.
// Expired entries are purged lazily when read.
//
// The recency list is circular around a sentinel head: head.next is the most
// recently used entry and head.prev the least recently used one.
type TimedLRU[K comparable, V any] struct {
	mu             sync.Mutex
	items          map[K]*node[K, V]
	head           *node[K, V]
	defaultTimeout time.Duration
	maxSize        int
	now            func() time.Time
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func NewTimedLRU[K comparable, V any](defaultTimeout time.Duration, maxSize int, opts ...Option) (*TimedLRU[K, V], error) {
	if defaultTimeout <= 0 || maxSize < 1 {
		return nil, ErrInvalidConfig
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	head := &node[K, V]{}
	head.prev = head
	head.next = head

	return &TimedLRU[K, V]{
		items:          make(map[K]*node[K, V]),
		head:           head,
		defaultTimeout: defaultTimeout,
		maxSize:        maxSize,
		now:            o.now,
	}, nil
}

// MustNewTimedLRU is like NewTimedLRU but panics on invalid configuration.
func MustNewTimedLRU[K comparable, V any](defaultTimeout time.Duration, maxSize int, opts ...Option) *TimedLRU[K, V] {
	c, err := NewTimedLRU[K, V](defaultTimeout, maxSize, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Set stores value under key with the default timeout.
func (c *TimedLRU[K, V]) Set(key K, value V) {
	c.SetWithTimeout(key, value, c.defaultTimeout)
}

// SetWithTimeout stores value under key and marks it most recently used.
// A non-positive timeout falls back to the default.
func (c *TimedLRU[K, V]) SetWithTimeout(key K, value V, timeout time.Duration) {
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(timeout)

	if n, ok := c.items[key]; ok {
		n.value = value
		n.expiresAt = expiresAt
		c.unlink(n)
		c.pushFront(n)
		return
	}

	n := &node[K, V]{key: key, value: value, expiresAt: expiresAt}
	c.pushFront(n)
	c.items[key] = n

	if len(c.items) <= c.maxSize {
		return
	}

	oldest := c.head.prev
	c.unlink(oldest)
	delete(c.items, oldest.key)
}

// Get returns the value for key and marks it most recently used.
// An expired entry is removed and reported as missing.
func (c *TimedLRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	n, ok := c.items[key]
	if !ok {
		return zero, false
	}

	c.unlink(n)

	if !n.expiresAt.Add(-expiryMargin).After(c.now()) {
		delete(c.items, key)
		return zero, false
	}

	c.pushFront(n)
	return n.value, true
}

// Has reports whether key is present. Like Get, it promotes the entry and
// purges it when expired.
func (c *TimedLRU[K, V]) Has(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (c *TimedLRU[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	if !ok {
		return false
	}

	c.unlink(n)
	delete(c.items, key)
	return true
}

// Len returns the number of stored entries, including expired entries that
// have not been read since they expired.
func (c *TimedLRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *TimedLRU[K, V]) unlink(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = nil
	n.next = nil
}

func (c *TimedLRU[K, V]) pushFront(n *node[K, V]) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}
