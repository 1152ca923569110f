// Package partial caches independently addressable template fragments.
package partial

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrNotFound is returned when resolving a name that was never registered.
var ErrNotFound = errors.New("partial: not found")

// RenderFunc produces the fragment of one partial.
type RenderFunc func() (string, error)

// Observer receives cache lookups. hit is false when the fragment had to be
// rendered.
type Observer func(name string, hit bool)

type entry struct {
	render   RenderFunc
	inline   bool
	once     sync.Mutex
	rendered bool
	output   string
}

// Cache holds the partials of one template. A fragment renders at most once
// per cache lifetime.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	order    []string
	observer Observer
}

// Option configures a Cache.
type Option func(*Cache)

// WithObserver reports every Resolve call to fn.
func WithObserver(fn Observer) Option {
	return func(c *Cache) {
		c.observer = fn
	}
}

// NewCache returns an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{entries: make(map[string]*entry)}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Register stores render under name. Only the first registration of a name
// is kept; it reports whether this call stored the entry.
func (c *Cache) Register(name string, render RenderFunc, inline bool) bool {
	if render == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[name]; exists {
		return false
	}
	c.entries[name] = &entry{render: render, inline: inline}
	c.order = append(c.order, name)
	return true
}

// Resolve returns the fragment for name, rendering it on first use. A failed
// render is not cached.
func (c *Cache) Resolve(name string) (string, error) {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	e.once.Lock()
	defer e.once.Unlock()

	if e.rendered {
		c.observe(name, true)
		return e.output, nil
	}
	c.observe(name, false)

	output, err := e.render()
	if err != nil {
		return "", fmt.Errorf("partial: render %q: %w", name, err)
	}
	e.output = output
	e.rendered = true
	return output, nil
}

// Has reports whether name is registered.
func (c *Cache) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

// Inline reports whether name renders at its definition site.
func (c *Cache) Inline(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	return ok && e.inline
}

// Names returns the registered names in registration order.
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.order = nil
}

func (c *Cache) observe(name string, hit bool) {
	if c.observer != nil {
		c.observer(name, hit)
	}
}

// Store keeps one Cache per template key. Dropping a key is how the partial
// lifetime follows template cache invalidation.
type Store struct {
	mu     sync.Mutex
	caches map[string]*Cache
	opts   []Option
}

// NewStore returns an empty store; opts apply to every cache it creates.
func NewStore(opts ...Option) *Store {
	return &Store{
		caches: make(map[string]*Cache),
		opts:   opts,
	}
}

// For returns the cache for key, creating it on first use.
func (s *Store) For(key string) *Cache {
	s.mu.Lock()
	defer s.mu.Unlock()
	cache, ok := s.caches[key]
	if !ok {
		cache = NewCache(s.opts...)
		s.caches[key] = cache
	}
	return cache
}

// Lookup returns the cache for key without creating it.
func (s *Store) Lookup(key string) (*Cache, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cache, ok := s.caches[key]
	return cache, ok
}

// Drop forgets the caches for keys.
func (s *Store) Drop(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.caches, key)
	}
}

// Reset forgets every cache.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caches = make(map[string]*Cache)
}

// Keys returns the template keys holding a cache.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.caches))
	for key := range s.caches {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
