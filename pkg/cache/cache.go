// Package cache provides the in-process object cache used for form metadata
// and remote contact defaults. Entries live in per-namespace LRUs with their
// own time-to-live, so a namespace such as the 24h contact defaults can
// outlive the short-lived form meta entries without a second cache instance.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultSize = 512
	DefaultTTL  = 5 * time.Minute
)

// Option configures a Memory cache before construction.
type Option func(*config)

type config struct {
	size int
	ttl  time.Duration
	ttls map[string]time.Duration
}

// WithSize caps the number of entries per namespace.
func WithSize(size int) Option {
	return func(cfg *config) {
		if size > 0 {
			cfg.size = size
		}
	}
}

// WithTTL sets the default time-to-live. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(cfg *config) {
		if ttl >= 0 {
			cfg.ttl = ttl
		}
	}
}

// WithNamespaceTTL overrides the time-to-live for a single namespace.
func WithNamespaceTTL(namespace string, ttl time.Duration) Option {
	return func(cfg *config) {
		name := strings.TrimSpace(namespace)
		if name == "" || ttl < 0 {
			return
		}
		if cfg.ttls == nil {
			cfg.ttls = make(map[string]time.Duration)
		}
		cfg.ttls[name] = ttl
	}
}

// Memory is a concurrency safe namespaced cache. Values are copied on the way
// in and out so callers cannot mutate cached bytes.
type Memory struct {
	mu     sync.Mutex
	cfg    config
	spaces map[string]*expirable.LRU[string, []byte]
}

// New constructs a Memory cache.
func New(options ...Option) *Memory {
	cfg := config{size: DefaultSize, ttl: DefaultTTL}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Memory{
		cfg:    cfg,
		spaces: make(map[string]*expirable.LRU[string, []byte]),
	}
}

// Get returns the value stored under namespace/key.
func (m *Memory) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	space := m.space(namespace, false)
	if space == nil {
		return nil, false, nil
	}
	value, ok := space.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set stores value under namespace/key.
func (m *Memory) Set(_ context.Context, namespace, key string, value []byte) error {
	m.space(namespace, true).Add(key, append([]byte(nil), value...))
	return nil
}

// Delete removes namespace/key.
func (m *Memory) Delete(_ context.Context, namespace, key string) error {
	if space := m.space(namespace, false); space != nil {
		space.Remove(key)
	}
	return nil
}

// Purge drops every entry in every namespace.
func (m *Memory) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, space := range m.spaces {
		space.Purge()
	}
}

// Len returns the number of live entries in namespace.
func (m *Memory) Len(namespace string) int {
	space := m.space(namespace, false)
	if space == nil {
		return 0
	}
	return space.Len()
}

func (m *Memory) space(namespace string, create bool) *expirable.LRU[string, []byte] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if space, ok := m.spaces[namespace]; ok {
		return space
	}
	if !create {
		return nil
	}
	ttl := m.cfg.ttl
	if override, ok := m.cfg.ttls[namespace]; ok {
		ttl = override
	}
	space := expirable.NewLRU[string, []byte](m.cfg.size, nil, ttl)
	m.spaces[namespace] = space
	return space
}
