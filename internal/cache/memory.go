// internal/cache/memory.go
package cache

import (
	"container/list"
	"sync"
	"time"

	"github-sparks/internal/clock"
	"github-sparks/internal/model"
)

const (
	// DefaultMaxSize is the default number of topics held in memory.
	DefaultMaxSize = 100
	// DefaultTTL is how long an entry stays valid after it is written.
	DefaultTTL = 6 * time.Hour
)

// Option configures a Memory cache.
type Option func(*Memory)

// WithMaxSize sets the entry capacity. Non-positive values are ignored.
func WithMaxSize(n int) Option {
	return func(m *Memory) {
		if n > 0 {
			m.maxSize = n
		}
	}
}

// WithTTL sets the entry time-to-live. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

type entry struct {
	topic     string
	repos     []model.RankedRepository
	writtenAt time.Time
}

// Memory is a bounded, time-expiring topic -> ranked results map.
//
// Eviction follows insertion order: when full, the entry written first is
// dropped. Reads never change an entry's position. Expired entries are
// removed lazily by Get.
type Memory struct {
	mu      sync.Mutex
	clock   clock.Clock
	maxSize int
	ttl     time.Duration
	order   *list.List // front = oldest insertion
	entries map[string]*list.Element
}

// New creates an empty Memory cache.
func New(clk clock.Clock, opts ...Option) *Memory {
	m := &Memory{
		clock:   clk,
		maxSize: DefaultMaxSize,
		ttl:     DefaultTTL,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the cached results for topic. An expired entry is deleted and
// reported as absent.
func (m *Memory) Get(topic string) ([]model.RankedRepository, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.entries[topic]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if m.clock.Now().Sub(e.writtenAt) >= m.ttl {
		m.remove(el)
		return nil, false
	}
	return e.repos, true
}

// Set stores repos under topic. Overwriting a topic keeps its place in the
// eviction order; adding a new topic to a full cache evicts the oldest one.
func (m *Memory) Set(topic string, repos []model.RankedRepository) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if el, ok := m.entries[topic]; ok {
		e := el.Value.(*entry)
		e.repos = repos
		e.writtenAt = now
		return
	}

	if len(m.entries) >= m.maxSize {
		if oldest := m.order.Front(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.entries[topic] = m.order.PushBack(&entry{topic: topic, repos: repos, writtenAt: now})
}

// Clear drops every entry.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order.Init()
	m.entries = make(map[string]*list.Element)
}

// Size reports the number of stored entries, expired ones included.
func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.entries, el.Value.(*entry).topic)
}
