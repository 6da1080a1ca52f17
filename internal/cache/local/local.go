// Package local is the in-process LRU tier of the result cache.
package local

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
)

type entry struct {
	val     []byte
	expires time.Time
}

// Store bounds memory by entry count and expires entries lazily on read.
type Store struct {
	lru   *lru.Cache[string, entry]
	clock clockwork.Clock
}

type Option func(*Store)

// WithClock replaces the wall clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func New(size int, opts ...Option) (*Store, error) {
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("local cache: %w", err)
	}
	s := &Store{lru: c, clock: clockwork.NewRealClock()}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Store) Name() string { return "local" }

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !s.clock.Now().Before(e.expires) {
		s.lru.Remove(key)
		return nil, false, nil
	}
	return e.val, true, nil
}

// Set stores val; ttl <= 0 keeps the entry until it is evicted.
func (s *Store) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	e := entry{val: val}
	if ttl > 0 {
		e.expires = s.clock.Now().Add(ttl)
	}
	s.lru.Add(key, e)
	return nil
}

func (s *Store) Len() int { return s.lru.Len() }
