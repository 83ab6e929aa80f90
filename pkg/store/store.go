package store

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Store owns every live span, keyed by Handle. A single mutex guards the
// whole map: every field read/write and every create/remove serializes on
// it. Span mutation is not the hot path, so the coarse lock is acceptable.
type Store struct {
	mu    sync.Mutex
	spans map[Handle]*Span

	// freed handles, reused LIFO to keep the map small
	free []Handle
	next Handle

	metrics *metrics
}

// New creates an empty store. reg may be nil to skip metric registration.
func New(reg prometheus.Registerer) *Store {
	return &Store{
		spans:   make(map[Handle]*Span),
		free:    make([]Handle, 0),
		metrics: newMetrics(reg),
	}
}

// Create allocates a handle and inserts a zero-valued span for it. The
// most recently freed handle is reused when one exists. Never fails.
func (s *Store) Create() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	var h Handle
	if n := len(s.free); n > 0 {
		h = s.free[n-1]
		s.free = s.free[:n-1]
		s.metrics.recycled.Inc()
	} else {
		s.next++
		h = s.next
	}

	s.spans[h] = newSpan()
	s.metrics.created.Inc()
	s.metrics.live.Set(float64(len(s.spans)))
	return h
}

// Remove deletes the span at h and returns the handle to the free list.
// Idempotent: removing an unknown or already-removed handle is a no-op.
func (s *Store) Remove(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.spans[h]; !ok {
		return
	}
	delete(s.spans, h)
	s.free = append(s.free, h)
	s.metrics.removed.Inc()
	s.metrics.live.Set(float64(len(s.spans)))
	logrus.Debugf("removed span handle %d", h)
}

// View runs fn on the span at h while holding the store lock. fn must not
// retain the *Span or call back into the store.
func (s *Store) View(h Handle, fn func(*Span) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	return fn(sp)
}

// Contains reports whether h currently addresses a live span.
func (s *Store) Contains(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.spans[h]
	return ok
}

// Len returns the number of live spans.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spans)
}

// lookup resolves h; the caller must hold s.mu.
func (s *Store) lookup(h Handle) (*Span, error) {
	sp, ok := s.spans[h]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHandle, "handle %d", h)
	}
	return sp, nil
}
