package store

import (
	"github.com/pkg/errors"
)

// Field accessors. Every accessor takes the map-wide lock for the single
// lookup/mutation it performs. Getters and setters fail with
// ErrUnknownHandle when h doesn't address a live span; keyed getters fail
// with ErrMissingKey; keyed deletes are no-ops on missing keys.

func (s *Store) Service(h Handle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return "", err
	}
	return sp.Service, nil
}

func (s *Store) SetService(h Handle, service string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.Service = service
	return nil
}

func (s *Store) Name(h Handle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return "", err
	}
	return sp.Name, nil
}

func (s *Store) SetName(h Handle, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.Name = name
	return nil
}

func (s *Store) Resource(h Handle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return "", err
	}
	return sp.Resource, nil
}

func (s *Store) SetResource(h Handle, resource string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.Resource = resource
	return nil
}

func (s *Store) TraceID(h Handle) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	return sp.TraceID, nil
}

func (s *Store) SetTraceID(h Handle, traceID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.TraceID = traceID
	return nil
}

func (s *Store) SpanID(h Handle) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	return sp.SpanID, nil
}

func (s *Store) SetSpanID(h Handle, spanID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.SpanID = spanID
	return nil
}

func (s *Store) ParentID(h Handle) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	return sp.ParentID, nil
}

func (s *Store) SetParentID(h Handle, parentID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.ParentID = parentID
	return nil
}

func (s *Store) Start(h Handle) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	return sp.Start, nil
}

func (s *Store) SetStart(h Handle, start int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.Start = start
	return nil
}

func (s *Store) Duration(h Handle) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	return sp.Duration, nil
}

func (s *Store) SetDuration(h Handle, duration int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.Duration = duration
	return nil
}

func (s *Store) Error(h Handle) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	return sp.Error, nil
}

func (s *Store) SetError(h Handle, flag int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.Error = flag
	return nil
}

func (s *Store) Type(h Handle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return "", err
	}
	return sp.Type, nil
}

func (s *Store) SetType(h Handle, spanType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.Type = spanType
	return nil
}

func (s *Store) Meta(h Handle, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return "", err
	}
	v, ok := sp.Meta[key]
	if !ok {
		return "", errors.Wrapf(ErrMissingKey, "meta %q on handle %d", key, h)
	}
	return v, nil
}

func (s *Store) SetMeta(h Handle, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.Meta[key] = value
	return nil
}

func (s *Store) DelMeta(h Handle, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	delete(sp.Meta, key)
	return nil
}

func (s *Store) Metric(h Handle, key string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	v, ok := sp.Metrics[key]
	if !ok {
		return 0, errors.Wrapf(ErrMissingKey, "metric %q on handle %d", key, h)
	}
	return v, nil
}

func (s *Store) SetMetric(h Handle, key string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	sp.Metrics[key] = value
	return nil
}

func (s *Store) DelMetric(h Handle, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.lookup(h)
	if err != nil {
		return err
	}
	delete(sp.Metrics, key)
	return nil
}
