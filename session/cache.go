package session

import (
	"fmt"
	"reflect"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/logger"
)

// ProviderKey returns the attribute key under which the provider of type P
// created by factory factoryID is cached.
func ProviderKey[P any](factoryID int64) string {
	return fmt.Sprintf("%s#%d", reflect.TypeFor[P]().String(), factoryID)
}

// CreateIfAbsent returns the session's provider for (P, factoryID),
// constructing it with ctor on first use.
//
// Concurrent callers for the same key wait for a single construction.
// A failed construction is not cached; the next caller retries.
// A cached value that is not a P yields an assertion failure wrapping
// errors.ErrTypeMismatch.
//
// ctor must not request the same key from the same session.
func CreateIfAbsent[P any](s *Session, factoryID int64, ctor func(*Session) (P, error)) (P, error) {
	var zero P
	key := ProviderKey[P](factoryID)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zero, errors.Wrapf(errors.ErrClosed, "create provider %s", key)
	}
	var e *entry
	switch v := s.attrs[key].(type) {
	case *entry:
		e = v
	case nil:
		e = &entry{}
		s.attrs[key] = e
	default:
		s.mu.Unlock()
		return cast[P](key, v)
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ready {
		return cast[P](key, e.value)
	}

	p, err := ctor(s)
	if err != nil {
		return zero, errors.Wrapf(err, "create provider %s", key)
	}
	e.value = p
	e.ready = true

	s.mu.Lock()
	// The slot may have been replaced or the session closed while ctor ran;
	// only a live slot is recorded for Close.
	if current, ok := s.attrs[key].(*entry); ok && current == e && !s.closed {
		s.created = append(s.created, key)
	}
	s.mu.Unlock()

	s.logger.Debugw("Provider created", logger.FieldProvider, key, logger.FieldFactoryID, factoryID)
	return p, nil
}

func cast[P any](key string, v any) (P, error) {
	p, ok := v.(P)
	if !ok {
		var zero P
		return zero, errors.WithAssertionFailure(
			errors.Wrapf(errors.ErrTypeMismatch, "cached provider %s is %T", key, v))
	}
	return p, nil
}
