// Package session provides the unit-of-work object that caches provider
// instances.
//
// A Session is created per request (or per CLI command), handed to provider
// factories, and closed when the work is done. Factories call CreateIfAbsent
// so that every factory yields at most one provider instance per session.
package session

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/logger"
)

// Session is a single unit of work. It is safe for concurrent use.
type Session struct {
	id     string
	ctx    context.Context
	logger *zap.SugaredLogger

	mu      sync.Mutex
	attrs   map[string]any
	created []string // provider keys in construction order
	closed  bool
}

// New opens a session bound to ctx. logger may be nil.
func New(ctx context.Context, log *zap.SugaredLogger) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		ctx:    logger.WithSessionID(ctx, id),
		logger: logger.OrNop(log).With(logger.FieldSessionID, id),
		attrs:  make(map[string]any),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Context returns the context the session was opened with, carrying the session id.
func (s *Session) Context() context.Context { return s.ctx }

// Logger returns a logger tagged with the session id.
func (s *Session) Logger() *zap.SugaredLogger { return s.logger }

// Attribute returns the value stored under key.
// Cached providers are returned once constructed.
func (s *Session) Attribute(key string) (any, bool) {
	s.mu.Lock()
	v, ok := s.attrs[key]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	if e, isEntry := v.(*entry); isEntry {
		return e.get()
	}
	return v, true
}

// SetAttribute stores value under key, replacing anything there.
func (s *Session) SetAttribute(key string, value any) {
	s.mu.Lock()
	s.attrs[key] = value
	s.mu.Unlock()
}

// RemoveAttribute deletes key.
func (s *Session) RemoveAttribute(key string) {
	s.mu.Lock()
	delete(s.attrs, key)
	s.created = slices.DeleteFunc(s.created, func(k string) bool { return k == key })
	s.mu.Unlock()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close closes every cached provider implementing io.Closer, most recently
// created first, and empties the attribute bag. Subsequent calls do nothing.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	keys := s.created
	attrs := s.attrs
	s.created = nil
	s.attrs = make(map[string]any)
	s.mu.Unlock()

	var err error
	for _, key := range slices.Backward(keys) {
		e, ok := attrs[key].(*entry)
		if !ok {
			continue
		}
		v, ok := e.get()
		if !ok {
			continue
		}
		if c, ok := v.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil {
				s.logger.Warnw("Provider close failed", logger.FieldProvider, key, logger.FieldError, cerr)
				err = multierr.Append(err, errors.Wrapf(cerr, "close provider %s", key))
			}
		}
	}

	s.logger.Debugw("Session closed", logger.FieldCount, len(keys))
	return err
}

// entry is a provider slot. Its mutex serialises construction for one key
// without blocking the rest of the session.
type entry struct {
	mu    sync.Mutex
	value any
	ready bool
}

func (e *entry) get() (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value, e.ready
}
