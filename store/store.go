package store

import (
	"iter"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/logger"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/query"
)

// Store is a concurrent id → entity map for one entity kind.
type Store[T model.Entity] struct {
	kind   model.Kind
	logger *zap.SugaredLogger

	mu      sync.RWMutex
	entries map[string]T
}

// New creates an empty store. logger may be nil.
func New[T model.Entity](kind model.Kind, log *zap.SugaredLogger) *Store[T] {
	return &Store[T]{
		kind:    kind,
		logger:  logger.OrNop(log).With(logger.FieldKind, string(kind)),
		entries: make(map[string]T),
	}
}

// Kind returns the entity kind held by the store.
func (s *Store[T]) Kind() model.Kind { return s.kind }

// Exists reports whether an entity with id is stored.
func (s *Store[T]) Exists(id string) bool {
	if id == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[id]
	return ok
}

// Get returns the entity stored under id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// ReadAll iterates over the entities stored when ReadAll was called.
// Order is unspecified.
func (s *Store[T]) ReadAll() iter.Seq[T] {
	s.mu.RLock()
	snapshot := make([]T, 0, len(s.entries))
	for _, e := range s.entries {
		snapshot = append(snapshot, e)
	}
	s.mu.RUnlock()

	return slices.Values(snapshot)
}

// Source adapts the store for query.Evaluate. Reading memory never fails.
func (s *Store[T]) Source() query.Source[T] {
	return func() (iter.Seq[T], error) {
		return s.ReadAll(), nil
	}
}

// Len returns the number of stored entities.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Create stores e, replacing any entity with the same id.
func (s *Store[T]) Create(e T) error {
	id, err := s.identify(e, "create")
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()
	return nil
}

// Delete removes the entity with e's id. Deleting an absent entity is a no-op.
func (s *Store[T]) Delete(e T) error {
	id, err := s.identify(e, "delete")
	if err != nil {
		return err
	}
	s.DeleteByID(id)
	return nil
}

// DeleteByID removes the entity stored under id and reports whether one was present.
func (s *Store[T]) DeleteByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// DeleteWhere removes every entity matching pred and returns how many were removed.
// pred runs under the store's write lock and must not call back into the store.
func (s *Store[T]) DeleteWhere(pred func(T) bool) int {
	s.mu.Lock()
	n := 0
	for id, e := range s.entries {
		if pred(e) {
			delete(s.entries, id)
			n++
		}
	}
	s.mu.Unlock()

	if n > 0 {
		s.logger.Debugw("Purged entities", logger.FieldCount, n)
	}
	return n
}

// Replace swaps the store's contents for entities in one step, so readers
// see either the old or the new set. Every entity is validated first; on
// error nothing changes.
func (s *Store[T]) Replace(entities []T) error {
	next := make(map[string]T, len(entities))
	for _, e := range entities {
		id, err := s.identify(e, "replace")
		if err != nil {
			return err
		}
		next[id] = e
	}

	s.mu.Lock()
	s.entries = next
	s.mu.Unlock()
	return nil
}

// Clear removes every entity.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = make(map[string]T)
	s.mu.Unlock()

	s.logger.Debugw("Cleared store", logger.FieldCount, n)
}

func (s *Store[T]) identify(e T, op string) (string, error) {
	if isNil(e) {
		return "", errors.NewInvalidArgumentError("%s %s: nil entity", op, s.kind)
	}
	id := e.GetID()
	if id == "" {
		return "", errors.NewInvalidArgumentError("%s %s: entity has no id", op, s.kind)
	}
	return id, nil
}

// isNil reports whether e is nil, including typed nil pointers boxed in an interface.
func isNil[T any](e T) bool {
	v := reflect.ValueOf(any(e))
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
