package provider

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/teranos/filestore/am"
	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/logger"
	"github.com/teranos/filestore/session"
	"github.com/teranos/filestore/store"
)

// Registry owns the process-wide pieces every provider shares: the stores,
// the factory id counter and the registered factories.
type Registry struct {
	cfg    *am.Config
	stores *store.Stores
	ids    session.Identifiers
	logger *zap.SugaredLogger

	mu        sync.RWMutex
	factories []Factory
	started   bool
}

// NewRegistry creates a registry over stores. cfg and logger may be nil.
func NewRegistry(cfg *am.Config, stores *store.Stores, log *zap.SugaredLogger) *Registry {
	if cfg == nil {
		cfg = &am.Config{}
	}
	return &Registry{
		cfg:    cfg,
		stores: stores,
		logger: logger.OrNop(log),
	}
}

// Config returns the configuration factories were initialised with.
func (r *Registry) Config() *am.Config { return r.cfg }

// Stores returns the shared entity stores.
func (r *Registry) Stores() *store.Stores { return r.stores }

// Logger returns the registry's logger.
func (r *Registry) Logger() *zap.SugaredLogger { return r.logger }

// Register assigns f a factory id and initialises it.
// Registering after Start is an error, as is registering the same ID twice.
func (r *Registry) Register(f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return errors.Newf("register %s: registry already started", f.ID())
	}
	if slices.ContainsFunc(r.factories, func(g Factory) bool { return g.ID() == f.ID() }) {
		return errors.NewConflictError("factory %q already registered", f.ID())
	}

	f.assign(r.ids.Next())
	if err := f.Init(r.cfg); err != nil {
		return errors.Wrapf(err, "init factory %s", f.ID())
	}
	r.factories = append(r.factories, f)

	r.logger.Debugw("Registered provider factory",
		logger.FieldProvider, f.ID(),
		logger.FieldFactoryID, f.FactoryID())
	return nil
}

// Start runs PostInit on every factory in registration order.
func (r *Registry) Start() error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = true
	factories := slices.Clone(r.factories)
	r.mu.Unlock()

	for _, f := range factories {
		if err := f.PostInit(r); err != nil {
			return errors.Wrapf(err, "post-init factory %s", f.ID())
		}
	}
	return nil
}

// Factory returns the registered factory named id.
func (r *Registry) Factory(id string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.factories {
		if f.ID() == id {
			return f, true
		}
	}
	return nil, false
}

// Factories returns the registered factories in registration order.
func (r *Registry) Factories() []Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.factories)
}

// NewSession opens a session logging through the registry's logger.
func (r *Registry) NewSession(ctx context.Context) *session.Session {
	return session.New(ctx, r.logger)
}

// Invalidate notifies every factory implementing Invalidator, in
// registration order. All are notified even when one fails; the errors
// are combined.
func (r *Registry) Invalidate(s *session.Session, kind InvalidationKind, target any) error {
	var err error
	for _, f := range r.Factories() {
		inv, ok := f.(Invalidator)
		if !ok {
			continue
		}
		if ierr := inv.Invalidate(s, kind, target); ierr != nil {
			err = multierr.Append(err, errors.Wrapf(ierr, "%s: invalidate %s", f.ID(), kind))
		}
	}
	if err != nil {
		s.Logger().Warnw("Invalidation failed",
			logger.FieldOperation, kind.String(),
			logger.FieldError, err)
	}
	return err
}

// Close closes every factory, most recently registered first.
func (r *Registry) Close() error {
	var err error
	for _, f := range slices.Backward(r.Factories()) {
		if cerr := f.Close(); cerr != nil {
			err = multierr.Append(err, errors.Wrapf(cerr, "close factory %s", f.ID()))
		}
	}
	return err
}
