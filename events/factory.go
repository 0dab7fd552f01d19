// Package events stores authentication and admin events and answers
// filtered, time-ordered queries over them.
package events

import (
	"time"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/provider"
	"github.com/teranos/filestore/session"
	"github.com/teranos/filestore/store"
)

// ProviderID names the events factory in the registry.
const ProviderID = "events"

// Factory creates one Provider per session.
type Factory struct {
	provider.Base

	stores *store.Stores
	now    func() time.Time
}

// NewFactory returns an unregistered events factory.
func NewFactory() *Factory {
	return &Factory{now: time.Now}
}

func (f *Factory) ID() string { return ProviderID }

// PostInit binds the factory to the registry's stores.
func (f *Factory) PostInit(r *provider.Registry) error {
	if r.Stores() == nil {
		return errors.NewInvalidArgumentError("events: registry has no stores")
	}
	f.stores = r.Stores()
	return nil
}

// SetClock replaces the time source used to stamp events without a time.
func (f *Factory) SetClock(now func() time.Time) { f.now = now }

// Create returns the session's events provider.
func (f *Factory) Create(s *session.Session) (*Provider, error) {
	if f.stores == nil {
		return nil, errors.AssertionFailedf("events factory used before PostInit")
	}
	return session.CreateIfAbsent(s, f.FactoryID(), func(s *session.Session) (*Provider, error) {
		return &Provider{
			session: s,
			events:  f.stores.Events,
			admin:   f.stores.AdminEvents,
			realms:  f.stores.Realms,
			now:     f.now,
		}, nil
	})
}

// Invalidate purges events of a removed realm.
func (f *Factory) Invalidate(s *session.Session, kind provider.InvalidationKind, target any) error {
	if kind != provider.RealmAfterRemove {
		return nil
	}
	realm, ok := target.(*model.Realm)
	if !ok {
		return errors.AssertionFailedf("realm invalidation target is %T", target)
	}
	p, err := f.Create(s)
	if err != nil {
		return err
	}
	p.Clear(realm.ID)
	p.ClearAdmin(realm.ID)
	return nil
}
