// Package roles manages realm and client roles and the composite links
// between them.
package roles

import (
	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/provider"
	"github.com/teranos/filestore/session"
)

// ProviderID names the roles factory in the registry.
const ProviderID = "roles"

// Factory creates one Provider per session.
type Factory struct {
	provider.Base

	registry *provider.Registry
}

// NewFactory returns an unregistered roles factory.
func NewFactory() *Factory { return &Factory{} }

func (f *Factory) ID() string { return ProviderID }

// PostInit keeps the registry for store access and removal notifications.
func (f *Factory) PostInit(r *provider.Registry) error {
	f.registry = r
	return nil
}

// Create returns the session's roles provider.
func (f *Factory) Create(s *session.Session) (*Provider, error) {
	if f.registry == nil {
		return nil, errors.AssertionFailedf("roles factory used before PostInit")
	}
	return session.CreateIfAbsent(s, f.FactoryID(), func(s *session.Session) (*Provider, error) {
		return &Provider{
			session:  s,
			registry: f.registry,
			roles:    f.registry.Stores().Roles,
		}, nil
	})
}

// Invalidate drops roles owned by a removed realm or client and strips a
// removed role from every composite that referenced it.
func (f *Factory) Invalidate(s *session.Session, kind provider.InvalidationKind, target any) error {
	switch kind {
	case provider.RealmAfterRemove, provider.ClientAfterRemove, provider.RoleAfterRemove:
	default:
		return nil
	}

	p, err := f.Create(s)
	if err != nil {
		return err
	}

	switch kind {
	case provider.RealmAfterRemove:
		realm, ok := target.(*model.Realm)
		if !ok {
			return errors.AssertionFailedf("realm invalidation target is %T", target)
		}
		p.removeWhere(func(r *model.Role) bool { return r.RealmID == realm.ID })
	case provider.ClientAfterRemove:
		client, ok := target.(provider.ClientRef)
		if !ok {
			return errors.AssertionFailedf("client invalidation target is %T", target)
		}
		p.removeWhere(func(r *model.Role) bool {
			return r.RealmID == client.RealmID && r.ClientID == client.ClientID
		})
	case provider.RoleAfterRemove:
		role, ok := target.(*model.Role)
		if !ok {
			return errors.AssertionFailedf("role invalidation target is %T", target)
		}
		p.stripComposite(role)
	}
	return nil
}
