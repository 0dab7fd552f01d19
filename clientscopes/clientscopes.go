// Package clientscopes manages the client scopes of each realm.
package clientscopes

import (
	"iter"

	"github.com/google/uuid"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/logger"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/provider"
	"github.com/teranos/filestore/query"
	"github.com/teranos/filestore/session"
	"github.com/teranos/filestore/store"
)

// ProviderID names the client scopes factory in the registry.
const ProviderID = "client-scopes"

// Factory creates one Provider per session.
type Factory struct {
	provider.Base

	registry *provider.Registry
}

// NewFactory returns an unregistered client scopes factory.
func NewFactory() *Factory { return &Factory{} }

func (f *Factory) ID() string { return ProviderID }

// PostInit keeps the registry for store access and removal notifications.
func (f *Factory) PostInit(r *provider.Registry) error {
	f.registry = r
	return nil
}

// Create returns the session's client scopes provider.
func (f *Factory) Create(s *session.Session) (*Provider, error) {
	if f.registry == nil {
		return nil, errors.AssertionFailedf("client scopes factory used before PostInit")
	}
	return session.CreateIfAbsent(s, f.FactoryID(), func(s *session.Session) (*Provider, error) {
		return &Provider{
			session:  s,
			registry: f.registry,
			scopes:   f.registry.Stores().ClientScopes,
		}, nil
	})
}

// Invalidate drops the scopes of a removed realm.
func (f *Factory) Invalidate(s *session.Session, kind provider.InvalidationKind, target any) error {
	if kind != provider.RealmAfterRemove {
		return nil
	}
	realm, ok := target.(*model.Realm)
	if !ok {
		return errors.AssertionFailedf("realm invalidation target is %T", target)
	}
	n := f.registry.Stores().ClientScopes.DeleteWhere(func(c *model.ClientScope) bool { return c.RealmID == realm.ID })
	if n > 0 {
		s.Logger().Infow("Purged client scopes", logger.FieldRealm, realm.ID, logger.FieldCount, n)
	}
	return nil
}

// Provider reads and writes client scopes for one session.
type Provider struct {
	session  *session.Session
	registry *provider.Registry
	scopes   *store.Store[*model.ClientScope]
}

func scopeName(c *model.ClientScope) string { return c.Name }

func inRealm(realmID string) query.Criteria[*model.ClientScope] {
	return query.New[*model.ClientScope]().
		Where(query.Equal(func(c *model.ClientScope) string { return c.RealmID }, realmID)).
		OrderBy(query.ByString(scopeName), query.Ascending)
}

// AddClientScope creates a scope in realmID. An empty id is generated.
// A scope with the same id, or with the same name in the realm, is a conflict.
// Uniqueness holds within one session, not across concurrent sessions.
func (p *Provider) AddClientScope(realmID, id, name string) (*model.ClientScope, error) {
	if realmID == "" || name == "" {
		return nil, errors.NewInvalidArgumentError("client scope needs a realm and a name")
	}
	if id == "" {
		id = uuid.NewString()
	}
	if p.scopes.Exists(id) {
		return nil, errors.NewConflictError("client scope id %q already exists", id)
	}
	if len(query.Select(inRealm(realmID).Where(query.Equal(scopeName, name)).MaxResults(1), p.scopes.ReadAll())) > 0 {
		return nil, errors.NewConflictError("realm %s already has client scope %q", realmID, name)
	}

	scope := &model.ClientScope{ID: id, RealmID: realmID, Name: name}
	scope.MarkUpdated()
	if err := p.scopes.Create(scope); err != nil {
		return nil, err
	}
	return scope, nil
}

// GetClientScopeByID returns the scope with id if it belongs to realmID, or nil.
func (p *Provider) GetClientScopeByID(realmID, id string) *model.ClientScope {
	scope, ok := p.scopes.Get(id)
	if !ok || scope.RealmID != realmID {
		return nil
	}
	return scope
}

// GetClientScopesStream returns the realm's scopes ordered by name.
func (p *Provider) GetClientScopesStream(realmID string) iter.Seq[*model.ClientScope] {
	return query.Apply(inRealm(realmID), p.scopes.ReadAll())
}

// RemoveClientScope deletes a scope of realmID and notifies the other
// providers. It reports whether the scope existed.
func (p *Provider) RemoveClientScope(realmID, id string) (bool, error) {
	scope := p.GetClientScopeByID(realmID, id)
	if scope == nil {
		return false, nil
	}

	if err := p.registry.Invalidate(p.session, provider.ClientScopeBeforeRemove, scope); err != nil {
		return false, errors.Wrapf(err, "remove client scope %s", id)
	}
	p.scopes.DeleteByID(id)
	if err := p.registry.Invalidate(p.session, provider.ClientScopeAfterRemove, scope); err != nil {
		return true, errors.Wrapf(err, "remove client scope %s", id)
	}
	return true, nil
}

// RemoveClientScopes removes every scope of realmID one by one, so each
// removal is announced. It returns how many were removed.
func (p *Provider) RemoveClientScopes(realmID string) (int, error) {
	n := 0
	for scope := range p.GetClientScopesStream(realmID) {
		removed, err := p.RemoveClientScope(realmID, scope.ID)
		if removed {
			n++
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
