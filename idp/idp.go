// Package idp manages the identity providers (external brokers) of each realm.
package idp

import (
	"iter"

	"github.com/google/uuid"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/like"
	"github.com/teranos/filestore/logger"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/provider"
	"github.com/teranos/filestore/query"
	"github.com/teranos/filestore/session"
	"github.com/teranos/filestore/store"
)

// ProviderID names the identity provider factory in the registry.
const ProviderID = "identity-providers"

// Factory creates one Provider per session.
type Factory struct {
	provider.Base

	stores *store.Stores
}

// NewFactory returns an unregistered identity provider factory.
func NewFactory() *Factory { return &Factory{} }

func (f *Factory) ID() string { return ProviderID }

// PostInit binds the factory to the registry's stores.
func (f *Factory) PostInit(r *provider.Registry) error {
	f.stores = r.Stores()
	return nil
}

// Create returns the session's identity provider provider.
func (f *Factory) Create(s *session.Session) (*Provider, error) {
	if f.stores == nil {
		return nil, errors.AssertionFailedf("identity provider factory used before PostInit")
	}
	return session.CreateIfAbsent(s, f.FactoryID(), func(s *session.Session) (*Provider, error) {
		return &Provider{session: s, idps: f.stores.IdentityProviders}, nil
	})
}

// Invalidate drops the identity providers of a removed realm.
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
	p.RemoveAll(realm.ID)
	return nil
}

// Provider reads and writes identity providers for one session.
type Provider struct {
	session *session.Session
	idps    *store.Store[*model.IdentityProvider]
}

func aliasOf(p *model.IdentityProvider) string { return p.Alias }

func inRealm(realmID string) query.Criteria[*model.IdentityProvider] {
	return query.New[*model.IdentityProvider]().
		Where(query.Equal(func(p *model.IdentityProvider) string { return p.RealmID }, realmID)).
		OrderBy(query.ByString(aliasOf), query.Ascending)
}

// Create stores idp. RealmID and Alias are required; an empty ID is
// generated. An alias already used in the realm is a conflict. Uniqueness
// holds within one session, not across concurrent sessions.
func (p *Provider) Create(idp *model.IdentityProvider) (*model.IdentityProvider, error) {
	if idp == nil || idp.RealmID == "" || idp.Alias == "" {
		return nil, errors.NewInvalidArgumentError("identity provider needs a realm and an alias")
	}
	if idp.ID == "" {
		idp.ID = uuid.NewString()
	}
	if p.idps.Exists(idp.ID) {
		return nil, errors.NewConflictError("identity provider id %q already exists", idp.ID)
	}
	if p.GetByAlias(idp.RealmID, idp.Alias) != nil {
		return nil, errors.NewConflictError("realm %s already has identity provider %q", idp.RealmID, idp.Alias)
	}

	idp.MarkUpdated()
	if err := p.idps.Create(idp); err != nil {
		return nil, err
	}
	return idp, nil
}

// GetByAlias returns the realm's identity provider called alias, or nil.
func (p *Provider) GetByAlias(realmID, alias string) *model.IdentityProvider {
	found := query.Select(inRealm(realmID).Where(query.Equal(aliasOf, alias)).MaxResults(1), p.idps.ReadAll())
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// GetByID returns the identity provider with id if it belongs to realmID, or nil.
func (p *Provider) GetByID(realmID, id string) *model.IdentityProvider {
	idp, ok := p.idps.Get(id)
	if !ok || idp.RealmID != realmID {
		return nil
	}
	return idp
}

// GetAllStream returns the realm's identity providers whose alias contains
// search, ignoring case, ordered by alias. An empty search matches all.
// first and max paginate as query.Criteria.Page does.
func (p *Provider) GetAllStream(realmID, search string, first, max int) iter.Seq[*model.IdentityProvider] {
	c := inRealm(realmID).
		Where(query.InsensitiveLike(aliasOf, like.Contains(search))).
		Page(first, max)
	return query.Apply(c, p.idps.ReadAll())
}

// Update replaces the stored identity provider with idp's id.
// Renaming onto an alias another provider of the realm uses is a conflict.
func (p *Provider) Update(idp *model.IdentityProvider) error {
	if idp == nil {
		return errors.NewInvalidArgumentError("identity provider is nil")
	}
	current := p.GetByID(idp.RealmID, idp.ID)
	if current == nil {
		return errors.NewNotFoundError("identity provider %s in realm %s", idp.ID, idp.RealmID)
	}
	if other := p.GetByAlias(idp.RealmID, idp.Alias); other != nil && other.ID != idp.ID {
		return errors.NewConflictError("realm %s already has identity provider %q", idp.RealmID, idp.Alias)
	}

	idp.MarkUpdated()
	return p.idps.Create(idp)
}

// Remove deletes the realm's identity provider called alias and reports
// whether it existed.
func (p *Provider) Remove(realmID, alias string) bool {
	idp := p.GetByAlias(realmID, alias)
	if idp == nil {
		return false
	}
	return p.idps.DeleteByID(idp.ID)
}

// RemoveAll deletes every identity provider of realmID.
func (p *Provider) RemoveAll(realmID string) int {
	n := p.idps.DeleteWhere(func(idp *model.IdentityProvider) bool { return idp.RealmID == realmID })
	if n > 0 {
		p.session.Logger().Infow("Purged identity providers", logger.FieldRealm, realmID, logger.FieldCount, n)
	}
	return n
}

// Count returns how many identity providers realmID has.
func (p *Provider) Count(realmID string) int {
	c := inRealm(realmID)
	n := 0
	for idp := range p.idps.ReadAll() {
		if c.Matches(idp) {
			n++
		}
	}
	return n
}
