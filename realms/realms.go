// Package realms manages realms, the top-level namespace every other
// entity belongs to.
package realms

import (
	"iter"
	"time"

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

// ProviderID names the realms factory in the registry.
const ProviderID = "realms"

// Factory creates one Provider per session.
type Factory struct {
	provider.Base

	registry *provider.Registry
	now      func() time.Time
}

// NewFactory returns an unregistered realms factory.
func NewFactory() *Factory {
	return &Factory{now: time.Now}
}

func (f *Factory) ID() string { return ProviderID }

// PostInit keeps the registry for store access and removal notifications.
func (f *Factory) PostInit(r *provider.Registry) error {
	f.registry = r
	return nil
}

// SetClock replaces the time source used for creation timestamps.
func (f *Factory) SetClock(now func() time.Time) { f.now = now }

// Create returns the session's realms provider.
func (f *Factory) Create(s *session.Session) (*Provider, error) {
	if f.registry == nil {
		return nil, errors.AssertionFailedf("realms factory used before PostInit")
	}
	return session.CreateIfAbsent(s, f.FactoryID(), func(s *session.Session) (*Provider, error) {
		return &Provider{
			session:  s,
			registry: f.registry,
			realms:   f.registry.Stores().Realms,
			now:      f.now,
		}, nil
	})
}

// Provider reads and writes realms for one session.
type Provider struct {
	session  *session.Session
	registry *provider.Registry
	realms   *store.Store[*model.Realm]
	now      func() time.Time
}

func realmName(r *model.Realm) string { return r.Name }

func byName() query.Criteria[*model.Realm] {
	return query.New[*model.Realm]().OrderBy(query.ByString(realmName), query.Ascending)
}

// CreateRealm creates an enabled realm. An empty id is generated.
// A realm with the same id or name is a conflict. The check and the insert
// are not atomic: uniqueness holds within one session, not across goroutines.
func (p *Provider) CreateRealm(id, name string) (*model.Realm, error) {
	if name == "" {
		return nil, errors.NewInvalidArgumentError("realm name is empty")
	}
	if id == "" {
		id = uuid.NewString()
	}
	if p.realms.Exists(id) {
		return nil, errors.NewConflictError("realm id %q already exists", id)
	}
	if p.GetRealmByName(name) != nil {
		return nil, errors.NewConflictError("realm name %q already exists", name)
	}

	realm := &model.Realm{
		ID:               id,
		Name:             name,
		Enabled:          true,
		CreatedTimestamp: p.now().UnixMilli(),
	}
	realm.MarkUpdated()
	if err := p.realms.Create(realm); err != nil {
		return nil, err
	}

	p.session.Logger().Infow("Realm created",
		logger.FieldRealm, name,
		logger.FieldEntityID, id)
	return realm, nil
}

// GetRealm returns the realm with id, or nil.
func (p *Provider) GetRealm(id string) *model.Realm {
	realm, _ := p.realms.Get(id)
	return realm
}

// GetRealmByName returns the realm called name, or nil.
func (p *Provider) GetRealmByName(name string) *model.Realm {
	found := query.Select(byName().Where(query.Equal(realmName, name)).MaxResults(1), p.realms.ReadAll())
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// GetRealmsStream returns every realm ordered by name.
func (p *Provider) GetRealmsStream() iter.Seq[*model.Realm] {
	return query.Apply(byName(), p.realms.ReadAll())
}

// SearchRealms returns realms whose name contains search, ignoring case,
// ordered by name. first and max paginate as query.Criteria.Page does.
func (p *Provider) SearchRealms(search string, first, max int) iter.Seq[*model.Realm] {
	c := byName().
		Where(query.InsensitiveLike(realmName, like.Contains(search))).
		Page(first, max)
	return query.Apply(c, p.realms.ReadAll())
}

// RemoveRealm deletes the realm with id and notifies the other providers so
// they drop what belonged to it. It reports whether the realm existed.
func (p *Provider) RemoveRealm(id string) (bool, error) {
	realm := p.GetRealm(id)
	if realm == nil {
		return false, nil
	}

	if err := p.registry.Invalidate(p.session, provider.RealmBeforeRemove, realm); err != nil {
		return false, errors.Wrapf(err, "remove realm %s", id)
	}
	p.realms.DeleteByID(id)
	if err := p.registry.Invalidate(p.session, provider.RealmAfterRemove, realm); err != nil {
		return true, errors.Wrapf(err, "remove realm %s", id)
	}

	p.session.Logger().Infow("Realm removed",
		logger.FieldRealm, realm.Name,
		logger.FieldEntityID, id)
	return true, nil
}
