package roles

import (
	"iter"
	"slices"

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

// Provider reads and writes roles for one session.
type Provider struct {
	session  *session.Session
	registry *provider.Registry
	roles    *store.Store[*model.Role]
}

func roleName(r *model.Role) string { return r.Name }

// owned selects the roles of a realm (clientID empty) or of one client, by name.
func owned(realmID, clientID string) query.Criteria[*model.Role] {
	return query.New[*model.Role]().
		Where(func(r *model.Role) bool { return r.RealmID == realmID && r.ClientID == clientID }).
		OrderBy(query.ByString(roleName), query.Ascending)
}

// matching keeps roles whose name or description contains search, ignoring case.
func matching(search string) query.Filter[*model.Role] {
	pattern := like.Contains(search)
	return query.Any(
		query.InsensitiveLike(roleName, pattern),
		query.InsensitiveLike(func(r *model.Role) string { return r.Description }, pattern),
	)
}

// AddRealmRole creates a realm role. A realm role with the same name is a conflict.
func (p *Provider) AddRealmRole(realmID, name string) (*model.Role, error) {
	return p.add(realmID, "", name)
}

// AddClientRole creates a role of clientID. A role of the same client with
// the same name is a conflict.
func (p *Provider) AddClientRole(realmID, clientID, name string) (*model.Role, error) {
	if clientID == "" {
		return nil, errors.NewInvalidArgumentError("client role needs a client id")
	}
	return p.add(realmID, clientID, name)
}

// add checks the name and inserts in two steps; uniqueness holds within one
// session, not across goroutines sharing the stores.
func (p *Provider) add(realmID, clientID, name string) (*model.Role, error) {
	if realmID == "" || name == "" {
		return nil, errors.NewInvalidArgumentError("role needs a realm and a name")
	}
	if p.lookup(realmID, clientID, name) != nil {
		if clientID != "" {
			return nil, errors.NewConflictError("client %s already has role %q", clientID, name)
		}
		return nil, errors.NewConflictError("realm %s already has role %q", realmID, name)
	}

	role := &model.Role{ID: uuid.NewString(), RealmID: realmID, ClientID: clientID, Name: name}
	role.MarkUpdated()
	if err := p.roles.Create(role); err != nil {
		return nil, err
	}

	p.session.Logger().Debugw("Role created",
		logger.FieldRealm, realmID,
		logger.FieldClient, clientID,
		logger.FieldEntityID, role.ID)
	return role, nil
}

func (p *Provider) lookup(realmID, clientID, name string) *model.Role {
	found := query.Select(owned(realmID, clientID).Where(query.Equal(roleName, name)).MaxResults(1), p.roles.ReadAll())
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// GetRealmRole returns the realm role called name, or nil.
func (p *Provider) GetRealmRole(realmID, name string) *model.Role {
	return p.lookup(realmID, "", name)
}

// GetClientRole returns the role of clientID called name, or nil.
func (p *Provider) GetClientRole(realmID, clientID, name string) *model.Role {
	if clientID == "" {
		return nil
	}
	return p.lookup(realmID, clientID, name)
}

// GetRoleByID returns the role with id if it belongs to realmID, or nil.
func (p *Provider) GetRoleByID(realmID, id string) *model.Role {
	role, ok := p.roles.Get(id)
	if !ok || role.RealmID != realmID {
		return nil
	}
	return role
}

// GetRealmRolesStream returns the realm's roles ordered by name.
// first and max paginate as query.Criteria.Page does.
func (p *Provider) GetRealmRolesStream(realmID string, first, max int) iter.Seq[*model.Role] {
	return query.Apply(owned(realmID, "").Page(first, max), p.roles.ReadAll())
}

// GetClientRolesStream returns the client's roles ordered by name.
func (p *Provider) GetClientRolesStream(realmID, clientID string, first, max int) iter.Seq[*model.Role] {
	if clientID == "" {
		return slices.Values([]*model.Role(nil))
	}
	return query.Apply(owned(realmID, clientID).Page(first, max), p.roles.ReadAll())
}

// SearchForRolesStream returns realm roles whose name or description
// contains search, ignoring case.
func (p *Provider) SearchForRolesStream(realmID, search string, first, max int) iter.Seq[*model.Role] {
	c := owned(realmID, "").Where(matching(search)).Page(first, max)
	return query.Apply(c, p.roles.ReadAll())
}

// SearchForClientRolesStream returns roles of clientID whose name or
// description contains search, ignoring case.
func (p *Provider) SearchForClientRolesStream(realmID, clientID, search string, first, max int) iter.Seq[*model.Role] {
	if clientID == "" {
		return slices.Values([]*model.Role(nil))
	}
	c := owned(realmID, clientID).Where(matching(search)).Page(first, max)
	return query.Apply(c, p.roles.ReadAll())
}

// GetCompositesStream returns the roles parent aggregates, ordered by name.
// Dangling references are skipped.
func (p *Provider) GetCompositesStream(parent *model.Role) iter.Seq[*model.Role] {
	var children []*model.Role
	for _, id := range parent.CompositeIDs {
		if child, ok := p.roles.Get(id); ok {
			children = append(children, child)
		}
	}
	c := query.New[*model.Role]().OrderBy(query.ByString(roleName), query.Ascending)
	return query.Apply(c, slices.Values(children))
}

// AddComposite makes parent aggregate child. Both roles must be stored and
// belong to the same realm; a role cannot contain itself.
func (p *Provider) AddComposite(parent, child *model.Role) error {
	if parent == nil || child == nil {
		return errors.NewInvalidArgumentError("composite needs two roles")
	}
	if parent.ID == child.ID {
		return errors.NewInvalidArgumentError("role %s cannot contain itself", parent.ID)
	}
	if parent.RealmID != child.RealmID {
		return errors.NewInvalidArgumentError("roles %s and %s are in different realms", parent.ID, child.ID)
	}
	for _, r := range []*model.Role{parent, child} {
		if !p.roles.Exists(r.ID) {
			return errors.NewNotFoundError("role %s", r.ID)
		}
	}
	parent.AddComposite(child.ID)
	return nil
}

// RemoveRole deletes role and notifies the other providers. It reports
// whether the role existed.
func (p *Provider) RemoveRole(role *model.Role) (bool, error) {
	if role == nil || !p.roles.Exists(role.ID) {
		return false, nil
	}

	if err := p.registry.Invalidate(p.session, provider.RoleBeforeRemove, role); err != nil {
		return false, errors.Wrapf(err, "remove role %s", role.ID)
	}
	p.roles.DeleteByID(role.ID)
	if err := p.registry.Invalidate(p.session, provider.RoleAfterRemove, role); err != nil {
		return true, errors.Wrapf(err, "remove role %s", role.ID)
	}
	return true, nil
}

func (p *Provider) removeWhere(pred func(*model.Role) bool) {
	if n := p.roles.DeleteWhere(pred); n > 0 {
		p.session.Logger().Infow("Purged roles", logger.FieldCount, n)
	}
}

func (p *Provider) stripComposite(removed *model.Role) {
	for r := range p.roles.ReadAll() {
		if r.RealmID == removed.RealmID {
			r.RemoveComposite(removed.ID)
		}
	}
}
