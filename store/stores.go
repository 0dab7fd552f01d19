package store

import (
	"go.uber.org/zap"

	"github.com/teranos/filestore/model"
)

// Stores holds one Store per entity kind.
type Stores struct {
	Realms            *Store[*model.Realm]
	ClientScopes      *Store[*model.ClientScope]
	Roles             *Store[*model.Role]
	Events            *Store[*model.Event]
	AdminEvents       *Store[*model.AdminEvent]
	IdentityProviders *Store[*model.IdentityProvider]
}

// NewStores creates empty stores for every kind. logger may be nil.
func NewStores(logger *zap.SugaredLogger) *Stores {
	return &Stores{
		Realms:            New[*model.Realm](model.KindRealm, logger),
		ClientScopes:      New[*model.ClientScope](model.KindClientScope, logger),
		Roles:             New[*model.Role](model.KindRole, logger),
		Events:            New[*model.Event](model.KindEvent, logger),
		AdminEvents:       New[*model.AdminEvent](model.KindAdminEvent, logger),
		IdentityProviders: New[*model.IdentityProvider](model.KindIdentityProvider, logger),
	}
}

// Clear empties every store.
func (s *Stores) Clear() {
	s.Realms.Clear()
	s.ClientScopes.Clear()
	s.Roles.Clear()
	s.Events.Clear()
	s.AdminEvents.Clear()
	s.IdentityProviders.Clear()
}

// Counts returns the number of entities held per kind.
func (s *Stores) Counts() map[model.Kind]int {
	return map[model.Kind]int{
		model.KindRealm:            s.Realms.Len(),
		model.KindClientScope:      s.ClientScopes.Len(),
		model.KindRole:             s.Roles.Len(),
		model.KindEvent:            s.Events.Len(),
		model.KindAdminEvent:       s.AdminEvents.Len(),
		model.KindIdentityProvider: s.IdentityProviders.Len(),
	}
}
