package provider

import "github.com/teranos/filestore/session"

// InvalidationKind names a lifecycle event other providers may react to.
type InvalidationKind int

const (
	RealmBeforeRemove InvalidationKind = iota + 1
	RealmAfterRemove
	ClientBeforeRemove
	ClientAfterRemove
	GroupBeforeRemove
	GroupAfterRemove
	RoleBeforeRemove
	RoleAfterRemove
	UserBeforeRemove
	UserAfterRemove
	ClientScopeBeforeRemove
	ClientScopeAfterRemove
	ResourceServerBeforeRemove
	ResourceServerAfterRemove
)

var invalidationNames = map[InvalidationKind]string{
	RealmBeforeRemove:          "realm_before_remove",
	RealmAfterRemove:           "realm_after_remove",
	ClientBeforeRemove:         "client_before_remove",
	ClientAfterRemove:          "client_after_remove",
	GroupBeforeRemove:          "group_before_remove",
	GroupAfterRemove:           "group_after_remove",
	RoleBeforeRemove:           "role_before_remove",
	RoleAfterRemove:            "role_after_remove",
	UserBeforeRemove:           "user_before_remove",
	UserAfterRemove:            "user_after_remove",
	ClientScopeBeforeRemove:    "client_scope_before_remove",
	ClientScopeAfterRemove:     "client_scope_after_remove",
	ResourceServerBeforeRemove: "resource_server_before_remove",
	ResourceServerAfterRemove:  "resource_server_after_remove",
}

func (k InvalidationKind) String() string {
	if name, ok := invalidationNames[k]; ok {
		return name
	}
	return "unknown"
}

// Invalidator is implemented by factories that react to removals elsewhere.
//
// target carries the removed entity: *model.Realm, *model.Role or
// *model.ClientScope for those kinds, ClientRef for clients, and the id
// string for groups, users and resource servers.
type Invalidator interface {
	Invalidate(s *session.Session, kind InvalidationKind, target any) error
}

// ClientRef identifies a client. Clients are not stored here, only referenced.
type ClientRef struct {
	RealmID  string
	ClientID string
}
