// Package model defines the records held in the entity stores.
//
// Every record is a pointer to a mutable struct identified by a string id.
// Records embed Updatable so the backing-file layer can tell which ones
// need to be written back; setters mark the flag only when the value
// actually changes.
package model

// Entity is any stored record.
type Entity interface {
	GetID() string
}

// Timestamped is implemented by records ordered by time (epoch millis).
type Timestamped interface {
	Entity
	GetTime() int64
}

// Kind names an entity type. It doubles as the backing-file directory name.
type Kind string

const (
	KindRealm            Kind = "realms"
	KindClientScope      Kind = "client-scopes"
	KindRole             Kind = "roles"
	KindEvent            Kind = "events"
	KindAdminEvent       Kind = "admin-events"
	KindIdentityProvider Kind = "identity-providers"
)

// Kinds lists every entity kind in load order.
var Kinds = []Kind{
	KindRealm,
	KindClientScope,
	KindRole,
	KindIdentityProvider,
	KindEvent,
	KindAdminEvent,
}

// Updatable tracks whether a record changed since it was last persisted.
// The zero value is clean.
type Updatable struct {
	updated bool
}

// IsUpdated reports whether the record changed since the flag was cleared.
func (u *Updatable) IsUpdated() bool { return u.updated }

// MarkUpdated sets the flag.
func (u *Updatable) MarkUpdated() { u.updated = true }

// ClearUpdated resets the flag, typically after a successful write.
func (u *Updatable) ClearUpdated() { u.updated = false }

// Dirty is implemented by every record embedding Updatable.
type Dirty interface {
	IsUpdated() bool
	MarkUpdated()
	ClearUpdated()
}

// set assigns v to *field and marks u when the value changes.
func set[T comparable](u *Updatable, field *T, v T) {
	if *field != v {
		*field = v
		u.MarkUpdated()
	}
}

// setMapEntry assigns m[k] = v, allocating m, and marks u when the entry changes.
func setMapEntry(u *Updatable, m *map[string]string, k, v string) {
	if old, ok := (*m)[k]; ok && old == v {
		return
	}
	if *m == nil {
		*m = make(map[string]string)
	}
	(*m)[k] = v
	u.MarkUpdated()
}

// removeMapEntry deletes m[k] and marks u when the entry existed.
func removeMapEntry(u *Updatable, m map[string]string, k string) {
	if _, ok := m[k]; ok {
		delete(m, k)
		u.MarkUpdated()
	}
}
