package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/logger"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/session"
	"github.com/teranos/filestore/store"
)

// Provider records and queries events for one session.
type Provider struct {
	session *session.Session
	events  *store.Store[*model.Event]
	admin   *store.Store[*model.AdminEvent]
	realms  *store.Store[*model.Realm]
	now     func() time.Time
}

// OnEvent stores e. A missing id is generated and a zero time is set to now.
// When the event's realm sets an events expiration, ExpirationTime is derived from it.
func (p *Provider) OnEvent(e *model.Event) error {
	if e == nil {
		return errors.NewInvalidArgumentError("event is nil")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time == 0 {
		e.Time = p.now().UnixMilli()
	}
	if realm, ok := p.realms.Get(e.RealmID); ok && realm.EventsExpiration > 0 && e.ExpirationTime == 0 {
		e.ExpirationTime = e.Time + realm.EventsExpiration*int64(time.Second/time.Millisecond)
	}
	e.MarkUpdated()
	return p.events.Create(e)
}

// OnAdminEvent stores e, dropping its representation unless includeRepresentation.
func (p *Provider) OnAdminEvent(e *model.AdminEvent, includeRepresentation bool) error {
	if e == nil {
		return errors.NewInvalidArgumentError("admin event is nil")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time == 0 {
		e.Time = p.now().UnixMilli()
	}
	if !includeRepresentation {
		e.Representation = ""
	}
	e.MarkUpdated()
	return p.admin.Create(e)
}

// CreateQuery starts an event query, newest first by default.
func (p *Provider) CreateQuery() *Query {
	return newQuery(p.events.Source())
}

// CreateAdminQuery starts an admin event query, newest first by default.
func (p *Provider) CreateAdminQuery() *AdminQuery {
	return newAdminQuery(p.admin.Source())
}

// Clear removes every event of realmID.
func (p *Provider) Clear(realmID string) int {
	n := p.events.DeleteWhere(func(e *model.Event) bool { return e.RealmID == realmID })
	p.logPurge("clear", realmID, n)
	return n
}

// ClearOlderThan removes events of realmID whose time is before olderThan.
func (p *Provider) ClearOlderThan(realmID string, olderThan int64) int {
	n := p.events.DeleteWhere(func(e *model.Event) bool {
		return e.RealmID == realmID && e.Time < olderThan
	})
	p.logPurge("clear_older_than", realmID, n)
	return n
}

// ClearExpired removes events whose expiration time has passed.
func (p *Provider) ClearExpired(now int64) int {
	n := p.events.DeleteWhere(func(e *model.Event) bool {
		return e.ExpirationTime > 0 && e.ExpirationTime <= now
	})
	p.logPurge("clear_expired", "", n)
	return n
}

// ClearAdmin removes every admin event of realmID.
func (p *Provider) ClearAdmin(realmID string) int {
	n := p.admin.DeleteWhere(func(e *model.AdminEvent) bool { return e.RealmID == realmID })
	p.logPurge("clear_admin", realmID, n)
	return n
}

// ClearAdminOlderThan removes admin events of realmID whose time is before olderThan.
func (p *Provider) ClearAdminOlderThan(realmID string, olderThan int64) int {
	n := p.admin.DeleteWhere(func(e *model.AdminEvent) bool {
		return e.RealmID == realmID && e.Time < olderThan
	})
	p.logPurge("clear_admin_older_than", realmID, n)
	return n
}

func (p *Provider) logPurge(op, realmID string, n int) {
	if n == 0 {
		return
	}
	p.session.Logger().Infow("Purged events",
		logger.FieldOperation, op,
		logger.FieldRealm, realmID,
		logger.FieldCount, n)
}
