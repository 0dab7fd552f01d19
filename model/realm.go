package model

// Realm is a tenant: every other record is scoped to one.
type Realm struct {
	Updatable `yaml:"-" json:"-"`

	ID                        string `yaml:"id" json:"id"`
	Name                      string `yaml:"name" json:"name"`
	DisplayName               string `yaml:"displayName,omitempty" json:"displayName,omitempty"`
	Enabled                   bool   `yaml:"enabled" json:"enabled"`
	EventsEnabled             bool   `yaml:"eventsEnabled" json:"eventsEnabled"`
	EventsExpiration          int64  `yaml:"eventsExpiration,omitempty" json:"eventsExpiration,omitempty"` // seconds, 0 = never
	AdminEventsEnabled        bool   `yaml:"adminEventsEnabled" json:"adminEventsEnabled"`
	AdminEventsDetailsEnabled bool   `yaml:"adminEventsDetailsEnabled" json:"adminEventsDetailsEnabled"`
	CreatedTimestamp          int64  `yaml:"createdTimestamp" json:"createdTimestamp"`
}

func (r *Realm) GetID() string { return r.ID }

// GetTime orders realms by creation.
func (r *Realm) GetTime() int64 { return r.CreatedTimestamp }

func (r *Realm) SetName(name string)               { set(&r.Updatable, &r.Name, name) }
func (r *Realm) SetDisplayName(name string)        { set(&r.Updatable, &r.DisplayName, name) }
func (r *Realm) SetEnabled(enabled bool)           { set(&r.Updatable, &r.Enabled, enabled) }
func (r *Realm) SetEventsEnabled(enabled bool)     { set(&r.Updatable, &r.EventsEnabled, enabled) }
func (r *Realm) SetEventsExpiration(seconds int64) { set(&r.Updatable, &r.EventsExpiration, seconds) }
func (r *Realm) SetAdminEventsEnabled(enabled bool) {
	set(&r.Updatable, &r.AdminEventsEnabled, enabled)
}
func (r *Realm) SetAdminEventsDetailsEnabled(enabled bool) {
	set(&r.Updatable, &r.AdminEventsDetailsEnabled, enabled)
}
