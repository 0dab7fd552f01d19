package model

import "slices"

// Role is a realm role when ClientID is empty, otherwise a client role.
type Role struct {
	Updatable `yaml:"-" json:"-"`

	ID           string            `yaml:"id" json:"id"`
	RealmID      string            `yaml:"realmId" json:"realmId"`
	ClientID     string            `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	Name         string            `yaml:"name" json:"name"`
	Description  string            `yaml:"description,omitempty" json:"description,omitempty"`
	CompositeIDs []string          `yaml:"composites,omitempty" json:"composites,omitempty"`
	Attributes   map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

func (r *Role) GetID() string { return r.ID }

// IsClientRole reports whether the role belongs to a client.
func (r *Role) IsClientRole() bool { return r.ClientID != "" }

// IsComposite reports whether the role aggregates other roles.
func (r *Role) IsComposite() bool { return len(r.CompositeIDs) > 0 }

func (r *Role) SetName(name string)        { set(&r.Updatable, &r.Name, name) }
func (r *Role) SetDescription(desc string) { set(&r.Updatable, &r.Description, desc) }
func (r *Role) SetAttribute(name, value string) {
	setMapEntry(&r.Updatable, &r.Attributes, name, value)
}
func (r *Role) RemoveAttribute(name string) {
	removeMapEntry(&r.Updatable, r.Attributes, name)
}

// AddComposite adds roleID to the composite set.
func (r *Role) AddComposite(roleID string) {
	if slices.Contains(r.CompositeIDs, roleID) {
		return
	}
	r.CompositeIDs = append(r.CompositeIDs, roleID)
	r.MarkUpdated()
}

// RemoveComposite drops roleID from the composite set.
func (r *Role) RemoveComposite(roleID string) {
	i := slices.Index(r.CompositeIDs, roleID)
	if i < 0 {
		return
	}
	r.CompositeIDs = slices.Delete(r.CompositeIDs, i, i+1)
	r.MarkUpdated()
}
