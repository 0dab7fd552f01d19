package model

// ClientScope is a named bundle of protocol mappers and role scopes shared by clients of a realm.
type ClientScope struct {
	Updatable `yaml:"-" json:"-"`

	ID          string            `yaml:"id" json:"id"`
	RealmID     string            `yaml:"realmId" json:"realmId"`
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Protocol    string            `yaml:"protocol,omitempty" json:"protocol,omitempty"`
	Attributes  map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

func (c *ClientScope) GetID() string { return c.ID }

func (c *ClientScope) SetName(name string)        { set(&c.Updatable, &c.Name, name) }
func (c *ClientScope) SetDescription(desc string) { set(&c.Updatable, &c.Description, desc) }
func (c *ClientScope) SetProtocol(protocol string) {
	set(&c.Updatable, &c.Protocol, protocol)
}
func (c *ClientScope) SetAttribute(name, value string) {
	setMapEntry(&c.Updatable, &c.Attributes, name, value)
}
func (c *ClientScope) RemoveAttribute(name string) {
	removeMapEntry(&c.Updatable, c.Attributes, name)
}
