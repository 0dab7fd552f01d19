package model

// IdentityProvider is an external identity broker configured for a realm.
// Alias is unique within the realm.
type IdentityProvider struct {
	Updatable `yaml:"-" json:"-"`

	ID                     string            `yaml:"id" json:"id"`
	RealmID                string            `yaml:"realmId" json:"realmId"`
	Alias                  string            `yaml:"alias" json:"alias"`
	DisplayName            string            `yaml:"displayName,omitempty" json:"displayName,omitempty"`
	ProviderID             string            `yaml:"providerId" json:"providerId"`
	Enabled                bool              `yaml:"enabled" json:"enabled"`
	FirstBrokerLoginFlowID string            `yaml:"firstBrokerLoginFlowId,omitempty" json:"firstBrokerLoginFlowId,omitempty"`
	Config                 map[string]string `yaml:"config,omitempty" json:"config,omitempty"`
}

func (p *IdentityProvider) GetID() string { return p.ID }

func (p *IdentityProvider) SetDisplayName(name string) { set(&p.Updatable, &p.DisplayName, name) }
func (p *IdentityProvider) SetEnabled(enabled bool)    { set(&p.Updatable, &p.Enabled, enabled) }
func (p *IdentityProvider) SetFirstBrokerLoginFlowID(id string) {
	set(&p.Updatable, &p.FirstBrokerLoginFlowID, id)
}
func (p *IdentityProvider) SetConfig(name, value string) {
	setMapEntry(&p.Updatable, &p.Config, name, value)
}
func (p *IdentityProvider) RemoveConfig(name string) {
	removeMapEntry(&p.Updatable, p.Config, name)
}
